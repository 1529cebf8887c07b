package constants

// Background worker and search tuning knobs.
const (
	// EmbedWorkerInterval is the polling interval (milliseconds) of the
	// embedding worker draining the dirty-entity queue.
	EmbedWorkerIntervalMs = 500

	// EmbedBatchSize is the maximum number of entities embedded per API call.
	EmbedBatchSize = 16

	// EmbedPoolSize bounds concurrent embedding batches during full refresh.
	EmbedPoolSize = 4

	// EmbedMaxAttempts and EmbedBaseDelayMs control retry of embedding calls.
	EmbedMaxAttempts = 3
	EmbedBaseDelayMs = 500

	// DefaultRefreshCron is the schedule for the nightly full re-embed.
	DefaultRefreshCron = "0 3 * * *"

	// SimilarityFloor is the minimum cosine similarity for a vector hit.
	// Near-zero on purpose: ranking, not the floor, does the filtering.
	SimilarityFloor = 0.05

	// SearchDefaultLimit and SearchMaxLimit bound result set sizes.
	SearchDefaultLimit = 10
	SearchMaxLimit     = 50

	// PerKindTopK is how many vector candidates each entity kind contributes
	// before merging.
	PerKindTopK = 20
)
