package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"

	"github.com/meridiancrm/backend/internal/ai"
	"github.com/meridiancrm/backend/internal/infrastructure/persistence"
	"github.com/meridiancrm/backend/internal/search"
	"github.com/meridiancrm/backend/pkg/constants"
	"github.com/meridiancrm/backend/pkg/utils"
)

// dirtyKey identifies one entity awaiting (re-)embedding.
type dirtyKey struct {
	Kind string
	ID   string
}

// EmbeddingService keeps the per-kind vector indexes in sync with the CRM
// data. Writes mark entities dirty; a background worker drains the dirty set,
// embeds changed content in batches, and upserts both the database rows and
// the in-memory indexes. A cron job re-embeds everything nightly to catch
// model changes and drift.
type EmbeddingService struct {
	embedder ai.Embedder
	model    string

	embeddings *persistence.EmbeddingRepository
	leads      *persistence.LeadRepository
	companies  *persistence.CompanyRepository
	contacts   *persistence.ContactRepository

	indexes map[string]*search.Index

	mu    sync.Mutex
	dirty map[dirtyKey]bool

	// Worker control
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	cron *cron.Cron
}

// NewEmbeddingService creates the service with one index per semantic kind.
func NewEmbeddingService(
	embedder ai.Embedder,
	model string,
	embeddings *persistence.EmbeddingRepository,
	leads *persistence.LeadRepository,
	companies *persistence.CompanyRepository,
	contacts *persistence.ContactRepository,
) *EmbeddingService {
	indexes := make(map[string]*search.Index, len(constants.SemanticKinds))
	for _, kind := range constants.SemanticKinds {
		indexes[kind] = search.NewIndex()
	}

	return &EmbeddingService{
		embedder:   embedder,
		model:      model,
		embeddings: embeddings,
		leads:      leads,
		companies:  companies,
		contacts:   contacts,
		indexes:    indexes,
		dirty:      make(map[dirtyKey]bool),
		stopCh:     make(chan struct{}),
	}
}

// Index returns the vector index for a semantic kind, or nil for kinds that
// are keyword-only.
func (es *EmbeddingService) Index(kind string) *search.Index {
	return es.indexes[kind]
}

// Hydrate loads all persisted embeddings into the in-memory indexes.
// Called once at startup before the server accepts requests.
func (es *EmbeddingService) Hydrate(ctx context.Context) error {
	for _, kind := range constants.SemanticKinds {
		entries, err := es.embeddings.LoadKind(ctx, kind)
		if err != nil {
			return fmt.Errorf("failed to hydrate %s index: %w", kind, err)
		}
		es.indexes[kind].ReplaceAll(entries)
		log.Printf("🧠 Hydrated %s index with %d vectors", kind, len(entries))
	}
	return nil
}

// MarkDirty queues an entity for (re-)embedding. Safe to call from request
// handlers; the actual embedding happens in the background worker.
func (es *EmbeddingService) MarkDirty(kind, id string) {
	if es.indexes[kind] == nil {
		return
	}
	es.mu.Lock()
	es.dirty[dirtyKey{Kind: kind, ID: id}] = true
	es.mu.Unlock()
}

// Remove drops an entity from the index and the embedding store. Called when
// the entity is deleted.
func (es *EmbeddingService) Remove(ctx context.Context, kind, id string) {
	if ix := es.indexes[kind]; ix != nil {
		ix.Delete(id)
	}
	es.mu.Lock()
	delete(es.dirty, dirtyKey{Kind: kind, ID: id})
	es.mu.Unlock()

	if err := es.embeddings.DeleteEntity(ctx, kind, id); err != nil {
		log.Printf("⚠️ Failed to delete embedding for %s/%s: %v", kind, id, err)
	}
}

// StartWorker starts the background worker that drains the dirty set.
func (es *EmbeddingService) StartWorker(interval time.Duration) {
	es.wg.Add(1)
	go func() {
		defer es.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Printf("🧠 Embedding worker started with %v interval", interval)

		for {
			select {
			case <-es.stopCh:
				log.Printf("🧠 Embedding worker stopping...")
				return
			case <-ticker.C:
				if err := es.ProcessDirty(context.Background()); err != nil {
					log.Printf("⚠️ Embedding worker error: %v", err)
				}
			}
		}
	}()
}

// StopWorker stops the background worker gracefully.
func (es *EmbeddingService) StopWorker() {
	es.stopOnce.Do(func() {
		close(es.stopCh)
	})
	es.wg.Wait()
	if es.cron != nil {
		es.cron.Stop()
	}
	log.Printf("🧠 Embedding worker stopped")
}

// StartScheduler registers the nightly full re-embed. spec uses standard
// 5-field cron syntax; empty falls back to the default schedule.
func (es *EmbeddingService) StartScheduler(spec string) error {
	if spec == "" {
		spec = constants.DefaultRefreshCron
	}

	es.cron = cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
	)))

	_, err := es.cron.AddFunc(spec, func() {
		if err := es.RefreshAll(context.Background()); err != nil {
			log.Printf("⚠️ Scheduled embedding refresh failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	es.cron.Start()
	log.Printf("⏰ Embedding refresh scheduled: %s", spec)
	return nil
}

// ProcessDirty embeds every queued entity. Entities whose searchable text is
// unchanged since the last embedding are skipped via the stored content hash.
func (es *EmbeddingService) ProcessDirty(ctx context.Context) error {
	es.mu.Lock()
	if len(es.dirty) == 0 {
		es.mu.Unlock()
		return nil
	}
	batch := make([]dirtyKey, 0, len(es.dirty))
	for k := range es.dirty {
		batch = append(batch, k)
	}
	es.dirty = make(map[dirtyKey]bool)
	es.mu.Unlock()

	// Group by kind so hash lookups are one query per kind
	byKind := make(map[string][]string)
	for _, k := range batch {
		byKind[k.Kind] = append(byKind[k.Kind], k.ID)
	}

	for kind, ids := range byKind {
		if err := es.embedKind(ctx, kind, ids, false); err != nil {
			// Re-queue so the next tick retries
			for _, id := range ids {
				es.MarkDirty(kind, id)
			}
			return err
		}
	}
	return nil
}

// RefreshAll re-embeds every semantic entity, running kinds through a bounded
// worker pool. Unchanged entities are still skipped by content hash, so the
// nightly run is cheap when nothing moved.
func (es *EmbeddingService) RefreshAll(ctx context.Context) error {
	log.Printf("🔄 Full embedding refresh started")
	start := time.Now()

	pool, err := ants.NewPool(constants.EmbedPoolSize)
	if err != nil {
		return fmt.Errorf("failed to create embed pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, kind := range constants.SemanticKinds {
		kind := kind
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := es.embedKind(ctx, kind, nil, true); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}); err != nil {
			wg.Done()
			return fmt.Errorf("failed to submit refresh task: %w", err)
		}
	}

	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	log.Printf("✅ Full embedding refresh done in %v", time.Since(start))
	return nil
}

// embedKind embeds the given entity IDs of one kind (all entities when ids is
// nil and full is true). Texts are batched; each batch is retried with
// exponential backoff before giving up.
func (es *EmbeddingService) embedKind(ctx context.Context, kind string, ids []string, full bool) error {
	contents, err := es.collectContent(ctx, kind, ids, full)
	if err != nil {
		return err
	}
	if len(contents) == 0 {
		return nil
	}

	hashes, err := es.embeddings.Hashes(ctx, kind)
	if err != nil {
		return fmt.Errorf("failed to load %s hashes: %w", kind, err)
	}

	type pending struct {
		id, text, hash string
	}
	work := make([]pending, 0, len(contents))
	for id, text := range contents {
		hash := ContentHash(text)
		if hashes[id] == hash {
			continue
		}
		work = append(work, pending{id: id, text: text, hash: hash})
	}
	if len(work) == 0 {
		return nil
	}

	ix := es.indexes[kind]
	for start := 0; start < len(work); start += constants.EmbedBatchSize {
		end := start + constants.EmbedBatchSize
		if end > len(work) {
			end = len(work)
		}
		chunk := work[start:end]

		texts := make([]string, len(chunk))
		for i, p := range chunk {
			texts[i] = p.text
		}

		var vectors [][]float32
		err := utils.RetryWithBackoff(ctx, constants.EmbedMaxAttempts, constants.EmbedBaseDelayMs*time.Millisecond, func() error {
			var embedErr error
			vectors, embedErr = es.embedder.EmbedTexts(ctx, texts)
			return embedErr
		})
		if err != nil {
			return fmt.Errorf("failed to embed %s batch: %w", kind, err)
		}
		if len(vectors) != len(chunk) {
			return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(chunk))
		}

		for i, p := range chunk {
			if err := es.embeddings.Upsert(ctx, kind, p.id, p.text, p.hash, vectors[i], es.model); err != nil {
				return fmt.Errorf("failed to store embedding for %s/%s: %w", kind, p.id, err)
			}
			ix.Upsert(p.id, p.text, vectors[i])
		}
	}

	log.Printf("🧠 Embedded %d %s entities", len(work), kind)
	return nil
}

// collectContent builds id -> searchable text for the requested entities.
func (es *EmbeddingService) collectContent(ctx context.Context, kind string, ids []string, full bool) (map[string]string, error) {
	wanted := func(id string) bool {
		if full {
			return true
		}
		for _, w := range ids {
			if w == id {
				return true
			}
		}
		return false
	}

	contents := make(map[string]string)

	switch kind {
	case constants.EntityKindLead:
		leads, err := es.leads.List(ctx, "", 0)
		if err != nil {
			return nil, err
		}
		for _, l := range leads {
			if wanted(l.ID) {
				contents[l.ID] = LeadText(l)
			}
		}
	case constants.EntityKindCompany:
		companies, err := es.companies.List(ctx, 0)
		if err != nil {
			return nil, err
		}
		for _, c := range companies {
			if wanted(c.ID) {
				contents[c.ID] = CompanyText(c)
			}
		}
	case constants.EntityKindContact:
		contacts, err := es.contacts.List(ctx, "", 0)
		if err != nil {
			return nil, err
		}
		for _, c := range contacts {
			if wanted(c.ID) {
				contents[c.ID] = ContactText(c)
			}
		}
	default:
		return nil, fmt.Errorf("kind %q has no semantic index", kind)
	}

	return contents, nil
}

// Stats reports index sizes and stored embedding counts, for the admin
// status endpoint.
func (es *EmbeddingService) Stats(ctx context.Context) (map[string]interface{}, error) {
	stored, err := es.embeddings.CountByKind(ctx)
	if err != nil {
		return nil, err
	}

	indexed := make(map[string]int, len(es.indexes))
	for kind, ix := range es.indexes {
		indexed[kind] = ix.Len()
	}

	es.mu.Lock()
	pending := len(es.dirty)
	es.mu.Unlock()

	return map[string]interface{}{
		"model":   es.model,
		"indexed": indexed,
		"stored":  stored,
		"pending": pending,
	}, nil
}
