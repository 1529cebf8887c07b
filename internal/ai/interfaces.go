// Package ai holds the clients for the external model services: an
// OpenAI-compatible chat client used by the assist features and an embedding
// client used by semantic search. Both are defined as interfaces so services
// and tests can swap in mocks.
package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates embeddings for multiple texts in one batch call.
	// The returned slice is in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatClient sends chat completion requests to an LLM.
// Implementations must be safe for concurrent use.
type ChatClient interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// Complete is a convenience helper: one system prompt, one user message,
// first choice content back.
func Complete(ctx context.Context, client ChatClient, model, system, user string) (string, error) {
	resp, err := client.Chat(ctx, ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
