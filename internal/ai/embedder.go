package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIEmbedder implements Embedder using OpenAI-compatible embedding APIs
// via langchaingo.
type OpenAIEmbedder struct {
	embedder embeddings.Embedder
	model    string
}

// NewOpenAIEmbedder creates an embedder against baseURL with the given model.
// token may be empty for local OpenAI-compatible services; langchaingo still
// requires a non-empty value, so "none" is substituted.
func NewOpenAIEmbedder(baseURL, token, model string) (*OpenAIEmbedder, error) {
	if token == "" {
		token = "none"
	}

	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &OpenAIEmbedder{embedder: embedder, model: model}, nil
}

// Model returns the embedding model name, recorded alongside stored vectors.
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// EmbedText generates a vector embedding for a single text string.
func (e *OpenAIEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return []float32{}, nil
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple texts in a batch.
func (e *OpenAIEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return e.embedder.EmbedDocuments(ctx, texts)
}
