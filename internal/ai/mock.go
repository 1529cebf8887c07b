package ai

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
)

// MockEmbedder is a deterministic Embedder for tests. Identical texts embed
// to identical unit vectors; different texts almost always differ.
type MockEmbedder struct {
	Dim int

	mu    sync.Mutex
	Calls int
	Err   error
}

// NewMockEmbedder creates a mock embedder with the given dimensionality.
func NewMockEmbedder(dim int) *MockEmbedder {
	return &MockEmbedder{Dim: dim}
}

func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.Calls++
	err := m.Err
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.vectorFor(text)
	}
	return out, nil
}

func (m *MockEmbedder) vectorFor(text string) []float32 {
	dim := m.Dim
	if dim <= 0 {
		dim = 8
	}

	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, dim)
	var norm float64
	for i := range vec {
		// xorshift-style scramble per component
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		v := float64(int64(seed%2000)-1000) / 1000.0
		vec[i] = float32(v)
		norm += v * v
	}

	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

// MockChatClient is a canned-response ChatClient for tests.
type MockChatClient struct {
	Response string
	Err      error

	mu       sync.Mutex
	Requests []ChatRequest
}

func (m *MockChatClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return &ChatResponse{
		Choices: []Choice{{Message: Message{Role: "assistant", Content: m.Response}}},
	}, nil
}

// LastRequest returns the most recent request, or nil if none were made.
func (m *MockChatClient) LastRequest() *ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return nil
	}
	return &m.Requests[len(m.Requests)-1]
}
