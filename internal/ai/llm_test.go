package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIChatClient_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "Hello", req.Messages[0].Content)

		resp := ChatResponse{
			ID: "mock-123",
			Choices: []Choice{{
				Message: Message{Role: "assistant", Content: "Hi there!"},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewOpenAIChatClient(server.URL, "test-key")

	resp, err := client.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "Hello"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "Hi there!", resp.Choices[0].Message.Content)
}

func TestOpenAIChatClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewOpenAIChatClient(server.URL, "")
	_, err := client.Chat(context.Background(), ChatRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestComplete(t *testing.T) {
	mock := &MockChatClient{Response: "done"}

	out, err := Complete(context.Background(), mock, "test-model", "be brief", "hello")
	require.NoError(t, err)
	assert.Equal(t, "done", out)

	req := mock.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, "test-model", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
}

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare", `{"a": 1}`, `{"a": 1}`, true},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`, true},
		{"prose", `Sure! Here you go: {"a": {"b": 2}} hope that helps`, `{"a": {"b": 2}}`, true},
		{"brace in string", `{"a": "}"}`, `{"a": "}"}`, true},
		{"none", `no json here`, "", false},
		{"unclosed", `{"a": 1`, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tc.in)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestMockEmbedderDeterminism(t *testing.T) {
	m := NewMockEmbedder(16)

	a1, err := m.EmbedText(context.Background(), "acme corp")
	require.NoError(t, err)
	a2, err := m.EmbedText(context.Background(), "acme corp")
	require.NoError(t, err)
	b, err := m.EmbedText(context.Background(), "globex")
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
	assert.Len(t, a1, 16)
}
