package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "question only",
			req:  Request{Prompt: "How am I?"},
			want: "User: How am I?\nAssistant:",
		},
		{
			name: "with context",
			req:  Request{Prompt: "How am I?", Context: "Latest metrics: recovery_score=70"},
			want: "Context: Latest metrics: recovery_score=70\n\nUser: How am I?\nAssistant:",
		},
		{
			name: "with history",
			req: Request{
				Prompt:  "And now?",
				Context: "c",
				History: []Turn{{User: "Hi", Assistant: "Hello"}},
			},
			want: "Context: c\n\nUser: Hi\nAssistant: Hello\nUser: And now?\nAssistant:",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildPrompt(tt.req))
		})
	}
}

func TestGenerate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "  Take a rest day.  "})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithModel("test-model"))
	reply, err := c.Generate(context.Background(), Request{Prompt: "Should I train?"})
	require.NoError(t, err)

	assert.Equal(t, "Take a rest day.", reply)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, "User: Should I train?\nAssistant:", got.Prompt)
	assert.Equal(t, SystemInstruction, got.System)
	assert.False(t, got.Stream)
	assert.Equal(t, DefaultMaxTokens, got.Options.NumPredict)
}

func TestGenerateEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	reply, err := NewClient(srv.URL).Generate(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, NoResponse, reply)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"model missing", http.StatusNotFound, `model "x" not found`, "status 404"},
		{"bad json", http.StatusOK, `not json`, "decode response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).Generate(context.Background(), Request{Prompt: "hi"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestGenerateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Generate(context.Background(), Request{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send request")
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultModel, c.Model())
	assert.Equal(t, 200, NewClient("", WithMaxTokens(200)).maxTokens)
}
