package openai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/naughty-assistant/pkg/llm"
	"github.com/kart-io/naughty-assistant/pkg/utils/json"
)

const testAPIKey = "test-key"

func TestNewProviderRequiresKey(t *testing.T) {
	_, err := NewProvider(map[string]any{})
	assert.Error(t, err)

	p, err := NewProvider(map[string]any{"api_key": testAPIKey, "chat_model": "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.Model())
}

func TestChatSendsSamplingParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/chat/completions":
			assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))
			body, _ := io.ReadAll(r.Body)
			var req map[string]any
			require.NoError(t, json.Unmarshal(body, &req))
			assert.EqualValues(t, 150, req["max_tokens"])
			assert.InDelta(t, 0.9, req["temperature"], 1e-6)
			assert.InDelta(t, 0.95, req["top_p"], 1e-6)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"hey there"},"finish_reason":"stop"}]}`))
		case "/v1/models":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o-mini","object":"model"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewProviderWithConfig(&Config{BaseURL: srv.URL + "/v1", APIKey: testAPIKey, ChatModel: "gpt-4o-mini"})

	out, err := p.Chat(context.Background(), llm.UserMessage("hello"), llm.GenerateOptions{MaxTokens: 150, Temperature: 0.9, TopP: 0.95})
	require.NoError(t, err)
	assert.Equal(t, "hey there", out)

	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o-mini"}, models)
}
