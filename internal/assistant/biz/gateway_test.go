package biz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kart-io/naughty-assistant/pkg/errors"
	"github.com/kart-io/naughty-assistant/pkg/llm"
)

type fakeProvider struct {
	model    string
	reply    string
	err      error
	models   []string
	listErr  error
	lastMsgs []llm.Message
	lastOpts llm.GenerateOptions
	calls    int
}

func (f *fakeProvider) Chat(ctx context.Context, msgs []llm.Message, opts llm.GenerateOptions) (string, error) {
	f.calls++
	f.lastMsgs = msgs
	f.lastOpts = opts
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeProvider) Model() string { return f.model }
func (f *fakeProvider) Name() string  { return "fake" }

func (f *fakeProvider) ListModels(context.Context) ([]string, error) {
	return f.models, f.listErr
}

func TestLoadGateway(t *testing.T) {
	tests := []struct {
		name      string
		provider  llm.ChatProvider
		available bool
	}{
		{"nil provider", nil, false},
		{"model served", &fakeProvider{model: "llama3", models: []string{"llama3:latest"}}, true},
		{"exact name", &fakeProvider{model: "gpt-4o-mini", models: []string{"gpt-4o-mini"}}, true},
		{"model missing", &fakeProvider{model: "llama3", models: []string{"mistral:latest"}}, false},
		{"ping error", &fakeProvider{model: "llama3", listErr: errors.New("connection refused")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := LoadGateway(context.Background(), tt.provider, GatewayOptions{LoadTimeout: time.Second})
			assert.Equal(t, tt.available, g.Available())
		})
	}
}

func TestGatewayGenerate(t *testing.T) {
	p := &fakeProvider{model: "llama3", models: []string{"llama3"}, reply: "hi there"}
	g := LoadGateway(context.Background(), p, GatewayOptions{GenerateTimeout: time.Second})

	out, err := g.Generate(context.Background(), "summarize", "prompt text", PresetSummarize)
	require.NoError(t, err)
	assert.Equal(t, "hi there", out)
	assert.Equal(t, llm.UserMessage("prompt text"), p.lastMsgs)
	assert.Equal(t, llm.GenerateOptions{MaxTokens: 60, Temperature: 0.7, TopP: 0.95}, p.lastOpts)
}

func TestGatewayGenerateUnavailable(t *testing.T) {
	p := &fakeProvider{model: "llama3", listErr: errors.New("down")}
	g := LoadGateway(context.Background(), p, GatewayOptions{})

	_, err := g.Generate(context.Background(), "chat", "x", ChatPreset(false))
	assert.ErrorIs(t, err, apperrors.ErrModelUnavailable)
	assert.Zero(t, p.calls, "an unavailable gateway never calls the provider")
}

func TestGatewayGenerateError(t *testing.T) {
	p := &fakeProvider{model: "m", models: []string{"m"}, err: errors.New("context length exceeded")}
	g := LoadGateway(context.Background(), p, GatewayOptions{})

	_, err := g.Generate(context.Background(), "chat", "x", ChatPreset(true))
	require.ErrorIs(t, err, apperrors.ErrGeneration)
	assert.Equal(t, "context length exceeded", reason(err))
	assert.Equal(t, 1.0, p.lastOpts.Temperature)
}

func TestChatPreset(t *testing.T) {
	assert.Equal(t, Params{MaxTokens: 150, Temperature: 1.0, TopP: 0.95}, ChatPreset(true))
	assert.Equal(t, Params{MaxTokens: 150, Temperature: 0.9, TopP: 0.95}, ChatPreset(false))
}
