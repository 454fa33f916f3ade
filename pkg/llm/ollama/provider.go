// Package ollama registers the "ollama" chat provider.
package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/naughty-assistant/pkg/llm"
	"github.com/kart-io/naughty-assistant/pkg/utils/httpclient"
)

const ProviderName = "ollama"

func init() {
	llm.RegisterChatProvider(ProviderName, NewProvider)
}

// Config Ollama 连接配置。
type Config struct {
	BaseURL    string
	ChatModel  string
	Timeout    time.Duration
	MaxRetries int
}

// Provider talks to an Ollama server over its REST API.
type Provider struct {
	baseURL string
	model   string
	client  *httpclient.Client
}

// NewProvider reads base_url, chat_model, timeout and max_retries from
// config. Missing keys fall back to a local server running llama3.
func NewProvider(config map[string]any) (llm.ChatProvider, error) {
	cfg := Config{BaseURL: "http://localhost:11434", ChatModel: "llama3", Timeout: 2 * time.Minute}
	if v, _ := config["base_url"].(string); v != "" {
		cfg.BaseURL = v
	}
	if v, _ := config["chat_model"].(string); v != "" {
		cfg.ChatModel = v
	}
	if v, _ := config["timeout"].(time.Duration); v > 0 {
		cfg.Timeout = v
	}
	if v, ok := config["max_retries"].(int); ok && v > 0 {
		cfg.MaxRetries = v
	}
	return New(cfg), nil
}

func New(cfg Config) *Provider {
	return &Provider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.ChatModel,
		client:  httpclient.NewClient(cfg.Timeout, cfg.MaxRetries),
	}
}

func (p *Provider) Name() string  { return ProviderName }
func (p *Provider) Model() string { return p.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// num_predict caps generated tokens.
type chatOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Chat posts a non-streaming /api/chat request.
func (p *Provider) Chat(ctx context.Context, messages []llm.Message, opts llm.GenerateOptions) (string, error) {
	req := chatRequest{Model: p.model, Messages: make([]chatMessage, len(messages))}
	for i, msg := range messages {
		req.Messages[i] = chatMessage{Role: string(msg.Role), Content: msg.Content}
	}
	if opts != (llm.GenerateOptions{}) {
		req.Options = &chatOptions{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
			TopP:        opts.TopP,
		}
	}

	var resp chatResponse
	if err := p.client.PostJSON(ctx, p.baseURL+"/api/chat", req, &resp); err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return resp.Message.Content, nil
}

// ListModels returns the tags known to the server, e.g. "llama3:latest".
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := p.client.GetJSON(ctx, p.baseURL+"/api/tags", &result); err != nil {
		return nil, fmt.Errorf("ollama list models: %w", err)
	}

	models := make([]string, len(result.Models))
	for i, m := range result.Models {
		models[i] = m.Name
	}
	return models, nil
}
