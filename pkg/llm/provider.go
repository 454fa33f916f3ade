// Package llm is the provider-neutral chat interface behind the model
// gateway. Concrete providers register a factory from their init.
package llm

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Role is a chat message author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage is a conversation of one user turn.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// GenerateOptions 采样参数，零值字段交给供应商默认值。
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// ChatProvider produces one non-streamed completion per call.
type ChatProvider interface {
	Chat(ctx context.Context, messages []Message, opts GenerateOptions) (string, error)
	// Model is the configured model name.
	Model() string
	Name() string
}

// ModelLister is implemented by providers that can report the models the
// server has available. The gateway uses it as a ping at load time.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ChatProviderFactory builds a provider from loosely typed settings.
type ChatProviderFactory func(config map[string]any) (ChatProvider, error)

var (
	mu        sync.RWMutex
	factories = map[string]ChatProviderFactory{}
)

// RegisterChatProvider makes a provider available by name. A later
// registration under the same name replaces the earlier one.
func RegisterChatProvider(name string, f ChatProviderFactory) {
	mu.Lock()
	factories[name] = f
	mu.Unlock()
}

func NewChatProvider(name string, config map[string]any) (ChatProvider, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown chat provider %q (registered: %s)", name, strings.Join(ListProviders(), ", "))
	}
	return f(config)
}

// ListProviders returns the registered names in order.
func ListProviders() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
