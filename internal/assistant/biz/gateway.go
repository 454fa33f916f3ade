package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kart-io/naughty-assistant/internal/assistant/metrics"
	"github.com/kart-io/naughty-assistant/pkg/errors"
	"github.com/kart-io/naughty-assistant/pkg/infra/tracing"
	"github.com/kart-io/naughty-assistant/pkg/llm"
)

// Params are the sampling parameters of one generation call.
type Params struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Generation presets.
var (
	PresetSummarize  = Params{MaxTokens: 60, Temperature: 0.7, TopP: 0.95}
	PresetParaphrase = Params{MaxTokens: 150, Temperature: 0.9, TopP: 0.95}
	PresetWritePaper = Params{MaxTokens: 400, Temperature: 0.8, TopP: 0.95}
	PresetHumanize   = Params{MaxTokens: 150, Temperature: 1.0, TopP: 0.95}
)

// ChatPreset returns the default chat preset for the given mode.
func ChatPreset(naughty bool) Params {
	p := Params{MaxTokens: 150, Temperature: 0.9, TopP: 0.95}
	if naughty {
		p.Temperature = 1.0
	}
	return p
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, feature, prompt string, p Params) (string, error)
	Available() bool
}

// GatewayOptions configures LoadGateway.
type GatewayOptions struct {
	// LoadTimeout bounds the startup check.
	LoadTimeout time.Duration
	// GenerateTimeout bounds every generation call. Zero means no limit.
	GenerateTimeout time.Duration
	// Metrics is optional.
	Metrics *metrics.Metrics
}

// Gateway owns the loaded model. Its availability is decided once by
// LoadGateway and never changes afterwards.
type Gateway struct {
	provider  llm.ChatProvider
	available bool
	opts      GatewayOptions
}

var _ Generator = (*Gateway)(nil)

// LoadGateway pings provider once. When the provider is nil, unreachable
// or does not serve the configured model, the returned gateway is
// permanently unavailable.
func LoadGateway(ctx context.Context, provider llm.ChatProvider, opts GatewayOptions) *Gateway {
	g := &Gateway{provider: provider, opts: opts}
	if provider == nil {
		logger.Warn("No chat provider configured, model unavailable")
		return g
	}

	if err := pingProvider(ctx, provider, opts.LoadTimeout); err != nil {
		logger.Errorw("Failed to load model",
			"provider", provider.Name(),
			"model", provider.Model(),
			"error", err.Error(),
		)
		return g
	}

	g.available = true
	logger.Infow("Model loaded", "provider", provider.Name(), "model", provider.Model())
	return g
}

func pingProvider(ctx context.Context, provider llm.ChatProvider, timeout time.Duration) error {
	lister, ok := provider.(llm.ModelLister)
	if !ok {
		return nil
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	models, err := lister.ListModels(ctx)
	if err != nil {
		return err
	}
	want := provider.Model()
	for _, m := range models {
		if m == want || strings.HasPrefix(m, want+":") {
			return nil
		}
	}
	return fmt.Errorf("model %q not served by %s", want, provider.Name())
}

// Available reports whether a model was loaded at startup.
func (g *Gateway) Available() bool {
	return g.available
}

// Model returns the configured model name, or "" without a provider.
func (g *Gateway) Model() string {
	if g.provider == nil {
		return ""
	}
	return g.provider.Model()
}

// Generate sends prompt as a single user message. feature labels metrics.
func (g *Gateway) Generate(ctx context.Context, feature, prompt string, p Params) (string, error) {
	if !g.available {
		return "", errors.ErrModelUnavailable
	}
	if g.opts.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.GenerateTimeout)
		defer cancel()
	}

	ctx, span := tracing.StartSpan(ctx, "model.generate",
		attribute.String(tracing.AttrFeature, feature),
		attribute.String("model.name", g.provider.Model()),
	)
	defer span.End()

	start := time.Now()
	out, err := g.provider.Chat(ctx, llm.UserMessage(prompt), llm.GenerateOptions{
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		TopP:        p.TopP,
	})
	g.opts.Metrics.RecordGeneration(feature, time.Since(start), err)
	if err != nil {
		tracing.RecordError(ctx, err)
		logger.Warnw("Generation failed", "feature", feature, "error", err.Error())
		return "", errors.ErrGeneration.WithCause(err).WithMessage(err.Error())
	}
	return out, nil
}

// reason returns the user facing text of err.
func reason(err error) string {
	var e *errors.Errno
	if errors.As(err, &e) {
		return e.Message("en")
	}
	return err.Error()
}
