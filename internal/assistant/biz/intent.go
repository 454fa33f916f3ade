package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kart-io/naughty-assistant/internal/assistant/metrics"
	"github.com/kart-io/naughty-assistant/pkg/automation"
	"github.com/kart-io/naughty-assistant/pkg/errors"
	"github.com/kart-io/naughty-assistant/pkg/infra/tracing"
	"github.com/kart-io/naughty-assistant/pkg/plugin"
)

// Intent names a routed chat behavior.
type Intent string

const (
	IntentSummarize    Intent = "summarize"
	IntentParaphrase   Intent = "paraphrase"
	IntentWritePaper   Intent = "write-paper"
	IntentHumanize     Intent = "humanize"
	IntentGenerateCode Intent = "generate-code"
	IntentReviewCode   Intent = "review-code"
	IntentDetectBugs   Intent = "detect-bugs"
	IntentPlugin       Intent = "plugin"
	IntentWeather      Intent = "weather"
	IntentChat         Intent = "chat"
)

type trigger struct {
	phrase string
	intent Intent
}

// triggers are tried in order; the first phrase found wins.
var triggers = []trigger{
	{"summarize", IntentSummarize},
	{"paraphrase", IntentParaphrase},
	{"write a paper", IntentWritePaper},
	{"humanize", IntentHumanize},
	{"generate code", IntentGenerateCode},
	{"review code", IntentReviewCode},
	{"detect bugs", IntentDetectBugs},
	{"execute plugin", IntentPlugin},
	{"fetch weather", IntentWeather},
}

// NotLoadedMessage is the chat reply when no model was loaded.
const NotLoadedMessage = "LLM not loaded, you naughty coder! 😈"

// ErrNotLoaded is returned by Route before any routing when the model is
// unavailable.
var ErrNotLoaded = errors.ErrModelUnavailable.WithMessage(NotLoadedMessage)

// Classify returns the intent selected by text and the trigger phrase that
// matched, or IntentChat and "".
func Classify(text string) (Intent, string) {
	lower := strings.ToLower(text)
	for _, t := range triggers {
		if strings.Contains(lower, t.phrase) {
			return t.intent, t.phrase
		}
	}
	return IntentChat, ""
}

// stripTrigger removes every occurrence of the lowercase phrase. Matching
// ignores case but removal does not, so "Summarize this" keeps its trigger.
func stripTrigger(text, phrase string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, phrase, ""))
}

// WeatherFetcher fetches current weather for a city.
type WeatherFetcher interface {
	Weather(ctx context.Context, city string) (*automation.WeatherReport, error)
}

// IntentRouter dispatches chat text to a feature.
type IntentRouter struct {
	gen     Generator
	plugins *plugin.Registry
	weather WeatherFetcher
	metrics *metrics.Metrics
}

// NewIntentRouter creates a router. plugins, weather and m may be nil.
func NewIntentRouter(gen Generator, plugins *plugin.Registry, weather WeatherFetcher, m *metrics.Metrics) *IntentRouter {
	return &IntentRouter{gen: gen, plugins: plugins, weather: weather, metrics: m}
}

// Route answers text. Feature failures are folded into the reply; only a
// failed default chat or a missing model returns an error.
func (r *IntentRouter) Route(ctx context.Context, text string, naughty bool) (string, error) {
	if !r.gen.Available() {
		return "", ErrNotLoaded
	}

	intent, phrase := Classify(text)
	r.metrics.RecordIntent(string(intent))
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(tracing.AttrIntent, string(intent)))
	logger.Debugw("Routing chat message", "intent", string(intent), "naughty", naughty)

	switch intent {
	case IntentSummarize:
		s := r.feature(ctx, intent, "Error summarizing text",
			"Summarize the following text in 50 words or less: "+stripTrigger(text, phrase), PresetSummarize)
		return fmt.Sprintf("Here’s your summary, darling: %s 😘", s), nil
	case IntentParaphrase:
		s := r.feature(ctx, intent, "Error paraphrasing text",
			"Paraphrase the following text: "+stripTrigger(text, phrase), PresetParaphrase)
		return fmt.Sprintf("Reworded just for you, sexy: %s 😘", s), nil
	case IntentWritePaper:
		s := r.feature(ctx, intent, "Error writing paper",
			fmt.Sprintf("Write a detailed 300-word paper on the topic: %s. Include an introduction, main points, and a conclusion.",
				stripTrigger(text, phrase)), PresetWritePaper)
		return fmt.Sprintf("Here’s your in-depth paper, hot stuff: %s 📝", s), nil
	case IntentHumanize:
		s := r.feature(ctx, intent, "Error humanizing text",
			"Rewrite the following text to sound more human and less AI-like: "+stripTrigger(text, phrase), PresetHumanize)
		return fmt.Sprintf("Made it sound oh-so-human for you: %s 😘", s), nil
	case IntentGenerateCode:
		// 代码生成使用完整原文
		return fmt.Sprintf("Here’s your code, you naughty coder: \n%s 💾", GenerateCode(text)), nil
	case IntentReviewCode:
		return fmt.Sprintf("Let’s check your code, babe: \n%s 🖥️", ReviewCode(stripTrigger(text, phrase))), nil
	case IntentDetectBugs:
		return fmt.Sprintf("Looking for bugs, darling: \n%s 🐞", DetectBugs(stripTrigger(text, phrase))), nil
	case IntentPlugin:
		return r.executePlugin(ctx, stripTrigger(text, phrase)), nil
	case IntentWeather:
		return r.fetchWeather(ctx, stripTrigger(text, phrase)), nil
	}

	out, err := r.gen.Generate(ctx, string(IntentChat), chatPrompt(text, naughty), ChatPreset(naughty))
	if err != nil {
		return "", errors.ErrGeneration.WithCause(err).WithMessage("Error: " + reason(err))
	}
	return out, nil
}

func chatPrompt(text string, naughty bool) string {
	tone := "Keep it playful but not too wild, you tease 😘"
	if naughty {
		tone = "Crank the naughtiness to 11—make it sinfully clever 😈"
	}
	return fmt.Sprintf("You’re a sassy, naughty AI coder who’s *obsessed* with %s. "+
		"Respond with a flirty, coding-focused vibe, sharp and professional. %s", text, tone)
}

// feature runs one generation and renders a failure as "<prefix>: <reason>".
func (r *IntentRouter) feature(ctx context.Context, intent Intent, errPrefix, prompt string, p Params) string {
	out, err := r.gen.Generate(ctx, string(intent), prompt, p)
	if err != nil {
		return errPrefix + ": " + reason(err)
	}
	return out
}

func (r *IntentRouter) executePlugin(ctx context.Context, rest string) string {
	parts := strings.Fields(rest)
	if len(parts) < 2 {
		return "Please specify plugin and function, e.g., 'execute plugin myplugin myfunction'"
	}
	if r.plugins == nil {
		return fmt.Sprintf("Plugin %s not found.", parts[0])
	}
	out, err := r.plugins.Execute(ctx, parts[0], parts[1], parts[2:])
	if err != nil {
		return reason(err)
	}
	return out
}

func (r *IntentRouter) fetchWeather(ctx context.Context, city string) string {
	if city == "" {
		return "Please specify a city, e.g., 'fetch weather London'"
	}
	if r.weather == nil {
		return "Error fetching API data: weather automation is not configured"
	}
	report, err := r.weather.Weather(ctx, city)
	if err != nil {
		return reason(err)
	}
	return report.String()
}
