package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/naughty-assistant/pkg/automation"
	apperrors "github.com/kart-io/naughty-assistant/pkg/errors"
	"github.com/kart-io/naughty-assistant/pkg/plugin"
)

type call struct {
	feature string
	prompt  string
	params  Params
}

type fakeGenerator struct {
	available bool
	reply     string
	err       error
	calls     []call
}

func (f *fakeGenerator) Generate(_ context.Context, feature, prompt string, p Params) (string, error) {
	f.calls = append(f.calls, call{feature, prompt, p})
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) Available() bool { return f.available }

type fakeWeather struct {
	city string
	err  error
}

func (f *fakeWeather) Weather(_ context.Context, city string) (*automation.WeatherReport, error) {
	f.city = city
	if f.err != nil {
		return nil, f.err
	}
	r := &automation.WeatherReport{Name: city}
	r.Main.Temp = 12.34
	r.Main.FeelsLike = 10
	r.Main.Humidity = 80
	return r, nil
}

func TestClassifyFirstTriggerWins(t *testing.T) {
	tests := []struct {
		text   string
		intent Intent
	}{
		{"please humanize and summarize this", IntentSummarize},
		{"PARAPHRASE then detect bugs", IntentParaphrase},
		{"write a paper about go, then review code", IntentWritePaper},
		{"Detect Bugs and Generate Code", IntentGenerateCode},
		{"review code: x = 1", IntentReviewCode},
		{"execute plugin echo echo hi", IntentPlugin},
		{"summarize the weather; fetch weather Paris", IntentSummarize},
		{"fetch weather Paris", IntentWeather},
		{"hello there", IntentChat},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, _ := Classify(tt.text)
			assert.Equal(t, tt.intent, got)
		})
	}
}

func TestRouteNotLoaded(t *testing.T) {
	r := NewIntentRouter(&fakeGenerator{available: false}, nil, nil, nil)
	_, err := r.Route(context.Background(), "summarize x", false)
	require.Error(t, err)

	var e *apperrors.Errno
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 500, e.HTTPStatus())
	assert.Equal(t, NotLoadedMessage, e.Message("en"))
}

func TestRouteSummarizeStripsLowercaseTrigger(t *testing.T) {
	gen := &fakeGenerator{available: true, reply: "short"}
	r := NewIntentRouter(gen, nil, nil, nil)

	out, err := r.Route(context.Background(), "summarize the long text", false)
	require.NoError(t, err)
	assert.Equal(t, "Here’s your summary, darling: short 😘", out)
	require.Len(t, gen.calls, 1)
	assert.Equal(t, "Summarize the following text in 50 words or less: the long text", gen.calls[0].prompt)
	assert.Equal(t, PresetSummarize, gen.calls[0].params)
}

func TestRouteRepeatedTriggerRemovesEveryOccurrence(t *testing.T) {
	gen := &fakeGenerator{available: true, reply: "ok"}
	r := NewIntentRouter(gen, nil, nil, nil)

	_, err := r.Route(context.Background(), "summarize a summarize b", false)
	require.NoError(t, err)
	require.Len(t, gen.calls, 1)
	assert.Equal(t, "Summarize the following text in 50 words or less: a  b", gen.calls[0].prompt)
	assert.Equal(t, "a  b", stripTrigger("summarize a summarize b", "summarize"))
}

func TestRouteTriggerCaseIsKept(t *testing.T) {
	gen := &fakeGenerator{available: true, reply: "ok"}
	r := NewIntentRouter(gen, nil, nil, nil)

	_, err := r.Route(context.Background(), "Summarize this", false)
	require.NoError(t, err)
	assert.Equal(t, "Summarize the following text in 50 words or less: Summarize this", gen.calls[0].prompt)
}

func TestRouteFeaturePrompts(t *testing.T) {
	tests := []struct {
		text   string
		prompt string
		params Params
		reply  string
	}{
		{"paraphrase hello", "Paraphrase the following text: hello", PresetParaphrase, "Reworded just for you, sexy: R 😘"},
		{"write a paper go", "Write a detailed 300-word paper on the topic: go. Include an introduction, main points, and a conclusion.", PresetWritePaper, "Here’s your in-depth paper, hot stuff: R 📝"},
		{"humanize beep", "Rewrite the following text to sound more human and less AI-like: beep", PresetHumanize, "Made it sound oh-so-human for you: R 😘"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			gen := &fakeGenerator{available: true, reply: "R"}
			out, err := NewIntentRouter(gen, nil, nil, nil).Route(context.Background(), tt.text, true)
			require.NoError(t, err)
			assert.Equal(t, tt.reply, out)
			assert.Equal(t, tt.prompt, gen.calls[0].prompt)
			assert.Equal(t, tt.params, gen.calls[0].params)
		})
	}
}

func TestRouteFeatureErrorIsFolded(t *testing.T) {
	gen := &fakeGenerator{available: true, err: apperrors.ErrGeneration.WithMessage("model exploded")}
	out, err := NewIntentRouter(gen, nil, nil, nil).Route(context.Background(), "summarize x", false)
	require.NoError(t, err)
	assert.Equal(t, "Here’s your summary, darling: Error summarizing text: model exploded 😘", out)
}

func TestRouteCodeIntel(t *testing.T) {
	gen := &fakeGenerator{available: true}
	r := NewIntentRouter(gen, nil, nil, nil)

	out, err := r.Route(context.Background(), "generate code python function", false)
	require.NoError(t, err)
	assert.Equal(t, "Here’s your code, you naughty coder: \ndef example_function():\n    return 'Generated code!' 💾", out)

	out, err = r.Route(context.Background(), "review code eval(x)", false)
	require.NoError(t, err)
	assert.Equal(t, "Let’s check your code, babe: \nCode Review:\nAvoid using eval() due to security risks. 🖥️", out)

	out, err = r.Route(context.Background(), "detect bugs for x in range(10): print(x)", false)
	require.NoError(t, err)
	assert.Equal(t, "Looking for bugs, darling: \nNo obvious bugs detected. 🐞", out)

	assert.Empty(t, gen.calls, "code intelligence never calls the model")
}

func TestRouteDefaultChat(t *testing.T) {
	gen := &fakeGenerator{available: true, reply: "flirty reply"}
	r := NewIntentRouter(gen, nil, nil, nil)

	out, err := r.Route(context.Background(), "golang", true)
	require.NoError(t, err)
	assert.Equal(t, "flirty reply", out)
	assert.Equal(t, "You’re a sassy, naughty AI coder who’s *obsessed* with golang. "+
		"Respond with a flirty, coding-focused vibe, sharp and professional. "+
		"Crank the naughtiness to 11—make it sinfully clever 😈", gen.calls[0].prompt)
	assert.Equal(t, ChatPreset(true), gen.calls[0].params)
}

func TestRouteDefaultChatError(t *testing.T) {
	gen := &fakeGenerator{available: true, err: errors.New("timeout")}
	_, err := NewIntentRouter(gen, nil, nil, nil).Route(context.Background(), "hi", false)
	require.Error(t, err)

	var e *apperrors.Errno
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "Error: timeout", e.Message("en"))
	assert.Equal(t, 500, e.HTTPStatus())
}

func TestRoutePlugin(t *testing.T) {
	gen := &fakeGenerator{available: true}
	r := NewIntentRouter(gen, plugin.NewDefaultRegistry(), nil, nil)
	ctx := context.Background()

	out, _ := r.Route(ctx, "execute plugin echo upper naughty", false)
	assert.Equal(t, "NAUGHTY", out)

	out, _ = r.Route(ctx, "execute plugin echo", false)
	assert.Equal(t, "Please specify plugin and function, e.g., 'execute plugin myplugin myfunction'", out)

	out, _ = r.Route(ctx, "execute plugin nope run", false)
	assert.Equal(t, "Plugin nope not found.", out)

	out, _ = r.Route(ctx, "execute plugin echo shout", false)
	assert.Equal(t, "Function shout not found in plugin echo.", out)
}

func TestRouteWeather(t *testing.T) {
	w := &fakeWeather{}
	r := NewIntentRouter(&fakeGenerator{available: true}, nil, w, nil)

	out, err := r.Route(context.Background(), "fetch weather Paris", false)
	require.NoError(t, err)
	assert.Equal(t, "Paris", w.city)
	assert.Equal(t, "Weather in Paris: unknown conditions, 12.3°C (feels like 10.0°C), humidity 80%", out)

	w.err = apperrors.ErrAutomationFailed.WithMessage("Error fetching API data: 401 Unauthorized")
	out, _ = r.Route(context.Background(), "fetch weather Paris", false)
	assert.Equal(t, "Error fetching API data: 401 Unauthorized", out)

	out, _ = r.Route(context.Background(), "fetch weather", false)
	assert.Equal(t, "Please specify a city, e.g., 'fetch weather London'", out)
}
