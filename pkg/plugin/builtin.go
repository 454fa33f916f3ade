package plugin

import (
	"context"
	"strings"
	"time"
)

// NewDefaultRegistry returns a registry holding the built-in plugins.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Echo{})
	r.Register(Clock{Now: time.Now})
	return r
}

// Echo repeats its arguments.
type Echo struct{}

func (Echo) Name() string        { return "echo" }
func (Echo) Functions() []string { return []string{"echo", "upper"} }

func (Echo) Call(_ context.Context, fn string, args []string) (string, error) {
	text := strings.Join(args, " ")
	switch fn {
	case "echo":
		return text, nil
	case "upper":
		return strings.ToUpper(text), nil
	default:
		return "", ErrUnknownFunction
	}
}

// Clock reports the current time.
type Clock struct {
	Now func() time.Time
}

func (Clock) Name() string        { return "clock" }
func (Clock) Functions() []string { return []string{"now", "utc"} }

func (c Clock) Call(_ context.Context, fn string, _ []string) (string, error) {
	switch fn {
	case "now":
		return c.Now().Format(time.RFC1123), nil
	case "utc":
		return c.Now().UTC().Format(time.RFC3339), nil
	default:
		return "", ErrUnknownFunction
	}
}
