// Package app provides the assistant server application.
package app

import (
	"context"
	"fmt"

	"github.com/kart-io/naughty-assistant/cmd/assistant/app/options"
	"github.com/kart-io/naughty-assistant/internal/assistant"
	"github.com/kart-io/naughty-assistant/pkg/infra/app"
)

// commandDesc is the description of the command.
const commandDesc = `Naughty AI Assistant

A sassy assistant backend that routes chat to text features and a local
language model, screens and analyzes uploaded files, and searches a
plain-text knowledge base.

Endpoints:
  - POST /chat             intent routing and free-form chat
  - POST /upload           virus scan, encryption and per-type analysis
  - POST /semantic_search  substring search over the knowledge base`

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	opts := options.NewServerOptions()
	return app.NewApp(
		app.WithName(assistant.Name),
		app.WithShortDescription("Naughty AI assistant backend"),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
}

// run contains the main logic for initializing and running the server.
func run(opts *options.ServerOptions) app.RunFunc {
	return func(ctx context.Context) error {
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		server, err := cfg.NewServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}
		return server.Run(ctx)
	}
}
