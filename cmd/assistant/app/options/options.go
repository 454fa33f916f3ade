// Package options contains flags and options for initializing the assistant server.
package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/naughty-assistant/internal/assistant"
	analyzeropts "github.com/kart-io/naughty-assistant/pkg/options/analyzer"
	cacheopts "github.com/kart-io/naughty-assistant/pkg/options/cache"
	httpopts "github.com/kart-io/naughty-assistant/pkg/options/http"
	intakeopts "github.com/kart-io/naughty-assistant/pkg/options/intake"
	ledgeropts "github.com/kart-io/naughty-assistant/pkg/options/ledger"
	logopts "github.com/kart-io/naughty-assistant/pkg/options/logger"
	middlewareopts "github.com/kart-io/naughty-assistant/pkg/options/middleware"
	modelopts "github.com/kart-io/naughty-assistant/pkg/options/model"
	scanneropts "github.com/kart-io/naughty-assistant/pkg/options/scanner"
	tracingopts "github.com/kart-io/naughty-assistant/pkg/options/tracing"
	weatheropts "github.com/kart-io/naughty-assistant/pkg/options/weather"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// ModelOptions contains the language model provider configuration.
	ModelOptions *modelopts.Options `json:"model" mapstructure:"model"`

	// IntakeOptions contains upload and knowledge directories.
	IntakeOptions *intakeopts.Options `json:"intake" mapstructure:"intake"`

	// ScannerOptions contains clamd configuration.
	ScannerOptions *scanneropts.Options `json:"scanner" mapstructure:"scanner"`

	// AnalyzerOptions contains media sidecar and tabular analysis configuration.
	AnalyzerOptions *analyzeropts.Options `json:"analyzer" mapstructure:"analyzer"`

	// CacheOptions contains semantic search cache configuration.
	CacheOptions *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// LedgerOptions contains upload ledger configuration.
	LedgerOptions *ledgeropts.Options `json:"ledger" mapstructure:"ledger"`

	// WeatherOptions contains weather automation configuration.
	WeatherOptions *weatheropts.Options `json:"weather" mapstructure:"weather"`

	// MiddlewareOptions contains HTTP middleware configuration.
	MiddlewareOptions *middlewareopts.Options `json:"middleware" mapstructure:"middleware"`

	// TracingOptions contains OpenTelemetry tracing configuration.
	TracingOptions *tracingopts.Options `json:"tracing" mapstructure:"tracing"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:       httpopts.NewOptions(),
		LogOptions:        logopts.NewOptions(),
		ModelOptions:      modelopts.NewOptions(),
		IntakeOptions:     intakeopts.NewOptions(),
		ScannerOptions:    scanneropts.NewOptions(),
		AnalyzerOptions:   analyzeropts.NewOptions(),
		CacheOptions:      cacheopts.NewOptions(),
		LedgerOptions:     ledgeropts.NewOptions(),
		WeatherOptions:    weatheropts.NewOptions(),
		MiddlewareOptions: middlewareopts.NewOptions(),
		TracingOptions:    tracingopts.NewOptions(),
		ShutdownTimeout:   30 * time.Second,
	}
}

// AddFlags adds every option group to fs.
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	o.HTTPOptions.AddFlags(fs)
	o.LogOptions.AddFlags(fs)
	o.ModelOptions.AddFlags(fs)
	o.IntakeOptions.AddFlags(fs)
	o.ScannerOptions.AddFlags(fs)
	o.AnalyzerOptions.AddFlags(fs)
	o.CacheOptions.AddFlags(fs)
	o.LedgerOptions.AddFlags(fs)
	o.WeatherOptions.AddFlags(fs)
	o.MiddlewareOptions.AddFlags(fs)
	o.TracingOptions.AddFlags(fs)

	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout")
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.HTTPOptions.Complete(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := o.LogOptions.Complete(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := o.ModelOptions.Complete(); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	if err := o.IntakeOptions.Complete(); err != nil {
		return fmt.Errorf("intake: %w", err)
	}
	if err := o.ScannerOptions.Complete(); err != nil {
		return fmt.Errorf("scanner: %w", err)
	}
	if err := o.AnalyzerOptions.Complete(); err != nil {
		return fmt.Errorf("analyzer: %w", err)
	}
	if err := o.CacheOptions.Complete(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := o.LedgerOptions.Complete(); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	if err := o.WeatherOptions.Complete(); err != nil {
		return fmt.Errorf("weather: %w", err)
	}
	if err := o.MiddlewareOptions.Complete(); err != nil {
		return fmt.Errorf("middleware: %w", err)
	}
	if err := o.TracingOptions.Complete(); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 30 * time.Second
	}
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	errs := []error{}

	errs = append(errs, o.HTTPOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	errs = append(errs, o.ModelOptions.Validate()...)
	errs = append(errs, o.IntakeOptions.Validate()...)
	errs = append(errs, o.ScannerOptions.Validate()...)
	errs = append(errs, o.AnalyzerOptions.Validate()...)
	errs = append(errs, o.CacheOptions.Validate()...)
	errs = append(errs, o.LedgerOptions.Validate()...)
	errs = append(errs, o.WeatherOptions.Validate()...)
	errs = append(errs, o.MiddlewareOptions.Validate()...)
	errs = append(errs, o.TracingOptions.Validate()...)

	return utilerrors.NewAggregate(errs)
}

// Config builds an assistant.Config based on ServerOptions.
func (o *ServerOptions) Config() (*assistant.Config, error) {
	return &assistant.Config{
		HTTPOptions:       o.HTTPOptions,
		LogOptions:        o.LogOptions,
		ModelOptions:      o.ModelOptions,
		IntakeOptions:     o.IntakeOptions,
		ScannerOptions:    o.ScannerOptions,
		AnalyzerOptions:   o.AnalyzerOptions,
		CacheOptions:      o.CacheOptions,
		LedgerOptions:     o.LedgerOptions,
		WeatherOptions:    o.WeatherOptions,
		MiddlewareOptions: o.MiddlewareOptions,
		TracingOptions:    o.TracingOptions,
		ShutdownTimeout:   o.ShutdownTimeout,
	}, nil
}
