// Package tracing holds the OpenTelemetry export settings.
package tracing

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/naughty-assistant/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Exporter names where spans go.
type Exporter string

const (
	ExporterOTLPGRPC Exporter = "otlp_grpc"
	ExporterOTLPHTTP Exporter = "otlp_http"
	ExporterStdout   Exporter = "stdout"
	ExporterNoop     Exporter = "noop"
)

// Options 链路追踪配置。默认关闭。
type Options struct {
	Enabled     bool   `json:"enabled" mapstructure:"enabled"`
	Environment string `json:"environment" mapstructure:"environment"`

	Exporter Exporter `json:"exporter" mapstructure:"exporter"`
	// Endpoint is host:port of the collector; 4317 for gRPC, 4318 for HTTP.
	Endpoint string            `json:"endpoint" mapstructure:"endpoint"`
	Insecure bool              `json:"insecure" mapstructure:"insecure"`
	Headers  map[string]string `json:"-" mapstructure:"headers"`

	// SampleRatio applies to root spans. Children follow their parent.
	SampleRatio float64 `json:"sample-ratio" mapstructure:"sample-ratio"`

	BatchTimeout  time.Duration `json:"batch-timeout" mapstructure:"batch-timeout"`
	ExportTimeout time.Duration `json:"export-timeout" mapstructure:"export-timeout"`
}

func NewOptions() *Options {
	return &Options{
		Environment:   "development",
		Exporter:      ExporterOTLPGRPC,
		Endpoint:      "localhost:4317",
		Insecure:      true,
		Headers:       map[string]string{},
		SampleRatio:   1,
		BatchTimeout:  5 * time.Second,
		ExportTimeout: 30 * time.Second,
	}
}

func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "tracing."
	fs.BoolVar(&o.Enabled, p+"enabled", o.Enabled, "Export request and model spans with OpenTelemetry.")
	fs.StringVar(&o.Environment, p+"environment", o.Environment, "deployment.environment resource attribute.")
	fs.StringVar((*string)(&o.Exporter), p+"exporter", string(o.Exporter), "Span exporter: otlp_grpc, otlp_http, stdout or noop.")
	fs.StringVar(&o.Endpoint, p+"endpoint", o.Endpoint, "OTLP collector host:port.")
	fs.BoolVar(&o.Insecure, p+"insecure", o.Insecure, "Talk to the collector without TLS.")
	fs.StringToStringVar(&o.Headers, p+"headers", o.Headers, "Extra OTLP request headers, k=v pairs.")
	fs.Float64Var(&o.SampleRatio, p+"sample-ratio", o.SampleRatio, "Fraction of root spans to keep, 0 to 1.")
	fs.DurationVar(&o.BatchTimeout, p+"batch-timeout", o.BatchTimeout, "Longest wait before a span batch is flushed.")
	fs.DurationVar(&o.ExportTimeout, p+"export-timeout", o.ExportTimeout, "Deadline for one export call.")
}

func (o *Options) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}

	var errs []error
	switch o.Exporter {
	case ExporterOTLPGRPC, ExporterOTLPHTTP:
		if o.Endpoint == "" {
			errs = append(errs, fmt.Errorf("tracing.endpoint is required for %s", o.Exporter))
		}
	case ExporterStdout, ExporterNoop:
	default:
		errs = append(errs, fmt.Errorf("tracing.exporter %q is not supported", o.Exporter))
	}
	if o.SampleRatio < 0 || o.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample-ratio must be within [0, 1], got %g", o.SampleRatio))
	}
	if o.BatchTimeout <= 0 || o.ExportTimeout <= 0 {
		errs = append(errs, fmt.Errorf("tracing timeouts must be positive"))
	}
	return errs
}

func (o *Options) Complete() error {
	if o.Headers == nil {
		o.Headers = map[string]string{}
	}
	return nil
}
