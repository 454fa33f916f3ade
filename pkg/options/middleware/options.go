// Package middleware provides HTTP middleware configuration options.
package middleware

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/kart-io/naughty-assistant/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options 汇总所有中间件配置。
type Options struct {
	CORS      *CORSOptions      `json:"cors" mapstructure:"cors"`
	RateLimit *RateLimitOptions `json:"rate-limit" mapstructure:"rate-limit"`
	Logger    *LoggerOptions    `json:"logger" mapstructure:"logger"`
}

// NewOptions creates default middleware options.
func NewOptions() *Options {
	return &Options{
		CORS:      NewCORSOptions(),
		RateLimit: NewRateLimitOptions(),
		Logger:    NewLoggerOptions(),
	}
}

// AddFlags adds flags for all middleware options.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	o.CORS.AddFlags(fs, prefixes...)
	o.RateLimit.AddFlags(fs, prefixes...)
	o.Logger.AddFlags(fs, prefixes...)
}

// Validate validates all middleware options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	errs = append(errs, o.CORS.Validate()...)
	errs = append(errs, o.RateLimit.Validate()...)
	return errs
}

// Complete fills nil sub-options with defaults.
func (o *Options) Complete() error {
	if o.CORS == nil {
		o.CORS = NewCORSOptions()
	}
	if o.RateLimit == nil {
		o.RateLimit = NewRateLimitOptions()
	}
	if o.Logger == nil {
		o.Logger = NewLoggerOptions()
	}
	return nil
}

// CORSOptions defines CORS middleware options.
type CORSOptions struct {
	Enabled          bool     `json:"enabled" mapstructure:"enabled"`
	AllowOrigins     []string `json:"allow-origins" mapstructure:"allow-origins"`
	AllowMethods     []string `json:"allow-methods" mapstructure:"allow-methods"`
	AllowHeaders     []string `json:"allow-headers" mapstructure:"allow-headers"`
	ExposeHeaders    []string `json:"expose-headers" mapstructure:"expose-headers"`
	AllowCredentials bool     `json:"allow-credentials" mapstructure:"allow-credentials"`
	MaxAge           int      `json:"max-age" mapstructure:"max-age"`
}

// NewCORSOptions creates default CORS options. The desktop client calls
// from a local origin, so any origin is allowed by default.
func NewCORSOptions() *CORSOptions {
	return &CORSOptions{
		Enabled:       true,
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        86400,
	}
}

// AddFlags adds flags for CORS options to the specified FlagSet.
func (o *CORSOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.cors."
	fs.BoolVar(&o.Enabled, p+"enabled", o.Enabled, "Enable CORS.")
	fs.StringSliceVar(&o.AllowOrigins, p+"allow-origins", o.AllowOrigins, "CORS allowed origins.")
	fs.StringSliceVar(&o.AllowMethods, p+"allow-methods", o.AllowMethods, "CORS allowed methods.")
	fs.StringSliceVar(&o.AllowHeaders, p+"allow-headers", o.AllowHeaders, "CORS allowed headers.")
	fs.StringSliceVar(&o.ExposeHeaders, p+"expose-headers", o.ExposeHeaders, "CORS exposed headers.")
	fs.BoolVar(&o.AllowCredentials, p+"allow-credentials", o.AllowCredentials, "CORS allow credentials.")
	fs.IntVar(&o.MaxAge, p+"max-age", o.MaxAge, "CORS preflight max age in seconds.")
}

// Validate validates the CORS options.
func (o *CORSOptions) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}
	var errs []error
	if len(o.AllowOrigins) == 0 {
		errs = append(errs, errors.New("CORS: AllowOrigins must be explicitly configured, empty list not allowed"))
	}
	for _, origin := range o.AllowOrigins {
		if origin == "*" && o.AllowCredentials {
			errs = append(errs, errors.New("CORS: cannot use wildcard origin '*' with AllowCredentials=true"))
		}
	}
	return errs
}

// RateLimitOptions 定义按客户端 IP 的令牌桶限流配置。
type RateLimitOptions struct {
	// Enabled 是否启用限流。
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// RPS 每秒补充的令牌数。
	RPS float64 `json:"rps" mapstructure:"rps"`

	// Burst 令牌桶容量。
	Burst int `json:"burst" mapstructure:"burst"`

	// SkipPaths 是跳过限流的路径列表。
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`
}

// NewRateLimitOptions 创建默认的限流选项。
func NewRateLimitOptions() *RateLimitOptions {
	return &RateLimitOptions{
		Enabled:   false,
		RPS:       5,
		Burst:     20,
		SkipPaths: []string{"/healthz", "/metrics"},
	}
}

// AddFlags 为限流选项添加标志到指定的 FlagSet。
func (o *RateLimitOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.rate-limit."
	fs.BoolVar(&o.Enabled, p+"enabled", o.Enabled, "Enable per-client rate limiting.")
	fs.Float64Var(&o.RPS, p+"rps", o.RPS, "Tokens refilled per second per client.")
	fs.IntVar(&o.Burst, p+"burst", o.Burst, "Token bucket size per client.")
	fs.StringSliceVar(&o.SkipPaths, p+"skip-paths", o.SkipPaths, "Paths exempt from rate limiting.")
}

// Validate 验证限流选项。
func (o *RateLimitOptions) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}
	var errs []error
	if o.RPS <= 0 {
		errs = append(errs, errors.New("rate limit rps must be positive"))
	}
	if o.Burst <= 0 {
		errs = append(errs, errors.New("rate limit burst must be positive"))
	}
	return errs
}

// LoggerOptions 访问日志配置。
type LoggerOptions struct {
	// SkipPaths 不记录访问日志的路径。
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`
}

// NewLoggerOptions creates default access log options.
func NewLoggerOptions() *LoggerOptions {
	return &LoggerOptions{
		SkipPaths: []string{"/healthz", "/metrics"},
	}
}

// AddFlags adds flags for access log options.
func (o *LoggerOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.logger."
	fs.StringSliceVar(&o.SkipPaths, p+"skip-paths", o.SkipPaths, "Paths excluded from the access log.")
}
