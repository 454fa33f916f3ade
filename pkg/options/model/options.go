// Package model provides generation model configuration options.
package model

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/naughty-assistant/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options 定义生成模型配置。
type Options struct {
	// Provider 供应商名称（ollama, openai）。
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL API 基础地址。
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey API 密钥（openai 需要）。
	APIKey string `json:"api-key" mapstructure:"api-key"`

	// Model 使用的模型名称。
	Model string `json:"model" mapstructure:"model"`

	// Organization 组织 ID（openai 可选）。
	Organization string `json:"organization" mapstructure:"organization"`

	// Timeout 单次 HTTP 请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// GenerateTimeout 一次生成调用的整体超时。
	GenerateTimeout time.Duration `json:"generate-timeout" mapstructure:"generate-timeout"`

	// LoadTimeout 启动时加载探测的超时。
	LoadTimeout time.Duration `json:"load-timeout" mapstructure:"load-timeout"`
}

// NewOptions 创建默认模型配置。
func NewOptions() *Options {
	return &Options{
		Provider:        "ollama",
		BaseURL:         "http://localhost:11434",
		Model:           "llama3",
		Timeout:         120 * time.Second,
		GenerateTimeout: 60 * time.Second,
		LoadTimeout:     10 * time.Second,
	}
}

// ToConfigMap 转换为配置 map，用于供应商工厂。
func (o *Options) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":     o.BaseURL,
		"api_key":      o.APIKey,
		"chat_model":   o.Model,
		"timeout":      o.Timeout,
		"max_retries":  0,
		"organization": o.Organization,
	}
}

// AddFlags adds flags for model options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "model."
	fs.StringVar(&o.Provider, p+"provider", o.Provider, "Model provider (ollama, openai).")
	fs.StringVar(&o.BaseURL, p+"base-url", o.BaseURL, "Model API base URL.")
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "Model API key.")
	fs.StringVar(&o.Model, p+"model", o.Model, "Model name.")
	fs.StringVar(&o.Organization, p+"organization", o.Organization, "Organization ID (optional).")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Per-request HTTP timeout.")
	fs.DurationVar(&o.GenerateTimeout, p+"generate-timeout", o.GenerateTimeout, "Overall timeout of one generation call.")
	fs.DurationVar(&o.LoadTimeout, p+"load-timeout", o.LoadTimeout, "Timeout of the startup model check.")
}

// Validate validates the model options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("model.provider is required"))
	}
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("model.base-url is required"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("model.model is required"))
	}
	if o.Provider == "openai" && o.APIKey == "" {
		errs = append(errs, fmt.Errorf("model.api-key is required for openai provider"))
	}
	if o.Timeout <= 0 || o.GenerateTimeout <= 0 {
		errs = append(errs, fmt.Errorf("model timeouts must be positive"))
	}
	return errs
}

// Complete completes the model options with defaults.
func (o *Options) Complete() error {
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = 10 * time.Second
	}
	return nil
}
