// Package ledger provides intake ledger database options.
package ledger

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/kart-io/naughty-assistant/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options 上传记录数据库配置。
type Options struct {
	// Enabled 是否记录上传。
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Driver 数据库驱动（sqlite, mysql, postgres）。
	Driver string `json:"driver" mapstructure:"driver"`

	// DSN 数据源。sqlite 时为文件路径。
	DSN string `json:"-" mapstructure:"dsn"`

	// LogLevel gorm 日志级别（silent, error, warn, info）。
	LogLevel string `json:"log-level" mapstructure:"log-level"`
}

// NewOptions 创建默认配置。
func NewOptions() *Options {
	return &Options{
		Enabled:  true,
		Driver:   "sqlite",
		DSN:      "naughty-assistant.db",
		LogLevel: "warn",
	}
}

// AddFlags adds flags for ledger options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "ledger."
	fs.BoolVar(&o.Enabled, p+"enabled", o.Enabled, "Record upload attempts in the ledger.")
	fs.StringVar(&o.Driver, p+"driver", o.Driver, "Ledger database driver (sqlite, mysql, postgres).")
	fs.StringVar(&o.DSN, p+"dsn", o.DSN, "Ledger database DSN.")
	fs.StringVar(&o.LogLevel, p+"log-level", o.LogLevel, "gorm log level (silent, error, warn, info).")
}

// Validate validates the ledger options.
func (o *Options) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}
	var errs []error
	switch o.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		errs = append(errs, fmt.Errorf("ledger.driver %q not supported", o.Driver))
	}
	if o.DSN == "" {
		errs = append(errs, fmt.Errorf("ledger.dsn is required"))
	}
	return errs
}

// Complete completes the ledger options.
func (o *Options) Complete() error {
	if o.LogLevel == "" {
		o.LogLevel = "warn"
	}
	return nil
}
