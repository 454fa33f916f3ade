// Package scanner provides antivirus daemon connection options.
package scanner

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/naughty-assistant/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options clamd connection options.
type Options struct {
	Enabled bool          `json:"enabled" mapstructure:"enabled"`
	Network string        `json:"network" mapstructure:"network"`
	Address string        `json:"address" mapstructure:"address"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions creates default scanner options.
func NewOptions() *Options {
	return &Options{
		Enabled: true,
		Network: "unix",
		Address: "/var/run/clamav/clamd.ctl",
		Timeout: 30 * time.Second,
	}
}

// AddFlags adds flags for scanner options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "scanner."
	fs.BoolVar(&o.Enabled, p+"enabled", o.Enabled, "Scan uploads with clamd.")
	fs.StringVar(&o.Network, p+"network", o.Network, "clamd network (unix, tcp).")
	fs.StringVar(&o.Address, p+"address", o.Address, "clamd socket path or host:port.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Timeout of one scan.")
}

// Validate validates the scanner options.
func (o *Options) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}
	var errs []error
	if o.Network != "unix" && o.Network != "tcp" {
		errs = append(errs, fmt.Errorf("scanner.network must be unix or tcp, got %q", o.Network))
	}
	if o.Address == "" {
		errs = append(errs, fmt.Errorf("scanner.address is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("scanner.timeout must be positive"))
	}
	return errs
}

// Complete completes the scanner options.
func (o *Options) Complete() error {
	return nil
}
