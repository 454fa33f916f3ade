// Package weather provides weather API options.
package weather

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/naughty-assistant/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options OpenWeatherMap client options.
type Options struct {
	BaseURL string        `json:"base-url" mapstructure:"base-url"`
	APIKey  string        `json:"-" mapstructure:"api-key"`
	Units   string        `json:"units" mapstructure:"units"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions creates default weather options.
func NewOptions() *Options {
	return &Options{
		BaseURL: "https://api.openweathermap.org",
		Units:   "metric",
		Timeout: 10 * time.Second,
	}
}

// AddFlags adds flags for weather options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "weather."
	fs.StringVar(&o.BaseURL, p+"base-url", o.BaseURL, "Weather API base URL.")
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "Weather API key.")
	fs.StringVar(&o.Units, p+"units", o.Units, "Units (metric, imperial, standard).")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Weather API timeout.")
}

// Validate validates the weather options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("weather.base-url is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("weather.timeout must be positive"))
	}
	return errs
}

// Complete completes the weather options.
func (o *Options) Complete() error {
	if o.Units == "" {
		o.Units = "metric"
	}
	return nil
}
