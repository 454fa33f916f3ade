// Package options holds the flag-backed option groups of the assistant.
// Each sub package owns one concern and implements IOptions.
package options

import (
	"strings"

	"github.com/spf13/pflag"
)

// IOptions is implemented by every option group.
type IOptions interface {
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
	// Complete derives defaults after flags and config are parsed.
	Complete() error
	Validate() []error
}

// Join builds a flag prefix: Join("cache", "redis") is "cache.redis.".
// No prefixes yield "".
func Join(prefixes ...string) string {
	p := strings.Join(prefixes, ".")
	if p == "" {
		return p
	}
	return p + "."
}
