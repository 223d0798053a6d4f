package rewrite

import (
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/JCorners68/unot/pkg/lru"
)

// Options configures an Engine.
type Options struct {
	// StrictHyphen requires a hyphen between a property prefix and its
	// number: "w-10" is rewritten, "w10" is left alone.
	StrictHyphen bool

	// StrictVariable wraps every numeric value in brackets, including
	// unit-less ones and box-model prefixes ("w10" -> "w-[10]").
	StrictVariable bool

	// VariantGroup enables "hover:(a b)" expansion.
	VariantGroup bool

	// CustomRules run ahead of the built-in table, in order.
	CustomRules []CustomRule

	// Cache memoizes Rewrite results keyed by the raw value. Optional.
	Cache *lru.Cache[string, string]

	Logger zerolog.Logger
}

// DefaultOptions returns the non-strict configuration with variant groups on.
func DefaultOptions() Options {
	return Options{
		VariantGroup: true,
		Logger:       zerolog.Nop(),
	}
}

// CustomRule is a user supplied row: a regular expression applied to the
// whole space-padded value and a replacement template ("${1}cursor-pointer${2}").
type CustomRule struct {
	Pattern string `mapstructure:"pattern" yaml:"pattern" json:"pattern"`
	Replace string `mapstructure:"replace" yaml:"replace" json:"replace"`
}

func (c CustomRule) compile(i int) (Rule, error) {
	re, err := regexp.Compile(c.Pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("custom rule %d %q: %w", i, c.Pattern, err)
	}
	replace := c.Replace
	return Rule{
		Name:    fmt.Sprintf("custom-%d", i),
		Pattern: re,
		Template: func(s string) string {
			return re.ReplaceAllString(s, replace)
		},
	}, nil
}
