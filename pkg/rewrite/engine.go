// Package rewrite normalizes utility-class attribute values.
//
// An Engine folds an ordered table of rules over a whole attribute value.
// Each rule is one global substitution; later rules see the output of
// earlier ones. Unrecognized tokens pass through unchanged.
package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/JCorners68/unot/pkg/lru"
)

// maxDepth bounds variant group recursion.
const maxDepth = 8

var classAttr = regexp.MustCompile(`(^|[\s<])((?:v-bind)?:?class(?:Name)?)="([^"]*)"`)

// Engine rewrites attribute values. It is safe for concurrent use once built.
type Engine struct {
	opts    Options
	prelude []Rule
	rules   []Rule
	cache   *lru.Cache[string, string]
	log     zerolog.Logger
}

// pass carries the per-call context every rule may read.
type pass struct {
	engine *Engine
	state  State
	calls  calls
	depth  int
}

// New builds an Engine. It fails only when a custom rule does not compile.
func New(opts Options) (*Engine, error) {
	e := &Engine{
		opts:  opts,
		cache: opts.Cache,
		log:   opts.Logger,
		prelude: []Rule{
			{Name: "bracket-group", Pattern: bracketGroup, Replace: expandBracketGroup},
			{Name: "important-suffix", Pattern: importantSuffix, Replace: moveImportant},
		},
	}
	for i, c := range opts.CustomRules {
		r, err := c.compile(i)
		if err != nil {
			return nil, err
		}
		e.rules = append(e.rules, r)
	}
	e.rules = append(e.rules, builtinRules(opts)...)
	return e, nil
}

// MustNew is New for option sets known to be valid.
func MustNew(opts Options) *Engine {
	e, err := New(opts)
	if err != nil {
		panic(err)
	}
	return e
}

// Rules lists the names of the active rules in application order.
func (e *Engine) Rules() []string {
	names := make([]string, 0, len(e.prelude)+len(e.rules))
	for _, r := range e.prelude {
		names = append(names, r.Name)
	}
	for _, r := range e.rules {
		names = append(names, r.Name)
	}
	return names
}

// Rewrite returns value with every recognized shorthand expanded.
func (e *Engine) Rewrite(value string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}
	if e.cache != nil {
		if out, ok := e.cache.Get(value); ok {
			return out
		}
	}
	out := e.rewrite(value, 0)
	if e.cache != nil {
		e.cache.Set(value, out)
	}
	return out
}

func (e *Engine) rewrite(value string, depth int) (out string) {
	if depth > maxDepth {
		return value
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Debug().Str("value", value).Str("panic", fmt.Sprint(r)).Msg("rewrite recovered")
			out = value
		}
	}()

	p := &pass{engine: e, state: newState(value), depth: depth}

	s, saved := protect(" " + value)
	p.calls = saved
	for _, r := range e.prelude {
		s = r.apply(p, s)
	}
	s = saved.restore(s)

	for _, r := range e.rules {
		next := r.apply(p, s)
		if next != s {
			e.log.Trace().Str("rule", r.Name).Str("in", s).Str("out", next).Msg("rule applied")
		}
		s = next
	}
	return strings.TrimPrefix(s, " ")
}

// RewriteAttributes rewrites the value of every double quoted class,
// className, :class and v-bind:class attribute in text. Bound attributes
// hold script expressions, so only their string literals are rewritten.
func (e *Engine) RewriteAttributes(text string) string {
	return classAttr.ReplaceAllStringFunc(text, func(attr string) string {
		m := classAttr.FindStringSubmatch(attr)
		name, value := m[2], m[3]
		if strings.HasPrefix(name, ":") || strings.HasPrefix(name, "v-bind:") {
			value = e.rewriteLiterals(value)
		} else {
			value = e.Rewrite(value)
		}
		return m[1] + name + `="` + value + `"`
	})
}
