// Package validator reports class tokens that are not in canonical form or
// that no stylesheet rule can serve.
package validator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"

	"github.com/JCorners68/unot/pkg/generator"
	"github.com/JCorners68/unot/pkg/srcscan"
)

// Rewriter turns shorthand class text into canonical form.
type Rewriter interface {
	Rewrite(value string) string
}

// TokenSource harvests the class tokens of one file.
type TokenSource interface {
	Tokens(path string) ([]string, error)
}

// Finding is one reported token and the files it appears in.
type Finding struct {
	Token      string   `json:"token"`
	Suggestion string   `json:"suggestion,omitempty"`
	Files      []string `json:"files"`
}

// Result represents the validation result.
type Result struct {
	Files           int       `json:"files"`
	Tokens          int       `json:"tokens"`
	Unnormalized    []Finding `json:"unnormalized"` // Tokens the rewrite engine would change
	Orphans         []Finding `json:"orphans"`      // Tokens with no generated CSS
	Unused          []string  `json:"unused,omitempty"`
	Matched         int       `json:"matched"`
	OrphanCount     int       `json:"orphan_count"`
	UnusedCount     int       `json:"unused_count"`
	CoveragePercent float64   `json:"coverage_percent"` // Matched / tokens

	used map[string]struct{}
}

// Validator checks source files against a rewrite engine and a generator.
type Validator struct {
	rw   Rewriter
	gen  generator.Generator
	scan TokenSource
}

// New creates a validator. A nil generator skips the orphan check; a nil
// source uses the default scanner.
func New(rw Rewriter, gen generator.Generator, scan TokenSource) *Validator {
	if scan == nil {
		scan = srcscan.New(srcscan.DefaultOptions())
	}
	return &Validator{rw: rw, gen: gen, scan: scan}
}

// Check is a shorthand for New(rw, gen, nil).Check(ctx, files).
func Check(ctx context.Context, rw Rewriter, gen generator.Generator, files []string) (*Result, error) {
	return New(rw, gen, nil).Check(ctx, files)
}

// Check harvests tokens from files and classifies each distinct token.
// Unreadable files and generator failures are reported together; the
// result still covers everything else.
func (v *Validator) Check(ctx context.Context, files []string) (*Result, error) {
	seen := make(map[string][]string)
	var errs error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tokens, err := v.scan.Tokens(f)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, tok := range tokens {
			seen[tok] = append(seen[tok], f)
		}
	}

	result := &Result{
		Files:  len(files),
		Tokens: len(seen),
		used:   make(map[string]struct{}),
	}

	for _, tok := range sortedKeys(seen) {
		canonical := tok
		if v.rw != nil {
			canonical = v.rw.Rewrite(tok)
		}
		if canonical != tok {
			result.Unnormalized = append(result.Unnormalized, Finding{Token: tok, Suggestion: canonical, Files: seen[tok]})
		}
		for _, part := range strings.Fields(canonical) {
			result.used[part] = struct{}{}
		}

		if v.gen == nil {
			result.Matched++
			continue
		}
		ok, err := v.resolves(ctx, canonical)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if ok {
			result.Matched++
			continue
		}
		f := Finding{Token: tok, Files: seen[tok]}
		if canonical != tok {
			f.Suggestion = canonical
		}
		result.Orphans = append(result.Orphans, f)
	}

	result.OrphanCount = len(result.Orphans)
	if result.Tokens > 0 {
		result.CoveragePercent = float64(result.Matched) / float64(result.Tokens) * 100
	} else {
		result.CoveragePercent = 100
	}
	return result, errs
}

// resolves reports whether every part of a canonical value generates CSS.
func (v *Validator) resolves(ctx context.Context, canonical string) (bool, error) {
	parts := strings.Fields(canonical)
	if len(parts) == 0 {
		return false, nil
	}
	for _, part := range parts {
		out, err := v.gen.Generate(ctx, part)
		if err != nil {
			return false, err
		}
		if out == "" {
			return false, nil
		}
	}
	return true, nil
}

// MarkUnused records the defined classes that no checked token uses.
func (r *Result) MarkUnused(defined []string) {
	r.Unused = nil
	for _, class := range defined {
		if _, ok := r.used[class]; !ok {
			r.Unused = append(r.Unused, class)
		}
	}
	sort.Sort(natural.StringSlice(r.Unused))
	r.UnusedCount = len(r.Unused)
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	var s string
	s += fmt.Sprintf("Files:        %d\n", r.Files)
	s += fmt.Sprintf("Tokens:       %d\n", r.Tokens)
	s += fmt.Sprintf("Matched:      %d (%.1f%%)\n", r.Matched, r.CoveragePercent)
	s += fmt.Sprintf("Unnormalized: %d (tokens with a canonical rewrite)\n", len(r.Unnormalized))
	s += fmt.Sprintf("Orphans:      %d (tokens with no CSS)\n", r.OrphanCount)
	if r.UnusedCount > 0 {
		s += fmt.Sprintf("Unused:       %d (CSS classes not in source)\n", r.UnusedCount)
	}
	return s
}

// HasOrphans returns true if there are orphan tokens.
func (r *Result) HasOrphans() bool {
	return r.OrphanCount > 0
}

// HasUnnormalized returns true if any token has a canonical rewrite.
func (r *Result) HasUnnormalized() bool {
	return len(r.Unnormalized) > 0
}

// HasUnused returns true if there are unused CSS classes.
func (r *Result) HasUnused() bool {
	return r.UnusedCount > 0
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))
	return keys
}
