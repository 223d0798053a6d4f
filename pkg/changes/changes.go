// Package changes turns rewritten class attributes into edit lists and
// applies them as one edit.
package changes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/JCorners68/unot/pkg/locator"
	"github.com/JCorners68/unot/pkg/rewrite"
)

// ErrOverlap is returned by Apply when two changes cover the same text.
var ErrOverlap = errors.New("overlapping changes")

// Change replaces the text between Start and End with Content.
type Change struct {
	Content  string           `json:"content"`
	Original string           `json:"original"`
	Start    locator.Position `json:"start"`
	End      locator.Position `json:"end"`
}

// Rewriter normalizes a class value.
type Rewriter interface {
	Rewrite(value string) string
}

// Collect rewrites every class attribute of src and returns a change for
// each value the rewriter altered. Bound expressions are rewritten one
// string literal at a time so identifiers are never touched.
func Collect(ctx context.Context, r Rewriter, kind locator.Kind, src string) ([]Change, error) {
	doc, err := locator.Parse(ctx, kind, src)
	if err != nil {
		return nil, fmt.Errorf("collect changes: %w", err)
	}

	var out []Change
	for _, attr := range doc.ClassAttributes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := attr.ValueSpan.Start.Offset
		if !attr.Expression {
			out = appendChange(out, doc, r, start, attr.Value)
			continue
		}
		for _, lit := range rewrite.Literals(attr.Value) {
			out = appendChange(out, doc, r, start+lit.Start, attr.Value[lit.Start:lit.End])
		}
	}
	return out, nil
}

func appendChange(out []Change, doc *locator.Document, r Rewriter, offset int, value string) []Change {
	if strings.TrimSpace(value) == "" {
		return out
	}
	next := r.Rewrite(value)
	if next == value {
		return out
	}
	return append(out, Change{
		Content:  next,
		Original: value,
		Start:    doc.Position(offset),
		End:      doc.Position(offset + len(value)),
	})
}

// Apply performs all changes against src at once. Offsets refer to src;
// changes are never applied to each other's output.
func Apply(src string, changes []Change) (string, error) {
	if len(changes) == 0 {
		return src, nil
	}
	sorted := make([]Change, len(changes))
	copy(sorted, changes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Offset < sorted[j].Start.Offset
	})

	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for i, c := range sorted {
		s, e := c.Start.Offset, c.End.Offset
		if s < 0 || e > len(src) || s > e {
			return "", fmt.Errorf("change %d: range [%d,%d) outside text of length %d", i, s, e, len(src))
		}
		if s < last {
			return "", fmt.Errorf("change at %s: %w", c.Start, ErrOverlap)
		}
		b.WriteString(src[last:s])
		b.WriteString(c.Content)
		last = e
	}
	b.WriteString(src[last:])
	return b.String(), nil
}
