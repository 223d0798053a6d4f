package locator

import (
	"fmt"
	"sort"
)

// Position is a location in source text. Line is 1-based, Column is a
// 0-based byte offset into the line and Offset a byte offset into the text.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

func (p Position) before(q Position) bool {
	return p.Line < q.Line || p.Line == q.Line && p.Column < q.Column
}

// Cursor is a caret position as editors report it: 0-based line and column.
type Cursor struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// position translates the cursor into span coordinates. Spans carry 1-based
// lines so the incoming line is shifted by one before any comparison.
func (c Cursor) position() Position {
	return Position{Line: c.Line + 1, Column: c.Column}
}

// Span is the half-open range [Start, End).
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether the character under cur lies in the span. An
// empty span contains the single caret position at its start.
func (s Span) Contains(cur Cursor) bool {
	p := cur.position()
	if s.Start == s.End {
		return p.Line == s.Start.Line && p.Column == s.Start.Column
	}
	return !p.before(s.Start) && p.before(s.End)
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// Text returns the spanned slice of src.
func (s Span) Text(src string) string {
	if s.Start.Offset < 0 || s.End.Offset > len(src) || s.Start.Offset > s.End.Offset {
		return ""
	}
	return src[s.Start.Offset:s.End.Offset]
}

// lineIndex maps byte offsets to positions.
type lineIndex struct {
	starts []int
	size   int
}

func newLineIndex(src string) *lineIndex {
	ix := &lineIndex{starts: []int{0}, size: len(src)}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			ix.starts = append(ix.starts, i+1)
		}
	}
	return ix
}

func (ix *lineIndex) position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > ix.size {
		offset = ix.size
	}
	line := sort.Search(len(ix.starts), func(i int) bool { return ix.starts[i] > offset }) - 1
	return Position{Line: line + 1, Column: offset - ix.starts[line], Offset: offset}
}

func (ix *lineIndex) span(start, end int) Span {
	return Span{Start: ix.position(start), End: ix.position(end)}
}

// offset converts a cursor back to a byte offset, clamped to the text.
func (ix *lineIndex) offset(cur Cursor) int {
	if cur.Line < 0 {
		return 0
	}
	if cur.Line >= len(ix.starts) {
		return ix.size
	}
	off := ix.starts[cur.Line] + cur.Column
	if off > ix.size {
		return ix.size
	}
	return off
}
