package rewrite

import (
	"regexp"
	"strings"
)

var (
	borderWidth = regexp.MustCompile(`^(?:border(?:-[trblxyse])?|bb|b)(?:-?\d+(?:px)?)?$`)
	borderStyle = regexp.MustCompile(`^(?:border-)?(?:solid|dashed|dotted|double|hidden|none)$`)
)

// State is the set of raw tokens of the value being rewritten. It is built
// once per Rewrite call from the original input and never mutated.
type State struct {
	tokens map[string]struct{}
}

func newState(value string) State {
	fields := strings.Fields(value)
	s := State{tokens: make(map[string]struct{}, len(fields))}
	for _, f := range fields {
		s.tokens[f] = struct{}{}
	}
	return s
}

// Has reports whether tok appears verbatim in the original value.
func (s State) Has(tok string) bool {
	_, ok := s.tokens[tok]
	return ok
}

// any reports whether pred holds for a token stripped of its important marker.
// Tokens carrying variants are skipped.
func (s State) any(pred func(string) bool) bool {
	for t := range s.tokens {
		if strings.Contains(t, ":") {
			continue
		}
		if pred(strings.TrimPrefix(strings.TrimSuffix(t, "!"), "!")) {
			return true
		}
	}
	return false
}

// HasFlexDisplay reports whether a flex display utility is already present.
func (s State) HasFlexDisplay() bool {
	return s.any(func(t string) bool { return t == "flex" || t == "inline-flex" })
}

// HasBorderWidthOrStyle reports whether a border width or style utility is
// already present.
func (s State) HasBorderWidthOrStyle() bool {
	return s.any(func(t string) bool {
		return borderWidth.MatchString(t) || borderStyle.MatchString(t)
	})
}
