package rewrite

import (
	"regexp"
	"strconv"
	"strings"
)

// Placeholders live in the private use area so they never collide with
// class text and are matched by the token patterns as ordinary characters.
const (
	placeholderOpen  = '\ue000'
	placeholderClose = '\ue001'
)

var (
	callStart   = regexp.MustCompile(`(?:repeat|minmax|min|max|clamp|calc|var|url|rgba?|hsla?|hwb|lab|lch|oklab|oklch|color-mix|linear-gradient|radial-gradient|conic-gradient|theme|env|attr)\(`)
	placeholder = regexp.MustCompile("^\ue000([0-9]+)\ue001$")
)

// calls holds the function-call spans cut out of a value.
type calls []string

// protect replaces every balanced function call with a placeholder so that
// commas and spaces inside it do not split tokens. Unbalanced calls are left
// in place.
func protect(s string) (string, calls) {
	var (
		b     strings.Builder
		saved calls
		last  int
	)
	for pos := 0; pos < len(s); {
		loc := callStart.FindStringIndex(s[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		end := closingParen(s, pos+loc[1]-1)
		if end < 0 {
			pos = pos + loc[1]
			continue
		}
		b.WriteString(s[last:start])
		b.WriteRune(placeholderOpen)
		b.WriteString(strconv.Itoa(len(saved)))
		b.WriteRune(placeholderClose)
		saved = append(saved, s[start:end+1])
		last = end + 1
		pos = end + 1
	}
	if saved == nil {
		return s, nil
	}
	b.WriteString(s[last:])
	return b.String(), saved
}

// closingParen returns the index of the parenthesis closing the one at
// open, or -1.
func closingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// restore puts the saved calls back.
func (c calls) restore(s string) string {
	if len(c) == 0 {
		return s
	}
	var b strings.Builder
	for {
		i := strings.IndexRune(s, placeholderOpen)
		if i < 0 {
			break
		}
		j := strings.IndexRune(s[i:], placeholderClose)
		if j < 0 {
			break
		}
		n, err := strconv.Atoi(s[i+len(string(placeholderOpen)) : i+j])
		b.WriteString(s[:i])
		if err != nil || n >= len(c) {
			b.WriteString(s[i : i+j+len(string(placeholderClose))])
		} else {
			b.WriteString(c[n])
		}
		s = s[i+j+len(string(placeholderClose)):]
	}
	b.WriteString(s)
	return b.String()
}

// isPlaceholder reports whether s is exactly one known placeholder.
func (c calls) isPlaceholder(s string) bool {
	m := placeholder.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	n, err := strconv.Atoi(m[1])
	return err == nil && n < len(c)
}
