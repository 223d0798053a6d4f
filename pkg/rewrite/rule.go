package rewrite

import (
	"regexp"
	"strings"
)

// Token patterns share one shape: a leading delimiter, an optional variant
// chain, an important marker, a negative sign, the rule body and a trailing
// delimiter. The trailing delimiter is matched but never consumed so that it
// can lead the next token.
const (
	leadDelim  = `([\s'"\x60])`
	tokenMods  = `((?:[\w-]+:)*)(!?)(-?)`
	trailDelim = `([\s'"\x60]|$)`
)

func token(body string) *regexp.Regexp {
	return regexp.MustCompile(leadDelim + tokenMods + body + trailDelim)
}

// Rule is one row of the rewrite table.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp

	// Replace renders one token match. Used by built-in rows.
	Replace func(p *pass, m match) string

	// Template rewrites the whole value at once. Used by custom rows.
	Template func(s string) string
}

func (r Rule) apply(p *pass, s string) string {
	if r.Template != nil {
		return r.Template(s)
	}

	var b strings.Builder
	last, pos := 0, 0
	for pos < len(s) {
		loc := r.Pattern.FindStringSubmatchIndex(s[pos:])
		if loc == nil {
			break
		}
		n := len(loc) / 2
		m := make(match, n-1)
		for i := 0; i < n-1; i++ {
			if loc[2*i] >= 0 {
				m[i] = s[pos+loc[2*i] : pos+loc[2*i+1]]
			}
		}
		start := pos + loc[0]
		end := pos + loc[2*(n-1)]
		if loc[2*(n-1)] < 0 {
			end = pos + loc[1]
		}
		m[0] = s[start:end]

		b.WriteString(s[last:start])
		b.WriteString(r.Replace(p, m))
		last = end
		if end > start {
			pos = end
		} else {
			pos = end + 1
		}
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

// match holds the submatches of one token without the trailing delimiter.
// Index 0 is the whole token including its leading delimiter.
type match []string

func (m match) lead() string     { return m[1] }
func (m match) variants() string { return m[2] }
func (m match) important() bool  { return m[3] != "" }
func (m match) negative() bool   { return m[4] != "" }

// group returns the i-th body group, counting from 1.
func (m match) group(i int) string {
	if 4+i >= len(m) {
		return ""
	}
	return m[4+i]
}

// mods is the prefix every emitted token carries: variants, then "!".
func (m match) mods() string {
	if m.important() {
		return m.variants() + "!"
	}
	return m.variants()
}

// emit renders tokens after the leading delimiter. The negative sign, if
// any, is kept on the first token only.
func (m match) emit(tokens ...string) string {
	var b strings.Builder
	b.WriteString(m.lead())
	for i, t := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(m.mods())
		if i == 0 && m.negative() {
			b.WriteByte('-')
		}
		b.WriteString(t)
	}
	return b.String()
}
