package rewrite

import "strings"

var (
	bracketGroup = token(`([\w-]+?)-\[([^\]\s]*,[^\]\s]*)\]`)

	// Runs while calls are still protected so that spaces inside them
	// cannot split the token.
	importantSuffix = token(`([^\s'"\x60!]+)!`)
)

// expandBracketGroup turns "text-[pink,hover:2xl,#fff]" into
// "text-pink hover:text-2xl text-[#fff]". Any item it cannot read confidently
// abandons the whole group.
func expandBracketGroup(p *pass, m match) string {
	prefix, content := m.group(1), m.group(2)

	items := strings.Split(content, ",")
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" || strings.ContainsAny(item, "()[]") {
			return m[0]
		}
		var variants, value string
		if i := strings.LastIndexByte(item, ':'); i >= 0 {
			variants, value = item[:i+1], item[i+1:]
		} else {
			value = item
		}
		if value == "" || strings.Contains(variants, "::") {
			return m[0]
		}
		if strings.ContainsRune(value, placeholderOpen) && !p.calls.isPlaceholder(value) {
			return m[0]
		}

		var b strings.Builder
		b.WriteString(m.variants())
		b.WriteString(variants)
		if m.important() {
			b.WriteByte('!')
		}
		if m.negative() {
			b.WriteByte('-')
		}
		b.WriteString(prefix)
		b.WriteByte('-')
		if p.calls.isPlaceholder(value) || strings.HasPrefix(value, "#") {
			b.WriteString("[" + value + "]")
		} else {
			b.WriteString(value)
		}
		out = append(out, b.String())
	}
	return m.lead() + strings.Join(out, " ")
}

// moveImportant rewrites the suffix form "w15!" to the canonical "!w15".
func moveImportant(_ *pass, m match) string {
	return m.lead() + m.variants() + "!" + m[4] + m.group(1)
}
