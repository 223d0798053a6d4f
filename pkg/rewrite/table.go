package rewrite

import (
	"regexp"
	"sort"
	"strings"
)

const (
	number = `(\d+(?:\.\d+)?|\.\d+)`
	units  = `(px|rem|em|%|vmin|vmax|vw|vh|ch|ex|pt|deg|ms|s|fr)?`
)

// numericPrefixes may be followed directly by a number.
var numericPrefixes = []string{
	"w", "h", "min-w", "min-h", "max-w", "max-h",
	"m", "mx", "my", "mt", "mr", "mb", "ml", "ms", "me",
	"p", "px", "py", "pt", "pr", "pb", "pl", "ps", "pe",
	"gap", "gap-x", "gap-y", "space-x", "space-y",
	"top", "right", "bottom", "left", "inset", "inset-x", "inset-y",
	"border", "border-t", "border-r", "border-b", "border-l", "border-x", "border-y",
	"border-spacing", "border-spacing-x", "border-spacing-y", "divide-x", "divide-y",
	"b", "bb", "border-rd", "rounded", "rounded-t", "rounded-r", "rounded-b", "rounded-l",
	"text", "font", "leading", "lh", "tracking", "indent",
	"translate-x", "translate-y", "scale", "scale-x", "scale-y", "rotate", "skew-x", "skew-y",
	"opacity", "z", "order", "basis", "columns", "line-clamp",
	"duration", "delay", "blur", "brightness", "contrast", "saturate",
	"outline", "outline-offset", "ring", "ring-offset", "stroke",
}

// prefixAliases are the dialect's own abbreviations.
var prefixAliases = map[string]string{
	"b":         "border",
	"bb":        "border-b",
	"border-rd": "rounded",
	"lh":        "leading",
}

// boxModel prefixes join length values with a hyphen instead of brackets
// unless StrictVariable is set.
var boxModel = map[string]bool{
	"w": true, "h": true, "min-w": true, "min-h": true, "max-w": true, "max-h": true,
	"m": true, "mx": true, "my": true, "mt": true, "mr": true, "mb": true, "ml": true, "ms": true, "me": true,
	"p": true, "px": true, "py": true, "pt": true, "pr": true, "pb": true, "pl": true, "ps": true, "pe": true,
	"gap": true, "gap-x": true, "gap-y": true, "space-x": true, "space-y": true,
	"top": true, "right": true, "bottom": true, "left": true, "inset": true, "inset-x": true, "inset-y": true,
}

var lengthUnits = map[string]bool{"px": true, "rem": true, "em": true, "vw": true, "vh": true}

var fontWeights = map[string]string{
	"100": "thin",
	"200": "extralight",
	"300": "light",
	"400": "normal",
	"500": "medium",
	"600": "semibold",
	"700": "bold",
	"800": "extrabold",
	"900": "black",
}

var textSizes = map[string]string{
	"12": "xs",
	"14": "sm",
	"16": "base",
	"18": "lg",
	"20": "xl",
	"24": "2xl",
	"30": "3xl",
	"36": "4xl",
	"48": "5xl",
	"60": "6xl",
	"72": "7xl",
	"96": "8xl",
	"128": "9xl",
}

const colorPrefixes = `bg|text|border(?:-[trblxyse])?|bb|b|outline|ring-offset|ring|fill|stroke|decoration|accent|caret|shadow|divide|placeholder|from|via|to`

// aliases expand one fixed token into canonical utilities.
var aliases = []struct{ from, to string }{
	{"border-box", "box-border"},
	{"content-box", "box-content"},
	{"x-hidden", "overflow-x-hidden"},
	{"y-hidden", "overflow-y-hidden"},
	{"align-center", "items-center"},
	{"eclipse", "whitespace-nowrap overflow-hidden text-ellipsis"},
	{"ellipsis", "whitespace-nowrap overflow-hidden text-ellipsis"},
	{"pointer-none", "pointer-events-none"},
	{"pointer", "cursor-pointer"},
	{"position-center", "left-0 right-0 top-0 bottom-0"},
	{"dashed", "border-dashed"},
	{"dotted", "border-dotted"},
	{"double", "border-double"},
	{"contain", "bg-contain"},
	{"cover", "bg-cover"},
}

var (
	argSpaceAroundComma = regexp.MustCompile(`\s*,\s*`)
	argSlash            = regexp.MustCompile(`\s*/\s*`)
	argSpaces           = regexp.MustCompile(`\s+`)
)

// normalizeArgs collapses color function arguments to comma separated form:
// "rgba(0 0 0 / .5)" -> "rgba(0,0,0,.5)".
func normalizeArgs(call string) string {
	open := strings.IndexByte(call, '(')
	if open < 0 || !strings.HasSuffix(call, ")") {
		return call
	}
	args := strings.TrimSpace(call[open+1 : len(call)-1])
	args = argSpaceAroundComma.ReplaceAllString(args, ",")
	args = argSlash.ReplaceAllString(args, ",")
	args = argSpaces.ReplaceAllString(args, ",")
	return call[:open] + "(" + args + ")"
}

func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

func resolvePrefix(prefix string) string {
	if alias, ok := prefixAliases[prefix]; ok {
		return alias
	}
	return prefix
}

const colorCall = `(?:rgba?|hsla?)\([^()]*\)`

// optBracket matches inner either as "[inner]" or bare. It adds three groups:
// the opening bracket, the bracketed inner text and the bare inner text.
func optBracket(inner string) string {
	return `(?:(\[)\s*(` + inner + `)\s*\]|(` + inner + `))`
}

func isBorderPrefix(prefix string) bool {
	return prefix == "border" || strings.HasPrefix(prefix, "border-") && !strings.HasPrefix(prefix, "border-spacing")
}

// isHairlinePrefix reports whether a width of 1 collapses to the bare prefix.
func isHairlinePrefix(prefix string) bool {
	return isBorderPrefix(prefix) || prefix == "divide-x" || prefix == "divide-y"
}

// builtinRules returns the rule table for opts, in application order.
func builtinRules(opts Options) []Rule {
	sep := `-?`
	if opts.StrictHyphen {
		sep = `-`
	}

	var rules []Rule
	add := func(name string, re *regexp.Regexp, fn func(*pass, match) string) {
		rules = append(rules, Rule{Name: name, Pattern: re, Replace: fn})
	}

	// Exact shorthands.
	add("wh", token(`wh`+sep+`(\d+(?:\.\d+)?(?:px|rem|em|%|vw|vh)?|full|screen|auto|min|max|fit)`),
		func(_ *pass, m match) string {
			v := m.group(1)
			return m.emit("w-"+v, "h-"+v)
		})
	if !opts.StrictHyphen {
		add("flex-n", token(`flex(\d+)`), func(_ *pass, m match) string {
			return m.emit("flex-" + m.group(1))
		})
	}

	// Axis renames.
	add("min-max", token(`(max|min)(w|h)([^\s'"\x60]*)`), func(_ *pass, m match) string {
		return m.emit(m.group(1) + "-" + m.group(2) + m.group(3))
	})
	add("axis", token(`(translate|scale|skew|gap|space|inset|overflow|divide|border-spacing)(x|y)([^\s'"\x60]*)`),
		func(_ *pass, m match) string {
			return m.emit(m.group(1) + "-" + m.group(2) + m.group(3))
		})

	// Keyword and numeric suffixes.
	add("keyword", token(`(min-w|min-h|max-w|max-h|w|h)`+sep+`(full|screen|auto|min|max|fit|none|px)`),
		func(_ *pass, m match) string {
			return m.emit(m.group(1) + "-" + m.group(2))
		})
	add("numeric", token(`(`+alternation(numericPrefixes)+`)`+sep+number+units),
		func(p *pass, m match) string {
			return m.emit(numeric(p.engine.opts, resolvePrefix(m.group(1)), m.group(2), m.group(3)))
		})

	if opts.VariantGroup {
		add("variant-group", regexp.MustCompile(leadDelim+`((?:[\w-]+:)+)(!?)\(((?:[^()]|\([^()]*\))*)\)`+trailDelim),
			expandVariantGroup)
	}

	// Colors.
	// A bracket opened around a literal must also be closed; otherwise the
	// token is left alone.
	add("color-hex", token(`(`+colorPrefixes+`)-?`+optBracket(`#[0-9a-fA-F]{3,8}`)), func(p *pass, m match) string {
		return colorToken(p, m, resolvePrefix(m.group(1)), m.group(3)+m.group(4), m.group(2) != "")
	})
	add("color-func", token(`(`+colorPrefixes+`)-?`+optBracket(colorCall)), func(p *pass, m match) string {
		return colorToken(p, m, resolvePrefix(m.group(1)), normalizeArgs(m.group(3)+m.group(4)), m.group(2) != "")
	})
	add("hex", token(`([a-z][\w-]*?)-(#[0-9a-fA-F]{3,8})`), func(_ *pass, m match) string {
		return m.emit(m.group(1) + "-[" + m.group(2) + "]")
	})

	// Argument normalization.
	add("func", token(`([a-z][\w-]*?)-`+optBracket(colorCall)), func(_ *pass, m match) string {
		return m.emit(m.group(1) + "-[" + normalizeArgs(m.group(3)+m.group(4)) + "]")
	})
	add("calc", token(`([a-z][\w-]*?)-?`+optBracket(`calc\((?:[^()]|\([^()]*\))*\)`)), func(_ *pass, m match) string {
		return m.emit(resolvePrefix(m.group(1)) + "-[" + argSpaces.ReplaceAllString(m.group(3)+m.group(4), "") + "]")
	})

	// Aliases.
	for _, a := range aliases {
		to := strings.Fields(a.to)
		add(a.from, token(`(`+regexp.QuoteMeta(a.from)+`)`), func(_ *pass, m match) string {
			return m.emit(to...)
		})
	}
	add("flex-center", token(`(flex-center)`), func(p *pass, m match) string {
		if p.state.HasFlexDisplay() {
			return m.emit("justify-center", "items-center")
		}
		return m.emit("flex", "justify-center", "items-center")
	})
	add("col", token(`(col)`), func(p *pass, m match) string {
		if p.state.HasFlexDisplay() {
			return m.emit("flex-col")
		}
		return m.emit("flex", "flex-col")
	})
	add("line-clamp", token(`line(\d+)`), func(_ *pass, m match) string {
		return m.emit("line-clamp-" + m.group(1))
	})

	add("negation", regexp.MustCompile(leadDelim+`!\(((?:[^()]|\([^()]*\))*)\)`+trailDelim), expandNegation)

	return rules
}

// numeric renders prefix+number+unit in canonical form.
func numeric(opts Options, prefix, num, unit string) string {
	switch {
	case prefix == "font" && unit == "":
		if w, ok := fontWeights[num]; ok {
			return "font-" + w
		}
	case prefix == "text" && !opts.StrictVariable && (unit == "" || unit == "px"):
		if size, ok := textSizes[num]; ok {
			return "text-" + size
		}
	case isHairlinePrefix(prefix) && num == "1" && (unit == "" || unit == "px"):
		return prefix
	}

	value := num + unit
	switch {
	case opts.StrictVariable:
		return prefix + "-[" + value + "]"
	case unit == "":
		return prefix + "-" + value
	case boxModel[prefix] && lengthUnits[unit]:
		return prefix + "-" + value
	}
	return prefix + "-[" + value + "]"
}

// colorToken brackets a color literal and, for a border family prefix written
// without brackets, adds the width and style utilities the color needs unless
// the original value already has one.
func colorToken(p *pass, m match, prefix, color string, bracketed bool) string {
	tok := prefix + "-[" + color + "]"
	if bracketed || !isBorderPrefix(prefix) || p.state.HasBorderWidthOrStyle() {
		return m.emit(tok)
	}
	return m.emit(tok, prefix, "border-solid")
}

// expandVariantGroup distributes "hover:(a b)" into "hover:a hover:b". The
// group body is rewritten on its own first.
func expandVariantGroup(p *pass, m match) string {
	variants, important, body := m[2], m[3] != "", m[4]
	inner := p.engine.rewrite(body, p.depth+1)

	fields := strings.Fields(inner)
	if len(fields) == 0 {
		return m[0]
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		if important && !strings.HasPrefix(f, "!") {
			f = "!" + f
		}
		out[i] = variants + f
	}
	return m[1] + strings.Join(out, " ")
}

// expandNegation distributes "!(a b)" into "!a !b" without rewriting the
// inner tokens.
func expandNegation(_ *pass, m match) string {
	fields := strings.Fields(m[2])
	if len(fields) == 0 {
		return m[0]
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = markImportant(f)
	}
	return m[1] + strings.Join(out, " ")
}

// markImportant places "!" after the variant chain of tok.
func markImportant(tok string) string {
	i := strings.LastIndexByte(tok, ':')
	head, rest := tok[:i+1], tok[i+1:]
	if strings.HasPrefix(rest, "!") {
		return tok
	}
	return head + "!" + rest
}
