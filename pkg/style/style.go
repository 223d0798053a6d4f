// Package style converts inline CSS declarations into utility classes.
package style

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Rewriter canonicalizes a class value.
type Rewriter interface {
	Rewrite(value string) string
}

// Result is the outcome of a conversion.
type Result struct {
	// Classes is the space separated utility list.
	Classes string `json:"classes"`
	// Unconverted holds the declarations that have no utility form,
	// written "prop: value".
	Unconverted []string `json:"unconverted,omitempty"`
}

var styleAttr = regexp.MustCompile(`style="([^"]+)"`)

// prefixes maps properties whose value becomes the utility suffix.
var prefixes = map[string]string{
	"width": "w", "height": "h",
	"min-width": "minw", "max-width": "maxw",
	"min-height": "minh", "max-height": "maxh",
	"margin": "m", "margin-top": "mt", "margin-right": "mr", "margin-bottom": "mb", "margin-left": "ml",
	"padding": "p", "padding-top": "pt", "padding-right": "pr", "padding-bottom": "pb", "padding-left": "pl",
	"gap": "gap", "row-gap": "gapy", "column-gap": "gapx",
	"top": "top", "right": "right", "bottom": "bottom", "left": "left",
	"z-index": "z", "line-height": "lh", "font-weight": "font",
	"color": "text", "background-color": "bg", "background": "bg", "border-color": "border",
	"border-radius": "border-rd", "flex": "flex", "order": "order",
}

// keywordPrefixes maps properties whose keyword value is appended as is.
var keywordPrefixes = map[string]string{
	"cursor": "cursor", "overflow": "overflow", "overflow-x": "overflow-x", "overflow-y": "overflow-y",
	"white-space": "whitespace", "object-fit": "object", "pointer-events": "pointer-events",
}

var keywords = map[string]map[string]string{
	"display": {
		"flex": "flex", "inline-flex": "inline-flex", "block": "block", "inline-block": "inline-block",
		"inline": "inline", "grid": "grid", "inline-grid": "inline-grid", "contents": "contents", "none": "hidden",
	},
	"position": {
		"static": "static", "relative": "relative", "absolute": "absolute", "fixed": "fixed", "sticky": "sticky",
	},
	"justify-content": {
		"center": "justify-center", "flex-start": "justify-start", "start": "justify-start",
		"flex-end": "justify-end", "end": "justify-end", "space-between": "justify-between",
		"space-around": "justify-around", "space-evenly": "justify-evenly",
	},
	"align-items": {
		"center": "items-center", "flex-start": "items-start", "start": "items-start", "flex-end": "items-end",
		"end": "items-end", "baseline": "items-baseline", "stretch": "items-stretch",
	},
	"flex-direction": {
		"row": "flex-row", "column": "flex-col", "row-reverse": "flex-row-reverse", "column-reverse": "flex-col-reverse",
	},
	"flex-wrap":       {"wrap": "flex-wrap", "nowrap": "flex-nowrap", "wrap-reverse": "flex-wrap-reverse"},
	"text-align":      {"left": "text-left", "center": "text-center", "right": "text-right", "justify": "text-justify"},
	"box-sizing":      {"border-box": "box-border", "content-box": "box-content"},
	"visibility":      {"hidden": "invisible", "visible": "visible"},
	"text-overflow":   {"ellipsis": "text-ellipsis", "clip": "text-clip"},
	"font-style":      {"italic": "italic", "normal": "not-italic"},
	"text-decoration": {"underline": "underline", "line-through": "line-through", "none": "no-underline"},
	"word-break":      {"break-all": "break-all", "keep-all": "break-keep"},
}

// Convert turns "prop: value; ..." or a style="..." attribute into
// utilities canonicalized by r. ok is false when nothing converted.
func Convert(r Rewriter, text string) (Result, bool) {
	if m := styleAttr.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	var res Result
	var tokens []string
	for _, d := range declarations(text) {
		toks, ok := utilities(d.prop, d.value)
		if !ok {
			res.Unconverted = append(res.Unconverted, d.prop+": "+d.value)
			continue
		}
		for _, tok := range toks {
			if d.important {
				tok += "!"
			}
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return res, false
	}
	res.Classes = r.Rewrite(strings.Join(tokens, " "))
	return res, true
}

type declaration struct {
	prop, value string
	important   bool
}

// declarations parses an inline declaration list. Malformed declarations
// are dropped.
func declarations(text string) []declaration {
	p := css.NewParser(parse.NewInputString(text), true)

	var out []declaration
	stuck := -1
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if p.HasParseError() && p.Offset() != stuck {
				stuck = p.Offset()
				continue
			}
			return out
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			var sb strings.Builder
			for _, t := range p.Values() {
				sb.Write(t.Data)
			}
			d := declaration{prop: string(data), value: strings.TrimSpace(sb.String())}
			if v, ok := strings.CutSuffix(d.value, "!important"); ok {
				d.value, d.important = strings.TrimSpace(v), true
			}
			out = append(out, d)
		}
	}
}

// boxSides lists the prefixes a multi-value margin or padding expands to,
// keyed by the number of values.
var boxSides = map[string]map[int][]string{
	"margin": {
		2: {"my", "mx"},
		3: {"mt", "mx", "mb"},
		4: {"mt", "mr", "mb", "ml"},
	},
	"padding": {
		2: {"py", "px"},
		3: {"pt", "px", "pb"},
		4: {"pt", "pr", "pb", "pl"},
	},
}

// utilities builds the shorthand tokens for one declaration. Only margin
// and padding accept more than one value.
func utilities(prop, value string) ([]string, bool) {
	fields := topLevelFields(value)
	switch len(fields) {
	case 0:
		return nil, false
	case 1:
		tok, ok := utility(prop, fields[0])
		if !ok {
			return nil, false
		}
		return []string{tok}, true
	}
	sides, ok := boxSides[prop][len(fields)]
	if !ok {
		return nil, false
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = sized(sides[i], f)
	}
	return out, true
}

// utility builds the shorthand token for a single valued declaration.
func utility(prop, value string) (string, bool) {
	if set, ok := keywords[prop]; ok {
		u, ok := set[value]
		return u, ok
	}
	if prefix, ok := keywordPrefixes[prop]; ok {
		return prefix + "-" + value, true
	}

	switch prop {
	case "font-size":
		return "text-[" + value + "]", true
	case "opacity":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return "", false
		}
		return "opacity-" + strconv.Itoa(int(math.Round(f*100))), true
	}

	prefix, ok := prefixes[prop]
	if !ok {
		return "", false
	}
	return sized(prefix, value), true
}

// sized joins prefix and value the way a shorthand writes them: numbers
// and hex colors directly, keywords with a hyphen.
func sized(prefix, value string) string {
	c := value[0]
	switch {
	case c >= '0' && c <= '9' || c == '.' || c == '#':
		return prefix + value
	case c == '-' && len(value) > 1 && (value[1] >= '0' && value[1] <= '9' || value[1] == '.'):
		return "-" + prefix + value[1:]
	default:
		return prefix + "-" + value
	}
}

// topLevelFields splits v on spaces outside parentheses: "0 auto" has two
// fields, "calc(100% - 20px)" has one.
func topLevelFields(v string) []string {
	var out []string
	depth, start := 0, -1
	for i := 0; i < len(v); i++ {
		switch c := v[i]; {
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ' ' || c == '\t' || c == '\n':
			if depth == 0 {
				if start >= 0 {
					out = append(out, v[start:i])
				}
				start = -1
				continue
			}
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, v[start:])
	}
	return out
}
