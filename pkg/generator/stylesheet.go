package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/multierr"
)

// ErrNoStylesheet is returned when no stylesheet path was configured.
var ErrNoStylesheet = errors.New("no stylesheet configured")

// maxShortcutDepth bounds shortcut expansion through other shortcuts.
const maxShortcutDepth = 4

// classRegex matches class selectors, escapes included (.w-\[10px\], .hover\:x, .\32 xl).
var classRegex = regexp.MustCompile(`\.(-?(?:[_a-zA-Z]|\\(?:[0-9a-fA-F]{1,6}\s?|[^0-9a-fA-F\s]))(?:[_a-zA-Z0-9-]|\\(?:[0-9a-fA-F]{1,6}\s?|[^0-9a-fA-F\s]))*)`)

// Declaration is one property of a rule.
type Declaration struct {
	Property string
	Value    string
}

// Rule is a ruleset whose subject is a single utility class.
type Rule struct {
	// AtRules are the enclosing at-rule preludes, outermost first:
	// "@media (min-width:640px)".
	AtRules  []string
	Selector string
	Class    string
	Decls    []Declaration

	// escaped is Class as written in Selector.
	escaped string
}

func (r Rule) key() string {
	return strings.Join(r.AtRules, "\x00") + "\x00" + r.Selector
}

// Stylesheet answers lookups from compiled utility CSS. It is safe for
// concurrent use.
type Stylesheet struct {
	mu        sync.RWMutex
	rules     map[string][]Rule
	order     []string
	shortcuts map[string]string
}

// NewStylesheet returns an empty stylesheet.
func NewStylesheet() *Stylesheet {
	return &Stylesheet{
		rules:     make(map[string][]Rule),
		shortcuts: make(map[string]string),
	}
}

// ParseStylesheet reads one stylesheet.
func ParseStylesheet(r io.Reader) (*Stylesheet, error) {
	s := NewStylesheet()
	if err := s.Add(r); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadStylesheets reads every path; directories contribute all their .css
// files. Unreadable paths are reported together and the rest still load.
func LoadStylesheets(paths ...string) (*Stylesheet, error) {
	if len(paths) == 0 {
		return nil, ErrNoStylesheet
	}
	s := NewStylesheet()
	var errs error
	for _, p := range paths {
		files, err := cssFiles(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, f := range files {
			errs = multierr.Append(errs, s.addFile(f))
		}
	}
	return s, errs
}

func cssFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stylesheet: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".css") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("stylesheet dir %s: %w", path, err)
	}
	return files, nil
}

func (s *Stylesheet) addFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("stylesheet: %w", err)
	}
	defer f.Close()
	if err := s.Add(f); err != nil {
		return fmt.Errorf("stylesheet %s: %w", path, err)
	}
	return nil
}

// Add indexes the rules of a stylesheet. Rules are keyed by the last class
// of each selector. Syntax errors skip the offending construct.
func (s *Stylesheet) Add(r io.Reader) error {
	p := css.NewParser(parse.NewInput(r), false)

	var atRules []string
	var open []Rule
	var parsed []Rule
	stuck := -1
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if p.HasParseError() {
				if p.Offset() != stuck {
					stuck = p.Offset()
					continue
				}
			} else if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			s.index(parsed)
			return nil

		case css.BeginAtRuleGrammar:
			atRules = append(atRules, strings.TrimSpace(string(data)+" "+tokensText(p.Values())))

		case css.EndAtRuleGrammar:
			if len(atRules) > 0 {
				atRules = atRules[:len(atRules)-1]
			}

		case css.BeginRulesetGrammar:
			open = rulesFor(tokensText(p.Values()), atRules)

		case css.DeclarationGrammar:
			addDecl(open, string(data), tokensText(p.Values()))

		case css.CustomPropertyGrammar:
			addDecl(open, string(data), strings.TrimSpace(tokensText(p.Values())))

		case css.EndRulesetGrammar:
			parsed = append(parsed, open...)
			open = nil
		}
	}
}

func (s *Stylesheet) index(rules []Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rules {
		if _, ok := s.rules[r.Class]; !ok {
			s.order = append(s.order, r.Class)
		}
		s.rules[r.Class] = append(s.rules[r.Class], r)
	}
}

func addDecl(rules []Rule, prop, value string) {
	if v, ok := strings.CutSuffix(value, "!important"); ok {
		value = strings.TrimSpace(v) + " !important"
	}
	for i := range rules {
		rules[i].Decls = append(rules[i].Decls, Declaration{Property: prop, Value: value})
	}
}

// rulesFor splits a selector list and keeps the parts that have a class.
func rulesFor(selectors string, atRules []string) []Rule {
	var out []Rule
	for _, sel := range splitSelectors(selectors) {
		m := classRegex.FindAllStringSubmatch(sel, -1)
		if len(m) == 0 {
			continue
		}
		escaped := m[len(m)-1][1]
		out = append(out, Rule{
			AtRules:  append([]string(nil), atRules...),
			Selector: sel,
			Class:    unescapeClass(escaped),
			escaped:  escaped,
		})
	}
	return out
}

// splitSelectors splits on commas outside parentheses and brackets.
func splitSelectors(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	out = append(out, strings.TrimSpace(s[start:]))
	return out
}

func tokensText(tokens []css.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.Write(t.Data)
	}
	return sb.String()
}

// unescapeClass resolves css escapes: "\:" -> ":", "\32 " -> "2".
func unescapeClass(name string) string {
	if !strings.Contains(name, `\`) {
		return name
	}
	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] != '\\' || i+1 == len(name) {
			sb.WriteByte(name[i])
			continue
		}
		j := i + 1
		for j < len(name) && j-i <= 6 && isHex(name[j]) {
			j++
		}
		if j == i+1 {
			sb.WriteByte(name[j])
			i = j
			continue
		}
		code, _ := strconv.ParseUint(name[i+1:j], 16, 32)
		sb.WriteRune(rune(code))
		if j < len(name) && name[j] == ' ' {
			j++
		}
		i = j - 1
	}
	return sb.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// escapeClass writes name as a selector class.
func escapeClass(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case i == 0 && r >= '0' && r <= '9':
			fmt.Fprintf(&sb, `\3%c `, r)
		case r == '-' || r == '_' || r >= 0x80,
			r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteByte('\\')
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SetShortcuts replaces the shortcut table: name to space separated utilities.
func (s *Stylesheet) SetShortcuts(shortcuts map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shortcuts = make(map[string]string, len(shortcuts))
	for k, v := range shortcuts {
		s.shortcuts[k] = v
	}
}

// Has reports whether class has rules or is a shortcut.
func (s *Stylesheet) Has(class string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rules[class]
	if !ok {
		_, ok = s.shortcuts[class]
	}
	return ok
}

// Classes lists the indexed classes in stylesheet order.
func (s *Stylesheet) Classes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Rules returns the rules of class, shortcuts expanded.
func (s *Stylesheet) Rules(class string) []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolve(class, 0)
}

// Generate renders the CSS of token, or "" when the stylesheet has none.
func (s *Stylesheet) Generate(_ context.Context, token string) (string, error) {
	return Format(s.Rules(token)), nil
}

func (s *Stylesheet) resolve(token string, depth int) []Rule {
	if rules, ok := s.rules[token]; ok {
		return append([]Rule(nil), rules...)
	}
	body, ok := s.shortcuts[token]
	if !ok || depth >= maxShortcutDepth {
		return nil
	}
	escaped := escapeClass(token)
	var out []Rule
	for _, util := range strings.Fields(body) {
		for _, r := range s.resolve(util, depth+1) {
			r.Selector = strings.Replace(r.Selector, "."+r.escaped, "."+escaped, 1)
			r.Class, r.escaped = token, escaped
			r.Decls = append([]Declaration(nil), r.Decls...)
			out = append(out, r)
		}
	}
	return merge(out)
}

// merge folds rules with the same selector and at-rules into the first of
// them. A repeated property keeps its last value.
func merge(rules []Rule) []Rule {
	var out []Rule
	at := map[string]int{}
	for _, r := range rules {
		i, ok := at[r.key()]
		if !ok {
			at[r.key()] = len(out)
			out = append(out, r)
			continue
		}
		for _, d := range r.Decls {
			out[i].Decls = setDecl(out[i].Decls, d)
		}
	}
	return out
}

func setDecl(decls []Declaration, d Declaration) []Declaration {
	for i := range decls {
		if decls[i].Property == d.Property {
			decls[i].Value = d.Value
			return decls
		}
	}
	return append(decls, d)
}

// Format renders rules as indented CSS, one block per rule.
func Format(rules []Rule) string {
	blocks := make([]string, 0, len(rules))
	for _, r := range rules {
		var sb strings.Builder
		indent := ""
		for _, a := range r.AtRules {
			sb.WriteString(indent + a + " {\n")
			indent += "  "
		}
		sb.WriteString(indent + r.Selector + " {\n")
		for _, d := range r.Decls {
			sb.WriteString(indent + "  " + d.Property + ": " + d.Value + ";\n")
		}
		sb.WriteString(indent + "}")
		for range r.AtRules {
			indent = indent[2:]
			sb.WriteString("\n" + indent + "}")
		}
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n")
}
