// Package shortcuts reads static shortcut definitions from an uno config
// file without executing it.
package shortcuts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Find when no config file exists up to the root.
var ErrNotFound = errors.New("no uno config found")

// ConfigNames are the file names Find looks for, in preference order.
var ConfigNames = []string{
	"uno.config.ts", "uno.config.js", "uno.config.mts", "uno.config.mjs",
	"unocss.config.ts", "unocss.config.js", "unocss.config.mts", "unocss.config.mjs",
	"uno.shortcuts.yaml", "uno.shortcuts.yml",
}

// Find walks up from dir and returns the first config file found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range ConfigNames {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Load reads the shortcuts of a config file. YAML files hold either a
// "shortcuts" mapping or a bare name to utilities mapping.
func Load(ctx context.Context, path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shortcuts: %w", err)
	}
	var out map[string]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		out, err = ParseYAML(data)
	default:
		out, err = Parse(ctx, data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// ParseYAML decodes a YAML shortcut file.
func ParseYAML(data []byte) (map[string]string, error) {
	var doc struct {
		Shortcuts map[string]string `yaml:"shortcuts"`
	}
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Shortcuts) > 0 {
		return doc.Shortcuts, nil
	}
	var flat map[string]string
	if err := yaml.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("parse shortcuts yaml: %w", err)
	}
	if flat == nil {
		flat = map[string]string{}
	}
	return flat, nil
}

// Parse extracts the static entries of every "shortcuts" property in a
// config script. Both forms are read:
//
//	shortcuts: { btn: 'px-4 py-2' }
//	shortcuts: [{ btn: 'px-4 py-2' }, ['icon', 'w-6 h-6']]
//
// Dynamic rules (regular expressions, functions) are skipped.
func Parse(ctx context.Context, src []byte) (map[string]string, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	defer tree.Close()

	out := map[string]string{}
	root := tree.RootNode()
	if root == nil {
		return out, nil
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "pair" {
			if key := n.ChildByFieldName("key"); key != nil && literal(key, src) == "shortcuts" {
				if v := n.ChildByFieldName("value"); v != nil {
					collect(v, src, out)
				}
				return
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return out, nil
}

func collect(n *sitter.Node, src []byte, out map[string]string) {
	switch n.Type() {
	case "object":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			p := n.NamedChild(i)
			if p.Type() != "pair" {
				continue
			}
			k, v := p.ChildByFieldName("key"), p.ChildByFieldName("value")
			if k == nil || v == nil {
				continue
			}
			name, body := literal(k, src), literal(v, src)
			if name != "" && body != "" {
				out[name] = normalize(body)
			}
		}
	case "array":
		if n.NamedChildCount() == 2 && isString(n.NamedChild(0)) && isString(n.NamedChild(1)) {
			out[literal(n.NamedChild(0), src)] = normalize(literal(n.NamedChild(1), src))
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			collect(n.NamedChild(i), src, out)
		}
	}
}

func isString(n *sitter.Node) bool {
	return n.Type() == "string" || n.Type() == "template_string" && !interpolated(n)
}

func interpolated(n *sitter.Node) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == "template_substitution" {
			return true
		}
	}
	return false
}

// literal returns the text of an identifier-like key or a string without
// its quotes. Other nodes yield "".
func literal(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "property_identifier", "identifier", "shorthand_property_identifier":
		return n.Content(src)
	case "string", "template_string":
		if n.Type() == "template_string" && interpolated(n) {
			return ""
		}
		s := n.Content(src)
		if len(s) >= 2 {
			return s[1 : len(s)-1]
		}
	}
	return ""
}

func normalize(body string) string {
	return strings.Join(strings.Fields(body), " ")
}
