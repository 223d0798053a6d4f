// Package extractor harvests utility tokens from markup for cache warm-up.
package extractor

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/net/html"
)

// Extensions are the file types FromDir reads.
var Extensions = []string{".html", ".htm", ".vue"}

// plainAttrs are HTML attributes that never carry utilities.
var plainAttrs = map[string]bool{
	"id": true, "style": true, "href": true, "src": true, "alt": true, "title": true,
	"type": true, "name": true, "value": true, "placeholder": true, "for": true,
	"rel": true, "lang": true, "charset": true, "content": true, "width": true,
	"height": true, "role": true, "tabindex": true, "key": true, "ref": true,
	"target": true, "method": true, "action": true, "setup": true, "scoped": true,
	"disabled": true, "checked": true, "selected": true, "hidden": true,
	"readonly": true, "required": true, "autofocus": true, "async": true, "defer": true,
}

// FromFile extracts the tokens of one markup file.
func FromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Tokens(f)
}

// Tokens parses markup and returns its class and attributify tokens,
// deduplicated and in natural order.
func Tokens(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				for _, tok := range attrTokens(attr.Key, attr.Val) {
					set[tok] = struct{}{}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)

	return sorted(set), nil
}

// attrTokens returns the tokens one attribute contributes. Keys arrive
// lowercased from the parser.
func attrTokens(key, val string) []string {
	switch {
	case key == "class" || key == "classname":
		return strings.Fields(val)
	case ignored(key):
		return nil
	case strings.TrimSpace(val) == "":
		return []string{key}
	}

	var out []string
	for _, v := range strings.Fields(val) {
		variants := ""
		if i := strings.LastIndexByte(v, ':'); i >= 0 {
			variants, v = v[:i+1], v[i+1:]
		}
		switch v {
		case "~":
			out = append(out, variants+key)
		case "":
		default:
			out = append(out, variants+key+"-"+v)
		}
	}
	return out
}

func ignored(key string) bool {
	if plainAttrs[key] {
		return true
	}
	for _, p := range []string{":", "@", "#", "v-", "on", "data-", "aria-", "x-", "bind:", "class:"} {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// FromDir extracts tokens from every markup file under dir.
func FromDir(dir string) ([]string, error) {
	set := make(map[string]struct{})

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !hasExt(path) {
			return nil
		}

		tokens, err := FromFile(path)
		if err != nil {
			return err
		}
		for _, tok := range tokens {
			set[tok] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sorted(set), nil
}

func hasExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	sort.Sort(natural.StringSlice(out))
	return out
}
