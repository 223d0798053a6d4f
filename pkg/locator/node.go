package locator

import (
	"path/filepath"
	"strings"
)

// Kind selects the builder used for a source text.
type Kind int

const (
	// Markup is plain tag and attribute text: html, svelte and friends.
	Markup Kind = iota
	// Template is a single file component with template, script and style blocks.
	Template
	// JSX is a script file whose element trees are JSX expressions.
	JSX
	// Script is a TypeScript or JavaScript file parsed without JSX.
	Script
)

func (k Kind) String() string {
	switch k {
	case Markup:
		return "markup"
	case Template:
		return "template"
	case JSX:
		return "jsx"
	case Script:
		return "script"
	}
	return "unknown"
}

// KindFromPath picks the builder for a file by extension.
func KindFromPath(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vue":
		return Template
	case ".jsx", ".tsx", ".js", ".mjs", ".cjs":
		return JSX
	case ".ts", ".mts", ".cts":
		return Script
	}
	return Markup
}

// NodeKind distinguishes elements from text.
type NodeKind int

const (
	ElementNode NodeKind = iota
	TextNode
)

// Node is one element or text run of a parsed document.
type Node struct {
	Kind     NodeKind
	Tag      string
	Attrs    []Attribute
	Children []*Node

	// Span covers the whole node, close tag included.
	Span Span
	// Open covers the open tag through its closing '>'.
	Open Span
	// Close covers the close tag. Nil for self closing and unclosed elements.
	Close *Span

	SelfClosing bool
}

// Attribute is one attribute of an element.
type Attribute struct {
	// Name is the attribute as written: "class", ":class", "@click", "className".
	Name string `json:"name"`
	// Prop is the name with binding syntax removed: ":class" -> "class".
	Prop  string `json:"prop"`
	Value string `json:"value,omitempty"`

	HasValue   bool `json:"hasValue"`
	Expression bool `json:"expression,omitempty"`
	IsEvent    bool `json:"isEvent,omitempty"`

	Span Span `json:"span"`
	// ValueSpan covers the value without its quotes or braces.
	ValueSpan Span `json:"valueSpan"`
}

// IsClass reports whether the attribute carries class names.
func (a Attribute) IsClass() bool {
	return a.Prop == "class" || a.Prop == "className"
}

// ParentRef names the element enclosing a match and its attributes.
type ParentRef struct {
	Tag   string      `json:"tag"`
	Props []Attribute `json:"props"`
}

// Document is a parsed source text ready for lookups.
type Document struct {
	Kind   Kind
	Source string
	Roots  []*Node

	// Root is the parent reported for top level nodes. Nil means none.
	Root *ParentRef

	// Scripts are non-markup regions.
	Scripts []Span
	// Template bounds the markup region when the document has one.
	Template *Span
	// DefaultScript makes positions outside every element script positions.
	DefaultScript bool
	IsJSX         bool

	Refs    []string
	RefsMap map[string]string

	lines *lineIndex
}

func newDocument(kind Kind, src string) *Document {
	return &Document{
		Kind:    kind,
		Source:  src,
		RefsMap: map[string]string{},
		lines:   newLineIndex(src),
	}
}

// Walk calls fn for every node depth first. Returning false skips the
// node's children.
func (d *Document) Walk(fn func(n *Node) bool) {
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if fn(n) {
				walk(n.Children)
			}
		}
	}
	walk(d.Roots)
}

// ClassAttribute is a class carrying attribute together with its element.
type ClassAttribute struct {
	Tag string
	Attribute
}

// ClassAttributes lists every class and className attribute with a value,
// in source order.
func (d *Document) ClassAttributes() []ClassAttribute {
	var out []ClassAttribute
	d.Walk(func(n *Node) bool {
		for _, a := range n.Attrs {
			if a.IsClass() && a.HasValue {
				out = append(out, ClassAttribute{Tag: n.Tag, Attribute: a})
			}
		}
		return true
	})
	return out
}

// Position converts a byte offset of the source into a Position.
func (d *Document) Position(offset int) Position {
	return d.lines.position(offset)
}

// Offset converts a cursor into a byte offset of the source.
func (d *Document) Offset(cur Cursor) int {
	return d.lines.offset(cur)
}

func (d *Document) span(start, end int) Span {
	return d.lines.span(start, end)
}

// pascalCase turns a tag name into the component name used in ref maps:
// "el-input" -> "ElInput".
func pascalCase(tag string) string {
	if tag == "" {
		return ""
	}
	var b strings.Builder
	upper := true
	for _, r := range tag {
		if r == '-' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
