package locator

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// jsxBuilder converts the JSX elements of a tree-sitter syntax tree into
// Nodes. Everything that is not JSX is walked only to find nested elements.
type jsxBuilder struct {
	doc *Document
	src []byte
}

// buildJSX parses src with lang and returns a document in which positions
// outside every element are script positions.
func buildJSX(ctx context.Context, src string, lang *sitter.Language) (*Document, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	content := []byte(src)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse jsx: %w", err)
	}
	defer tree.Close()

	doc := newDocument(JSX, src)
	doc.IsJSX = true
	doc.DefaultScript = true

	root := tree.RootNode()
	if root == nil {
		return doc, nil
	}
	b := &jsxBuilder{doc: doc, src: content}
	doc.Roots = b.visit(root, nil)
	doc.Refs = refsIn(root, content, "useRef", "createRef")
	collectAttrRefs(doc)
	return doc, nil
}

func (b *jsxBuilder) visit(n *sitter.Node, out []*Node) []*Node {
	switch n.Type() {
	case "jsx_element":
		open := n.ChildByFieldName("open_tag")
		if open == nil || open.ChildByFieldName("name") == nil {
			// fragment: its children belong to the enclosing element
			return b.children(n, out)
		}
		el := b.element(n, open)
		if close := n.ChildByFieldName("close_tag"); close != nil {
			s := b.span(close)
			el.Close = &s
		}
		el.Children = b.children(n, nil)
		return append(out, el)

	case "jsx_self_closing_element":
		el := b.element(n, n)
		el.SelfClosing = true
		return append(out, el)

	case "jsx_fragment":
		return b.children(n, out)

	case "jsx_text":
		return append(out, &Node{Kind: TextNode, Span: b.span(n)})
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = b.visit(n.NamedChild(i), out)
	}
	return out
}

// children visits the content of an element, skipping its own tags.
func (b *jsxBuilder) children(n *sitter.Node, out []*Node) []*Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "jsx_opening_element", "jsx_closing_element":
			continue
		}
		out = b.visit(c, out)
	}
	return out
}

func (b *jsxBuilder) element(n, open *sitter.Node) *Node {
	el := &Node{
		Kind: ElementNode,
		Span: b.span(n),
		Open: b.span(open),
	}
	if name := open.ChildByFieldName("name"); name != nil {
		el.Tag = name.Content(b.src)
	}
	for i := 0; i < int(open.NamedChildCount()); i++ {
		c := open.NamedChild(i)
		if c.Type() != "jsx_attribute" {
			continue
		}
		el.Attrs = append(el.Attrs, b.attribute(c))
	}
	return el
}

func (b *jsxBuilder) attribute(n *sitter.Node) Attribute {
	name := n.NamedChild(0)
	a := Attribute{Span: b.span(n)}
	if name != nil {
		a.Name = name.Content(b.src)
	}
	a.Prop = a.Name
	a.IsEvent = strings.HasPrefix(a.Name, "on") && len(a.Name) > 2

	end := int(n.EndByte())
	a.ValueSpan = b.doc.span(end, end)
	if n.NamedChildCount() < 2 {
		return a
	}

	v := n.NamedChild(int(n.NamedChildCount()) - 1)
	vs, ve := int(v.StartByte()), int(v.EndByte())
	switch v.Type() {
	case "string", "jsx_expression":
		if ve-vs >= 2 {
			vs, ve = vs+1, ve-1
		}
		a.Expression = v.Type() == "jsx_expression"
	default:
		a.Expression = true
	}
	a.HasValue = true
	a.Value = b.doc.Source[vs:ve]
	a.ValueSpan = b.doc.span(vs, ve)
	return a
}

func (b *jsxBuilder) span(n *sitter.Node) Span {
	return b.doc.span(int(n.StartByte()), int(n.EndByte()))
}

// refsIn lists the names bound by declarations whose initializer calls one
// of callees: "const input = useRef(null)".
func refsIn(root *sitter.Node, src []byte, callees ...string) []string {
	var refs []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "variable_declarator" {
			name := n.ChildByFieldName("name")
			value := n.ChildByFieldName("value")
			if name != nil && value != nil && value.Type() == "call_expression" {
				if fn := value.ChildByFieldName("function"); fn != nil && contains(callees, fn.Content(src)) {
					refs = append(refs, name.Content(src))
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return refs
}

// declaredRefs parses src with lang and returns refsIn for it.
func declaredRefs(ctx context.Context, src string, lang *sitter.Language, callees ...string) ([]string, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	content := []byte(src)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	defer tree.Close()
	if tree.RootNode() == nil {
		return nil, nil
	}
	return refsIn(tree.RootNode(), content, callees...), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
