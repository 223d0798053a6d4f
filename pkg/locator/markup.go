package locator

import (
	"bytes"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/html"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "param": true,
	"source": true, "track": true, "wbr": true,
}

// rawRegion is the body of a script or style element.
type rawRegion struct {
	tag  string
	span Span
}

// markupBuilder turns html lexer tokens into a Node tree. The lexed text
// may be a patched copy of part of the document; base maps its offsets back.
type markupBuilder struct {
	doc  *Document
	text string
	base int

	// attrName rewrites an attribute as written into its prop name.
	attrName func(name string) (prop string, expression, event bool)

	roots   []*Node
	stack   []*Node
	pending *Node
	raw     string
	raws    []rawRegion
}

func newMarkupBuilder(doc *Document, text string, base int) *markupBuilder {
	return &markupBuilder{doc: doc, text: text, base: base, attrName: markupAttrName}
}

// markupAttrName handles the svelte directive forms; everything else keeps
// its name.
func markupAttrName(name string) (string, bool, bool) {
	switch {
	case strings.HasPrefix(name, "on:"):
		return trimModifiers(name[3:]), true, true
	case strings.HasPrefix(name, "class:"), strings.HasPrefix(name, "bind:"):
		return name[strings.IndexByte(name, ':')+1:], true, false
	}
	return name, false, false
}

func trimModifiers(name string) string {
	if i := strings.IndexAny(name, ".|"); i >= 0 {
		return name[:i]
	}
	return name
}

func (b *markupBuilder) build() []*Node {
	in := parse.NewInputString(b.text)
	lx := html.NewLexer(in)
	src := b.doc.Source

	for {
		tt, data := lx.Next()
		end := b.base + in.Offset()
		start := end - len(data)

		switch tt {
		case html.ErrorToken:
			b.closeAll(b.base + len(b.text))
			return b.roots

		case html.StartTagToken:
			n := &Node{Kind: ElementNode, Tag: src[start+1 : end]}
			n.Span.Start = b.doc.Position(start)
			n.Open = Span{Start: n.Span.Start}
			b.pending = n
			b.raw = ""
			if lower := strings.ToLower(n.Tag); lower == "script" || lower == "style" {
				b.raw = lower
			}

		case html.AttributeToken:
			if b.pending == nil {
				continue
			}
			b.pending.Attrs = append(b.pending.Attrs, b.attribute(lx, data, end))

		case html.StartTagCloseToken, html.StartTagVoidToken:
			n := b.pending
			b.pending = nil
			if n == nil {
				continue
			}
			from := n.Span.Start.Offset + 1 + len(n.Tag)
			if len(n.Attrs) > 0 {
				from = n.Attrs[len(n.Attrs)-1].Span.End.Offset
			}
			n.Open.End = b.doc.Position(scanTagEnd(src, from))
			void := tt == html.StartTagVoidToken || voidElements[n.Tag]
			if void {
				n.SelfClosing = tt == html.StartTagVoidToken
				n.Span.End = n.Open.End
				b.raw = ""
			}
			b.append(n)
			if !void {
				b.stack = append(b.stack, n)
			}

		case html.EndTagToken:
			var name string
			if fields := strings.Fields(strings.TrimSuffix(src[start+2:end], ">")); len(fields) > 0 {
				name = strings.ToLower(fields[0])
			}
			b.closeTag(name, start, end)

		case html.TextToken:
			if b.raw != "" {
				b.raws = append(b.raws, rawRegion{tag: b.raw, span: b.doc.span(start, end)})
				b.raw = ""
				continue
			}
			b.append(&Node{Kind: TextNode, Span: b.doc.span(start, end)})

		case html.SVGToken, html.MathToken:
			b.foreign(data, start)
		}
	}
}

// attribute reads the current attribute token. Names and values are sliced
// from the document so that their case is preserved.
func (b *markupBuilder) attribute(lx *html.Lexer, data []byte, end int) Attribute {
	src := b.doc.Source
	nameStart := end - len(data) + (len(data) - len(bytes.TrimLeft(data, " \t\n\r\f")))
	name := src[nameStart : nameStart+len(lx.AttrKey())]

	a := Attribute{Name: name, Span: b.doc.span(nameStart, end)}
	a.Prop, a.Expression, a.IsEvent = b.attrName(name)

	val := lx.AttrVal()
	if val == nil {
		a.ValueSpan = b.doc.span(nameStart+len(name), nameStart+len(name))
		return a
	}
	a.HasValue = true
	vs, ve := end-len(val), end
	switch {
	case val[0] == '"' || val[0] == '\'':
		vs++
		if len(val) > 1 && val[len(val)-1] == val[0] {
			ve--
		}
	case val[0] == '{' && len(val) > 1 && val[len(val)-1] == '}':
		vs, ve = vs+1, ve-1
		a.Expression = true
	}
	a.Value = src[vs:ve]
	a.ValueSpan = b.doc.span(vs, ve)
	return a
}

func (b *markupBuilder) append(n *Node) {
	if len(b.stack) == 0 {
		b.roots = append(b.roots, n)
		return
	}
	top := b.stack[len(b.stack)-1]
	top.Children = append(top.Children, n)
}

// closeTag pops up to the nearest open element named name. Elements left
// open inside it end where its close tag starts. Stray end tags are ignored.
func (b *markupBuilder) closeTag(name string, start, end int) {
	for i := len(b.stack) - 1; i >= 0; i-- {
		n := b.stack[i]
		if strings.ToLower(n.Tag) != name {
			continue
		}
		for _, open := range b.stack[i+1:] {
			open.Span.End = b.doc.Position(start)
		}
		closing := b.doc.span(start, end)
		n.Close = &closing
		n.Span.End = closing.End
		b.stack = b.stack[:i]
		return
	}
}

func (b *markupBuilder) closeAll(end int) {
	if b.pending != nil {
		n := b.pending
		b.pending = nil
		n.Open.End = b.doc.Position(end)
		n.Span.End = n.Open.End
		b.append(n)
	}
	for _, n := range b.stack {
		n.Span.End = b.doc.Position(end)
	}
	b.stack = nil
}

// foreign builds an svg or math blob, which the lexer returns whole, by
// lexing a copy whose outer tag name is disguised.
func (b *markupBuilder) foreign(data []byte, start int) {
	patched := []byte(string(data))
	if len(patched) > 2 {
		patched[2] = '_'
	}
	if i := bytes.LastIndex(patched, []byte("</")); i > 0 && i+3 < len(patched) {
		patched[i+3] = '_'
	}
	sub := &markupBuilder{doc: b.doc, text: string(patched), base: start, attrName: b.attrName}
	for _, n := range sub.build() {
		b.append(n)
	}
}

// scanTagEnd returns the offset just past the first '>' at or after from
// that is outside quotes and braces.
func scanTagEnd(src string, from int) int {
	var quote byte
	depth := 0
	for i := from; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case c == '>' && depth == 0:
			return i + 1
		}
	}
	return len(src)
}

func buildMarkup(src string) *Document {
	doc := newDocument(Markup, src)
	b := newMarkupBuilder(doc, src, 0)
	doc.Roots = b.build()
	for _, r := range b.raws {
		if r.tag == "script" {
			doc.Scripts = append(doc.Scripts, r.span)
		}
	}
	collectAttrRefs(doc)
	return doc
}
