package locator

import (
	"context"
	"strings"

	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// templateAttrName strips directive syntax: ":x" and "v-bind:x" become x,
// "@x" and "v-on:x" become the event x, "#x" is a slot and "v-x" becomes x.
func templateAttrName(name string) (string, bool, bool) {
	switch {
	case strings.HasPrefix(name, "v-bind:"):
		return trimModifiers(name[len("v-bind:"):]), true, false
	case strings.HasPrefix(name, ":"):
		return trimModifiers(name[1:]), true, false
	case strings.HasPrefix(name, "v-on:"):
		return trimModifiers(name[len("v-on:"):]), true, true
	case strings.HasPrefix(name, "@"):
		return trimModifiers(name[1:]), true, true
	case strings.HasPrefix(name, "#"), strings.HasPrefix(name, "v-slot"):
		return "slot", true, false
	case strings.HasPrefix(name, "v-"):
		d := name[2:]
		if i := strings.IndexAny(d, ":."); i >= 0 {
			d = d[:i]
		}
		return d, true, false
	}
	return name, false, false
}

// buildTemplate splits a single file component into blocks. Only the top
// level template block is markup; script blocks are script regions.
func buildTemplate(ctx context.Context, src string) (*Document, error) {
	doc := newDocument(Template, src)
	b := newMarkupBuilder(doc, src, 0)
	b.attrName = templateAttrName
	roots := b.build()

	var scripts []*Node
	for _, n := range roots {
		if n.Kind != ElementNode {
			continue
		}
		switch strings.ToLower(n.Tag) {
		case "template":
			if doc.Template == nil {
				body := doc.span(n.Open.End.Offset, n.Span.End.Offset)
				if n.Close != nil {
					body.End = n.Close.Start
				}
				doc.Template = &body
				doc.Roots = n.Children
				doc.Root = &ParentRef{Tag: "template"}
			}
		case "script":
			scripts = append(scripts, n)
			if lang := attrValue(n.Attrs, "lang"); lang == "tsx" || lang == "jsx" {
				doc.IsJSX = true
			}
		}
	}
	for _, r := range b.raws {
		if r.tag == "script" {
			doc.Scripts = append(doc.Scripts, r.span)
		}
	}

	if doc.IsJSX {
		return buildScriptBlocks(ctx, doc, scripts)
	}

	collectAttrRefs(doc)
	for _, s := range doc.Scripts {
		refs, err := declaredRefs(ctx, blankOutside(src, s), typescript.GetLanguage(), "ref", "shallowRef", "useTemplateRef")
		if err != nil {
			return nil, err
		}
		doc.Refs = append(doc.Refs, refs...)
	}
	return doc, nil
}

// buildScriptBlocks parses the script blocks of a component as TSX. The
// rest of the file is blanked out so offsets stay those of the component.
func buildScriptBlocks(ctx context.Context, doc *Document, scripts []*Node) (*Document, error) {
	var regions []Span
	for _, s := range scripts {
		if s.Close == nil {
			continue
		}
		regions = append(regions, doc.span(s.Open.End.Offset, s.Close.Start.Offset))
	}
	out, err := buildJSX(ctx, blankOutside(doc.Source, regions...), tsx.GetLanguage())
	if err != nil {
		return nil, err
	}
	out.Kind = Template
	out.Source = doc.Source
	return out, nil
}

func attrValue(attrs []Attribute, name string) string {
	for _, a := range attrs {
		if strings.EqualFold(a.Name, name) {
			return a.Value
		}
	}
	return ""
}

// blankOutside replaces every byte outside keep with a space, newlines
// excepted, so that a parser sees only the kept regions at their original
// offsets.
func blankOutside(src string, keep ...Span) string {
	b := []byte(src)
	inside := func(i int) bool {
		for _, k := range keep {
			if i >= k.Start.Offset && i < k.End.Offset {
				return true
			}
		}
		return false
	}
	for i := range b {
		if b[i] != '\n' && !inside(i) {
			b[i] = ' '
		}
	}
	return string(b)
}

// collectAttrRefs maps every ref="x" attribute to the component name of
// its element.
func collectAttrRefs(doc *Document) {
	doc.Walk(func(n *Node) bool {
		for _, a := range n.Attrs {
			if a.Prop == "ref" && a.HasValue && a.Value != "" {
				doc.RefsMap[strings.TrimSpace(a.Value)] = pascalCase(n.Tag)
			}
		}
		return true
	})
}
