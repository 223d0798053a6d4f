package locator

// Locate returns what lies under cur. Lookups are depth first and the
// innermost enclosing element wins.
func (d *Document) Locate(cur Cursor) Match {
	for _, s := range d.Scripts {
		if s.Contains(cur) {
			return d.script()
		}
	}
	if d.Template != nil && !d.Template.Contains(cur) {
		return Match{Kind: MatchNone, IsJSX: d.IsJSX}
	}
	if m, ok := d.walk(d.Roots, d.Root, cur); ok {
		return m
	}
	if d.DefaultScript {
		return d.script()
	}
	return Match{Kind: MatchNone, IsJSX: d.IsJSX}
}

func (d *Document) walk(nodes []*Node, parent *ParentRef, cur Cursor) (Match, bool) {
	for _, n := range nodes {
		if !n.Span.Contains(cur) {
			continue
		}
		if n.Kind == TextNode {
			return d.text(n.Span, parent), true
		}
		return d.element(n, parent, cur), true
	}
	return Match{}, false
}

func (d *Document) element(n *Node, parent *ParentRef, cur Cursor) Match {
	if n.Open.Contains(cur) {
		for _, a := range n.Attrs {
			if a.HasValue && a.ValueSpan.Contains(cur) {
				return Match{
					Kind:         MatchProps,
					Tag:          n.Tag,
					PropName:     a.Prop,
					Props:        n.Attrs,
					IsValue:      a.ValueSpan.Len() > 0,
					IsEvent:      a.IsEvent,
					IsInTemplate: true,
					IsJSX:        d.IsJSX,
					Span:         n.Span,
					ValueSpan:    a.ValueSpan,
					Parent:       parent,
					RefsMap:      d.RefsMap,
				}
			}
		}
		return d.negative(n, parent)
	}
	if n.Close != nil && n.Close.Contains(cur) {
		return d.negative(n, parent)
	}

	self := &ParentRef{Tag: n.Tag, Props: n.Attrs}
	if m, ok := d.walk(n.Children, self, cur); ok {
		return m
	}
	return d.text(n.Span, self)
}

func (d *Document) negative(n *Node, parent *ParentRef) Match {
	return Match{
		Kind:         MatchFalse,
		Tag:          n.Tag,
		Props:        n.Attrs,
		IsInTemplate: true,
		IsJSX:        d.IsJSX,
		Span:         n.Span,
		Parent:       parent,
	}
}

func (d *Document) text(span Span, parent *ParentRef) Match {
	return Match{
		Kind:         MatchText,
		IsInTemplate: true,
		IsJSX:        d.IsJSX,
		Span:         span,
		Parent:       parent,
	}
}

func (d *Document) script() Match {
	return Match{
		Kind:    MatchScript,
		IsJSX:   d.IsJSX,
		Refs:    d.Refs,
		RefsMap: d.RefsMap,
	}
}
