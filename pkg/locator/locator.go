// Package locator finds what lies under a cursor in markup, single file
// components and JSX, with exact spans for attribute values.
package locator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parse builds the document for src with the builder for kind.
func Parse(ctx context.Context, kind Kind, src string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("parse %s: %v", kind, r)
		}
	}()

	switch kind {
	case Markup:
		return buildMarkup(src), nil
	case Template:
		return buildTemplate(ctx, src)
	case JSX:
		return buildJSX(ctx, src, tsx.GetLanguage())
	case Script:
		doc, err := buildJSX(ctx, src, typescript.GetLanguage())
		if err != nil {
			return nil, err
		}
		doc.Kind = Script
		doc.IsJSX = false
		return doc, nil
	}
	return nil, fmt.Errorf("unknown source kind %d", int(kind))
}

// Locator runs lookups and reports parse failures to its logger.
type Locator struct {
	log zerolog.Logger
}

// New returns a Locator logging to log.
func New(log zerolog.Logger) *Locator {
	return &Locator{log: log}
}

// Locate parses src and returns what lies under cur. Parse failures yield
// MatchNone.
func (l *Locator) Locate(ctx context.Context, kind Kind, src string, cur Cursor) Match {
	doc, err := Parse(ctx, kind, src)
	if err != nil {
		l.log.Debug().Err(err).Stringer("kind", kind).Msg("locate: parse failed")
		return Match{Kind: MatchNone}
	}
	return doc.Locate(cur)
}

// Locate is Locator.Locate without logging.
func Locate(ctx context.Context, kind Kind, src string, cur Cursor) Match {
	return New(zerolog.Nop()).Locate(ctx, kind, src, cur)
}
