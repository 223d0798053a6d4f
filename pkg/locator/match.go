package locator

import "fmt"

// MatchKind classifies a lookup result.
type MatchKind int

const (
	// MatchNone means the position is outside anything the locator knows.
	MatchNone MatchKind = iota
	// MatchProps means the position is inside an attribute value.
	MatchProps
	// MatchText means the position is inside element text content.
	MatchText
	// MatchScript means the position is inside a non-markup region.
	MatchScript
	// MatchFalse means the position is inside a tag but not inside any
	// attribute value: on the tag name, between attributes, or in a close tag.
	MatchFalse
)

var matchKindNames = [...]string{"none", "props", "text", "script", "false"}

func (k MatchKind) String() string {
	if int(k) < len(matchKindNames) {
		return matchKindNames[k]
	}
	return fmt.Sprintf("MatchKind(%d)", int(k))
}

// MarshalText renders the kind by name.
func (k MatchKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Match is the result of a positional lookup.
type Match struct {
	Kind MatchKind `json:"type"`

	Tag      string      `json:"tag,omitempty"`
	PropName string      `json:"propName,omitempty"`
	Props    []Attribute `json:"props,omitempty"`
	IsValue  bool        `json:"isValue,omitempty"`
	IsEvent  bool        `json:"isEvent,omitempty"`

	IsInTemplate bool `json:"isInTemplate,omitempty"`
	IsJSX        bool `json:"isJsx,omitempty"`

	// Span covers the matched element. ValueSpan covers the attribute value
	// of a props match, without quotes or braces.
	Span      Span `json:"span"`
	ValueSpan Span `json:"valueSpan"`

	Parent *ParentRef `json:"parent,omitempty"`

	Refs    []string          `json:"refs,omitempty"`
	RefsMap map[string]string `json:"refsMap,omitempty"`
}

// Value returns the attribute value of a props match.
func (m Match) Value(src string) string {
	if m.Kind != MatchProps {
		return ""
	}
	return m.ValueSpan.Text(src)
}
