// Package labeling decides whether an annotator may add a label to an item.
//
// Labels come in a closed set of variants (category, span, free text and
// relation). Each variant is checked by a stateless strategy against the
// labels in scope, where scope is resolved once by ResolveScope: all
// annotators' labels on collaborative projects, only the acting
// annotator's own labels otherwise.
package labeling

import "fmt"

// Kind tags the label variant.
type Kind string

const (
	KindCategory Kind = "category"
	KindSpan     Kind = "span"
	KindText     Kind = "text"
	KindRelation Kind = "relation"
)

// ParseKind converts a stored kind back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindCategory, KindSpan, KindText, KindRelation:
		return k, nil
	}
	return "", fmt.Errorf("unknown label kind %q", s)
}

// Payload is the variant specific part of a label. The set of
// implementations is closed to this package.
type Payload interface {
	Kind() Kind
	sealed()
}

// Category assigns a whole item to a label type.
type Category struct {
	TypeID uint
}

// Span marks the half-open character range [Start, End) with a label type.
type Span struct {
	TypeID uint
	Start  int
	End    int
}

// FreeText attaches a free-form text value to an item.
type FreeText struct {
	Text string
}

// Relation links two existing labels.
type Relation struct {
	TypeID uint
	FromID uint
	ToID   uint
}

func (Category) Kind() Kind { return KindCategory }
func (Span) Kind() Kind     { return KindSpan }
func (FreeText) Kind() Kind { return KindText }
func (Relation) Kind() Kind { return KindRelation }

func (Category) sealed() {}
func (Span) sealed()     {}
func (FreeText) sealed() {}
func (Relation) sealed() {}

// Label is one annotator's label on one item.
type Label struct {
	ID          uint
	ItemID      uint
	AnnotatorID uint
	Payload     Payload
}

// Kind returns the variant tag, or "" when the label has no payload.
func (l Label) Kind() Kind {
	if l.Payload == nil {
		return ""
	}
	return l.Payload.Kind()
}

// TypeID returns the label-type id. Free text labels have none and return 0.
func (l Label) TypeID() uint {
	switch p := l.Payload.(type) {
	case Category:
		return p.TypeID
	case Span:
		return p.TypeID
	case Relation:
		return p.TypeID
	default:
		return 0
	}
}

// Overlaps reports whether two spans share at least one position.
// Adjacent spans such as [0,5) and [5,10) do not overlap.
func Overlaps(a, b Span) bool {
	return a.Start < b.End && b.Start < a.End
}
