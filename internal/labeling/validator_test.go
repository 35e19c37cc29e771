package labeling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func category(id, item, annotator, typeID uint) Label {
	return Label{ID: id, ItemID: item, AnnotatorID: annotator, Payload: Category{TypeID: typeID}}
}

func span(id, item, annotator uint, start, end int) Label {
	return Label{ID: id, ItemID: item, AnnotatorID: annotator, Payload: Span{TypeID: 1, Start: start, End: end}}
}

func text(id, item, annotator uint, value string) Label {
	return Label{ID: id, ItemID: item, AnnotatorID: annotator, Payload: FreeText{Text: value}}
}

func requireViolation(t *testing.T, err error, rule string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConstraintViolation))
	var cv *ConstraintViolation
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, rule, cv.Rule)
}

func TestSingleClassCategory(t *testing.T) {
	t.Parallel()

	policy := Policy{SingleClass: true}
	existing := []Label{category(1, 1, 10, 100)}

	err := Check(category(0, 1, 10, 200), policy, existing)
	requireViolation(t, err, RuleExclusiveCategory)

	// Another annotator is out of scope on a non-collaborative project.
	assert.True(t, CanAnnotate(category(0, 1, 11, 200), policy, existing))
	// Another item is always out of scope.
	assert.True(t, CanAnnotate(category(0, 2, 10, 200), policy, existing))
}

func TestExclusivityHoldsForEveryType(t *testing.T) {
	t.Parallel()

	policy := Policy{SingleClass: true}
	existing := []Label{category(1, 1, 10, 100)}
	for typeID := range uint(50) {
		assert.False(t, CanAnnotate(category(0, 1, 10, typeID), policy, existing), "type %d", typeID)
	}
}

func TestMultiClassRejectsSameTypeOnly(t *testing.T) {
	t.Parallel()

	policy := Policy{}
	existing := []Label{category(1, 1, 10, 100)}

	requireViolation(t, Check(category(0, 1, 10, 100), policy, existing), RuleDuplicateCategory)
	assert.NoError(t, Check(category(0, 1, 10, 101), policy, existing))
}

func TestCollaborativeScope(t *testing.T) {
	t.Parallel()

	policy := Policy{Collaborative: true, SingleClass: true}
	existing := []Label{category(1, 1, 10, 100)}

	requireViolation(t, Check(category(0, 1, 11, 200), policy, existing), RuleExclusiveCategory)
}

func TestSpanOverlap(t *testing.T) {
	t.Parallel()

	policy := Policy{}
	existing := []Label{span(1, 1, 10, 0, 5)}

	assert.NoError(t, Check(span(0, 1, 10, 5, 10), policy, existing), "adjacent spans do not overlap")
	requireViolation(t, Check(span(0, 1, 10, 3, 8), policy, existing), RuleOverlappingSpans)

	allow := Policy{AllowOverlappingSpans: true}
	assert.NoError(t, Check(span(0, 1, 10, 3, 8), allow, existing))

	// Overlap with another annotator's span only matters when collaborative.
	assert.NoError(t, Check(span(0, 1, 11, 3, 8), policy, existing))
	requireViolation(t, Check(span(0, 1, 11, 3, 8), Policy{Collaborative: true}, existing), RuleOverlappingSpans)
}

func TestMalformedSpan(t *testing.T) {
	t.Parallel()

	requireViolation(t, Check(span(0, 1, 10, 5, 5), Policy{}, nil), RuleMalformedLabel)
	requireViolation(t, Check(span(0, 1, 10, -1, 3), Policy{}, nil), RuleMalformedLabel)
}

func TestOverlapsSymmetric(t *testing.T) {
	t.Parallel()

	for a0 := range 6 {
		for a1 := a0 + 1; a1 <= 6; a1++ {
			for b0 := range 6 {
				for b1 := b0 + 1; b1 <= 6; b1++ {
					a, b := Span{Start: a0, End: a1}, Span{Start: b0, End: b1}
					assert.Equal(t, Overlaps(a, b), Overlaps(b, a), "%v %v", a, b)
				}
			}
		}
	}
	assert.True(t, Overlaps(Span{Start: 0, End: 5}, Span{Start: 4, End: 6}))
	assert.False(t, Overlaps(Span{Start: 0, End: 5}, Span{Start: 5, End: 6}))
}

func TestFreeText(t *testing.T) {
	t.Parallel()

	existing := []Label{text(1, 1, 10, "a bird")}

	requireViolation(t, Check(text(0, 1, 10, "a bird"), Policy{}, existing), RuleDuplicateText)
	assert.NoError(t, Check(text(0, 1, 10, "a frog"), Policy{}, existing))
	requireViolation(t, Check(text(0, 1, 10, "  "), Policy{}, nil), RuleMalformedLabel)
}

func TestRelationsAlwaysAccepted(t *testing.T) {
	t.Parallel()

	rel := Label{ItemID: 1, AnnotatorID: 10, Payload: Relation{TypeID: 3, FromID: 1, ToID: 2}}
	existing := []Label{rel, rel}
	assert.True(t, CanAnnotate(rel, Policy{SingleClass: true}, existing))
}

func TestScopeIgnoresOtherKinds(t *testing.T) {
	t.Parallel()

	existing := []Label{span(1, 1, 10, 0, 5), text(2, 1, 10, "x")}
	scope := ResolveScope(category(0, 1, 10, 1), Policy{Collaborative: true}, existing)
	assert.Empty(t, scope)
}

func TestUnknownKind(t *testing.T) {
	t.Parallel()

	requireViolation(t, Check(Label{ItemID: 1}, Policy{}, nil), RuleMalformedLabel)

	_, err := ParseKind("bbox")
	assert.Error(t, err)
	k, err := ParseKind("span")
	require.NoError(t, err)
	assert.Equal(t, KindSpan, k)
}
