package labeling

import "strings"

// Strategy checks a candidate of one label kind against its scope.
type Strategy interface {
	Check(candidate Label, scope Scope) error
}

type categoryStrategy struct{ singleClass bool }

type spanStrategy struct{ allowOverlap bool }

type textStrategy struct{}

type relationStrategy struct{}

// StrategyFor returns the strategy for kind under policy. The second
// result is false for unknown kinds.
func StrategyFor(kind Kind, policy Policy) (Strategy, bool) {
	switch kind {
	case KindCategory:
		return categoryStrategy{singleClass: policy.SingleClass}, true
	case KindSpan:
		return spanStrategy{allowOverlap: policy.AllowOverlappingSpans}, true
	case KindText:
		return textStrategy{}, true
	case KindRelation:
		return relationStrategy{}, true
	}
	return nil, false
}

func (s categoryStrategy) Check(candidate Label, scope Scope) error {
	if s.singleClass && len(scope) > 0 {
		return violation(RuleExclusiveCategory,
			"item %d already has a category label and the project allows only one", candidate.ItemID)
	}
	typeID := candidate.TypeID()
	for _, l := range scope {
		if l.TypeID() == typeID {
			return violation(RuleDuplicateCategory,
				"category %d is already assigned to item %d", typeID, candidate.ItemID)
		}
	}
	return nil
}

func (s spanStrategy) Check(candidate Label, scope Scope) error {
	span, ok := candidate.Payload.(Span)
	if !ok {
		return violation(RuleMalformedLabel, "expected a span label, got %q", candidate.Kind())
	}
	if span.Start < 0 || span.End <= span.Start {
		return violation(RuleMalformedLabel, "span [%d,%d) is empty or negative", span.Start, span.End)
	}
	if s.allowOverlap {
		return nil
	}
	for _, l := range scope {
		other, ok := l.Payload.(Span)
		if ok && Overlaps(span, other) {
			return violation(RuleOverlappingSpans,
				"span [%d,%d) overlaps existing span [%d,%d)", span.Start, span.End, other.Start, other.End)
		}
	}
	return nil
}

func (textStrategy) Check(candidate Label, scope Scope) error {
	payload, ok := candidate.Payload.(FreeText)
	if !ok {
		return violation(RuleMalformedLabel, "expected a text label, got %q", candidate.Kind())
	}
	text := payload.Text
	if strings.TrimSpace(text) == "" {
		return violation(RuleMalformedLabel, "text must not be empty")
	}
	for _, l := range scope {
		if other, ok := l.Payload.(FreeText); ok && other.Text == text {
			return violation(RuleDuplicateText, "the same text is already recorded on item %d", candidate.ItemID)
		}
	}
	return nil
}

// Relations are never mutually exclusive.
func (relationStrategy) Check(Label, Scope) error {
	return nil
}

// Check validates candidate against the existing labels of its item and
// returns a *ConstraintViolation when the label must be rejected.
func Check(candidate Label, policy Policy, existing []Label) error {
	strategy, ok := StrategyFor(candidate.Kind(), policy)
	if !ok {
		return violation(RuleMalformedLabel, "label has no known kind")
	}
	return strategy.Check(candidate, ResolveScope(candidate, policy, existing))
}

// CanAnnotate reports whether candidate may be added.
func CanAnnotate(candidate Label, policy Policy, existing []Label) bool {
	return Check(candidate, policy, existing) == nil
}
