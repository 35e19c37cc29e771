package labeling

// Policy is the per-project annotation policy. It is passed explicitly
// into every check.
type Policy struct {
	ProjectID uint
	// Collaborative projects check new labels against every annotator's labels.
	Collaborative bool
	// SingleClass allows at most one category label per item in scope.
	SingleClass bool
	// AllowOverlappingSpans disables the span overlap check.
	AllowOverlappingSpans bool
}

// Scope is the set of existing labels a candidate is checked against.
type Scope []Label

// ResolveScope selects the labels a candidate must be consistent with:
// labels of the same kind on the same item, owned by the candidate's
// annotator unless the project is collaborative.
func ResolveScope(candidate Label, policy Policy, existing []Label) Scope {
	var scope Scope
	for _, l := range existing {
		if l.ItemID != candidate.ItemID || l.Kind() != candidate.Kind() {
			continue
		}
		if !policy.Collaborative && l.AnnotatorID != candidate.AnnotatorID {
			continue
		}
		scope = append(scope, l)
	}
	return scope
}
