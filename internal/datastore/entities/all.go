package entities

// All lists every model in migration order.
func All() []any {
	return []any{
		&Project{},
		&Member{},
		&Label{},
		&VotingRound{},
		&AnnotationRule{},
		&Ballot{},
		&DatasetReview{},
		&ManualDiscrepancy{},
	}
}
