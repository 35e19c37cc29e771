package consensus

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/labelquorum/quorum/internal/datastore/repository"
	"github.com/labelquorum/quorum/internal/errors"
	"github.com/labelquorum/quorum/internal/labeling"
	"github.com/labelquorum/quorum/internal/voting"
)

func TestUserMessage(t *testing.T) {
	t.Parallel()

	begin := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{
			"constraint",
			&labeling.ConstraintViolation{Rule: labeling.RuleOverlappingSpans, Reason: "span [3,8) overlaps existing span [0,5)"},
			"label not added: span [3,8) overlaps existing span [0,5) (overlapping-spans policy)",
		},
		{
			"window",
			fmt.Errorf("submit: %w", &voting.OutsideVotingWindowError{Now: begin.Add(-time.Hour), Begin: begin, End: begin.Add(time.Hour)}),
			"voting is open from 2026-05-01T00:00:00Z to 2026-05-01T01:00:00Z; server time is 2026-04-30T23:00:00Z",
		},
		{"duplicate ballot", voting.ErrDuplicateBallot, voting.ErrDuplicateBallot.Error()},
		{"active round", voting.ErrActiveRoundExists, voting.ErrActiveRoundExists.Error()},
		{"not found", repository.ErrRuleNotFound, "annotation rule not found"},
		{"storage", repository.Unavailable("submit_ballot", errors.NewStd("database is locked")), MsgUnavailable},
		{"unknown", errors.NewStd("boom"), "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
