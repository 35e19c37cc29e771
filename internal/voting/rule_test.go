package voting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelquorum/quorum/internal/tally"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateRule_Override(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin, voters := f.project(3)
	round, rules := f.round(admin, "draft", "other")

	_, err := f.svc.SubmitBallot(f.ctx, rules[0].ID, voters[0].ID, Yes(""))
	require.NoError(t, err)

	updated, err := f.svc.UpdateRule(f.ctx, rules[0].ID, RuleUpdate{
		Name:        ptr("final name"),
		Description: ptr("covers occluded objects"),
	})
	require.NoError(t, err)
	assert.Equal(t, "final name", updated.Name)
	assert.False(t, updated.Finalized)

	// Finalize from the ballots cast so far.
	updated, err = f.svc.UpdateRule(f.ctx, rules[0].ID, RuleUpdate{Finalized: ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.Finalized)
	assert.Equal(t, tally.Approved, updated.Verdict)
	assert.False(t, f.reload(round).Closed)

	// Explicit verdict on the last pending rule closes the round.
	_, err = f.svc.UpdateRule(f.ctx, rules[1].ID, RuleUpdate{Verdict: ptr(tally.Tie)})
	require.NoError(t, err)
	assert.Equal(t, tally.Tie, f.rule(rules[1].ID).Verdict)
	assert.True(t, f.reload(round).Closed)
	f.requireClosedRoundsFinalized(admin.ProjectID)
}

func TestUpdateRule_FinalizedIsMonotonic(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin, _ := f.project(1)
	_, rules := f.round(admin, "r")
	id := rules[0].ID

	_, err := f.svc.UpdateRule(f.ctx, id, RuleUpdate{Verdict: ptr(tally.Rejected)})
	require.NoError(t, err)

	tests := []struct {
		name string
		u    RuleUpdate
	}{
		{"unfinalize", RuleUpdate{Finalized: ptr(false)}},
		{"change verdict", RuleUpdate{Verdict: ptr(tally.Approved)}},
		{"rename", RuleUpdate{Name: ptr("renamed")}},
	}
	for _, tt := range tests {
		_, err := f.svc.UpdateRule(f.ctx, id, tt.u)
		require.ErrorIs(t, err, ErrRuleAlreadyFinalized, tt.name)
	}

	// Restating the current state is accepted.
	rule, err := f.svc.UpdateRule(f.ctx, id, RuleUpdate{Finalized: ptr(true), Verdict: ptr(tally.Rejected)})
	require.NoError(t, err)
	assert.Equal(t, tally.Rejected, rule.Verdict)
}

func TestUpdateRule_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin, _ := f.project(1)
	round, rules := f.round(admin, "r")

	_, err := f.svc.UpdateRule(f.ctx, rules[0].ID, RuleUpdate{Verdict: ptr(tally.Pending)})
	require.ErrorIs(t, err, ErrInvalidVerdict)

	_, err = f.svc.UpdateRule(f.ctx, rules[0].ID, RuleUpdate{Name: ptr("  ")})
	require.ErrorIs(t, err, ErrEmptyRuleName)

	_, err = f.svc.AddRule(f.ctx, round.ID, "", "")
	require.ErrorIs(t, err, ErrEmptyRuleName)
}

func TestCounts(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin, voters := f.project(3)
	_, rules := f.round(admin, "r")

	_, err := f.svc.SubmitBallot(f.ctx, rules[0].ID, voters[0].ID, Yes(""))
	require.NoError(t, err)
	_, err = f.svc.SubmitBallot(f.ctx, rules[0].ID, voters[1].ID, CommentOnly("?"))
	require.NoError(t, err)

	counts, err := f.svc.Counts(f.ctx, rules[0].ID)
	require.NoError(t, err)
	assert.Equal(t, tally.Counts{For: 1}, counts)
}
