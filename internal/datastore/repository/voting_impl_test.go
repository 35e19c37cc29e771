package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/tally"
)

func TestRoundRepository_SingleOpenRound(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()
	project, _ := seedProject(t, s, 2)
	now := time.Now().UTC()

	first := openRound(project.ID, 1, now, now.Add(time.Hour))
	require.NoError(t, s.Rounds.Create(ctx, first))

	err := s.Rounds.Create(ctx, openRound(project.ID, 2, now, now.Add(time.Hour)))
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.True(t, DuplicateKeyOn(err, "open_project"))

	open, err := s.Rounds.Open(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, open.ID)

	closed, err := s.Rounds.Close(ctx, first.ID, now)
	require.NoError(t, err)
	assert.True(t, closed)

	closed, err = s.Rounds.Close(ctx, first.ID, now)
	require.NoError(t, err)
	assert.False(t, closed, "closing twice must be a no-op")

	stored, err := s.Rounds.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, stored.Closed)
	assert.Nil(t, stored.OpenProjectID)
	assert.NotNil(t, stored.ClosedAt)

	_, err = s.Rounds.Open(ctx, project.ID)
	require.ErrorIs(t, err, ErrRoundNotFound)

	require.NoError(t, s.Rounds.Create(ctx, openRound(project.ID, 2, now, now.Add(time.Hour))))
}

func TestRoundRepository_Versions(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()
	project, _ := seedProject(t, s, 1)
	now := time.Now().UTC()

	v, err := s.Rounds.MaxVersion(ctx, project.ID)
	require.NoError(t, err)
	assert.Zero(t, v)

	r := openRound(project.ID, 3, now, now.Add(time.Hour))
	require.NoError(t, s.Rounds.Create(ctx, r))
	_, err = s.Rounds.Close(ctx, r.ID, now)
	require.NoError(t, err)

	dup := openRound(project.ID, 3, now, now.Add(time.Hour))
	err = s.Rounds.Create(ctx, dup)
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.True(t, DuplicateKeyOn(err, "version"))
	assert.False(t, DuplicateKeyOn(err, "open_project"))

	v, err = s.Rounds.MaxVersion(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	exists, err := s.Rounds.VersionExists(ctx, project.ID, 3)
	require.NoError(t, err)
	assert.True(t, exists)

	ids, err := s.Rounds.OpenProjectIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRuleRepository_FinalizeOnce(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()
	project, _ := seedProject(t, s, 1)
	now := time.Now().UTC()

	round := openRound(project.ID, 1, now, now.Add(time.Hour))
	require.NoError(t, s.Rounds.Create(ctx, round))

	a := &entities.AnnotationRule{RoundID: round.ID, ProjectID: project.ID, Name: "a", Verdict: tally.Pending}
	b := &entities.AnnotationRule{RoundID: round.ID, ProjectID: project.ID, Name: "b", Verdict: tally.Pending}
	require.NoError(t, s.Rules.Create(ctx, a))
	require.NoError(t, s.Rules.Create(ctx, b))

	total, pending, err := s.Rules.Progress(ctx, round.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(2), pending)

	changed, err := s.Rules.Finalize(ctx, a.ID, tally.Approved, now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.Rules.Finalize(ctx, a.ID, tally.Rejected, now)
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err := s.Rules.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, stored.Finalized)
	assert.Equal(t, tally.Approved, stored.Verdict, "a finalized verdict never changes")

	total, pending, err = s.Rules.Progress(ctx, round.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), pending)

	require.NoError(t, s.Rules.UpdateText(ctx, b.ID, "b2", "renamed"))
	require.ErrorIs(t, s.Rules.UpdateText(ctx, 9999, "x", ""), ErrRuleNotFound)

	rules, err := s.Rules.ListByRound(ctx, round.ID)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "b2", rules[1].Name)

	_, err = s.Rules.ForUpdate(ctx, 9999)
	require.ErrorIs(t, err, ErrRuleNotFound)

	roundID, err := s.Rules.RoundID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, round.ID, roundID)
	_, err = s.Rules.RoundID(ctx, 9999)
	require.ErrorIs(t, err, ErrRuleNotFound)
}

func TestBallotRepository_OnePerMember(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()
	project, members := seedProject(t, s, 2)
	now := time.Now().UTC()

	round := openRound(project.ID, 1, now, now.Add(time.Hour))
	require.NoError(t, s.Rounds.Create(ctx, round))
	rule := &entities.AnnotationRule{RoundID: round.ID, ProjectID: project.ID, Name: "r", Verdict: tally.Pending}
	require.NoError(t, s.Rules.Create(ctx, rule))

	yes := true
	require.NoError(t, s.Ballots.Create(ctx, &entities.Ballot{RuleID: rule.ID, MemberID: members[1].ID, Answer: &yes}))

	err := s.Ballots.Create(ctx, &entities.Ballot{RuleID: rule.ID, MemberID: members[1].ID, Answer: &yes})
	require.ErrorIs(t, err, ErrDuplicateKey)

	require.NoError(t, s.Ballots.Create(ctx, &entities.Ballot{RuleID: rule.ID, MemberID: members[2].ID, Comment: "unsure"}))

	n, err := s.Ballots.CountByRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	exists, err := s.Ballots.Exists(ctx, rule.ID, members[1].ID)
	require.NoError(t, err)
	assert.True(t, exists)

	ballots, err := s.Ballots.ListByRule(ctx, rule.ID)
	require.NoError(t, err)
	require.Len(t, ballots, 2)
	assert.Nil(t, ballots[1].Answer)
	assert.Equal(t, tally.Approved, tally.Tally(ballots))
}
