package voting

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/labelquorum/quorum/internal/datastore"
	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/datastore/repository"
	"github.com/labelquorum/quorum/internal/logger"
	"github.com/labelquorum/quorum/internal/observability/metrics"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	store   *repository.Store
	svc     *Service
	clock   *fakeClock
	metrics *metrics.TestRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	m, err := datastore.NewSQLiteManager(filepath.Join(t.TempDir(), "voting.db"), nil, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	require.NoError(t, m.Initialize())

	log := logger.NewSlogLogger(io.Discard, logger.LogLevelDebug, nil)
	rec := metrics.NewTestRecorder()
	store := repository.NewStore(m.DB(),
		repository.WithLogger(log),
		repository.WithRetryPolicy(repository.RetryPolicy{
			MaxRetries:      10,
			InitialInterval: time.Millisecond,
			MaxInterval:     20 * time.Millisecond,
		}))
	clock := newFakeClock(epoch)

	return &fixture{
		t:       t,
		ctx:     context.Background(),
		store:   store,
		svc:     NewService(store, WithClock(clock), WithLogger(log), WithMetrics(rec)),
		clock:   clock,
		metrics: rec,
	}
}

// project creates a project with one admin and n annotators.
func (f *fixture) project(annotators int) (admin *entities.Member, voters []*entities.Member) {
	f.t.Helper()

	p := &entities.Project{Name: "p"}
	require.NoError(f.t, f.store.Projects.Create(f.ctx, p))

	admin = &entities.Member{ProjectID: p.ID, UserID: 1, Role: entities.RoleProjectAdmin}
	require.NoError(f.t, f.store.Members.Add(f.ctx, admin))
	for i := range annotators {
		m := &entities.Member{ProjectID: p.ID, UserID: uint(10 + i), Role: entities.RoleAnnotator}
		require.NoError(f.t, f.store.Members.Add(f.ctx, m))
		voters = append(voters, m)
	}
	return admin, voters
}

// round opens a one hour round starting now with the named rules.
func (f *fixture) round(admin *entities.Member, names ...string) (*entities.VotingRound, []*entities.AnnotationRule) {
	f.t.Helper()

	now := f.clock.Now()
	round, err := f.svc.CreateRound(f.ctx, RoundParams{
		ProjectID: admin.ProjectID,
		BeginsAt:  now,
		EndsAt:    now.Add(time.Hour),
		CreatedBy: admin.ID,
	})
	require.NoError(f.t, err)

	rules := make([]*entities.AnnotationRule, 0, len(names))
	for _, name := range names {
		rule, err := f.svc.AddRule(f.ctx, round.ID, name, "")
		require.NoError(f.t, err)
		rules = append(rules, rule)
	}
	return round, rules
}

func (f *fixture) rule(id uint) *entities.AnnotationRule {
	f.t.Helper()
	rule, err := f.svc.GetRule(f.ctx, id)
	require.NoError(f.t, err)
	return rule
}

func (f *fixture) reload(round *entities.VotingRound) *entities.VotingRound {
	f.t.Helper()
	r, err := f.svc.GetRound(f.ctx, round.ID)
	require.NoError(f.t, err)
	return r
}

// requireClosedRoundsFinalized checks that no closed round has a pending rule.
func (f *fixture) requireClosedRoundsFinalized(projectID uint) {
	f.t.Helper()

	rounds, err := f.store.Rounds.ListByProject(f.ctx, projectID)
	require.NoError(f.t, err)
	for _, r := range rounds {
		if !r.Closed {
			continue
		}
		_, pending, err := f.store.Rules.Progress(f.ctx, r.ID)
		require.NoError(f.t, err)
		require.Zero(f.t, pending, "closed round %d has pending rules", r.ID)
	}
}
