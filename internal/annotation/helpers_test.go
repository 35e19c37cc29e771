package annotation

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/labelquorum/quorum/internal/datastore"
	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/datastore/repository"
	"github.com/labelquorum/quorum/internal/logger"
	"github.com/labelquorum/quorum/internal/observability/metrics"
)

type fixture struct {
	t       *testing.T
	ctx     context.Context
	store   *repository.Store
	svc     *Service
	metrics *metrics.TestRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	m, err := datastore.NewSQLiteManager(filepath.Join(t.TempDir(), "labels.db"), nil, 0)
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

	return &fixture{
		t:       t,
		ctx:     context.Background(),
		store:   store,
		svc:     NewService(store, WithLogger(log), WithMetrics(rec), WithPolicyTTL(time.Minute)),
		metrics: rec,
	}
}

// project creates a project with the given policy flags and n annotators.
func (f *fixture) project(p entities.Project, annotators int) (*entities.Project, []*entities.Member) {
	f.t.Helper()

	if p.Name == "" {
		p.Name = "p"
	}
	require.NoError(f.t, f.store.Projects.Create(f.ctx, &p))

	members := make([]*entities.Member, 0, annotators)
	for i := range annotators {
		m := &entities.Member{ProjectID: p.ID, UserID: uint(100 + i), Role: entities.RoleAnnotator}
		require.NoError(f.t, f.store.Members.Add(f.ctx, m))
		members = append(members, m)
	}
	return &p, members
}
