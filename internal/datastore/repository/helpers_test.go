package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/labelquorum/quorum/internal/datastore/entities"
)

// setupTestDB opens a migrated SQLite file under t.TempDir().
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "quorum_test.db")
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON&_txlock=immediate", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gorm_logger.Default.LogMode(gorm_logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(setupTestDB(t), WithRetryPolicy(RetryPolicy{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}))
}

// seedProject creates a project with one admin and n annotators.
func seedProject(t *testing.T, s *Store, annotators int) (*entities.Project, []*entities.Member) {
	t.Helper()
	ctx := context.Background()

	project := &entities.Project{Name: "test"}
	require.NoError(t, s.Projects.Create(ctx, project))

	members := []*entities.Member{{ProjectID: project.ID, UserID: 1, Role: entities.RoleProjectAdmin}}
	for i := range annotators {
		members = append(members, &entities.Member{
			ProjectID: project.ID,
			UserID:    uint(100 + i),
			Role:      entities.RoleAnnotator,
		})
	}
	for _, m := range members {
		require.NoError(t, s.Members.Add(ctx, m))
	}
	return project, members
}

func openRound(projectID uint, version int, begins, ends time.Time) *entities.VotingRound {
	return &entities.VotingRound{
		ProjectID:     projectID,
		Version:       version,
		OpenProjectID: &projectID,
		BeginsAt:      begins,
		EndsAt:        ends,
		CreatedBy:     1,
	}
}
