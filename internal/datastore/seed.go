package datastore

import (
	"context"

	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/datastore/repository"
)

// Demo describes the rows created by SeedDemo.
type Demo struct {
	Project    *entities.Project
	Admin      *entities.Member
	Annotators []*entities.Member
	Approver   *entities.Member
}

// SeedDemo creates a single-class project with one admin, three
// annotators and one approver, so the CLI can be tried on an empty database.
func SeedDemo(ctx context.Context, store *repository.Store) (*Demo, error) {
	demo := &Demo{}
	err := store.Atomically(ctx, "seed_demo", func(tx *repository.Store) error {
		project := &entities.Project{
			Name:                      "demo",
			SingleClassClassification: true,
		}
		if err := tx.Projects.Create(ctx, project); err != nil {
			return err
		}

		add := func(userID uint, role string) (*entities.Member, error) {
			m := &entities.Member{ProjectID: project.ID, UserID: userID, Role: role}
			return m, tx.Members.Add(ctx, m)
		}

		admin, err := add(1, entities.RoleProjectAdmin)
		if err != nil {
			return err
		}
		annotators := make([]*entities.Member, 0, 3)
		for userID := uint(2); userID <= 4; userID++ {
			m, err := add(userID, entities.RoleAnnotator)
			if err != nil {
				return err
			}
			annotators = append(annotators, m)
		}
		approver, err := add(5, entities.RoleApprover)
		if err != nil {
			return err
		}

		*demo = Demo{Project: project, Admin: admin, Annotators: annotators, Approver: approver}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return demo, nil
}
