package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/labelquorum/quorum/internal/datastore/entities"
)

type projectRepository struct {
	db *gorm.DB
}

func (r *projectRepository) Create(ctx context.Context, project *entities.Project) error {
	return create(r.db.WithContext(ctx), project)
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (*entities.Project, error) {
	return first[entities.Project](r.db.WithContext(ctx).Where("id = ?", id), ErrProjectNotFound)
}

type memberRepository struct {
	db *gorm.DB
}

func (r *memberRepository) Add(ctx context.Context, member *entities.Member) error {
	return create(r.db.WithContext(ctx), member)
}

func (r *memberRepository) GetByID(ctx context.Context, id uint) (*entities.Member, error) {
	return first[entities.Member](r.db.WithContext(ctx).Where("id = ?", id), ErrMemberNotFound)
}

func (r *memberRepository) CountByRole(ctx context.Context, projectID uint, role string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entities.Member{}).
		Where("project_id = ? AND role = ?", projectID, role).
		Count(&n).Error
	return n, err
}

func (r *memberRepository) ListByProject(ctx context.Context, projectID uint) ([]*entities.Member, error) {
	var members []*entities.Member
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&members).Error
	return members, err
}
