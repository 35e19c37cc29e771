package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/labelquorum/quorum/internal/datastore/entities"
)

type reviewRepository struct {
	db *gorm.DB
}

func (r *reviewRepository) Upsert(ctx context.Context, review *entities.DatasetReview) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "reviewer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"project_id", "approved", "comment", "label_agreements", "updated_at"}),
		}).
		Create(review).Error
	if err != nil {
		return err
	}

	// MySQL does not report the id of an updated row.
	stored, err := r.Get(ctx, review.ItemID, review.ReviewerID)
	if err != nil {
		return err
	}
	*review = *stored
	return nil
}

func (r *reviewRepository) Get(ctx context.Context, itemID, reviewerID uint) (*entities.DatasetReview, error) {
	return first[entities.DatasetReview](
		r.db.WithContext(ctx).Where("item_id = ? AND reviewer_id = ?", itemID, reviewerID),
		ErrReviewNotFound)
}

func (r *reviewRepository) List(ctx context.Context, filter ReviewFilter) ([]*entities.DatasetReview, error) {
	q := r.db.WithContext(ctx)
	if filter.ProjectID != 0 {
		q = q.Where("project_id = ?", filter.ProjectID)
	}
	if filter.ReviewerID != 0 {
		q = q.Where("reviewer_id = ?", filter.ReviewerID)
	}
	if filter.Approved != nil {
		q = q.Where("approved = ?", *filter.Approved)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var reviews []*entities.DatasetReview
	err := q.Order("created_at DESC, id DESC").Find(&reviews).Error
	return reviews, err
}

type discrepancyRepository struct {
	db *gorm.DB
}

func (r *discrepancyRepository) Upsert(ctx context.Context, flag *entities.ManualDiscrepancy) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "member_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"project_id", "reason", "updated_at"}),
		}).
		Create(flag).Error
	if err != nil {
		return err
	}

	stored, err := r.Get(ctx, flag.ItemID, flag.MemberID)
	if err != nil {
		return err
	}
	*flag = *stored
	return nil
}

func (r *discrepancyRepository) Get(ctx context.Context, itemID, memberID uint) (*entities.ManualDiscrepancy, error) {
	return first[entities.ManualDiscrepancy](
		r.db.WithContext(ctx).Where("item_id = ? AND member_id = ?", itemID, memberID),
		ErrDiscrepancyNotFound)
}

func (r *discrepancyRepository) Delete(ctx context.Context, itemID, memberID uint) error {
	result := r.db.WithContext(ctx).
		Where("item_id = ? AND member_id = ?", itemID, memberID).
		Delete(&entities.ManualDiscrepancy{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDiscrepancyNotFound
	}
	return nil
}

func (r *discrepancyRepository) List(ctx context.Context, filter DiscrepancyFilter) ([]*entities.ManualDiscrepancy, error) {
	q := r.db.WithContext(ctx)
	if filter.ProjectID != 0 {
		q = q.Where("project_id = ?", filter.ProjectID)
	}
	if filter.ItemID != 0 {
		q = q.Where("item_id = ?", filter.ItemID)
	}

	var flags []*entities.ManualDiscrepancy
	err := q.Order("item_id ASC, member_id ASC").Find(&flags).Error
	return flags, err
}
