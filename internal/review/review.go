// Package review records reviewer decisions on dataset items and manual
// discrepancy flags.
//
// A review is keyed by (item, reviewer): submitting again replaces the
// earlier decision. No aggregation across reviewers happens here;
// disagreement between annotators is detected from raw labels by package
// discrepancy.
package review

import (
	"context"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/datastore/repository"
	"github.com/labelquorum/quorum/internal/errors"
	"github.com/labelquorum/quorum/internal/logger"
	"github.com/labelquorum/quorum/internal/observability/metrics"
)

// invalidInput is a comparable validation sentinel.
type invalidInput string

func (e invalidInput) Error() string { return string(e) }

func (invalidInput) ErrorCategory() errors.ErrorCategory { return errors.CategoryValidation }

// Validation errors.
var (
	ErrInvalidReview    error = invalidInput("review needs a project, an item and a reviewer")
	ErrNotProjectMember error = invalidInput("member does not belong to this project")
)

// Input is one reviewer's decision on one item. A nil Approved means approved.
type Input struct {
	ProjectID       uint
	ItemID          uint
	ReviewerID      uint
	Approved        *bool
	Comment         string
	LabelAgreements []entities.LabelAgreement
}

// Service writes and lists reviews and manual flags.
type Service struct {
	store   *repository.Store
	log     logger.Logger
	metrics metrics.Recorder
}

// NewService creates a review service. A nil log uses the global logger.
func NewService(store *repository.Store, log logger.Logger, rec metrics.Recorder) *Service {
	if log == nil {
		log = logger.Global().Module("review")
	}
	return &Service{store: store, log: log, metrics: metrics.OrNoop(rec)}
}

// Upsert stores the review for (item, reviewer), replacing any earlier one,
// and returns the stored record.
func (s *Service) Upsert(ctx context.Context, in Input) (*entities.DatasetReview, error) {
	start := time.Now()
	if in.ProjectID == 0 || in.ItemID == 0 || in.ReviewerID == 0 {
		return nil, ErrInvalidReview
	}

	approved := true
	if in.Approved != nil {
		approved = *in.Approved
	}
	agreements := in.LabelAgreements
	if agreements == nil {
		agreements = []entities.LabelAgreement{}
	}

	record := &entities.DatasetReview{
		ProjectID:       in.ProjectID,
		ItemID:          in.ItemID,
		ReviewerID:      in.ReviewerID,
		Approved:        approved,
		Comment:         strings.TrimSpace(in.Comment),
		LabelAgreements: datatypes.NewJSONSlice(agreements),
	}
	err := s.store.Atomically(ctx, metrics.OpReviewUpsert, func(tx *repository.Store) error {
		if _, err := tx.Projects.GetByID(ctx, in.ProjectID); err != nil {
			return err
		}
		reviewer, err := tx.Members.GetByID(ctx, in.ReviewerID)
		if err != nil {
			return err
		}
		if reviewer.ProjectID != in.ProjectID {
			return ErrNotProjectMember
		}
		return tx.Reviews.Upsert(ctx, record)
	})
	s.metrics.RecordDuration(metrics.OpReviewUpsert, time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordError(metrics.OpReviewUpsert, string(categoryOf(err)))
		return nil, err
	}

	status := metrics.StatusRejected
	if record.Approved {
		status = metrics.StatusAccepted
	}
	s.metrics.RecordOperation(metrics.OpReviewUpsert, status)
	s.log.WithContext(ctx).Info("dataset review stored",
		logger.Uint64("review_id", uint64(record.ID)),
		logger.Uint64("item_id", uint64(record.ItemID)),
		logger.Uint64("reviewer_id", uint64(record.ReviewerID)),
		logger.Bool("approved", record.Approved),
		logger.Int("label_agreements", len(record.LabelAgreements)))
	return record, nil
}

// Get returns the review of an item by a reviewer.
func (s *Service) Get(ctx context.Context, itemID, reviewerID uint) (*entities.DatasetReview, error) {
	r, err := s.store.Reviews.Get(ctx, itemID, reviewerID)
	return r, repository.Wrap("get_review", err)
}

// List returns reviews matching filter, newest first.
func (s *Service) List(ctx context.Context, filter repository.ReviewFilter) ([]*entities.DatasetReview, error) {
	reviews, err := s.store.Reviews.List(ctx, filter)
	return reviews, repository.Wrap("list_reviews", err)
}

func categoryOf(err error) errors.ErrorCategory {
	var categorized errors.CategorizedError
	if errors.As(err, &categorized) {
		return categorized.ErrorCategory()
	}
	return errors.CategoryGeneric
}
