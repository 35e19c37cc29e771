package review

import (
	"context"
	"strings"

	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/datastore/repository"
	"github.com/labelquorum/quorum/internal/logger"
	"github.com/labelquorum/quorum/internal/observability/metrics"
)

// Flag records that a member sees disagreement on an item. Flagging the
// same item again replaces the reason. Flags are independent of the
// automatic discrepancy detection.
func (s *Service) Flag(ctx context.Context, projectID, itemID, memberID uint, reason string) (*entities.ManualDiscrepancy, error) {
	flag := &entities.ManualDiscrepancy{
		ProjectID: projectID,
		ItemID:    itemID,
		MemberID:  memberID,
		Reason:    strings.TrimSpace(reason),
	}
	err := s.store.Atomically(ctx, metrics.OpDiscrepancyFlag, func(tx *repository.Store) error {
		member, err := tx.Members.GetByID(ctx, memberID)
		if err != nil {
			return err
		}
		if member.ProjectID != projectID {
			return ErrNotProjectMember
		}
		return tx.Discrepancies.Upsert(ctx, flag)
	})
	if err != nil {
		s.metrics.RecordError(metrics.OpDiscrepancyFlag, string(categoryOf(err)))
		return nil, err
	}

	s.metrics.RecordOperation(metrics.OpDiscrepancyFlag, metrics.StatusSuccess)
	s.log.WithContext(ctx).Info("discrepancy flagged",
		logger.Uint64("item_id", uint64(itemID)),
		logger.Uint64("member_id", uint64(memberID)))
	return flag, nil
}

// Unflag removes a member's flag on an item.
func (s *Service) Unflag(ctx context.Context, itemID, memberID uint) error {
	return repository.Wrap("unflag", s.store.Discrepancies.Delete(ctx, itemID, memberID))
}

// ListFlags returns manual flags matching filter.
func (s *Service) ListFlags(ctx context.Context, filter repository.DiscrepancyFilter) ([]*entities.ManualDiscrepancy, error) {
	flags, err := s.store.Discrepancies.List(ctx, filter)
	return flags, repository.Wrap("list_flags", err)
}
