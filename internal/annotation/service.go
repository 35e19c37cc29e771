// Package annotation records annotator labels after checking them against
// the project policy, and reports which items annotators disagree on.
//
// The policy check and the insert share one transaction that holds a lock
// on the item's labels, so two concurrent submissions on one item cannot
// both pass a check that only one of them should.
package annotation

import (
	"context"
	"time"

	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/datastore/repository"
	"github.com/labelquorum/quorum/internal/discrepancy"
	"github.com/labelquorum/quorum/internal/errors"
	"github.com/labelquorum/quorum/internal/labeling"
	"github.com/labelquorum/quorum/internal/logger"
	"github.com/labelquorum/quorum/internal/observability/metrics"
)

// DefaultPolicyTTL is how long a project policy stays cached.
const DefaultPolicyTTL = 5 * time.Minute

// Service validates and stores labels.
type Service struct {
	store     *repository.Store
	policies  *PolicyCache
	policyTTL time.Duration
	log       logger.Logger
	metrics   metrics.Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *Service) { s.metrics = metrics.OrNoop(r) }
}

// WithPolicyTTL sets the policy cache lifetime. Zero disables the cache.
func WithPolicyTTL(ttl time.Duration) Option {
	return func(s *Service) { s.policyTTL = ttl }
}

// NewService creates an annotation service over store.
func NewService(store *repository.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		policyTTL: DefaultPolicyTTL,
		log:       logger.Global().Module("annotation"),
		metrics:   metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.policies = NewPolicyCache(s.policyTTL, s.loadPolicy, s.metrics)
	return s
}

func (s *Service) loadPolicy(ctx context.Context, projectID uint) (labeling.Policy, error) {
	project, err := s.store.Projects.GetByID(ctx, projectID)
	if err != nil {
		return labeling.Policy{}, repository.Wrap("load_policy", err)
	}
	return PolicyOf(project), nil
}

// Policy returns the cached annotation policy of a project.
func (s *Service) Policy(ctx context.Context, projectID uint) (labeling.Policy, error) {
	return s.policies.Get(ctx, projectID)
}

// InvalidatePolicy forgets the cached policy after a project's flags change.
func (s *Service) InvalidatePolicy(projectID uint) {
	s.policies.Invalidate(projectID)
}

// ValidateAndRecord loads the project's policy and records candidate.
func (s *Service) ValidateAndRecord(ctx context.Context, projectID uint, candidate labeling.Label) (*entities.Label, error) {
	policy, err := s.policies.Get(ctx, projectID)
	if err != nil {
		s.metrics.RecordError(metrics.OpLabelRecord, errorType(err))
		return nil, err
	}
	return s.Record(ctx, policy, candidate)
}

// Record checks candidate against the labels already on its item under
// policy and stores it. A rejected label returns *labeling.ConstraintViolation.
func (s *Service) Record(ctx context.Context, policy labeling.Policy, candidate labeling.Label) (*entities.Label, error) {
	start := time.Now()
	row, err := s.record(ctx, policy, candidate)
	s.metrics.RecordDuration(metrics.OpLabelRecord, time.Since(start).Seconds())

	log := s.log.WithContext(ctx).With(
		logger.Uint64("project_id", uint64(policy.ProjectID)),
		logger.Uint64("item_id", uint64(candidate.ItemID)),
		logger.Uint64("annotator_id", uint64(candidate.AnnotatorID)),
		logger.String("kind", string(candidate.Kind())))

	var violation *labeling.ConstraintViolation
	switch {
	case errors.As(err, &violation):
		s.metrics.RecordOperation(metrics.OpLabelRecord, metrics.StatusRejected)
		log.Debug("label rejected", logger.String("rule", violation.Rule))
		return nil, err
	case err != nil:
		s.metrics.RecordError(metrics.OpLabelRecord, errorType(err))
		return nil, err
	}

	s.metrics.RecordOperation(metrics.OpLabelRecord, metrics.StatusAccepted)
	log.Debug("label recorded", logger.Uint64("label_id", uint64(row.ID)))
	return row, nil
}

func (s *Service) record(ctx context.Context, policy labeling.Policy, candidate labeling.Label) (*entities.Label, error) {
	if candidate.ItemID == 0 || candidate.AnnotatorID == 0 {
		return nil, ErrInvalidLabel
	}

	var row *entities.Label
	err := s.store.Atomically(ctx, metrics.OpLabelRecord, func(tx *repository.Store) error {
		member, err := tx.Members.GetByID(ctx, candidate.AnnotatorID)
		if err != nil {
			return err
		}
		if member.ProjectID != policy.ProjectID {
			return ErrNotProjectMember
		}

		stored, err := tx.Labels.LockItem(ctx, candidate.ItemID)
		if err != nil {
			return err
		}
		existing, err := fromEntities(stored)
		if err != nil {
			return err
		}
		if err := labeling.Check(candidate, policy, existing); err != nil {
			return err
		}

		row, err = toEntity(policy.ProjectID, candidate)
		if err != nil {
			return err
		}
		return tx.Labels.Create(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Retract deletes a label on behalf of the annotator who created it.
func (s *Service) Retract(ctx context.Context, labelID, annotatorID uint) error {
	err := s.store.Atomically(ctx, metrics.OpLabelRetract, func(tx *repository.Store) error {
		label, err := tx.Labels.GetByID(ctx, labelID)
		if err != nil {
			return err
		}
		if label.AnnotatorID != annotatorID {
			return ErrNotLabelOwner
		}
		return tx.Labels.Delete(ctx, labelID)
	})
	if err != nil {
		s.metrics.RecordError(metrics.OpLabelRetract, errorType(err))
		return err
	}

	s.metrics.RecordOperation(metrics.OpLabelRetract, metrics.StatusSuccess)
	s.log.WithContext(ctx).Debug("label retracted",
		logger.Uint64("label_id", uint64(labelID)),
		logger.Uint64("annotator_id", uint64(annotatorID)))
	return nil
}

// ListForItem returns every annotator's labels on an item.
func (s *Service) ListForItem(ctx context.Context, itemID uint) ([]labeling.Label, error) {
	rows, err := s.store.Labels.ListByItem(ctx, itemID)
	if err != nil {
		return nil, repository.Wrap("list_labels", err)
	}
	return fromEntities(rows)
}

// DiscrepancyPartition splits itemIDs into items whose annotators disagree
// and items where they agree or fewer than two annotators contributed.
// Both slices keep the input order and are never nil.
func (s *Service) DiscrepancyPartition(ctx context.Context, itemIDs []uint) (withDiscrepancy, withoutDiscrepancy []uint, err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordDuration(metrics.OpDiscrepancyReport, time.Since(start).Seconds())
	}()

	rows, err := s.store.Labels.ListByItems(ctx, itemIDs)
	if err != nil {
		err = repository.Wrap("list_labels", err)
		s.metrics.RecordError(metrics.OpDiscrepancyReport, errorType(err))
		return nil, nil, err
	}

	labelsByItem := make(map[uint][]labeling.Label, len(rows))
	for itemID, itemRows := range rows {
		labels, err := fromEntities(itemRows)
		if err != nil {
			s.metrics.RecordError(metrics.OpDiscrepancyReport, errorType(err))
			return nil, nil, err
		}
		labelsByItem[itemID] = labels
	}

	withDiscrepancy, withoutDiscrepancy = discrepancy.Partition(itemIDs, labelsByItem)
	s.metrics.RecordOperation(metrics.OpDiscrepancyReport, metrics.StatusSuccess)
	s.log.WithContext(ctx).Debug("discrepancy partition computed",
		logger.Int("items", len(itemIDs)),
		logger.Int("with_discrepancy", len(withDiscrepancy)))
	return withDiscrepancy, withoutDiscrepancy, nil
}
