package voting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/labelquorum/quorum/internal/datastore/repository"
	"github.com/labelquorum/quorum/internal/errors"
	"github.com/labelquorum/quorum/internal/logger"
	"github.com/labelquorum/quorum/internal/observability/metrics"
)

// SweepResult summarizes what a sweep changed.
type SweepResult struct {
	Projects       int
	RulesFinalized int
	RoundsClosed   int
}

func (r *SweepResult) add(o SweepResult) {
	r.Projects += o.Projects
	r.RulesFinalized += o.RulesFinalized
	r.RoundsClosed += o.RoundsClosed
}

// Sweep brings a project's open round up to date with the clock.
//
// If the round's window has ended, every pending rule is finalized with the
// ballots it has (possibly none) and the round is closed. Otherwise the
// round is closed only when it has rules and all of them are finalized.
func (s *Service) Sweep(ctx context.Context, projectID uint) (SweepResult, error) {
	start := time.Now()
	var tr transitions
	err := s.store.Atomically(ctx, metrics.OpSweep, func(tx *repository.Store) error {
		tr = transitions{}
		now := s.now()

		open, err := tx.Rounds.Open(ctx, projectID)
		if errors.Is(err, repository.ErrRoundNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		round, err := tx.Rounds.ForUpdate(ctx, open.ID)
		if err != nil {
			return err
		}

		if !round.ExpiredAt(now) {
			return s.closeIfComplete(ctx, tx, round, now, &tr)
		}
		if err := s.finalizePending(ctx, tx, round, TriggerExpired, now, &tr); err != nil {
			return err
		}
		return s.closeRound(ctx, tx, round, TriggerExpired, now, &tr)
	})
	s.observe(metrics.OpSweep, start, err)
	if err != nil {
		return SweepResult{}, err
	}

	s.report(ctx, &tr)
	return SweepResult{
		Projects:       1,
		RulesFinalized: len(tr.finalized),
		RoundsClosed:   len(tr.closed),
	}, nil
}

// SweepAll sweeps every project with an open round. A failing project is
// logged and skipped; the joined errors are returned with the totals of
// the projects that succeeded.
func (s *Service) SweepAll(ctx context.Context) (SweepResult, error) {
	log := s.log.WithContext(ctx).With(logger.String("sweep_id", uuid.NewString()))

	projectIDs, err := s.store.Rounds.OpenProjectIDs(ctx)
	if err != nil {
		return SweepResult{}, repository.Wrap("sweep_all", err)
	}

	var (
		total SweepResult
		errs  []error
	)
	for _, projectID := range projectIDs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := s.Sweep(ctx, projectID)
		if err != nil {
			log.Error("project sweep failed",
				logger.Uint64("project_id", uint64(projectID)),
				logger.Bool("retryable", repository.Retryable(err)),
				logger.Error(err))
			errs = append(errs, err)
			continue
		}
		total.add(res)
	}

	log.Info("sweep completed",
		logger.Int("projects", total.Projects),
		logger.Int("failed", len(errs)),
		logger.Int("rules_finalized", total.RulesFinalized),
		logger.Int("rounds_closed", total.RoundsClosed))
	return total, errors.Join(errs...)
}
