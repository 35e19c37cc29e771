package voting

import (
	"context"
	"time"

	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/datastore/repository"
	"github.com/labelquorum/quorum/internal/errors"
	"github.com/labelquorum/quorum/internal/logger"
	"github.com/labelquorum/quorum/internal/observability/metrics"
)

// maxVersionAttempts bounds renumbering when a concurrent writer takes the
// version chosen for a new round.
const maxVersionAttempts = 3

// RoundParams describes a new voting round.
type RoundParams struct {
	ProjectID uint
	BeginsAt  time.Time
	EndsAt    time.Time
	CreatedBy uint
	// Version is used when positive and still free; otherwise the round
	// gets the project's highest version plus one.
	Version int
	// Informational thresholds stored with the round. Finalization always
	// waits for every annotator or for the end of the window.
	VotingThreshold     int
	PercentageThreshold float64
}

// CreateRound opens a new round for a project.
//
// An open round that has no rules, or whose rules are all finalized, is
// closed to make room. An open round with pending rules makes CreateRound
// fail with ErrActiveRoundExists.
func (s *Service) CreateRound(ctx context.Context, p RoundParams) (*entities.VotingRound, error) {
	start := time.Now()
	if !p.BeginsAt.Before(p.EndsAt) {
		s.observe(metrics.OpRoundCreate, start, ErrInvalidWindow)
		return nil, ErrInvalidWindow
	}

	var (
		round *entities.VotingRound
		tr    transitions
	)
	err := s.store.Atomically(ctx, metrics.OpRoundCreate, func(tx *repository.Store) error {
		tr = transitions{}
		now := s.now()

		if _, err := tx.Projects.GetByID(ctx, p.ProjectID); err != nil {
			return err
		}

		open, err := tx.Rounds.Open(ctx, p.ProjectID)
		switch {
		case errors.Is(err, repository.ErrRoundNotFound):
		case err != nil:
			return err
		default:
			if err := s.retireOpenRound(ctx, tx, open, now, &tr); err != nil {
				return err
			}
		}

		round, err = s.insertRound(ctx, tx, p)
		return err
	})
	s.observe(metrics.OpRoundCreate, start, err)
	if err != nil {
		return nil, err
	}

	s.report(ctx, &tr)
	s.log.WithContext(ctx).Info("voting round created",
		logger.Uint64("round_id", uint64(round.ID)),
		logger.Uint64("project_id", uint64(round.ProjectID)),
		logger.Int("version", round.Version),
		logger.Time("begins_at", round.BeginsAt),
		logger.Time("ends_at", round.EndsAt),
		logger.Uint64("created_by", uint64(round.CreatedBy)))
	return round, nil
}

// retireOpenRound closes an open round that no longer collects votes.
func (s *Service) retireOpenRound(ctx context.Context, tx *repository.Store, open *entities.VotingRound, now time.Time, tr *transitions) error {
	total, pending, err := tx.Rules.Progress(ctx, open.ID)
	if err != nil {
		return err
	}
	if total > 0 && pending > 0 {
		return ErrActiveRoundExists
	}
	return s.closeRound(ctx, tx, open, TriggerSuperseded, now, tr)
}

func (s *Service) insertRound(ctx context.Context, tx *repository.Store, p RoundParams) (*entities.VotingRound, error) {
	version := p.Version
	if version > 0 {
		taken, err := tx.Rounds.VersionExists(ctx, p.ProjectID, version)
		if err != nil {
			return nil, err
		}
		if taken {
			version = 0
		}
	}

	projectID := p.ProjectID
	for range maxVersionAttempts {
		if version <= 0 {
			highest, err := tx.Rounds.MaxVersion(ctx, p.ProjectID)
			if err != nil {
				return nil, err
			}
			version = highest + 1
		}

		round := &entities.VotingRound{
			ProjectID:           p.ProjectID,
			Version:             version,
			OpenProjectID:       &projectID,
			BeginsAt:            p.BeginsAt.UTC(),
			EndsAt:              p.EndsAt.UTC(),
			CreatedBy:           p.CreatedBy,
			VotingThreshold:     p.VotingThreshold,
			PercentageThreshold: p.PercentageThreshold,
		}
		err := tx.Rounds.Create(ctx, round)
		switch {
		case err == nil:
			return round, nil
		case repository.DuplicateKeyOn(err, "open_project"):
			return nil, ErrActiveRoundExists
		case errors.Is(err, repository.ErrDuplicateKey):
			version = 0 // renumber
		default:
			return nil, err
		}
	}
	return nil, repository.Unavailable(metrics.OpRoundCreate, errors.NewStd("could not allocate a round version"))
}

// CloseRound finalizes every pending rule of an open round with the
// ballots cast so far and closes the round.
func (s *Service) CloseRound(ctx context.Context, roundID uint) (*entities.VotingRound, error) {
	start := time.Now()
	var (
		round *entities.VotingRound
		tr    transitions
	)
	err := s.store.Atomically(ctx, metrics.OpRoundClose, func(tx *repository.Store) error {
		tr = transitions{}
		now := s.now()

		var err error
		round, err = tx.Rounds.ForUpdate(ctx, roundID)
		if err != nil {
			return err
		}
		if round.Closed {
			return ErrRoundClosed
		}
		if err := s.finalizePending(ctx, tx, round, TriggerManualClose, now, &tr); err != nil {
			return err
		}
		return s.closeRound(ctx, tx, round, TriggerManualClose, now, &tr)
	})
	s.observe(metrics.OpRoundClose, start, err)
	if err != nil {
		return nil, err
	}
	s.report(ctx, &tr)
	return round, nil
}

// finalizePending finalizes every pending rule of round.
func (s *Service) finalizePending(ctx context.Context, tx *repository.Store, round *entities.VotingRound, trigger string, now time.Time, tr *transitions) error {
	rules, err := tx.Rules.ListByRound(ctx, round.ID)
	if err != nil {
		return err
	}
	for _, rule := range rules {
		if rule.Finalized {
			continue
		}
		if err := s.finalize(ctx, tx, rule, trigger, now, tr); err != nil {
			return err
		}
	}
	return nil
}

// ListRounds sweeps the project and returns its rounds, newest first.
func (s *Service) ListRounds(ctx context.Context, projectID uint) ([]*entities.VotingRound, error) {
	if _, err := s.Sweep(ctx, projectID); err != nil {
		return nil, err
	}
	rounds, err := s.store.Rounds.ListByProject(ctx, projectID)
	return rounds, repository.Wrap("list_rounds", err)
}

// GetRound returns a round without sweeping.
func (s *Service) GetRound(ctx context.Context, roundID uint) (*entities.VotingRound, error) {
	round, err := s.store.Rounds.GetByID(ctx, roundID)
	return round, repository.Wrap("get_round", err)
}
