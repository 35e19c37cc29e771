package voting

import (
	"context"
	"strings"
	"time"

	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/datastore/repository"
	"github.com/labelquorum/quorum/internal/logger"
	"github.com/labelquorum/quorum/internal/observability/metrics"
	"github.com/labelquorum/quorum/internal/tally"
)

// AddRule proposes a new rule in an open round.
func (s *Service) AddRule(ctx context.Context, roundID uint, name, description string) (*entities.AnnotationRule, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyRuleName
	}

	var rule *entities.AnnotationRule
	err := s.store.Atomically(ctx, metrics.OpRuleAdd, func(tx *repository.Store) error {
		round, err := tx.Rounds.ForUpdate(ctx, roundID)
		if err != nil {
			return err
		}
		if round.Closed {
			return ErrRoundClosed
		}
		rule = &entities.AnnotationRule{
			RoundID:     round.ID,
			ProjectID:   round.ProjectID,
			Name:        name,
			Description: description,
			Verdict:     tally.Pending,
		}
		return tx.Rules.Create(ctx, rule)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("annotation rule added",
		logger.Uint64("rule_id", uint64(rule.ID)),
		logger.Uint64("round_id", uint64(rule.RoundID)),
		logger.String("name", rule.Name))
	return rule, nil
}

// GetRule returns a rule without sweeping.
func (s *Service) GetRule(ctx context.Context, ruleID uint) (*entities.AnnotationRule, error) {
	rule, err := s.store.Rules.GetByID(ctx, ruleID)
	return rule, repository.Wrap("get_rule", err)
}

// ListRules sweeps the project and returns the rules of all its rounds,
// newest round first.
func (s *Service) ListRules(ctx context.Context, projectID uint) ([]*entities.AnnotationRule, error) {
	if _, err := s.Sweep(ctx, projectID); err != nil {
		return nil, err
	}
	rules, err := s.store.Rules.ListByProject(ctx, projectID)
	return rules, repository.Wrap("list_rules", err)
}

// Counts returns the current for/against tally of a rule.
func (s *Service) Counts(ctx context.Context, ruleID uint) (tally.Counts, error) {
	ballots, err := s.store.Ballots.ListByRule(ctx, ruleID)
	if err != nil {
		return tally.Counts{}, repository.Wrap("count_ballots", err)
	}
	return tally.Count(ballots), nil
}

// RuleUpdate is an admin edit of a rule. Nil fields are left unchanged.
type RuleUpdate struct {
	Name        *string
	Description *string
	// Finalized set to true finalizes the rule. Without Verdict the verdict
	// is computed from the ballots cast so far.
	Finalized *bool
	// Verdict finalizes the rule with an explicit final verdict.
	Verdict *tally.Verdict
}

// UpdateRule applies an admin override.
//
// Pending rules accept text edits and can be finalized. A finalized rule
// only accepts an update that restates its current state; un-finalizing,
// changing its verdict or editing its text fails with
// ErrRuleAlreadyFinalized. Finalizing the last pending rule closes the round.
func (s *Service) UpdateRule(ctx context.Context, ruleID uint, u RuleUpdate) (*entities.AnnotationRule, error) {
	if u.Verdict != nil && !u.Verdict.Final() {
		return nil, ErrInvalidVerdict
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return nil, ErrEmptyRuleName
	}

	start := time.Now()
	var (
		rule *entities.AnnotationRule
		tr   transitions
	)
	err := s.store.Atomically(ctx, metrics.OpRuleUpdate, func(tx *repository.Store) error {
		tr = transitions{}
		now := s.now()

		var (
			round *entities.VotingRound
			err   error
		)
		rule, round, err = lockRule(ctx, tx, ruleID)
		if err != nil {
			return err
		}
		if rule.Finalized {
			return checkFinalizedUpdate(rule, u)
		}

		if u.Name != nil || u.Description != nil {
			name, description := rule.Name, rule.Description
			if u.Name != nil {
				name = strings.TrimSpace(*u.Name)
			}
			if u.Description != nil {
				description = *u.Description
			}
			if err := tx.Rules.UpdateText(ctx, rule.ID, name, description); err != nil {
				return err
			}
			rule.Name, rule.Description = name, description
		}

		finalize := u.Verdict != nil || (u.Finalized != nil && *u.Finalized)
		if !finalize {
			return nil
		}

		ballots, err := tx.Ballots.ListByRule(ctx, rule.ID)
		if err != nil {
			return err
		}
		counts := tally.Count(ballots)
		verdict := counts.Verdict()
		if u.Verdict != nil {
			verdict = *u.Verdict
		}
		if err := s.finalizeWith(ctx, tx, rule, verdict, counts, TriggerOverride, now, &tr); err != nil {
			return err
		}
		return s.closeIfComplete(ctx, tx, round, now, &tr)
	})
	s.observe(metrics.OpRuleUpdate, start, err)
	if err != nil {
		return nil, err
	}
	s.report(ctx, &tr)
	return rule, nil
}

// checkFinalizedUpdate accepts only updates that leave a finalized rule as it is.
func checkFinalizedUpdate(rule *entities.AnnotationRule, u RuleUpdate) error {
	switch {
	case u.Finalized != nil && !*u.Finalized:
		return ErrRuleAlreadyFinalized
	case u.Verdict != nil && *u.Verdict != rule.Verdict:
		return ErrRuleAlreadyFinalized
	case u.Name != nil && strings.TrimSpace(*u.Name) != rule.Name:
		return ErrRuleAlreadyFinalized
	case u.Description != nil && *u.Description != rule.Description:
		return ErrRuleAlreadyFinalized
	}
	return nil
}
