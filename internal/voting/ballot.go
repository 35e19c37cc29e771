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

// Answer is a voter's response. Approve is nil for a comment-only ballot,
// which counts toward participation but toward neither side.
type Answer struct {
	Approve *bool
	Comment string
}

// Yes approves the rule.
func Yes(comment string) Answer {
	approve := true
	return Answer{Approve: &approve, Comment: comment}
}

// No rejects the rule.
func No(comment string) Answer {
	approve := false
	return Answer{Approve: &approve, Comment: comment}
}

// CommentOnly leaves a remark without taking a side.
func CommentOnly(comment string) Answer {
	return Answer{Comment: comment}
}

// Receipt is the result of an accepted ballot.
type Receipt struct {
	Ballot *entities.Ballot
	// Rule is the rule after the ballot, finalized if this ballot completed it.
	Rule *entities.AnnotationRule
	// RoundClosed is true when this ballot finalized the last pending rule.
	RoundClosed bool
}

// SubmitBallot records a member's vote on a rule.
//
// Checks run in this order and fail with the matching error: the member
// is an annotator of the rule's project (ErrNotAnnotator), has not voted on
// the rule yet (ErrDuplicateBallot), the rule is pending
// (ErrRuleAlreadyFinalized), its round is open (ErrRoundClosed) and now
// lies in the round's window (*OutsideVotingWindowError).
//
// When the ballot count reaches the number of annotators in the project,
// the rule is finalized in the same transaction, and the round is closed
// if that was its last pending rule.
func (s *Service) SubmitBallot(ctx context.Context, ruleID, memberID uint, answer Answer) (*Receipt, error) {
	start := time.Now()
	var (
		receipt *Receipt
		tr      transitions
	)
	err := s.store.Atomically(ctx, metrics.OpBallotSubmit, func(tx *repository.Store) error {
		tr = transitions{}
		now := s.now()

		rule, round, err := lockRule(ctx, tx, ruleID)
		if err != nil {
			return err
		}
		if err := s.checkBallot(ctx, tx, rule, round, memberID, now); err != nil {
			return err
		}

		ballot := &entities.Ballot{
			RuleID:   rule.ID,
			MemberID: memberID,
			Answer:   answer.Approve,
			Comment:  answer.Comment,
		}
		if err := tx.Ballots.Create(ctx, ballot); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrDuplicateBallot
			}
			return err
		}

		if err := s.finalizeIfComplete(ctx, tx, rule, round, now, &tr); err != nil {
			return err
		}
		receipt = &Receipt{Ballot: ballot, Rule: rule, RoundClosed: round.Closed}
		return nil
	})
	s.observe(metrics.OpBallotSubmit, start, err)
	if err != nil {
		s.log.WithContext(ctx).Debug("ballot rejected",
			logger.Uint64("rule_id", uint64(ruleID)),
			logger.Uint64("member_id", uint64(memberID)),
			logger.Error(err))
		return nil, err
	}

	s.log.WithContext(ctx).Debug("ballot accepted",
		logger.Uint64("rule_id", uint64(ruleID)),
		logger.Uint64("member_id", uint64(memberID)),
		logger.Uint64("ballot_id", uint64(receipt.Ballot.ID)))
	s.report(ctx, &tr)
	return receipt, nil
}

// checkBallot applies the ballot preconditions in order.
func (s *Service) checkBallot(ctx context.Context, tx *repository.Store, rule *entities.AnnotationRule, round *entities.VotingRound, memberID uint, now time.Time) error {
	member, err := tx.Members.GetByID(ctx, memberID)
	switch {
	case errors.Is(err, repository.ErrMemberNotFound):
		return ErrNotAnnotator
	case err != nil:
		return err
	}
	if member.ProjectID != rule.ProjectID || !member.IsAnnotator() {
		return ErrNotAnnotator
	}

	voted, err := tx.Ballots.Exists(ctx, rule.ID, memberID)
	if err != nil {
		return err
	}
	if voted {
		return ErrDuplicateBallot
	}

	if rule.Finalized {
		return ErrRuleAlreadyFinalized
	}
	if round.Closed {
		return ErrRoundClosed
	}
	if !round.AcceptsBallotsAt(now) {
		return &OutsideVotingWindowError{Now: now, Begin: round.BeginsAt, End: round.EndsAt}
	}
	return nil
}

// finalizeIfComplete finalizes rule once every annotator of the project
// has voted, then closes the round if nothing is left pending.
func (s *Service) finalizeIfComplete(ctx context.Context, tx *repository.Store, rule *entities.AnnotationRule, round *entities.VotingRound, now time.Time, tr *transitions) error {
	cast, err := tx.Ballots.CountByRule(ctx, rule.ID)
	if err != nil {
		return err
	}
	eligible, err := tx.Members.CountByRole(ctx, rule.ProjectID, entities.RoleAnnotator)
	if err != nil {
		return err
	}
	if cast < eligible {
		return nil
	}

	if err := s.finalize(ctx, tx, rule, TriggerQuorum, now, tr); err != nil {
		return err
	}
	return s.closeIfComplete(ctx, tx, round, now, tr)
}
