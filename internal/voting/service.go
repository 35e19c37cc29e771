// Package voting runs time-boxed voting rounds on annotation rules.
//
// A round is Open until every rule in it is finalized, its end date passes
// and a sweep runs, or an admin closes it. A rule is Pending until it is
// finalized with a verdict computed by package tally; finalization happens
// once and is never undone.
//
// Every state change runs inside repository.Store.Atomically. Ballot
// insertion, the ballot recount and the conditional finalize share one
// transaction, so concurrent ballots on the same rule finalize it exactly
// once. Finalizing an already finalized rule is a no-op, which makes a
// sweep racing a ballot harmless.
//
// Expiry is evaluated lazily: ListRules and ListRounds sweep the project
// before reading. There is no background timer.
package voting

import (
	"context"
	"time"

	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/datastore/repository"
	"github.com/labelquorum/quorum/internal/logger"
	"github.com/labelquorum/quorum/internal/observability/metrics"
	"github.com/labelquorum/quorum/internal/tally"
)

// Reasons a rule was finalized or a round closed, as logged and counted.
const (
	TriggerQuorum      = "quorum"       // every annotator voted
	TriggerExpired     = "expired"      // the voting window ended
	TriggerOverride    = "override"     // admin rule edit
	TriggerManualClose = "manual_close" // admin closed the round
	TriggerCompleted   = "completed"    // every rule in the round is finalized
	TriggerSuperseded  = "superseded"   // a new round replaced a finished one
)

// Service implements the voting state machine.
type Service struct {
	store   *repository.Store
	clock   Clock
	log     logger.Logger
	metrics metrics.Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the system clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

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

// NewService creates a voting service over store.
func NewService(store *repository.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		clock:   SystemClock{},
		log:     logger.Global().Module("voting"),
		metrics: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

// transitions collects the state changes made by one transaction attempt.
// They are reported only after the transaction commits.
type transitions struct {
	finalized []finalizedRule
	closed    []closedRound
}

type finalizedRule struct {
	rule    entities.AnnotationRule
	counts  tally.Counts
	trigger string
}

type closedRound struct {
	roundID   uint
	projectID uint
	reason    string
}

// finalize computes the verdict of a pending rule from its current ballots
// and stores it. It does nothing when the rule is already finalized.
func (s *Service) finalize(ctx context.Context, tx *repository.Store, rule *entities.AnnotationRule, trigger string, now time.Time, tr *transitions) error {
	ballots, err := tx.Ballots.ListByRule(ctx, rule.ID)
	if err != nil {
		return err
	}
	counts := tally.Count(ballots)
	return s.finalizeWith(ctx, tx, rule, counts.Verdict(), counts, trigger, now, tr)
}

func (s *Service) finalizeWith(ctx context.Context, tx *repository.Store, rule *entities.AnnotationRule, verdict tally.Verdict, counts tally.Counts, trigger string, now time.Time, tr *transitions) error {
	changed, err := tx.Rules.Finalize(ctx, rule.ID, verdict, now)
	if err != nil || !changed {
		return err
	}
	rule.Finalized = true
	rule.Verdict = verdict
	rule.FinalizedAt = &now
	tr.finalized = append(tr.finalized, finalizedRule{rule: *rule, counts: counts, trigger: trigger})
	return nil
}

// lockRule locks a rule's round and then the rule itself. Every
// transaction that can finalize a rule takes the round lock first, so two
// transactions finishing different rules of one round run one after the
// other and the second sees the first one's finalization.
func lockRule(ctx context.Context, tx *repository.Store, ruleID uint) (*entities.AnnotationRule, *entities.VotingRound, error) {
	roundID, err := tx.Rules.RoundID(ctx, ruleID)
	if err != nil {
		return nil, nil, err
	}
	round, err := tx.Rounds.ForUpdate(ctx, roundID)
	if err != nil {
		return nil, nil, err
	}
	rule, err := tx.Rules.ForUpdate(ctx, ruleID)
	if err != nil {
		return nil, nil, err
	}
	return rule, round, nil
}

// closeIfComplete closes the round once it has at least one rule and
// none of them is pending.
func (s *Service) closeIfComplete(ctx context.Context, tx *repository.Store, round *entities.VotingRound, now time.Time, tr *transitions) error {
	if round.Closed {
		return nil
	}
	total, pending, err := tx.Rules.Progress(ctx, round.ID)
	if err != nil {
		return err
	}
	if total == 0 || pending > 0 {
		return nil
	}
	return s.closeRound(ctx, tx, round, TriggerCompleted, now, tr)
}

func (s *Service) closeRound(ctx context.Context, tx *repository.Store, round *entities.VotingRound, reason string, now time.Time, tr *transitions) error {
	changed, err := tx.Rounds.Close(ctx, round.ID, now)
	if err != nil || !changed {
		return err
	}
	round.Closed = true
	round.OpenProjectID = nil
	round.ClosedAt = &now
	tr.closed = append(tr.closed, closedRound{roundID: round.ID, projectID: round.ProjectID, reason: reason})
	return nil
}

// report logs and counts committed transitions.
func (s *Service) report(ctx context.Context, tr *transitions) {
	log := s.log.WithContext(ctx)
	for _, f := range tr.finalized {
		log.Info("annotation rule finalized",
			logger.Uint64("rule_id", uint64(f.rule.ID)),
			logger.Uint64("round_id", uint64(f.rule.RoundID)),
			logger.String("verdict", string(f.rule.Verdict)),
			logger.Int("votes_for", f.counts.For),
			logger.Int("votes_against", f.counts.Against),
			logger.String("trigger", f.trigger))
		s.metrics.RecordOperation(metrics.OpRuleFinalize, string(f.rule.Verdict))
	}
	for _, c := range tr.closed {
		log.Info("voting round closed",
			logger.Uint64("round_id", uint64(c.roundID)),
			logger.Uint64("project_id", uint64(c.projectID)),
			logger.String("reason", c.reason))
		s.metrics.RecordOperation(metrics.OpRoundClose, c.reason)
	}
}

// observe records the outcome of an operation.
func (s *Service) observe(op string, start time.Time, err error) {
	s.metrics.RecordDuration(op, time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordError(op, errorType(err))
		return
	}
	s.metrics.RecordOperation(op, metrics.StatusSuccess)
}
