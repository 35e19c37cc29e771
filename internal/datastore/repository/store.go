package repository

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"

	"github.com/labelquorum/quorum/internal/logger"
	"github.com/labelquorum/quorum/internal/observability/metrics"
)

// RetryPolicy bounds how often Atomically replays a transaction that hit
// a transient lock conflict.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy matches the voting defaults in conf.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      5,
	InitialInterval: 20 * time.Millisecond,
	MaxInterval:     time.Second,
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.MaxInterval = p.MaxInterval
	eb.MaxElapsedTime = 0 // bounded by MaxRetries
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(max(p.MaxRetries, 0))), ctx)
}

// Store bundles every repository over one *gorm.DB. A Store handed to the
// function passed to Atomically is bound to the running transaction.
type Store struct {
	db      *gorm.DB
	retry   RetryPolicy
	log     logger.Logger
	metrics metrics.Recorder

	Projects      ProjectRepository
	Members       MemberRepository
	Labels        LabelRepository
	Rounds        RoundRepository
	Rules         RuleRepository
	Ballots       BallotRepository
	Reviews       ReviewRepository
	Discrepancies DiscrepancyRepository
}

// Option configures a Store.
type Option func(*Store)

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Store) { s.retry = p }
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(log logger.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics records transaction durations and retries.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *Store) { s.metrics = metrics.OrNoop(r) }
}

// NewStore creates a Store over db.
func NewStore(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		retry:   DefaultRetryPolicy,
		log:     logger.Global().Module("datastore"),
		metrics: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s.bind(db)
}

// bind returns a copy of s whose repositories use db.
func (s *Store) bind(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		retry:         s.retry,
		log:           s.log,
		metrics:       s.metrics,
		Projects:      &projectRepository{db: db},
		Members:       &memberRepository{db: db},
		Labels:        &labelRepository{db: db},
		Rounds:        &roundRepository{db: db},
		Rules:         &ruleRepository{db: db},
		Ballots:       &ballotRepository{db: db},
		Reviews:       &reviewRepository{db: db},
		Discrepancies: &discrepancyRepository{db: db},
	}
}

// DB returns the underlying connection or transaction.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Atomically runs fn inside one transaction. When the database reports a
// transient conflict the transaction is rolled back and fn runs again with
// exponential backoff. Any other error from fn aborts immediately.
//
// Errors that exhaust the retry budget come back as ErrStorageUnavailable;
// categorized and duplicate-key errors are returned unchanged.
func (s *Store) Atomically(ctx context.Context, op string, fn func(tx *Store) error) error {
	start := time.Now()
	attempts := 0

	run := func() error {
		attempts++
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(s.bind(tx))
		})
		if err == nil || isTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		s.metrics.RecordOperation(metrics.OpTransactionRetry, op)
		s.log.WithContext(ctx).Warn("retrying transaction after lock conflict",
			logger.String("operation", op),
			logger.Int("attempt", attempts),
			logger.Duration("backoff", wait),
			logger.Error(err))
	}

	err := backoff.RetryNotify(run, s.retry.backOff(ctx), notify)
	s.metrics.RecordDuration(metrics.OpTransaction, time.Since(start).Seconds())

	switch {
	case err == nil:
		return nil
	case isTransient(err):
		s.metrics.RecordError(op, "retries_exhausted")
		return exhausted(op, err, attempts, time.Since(start))
	default:
		return Wrap(op, err)
	}
}
