// Package consensus assembles the label validator, voting state machine,
// discrepancy detector and review writer behind one Engine, wired from
// conf.Settings. It is the surface the CLI and any web layer consume.
package consensus

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/labelquorum/quorum/internal/annotation"
	"github.com/labelquorum/quorum/internal/buildinfo"
	"github.com/labelquorum/quorum/internal/conf"
	"github.com/labelquorum/quorum/internal/datastore"
	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/datastore/repository"
	"github.com/labelquorum/quorum/internal/errors"
	"github.com/labelquorum/quorum/internal/labeling"
	"github.com/labelquorum/quorum/internal/logger"
	"github.com/labelquorum/quorum/internal/observability/metrics"
	"github.com/labelquorum/quorum/internal/review"
	"github.com/labelquorum/quorum/internal/telemetry"
	"github.com/labelquorum/quorum/internal/voting"
)

// Engine owns the database connection and the domain services.
type Engine struct {
	log       logger.Logger
	manager   datastore.Manager
	store     *repository.Store
	registry  *prometheus.Registry
	telemetry bool

	labels  *annotation.Service
	voting  *voting.Service
	reviews *review.Service
}

type options struct {
	log   logger.Logger
	clock voting.Clock
	build *buildinfo.Context
}

// Option configures New.
type Option func(*options)

// WithLogger sets the root logger; services log through modules of it.
func WithLogger(log logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithClock replaces the server clock used for voting windows.
func WithClock(c voting.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithBuildInfo sets the version reported with telemetry events.
func WithBuildInfo(b *buildinfo.Context) Option {
	return func(o *options) { o.build = b }
}

// New opens the configured database, migrates it and wires the services.
func New(settings *conf.Settings, opts ...Option) (*Engine, error) {
	o := &options{clock: voting.SystemClock{}, build: buildinfo.Current()}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Global().Module("quorum")
	}

	e := &Engine{log: o.log}

	enabled, err := telemetry.Init(&settings.Telemetry, o.build, o.log.Module("telemetry"))
	if err != nil {
		// Telemetry is optional; run without it.
		o.log.Warn("error telemetry disabled", logger.Error(err))
	}
	e.telemetry = enabled

	var rec metrics.Recorder = metrics.NoopRecorder{}
	if settings.Metrics.Enabled {
		e.registry = prometheus.NewRegistry()
		m, err := metrics.NewConsensusMetrics(e.registry)
		if err != nil {
			e.closeTelemetry()
			return nil, errors.New(err).
				Component("consensus").
				Category(errors.CategoryConfiguration).
				Context("operation", "register_metrics").
				Build()
		}
		rec = m
	}

	e.manager, err = datastore.Open(&settings.Database, o.log.Module("datastore"))
	if err != nil {
		e.closeTelemetry()
		return nil, err
	}

	e.store = repository.NewStore(e.manager.DB(),
		repository.WithRetryPolicy(repository.RetryPolicy{
			MaxRetries:      settings.Voting.TxMaxRetries,
			InitialInterval: settings.Voting.TxInitialBackoff,
			MaxInterval:     settings.Voting.TxMaxBackoff,
		}),
		repository.WithLogger(o.log.Module("datastore")),
		repository.WithMetrics(rec))

	e.labels = annotation.NewService(e.store,
		annotation.WithLogger(o.log.Module("annotation")),
		annotation.WithMetrics(rec),
		annotation.WithPolicyTTL(settings.Cache.PolicyTTL))
	e.voting = voting.NewService(e.store,
		voting.WithClock(o.clock),
		voting.WithLogger(o.log.Module("voting")),
		voting.WithMetrics(rec))
	e.reviews = review.NewService(e.store, o.log.Module("review"), rec)

	return e, nil
}

// ValidateAndRecordLabel checks candidate against policy and the labels
// already on its item, then stores it. Rejections are
// *labeling.ConstraintViolation.
func (e *Engine) ValidateAndRecordLabel(ctx context.Context, policy labeling.Policy, candidate labeling.Label) (*entities.Label, error) {
	return e.labels.Record(ctx, policy, candidate)
}

// ListRulesForRound sweeps the project's open round and returns all of
// the project's rules.
func (e *Engine) ListRulesForRound(ctx context.Context, projectID uint) ([]*entities.AnnotationRule, error) {
	return e.voting.ListRules(ctx, projectID)
}

// SubmitBallot records a vote and finalizes the rule once every annotator voted.
func (e *Engine) SubmitBallot(ctx context.Context, ruleID, memberID uint, answer voting.Answer) (*voting.Receipt, error) {
	return e.voting.SubmitBallot(ctx, ruleID, memberID, answer)
}

// CreateVotingRound opens a round for [begin, end] with the next version.
func (e *Engine) CreateVotingRound(ctx context.Context, projectID uint, begin, end time.Time, creatorID uint) (*entities.VotingRound, error) {
	return e.voting.CreateRound(ctx, voting.RoundParams{
		ProjectID: projectID,
		BeginsAt:  begin,
		EndsAt:    end,
		CreatedBy: creatorID,
	})
}

// GetDiscrepancyPartition splits items by annotator disagreement.
func (e *Engine) GetDiscrepancyPartition(ctx context.Context, itemIDs []uint) (withDiscrepancy, withoutDiscrepancy []uint, err error) {
	return e.labels.DiscrepancyPartition(ctx, itemIDs)
}

// UpsertReview stores a reviewer's decision on an item.
func (e *Engine) UpsertReview(ctx context.Context, in review.Input) (*entities.DatasetReview, error) {
	return e.reviews.Upsert(ctx, in)
}

// Labels returns the label service.
func (e *Engine) Labels() *annotation.Service { return e.labels }

// Voting returns the voting service.
func (e *Engine) Voting() *voting.Service { return e.voting }

// Reviews returns the review service.
func (e *Engine) Reviews() *review.Service { return e.reviews }

// Store returns the repositories, for seeding and administration.
func (e *Engine) Store() *repository.Store { return e.store }

// Gatherer returns the metrics registry, or nil when metrics are disabled.
func (e *Engine) Gatherer() prometheus.Gatherer {
	if e.registry == nil {
		return nil
	}
	return e.registry
}

// Close releases the database and flushes telemetry.
func (e *Engine) Close() error {
	e.closeTelemetry()
	if e.manager == nil {
		return nil
	}
	return e.manager.Close()
}

func (e *Engine) closeTelemetry() {
	if e.telemetry {
		telemetry.Close()
		e.telemetry = false
	}
}
