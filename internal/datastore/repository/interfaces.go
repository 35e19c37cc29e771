package repository

import (
	"context"
	"time"

	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/tally"
)

// ProjectRepository provides access to projects and their annotation policy.
type ProjectRepository interface {
	Create(ctx context.Context, project *entities.Project) error
	// GetByID returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uint) (*entities.Project, error)
}

// MemberRepository provides access to project memberships.
type MemberRepository interface {
	// Add returns ErrDuplicateKey if the user is already a member.
	Add(ctx context.Context, member *entities.Member) error
	// GetByID returns ErrMemberNotFound if the member does not exist.
	GetByID(ctx context.Context, id uint) (*entities.Member, error)
	// CountByRole counts members of a project holding role.
	CountByRole(ctx context.Context, projectID uint, role string) (int64, error)
	ListByProject(ctx context.Context, projectID uint) ([]*entities.Member, error)
}

// LabelRepository provides access to annotator labels.
type LabelRepository interface {
	Create(ctx context.Context, label *entities.Label) error
	// GetByID returns ErrLabelNotFound if the label does not exist.
	GetByID(ctx context.Context, id uint) (*entities.Label, error)
	// Delete returns ErrLabelNotFound if nothing was deleted.
	Delete(ctx context.Context, id uint) error
	// ListByItem returns every annotator's labels on an item in insertion order.
	ListByItem(ctx context.Context, itemID uint) ([]*entities.Label, error)
	// LockItem is ListByItem with row and gap locks held until the
	// transaction ends, so concurrent writers to one item serialize.
	LockItem(ctx context.Context, itemID uint) ([]*entities.Label, error)
	// ListByItems groups labels by item id. Large id sets are chunked.
	ListByItems(ctx context.Context, itemIDs []uint) (map[uint][]*entities.Label, error)
}

// RoundRepository provides access to voting rounds.
type RoundRepository interface {
	// Create returns ErrDuplicateKey when the version or the open slot of
	// the project is taken. Use DuplicateKeyOn to tell them apart.
	Create(ctx context.Context, round *entities.VotingRound) error
	// GetByID returns ErrRoundNotFound if the round does not exist.
	GetByID(ctx context.Context, id uint) (*entities.VotingRound, error)
	// ForUpdate is GetByID with a row lock held until the transaction ends.
	ForUpdate(ctx context.Context, id uint) (*entities.VotingRound, error)
	// Open returns the project's open round or ErrRoundNotFound.
	Open(ctx context.Context, projectID uint) (*entities.VotingRound, error)
	// ListByProject returns rounds newest version first.
	ListByProject(ctx context.Context, projectID uint) ([]*entities.VotingRound, error)
	// OpenProjectIDs lists projects that currently have an open round.
	OpenProjectIDs(ctx context.Context) ([]uint, error)
	// MaxVersion returns 0 when the project has no rounds.
	MaxVersion(ctx context.Context, projectID uint) (int, error)
	VersionExists(ctx context.Context, projectID uint, version int) (bool, error)
	// Close marks an open round closed and frees the project's open slot.
	// It reports false when the round was already closed.
	Close(ctx context.Context, id uint, at time.Time) (bool, error)
}

// RuleRepository provides access to annotation rules.
type RuleRepository interface {
	Create(ctx context.Context, rule *entities.AnnotationRule) error
	// GetByID returns ErrRuleNotFound if the rule does not exist.
	GetByID(ctx context.Context, id uint) (*entities.AnnotationRule, error)
	// ForUpdate is GetByID with a row lock held until the transaction ends.
	ForUpdate(ctx context.Context, id uint) (*entities.AnnotationRule, error)
	// RoundID returns the id of the rule's round without locking anything.
	RoundID(ctx context.Context, id uint) (uint, error)
	ListByProject(ctx context.Context, projectID uint) ([]*entities.AnnotationRule, error)
	ListByRound(ctx context.Context, roundID uint) ([]*entities.AnnotationRule, error)
	// Finalize records the verdict of a pending rule. It reports false,
	// and changes nothing, when the rule was already finalized.
	Finalize(ctx context.Context, id uint, verdict tally.Verdict, at time.Time) (bool, error)
	UpdateText(ctx context.Context, id uint, name, description string) error
	// Progress counts all and still-pending rules of a round. It is a
	// locking read, so it sees rules finalized by transactions that
	// committed after this one started.
	Progress(ctx context.Context, roundID uint) (total, pending int64, err error)
}

// BallotRepository provides access to ballots. Ballots are never updated.
type BallotRepository interface {
	// Create returns ErrDuplicateKey if the member already voted on the rule.
	Create(ctx context.Context, ballot *entities.Ballot) error
	Exists(ctx context.Context, ruleID, memberID uint) (bool, error)
	ListByRule(ctx context.Context, ruleID uint) ([]entities.Ballot, error)
	CountByRule(ctx context.Context, ruleID uint) (int64, error)
}

// ReviewFilter narrows ReviewRepository.List. Zero values match everything.
type ReviewFilter struct {
	ProjectID  uint
	ReviewerID uint
	Approved   *bool
	Limit      int
}

// ReviewRepository provides access to dataset reviews.
type ReviewRepository interface {
	// Upsert inserts or replaces the review keyed by (item, reviewer) and
	// reloads it so the caller sees the stored row.
	Upsert(ctx context.Context, review *entities.DatasetReview) error
	// Get returns ErrReviewNotFound if the reviewer has not reviewed the item.
	Get(ctx context.Context, itemID, reviewerID uint) (*entities.DatasetReview, error)
	// List returns matching reviews, newest first.
	List(ctx context.Context, filter ReviewFilter) ([]*entities.DatasetReview, error)
}

// DiscrepancyFilter narrows DiscrepancyRepository.List. Zero values match everything.
type DiscrepancyFilter struct {
	ProjectID uint
	ItemID    uint
}

// DiscrepancyRepository provides access to manually flagged discrepancies.
type DiscrepancyRepository interface {
	// Upsert inserts the flag or replaces its reason.
	Upsert(ctx context.Context, flag *entities.ManualDiscrepancy) error
	// Get returns ErrDiscrepancyNotFound if the member has not flagged the item.
	Get(ctx context.Context, itemID, memberID uint) (*entities.ManualDiscrepancy, error)
	// Delete returns ErrDiscrepancyNotFound if nothing was deleted.
	Delete(ctx context.Context, itemID, memberID uint) error
	List(ctx context.Context, filter DiscrepancyFilter) ([]*entities.ManualDiscrepancy, error)
}
