package entities

import (
	"time"

	"github.com/labelquorum/quorum/internal/tally"
)

// VotingRound is a time-boxed container of annotation rules.
//
// OpenProjectID equals ProjectID while the round is open and is NULL once
// closed. Its unique index lets the database reject a second open round
// for the same project.
type VotingRound struct {
	ID                  uint      `gorm:"primaryKey"`
	ProjectID           uint      `gorm:"not null;uniqueIndex:idx_rounds_project_version,priority:1"`
	Version             int       `gorm:"not null;uniqueIndex:idx_rounds_project_version,priority:2"`
	OpenProjectID       *uint     `gorm:"uniqueIndex:idx_rounds_open_project"`
	Closed              bool      `gorm:"not null;index"`
	BeginsAt            time.Time `gorm:"not null"`
	EndsAt              time.Time `gorm:"not null"`
	CreatedBy           uint      `gorm:"not null"`
	VotingThreshold     int       `gorm:"not null"`
	PercentageThreshold float64   `gorm:"not null"`
	ClosedAt            *time.Time
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`

	Rules []AnnotationRule `gorm:"foreignKey:RoundID"`
}

// AcceptsBallotsAt reports whether now lies within [BeginsAt, EndsAt].
func (r *VotingRound) AcceptsBallotsAt(now time.Time) bool {
	return !now.Before(r.BeginsAt) && !now.After(r.EndsAt)
}

// ExpiredAt reports whether the voting window ended before now.
func (r *VotingRound) ExpiredAt(now time.Time) bool {
	return now.After(r.EndsAt)
}

// AnnotationRule is a proposal the project's annotators vote on.
// Finalized never reverts to false.
type AnnotationRule struct {
	ID          uint          `gorm:"primaryKey"`
	RoundID     uint          `gorm:"not null;index"`
	ProjectID   uint          `gorm:"not null;index"`
	Name        string        `gorm:"type:varchar(200);not null"`
	Description string        `gorm:"type:text"`
	Finalized   bool          `gorm:"not null;index"`
	Verdict     tally.Verdict `gorm:"type:varchar(16);not null"`
	FinalizedAt *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// Ballot is one member's vote on one rule. Answer is nil for ballots
// that only carry a free-form comment.
type Ballot struct {
	ID        uint `gorm:"primaryKey"`
	RuleID    uint `gorm:"not null;uniqueIndex:idx_ballots_rule_member,priority:1"`
	MemberID  uint `gorm:"not null;uniqueIndex:idx_ballots_rule_member,priority:2"`
	Answer    *bool
	Comment   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Vote implements tally.Ballot.
func (b Ballot) Vote() (approve, ok bool) {
	if b.Answer == nil {
		return false, false
	}
	return *b.Answer, true
}
