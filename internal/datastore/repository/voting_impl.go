package repository

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/tally"
)

type roundRepository struct {
	db *gorm.DB
}

func (r *roundRepository) Create(ctx context.Context, round *entities.VotingRound) error {
	return create(r.db.WithContext(ctx).Omit("Rules"), round)
}

func (r *roundRepository) GetByID(ctx context.Context, id uint) (*entities.VotingRound, error) {
	return first[entities.VotingRound](r.db.WithContext(ctx).Where("id = ?", id), ErrRoundNotFound)
}

func (r *roundRepository) ForUpdate(ctx context.Context, id uint) (*entities.VotingRound, error) {
	return first[entities.VotingRound](forUpdate(r.db.WithContext(ctx)).Where("id = ?", id), ErrRoundNotFound)
}

func (r *roundRepository) Open(ctx context.Context, projectID uint) (*entities.VotingRound, error) {
	return first[entities.VotingRound](
		r.db.WithContext(ctx).Where("project_id = ? AND closed = ?", projectID, false),
		ErrRoundNotFound)
}

func (r *roundRepository) ListByProject(ctx context.Context, projectID uint) ([]*entities.VotingRound, error) {
	var rounds []*entities.VotingRound
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("version DESC").
		Find(&rounds).Error
	return rounds, err
}

func (r *roundRepository) OpenProjectIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entities.VotingRound{}).
		Where("closed = ?", false).
		Order("project_id ASC").
		Pluck("project_id", &ids).Error
	return ids, err
}

func (r *roundRepository) MaxVersion(ctx context.Context, projectID uint) (int, error) {
	var version sql.NullInt64
	err := r.db.WithContext(ctx).Model(&entities.VotingRound{}).
		Select("MAX(version)").
		Where("project_id = ?", projectID).
		Row().Scan(&version)
	if err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}

func (r *roundRepository) VersionExists(ctx context.Context, projectID uint, version int) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entities.VotingRound{}).
		Where("project_id = ? AND version = ?", projectID, version).
		Count(&n).Error
	return n > 0, err
}

func (r *roundRepository) Close(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.VotingRound{}).
		Where("id = ? AND closed = ?", id, false).
		Updates(map[string]any{
			"closed":          true,
			"open_project_id": nil,
			"closed_at":       at,
		})
	return result.RowsAffected > 0, result.Error
}

type ruleRepository struct {
	db *gorm.DB
}

func (r *ruleRepository) Create(ctx context.Context, rule *entities.AnnotationRule) error {
	return create(r.db.WithContext(ctx), rule)
}

func (r *ruleRepository) GetByID(ctx context.Context, id uint) (*entities.AnnotationRule, error) {
	return first[entities.AnnotationRule](r.db.WithContext(ctx).Where("id = ?", id), ErrRuleNotFound)
}

func (r *ruleRepository) ForUpdate(ctx context.Context, id uint) (*entities.AnnotationRule, error) {
	return first[entities.AnnotationRule](forUpdate(r.db.WithContext(ctx)).Where("id = ?", id), ErrRuleNotFound)
}

func (r *ruleRepository) RoundID(ctx context.Context, id uint) (uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entities.AnnotationRule{}).
		Where("id = ?", id).
		Limit(1).
		Pluck("round_id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, ErrRuleNotFound
	}
	return ids[0], nil
}

func (r *ruleRepository) ListByProject(ctx context.Context, projectID uint) ([]*entities.AnnotationRule, error) {
	var rules []*entities.AnnotationRule
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("round_id DESC, id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *ruleRepository) ListByRound(ctx context.Context, roundID uint) ([]*entities.AnnotationRule, error) {
	var rules []*entities.AnnotationRule
	err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Order("id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *ruleRepository) Finalize(ctx context.Context, id uint, verdict tally.Verdict, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.AnnotationRule{}).
		Where("id = ? AND finalized = ?", id, false).
		Updates(map[string]any{
			"finalized":    true,
			"verdict":      string(verdict),
			"finalized_at": at,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *ruleRepository) UpdateText(ctx context.Context, id uint, name, description string) error {
	result := r.db.WithContext(ctx).Model(&entities.AnnotationRule{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "description": description})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *ruleRepository) Progress(ctx context.Context, roundID uint) (total, pending int64, err error) {
	var row struct {
		Total   int64
		Pending int64
	}
	err = shareLock(r.db.WithContext(ctx)).Model(&entities.AnnotationRule{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN finalized THEN 0 ELSE 1 END), 0) AS pending").
		Where("round_id = ?", roundID).
		Scan(&row).Error
	return row.Total, row.Pending, err
}

type ballotRepository struct {
	db *gorm.DB
}

func (r *ballotRepository) Create(ctx context.Context, ballot *entities.Ballot) error {
	return create(r.db.WithContext(ctx), ballot)
}

func (r *ballotRepository) Exists(ctx context.Context, ruleID, memberID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entities.Ballot{}).
		Where("rule_id = ? AND member_id = ?", ruleID, memberID).
		Count(&n).Error
	return n > 0, err
}

// ListByRule and CountByRule use shared locks: under MySQL's repeatable
// read a plain select inside a transaction may miss ballots committed after
// its snapshot was taken.
func (r *ballotRepository) ListByRule(ctx context.Context, ruleID uint) ([]entities.Ballot, error) {
	var ballots []entities.Ballot
	err := shareLock(r.db.WithContext(ctx)).
		Where("rule_id = ?", ruleID).
		Order("id ASC").
		Find(&ballots).Error
	return ballots, err
}

func (r *ballotRepository) CountByRule(ctx context.Context, ruleID uint) (int64, error) {
	var n int64
	err := shareLock(r.db.WithContext(ctx)).Model(&entities.Ballot{}).
		Where("rule_id = ?", ruleID).
		Count(&n).Error
	return n, err
}
