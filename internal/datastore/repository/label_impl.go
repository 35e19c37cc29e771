package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/labelquorum/quorum/internal/datastore/entities"
)

type labelRepository struct {
	db *gorm.DB
}

func (r *labelRepository) Create(ctx context.Context, label *entities.Label) error {
	return create(r.db.WithContext(ctx), label)
}

func (r *labelRepository) GetByID(ctx context.Context, id uint) (*entities.Label, error) {
	return first[entities.Label](r.db.WithContext(ctx).Where("id = ?", id), ErrLabelNotFound)
}

func (r *labelRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.Label{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLabelNotFound
	}
	return nil
}

func (r *labelRepository) ListByItem(ctx context.Context, itemID uint) ([]*entities.Label, error) {
	return r.listByItem(r.db.WithContext(ctx), itemID)
}

func (r *labelRepository) LockItem(ctx context.Context, itemID uint) ([]*entities.Label, error) {
	return r.listByItem(forUpdate(r.db.WithContext(ctx)), itemID)
}

func (r *labelRepository) listByItem(q *gorm.DB, itemID uint) ([]*entities.Label, error) {
	var labels []*entities.Label
	err := q.
		Where("item_id = ?", itemID).
		Order("id ASC").
		Find(&labels).Error
	return labels, err
}

func (r *labelRepository) ListByItems(ctx context.Context, itemIDs []uint) (map[uint][]*entities.Label, error) {
	result := make(map[uint][]*entities.Label, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	// Process in chunks to avoid SQL parameter limits
	for start := 0; start < len(itemIDs); start += idBatchSize {
		end := min(start+idBatchSize, len(itemIDs))

		var labels []*entities.Label
		err := r.db.WithContext(ctx).
			Where("item_id IN ?", itemIDs[start:end]).
			Order("id ASC").
			Find(&labels).Error
		if err != nil {
			return nil, err
		}
		for _, l := range labels {
			result[l.ItemID] = append(result[l.ItemID], l)
		}
	}

	return result, nil
}
