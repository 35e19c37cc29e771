package entities

import "time"

// Label is one annotator's label on one item. Kind selects which of the
// optional columns are meaningful: offsets for spans, Text for free text,
// the endpoint ids for relations.
type Label struct {
	ID          uint   `gorm:"primaryKey"`
	ProjectID   uint   `gorm:"not null;index"`
	ItemID      uint   `gorm:"not null;index:idx_labels_item_annotator,priority:1"`
	AnnotatorID uint   `gorm:"not null;index:idx_labels_item_annotator,priority:2"`
	Kind        string `gorm:"type:varchar(16);not null"`
	TypeID      uint   `gorm:"not null"`
	StartOffset *int
	EndOffset   *int
	Text        *string `gorm:"type:text"`
	FromLabelID *uint
	ToLabelID   *uint
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}
