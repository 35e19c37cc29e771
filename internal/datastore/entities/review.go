package entities

import (
	"time"

	"gorm.io/datatypes"
)

// LabelAgreement is a reviewer's note on one label type of an item.
type LabelAgreement struct {
	LabelTypeID uint   `json:"label_type_id"`
	Agreed      bool   `json:"agreed"`
	Note        string `json:"note,omitempty"`
}

// DatasetReview is one reviewer's verdict on one item.
// LabelAgreements is stored as a JSON array.
type DatasetReview struct {
	ID              uint                                `gorm:"primaryKey"`
	ProjectID       uint                                `gorm:"not null;index"`
	ItemID          uint                                `gorm:"not null;uniqueIndex:idx_reviews_item_reviewer,priority:1"`
	ReviewerID      uint                                `gorm:"not null;uniqueIndex:idx_reviews_item_reviewer,priority:2;index"`
	Approved        bool                                `gorm:"not null;index"`
	Comment         string                              `gorm:"type:text"`
	LabelAgreements datatypes.JSONSlice[LabelAgreement] `gorm:"type:json"`
	CreatedAt       time.Time                           `gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time                           `gorm:"autoUpdateTime"`
}

// ManualDiscrepancy records that a member flagged disagreement on an item
// by hand. It is independent of automatic detection.
type ManualDiscrepancy struct {
	ID        uint      `gorm:"primaryKey"`
	ProjectID uint      `gorm:"not null;index"`
	ItemID    uint      `gorm:"not null;uniqueIndex:idx_discrepancies_item_member,priority:1"`
	MemberID  uint      `gorm:"not null;uniqueIndex:idx_discrepancies_item_member,priority:2"`
	Reason    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
