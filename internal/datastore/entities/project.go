package entities

import "time"

// Member roles within a project.
const (
	RoleProjectAdmin = "project_admin"
	RoleAnnotator    = "annotator"
	RoleApprover     = "annotation_approver"
)

// Project carries the annotation policy flags consulted when labels are added.
type Project struct {
	ID                        uint      `gorm:"primaryKey"`
	Name                      string    `gorm:"type:varchar(200);not null"`
	CollaborativeAnnotation   bool      `gorm:"not null"`
	SingleClassClassification bool      `gorm:"not null"`
	AllowOverlappingSpans     bool      `gorm:"not null"`
	CreatedAt                 time.Time `gorm:"autoCreateTime"`
	UpdatedAt                 time.Time `gorm:"autoUpdateTime"`
}

// Member links a user to a project with one role.
type Member struct {
	ID        uint      `gorm:"primaryKey"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_members_project_user,priority:1;index:idx_members_project_role,priority:1"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_members_project_user,priority:2"`
	Role      string    `gorm:"type:varchar(32);not null;index:idx_members_project_role,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// IsAnnotator reports whether the member may vote.
func (m *Member) IsAnnotator() bool {
	return m.Role == RoleAnnotator
}
