// Package department defines the Department entity and its store interface.
package department

import (
	"time"

	"github.com/xraph/steward/id"
)

// Department is an organizational unit. Departments form a forest: a
// department with a nil ParentID is a root; cycles are rejected on save.
type Department struct {
	ID          id.DepartmentID  `json:"id" db:"id"`
	TenantID    string           `json:"tenant_id" db:"tenant_id"`
	AppID       string           `json:"app_id" db:"app_id"`
	Name        string           `json:"name" db:"name"`
	Description string           `json:"description,omitempty" db:"description"`
	ParentID    *id.DepartmentID `json:"parent_id,omitempty" db:"parent_id"`
	Metadata    map[string]any   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the department has no parent.
func (d *Department) IsRoot() bool { return d.ParentID == nil || d.ParentID.IsNil() }

// ListFilter contains filters for listing departments.
type ListFilter struct {
	TenantID string           `json:"tenant_id,omitempty"`
	ParentID *id.DepartmentID `json:"parent_id,omitempty"`
	Search   string           `json:"search,omitempty"`
	Limit    int              `json:"limit,omitempty"`
	Offset   int              `json:"offset,omitempty"`
}
