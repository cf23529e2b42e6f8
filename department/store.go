package department

import (
	"context"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for departments.
type Store interface {
	// CreateDepartment persists a new department.
	CreateDepartment(ctx context.Context, d *Department) error

	// GetDepartment retrieves a department by ID.
	GetDepartment(ctx context.Context, deptID id.DepartmentID) (*Department, error)

	// UpdateDepartment persists changes to a department.
	UpdateDepartment(ctx context.Context, d *Department) error

	// DeleteDepartment removes a department by ID.
	DeleteDepartment(ctx context.Context, deptID id.DepartmentID) error

	// ListDepartments returns departments matching the filter.
	ListDepartments(ctx context.Context, filter *ListFilter) ([]*Department, error)

	// CountDepartments returns the number of departments matching the filter.
	CountDepartments(ctx context.Context, filter *ListFilter) (int64, error)

	// ListChildDepartments returns direct children of a department.
	ListChildDepartments(ctx context.Context, parentID id.DepartmentID) ([]*Department, error)

	// ListRootDepartments returns departments without a parent for a tenant.
	ListRootDepartments(ctx context.Context, tenantID string) ([]*Department, error)

	// DeleteDepartmentsByTenant removes all departments for a tenant.
	DeleteDepartmentsByTenant(ctx context.Context, tenantID string) error
}
