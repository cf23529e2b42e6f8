package role

import (
	"context"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for roles.
//
// Implementations return roles in their normalized form: legacy singular
// reporting fields folded into ReportingIDs, grants lowercase-canonical.
type Store interface {
	// CreateRole persists a new role.
	CreateRole(ctx context.Context, r *Role) error

	// GetRole retrieves a role by ID.
	GetRole(ctx context.Context, roleID id.RoleID) (*Role, error)

	// GetRoleBySlug retrieves a role by tenant and slug.
	GetRoleBySlug(ctx context.Context, tenantID, slug string) (*Role, error)

	// UpdateRole persists changes to a role.
	UpdateRole(ctx context.Context, r *Role) error

	// DeleteRole removes a role by ID.
	DeleteRole(ctx context.Context, roleID id.RoleID) error

	// ListRoles returns roles matching the filter.
	ListRoles(ctx context.Context, filter *ListFilter) ([]*Role, error)

	// CountRoles returns the number of roles matching the filter.
	CountRoles(ctx context.Context, filter *ListFilter) (int64, error)

	// ListDirectReports returns the roles whose ReportingIDs contain the
	// given role, the inverse of the reporting edge.
	ListDirectReports(ctx context.Context, roleID id.RoleID) ([]*Role, error)

	// ListRolesByDepartment returns roles assigned to a department.
	ListRolesByDepartment(ctx context.Context, deptID id.DepartmentID) ([]*Role, error)

	// DeleteRolesByTenant removes all roles for a tenant.
	DeleteRolesByTenant(ctx context.Context, tenantID string) error
}
