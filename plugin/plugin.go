// Package plugin defines the plugin system for Steward.
// Plugins are notified of lifecycle events (check performed, role saved,
// department deleted, etc.) and can react: logging, metrics, tracing.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/steward/department"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/role"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Check lifecycle hooks
// ──────────────────────────────────────────────────

// BeforeCheck is called before an access check is evaluated.
// The req parameter is *steward.CheckRequest (passed as any to avoid import cycle).
type BeforeCheck interface {
	OnBeforeCheck(ctx context.Context, req any) error
}

// AfterCheck is called after an access check completes.
// The req parameter is *steward.CheckRequest; result is *steward.CheckResult.
type AfterCheck interface {
	OnAfterCheck(ctx context.Context, req, result any) error
}

// ──────────────────────────────────────────────────
// Role lifecycle hooks
// ──────────────────────────────────────────────────

// RoleCreated is called after a role is created.
type RoleCreated interface {
	OnRoleCreated(ctx context.Context, r *role.Role) error
}

// RoleUpdated is called after a role is updated, including grant and
// reporting changes.
type RoleUpdated interface {
	OnRoleUpdated(ctx context.Context, r *role.Role) error
}

// RoleDeleted is called after a role is deleted.
type RoleDeleted interface {
	OnRoleDeleted(ctx context.Context, roleID id.RoleID) error
}

// ──────────────────────────────────────────────────
// Department lifecycle hooks
// ──────────────────────────────────────────────────

// DepartmentCreated is called after a department is created.
type DepartmentCreated interface {
	OnDepartmentCreated(ctx context.Context, d *department.Department) error
}

// DepartmentUpdated is called after a department is updated.
type DepartmentUpdated interface {
	OnDepartmentUpdated(ctx context.Context, d *department.Department) error
}

// DepartmentDeleted is called after a department is deleted.
type DepartmentDeleted interface {
	OnDepartmentDeleted(ctx context.Context, deptID id.DepartmentID) error
}

// ──────────────────────────────────────────────────
// Shutdown hook
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
