package steward

import "errors"

var (
	// ErrAccessDenied is returned when an access check fails.
	ErrAccessDenied = errors.New("steward: access denied")

	// ErrRoleNotFound is returned when a role cannot be found.
	ErrRoleNotFound = errors.New("steward: role not found")

	// ErrDepartmentNotFound is returned when a department cannot be found.
	ErrDepartmentNotFound = errors.New("steward: department not found")

	// ErrCheckLogNotFound is returned when a check log entry cannot be found.
	ErrCheckLogNotFound = errors.New("steward: check log entry not found")

	// ErrSelfReporting is returned when a role's reporting set contains the
	// role's own id.
	ErrSelfReporting = errors.New("steward: role cannot report to itself")

	// ErrCyclicReporting is returned when a reporting mutation would create
	// a cycle in the role graph.
	ErrCyclicReporting = errors.New("steward: cyclic reporting detected")

	// ErrRoleHasReports is returned when deleting a role that other roles
	// still report to.
	ErrRoleHasReports = errors.New("steward: role still has direct reports")

	// ErrSystemRoleImmutable is returned when trying to modify a system role.
	ErrSystemRoleImmutable = errors.New("steward: system role cannot be modified")

	// ErrDepartmentHasChildren is returned when deleting a department that
	// still has child departments.
	ErrDepartmentHasChildren = errors.New("steward: department still has child departments")

	// ErrDepartmentInUse is returned when deleting a department that roles
	// are still assigned to.
	ErrDepartmentInUse = errors.New("steward: department still has roles assigned")

	// ErrDepartmentCycle is returned when a department parent mutation would
	// create a cycle in the department forest.
	ErrDepartmentCycle = errors.New("steward: cyclic department parent detected")

	// ErrGraphDepthExceeded is returned when a reporting graph walk exceeds
	// the configured max depth.
	ErrGraphDepthExceeded = errors.New("steward: reporting graph depth exceeded")
)
