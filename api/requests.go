package api

// ──────────────────────────────────────────────────
// Check requests
// ──────────────────────────────────────────────────

// CheckRequest is the request body for an access check.
type CheckRequest struct {
	RoleID       string `json:"role_id" description:"Role ID of the acting principal"`
	UserID       string `json:"user_id,omitempty" description:"User identifier of the acting principal"`
	IsSuperAdmin bool   `json:"is_super_admin,omitempty" description:"Super-admin bypass flag"`
	Page         string `json:"page" description:"Page (resource) name"`
	Action       string `json:"action" description:"Action name"`
	OwnerRoleID  string `json:"owner_role_id,omitempty" description:"Role that owns the record, for record checks"`
	OwnerUserID  string `json:"owner_user_id,omitempty" description:"User that owns the record, for record checks"`
}

// BatchCheckRequest contains multiple checks.
type BatchCheckRequest struct {
	Checks []CheckRequest `json:"checks" description:"List of access checks"`
}

// RecordCheckRequest is the request body for a record-level access check.
type RecordCheckRequest struct {
	RoleID       string `json:"role_id" description:"Role ID of the acting principal"`
	UserID       string `json:"user_id,omitempty" description:"User identifier of the acting principal"`
	IsSuperAdmin bool   `json:"is_super_admin,omitempty" description:"Super-admin bypass flag"`
	Page         string `json:"page" description:"Page (resource) name"`
	OwnerRoleID  string `json:"owner_role_id,omitempty" description:"Role that owns the record"`
	OwnerUserID  string `json:"owner_user_id,omitempty" description:"User that owns the record"`
}

// ──────────────────────────────────────────────────
// Role requests
// ──────────────────────────────────────────────────

// GrantInput is one page grant in a role create or update body.
type GrantInput struct {
	Page    string   `json:"page" description:"Page name"`
	Actions []string `json:"actions" description:"Granted action tokens (show, own, junior, all, or *)"`
}

// CreateRoleRequest is the body for creating a role.
type CreateRoleRequest struct {
	Name         string         `json:"name" description:"Role name"`
	Slug         string         `json:"slug" description:"URL-safe slug"`
	Description  string         `json:"description,omitempty" description:"Human-readable description"`
	DepartmentID string         `json:"department_id,omitempty" description:"Department the role belongs to"`
	ReportingIDs []string       `json:"reporting_ids,omitempty" description:"Role IDs this role reports to"`
	Permissions  []GrantInput   `json:"permissions,omitempty" description:"Page grants"`
	IsSystem     bool           `json:"is_system,omitempty" description:"System role flag"`
	Metadata     map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// UpdateRoleRequest is the body for updating a role.
type UpdateRoleRequest struct {
	Name         string         `json:"name,omitempty" description:"Role name"`
	Description  string         `json:"description,omitempty" description:"Human-readable description"`
	DepartmentID *string        `json:"department_id,omitempty" description:"Department the role belongs to (empty string clears)"`
	ReportingIDs []string       `json:"reporting_ids,omitempty" description:"Role IDs this role reports to (replaces the set)"`
	Permissions  []GrantInput   `json:"permissions,omitempty" description:"Page grants (replaces the matrix)"`
	Metadata     map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetRoleRequest is the path parameter for getting a role.
type GetRoleRequest struct {
	RoleID string `path:"roleId" description:"Role ID"`
}

// ListRolesRequest holds query parameters for listing roles.
type ListRolesRequest struct {
	TenantID     string `query:"tenant_id" description:"Filter by tenant"`
	DepartmentID string `query:"department_id" description:"Filter by department"`
	Search       string `query:"search" description:"Search by name"`
	Limit        int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset       int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Department requests
// ──────────────────────────────────────────────────

// CreateDepartmentRequest is the body for creating a department.
type CreateDepartmentRequest struct {
	Name        string         `json:"name" description:"Department name"`
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	ParentID    string         `json:"parent_id,omitempty" description:"Parent department ID"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// UpdateDepartmentRequest is the body for updating a department.
type UpdateDepartmentRequest struct {
	Name        string         `json:"name,omitempty" description:"Department name"`
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	ParentID    *string        `json:"parent_id,omitempty" description:"Parent department ID (empty string makes the department a root)"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetDepartmentRequest is the path parameter for getting a department.
type GetDepartmentRequest struct {
	DepartmentID string `path:"departmentId" description:"Department ID"`
}

// ListDepartmentsRequest holds query parameters for listing departments.
type ListDepartmentsRequest struct {
	TenantID string `query:"tenant_id" description:"Filter by tenant"`
	Search   string `query:"search" description:"Search by name"`
	Limit    int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset   int    `query:"offset" description:"Results to skip"`
}

// DepartmentTreeRequest holds query parameters for the tree endpoint.
type DepartmentTreeRequest struct {
	TenantID string `query:"tenant_id" description:"Tenant to build the tree for"`
}

// ──────────────────────────────────────────────────
// Check log requests
// ──────────────────────────────────────────────────

// ListCheckLogsRequest holds query parameters for check log queries.
type ListCheckLogsRequest struct {
	TenantID string `query:"tenant_id" description:"Filter by tenant"`
	RoleID   string `query:"role_id" description:"Filter by role"`
	UserID   string `query:"user_id" description:"Filter by user"`
	Page     string `query:"page" description:"Filter by page"`
	Action   string `query:"action" description:"Filter by action"`
	Decision string `query:"decision" description:"Filter by decision code"`
	After    string `query:"after" description:"Only entries after this time (RFC3339)"`
	Before   string `query:"before" description:"Only entries before this time (RFC3339)"`
	Limit    int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset   int    `query:"offset" description:"Results to skip"`
}

// PurgeCheckLogsRequest holds query parameters for purging check logs.
type PurgeCheckLogsRequest struct {
	Before string `query:"before" description:"Delete entries older than this time (RFC3339)"`
}
