// Package steward provides hierarchical access control for CRM backends.
//
// Steward resolves page/action permission checks against a role graph in
// which a role may report to several supervisors. Grants use the
// show/own/junior/all scope ladder plus page-specific tokens and the
// universal wildcard; `junior` scope is resolved by walking the reporting
// graph to compute the principal's subordinate set. It is tenant-scoped by
// default via forge.Scope and integrates with the Forge ecosystem.
//
//	eng, err := steward.NewEngine(
//	    steward.WithStore(memStore),
//	)
//	result, err := eng.Can(ctx, steward.Principal{RoleID: roleID, UserID: "user_123"},
//	    "leads", "assign")
package steward

// Principal is the authenticated actor making an access request. A
// principal is bound to exactly one role for the duration of a session.
// IsSuperAdmin bypasses every matrix check unconditionally.
type Principal struct {
	RoleID       string `json:"role_id"`
	UserID       string `json:"user_id"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

// Record identifies the ownership of a target record for record-level
// decisions. Ownership is tracked at role granularity, user granularity,
// or both depending on the call site; unset fields are ignored.
type Record struct {
	OwnerRoleID string `json:"owner_role_id,omitempty"`
	OwnerUserID string `json:"owner_user_id,omitempty"`
}

// CheckRequest bundles the inputs of an access check. Record is set only
// for record-level checks.
type CheckRequest struct {
	Principal Principal `json:"principal"`
	Page      string    `json:"page"`
	Action    string    `json:"action"`
	Record    *Record   `json:"record,omitempty"`
}

// CheckResult is the outcome of an access check.
type CheckResult struct {
	Allowed    bool     `json:"allowed"`
	Decision   Decision `json:"decision"`
	Scope      Scope    `json:"scope,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	EvalTimeNs int64    `json:"eval_time_ns"`
}

// Decision is the access check outcome code.
type Decision string

const (
	// DecisionAllow means the request is permitted.
	DecisionAllow Decision = "allow"

	// DecisionDeny means the request is denied (generic).
	DecisionDeny Decision = "deny"

	// DecisionDenyNoRole means the principal's role could not be resolved.
	DecisionDenyNoRole Decision = "deny_no_role"

	// DecisionDenyNoGrant means the role holds no grant for the page.
	DecisionDenyNoGrant Decision = "deny_no_grant"

	// DecisionDenyAction means the grant does not carry the action token.
	DecisionDenyAction Decision = "deny_action"

	// DecisionDenyScope means no scope in the ladder covers the record.
	DecisionDenyScope Decision = "deny_scope"
)

// Scope identifies which capability satisfied an allowed check.
type Scope string

const (
	// ScopeSuperAdmin is the unconditional super-admin bypass.
	ScopeSuperAdmin Scope = "super_admin"

	// ScopeWildcard means the grant's wildcard token matched.
	ScopeWildcard Scope = "wildcard"

	// ScopeAction means a concrete action token matched.
	ScopeAction Scope = "action"

	// ScopeAll means the `all` record scope matched.
	ScopeAll Scope = "all"

	// ScopeJunior means the record owner is in the subordinate set.
	ScopeJunior Scope = "junior"

	// ScopeOwn means the principal owns the record.
	ScopeOwn Scope = "own"
)
