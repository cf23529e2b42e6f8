package steward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/steward/checklog"
	"github.com/xraph/steward/department"
	"github.com/xraph/steward/grant"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/matrix"
	"github.com/xraph/steward/plugin"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/store"
)

// Engine is the central access-control engine. It resolves page/action
// checks and record-scope checks against the role graph, manages the
// store, and fires extension hooks.
type Engine struct {
	store    store.Store
	resolver SubordinateResolver
	cache    Cache
	plugins  *plugin.Registry
	logger   *slog.Logger
	config   Config

	// mu serializes reporting and parent mutations. Cycle validation reads
	// the graph before writing; two concurrent saves that are each acyclic
	// in isolation can jointly close a cycle without this gate.
	mu sync.Mutex
}

// NewEngine creates a new Steward engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		resolver: DefaultSubordinateResolver(10),
		logger:   slog.Default(),
		config:   DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("steward: store is required")
	}
	// Update resolver max depth from config.
	if e.config.MaxGraphDepth > 0 {
		e.resolver = DefaultSubordinateResolver(e.config.MaxGraphDepth)
	}
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Checks
// ──────────────────────────────────────────────────

// Can performs a page/action access check. This is the hot path.
//
// The decision order is fixed: super-admin bypass, then role resolution,
// then the page grant, then the action token with the wildcard dominating.
// A page with no grant is a deny; an unknown page is a deny for everyone
// except super-admins.
func (e *Engine) Can(ctx context.Context, principal Principal, page, action string) (*CheckResult, error) {
	start := time.Now()
	scope := scopeFromContext(ctx)

	page = grant.NormalizePage(page)
	action = grant.NormalizeAction(action)
	req := &CheckRequest{Principal: principal, Page: page, Action: action}

	if principal.IsSuperAdmin {
		result := &CheckResult{
			Allowed:    true,
			Decision:   DecisionAllow,
			Scope:      ScopeSuperAdmin,
			EvalTimeNs: time.Since(start).Nanoseconds(),
		}
		e.finishCheck(ctx, scope, req, result)
		return result, nil
	}

	if e.cache != nil {
		key := CacheKey(scope.tenantID, principal.RoleID, principal.UserID, page, action)
		if cached, ok := e.cache.Get(ctx, key); ok {
			cached.EvalTimeNs = time.Since(start).Nanoseconds()
			return &cached, nil
		}
	}

	if e.plugins != nil {
		e.plugins.EmitBeforeCheck(ctx, req)
	}

	result := e.evaluate(ctx, principal, page, action)
	result.EvalTimeNs = time.Since(start).Nanoseconds()

	if e.cache != nil {
		key := CacheKey(scope.tenantID, principal.RoleID, principal.UserID, page, action)
		e.cache.Set(ctx, key, *result)
	}

	e.finishCheck(ctx, scope, req, result)
	return result, nil
}

func (e *Engine) evaluate(ctx context.Context, principal Principal, page, action string) *CheckResult {
	r, err := e.loadPrincipalRole(ctx, principal)
	if err != nil {
		return &CheckResult{Decision: DecisionDenyNoRole, Reason: "principal role not found"}
	}

	g, ok := r.GrantFor(page)
	if !ok || g.IsEmpty() {
		return &CheckResult{Decision: DecisionDenyNoGrant, Reason: "role holds no grant for page " + page}
	}

	if sc, ok := actionScope(g, action); ok {
		return &CheckResult{Allowed: true, Decision: DecisionAllow, Scope: sc}
	}
	return &CheckResult{Decision: DecisionDenyAction, Reason: "grant for " + page + " lacks action " + action}
}

// CanAccessRecord performs a record-level access check on a page. The
// scope ladder is evaluated widest first: all, then junior, then own.
// The junior rung resolves the principal's subordinate closure and
// matches the record's owner role against it; the closure always contains
// the principal's own role.
func (e *Engine) CanAccessRecord(ctx context.Context, principal Principal, page string, rec Record) (*CheckResult, error) {
	start := time.Now()
	scope := scopeFromContext(ctx)

	page = grant.NormalizePage(page)
	req := &CheckRequest{Principal: principal, Page: page, Record: &rec}

	if principal.IsSuperAdmin {
		result := &CheckResult{
			Allowed:    true,
			Decision:   DecisionAllow,
			Scope:      ScopeSuperAdmin,
			EvalTimeNs: time.Since(start).Nanoseconds(),
		}
		e.finishCheck(ctx, scope, req, result)
		return result, nil
	}

	if e.plugins != nil {
		e.plugins.EmitBeforeCheck(ctx, req)
	}

	result, err := e.evaluateRecord(ctx, principal, page, rec)
	if err != nil {
		return nil, err
	}
	result.EvalTimeNs = time.Since(start).Nanoseconds()

	e.finishCheck(ctx, scope, req, result)
	return result, nil
}

func (e *Engine) evaluateRecord(ctx context.Context, principal Principal, page string, rec Record) (*CheckResult, error) {
	r, err := e.loadPrincipalRole(ctx, principal)
	if err != nil {
		return &CheckResult{Decision: DecisionDenyNoRole, Reason: "principal role not found"}, nil
	}

	g, ok := r.GrantFor(page)
	if !ok || g.IsEmpty() {
		return &CheckResult{Decision: DecisionDenyNoGrant, Reason: "role holds no grant for page " + page}, nil
	}

	if g.HasExact(grant.Wildcard) {
		return &CheckResult{Allowed: true, Decision: DecisionAllow, Scope: ScopeWildcard}, nil
	}
	if g.HasExact(grant.ActionAll) {
		return &CheckResult{Allowed: true, Decision: DecisionAllow, Scope: ScopeAll}, nil
	}

	if g.HasExact(grant.ActionJunior) && rec.OwnerRoleID != "" {
		subs, err := e.resolver.Subordinates(ctx, e.store, r.ID)
		if err != nil && !errors.Is(err, ErrGraphDepthExceeded) {
			return nil, fmt.Errorf("steward: resolve subordinates: %w", err)
		}
		if subs.Contains(rec.OwnerRoleID) {
			return &CheckResult{Allowed: true, Decision: DecisionAllow, Scope: ScopeJunior}, nil
		}
	}

	if g.HasExact(grant.ActionOwn) && ownsRecord(principal, rec) {
		return &CheckResult{Allowed: true, Decision: DecisionAllow, Scope: ScopeOwn}, nil
	}

	return &CheckResult{Decision: DecisionDenyScope, Reason: "no record scope covers the owner"}, nil
}

// Enforce returns an error if the access check is denied.
func (e *Engine) Enforce(ctx context.Context, principal Principal, page, action string) error {
	result, err := e.Can(ctx, principal, page, action)
	if err != nil {
		return fmt.Errorf("steward check: %w", err)
	}
	if !result.Allowed {
		return fmt.Errorf("%w: %s: %s", ErrAccessDenied, result.Decision, result.Reason)
	}
	return nil
}

// CanI is a shorthand returning only the boolean outcome.
func (e *Engine) CanI(ctx context.Context, roleID, userID, page, action string) (bool, error) {
	result, err := e.Can(ctx, Principal{RoleID: roleID, UserID: userID}, page, action)
	if err != nil {
		return false, err
	}
	return result.Allowed, nil
}

// SubordinatesOf resolves the transitive subordinate closure of a role,
// including the role itself, and returns the member roles.
func (e *Engine) SubordinatesOf(ctx context.Context, roleID id.RoleID) ([]*role.Role, error) {
	subs, err := e.resolver.Subordinates(ctx, e.store, roleID)
	if err != nil && !errors.Is(err, ErrGraphDepthExceeded) {
		return nil, err
	}
	roles := make([]*role.Role, 0, len(subs))
	for _, rid := range subs.IDs() {
		r, gerr := e.store.GetRole(ctx, rid)
		if gerr != nil {
			continue
		}
		roles = append(roles, r)
	}
	return roles, err
}

func (e *Engine) loadPrincipalRole(ctx context.Context, principal Principal) (*role.Role, error) {
	if principal.RoleID == "" {
		return nil, ErrRoleNotFound
	}
	rid, err := id.ParseRoleID(principal.RoleID)
	if err != nil {
		return nil, ErrRoleNotFound
	}
	r, err := e.store.GetRole(ctx, rid)
	if err != nil || r == nil {
		return nil, ErrRoleNotFound
	}
	return r, nil
}

// finishCheck fires the after-check hook and writes the audit entry.
func (e *Engine) finishCheck(ctx context.Context, scope tenantScope, req *CheckRequest, result *CheckResult) {
	if e.plugins != nil {
		e.plugins.EmitAfterCheck(ctx, req, result)
	}
	if e.config.AuditDecisions {
		e.audit(ctx, scope, req, result)
	}
}

// audit writes a check log entry. Audit failures are logged and dropped;
// an audit outage must not turn into an access outage.
func (e *Engine) audit(ctx context.Context, scope tenantScope, req *CheckRequest, result *CheckResult) {
	entry := &checklog.Entry{
		ID:         id.NewCheckLogID(),
		TenantID:   scope.tenantID,
		AppID:      scope.appID,
		RoleID:     req.Principal.RoleID,
		UserID:     req.Principal.UserID,
		Page:       req.Page,
		Action:     req.Action,
		Decision:   string(result.Decision),
		Scope:      string(result.Scope),
		Reason:     result.Reason,
		EvalTimeNs: result.EvalTimeNs,
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.store.CreateCheckLog(ctx, entry); err != nil {
		e.logger.Warn("check audit write failed",
			slog.String("role_id", entry.RoleID),
			slog.String("page", entry.Page),
			slog.String("error", err.Error()),
		)
	}
}

// ──────────────────────────────────────────────────
// Role management
// ──────────────────────────────────────────────────

// SaveRole creates or updates a role. The role is normalized first, then
// its reporting set is validated against the self and cycle invariants
// under the engine mutation gate. System roles reject updates.
func (e *Engine) SaveRole(ctx context.Context, r *role.Role) error {
	if r == nil {
		return errors.New("steward: role is required")
	}
	r.Normalize()
	// A grant selecting every cataloged action is stored as the wildcard,
	// so actions added to the page later are covered too.
	for i, g := range r.Grants {
		r.Grants[i] = g.Collapse(matrix.ActionsFor(g.Page))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	existing, _ := e.store.GetRole(ctx, r.ID)
	if existing != nil && existing.IsSystem {
		return ErrSystemRoleImmutable
	}

	maxDepth := e.config.MaxGraphDepth
	if maxDepth <= 0 {
		maxDepth = 10
	}
	if err := validateReporting(ctx, e.store, r.ID, r.ReportingIDs, maxDepth); err != nil {
		return err
	}
	if r.DepartmentID != nil {
		if _, err := e.store.GetDepartment(ctx, *r.DepartmentID); err != nil {
			return ErrDepartmentNotFound
		}
	}

	now := time.Now().UTC()
	r.UpdatedAt = now
	if existing == nil {
		r.CreatedAt = now
		if err := e.store.CreateRole(ctx, r); err != nil {
			return fmt.Errorf("steward: create role: %w", err)
		}
		e.invalidateRole(ctx, r)
		if e.plugins != nil {
			e.plugins.EmitRoleCreated(ctx, r)
		}
		return nil
	}

	r.CreatedAt = existing.CreatedAt
	if err := e.store.UpdateRole(ctx, r); err != nil {
		return fmt.Errorf("steward: update role: %w", err)
	}
	e.invalidateRole(ctx, r)
	if e.plugins != nil {
		e.plugins.EmitRoleUpdated(ctx, r)
	}
	return nil
}

// GetRole retrieves a role by ID.
func (e *Engine) GetRole(ctx context.Context, roleID id.RoleID) (*role.Role, error) {
	return e.store.GetRole(ctx, roleID)
}

// ListRoles returns roles matching the filter.
func (e *Engine) ListRoles(ctx context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	return e.store.ListRoles(ctx, filter)
}

// DeleteRole removes a role. Deletion is blocked while other roles still
// report to it; reporting edges must be repointed first so subordinate
// closures stay resolvable.
func (e *Engine) DeleteRole(ctx context.Context, roleID id.RoleID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.store.GetRole(ctx, roleID)
	if err != nil || r == nil {
		return ErrRoleNotFound
	}
	if r.IsSystem {
		return ErrSystemRoleImmutable
	}

	reports, err := e.store.ListDirectReports(ctx, roleID)
	if err != nil {
		return fmt.Errorf("steward: list direct reports: %w", err)
	}
	if len(reports) > 0 {
		return ErrRoleHasReports
	}

	if err := e.store.DeleteRole(ctx, roleID); err != nil {
		return fmt.Errorf("steward: delete role: %w", err)
	}
	e.invalidateRole(ctx, r)
	if e.plugins != nil {
		e.plugins.EmitRoleDeleted(ctx, roleID)
	}
	return nil
}

func (e *Engine) invalidateRole(ctx context.Context, r *role.Role) {
	if e.cache == nil {
		return
	}
	// Grant changes affect the role's own entries; reporting changes can
	// widen or narrow junior closures anywhere in the tenant.
	e.cache.InvalidateRole(ctx, r.ID.String())
	e.cache.InvalidateTenant(ctx, r.TenantID)
}

// ──────────────────────────────────────────────────
// Department management
// ──────────────────────────────────────────────────

// SaveDepartment creates or updates a department. The parent must exist
// and must not be reachable from the department itself.
func (e *Engine) SaveDepartment(ctx context.Context, d *department.Department) error {
	if d == nil {
		return errors.New("steward: department is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if d.ParentID != nil {
		if err := e.validateDepartmentParent(ctx, d); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	d.UpdatedAt = now
	existing, _ := e.store.GetDepartment(ctx, d.ID)
	if existing == nil {
		d.CreatedAt = now
		if err := e.store.CreateDepartment(ctx, d); err != nil {
			return fmt.Errorf("steward: create department: %w", err)
		}
		if e.plugins != nil {
			e.plugins.EmitDepartmentCreated(ctx, d)
		}
		return nil
	}

	d.CreatedAt = existing.CreatedAt
	if err := e.store.UpdateDepartment(ctx, d); err != nil {
		return fmt.Errorf("steward: update department: %w", err)
	}
	if e.plugins != nil {
		e.plugins.EmitDepartmentUpdated(ctx, d)
	}
	return nil
}

func (e *Engine) validateDepartmentParent(ctx context.Context, d *department.Department) error {
	if *d.ParentID == d.ID {
		return ErrDepartmentCycle
	}
	maxDepth := e.config.MaxGraphDepth
	if maxDepth <= 0 {
		maxDepth = 10
	}
	cur := *d.ParentID
	for i := 0; i < maxDepth; i++ {
		p, err := e.store.GetDepartment(ctx, cur)
		if err != nil || p == nil {
			if i == 0 {
				return ErrDepartmentNotFound
			}
			return nil
		}
		if p.ID == d.ID {
			return ErrDepartmentCycle
		}
		if p.ParentID == nil {
			return nil
		}
		cur = *p.ParentID
	}
	return ErrGraphDepthExceeded
}

// GetDepartment retrieves a department by ID.
func (e *Engine) GetDepartment(ctx context.Context, deptID id.DepartmentID) (*department.Department, error) {
	return e.store.GetDepartment(ctx, deptID)
}

// ListDepartments returns departments matching the filter.
func (e *Engine) ListDepartments(ctx context.Context, filter *department.ListFilter) ([]*department.Department, error) {
	return e.store.ListDepartments(ctx, filter)
}

// DeleteDepartment removes a department. Deletion is blocked while child
// departments or assigned roles still reference it.
func (e *Engine) DeleteDepartment(ctx context.Context, deptID id.DepartmentID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.store.GetDepartment(ctx, deptID)
	if err != nil || d == nil {
		return ErrDepartmentNotFound
	}

	children, err := e.store.ListChildDepartments(ctx, deptID)
	if err != nil {
		return fmt.Errorf("steward: list child departments: %w", err)
	}
	if len(children) > 0 {
		return ErrDepartmentHasChildren
	}

	roles, err := e.store.ListRolesByDepartment(ctx, deptID)
	if err != nil {
		return fmt.Errorf("steward: list department roles: %w", err)
	}
	if len(roles) > 0 {
		return ErrDepartmentInUse
	}

	if err := e.store.DeleteDepartment(ctx, deptID); err != nil {
		return fmt.Errorf("steward: delete department: %w", err)
	}
	if e.plugins != nil {
		e.plugins.EmitDepartmentDeleted(ctx, deptID)
	}
	return nil
}

// DepartmentTree loads all departments for a tenant and indexes them as
// an immutable tree snapshot.
func (e *Engine) DepartmentTree(ctx context.Context, tenantID string) (*department.Tree, error) {
	depts, err := e.store.ListDepartments(ctx, &department.ListFilter{TenantID: tenantID})
	if err != nil {
		return nil, fmt.Errorf("steward: list departments: %w", err)
	}
	return department.NewTree(depts), nil
}

// ──────────────────────────────────────────────────
// Check logs
// ──────────────────────────────────────────────────

// ListCheckLogs returns check audit entries matching the filter.
func (e *Engine) ListCheckLogs(ctx context.Context, filter *checklog.QueryFilter) ([]*checklog.Entry, error) {
	return e.store.ListCheckLogs(ctx, filter)
}

// PurgeCheckLogs removes audit entries older than the given time and
// returns the number removed.
func (e *Engine) PurgeCheckLogs(ctx context.Context, before time.Time) (int64, error) {
	return e.store.PurgeCheckLogs(ctx, before)
}
