package steward

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/steward/checklog"
	"github.com/xraph/steward/department"
	"github.com/xraph/steward/grant"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/store/memory"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *memory.Store) {
	t.Helper()
	s := memory.New()
	eng, err := NewEngine(append([]Option{WithStore(s)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return eng, s
}

func seedRole(t *testing.T, s *memory.Store, name string, grants []grant.Grant, reportsTo ...id.RoleID) *role.Role {
	t.Helper()
	r := &role.Role{
		ID:           id.NewRoleID(),
		TenantID:     "t1",
		Name:         name,
		Slug:         name,
		ReportingIDs: reportsTo,
		Grants:       grants,
	}
	r.Normalize()
	if err := s.CreateRole(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestNewEngine_RequiresStore(t *testing.T) {
	_, err := NewEngine()
	if err == nil {
		t.Fatal("expected error when store is nil")
	}
}

func TestCan_GrantFlow(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, s := newTestEngine(t)

	agent := seedRole(t, s, "agent", []grant.Grant{
		{Page: "leads", Actions: []string{"show", "own", "assign"}},
	})

	result, err := eng.Can(ctx, Principal{RoleID: agent.ID.String(), UserID: "u1"}, "leads", "assign")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allowed, got %s: %s", result.Decision, result.Reason)
	}
	if result.Scope != ScopeAction {
		t.Fatalf("expected action scope, got %s", result.Scope)
	}

	// Missing action token on a granted page.
	result, err = eng.Can(ctx, Principal{RoleID: agent.ID.String(), UserID: "u1"}, "leads", "export")
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyAction {
		t.Fatalf("expected deny_action, got %s", result.Decision)
	}

	// No grant for the page at all.
	result, err = eng.Can(ctx, Principal{RoleID: agent.ID.String(), UserID: "u1"}, "settings", "show")
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyNoGrant {
		t.Fatalf("expected deny_no_grant, got %s", result.Decision)
	}
}

func TestCan_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	agent := seedRole(t, s, "agent", []grant.Grant{
		{Page: "Leads", Actions: []string{"Show"}},
	})

	result, err := eng.Can(ctx, Principal{RoleID: agent.ID.String()}, "LEADS", "SHOW")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected case-insensitive match, got %s", result.Decision)
	}
}

func TestCan_UnknownRoleDenies(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	result, err := eng.Can(ctx, Principal{RoleID: id.NewRoleID().String()}, "leads", "show")
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyNoRole {
		t.Fatalf("expected deny_no_role, got %s", result.Decision)
	}

	// Malformed role id is a deny, never an error.
	result, err = eng.Can(ctx, Principal{RoleID: "not-an-id"}, "leads", "show")
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected deny for malformed role id")
	}
}

func TestCan_SuperAdminBypass(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	// No role at all, page not even in the matrix.
	result, err := eng.Can(ctx, Principal{UserID: "root", IsSuperAdmin: true}, "no-such-page", "whatever")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.Scope != ScopeSuperAdmin {
		t.Fatalf("expected super admin allow, got %s/%s", result.Decision, result.Scope)
	}
}

func TestCan_WildcardDominates(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	admin := seedRole(t, s, "admin", []grant.Grant{
		{Page: "leads", Actions: []string{"*"}},
	})

	// An action invented after the grant was written still passes.
	for _, action := range []string{"show", "assign", "export", "brand-new-action"} {
		result, err := eng.Can(ctx, Principal{RoleID: admin.ID.String()}, "leads", action)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Allowed || result.Scope != ScopeWildcard {
			t.Fatalf("action %s: expected wildcard allow, got %s/%s", action, result.Decision, result.Scope)
		}
	}
}

func TestCan_WideningGrantIsMonotonic(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	r := seedRole(t, s, "agent", []grant.Grant{
		{Page: "leads", Actions: []string{"show"}},
	})

	before, _ := eng.Can(ctx, Principal{RoleID: r.ID.String()}, "leads", "show")
	if !before.Allowed {
		t.Fatal("baseline show should be allowed")
	}

	// Widening the grant must not revoke anything previously allowed.
	r.Grants = []grant.Grant{{Page: "leads", Actions: []string{"show", "own", "assign"}}}
	if err := eng.SaveRole(ctx, r); err != nil {
		t.Fatal(err)
	}
	after, _ := eng.Can(ctx, Principal{RoleID: r.ID.String()}, "leads", "show")
	if !after.Allowed {
		t.Fatal("widening the grant revoked a previously allowed action")
	}
}

func TestCanAccessRecord_ScopeLadder(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	manager := seedRole(t, s, "manager", []grant.Grant{
		{Page: "leads", Actions: []string{"show", "all"}},
	})
	teamLead := seedRole(t, s, "team-lead", []grant.Grant{
		{Page: "leads", Actions: []string{"show", "junior"}},
	}, manager.ID)
	agent := seedRole(t, s, "agent", []grant.Grant{
		{Page: "leads", Actions: []string{"show", "own"}},
	}, teamLead.ID)

	// Manager sees everyone's records.
	result, err := eng.CanAccessRecord(ctx, Principal{RoleID: manager.ID.String()}, "leads", Record{OwnerRoleID: agent.ID.String()})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.Scope != ScopeAll {
		t.Fatalf("expected all scope, got %s/%s", result.Decision, result.Scope)
	}

	// Team lead sees subordinate records two hops down... only one hop here.
	result, err = eng.CanAccessRecord(ctx, Principal{RoleID: teamLead.ID.String()}, "leads", Record{OwnerRoleID: agent.ID.String()})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.Scope != ScopeJunior {
		t.Fatalf("expected junior scope, got %s/%s", result.Decision, result.Scope)
	}

	// Junior includes self even without an own token.
	result, err = eng.CanAccessRecord(ctx, Principal{RoleID: teamLead.ID.String()}, "leads", Record{OwnerRoleID: teamLead.ID.String()})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.Scope != ScopeJunior {
		t.Fatalf("expected junior scope on own record, got %s/%s", result.Decision, result.Scope)
	}

	// Junior never looks upward.
	result, err = eng.CanAccessRecord(ctx, Principal{RoleID: teamLead.ID.String()}, "leads", Record{OwnerRoleID: manager.ID.String()})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("junior scope must not cover a supervisor's record")
	}

	// Agent sees only own records, matched by role or by user.
	result, _ = eng.CanAccessRecord(ctx, Principal{RoleID: agent.ID.String()}, "leads", Record{OwnerRoleID: agent.ID.String()})
	if !result.Allowed || result.Scope != ScopeOwn {
		t.Fatalf("expected own scope by role, got %s/%s", result.Decision, result.Scope)
	}
	result, _ = eng.CanAccessRecord(ctx, Principal{RoleID: agent.ID.String(), UserID: "u7"}, "leads", Record{OwnerUserID: "u7"})
	if !result.Allowed || result.Scope != ScopeOwn {
		t.Fatalf("expected own scope by user, got %s/%s", result.Decision, result.Scope)
	}
	result, _ = eng.CanAccessRecord(ctx, Principal{RoleID: agent.ID.String(), UserID: "u7"}, "leads", Record{OwnerRoleID: teamLead.ID.String()})
	if result.Allowed || result.Decision != DecisionDenyScope {
		t.Fatalf("expected deny_scope, got %s", result.Decision)
	}
}

func TestCanAccessRecord_MultiParentClosure(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	salesHead := seedRole(t, s, "sales-head", []grant.Grant{
		{Page: "leads", Actions: []string{"junior"}},
	})
	opsHead := seedRole(t, s, "ops-head", []grant.Grant{
		{Page: "leads", Actions: []string{"junior"}},
	})
	// The coordinator reports to both heads.
	coordinator := seedRole(t, s, "coordinator", []grant.Grant{
		{Page: "leads", Actions: []string{"own"}},
	}, salesHead.ID, opsHead.ID)

	for _, head := range []*role.Role{salesHead, opsHead} {
		result, err := eng.CanAccessRecord(ctx, Principal{RoleID: head.ID.String()}, "leads", Record{OwnerRoleID: coordinator.ID.String()})
		if err != nil {
			t.Fatal(err)
		}
		if !result.Allowed {
			t.Fatalf("%s should see its shared report's record", head.Name)
		}
	}
}

func TestCanAccessRecord_CyclicGraphTerminates(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	// Build a cycle behind the engine's back; resolution must still
	// terminate and answer.
	a := seedRole(t, s, "a", []grant.Grant{{Page: "leads", Actions: []string{"junior"}}})
	b := seedRole(t, s, "b", nil, a.ID)
	a.ReportingIDs = []id.RoleID{b.ID}
	if err := s.UpdateRole(ctx, a); err != nil {
		t.Fatal(err)
	}

	result, err := eng.CanAccessRecord(ctx, Principal{RoleID: a.ID.String()}, "leads", Record{OwnerRoleID: b.ID.String()})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatal("b is still a's subordinate despite the corrupt back-edge")
	}
}

func TestSaveRole_RejectsSelfAndCycles(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	top := &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "top", Slug: "top"}
	if err := eng.SaveRole(ctx, top); err != nil {
		t.Fatal(err)
	}
	mid := &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "mid", Slug: "mid", ReportingIDs: []id.RoleID{top.ID}}
	if err := eng.SaveRole(ctx, mid); err != nil {
		t.Fatal(err)
	}

	self := &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "self", Slug: "self"}
	self.ReportingIDs = []id.RoleID{self.ID}
	if err := eng.SaveRole(ctx, self); !errors.Is(err, ErrSelfReporting) {
		t.Fatalf("expected ErrSelfReporting, got %v", err)
	}

	// Closing the loop top -> mid must be rejected and leave top unchanged.
	top.ReportingIDs = []id.RoleID{mid.ID}
	if err := eng.SaveRole(ctx, top); !errors.Is(err, ErrCyclicReporting) {
		t.Fatalf("expected ErrCyclicReporting, got %v", err)
	}
	got, err := eng.GetRole(ctx, top.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.ReportingIDs) != 0 {
		t.Fatal("rejected save must leave the stored graph unchanged")
	}
}

func TestSaveRole_PartialConfigStillRejectsCycles(t *testing.T) {
	ctx := context.Background()
	// A config that only turns on auditing leaves MaxGraphDepth at its
	// zero value; cycle validation must still walk the graph.
	eng, _ := newTestEngine(t, WithConfig(Config{AuditDecisions: true}))

	top := &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "top", Slug: "top"}
	if err := eng.SaveRole(ctx, top); err != nil {
		t.Fatal(err)
	}
	mid := &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "mid", Slug: "mid", ReportingIDs: []id.RoleID{top.ID}}
	if err := eng.SaveRole(ctx, mid); err != nil {
		t.Fatal(err)
	}

	top.ReportingIDs = []id.RoleID{mid.ID}
	if err := eng.SaveRole(ctx, top); !errors.Is(err, ErrCyclicReporting) {
		t.Fatalf("expected ErrCyclicReporting with partial config, got %v", err)
	}
	got, err := eng.GetRole(ctx, top.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.ReportingIDs) != 0 {
		t.Fatal("two-hop cycle must not be persisted under a partial config")
	}
}

func TestSaveRole_NormalizesGrants(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	r := &role.Role{
		ID:       id.NewRoleID(),
		TenantID: "t1",
		Name:     "agent",
		Slug:     "agent",
		Grants: []grant.Grant{
			{Page: " Leads ", Actions: []string{"Show", "show", "", "OWN"}},
			{Page: "reports", Actions: nil},
		},
	}
	if err := eng.SaveRole(ctx, r); err != nil {
		t.Fatal(err)
	}

	got, err := eng.GetRole(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	g, ok := got.GrantFor("leads")
	if !ok {
		t.Fatal("expected normalized leads grant")
	}
	if len(g.Actions) != 2 {
		t.Fatalf("expected deduped lowercase actions, got %v", g.Actions)
	}
	if _, ok := got.GrantFor("reports"); ok {
		t.Fatal("empty grant should have been dropped")
	}
}

func TestSaveRole_CollapsesFullSelection(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	r := &role.Role{
		ID:       id.NewRoleID(),
		TenantID: "t1",
		Name:     "admin",
		Slug:     "admin",
		Grants: []grant.Grant{
			{Page: "settings", Actions: []string{"show", "all"}},
		},
	}
	if err := eng.SaveRole(ctx, r); err != nil {
		t.Fatal(err)
	}

	got, err := eng.GetRole(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	g, ok := got.GrantFor("settings")
	if !ok {
		t.Fatal("expected settings grant")
	}
	if len(g.Actions) != 1 || g.Actions[0] != grant.Wildcard {
		t.Fatalf("full selection should collapse to wildcard, got %v", g.Actions)
	}

	// The wildcard covers actions the settings page never cataloged.
	result, err := eng.Can(ctx, Principal{RoleID: r.ID.String()}, "settings", "export")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatal("wildcard grant should allow uncataloged actions")
	}
}

func TestSaveRole_SystemRoleImmutable(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	sys := &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "owner", Slug: "owner", IsSystem: true}
	if err := s.CreateRole(ctx, sys); err != nil {
		t.Fatal(err)
	}

	sys.Name = "renamed"
	if err := eng.SaveRole(ctx, sys); !errors.Is(err, ErrSystemRoleImmutable) {
		t.Fatalf("expected ErrSystemRoleImmutable, got %v", err)
	}
	if err := eng.DeleteRole(ctx, sys.ID); !errors.Is(err, ErrSystemRoleImmutable) {
		t.Fatalf("expected ErrSystemRoleImmutable on delete, got %v", err)
	}
}

func TestDeleteRole_BlockedWhileReported(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	manager := seedRole(t, s, "manager", nil)
	agent := seedRole(t, s, "agent", nil, manager.ID)

	if err := eng.DeleteRole(ctx, manager.ID); !errors.Is(err, ErrRoleHasReports) {
		t.Fatalf("expected ErrRoleHasReports, got %v", err)
	}

	// Repoint the report, then deletion goes through.
	agent.ReportingIDs = nil
	if err := eng.SaveRole(ctx, agent); err != nil {
		t.Fatal(err)
	}
	if err := eng.DeleteRole(ctx, manager.ID); err != nil {
		t.Fatal(err)
	}
}

func TestSubordinatesOf(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	head := seedRole(t, s, "head", nil)
	lead := seedRole(t, s, "lead", nil, head.ID)
	seedRole(t, s, "agent", nil, lead.ID)
	seedRole(t, s, "bystander", nil)

	subs, err := eng.SubordinatesOf(ctx, head.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 3 {
		t.Fatalf("expected head, lead, agent in closure, got %d roles", len(subs))
	}
	found := map[string]bool{}
	for _, r := range subs {
		found[r.Slug] = true
	}
	for _, slug := range []string{"head", "lead", "agent"} {
		if !found[slug] {
			t.Fatalf("closure missing %s", slug)
		}
	}
}

func TestDepartmentLifecycle(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	sales := &department.Department{ID: id.NewDepartmentID(), TenantID: "t1", Name: "Sales"}
	if err := eng.SaveDepartment(ctx, sales); err != nil {
		t.Fatal(err)
	}
	pid := sales.ID
	inside := &department.Department{ID: id.NewDepartmentID(), TenantID: "t1", Name: "Inside Sales", ParentID: &pid}
	if err := eng.SaveDepartment(ctx, inside); err != nil {
		t.Fatal(err)
	}

	// Reparenting Sales under its own child closes a loop.
	cid := inside.ID
	sales.ParentID = &cid
	if err := eng.SaveDepartment(ctx, sales); !errors.Is(err, ErrDepartmentCycle) {
		t.Fatalf("expected ErrDepartmentCycle, got %v", err)
	}
	sales.ParentID = nil

	// Deletion is blocked bottom-up.
	if err := eng.DeleteDepartment(ctx, sales.ID); !errors.Is(err, ErrDepartmentHasChildren) {
		t.Fatalf("expected ErrDepartmentHasChildren, got %v", err)
	}

	did := inside.ID
	agent := &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "agent", Slug: "agent", DepartmentID: &did}
	if err := eng.SaveRole(ctx, agent); err != nil {
		t.Fatal(err)
	}
	if err := eng.DeleteDepartment(ctx, inside.ID); !errors.Is(err, ErrDepartmentInUse) {
		t.Fatalf("expected ErrDepartmentInUse, got %v", err)
	}

	if err := eng.DeleteRole(ctx, agent.ID); err != nil {
		t.Fatal(err)
	}
	if err := eng.DeleteDepartment(ctx, inside.ID); err != nil {
		t.Fatal(err)
	}
	if err := eng.DeleteDepartment(ctx, sales.ID); err != nil {
		t.Fatal(err)
	}
}

func TestDepartmentTree(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	sales := &department.Department{ID: id.NewDepartmentID(), TenantID: "t1", Name: "Sales"}
	ops := &department.Department{ID: id.NewDepartmentID(), TenantID: "t1", Name: "Ops"}
	for _, d := range []*department.Department{sales, ops} {
		if err := eng.SaveDepartment(ctx, d); err != nil {
			t.Fatal(err)
		}
	}
	pid := sales.ID
	inside := &department.Department{ID: id.NewDepartmentID(), TenantID: "t1", Name: "Inside Sales", ParentID: &pid}
	if err := eng.SaveDepartment(ctx, inside); err != nil {
		t.Fatal(err)
	}

	tree, err := eng.DepartmentTree(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 3 {
		t.Fatalf("expected 3 departments, got %d", tree.Len())
	}
	if len(tree.Roots()) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree.Roots()))
	}
	if len(tree.ChildrenOf(sales.ID)) != 1 {
		t.Fatal("expected Inside Sales under Sales")
	}
}

func TestAuditDecisions(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, s := newTestEngine(t, WithConfig(Config{MaxGraphDepth: 10, AuditDecisions: true}))

	agent := seedRole(t, s, "agent", []grant.Grant{
		{Page: "leads", Actions: []string{"show"}},
	})

	if _, err := eng.Can(ctx, Principal{RoleID: agent.ID.String(), UserID: "u1"}, "leads", "show"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Can(ctx, Principal{RoleID: agent.ID.String(), UserID: "u1"}, "leads", "assign"); err != nil {
		t.Fatal(err)
	}

	logs, err := eng.ListCheckLogs(ctx, &checklog.QueryFilter{TenantID: "t1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(logs))
	}
	denied, _ := eng.ListCheckLogs(ctx, &checklog.QueryFilter{TenantID: "t1", Decision: string(DecisionDenyAction)})
	if len(denied) != 1 {
		t.Fatalf("expected 1 denied entry, got %d", len(denied))
	}
}

func TestEnforce(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	agent := seedRole(t, s, "agent", []grant.Grant{
		{Page: "leads", Actions: []string{"show"}},
	})

	if err := eng.Enforce(ctx, Principal{RoleID: agent.ID.String()}, "leads", "show"); err != nil {
		t.Fatal(err)
	}
	err := eng.Enforce(ctx, Principal{RoleID: agent.ID.String()}, "leads", "assign")
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}
