package memory

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/steward/checklog"
	"github.com/xraph/steward/department"
	"github.com/xraph/steward/grant"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/store"
)

// Compile-time check that *Store implements store.Store.
var _ store.Store = (*Store)(nil)

func TestRoleCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	r := &role.Role{
		ID:       id.NewRoleID(),
		TenantID: "t1",
		AppID:    "app1",
		Name:     "Manager",
		Slug:     "manager",
		Grants:   []grant.Grant{{Page: "leads", Actions: []string{"show", "all"}}},
	}

	// Create
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}

	// Get
	got, err := s.GetRole(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Manager" {
		t.Fatalf("expected Manager, got %s", got.Name)
	}

	// GetBySlug
	got, err = s.GetRoleBySlug(ctx, "t1", "manager")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != r.ID {
		t.Fatal("slug lookup mismatch")
	}

	// Update
	r.Name = "Sales Manager"
	err = s.UpdateRole(ctx, r)
	if err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetRole(ctx, r.ID)
	if got.Name != "Sales Manager" {
		t.Fatal("update failed")
	}

	// List
	list, _ := s.ListRoles(ctx, &role.ListFilter{TenantID: "t1"})
	if len(list) != 1 {
		t.Fatalf("expected 1 role, got %d", len(list))
	}

	// Count
	count, _ := s.CountRoles(ctx, &role.ListFilter{TenantID: "t1"})
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	// Delete
	err = s.DeleteRole(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.GetRole(ctx, r.ID)
	if err == nil {
		t.Fatal("expected not found after delete")
	}
}

func TestRoleCopyIsolation(t *testing.T) {
	ctx := context.Background()
	s := New()

	sup := id.NewRoleID()
	r := &role.Role{
		ID:           id.NewRoleID(),
		TenantID:     "t1",
		Name:         "Agent",
		Slug:         "agent",
		ReportingIDs: []id.RoleID{sup},
		Grants:       []grant.Grant{{Page: "leads", Actions: []string{"show", "own"}}},
	}
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}

	// Mutating the caller's copy must not leak into storage.
	r.Grants[0].Actions[0] = "all"
	r.ReportingIDs[0] = id.NewRoleID()

	got, err := s.GetRole(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Grants[0].Actions[0] != "show" {
		t.Fatal("stored grant was mutated through the caller's slice")
	}
	if got.ReportingIDs[0] != sup {
		t.Fatal("stored reporting set was mutated through the caller's slice")
	}
}

func TestListDirectReports(t *testing.T) {
	ctx := context.Background()
	s := New()

	manager := id.NewRoleID()
	agentA := &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "Agent A", Slug: "agent-a", ReportingIDs: []id.RoleID{manager}}
	agentB := &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "Agent B", Slug: "agent-b", ReportingIDs: []id.RoleID{manager}}
	outsider := &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "Outsider", Slug: "outsider"}

	for _, r := range []*role.Role{agentA, agentB, outsider} {
		if err := s.CreateRole(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	reports, err := s.ListDirectReports(ctx, manager)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 direct reports, got %d", len(reports))
	}
}

func TestDepartmentCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	parent := &department.Department{
		ID:       id.NewDepartmentID(),
		TenantID: "t1",
		Name:     "Sales",
	}
	if err := s.CreateDepartment(ctx, parent); err != nil {
		t.Fatal(err)
	}

	childID := id.NewDepartmentID()
	pid := parent.ID
	child := &department.Department{
		ID:       childID,
		TenantID: "t1",
		Name:     "Inside Sales",
		ParentID: &pid,
	}
	if err := s.CreateDepartment(ctx, child); err != nil {
		t.Fatal(err)
	}

	roots, err := s.ListRootDepartments(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 || roots[0].ID != parent.ID {
		t.Fatalf("expected single root Sales, got %d roots", len(roots))
	}

	children, err := s.ListChildDepartments(ctx, parent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(children) != 1 || children[0].ID != childID {
		t.Fatalf("expected single child, got %d", len(children))
	}

	child.Name = "Inbound Sales"
	if err := s.UpdateDepartment(ctx, child); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetDepartment(ctx, childID)
	if got.Name != "Inbound Sales" {
		t.Fatal("update failed")
	}

	if err := s.DeleteDepartment(ctx, childID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetDepartment(ctx, childID); err == nil {
		t.Fatal("expected not found after delete")
	}
}

func TestRolesByDepartment(t *testing.T) {
	ctx := context.Background()
	s := New()

	deptID := id.NewDepartmentID()
	did := deptID
	r := &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "Agent", Slug: "agent", DepartmentID: &did}
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}

	roles, err := s.ListRolesByDepartment(ctx, deptID)
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 1 {
		t.Fatalf("expected 1 role in department, got %d", len(roles))
	}
}

func TestCheckLogQueryAndPurge(t *testing.T) {
	ctx := context.Background()
	s := New()

	old := &checklog.Entry{
		ID:        id.NewCheckLogID(),
		TenantID:  "t1",
		RoleID:    "role_a",
		Page:      "leads",
		Action:    "show",
		Decision:  "allow",
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	recent := &checklog.Entry{
		ID:        id.NewCheckLogID(),
		TenantID:  "t1",
		RoleID:    "role_a",
		Page:      "leads",
		Action:    "assign",
		Decision:  "deny_action",
		CreatedAt: time.Now(),
	}
	for _, e := range []*checklog.Entry{old, recent} {
		if err := s.CreateCheckLog(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	denied, err := s.ListCheckLogs(ctx, &checklog.QueryFilter{TenantID: "t1", Decision: "deny_action"})
	if err != nil {
		t.Fatal(err)
	}
	if len(denied) != 1 || denied[0].Action != "assign" {
		t.Fatalf("expected one denied entry for assign, got %d", len(denied))
	}

	n, err := s.PurgeCheckLogs(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 purged entry, got %d", n)
	}
	count, _ := s.CountCheckLogs(ctx, &checklog.QueryFilter{TenantID: "t1"})
	if count != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", count)
	}
}

func TestTenantWipe(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, tenant := range []string{"t1", "t2"} {
		r := &role.Role{ID: id.NewRoleID(), TenantID: tenant, Name: "Agent", Slug: "agent-" + tenant}
		if err := s.CreateRole(ctx, r); err != nil {
			t.Fatal(err)
		}
		d := &department.Department{ID: id.NewDepartmentID(), TenantID: tenant, Name: "Sales"}
		if err := s.CreateDepartment(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.DeleteRolesByTenant(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteDepartmentsByTenant(ctx, "t1"); err != nil {
		t.Fatal(err)
	}

	roles, _ := s.ListRoles(ctx, &role.ListFilter{TenantID: "t1"})
	if len(roles) != 0 {
		t.Fatalf("expected t1 roles wiped, got %d", len(roles))
	}
	roles, _ = s.ListRoles(ctx, &role.ListFilter{TenantID: "t2"})
	if len(roles) != 1 {
		t.Fatalf("expected t2 roles untouched, got %d", len(roles))
	}
}
