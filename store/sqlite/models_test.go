package sqlite

import (
	"testing"

	"github.com/xraph/steward/grant"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/role"
)

func TestRoleModelConversion(t *testing.T) {
	sup := id.NewRoleID()
	deptID := id.NewDepartmentID()
	r := &role.Role{
		ID:           id.NewRoleID(),
		TenantID:     "t1",
		Name:         "Agent",
		Slug:         "agent",
		DepartmentID: &deptID,
		ReportingIDs: []id.RoleID{sup},
		Grants: []grant.Grant{
			{Page: "leads", Actions: []string{"show", "own"}},
		},
	}

	m, err := roleToModel(r)
	if err != nil {
		t.Fatal(err)
	}
	back, err := roleFromModel(m)
	if err != nil {
		t.Fatal(err)
	}

	if back.ID != r.ID || back.Slug != "agent" {
		t.Fatal("identity fields lost in conversion")
	}
	if back.DepartmentID == nil || *back.DepartmentID != deptID {
		t.Fatal("department id lost in conversion")
	}
	if len(back.ReportingIDs) != 1 || back.ReportingIDs[0] != sup {
		t.Fatal("reporting set lost in conversion")
	}
	g, ok := back.GrantFor("leads")
	if !ok || !g.Has("own") {
		t.Fatal("grants lost in conversion")
	}
}

func TestRoleModelDropsMalformedReportingIDs(t *testing.T) {
	r := &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "Agent", Slug: "agent"}
	m, err := roleToModel(r)
	if err != nil {
		t.Fatal(err)
	}
	// Rows written by older builds can carry junk entries.
	m.ReportingIDs = `["not-a-role-id", "", "` + id.NewRoleID().String() + `"]`

	back, err := roleFromModel(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.ReportingIDs) != 1 {
		t.Fatalf("expected only the valid id to survive, got %d", len(back.ReportingIDs))
	}
}
