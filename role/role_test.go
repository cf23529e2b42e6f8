package role

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/xraph/steward/grant"
	"github.com/xraph/steward/id"
)

func TestUnmarshalLegacyReportingID(t *testing.T) {
	supervisor := id.NewRoleID()
	doc := fmt.Sprintf(`{"id":%q,"tenant_id":"t1","name":"Agent","slug":"agent","reporting_id":%q}`,
		id.NewRoleID(), supervisor)

	var r Role
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		t.Fatal(err)
	}
	if len(r.ReportingIDs) != 1 || r.ReportingIDs[0].String() != supervisor.String() {
		t.Fatalf("expected legacy reporting_id folded into set, got %v", r.ReportingIDs)
	}
}

func TestUnmarshalLegacyAndModernMerged(t *testing.T) {
	a := id.NewRoleID()
	b := id.NewRoleID()
	doc := fmt.Sprintf(`{"id":%q,"reporting_id":%q,"reporting_ids":[%q,%q]}`,
		id.NewRoleID(), a, a, b)

	var r Role
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		t.Fatal(err)
	}
	if len(r.ReportingIDs) != 2 {
		t.Fatalf("expected deduplicated merge of legacy + modern ids, got %v", r.ReportingIDs)
	}
}

func TestUnmarshalBlankLegacyDropped(t *testing.T) {
	doc := fmt.Sprintf(`{"id":%q,"reporting_id":""}`, id.NewRoleID())
	var r Role
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		t.Fatal(err)
	}
	if len(r.ReportingIDs) != 0 {
		t.Fatalf("blank legacy id must be dropped, got %v", r.ReportingIDs)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	sup := id.NewRoleID()
	r := Role{
		ID:           id.NewRoleID(),
		Name:         "Agent",
		ReportingIDs: []id.RoleID{sup, sup, id.Nil},
		Grants: []grant.Grant{
			{Page: "Leads", Actions: []string{"ASSIGN", "Show"}},
		},
	}
	r.Normalize()

	if len(r.ReportingIDs) != 1 {
		t.Fatalf("expected deduplicated reporting ids, got %v", r.ReportingIDs)
	}
	if r.Grants[0].Page != "leads" || !reflect.DeepEqual(r.Grants[0].Actions, []string{"assign", "show"}) {
		t.Fatalf("expected normalized grant, got %+v", r.Grants[0])
	}

	snapshot := Role{ReportingIDs: append([]id.RoleID{}, r.ReportingIDs...), Grants: append([]grant.Grant{}, r.Grants...)}
	r.Normalize()
	if !reflect.DeepEqual(snapshot.ReportingIDs, r.ReportingIDs) || !reflect.DeepEqual(snapshot.Grants, r.Grants) {
		t.Error("normalizing a normalized role changed it")
	}
}

func TestReportsTo(t *testing.T) {
	sup := id.NewRoleID()
	r := Role{ReportingIDs: []id.RoleID{sup}}
	if !r.ReportsTo(sup) {
		t.Error("expected direct supervisor match")
	}
	if r.ReportsTo(id.NewRoleID()) {
		t.Error("expected miss for unrelated role")
	}
}

func TestGrantFor(t *testing.T) {
	r := Role{Grants: []grant.Grant{grant.New("leads", []string{"own"})}}
	if _, ok := r.GrantFor("Leads"); !ok {
		t.Error("expected case-insensitive grant lookup")
	}
	if _, ok := r.GrantFor("settings"); ok {
		t.Error("expected miss for absent page")
	}
}
