package matrix

import (
	"testing"

	"github.com/xraph/steward/grant"
)

func TestActionsForKnownPage(t *testing.T) {
	actions := ActionsFor(PageLeads)
	if len(actions) == 0 {
		t.Fatal("expected non-empty vocabulary for leads")
	}
	for _, want := range []string{grant.ActionShow, grant.ActionOwn, grant.ActionJunior, grant.ActionAll, ActionAssign} {
		found := false
		for _, a := range actions {
			if a == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("leads vocabulary missing %q", want)
		}
	}
}

func TestActionsForUnknownPageFailsClosed(t *testing.T) {
	if actions := ActionsFor("billing"); len(actions) != 0 {
		t.Errorf("unknown page must have empty vocabulary, got %v", actions)
	}
}

func TestActionsForNormalizesPage(t *testing.T) {
	if len(ActionsFor("  Leads ")) == 0 {
		t.Error("page lookup must be case- and whitespace-insensitive")
	}
}

func TestActionsForReturnsCopy(t *testing.T) {
	first := ActionsFor(PageSettings)
	first[0] = "mutated"
	if ActionsFor(PageSettings)[0] == "mutated" {
		t.Error("ActionsFor must return a defensive copy")
	}
}

func TestIsValidAction(t *testing.T) {
	tests := []struct {
		page, action string
		want         bool
	}{
		{PageLeads, "show", true},
		{PageLeads, "ASSIGN", true},
		{PageLeads, grant.Wildcard, true},
		{PageLeads, "attendance_admin", false},
		{PageAttendance, ActionAttendanceAdmin, true},
		{PageSettings, "junior", false},
		{"billing", "show", false},
		{"billing", grant.Wildcard, false},
	}
	for _, tt := range tests {
		if got := IsValidAction(tt.page, tt.action); got != tt.want {
			t.Errorf("IsValidAction(%q, %q) = %v, want %v", tt.page, tt.action, got, tt.want)
		}
	}
}

func TestPagesOrderedAndComplete(t *testing.T) {
	pages := Pages()
	if len(pages) == 0 {
		t.Fatal("expected catalog pages")
	}
	for _, p := range pages {
		if !IsKnownPage(p) {
			t.Errorf("page order lists unknown page %q", p)
		}
	}
	if pages[0] != PageLeads {
		t.Errorf("expected leads first, got %q", pages[0])
	}
}
