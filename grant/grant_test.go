package grant

import (
	"reflect"
	"testing"
)

func TestNewNormalizes(t *testing.T) {
	g := New("Leads", []string{"ASSIGN", "Show"})
	if g.Page != "leads" {
		t.Errorf("expected page %q, got %q", "leads", g.Page)
	}
	want := []string{"assign", "show"}
	if !reflect.DeepEqual(g.Actions, want) {
		t.Errorf("expected actions %v, got %v", want, g.Actions)
	}
}

func TestNewDropsBlanksAndDuplicates(t *testing.T) {
	g := New("leads", []string{"show", "", "  ", "Show", "own", "show"})
	want := []string{"show", "own"}
	if !reflect.DeepEqual(g.Actions, want) {
		t.Errorf("expected actions %v, got %v", want, g.Actions)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	g := New("Attendance", []string{"Attendance_Admin", "SHOW"})
	again := g.Normalize()
	if !reflect.DeepEqual(g, again) {
		t.Errorf("re-normalizing a normalized grant changed it: %+v != %+v", g, again)
	}
}

func TestHasWildcardDominates(t *testing.T) {
	g := New("leads", []string{Wildcard})
	for _, action := range []string{"show", "own", "junior", "all", "assign", "some_future_action"} {
		if !g.Has(action) {
			t.Errorf("wildcard grant should cover %q", action)
		}
	}
}

func TestHasMembership(t *testing.T) {
	g := New("leads", []string{"show", "own"})
	if !g.Has("SHOW") {
		t.Error("expected case-insensitive membership for show")
	}
	if g.Has("all") {
		t.Error("expected all to be absent")
	}
	if g.Has("") {
		t.Error("blank action must never match")
	}
}

func TestCollapseFullSelection(t *testing.T) {
	vocab := []string{"show", "own", "junior", "all", "assign"}
	g := New("leads", []string{"assign", "all", "junior", "own", "show"})
	collapsed := g.Collapse(vocab)
	if !reflect.DeepEqual(collapsed.Actions, []string{Wildcard}) {
		t.Errorf("expected collapse to wildcard, got %v", collapsed.Actions)
	}
}

func TestCollapsePartialSelectionUnchanged(t *testing.T) {
	vocab := []string{"show", "own", "junior", "all"}
	g := New("leads", []string{"show", "own"})
	collapsed := g.Collapse(vocab)
	if !reflect.DeepEqual(collapsed, g) {
		t.Errorf("partial selection must not collapse: %+v", collapsed)
	}
}

func TestCollapseUnknownVocabularyUnchanged(t *testing.T) {
	g := New("mystery", []string{"show"})
	if collapsed := g.Collapse(nil); !reflect.DeepEqual(collapsed, g) {
		t.Errorf("empty vocabulary must not collapse: %+v", collapsed)
	}
}

func TestNormalizeAllMergesPages(t *testing.T) {
	grants := []Grant{
		{Page: "Leads", Actions: []string{"Show"}},
		{Page: "leads", Actions: []string{"own", "show"}},
		{Page: "  ", Actions: []string{"show"}},
		{Page: "settings", Actions: nil},
	}
	got := NormalizeAll(grants)
	if len(got) != 1 {
		t.Fatalf("expected one merged grant, got %d: %+v", len(got), got)
	}
	want := []string{"show", "own"}
	if got[0].Page != "leads" || !reflect.DeepEqual(got[0].Actions, want) {
		t.Errorf("expected leads/%v, got %+v", want, got[0])
	}
}

func TestFind(t *testing.T) {
	grants := []Grant{New("leads", []string{"show"}), New("settings", []string{"all"})}
	g, ok := Find(grants, "Settings")
	if !ok || g.Page != "settings" {
		t.Fatalf("expected settings grant, got %+v ok=%v", g, ok)
	}
	if _, ok := Find(grants, "attendance"); ok {
		t.Error("expected miss for absent page")
	}
}
