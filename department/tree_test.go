package department

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/xraph/steward/id"
)

func buildFixture() (*Tree, []*Department) {
	sales := &Department{ID: id.NewDepartmentID(), TenantID: "t1", Name: "Sales"}
	ops := &Department{ID: id.NewDepartmentID(), TenantID: "t1", Name: "Operations"}
	inside := &Department{ID: id.NewDepartmentID(), TenantID: "t1", Name: "Inside Sales", ParentID: &sales.ID}
	field := &Department{ID: id.NewDepartmentID(), TenantID: "t1", Name: "Field Sales", ParentID: &sales.ID}
	all := []*Department{sales, ops, inside, field}
	return NewTree(all), all
}

func TestTreeRoots(t *testing.T) {
	tree, all := buildFixture()
	roots := tree.Roots()
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	for _, r := range roots {
		if r.ID.String() != all[0].ID.String() && r.ID.String() != all[1].ID.String() {
			t.Errorf("unexpected root %q", r.Name)
		}
	}
}

func TestTreeChildren(t *testing.T) {
	tree, all := buildFixture()
	sales := all[0]
	kids := tree.ChildrenOf(sales.ID)
	if len(kids) != 2 {
		t.Fatalf("expected 2 children of Sales, got %d", len(kids))
	}
	if !tree.HasChildren(sales.ID) {
		t.Error("HasChildren(Sales) = false")
	}
	if tree.HasChildren(all[1].ID) {
		t.Error("HasChildren(Operations) = true for leaf")
	}
}

func TestTreeUnknownIDIsTotal(t *testing.T) {
	tree, _ := buildFixture()
	missing := id.NewDepartmentID()
	if got := tree.ChildrenOf(missing); len(got) != 0 {
		t.Errorf("expected empty children for unknown id, got %v", got)
	}
	if tree.HasChildren(missing) {
		t.Error("HasChildren must be false for unknown id")
	}
	if tree.ByID(missing) != nil {
		t.Error("ByID must be nil for unknown id")
	}
}

func TestTreeNodes(t *testing.T) {
	tree, _ := buildFixture()
	nodes := tree.Nodes()
	if len(nodes) != 2 {
		t.Fatalf("expected 2 root nodes, got %d", len(nodes))
	}
	for _, n := range nodes {
		if n.Name == "Sales" && len(n.Children) != 2 {
			t.Fatalf("Sales node should carry 2 children, got %d", len(n.Children))
		}
		if n.Name == "Operations" && len(n.Children) != 0 {
			t.Fatalf("Operations node should be a leaf, got %d children", len(n.Children))
		}
	}
}

func TestTreeMarshalJSONEmitsHierarchy(t *testing.T) {
	tree, all := buildFixture()
	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	if body == "{}" || body == "[]" {
		t.Fatalf("tree with %d departments marshaled to %q", len(all), body)
	}
	for _, d := range all {
		if !strings.Contains(body, d.Name) {
			t.Errorf("encoded tree is missing department %q: %s", d.Name, body)
		}
	}
	if !strings.Contains(body, `"children"`) {
		t.Errorf("encoded tree carries no nesting: %s", body)
	}
}

func TestTreeNodesSelfParentTerminates(t *testing.T) {
	d := &Department{ID: id.NewDepartmentID(), TenantID: "t1", Name: "Loop"}
	d.ParentID = &d.ID
	tree := NewTree([]*Department{d})
	if _, err := json.Marshal(tree); err != nil {
		t.Fatal(err)
	}
}

func TestTreeOrphanedParentBecomesRoot(t *testing.T) {
	ghost := id.NewDepartmentID()
	orphan := &Department{ID: id.NewDepartmentID(), TenantID: "t1", Name: "Orphan", ParentID: &ghost}
	tree := NewTree([]*Department{orphan})
	roots := tree.Roots()
	if len(roots) != 1 || roots[0].Name != "Orphan" {
		t.Fatalf("expected orphan promoted to root, got %v", roots)
	}
}
