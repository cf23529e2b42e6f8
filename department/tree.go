package department

import (
	"encoding/json"

	"github.com/xraph/steward/id"
)

// Tree is an immutable index over a department snapshot. All lookups are
// total: an unknown id yields an empty result, never an error. Build one
// from a ListDepartments snapshot and share it freely across goroutines.
type Tree struct {
	byID     map[string]*Department
	children map[string][]*Department
	roots    []*Department
}

// NewTree indexes a department snapshot. Departments whose ParentID does
// not resolve within the snapshot are treated as roots, so a partially
// loaded snapshot still yields a usable tree.
func NewTree(departments []*Department) *Tree {
	t := &Tree{
		byID:     make(map[string]*Department, len(departments)),
		children: make(map[string][]*Department),
	}
	for _, d := range departments {
		t.byID[d.ID.String()] = d
	}
	for _, d := range departments {
		if d.IsRoot() {
			t.roots = append(t.roots, d)
			continue
		}
		pk := d.ParentID.String()
		if _, ok := t.byID[pk]; !ok {
			t.roots = append(t.roots, d)
			continue
		}
		t.children[pk] = append(t.children[pk], d)
	}
	return t
}

// Roots returns the departments without a parent.
func (t *Tree) Roots() []*Department {
	out := make([]*Department, len(t.roots))
	copy(out, t.roots)
	return out
}

// ChildrenOf returns the direct children of a department.
func (t *Tree) ChildrenOf(deptID id.DepartmentID) []*Department {
	kids := t.children[deptID.String()]
	out := make([]*Department, len(kids))
	copy(out, kids)
	return out
}

// HasChildren reports whether the department has at least one child.
func (t *Tree) HasChildren(deptID id.DepartmentID) bool {
	return len(t.children[deptID.String()]) > 0
}

// ByID returns the department with the given id, or nil.
func (t *Tree) ByID(deptID id.DepartmentID) *Department {
	return t.byID[deptID.String()]
}

// Len returns the number of departments in the snapshot.
func (t *Tree) Len() int { return len(t.byID) }

// Node is one department with its resolved children, the shape the tree
// serializes as.
type Node struct {
	*Department
	Children []*Node `json:"children,omitempty"`
}

// Nodes returns the nested hierarchy starting at the roots.
func (t *Tree) Nodes() []*Node {
	visited := make(map[string]struct{}, len(t.byID))
	nodes := make([]*Node, 0, len(t.roots))
	for _, d := range t.roots {
		if n := t.node(d, visited); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// node builds the subtree for one department. The visited set keeps a
// corrupt self-parenting row from recursing forever.
func (t *Tree) node(d *Department, visited map[string]struct{}) *Node {
	key := d.ID.String()
	if _, seen := visited[key]; seen {
		return nil
	}
	visited[key] = struct{}{}
	n := &Node{Department: d}
	for _, child := range t.children[key] {
		if c := t.node(child, visited); c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// MarshalJSON emits the nested hierarchy. The index maps are an
// implementation detail and do not round-trip.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Nodes())
}
