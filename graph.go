package steward

import (
	"context"
	"fmt"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/role"
)

// SubordinateResolver computes the subordinate set of a role: every role
// that transitively reports to it, plus the role itself.
type SubordinateResolver interface {
	Subordinates(ctx context.Context, roleStore role.Store, roleID id.RoleID) (SubordinateSet, error)
}

// SubordinateSet is a set of role ids keyed by their string form.
type SubordinateSet map[string]id.RoleID

// Contains reports whether the set holds the given role id string.
func (s SubordinateSet) Contains(roleID string) bool {
	_, ok := s[roleID]
	return ok
}

// IDs returns the members of the set.
func (s SubordinateSet) IDs() []id.RoleID {
	out := make([]id.RoleID, 0, len(s))
	for _, rid := range s {
		out = append(out, rid)
	}
	return out
}

// DefaultSubordinateResolver returns a BFS resolver with the given max
// depth.
func DefaultSubordinateResolver(maxDepth int) SubordinateResolver {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	return &bfsSubordinateResolver{maxDepth: maxDepth}
}

type bfsSubordinateResolver struct {
	maxDepth int
}

type subordinateNode struct {
	roleID id.RoleID
	depth  int
}

// Subordinates walks the inverted reporting edges breadth-first. The
// visited set guarantees termination even when upstream data contains an
// accidental cycle. A cycle is an invariant violation, but it must not
// hang the resolver. If the walk hits the depth limit the set collected so
// far is returned together with ErrGraphDepthExceeded.
func (r *bfsSubordinateResolver) Subordinates(ctx context.Context, roleStore role.Store, roleID id.RoleID) (SubordinateSet, error) {
	// The principal's own role is always a member: `junior` scope covers
	// self-records even when the `own` token is absent.
	result := SubordinateSet{roleID.String(): roleID}

	queue := []subordinateNode{{roleID: roleID, depth: 0}}
	var depthExceeded bool

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if node.depth >= r.maxDepth {
			depthExceeded = true
			continue
		}

		reports, err := roleStore.ListDirectReports(ctx, node.roleID)
		if err != nil {
			return nil, fmt.Errorf("steward: list direct reports of %s: %w", node.roleID, err)
		}
		for _, rep := range reports {
			key := rep.ID.String()
			if result.Contains(key) {
				continue
			}
			result[key] = rep.ID
			queue = append(queue, subordinateNode{roleID: rep.ID, depth: node.depth + 1})
		}
	}

	if depthExceeded {
		return result, ErrGraphDepthExceeded
	}
	return result, nil
}

// validateReporting rejects a reporting set that references the role
// itself or would create a cycle. A cycle exists when the role is already
// reachable by walking upward (towards supervisors) from any proposed
// supervisor. The walk carries a visited set so that pre-existing bad data
// cannot hang validation.
func validateReporting(ctx context.Context, roleStore role.Store, roleID id.RoleID, reportingIDs []id.RoleID, maxDepth int) error {
	target := roleID.String()
	for _, sup := range reportingIDs {
		if sup.String() == target {
			return ErrSelfReporting
		}
	}

	visited := make(map[string]struct{})
	queue := make([]subordinateNode, 0, len(reportingIDs))
	for _, sup := range reportingIDs {
		queue = append(queue, subordinateNode{roleID: sup, depth: 0})
	}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		key := node.roleID.String()
		if key == target {
			return ErrCyclicReporting
		}
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}
		if node.depth >= maxDepth {
			continue
		}

		r, err := roleStore.GetRole(ctx, node.roleID)
		if err != nil {
			// A proposed supervisor that does not exist cannot complete
			// a cycle; role existence is checked elsewhere.
			continue
		}
		for _, up := range r.ReportingIDs {
			queue = append(queue, subordinateNode{roleID: up, depth: node.depth + 1})
		}
	}
	return nil
}
