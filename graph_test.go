package steward

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/store/memory"
)

func chainOfRoles(t *testing.T, s *memory.Store, n int) []*role.Role {
	t.Helper()
	ctx := context.Background()
	roles := make([]*role.Role, n)
	for i := 0; i < n; i++ {
		r := &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "level", Slug: "level"}
		if i > 0 {
			r.ReportingIDs = []id.RoleID{roles[i-1].ID}
		}
		if err := s.CreateRole(ctx, r); err != nil {
			t.Fatal(err)
		}
		roles[i] = r
	}
	return roles
}

func TestSubordinateResolver_Closure(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	roles := chainOfRoles(t, s, 4)

	resolver := DefaultSubordinateResolver(10)
	subs, err := resolver.Subordinates(ctx, s, roles[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 4 {
		t.Fatalf("expected full chain of 4, got %d", len(subs))
	}
	if !subs.Contains(roles[0].ID.String()) {
		t.Fatal("closure must contain the starting role")
	}

	// The bottom of the chain has only itself.
	subs, err = resolver.Subordinates(ctx, s, roles[3].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected leaf closure of 1, got %d", len(subs))
	}
}

func TestSubordinateResolver_DepthLimit(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	roles := chainOfRoles(t, s, 6)

	resolver := DefaultSubordinateResolver(2)
	subs, err := resolver.Subordinates(ctx, s, roles[0].ID)
	if !errors.Is(err, ErrGraphDepthExceeded) {
		t.Fatalf("expected ErrGraphDepthExceeded, got %v", err)
	}
	// The partial closure up to the limit is still returned.
	if len(subs) != 3 {
		t.Fatalf("expected partial closure of 3, got %d", len(subs))
	}
}

func TestValidateReporting_DeepCycle(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	roles := chainOfRoles(t, s, 4)

	// roles[0] is the top; proposing roles[0] -> roles[3] closes the loop.
	err := validateReporting(ctx, s, roles[0].ID, []id.RoleID{roles[3].ID}, 10)
	if !errors.Is(err, ErrCyclicReporting) {
		t.Fatalf("expected ErrCyclicReporting, got %v", err)
	}

	// A sibling edge is fine.
	other := &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "other", Slug: "other"}
	if err := s.CreateRole(ctx, other); err != nil {
		t.Fatal(err)
	}
	if err := validateReporting(ctx, s, roles[3].ID, []id.RoleID{other.ID}, 10); err != nil {
		t.Fatal(err)
	}
}
