package plugin

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/xraph/steward/department"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/role"
)

// testPlugin implements Plugin + RoleCreated + DepartmentDeleted + AfterCheck.
type testPlugin struct {
	roleCreatedCalled bool
	deptDeletedCalled bool
	afterCheckCalled  bool
}

func (t *testPlugin) Name() string { return "test-plugin" }

func (t *testPlugin) OnRoleCreated(_ context.Context, _ *role.Role) error {
	t.roleCreatedCalled = true
	return nil
}

func (t *testPlugin) OnDepartmentDeleted(_ context.Context, _ id.DepartmentID) error {
	t.deptDeletedCalled = true
	return nil
}

func (t *testPlugin) OnAfterCheck(_ context.Context, _, _ any) error {
	t.afterCheckCalled = true
	return nil
}

// minimalPlugin only implements Plugin (no hooks).
type minimalPlugin struct{}

func (m *minimalPlugin) Name() string { return "minimal" }

// failingPlugin returns an error from every hook it implements.
type failingPlugin struct{}

func (f *failingPlugin) Name() string { return "failing" }

func (f *failingPlugin) OnRoleCreated(_ context.Context, _ *role.Role) error {
	return errors.New("hook failed")
}

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	tp := &testPlugin{}
	reg.Register(tp)
	reg.Register(&minimalPlugin{})

	if len(reg.Plugins()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(reg.Plugins()))
	}

	// Should dispatch RoleCreated to testPlugin only.
	reg.EmitRoleCreated(ctx, &role.Role{ID: id.NewRoleID(), Name: "manager"})
	if !tp.roleCreatedCalled {
		t.Fatal("OnRoleCreated was not called")
	}

	// Should dispatch DepartmentDeleted.
	reg.EmitDepartmentDeleted(ctx, id.NewDepartmentID())
	if !tp.deptDeletedCalled {
		t.Fatal("OnDepartmentDeleted was not called")
	}

	// Should dispatch AfterCheck.
	reg.EmitAfterCheck(ctx, nil, nil)
	if !tp.afterCheckCalled {
		t.Fatal("OnAfterCheck was not called")
	}

	// Should not panic on hooks with no listeners.
	reg.EmitBeforeCheck(ctx, nil)
	reg.EmitRoleDeleted(ctx, id.NewRoleID())
	reg.EmitDepartmentCreated(ctx, &department.Department{ID: id.NewDepartmentID()})
	reg.EmitShutdown(ctx)
}

func TestRegistryHookErrorsDoNotPropagate(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	reg.Register(&failingPlugin{})
	tp := &testPlugin{}
	reg.Register(tp)

	// The failing hook runs first; the next plugin must still be called.
	reg.EmitRoleCreated(ctx, &role.Role{ID: id.NewRoleID(), Name: "agent"})
	if !tp.roleCreatedCalled {
		t.Fatal("hook error from one plugin blocked dispatch to the next")
	}
}
