package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xraph/steward/id"
)

// startPostgres brings up a disposable postgres and returns a pgx
// connection with the steward schema applied.
func startPostgres(t *testing.T) *pgx.Conn {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("steward"),
		tcpostgres.WithUsername("steward"),
		tcpostgres.WithPassword("steward"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() {
		_ = ctr.Terminate(context.Background())
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close(context.Background())
	})

	for _, ddl := range []string{ddlDepartments, ddlRoles, ddlCheckLogs} {
		if _, err := conn.Exec(ctx, ddl); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

func TestSchemaRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn := startPostgres(t)

	deptID := id.NewDepartmentID().String()
	_, err := conn.Exec(ctx,
		`INSERT INTO steward_departments (id, tenant_id, name) VALUES ($1, $2, $3)`,
		deptID, "t1", "Sales")
	if err != nil {
		t.Fatalf("insert department: %v", err)
	}

	roleID := id.NewRoleID().String()
	_, err = conn.Exec(ctx,
		`INSERT INTO steward_roles (id, tenant_id, name, slug, department_id, permissions)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		roleID, "t1", "Manager", "manager", deptID,
		`[{"page":"leads","actions":["show","all"]}]`)
	if err != nil {
		t.Fatalf("insert role: %v", err)
	}

	var page string
	err = conn.QueryRow(ctx,
		`SELECT permissions->0->>'page' FROM steward_roles WHERE id = $1`, roleID).
		Scan(&page)
	if err != nil {
		t.Fatalf("select role grant: %v", err)
	}
	if page != "leads" {
		t.Fatalf("expected leads, got %s", page)
	}

	// Duplicate slug within the tenant must violate the unique constraint.
	_, err = conn.Exec(ctx,
		`INSERT INTO steward_roles (id, tenant_id, name, slug) VALUES ($1, $2, $3, $4)`,
		id.NewRoleID().String(), "t1", "Manager Clone", "manager")
	if err == nil {
		t.Fatal("expected unique violation on (tenant_id, slug)")
	}
}

func TestReportingContainmentQuery(t *testing.T) {
	ctx := context.Background()
	conn := startPostgres(t)

	manager := id.NewRoleID().String()
	agentA := id.NewRoleID().String()
	agentB := id.NewRoleID().String()

	rows := []struct {
		id, slug, reporting string
	}{
		{manager, "manager", `[]`},
		{agentA, "agent-a", `["` + manager + `"]`},
		{agentB, "agent-b", `["` + manager + `", "` + agentA + `"]`},
	}
	for _, r := range rows {
		_, err := conn.Exec(ctx,
			`INSERT INTO steward_roles (id, tenant_id, name, slug, reporting_ids)
			 VALUES ($1, $2, $3, $4, $5)`,
			r.id, "t1", r.slug, r.slug, r.reporting)
		if err != nil {
			t.Fatalf("insert %s: %v", r.slug, err)
		}
	}

	// The same containment expression ListDirectReports issues.
	rowsToManager, err := conn.Query(ctx,
		`SELECT id FROM steward_roles WHERE reporting_ids @> $1`,
		`["`+manager+`"]`)
	if err != nil {
		t.Fatalf("containment query: %v", err)
	}
	defer rowsToManager.Close()

	var got []string
	for rowsToManager.Next() {
		var rid string
		if err := rowsToManager.Scan(&rid); err != nil {
			t.Fatal(err)
		}
		got = append(got, rid)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 direct reports of manager, got %d", len(got))
	}
}

func TestCheckLogInsertAndPurge(t *testing.T) {
	ctx := context.Background()
	conn := startPostgres(t)

	old := id.NewCheckLogID().String()
	recent := id.NewCheckLogID().String()
	_, err := conn.Exec(ctx,
		`INSERT INTO steward_check_logs (id, tenant_id, role_id, page, decision, created_at)
		 VALUES ($1, 't1', 'role_x', 'leads', 'allow', now() - interval '2 days'),
		        ($2, 't1', 'role_x', 'leads', 'deny_action', now())`,
		old, recent)
	if err != nil {
		t.Fatalf("insert check logs: %v", err)
	}

	tag, err := conn.Exec(ctx,
		`DELETE FROM steward_check_logs WHERE created_at < now() - interval '1 day'`)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if tag.RowsAffected() != 1 {
		t.Fatalf("expected 1 purged row, got %d", tag.RowsAffected())
	}
}
