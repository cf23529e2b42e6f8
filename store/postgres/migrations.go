package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Steward store (PostgreSQL).
var Migrations = migrate.NewGroup("steward")

const ddlDepartments = `
CREATE TABLE IF NOT EXISTS steward_departments (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    app_id          TEXT NOT NULL DEFAULT '',
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    parent_id       TEXT REFERENCES steward_departments(id),
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_steward_departments_tenant ON steward_departments (tenant_id);
CREATE INDEX IF NOT EXISTS idx_steward_departments_parent ON steward_departments (parent_id);
`

const ddlRoles = `
CREATE TABLE IF NOT EXISTS steward_roles (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    app_id          TEXT NOT NULL DEFAULT '',
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    slug            TEXT NOT NULL,
    department_id   TEXT REFERENCES steward_departments(id),
    reporting_ids   JSONB NOT NULL DEFAULT '[]',
    permissions     JSONB NOT NULL DEFAULT '[]',
    is_system       BOOLEAN NOT NULL DEFAULT FALSE,
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(tenant_id, slug)
);

CREATE INDEX IF NOT EXISTS idx_steward_roles_tenant ON steward_roles (tenant_id);
CREATE INDEX IF NOT EXISTS idx_steward_roles_department ON steward_roles (department_id);
CREATE INDEX IF NOT EXISTS idx_steward_roles_reporting ON steward_roles USING GIN (reporting_ids);
CREATE INDEX IF NOT EXISTS idx_steward_roles_system ON steward_roles (tenant_id, is_system);
`

const ddlCheckLogs = `
CREATE TABLE IF NOT EXISTS steward_check_logs (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    app_id          TEXT NOT NULL DEFAULT '',
    role_id         TEXT NOT NULL,
    user_id         TEXT NOT NULL DEFAULT '',
    page            TEXT NOT NULL,
    action          TEXT NOT NULL DEFAULT '',
    decision        TEXT NOT NULL,
    scope           TEXT NOT NULL DEFAULT '',
    reason          TEXT NOT NULL DEFAULT '',
    eval_time_ns    BIGINT NOT NULL DEFAULT 0,
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_steward_check_logs_tenant ON steward_check_logs (tenant_id, created_at);
CREATE INDEX IF NOT EXISTS idx_steward_check_logs_role ON steward_check_logs (role_id);
CREATE INDEX IF NOT EXISTS idx_steward_check_logs_decision ON steward_check_logs (tenant_id, decision);
`

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_departments",
			Version: "20240601000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, ddlDepartments)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_departments`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_roles",
			Version: "20240601000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, ddlRoles)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_roles`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_check_logs",
			Version: "20240601000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, ddlCheckLogs)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_check_logs`)
				return err
			},
		},
	)
}
