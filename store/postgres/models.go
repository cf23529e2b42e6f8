package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/steward/checklog"
	"github.com/xraph/steward/department"
	"github.com/xraph/steward/grant"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/role"
)

// ──────────────────────────────────────────────────
// Department model
// ──────────────────────────────────────────────────

type departmentModel struct {
	grove.BaseModel `grove:"table:steward_departments"`
	ID              string         `grove:"id,pk"`
	TenantID        string         `grove:"tenant_id,notnull"`
	AppID           string         `grove:"app_id,notnull"`
	Name            string         `grove:"name,notnull"`
	Description     string         `grove:"description"`
	ParentID        *string        `grove:"parent_id"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
	UpdatedAt       time.Time      `grove:"updated_at,notnull"`
}

func departmentToModel(d *department.Department) *departmentModel {
	m := &departmentModel{
		ID:          d.ID.String(),
		TenantID:    d.TenantID,
		AppID:       d.AppID,
		Name:        d.Name,
		Description: d.Description,
		Metadata:    d.Metadata,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.ParentID != nil {
		s := d.ParentID.String()
		m.ParentID = &s
	}
	return m
}

func departmentFromModel(m *departmentModel) *department.Department {
	did, _ := id.ParseDepartmentID(m.ID) //nolint:errcheck // stored IDs are always valid
	d := &department.Department{
		ID:          did,
		TenantID:    m.TenantID,
		AppID:       m.AppID,
		Name:        m.Name,
		Description: m.Description,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.ParentID != nil {
		pid, err := id.ParseDepartmentID(*m.ParentID)
		if err == nil {
			d.ParentID = &pid
		}
	}
	return d
}

// ──────────────────────────────────────────────────
// Role model
// ──────────────────────────────────────────────────

// grantDoc is the stored shape of a grant inside the permissions column.
type grantDoc struct {
	Page    string   `json:"page"`
	Actions []string `json:"actions"`
}

type roleModel struct {
	grove.BaseModel `grove:"table:steward_roles"`
	ID              string         `grove:"id,pk"`
	TenantID        string         `grove:"tenant_id,notnull"`
	AppID           string         `grove:"app_id,notnull"`
	Name            string         `grove:"name,notnull"`
	Description     string         `grove:"description"`
	Slug            string         `grove:"slug,notnull"`
	DepartmentID    *string        `grove:"department_id"`
	ReportingIDs    []string       `grove:"reporting_ids,type:jsonb"`
	Permissions     []grantDoc     `grove:"permissions,type:jsonb"`
	IsSystem        bool           `grove:"is_system,notnull"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
	UpdatedAt       time.Time      `grove:"updated_at,notnull"`
}

func roleToModel(r *role.Role) *roleModel {
	m := &roleModel{
		ID:          r.ID.String(),
		TenantID:    r.TenantID,
		AppID:       r.AppID,
		Name:        r.Name,
		Description: r.Description,
		Slug:        r.Slug,
		IsSystem:    r.IsSystem,
		Metadata:    r.Metadata,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.DepartmentID != nil {
		s := r.DepartmentID.String()
		m.DepartmentID = &s
	}
	if len(r.ReportingIDs) > 0 {
		m.ReportingIDs = make([]string, len(r.ReportingIDs))
		for i, rid := range r.ReportingIDs {
			m.ReportingIDs[i] = rid.String()
		}
	}
	if len(r.Grants) > 0 {
		m.Permissions = make([]grantDoc, len(r.Grants))
		for i, g := range r.Grants {
			m.Permissions[i] = grantDoc{Page: g.Page, Actions: g.Actions}
		}
	}
	return m
}

func roleFromModel(m *roleModel) *role.Role {
	rid, _ := id.ParseRoleID(m.ID) //nolint:errcheck // stored IDs are always valid
	r := &role.Role{
		ID:          rid,
		TenantID:    m.TenantID,
		AppID:       m.AppID,
		Name:        m.Name,
		Description: m.Description,
		Slug:        m.Slug,
		IsSystem:    m.IsSystem,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.DepartmentID != nil {
		did, err := id.ParseDepartmentID(*m.DepartmentID)
		if err == nil {
			r.DepartmentID = &did
		}
	}
	for _, raw := range m.ReportingIDs {
		sup, err := id.ParseRoleID(raw)
		if err == nil {
			r.ReportingIDs = append(r.ReportingIDs, sup)
		}
	}
	for _, gd := range m.Permissions {
		r.Grants = append(r.Grants, grant.New(gd.Page, gd.Actions))
	}
	r.Grants = grant.NormalizeAll(r.Grants)
	r.ReportingIDs = role.DedupeReporting(r.ReportingIDs)
	return r
}

// ──────────────────────────────────────────────────
// CheckLog model
// ──────────────────────────────────────────────────

type checkLogModel struct {
	grove.BaseModel `grove:"table:steward_check_logs"`
	ID              string         `grove:"id,pk"`
	TenantID        string         `grove:"tenant_id,notnull"`
	AppID           string         `grove:"app_id,notnull"`
	RoleID          string         `grove:"role_id,notnull"`
	UserID          string         `grove:"user_id"`
	Page            string         `grove:"page,notnull"`
	Action          string         `grove:"action"`
	Decision        string         `grove:"decision,notnull"`
	Scope           string         `grove:"scope"`
	Reason          string         `grove:"reason"`
	EvalTimeNs      int64          `grove:"eval_time_ns,notnull"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
}

func checkLogToModel(e *checklog.Entry) *checkLogModel {
	return &checkLogModel{
		ID:         e.ID.String(),
		TenantID:   e.TenantID,
		AppID:      e.AppID,
		RoleID:     e.RoleID,
		UserID:     e.UserID,
		Page:       e.Page,
		Action:     e.Action,
		Decision:   e.Decision,
		Scope:      e.Scope,
		Reason:     e.Reason,
		EvalTimeNs: e.EvalTimeNs,
		Metadata:   e.Metadata,
		CreatedAt:  e.CreatedAt,
	}
}

func checkLogFromModel(m *checkLogModel) *checklog.Entry {
	lid, _ := id.ParseCheckLogID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &checklog.Entry{
		ID:         lid,
		TenantID:   m.TenantID,
		AppID:      m.AppID,
		RoleID:     m.RoleID,
		UserID:     m.UserID,
		Page:       m.Page,
		Action:     m.Action,
		Decision:   m.Decision,
		Scope:      m.Scope,
		Reason:     m.Reason,
		EvalTimeNs: m.EvalTimeNs,
		Metadata:   m.Metadata,
		CreatedAt:  m.CreatedAt,
	}
}
