package mongo

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
	ID              string         `grove:"id,pk"       bson:"_id"`
	TenantID        string         `grove:"tenant_id"   bson:"tenant_id"`
	AppID           string         `grove:"app_id"      bson:"app_id"`
	Name            string         `grove:"name"        bson:"name"`
	Description     string         `grove:"description" bson:"description"`
	ParentID        *string        `grove:"parent_id"   bson:"parent_id,omitempty"`
	Metadata        map[string]any `grove:"metadata"    bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"  bson:"created_at"`
	UpdatedAt       time.Time      `grove:"updated_at"  bson:"updated_at"`
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

type grantDoc struct {
	Page    string   `bson:"page" json:"page"`
	Actions []string `bson:"actions" json:"actions"`
}

type roleModel struct {
	grove.BaseModel `grove:"table:steward_roles"`
	ID              string         `grove:"id,pk"         bson:"_id"`
	TenantID        string         `grove:"tenant_id"     bson:"tenant_id"`
	AppID           string         `grove:"app_id"        bson:"app_id"`
	Name            string         `grove:"name"          bson:"name"`
	Slug            string         `grove:"slug"          bson:"slug"`
	Description     string         `grove:"description"   bson:"description"`
	DepartmentID    *string        `grove:"department_id" bson:"department_id,omitempty"`
	ReportingID     string         `grove:"reporting_id"  bson:"reporting_id,omitempty"`
	ReportingIDs    []string       `grove:"reporting_ids" bson:"reporting_ids,omitempty"`
	Permissions     []grantDoc     `grove:"permissions"   bson:"permissions,omitempty"`
	IsSystem        bool           `grove:"is_system"     bson:"is_system"`
	Metadata        map[string]any `grove:"metadata"      bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"    bson:"created_at"`
	UpdatedAt       time.Time      `grove:"updated_at"    bson:"updated_at"`
}

func roleToModel(r *role.Role) *roleModel {
	m := &roleModel{
		ID:          r.ID.String(),
		TenantID:    r.TenantID,
		AppID:       r.AppID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
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
		Slug:        m.Slug,
		Description: m.Description,
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
	ids := make([]id.RoleID, 0, len(m.ReportingIDs))
	for _, raw := range m.ReportingIDs {
		parsed, err := id.ParseRoleID(raw)
		if err != nil {
			continue
		}
		ids = append(ids, parsed)
	}
	// Documents written before the multi-parent migration carry a singular
	// reporting_id instead of the array.
	r.ReportingIDs = role.FoldLegacyReporting(m.ReportingID, ids)
	if len(m.Permissions) > 0 {
		grants := make([]grant.Grant, len(m.Permissions))
		for i, doc := range m.Permissions {
			grants[i] = grant.New(doc.Page, doc.Actions)
		}
		r.Grants = grant.NormalizeAll(grants)
	}
	return r
}

// ──────────────────────────────────────────────────
// Check log model
// ──────────────────────────────────────────────────

type checkLogModel struct {
	grove.BaseModel `grove:"table:steward_check_logs"`
	ID              string         `grove:"id,pk"        bson:"_id"`
	TenantID        string         `grove:"tenant_id"    bson:"tenant_id"`
	AppID           string         `grove:"app_id"       bson:"app_id"`
	RoleID          string         `grove:"role_id"      bson:"role_id"`
	UserID          string         `grove:"user_id"      bson:"user_id"`
	Page            string         `grove:"page"         bson:"page"`
	Action          string         `grove:"action"       bson:"action"`
	Decision        string         `grove:"decision"     bson:"decision"`
	Scope           string         `grove:"scope"        bson:"scope"`
	Reason          string         `grove:"reason"       bson:"reason"`
	EvalTimeNs      int64          `grove:"eval_time_ns" bson:"eval_time_ns"`
	Metadata        map[string]any `grove:"metadata"     bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"   bson:"created_at"`
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
