package sqlite

import (
	"encoding/json"
	"fmt"
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
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	AppID           string    `grove:"app_id,notnull"`
	Name            string    `grove:"name,notnull"`
	Description     string    `grove:"description"`
	ParentID        *string   `grove:"parent_id"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func departmentToModel(d *department.Department) (*departmentModel, error) {
	metadata, err := json.Marshal(d.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal department metadata: %w", err)
	}
	m := &departmentModel{
		ID:          d.ID.String(),
		TenantID:    d.TenantID,
		AppID:       d.AppID,
		Name:        d.Name,
		Description: d.Description,
		Metadata:    string(metadata),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.ParentID != nil {
		s := d.ParentID.String()
		m.ParentID = &s
	}
	return m, nil
}

func departmentFromModel(m *departmentModel) (*department.Department, error) {
	did, _ := id.ParseDepartmentID(m.ID) //nolint:errcheck // stored IDs are always valid
	var metadata map[string]any
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal department metadata: %w", err)
		}
	}
	d := &department.Department{
		ID:          did,
		TenantID:    m.TenantID,
		AppID:       m.AppID,
		Name:        m.Name,
		Description: m.Description,
		Metadata:    metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.ParentID != nil {
		pid, err := id.ParseDepartmentID(*m.ParentID)
		if err == nil {
			d.ParentID = &pid
		}
	}
	return d, nil
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
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	AppID           string    `grove:"app_id,notnull"`
	Name            string    `grove:"name,notnull"`
	Description     string    `grove:"description"`
	Slug            string    `grove:"slug,notnull"`
	DepartmentID    *string   `grove:"department_id"`
	ReportingIDs    string    `grove:"reporting_ids"` // JSON text
	Permissions     string    `grove:"permissions"`   // JSON text
	IsSystem        bool      `grove:"is_system,notnull"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func roleToModel(r *role.Role) (*roleModel, error) {
	metadata, err := json.Marshal(r.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal role metadata: %w", err)
	}
	reporting := make([]string, len(r.ReportingIDs))
	for i, rid := range r.ReportingIDs {
		reporting[i] = rid.String()
	}
	reportingJSON, err := json.Marshal(reporting)
	if err != nil {
		return nil, fmt.Errorf("marshal role reporting ids: %w", err)
	}
	grants := make([]grantDoc, len(r.Grants))
	for i, g := range r.Grants {
		grants[i] = grantDoc{Page: g.Page, Actions: g.Actions}
	}
	grantsJSON, err := json.Marshal(grants)
	if err != nil {
		return nil, fmt.Errorf("marshal role grants: %w", err)
	}
	m := &roleModel{
		ID:           r.ID.String(),
		TenantID:     r.TenantID,
		AppID:        r.AppID,
		Name:         r.Name,
		Description:  r.Description,
		Slug:         r.Slug,
		ReportingIDs: string(reportingJSON),
		Permissions:  string(grantsJSON),
		IsSystem:     r.IsSystem,
		Metadata:     string(metadata),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.DepartmentID != nil {
		s := r.DepartmentID.String()
		m.DepartmentID = &s
	}
	return m, nil
}

func roleFromModel(m *roleModel) (*role.Role, error) {
	rid, _ := id.ParseRoleID(m.ID) //nolint:errcheck // stored IDs are always valid
	var metadata map[string]any
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal role metadata: %w", err)
		}
	}
	r := &role.Role{
		ID:          rid,
		TenantID:    m.TenantID,
		AppID:       m.AppID,
		Name:        m.Name,
		Description: m.Description,
		Slug:        m.Slug,
		IsSystem:    m.IsSystem,
		Metadata:    metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.DepartmentID != nil {
		did, err := id.ParseDepartmentID(*m.DepartmentID)
		if err == nil {
			r.DepartmentID = &did
		}
	}
	if m.ReportingIDs != "" {
		var reporting []string
		if err := json.Unmarshal([]byte(m.ReportingIDs), &reporting); err != nil {
			return nil, fmt.Errorf("unmarshal role reporting ids: %w", err)
		}
		for _, raw := range reporting {
			sup, err := id.ParseRoleID(raw)
			if err == nil {
				r.ReportingIDs = append(r.ReportingIDs, sup)
			}
		}
	}
	if m.Permissions != "" {
		var grants []grantDoc
		if err := json.Unmarshal([]byte(m.Permissions), &grants); err != nil {
			return nil, fmt.Errorf("unmarshal role grants: %w", err)
		}
		for _, gd := range grants {
			r.Grants = append(r.Grants, grant.New(gd.Page, gd.Actions))
		}
	}
	r.Grants = grant.NormalizeAll(r.Grants)
	r.ReportingIDs = role.DedupeReporting(r.ReportingIDs)
	return r, nil
}

// ──────────────────────────────────────────────────
// CheckLog model
// ──────────────────────────────────────────────────

type checkLogModel struct {
	grove.BaseModel `grove:"table:steward_check_logs"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	AppID           string    `grove:"app_id,notnull"`
	RoleID          string    `grove:"role_id,notnull"`
	UserID          string    `grove:"user_id"`
	Page            string    `grove:"page,notnull"`
	Action          string    `grove:"action"`
	Decision        string    `grove:"decision,notnull"`
	Scope           string    `grove:"scope"`
	Reason          string    `grove:"reason"`
	EvalTimeNs      int64     `grove:"eval_time_ns,notnull"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func checkLogToModel(e *checklog.Entry) (*checkLogModel, error) {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal check log metadata: %w", err)
	}
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
		Metadata:   string(metadata),
		CreatedAt:  e.CreatedAt,
	}, nil
}

func checkLogFromModel(m *checkLogModel) (*checklog.Entry, error) {
	lid, _ := id.ParseCheckLogID(m.ID) //nolint:errcheck // stored IDs are always valid
	var metadata map[string]any
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal check log metadata: %w", err)
		}
	}
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
		Metadata:   metadata,
		CreatedAt:  m.CreatedAt,
	}, nil
}
