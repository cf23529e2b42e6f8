// Package role defines the Role entity and its store interface.
//
// Roles carry their permission grants inline and report to zero or more
// supervisor roles. The reporting edges form a DAG, since a role may
// escalate to several supervisors, and the engine rejects any mutation
// that would introduce a cycle.
package role

import (
	"encoding/json"
	"time"

	"github.com/xraph/steward/grant"
	"github.com/xraph/steward/id"
)

// Role represents an authorization role bound to users by the surrounding
// identity system.
type Role struct {
	ID           id.RoleID        `json:"id" db:"id"`
	TenantID     string           `json:"tenant_id" db:"tenant_id"`
	AppID        string           `json:"app_id" db:"app_id"`
	Name         string           `json:"name" db:"name"`
	Slug         string           `json:"slug" db:"slug"`
	Description  string           `json:"description,omitempty" db:"description"`
	DepartmentID *id.DepartmentID `json:"department_id,omitempty" db:"department_id"`
	ReportingIDs []id.RoleID      `json:"reporting_ids,omitempty" db:"reporting_ids"`
	Grants       []grant.Grant    `json:"permissions,omitempty" db:"permissions"`
	IsSystem     bool             `json:"is_system" db:"is_system"`
	Metadata     map[string]any   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// Normalize canonicalizes the role in place: grants are lowercased, merged
// and stripped of blanks, and reporting ids are deduplicated with nil ids
// dropped. Normalizing an already-normalized role is a no-op.
func (r *Role) Normalize() {
	r.Grants = grant.NormalizeAll(r.Grants)
	r.ReportingIDs = DedupeReporting(r.ReportingIDs)
}

// GrantFor returns the role's grant for a page, if any.
func (r *Role) GrantFor(page string) (grant.Grant, bool) {
	return grant.Find(r.Grants, page)
}

// ReportsTo reports whether supervisorID is a direct supervisor of r.
func (r *Role) ReportsTo(supervisorID id.RoleID) bool {
	for _, rid := range r.ReportingIDs {
		if rid.String() == supervisorID.String() {
			return true
		}
	}
	return false
}

// roleJSON mirrors Role for (un)marshalling. The singular reporting_id is
// the deprecated single-parent field still present in older stored
// documents; on load it folds into ReportingIDs.
type roleJSON struct {
	ID           id.RoleID        `json:"id"`
	TenantID     string           `json:"tenant_id"`
	AppID        string           `json:"app_id"`
	Name         string           `json:"name"`
	Slug         string           `json:"slug"`
	Description  string           `json:"description,omitempty"`
	DepartmentID *id.DepartmentID `json:"department_id,omitempty"`
	ReportingID  string           `json:"reporting_id,omitempty"`
	ReportingIDs []id.RoleID      `json:"reporting_ids,omitempty"`
	Grants       []grant.Grant    `json:"permissions,omitempty"`
	IsSystem     bool             `json:"is_system"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// UnmarshalJSON accepts both the current multi-parent shape and documents
// that still carry the deprecated singular reporting_id.
func (r *Role) UnmarshalJSON(data []byte) error {
	var aux roleJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Role{
		ID:           aux.ID,
		TenantID:     aux.TenantID,
		AppID:        aux.AppID,
		Name:         aux.Name,
		Slug:         aux.Slug,
		Description:  aux.Description,
		DepartmentID: aux.DepartmentID,
		ReportingIDs: FoldLegacyReporting(aux.ReportingID, aux.ReportingIDs),
		Grants:       aux.Grants,
		IsSystem:     aux.IsSystem,
		Metadata:     aux.Metadata,
		CreatedAt:    aux.CreatedAt,
		UpdatedAt:    aux.UpdatedAt,
	}
	return nil
}

// FoldLegacyReporting merges a deprecated singular reporting id into the
// multi-parent set. Blank or unparsable legacy values are dropped; the
// result is deduplicated.
func FoldLegacyReporting(legacy string, ids []id.RoleID) []id.RoleID {
	out := DedupeReporting(ids)
	if legacy == "" {
		return out
	}
	lid, err := id.ParseRoleID(legacy)
	if err != nil {
		return out
	}
	for _, existing := range out {
		if existing.String() == lid.String() {
			return out
		}
	}
	return append(out, lid)
}

// DedupeReporting removes nil ids and duplicates, preserving order.
func DedupeReporting(ids []id.RoleID) []id.RoleID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]id.RoleID, 0, len(ids))
	for _, rid := range ids {
		if rid.IsNil() {
			continue
		}
		k := rid.String()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, rid)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ListFilter contains filters for listing roles.
type ListFilter struct {
	TenantID     string           `json:"tenant_id,omitempty"`
	DepartmentID *id.DepartmentID `json:"department_id,omitempty"`
	IsSystem     *bool            `json:"is_system,omitempty"`
	Search       string           `json:"search,omitempty"`
	Limit        int              `json:"limit,omitempty"`
	Offset       int              `json:"offset,omitempty"`
}
