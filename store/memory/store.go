// Package memory provides an in-memory implementation of the Steward
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xraph/steward/checklog"
	"github.com/xraph/steward/department"
	"github.com/xraph/steward/grant"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/role"
)

// Compile-time interface checks.
var (
	_ role.Store       = (*Store)(nil)
	_ department.Store = (*Store)(nil)
	_ checklog.Store   = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all Steward entities.
type Store struct {
	mu sync.RWMutex

	roles       map[string]*role.Role
	departments map[string]*department.Department
	checkLogs   map[string]*checklog.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		roles:       make(map[string]*role.Role),
		departments: make(map[string]*department.Department),
		checkLogs:   make(map[string]*checklog.Entry),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Role Store
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) GetRole(_ context.Context, roleID id.RoleID) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleID.String()]
	if !ok {
		return nil, fmt.Errorf("role %s: %w", roleID, errNotFound)
	}
	return copyRole(r), nil
}

func (s *Store) GetRoleBySlug(_ context.Context, tenantID, slug string) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.TenantID == tenantID && r.Slug == slug {
			return copyRole(r), nil
		}
	}
	return nil, fmt.Errorf("role slug %q: %w", slug, errNotFound)
}

func (s *Store) UpdateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[r.ID.String()]; !ok {
		return fmt.Errorf("role %s: %w", r.ID, errNotFound)
	}
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) DeleteRole(_ context.Context, roleID id.RoleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, roleID.String())
	return nil
}

func (s *Store) ListRoles(_ context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*role.Role, 0, len(s.roles))
	for _, r := range s.roles {
		if filter != nil {
			if filter.TenantID != "" && r.TenantID != filter.TenantID {
				continue
			}
			if filter.DepartmentID != nil && (r.DepartmentID == nil || *r.DepartmentID != *filter.DepartmentID) {
				continue
			}
			if filter.IsSystem != nil && r.IsSystem != *filter.IsSystem {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyRole(r))
	}
	return applyPagination(result, paginationOpts(filter)), nil
}

func (s *Store) CountRoles(ctx context.Context, filter *role.ListFilter) (int64, error) {
	list, err := s.ListRoles(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListDirectReports(_ context.Context, roleID id.RoleID) ([]*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*role.Role
	for _, r := range s.roles {
		if r.ReportsTo(roleID) {
			result = append(result, copyRole(r))
		}
	}
	return result, nil
}

func (s *Store) ListRolesByDepartment(_ context.Context, deptID id.DepartmentID) ([]*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*role.Role
	for _, r := range s.roles {
		if r.DepartmentID != nil && *r.DepartmentID == deptID {
			result = append(result, copyRole(r))
		}
	}
	return result, nil
}

func (s *Store) DeleteRolesByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, r := range s.roles {
		if r.TenantID == tenantID {
			delete(s.roles, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Department Store
// ──────────────────────────────────────────────────

func (s *Store) CreateDepartment(_ context.Context, d *department.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments[d.ID.String()] = copyDepartment(d)
	return nil
}

func (s *Store) GetDepartment(_ context.Context, deptID id.DepartmentID) (*department.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.departments[deptID.String()]
	if !ok {
		return nil, fmt.Errorf("department %s: %w", deptID, errNotFound)
	}
	return copyDepartment(d), nil
}

func (s *Store) UpdateDepartment(_ context.Context, d *department.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.departments[d.ID.String()]; !ok {
		return fmt.Errorf("department %s: %w", d.ID, errNotFound)
	}
	s.departments[d.ID.String()] = copyDepartment(d)
	return nil
}

func (s *Store) DeleteDepartment(_ context.Context, deptID id.DepartmentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.departments, deptID.String())
	return nil
}

func (s *Store) ListDepartments(_ context.Context, filter *department.ListFilter) ([]*department.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*department.Department, 0, len(s.departments))
	for _, d := range s.departments {
		if filter != nil {
			if filter.TenantID != "" && d.TenantID != filter.TenantID {
				continue
			}
			if filter.ParentID != nil && (d.ParentID == nil || *d.ParentID != *filter.ParentID) {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyDepartment(d))
	}
	return applyPagination(result, paginationOptsDept(filter)), nil
}

func (s *Store) CountDepartments(ctx context.Context, filter *department.ListFilter) (int64, error) {
	list, err := s.ListDepartments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListChildDepartments(_ context.Context, parentID id.DepartmentID) ([]*department.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*department.Department
	for _, d := range s.departments {
		if d.ParentID != nil && *d.ParentID == parentID {
			result = append(result, copyDepartment(d))
		}
	}
	return result, nil
}

func (s *Store) ListRootDepartments(_ context.Context, tenantID string) ([]*department.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*department.Department
	for _, d := range s.departments {
		if d.TenantID == tenantID && d.ParentID == nil {
			result = append(result, copyDepartment(d))
		}
	}
	return result, nil
}

func (s *Store) DeleteDepartmentsByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, d := range s.departments {
		if d.TenantID == tenantID {
			delete(s.departments, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// CheckLog Store
// ──────────────────────────────────────────────────

func (s *Store) CreateCheckLog(_ context.Context, e *checklog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkLogs[e.ID.String()] = copyCheckLog(e)
	return nil
}

func (s *Store) GetCheckLog(_ context.Context, logID id.CheckLogID) (*checklog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.checkLogs[logID.String()]
	if !ok {
		return nil, fmt.Errorf("check log %s: %w", logID, errNotFound)
	}
	return copyCheckLog(e), nil
}

func (s *Store) ListCheckLogs(_ context.Context, filter *checklog.QueryFilter) ([]*checklog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*checklog.Entry, 0, len(s.checkLogs))
	for _, e := range s.checkLogs {
		if filter != nil {
			if filter.TenantID != "" && e.TenantID != filter.TenantID {
				continue
			}
			if filter.RoleID != "" && e.RoleID != filter.RoleID {
				continue
			}
			if filter.UserID != "" && e.UserID != filter.UserID {
				continue
			}
			if filter.Page != "" && e.Page != filter.Page {
				continue
			}
			if filter.Action != "" && e.Action != filter.Action {
				continue
			}
			if filter.Decision != "" && e.Decision != filter.Decision {
				continue
			}
			if filter.After != nil && !e.CreatedAt.After(*filter.After) {
				continue
			}
			if filter.Before != nil && !e.CreatedAt.Before(*filter.Before) {
				continue
			}
		}
		result = append(result, copyCheckLog(e))
	}
	return applyPagination(result, paginationOptsCL(filter)), nil
}

func (s *Store) CountCheckLogs(ctx context.Context, filter *checklog.QueryFilter) (int64, error) {
	list, err := s.ListCheckLogs(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) PurgeCheckLogs(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, e := range s.checkLogs {
		if e.CreatedAt.Before(before) {
			delete(s.checkLogs, k)
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteCheckLogsByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.checkLogs {
		if e.TenantID == tenantID {
			delete(s.checkLogs, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

var errNotFound = fmt.Errorf("not found")

func copyRole(r *role.Role) *role.Role {
	c := *r
	if r.ReportingIDs != nil {
		c.ReportingIDs = make([]id.RoleID, len(r.ReportingIDs))
		copy(c.ReportingIDs, r.ReportingIDs)
	}
	if r.Grants != nil {
		c.Grants = make([]grant.Grant, len(r.Grants))
		for i, g := range r.Grants {
			c.Grants[i] = grant.Grant{Page: g.Page, Actions: append([]string(nil), g.Actions...)}
		}
	}
	return &c
}

func copyDepartment(d *department.Department) *department.Department {
	c := *d
	return &c
}

func copyCheckLog(e *checklog.Entry) *checklog.Entry {
	c := *e
	return &c
}

type pagOpts struct {
	limit  int
	offset int
}

func paginationOpts(f *role.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsDept(f *department.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsCL(f *checklog.QueryFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func applyPagination[T any](items []*T, p pagOpts) []*T {
	if p.offset > 0 && p.offset < len(items) {
		items = items[p.offset:]
	} else if p.offset >= len(items) && p.offset > 0 {
		return nil
	}
	if p.limit > 0 && p.limit < len(items) {
		items = items[:p.limit]
	}
	return items
}
