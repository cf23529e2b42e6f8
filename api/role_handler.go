package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/grant"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/role"
)

func (a *API) registerRoleRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("roles"))

	if err := g.POST("/roles", a.createRole,
		forge.WithSummary("Create role"),
		forge.WithDescription("Creates a new role with its grants and reporting lines."),
		forge.WithOperationID("createRole"),
		forge.WithRequestSchema(CreateRoleRequest{}),
		forge.WithCreatedResponse(&role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/roles/:roleId", a.getRole,
		forge.WithSummary("Get role"),
		forge.WithDescription("Returns details of a specific role."),
		forge.WithOperationID("getRole"),
		forge.WithResponseSchema(http.StatusOK, "Role details", &role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/roles/:roleId", a.updateRole,
		forge.WithSummary("Update role"),
		forge.WithDescription("Updates an existing role, including its grants and reporting lines."),
		forge.WithOperationID("updateRole"),
		forge.WithRequestSchema(UpdateRoleRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated role", &role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/roles/:roleId", a.deleteRole,
		forge.WithSummary("Delete role"),
		forge.WithDescription("Deletes a role that no other role reports to."),
		forge.WithOperationID("deleteRole"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/roles", a.listRoles,
		forge.WithSummary("List roles"),
		forge.WithDescription("Lists roles with optional filters."),
		forge.WithOperationID("listRoles"),
		forge.WithRequestSchema(ListRolesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Role list", []*role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/roles/:roleId/subordinates", a.listSubordinates,
		forge.WithSummary("List subordinates"),
		forge.WithDescription("Returns the transitive closure of roles reporting into this role, including the role itself."),
		forge.WithOperationID("listSubordinates"),
		forge.WithResponseSchema(http.StatusOK, "Subordinate roles", []*role.Role{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createRole(ctx forge.Context, req *CreateRoleRequest) (*role.Role, error) {
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}
	if req.Slug == "" {
		return nil, forge.BadRequest("slug is required")
	}

	r := &role.Role{
		ID:          id.NewRoleID(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		IsSystem:    req.IsSystem,
		Metadata:    req.Metadata,
		Grants:      toGrants(req.Permissions),
	}

	if req.DepartmentID != "" {
		did, err := id.ParseDepartmentID(req.DepartmentID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid department_id: %v", err))
		}
		r.DepartmentID = &did
	}

	reporting, err := toReportingIDs(req.ReportingIDs)
	if err != nil {
		return nil, err
	}
	r.ReportingIDs = reporting

	if err := a.eng.SaveRole(ctx.Context(), r); err != nil {
		return nil, mapError(err)
	}

	return r, ctx.JSON(http.StatusCreated, r)
}

func (a *API) getRole(ctx forge.Context, _ *GetRoleRequest) (*role.Role, error) {
	roleID, err := id.ParseRoleID(ctx.Param("roleId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role ID: %v", err))
	}

	r, err := a.eng.GetRole(ctx.Context(), roleID)
	if err != nil {
		return nil, mapError(err)
	}

	return r, ctx.JSON(http.StatusOK, r)
}

func (a *API) updateRole(ctx forge.Context, req *UpdateRoleRequest) (*role.Role, error) {
	roleID, err := id.ParseRoleID(ctx.Param("roleId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role ID: %v", err))
	}

	r, err := a.eng.GetRole(ctx.Context(), roleID)
	if err != nil {
		return nil, mapError(err)
	}

	if req.Name != "" {
		r.Name = req.Name
	}
	if req.Description != "" {
		r.Description = req.Description
	}
	if req.DepartmentID != nil {
		if *req.DepartmentID == "" {
			r.DepartmentID = nil
		} else {
			did, err := id.ParseDepartmentID(*req.DepartmentID)
			if err != nil {
				return nil, forge.BadRequest(fmt.Sprintf("invalid department_id: %v", err))
			}
			r.DepartmentID = &did
		}
	}
	if req.ReportingIDs != nil {
		reporting, err := toReportingIDs(req.ReportingIDs)
		if err != nil {
			return nil, err
		}
		r.ReportingIDs = reporting
	}
	if req.Permissions != nil {
		r.Grants = toGrants(req.Permissions)
	}
	if req.Metadata != nil {
		r.Metadata = req.Metadata
	}

	if err := a.eng.SaveRole(ctx.Context(), r); err != nil {
		return nil, mapError(err)
	}

	return r, ctx.JSON(http.StatusOK, r)
}

func (a *API) deleteRole(ctx forge.Context, _ *GetRoleRequest) (*struct{}, error) {
	roleID, err := id.ParseRoleID(ctx.Param("roleId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role ID: %v", err))
	}

	if err := a.eng.DeleteRole(ctx.Context(), roleID); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listRoles(ctx forge.Context, req *ListRolesRequest) ([]*role.Role, error) {
	filter := &role.ListFilter{
		TenantID: req.TenantID,
		Search:   req.Search,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	}
	if req.DepartmentID != "" {
		did, err := id.ParseDepartmentID(req.DepartmentID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid department_id: %v", err))
		}
		filter.DepartmentID = &did
	}

	roles, err := a.eng.ListRoles(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return roles, ctx.JSON(http.StatusOK, roles)
}

func (a *API) listSubordinates(ctx forge.Context, _ *GetRoleRequest) ([]*role.Role, error) {
	roleID, err := id.ParseRoleID(ctx.Param("roleId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role ID: %v", err))
	}

	roles, err := a.eng.SubordinatesOf(ctx.Context(), roleID)
	if err != nil && !errors.Is(err, steward.ErrGraphDepthExceeded) {
		return nil, mapError(err)
	}
	// A depth-limited walk still returns the partial closure.

	return roles, ctx.JSON(http.StatusOK, roles)
}

func toGrants(inputs []GrantInput) []grant.Grant {
	grants := make([]grant.Grant, 0, len(inputs))
	for _, in := range inputs {
		grants = append(grants, grant.New(in.Page, in.Actions))
	}
	return grants
}

func toReportingIDs(raw []string) ([]id.RoleID, error) {
	ids := make([]id.RoleID, 0, len(raw))
	for _, s := range raw {
		rid, err := id.ParseRoleID(s)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid reporting id %q: %v", s, err))
		}
		ids = append(ids, rid)
	}
	return ids, nil
}
