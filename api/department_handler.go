package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward/department"
	"github.com/xraph/steward/id"
)

func (a *API) registerDepartmentRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("departments"))

	if err := g.POST("/departments", a.createDepartment,
		forge.WithSummary("Create department"),
		forge.WithDescription("Creates a new department."),
		forge.WithOperationID("createDepartment"),
		forge.WithRequestSchema(CreateDepartmentRequest{}),
		forge.WithCreatedResponse(&department.Department{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	// Registered before the :departmentId routes so "tree" is not captured
	// as a path parameter.
	if err := g.GET("/departments/tree", a.departmentTree,
		forge.WithSummary("Department tree"),
		forge.WithDescription("Returns the full department hierarchy for a tenant."),
		forge.WithOperationID("departmentTree"),
		forge.WithRequestSchema(DepartmentTreeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Department tree", &department.Tree{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/departments/:departmentId", a.getDepartment,
		forge.WithSummary("Get department"),
		forge.WithDescription("Returns details of a specific department."),
		forge.WithOperationID("getDepartment"),
		forge.WithResponseSchema(http.StatusOK, "Department details", &department.Department{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/departments/:departmentId", a.updateDepartment,
		forge.WithSummary("Update department"),
		forge.WithDescription("Updates an existing department."),
		forge.WithOperationID("updateDepartment"),
		forge.WithRequestSchema(UpdateDepartmentRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated department", &department.Department{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/departments/:departmentId", a.deleteDepartment,
		forge.WithSummary("Delete department"),
		forge.WithDescription("Deletes a department with no children and no assigned roles."),
		forge.WithOperationID("deleteDepartment"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/departments", a.listDepartments,
		forge.WithSummary("List departments"),
		forge.WithDescription("Lists departments with optional filters."),
		forge.WithOperationID("listDepartments"),
		forge.WithRequestSchema(ListDepartmentsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Department list", []*department.Department{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createDepartment(ctx forge.Context, req *CreateDepartmentRequest) (*department.Department, error) {
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}

	d := &department.Department{
		ID:          id.NewDepartmentID(),
		Name:        req.Name,
		Description: req.Description,
		Metadata:    req.Metadata,
	}

	if req.ParentID != "" {
		pid, err := id.ParseDepartmentID(req.ParentID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid parent_id: %v", err))
		}
		d.ParentID = &pid
	}

	if err := a.eng.SaveDepartment(ctx.Context(), d); err != nil {
		return nil, mapError(err)
	}

	return d, ctx.JSON(http.StatusCreated, d)
}

func (a *API) getDepartment(ctx forge.Context, _ *GetDepartmentRequest) (*department.Department, error) {
	deptID, err := id.ParseDepartmentID(ctx.Param("departmentId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid department ID: %v", err))
	}

	d, err := a.eng.GetDepartment(ctx.Context(), deptID)
	if err != nil {
		return nil, mapError(err)
	}

	return d, ctx.JSON(http.StatusOK, d)
}

func (a *API) updateDepartment(ctx forge.Context, req *UpdateDepartmentRequest) (*department.Department, error) {
	deptID, err := id.ParseDepartmentID(ctx.Param("departmentId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid department ID: %v", err))
	}

	d, err := a.eng.GetDepartment(ctx.Context(), deptID)
	if err != nil {
		return nil, mapError(err)
	}

	if req.Name != "" {
		d.Name = req.Name
	}
	if req.Description != "" {
		d.Description = req.Description
	}
	if req.ParentID != nil {
		if *req.ParentID == "" {
			d.ParentID = nil
		} else {
			pid, err := id.ParseDepartmentID(*req.ParentID)
			if err != nil {
				return nil, forge.BadRequest(fmt.Sprintf("invalid parent_id: %v", err))
			}
			d.ParentID = &pid
		}
	}
	if req.Metadata != nil {
		d.Metadata = req.Metadata
	}

	if err := a.eng.SaveDepartment(ctx.Context(), d); err != nil {
		return nil, mapError(err)
	}

	return d, ctx.JSON(http.StatusOK, d)
}

func (a *API) deleteDepartment(ctx forge.Context, _ *GetDepartmentRequest) (*struct{}, error) {
	deptID, err := id.ParseDepartmentID(ctx.Param("departmentId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid department ID: %v", err))
	}

	if err := a.eng.DeleteDepartment(ctx.Context(), deptID); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listDepartments(ctx forge.Context, req *ListDepartmentsRequest) ([]*department.Department, error) {
	filter := &department.ListFilter{
		TenantID: req.TenantID,
		Search:   req.Search,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	}

	departments, err := a.eng.ListDepartments(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return departments, ctx.JSON(http.StatusOK, departments)
}

func (a *API) departmentTree(ctx forge.Context, req *DepartmentTreeRequest) (*department.Tree, error) {
	tree, err := a.eng.DepartmentTree(ctx.Context(), req.TenantID)
	if err != nil {
		return nil, mapError(err)
	}

	return tree, ctx.JSON(http.StatusOK, tree)
}
