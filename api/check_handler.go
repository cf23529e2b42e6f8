package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
)

func (a *API) registerCheckRoutes(router forge.Router) error {
	g := router.Group("/v1/access", forge.WithGroupTags("access"))

	if err := g.POST("/check", a.check,
		forge.WithSummary("Access check"),
		forge.WithDescription("Evaluates whether the principal's role grants the action on the page."),
		forge.WithOperationID("accessCheck"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/check-record", a.checkRecord,
		forge.WithSummary("Record access check"),
		forge.WithDescription("Evaluates whether the principal can read a record owned by another role or user."),
		forge.WithOperationID("accessCheckRecord"),
		forge.WithRequestSchema(RecordCheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/enforce", a.enforce,
		forge.WithSummary("Enforce access"),
		forge.WithDescription("Returns 200 if allowed, 403 if denied."),
		forge.WithOperationID("accessEnforce"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Allowed", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/batch-check", a.batchCheck,
		forge.WithSummary("Batch access check"),
		forge.WithDescription("Evaluates multiple access checks in one request."),
		forge.WithOperationID("accessBatchCheck"),
		forge.WithRequestSchema(BatchCheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Batch results", BatchCheckResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) check(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	if req.RoleID == "" && !req.IsSuperAdmin {
		return nil, forge.BadRequest("role_id is required")
	}
	if req.Page == "" || req.Action == "" {
		return nil, forge.BadRequest("page and action are required")
	}

	result, err := a.eng.Can(ctx.Context(), toPrincipal(req.RoleID, req.UserID, req.IsSuperAdmin), req.Page, req.Action)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toCheckResponse(result)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) checkRecord(ctx forge.Context, req *RecordCheckRequest) (*CheckResponse, error) {
	if req.RoleID == "" && !req.IsSuperAdmin {
		return nil, forge.BadRequest("role_id is required")
	}
	if req.Page == "" {
		return nil, forge.BadRequest("page is required")
	}

	rec := steward.Record{OwnerRoleID: req.OwnerRoleID, OwnerUserID: req.OwnerUserID}
	result, err := a.eng.CanAccessRecord(ctx.Context(), toPrincipal(req.RoleID, req.UserID, req.IsSuperAdmin), req.Page, rec)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toCheckResponse(result)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) enforce(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	if req.RoleID == "" && !req.IsSuperAdmin {
		return nil, forge.BadRequest("role_id is required")
	}
	if req.Page == "" || req.Action == "" {
		return nil, forge.BadRequest("page and action are required")
	}

	result, err := a.eng.Can(ctx.Context(), toPrincipal(req.RoleID, req.UserID, req.IsSuperAdmin), req.Page, req.Action)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toCheckResponse(result)
	if !result.Allowed {
		return resp, ctx.JSON(http.StatusForbidden, resp)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) batchCheck(ctx forge.Context, req *BatchCheckRequest) (*BatchCheckResponse, error) {
	if len(req.Checks) == 0 {
		return nil, forge.BadRequest("checks cannot be empty")
	}

	results := make([]CheckResponse, len(req.Checks))
	for i, c := range req.Checks {
		principal := toPrincipal(c.RoleID, c.UserID, c.IsSuperAdmin)
		var (
			result *steward.CheckResult
			err    error
		)
		if c.OwnerRoleID != "" || c.OwnerUserID != "" {
			rec := steward.Record{OwnerRoleID: c.OwnerRoleID, OwnerUserID: c.OwnerUserID}
			result, err = a.eng.CanAccessRecord(ctx.Context(), principal, c.Page, rec)
		} else {
			result, err = a.eng.Can(ctx.Context(), principal, c.Page, c.Action)
		}
		if err != nil {
			return nil, mapError(err)
		}
		results[i] = *toCheckResponse(result)
	}

	resp := &BatchCheckResponse{Results: results}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func toPrincipal(roleID, userID string, super bool) steward.Principal {
	return steward.Principal{RoleID: roleID, UserID: userID, IsSuperAdmin: super}
}

func toCheckResponse(r *steward.CheckResult) *CheckResponse {
	return &CheckResponse{
		Allowed:    r.Allowed,
		Decision:   string(r.Decision),
		Scope:      string(r.Scope),
		Reason:     r.Reason,
		EvalTimeNs: r.EvalTimeNs,
	}
}
