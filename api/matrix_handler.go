package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward/matrix"
)

func (a *API) registerMatrixRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("matrix"))

	return g.GET("/matrix", a.getMatrix,
		forge.WithSummary("Permission matrix catalog"),
		forge.WithDescription("Returns the known pages and the action tokens each page accepts."),
		forge.WithOperationID("getMatrix"),
		forge.WithResponseSchema(http.StatusOK, "Matrix catalog", MatrixResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) getMatrix(ctx forge.Context, _ *struct{}) (*MatrixResponse, error) {
	pages := matrix.Pages()
	resp := &MatrixResponse{Pages: make([]MatrixPage, len(pages))}
	for i, page := range pages {
		resp.Pages[i] = MatrixPage{Page: page, Actions: matrix.ActionsFor(page)}
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}
