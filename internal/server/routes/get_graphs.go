package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/internal/server/middleware"
	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/jtbd/views"
)

// GetGraphsHandler lists graphs, newest first.
func GetGraphsHandler(c echo.Context) error {
	type getGraphsQuery struct {
		Limit  int `query:"limit"`
		Offset int `query:"offset"`
	}

	type getGraphsResponse struct {
		Message string       `json:"message"`
		Graphs  []jtbd.Graph `json:"graphs"`
	}

	data := new(getGraphsQuery)
	if err := c.Bind(data); err != nil {
		return badRequest(c)
	}
	if data.Limit <= 0 || data.Limit > 200 {
		data.Limit = 50
	}
	if data.Offset < 0 {
		data.Offset = 0
	}

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo
	graphs, err := repo.ListGraphs(ctx, data.Limit, data.Offset)
	if err != nil {
		return fail(c, err)
	}
	if graphs == nil {
		graphs = []jtbd.Graph{}
	}

	return c.JSON(http.StatusOK, getGraphsResponse{
		Message: "OK",
		Graphs:  graphs,
	})
}

// GetGraphHandler returns one graph with its full job tree.
func GetGraphHandler(c echo.Context) error {
	graphID := c.Param("id")

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo
	tree, err := views.Tree(ctx, repo, graphID)
	if err != nil {
		return fail(c, err)
	}
	if tree == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "Not found"})
	}

	return c.JSON(http.StatusOK, tree)
}
