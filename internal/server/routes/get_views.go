package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/internal/server/middleware"
	"github.com/vladprrs/ajtbd/pkg/jtbd/views"
)

// TimelineHandler returns the phase-grouped timeline projection.
func TimelineHandler(c echo.Context) error {
	graphID := c.Param("id")

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo
	timeline, err := views.Timeline(ctx, repo, graphID)
	if err != nil {
		return fail(c, err)
	}
	if timeline == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "Not found"})
	}

	return c.JSON(http.StatusOK, timeline)
}

// DiagramHandler returns the Graphviz DOT export as plain text.
func DiagramHandler(c echo.Context) error {
	graphID := c.Param("id")

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo
	dot, err := views.FlowDiagram(ctx, repo, graphID)
	if err != nil {
		return fail(c, err)
	}
	if dot == "" {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "Not found"})
	}

	return c.String(http.StatusOK, dot)
}
