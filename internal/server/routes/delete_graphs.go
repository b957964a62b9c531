package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/internal/server/middleware"
)

// DeleteGraphHandler deletes a graph; jobs, solutions and edges cascade.
func DeleteGraphHandler(c echo.Context) error {
	type deleteGraphResponse struct {
		Message string `json:"message"`
	}

	graphID := c.Param("id")

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo
	if err := repo.DeleteGraph(ctx, graphID); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, deleteGraphResponse{
		Message: "Graph deleted successfully",
	})
}
