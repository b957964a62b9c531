package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/internal/server/middleware"
)

// DeleteEdgeHandler removes an explicit relation.
func DeleteEdgeHandler(c echo.Context) error {
	type deleteEdgeResponse struct {
		Message string `json:"message"`
	}

	edgeID := c.Param("id")

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo
	if err := repo.DeleteEdge(ctx, edgeID); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, deleteEdgeResponse{
		Message: "Edge deleted successfully",
	})
}
