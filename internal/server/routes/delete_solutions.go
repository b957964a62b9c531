package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/internal/server/middleware"
)

// DeleteSolutionHandler removes a solution from its job.
func DeleteSolutionHandler(c echo.Context) error {
	type deleteSolutionResponse struct {
		Message string `json:"message"`
	}

	solutionID := c.Param("id")

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo
	if err := repo.DeleteSolution(ctx, solutionID); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, deleteSolutionResponse{
		Message: "Solution deleted successfully",
	})
}
