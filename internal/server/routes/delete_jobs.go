package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/internal/server/middleware"
)

// DeleteJobHandler deletes a job and, through the storage cascade, its
// descendants, solutions and edges.
func DeleteJobHandler(c echo.Context) error {
	type deleteJobResponse struct {
		Message string `json:"message"`
	}

	jobID := c.Param("id")

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo
	if err := repo.DeleteJob(ctx, jobID); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, deleteJobResponse{
		Message: "Job deleted successfully",
	})
}
