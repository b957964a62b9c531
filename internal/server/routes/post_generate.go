package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/internal/server/middleware"
	"github.com/vladprrs/ajtbd/pkg/jtbd"
)

// GenerateSmallJobsHandler asks the model to decompose the graph's core job
// into small jobs and inserts them.
func GenerateSmallJobsHandler(c echo.Context) error {
	type generateResponse struct {
		Message string     `json:"message"`
		Jobs    []jtbd.Job `json:"jobs,omitempty"`
	}

	graphID := c.Param("id")

	ctx := c.Request().Context()
	svc := c.(*middleware.AppContext).App.Decomposer
	jobs, err := svc.SmallJobs(ctx, graphID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, generateResponse{
		Message: "Small jobs generated successfully",
		Jobs:    jobs,
	})
}

// GenerateMicroJobsHandler asks the model to break one small job into micro
// steps and inserts them.
func GenerateMicroJobsHandler(c echo.Context) error {
	type generateResponse struct {
		Message string     `json:"message"`
		Jobs    []jtbd.Job `json:"jobs,omitempty"`
	}

	jobID := c.Param("id")

	ctx := c.Request().Context()
	svc := c.(*middleware.AppContext).App.Decomposer
	jobs, err := svc.MicroJobs(ctx, jobID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, generateResponse{
		Message: "Micro jobs generated successfully",
		Jobs:    jobs,
	})
}
