package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/internal/server/middleware"
	"github.com/vladprrs/ajtbd/internal/util"
	"github.com/vladprrs/ajtbd/pkg/jtbd"
)

// AddSolutionHandler attaches a solution to a job.
func AddSolutionHandler(c echo.Context) error {
	type addSolutionBody struct {
		JobID       string `param:"id" validate:"required"`
		Type        string `json:"type" validate:"required,oneof=self product service our_product partner"`
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
	}

	type addSolutionResponse struct {
		Message  string         `json:"message"`
		Solution *jtbd.Solution `json:"solution,omitempty"`
	}

	data := new(addSolutionBody)
	if err := c.Bind(data); err != nil {
		return badRequest(c)
	}
	if err := c.Validate(data); err != nil {
		return badRequest(c)
	}

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo
	solution, err := repo.AddSolution(ctx, jtbd.Solution{
		JobID:       data.JobID,
		Type:        jtbd.SolutionType(data.Type),
		Title:       util.SanitizeText(data.Title),
		Description: util.SanitizeText(data.Description),
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, addSolutionResponse{
		Message:  "Solution added successfully",
		Solution: solution,
	})
}
