package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/internal/server/middleware"
	"github.com/vladprrs/ajtbd/pkg/jtbd/validate"
)

// ValidateGraphHandler runs the validation rules over the whole graph and
// returns the report. Validation never mutates.
func ValidateGraphHandler(c echo.Context) error {
	graphID := c.Param("id")

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo
	report, err := validate.Validate(ctx, repo, graphID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, report)
}
