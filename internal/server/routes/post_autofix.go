package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/internal/server/middleware"
	"github.com/vladprrs/ajtbd/pkg/jtbd/normalize"
)

// AutofixGraphHandler re-normalizes every formulation and label in the
// graph and returns the list of applied changes. Running it twice in a row
// yields an empty list the second time.
func AutofixGraphHandler(c echo.Context) error {
	type autofixResponse struct {
		Message string             `json:"message"`
		Changes []normalize.Change `json:"changes"`
	}

	graphID := c.Param("id")

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo
	changes, err := normalize.Autofix(ctx, repo, graphID)
	if err != nil {
		return fail(c, err)
	}
	if changes == nil {
		changes = []normalize.Change{}
	}

	return c.JSON(http.StatusOK, autofixResponse{
		Message: "Autofix completed",
		Changes: changes,
	})
}
