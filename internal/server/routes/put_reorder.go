package routes

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/internal/server/middleware"
	"github.com/vladprrs/ajtbd/internal/util"
	"github.com/vladprrs/ajtbd/pkg/jtbd"
)

// ReorderHandler rewrites the sort order of one sibling set to the given id
// sequence. The set is validated against the current siblings before any
// write happens.
func ReorderHandler(c echo.Context) error {
	type reorderBody struct {
		GraphID string   `param:"id" validate:"required"`
		JobIDs  []string `json:"jobIds" validate:"required,min=1"`
	}

	type reorderResponse struct {
		Message string `json:"message"`
	}

	data := new(reorderBody)
	if err := c.Bind(data); err != nil {
		return badRequest(c)
	}
	if err := c.Validate(data); err != nil {
		return badRequest(c)
	}
	for _, id := range data.JobIDs {
		if !util.IsNanoid(id) {
			return badRequest(c)
		}
	}

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo

	probe, err := repo.GetJob(ctx, data.JobIDs[0])
	if err != nil {
		return fail(c, err)
	}
	if probe.GraphID != data.GraphID {
		return fail(c, fmt.Errorf("job %s belongs to graph %s: %w",
			probe.ID, probe.GraphID, jtbd.ErrInvalidHierarchy))
	}

	if err := repo.Reorder(ctx, data.JobIDs); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, reorderResponse{
		Message: "Jobs reordered successfully",
	})
}
