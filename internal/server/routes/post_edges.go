package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/internal/server/middleware"
	"github.com/vladprrs/ajtbd/internal/util"
	"github.com/vladprrs/ajtbd/pkg/jtbd"
)

// AddEdgeHandler adds an explicit relation between two jobs of the graph.
func AddEdgeHandler(c echo.Context) error {
	type addEdgeBody struct {
		GraphID   string `param:"id" validate:"required"`
		FromJobID string `json:"fromJobId" validate:"required"`
		ToJobID   string `json:"toJobId" validate:"required"`
		Type      string `json:"type" validate:"required,oneof=next depends_on optional repeats"`
		Label     string `json:"label"`
	}

	type addEdgeResponse struct {
		Message string     `json:"message"`
		Edge    *jtbd.Edge `json:"edge,omitempty"`
	}

	data := new(addEdgeBody)
	if err := c.Bind(data); err != nil {
		return badRequest(c)
	}
	if err := c.Validate(data); err != nil {
		return badRequest(c)
	}

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo
	edge, err := repo.AddEdge(ctx, jtbd.Edge{
		GraphID:   data.GraphID,
		FromJobID: data.FromJobID,
		ToJobID:   data.ToJobID,
		Type:      jtbd.EdgeType(data.Type),
		Label:     util.SanitizeText(data.Label),
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, addEdgeResponse{
		Message: "Edge added successfully",
		Edge:    edge,
	})
}
