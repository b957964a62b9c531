package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/internal/server/middleware"
	"github.com/vladprrs/ajtbd/internal/util"
	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/jtbd/hierarchy"
	"github.com/vladprrs/ajtbd/pkg/jtbd/normalize"
	"github.com/vladprrs/ajtbd/pkg/lang"
)

// CreateGraphHandler creates a graph together with its core job and the
// optional big job in one transaction.
func CreateGraphHandler(c echo.Context) error {
	type createGraphBody struct {
		Language           string `json:"language" validate:"required,oneof=en ru"`
		SegmentDescription string `json:"segmentDescription" validate:"required"`
		CoreJob            string `json:"coreJob" validate:"required"`
		BigJob             string `json:"bigJob"`
	}

	type createGraphResponse struct {
		Message string      `json:"message"`
		Graph   *jtbd.Graph `json:"graph,omitempty"`
	}

	data := new(createGraphBody)
	if err := c.Bind(data); err != nil {
		return badRequest(c)
	}
	if err := c.Validate(data); err != nil {
		return badRequest(c)
	}

	profile, err := lang.Get(data.Language)
	if err != nil {
		return badRequest(c)
	}

	coreFormulation := normalize.Formulation(util.SanitizeText(data.CoreJob), profile)
	params := hierarchy.CreateGraphParams{
		Language:           data.Language,
		SegmentDescription: util.SanitizeText(data.SegmentDescription),
		CoreJob: jtbd.Job{
			Formulation: coreFormulation,
			Label:       normalize.ExtractLabel(coreFormulation, profile),
		},
	}
	if data.BigJob != "" {
		bigFormulation := normalize.Formulation(util.SanitizeText(data.BigJob), profile)
		params.BigJob = &jtbd.Job{
			Formulation: bigFormulation,
			Label:       normalize.ExtractLabel(bigFormulation, profile),
		}
	}

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo
	graph, err := repo.CreateGraph(ctx, params)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, createGraphResponse{
		Message: "Graph created successfully",
		Graph:   graph,
	})
}
