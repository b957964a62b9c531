package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/internal/server/middleware"
	"github.com/vladprrs/ajtbd/internal/util"
	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/jtbd/normalize"
	"github.com/vladprrs/ajtbd/pkg/lang"
)

type jobDraft struct {
	Formulation string `json:"formulation" validate:"required"`
	Phase       string `json:"phase" validate:"omitempty,oneof=before during after unknown"`
	Cadence     string `json:"cadence" validate:"omitempty,oneof=once repeat"`
	CadenceHint string `json:"cadenceHint"`
	WhenText    string `json:"whenText"`
	Want        string `json:"want"`
	SoThat      string `json:"soThat"`
}

func (d jobDraft) toJob(graphID string, parentID *string, level jtbd.Level, profile *lang.Profile) jtbd.Job {
	formulation := normalize.Formulation(util.SanitizeText(d.Formulation), profile)
	return jtbd.Job{
		GraphID:     graphID,
		ParentID:    parentID,
		Level:       level,
		Formulation: formulation,
		Label:       normalize.ExtractLabel(formulation, profile),
		Phase:       jtbd.Phase(d.Phase),
		Cadence:     jtbd.Cadence(d.Cadence),
		CadenceHint: util.SanitizeText(d.CadenceHint),
		WhenText:    util.SanitizeText(d.WhenText),
		Want:        util.SanitizeText(d.Want),
		SoThat:      util.SanitizeText(d.SoThat),
	}
}

// CreateJobsHandler batch-creates sibling jobs under one parent, appended
// at the end of the existing sibling set.
func CreateJobsHandler(c echo.Context) error {
	type createJobsBody struct {
		GraphID  string     `param:"id" validate:"required"`
		ParentID string     `json:"parentId" validate:"required"`
		Level    string     `json:"level" validate:"required,oneof=small micro"`
		Jobs     []jobDraft `json:"jobs" validate:"required,min=1,dive"`
	}

	type createJobsResponse struct {
		Message string     `json:"message"`
		Jobs    []jtbd.Job `json:"jobs,omitempty"`
	}

	data := new(createJobsBody)
	if err := c.Bind(data); err != nil {
		return badRequest(c)
	}
	if err := c.Validate(data); err != nil {
		return badRequest(c)
	}

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo

	graph, err := repo.GetGraph(ctx, data.GraphID)
	if err != nil {
		return fail(c, err)
	}
	profile, err := lang.Get(graph.Language)
	if err != nil {
		return fail(c, err)
	}

	batch := make([]jtbd.Job, 0, len(data.Jobs))
	for _, draft := range data.Jobs {
		batch = append(batch, draft.toJob(graph.ID, &data.ParentID, jtbd.Level(data.Level), profile))
	}

	created, err := repo.CreateMany(ctx, batch)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, createJobsResponse{
		Message: "Jobs created successfully",
		Jobs:    created,
	})
}

// InsertAfterHandler inserts one job as the immediate next sibling of the
// anchor job, shifting the rest of the sibling set up by one.
func InsertAfterHandler(c echo.Context) error {
	type insertAfterBody struct {
		AnchorID string   `param:"id" validate:"required"`
		Job      jobDraft `json:"job" validate:"required"`
	}

	type insertAfterResponse struct {
		Message string    `json:"message"`
		Job     *jtbd.Job `json:"job,omitempty"`
	}

	data := new(insertAfterBody)
	if err := c.Bind(data); err != nil {
		return badRequest(c)
	}
	if err := c.Validate(data); err != nil {
		return badRequest(c)
	}

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo

	anchor, err := repo.GetJob(ctx, data.AnchorID)
	if err != nil {
		return fail(c, err)
	}
	graph, err := repo.GetGraph(ctx, anchor.GraphID)
	if err != nil {
		return fail(c, err)
	}
	profile, err := lang.Get(graph.Language)
	if err != nil {
		return fail(c, err)
	}

	payload := data.Job.toJob(anchor.GraphID, anchor.ParentID, anchor.Level, profile)
	created, err := repo.InsertAfter(ctx, anchor.ID, payload)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, insertAfterResponse{
		Message: "Job inserted successfully",
		Job:     created,
	})
}
