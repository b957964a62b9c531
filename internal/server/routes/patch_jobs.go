package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/internal/server/middleware"
	"github.com/vladprrs/ajtbd/internal/util"
	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/store"
)

// EditJobHandler patches the mutable fields of one job. Structural fields
// (level, parent, sort order) are not patchable; the dedicated mutation
// routes handle those. Phase is patchable on small jobs only, and the
// repository propagates the change to their micro children.
func EditJobHandler(c echo.Context) error {
	type editJobBody struct {
		JobID         string       `param:"id" validate:"required"`
		Formulation   *string      `json:"formulation"`
		Label         *string      `json:"label"`
		Phase         *string      `json:"phase" validate:"omitempty,oneof=before during after unknown"`
		Cadence       *string      `json:"cadence" validate:"omitempty,oneof=once repeat"`
		CadenceHint   *string      `json:"cadenceHint"`
		Scores        *jtbd.Scores `json:"scores"`
		WhenText      *string      `json:"whenText"`
		Want          *string      `json:"want"`
		SoThat        *string      `json:"soThat"`
		SuggestedNext *string      `json:"suggestedNext"`
	}

	type editJobResponse struct {
		Message string    `json:"message"`
		Job     *jtbd.Job `json:"job,omitempty"`
	}

	data := new(editJobBody)
	if err := c.Bind(data); err != nil {
		return badRequest(c)
	}
	if err := c.Validate(data); err != nil {
		return badRequest(c)
	}

	patch := store.Patch{}
	setText := func(field string, value *string) {
		if value != nil {
			patch[field] = util.SanitizeText(*value)
		}
	}
	setText("formulation", data.Formulation)
	setText("label", data.Label)
	setText("cadenceHint", data.CadenceHint)
	setText("whenText", data.WhenText)
	setText("want", data.Want)
	setText("soThat", data.SoThat)
	setText("suggestedNext", data.SuggestedNext)
	if data.Phase != nil {
		patch["phase"] = *data.Phase
	}
	if data.Cadence != nil {
		patch["cadence"] = *data.Cadence
	}
	if data.Scores != nil {
		patch["scores"] = data.Scores
	}
	if len(patch) == 0 {
		return badRequest(c)
	}

	ctx := c.Request().Context()
	repo := c.(*middleware.AppContext).App.Repo
	updated, err := repo.UpdateJob(ctx, data.JobID, patch)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, editJobResponse{
		Message: "Job updated successfully",
		Job:     updated,
	})
}
