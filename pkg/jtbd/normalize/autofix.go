package normalize

import (
	"context"

	"github.com/vladprrs/ajtbd/pkg/jtbd/hierarchy"
	"github.com/vladprrs/ajtbd/pkg/lang"
	"github.com/vladprrs/ajtbd/pkg/logger"
	"github.com/vladprrs/ajtbd/pkg/store"
)

// Change records one applied autofix.
type Change struct {
	JobID    string `json:"jobId"`
	Field    string `json:"field"`
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

// Autofix normalizes formulation and label of every job in the graph,
// persisting only the jobs whose normalized value differs from the stored
// one, each through the repository update path in its own transaction.
// Running Autofix on an already-normalized graph reports zero changes.
func Autofix(ctx context.Context, repo *hierarchy.Repository, graphID string) ([]Change, error) {
	graph, err := repo.GetGraph(ctx, graphID)
	if err != nil {
		return nil, err
	}
	profile, err := lang.Get(graph.Language)
	if err != nil {
		return nil, err
	}
	jobs, err := repo.JobsOf(ctx, graphID)
	if err != nil {
		return nil, err
	}

	changes := make([]Change, 0)
	for i := range jobs {
		job := &jobs[i]
		patch := store.Patch{}

		formulation := Formulation(job.Formulation, profile)
		if formulation != job.Formulation {
			patch["formulation"] = formulation
			changes = append(changes, Change{
				JobID: job.ID, Field: "formulation",
				OldValue: job.Formulation, NewValue: formulation,
			})
		}

		label := Label(job.Label, profile)
		if label == "" {
			// A blank label is recoverable from the formulation.
			label = ExtractLabel(formulation, profile)
		}
		if label != job.Label {
			patch["label"] = label
			changes = append(changes, Change{
				JobID: job.ID, Field: "label",
				OldValue: job.Label, NewValue: label,
			})
		}

		if len(patch) == 0 {
			continue
		}
		if _, err := repo.UpdateJob(ctx, job.ID, patch); err != nil {
			return nil, err
		}
	}

	if len(changes) > 0 {
		logger.Debug("Autofix applied", "graph", graphID, "changes", len(changes))
	}
	return changes, nil
}
