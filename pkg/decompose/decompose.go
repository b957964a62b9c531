// Package decompose turns a graph's core job into generated small and micro
// jobs. Model proposals are normalized and inserted through the same
// validated repository path as any other caller.
package decompose

import (
	"context"
	"errors"
	"fmt"

	"github.com/vladprrs/ajtbd/internal/util"
	"github.com/vladprrs/ajtbd/pkg/ai"
	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/jtbd/hierarchy"
	"github.com/vladprrs/ajtbd/pkg/jtbd/normalize"
	"github.com/vladprrs/ajtbd/pkg/lang"
	"github.com/vladprrs/ajtbd/pkg/logger"
)

const defaultMaxTries = 3

// Service generates job decompositions through an AI client.
type Service struct {
	repo     *hierarchy.Repository
	client   ai.Client
	maxTries int
}

// New builds a decomposition service. Model calls are retried a few times
// before the error is surfaced.
func New(repo *hierarchy.Repository, client ai.Client) *Service {
	return &Service{
		repo:     repo,
		client:   client,
		maxTries: defaultMaxTries,
	}
}

type proposal struct {
	Formulation string `json:"formulation"`
	Phase       string `json:"phase,omitempty"`
	Cadence     string `json:"cadence,omitempty"`
}

type proposalBatch struct {
	Jobs []proposal `json:"jobs"`
}

// SmallJobs asks the model for the small jobs around the graph's core job,
// normalizes every draft and inserts the batch under the core job. Batch
// sizes outside the expected range are recorded as graph warnings.
func (s *Service) SmallJobs(ctx context.Context, graphID string) ([]jtbd.Job, error) {
	graph, err := s.repo.GetGraph(ctx, graphID)
	if err != nil {
		return nil, err
	}
	if graph.CoreJobID == nil {
		return nil, fmt.Errorf("graph %s has no core job: %w", graphID, jtbd.ErrInvalidHierarchy)
	}
	profile, err := lang.Get(graph.Language)
	if err != nil {
		return nil, err
	}

	batch, err := s.propose(ctx, "small_jobs",
		"Small jobs the customer gets done around the core job",
		smallJobsPrompt(graph, profile), smallSystemPrompt)
	if err != nil {
		return nil, err
	}
	proposals, err := s.checkRange(ctx, graph, "small", batch.Jobs, jtbd.MinSmallJobs, jtbd.MaxSmallJobs)
	if err != nil {
		return nil, err
	}

	jobs := make([]jtbd.Job, 0, len(proposals))
	for _, p := range proposals {
		formulation := normalize.Formulation(util.SanitizeText(p.Formulation), profile)
		jobs = append(jobs, jtbd.Job{
			GraphID:     graph.ID,
			ParentID:    graph.CoreJobID,
			Level:       jtbd.LevelSmall,
			Formulation: formulation,
			Label:       normalize.ExtractLabel(formulation, profile),
			Phase:       normalize.Phase(p.Phase, profile),
			Cadence:     normalize.Cadence(p.Cadence, profile),
		})
	}

	created, err := s.repo.CreateMany(ctx, jobs)
	if err != nil {
		return nil, err
	}
	logger.Info("generated small jobs", "graph", graph.ID, "count", len(created))
	return created, nil
}

// MicroJobs asks the model for the micro steps of one small job, normalizes
// every draft and inserts the batch under it. Phase is inherited from the
// parent by the repository.
func (s *Service) MicroJobs(ctx context.Context, smallJobID string) ([]jtbd.Job, error) {
	small, err := s.repo.GetJob(ctx, smallJobID)
	if err != nil {
		return nil, err
	}
	if small.Level != jtbd.LevelSmall {
		return nil, fmt.Errorf("job %s is a %s job, micro jobs hang off small jobs: %w",
			small.ID, small.Level, jtbd.ErrInvalidHierarchy)
	}
	graph, err := s.repo.GetGraph(ctx, small.GraphID)
	if err != nil {
		return nil, err
	}
	profile, err := lang.Get(graph.Language)
	if err != nil {
		return nil, err
	}

	batch, err := s.propose(ctx, "micro_jobs",
		"Micro steps the customer performs to get the small job done",
		microJobsPrompt(graph, small, profile), microSystemPrompt)
	if err != nil {
		return nil, err
	}
	proposals, err := s.checkRange(ctx, graph, "micro", batch.Jobs, jtbd.MinMicroJobs, jtbd.MaxMicroJobs)
	if err != nil {
		return nil, err
	}

	jobs := make([]jtbd.Job, 0, len(proposals))
	for _, p := range proposals {
		formulation := normalize.Formulation(util.SanitizeText(p.Formulation), profile)
		jobs = append(jobs, jtbd.Job{
			GraphID:     graph.ID,
			ParentID:    &small.ID,
			Level:       jtbd.LevelMicro,
			Formulation: formulation,
			Label:       normalize.ExtractLabel(formulation, profile),
			Cadence:     normalize.Cadence(p.Cadence, profile),
		})
	}

	created, err := s.repo.CreateMany(ctx, jobs)
	if err != nil {
		return nil, err
	}
	logger.Info("generated micro jobs", "graph", graph.ID, "parent", small.ID, "count", len(created))
	return created, nil
}

func (s *Service) propose(ctx context.Context, name, description, prompt, system string) (proposalBatch, error) {
	return util.RetryWithContext(ctx, s.maxTries, func(ctx context.Context) (proposalBatch, error) {
		var out proposalBatch
		err := s.client.GenerateCompletionWithFormat(ctx, name, description, prompt, &out,
			ai.WithSystemPrompts(system))
		if err != nil {
			return proposalBatch{}, err
		}
		if len(out.Jobs) == 0 {
			return proposalBatch{}, errors.New("model returned no jobs")
		}
		return out, nil
	})
}

// checkRange enforces the expected batch size. Oversized batches are
// truncated, undersized ones are kept; both leave a warning on the graph so
// validation and the UI can surface it.
func (s *Service) checkRange(
	ctx context.Context,
	graph *jtbd.Graph,
	kind string,
	proposals []proposal,
	minCount, maxCount int,
) ([]proposal, error) {
	n := len(proposals)
	if n >= minCount && n <= maxCount {
		return proposals, nil
	}

	warning := fmt.Sprintf("%s job generation returned %d items, expected %d-%d", kind, n, minCount, maxCount)
	logger.Warn("generation batch out of range", "graph", graph.ID, "kind", kind, "count", n)
	warnings := append(jtbd.StringList{}, graph.Warnings...)
	warnings = append(warnings, warning)
	if _, err := s.repo.UpdateGraph(ctx, graph.ID, map[string]any{"warnings": warnings}); err != nil {
		return nil, err
	}

	if n > maxCount {
		proposals = proposals[:maxCount]
	}
	return proposals, nil
}
