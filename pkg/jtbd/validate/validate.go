// Package validate checks a graph's jobs against the structural and
// linguistic rules of its language profile. It reads, never mutates:
// malformed content becomes errors or warnings in the report, not rejected
// writes.
package validate

import (
	"context"
	"fmt"

	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/jtbd/hierarchy"
	"github.com/vladprrs/ajtbd/pkg/lang"
)

// Issue codes.
const (
	CodeInvalidFormulation = "INVALID_FORMULATION"
	CodeInvalidLabel       = "INVALID_LABEL"
	CodeMultipleActions    = "MULTIPLE_ACTIONS"
	CodeUnknownPhase       = "UNKNOWN_PHASE"
	CodeTooFewSmallJobs    = "TOO_FEW_SMALL_JOBS"
	CodeTooManySmallJobs   = "TOO_MANY_SMALL_JOBS"
	CodeTooFewMicroJobs    = "TOO_FEW_MICRO_JOBS"
	CodeTooManyMicroJobs   = "TOO_MANY_MICRO_JOBS"
)

// Issue is one finding against one job (or against the graph when JobID is
// empty).
type Issue struct {
	Code    string `json:"code"`
	JobID   string `json:"jobId,omitempty"`
	Message string `json:"message"`
}

// Stats aggregates the graph's shape.
type Stats struct {
	TotalJobs         int            `json:"totalJobs"`
	SmallJobs         int            `json:"smallJobs"`
	MicroJobsPerSmall map[string]int `json:"microJobsPerSmall"`
	JobsWithSolutions int            `json:"jobsWithSolutions"`
	JobsWithScores    int            `json:"jobsWithScores"`
}

// Report is the result of validating one graph. Valid is true iff Errors is
// empty; warnings never affect validity.
type Report struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Stats    Stats   `json:"stats"`
}

// Validate checks every job of the graph against the graph's language
// profile and the sibling-count bounds.
func Validate(ctx context.Context, repo *hierarchy.Repository, graphID string) (*Report, error) {
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
	solutionCounts, err := repo.SolutionCounts(ctx, graphID)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Errors:   []Issue{},
		Warnings: []Issue{},
		Stats: Stats{
			TotalJobs:         len(jobs),
			MicroJobsPerSmall: map[string]int{},
		},
	}

	smallIDs := make([]string, 0)
	microCounts := make(map[string]int)
	for i := range jobs {
		job := &jobs[i]
		checkJob(report, job, profile)

		switch job.Level {
		case jtbd.LevelSmall:
			report.Stats.SmallJobs++
			smallIDs = append(smallIDs, job.ID)
		case jtbd.LevelMicro:
			if job.ParentID != nil {
				microCounts[*job.ParentID]++
			}
		}
		if solutionCounts[job.ID] > 0 {
			report.Stats.JobsWithSolutions++
		}
		if job.Scores != nil {
			report.Stats.JobsWithScores++
		}
	}

	if report.Stats.SmallJobs < jtbd.MinSmallJobs {
		report.Warnings = append(report.Warnings, Issue{
			Code: CodeTooFewSmallJobs,
			Message: fmt.Sprintf("graph has %d small jobs, expected at least %d",
				report.Stats.SmallJobs, jtbd.MinSmallJobs),
		})
	}
	if report.Stats.SmallJobs > jtbd.MaxSmallJobs {
		report.Warnings = append(report.Warnings, Issue{
			Code: CodeTooManySmallJobs,
			Message: fmt.Sprintf("graph has %d small jobs, expected at most %d",
				report.Stats.SmallJobs, jtbd.MaxSmallJobs),
		})
	}
	for _, id := range smallIDs {
		n := microCounts[id]
		report.Stats.MicroJobsPerSmall[id] = n
		if n < jtbd.MinMicroJobs {
			report.Warnings = append(report.Warnings, Issue{
				Code:  CodeTooFewMicroJobs,
				JobID: id,
				Message: fmt.Sprintf("small job has %d micro jobs, expected at least %d",
					n, jtbd.MinMicroJobs),
			})
		}
		if n > jtbd.MaxMicroJobs {
			report.Warnings = append(report.Warnings, Issue{
				Code:  CodeTooManyMicroJobs,
				JobID: id,
				Message: fmt.Sprintf("small job has %d micro jobs, expected at most %d",
					n, jtbd.MaxMicroJobs),
			})
		}
	}

	report.Valid = len(report.Errors) == 0
	return report, nil
}

func checkJob(report *Report, job *jtbd.Job, profile *lang.Profile) {
	if !profile.HasFirstPersonPrefix(job.Formulation) {
		report.Errors = append(report.Errors, Issue{
			Code:    CodeInvalidFormulation,
			JobID:   job.ID,
			Message: fmt.Sprintf("formulation %q does not start with a first-person prefix", job.Formulation),
		})
	}
	if job.Label == "" || profile.HasFirstPersonPrefix(job.Label) {
		report.Errors = append(report.Errors, Issue{
			Code:    CodeInvalidLabel,
			JobID:   job.ID,
			Message: fmt.Sprintf("label %q must be a non-empty verb phrase without a first-person prefix", job.Label),
		})
	}
	if profile.HasConjunction(job.Formulation) {
		report.Warnings = append(report.Warnings, Issue{
			Code:    CodeMultipleActions,
			JobID:   job.ID,
			Message: fmt.Sprintf("formulation %q bundles more than one action", job.Formulation),
		})
	}
	if job.Phase == jtbd.PhaseUnknown {
		report.Warnings = append(report.Warnings, Issue{
			Code:    CodeUnknownPhase,
			JobID:   job.ID,
			Message: "phase is unknown",
		})
	}
}
