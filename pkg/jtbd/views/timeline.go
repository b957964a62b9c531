// Package views projects the persisted job tree into its two derived
// read-only representations: the phase-grouped timeline and the
// flow-diagram export. Both are pure functions of repository reads.
package views

import (
	"context"

	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/jtbd/hierarchy"
)

// MicroItem is a micro job with its solution count.
type MicroItem struct {
	jtbd.Job
	SolutionCount int `json:"solutionCount"`
}

// SmallItem is a small job with its solution count and nested micro jobs.
type SmallItem struct {
	jtbd.Job
	SolutionCount int         `json:"solutionCount"`
	MicroJobs     []MicroItem `json:"microJobs"`
}

// PhaseGroup holds the small jobs of one phase in sibling order.
type PhaseGroup struct {
	Phase jtbd.Phase  `json:"phase"`
	Jobs  []SmallItem `json:"jobs"`
}

// TimelineView is the phase-grouped projection of one graph.
type TimelineView struct {
	Graph     *jtbd.Graph  `json:"graph"`
	Phases    []PhaseGroup `json:"phases"`
	TotalJobs int          `json:"totalJobs"`
	SmallJobs int          `json:"smallJobs"`
	MicroJobs int          `json:"microJobs"`
}

var phaseOrder = []jtbd.Phase{jtbd.PhaseBefore, jtbd.PhaseDuring, jtbd.PhaseAfter, jtbd.PhaseUnknown}

// Timeline groups the graph's small jobs by phase, nests their micro
// children in sibling order and attaches solution counts. A missing graph
// projects to nil, not an error.
func Timeline(ctx context.Context, repo *hierarchy.Repository, graphID string) (*TimelineView, error) {
	graph, err := repo.FindGraph(ctx, graphID)
	if err != nil {
		return nil, err
	}
	if graph == nil {
		return nil, nil
	}

	jobs, err := repo.JobsOf(ctx, graphID)
	if err != nil {
		return nil, err
	}
	solutionCounts, err := repo.SolutionCounts(ctx, graphID)
	if err != nil {
		return nil, err
	}

	microByParent := make(map[string][]MicroItem)
	for i := range jobs {
		job := jobs[i]
		if job.Level != jtbd.LevelMicro || job.ParentID == nil {
			continue
		}
		microByParent[*job.ParentID] = append(microByParent[*job.ParentID], MicroItem{
			Job:           job,
			SolutionCount: solutionCounts[job.ID],
		})
	}

	view := &TimelineView{Graph: graph, TotalJobs: len(jobs)}
	byPhase := make(map[jtbd.Phase][]SmallItem)
	for i := range jobs {
		job := jobs[i]
		switch job.Level {
		case jtbd.LevelSmall:
			view.SmallJobs++
			byPhase[job.Phase] = append(byPhase[job.Phase], SmallItem{
				Job:           job,
				SolutionCount: solutionCounts[job.ID],
				MicroJobs:     microByParent[job.ID],
			})
		case jtbd.LevelMicro:
			view.MicroJobs++
		}
	}

	for _, phase := range phaseOrder {
		view.Phases = append(view.Phases, PhaseGroup{
			Phase: phase,
			Jobs:  append([]SmallItem{}, byPhase[phase]...),
		})
	}
	return view, nil
}
