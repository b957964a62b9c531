package views

import (
	"context"

	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/jtbd/hierarchy"
)

// JobNode is one job with its solutions and ordered children.
type JobNode struct {
	jtbd.Job
	Solutions []jtbd.Solution `json:"solutions,omitempty"`
	Children  []*JobNode      `json:"children,omitempty"`
}

// TreeView is the full nested projection of one graph.
type TreeView struct {
	Graph *jtbd.Graph `json:"graph"`
	Roots []*JobNode  `json:"roots"`
}

// Tree returns the graph with its jobs nested along parent links, siblings
// in sort order and solutions attached. A missing graph projects to nil.
func Tree(ctx context.Context, repo *hierarchy.Repository, graphID string) (*TreeView, error) {
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
	solutions, err := repo.SolutionsOf(ctx, graphID)
	if err != nil {
		return nil, err
	}
	byJob := make(map[string][]jtbd.Solution)
	for i := range solutions {
		byJob[solutions[i].JobID] = append(byJob[solutions[i].JobID], solutions[i])
	}

	nodes := make(map[string]*JobNode, len(jobs))
	for i := range jobs {
		nodes[jobs[i].ID] = &JobNode{
			Job:       jobs[i],
			Solutions: byJob[jobs[i].ID],
		}
	}

	view := &TreeView{Graph: graph}
	// JobsOf orders by sort order; attachment order preserves it per parent.
	for i := range jobs {
		node := nodes[jobs[i].ID]
		if jobs[i].ParentID == nil {
			view.Roots = append(view.Roots, node)
			continue
		}
		if parent, ok := nodes[*jobs[i].ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}
	return view, nil
}
