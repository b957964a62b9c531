package views

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/jtbd/hierarchy"
	"github.com/vladprrs/ajtbd/pkg/store"
)

func newViewRepo(t *testing.T) *hierarchy.Repository {
	t.Helper()
	db, err := store.Open(context.Background(), store.OpenParams{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return hierarchy.New(db)
}

// newViewGraph builds a graph with two small jobs in different phases, two
// micro jobs under the first small job and one solution on the first micro
// job.
func newViewGraph(t *testing.T, repo *hierarchy.Repository) (*jtbd.Graph, []jtbd.Job, []jtbd.Job) {
	t.Helper()
	ctx := context.Background()

	graph, err := repo.CreateGraph(ctx, hierarchy.CreateGraphParams{
		Language:           "en",
		SegmentDescription: "commuters switching to cycling",
		CoreJob: jtbd.Job{
			Formulation: "I want to commute by bike",
			Label:       "Commute by bike",
		},
	})
	if err != nil {
		t.Fatalf("create graph: %v", err)
	}

	smalls, err := repo.CreateMany(ctx, []jtbd.Job{
		{
			GraphID:     graph.ID,
			ParentID:    graph.CoreJobID,
			Level:       jtbd.LevelSmall,
			Formulation: "I want to plan a safe route",
			Label:       "Plan a safe route",
			Phase:       jtbd.PhaseBefore,
		},
		{
			GraphID:     graph.ID,
			ParentID:    graph.CoreJobID,
			Level:       jtbd.LevelSmall,
			Formulation: "I want to lock the bike securely",
			Label:       "Lock the bike securely",
			Phase:       jtbd.PhaseAfter,
		},
	})
	if err != nil {
		t.Fatalf("create small jobs: %v", err)
	}

	micros, err := repo.CreateMany(ctx, []jtbd.Job{
		{
			GraphID:     graph.ID,
			ParentID:    &smalls[0].ID,
			Level:       jtbd.LevelMicro,
			Formulation: "I want to check the bike lanes",
			Label:       "Check the bike lanes",
		},
		{
			GraphID:     graph.ID,
			ParentID:    &smalls[0].ID,
			Level:       jtbd.LevelMicro,
			Formulation: "I want to time a trial ride",
			Label:       "Time a trial ride",
		},
	})
	if err != nil {
		t.Fatalf("create micro jobs: %v", err)
	}

	if _, err := repo.AddSolution(ctx, jtbd.Solution{
		JobID: micros[0].ID,
		Type:  jtbd.SolutionProduct,
		Title: "Route planner app",
	}); err != nil {
		t.Fatalf("add solution: %v", err)
	}
	return graph, smalls, micros
}

func TestTimeline(t *testing.T) {
	repo := newViewRepo(t)
	ctx := context.Background()
	graph, smalls, micros := newViewGraph(t, repo)

	view, err := Timeline(ctx, repo, graph.ID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if view == nil || view.Graph == nil || view.Graph.ID != graph.ID {
		t.Fatal("view must carry the graph")
	}
	if view.TotalJobs != 5 || view.SmallJobs != 2 || view.MicroJobs != 2 {
		t.Fatalf("counts = %d/%d/%d", view.TotalJobs, view.SmallJobs, view.MicroJobs)
	}

	if len(view.Phases) != 4 {
		t.Fatalf("expected all four phase groups, got %d", len(view.Phases))
	}
	wantOrder := []jtbd.Phase{jtbd.PhaseBefore, jtbd.PhaseDuring, jtbd.PhaseAfter, jtbd.PhaseUnknown}
	groups := map[jtbd.Phase]PhaseGroup{}
	for i, group := range view.Phases {
		if group.Phase != wantOrder[i] {
			t.Fatalf("phase group %d is %q, want %q", i, group.Phase, wantOrder[i])
		}
		groups[group.Phase] = group
	}

	before := groups[jtbd.PhaseBefore]
	if len(before.Jobs) != 1 || before.Jobs[0].ID != smalls[0].ID {
		t.Fatalf("before group = %+v", before.Jobs)
	}
	if len(before.Jobs[0].MicroJobs) != 2 {
		t.Fatalf("micro jobs nested = %d", len(before.Jobs[0].MicroJobs))
	}
	if before.Jobs[0].MicroJobs[0].ID != micros[0].ID || before.Jobs[0].MicroJobs[1].ID != micros[1].ID {
		t.Fatal("micro jobs must keep sibling order")
	}
	if before.Jobs[0].MicroJobs[0].SolutionCount != 1 {
		t.Fatalf("solutionCount = %d", before.Jobs[0].MicroJobs[0].SolutionCount)
	}

	after := groups[jtbd.PhaseAfter]
	if len(after.Jobs) != 1 || after.Jobs[0].ID != smalls[1].ID {
		t.Fatalf("after group = %+v", after.Jobs)
	}
	if len(groups[jtbd.PhaseDuring].Jobs) != 0 || len(groups[jtbd.PhaseUnknown].Jobs) != 0 {
		t.Fatal("empty phases must stay empty")
	}
}

func TestTimelineMissingGraph(t *testing.T) {
	repo := newViewRepo(t)
	view, err := Timeline(context.Background(), repo, "no-such-graph")
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if view != nil {
		t.Fatal("missing graph must project to nil")
	}
}

func TestTree(t *testing.T) {
	repo := newViewRepo(t)
	ctx := context.Background()
	graph, smalls, micros := newViewGraph(t, repo)

	view, err := Tree(ctx, repo, graph.ID)
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if view == nil || len(view.Roots) != 1 {
		t.Fatalf("expected one root, got %+v", view)
	}

	core := view.Roots[0]
	if core.ID != *graph.CoreJobID {
		t.Fatalf("root = %s, want core job", core.ID)
	}
	if len(core.Children) != 2 {
		t.Fatalf("core children = %d", len(core.Children))
	}
	if core.Children[0].ID != smalls[0].ID || core.Children[1].ID != smalls[1].ID {
		t.Fatal("small jobs must keep sibling order")
	}

	route := core.Children[0]
	if len(route.Children) != 2 {
		t.Fatalf("micro children = %d", len(route.Children))
	}
	if len(route.Children[0].Solutions) != 1 || route.Children[0].Solutions[0].Title != "Route planner app" {
		t.Fatalf("solutions = %+v", route.Children[0].Solutions)
	}
	if route.Children[0].ID != micros[0].ID {
		t.Fatal("micro order lost")
	}
}

func TestTreeMissingGraph(t *testing.T) {
	repo := newViewRepo(t)
	view, err := Tree(context.Background(), repo, "no-such-graph")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if view != nil {
		t.Fatal("missing graph must project to nil")
	}
}

func TestFlowDiagram(t *testing.T) {
	repo := newViewRepo(t)
	ctx := context.Background()
	graph, smalls, micros := newViewGraph(t, repo)

	if _, err := repo.AddEdge(ctx, jtbd.Edge{
		GraphID:   graph.ID,
		FromJobID: smalls[0].ID,
		ToJobID:   smalls[1].ID,
		Type:      jtbd.EdgeDependsOn,
	}); err != nil {
		t.Fatalf("add edge: %v", err)
	}

	dot, err := FlowDiagram(ctx, repo, graph.ID)
	if err != nil {
		t.Fatalf("diagram: %v", err)
	}

	for _, want := range []string{
		"digraph jobs {",
		"rankdir=LR",
		"subgraph cluster_before",
		"subgraph cluster_after",
		fmt.Sprintf("%q [label=%q]", smalls[0].ID, "Plan a safe route"),
		fmt.Sprintf("%q [label=%q, shape=note]", micros[0].ID, "Check the bike lanes"),
		fmt.Sprintf("%q -> %q [style=dotted, arrowhead=none]", smalls[0].ID, micros[0].ID),
		fmt.Sprintf("%q -> %q [style=dashed, label=\"depends on\"]", smalls[0].ID, smalls[1].ID),
	} {
		if !strings.Contains(dot, want) {
			t.Fatalf("diagram missing %q:\n%s", want, dot)
		}
	}

	// Phases without small jobs must not produce clusters.
	if strings.Contains(dot, "cluster_during") || strings.Contains(dot, "cluster_unknown") {
		t.Fatalf("unexpected empty cluster:\n%s", dot)
	}
}

func TestFlowDiagramMissingGraph(t *testing.T) {
	repo := newViewRepo(t)
	dot, err := FlowDiagram(context.Background(), repo, "no-such-graph")
	if err != nil {
		t.Fatalf("diagram: %v", err)
	}
	if dot != "" {
		t.Fatalf("missing graph must render empty, got %q", dot)
	}
}

func TestNodeLabel(t *testing.T) {
	tests := []struct {
		name string
		job  jtbd.Job
		want string
	}{
		{"label preferred", jtbd.Job{Label: "Plan the route", Formulation: "I want to plan the route"}, "Plan the route"},
		{"falls back to formulation", jtbd.Job{Formulation: "I want to plan the route"}, "I want to plan the route"},
		{"quotes and brackets", jtbd.Job{Label: `Check "bike" [lanes]`}, "Check 'bike' (lanes)"},
		{"collapses whitespace", jtbd.Job{Label: "Plan \n the \t route"}, "Plan the route"},
		{"caps length", jtbd.Job{Label: strings.Repeat("x", 80)}, strings.Repeat("x", 60) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nodeLabel(tt.job); got != tt.want {
				t.Fatalf("nodeLabel = %q, want %q", got, tt.want)
			}
		})
	}
}
