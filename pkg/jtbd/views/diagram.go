package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/jtbd/hierarchy"
)

const maxNodeLabel = 60

// FlowDiagram renders the graph as Graphviz DOT. Small jobs sit inside
// one cluster per phase with their micro children attached below them,
// and explicit edges are styled by type. A missing graph renders to "".
func FlowDiagram(ctx context.Context, repo *hierarchy.Repository, graphID string) (string, error) {
	graph, err := repo.FindGraph(ctx, graphID)
	if err != nil {
		return "", err
	}
	if graph == nil {
		return "", nil
	}

	jobs, err := repo.JobsOf(ctx, graphID)
	if err != nil {
		return "", err
	}
	edges, err := repo.EdgesOf(ctx, graphID)
	if err != nil {
		return "", err
	}

	microByParent := make(map[string][]jtbd.Job)
	byPhase := make(map[jtbd.Phase][]jtbd.Job)
	for i := range jobs {
		job := jobs[i]
		switch job.Level {
		case jtbd.LevelSmall:
			byPhase[job.Phase] = append(byPhase[job.Phase], job)
		case jtbd.LevelMicro:
			if job.ParentID != nil {
				microByParent[*job.ParentID] = append(microByParent[*job.ParentID], job)
			}
		}
	}

	var b strings.Builder
	b.WriteString("digraph jobs {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\"];\n")

	for _, phase := range phaseOrder {
		smalls := byPhase[phase]
		if len(smalls) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  subgraph cluster_%s {\n", phase)
		fmt.Fprintf(&b, "    label=%q;\n", string(phase))
		b.WriteString("    style=dashed;\n")
		for _, small := range smalls {
			fmt.Fprintf(&b, "    %q [label=%q];\n", small.ID, nodeLabel(small))
		}
		b.WriteString("  }\n")
	}

	for _, smalls := range byPhase {
		for _, small := range smalls {
			for _, micro := range microByParent[small.ID] {
				fmt.Fprintf(&b, "  %q [label=%q, shape=note];\n", micro.ID, nodeLabel(micro))
				fmt.Fprintf(&b, "  %q -> %q [style=dotted, arrowhead=none];\n", small.ID, micro.ID)
			}
		}
	}

	for _, edge := range edges {
		fmt.Fprintf(&b, "  %q -> %q [%s];\n", edge.FromJobID, edge.ToJobID, edgeAttrs(edge.Type))
	}

	b.WriteString("}\n")
	return b.String(), nil
}

func edgeAttrs(t jtbd.EdgeType) string {
	switch t {
	case jtbd.EdgeDependsOn:
		return "style=dashed, label=\"depends on\""
	case jtbd.EdgeOptional:
		return "style=dashed, label=\"optional\""
	case jtbd.EdgeRepeats:
		return "penwidth=2, label=\"repeats\""
	default:
		return "style=solid"
	}
}

// nodeLabel picks the short label when present, sanitizes characters DOT
// is sensitive to and caps the length.
func nodeLabel(job jtbd.Job) string {
	text := job.Label
	if text == "" {
		text = job.Formulation
	}
	text = strings.NewReplacer(
		"\n", " ",
		"\r", " ",
		"\"", "'",
		"[", "(",
		"]", ")",
	).Replace(text)
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > maxNodeLabel {
		text = string(runes[:maxNodeLabel]) + "..."
	}
	return text
}
