package hierarchy

import (
	"context"
	"fmt"

	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/store"
)

// AddEdge creates an explicit relation between two jobs of the same graph.
func (r *Repository) AddEdge(ctx context.Context, edge jtbd.Edge) (*jtbd.Edge, error) {
	if !edge.Type.Valid() {
		return nil, fmt.Errorf("edge type %q: %w", edge.Type, jtbd.ErrInvalidHierarchy)
	}
	from, err := r.jobs.FindByID(ctx, edge.FromJobID)
	if err != nil {
		return nil, err
	}
	if from == nil {
		return nil, fmt.Errorf("job %s: %w", edge.FromJobID, jtbd.ErrNotFound)
	}
	to, err := r.jobs.FindByID(ctx, edge.ToJobID)
	if err != nil {
		return nil, err
	}
	if to == nil {
		return nil, fmt.Errorf("job %s: %w", edge.ToJobID, jtbd.ErrNotFound)
	}
	if from.GraphID != to.GraphID || from.GraphID != edge.GraphID {
		return nil, fmt.Errorf("edge endpoints span graphs: %w", jtbd.ErrInvalidHierarchy)
	}
	return r.edges.Create(ctx, edge)
}

// EdgesOf returns all explicit edges of a graph.
func (r *Repository) EdgesOf(ctx context.Context, graphID string) ([]jtbd.Edge, error) {
	return r.edges.FindMany(ctx, store.Query{
		Filter:  map[string]any{"graphId": graphID},
		OrderBy: "createdAt",
	})
}

// DeleteEdge removes an edge or reports ErrNotFound.
func (r *Repository) DeleteEdge(ctx context.Context, edgeID string) error {
	removed, err := r.edges.Delete(ctx, edgeID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("edge %s: %w", edgeID, jtbd.ErrNotFound)
	}
	return nil
}
