package hierarchy

import (
	"context"
	"fmt"

	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/store"
)

// AddSolution attaches a solution to an existing job.
func (r *Repository) AddSolution(ctx context.Context, solution jtbd.Solution) (*jtbd.Solution, error) {
	if !solution.Type.Valid() {
		return nil, fmt.Errorf("solution type %q: %w", solution.Type, jtbd.ErrInvalidHierarchy)
	}
	job, err := r.jobs.FindByID(ctx, solution.JobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s: %w", solution.JobID, jtbd.ErrNotFound)
	}
	return r.solutions.Create(ctx, solution)
}

// SolutionsForJob returns a job's solutions, oldest first.
func (r *Repository) SolutionsForJob(ctx context.Context, jobID string) ([]jtbd.Solution, error) {
	return r.solutions.FindMany(ctx, store.Query{
		Filter:  map[string]any{"jobId": jobID},
		OrderBy: "createdAt",
	})
}

// DeleteSolution removes a solution or reports ErrNotFound.
func (r *Repository) DeleteSolution(ctx context.Context, solutionID string) error {
	removed, err := r.solutions.Delete(ctx, solutionID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("solution %s: %w", solutionID, jtbd.ErrNotFound)
	}
	return nil
}

// SolutionsOf returns every solution attached to a graph's jobs, oldest
// first. Callers index the result by JobID.
func (r *Repository) SolutionsOf(ctx context.Context, graphID string) ([]jtbd.Solution, error) {
	query := r.db.Dialect.Rebind(`SELECT s.id, s.job_id, s.type, s.title, s.description, s.created_at, s.updated_at
FROM solutions s
JOIN jobs j ON j.id = s.job_id
WHERE j.graph_id = ?
ORDER BY s.created_at`)
	rows, err := r.q.QueryContext(ctx, query, graphID)
	if err != nil {
		return nil, fmt.Errorf("solutions of graph: %w", err)
	}
	defer rows.Close()

	var out []jtbd.Solution
	for rows.Next() {
		var s jtbd.Solution
		if err := rows.Scan(&s.ID, &s.JobID, &s.Type, &s.Title, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("solutions of graph: %w", err)
		}
		if err := s.CheckRow(); err != nil {
			return nil, fmt.Errorf("%w: %v", jtbd.ErrCorruptRecord, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SolutionCounts returns the number of solutions per job for one graph.
func (r *Repository) SolutionCounts(ctx context.Context, graphID string) (map[string]int, error) {
	query := r.db.Dialect.Rebind(`SELECT s.job_id, COUNT(*)
FROM solutions s
JOIN jobs j ON j.id = s.job_id
WHERE j.graph_id = ?
GROUP BY s.job_id`)
	rows, err := r.q.QueryContext(ctx, query, graphID)
	if err != nil {
		return nil, fmt.Errorf("solution counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var jobID string
		var n int
		if err := rows.Scan(&jobID, &n); err != nil {
			return nil, fmt.Errorf("solution counts: %w", err)
		}
		counts[jobID] = n
	}
	return counts, rows.Err()
}
