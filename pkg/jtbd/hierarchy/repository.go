// Package hierarchy is the write path and query surface for the job tree.
// All mutations go through it; multi-statement operations run inside one
// storage transaction so a competing reader never observes a half-applied
// shift of sibling sort orders.
//
// The repository performs no locking of its own. Atomicity rests on the
// storage transaction; two concurrent mutations of the same sibling set can
// still race between precondition read and commit. That limitation is
// accepted, callers needing stronger guarantees must serialize externally.
package hierarchy

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/store"
)

// Repository exposes parent/child navigation, level-scoped queries and the
// sort-order mutation algorithms over the entity stores.
type Repository struct {
	db *store.DB
	q  store.DBTX

	graphs    *store.Store[jtbd.Graph]
	jobs      *store.Store[jtbd.Job]
	solutions *store.Store[jtbd.Solution]
	edges     *store.Store[jtbd.Edge]
}

// New builds a repository over an open database handle.
func New(db *store.DB) *Repository {
	return &Repository{
		db:        db,
		q:         db.DB,
		graphs:    store.MustNew(db, graphMapping()),
		jobs:      store.MustNew(db, jobMapping()),
		solutions: store.MustNew(db, solutionMapping()),
		edges:     store.MustNew(db, edgeMapping()),
	}
}

func (r *Repository) bind(tx *sql.Tx) *Repository {
	return &Repository{
		db:        r.db,
		q:         tx,
		graphs:    r.graphs.WithTx(tx),
		jobs:      r.jobs.WithTx(tx),
		solutions: r.solutions.WithTx(tx),
		edges:     r.edges.WithTx(tx),
	}
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *Repository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	if err := fn(r.bind(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateGraphParams describes a new decomposition session. The core job
// (and the optional big job) are created together with the graph row in a
// single transaction.
type CreateGraphParams struct {
	Language           string
	SegmentDescription string
	CoreJob            jtbd.Job
	BigJob             *jtbd.Job
	Warnings           []string
}

// CreateGraph atomically creates the graph with its core (and optional big)
// job and wires the root references.
func (r *Repository) CreateGraph(ctx context.Context, params CreateGraphParams) (*jtbd.Graph, error) {
	var out *jtbd.Graph
	err := r.inTx(ctx, func(tx *Repository) error {
		graph := jtbd.Graph{
			Language:           params.Language,
			SegmentDescription: params.SegmentDescription,
			CoreJobText:        params.CoreJob.Formulation,
			Warnings:           params.Warnings,
		}
		if params.BigJob != nil {
			text := params.BigJob.Formulation
			graph.BigJobText = &text
		}
		created, err := tx.graphs.Create(ctx, graph)
		if err != nil {
			return err
		}

		patch := store.Patch{}
		if params.BigJob != nil {
			big := *params.BigJob
			big.GraphID = created.ID
			big.ParentID = nil
			big.Level = jtbd.LevelBig
			big.Phase = jtbd.PhaseDuring
			big.SortOrder = 0
			bigCreated, err := tx.createJobRow(ctx, big)
			if err != nil {
				return err
			}
			patch["bigJobId"] = bigCreated.ID
			params.CoreJob.ParentID = &bigCreated.ID
		}

		core := params.CoreJob
		core.GraphID = created.ID
		core.Level = jtbd.LevelCore
		core.Phase = jtbd.PhaseDuring
		core.SortOrder = 0
		coreCreated, err := tx.createJobRow(ctx, core)
		if err != nil {
			return err
		}
		patch["coreJobId"] = coreCreated.ID

		updated, err := tx.graphs.Update(ctx, created.ID, patch)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetGraph returns a graph or ErrNotFound.
func (r *Repository) GetGraph(ctx context.Context, graphID string) (*jtbd.Graph, error) {
	graph, err := r.graphs.FindByID(ctx, graphID)
	if err != nil {
		return nil, err
	}
	if graph == nil {
		return nil, fmt.Errorf("graph %s: %w", graphID, jtbd.ErrNotFound)
	}
	return graph, nil
}

// FindGraph returns nil without error when the graph does not exist. The
// view generator uses this to project absence as null.
func (r *Repository) FindGraph(ctx context.Context, graphID string) (*jtbd.Graph, error) {
	return r.graphs.FindByID(ctx, graphID)
}

// ListGraphs returns all graphs, newest first.
func (r *Repository) ListGraphs(ctx context.Context, limit, offset int) ([]jtbd.Graph, error) {
	return r.graphs.FindMany(ctx, store.Query{
		OrderBy: "createdAt",
		Desc:    true,
		Limit:   limit,
		Offset:  offset,
	})
}

// UpdateGraph patches graph fields (warnings, input metadata).
func (r *Repository) UpdateGraph(ctx context.Context, graphID string, patch store.Patch) (*jtbd.Graph, error) {
	updated, err := r.graphs.Update(ctx, graphID, patch)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("graph %s: %w", graphID, jtbd.ErrNotFound)
	}
	return updated, nil
}

// DeleteGraph removes a graph and, through the storage cascade, its jobs,
// solutions and edges.
func (r *Repository) DeleteGraph(ctx context.Context, graphID string) error {
	removed, err := r.graphs.Delete(ctx, graphID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("graph %s: %w", graphID, jtbd.ErrNotFound)
	}
	return nil
}

// GetJob returns a job or ErrNotFound.
func (r *Repository) GetJob(ctx context.Context, jobID string) (*jtbd.Job, error) {
	job, err := r.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s: %w", jobID, jtbd.ErrNotFound)
	}
	return job, nil
}

// ChildrenOf returns the direct children of a job ordered by sort order.
func (r *Repository) ChildrenOf(ctx context.Context, parentID string) ([]jtbd.Job, error) {
	return r.jobs.FindMany(ctx, store.Query{
		Filter:  map[string]any{"parentId": parentID},
		OrderBy: "sortOrder",
	})
}

// RootsOf returns the parentless jobs of a graph ordered by sort order.
func (r *Repository) RootsOf(ctx context.Context, graphID string) ([]jtbd.Job, error) {
	return r.jobs.FindMany(ctx, store.Query{
		Filter:  map[string]any{"graphId": graphID, "parentId": nil},
		OrderBy: "sortOrder",
	})
}

// ByLevel returns a graph's jobs of one level, ordered by sort order.
func (r *Repository) ByLevel(ctx context.Context, graphID string, level jtbd.Level) ([]jtbd.Job, error) {
	return r.jobs.FindMany(ctx, store.Query{
		Filter:  map[string]any{"graphId": graphID, "level": string(level)},
		OrderBy: "sortOrder",
	})
}

// ByPhase returns a graph's jobs of one phase, ordered by sort order.
func (r *Repository) ByPhase(ctx context.Context, graphID string, phase jtbd.Phase) ([]jtbd.Job, error) {
	return r.jobs.FindMany(ctx, store.Query{
		Filter:  map[string]any{"graphId": graphID, "phase": string(phase)},
		OrderBy: "sortOrder",
	})
}

// JobsOf returns every job of a graph. Validation, autofix and the views
// consume this.
func (r *Repository) JobsOf(ctx context.Context, graphID string) ([]jtbd.Job, error) {
	return r.jobs.FindMany(ctx, store.Query{
		Filter:  map[string]any{"graphId": graphID},
		OrderBy: "sortOrder",
	})
}

// CountChildren returns the number of direct children of a job.
func (r *Repository) CountChildren(ctx context.Context, parentID string) (int64, error) {
	return r.jobs.Count(ctx, map[string]any{"parentId": parentID})
}

// NextSortOrder returns 1 + max(sortOrder) over the current siblings, or 0
// when the scope is empty.
func (r *Repository) NextSortOrder(ctx context.Context, graphID string, parentID *string) (int, error) {
	return r.nextSortOrder(ctx, r.q, graphID, parentID)
}

func (r *Repository) nextSortOrder(ctx context.Context, q store.DBTX, graphID string, parentID *string) (int, error) {
	query := "SELECT COALESCE(MAX(sort_order) + 1, 0) FROM jobs WHERE graph_id = ? AND parent_id = ?"
	args := []any{graphID, parentID}
	if parentID == nil {
		query = "SELECT COALESCE(MAX(sort_order) + 1, 0) FROM jobs WHERE graph_id = ? AND parent_id IS NULL"
		args = args[:1]
	}
	var next int
	if err := q.QueryRowContext(ctx, r.db.Dialect.Rebind(query), args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	return next, nil
}

// UpdateJob patches mutable job fields. Structural fields (level, graph,
// parent, sort order) are rejected; those change only through the dedicated
// mutation paths. Phase is mutable on small jobs only: big and core jobs
// stay "during" and micro jobs follow their small parent, so a small job's
// phase change propagates to its micro children in the same transaction.
func (r *Repository) UpdateJob(ctx context.Context, jobID string, patch store.Patch) (*jtbd.Job, error) {
	for _, field := range []string{"level", "graphId", "parentId", "sortOrder"} {
		if _, ok := patch[field]; ok {
			return nil, fmt.Errorf("field %s is structural: %w", field, jtbd.ErrInvalidHierarchy)
		}
	}

	phase, phasePatched := patch["phase"]
	if !phasePatched {
		updated, err := r.jobs.Update(ctx, jobID, patch)
		if err != nil {
			return nil, err
		}
		if updated == nil {
			return nil, fmt.Errorf("job %s: %w", jobID, jtbd.ErrNotFound)
		}
		return updated, nil
	}

	var out *jtbd.Job
	err := r.inTx(ctx, func(tx *Repository) error {
		job, err := tx.jobs.FindByID(ctx, jobID)
		if err != nil {
			return err
		}
		if job == nil {
			return fmt.Errorf("job %s: %w", jobID, jtbd.ErrNotFound)
		}
		switch job.Level {
		case jtbd.LevelBig, jtbd.LevelCore:
			return fmt.Errorf("%s job phase is fixed: %w", job.Level, jtbd.ErrInvalidHierarchy)
		case jtbd.LevelMicro:
			return fmt.Errorf("micro job phase follows its small parent: %w", jtbd.ErrInvalidHierarchy)
		}

		updated, err := tx.jobs.Update(ctx, jobID, patch)
		if err != nil {
			return err
		}
		children, err := tx.ChildrenOf(ctx, jobID)
		if err != nil {
			return err
		}
		for i := range children {
			if _, err := tx.jobs.Update(ctx, children[i].ID, store.Patch{"phase": phase}); err != nil {
				return err
			}
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteJob removes a job; descendants, solutions and edges referencing it
// go with it through the storage cascade.
func (r *Repository) DeleteJob(ctx context.Context, jobID string) error {
	removed, err := r.jobs.Delete(ctx, jobID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("job %s: %w", jobID, jtbd.ErrNotFound)
	}
	return nil
}

// createJobRow validates hierarchy invariants and inserts one job. Caller
// is responsible for sort order and for running inside a transaction when
// the insert is part of a larger mutation.
func (tx *Repository) createJobRow(ctx context.Context, job jtbd.Job) (*jtbd.Job, error) {
	if err := tx.validateJob(ctx, &job); err != nil {
		return nil, err
	}
	return tx.jobs.Create(ctx, job)
}

// validateJob enforces the parent/level/graph-membership invariants and the
// fixed/inherited phase rules before any write.
func (tx *Repository) validateJob(ctx context.Context, job *jtbd.Job) error {
	if !job.Level.Valid() {
		return fmt.Errorf("level %q: %w", job.Level, jtbd.ErrInvalidHierarchy)
	}
	if job.Cadence == "" {
		job.Cadence = jtbd.CadenceOnce
	}
	if !job.Cadence.Valid() {
		return fmt.Errorf("cadence %q: %w", job.Cadence, jtbd.ErrInvalidHierarchy)
	}
	if job.Phase == "" {
		job.Phase = jtbd.PhaseUnknown
	}
	if !job.Phase.Valid() {
		return fmt.Errorf("phase %q: %w", job.Phase, jtbd.ErrInvalidHierarchy)
	}

	graph, err := tx.graphs.FindByID(ctx, job.GraphID)
	if err != nil {
		return err
	}
	if graph == nil {
		return fmt.Errorf("graph %s: %w", job.GraphID, jtbd.ErrNotFound)
	}

	var parent *jtbd.Job
	if job.ParentID != nil {
		parent, err = tx.jobs.FindByID(ctx, *job.ParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return fmt.Errorf("parent %s: %w", *job.ParentID, jtbd.ErrNotFound)
		}
		if parent.GraphID != job.GraphID {
			return fmt.Errorf("parent %s belongs to graph %s: %w", parent.ID, parent.GraphID, jtbd.ErrInvalidHierarchy)
		}
	}

	switch job.Level {
	case jtbd.LevelBig:
		if parent != nil {
			return fmt.Errorf("big job cannot have a parent: %w", jtbd.ErrInvalidHierarchy)
		}
		job.Phase = jtbd.PhaseDuring
	case jtbd.LevelCore:
		if parent != nil && parent.Level != jtbd.LevelBig {
			return fmt.Errorf("core job parent must be the big job: %w", jtbd.ErrInvalidHierarchy)
		}
		job.Phase = jtbd.PhaseDuring
	case jtbd.LevelSmall:
		if parent == nil || parent.Level != jtbd.LevelCore {
			return fmt.Errorf("small job parent must be the core job: %w", jtbd.ErrInvalidHierarchy)
		}
	case jtbd.LevelMicro:
		if parent == nil || parent.Level != jtbd.LevelSmall {
			return fmt.Errorf("micro job parent must be a small job: %w", jtbd.ErrInvalidHierarchy)
		}
		// Micro jobs inherit the temporal phase of their small parent.
		job.Phase = parent.Phase
	}
	return nil
}

// CreateJob appends one job to the end of its sibling set. Sort order is
// assigned inside the transaction, the caller never supplies it.
func (r *Repository) CreateJob(ctx context.Context, job jtbd.Job) (*jtbd.Job, error) {
	var out *jtbd.Job
	err := r.inTx(ctx, func(tx *Repository) error {
		next, err := tx.nextSortOrder(ctx, tx.q, job.GraphID, job.ParentID)
		if err != nil {
			return err
		}
		job.SortOrder = next
		row, err := tx.createJobRow(ctx, job)
		if err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMany bulk-inserts a batch of sibling jobs in one transaction,
// assigning sort order by input position on top of whatever siblings
// already exist, so the contiguous-from-zero invariant holds either way.
// Deliberately no sibling cap here: initial batch generation is bounded by
// validation warnings only, the hard cap applies to single insertion.
func (r *Repository) CreateMany(ctx context.Context, batch []jtbd.Job) ([]jtbd.Job, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	first := batch[0]
	for i := range batch {
		if batch[i].GraphID != first.GraphID ||
			!sameParent(batch[i].ParentID, first.ParentID) ||
			batch[i].Level != first.Level {
			return nil, fmt.Errorf("batch is not one sibling set: %w", jtbd.ErrInvalidHierarchy)
		}
	}

	var created []jtbd.Job
	err := r.inTx(ctx, func(tx *Repository) error {
		base, err := tx.nextSortOrder(ctx, tx.q, first.GraphID, first.ParentID)
		if err != nil {
			return err
		}
		created = make([]jtbd.Job, 0, len(batch))
		for i := range batch {
			job := batch[i]
			job.SortOrder = base + i
			row, err := tx.createJobRow(ctx, job)
			if err != nil {
				return err
			}
			created = append(created, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// InsertAfter inserts one job as the immediate next sibling of the anchor,
// under the same parent in the same graph. Existing siblings past the
// anchor shift up by one inside the same transaction, so sort orders stay
// unique and contiguous. Exceeding the per-level sibling maximum is
// rejected before any write.
func (r *Repository) InsertAfter(ctx context.Context, anchorID string, payload jtbd.Job) (*jtbd.Job, error) {
	var out *jtbd.Job
	err := r.inTx(ctx, func(tx *Repository) error {
		anchor, err := tx.jobs.FindByID(ctx, anchorID)
		if err != nil {
			return err
		}
		if anchor == nil {
			return fmt.Errorf("anchor %s: %w", anchorID, jtbd.ErrNotFound)
		}
		if payload.Level != "" && payload.Level != anchor.Level {
			return fmt.Errorf("sibling level %q differs from anchor level %q: %w",
				payload.Level, anchor.Level, jtbd.ErrInvalidHierarchy)
		}
		payload.Level = anchor.Level
		payload.GraphID = anchor.GraphID
		payload.ParentID = anchor.ParentID

		if anchor.ParentID != nil {
			siblings, err := tx.jobs.Count(ctx, map[string]any{"parentId": *anchor.ParentID})
			if err != nil {
				return err
			}
			if limit, capped := siblingCap(anchor.Level); capped && siblings >= int64(limit) {
				return fmt.Errorf("%s jobs are capped at %d per parent: %w", anchor.Level, limit, jtbd.ErrLimitExceeded)
			}
		}

		shift := "UPDATE jobs SET sort_order = sort_order + 1, updated_at = ? WHERE graph_id = ? AND parent_id = ? AND sort_order > ?"
		args := []any{time.Now().UTC(), anchor.GraphID, anchor.ParentID, anchor.SortOrder}
		if anchor.ParentID == nil {
			shift = "UPDATE jobs SET sort_order = sort_order + 1, updated_at = ? WHERE graph_id = ? AND parent_id IS NULL AND sort_order > ?"
			args = []any{time.Now().UTC(), anchor.GraphID, anchor.SortOrder}
		}
		if _, err := tx.q.ExecContext(ctx, tx.db.Dialect.Rebind(shift), args...); err != nil {
			return fmt.Errorf("shift siblings: %w", err)
		}

		payload.SortOrder = anchor.SortOrder + 1
		row, err := tx.createJobRow(ctx, payload)
		if err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reorder rewrites the sort order of one sibling set to match the given id
// sequence. The list must be exactly the current sibling set, no
// duplicates, nothing missing, nothing extra; otherwise the call is
// rejected before any write.
func (r *Repository) Reorder(ctx context.Context, orderedJobIDs []string) error {
	if len(orderedJobIDs) == 0 {
		return fmt.Errorf("empty reorder set: %w", jtbd.ErrInvalidHierarchy)
	}
	return r.inTx(ctx, func(tx *Repository) error {
		probe, err := tx.jobs.FindByID(ctx, orderedJobIDs[0])
		if err != nil {
			return err
		}
		if probe == nil {
			return fmt.Errorf("job %s: %w", orderedJobIDs[0], jtbd.ErrNotFound)
		}

		filter := map[string]any{"graphId": probe.GraphID}
		if probe.ParentID != nil {
			filter["parentId"] = *probe.ParentID
		} else {
			filter["parentId"] = nil
		}
		siblings, err := tx.jobs.FindMany(ctx, store.Query{Filter: filter, OrderBy: "sortOrder"})
		if err != nil {
			return err
		}

		if len(orderedJobIDs) != len(siblings) {
			return fmt.Errorf("reorder set has %d ids, sibling set has %d: %w",
				len(orderedJobIDs), len(siblings), jtbd.ErrInvalidHierarchy)
		}
		current := make(map[string]struct{}, len(siblings))
		for i := range siblings {
			current[siblings[i].ID] = struct{}{}
		}
		seen := make(map[string]struct{}, len(orderedJobIDs))
		for _, id := range orderedJobIDs {
			if _, dup := seen[id]; dup {
				return fmt.Errorf("duplicate id %s in reorder set: %w", id, jtbd.ErrInvalidHierarchy)
			}
			seen[id] = struct{}{}
			if _, ok := current[id]; !ok {
				return fmt.Errorf("id %s is not in the sibling set: %w", id, jtbd.ErrInvalidHierarchy)
			}
		}

		now := time.Now().UTC()
		update := tx.db.Dialect.Rebind("UPDATE jobs SET sort_order = ?, updated_at = ? WHERE id = ?")
		for i, id := range orderedJobIDs {
			if _, err := tx.q.ExecContext(ctx, update, i, now, id); err != nil {
				return fmt.Errorf("reorder %s: %w", id, err)
			}
		}
		return nil
	})
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func siblingCap(level jtbd.Level) (int, bool) {
	switch level {
	case jtbd.LevelSmall:
		return jtbd.MaxSmallJobs, true
	case jtbd.LevelMicro:
		return jtbd.MaxMicroJobs, true
	}
	return 0, false
}
