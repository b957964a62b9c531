package hierarchy

import (
	"time"

	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/store"
)

// Statically declared column-to-field mappings. These tables are the only
// place where storage names and programmatic names meet; a mismatch fails
// at store construction, not at query time.

func graphMapping() store.Mapping[jtbd.Graph] {
	return store.Mapping[jtbd.Graph]{
		Table: "graphs",
		Columns: []store.Column[jtbd.Graph]{
			{Name: "id", Field: "id", Ptr: func(g *jtbd.Graph) any { return &g.ID }},
			{Name: "language", Field: "language", Ptr: func(g *jtbd.Graph) any { return &g.Language }},
			{Name: "segment_description", Field: "segmentDescription", Ptr: func(g *jtbd.Graph) any { return &g.SegmentDescription }},
			{Name: "core_job_text", Field: "coreJobText", Ptr: func(g *jtbd.Graph) any { return &g.CoreJobText }},
			{Name: "big_job_text", Field: "bigJobText", Ptr: func(g *jtbd.Graph) any { return &g.BigJobText }},
			{Name: "core_job_id", Field: "coreJobId", Ptr: func(g *jtbd.Graph) any { return &g.CoreJobID }},
			{Name: "big_job_id", Field: "bigJobId", Ptr: func(g *jtbd.Graph) any { return &g.BigJobID }},
			{Name: "warnings", Field: "warnings", Ptr: func(g *jtbd.Graph) any { return &g.Warnings }},
			{Name: "created_at", Field: "createdAt", Ptr: func(g *jtbd.Graph) any { return &g.CreatedAt }},
			{Name: "updated_at", Field: "updatedAt", Ptr: func(g *jtbd.Graph) any { return &g.UpdatedAt }},
		},
		ID:        func(g *jtbd.Graph) *string { return &g.ID },
		CreatedAt: func(g *jtbd.Graph) *time.Time { return &g.CreatedAt },
		UpdatedAt: func(g *jtbd.Graph) *time.Time { return &g.UpdatedAt },
	}
}

func jobMapping() store.Mapping[jtbd.Job] {
	return store.Mapping[jtbd.Job]{
		Table: "jobs",
		Columns: []store.Column[jtbd.Job]{
			{Name: "id", Field: "id", Ptr: func(j *jtbd.Job) any { return &j.ID }},
			{Name: "graph_id", Field: "graphId", Ptr: func(j *jtbd.Job) any { return &j.GraphID }},
			{Name: "parent_id", Field: "parentId", Ptr: func(j *jtbd.Job) any { return &j.ParentID }},
			{Name: "level", Field: "level", Ptr: func(j *jtbd.Job) any { return &j.Level }},
			{Name: "formulation", Field: "formulation", Ptr: func(j *jtbd.Job) any { return &j.Formulation }},
			{Name: "label", Field: "label", Ptr: func(j *jtbd.Job) any { return &j.Label }},
			{Name: "phase", Field: "phase", Ptr: func(j *jtbd.Job) any { return &j.Phase }},
			{Name: "cadence", Field: "cadence", Ptr: func(j *jtbd.Job) any { return &j.Cadence }},
			{Name: "cadence_hint", Field: "cadenceHint", Ptr: func(j *jtbd.Job) any { return &j.CadenceHint }},
			{Name: "scores", Field: "scores", Ptr: func(j *jtbd.Job) any { return &j.Scores }},
			{Name: "sort_order", Field: "sortOrder", Ptr: func(j *jtbd.Job) any { return &j.SortOrder }},
			{Name: "when_text", Field: "whenText", Ptr: func(j *jtbd.Job) any { return &j.WhenText }},
			{Name: "want", Field: "want", Ptr: func(j *jtbd.Job) any { return &j.Want }},
			{Name: "so_that", Field: "soThat", Ptr: func(j *jtbd.Job) any { return &j.SoThat }},
			{Name: "suggested_next", Field: "suggestedNext", Ptr: func(j *jtbd.Job) any { return &j.SuggestedNext }},
			{Name: "created_at", Field: "createdAt", Ptr: func(j *jtbd.Job) any { return &j.CreatedAt }},
			{Name: "updated_at", Field: "updatedAt", Ptr: func(j *jtbd.Job) any { return &j.UpdatedAt }},
		},
		ID:        func(j *jtbd.Job) *string { return &j.ID },
		CreatedAt: func(j *jtbd.Job) *time.Time { return &j.CreatedAt },
		UpdatedAt: func(j *jtbd.Job) *time.Time { return &j.UpdatedAt },
		Check:     func(j *jtbd.Job) error { return j.CheckRow() },
	}
}

func solutionMapping() store.Mapping[jtbd.Solution] {
	return store.Mapping[jtbd.Solution]{
		Table: "solutions",
		Columns: []store.Column[jtbd.Solution]{
			{Name: "id", Field: "id", Ptr: func(s *jtbd.Solution) any { return &s.ID }},
			{Name: "job_id", Field: "jobId", Ptr: func(s *jtbd.Solution) any { return &s.JobID }},
			{Name: "type", Field: "type", Ptr: func(s *jtbd.Solution) any { return &s.Type }},
			{Name: "title", Field: "title", Ptr: func(s *jtbd.Solution) any { return &s.Title }},
			{Name: "description", Field: "description", Ptr: func(s *jtbd.Solution) any { return &s.Description }},
			{Name: "created_at", Field: "createdAt", Ptr: func(s *jtbd.Solution) any { return &s.CreatedAt }},
			{Name: "updated_at", Field: "updatedAt", Ptr: func(s *jtbd.Solution) any { return &s.UpdatedAt }},
		},
		ID:        func(s *jtbd.Solution) *string { return &s.ID },
		CreatedAt: func(s *jtbd.Solution) *time.Time { return &s.CreatedAt },
		UpdatedAt: func(s *jtbd.Solution) *time.Time { return &s.UpdatedAt },
		Check:     func(s *jtbd.Solution) error { return s.CheckRow() },
	}
}

func edgeMapping() store.Mapping[jtbd.Edge] {
	return store.Mapping[jtbd.Edge]{
		Table: "edges",
		Columns: []store.Column[jtbd.Edge]{
			{Name: "id", Field: "id", Ptr: func(e *jtbd.Edge) any { return &e.ID }},
			{Name: "graph_id", Field: "graphId", Ptr: func(e *jtbd.Edge) any { return &e.GraphID }},
			{Name: "from_job_id", Field: "fromJobId", Ptr: func(e *jtbd.Edge) any { return &e.FromJobID }},
			{Name: "to_job_id", Field: "toJobId", Ptr: func(e *jtbd.Edge) any { return &e.ToJobID }},
			{Name: "type", Field: "type", Ptr: func(e *jtbd.Edge) any { return &e.Type }},
			{Name: "label", Field: "label", Ptr: func(e *jtbd.Edge) any { return &e.Label }},
			{Name: "created_at", Field: "createdAt", Ptr: func(e *jtbd.Edge) any { return &e.CreatedAt }},
			{Name: "updated_at", Field: "updatedAt", Ptr: func(e *jtbd.Edge) any { return &e.UpdatedAt }},
		},
		ID:        func(e *jtbd.Edge) *string { return &e.ID },
		CreatedAt: func(e *jtbd.Edge) *time.Time { return &e.CreatedAt },
		UpdatedAt: func(e *jtbd.Edge) *time.Time { return &e.UpdatedAt },
		Check:     func(e *jtbd.Edge) error { return e.CheckRow() },
	}
}
