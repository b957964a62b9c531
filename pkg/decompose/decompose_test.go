package decompose

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/vladprrs/ajtbd/pkg/ai"
	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/jtbd/hierarchy"
	"github.com/vladprrs/ajtbd/pkg/store"
)

// fakeClient replays canned JSON payloads, one per call.
type fakeClient struct {
	payloads []string
	errs     []error
	calls    int
}

func (f *fakeClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return f.errs[i]
	}
	if i >= len(f.payloads) {
		return errors.New("no payload left")
	}
	return json.Unmarshal([]byte(f.payloads[i]), out)
}

func (f *fakeClient) ResetMetrics() {}

func (f *fakeClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func newDecomposeRepo(t *testing.T) *hierarchy.Repository {
	t.Helper()
	db, err := store.Open(context.Background(), store.OpenParams{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return hierarchy.New(db)
}

func newDecomposeGraph(t *testing.T, repo *hierarchy.Repository) *jtbd.Graph {
	t.Helper()
	graph, err := repo.CreateGraph(context.Background(), hierarchy.CreateGraphParams{
		Language:           "en",
		SegmentDescription: "first-time landlords renting out a flat",
		CoreJob: jtbd.Job{
			Formulation: "I want to rent out my flat to a reliable tenant",
			Label:       "Rent out my flat to a reliable tenant",
		},
	})
	if err != nil {
		t.Fatalf("create graph: %v", err)
	}
	return graph
}

func batchPayload(n int, phase string) string {
	jobs := make([]map[string]string, 0, n)
	for i := 0; i < n; i++ {
		jobs = append(jobs, map[string]string{
			"formulation": fmt.Sprintf("I need to handle task %d", i),
			"phase":       phase,
			"cadence":     "once",
		})
	}
	data, _ := json.Marshal(map[string]any{"jobs": jobs})
	return string(data)
}

func TestSmallJobsInsertsNormalizedBatch(t *testing.T) {
	repo := newDecomposeRepo(t)
	ctx := context.Background()
	graph := newDecomposeGraph(t, repo)

	client := &fakeClient{payloads: []string{batchPayload(8, "before")}}
	svc := New(repo, client)

	created, err := svc.SmallJobs(ctx, graph.ID)
	if err != nil {
		t.Fatalf("small jobs: %v", err)
	}
	if len(created) != 8 {
		t.Fatalf("created %d jobs", len(created))
	}
	for i, job := range created {
		if job.Level != jtbd.LevelSmall {
			t.Fatalf("job %d level = %q", i, job.Level)
		}
		if job.ParentID == nil || *job.ParentID != *graph.CoreJobID {
			t.Fatalf("job %d not under the core job", i)
		}
		if job.Formulation != fmt.Sprintf("I want to handle task %d", i) {
			t.Fatalf("job %d formulation not normalized: %q", i, job.Formulation)
		}
		if job.Label != fmt.Sprintf("Handle task %d", i) {
			t.Fatalf("job %d label = %q", i, job.Label)
		}
		if job.Phase != jtbd.PhaseBefore {
			t.Fatalf("job %d phase = %q", i, job.Phase)
		}
		if job.SortOrder != i {
			t.Fatalf("job %d sortOrder = %d", i, job.SortOrder)
		}
	}

	// No warnings for an in-range batch.
	after, err := repo.GetGraph(ctx, graph.ID)
	if err != nil {
		t.Fatalf("get graph: %v", err)
	}
	if len(after.Warnings) != 0 {
		t.Fatalf("warnings = %v", after.Warnings)
	}
}

func TestSmallJobsTruncatesOversizedBatch(t *testing.T) {
	repo := newDecomposeRepo(t)
	ctx := context.Background()
	graph := newDecomposeGraph(t, repo)

	client := &fakeClient{payloads: []string{batchPayload(15, "during")}}
	svc := New(repo, client)

	created, err := svc.SmallJobs(ctx, graph.ID)
	if err != nil {
		t.Fatalf("small jobs: %v", err)
	}
	if len(created) != jtbd.MaxSmallJobs {
		t.Fatalf("created %d jobs, want truncation to %d", len(created), jtbd.MaxSmallJobs)
	}

	after, err := repo.GetGraph(ctx, graph.ID)
	if err != nil {
		t.Fatalf("get graph: %v", err)
	}
	if len(after.Warnings) != 1 {
		t.Fatalf("warnings = %v", after.Warnings)
	}
	if after.Warnings[0] != "small job generation returned 15 items, expected 8-12" {
		t.Fatalf("warning = %q", after.Warnings[0])
	}
}

func TestSmallJobsKeepsUndersizedBatch(t *testing.T) {
	repo := newDecomposeRepo(t)
	ctx := context.Background()
	graph := newDecomposeGraph(t, repo)

	client := &fakeClient{payloads: []string{batchPayload(5, "during")}}
	svc := New(repo, client)

	created, err := svc.SmallJobs(ctx, graph.ID)
	if err != nil {
		t.Fatalf("small jobs: %v", err)
	}
	if len(created) != 5 {
		t.Fatalf("created %d jobs, undersized batches are kept", len(created))
	}

	after, err := repo.GetGraph(ctx, graph.ID)
	if err != nil {
		t.Fatalf("get graph: %v", err)
	}
	if len(after.Warnings) != 1 {
		t.Fatalf("warnings = %v", after.Warnings)
	}
}

func TestSmallJobsRetriesTransientFailures(t *testing.T) {
	repo := newDecomposeRepo(t)
	graph := newDecomposeGraph(t, repo)

	client := &fakeClient{
		errs:     []error{errors.New("model overloaded"), nil},
		payloads: []string{"", batchPayload(8, "during")},
	}
	svc := New(repo, client)

	created, err := svc.SmallJobs(context.Background(), graph.ID)
	if err != nil {
		t.Fatalf("small jobs: %v", err)
	}
	if len(created) != 8 {
		t.Fatalf("created %d jobs", len(created))
	}
	if client.calls != 2 {
		t.Fatalf("calls = %d, want a retry", client.calls)
	}
}

func TestSmallJobsSurfacesPersistentFailure(t *testing.T) {
	repo := newDecomposeRepo(t)
	graph := newDecomposeGraph(t, repo)

	boom := errors.New("model unavailable")
	client := &fakeClient{errs: []error{boom, boom, boom}}
	svc := New(repo, client)

	if _, err := svc.SmallJobs(context.Background(), graph.ID); err == nil {
		t.Fatal("expected the error to surface")
	}
	if client.calls != defaultMaxTries {
		t.Fatalf("calls = %d, want %d", client.calls, defaultMaxTries)
	}
}

func TestSmallJobsRejectsEmptyBatch(t *testing.T) {
	repo := newDecomposeRepo(t)
	graph := newDecomposeGraph(t, repo)

	client := &fakeClient{payloads: []string{`{"jobs": []}`, `{"jobs": []}`, `{"jobs": []}`}}
	svc := New(repo, client)

	if _, err := svc.SmallJobs(context.Background(), graph.ID); err == nil {
		t.Fatal("expected an error for an empty batch")
	}
}

func TestMicroJobsInheritPhase(t *testing.T) {
	repo := newDecomposeRepo(t)
	ctx := context.Background()
	graph := newDecomposeGraph(t, repo)

	small, err := repo.CreateJob(ctx, jtbd.Job{
		GraphID:     graph.ID,
		ParentID:    graph.CoreJobID,
		Level:       jtbd.LevelSmall,
		Formulation: "I want to photograph the flat",
		Label:       "Photograph the flat",
		Phase:       jtbd.PhaseBefore,
	})
	if err != nil {
		t.Fatalf("create small: %v", err)
	}

	client := &fakeClient{payloads: []string{batchPayload(3, "after")}}
	svc := New(repo, client)

	created, err := svc.MicroJobs(ctx, small.ID)
	if err != nil {
		t.Fatalf("micro jobs: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("created %d jobs", len(created))
	}
	for i, job := range created {
		if job.Level != jtbd.LevelMicro {
			t.Fatalf("job %d level = %q", i, job.Level)
		}
		if job.ParentID == nil || *job.ParentID != small.ID {
			t.Fatalf("job %d not under the small job", i)
		}
		if job.Phase != jtbd.PhaseBefore {
			t.Fatalf("job %d phase = %q, want the parent's", i, job.Phase)
		}
	}
}

func TestMicroJobsRejectNonSmallParent(t *testing.T) {
	repo := newDecomposeRepo(t)
	graph := newDecomposeGraph(t, repo)

	client := &fakeClient{payloads: []string{batchPayload(3, "during")}}
	svc := New(repo, client)

	_, err := svc.MicroJobs(context.Background(), *graph.CoreJobID)
	if !errors.Is(err, jtbd.ErrInvalidHierarchy) {
		t.Fatalf("expected ErrInvalidHierarchy, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("model called %d times for a rejected parent", client.calls)
	}
}

func TestMicroJobsMissingJob(t *testing.T) {
	repo := newDecomposeRepo(t)
	newDecomposeGraph(t, repo)

	svc := New(repo, &fakeClient{})
	if _, err := svc.MicroJobs(context.Background(), "no-such-job"); !errors.Is(err, jtbd.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
