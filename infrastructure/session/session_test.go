package session

import (
	"errors"
	"testing"
	"time"

	"github.com/pulsemon/pulsemon-mcp/domain/analytics/baseline"
	"github.com/pulsemon/pulsemon-mcp/domain/workflow"
)

func TestBaselineStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewBaselineStore()
	b := baseline.Baseline{
		Name: "weekday",
		Datapoints: map[string]baseline.DatapointBaseline{
			"cpu": {Mean: 42, SampleCount: 100},
		},
	}
	if err := store.Save("weekday", b); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, ok := store.Load("weekday")
	if !ok {
		t.Fatal("Load() did not find saved baseline")
	}
	if got.Datapoints["cpu"].Mean != 42 {
		t.Errorf("Mean = %v, want 42", got.Datapoints["cpu"].Mean)
	}
	if _, ok := store.Load("weekend"); ok {
		t.Error("Load() found baseline that was never saved")
	}
}

func TestBaselineStoreDeleteAndNames(t *testing.T) {
	t.Parallel()

	store := NewBaselineStore()
	_ = store.Save("b", baseline.Baseline{Name: "b"})
	_ = store.Save("a", baseline.Baseline{Name: "a"})

	names := store.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v, want [a b]", names)
	}

	if !store.Delete("a") {
		t.Error("Delete() = false for existing baseline")
	}
	if store.Delete("a") {
		t.Error("Delete() = true for already removed baseline")
	}
}

func TestAnalysisStoreGetMissing(t *testing.T) {
	t.Parallel()

	store := NewAnalysisStore(0)
	if _, err := store.Get("nope"); !errors.Is(err, workflow.ErrAnalysisNotFound) {
		t.Errorf("Get() error = %v, want ErrAnalysisNotFound", err)
	}
}

func TestAnalysisStoreSnapshots(t *testing.T) {
	t.Parallel()

	store := NewAnalysisStore(0)
	a := workflow.NewAnalysis("noise_score", nil)
	store.Put(a)

	a.Start()
	got, err := store.Get(a.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != workflow.StatusPending {
		t.Errorf("Status = %s, want snapshot taken at Put time (%s)", got.Status, workflow.StatusPending)
	}
}

func TestAnalysisStoreRecentNewestFirst(t *testing.T) {
	t.Parallel()

	store := NewAnalysisStore(0)
	old := workflow.NewAnalysis("old", nil)
	old.CreatedAt = time.Now().Add(-time.Minute)
	recent := workflow.NewAnalysis("new", nil)
	store.Put(old)
	store.Put(recent)

	got := store.Recent(10)
	if len(got) != 2 {
		t.Fatalf("Recent() = %d entries, want 2", len(got))
	}
	if got[0].Kind != "new" || got[1].Kind != "old" {
		t.Errorf("Recent() order = [%s %s], want [new old]", got[0].Kind, got[1].Kind)
	}

	limited := store.Recent(1)
	if len(limited) != 1 || limited[0].Kind != "new" {
		t.Errorf("Recent(1) = %v, want just the newest", limited)
	}
}

func TestAnalysisStoreTTLExpiry(t *testing.T) {
	t.Parallel()

	current := time.Now()
	store := NewAnalysisStore(time.Hour).WithNow(func() time.Time { return current })

	finished := workflow.NewAnalysis("done", nil)
	finished.Complete(nil)
	running := workflow.NewAnalysis("running", nil)
	running.Start()
	store.Put(finished)
	store.Put(running)

	current = current.Add(2 * time.Hour)
	if _, err := store.Get(finished.ID); !errors.Is(err, workflow.ErrAnalysisNotFound) {
		t.Errorf("Get(finished) error = %v, want expiry", err)
	}
	if _, err := store.Get(running.ID); err != nil {
		t.Errorf("Get(running) error = %v, running analyses must not expire", err)
	}
}

func TestNewSession(t *testing.T) {
	t.Parallel()

	s := New()
	if s.Baselines == nil || s.Analyses == nil {
		t.Fatal("New() returned session with nil stores")
	}
}
