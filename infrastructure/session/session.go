// Package session provides in-memory stores scoped to one server
// session. Nothing here survives a restart; callers hold an explicit
// Session rather than reaching for package-level state.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/pulsemon/pulsemon-mcp/domain/analytics/baseline"
	"github.com/pulsemon/pulsemon-mcp/domain/workflow"
)

// DefaultAnalysisTTL is how long finished analyses stay retrievable.
const DefaultAnalysisTTL = time.Hour

// Session bundles the per-session stores.
type Session struct {
	Baselines *BaselineStore
	Analyses  *AnalysisStore
}

// New creates a session with default TTLs.
func New() *Session {
	return &Session{
		Baselines: NewBaselineStore(),
		Analyses:  NewAnalysisStore(DefaultAnalysisTTL),
	}
}

// BaselineStore is a mutex-guarded in-memory baseline.Store.
type BaselineStore struct {
	mu    sync.RWMutex
	items map[string]baseline.Baseline
}

// NewBaselineStore creates an empty baseline store.
func NewBaselineStore() *BaselineStore {
	return &BaselineStore{items: make(map[string]baseline.Baseline)}
}

// Save stores a baseline under its name, replacing any previous one.
func (s *BaselineStore) Save(name string, b baseline.Baseline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[name] = b
	return nil
}

// Load retrieves a baseline by name.
func (s *BaselineStore) Load(name string) (baseline.Baseline, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.items[name]
	return b, ok
}

// Delete removes a baseline, reporting whether it existed.
func (s *BaselineStore) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[name]
	delete(s.items, name)
	return ok
}

// Names lists stored baseline names in order.
func (s *BaselineStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.items))
	for name := range s.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AnalysisStore is a mutex-guarded in-memory workflow.Store with TTL
// expiry. Finished analyses older than the TTL are dropped lazily on
// access.
type AnalysisStore struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]workflow.Analysis
}

// NewAnalysisStore creates an analysis store with the given TTL. A zero
// TTL disables expiry.
func NewAnalysisStore(ttl time.Duration) *AnalysisStore {
	return &AnalysisStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]workflow.Analysis),
	}
}

// WithNow overrides the clock for tests.
func (s *AnalysisStore) WithNow(now func() time.Time) *AnalysisStore {
	s.now = now
	return s
}

// Put records a snapshot of the analysis.
func (s *AnalysisStore) Put(a *workflow.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	s.items[a.ID] = *a
}

// Get retrieves an analysis snapshot by id.
func (s *AnalysisStore) Get(id string) (*workflow.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	a, ok := s.items[id]
	if !ok {
		return nil, workflow.ErrAnalysisNotFound
	}
	copied := a
	return &copied, nil
}

// Recent returns up to limit analyses, newest first.
func (s *AnalysisStore) Recent(limit int) []*workflow.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	out := make([]*workflow.Analysis, 0, len(s.items))
	for _, a := range s.items {
		copied := a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// expireLocked drops finished analyses past the TTL. Pending and
// running entries never expire.
func (s *AnalysisStore) expireLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, a := range s.items {
		if a.FinishedAt != nil && a.FinishedAt.Before(cutoff) {
			delete(s.items, id)
		}
	}
}
