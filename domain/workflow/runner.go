package workflow

import (
	"context"
	"encoding/json"
	"sync"
)

// Func is the unit of work a Runner executes for one analysis kind.
type Func func(ctx context.Context, params json.RawMessage) (json.RawMessage, error)

// Runner executes registered analysis kinds asynchronously and records
// their lifecycle in a Store.
type Runner struct {
	store Store

	mu    sync.RWMutex
	kinds map[string]Func
}

// NewRunner creates a runner backed by the given store.
func NewRunner(store Store) *Runner {
	return &Runner{
		store: store,
		kinds: make(map[string]Func),
	}
}

// RegisterKind makes an analysis kind runnable.
func (r *Runner) RegisterKind(kind string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind] = fn
}

// Kinds lists the registered analysis kinds.
func (r *Runner) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	return names
}

// Run accepts an analysis request and executes it on a goroutine. The
// returned Analysis is the pending record; poll the store with its ID.
func (r *Runner) Run(ctx context.Context, kind string, params json.RawMessage) (*Analysis, error) {
	r.mu.RLock()
	fn, ok := r.kinds[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrAnalysisNotFound
	}

	a := NewAnalysis(kind, params)
	r.store.Put(a)
	accepted := *a

	go func() {
		a.Start()
		r.store.Put(a)
		result, err := fn(ctx, params)
		if err != nil {
			a.Fail(err)
		} else {
			a.Complete(result)
		}
		r.store.Put(a)
	}()

	return &accepted, nil
}
