package wizard

import (
	"context"
	"sort"
	"sync"
)

// SubmitHandler is the asynchronous work that must succeed before the wizard
// moves past a step, typically validate-then-save. It must respect context
// cancellation.
type SubmitHandler func(ctx context.Context) error

// Registry maps step indices to their submit handlers. Steps re-register
// whenever they are mounted again, so Register replaces silently.
type Registry struct {
	mu       sync.RWMutex
	handlers map[int]SubmitHandler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[int]SubmitHandler)}
}

// Register associates h with index. A nil h removes the registration.
func (r *Registry) Register(index int, h SubmitHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == nil {
		delete(r.handlers, index)
		return
	}
	r.handlers[index] = h
}

// Get returns the handler of index.
func (r *Registry) Get(index int) (SubmitHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[index]
	return h, ok
}

// Has reports whether index has a handler.
func (r *Registry) Has(index int) bool {
	_, ok := r.Get(index)
	return ok
}

// Indices returns the registered indices in ascending order.
func (r *Registry) Indices() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int, 0, len(r.handlers))
	for i := range r.handlers {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
