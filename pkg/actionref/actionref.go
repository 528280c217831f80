// Package actionref maps the action ids carried on notifications to handler
// functions. A notification stores only the tagged reference, which survives
// serialization; the behavior lives in the registry of whichever process
// resolves it.
package actionref

import (
	"context"
	"fmt"
	"sync"

	"notify-engine/internal/models"
)

// HandlerFunc runs one action. Params come from the reference on the
// notification.
type HandlerFunc func(ctx context.Context, params map[string]string) error

// Registry maps action ids to handlers. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

// Register binds a handler to an action id, replacing any previous binding.
func (r *Registry) Register(id string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[id] = fn
}

// Resolve looks up the handler for a reference.
func (r *Registry) Resolve(ref models.ActionRef) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[ref.ID]
	return fn, ok
}

// Run resolves and executes the reference in one step. An unregistered id
// is an error; a nil reference is a no-op.
func (r *Registry) Run(ctx context.Context, ref *models.ActionRef) error {
	if ref == nil {
		return nil
	}
	fn, ok := r.Resolve(*ref)
	if !ok {
		return fmt.Errorf("no handler registered for action %q", ref.ID)
	}
	return fn(ctx, ref.Params)
}

// IDs returns the registered action ids.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	return ids
}
