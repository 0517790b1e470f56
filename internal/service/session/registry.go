package session

import (
	"context"
	"sync"

	"github.com/sandevgo/snipbot/internal/core"
)

// Registry holds armed controls by id so button callbacks can find them.
type Registry struct {
	mu       sync.RWMutex
	controls map[string]*Control
}

func NewRegistry() *Registry {
	return &Registry{
		controls: make(map[string]*Control),
	}
}

func (r *Registry) Add(c *Control) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.controls[c.ID()] = c
}

func (r *Registry) Get(id string) (*Control, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.controls[id]
	return c, ok
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.controls, id)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.controls)
}

// Activate consumes the armed control with the given id on behalf of by.
func (r *Registry) Activate(ctx context.Context, id string, by core.SessionKey) error {
	c, ok := r.Get(id)
	if !ok {
		return ErrNotArmed
	}
	return c.Activate(ctx, by)
}
