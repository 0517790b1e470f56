package guard

import (
	"sync"

	"github.com/sandevgo/snipbot/internal/core"
)

var _ core.SessionGuard = (*Guard)(nil)

// Guard tracks which authors own an open inspection session per channel.
type Guard struct {
	mu       sync.RWMutex
	sessions map[core.SessionKey]core.MessageRef
}

func New() *Guard {
	return &Guard{
		sessions: make(map[core.SessionKey]core.MessageRef),
	}
}

func (g *Guard) IsLocked(key core.SessionKey) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.sessions[key]
	return ok
}

// Lock registers handle as the session for key. It reports false and leaves the
// existing entry untouched when key is already locked.
func (g *Guard) Lock(key core.SessionKey, handle core.MessageRef) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.sessions[key]; exists {
		return false
	}
	g.sessions[key] = handle
	return true
}

func (g *Guard) Unlock(key core.SessionKey) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.sessions, key)
}

func (g *Guard) Get(key core.SessionKey) (core.MessageRef, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ref, ok := g.sessions[key]
	return ref, ok
}

func (g *Guard) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.sessions)
}
