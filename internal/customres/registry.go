package customres

import "sync"

// Provider yields the active Backend, or nil when custom resolution is
// unavailable.
type Provider interface {
	Get() Backend
}

// Registry owns the process's single active Backend.
//
// Create and Destroy must be serialized by the caller and Create must not be
// called twice without an intervening Destroy. Get is safe from any goroutine.
type Registry struct {
	mu     sync.RWMutex
	active Backend
}

var _ Provider = (*Registry)(nil)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Create builds backends from factories in order and keeps the first one
// whose Init succeeds. It reports whether a backend is now active.
func (r *Registry) Create(factories ...func() Backend) bool {
	for _, factory := range factories {
		if factory == nil {
			continue
		}
		backend := factory()
		if backend == nil || !backend.Init() {
			continue
		}
		r.mu.Lock()
		r.active = backend
		r.mu.Unlock()
		return true
	}
	return false
}

// Get returns the active backend, or nil when none was created or it has
// been destroyed.
func (r *Registry) Get() Backend {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Destroy shuts down and releases the active backend.
func (r *Registry) Destroy() {
	r.mu.Lock()
	backend := r.active
	r.active = nil
	r.mu.Unlock()

	if backend != nil {
		backend.Shutdown()
	}
}
