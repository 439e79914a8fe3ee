package viewer

import "sync"

// Registry holds one viewer per quiz session.
type Registry struct {
	lookup Lookup
	engine Engine

	mu      sync.Mutex
	viewers map[string]*Viewer
}

func NewRegistry(l Lookup, e Engine) *Registry {
	return &Registry{lookup: l, engine: e, viewers: map[string]*Viewer{}}
}

func (r *Registry) Lookup() Lookup { return r.lookup }

// Get returns the session's viewer, creating it when create is set.
func (r *Registry) Get(id string, create bool) (*Viewer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.viewers[id]
	if !ok && create {
		v = New(r.lookup, r.engine)
		r.viewers[id] = v
		ok = true
	}
	return v, ok
}

func (r *Registry) Drop(id string) {
	r.mu.Lock()
	v, ok := r.viewers[id]
	delete(r.viewers, id)
	r.mu.Unlock()
	if ok {
		v.Close()
	}
}
