package sandbox

import (
	"sync"
	"time"
)

// Entry describes one live sandbox.
type Entry struct {
	SandboxID    string
	ProjectName  string
	Framework    string
	PreviewURL   string
	CreatedAt    time.Time
	LastActivity time.Time
}

// Registry tracks live sandboxes for the list endpoint and health
// count. It is injected into everything that needs it; there is no
// package-level instance.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

func (r *Registry) Add(entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.LastActivity = time.Now()
	r.entries[entry.SandboxID] = entry
}

// Touch refreshes the activity timestamp of a live sandbox.
func (r *Registry) Touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[id]; ok {
		entry.LastActivity = time.Now()
		r.entries[id] = entry
	}
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
