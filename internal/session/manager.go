package session

import (
	"sync"

	"github.com/uxforge/uxforge/internal/logger"
)

// Manager hands out one Store per client key. Stores are created lazily
// and live for the process lifetime.
type Manager struct {
	mu      sync.Mutex
	storage Storage
	log     *logger.Logger
	stores  map[string]*Store
}

func NewManager(storage Storage, log *logger.Logger) *Manager {
	return &Manager{
		storage: storage,
		log:     log,
		stores:  make(map[string]*Store),
	}
}

// For returns the store owning the given client's session.
func (m *Manager) For(clientKey string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, ok := m.stores[clientKey]
	if !ok {
		store = NewStore(clientKey, m.storage, m.log)
		m.stores[clientKey] = store
	}
	return store
}
