package progress

import (
	"sync"
	"time"
)

// Event is one generation progress update for a session.
type Event struct {
	SessionID string    `json:"sessionId"`
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	Percent   int       `json:"percent"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub fans generation progress out to websocket subscribers, keyed by
// session id. Slow subscribers lose events rather than blocking the
// generation path.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[chan Event]struct{})}
}

// Publish delivers an event to every subscriber of its session. Never
// blocks.
func (h *Hub) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[event.SessionID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a listener for a session's events. The returned
// cancel func must be called when the listener goes away.
func (h *Hub) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	if h.subscribers[sessionID] == nil {
		h.subscribers[sessionID] = make(map[chan Event]struct{})
	}
	h.subscribers[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs, ok := h.subscribers[sessionID]; ok {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.subscribers, sessionID)
			}
		}
	}
	return ch, cancel
}
