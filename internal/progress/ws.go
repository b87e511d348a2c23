package progress

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/uxforge/uxforge/internal/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server streams a session's progress events over a websocket.
type Server struct {
	hub *Hub
	log *logger.Logger
}

func NewServer(hub *Hub, log *logger.Logger) *Server {
	return &Server{hub: hub, log: log}
}

func (s *Server) HandleEvents(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("failed to upgrade progress connection", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := s.hub.Subscribe(sessionID)
	defer cancel()

	s.log.Debug("progress subscriber connected", "sessionId", sessionID)

	// Drain client frames so pings and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				s.log.Debug("progress subscriber dropped", "sessionId", sessionID, "error", err)
				return
			}
		case <-keepalive.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
