package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uxforge/uxforge/internal/logger"
	"github.com/uxforge/uxforge/pkg/models"
)

// MaxSessionAge is the freshness window: a persisted session older than
// this is silently discarded on load.
const MaxSessionAge = 24 * time.Hour

// Store is the single source of truth for one client's chat session. It
// self-heals: any load or validation failure falls back to a fresh empty
// session, and persistence failures degrade to in-memory-only state
// rather than surfacing to callers.
type Store struct {
	mu      sync.Mutex
	key     string
	storage Storage
	log     *logger.Logger

	current    *models.ChatSession
	memoryOnly bool
}

// NewStore builds a store for a single client key.
func NewStore(key string, storage Storage, log *logger.Logger) *Store {
	return &Store{key: key, storage: storage, log: log.With("clientKey", key)}
}

// Session returns a snapshot of the active session, restoring or
// creating one as needed. Never fails.
func (s *Store) Session() models.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.ensure())
}

// AddMessage assigns an id and timestamp, appends the message and
// persists the session. The completed message is returned.
func (s *Store) AddMessage(msg models.ChatMessage) models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.ensure()
	msg.ID = uuid.NewString()
	msg.Timestamp = time.Now()
	sess.Messages = append(sess.Messages, msg)
	s.touchAndPersist(sess)
	return msg
}

// UpdateMessage merges a patch into the message with the given id. The
// id is immutable. Returns false when no such message exists.
func (s *Store) UpdateMessage(id string, patch models.MessagePatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.ensure()
	for i := range sess.Messages {
		if sess.Messages[i].ID != id {
			continue
		}
		msg := &sess.Messages[i]
		if patch.Content != nil {
			msg.Content = *patch.Content
		}
		if patch.IsGenerating != nil {
			msg.IsGenerating = *patch.IsGenerating
		}
		if patch.PreviewURL != nil {
			msg.PreviewURL = *patch.PreviewURL
		}
		if patch.ProjectID != nil {
			msg.ProjectID = *patch.ProjectID
		}
		s.touchAndPersist(sess)
		return true
	}

	s.log.Warn("message not found for update", "messageId", id)
	return false
}

// AddDocument stamps the document and stores it, replacing any existing
// entry with the same document id.
func (s *Store) AddDocument(doc models.DocumentContext) models.DocumentContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.ensure()
	if doc.DocumentID == "" {
		doc.DocumentID = uuid.NewString()
	}
	doc.Timestamp = time.Now()

	kept := sess.Documents[:0]
	for _, existing := range sess.Documents {
		if existing.DocumentID != doc.DocumentID {
			kept = append(kept, existing)
		}
	}
	sess.Documents = append(kept, doc)
	s.touchAndPersist(sess)
	return doc
}

// SetSandboxID associates the session with a remote sandbox.
func (s *Store) SetSandboxID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.ensure()
	sess.SandboxID = id
	s.touchAndPersist(sess)
}

// SandboxID returns the associated sandbox id, or "" when none is live.
func (s *Store) SandboxID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensure().SandboxID
}

// EndSession marks the session inactive and drops the in-memory
// reference; the next call creates a fresh session.
func (s *Store) EndSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	s.current.IsActive = false
	s.touchAndPersist(s.current)
	s.log.Info("ended chat session", "sessionId", s.current.SessionID)
	s.current = nil
}

// ClearSession erases persisted state and starts a brand-new session.
// Callers owning a sandbox must capture its id before calling this.
func (s *Store) ClearSession() models.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(s.key); err != nil {
		s.log.Warn("failed to erase persisted session", "error", err)
	}
	s.current = nil
	return snapshot(s.ensure())
}

// ensure returns the active session, restoring it from storage when the
// persisted copy is fresh and active, creating a new one otherwise.
// Callers must hold s.mu.
func (s *Store) ensure() *models.ChatSession {
	if s.current != nil {
		return s.current
	}

	if stored, err := s.storage.Load(s.key); err == nil {
		if stored.IsActive && time.Since(stored.LastActivity) < MaxSessionAge {
			s.current = stored
			s.log.Info("restored chat session", "sessionId", stored.SessionID)
			return s.current
		}
		s.log.Debug("discarding stale session", "sessionId", stored.SessionID)
	}

	now := time.Now()
	s.current = &models.ChatSession{
		SessionID:    uuid.NewString(),
		Messages:     []models.ChatMessage{},
		Documents:    []models.DocumentContext{},
		CreatedAt:    now,
		LastActivity: now,
		IsActive:     true,
	}
	s.persist(s.current)
	s.log.Info("created chat session", "sessionId", s.current.SessionID)
	return s.current
}

func (s *Store) touchAndPersist(sess *models.ChatSession) {
	sess.LastActivity = time.Now()
	s.persist(sess)
}

// persist writes through to storage. A failed write triggers a prune of
// old sessions and one retry; a second failure switches the store to
// in-memory-only for the rest of the process lifetime.
func (s *Store) persist(sess *models.ChatSession) {
	if s.memoryOnly {
		return
	}
	if err := s.storage.Save(s.key, sess); err == nil {
		return
	} else {
		s.log.Warn("session persist failed, pruning and retrying", "error", err)
	}

	pruned := s.storage.Prune(MaxSessionAge)
	if err := s.storage.Save(s.key, sess); err != nil {
		s.log.Error("session persist failed after cleanup, continuing in memory",
			"pruned", pruned, "error", err)
		s.memoryOnly = true
	}
}

func snapshot(sess *models.ChatSession) models.ChatSession {
	out := *sess
	out.Messages = append([]models.ChatMessage(nil), sess.Messages...)
	out.Documents = append([]models.DocumentContext(nil), sess.Documents...)
	return out
}
