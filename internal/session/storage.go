package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/uxforge/uxforge/pkg/models"
)

// Storage persists serialized chat sessions, one blob per client key.
type Storage interface {
	Load(key string) (*models.ChatSession, error)
	Save(key string, session *models.ChatSession) error
	Delete(key string) error
	// Prune removes persisted sessions older than maxAge and reports how
	// many were removed.
	Prune(maxAge time.Duration) int
}

// DiskStorage stores each session as a JSON file under a base path.
type DiskStorage struct {
	storePath string
}

// NewDiskStorage creates the storage directory if needed.
func NewDiskStorage(storePath string) (*DiskStorage, error) {
	if err := os.MkdirAll(storePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &DiskStorage{storePath: storePath}, nil
}

func (d *DiskStorage) filePath(key string) string {
	return filepath.Join(d.storePath, fmt.Sprintf("session-%x.json", key))
}

func (d *DiskStorage) Load(key string) (*models.ChatSession, error) {
	data, err := os.ReadFile(d.filePath(key))
	if err != nil {
		return nil, err
	}

	var sess models.ChatSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("corrupt session blob: %w", err)
	}
	return &sess, nil
}

func (d *DiskStorage) Save(key string, session *models.ChatSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}
	return os.WriteFile(d.filePath(key), data, 0644)
}

func (d *DiskStorage) Delete(key string) error {
	if err := os.Remove(d.filePath(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (d *DiskStorage) Prune(maxAge time.Duration) int {
	entries, err := os.ReadDir(d.storePath)
	if err != nil {
		return 0
	}

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "session-") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if os.Remove(filepath.Join(d.storePath, entry.Name())) == nil {
			removed++
		}
	}
	return removed
}
