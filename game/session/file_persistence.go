package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FilePersistence implements SessionPersistence with one JSON file per session.
type FilePersistence struct {
	sessionsDir string
}

// NewFilePersistence creates a new file-based session persistence layer
func NewFilePersistence(sessionsDir string) (*FilePersistence, error) {
	if strings.TrimSpace(sessionsDir) == "" {
		return nil, fmt.Errorf("sessions directory is required")
	}
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{sessionsDir: sessionsDir}, nil
}

// Save writes the snapshot to a temp file and renames it into place so a
// crash never leaves a half-written session behind.
func (fp *FilePersistence) Save(snapshot Snapshot) error {
	filePath, err := fp.getFilePath(snapshot.ID)
	if err != nil {
		return err
	}

	data := PersistedSessionData{
		ID:             snapshot.ID,
		CreatedAt:      snapshot.CreatedAt,
		LastAccessedAt: snapshot.LastAccessedAt,
		GameState:      snapshot.State,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move session file into place: %w", err)
	}

	return nil
}

// Load retrieves a session snapshot from its JSON file
func (fp *FilePersistence) Load(id string) (Snapshot, error) {
	filePath, err := fp.getFilePath(id)
	if err != nil {
		return Snapshot{}, err
	}

	jsonData, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, ErrSessionNotFound
		}
		return Snapshot{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return Snapshot{}, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if !strings.EqualFold(data.ID, id) {
		return Snapshot{}, fmt.Errorf("session file %s holds id %q", filepath.Base(filePath), data.ID)
	}

	return Snapshot{
		ID:             data.ID,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
		State:          data.GameState,
	}, nil
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	filePath, err := fp.getFilePath(id)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	return nil
}

// ListAll returns all persisted session IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessionIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		sessionID := strings.TrimSuffix(name, ".json")
		if _, err := uuid.Parse(sessionID); err != nil {
			continue
		}
		sessionIDs = append(sessionIDs, sessionID)
	}

	return sessionIDs, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	filePath, err := fp.getFilePath(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(filePath)
	return err == nil
}

// getFilePath returns the file path for a session ID. IDs must be UUIDs,
// which also keeps them from escaping the sessions directory.
func (fp *FilePersistence) getFilePath(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidSessionID
	}
	return filepath.Join(fp.sessionsDir, parsed.String()+".json"), nil
}
