package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/fliplabyrinth/game/engine"
	"github.com/wricardo/fliplabyrinth/game/level"
	"github.com/wricardo/fliplabyrinth/game/service"
	"github.com/wricardo/fliplabyrinth/messages"
)

// LevelLoader resolves the level a persisted session was playing
type LevelLoader interface {
	FetchLevel(id int) (*level.Descriptor, error)
	Catalog() *level.Catalog
}

// FilePersistence implements SessionPersistence using file system storage
type FilePersistence struct {
	sessionsDir string
	levels      LevelLoader
	text        messages.Translator
}

// NewFilePersistence creates a new file-based session persistence layer
func NewFilePersistence(sessionsDir string, levels LevelLoader, text messages.Translator) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{
		sessionsDir: sessionsDir,
		levels:      levels,
		text:        text,
	}, nil
}

// Save persists a session to a JSON file
func (fp *FilePersistence) Save(sess *service.Session) error {
	if sess == nil {
		return fmt.Errorf("session cannot be nil")
	}

	snap, submission := sess.Snapshot()
	data := PersistedSessionData{
		ID:             sess.ID,
		PlayerName:     sess.PlayerName,
		LevelID:        sess.LevelID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccess(),
		GameState:      snap,
		Submission:     submission,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	path, err := fp.getFilePath(sess.ID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Load retrieves a session from a JSON file
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	path, err := fp.getFilePath(id)
	if err != nil {
		return nil, err
	}
	jsonData, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	desc, err := fp.levels.FetchLevel(data.LevelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load level %d: %w", data.LevelID, err)
	}

	game, err := engine.Restore(desc, fp.levels.Catalog(), fp.text, data.GameState)
	if err != nil {
		return nil, fmt.Errorf("failed to restore game state: %w", err)
	}

	// a submission in flight when the process stopped never reported back
	if data.Submission != nil && data.Submission.Status == service.SubmissionSaving {
		data.Submission.Status = service.SubmissionError
		data.Submission.Error = "submission interrupted"
	}

	return &service.Session{
		ID:             data.ID,
		PlayerName:     data.PlayerName,
		LevelID:        data.LevelID,
		Engine:         game,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
		Submission:     data.Submission,
	}, nil
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	path, err := fp.getFilePath(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return ErrSessionNotFound
	}

	if err := os.Remove(path); err != nil {
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
		if strings.HasSuffix(name, ".json") {
			sessionIDs = append(sessionIDs, strings.TrimSuffix(name, ".json"))
		}
	}

	return sessionIDs, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	path, err := fp.getFilePath(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// getFilePath returns the full file path for a session ID, refusing ids that leave the sessions dir
func (fp *FilePersistence) getFilePath(id string) (string, error) {
	if !validID(id) || filepath.Base(id) != id {
		return "", ErrInvalidSessionID
	}
	return filepath.Join(fp.sessionsDir, fmt.Sprintf("%s.json", strings.ToLower(id))), nil
}
