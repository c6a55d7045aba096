package highscore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the whole board
type Store interface {
	Load() ([]Entry, error)
	Save(entries []Entry) error
}

// FileStore keeps the board in one JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a file store, creating the parent directory if needed
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create highscores directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load reads the board. A missing file is an empty board.
func (fs *FileStore) Load() ([]Entry, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read highscores file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal highscores: %w", err)
	}
	return entries, nil
}

// Save writes the board through a temp file and rename
func (fs *FileStore) Save(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal highscores: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write highscores file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to replace highscores file: %w", err)
	}
	return nil
}
