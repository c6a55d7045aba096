package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/inconshreveable/log15/v3"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/fliplabyrinth/game/level"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrNoLevels      = errors.New("no valid level files")
)

//go:embed data/*
var builtin embed.FS

var logger = log15.New("module", "levels")

// Manager handles level loading and caching
type Manager struct {
	fsys    fs.FS
	catalog *level.Catalog
	levels  map[int]*level.Descriptor
	mu      sync.RWMutex
}

// NewManager loads every level file found at the root of fsys
func NewManager(fsys fs.FS, catalog *level.Catalog) (*Manager, error) {
	if catalog == nil {
		catalog = level.DefaultCatalog()
	}
	m := &Manager{fsys: fsys, catalog: catalog}
	if err := m.Refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewDefaultManager serves the embedded levels
func NewDefaultManager() (*Manager, error) {
	sub, err := fs.Sub(builtin, "data")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded levels: %w", err)
	}
	return NewManager(sub, nil)
}

// NewDirManager serves the levels stored in dir
func NewDirManager(dir string) (*Manager, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("levels directory does not exist: %s", dir)
	}
	return NewManager(os.DirFS(dir), nil)
}

// Catalog returns the catalog levels are compiled against
func (m *Manager) Catalog() *level.Catalog {
	return m.catalog
}

// FetchLevel returns the compiled descriptor for id
func (m *Manager) FetchLevel(id int) (*level.Descriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.levels[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrLevelNotFound, id)
	}
	return d, nil
}

// Exists reports whether a level with id is loaded
func (m *Manager) Exists(id int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.levels[id]
	return ok
}

// ListSummaries returns the summaries of all loaded levels ordered by id
func (m *Manager) ListSummaries() []level.Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]level.Summary, 0, len(m.levels))
	for _, d := range m.levels {
		out = append(out, d.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Refresh rescans the file system and replaces the cache.
// Invalid files are skipped; duplicate ids keep the first file in name order.
func (m *Manager) Refresh() error {
	entries, err := fs.ReadDir(m.fsys, ".")
	if err != nil {
		return fmt.Errorf("failed to read levels directory: %w", err)
	}

	levels := make(map[int]*level.Descriptor)
	files := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() || !IsLevelFile(entry.Name()) {
			continue
		}
		data, err := fs.ReadFile(m.fsys, entry.Name())
		if err != nil {
			logger.Warn("skipping unreadable level file", "file", entry.Name(), "err", err)
			continue
		}
		d, err := Decode(entry.Name(), data)
		if err == nil {
			err = d.Compile(m.catalog)
		}
		if err != nil {
			logger.Warn("skipping invalid level file", "file", entry.Name(), "err", err)
			continue
		}
		if prev, dup := files[d.ID]; dup {
			logger.Warn("skipping duplicate level id", "file", entry.Name(), "id", d.ID, "kept", prev)
			continue
		}
		levels[d.ID] = d
		files[d.ID] = entry.Name()
	}
	if len(levels) == 0 {
		return ErrNoLevels
	}

	m.mu.Lock()
	m.levels = levels
	m.mu.Unlock()
	logger.Debug("levels loaded", "count", len(levels))
	return nil
}

// IsLevelFile reports whether name has a level file extension
func IsLevelFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Decode parses a level file, choosing JSON or YAML by extension.
// The descriptor is not compiled.
func Decode(name string, data []byte) (*level.Descriptor, error) {
	var d level.Descriptor
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	default:
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}
	return &d, nil
}
