package levels

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/wricardo/fliplabyrinth/game/level"
)

const tinyLevelJSON = `{
  "id": 7,
  "name": "Tiny",
  "difficulty": "easy",
  "rows": 2,
  "cols": 2,
  "start": {"row": 0, "col": 0},
  "end": {"row": 1, "col": 1},
  "grid": [["S", "C"], ["C", "E"]]
}`

const tinyLevelYAML = `id: 8
name: Tiny yaml
difficulty: easy
rows: 2
cols: 3
start: {row: 0, col: 0}
end: {row: 1, col: 2}
grid:
  - [S, "M:goblin", C]
  - [C, W, E]
`

func TestDefaultManager(t *testing.T) {
	m, err := NewDefaultManager()
	if err != nil {
		t.Fatalf("Failed to load embedded levels: %v", err)
	}

	summaries := m.ListSummaries()
	if len(summaries) != 3 {
		t.Fatalf("Expected 3 built-in levels, got %d", len(summaries))
	}
	for i, s := range summaries {
		if s.ID != i+1 {
			t.Errorf("Expected level %d at index %d, got %d", i+1, i, s.ID)
		}
	}
	if summaries[0].HasCombat || summaries[0].HasKeys {
		t.Errorf("Level 1 should have no combat or keys: %+v", summaries[0])
	}
	if !summaries[1].HasCombat || !summaries[1].HasKeys || summaries[1].HasObstacles {
		t.Errorf("Unexpected level 2 flags: %+v", summaries[1])
	}
	if !summaries[2].HasObstacles || summaries[2].Rows != 10 {
		t.Errorf("Unexpected level 3 summary: %+v", summaries[2])
	}

	for _, id := range []int{1, 2, 3} {
		d, err := m.FetchLevel(id)
		if err != nil {
			t.Fatalf("FetchLevel(%d) failed: %v", id, err)
		}
		if !d.Compiled() {
			t.Errorf("Level %d not compiled", id)
		}
		if d.MaxHP != level.DefaultMaxHP {
			t.Errorf("Level %d: expected max hp %d, got %d", id, level.DefaultMaxHP, d.MaxHP)
		}
	}

	if m.Catalog() != level.DefaultCatalog() {
		t.Error("Expected default catalog")
	}
}

func TestFetchUnknownLevel(t *testing.T) {
	m, err := NewDefaultManager()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, err = m.FetchLevel(42)
	if !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("Expected ErrLevelNotFound, got %v", err)
	}
	if m.Exists(42) || !m.Exists(1) {
		t.Error("Unexpected Exists result")
	}
}

func TestManagerSkipsInvalidAndDuplicateFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"a.json":      {Data: []byte(tinyLevelJSON)},
		"b.json":      {Data: []byte(tinyLevelJSON)},
		"c.yaml":      {Data: []byte(tinyLevelYAML)},
		"broken.json": {Data: []byte(`{"id": `)},
		"bad.json":    {Data: []byte(`{"id": 9, "name": "bad", "rows": 2, "cols": 2, "grid": [["S","X"],["C","E"]], "end": {"row":1,"col":1}}`)},
		"notes.txt":   {Data: []byte("ignored")},
	}

	m, err := NewManager(fsys, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	summaries := m.ListSummaries()
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 levels, got %d: %+v", len(summaries), summaries)
	}
	if summaries[0].ID != 7 || summaries[1].ID != 8 {
		t.Errorf("Unexpected ids %d, %d", summaries[0].ID, summaries[1].ID)
	}
	if !summaries[1].HasCombat {
		t.Error("Expected YAML level to report combat")
	}
}

func TestManagerWithoutLevels(t *testing.T) {
	_, err := NewManager(fstest.MapFS{"readme.md": {Data: []byte("#")}}, nil)
	if !errors.Is(err, ErrNoLevels) {
		t.Errorf("Expected ErrNoLevels, got %v", err)
	}
}

func TestDirManagerAndRefresh(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tiny.json"), []byte(tinyLevelJSON), 0644); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}

	m, err := NewDirManager(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if m.Exists(8) {
		t.Fatal("Level 8 should not exist yet")
	}

	if err := os.WriteFile(filepath.Join(dir, "tiny.yml"), []byte(tinyLevelYAML), 0644); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}
	if err := m.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if !m.Exists(8) {
		t.Error("Expected level 8 after refresh")
	}

	if _, err := NewDirManager(filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestDecode(t *testing.T) {
	d, err := Decode("x.YAML", []byte(tinyLevelYAML))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if d.Grid[0][1] != "M:goblin" || d.End != (level.Position{Row: 1, Col: 2}) {
		t.Errorf("Unexpected descriptor %+v", d)
	}
	if _, err := Decode("x.json", []byte("nope")); err == nil {
		t.Error("Expected JSON parse error")
	}
	if IsLevelFile("level.txt") || !IsLevelFile("level.yml") {
		t.Error("Unexpected IsLevelFile result")
	}
}
