package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/fliplabyrinth/game/level"
)

func levelJSON(rows, cols int, start, end [2]int, grid string) []byte {
	return []byte(fmt.Sprintf(`{"id": 9, "name": "Test", "rows": %d, "cols": %d,
		"start": {"row": %d, "col": %d}, "end": {"row": %d, "col": %d}, "grid": %s}`,
		rows, cols, start[0], start[1], end[0], end[1], grid))
}

func hasLine(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func TestCheck(t *testing.T) {
	catalog := level.DefaultCatalog()

	tests := []struct {
		name      string
		data      []byte
		wantValid bool
		wantLine  string
	}{
		{
			name:      "open maze",
			data:      levelJSON(2, 2, [2]int{0, 0}, [2]int{1, 1}, `[["S","C"],["W","E"]]`),
			wantValid: true,
			wantLine:  "shortest route is 2 moves",
		},
		{
			name:      "walled exit",
			data:      levelJSON(2, 2, [2]int{0, 0}, [2]int{1, 1}, `[["S","W"],["W","E"]]`),
			wantValid: false,
			wantLine:  "walled off",
		},
		{
			name:      "door without key",
			data:      levelJSON(2, 2, [2]int{0, 0}, [2]int{1, 1}, `[["S","D:red"],["W","E"]]`),
			wantValid: false,
			wantLine:  "cannot be reached",
		},
		{
			name:      "key behind the start",
			data:      levelJSON(2, 3, [2]int{0, 1}, [2]int{1, 2}, `[["K:red","S","D:red"],["W","W","E"]]`),
			wantValid: true,
			wantLine:  "shortest route is 4 moves",
		},
		{
			name:      "obstacle with its item",
			data:      levelJSON(2, 3, [2]int{0, 0}, [2]int{1, 2}, `[["S","I:pickaxe","O:rock"],["W","W","E"]]`),
			wantValid: true,
			wantLine:  "shortest route is 3 moves",
		},
		{
			name:      "monster without weapon",
			data:      levelJSON(2, 2, [2]int{0, 0}, [2]int{1, 1}, `[["S","M:goblin"],["W","E"]]`),
			wantValid: false,
			wantLine:  "cannot be reached",
		},
		{
			name:      "monster with weapon",
			data:      levelJSON(2, 3, [2]int{0, 0}, [2]int{1, 2}, `[["S","Wpn:sword","M:goblin"],["W","W","E"]]`),
			wantValid: true,
			wantLine:  "Fight Corridor goblin",
		},
		{
			name:      "unknown tile",
			data:      levelJSON(2, 2, [2]int{0, 0}, [2]int{1, 1}, `[["S","Z"],["W","E"]]`),
			wantValid: false,
			wantLine:  "invalid level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Check("test.json", tt.data, catalog)
			if report.Valid() != tt.wantValid {
				t.Errorf("Expected valid=%v, got %v (errors %v)", tt.wantValid, report.Valid(), report.Errors)
			}
			all := append(append(append([]string{}, report.Errors...), report.Warnings...), report.Info...)
			if !hasLine(all, tt.wantLine) {
				t.Errorf("Expected a line containing %q, got %v", tt.wantLine, all)
			}
		})
	}
}

func TestCheckWarnsMonstersWithoutWeapons(t *testing.T) {
	data := levelJSON(2, 2, [2]int{0, 0}, [2]int{1, 1}, `[["S","M:goblin"],["C","E"]]`)
	report := Check("test.json", data, level.DefaultCatalog())

	if !report.Valid() {
		t.Errorf("Expected route around the monster, got %v", report.Errors)
	}
	if !hasLine(report.Warnings, "no weapons") {
		t.Errorf("Expected weapon warning, got %v", report.Warnings)
	}
}

func TestCheckYAML(t *testing.T) {
	data := []byte(`id: 4
name: Yaml
rows: 2
cols: 2
start: {row: 0, col: 0}
end: {row: 1, col: 1}
grid:
  - [S, C]
  - [C, E]
`)
	report := Check("four.yaml", data, level.DefaultCatalog())
	if !report.Valid() {
		t.Errorf("Expected valid YAML level, got %v", report.Errors)
	}
}

func TestFightCost(t *testing.T) {
	goblin := level.EnemyTemplate{Name: "goblin", HP: 14, Attack: 3}
	orc := level.EnemyTemplate{Name: "orc", HP: 20, Attack: 5}

	tests := []struct {
		enemy  level.EnemyTemplate
		damage int
		want   int
	}{
		{goblin, 15, 0},
		{goblin, 10, 3},
		{goblin, 5, 6},
		{orc, 20, 0},
		{orc, 10, 5},
		{orc, 15, 5},
	}

	for _, tt := range tests {
		if got := FightCost(tt.enemy, tt.damage); got != tt.want {
			t.Errorf("Expected FightCost(%s, %d) = %d, got %d", tt.enemy.Name, tt.damage, tt.want, got)
		}
	}
}

func TestBuiltinLevelsAreValid(t *testing.T) {
	files, err := expand([]string{filepath.Join("..", "..", "game", "levels", "data")})
	if err != nil {
		t.Fatalf("Failed to list levels: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("Expected built-in level files")
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", file, err)
		}
		report := Check(filepath.Base(file), data, level.DefaultCatalog())
		if !report.Valid() {
			t.Errorf("Expected %s to be valid, got %v", file, report.Errors)
		}
	}
}
