package engine

import (
	"strings"

	"github.com/wricardo/fliplabyrinth/game/level"
)

// Map symbols used by the text front ends
const (
	SymbolPlayer   = '@'
	SymbolHidden   = '?'
	SymbolFloor    = '.'
	SymbolWall     = '#'
	SymbolStart    = 'S'
	SymbolExit     = 'E'
	SymbolMonster  = 'M'
	SymbolDefeated = 'x'
	SymbolKey      = 'k'
	SymbolDoor     = 'D'
	SymbolWeapon   = '!'
	SymbolItem     = 'i'
	SymbolObstacle = 'O'
)

// Symbol maps a visible tile code to its one-rune map symbol
func Symbol(code string) rune {
	if code == HiddenTile {
		return SymbolHidden
	}
	tile, err := level.ParseTile(code)
	if err != nil {
		return SymbolHidden
	}
	switch tile.Kind {
	case level.Wall:
		return SymbolWall
	case level.Start:
		return SymbolStart
	case level.Exit:
		return SymbolExit
	case level.Monster:
		return SymbolMonster
	case level.Key:
		return SymbolKey
	case level.Door:
		return SymbolDoor
	case level.Weapon:
		return SymbolWeapon
	case level.Item:
		return SymbolItem
	case level.Obstacle:
		return SymbolObstacle
	}
	return SymbolFloor
}

// CellSymbol is the symbol shown at pos, accounting for the player,
// defeated monsters and pickups already in the inventory
func (s State) CellSymbol(pos Position) rune {
	if pos == s.Position {
		return SymbolPlayer
	}
	code := s.Tiles[pos.Row][pos.Col]
	sym := Symbol(code)
	switch sym {
	case SymbolMonster:
		for _, d := range s.Defeated {
			if d == pos {
				return SymbolDefeated
			}
		}
	case SymbolKey, SymbolWeapon, SymbolItem:
		if s.holds(pickupID(code)) {
			return SymbolFloor
		}
	}
	return sym
}

// Render draws the visible map, one string per row
func (s State) Render() []string {
	rows := make([]string, len(s.Tiles))
	for r, row := range s.Tiles {
		var b strings.Builder
		for c := range row {
			b.WriteRune(s.CellSymbol(Position{Row: r, Col: c}))
		}
		rows[r] = b.String()
	}
	return rows
}

func (s State) holds(id string) bool {
	for _, it := range s.Inventory {
		if it.ID == id {
			return true
		}
	}
	return false
}

// pickupID is the inventory id a pickup tile code yields
func pickupID(code string) string {
	tile, err := level.ParseTile(code)
	if err != nil {
		return ""
	}
	if tile.Kind == level.Key {
		return "key_" + tile.Param
	}
	return tile.Param
}
