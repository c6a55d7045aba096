package level

import (
	"fmt"
	"strings"
)

// TileKind enumerates the semantic tile variants
type TileKind int

const (
	Floor TileKind = iota
	Wall
	Start
	Exit
	Monster
	Key
	Door
	Weapon
	Item
	Obstacle
)

var kindNames = map[TileKind]string{
	Floor:    "floor",
	Wall:     "wall",
	Start:    "start",
	Exit:     "exit",
	Monster:  "monster",
	Key:      "key",
	Door:     "door",
	Weapon:   "weapon",
	Item:     "item",
	Obstacle: "obstacle",
}

func (k TileKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TileKind(%d)", int(k))
}

// Tile is a parsed grid cell. Param carries the monster type, key or door
// color, weapon id, item id or obstacle type depending on Kind.
type Tile struct {
	Kind  TileKind `json:"kind"`
	Param string   `json:"param,omitempty"`
}

// Code renders the tile back into the cell grammar
func (t Tile) Code() string {
	switch t.Kind {
	case Floor:
		return "C"
	case Wall:
		return "W"
	case Start:
		return "S"
	case Exit:
		return "E"
	case Monster:
		return "M:" + t.Param
	case Key:
		return "K:" + t.Param
	case Door:
		return "D:" + t.Param
	case Weapon:
		return "Wpn:" + t.Param
	case Item:
		return "I:" + t.Param
	case Obstacle:
		return "O:" + t.Param
	}
	return "?"
}

// Walkable reports whether the tile can ever be stood on
func (t Tile) Walkable() bool {
	return t.Kind != Wall
}

var prefixKinds = map[string]TileKind{
	"M":   Monster,
	"K":   Key,
	"D":   Door,
	"I":   Item,
	"O":   Obstacle,
	"Wpn": Weapon,
	"W":   Weapon,
}

// ParseTile parses one cell code. Codes outside the grammar are errors.
func ParseTile(code string) (Tile, error) {
	switch code {
	case "S":
		return Tile{Kind: Start}, nil
	case "E":
		return Tile{Kind: Exit}, nil
	case "C":
		return Tile{Kind: Floor}, nil
	case "W":
		return Tile{Kind: Wall}, nil
	}

	prefix, param, found := strings.Cut(code, ":")
	if !found {
		return Tile{}, fmt.Errorf("unknown tile code %q", code)
	}
	kind, ok := prefixKinds[prefix]
	if !ok {
		return Tile{}, fmt.Errorf("unknown tile prefix %q in %q", prefix, code)
	}
	if param == "" {
		return Tile{}, fmt.Errorf("tile code %q is missing its parameter", code)
	}
	return Tile{Kind: kind, Param: param}, nil
}
