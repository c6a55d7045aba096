package level

import "fmt"

// Validation constants
const (
	MinGridSize  = 1
	MaxGridSize  = 50
	DefaultMaxHP = 100
)

// Position is a grid coordinate
type Position struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Add returns the position offset by the given deltas
func (p Position) Add(dRow, dCol int) Position {
	return Position{Row: p.Row + dRow, Col: p.Col + dCol}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// EnemyTemplate is the combat profile of a monster type
type EnemyTemplate struct {
	Type        string `json:"type" yaml:"type"`
	Name        string `json:"name" yaml:"name"`
	HP          int    `json:"hp" yaml:"hp"`
	Attack      int    `json:"attack" yaml:"attack"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Descriptor is a level as served by the level collaborator.
// It is treated as read-only once Compile has succeeded.
type Descriptor struct {
	ID          int             `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Difficulty  string          `json:"difficulty" yaml:"difficulty"`
	Rows        int             `json:"rows" yaml:"rows"`
	Cols        int             `json:"cols" yaml:"cols"`
	Start       Position        `json:"start" yaml:"start"`
	End         Position        `json:"end" yaml:"end"`
	Grid        [][]string      `json:"grid" yaml:"grid"`
	Enemies     []EnemyTemplate `json:"enemies" yaml:"enemies"`
	MaxHP       int             `json:"max_hp,omitempty" yaml:"max_hp,omitempty"`

	tiles [][]Tile
}

// Summary is the lightweight listing entry for a level
type Summary struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Difficulty   string `json:"difficulty"`
	Rows         int    `json:"rows"`
	Cols         int    `json:"cols"`
	HasCombat    bool   `json:"has_combat"`
	HasKeys      bool   `json:"has_keys"`
	HasObstacles bool   `json:"has_obstacles"`
}

// Compile validates the descriptor against the catalog and parses its grid.
// It must succeed before the descriptor is handed to the engine.
func (d *Descriptor) Compile(catalog *Catalog) error {
	tiles, err := Validate(d, catalog)
	if err != nil {
		return err
	}
	d.tiles = tiles
	if d.MaxHP <= 0 {
		d.MaxHP = DefaultMaxHP
	}
	return nil
}

// Compiled reports whether Compile has succeeded
func (d *Descriptor) Compiled() bool {
	return d.tiles != nil
}

// InBounds reports whether pos lies on the grid
func (d *Descriptor) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < d.Rows && pos.Col >= 0 && pos.Col < d.Cols
}

// TileAt returns the parsed tile at pos. pos must be in bounds.
func (d *Descriptor) TileAt(pos Position) Tile {
	return d.tiles[pos.Row][pos.Col]
}

// Enemy resolves a monster type, preferring the level's own templates
func (d *Descriptor) Enemy(monsterType string, catalog *Catalog) (EnemyTemplate, bool) {
	for _, e := range d.Enemies {
		if e.Type == monsterType {
			return e, true
		}
	}
	if catalog != nil {
		return catalog.Enemy(monsterType)
	}
	return EnemyTemplate{}, false
}

// Summary builds the listing entry, deriving the feature flags from the grid
func (d *Descriptor) Summary() Summary {
	s := Summary{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Difficulty:  d.Difficulty,
		Rows:        d.Rows,
		Cols:        d.Cols,
	}
	for _, row := range d.tiles {
		for _, t := range row {
			switch t.Kind {
			case Monster:
				s.HasCombat = true
			case Key, Door:
				s.HasKeys = true
			case Obstacle:
				s.HasObstacles = true
			}
		}
	}
	return s
}

// CountTiles counts tiles of the given kind
func (d *Descriptor) CountTiles(kind TileKind) int {
	count := 0
	for _, row := range d.tiles {
		for _, t := range row {
			if t.Kind == kind {
				count++
			}
		}
	}
	return count
}
