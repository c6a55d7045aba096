package level

import (
	"errors"
	"fmt"
)

// ErrInvalidLevel is wrapped by every validation failure
var ErrInvalidLevel = errors.New("invalid level")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: level validation: %s", ErrInvalidLevel, fmt.Sprintf(format, args...))
}

// Validate checks a descriptor for structural correctness and returns its parsed grid
func Validate(d *Descriptor, catalog *Catalog) ([][]Tile, error) {
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	if d.ID <= 0 {
		return nil, invalid("id must be positive, got %d", d.ID)
	}
	if d.Name == "" {
		return nil, invalid("name is required")
	}

	if d.Rows < MinGridSize || d.Rows > MaxGridSize {
		return nil, invalid("rows must be between %d and %d, got %d", MinGridSize, MaxGridSize, d.Rows)
	}
	if d.Cols < MinGridSize || d.Cols > MaxGridSize {
		return nil, invalid("cols must be between %d and %d, got %d", MinGridSize, MaxGridSize, d.Cols)
	}
	if len(d.Grid) != d.Rows {
		return nil, invalid("grid must have %d rows, got %d", d.Rows, len(d.Grid))
	}

	for _, e := range d.Enemies {
		if e.Type == "" {
			return nil, invalid("enemy template without type")
		}
		if e.HP <= 0 {
			return nil, invalid("enemy %q must have hp > 0, got %d", e.Type, e.HP)
		}
		if e.Attack < 0 {
			return nil, invalid("enemy %q must have attack >= 0, got %d", e.Type, e.Attack)
		}
	}

	tiles := make([][]Tile, d.Rows)
	for r, row := range d.Grid {
		if len(row) != d.Cols {
			return nil, invalid("row %d must have %d cells, got %d", r, d.Cols, len(row))
		}
		tiles[r] = make([]Tile, d.Cols)
		for c, code := range row {
			tile, err := ParseTile(code)
			if err != nil {
				return nil, invalid("cell (%d,%d): %v", r, c, err)
			}
			switch tile.Kind {
			case Monster:
				if _, ok := d.Enemy(tile.Param, catalog); !ok {
					return nil, invalid("cell (%d,%d): unknown monster type %q", r, c, tile.Param)
				}
			case Obstacle:
				if _, ok := catalog.Obstacle(tile.Param); !ok {
					return nil, invalid("cell (%d,%d): unknown obstacle type %q", r, c, tile.Param)
				}
			}
			tiles[r][c] = tile
		}
	}

	if !d.InBounds(d.Start) {
		return nil, invalid("start %s is out of bounds", d.Start)
	}
	if !d.InBounds(d.End) {
		return nil, invalid("end %s is out of bounds", d.End)
	}
	if d.Start == d.End {
		return nil, invalid("start and end must differ")
	}
	if tiles[d.Start.Row][d.Start.Col].Kind == Wall {
		return nil, invalid("start %s is a wall", d.Start)
	}
	if tiles[d.End.Row][d.End.Col].Kind == Wall {
		return nil, invalid("end %s is a wall", d.End)
	}

	return tiles, nil
}
