package engine

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/fliplabyrinth/game/level"
	"github.com/wricardo/fliplabyrinth/messages"
)

// State returns a deep copy of the game suitable for rendering
func (g *Game) State() State {
	s := State{
		LevelID:        g.level.ID,
		LevelName:      g.level.Name,
		Rows:           g.level.Rows,
		Cols:           g.level.Cols,
		Status:         g.status,
		Position:       g.pos,
		End:            g.level.End,
		HP:             g.hp,
		MaxHP:          g.level.MaxHP,
		MoveCount:      g.moves,
		ElapsedSeconds: g.elapsed,
		Elapsed:        FormatElapsed(g.elapsed),
		Tiles:          g.visibleTiles(),
		Revealed:       g.revealed.Positions(),
		Defeated:       sortedPositions(g.defeated),
		Inventory:      g.inventory.Items(),
		Message:        g.message,
		Score:          g.Breakdown(),
		History:        append([]HistoryEntry(nil), g.history...),
	}
	if g.combat != nil {
		c := *g.combat
		c.Log = append([]string(nil), g.combat.Log...)
		s.Combat = &c
	}
	if g.lastBattle != nil {
		b := *g.lastBattle
		s.LastBattle = &b
	}
	return s
}

// visibleTiles renders the grid with unrevealed cells hidden
func (g *Game) visibleTiles() [][]string {
	tiles := make([][]string, g.level.Rows)
	for r := range tiles {
		tiles[r] = make([]string, g.level.Cols)
		for c := range tiles[r] {
			pos := Position{Row: r, Col: c}
			if g.revealed.IsRevealed(pos) {
				tiles[r][c] = g.level.TileAt(pos).Code()
			} else {
				tiles[r][c] = HiddenTile
			}
		}
	}
	return tiles
}

// Snapshot captures the game for persistence
func (g *Game) Snapshot() Snapshot {
	s := g.State()
	return Snapshot{
		LevelID:        g.level.ID,
		Status:         g.status,
		Position:       g.pos,
		HP:             g.hp,
		MoveCount:      g.moves,
		ElapsedSeconds: g.elapsed,
		Revealed:       s.Revealed,
		Defeated:       s.Defeated,
		Inventory:      s.Inventory,
		Combat:         s.Combat,
		LastBattle:     s.LastBattle,
		Message:        g.message,
		ScoreClaimed:   g.scoreClaimed,
		History:        s.History,
	}
}

// Restore rebuilds a game from a snapshot taken on the same level
func Restore(d *level.Descriptor, catalog *level.Catalog, text messages.Translator, snap Snapshot) (*Game, error) {
	if d == nil || snap.LevelID != d.ID {
		return nil, fmt.Errorf("snapshot is for level %d", snap.LevelID)
	}
	g, err := NewGame(d, catalog, text)
	if err != nil {
		return nil, err
	}
	if !d.InBounds(snap.Position) {
		return nil, fmt.Errorf("snapshot position %s is out of bounds", snap.Position)
	}
	switch snap.Status {
	case StatusPlaying, StatusWon, StatusLost:
	default:
		return nil, fmt.Errorf("snapshot has unknown status %q", snap.Status)
	}

	g.status = snap.Status
	g.pos = snap.Position
	g.hp = min(max(snap.HP, 0), d.MaxHP)
	g.moves = snap.MoveCount
	g.elapsed = snap.ElapsedSeconds
	for _, p := range snap.Revealed {
		g.revealed.Reveal(p)
	}
	g.defeated = mapset.New[Position]()
	for _, p := range snap.Defeated {
		g.defeated.Put(p)
	}
	for _, it := range snap.Inventory {
		g.inventory.Add(it)
	}
	if snap.Combat != nil {
		c := *snap.Combat
		g.combat = &c
	}
	g.lastBattle = snap.LastBattle
	g.message = snap.Message
	g.scoreClaimed = snap.ScoreClaimed
	g.history = snap.History
	return g, nil
}
