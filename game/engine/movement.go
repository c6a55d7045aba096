package engine

// IsAdjacent reports whether a and b are orthogonal neighbors
func IsAdjacent(a, b Position) bool {
	return ManhattanDistance(a, b) == 1
}

// IsLegalTarget reports whether the player may interact with pos:
// in bounds, adjacent, and not the player's own cell
func (g *Game) IsLegalTarget(pos Position) bool {
	if !g.level.InBounds(pos) {
		return false
	}
	return IsAdjacent(g.pos, pos)
}

// Neighbor returns the cell one step in direction from pos
func Neighbor(pos Position, direction string) (Position, bool) {
	delta, ok := Directions[direction]
	if !ok {
		return pos, false
	}
	return pos.Add(delta.Row, delta.Col), true
}

// PossibleMoves returns the directions whose target is in bounds
// and already known to be walkable
func (g *Game) PossibleMoves() []string {
	var possible []string
	for _, dir := range []string{"up", "down", "left", "right"} {
		target, _ := Neighbor(g.pos, dir)
		if !g.level.InBounds(target) {
			continue
		}
		if g.revealed.IsRevealed(target) && !g.level.TileAt(target).Walkable() {
			continue
		}
		possible = append(possible, dir)
	}
	return possible
}
