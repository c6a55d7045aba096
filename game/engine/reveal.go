package engine

import "github.com/zyedidia/generic/mapset"

// RevealTracker is the fog of war: the set of revealed cells
type RevealTracker struct {
	cells mapset.Set[Position]
}

// NewRevealTracker returns a tracker with only start revealed
func NewRevealTracker(start Position) *RevealTracker {
	r := &RevealTracker{cells: mapset.New[Position]()}
	r.cells.Put(start)
	return r
}

// Reveal marks pos as revealed. It reports whether pos was newly revealed.
func (r *RevealTracker) Reveal(pos Position) bool {
	if r.cells.Has(pos) {
		return false
	}
	r.cells.Put(pos)
	return true
}

// IsRevealed reports whether pos has been revealed
func (r *RevealTracker) IsRevealed(pos Position) bool {
	return r.cells.Has(pos)
}

// Size returns the number of revealed cells
func (r *RevealTracker) Size() int {
	return r.cells.Size()
}

// Positions lists revealed cells in row-major order
func (r *RevealTracker) Positions() []Position {
	return sortedPositions(r.cells)
}
