// Package level describes the labyrinth levels played by FlipLabyrinth.
//
// The level package provides:
//   - The immutable level Descriptor (grid, start, exit, enemy templates)
//   - Tile parsing from the cell grammar into a tagged Tile variant
//   - The read-only Catalog of enemies, obstacles, items and weapons
//   - Descriptor validation
//
// Cell Grammar:
//
//	S          start (walkable)
//	E          exit (walkable, win trigger)
//	C          open floor
//	W          wall
//	M:<type>   monster, type keys into the enemy catalog
//	K:<color>  key pickup
//	D:<color>  locked door, opened by the key of the same color
//	I:<id>     item pickup
//	O:<type>   obstacle, passable while holding the item the catalog requires
//	Wpn:<id>   weapon pickup (the legacy W:<id> form is accepted too)
//
// Grids are parsed once by Compile; every later lookup works on Tile values,
// never on the raw strings.
package level
