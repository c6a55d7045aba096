// Package engine provides the core game logic for the tile-reveal labyrinth.
//
// The engine package implements the game mechanics including:
//   - Fog of war: tiles are revealed as the player interacts with them
//   - Orthogonal movement gated by adjacency, doors, obstacles and monsters
//   - Inventory of keys, weapons and items, unique by id
//   - Turn-based combat resolved one half-turn at a time
//   - The multi-factor score breakdown
//
// Core Types:
//
// Game is the session aggregate. It owns every piece of mutable state for one
// level attempt and exposes commands (Interact, Move, Attack, EnemyTurn, Tick,
// Reset) and queries (State, Breakdown). The engine never performs I/O and
// never starts goroutines; timers and persistence live in the service layer.
//
// Usage:
//
//	desc, err := levels.FetchLevel(1)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := engine.NewGame(desc, level.DefaultCatalog(), messages.MustNew("en"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome := game.Interact(engine.Position{Row: 0, Col: 1})
//	state := game.State()
//
// Game Rules:
//
// The player starts on the start tile with full HP. Clicking an adjacent tile
// reveals it and, when nothing blocks the way, moves the player onto it.
// Locked doors need the key of their color, obstacles need their item, and
// monsters need a weapon and a won fight. Reaching the exit wins the level;
// losing all HP in a fight loses it.
package engine
