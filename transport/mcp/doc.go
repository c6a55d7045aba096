// Package mcp exposes the game to AI agents over the Model Context Protocol.
//
// The client is a thin proxy: every tool translates into one call against the
// REST API, so agents and browsers share the same sessions. Tools cover level
// discovery, session creation, tile interaction, combat, score inspection and
// the leaderboard. Game state is rendered as a text map where unrevealed tiles
// show as '?'.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.Serve(); err != nil {
//		log.Fatal(err)
//	}
package mcp
