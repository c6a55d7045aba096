// Package websocket pushes game updates to browsers and spectators.
//
// A single Hub goroutine owns the map of connected clients keyed by session
// ID. Everything else talks to it through channels: connections register
// and unregister, and the game service queues broadcasts with
// BroadcastEvent, which never blocks the caller.
//
// Outgoing frames are JSON Messages:
//
//	{"session_id": "ab12", "event": "state_update", "data": {...game view...}}
//
// Events are state_update after every command, tick once per second while
// a game runs, enemy_turn, message_expired and score_submission.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
