// Package api exposes the game service over HTTP.
//
// Endpoints:
//
//	GET    /health
//	GET    /api/levels                      level summaries
//	GET    /api/levels/{id}                 full level descriptor
//	GET    /api/enemies|obstacles|items|weapons
//	GET    /api/highscores?level_id=&limit= leaderboard
//	POST   /api/highscores                  {playerName, score, levelId, submissionId}
//	POST   /api/sessions                    {level_id, player_name}
//	GET    /api/sessions                    ?sort=created|accessed&order=asc|desc&limit=
//	GET    /api/sessions/{id}
//	DELETE /api/sessions/{id}
//	GET    /api/sessions/{id}/state
//	POST   /api/sessions/{id}/interact      {row, col}
//	POST   /api/sessions/{id}/move          {direction}
//	POST   /api/sessions/{id}/attack
//	POST   /api/sessions/{id}/reset
//	GET    /api/sessions/{id}/score
//	POST   /api/sessions/{id}/score/retry
//	GET    /ws?session={id}                 WebSocket upgrade
//
// Command endpoints answer with an InteractionResult and push the new game
// view to the session's WebSocket clients. An interaction the engine
// ignores or rejects is still a 200: the outcome kind says what happened.
//
// Errors are JSON with a status code:
//
//	{"error": "session not found: session not found"}
//
// 400 for malformed input, 404 for unknown sessions and levels, 500 otherwise.
package api
