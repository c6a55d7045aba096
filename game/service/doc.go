// Package service orchestrates game sessions on top of the engine.
//
// GameService owns everything that happens around an engine.Game: the
// session registry, the one second elapsed clock, the delayed enemy
// half-turn of a fight, transient message expiry and the highscore
// submission of a won attempt.
//
// Every command, timer callback and snapshot of a session runs under the
// session's mutex, so an engine never sees concurrent calls. Timers
// capture the session epoch when they are scheduled; Reset bumps the
// epoch, which turns stale callbacks into no-ops.
//
// Score submission runs in the background. A failed attempt is retried
// once after Options.RetryDelay; if that fails too the submission ends
// in the error state and RetryScoreSubmission sends it again.
//
// Usage:
//
//	levels, _ := levels.NewDefaultManager()
//	sessions := session.NewManager()
//	svc := service.NewGameService(sessions, levels, board, hub, service.DefaultOptions())
//	defer svc.Close()
//
//	info, err := svc.CreateSession(ctx, 1, "ada")
//	result, err := svc.Move(ctx, info.ID, "right")
package service
