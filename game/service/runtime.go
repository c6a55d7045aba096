package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/fliplabyrinth/game/engine"
	"github.com/wricardo/fliplabyrinth/game/highscore"
)

// startClock runs the one second elapsed clock of a session. Caller holds sess.mu.
func (s *gameServiceImpl) startClock(sess *Session) {
	if sess.closed || sess.stopClock != nil || s.ctx.Err() != nil {
		return
	}
	if sess.Engine.Status() != engine.StatusPlaying {
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	sess.stopClock = cancel
	epoch := sess.epoch

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.opts.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			sess.mu.Lock()
			if ctx.Err() != nil || sess.epoch != epoch {
				sess.mu.Unlock()
				return
			}
			if !sess.Engine.Tick() {
				sess.stopClock = nil
				sess.mu.Unlock()
				cancel()
				return
			}
			elapsed := sess.Engine.State().ElapsedSeconds
			sess.mu.Unlock()

			s.notify(sess.ID, EventTick, map[string]interface{}{
				"elapsed_seconds": elapsed,
				"elapsed":         engine.FormatElapsed(elapsed),
			})
		}
	}()
}

// stopTimers cancels the clock and pending timers. Caller holds sess.mu.
func (s *gameServiceImpl) stopTimers(sess *Session) {
	if sess.stopClock != nil {
		sess.stopClock()
		sess.stopClock = nil
	}
	if sess.enemyTimer != nil {
		sess.enemyTimer.Stop()
		sess.enemyTimer = nil
	}
	if sess.messageTimer != nil {
		sess.messageTimer.Stop()
		sess.messageTimer = nil
	}
}

// closeSession stops a session for good
func (s *gameServiceImpl) closeSession(sess *Session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.closed = true
	s.stopTimers(sess)
}

// scheduleEnemyTurn plays the enemy's half-turn after EnemyTurnDelay. Caller holds sess.mu.
func (s *gameServiceImpl) scheduleEnemyTurn(sess *Session) {
	if sess.enemyTimer != nil {
		sess.enemyTimer.Stop()
	}
	epoch := sess.epoch
	sess.enemyTimer = time.AfterFunc(s.opts.EnemyTurnDelay, func() {
		sess.mu.Lock()
		if sess.closed || sess.epoch != epoch || !sess.Engine.AwaitingEnemy() {
			sess.mu.Unlock()
			return
		}
		sess.enemyTimer = nil
		out := sess.Engine.EnemyTurn()
		logOutcome(sess.ID, out)
		s.afterCommand(sess)
		view := s.view(sess)
		sess.mu.Unlock()

		s.persist(sess.ID)
		s.notify(sess.ID, EventEnemyTurn, map[string]interface{}{
			"outcome":    out,
			"game_state": view,
		})
	})
}

// scheduleMessageExpiry dismisses message seq after MessageTTL. Caller holds sess.mu.
func (s *gameServiceImpl) scheduleMessageExpiry(sess *Session, seq int) {
	if s.opts.MessageTTL <= 0 {
		return
	}
	if sess.messageTimer != nil {
		sess.messageTimer.Stop()
	}
	epoch := sess.epoch
	sess.messageTimer = time.AfterFunc(s.opts.MessageTTL, func() {
		sess.mu.Lock()
		if sess.closed || sess.epoch != epoch || !sess.Engine.ClearMessage(seq) {
			sess.mu.Unlock()
			return
		}
		sess.messageSeq = sess.Engine.MessageSeq()
		sess.messageTimer = nil
		view := s.view(sess)
		sess.mu.Unlock()

		s.notify(sess.ID, EventMessage, view)
	})
}

// beginSubmission records the final score of a won attempt. Caller holds sess.mu.
func (s *gameServiceImpl) beginSubmission(sess *Session) {
	bd := sess.Engine.Breakdown()
	sess.Submission = &SubmissionState{
		Status:       SubmissionSaving,
		Score:        bd.Total,
		SubmissionID: uuid.NewString(),
	}
	logger.Info("submitting score", "session", sess.ID, "level", sess.LevelID, "score", bd.Total)
	s.launchSubmission(sess, true)
}

// launchSubmission sends the pending submission in the background,
// retrying once after RetryDelay when autoRetry is set. Caller holds sess.mu.
func (s *gameServiceImpl) launchSubmission(sess *Session, autoRetry bool) {
	sub := highscore.Submission{
		PlayerName:   sess.PlayerName,
		Score:        sess.Submission.Score,
		LevelID:      sess.LevelID,
		SubmissionID: sess.Submission.SubmissionID,
	}
	epoch := sess.epoch
	if s.ctx.Err() != nil {
		sess.Submission.Status = SubmissionError
		sess.Submission.Error = "service is shutting down"
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		attempts := 1
		entry, err := s.submitOnce(sub)
		if err != nil && autoRetry {
			logger.Warn("score submission failed, retrying", "session", sess.ID, "err", err)
			select {
			case <-time.After(s.opts.RetryDelay):
				attempts++
				entry, err = s.submitOnce(sub)
			case <-s.ctx.Done():
				err = s.ctx.Err()
			}
		}

		var top []highscore.Entry
		if err == nil {
			ctx, cancel := context.WithTimeout(s.ctx, s.opts.SubmitTimeout)
			var topErr error
			top, topErr = s.scores.Top(ctx, sub.LevelID, highscore.DefaultLimit)
			cancel()
			if topErr != nil {
				logger.Warn("failed to refresh leaderboard", "session", sess.ID, "err", topErr)
			}
		}

		sess.mu.Lock()
		if sess.closed || sess.epoch != epoch || sess.Submission == nil || sess.Submission.SubmissionID != sub.SubmissionID {
			sess.mu.Unlock()
			return
		}
		st := sess.Submission
		st.Attempts += attempts
		if err != nil {
			st.Status = SubmissionError
			st.Error = err.Error()
			logger.Error("score submission failed", "session", sess.ID, "attempts", st.Attempts, "err", err)
		} else {
			st.Status = SubmissionSuccess
			st.Error = ""
			st.EntryID = entry.ID
			st.TopScores = top
			logger.Info("score submitted", "session", sess.ID, "entry", entry.ID, "score", entry.Score)
		}
		state := st.clone()
		sess.mu.Unlock()

		s.persist(sess.ID)
		s.notify(sess.ID, EventSubmission, state)
	}()
}

func (s *gameServiceImpl) submitOnce(sub highscore.Submission) (*highscore.Entry, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.opts.SubmitTimeout)
	defer cancel()
	return s.scores.Submit(ctx, sub)
}
