package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/inconshreveable/log15/v3"

	"github.com/wricardo/fliplabyrinth/game/engine"
	"github.com/wricardo/fliplabyrinth/game/highscore"
	"github.com/wricardo/fliplabyrinth/game/level"
	"github.com/wricardo/fliplabyrinth/messages"
)

var (
	ErrNoSubmission     = errors.New("no score submission for this session")
	ErrInvalidDirection = errors.New("invalid direction")
)

// DefaultPlayerName is used when a session is created without a name
const DefaultPlayerName = "Player"

var logger = log15.New("module", "service")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelManager
	scores   ScoreBoard
	notifier Notifier
	text     messages.Translator
	opts     Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewGameService creates a new game service instance. notifier may be nil.
func NewGameService(sessions SessionManager, levels LevelManager, scores ScoreBoard, notifier Notifier, opts Options) GameService {
	ctx, cancel := context.WithCancel(context.Background())
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = 10 * time.Second
	}
	return &gameServiceImpl{
		sessions: sessions,
		levels:   levels,
		scores:   scores,
		notifier: notifier,
		text:     messages.MustNew(opts.Language),
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// CreateSession creates a new game session on levelID
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelID int, playerName string) (*SessionInfo, error) {
	desc, err := s.levels.FetchLevel(levelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load level %d: %w", levelID, err)
	}

	playerName = highscore.TruncateName(playerName)
	if playerName == "" {
		playerName = DefaultPlayerName
	}

	game, err := engine.NewGame(desc, s.levels.Catalog(), s.text)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	sess, err := s.sessions.Create("", playerName, levelID, game)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	sess.mu.Lock()
	s.startClock(sess)
	info := s.info(sess, desc.Name)
	sess.mu.Unlock()

	logger.Info("session created", "session", sess.ID, "level", levelID, "player", playerName)
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	var info *SessionInfo
	err := s.withSession(sessionID, func(sess *Session) {
		info = s.info(sess, sess.Engine.Level().Name)
	})
	return info, err
}

// ListSessions returns all active sessions ordered by creation time
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		sess.mu.Lock()
		result = append(result, s.info(sess, sess.Engine.Level().Name))
		sess.mu.Unlock()
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// DeleteSession stops a session's timers and removes it
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if sess, err := s.sessions.Get(sessionID); err == nil {
		s.closeSession(sess)
	}
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	logger.Info("session deleted", "session", sessionID)
	return nil
}

// CleanupExpired removes sessions idle for longer than maxAge
func (s *gameServiceImpl) CleanupExpired(maxAge time.Duration) int {
	removed := s.sessions.CleanupExpiredSessions(maxAge)
	for _, sess := range removed {
		s.closeSession(sess)
	}
	if len(removed) > 0 {
		logger.Info("expired sessions removed", "count", len(removed))
	}
	return len(removed)
}

// Interact requests an interaction with the tile at row, col
func (s *gameServiceImpl) Interact(ctx context.Context, sessionID string, row, col int) (*InteractionResult, error) {
	return s.command(sessionID, func(sess *Session) engine.Outcome {
		return sess.Engine.Interact(engine.Position{Row: row, Col: col})
	})
}

// Move interacts with the neighbor in direction
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*InteractionResult, error) {
	if _, ok := engine.Directions[direction]; !ok {
		return nil, fmt.Errorf("%w %q: use up, down, left or right", ErrInvalidDirection, direction)
	}
	return s.command(sessionID, func(sess *Session) engine.Outcome {
		return sess.Engine.Move(direction)
	})
}

// Attack plays the player's half-turn of the active fight
func (s *gameServiceImpl) Attack(ctx context.Context, sessionID string) (*InteractionResult, error) {
	return s.command(sessionID, func(sess *Session) engine.Outcome {
		return sess.Engine.Attack()
	})
}

// Reset restarts the level from scratch
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*GameView, error) {
	var view *GameView
	err := s.withSession(sessionID, func(sess *Session) {
		s.stopTimers(sess)
		sess.epoch++
		sess.Engine.Reset()
		sess.Submission = nil
		s.startClock(sess)
		view = s.view(sess)
	})
	if err != nil {
		return nil, err
	}
	s.persist(sessionID)
	logger.Info("session reset", "session", sessionID)
	return view, nil
}

// GetGameState returns the current view of a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*GameView, error) {
	var view *GameView
	err := s.withSession(sessionID, func(sess *Session) {
		view = s.view(sess)
	})
	return view, err
}

// GetScoreBreakdown returns the score as it stands now
func (s *gameServiceImpl) GetScoreBreakdown(ctx context.Context, sessionID string) (*ScoreReport, error) {
	var report *ScoreReport
	err := s.withSession(sessionID, func(sess *Session) {
		st := sess.Engine.State()
		report = &ScoreReport{
			SessionID:  sess.ID,
			Status:     st.Status,
			Final:      st.Status == engine.StatusWon,
			Elapsed:    st.Elapsed,
			Breakdown:  st.Score,
			Submission: sess.Submission.clone(),
		}
	})
	return report, err
}

// RetryScoreSubmission resubmits a score whose submission ended in error
func (s *gameServiceImpl) RetryScoreSubmission(ctx context.Context, sessionID string) (*SubmissionState, error) {
	var state *SubmissionState
	var retryErr error
	err := s.withSession(sessionID, func(sess *Session) {
		if sess.Submission == nil {
			retryErr = ErrNoSubmission
			return
		}
		if sess.Submission.Status == SubmissionError {
			sess.Submission.Status = SubmissionSaving
			sess.Submission.Error = ""
			s.launchSubmission(sess, false)
			logger.Info("manual score retry", "session", sess.ID)
		}
		state = sess.Submission.clone()
	})
	if err != nil {
		return nil, err
	}
	return state, retryErr
}

// ListLevels returns the level summaries
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]level.Summary, error) {
	return s.levels.ListSummaries(), nil
}

// GetLevel returns a level descriptor
func (s *gameServiceImpl) GetLevel(ctx context.Context, levelID int) (*level.Descriptor, error) {
	return s.levels.FetchLevel(levelID)
}

// Catalog lists enemies, obstacles, items and weapons
func (s *gameServiceImpl) Catalog(ctx context.Context) *CatalogInfo {
	c := s.levels.Catalog()
	return &CatalogInfo{
		Enemies:   c.Enemies(),
		Obstacles: c.Obstacles(),
		Items:     c.Items(),
		Weapons:   c.Weapons(),
	}
}

// SubmitScore records a score directly
func (s *gameServiceImpl) SubmitScore(ctx context.Context, sub highscore.Submission) (*highscore.Entry, error) {
	return s.scores.Submit(ctx, sub)
}

// ListTopScores returns the leaderboard of a level, or of all levels when levelID is 0
func (s *gameServiceImpl) ListTopScores(ctx context.Context, levelID, limit int) ([]highscore.Entry, error) {
	return s.scores.Top(ctx, levelID, limit)
}

// Close stops every session runtime and waits for background work
func (s *gameServiceImpl) Close() {
	s.cancel()
	for _, sess := range s.sessions.List() {
		s.closeSession(sess)
	}
	s.wg.Wait()
}

// withSession runs fn with the session locked and its runtime started
func (s *gameServiceImpl) withSession(sessionID string, fn func(sess *Session)) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sess.ID)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.startClock(sess)
	fn(sess)
	return nil
}

// command applies one engine command and the follow-ups it triggers
func (s *gameServiceImpl) command(sessionID string, apply func(sess *Session) engine.Outcome) (*InteractionResult, error) {
	var result *InteractionResult
	err := s.withSession(sessionID, func(sess *Session) {
		out := apply(sess)
		result = &InteractionResult{
			Success: out.Kind == engine.OutcomeMoved || out.Kind == engine.OutcomeCombat,
			Outcome: out,
		}
		logOutcome(sess.ID, out)

		if sess.Engine.AwaitingEnemy() {
			if s.opts.EnemyTurnDelay <= 0 {
				enemy := sess.Engine.EnemyTurn()
				logOutcome(sess.ID, enemy)
				result.EnemyOutcome = &enemy
			} else {
				s.scheduleEnemyTurn(sess)
				result.EnemyPending = true
			}
		}
		s.afterCommand(sess)
		result.GameState = s.view(sess)
	})
	if err != nil {
		return nil, err
	}
	s.persist(sessionID)
	return result, nil
}

// afterCommand settles timers and submission once the engine changed. Caller holds sess.mu.
func (s *gameServiceImpl) afterCommand(sess *Session) {
	if seq := sess.Engine.MessageSeq(); seq != sess.messageSeq {
		sess.messageSeq = seq
		if sess.Engine.Message() != "" {
			s.scheduleMessageExpiry(sess, seq)
		}
	}

	status := sess.Engine.Status()
	if status == engine.StatusPlaying {
		return
	}
	if sess.stopClock != nil {
		sess.stopClock()
		sess.stopClock = nil
	}
	if status == engine.StatusWon && sess.Engine.ClaimVictory() {
		s.beginSubmission(sess)
	}
	if status == engine.StatusLost {
		logger.Info("level lost", "session", sess.ID, "level", sess.LevelID)
	}
}

func (s *gameServiceImpl) info(sess *Session, levelName string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		PlayerName:     sess.PlayerName,
		LevelID:        sess.LevelID,
		LevelName:      levelName,
		Status:         string(sess.Engine.Status()),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      s.view(sess),
	}
}

func (s *gameServiceImpl) view(sess *Session) *GameView {
	return &GameView{
		SessionID:     sess.ID,
		PlayerName:    sess.PlayerName,
		State:         sess.Engine.State(),
		PossibleMoves: sess.Engine.PossibleMoves(),
		Submission:    sess.Submission.clone(),
	}
}

func (s *gameServiceImpl) persist(sessionID string) {
	if err := s.sessions.Save(sessionID); err != nil {
		logger.Warn("failed to persist session", "session", sessionID, "err", err)
	}
}

func (s *gameServiceImpl) notify(sessionID, event string, data interface{}) {
	if s.notifier != nil {
		s.notifier.BroadcastEvent(sessionID, event, data)
	}
}

func logOutcome(sessionID string, out engine.Outcome) {
	switch {
	case out.Battle != nil:
		logger.Info("combat resolved", "session", sessionID, "enemy", out.Battle.Enemy, "victory", out.Battle.Victory,
			"dealt", out.Battle.DamageDealt, "taken", out.Battle.DamageTaken)
	case out.Kind == engine.OutcomeBlocked:
		logger.Debug("interaction blocked", "session", sessionID, "target", out.Target, "msg", out.Message)
	default:
		logger.Debug("interaction", "session", sessionID, "kind", out.Kind, "target", out.Target, "status", out.Status)
	}
	if out.Status == engine.StatusWon && out.Kind != engine.OutcomeRejected {
		logger.Info("level won", "session", sessionID)
	}
}
