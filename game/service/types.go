package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/fliplabyrinth/game/engine"
	"github.com/wricardo/fliplabyrinth/game/highscore"
	"github.com/wricardo/fliplabyrinth/game/level"
)

// SubmissionStatus tracks the highscore submission of a won game
type SubmissionStatus string

const (
	SubmissionSaving  SubmissionStatus = "saving"
	SubmissionSuccess SubmissionStatus = "success"
	SubmissionError   SubmissionStatus = "error"
)

// Event names pushed to the notifier
const (
	EventStateUpdate = "state_update"
	EventTick        = "tick"
	EventEnemyTurn   = "enemy_turn"
	EventMessage     = "message_expired"
	EventSubmission  = "score_submission"
)

// SubmissionState is the outcome of the score submission of a won game
type SubmissionState struct {
	Status       SubmissionStatus  `json:"status"`
	Score        int               `json:"score"`
	SubmissionID string            `json:"submission_id"`
	Attempts     int               `json:"attempts"`
	EntryID      int               `json:"entry_id,omitempty"`
	Error        string            `json:"error,omitempty"`
	TopScores    []highscore.Entry `json:"top_scores,omitempty"`
}

// GameView is the state of a session as served to clients
type GameView struct {
	SessionID  string `json:"session_id"`
	PlayerName string `json:"player_name"`
	engine.State
	PossibleMoves []string         `json:"possible_moves"`
	Submission    *SubmissionState `json:"submission,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string    `json:"id"`
	PlayerName     string    `json:"player_name"`
	LevelID        int       `json:"level_id"`
	LevelName      string    `json:"level_name"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	GameState      *GameView `json:"game_state"`
}

// InteractionResult contains the result of a command
type InteractionResult struct {
	Success      bool            `json:"success"`
	Outcome      engine.Outcome  `json:"outcome"`
	EnemyOutcome *engine.Outcome `json:"enemy_outcome,omitempty"`
	EnemyPending bool            `json:"enemy_pending"`
	GameState    *GameView       `json:"game_state"`
}

// ScoreReport is the current score breakdown of a session
type ScoreReport struct {
	SessionID  string                `json:"session_id"`
	Status     engine.Status         `json:"status"`
	Final      bool                  `json:"final"`
	Elapsed    string                `json:"elapsed"`
	Breakdown  engine.ScoreBreakdown `json:"breakdown"`
	Submission *SubmissionState      `json:"submission,omitempty"`
}

// CatalogInfo lists every catalog entry
type CatalogInfo struct {
	Enemies   []level.EnemyTemplate `json:"enemies"`
	Obstacles []level.ObstacleInfo  `json:"obstacles"`
	Items     []level.ItemInfo      `json:"items"`
	Weapons   []level.WeaponInfo    `json:"weapons"`
}

// Session represents an active game session
type Session struct {
	ID             string
	PlayerName     string
	LevelID        int
	Engine         engine.Engine
	CreatedAt      time.Time
	LastAccessedAt time.Time
	Submission     *SubmissionState

	// mu serializes every command, timer callback and snapshot of the session
	mu           sync.Mutex
	epoch        int
	closed       bool
	stopClock    context.CancelFunc
	enemyTimer   *time.Timer
	messageTimer *time.Timer
	messageSeq   int
}

// Snapshot returns the engine snapshot and submission state under the session lock
func (s *Session) Snapshot() (engine.Snapshot, *SubmissionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Engine.Snapshot(), s.Submission.clone()
}

// Touch marks the session as accessed now
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastAccessedAt = time.Now()
}

// LastAccess returns when the session was last accessed
func (s *Session) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastAccessedAt
}

func (st *SubmissionState) clone() *SubmissionState {
	if st == nil {
		return nil
	}
	c := *st
	c.TopScores = append([]highscore.Entry(nil), st.TopScores...)
	return &c
}
