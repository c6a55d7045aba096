package service

import (
	"context"
	"time"

	"github.com/wricardo/fliplabyrinth/game/engine"
	"github.com/wricardo/fliplabyrinth/game/highscore"
	"github.com/wricardo/fliplabyrinth/game/level"
)

//go:generate go tool mockgen -destination=./mocks/scoreboard_mock.go -package=mocks . ScoreBoard

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelID int, playerName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	CleanupExpired(maxAge time.Duration) int

	// Game Operations
	Interact(ctx context.Context, sessionID string, row, col int) (*InteractionResult, error)
	Move(ctx context.Context, sessionID, direction string) (*InteractionResult, error)
	Attack(ctx context.Context, sessionID string) (*InteractionResult, error)
	Reset(ctx context.Context, sessionID string) (*GameView, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*GameView, error)
	GetScoreBreakdown(ctx context.Context, sessionID string) (*ScoreReport, error)
	RetryScoreSubmission(ctx context.Context, sessionID string) (*SubmissionState, error)

	// Levels and catalog
	ListLevels(ctx context.Context) ([]level.Summary, error)
	GetLevel(ctx context.Context, levelID int) (*level.Descriptor, error)
	Catalog(ctx context.Context) *CatalogInfo

	// Highscores
	SubmitScore(ctx context.Context, sub highscore.Submission) (*highscore.Entry, error)
	ListTopScores(ctx context.Context, levelID, limit int) ([]highscore.Entry, error)

	// Close stops every clock and timer and waits for pending submissions
	Close()
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, playerName string, levelID int, eng engine.Engine) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
	CleanupExpiredSessions(maxAge time.Duration) []*Session
}

// LevelManager serves level descriptors
type LevelManager interface {
	FetchLevel(id int) (*level.Descriptor, error)
	ListSummaries() []level.Summary
	Exists(id int) bool
	Catalog() *level.Catalog
}

// ScoreBoard is the highscore collaborator
type ScoreBoard interface {
	Submit(ctx context.Context, sub highscore.Submission) (*highscore.Entry, error)
	Top(ctx context.Context, levelID, limit int) ([]highscore.Entry, error)
}

// Notifier receives pushes for state changes that happen outside a request
type Notifier interface {
	BroadcastEvent(sessionID string, event string, data interface{})
}

// Options tunes the timing of a GameService
type Options struct {
	EnemyTurnDelay time.Duration
	MessageTTL     time.Duration
	RetryDelay     time.Duration
	TickInterval   time.Duration
	SubmitTimeout  time.Duration
	Language       string
}

// DefaultOptions returns the timings the game is designed around
func DefaultOptions() Options {
	return Options{
		EnemyTurnDelay: 600 * time.Millisecond,
		MessageTTL:     2500 * time.Millisecond,
		RetryDelay:     1500 * time.Millisecond,
		TickInterval:   time.Second,
		SubmitTimeout:  10 * time.Second,
		Language:       "en",
	}
}
