package highscore

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Leaderboard limits
const (
	MaxNameLength = 30
	KeepPerLevel  = 20
	DefaultLimit  = 10
	MaxLimit      = 100
)

var (
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrUnknownLevel      = errors.New("unknown level")
)

// Submission is a score sent for recording
type Submission struct {
	PlayerName   string `json:"playerName"`
	Score        int    `json:"score"`
	LevelID      int    `json:"levelId"`
	SubmissionID string `json:"submissionId,omitempty"`
}

// Entry is a recorded score
type Entry struct {
	ID           int       `json:"id"`
	PlayerName   string    `json:"playerName"`
	Score        int       `json:"score"`
	LevelID      int       `json:"levelId"`
	CreatedAt    time.Time `json:"createdAt"`
	SubmissionID string    `json:"submissionId,omitempty"`
}

// ValidateSubmission checks the fields every board requires
func ValidateSubmission(s Submission) error {
	if strings.TrimSpace(s.PlayerName) == "" {
		return fmt.Errorf("%w: playerName is required", ErrInvalidSubmission)
	}
	if s.Score < 0 {
		return fmt.Errorf("%w: score must be a non-negative number, got %d", ErrInvalidSubmission, s.Score)
	}
	if s.LevelID <= 0 {
		return fmt.Errorf("%w: levelId must be positive, got %d", ErrInvalidSubmission, s.LevelID)
	}
	return nil
}

// TruncateName trims and cuts a player name to MaxNameLength runes
func TruncateName(name string) string {
	name = strings.TrimSpace(name)
	runes := []rune(name)
	if len(runes) > MaxNameLength {
		return string(runes[:MaxNameLength])
	}
	return name
}

// NormalizeLimit applies DefaultLimit and MaxLimit
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}
