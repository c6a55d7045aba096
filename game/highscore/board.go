package highscore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/inconshreveable/log15/v3"
)

var logger = log15.New("module", "highscore")

// LevelChecker reports whether a level id exists
type LevelChecker interface {
	Exists(id int) bool
}

// Board is the in-process leaderboard
type Board struct {
	mu      sync.Mutex
	entries []Entry
	nextID  int
	levels  LevelChecker
	store   Store
	now     func() time.Time
}

// NewBoard creates a board. levels may be nil to accept any level id;
// store may be nil to keep entries in memory only.
func NewBoard(levels LevelChecker, store Store) (*Board, error) {
	b := &Board{
		levels: levels,
		store:  store,
		nextID: 1,
		now:    time.Now,
	}
	if store == nil {
		return b, nil
	}

	entries, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load highscores: %w", err)
	}
	b.entries = entries
	for _, e := range entries {
		if e.ID >= b.nextID {
			b.nextID = e.ID + 1
		}
	}
	return b, nil
}

// Submit validates and records a score, then prunes the level to KeepPerLevel entries
func (b *Board) Submit(ctx context.Context, s Submission) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateSubmission(s); err != nil {
		return nil, err
	}
	if b.levels != nil && !b.levels.Exists(s.LevelID) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, s.LevelID)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if s.SubmissionID != "" {
		for _, e := range b.entries {
			if e.SubmissionID == s.SubmissionID {
				logger.Info("duplicate submission", "submission", s.SubmissionID, "id", e.ID)
				entry := e
				return &entry, nil
			}
		}
	}

	entry := Entry{
		ID:           b.nextID,
		PlayerName:   TruncateName(s.PlayerName),
		Score:        s.Score,
		LevelID:      s.LevelID,
		CreatedAt:    b.now().UTC(),
		SubmissionID: s.SubmissionID,
	}
	b.nextID++
	b.entries = append(b.entries, entry)
	b.prune(s.LevelID)

	if b.store != nil {
		if err := b.store.Save(b.entries); err != nil {
			logger.Error("failed to persist highscores", "err", err)
		}
	}
	logger.Info("score recorded", "id", entry.ID, "level", entry.LevelID, "score", entry.Score, "player", entry.PlayerName)
	return &entry, nil
}

// Top returns up to limit entries in descending score order.
// levelID 0 lists every level.
func (b *Board) Top(ctx context.Context, levelID, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Entry
	for _, e := range b.entries {
		if levelID == 0 || e.LevelID == levelID {
			out = append(out, e)
		}
	}
	sortEntries(out)
	limit = NormalizeLimit(limit)
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Entry{}
	}
	return out, nil
}

// prune keeps the best KeepPerLevel entries of levelID. Caller holds mu.
func (b *Board) prune(levelID int) {
	var level, others []Entry
	for _, e := range b.entries {
		if e.LevelID == levelID {
			level = append(level, e)
		} else {
			others = append(others, e)
		}
	}
	if len(level) <= KeepPerLevel {
		return
	}
	sortEntries(level)
	b.entries = append(others, level[:KeepPerLevel]...)
}

// sortEntries orders by score descending, older entries first on ties
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].ID < entries[j].ID
	})
}
