package highscore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

type fakeLevels map[int]bool

func (f fakeLevels) Exists(id int) bool { return f[id] }

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name    string
		sub     Submission
		wantErr bool
	}{
		{"valid", Submission{PlayerName: "ada", Score: 10, LevelID: 1}, false},
		{"zero score", Submission{PlayerName: "ada", Score: 0, LevelID: 1}, false},
		{"empty name", Submission{PlayerName: "  ", Score: 10, LevelID: 1}, true},
		{"negative score", Submission{PlayerName: "ada", Score: -1, LevelID: 1}, true},
		{"missing level", Submission{PlayerName: "ada", Score: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubmission(tt.sub)
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, ErrInvalidSubmission) {
				t.Errorf("Expected ErrInvalidSubmission, got %v", err)
			}
		})
	}
}

func TestBoardSubmitAndTop(t *testing.T) {
	ctx := context.Background()
	b, err := NewBoard(fakeLevels{1: true, 2: true}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	long := strings.Repeat("é", 40)
	e, err := b.Submit(ctx, Submission{PlayerName: long, Score: 300, LevelID: 1})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if e.ID != 1 {
		t.Errorf("Expected id 1, got %d", e.ID)
	}
	if len([]rune(e.PlayerName)) != MaxNameLength {
		t.Errorf("Expected name truncated to %d runes, got %d", MaxNameLength, len([]rune(e.PlayerName)))
	}
	if e.CreatedAt.IsZero() {
		t.Error("Expected createdAt set")
	}

	b.Submit(ctx, Submission{PlayerName: "b", Score: 500, LevelID: 1})
	b.Submit(ctx, Submission{PlayerName: "c", Score: 100, LevelID: 2})

	top, err := b.Top(ctx, 1, 0)
	if err != nil {
		t.Fatalf("Top failed: %v", err)
	}
	if len(top) != 2 || top[0].Score != 500 || top[1].Score != 300 {
		t.Errorf("Unexpected level 1 ranking: %+v", top)
	}

	all, _ := b.Top(ctx, 0, 2)
	if len(all) != 2 || all[0].Score != 500 {
		t.Errorf("Unexpected global ranking: %+v", all)
	}

	empty, _ := b.Top(ctx, 3, 10)
	if empty == nil || len(empty) != 0 {
		t.Errorf("Expected empty non-nil list, got %#v", empty)
	}

	if _, err := b.Submit(ctx, Submission{PlayerName: "x", Score: 1, LevelID: 9}); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("Expected ErrUnknownLevel, got %v", err)
	}
}

func TestBoardKeepsTopTwentyPerLevel(t *testing.T) {
	ctx := context.Background()
	b, _ := NewBoard(nil, nil)

	for i := 0; i < 25; i++ {
		b.Submit(ctx, Submission{PlayerName: "p", Score: i * 10, LevelID: 1})
	}
	b.Submit(ctx, Submission{PlayerName: "other", Score: 1, LevelID: 2})

	top, _ := b.Top(ctx, 1, MaxLimit)
	if len(top) != KeepPerLevel {
		t.Fatalf("Expected %d entries kept, got %d", KeepPerLevel, len(top))
	}
	if top[len(top)-1].Score != 50 {
		t.Errorf("Expected lowest kept score 50, got %d", top[len(top)-1].Score)
	}
	if others, _ := b.Top(ctx, 2, 10); len(others) != 1 {
		t.Error("Pruning must not touch other levels")
	}
}

func TestBoardDeduplicatesSubmissionID(t *testing.T) {
	ctx := context.Background()
	b, _ := NewBoard(nil, nil)
	sub := Submission{PlayerName: "ada", Score: 42, LevelID: 1, SubmissionID: "abc"}

	first, _ := b.Submit(ctx, sub)
	second, err := b.Submit(ctx, sub)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("Expected same entry, got %d and %d", first.ID, second.ID)
	}
	if top, _ := b.Top(ctx, 1, 10); len(top) != 1 {
		t.Errorf("Expected one entry, got %d", len(top))
	}
}

func TestBoardFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "scores.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	b, err := NewBoard(nil, store)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b.Submit(ctx, Submission{PlayerName: "ada", Score: 10, LevelID: 1})
	b.Submit(ctx, Submission{PlayerName: "bob", Score: 20, LevelID: 1})

	reloaded, err := NewBoard(nil, store)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	top, _ := reloaded.Top(ctx, 1, 10)
	if len(top) != 2 || top[0].PlayerName != "bob" {
		t.Errorf("Unexpected reloaded entries: %+v", top)
	}
	e, _ := reloaded.Submit(ctx, Submission{PlayerName: "cy", Score: 5, LevelID: 1})
	if e.ID != 3 {
		t.Errorf("Expected ids to continue at 3, got %d", e.ID)
	}
}

func TestBoardHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b, _ := NewBoard(nil, nil)
	if _, err := b.Submit(ctx, Submission{PlayerName: "a", Score: 1, LevelID: 1}); err == nil {
		t.Error("Expected canceled context error")
	}
}

// Negative scores never reach the network.
func TestClientRejectsNegativeScoreBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Submit(context.Background(), Submission{PlayerName: "ada", Score: -1, LevelID: 1})
	if !errors.Is(err, ErrInvalidSubmission) {
		t.Errorf("Expected ErrInvalidSubmission, got %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("Expected no request, got %d", hits.Load())
	}
}

func TestClientRoundTrip(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			var s Submission
			json.NewDecoder(r.Body).Decode(&s)
			if s.LevelID == 404 {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": "unknown level"})
				return
			}
			json.NewEncoder(w).Encode(Entry{ID: 7, PlayerName: s.PlayerName, Score: s.Score, LevelID: s.LevelID})
		case http.MethodGet:
			gotQuery = r.URL.RawQuery
			json.NewEncoder(w).Encode([]Entry{{ID: 1, Score: 99, LevelID: 2}})
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	e, err := c.Submit(context.Background(), Submission{PlayerName: "ada", Score: 12, LevelID: 2})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if e.ID != 7 || e.Score != 12 {
		t.Errorf("Unexpected entry: %+v", e)
	}

	_, err = c.Submit(context.Background(), Submission{PlayerName: "ada", Score: 12, LevelID: 404})
	if !errors.Is(err, ErrInvalidSubmission) || !strings.Contains(err.Error(), "unknown level") {
		t.Errorf("Expected server validation error, got %v", err)
	}

	top, err := c.Top(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("Top failed: %v", err)
	}
	if len(top) != 1 || top[0].Score != 99 {
		t.Errorf("Unexpected entries: %+v", top)
	}
	if gotQuery != "level_id=2&limit=10" {
		t.Errorf("Unexpected query %q", gotQuery)
	}
}
