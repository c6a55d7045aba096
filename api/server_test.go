package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/fliplabyrinth/game/engine"
	"github.com/wricardo/fliplabyrinth/game/highscore"
	"github.com/wricardo/fliplabyrinth/game/level"
	"github.com/wricardo/fliplabyrinth/game/levels"
	"github.com/wricardo/fliplabyrinth/game/service"
	"github.com/wricardo/fliplabyrinth/game/session"
	"github.com/wricardo/fliplabyrinth/transport/websocket"
)

// winningPath walks the built-in level 1 from start to exit
var winningPath = []string{"right", "right", "down", "down", "right", "right", "right", "down", "down", "down"}

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	levelMgr, err := levels.NewDefaultManager()
	if err != nil {
		t.Fatalf("Failed to load levels: %v", err)
	}
	board, err := highscore.NewBoard(levelMgr, nil)
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}

	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	svc := service.NewGameService(session.NewManager(), levelMgr, board, hub, service.Options{
		RetryDelay:    time.Millisecond,
		TickInterval:  time.Hour,
		SubmitTimeout: time.Second,
		Language:      "en",
	})
	t.Cleanup(func() {
		svc.Close()
		cancel()
	})

	return NewServer(svc, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func do(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.ServeHTTP(w, makeRequest(method, path, body))
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
}

func createSession(t *testing.T, s *Server, levelID int, name string) *service.SessionInfo {
	t.Helper()
	w := do(s, "POST", "/api/sessions", map[string]interface{}{"level_id": levelID, "player_name": name})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)
	return &info
}

func move(t *testing.T, s *Server, id, direction string) *service.InteractionResult {
	t.Helper()
	w := do(s, "POST", "/api/sessions/"+id+"/move", map[string]string{"direction": direction})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var result service.InteractionResult
	parseResponse(t, w, &result)
	return &result
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t)
	w := do(s, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestLevelsAndCatalog(t *testing.T) {
	s := setupTestServer(t)

	t.Run("list levels", func(t *testing.T) {
		w := do(s, "GET", "/api/levels", nil)
		var summaries []level.Summary
		parseResponse(t, w, &summaries)
		if len(summaries) != 3 {
			t.Errorf("Expected 3 levels, got %d", len(summaries))
		}
	})

	t.Run("get level", func(t *testing.T) {
		w := do(s, "GET", "/api/levels/2", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var d level.Descriptor
		parseResponse(t, w, &d)
		if d.ID != 2 || d.Rows != 8 {
			t.Errorf("Expected level 2 of 8 rows, got %d/%d", d.ID, d.Rows)
		}
	})

	t.Run("unknown level", func(t *testing.T) {
		if w := do(s, "GET", "/api/levels/99", nil); w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("catalog", func(t *testing.T) {
		var enemies []level.EnemyTemplate
		parseResponse(t, do(s, "GET", "/api/enemies", nil), &enemies)
		if len(enemies) != 3 {
			t.Errorf("Expected 3 enemies, got %d", len(enemies))
		}
		var weapons []level.WeaponInfo
		parseResponse(t, do(s, "GET", "/api/weapons", nil), &weapons)
		if len(weapons) != 3 {
			t.Errorf("Expected 3 weapons, got %d", len(weapons))
		}
		for _, path := range []string{"/api/obstacles", "/api/items"} {
			if w := do(s, "GET", path, nil); w.Code != http.StatusOK {
				t.Errorf("Expected status 200 for %s, got %d", path, w.Code)
			}
		}
	})
}

func TestCreateSession(t *testing.T) {
	s := setupTestServer(t)

	t.Run("defaults to level 1", func(t *testing.T) {
		w := do(s, "POST", "/api/sessions", nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		var info service.SessionInfo
		parseResponse(t, w, &info)
		if info.LevelID != 1 || info.PlayerName != service.DefaultPlayerName {
			t.Errorf("Expected level 1 for %s, got %+v", service.DefaultPlayerName, info)
		}
		if info.GameState == nil || info.GameState.Tiles[0][1] != engine.HiddenTile {
			t.Error("Expected unrevealed tiles to be hidden")
		}
	})

	t.Run("named player", func(t *testing.T) {
		info := createSession(t, s, 2, "ada")
		if info.PlayerName != "ada" || info.LevelName != "Goblin gallery" {
			t.Errorf("Unexpected session: %+v", info)
		}
	})

	t.Run("unknown level", func(t *testing.T) {
		w := do(s, "POST", "/api/sessions", map[string]int{"level_id": 99})
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		if w := do(s, "POST", "/api/sessions", "{not json"); w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestListSessions(t *testing.T) {
	s := setupTestServer(t)
	for i := 0; i < 3; i++ {
		createSession(t, s, 1, "ada")
	}

	w := do(s, "GET", "/api/sessions?sort=created&order=asc&limit=2", nil)
	var resp struct {
		Count    int                    `json:"count"`
		Total    int                    `json:"total"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	parseResponse(t, w, &resp)
	if resp.Count != 2 || resp.Total != 3 || len(resp.Sessions) != 2 {
		t.Errorf("Expected 2 of 3 sessions, got count=%d total=%d", resp.Count, resp.Total)
	}
}

func TestGameCommands(t *testing.T) {
	s := setupTestServer(t)
	info := createSession(t, s, 1, "ada")
	base := "/api/sessions/" + info.ID

	t.Run("wall", func(t *testing.T) {
		result := move(t, s, info.ID, "down")
		if result.Outcome.Kind != engine.OutcomeWall {
			t.Errorf("Expected wall, got %s", result.Outcome.Kind)
		}
		if result.GameState.Tiles[1][0] != "W" {
			t.Errorf("Expected the wall to be revealed, got %q", result.GameState.Tiles[1][0])
		}
	})

	t.Run("move", func(t *testing.T) {
		result := move(t, s, info.ID, "right")
		if !result.Success || result.Outcome.Kind != engine.OutcomeMoved {
			t.Errorf("Expected a successful move, got %+v", result.Outcome)
		}
		if result.GameState.Position != (engine.Position{Row: 0, Col: 1}) {
			t.Errorf("Expected to stand on (0,1), got %v", result.GameState.Position)
		}
	})

	t.Run("interact ignores distant tiles", func(t *testing.T) {
		w := do(s, "POST", base+"/interact", map[string]int{"row": 4, "col": 4})
		var result service.InteractionResult
		parseResponse(t, w, &result)
		if result.Outcome.Kind != engine.OutcomeIgnored {
			t.Errorf("Expected ignored, got %s", result.Outcome.Kind)
		}
	})

	t.Run("interact requires coordinates", func(t *testing.T) {
		if w := do(s, "POST", base+"/interact", map[string]int{"row": 0}); w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("invalid direction", func(t *testing.T) {
		w := do(s, "POST", base+"/move", map[string]string{"direction": "north"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("attack without combat is rejected", func(t *testing.T) {
		w := do(s, "POST", base+"/attack", nil)
		var result service.InteractionResult
		parseResponse(t, w, &result)
		if result.Outcome.Kind != engine.OutcomeRejected {
			t.Errorf("Expected rejected, got %s", result.Outcome.Kind)
		}
	})

	t.Run("retry without submission", func(t *testing.T) {
		if w := do(s, "POST", base+"/score/retry", nil); w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("reset", func(t *testing.T) {
		w := do(s, "POST", base+"/reset", nil)
		var resp struct {
			State service.GameView `json:"state"`
		}
		parseResponse(t, w, &resp)
		if resp.State.MoveCount != 0 || len(resp.State.Revealed) != 1 {
			t.Errorf("Expected a fresh game, got %d moves and %d revealed", resp.State.MoveCount, len(resp.State.Revealed))
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		if w := do(s, "GET", "/api/sessions/zzzz/state", nil); w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
		if w := do(s, "POST", "/api/sessions/zzzz/move", map[string]string{"direction": "up"}); w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if w := do(s, "DELETE", base, nil); w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if w := do(s, "DELETE", base, nil); w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestWinRecordsHighscore(t *testing.T) {
	s := setupTestServer(t)
	info := createSession(t, s, 1, "ada")

	var last *service.InteractionResult
	for _, dir := range winningPath {
		last = move(t, s, info.ID, dir)
	}
	if last.GameState.Status != engine.StatusWon {
		t.Fatalf("Expected won after the winning path, got %s", last.GameState.Status)
	}

	var report service.ScoreReport
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		parseResponse(t, do(s, "GET", "/api/sessions/"+info.ID+"/score", nil), &report)
		if report.Submission != nil && report.Submission.Status == service.SubmissionSuccess {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if report.Submission == nil || report.Submission.Status != service.SubmissionSuccess {
		t.Fatalf("Expected a successful submission, got %+v", report.Submission)
	}
	if !report.Final || report.Breakdown.Total != report.Submission.Score {
		t.Errorf("Expected final score %d to be submitted, got %+v", report.Breakdown.Total, report)
	}

	var entries []highscore.Entry
	parseResponse(t, do(s, "GET", "/api/highscores?level_id=1", nil), &entries)
	if len(entries) != 1 || entries[0].PlayerName != "ada" || entries[0].Score != report.Breakdown.Total {
		t.Errorf("Expected ada's score on the board, got %+v", entries)
	}
}

func TestHighscores(t *testing.T) {
	s := setupTestServer(t)

	t.Run("submit", func(t *testing.T) {
		w := do(s, "POST", "/api/highscores", highscore.Submission{PlayerName: "bob", Score: 500, LevelID: 2})
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		var entry highscore.Entry
		parseResponse(t, w, &entry)
		if entry.ID == 0 || entry.PlayerName != "bob" {
			t.Errorf("Unexpected entry: %+v", entry)
		}
	})

	t.Run("invalid submission", func(t *testing.T) {
		w := do(s, "POST", "/api/highscores", highscore.Submission{PlayerName: "", Score: 500, LevelID: 2})
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("unknown level", func(t *testing.T) {
		w := do(s, "POST", "/api/highscores", highscore.Submission{PlayerName: "bob", Score: 5, LevelID: 99})
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("list", func(t *testing.T) {
		var entries []highscore.Entry
		parseResponse(t, do(s, "GET", "/api/highscores?limit=5", nil), &entries)
		if len(entries) != 1 {
			t.Errorf("Expected 1 entry, got %d", len(entries))
		}
		if w := do(s, "GET", "/api/highscores?level_id=abc", nil); w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestWebSocket(t *testing.T) {
	s := setupTestServer(t)
	info := createSession(t, s, 1, "ada")

	server := httptest.NewServer(s)
	defer server.Close()

	t.Run("missing session parameter", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/ws")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", resp.StatusCode)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/ws?session=zzzz")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", resp.StatusCode)
		}
	})

	t.Run("state pushed after a move", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session=" + info.ID
		conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("Failed to connect to WebSocket: %v", err)
		}
		defer conn.Close()

		deadline := time.Now().Add(time.Second)
		for s.hub.ClientCount(info.ID) == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}

		move(t, s, info.ID, "right")

		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read WebSocket message: %v", err)
		}
		var message struct {
			SessionID string           `json:"session_id"`
			Event     string           `json:"event"`
			Data      service.GameView `json:"data"`
		}
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != websocket.EventStateUpdate {
			t.Errorf("Expected %s, got %s", websocket.EventStateUpdate, message.Event)
		}
		if message.Data.MoveCount != 1 {
			t.Errorf("Expected pushed state after one move, got %d moves", message.Data.MoveCount)
		}
	})
}
