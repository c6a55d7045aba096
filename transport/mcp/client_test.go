package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/fliplabyrinth/api"
	"github.com/wricardo/fliplabyrinth/game/highscore"
	"github.com/wricardo/fliplabyrinth/game/levels"
	"github.com/wricardo/fliplabyrinth/game/service"
	"github.com/wricardo/fliplabyrinth/game/session"
	"github.com/wricardo/fliplabyrinth/transport/websocket"
)

func setupAPI(t *testing.T) *httptest.Server {
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

	srv := httptest.NewServer(api.NewServer(svc, hub))
	t.Cleanup(func() {
		srv.Close()
		svc.Close()
		cancel()
	})
	return srv
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]interface{}) (string, bool) {
	t.Helper()
	result, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		t.Fatalf("%s returned error: %v", name, err)
	}
	if result == nil || len(result.Content) == 0 {
		t.Fatalf("%s returned no content", name)
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("%s returned non-text content", name)
	}
	return text.Text, result.IsError
}

var sessionIDPattern = regexp.MustCompile(`Created session: (\S+)`)

func createSession(t *testing.T, client *Client, args map[string]interface{}) string {
	t.Helper()
	text, isErr := call(t, client.handleCreateSession, "create_session", args)
	if isErr {
		t.Fatalf("create_session failed: %s", text)
	}
	m := sessionIDPattern.FindStringSubmatch(text)
	if m == nil {
		t.Fatalf("Expected session id in %q", text)
	}
	return m[1]
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
			return
		}
		if r.URL.Path == "/bare" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]int{"value": 7})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	t.Run("decodes result", func(t *testing.T) {
		var out map[string]int
		if err := client.apiCall(context.Background(), "GET", "/ok", nil, &out); err != nil {
			t.Fatalf("apiCall failed: %v", err)
		}
		if out["value"] != 7 {
			t.Errorf("Expected value 7, got %d", out["value"])
		}
	})

	t.Run("surfaces API error message", func(t *testing.T) {
		err := client.apiCall(context.Background(), "GET", "/fail", nil, nil)
		if err == nil || err.Error() != "session not found" {
			t.Errorf("Expected 'session not found', got %v", err)
		}
	})

	t.Run("falls back to status code", func(t *testing.T) {
		err := client.apiCall(context.Background(), "GET", "/bare", nil, nil)
		if err == nil || !strings.Contains(err.Error(), "500") {
			t.Errorf("Expected status code in error, got %v", err)
		}
	})
}

func TestListLevels(t *testing.T) {
	client := NewClient(setupAPI(t).URL)

	text, isErr := call(t, client.handleListLevels, "list_levels", nil)
	if isErr {
		t.Fatalf("list_levels failed: %s", text)
	}
	if !strings.Contains(text, "1. Initiation") {
		t.Errorf("Expected level 1 listed, got %s", text)
	}
}

func TestCreateSessionAndState(t *testing.T) {
	client := NewClient(setupAPI(t).URL)

	id := createSession(t, client, map[string]interface{}{"player_name": "Ada", "level_id": "1"})

	text, isErr := call(t, client.handleGameState, "game_state", map[string]interface{}{"session_id": id})
	if isErr {
		t.Fatalf("game_state failed: %s", text)
	}
	if !strings.Contains(text, "@?????") {
		t.Errorf("Expected hidden map with player at start, got %s", text)
	}
	if !strings.Contains(text, "Level: Initiation") {
		t.Errorf("Expected level name, got %s", text)
	}

	t.Run("invalid level", func(t *testing.T) {
		text, isErr := call(t, client.handleCreateSession, "create_session", map[string]interface{}{"level_id": "abc"})
		if !isErr {
			t.Errorf("Expected error for invalid level_id, got %s", text)
		}
	})

	t.Run("missing session id", func(t *testing.T) {
		text, isErr := call(t, client.handleGameState, "game_state", map[string]interface{}{})
		if !isErr || !strings.Contains(text, "session_id is required") {
			t.Errorf("Expected session_id error, got %s", text)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		_, isErr := call(t, client.handleGameState, "game_state", map[string]interface{}{"session_id": "zzzz"})
		if !isErr {
			t.Error("Expected error for unknown session")
		}
	})
}

func TestMoveAndInteract(t *testing.T) {
	client := NewClient(setupAPI(t).URL)
	id := createSession(t, client, nil)

	text, isErr := call(t, client.handleMove, "move", map[string]interface{}{"session_id": id, "direction": "RIGHT"})
	if isErr {
		t.Fatalf("move failed: %s", text)
	}
	if !strings.Contains(text, "Moved to (0,1)") {
		t.Errorf("Expected move to (0,1), got %s", text)
	}
	if !strings.Contains(text, "S@????") {
		t.Errorf("Expected rendered row 'S@????', got %s", text)
	}

	text, _ = call(t, client.handleInteract, "interact", map[string]interface{}{"session_id": id, "row": 1.0, "col": 1.0})
	if !strings.Contains(text, "Wall at (1,1)") {
		t.Errorf("Expected wall at (1,1), got %s", text)
	}

	text, _ = call(t, client.handleInteract, "interact", map[string]interface{}{"session_id": id, "row": 4, "col": 4})
	if !strings.Contains(text, "not next to you") {
		t.Errorf("Expected non-adjacent rejection, got %s", text)
	}

	text, isErr = call(t, client.handleInteract, "interact", map[string]interface{}{"session_id": id, "row": 0})
	if !isErr {
		t.Errorf("Expected error without col, got %s", text)
	}

	text, isErr = call(t, client.handleMove, "move", map[string]interface{}{"session_id": id, "direction": "sideways"})
	if !isErr {
		t.Errorf("Expected error for invalid direction, got %s", text)
	}
}

func TestWinAndScores(t *testing.T) {
	client := NewClient(setupAPI(t).URL)
	id := createSession(t, client, map[string]interface{}{"player_name": "Grace"})

	path := []string{"right", "right", "down", "down", "right", "right", "right", "down", "down", "down"}
	var text string
	for _, dir := range path {
		text, _ = call(t, client.handleMove, "move", map[string]interface{}{"session_id": id, "direction": dir})
	}
	if !strings.Contains(text, "VICTORY") {
		t.Fatalf("Expected victory after winning path, got %s", text)
	}

	text, isErr := call(t, client.handleScoreBreakdown, "score_breakdown", map[string]interface{}{"session_id": id})
	if isErr || !strings.Contains(text, "Score (final)") {
		t.Errorf("Expected final score, got %s", text)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		text, _ = call(t, client.handleTopScores, "top_scores", map[string]interface{}{"level_id": 1})
		if strings.Contains(text, "Grace") || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !strings.Contains(text, "Grace") {
		t.Errorf("Expected Grace on the leaderboard, got %s", text)
	}

	text, isErr = call(t, client.handleRetryScore, "retry_score", map[string]interface{}{"session_id": id})
	if isErr {
		t.Errorf("Expected retry to report state, got error %s", text)
	}

	text, _ = call(t, client.handleReset, "reset_game", map[string]interface{}{"session_id": id})
	if !strings.Contains(text, "@?????") {
		t.Errorf("Expected fresh map after reset, got %s", text)
	}
}

func TestGameRules(t *testing.T) {
	client := NewClient("http://localhost:0")

	text, isErr := call(t, client.handleGameRules, "game_rules", nil)
	if isErr {
		t.Fatal("game_rules should not fail")
	}
	for _, want := range []string{"COMBAT", "SCORING", "? hidden"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected rules to mention %q", want)
		}
	}
}
