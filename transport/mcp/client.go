package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/fliplabyrinth/game/highscore"
	"github.com/wricardo/fliplabyrinth/game/level"
	"github.com/wricardo/fliplabyrinth/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Flip Labyrinth",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Flip Labyrinth - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Reach the exit (E) of a hidden maze. Every tile starts face down; you reveal a
tile by interacting with a neighbor of your position.

AVAILABLE TOOLS:
- list_levels: List the levels
- create_session: Start a game on a level
- list_sessions: List all active sessions
- game_state: Show the revealed map and your stats
- interact: Act on the tile at row/col next to you
- move: Act on the neighbor in a direction (up/down/left/right)
- attack: Strike the enemy you are fighting
- reset_game: Restart the level
- score_breakdown: Show how the score is computed
- retry_score: Resend a score whose submission failed
- top_scores: Show the leaderboard
- game_rules: Full rules and strategy notes`),
	)

	c.registerTools()
}

func sessionSchema(extra map[string]interface{}, required ...string) mcp.ToolInputSchema {
	props := map[string]interface{}{
		"session_id": map[string]interface{}{
			"type":        "string",
			"description": "Session ID",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   append([]string{"session_id"}, required...),
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List the available levels with size, difficulty and features",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session on a level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "integer",
					"description": "Level to play (default 1)",
				},
				"player_name": map[string]interface{}{
					"type":        "string",
					"description": "Name recorded on the leaderboard",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state with the revealed map",
		InputSchema: sessionSchema(nil),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "interact",
		Description: "Interact with the tile at row/col. Only the four neighbors of your position can be targeted.",
		InputSchema: sessionSchema(map[string]interface{}{
			"row": map[string]interface{}{
				"type":        "integer",
				"description": "Row of the target tile (0-based)",
			},
			"col": map[string]interface{}{
				"type":        "integer",
				"description": "Column of the target tile (0-based)",
			},
			"intent": map[string]interface{}{
				"type":        "string",
				"description": "Brief explanation of why you chose this tile",
			},
		}, "row", "col"),
	}, c.handleInteract)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Interact with the neighboring tile in a direction",
		InputSchema: sessionSchema(map[string]interface{}{
			"direction": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"up", "down", "left", "right"},
				"description": "Direction to move",
			},
			"intent": map[string]interface{}{
				"type":        "string",
				"description": "Brief explanation of the intent behind this move",
			},
		}, "direction"),
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "attack",
		Description: "Strike the enemy of the current fight. The enemy answers shortly after.",
		InputSchema: sessionSchema(nil),
	}, c.handleAttack)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to its initial state",
		InputSchema: sessionSchema(nil),
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "score_breakdown",
		Description: "Show the score and how each factor contributes",
		InputSchema: sessionSchema(nil),
	}, c.handleScoreBreakdown)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "retry_score",
		Description: "Resend the score of a won game whose submission failed",
		InputSchema: sessionSchema(nil),
	}, c.handleRetryScore)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "top_scores",
		Description: "Show the leaderboard of a level, or of every level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "integer",
					"description": "Level to show (omit for all levels)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Number of entries (default 10, max 100)",
				},
			},
		},
	}, c.handleTopScores)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the complete game rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Serve runs the MCP server over stdio until stdin closes
func (c *Client) Serve() error {
	return server.ServeStdio(c.mcpServer)
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	id := cast.ToString(args["session_id"])
	if id == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(id) + suffix, nil
}

// Tool handlers

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var summaries []level.Summary
	if err := c.apiCall(ctx, "GET", "/api/levels", nil, &summaries); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLevels(summaries)), nil
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	levelID := 1
	if v, ok := args["level_id"]; ok {
		id, err := cast.ToIntE(v)
		if err != nil || id <= 0 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid level_id %v", v)), nil
		}
		levelID = id
	}

	body := map[string]interface{}{
		"level_id":    levelID,
		"player_name": cast.ToString(args["player_name"]),
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nPlayer: %s\nLevel: %d - %s\n", info.ID, info.PlayerName, info.LevelID, info.LevelName)
	if info.GameState != nil {
		result += "\n" + formatGameState(info.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (%s on level %d %s, %s, created %s)\n",
			s.ID, s.PlayerName, s.LevelID, s.LevelName, s.Status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var view service.GameView
	if err := c.apiCall(ctx, "GET", path, nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&view)), nil
}

func (c *Client) handleInteract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/interact")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	row, rowErr := cast.ToIntE(args["row"])
	col, colErr := cast.ToIntE(args["col"])
	if args["row"] == nil || args["col"] == nil || rowErr != nil || colErr != nil {
		return mcp.NewToolResultError("row and col must be integers"), nil
	}

	return c.command(ctx, path, map[string]int{"row": row, "col": col})
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/move")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	direction := strings.ToLower(cast.ToString(args["direction"]))
	return c.command(ctx, path, map[string]string{"direction": direction})
}

func (c *Client) handleAttack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/attack")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return c.command(ctx, path, nil)
}

func (c *Client) command(ctx context.Context, path string, body interface{}) (*mcp.CallToolResult, error) {
	var result service.InteractionResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatInteraction(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/reset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *service.GameView `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleScoreBreakdown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/score")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var report service.ScoreReport
	if err := c.apiCall(ctx, "GET", path, nil, &report); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatScoreReport(&report)), nil
}

func (c *Client) handleRetryScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/score/retry")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state service.SubmissionState
	if err := c.apiCall(ctx, "POST", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSubmission(&state)), nil
}

func (c *Client) handleTopScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	q := url.Values{}
	if v, ok := args["level_id"]; ok {
		q.Set("level_id", cast.ToString(cast.ToInt(v)))
	}
	if v, ok := args["limit"]; ok {
		q.Set("limit", cast.ToString(cast.ToInt(v)))
	}

	var entries []highscore.Entry
	if err := c.apiCall(ctx, "GET", "/api/highscores?"+q.Encode(), nil, &entries); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTopScores(entries)), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameRules), nil
}

const gameRules = `Flip Labyrinth - Complete Rules

GAME OBJECTIVE:
Reach the exit tile (E). The whole maze starts face down except your start tile.

REVEALING AND MOVING:
- You may only target one of the four tiles next to you (up, down, left, right).
- Targeting a tile reveals it for good, then resolves it:
  - floor, start, exit: you step onto it
  - wall: revealed but you stay put
  - key, weapon, item: you step onto it and pick it up
  - door: you need the key of its color, otherwise you are blocked
  - obstacle: you need its item (fire: water_bucket, rock: pickaxe, water: swim_boots)
  - monster: without a weapon you are blocked; with one a fight starts
- A defeated monster's tile stays cleared.

MAP LEGEND (game_state):
  @ you    ? hidden   . floor    # wall     S start    E exit
  M monster x defeated k key     D door     ! weapon   i item   O obstacle

COMBAT:
- You strike first with the attack tool. Your damage is your first weapon's
  damage (sword 15, axe 20, dagger 10). The enemy strikes back with its attack.
- Turns alternate until one side reaches 0 HP. Winning moves you onto the
  monster's tile. Losing ends the game.
- No other action is accepted while a fight is on.

SCORING (computed when you win):
  tiles revealed x 10 + HP x 5 + enemies defeated x 50
  + max(0, 1000 - seconds) - moves x 2, never below 0

STRATEGY:
- Reveal towards the exit but pick up weapons before engaging monsters.
- HP does not regenerate; avoid optional fights when HP is low.
- Use score_breakdown to see what each factor is worth.`
