package engine

import "github.com/wricardo/fliplabyrinth/game/level"

// Position is a grid coordinate
type Position = level.Position

// Status is the game status state machine
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// OutcomeKind classifies what one interaction did
type OutcomeKind string

const (
	// OutcomeRejected: combat in progress or the game is over
	OutcomeRejected OutcomeKind = "rejected"
	// OutcomeIgnored: out of bounds, not adjacent, or the player's own cell
	OutcomeIgnored  OutcomeKind = "ignored"
	OutcomeBlocked  OutcomeKind = "blocked"
	OutcomeWall     OutcomeKind = "wall"
	OutcomeMoved    OutcomeKind = "moved"
	OutcomeCombat   OutcomeKind = "combat"
)

// Directions accepted by Move
var Directions = map[string]Position{
	"up":    {Row: -1, Col: 0},
	"down":  {Row: 1, Col: 0},
	"left":  {Row: 0, Col: -1},
	"right": {Row: 0, Col: 1},
}

// Item is one inventory entry
type Item struct {
	ID    string         `json:"id"`
	Kind  level.ItemKind `json:"kind"`
	Color string         `json:"color,omitempty"`
	Name  string         `json:"name,omitempty"`
}

// BattleResult summarizes a finished encounter
type BattleResult struct {
	Victory       bool   `json:"victory"`
	Enemy         string `json:"enemy"`
	FinalPlayerHP int    `json:"final_player_hp"`
	DamageDealt   int    `json:"damage_dealt"`
	DamageTaken   int    `json:"damage_taken"`
}

// Outcome is the result of one command
type Outcome struct {
	Kind      OutcomeKind   `json:"kind"`
	Target    Position      `json:"target"`
	Message   string        `json:"message,omitempty"`
	Collected *Item         `json:"collected,omitempty"`
	Battle    *BattleResult `json:"battle,omitempty"`
	Status    Status        `json:"status"`
}

// ScoreBreakdown itemizes the final score
type ScoreBreakdown struct {
	TilesRevealed   int `json:"tiles_revealed"`
	TilesPoints     int `json:"tiles_points"`
	HP              int `json:"hp"`
	HPBonus         int `json:"hp_bonus"`
	EnemiesDefeated int `json:"enemies_defeated"`
	EnemyBonus      int `json:"enemy_bonus"`
	ElapsedSeconds  int `json:"elapsed_seconds"`
	TimeBonus       int `json:"time_bonus"`
	MoveCount       int `json:"move_count"`
	MovePenalty     int `json:"move_penalty"`
	Total           int `json:"total"`
}

// HistoryEntry records one accepted move
type HistoryEntry struct {
	Action     string   `json:"action"`
	From       Position `json:"from"`
	To         Position `json:"to"`
	MoveNumber int      `json:"move_number"`
}

// State is a read-only view of a game, safe to serialize and hand out
type State struct {
	LevelID        int            `json:"level_id"`
	LevelName      string         `json:"level_name"`
	Rows           int            `json:"rows"`
	Cols           int            `json:"cols"`
	Status         Status         `json:"status"`
	Position       Position       `json:"position"`
	End            Position       `json:"end"`
	HP             int            `json:"hp"`
	MaxHP          int            `json:"max_hp"`
	MoveCount      int            `json:"move_count"`
	ElapsedSeconds int            `json:"elapsed_seconds"`
	Elapsed        string         `json:"elapsed"`
	Tiles          [][]string     `json:"tiles"`
	Revealed       []Position     `json:"revealed"`
	Defeated       []Position     `json:"defeated"`
	Inventory      []Item         `json:"inventory"`
	Combat         *CombatSession `json:"combat,omitempty"`
	LastBattle     *BattleResult  `json:"last_battle,omitempty"`
	Message        string         `json:"message,omitempty"`
	Score          ScoreBreakdown `json:"score"`
	History        []HistoryEntry `json:"history,omitempty"`
}

// HiddenTile is the tile code reported for unrevealed cells
const HiddenTile = "?"

// Snapshot is the persistable form of a Game
type Snapshot struct {
	LevelID        int            `json:"level_id"`
	Status         Status         `json:"status"`
	Position       Position       `json:"position"`
	HP             int            `json:"hp"`
	MoveCount      int            `json:"move_count"`
	ElapsedSeconds int            `json:"elapsed_seconds"`
	Revealed       []Position     `json:"revealed"`
	Defeated       []Position     `json:"defeated"`
	Inventory      []Item         `json:"inventory"`
	Combat         *CombatSession `json:"combat,omitempty"`
	LastBattle     *BattleResult  `json:"last_battle,omitempty"`
	Message        string         `json:"message,omitempty"`
	ScoreClaimed   bool           `json:"score_claimed"`
	History        []HistoryEntry `json:"history,omitempty"`
}
