package engine

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/fliplabyrinth/game/level"
	"github.com/wricardo/fliplabyrinth/messages"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Commands
	Interact(pos Position) Outcome
	Move(direction string) Outcome
	Attack() Outcome
	EnemyTurn() Outcome
	Tick() bool
	Reset()

	// Queries
	State() State
	Status() Status
	Message() string
	PossibleMoves() []string
	Breakdown() ScoreBreakdown
	AwaitingEnemy() bool
	Level() *level.Descriptor

	// Session bookkeeping
	ClaimVictory() bool
	MessageSeq() int
	ClearMessage(seq int) bool
	Snapshot() Snapshot
}

// Game is the aggregate owning all mutable state of one level attempt
type Game struct {
	level   *level.Descriptor
	catalog *level.Catalog
	text    messages.Translator

	status    Status
	pos       Position
	hp        int
	moves     int
	elapsed   int
	revealed  *RevealTracker
	defeated  mapset.Set[Position]
	inventory *Inventory
	combat    *CombatSession
	history   []HistoryEntry

	lastBattle   *BattleResult
	message      string
	messageSeq   int
	scoreClaimed bool
}

var _ Engine = (*Game)(nil)

// NewGame starts a level attempt. The descriptor must be compiled.
func NewGame(d *level.Descriptor, catalog *level.Catalog, text messages.Translator) (*Game, error) {
	if d == nil || !d.Compiled() {
		return nil, fmt.Errorf("level descriptor is not compiled")
	}
	if catalog == nil {
		catalog = level.DefaultCatalog()
	}
	if text == nil {
		text = messages.MustNew(messages.DefaultLanguage)
	}
	g := &Game{level: d, catalog: catalog, text: text}
	g.Reset()
	return g, nil
}

// Reset reinitializes every piece of state to its session-start value
func (g *Game) Reset() {
	g.status = StatusPlaying
	g.pos = g.level.Start
	g.hp = g.level.MaxHP
	g.moves = 0
	g.elapsed = 0
	g.revealed = NewRevealTracker(g.level.Start)
	g.defeated = mapset.New[Position]()
	g.inventory = NewInventory()
	g.combat = nil
	g.history = nil
	g.lastBattle = nil
	g.scoreClaimed = false
	g.setMessage("")
}

// Interact resolves a request to act on the tile at pos
func (g *Game) Interact(pos Position) Outcome {
	if g.combat != nil || g.status != StatusPlaying {
		return g.outcome(OutcomeRejected, pos)
	}
	if !g.IsLegalTarget(pos) {
		return g.outcome(OutcomeIgnored, pos)
	}

	g.revealed.Reveal(pos)
	tile := g.level.TileAt(pos)

	switch tile.Kind {
	case level.Door:
		if !g.inventory.HasKey(tile.Param) {
			return g.block(pos, g.text.Get(messages.BlockedDoor, tile.Param, tile.Param))
		}
	case level.Obstacle:
		info, _ := g.catalog.Obstacle(tile.Param)
		if !g.inventory.Has(info.RequiredItem) {
			return g.block(pos, g.text.Get(messages.BlockedObstacle, info.Name, g.itemName(info.RequiredItem)))
		}
	case level.Monster:
		if g.defeated.Has(pos) {
			break
		}
		enemy := g.enemy(tile.Param)
		if !g.inventory.HasWeapon() {
			return g.block(pos, g.text.Get(messages.BlockedMonster, enemy.Name))
		}
		combat := BeginCombat(enemy, pos, g.hp, g.playerDamage(), g.text)
		g.combat = &combat
		return g.outcome(OutcomeCombat, pos)
	case level.Wall:
		return g.outcome(OutcomeWall, pos)
	case level.Floor, level.Start, level.Exit, level.Key, level.Weapon, level.Item:
	default:
		panic(fmt.Sprintf("engine: unhandled tile kind %s at %s", tile.Kind, pos))
	}

	out := g.commitMove("interact", pos)
	if g.message != "" {
		g.setMessage("")
	}
	out.Collected = g.collect(tile)
	g.checkWin()
	out.Message = g.message
	out.Status = g.status
	return out
}

// Move interacts with the neighbor in direction. Unknown directions are ignored.
func (g *Game) Move(direction string) Outcome {
	target, ok := Neighbor(g.pos, direction)
	if !ok {
		return g.outcome(OutcomeIgnored, g.pos)
	}
	return g.Interact(target)
}

// Attack resolves the player's half-turn of the active encounter
func (g *Game) Attack() Outcome {
	if g.combat == nil || g.status != StatusPlaying || !g.combat.IsPlayerTurn {
		return g.outcome(OutcomeRejected, g.pos)
	}
	return g.advanceCombat()
}

// EnemyTurn resolves the enemy's half-turn of the active encounter
func (g *Game) EnemyTurn() Outcome {
	if g.combat == nil || g.status != StatusPlaying || g.combat.IsPlayerTurn {
		return g.outcome(OutcomeRejected, g.pos)
	}
	return g.advanceCombat()
}

// Tick advances the clock by one second while playing. It reports whether time advanced.
func (g *Game) Tick() bool {
	if g.status != StatusPlaying {
		return false
	}
	g.elapsed++
	return true
}

// AwaitingEnemy reports whether the active encounter waits on the enemy's half-turn
func (g *Game) AwaitingEnemy() bool {
	return g.status == StatusPlaying && g.combat != nil && !g.combat.IsPlayerTurn
}

// Status returns the current game status
func (g *Game) Status() Status {
	return g.status
}

// Message returns the current transient message, empty when none
func (g *Game) Message() string {
	return g.message
}

// Level returns the descriptor being played
func (g *Game) Level() *level.Descriptor {
	return g.level
}

// Breakdown recomputes the score from the current state
func (g *Game) Breakdown() ScoreBreakdown {
	return CalculateScore(g.revealed.Size(), g.hp, g.defeated.Size(), g.elapsed, g.moves)
}

// ClaimVictory returns true exactly once per won attempt
func (g *Game) ClaimVictory() bool {
	if g.status != StatusWon || g.scoreClaimed {
		return false
	}
	g.scoreClaimed = true
	return true
}

// MessageSeq identifies the current message for delayed dismissal
func (g *Game) MessageSeq() int {
	return g.messageSeq
}

// ClearMessage dismisses the message if it is still the one identified by seq
func (g *Game) ClearMessage(seq int) bool {
	if seq != g.messageSeq || g.message == "" {
		return false
	}
	g.setMessage("")
	return true
}

func (g *Game) advanceCombat() Outcome {
	next := g.combat.Advance(g.text)
	g.combat = &next
	out := g.outcome(OutcomeCombat, next.Tile)
	if !next.Finished() {
		return out
	}

	result := next.Result()
	g.lastBattle = &result
	g.combat = nil
	out.Battle = &result
	g.setMessage(next.Log[len(next.Log)-1])

	if result.Victory {
		g.defeated.Put(next.Tile)
		g.hp = result.FinalPlayerHP
		g.commitMove("combat", next.Tile)
		g.checkWin()
	} else {
		g.hp = 0
		g.status = StatusLost
		g.setMessage(g.text.Get(messages.GameOver))
	}
	out.Message = g.message
	out.Status = g.status
	return out
}

func (g *Game) commitMove(action string, to Position) Outcome {
	from := g.pos
	g.moves++
	g.pos = to
	g.history = append(g.history, HistoryEntry{Action: action, From: from, To: to, MoveNumber: g.moves})
	return g.outcome(OutcomeMoved, to)
}

func (g *Game) collect(tile level.Tile) *Item {
	var item Item
	var key string
	switch tile.Kind {
	case level.Key:
		item = Item{ID: "key_" + tile.Param, Kind: level.KindKey, Color: tile.Param, Name: g.itemName("key_" + tile.Param)}
		key = messages.PickupKey
	case level.Weapon:
		item = Item{ID: tile.Param, Kind: level.KindWeapon, Name: tile.Param}
		if w, ok := g.catalog.Weapon(tile.Param); ok {
			item.Name = w.Name
		}
		key = messages.PickupWeapon
	case level.Item:
		item = Item{ID: tile.Param, Kind: level.KindItem, Name: g.itemName(tile.Param)}
		key = messages.PickupItem
	default:
		return nil
	}
	if !g.inventory.Add(item) {
		return nil
	}
	if item.Kind == level.KindKey {
		g.setMessage(g.text.Get(key, item.Color))
	} else {
		g.setMessage(g.text.Get(key, item.Name))
	}
	return &item
}

func (g *Game) checkWin() {
	if g.status == StatusPlaying && g.pos == g.level.End {
		g.status = StatusWon
		g.setMessage(g.text.Get(messages.LevelComplete, g.Breakdown().Total))
	}
}

func (g *Game) block(pos Position, msg string) Outcome {
	g.setMessage(msg)
	out := g.outcome(OutcomeBlocked, pos)
	out.Message = msg
	return out
}

func (g *Game) outcome(kind OutcomeKind, pos Position) Outcome {
	return Outcome{Kind: kind, Target: pos, Status: g.status}
}

func (g *Game) setMessage(msg string) {
	g.message = msg
	g.messageSeq++
}

func (g *Game) enemy(monsterType string) level.EnemyTemplate {
	enemy, _ := g.level.Enemy(monsterType, g.catalog)
	if enemy.Name == "" {
		enemy.Name = monsterType
	}
	return enemy
}

func (g *Game) playerDamage() int {
	weapon, ok := g.inventory.Weapon()
	if !ok {
		return level.UnarmedDamage
	}
	return g.catalog.WeaponDamage(weapon.ID)
}

func (g *Game) itemName(id string) string {
	if info, ok := g.catalog.Item(id); ok {
		return info.Name
	}
	return id
}
