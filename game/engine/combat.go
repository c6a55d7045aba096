package engine

import (
	"github.com/wricardo/fliplabyrinth/game/level"
	"github.com/wricardo/fliplabyrinth/messages"
)

// CombatSession is one encounter. It is a value: Advance returns the next
// state and leaves the receiver untouched.
type CombatSession struct {
	Enemy            level.EnemyTemplate `json:"enemy"`
	Tile             Position            `json:"tile"`
	EnemyHP          int                 `json:"enemy_hp"`
	PlayerHP         int                 `json:"player_hp"`
	PlayerHPSnapshot int                 `json:"player_hp_snapshot"`
	PlayerDamage     int                 `json:"player_damage"`
	Turn             int                 `json:"turn"`
	IsPlayerTurn     bool                `json:"is_player_turn"`
	Log              []string            `json:"log"`
}

// BeginCombat opens an encounter; the player acts first
func BeginCombat(enemy level.EnemyTemplate, tile Position, playerHP, playerDamage int, text messages.Translator) CombatSession {
	return CombatSession{
		Enemy:            enemy,
		Tile:             tile,
		EnemyHP:          enemy.HP,
		PlayerHP:         playerHP,
		PlayerHPSnapshot: playerHP,
		PlayerDamage:     playerDamage,
		Turn:             1,
		IsPlayerTurn:     true,
		Log:              []string{text.Get(messages.BattleStart, enemy.Name)},
	}
}

// Advance resolves exactly one half-turn. A finished encounter is returned unchanged.
func (c CombatSession) Advance(text messages.Translator) CombatSession {
	if c.Finished() {
		return c
	}
	next := c
	next.Log = append([]string(nil), c.Log...)

	if c.IsPlayerTurn {
		next.EnemyHP = max(0, c.EnemyHP-c.PlayerDamage)
		next.IsPlayerTurn = false
		next.Log = append(next.Log, text.Get(messages.BattlePlayerHit, c.Turn, c.PlayerDamage, c.Enemy.Name, next.EnemyHP))
	} else {
		next.PlayerHP = max(0, c.PlayerHP-c.Enemy.Attack)
		next.IsPlayerTurn = true
		next.Turn = c.Turn + 1
		next.Log = append(next.Log, text.Get(messages.BattleEnemyHit, c.Turn, c.Enemy.Name, c.Enemy.Attack, next.PlayerHP))
	}

	switch {
	case next.Victory():
		next.Log = append(next.Log, text.Get(messages.BattleVictory, c.Enemy.Name))
	case next.Defeat():
		next.Log = append(next.Log, text.Get(messages.BattleDefeat, c.Enemy.Name))
	}
	return next
}

// Victory reports whether the enemy is down
func (c CombatSession) Victory() bool {
	return c.EnemyHP <= 0
}

// Defeat reports whether the player is down. Never true together with Victory.
func (c CombatSession) Defeat() bool {
	return c.PlayerHP <= 0 && !c.Victory()
}

// Finished reports whether the encounter is over
func (c CombatSession) Finished() bool {
	return c.Victory() || c.Defeat()
}

// Result summarizes the encounter. Only meaningful once Finished.
func (c CombatSession) Result() BattleResult {
	final := c.PlayerHP
	if c.Defeat() {
		final = 0
	}
	return BattleResult{
		Victory:       c.Victory(),
		Enemy:         c.Enemy.Name,
		FinalPlayerHP: final,
		DamageDealt:   c.Enemy.HP - c.EnemyHP,
		DamageTaken:   c.PlayerHPSnapshot - final,
	}
}
