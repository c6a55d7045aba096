package engine

import (
	"testing"

	"github.com/wricardo/fliplabyrinth/game/level"
	"github.com/wricardo/fliplabyrinth/messages"
)

func TestCombatHalfTurns(t *testing.T) {
	text := messages.MustNew("en")
	orc := level.EnemyTemplate{Type: "orc", Name: "Orc", HP: 20, Attack: 5}

	c := BeginCombat(orc, pos(0, 1), 50, 10, text)
	if !c.IsPlayerTurn || c.Turn != 1 || c.EnemyHP != 20 {
		t.Fatalf("Unexpected initial combat: %+v", c)
	}

	next := c.Advance(text)
	if c.EnemyHP != 20 || len(c.Log) != 1 {
		t.Error("Advance must not mutate the receiver")
	}
	if next.EnemyHP != 10 || next.IsPlayerTurn || next.Turn != 1 {
		t.Errorf("Unexpected state after player half-turn: %+v", next)
	}

	next = next.Advance(text)
	if next.PlayerHP != 45 || !next.IsPlayerTurn || next.Turn != 2 {
		t.Errorf("Unexpected state after enemy half-turn: %+v", next)
	}

	next = next.Advance(text)
	if !next.Victory() || next.Defeat() {
		t.Fatalf("Expected victory, got %+v", next)
	}
	result := next.Result()
	if result.DamageDealt != 20 || result.DamageTaken != 5 || result.FinalPlayerHP != 45 {
		t.Errorf("Unexpected result: %+v", result)
	}

	if again := next.Advance(text); len(again.Log) != len(next.Log) {
		t.Error("A finished encounter must not advance")
	}
}

func TestCombatConservation(t *testing.T) {
	text := messages.MustNew("en")
	for _, enemy := range level.DefaultCatalog().Enemies() {
		for _, damage := range []int{1, 5, 10, 15, 20} {
			for _, hp := range []int{1, 3, 7, 100} {
				c := BeginCombat(enemy, pos(0, 0), hp, damage, text)
				for steps := 0; !c.Finished(); steps++ {
					if steps > 1000 {
						t.Fatalf("%s vs damage %d: combat never ends", enemy.Type, damage)
					}
					c = c.Advance(text)
					if c.EnemyHP < 0 || c.PlayerHP < 0 {
						t.Fatalf("Negative HP: %+v", c)
					}
					if c.Victory() && c.Defeat() {
						t.Fatalf("Victory and defeat at once: %+v", c)
					}
				}
				r := c.Result()
				if r.Victory == c.Defeat() {
					t.Errorf("Result disagrees with state: %+v", r)
				}
				if !r.Victory && r.FinalPlayerHP != 0 {
					t.Errorf("Defeat must end at 0 HP, got %d", r.FinalPlayerHP)
				}
			}
		}
	}
}

func TestUnarmedFallbackDamage(t *testing.T) {
	g := createTestGame(t, [][]string{
		{"S", "C"},
		{"C", "E"},
	}, pos(0, 0), pos(1, 1), 0)
	if got := g.playerDamage(); got != level.UnarmedDamage {
		t.Errorf("Expected unarmed damage %d, got %d", level.UnarmedDamage, got)
	}
	g.inventory.Add(Item{ID: "mystery", Kind: level.KindWeapon})
	if got := g.playerDamage(); got != level.DefaultWeaponDamage {
		t.Errorf("Expected default weapon damage %d, got %d", level.DefaultWeaponDamage, got)
	}
}
