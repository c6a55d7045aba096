package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/fliplabyrinth/game/engine"
	"github.com/wricardo/fliplabyrinth/game/highscore"
	"github.com/wricardo/fliplabyrinth/game/level"
	"github.com/wricardo/fliplabyrinth/game/service"
)

func formatLevels(summaries []level.Summary) string {
	var b strings.Builder
	b.WriteString("Available Levels:\n\n")
	for _, s := range summaries {
		var features []string
		if s.HasCombat {
			features = append(features, "combat")
		}
		if s.HasKeys {
			features = append(features, "keys")
		}
		if s.HasObstacles {
			features = append(features, "obstacles")
		}
		if len(features) == 0 {
			features = append(features, "maze only")
		}
		fmt.Fprintf(&b, "%d. %s (%s, %dx%d) - %s\n   %s\n", s.ID, s.Name, s.Difficulty, s.Rows, s.Cols,
			strings.Join(features, ", "), s.Description)
	}
	return b.String()
}

func formatGameState(view *service.GameView) string {
	if view == nil {
		return ""
	}
	var b strings.Builder

	switch view.Status {
	case engine.StatusWon:
		b.WriteString("🎉 VICTORY!\n")
	case engine.StatusLost:
		b.WriteString("💀 GAME OVER\n")
	}

	fmt.Fprintf(&b, "Level: %s (%dx%d)\n", view.LevelName, view.Rows, view.Cols)
	fmt.Fprintf(&b, "Position: (%d,%d)  Exit: (%d,%d)\n", view.Position.Row, view.Position.Col, view.End.Row, view.End.Col)
	fmt.Fprintf(&b, "HP: %d/%d  Moves: %d  Time: %s\n", view.HP, view.MaxHP, view.MoveCount, view.Elapsed)
	fmt.Fprintf(&b, "Score: %d\n", view.Score.Total)

	if len(view.Inventory) > 0 {
		names := make([]string, len(view.Inventory))
		for i, it := range view.Inventory {
			names[i] = it.ID
		}
		fmt.Fprintf(&b, "Inventory: %s\n", strings.Join(names, ", "))
	} else {
		b.WriteString("Inventory: empty\n")
	}

	if view.Combat != nil {
		turn := "your turn (use attack)"
		if !view.Combat.IsPlayerTurn {
			turn = "enemy's turn"
		}
		fmt.Fprintf(&b, "⚔ Fighting %s: enemy HP %d, your HP %d, %s\n",
			view.Combat.Enemy.Name, view.Combat.EnemyHP, view.Combat.PlayerHP, turn)
	}

	if view.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", view.Message)
	}

	if len(view.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "Possible moves: %s\n", strings.Join(view.PossibleMoves, ", "))
	}

	if view.Submission != nil {
		b.WriteString(formatSubmission(view.Submission))
	}

	if len(view.Tiles) > 0 {
		b.WriteString("\nMap:\n")
		for _, row := range view.State.Render() {
			b.WriteString("  " + row + "\n")
		}
	}
	return b.String()
}

func formatInteraction(result *service.InteractionResult) string {
	var b strings.Builder
	out := result.Outcome

	switch out.Kind {
	case engine.OutcomeMoved:
		fmt.Fprintf(&b, "✓ Moved to (%d,%d)\n", out.Target.Row, out.Target.Col)
	case engine.OutcomeWall:
		fmt.Fprintf(&b, "✗ Wall at (%d,%d)\n", out.Target.Row, out.Target.Col)
	case engine.OutcomeBlocked:
		fmt.Fprintf(&b, "✗ Blocked at (%d,%d): %s\n", out.Target.Row, out.Target.Col, out.Message)
	case engine.OutcomeIgnored:
		fmt.Fprintf(&b, "✗ (%d,%d) is not next to you\n", out.Target.Row, out.Target.Col)
	case engine.OutcomeRejected:
		b.WriteString("✗ Action not allowed right now\n")
	case engine.OutcomeCombat:
		b.WriteString("⚔ Combat\n")
	}

	if out.Collected != nil {
		fmt.Fprintf(&b, "Picked up: %s\n", out.Collected.ID)
	}
	writeBattle(&b, out.Battle)
	if result.EnemyOutcome != nil {
		writeBattle(&b, result.EnemyOutcome.Battle)
	}
	if result.EnemyPending {
		b.WriteString("The enemy is about to strike back; check game_state.\n")
	}

	if result.GameState != nil {
		if c := result.GameState.Combat; c != nil && len(c.Log) > 0 {
			b.WriteString("Battle log:\n")
			for _, line := range c.Log {
				b.WriteString("  " + line + "\n")
			}
		}
		b.WriteString("\n" + formatGameState(result.GameState))
	}
	return b.String()
}

func writeBattle(b *strings.Builder, battle *engine.BattleResult) {
	if battle == nil {
		return
	}
	if battle.Victory {
		fmt.Fprintf(b, "Defeated %s: dealt %d, took %d, HP left %d\n",
			battle.Enemy, battle.DamageDealt, battle.DamageTaken, battle.FinalPlayerHP)
		return
	}
	fmt.Fprintf(b, "Defeated by %s: dealt %d, took %d\n", battle.Enemy, battle.DamageDealt, battle.DamageTaken)
}

func formatScoreReport(report *service.ScoreReport) string {
	var b strings.Builder
	bd := report.Breakdown
	state := "provisional"
	if report.Final {
		state = "final"
	}
	fmt.Fprintf(&b, "Score (%s): %d\n", state, bd.Total)
	fmt.Fprintf(&b, "  Tiles revealed:   %d -> +%d\n", bd.TilesRevealed, bd.TilesPoints)
	fmt.Fprintf(&b, "  HP remaining:     %d -> +%d\n", bd.HP, bd.HPBonus)
	fmt.Fprintf(&b, "  Enemies defeated: %d -> +%d\n", bd.EnemiesDefeated, bd.EnemyBonus)
	fmt.Fprintf(&b, "  Time:             %s -> +%d\n", report.Elapsed, bd.TimeBonus)
	fmt.Fprintf(&b, "  Moves:            %d -> -%d\n", bd.MoveCount, bd.MovePenalty)
	if report.Submission != nil {
		b.WriteString(formatSubmission(report.Submission))
	}
	return b.String()
}

func formatSubmission(st *service.SubmissionState) string {
	switch st.Status {
	case service.SubmissionSuccess:
		return fmt.Sprintf("Highscore: saved (entry #%d, score %d)\n", st.EntryID, st.Score)
	case service.SubmissionError:
		return fmt.Sprintf("Highscore: failed after %d attempts (%s); use retry_score\n", st.Attempts, st.Error)
	}
	return fmt.Sprintf("Highscore: saving score %d...\n", st.Score)
}

func formatTopScores(entries []highscore.Entry) string {
	if len(entries) == 0 {
		return "No scores yet.\n"
	}
	var b strings.Builder
	b.WriteString("Top Scores:\n\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%2d. %-30s %6d  (level %d, %s)\n", i+1, e.PlayerName, e.Score, e.LevelID, e.CreatedAt.Format("2006-01-02"))
	}
	return b.String()
}
