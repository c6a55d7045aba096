package engine

// Score weights
const (
	PointsPerTile    = 10
	PointsPerHP      = 5
	PointsPerEnemy   = 50
	TimeBonusSeconds = 1000
	PenaltyPerMove   = 2
)

// CalculateScore computes the score breakdown. It is pure and never negative.
func CalculateScore(tilesRevealed, hp, enemiesDefeated, elapsedSeconds, moveCount int) ScoreBreakdown {
	b := ScoreBreakdown{
		TilesRevealed:   tilesRevealed,
		TilesPoints:     tilesRevealed * PointsPerTile,
		HP:              hp,
		HPBonus:         hp * PointsPerHP,
		EnemiesDefeated: enemiesDefeated,
		EnemyBonus:      enemiesDefeated * PointsPerEnemy,
		ElapsedSeconds:  elapsedSeconds,
		TimeBonus:       max(0, TimeBonusSeconds-elapsedSeconds),
		MoveCount:       moveCount,
		MovePenalty:     moveCount * PenaltyPerMove,
	}
	b.Total = max(0, b.TilesPoints+b.HPBonus+b.EnemyBonus+b.TimeBonus-b.MovePenalty)
	return b
}
