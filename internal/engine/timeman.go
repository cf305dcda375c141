package engine

import (
	"time"

	"github.com/hailam/absorbchess/internal/board"
)

// ClockLimits are the clock figures a host may pass with a search request.
// The engine does not run clocks; it only turns them into a budget for one
// FindBestMove call.
type ClockLimits struct {
	Time      [2]time.Duration // remaining time per color
	Inc       [2]time.Duration // increment per move
	MovesToGo int              // moves until the next time control, 0 = sudden death
	MoveTime  time.Duration    // fixed time per move, overrides the rest
}

// MoveBudget returns the time to spend on one move for side us at game ply
// ply, in milliseconds. Zero means no limit.
func MoveBudget(limits ClockLimits, us board.Color, ply int) int {
	if limits.MoveTime > 0 {
		return int(limits.MoveTime.Milliseconds())
	}
	timeLeft := limits.Time[us]
	if timeLeft <= 0 {
		return 0
	}

	mtg := limits.MovesToGo
	if mtg == 0 {
		// Sudden death: expect fewer moves as the game goes on.
		mtg = min(max(50-ply/4, 10), 50)
	}

	budget := timeLeft/time.Duration(mtg) + limits.Inc[us]*9/10
	if ply < 8 {
		budget = budget * 85 / 100
	}

	// Never use more than 80% of what is left.
	budget = min(budget, timeLeft*8/10)
	budget = max(budget, 10*time.Millisecond)
	return int(budget.Milliseconds())
}
