package engine

import "github.com/hailam/absorbchess/internal/board"

// evalCache holds the White-perspective evaluation components of the
// engine's current position. Material follows moves incrementally; mobility
// and king safety are rebuilt by recompute when stale.
type evalCache struct {
	material      int
	materialValid bool

	mobility   int
	kingSafety int
	restValid  bool
}

// invalidate drops every component.
func (c *evalCache) invalidate() {
	*c = evalCache{}
}

// recompute fills the stale components from pos.
func (c *evalCache) recompute(pos *board.Position, params *EvalParams) {
	if !c.materialValid {
		c.material = material(pos, params)
		c.materialValid = true
	}
	if !c.restValid {
		c.mobility = mobility(pos, params)
		c.kingSafety = kingSafety(pos, params)
		c.restValid = true
	}
}

// moved records that a move changed White's material lead by delta.
func (c *evalCache) moved(delta int) {
	if c.materialValid {
		c.material += delta
	}
	c.restValid = false
}

// score returns the evaluation for the side to move of pos.
func (c *evalCache) score(pos *board.Position, params *EvalParams) int {
	c.recompute(pos, params)
	total := c.material + c.mobility + c.kingSafety
	if pos.SideToMove == board.Black {
		return -total
	}
	return total
}

// materialDelta is the change in White's material lead caused by a move
// that MakeMove has just applied to pos.
func materialDelta(pos *board.Position, m board.Move, undo board.Undo, params *EvalParams) int {
	after, _ := pos.OccupantAt(m.To())
	delta := params.PieceValue(after) - params.PieceValue(undo.Mover)
	if undo.CapturedSq != board.NoSquare {
		delta += params.PieceValue(undo.Captured)
	}
	if undo.Mover.Color == board.Black {
		return -delta
	}
	return delta
}
