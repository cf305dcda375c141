package engine

import (
	"github.com/hailam/absorbchess/internal/board"
)

// Move ordering priorities
const (
	CaptureBase  = 100000 // captures and promotions, plus the value they gain
	KillerScore1 = 50000  // first killer move
	KillerScore2 = 40000  // second killer move

	centerBonus    = 30
	bigCenterBonus = 15
	castleBonus    = 40
)

// MoveOrderer handles move ordering for the search.
type MoveOrderer struct {
	// Killer moves (quiet moves that caused beta cutoffs)
	killers [MaxPly][2]board.Move
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets the move orderer for a new search.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
}

// ScoreMoves assigns scores to moves for ordering.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, params *EvalParams) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = mo.scoreMove(pos, moves.Get(i), ply, params)
	}
	return scores
}

// scoreMove returns the ordering score for a single move.
func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, params *EvalParams) int {
	from, to := m.From(), m.To()
	attacker, ok := pos.OccupantAt(from)
	if !ok {
		return 0
	}

	score := 0
	switch {
	case m.IsCapture(pos):
		victim, _ := pos.OccupantAt(m.CaptureSquare(pos.SideToMove))
		// Value taken plus what the attacker gains by absorbing it.
		after := board.Absorb(attacker, victim.Type, m.Promotion())
		score = CaptureBase + params.PieceValue(victim) + params.PieceValue(after) - params.PieceValue(attacker)
	case m.IsPromotion():
		after := board.Absorb(attacker, board.NoPieceType, m.Promotion())
		score = CaptureBase + params.PieceValue(after) - params.PieceValue(attacker)
	case ply < MaxPly && m == mo.killers[ply][0]:
		score = KillerScore1
	case ply < MaxPly && m == mo.killers[ply][1]:
		score = KillerScore2
	}

	switch {
	case board.Center.IsSet(to):
		score += centerBonus
	case board.BigCenter.IsSet(to):
		score += bigCenterBonus
	}
	if m.IsCastling() {
		score += castleBonus
	}

	// Deterministic jitter so equal moves do not always come out in
	// generation order.
	score += (int(attacker.Code())*to.GridRow()*7 + to.GridCol()*13) % 8
	return score
}

// SortMoves sorts moves by their scores (descending).
func SortMoves(moves *board.MoveList, scores []int) {
	// Simple selection sort (sufficient for ~40 moves)
	n := moves.Len()
	for i := 0; i < n-1; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if scores[j] > scores[best] {
				best = j
			}
		}
		if best != i {
			moves.Swap(i, best)
			scores[i], scores[best] = scores[best], scores[i]
		}
	}
}

// PickMove selects the best remaining move and moves it to position index.
// This allows lazy move sorting (only sort as much as needed).
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers adds a killer move at the given ply.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly {
		return
	}

	// Don't store if it's already the first killer
	if mo.killers[ply][0] == m {
		return
	}

	// Shift killers
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}
