// Package engine implements the absorb chess search engine.
package engine

import (
	"github.com/hailam/absorbchess/internal/board"
)

// Evaluate returns the static evaluation of pos from the side to move's
// point of view, computed from scratch.
func Evaluate(pos *board.Position, params *EvalParams) int {
	var c evalCache
	return c.score(pos, params)
}

// material returns White's ability-aware material minus Black's.
func material(pos *board.Position, params *EvalParams) int {
	score := 0
	for occ := pos.AllOccupied; occ != 0; {
		sq := occ.PopLSB()
		o, _ := pos.OccupantAt(sq)
		if o.Color == board.White {
			score += params.PieceValue(o)
		} else {
			score -= params.PieceValue(o)
		}
	}
	return score
}

// mobilityOf counts the squares each piece of c attacks through its whole
// movement set, excluding squares held by its own side.
func mobilityOf(pos *board.Position, c board.Color) int {
	own := pos.Occupied[c]
	n := 0
	for bb := own; bb != 0; {
		sq := bb.PopLSB()
		o, _ := pos.OccupantAt(sq)
		n += (board.MovementAttacks(o.Movement(), c, sq, pos.AllOccupied) &^ own).PopCount()
	}
	return n
}

func mobility(pos *board.Position, params *EvalParams) int {
	return params.MobilityWeight * (mobilityOf(pos, board.White) - mobilityOf(pos, board.Black))
}

func kingSafetyOf(pos *board.Position, c board.Color, params *EvalParams) int {
	ksq := pos.KingSquare(c)
	if ksq == board.NoSquare {
		return 0
	}
	score := 0
	if pos.IsInCheck(c) {
		score -= params.CheckPenalty
	}

	// An absorbing king is harder to corner.
	abilities := pos.AbilitiesAt(ksq).Without(board.King)
	score += params.KingAbilityBonus * abilities.Count()

	switch {
	case pos.Castled[c]:
		score += params.CastledBonus
	case canStillCastle(pos, c):
		score += params.CanCastleBonus
	}
	return score
}

// canStillCastle reports whether c keeps an unmoved base king on its home
// square and at least one unmoved base rook in a corner.
func canStillCastle(pos *board.Position, c board.Color) bool {
	home, corners := board.E1, board.SquareBB(board.A1)|board.SquareBB(board.H1)
	if c == board.Black {
		home, corners = board.E8, board.SquareBB(board.A8)|board.SquareBB(board.H8)
	}
	if !pos.Pieces[c][board.King].IsSet(home) || pos.Moved.IsSet(home) {
		return false
	}
	return pos.Pieces[c][board.Rook]&corners&^pos.Moved != 0
}

func kingSafety(pos *board.Position, params *EvalParams) int {
	return kingSafetyOf(pos, board.White, params) - kingSafetyOf(pos, board.Black, params)
}
