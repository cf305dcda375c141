package board

import "log"

// DebugMoveValidation logs positions whose bitboards fail Validate before
// move generation.
var DebugMoveValidation = false

// GenerateLegalMoves returns every legal move for the side to move.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generate(ml, false)
	return p.filterLegalMoves(ml)
}

// GeneratePseudoLegalMoves returns moves that follow the movement rules but
// may leave the mover's king attacked.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generate(ml, false)
	return ml
}

// GenerateCaptures returns the legal captures, en passant and
// capture-promotions included.
func (p *Position) GenerateCaptures() *MoveList {
	ml := NewMoveList()
	p.generate(ml, true)
	return p.filterLegalMoves(ml)
}

// generate emits pseudo-legal moves. For each type, sources are the base-type
// pieces of that type plus the pieces holding it as an ability; the same
// movement rule applies to both.
func (p *Position) generate(ml *MoveList, capturesOnly bool) {
	us := p.SideToMove
	occupied := p.AllOccupied

	if DebugMoveValidation {
		if err := p.Validate(); err != nil {
			log.Printf("MOVEGEN: invalid position before generation: %v\n%s", err, p)
		}
	}

	// Non-pawn targets per source square, unioned so each (from, to) is
	// emitted once however many types reach it.
	var targets [64]Bitboard
	for pt := Knight; pt <= King; pt++ {
		for src := p.movers(us, pt); src != 0; {
			from := src.PopLSB()
			targets[from] |= TypeAttacks(pt, us, from, occupied)
		}
	}

	allowed := ^p.Occupied[us]
	if capturesOnly {
		allowed = p.Occupied[us.Other()]
	}
	for own := p.Occupied[us]; own != 0; {
		from := own.PopLSB()
		for t := targets[from] & allowed; t != 0; {
			ml.Add(NewMove(from, t.PopLSB(), FlagNormal))
		}
	}

	p.generatePawnMoves(ml, us, &targets, capturesOnly)

	if !capturesOnly {
		p.generateCastlingMoves(ml, us)
	}
}

// generatePawnMoves emits pawn-rule moves for base pawns and pawn-ability
// holders, double pushes from the start rank included. A king reaching the
// last rank this way does not promote. Non-promotion moves already covered
// by a non-pawn rule of the same piece are skipped.
func (p *Position) generatePawnMoves(ml *MoveList, us Color, targets *[64]Bitboard, capturesOnly bool) {
	them := us.Other()
	pawns := p.movers(us, Pawn)
	if pawns == 0 {
		return
	}
	empty := ^p.AllOccupied
	enemies := p.Occupied[them]

	promotionRank, startRank := Rank8, Rank2
	pushDir := 8
	if us == Black {
		promotionRank, startRank = Rank1, Rank7
		pushDir = -8
	}

	kings := p.Pieces[us][King]
	addPawnMove := func(from, to Square) {
		if SquareBB(to)&promotionRank != 0 && !kings.IsSet(from) {
			addPromotions(ml, from, to)
		} else if !targets[from].IsSet(to) {
			ml.Add(NewMove(from, to, FlagNormal))
		}
	}

	if !capturesOnly {
		push1 := pawns.Forward(us) & empty
		for bb := push1; bb != 0; {
			to := bb.PopLSB()
			addPawnMove(Square(int(to)-pushDir), to)
		}

		push2 := ((pawns & startRank).Forward(us) & empty).Forward(us) & empty
		for push2 != 0 {
			to := push2.PopLSB()
			from := Square(int(to) - 2*pushDir)
			if !targets[from].IsSet(to) {
				ml.Add(NewMove(from, to, FlagNormal))
			}
		}
	}

	for src := pawns; src != 0; {
		from := src.PopLSB()
		for caps := pawnAttacks[us][from] & enemies; caps != 0; {
			addPawnMove(from, caps.PopLSB())
		}
	}

	if ep := p.EnPassant; ep != NoSquare && p.IsEmpty(ep) {
		// Only a piece with pawn movement can have made the double push.
		victim := Square(int(ep) - pushDir)
		if p.movers(them, Pawn).IsSet(victim) {
			for src := pawnAttacks[them][ep] & pawns; src != 0; {
				ml.Add(NewMove(src.PopLSB(), ep, FlagEnPassant))
			}
		}
	}
}

func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// castlePaths describes, per color and side, the rook corner, the squares that
// must be empty and the squares the king crosses or lands on.
var castlePaths = [2][2]struct {
	rook    Square
	empty   Bitboard
	transit [2]Square
	to      Square
	flag    MoveFlag
}{
	White: {
		{H1, SquareBB(F1) | SquareBB(G1), [2]Square{F1, G1}, G1, FlagCastleKingside},
		{A1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), [2]Square{D1, C1}, C1, FlagCastleQueenside},
	},
	Black: {
		{H8, SquareBB(F8) | SquareBB(G8), [2]Square{F8, G8}, G8, FlagCastleKingside},
		{A8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), [2]Square{D8, C8}, C8, FlagCastleQueenside},
	},
}

// generateCastlingMoves emits castling for an unmoved base king on its home
// square that has not castled and is not in check.
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	home := castleCorners[us].king
	if p.Castled[us] || !p.Pieces[us][King].IsSet(home) || p.Moved.IsSet(home) {
		return
	}
	them := us.Other()
	if p.IsSquareAttacked(home, them) {
		return
	}
	for _, path := range castlePaths[us] {
		if !p.Pieces[us][Rook].IsSet(path.rook) || p.Moved.IsSet(path.rook) {
			continue
		}
		if p.AllOccupied&path.empty != 0 {
			continue
		}
		if p.IsSquareAttacked(path.transit[0], them) || p.IsSquareAttacked(path.transit[1], them) {
			continue
		}
		ml.Add(NewMove(home, path.to, path.flag))
	}
}

// filterLegalMoves keeps the moves that do not leave the mover's king
// attacked, probing each with the board-only make/unmake.
func (p *Position) filterLegalMoves(ml *MoveList) *MoveList {
	result := NewMoveList()
	us := p.SideToMove
	for _, m := range ml.Slice() {
		undo := p.MakeMove(m)
		if !p.IsInCheck(us) {
			result.Add(m)
		}
		p.UnmakeMove(m, undo)
	}
	return result
}

// IsLegal reports whether m is in the legal move list.
func (p *Position) IsLegal(m Move) bool {
	return p.GenerateLegalMoves().Contains(m)
}

// HasLegalMoves reports whether the side to move has any legal move.
func (p *Position) HasLegalMoves() bool {
	ml := NewMoveList()
	p.generate(ml, false)
	us := p.SideToMove
	for _, m := range ml.Slice() {
		undo := p.MakeMove(m)
		safe := !p.IsInCheck(us)
		p.UnmakeMove(m, undo)
		if safe {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is in check with no legal move.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate reports whether the side to move has no legal move and is not in check.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}
