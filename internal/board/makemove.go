package board

// Undo holds what UnmakeMove needs to restore the position exactly.
type Undo struct {
	Mover      Occupant // state on the from square before the move
	Captured   Occupant
	CapturedSq Square // NoSquare when nothing was taken
	Rook       Occupant // castling rook before the move
	EnPassant  Square
	Castled    [2]bool
}

// Absorb returns the state of a piece after it captures victim and, when
// promo is not NoPieceType, promotes. The victim's base type joins the
// attacker's abilities unless it is the attacker's own base type; the
// victim's abilities never transfer. Promotion sets the base type and drops
// the pawn ability, keeping every other ability. A king never promotes.
func Absorb(attacker Occupant, victim PieceType, promo PieceType) Occupant {
	after := attacker
	if victim != NoPieceType && victim != attacker.Type {
		after.Abilities = after.Abilities.With(victim)
	}
	if promo != NoPieceType && attacker.Type != King {
		after.Type = promo
		after.Abilities = after.Abilities.Without(Pawn)
	}
	after.Moved = true
	return after
}

// MakeMove applies m, which must be pseudo-legal, and returns the undo record.
// It touches only board state.
func (p *Position) MakeMove(m Move) Undo {
	us := p.SideToMove
	from, to := m.From(), m.To()

	undo := Undo{
		CapturedSq: NoSquare,
		EnPassant:  p.EnPassant,
		Castled:    p.Castled,
	}

	mover, _ := p.removeOccupant(from)
	undo.Mover = mover

	capSq := m.CaptureSquare(us)
	victim := NoPieceType
	if captured, ok := p.removeOccupant(capSq); ok {
		undo.Captured = captured
		undo.CapturedSq = capSq
		victim = captured.Type
	}

	p.setOccupant(to, Absorb(mover, victim, m.Promotion()))

	if m.IsCastling() {
		path := castlePaths[us][0]
		if m.Flag() == FlagCastleQueenside {
			path = castlePaths[us][1]
		}
		rook, _ := p.removeOccupant(path.rook)
		undo.Rook = rook
		moved := rook
		moved.Moved = true
		p.setOccupant(path.transit[0], moved)
		p.Castled[us] = true
	}

	p.EnPassant = NoSquare
	if isDoublePush(mover, us, from, to) {
		p.EnPassant = Square((int(from) + int(to)) / 2)
	}

	p.SideToMove = us.Other()
	return undo
}

// isDoublePush reports whether a move from the start rank two squares
// forward was made by a piece with pawn movement.
func isDoublePush(mover Occupant, us Color, from, to Square) bool {
	if mover.Type != Pawn && !mover.Abilities.Has(Pawn) {
		return false
	}
	if us == White {
		return from.Rank() == 1 && int(to) == int(from)+16
	}
	return from.Rank() == 6 && int(to) == int(from)-16
}

// UnmakeMove reverses MakeMove(m) given its undo record.
func (p *Position) UnmakeMove(m Move, undo Undo) {
	us := p.SideToMove.Other()
	p.SideToMove = us

	if m.IsCastling() {
		path := castlePaths[us][0]
		if m.Flag() == FlagCastleQueenside {
			path = castlePaths[us][1]
		}
		p.removeOccupant(path.transit[0])
		p.setOccupant(path.rook, undo.Rook)
	}

	p.removeOccupant(m.To())
	p.setOccupant(m.From(), undo.Mover)
	if undo.CapturedSq != NoSquare {
		p.setOccupant(undo.CapturedSq, undo.Captured)
	}

	p.EnPassant = undo.EnPassant
	p.Castled = undo.Castled
}
