package board

import (
	"fmt"
	"strings"
)

// Position is the complete engine state. It is a comparable value type:
// copying it clones the position and == compares two positions bit for bit.
type Position struct {
	// Base-type bitboards, mutually exclusive within a color: [Color][PieceType]
	Pieces [2][6]Bitboard

	// Absorbed-ability bitboards, independent of Pieces and of each other: [Color][PieceType]
	Abilities [2][6]Bitboard

	// Squares whose occupant has moved at least once.
	Moved Bitboard

	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove Color
	Castled    [2]bool
	EnPassant  Square // square skipped by the last double push, NoSquare if none
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// EmptyPosition returns a board with no pieces, White to move.
func EmptyPosition() *Position {
	Init()
	return &Position{EnPassant: NoSquare}
}

// Copy returns an independent copy.
func (p *Position) Copy() *Position {
	c := *p
	return &c
}

// IsEmpty reports whether sq has no occupant.
func (p *Position) IsEmpty(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

// PieceAt returns the base piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	if p.AllOccupied&bb == 0 {
		return NoPiece
	}
	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	}
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return NewPiece(pt, c)
		}
	}
	return NoPiece
}

// AbilitiesAt returns the absorbed abilities of the occupant of sq.
func (p *Position) AbilitiesAt(sq Square) Abilities {
	bb := SquareBB(sq)
	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	} else if p.Occupied[White]&bb == 0 {
		return 0
	}
	var a Abilities
	for pt := Pawn; pt <= King; pt++ {
		if p.Abilities[c][pt]&bb != 0 {
			a = a.With(pt)
		}
	}
	return a
}

// OccupantAt returns the full state of sq; ok is false on an empty square.
func (p *Position) OccupantAt(sq Square) (o Occupant, ok bool) {
	piece := p.PieceAt(sq)
	if piece == NoPiece {
		return Occupant{}, false
	}
	return Occupant{
		Color:     piece.Color(),
		Type:      piece.Type(),
		Abilities: p.AbilitiesAt(sq),
		Moved:     p.Moved.IsSet(sq),
	}, true
}

// setOccupant places o on an empty square.
func (p *Position) setOccupant(sq Square, o Occupant) {
	bb := SquareBB(sq)
	p.Pieces[o.Color][o.Type] |= bb
	for pt := Pawn; pt <= King; pt++ {
		if o.Abilities.Has(pt) {
			p.Abilities[o.Color][pt] |= bb
		}
	}
	if o.Moved {
		p.Moved |= bb
	}
	p.Occupied[o.Color] |= bb
	p.AllOccupied |= bb
}

// removeOccupant clears sq, its abilities and its has-moved bit, and returns
// what was there.
func (p *Position) removeOccupant(sq Square) (Occupant, bool) {
	o, ok := p.OccupantAt(sq)
	if !ok {
		return o, false
	}
	bb := SquareBB(sq)
	p.Pieces[o.Color][o.Type] &^= bb
	for pt := Pawn; pt <= King; pt++ {
		p.Abilities[o.Color][pt] &^= bb
	}
	p.Moved &^= bb
	p.Occupied[o.Color] &^= bb
	p.AllOccupied &^= bb
	return o, true
}

// Put places an occupant on sq, replacing whatever was there.
func (p *Position) Put(sq Square, o Occupant) {
	p.removeOccupant(sq)
	p.setOccupant(sq, o)
}

// KingSquare returns the square of color c's king, or NoSquare.
func (p *Position) KingSquare(c Color) Square {
	return p.Pieces[c][King].LSB()
}

// IsInCheck reports whether color c's king is attacked. A side without a
// king is never in check.
func (p *Position) IsInCheck(c Color) bool {
	ksq := p.KingSquare(c)
	if ksq == NoSquare {
		return false
	}
	return p.IsSquareAttacked(ksq, c.Other())
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.IsInCheck(p.SideToMove)
}

// String draws the board with ability suffixes and the game state.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			o, ok := p.OccupantAt(sq)
			cell := "."
			if ok {
				cell = o.Piece().String()
				if o.Abilities != 0 {
					cell += "[" + o.Abilities.String() + "]"
				}
			}
			fmt.Fprintf(&sb, "%-10s", cell)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a         b         c         d         e         f         g         h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castled: white=%v black=%v\n", p.Castled[White], p.Castled[Black])
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant)
	fmt.Fprintf(&sb, "Hash: %016x\n", p.Hash())
	return sb.String()
}

// Validate checks the structural invariants of the bitboards.
func (p *Position) Validate() error {
	for c := White; c <= Black; c++ {
		var union Bitboard
		for pt := Pawn; pt <= King; pt++ {
			if union&p.Pieces[c][pt] != 0 {
				return fmt.Errorf("%s %s overlaps another type", c, pt)
			}
			union |= p.Pieces[c][pt]
			if extra := p.Abilities[c][pt] &^ p.Occupied[c]; extra != 0 {
				return fmt.Errorf("%s %s ability on unoccupied square %s", c, pt, extra.LSB())
			}
		}
		if union != p.Occupied[c] {
			return fmt.Errorf("%s occupancy out of sync", c)
		}
		if p.Pieces[c][King].PopCount() > 1 {
			return fmt.Errorf("%s has more than one king", c)
		}
	}
	if p.Occupied[White]&p.Occupied[Black] != 0 {
		return fmt.Errorf("colors overlap")
	}
	if p.AllOccupied != p.Occupied[White]|p.Occupied[Black] {
		return fmt.Errorf("total occupancy out of sync")
	}
	if p.Moved&^p.AllOccupied != 0 {
		return fmt.Errorf("has-moved bit on empty square %s", (p.Moved &^ p.AllOccupied).LSB())
	}
	return nil
}
