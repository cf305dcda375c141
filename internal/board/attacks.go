package board

import "sync"

// Pre-computed attack tables for the leaping pieces and pawns.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]

	initOnce sync.Once
)

// Init builds every process-wide table. It is idempotent and safe to call
// from any goroutine; all constructors in this package call it. It panics if
// the magic tables disagree with the reference ray walk.
func Init() {
	initOnce.Do(func() {
		initLeaperAttacks()
		initMagics()
		initZobrist()
		if err := verifyMagics(); err != nil {
			panic(err)
		}
	})
}

func initLeaperAttacks() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		knightAttacks[sq] = (bb<<17)&NotFileA | (bb<<15)&NotFileH |
			(bb>>15)&NotFileA | (bb>>17)&NotFileH |
			(bb<<10)&NotFileAB | (bb<<6)&NotFileGH |
			(bb>>6)&NotFileAB | (bb>>10)&NotFileGH

		kingAttacks[sq] = bb.North() | bb.South() | bb.East() | bb.West() |
			bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()

		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()
	}
}

// KnightAttacks returns the knight targets from sq.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the one-step targets from sq.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the diagonal capture targets of a color-c pawn on sq.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// BishopAttacks returns diagonal targets from sq given occupancy, blockers included.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return getBishopAttacks(sq, occupied)
}

// RookAttacks returns orthogonal targets from sq given occupancy, blockers included.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return getRookAttacks(sq, occupied)
}

// QueenAttacks is the union of bishop and rook attacks.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return getBishopAttacks(sq, occupied) | getRookAttacks(sq, occupied)
}

// TypeAttacks returns the squares a color-c piece on sq attacks using the
// movement rule of pt. Pawn attacks are the diagonal captures only.
func TypeAttacks(pt PieceType, c Color, sq Square, occupied Bitboard) Bitboard {
	switch pt {
	case Pawn:
		return pawnAttacks[c][sq]
	case Knight:
		return knightAttacks[sq]
	case Bishop:
		return getBishopAttacks(sq, occupied)
	case Rook:
		return getRookAttacks(sq, occupied)
	case Queen:
		return QueenAttacks(sq, occupied)
	case King:
		return kingAttacks[sq]
	}
	return Empty
}

// MovementAttacks returns the union of attacks for every type in set.
func MovementAttacks(set Abilities, c Color, sq Square, occupied Bitboard) Bitboard {
	var attacks Bitboard
	if set.Has(Queen) || (set.Has(Rook) && set.Has(Bishop)) {
		attacks = QueenAttacks(sq, occupied)
	} else if set.Has(Rook) {
		attacks = getRookAttacks(sq, occupied)
	} else if set.Has(Bishop) {
		attacks = getBishopAttacks(sq, occupied)
	}
	if set.Has(Knight) {
		attacks |= knightAttacks[sq]
	}
	if set.Has(King) {
		attacks |= kingAttacks[sq]
	}
	if set.Has(Pawn) {
		attacks |= pawnAttacks[c][sq]
	}
	return attacks
}

// movers returns the squares of color c that move like pt: the base-type
// bitboard plus the ability bitboard restricted to c's occupied squares.
func (p *Position) movers(c Color, pt PieceType) Bitboard {
	return p.Pieces[c][pt] | p.Abilities[c][pt]&p.Occupied[c]
}

// AttackersByColor returns the pieces of color c attacking sq, counting each
// base type and every absorbed ability.
func (p *Position) AttackersByColor(sq Square, c Color, occupied Bitboard) Bitboard {
	diagonal := p.movers(c, Bishop) | p.movers(c, Queen)
	straight := p.movers(c, Rook) | p.movers(c, Queen)
	return pawnAttacks[c.Other()][sq]&p.movers(c, Pawn) |
		knightAttacks[sq]&p.movers(c, Knight) |
		kingAttacks[sq]&p.movers(c, King) |
		getBishopAttacks(sq, occupied)&diagonal |
		getRookAttacks(sq, occupied)&straight
}

// IsSquareAttacked reports whether any piece of color by attacks sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	return p.AttackersByColor(sq, by, p.AllOccupied) != 0
}
