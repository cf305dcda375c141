package board

import "fmt"

// Move packs a move into 16 bits:
// bits 0-5 from square, bits 6-11 to square, bits 12-15 flag.
type Move uint16

// MoveFlag distinguishes special moves. The numbering matches the flag values
// collaborators exchange.
type MoveFlag uint8

const (
	FlagNormal MoveFlag = iota
	FlagEnPassant
	FlagCastleKingside
	FlagCastleQueenside
	FlagPromoteQueen
	FlagPromoteRook
	FlagPromoteBishop
	FlagPromoteKnight
)

// NoMove is the sentinel for "no move available". It is never legal: a
// normal move from a1 to a1.
const NoMove Move = 0

// NewMove builds a move with the given flag.
func NewMove(from, to Square, flag MoveFlag) Move {
	return Move(from) | Move(to)<<6 | Move(flag)<<12
}

var promotionFlags = [...]MoveFlag{
	Queen:  FlagPromoteQueen,
	Rook:   FlagPromoteRook,
	Bishop: FlagPromoteBishop,
	Knight: FlagPromoteKnight,
}

// NewPromotion builds a promotion to pt (queen, rook, bishop or knight).
func NewPromotion(from, to Square, pt PieceType) Move {
	return NewMove(from, to, promotionFlags[pt])
}

func (m Move) From() Square { return Square(m & 0x3F) }

func (m Move) To() Square { return Square((m >> 6) & 0x3F) }

func (m Move) Flag() MoveFlag { return MoveFlag(m >> 12) }

// IsPromotion reports whether the move promotes.
func (m Move) IsPromotion() bool {
	return m.Flag() >= FlagPromoteQueen && m.Flag() <= FlagPromoteKnight
}

// Promotion returns the promotion type, or NoPieceType.
func (m Move) Promotion() PieceType {
	switch m.Flag() {
	case FlagPromoteQueen:
		return Queen
	case FlagPromoteRook:
		return Rook
	case FlagPromoteBishop:
		return Bishop
	case FlagPromoteKnight:
		return Knight
	}
	return NoPieceType
}

func (m Move) IsCastling() bool {
	return m.Flag() == FlagCastleKingside || m.Flag() == FlagCastleQueenside
}

func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// IsCapture reports whether m takes a piece in pos.
func (m Move) IsCapture(pos *Position) bool {
	return m.IsEnPassant() || pos.Occupied[pos.SideToMove.Other()].IsSet(m.To())
}

// CaptureSquare returns the square a capture by side us empties: the
// destination, or the square behind it for en passant.
func (m Move) CaptureSquare(us Color) Square {
	if !m.IsEnPassant() {
		return m.To()
	}
	if us == White {
		return m.To() - 8
	}
	return m.To() + 8
}

// String returns coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// ParseMove resolves coordinate notation against the legal moves of pos,
// which supplies the flag for castling and en passant.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("invalid move string: %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	promo := NoPieceType
	if len(s) == 5 {
		promo = pieceTypeFromChar(s[4])
		if promo == NoPieceType || promo == Pawn || promo == King {
			return NoMove, fmt.Errorf("invalid promotion piece: %q", s[4])
		}
	}

	legal := pos.GenerateLegalMoves()
	var candidate Move = NoMove
	for _, m := range legal.Slice() {
		if m.From() != from || m.To() != to || m.Promotion() != promo {
			continue
		}
		// A square reachable both normally and by en passant or castling
		// resolves to the special move.
		if candidate == NoMove || m.Flag() != FlagNormal {
			candidate = m
		}
	}
	if candidate == NoMove {
		return NoMove, fmt.Errorf("illegal move: %s", s)
	}
	return candidate, nil
}

// MaxMoves bounds the moves of one position. Absorbed abilities can give
// every piece queen, knight and pawn moves at once.
const MaxMoves = 1024

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [MaxMoves]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

func (ml *MoveList) Len() int { return ml.count }

func (ml *MoveList) Get(i int) Move { return ml.moves[i] }

func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

func (ml *MoveList) Clear() { ml.count = 0 }

// Contains reports whether m is in the list.
func (ml *MoveList) Contains(m Move) bool {
	for _, x := range ml.moves[:ml.count] {
		if x == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice aliasing the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
