package board

import "strings"

// Color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType is a base movement type. The same values index abilities.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

var pieceTypeNames = [...]string{"Pawn", "Knight", "Bishop", "Rook", "Queen", "King", "None"}

func (pt PieceType) String() string {
	if pt > NoPieceType {
		return "None"
	}
	return pieceTypeNames[pt]
}

// Char returns the lowercase FEN letter of the type.
func (pt PieceType) Char() byte {
	if pt >= NoPieceType {
		return ' '
	}
	return "pnbrqk"[pt]
}

// pieceTypeFromChar maps a lowercase FEN letter to its type.
func pieceTypeFromChar(c byte) PieceType {
	switch c {
	case 'p':
		return Pawn
	case 'n':
		return Knight
	case 'b':
		return Bishop
	case 'r':
		return Rook
	case 'q':
		return Queen
	case 'k':
		return King
	}
	return NoPieceType
}

// Piece combines a base type and a color: type + color*6.
type Piece uint8

const NoPiece Piece = 12

// NewPiece returns the piece for pt and c, or NoPiece when either is out of range.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*6
}

// Type returns the base type.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color returns the owner.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// String returns the FEN letter, uppercase for White.
func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	return string("PNBRQKpnbrqk"[p])
}

// Abilities is the set of movement types a piece has absorbed, bit pt for type pt.
// It may include the piece's own base type.
type Abilities uint8

// AbilityOf returns the single-type set {pt}.
func AbilityOf(pt PieceType) Abilities {
	return 1 << pt
}

// Has reports whether pt is in the set.
func (a Abilities) Has(pt PieceType) bool {
	return a&(1<<pt) != 0
}

// With returns the set with pt added.
func (a Abilities) With(pt PieceType) Abilities {
	return a | 1<<pt
}

// Without returns the set with pt removed.
func (a Abilities) Without(pt PieceType) Abilities {
	return a &^ (1 << pt)
}

// Count returns the number of types in the set.
func (a Abilities) Count() int {
	n := 0
	for pt := Pawn; pt <= King; pt++ {
		if a.Has(pt) {
			n++
		}
	}
	return n
}

// String lists the set as lowercase FEN letters in pnbrqk order.
func (a Abilities) String() string {
	var sb strings.Builder
	for pt := Pawn; pt <= King; pt++ {
		if a.Has(pt) {
			sb.WriteByte(pt.Char())
		}
	}
	return sb.String()
}

// Occupant is everything stored for one occupied square.
type Occupant struct {
	Color     Color
	Type      PieceType
	Abilities Abilities
	Moved     bool
}

// Piece returns the base type and color as a Piece.
func (o Occupant) Piece() Piece {
	return NewPiece(o.Type, o.Color)
}

// Movement returns the effective movement set: base type plus abilities.
func (o Occupant) Movement() Abilities {
	return o.Abilities.With(o.Type)
}
