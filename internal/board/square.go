// Package board holds the absorb-chess rules: bitboard position state with
// per-square ability overlays, attack tables, move generation and the
// reversible move primitive.
package board

import "fmt"

// Square indexes the board 0-63: a1=0, h1=7, a8=56, h8=63.
type Square uint8

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// File returns 0-7 for files a-h.
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns 0-7 for ranks 1-8.
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// NewSquare builds a square from 0-indexed file and rank.
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// GridSquare converts grid coordinates (row 0 is rank 8) to a square.
func GridSquare(row, col int) Square {
	return NewSquare(col, 7-row)
}

// GridRow returns the grid row of sq; row 0 is rank 8.
func (sq Square) GridRow() int {
	return 7 - sq.Rank()
}

// GridCol returns the grid column of sq, equal to its file.
func (sq Square) GridCol() int {
	return sq.File()
}

// String returns the square name, e.g. "e4".
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// ParseSquare parses a square name such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}
	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}
	return NewSquare(file, rank), nil
}

// RelativeRank returns the rank counted from color c's back rank.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}
