package board

import (
	"errors"
	"fmt"
)

// Flat piece codes exchanged with collaborators, one per square, 0 = empty.
const (
	CodePawn   uint16 = 1 << iota // base types: exactly one per occupied square
	CodeKnight
	CodeBishop
	CodeRook
	CodeQueen
	CodeKing
	CodeAbilityPawn // abilities: any subset
	CodeAbilityKnight
	CodeAbilityBishop
	CodeAbilityRook
	CodeAbilityQueen
	CodeAbilityKing
	CodeHasMoved
	CodeWhite

	codeTypeMask    uint16 = CodeAbilityPawn - 1
	codeAbilityMask uint16 = (CodeHasMoved - 1) &^ codeTypeMask
	codeAbilityBase        = 6
	codeValidMask   uint16 = CodeWhite<<1 - 1
)

// ErrMalformedGrid is wrapped by every FromGrid failure.
var ErrMalformedGrid = errors.New("malformed board grid")

// Grid is a board in collaborator layout: Grid[row][col], row 0 is rank 8,
// col 0 is the a-file.
type Grid [8][8]uint16

// Rows returns the grid as a slice of rows, the shape FromGrid accepts.
func (g Grid) Rows() [][]uint16 {
	rows := make([][]uint16, 8)
	for r := range g {
		rows[r] = append([]uint16(nil), g[r][:]...)
	}
	return rows
}

// BoardState is the full interop state returned to collaborators.
type BoardState struct {
	Grid          Grid
	WhiteToMove   bool
	WhiteCastled  bool
	BlackCastled  bool
	EnPassantFile int // grid column of the en-passant target, -1 if none
	EnPassantRank int // grid row of the en-passant target, -1 if none
}

// Code encodes an occupant as a flat piece code.
func (o Occupant) Code() uint16 {
	code := uint16(1) << o.Type
	code |= uint16(o.Abilities) << codeAbilityBase
	if o.Moved {
		code |= CodeHasMoved
	}
	if o.Color == White {
		code |= CodeWhite
	}
	return code
}

// DecodeOccupant decodes a non-zero flat piece code.
func DecodeOccupant(code uint16) (Occupant, error) {
	if code&^codeValidMask != 0 {
		return Occupant{}, fmt.Errorf("%w: unknown bits in code %#x", ErrMalformedGrid, code)
	}
	base := code & codeTypeMask
	if base == 0 || base&(base-1) != 0 {
		return Occupant{}, fmt.Errorf("%w: code %#x needs exactly one base type", ErrMalformedGrid, code)
	}
	o := Occupant{
		Color:     Black,
		Abilities: Abilities((code & codeAbilityMask) >> codeAbilityBase),
		Moved:     code&CodeHasMoved != 0,
	}
	for pt := Pawn; pt <= King; pt++ {
		if base == 1<<pt {
			o.Type = pt
		}
	}
	if code&CodeWhite != 0 {
		o.Color = White
	}
	return o, nil
}

// FromGrid decodes collaborator state into a new position. The en-passant
// target is given in grid coordinates, or -1, -1 when absent.
func FromGrid(grid [][]uint16, whiteToMove, whiteCastled, blackCastled bool, epFile, epRank int) (*Position, error) {
	pos := EmptyPosition()
	if len(grid) != 8 {
		return nil, fmt.Errorf("%w: need 8 rows, got %d", ErrMalformedGrid, len(grid))
	}
	for row, cells := range grid {
		if len(cells) != 8 {
			return nil, fmt.Errorf("%w: row %d has %d cells", ErrMalformedGrid, row, len(cells))
		}
		for col, code := range cells {
			if code == 0 {
				continue
			}
			o, err := DecodeOccupant(code)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", row, col, err)
			}
			pos.setOccupant(GridSquare(row, col), o)
		}
	}

	for c := White; c <= Black; c++ {
		if pos.Pieces[c][King].PopCount() > 1 {
			return nil, fmt.Errorf("%w: %s has more than one king", ErrMalformedGrid, c)
		}
	}

	if !whiteToMove {
		pos.SideToMove = Black
	}

	// A target must sit on the rank the opponent's double push skips.
	switch {
	case epFile == -1 && epRank == -1:
	case epFile >= 0 && epFile < 8 && epRank >= 0 && epRank < 8 &&
		GridSquare(epRank, epFile).Rank() == epTargetRank(pos.SideToMove):
		pos.EnPassant = GridSquare(epRank, epFile)
	default:
		return nil, fmt.Errorf("%w: en passant (%d, %d) with %s to move", ErrMalformedGrid, epFile, epRank, pos.SideToMove)
	}
	pos.Castled = [2]bool{whiteCastled, blackCastled}
	return pos, nil
}

// State encodes the position in collaborator layout.
func (p *Position) State() BoardState {
	st := BoardState{
		WhiteToMove:   p.SideToMove == White,
		WhiteCastled:  p.Castled[White],
		BlackCastled:  p.Castled[Black],
		EnPassantFile: -1,
		EnPassantRank: -1,
	}
	for occ := p.AllOccupied; occ != 0; {
		sq := occ.PopLSB()
		o, _ := p.OccupantAt(sq)
		st.Grid[sq.GridRow()][sq.GridCol()] = o.Code()
	}
	if p.EnPassant != NoSquare {
		st.EnPassantFile = p.EnPassant.GridCol()
		st.EnPassantRank = p.EnPassant.GridRow()
	}
	return st
}

// CodeAt returns the flat code of sq, 0 when empty.
func (p *Position) CodeAt(sq Square) uint16 {
	o, ok := p.OccupantAt(sq)
	if !ok {
		return 0
	}
	return o.Code()
}
