package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN is wrapped by every ParseFEN failure.
var ErrInvalidFEN = errors.New("invalid FEN")

// ParseFEN reads standard FEN extended for absorb chess. A piece letter may be
// followed by its abilities in brackets and a '*' when it has moved, e.g.
// "R[nb]*". Without any '*' in the placement, has-moved bits are inferred from
// the castling field: for a king on its home square, an absent letter marks
// that corner rook as moved, and both absent mark the king as moved when a
// corner rook is present. The move
// counters are accepted and ignored.
func ParseFEN(fen string) (*Position, error) {
	Init()
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 fields, got %d", ErrInvalidFEN, len(parts))
	}

	pos := &Position{EnPassant: NoSquare}
	marked, err := parsePlacement(pos, parts[0])
	if err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, parts[1])
	}

	if err := applyCastlingField(pos, parts[2], !marked); err != nil {
		return nil, err
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil || sq.Rank() != epTargetRank(pos.SideToMove) {
			return nil, fmt.Errorf("%w: en passant square %q", ErrInvalidFEN, parts[3])
		}
		pos.EnPassant = sq
	}

	for _, counter := range parts[4:min(len(parts), 6)] {
		if _, err := strconv.Atoi(counter); err != nil {
			return nil, fmt.Errorf("%w: move counter %q", ErrInvalidFEN, counter)
		}
	}

	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return pos, nil
}

// epTargetRank is the rank of an en-passant target when side is to move:
// the square the opponent's double push just skipped.
func epTargetRank(side Color) int {
	if side == White {
		return 5
	}
	return 2
}

// parsePlacement fills pos from the placement field and reports whether any
// has-moved marker was present.
func parsePlacement(pos *Position, placement string) (bool, error) {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return false, fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	marked := false

	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file > 7 {
				return false, fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, rank+1)
			}

			o := Occupant{Color: White}
			lower := ch
			if ch >= 'a' && ch <= 'z' {
				o.Color = Black
			} else {
				lower = ch + ('a' - 'A')
			}
			o.Type = pieceTypeFromChar(lower)
			if o.Type == NoPieceType {
				return false, fmt.Errorf("%w: piece character %q", ErrInvalidFEN, ch)
			}

			if j+1 < len(row) && row[j+1] == '[' {
				end := strings.IndexByte(row[j+1:], ']')
				if end < 0 {
					return false, fmt.Errorf("%w: unterminated ability list in rank %d", ErrInvalidFEN, rank+1)
				}
				for _, a := range []byte(row[j+2 : j+1+end]) {
					pt := pieceTypeFromChar(a)
					if pt == NoPieceType {
						return false, fmt.Errorf("%w: ability character %q", ErrInvalidFEN, a)
					}
					o.Abilities = o.Abilities.With(pt)
				}
				j += end + 1
			}
			if j+1 < len(row) && row[j+1] == '*' {
				o.Moved = true
				marked = true
				j++
			}

			pos.setOccupant(NewSquare(file, rank), o)
			file++
		}
		if file != 8 {
			return false, fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, rank+1, file)
		}
	}
	return marked, nil
}

// castleCorners lists, per color, the home king square and the kingside and
// queenside rook corners.
var castleCorners = [2]struct{ king, kingRook, queenRook Square }{
	{E1, H1, A1},
	{E8, H8, A8},
}

func applyCastlingField(pos *Position, field string, infer bool) error {
	var rights [2][2]bool // [Color][0=kingside,1=queenside]
	if field != "-" {
		for _, ch := range []byte(field) {
			switch ch {
			case 'K':
				rights[White][0] = true
			case 'Q':
				rights[White][1] = true
			case 'k':
				rights[Black][0] = true
			case 'q':
				rights[Black][1] = true
			default:
				return fmt.Errorf("%w: castling character %q", ErrInvalidFEN, ch)
			}
		}
	}

	if !infer {
		return nil
	}
	for c := White; c <= Black; c++ {
		corners := castleCorners[c]
		if !pos.Pieces[c][King].IsSet(corners.king) {
			continue
		}
		if !rights[c][0] && pos.Pieces[c][Rook].IsSet(corners.kingRook) {
			pos.Moved |= SquareBB(corners.kingRook)
		}
		if !rights[c][1] && pos.Pieces[c][Rook].IsSet(corners.queenRook) {
			pos.Moved |= SquareBB(corners.queenRook)
		}
		hasRook := pos.Pieces[c][Rook]&(SquareBB(corners.kingRook)|SquareBB(corners.queenRook)) != 0
		if !rights[c][0] && !rights[c][1] && hasRook {
			pos.Moved |= SquareBB(corners.king)
		}
	}
	return nil
}

// FEN writes the position in the extended notation read by ParseFEN. Every
// moved piece carries a '*'. Castled flags have no field of their own.
func (p *Position) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			o, ok := p.OccupantAt(sq)
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(o.Piece().String())
			if o.Abilities != 0 {
				sb.WriteString("[" + o.Abilities.String() + "]")
			}
			if o.Moved {
				sb.WriteByte('*')
			}
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.castlingField())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
	sb.WriteString(" 0 1")
	return sb.String()
}

// castlingField derives the FEN castling letters from has-moved bits.
func (p *Position) castlingField() string {
	var sb strings.Builder
	letters := [2][2]byte{{'K', 'Q'}, {'k', 'q'}}
	for c := White; c <= Black; c++ {
		corners := castleCorners[c]
		if !p.Pieces[c][King].IsSet(corners.king) || p.Moved.IsSet(corners.king) {
			continue
		}
		for side, rook := range [2]Square{corners.kingRook, corners.queenRook} {
			if p.Pieces[c][Rook].IsSet(rook) && !p.Moved.IsSet(rook) {
				sb.WriteByte(letters[c][side])
			}
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}
