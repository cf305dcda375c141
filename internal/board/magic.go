package board

import (
	"fmt"
	"math/bits"
)

// Fancy magic bitboards for sliding attacks. Multipliers are searched at
// start-up from a fixed seed; the ray walks below are the reference the
// tables are built from and checked against.

// Magic holds the lookup data for one square.
type Magic struct {
	Mask   Bitboard // relevant occupancy, board edges excluded
	Magic  uint64
	Shift  uint8
	Offset uint32
}

const (
	bishopTableSize = 5248
	rookTableSize   = 102400
	magicSeed       = 0x2C1B3C6D5A4F8E97
)

var (
	bishopMagics [64]Magic
	rookMagics   [64]Magic

	bishopTable [bishopTableSize]Bitboard
	rookTable   [rookTableSize]Bitboard
)

type sliderKind struct {
	name   string
	magics *[64]Magic
	table  []Bitboard
	mask   func(Square) Bitboard
	slow   func(Square, Bitboard) Bitboard
}

func sliders() [2]sliderKind {
	return [2]sliderKind{
		{"bishop", &bishopMagics, bishopTable[:], bishopMask, bishopAttacksSlow},
		{"rook", &rookMagics, rookTable[:], rookMask, rookAttacksSlow},
	}
}

func initMagics() {
	rng := newPRNG(magicSeed)
	for _, k := range sliders() {
		var offset uint32
		for sq := A1; sq <= H8; sq++ {
			mask := k.mask(sq)
			n := mask.PopCount()
			size := uint32(1) << n
			entries := k.table[offset : offset+size]
			k.magics[sq] = Magic{
				Mask:   mask,
				Magic:  findMagic(sq, mask, k.slow, entries, rng),
				Shift:  uint8(64 - n),
				Offset: offset,
			}
			offset += size
		}
	}
}

// findMagic searches for a multiplier that maps every subset of mask to an
// index whose stored attack set is correct, and fills entries as it goes.
func findMagic(sq Square, mask Bitboard, slow func(Square, Bitboard) Bitboard, entries []Bitboard, rng *prng) uint64 {
	n := mask.PopCount()
	size := 1 << n
	occupancies := make([]Bitboard, size)
	reference := make([]Bitboard, size)
	for i := 0; i < size; i++ {
		occupancies[i] = indexToOccupancy(i, n, mask)
		reference[i] = slow(sq, occupancies[i])
	}

	// epoch[idx] == attempt marks entries written during the current attempt.
	epoch := make([]int, size)
	shift := uint(64 - n)
	for attempt := 1; ; attempt++ {
		magic := rng.sparse()
		if bits.OnesCount64((uint64(mask)*magic)>>56) < 6 {
			continue
		}
		ok := true
		for i := 0; i < size; i++ {
			idx := (uint64(occupancies[i]) * magic) >> shift
			if epoch[idx] != attempt {
				epoch[idx] = attempt
				entries[idx] = reference[i]
			} else if entries[idx] != reference[i] {
				ok = false
				break
			}
		}
		if ok {
			return magic
		}
	}
}

// verifyMagics compares every table entry reachable from every mask subset
// against the ray walk.
func verifyMagics() error {
	for _, k := range sliders() {
		for sq := A1; sq <= H8; sq++ {
			m := k.magics[sq]
			n := m.Mask.PopCount()
			for i := 0; i < 1<<n; i++ {
				occ := indexToOccupancy(i, n, m.Mask)
				idx := (uint64(occ) * m.Magic) >> m.Shift
				if got, want := k.table[m.Offset+uint32(idx)], k.slow(sq, occ); got != want {
					return fmt.Errorf("%s magic mismatch on %s for occupancy %#x: got %#x want %#x",
						k.name, sq, uint64(occ), uint64(got), uint64(want))
				}
			}
		}
	}
	return nil
}

// bishopMask is the diagonal ray set from sq without the board rim.
func bishopMask(sq Square) Bitboard {
	return bishopAttacksSlow(sq, Empty) &^ (FileA | FileH | Rank1 | Rank8)
}

// rookMask is the orthogonal ray set from sq without the far end of each ray.
func rookMask(sq Square) Bitboard {
	var mask Bitboard
	file, rank := sq.File(), sq.Rank()
	for r := rank + 1; r < 7; r++ {
		mask |= SquareBB(NewSquare(file, r))
	}
	for r := rank - 1; r > 0; r-- {
		mask |= SquareBB(NewSquare(file, r))
	}
	for f := file + 1; f < 7; f++ {
		mask |= SquareBB(NewSquare(f, rank))
	}
	for f := file - 1; f > 0; f-- {
		mask |= SquareBB(NewSquare(f, rank))
	}
	return mask
}

// indexToOccupancy maps the bits of index onto the squares of mask, lowest first.
func indexToOccupancy(index, n int, mask Bitboard) Bitboard {
	var occ Bitboard
	for i := 0; i < n; i++ {
		sq := mask.PopLSB()
		if index&(1<<i) != 0 {
			occ |= SquareBB(sq)
		}
	}
	return occ
}

// walk steps from sq by (df, dr) until the edge or the first occupied square,
// which is included.
func walk(sq Square, occupied Bitboard, df, dr int) Bitboard {
	var attacks Bitboard
	for f, r := sq.File()+df, sq.Rank()+dr; f >= 0 && f <= 7 && r >= 0 && r <= 7; f, r = f+df, r+dr {
		s := SquareBB(NewSquare(f, r))
		attacks |= s
		if occupied&s != 0 {
			break
		}
	}
	return attacks
}

// bishopAttacksSlow is the reference diagonal ray walk.
func bishopAttacksSlow(sq Square, occupied Bitboard) Bitboard {
	return walk(sq, occupied, 1, 1) | walk(sq, occupied, -1, 1) |
		walk(sq, occupied, 1, -1) | walk(sq, occupied, -1, -1)
}

// rookAttacksSlow is the reference orthogonal ray walk.
func rookAttacksSlow(sq Square, occupied Bitboard) Bitboard {
	return walk(sq, occupied, 0, 1) | walk(sq, occupied, 0, -1) |
		walk(sq, occupied, 1, 0) | walk(sq, occupied, -1, 0)
}

func getBishopAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &bishopMagics[sq]
	idx := (uint64(occupied&m.Mask) * m.Magic) >> m.Shift
	return bishopTable[m.Offset+uint32(idx)]
}

func getRookAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &rookMagics[sq]
	idx := (uint64(occupied&m.Mask) * m.Magic) >> m.Shift
	return rookTable[m.Offset+uint32(idx)]
}
