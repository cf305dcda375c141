package board

// Zobrist keys. Abilities and has-moved bits are part of the key because two
// positions with equal base pieces can move differently.
var (
	zobristPiece      [2][6][64]uint64
	zobristAbility    [2][6][64]uint64
	zobristMoved      [64]uint64
	zobristEnPassant  [8]uint64
	zobristCastled    [2]uint64
	zobristSideToMove uint64
)

const zobristSeed = 0x98F107A2BEEF1234

// prng is a xorshift64* generator with a fixed seed for reproducible keys
// and magic multipliers.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// sparse returns a value with roughly one bit in eight set; good magic
// candidates are sparse.
func (p *prng) sparse() uint64 {
	return p.next() & p.next() & p.next()
}

func initZobrist() {
	rng := newPRNG(zobristSeed)
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
				zobristAbility[c][pt][sq] = rng.next()
			}
		}
	}
	for sq := A1; sq <= H8; sq++ {
		zobristMoved[sq] = rng.next()
	}
	for file := 0; file < 8; file++ {
		zobristEnPassant[file] = rng.next()
	}
	zobristCastled[White] = rng.next()
	zobristCastled[Black] = rng.next()
	zobristSideToMove = rng.next()
}

// Hash computes the Zobrist key of the position from scratch.
func (p *Position) Hash() uint64 {
	var h uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for bb := p.Pieces[c][pt]; bb != 0; {
				h ^= zobristPiece[c][pt][bb.PopLSB()]
			}
			for bb := p.Abilities[c][pt]; bb != 0; {
				h ^= zobristAbility[c][pt][bb.PopLSB()]
			}
		}
		if p.Castled[c] {
			h ^= zobristCastled[c]
		}
	}
	for bb := p.Moved; bb != 0; {
		h ^= zobristMoved[bb.PopLSB()]
	}
	if p.EnPassant != NoSquare {
		h ^= zobristEnPassant[p.EnPassant.File()]
	}
	if p.SideToMove == Black {
		h ^= zobristSideToMove
	}
	return h
}
