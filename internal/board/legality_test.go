package board

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/notnil/chess"
)

// naiveAttacked scans the board square by square for an occupant of color by
// whose movement set reaches sq. It shares nothing with the attack tables.
func naiveAttacked(p *Position, sq Square, by Color) bool {
	f0, r0 := sq.File(), sq.Rank()
	onBoard := func(f, r int) bool { return f >= 0 && f < 8 && r >= 0 && r < 8 }

	for from := A1; from <= H8; from++ {
		o, ok := p.OccupantAt(from)
		if !ok || o.Color != by {
			continue
		}
		set := o.Movement()
		df, dr := f0-from.File(), r0-from.Rank()
		adf, adr := max(df, -df), max(dr, -dr)

		if set.Has(Pawn) {
			fwd := 1
			if by == Black {
				fwd = -1
			}
			if adf == 1 && dr == fwd {
				return true
			}
		}
		if set.Has(Knight) && ((adf == 1 && adr == 2) || (adf == 2 && adr == 1)) {
			return true
		}
		if set.Has(King) && max(adf, adr) == 1 {
			return true
		}

		diag := adf == adr && adf > 0
		line := (df == 0) != (dr == 0)
		slides := (diag && (set.Has(Bishop) || set.Has(Queen))) ||
			(line && (set.Has(Rook) || set.Has(Queen)))
		if !slides {
			continue
		}
		sf, sr := sign(df), sign(dr)
		blocked := false
		for f, r := from.File()+sf, from.Rank()+sr; onBoard(f, r) && (f != f0 || r != r0); f, r = f+sf, r+sr {
			if !p.IsEmpty(NewSquare(f, r)) {
				blocked = true
				break
			}
		}
		if !blocked {
			return true
		}
	}
	return false
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func naiveLegal(p *Position) []Move {
	var legal []Move
	us := p.SideToMove
	for _, m := range p.GeneratePseudoLegalMoves().Slice() {
		undo := p.MakeMove(m)
		if ksq := p.KingSquare(us); ksq == NoSquare || !naiveAttacked(p, ksq, us.Other()) {
			legal = append(legal, m)
		}
		p.UnmakeMove(m, undo)
	}
	return legal
}

func sortedMoves(moves []Move) []Move {
	out := append([]Move(nil), moves...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func equalMoves(a, b []Move) bool {
	if len(a) != len(b) {
		return false
	}
	a, b = sortedMoves(a), sortedMoves(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var abilityFENs = []string{
	"4k3/8/8/8/8/8/8/R[n]3K3 w - - 0 1",
	"4k3/8/8/8/8/8/3P[q]4/4K3 w - - 0 1",
	"4k3/8/8/4n[p]3/8/8/8/4K3 b - - 0 1",
	"8/3R[p]4/8/7k/8/8/8/4K3 w - - 0 1",
	"r3k2r/pp1n[q]1ppp/2p5/4B[n]3/1b[r]6/5N[b]2/PP3PPP/R3K[n]2R w KQkq - 0 1",
	"3rk3/8/8/8/8/8/3N[rk]4/3K4 w - - 0 1",
	"4k3/4r[b]3/8/8/8/8/4B[p]3/4K3 w - - 0 1",
	"2k5/8/1q[n]6/8/8/8/8/K7 w - - 0 1",
}

// The bitboard legality filter must agree with a square-scanning oracle in
// ability positions and in every position along random walks from them.
func TestLegalityAgainstScanOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, fen := range append(abilityFENs, StartFEN) {
		t.Run(fen, func(t *testing.T) {
			root := mustFEN(t, fen)
			for walk := 0; walk < 10; walk++ {
				p := *root
				for ply := 0; ply < 40; ply++ {
					got := p.GenerateLegalMoves().Slice()
					want := naiveLegal(&p)
					if !equalMoves(got, want) {
						t.Fatalf("legal moves differ in %s\ngot  %v\nwant %v", p.FEN(), sortedMoves(got), sortedMoves(want))
					}
					if p.InCheck() != naiveAttacked(&p, p.KingSquare(p.SideToMove), p.SideToMove.Other()) {
						t.Fatalf("check detection differs in %s", p.FEN())
					}
					if len(got) == 0 {
						break
					}
					p.MakeMove(got[rng.Intn(len(got))])
				}
			}
		})
	}
}

// Without abilities the rules are standard chess, so an independent chess
// library must produce the same legal moves.
func TestLegalityAgainstStandardChess(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p2/4P1p1/6P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1",
		"r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1",
	}
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			pos := mustFEN(t, fen)
			opt, err := chess.FEN(fen)
			if err != nil {
				t.Fatal(err)
			}
			game := chess.NewGame(opt)

			var want []string
			for _, m := range game.ValidMoves() {
				want = append(want, oracleMoveString(m))
			}
			var got []string
			for _, m := range pos.GenerateLegalMoves().Slice() {
				got = append(got, m.String())
			}
			sort.Strings(want)
			sort.Strings(got)
			if len(got) != len(want) {
				t.Fatalf("got %d moves, want %d\ngot  %v\nwant %v", len(got), len(want), got, want)
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("move lists differ\ngot  %v\nwant %v", got, want)
				}
			}
		})
	}
}

func oracleMoveString(m *chess.Move) string {
	s := Square(m.S1()).String() + Square(m.S2()).String()
	switch m.Promo() {
	case chess.Queen:
		s += "q"
	case chess.Rook:
		s += "r"
	case chess.Bishop:
		s += "b"
	case chess.Knight:
		s += "n"
	}
	return s
}
