package board

import (
	"math/rand"
	"testing"
)

func mustFEN(t testing.TB, fen string) *Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func mustMove(t testing.TB, pos *Position, s string) Move {
	t.Helper()
	m, err := ParseMove(s, pos)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v\n%s", s, err, pos)
	}
	return m
}

func TestAbsorb(t *testing.T) {
	tests := []struct {
		name     string
		attacker Occupant
		victim   PieceType
		promo    PieceType
		want     Occupant
	}{
		{
			name:     "rook takes knight",
			attacker: Occupant{Type: Rook},
			victim:   Knight,
			promo:    NoPieceType,
			want:     Occupant{Type: Rook, Abilities: AbilityOf(Knight), Moved: true},
		},
		{
			name:     "same type adds nothing",
			attacker: Occupant{Type: Bishop, Abilities: AbilityOf(Pawn)},
			victim:   Bishop,
			promo:    NoPieceType,
			want:     Occupant{Type: Bishop, Abilities: AbilityOf(Pawn), Moved: true},
		},
		{
			name:     "abilities never duplicate",
			attacker: Occupant{Type: Queen, Abilities: AbilityOf(Knight)},
			victim:   Knight,
			promo:    NoPieceType,
			want:     Occupant{Type: Queen, Abilities: AbilityOf(Knight), Moved: true},
		},
		{
			name:     "quiet move only marks moved",
			attacker: Occupant{Type: King},
			victim:   NoPieceType,
			promo:    NoPieceType,
			want:     Occupant{Type: King, Moved: true},
		},
		{
			name:     "capture promotion keeps other abilities",
			attacker: Occupant{Type: Pawn, Abilities: AbilityOf(Queen)},
			victim:   Knight,
			promo:    Rook,
			want:     Occupant{Type: Rook, Abilities: AbilityOf(Queen).With(Knight), Moved: true},
		},
		{
			name:     "ability pawn promotion drops pawn ability",
			attacker: Occupant{Type: Rook, Abilities: AbilityOf(Pawn).With(Bishop)},
			victim:   NoPieceType,
			promo:    Knight,
			want:     Occupant{Type: Knight, Abilities: AbilityOf(Bishop), Moved: true},
		},
		{
			name:     "king never promotes",
			attacker: Occupant{Type: King, Abilities: AbilityOf(Pawn)},
			victim:   Rook,
			promo:    Queen,
			want:     Occupant{Type: King, Abilities: AbilityOf(Pawn).With(Rook), Moved: true},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Absorb(tc.attacker, tc.victim, tc.promo); got != tc.want {
				t.Errorf("got %+v want %+v", got, tc.want)
			}
		})
	}
}

func TestCaptureGrantsVictimType(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/R2nK3 w - - 0 1")
	before := *pos
	m := mustMove(t, pos, "a1d1")
	undo := pos.MakeMove(m)

	o, _ := pos.OccupantAt(D1)
	if o.Type != Rook || !o.Abilities.Has(Knight) || !o.Moved {
		t.Fatalf("d1 = %+v", o)
	}
	if pos.Abilities[White][Knight] != SquareBB(D1) {
		t.Error("knight ability bitboard should hold only d1")
	}

	// White to move again: the rook now also jumps like a knight.
	pos.SideToMove = White
	moves := pos.GenerateLegalMoves()
	for _, s := range []string{"d1c3", "d1e3", "d1b2", "d1f2"} {
		if !moves.Contains(mustMove(t, pos, s)) {
			t.Errorf("missing knight-ability move %s", s)
		}
	}
	pos.SideToMove = Black

	pos.UnmakeMove(m, undo)
	if *pos != before {
		t.Errorf("unmake did not restore:\n%s\nwant\n%s", pos, &before)
	}
}

func TestAbilityPawnPromotion(t *testing.T) {
	// The rook on d7 carries pawn movement and promotes on d8.
	pos := mustFEN(t, "2n5/3R[pb]4/8/7k/8/8/8/4K3 w - - 0 1")
	m := mustMove(t, pos, "d7c8n")
	pos.MakeMove(m)

	o, _ := pos.OccupantAt(C8)
	// Knight joins the abilities before the pawn ability is dropped.
	want := Occupant{Color: White, Type: Knight, Abilities: AbilityOf(Bishop).With(Knight), Moved: true}
	if o != want {
		t.Errorf("c8 = %+v, want %+v", o, want)
	}
}

func TestQueenAbilityPawnPromotesToRook(t *testing.T) {
	pos := mustFEN(t, "k7/3P[q]*4/8/8/8/8/8/4K3 w - - 0 1")
	// d8 is reachable by the queen ability too; the promotion is the flagged move.
	m := mustMove(t, pos, "d7d8r")
	if !m.IsPromotion() {
		t.Fatalf("d7d8r resolved to %v", m)
	}
	pos.MakeMove(m)
	o, _ := pos.OccupantAt(D8)
	want := Occupant{Color: White, Type: Rook, Abilities: AbilityOf(Queen), Moved: true}
	if o != want {
		t.Errorf("d8 = %+v, want %+v", o, want)
	}
}

func TestCastlingMovesRook(t *testing.T) {
	pos := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	before := *pos
	m := mustMove(t, pos, "e1g1")
	if m.Flag() != FlagCastleKingside {
		t.Fatalf("e1g1 flag = %d", m.Flag())
	}
	undo := pos.MakeMove(m)
	if pos.PieceAt(G1) != NewPiece(King, White) || pos.PieceAt(F1) != NewPiece(Rook, White) {
		t.Fatalf("castling result:\n%s", pos)
	}
	if !pos.Castled[White] || !pos.Moved.IsSet(F1) || !pos.Moved.IsSet(G1) {
		t.Error("castled flag or moved bits not set")
	}
	pos.UnmakeMove(m, undo)
	if *pos != before {
		t.Error("unmake castling did not restore")
	}

	pos = mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1")
	pos.MakeMove(mustMove(t, pos, "e8c8"))
	if pos.PieceAt(C8) != NewPiece(King, Black) || pos.PieceAt(D8) != NewPiece(Rook, Black) || !pos.Castled[Black] {
		t.Errorf("queenside castling result:\n%s", pos)
	}
}

func TestEnPassantCapture(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	before := *pos
	m := mustMove(t, pos, "e5d6")
	if !m.IsEnPassant() {
		t.Fatalf("e5d6 resolved to flag %d", m.Flag())
	}
	undo := pos.MakeMove(m)
	if !pos.IsEmpty(D5) || pos.PieceAt(D6) != NewPiece(Pawn, White) {
		t.Fatalf("en passant result:\n%s", pos)
	}
	if undo.CapturedSq != D5 || undo.Captured.Type != Pawn {
		t.Errorf("undo = %+v", undo)
	}
	pos.UnmakeMove(m, undo)
	if *pos != before {
		t.Error("unmake en passant did not restore")
	}
}

func TestDoublePushSetsEnPassant(t *testing.T) {
	pos := NewPosition()
	pos.MakeMove(mustMove(t, pos, "e2e4"))
	if pos.EnPassant != E3 {
		t.Errorf("en passant = %s, want e3", pos.EnPassant)
	}
	pos.MakeMove(mustMove(t, pos, "g8f6"))
	if pos.EnPassant != NoSquare {
		t.Errorf("en passant = %s after a quiet move", pos.EnPassant)
	}
}

func TestAbilityDoublePushSetsEnPassant(t *testing.T) {
	// The knight on e2 holds pawn movement; d4 takes it en passant.
	pos := mustFEN(t, "4k3/8/8/8/3p4/8/4N[p]3/K7 w - - 0 1")
	pos.MakeMove(mustMove(t, pos, "e2e4"))
	if pos.EnPassant != E3 {
		t.Fatalf("en passant = %s, want e3", pos.EnPassant)
	}

	before := *pos
	m := NewMove(D4, E3, FlagEnPassant)
	if !pos.GenerateLegalMoves().Contains(m) {
		t.Fatal("d4xe3 en passant missing")
	}
	undo := pos.MakeMove(m)
	if !pos.IsEmpty(E4) {
		t.Error("knight on e4 was not removed")
	}
	if o, _ := pos.OccupantAt(E3); o.Type != Pawn || !o.Abilities.Has(Knight) {
		t.Errorf("e3 = %+v, want pawn with {knight}", o)
	}
	pos.UnmakeMove(m, undo)
	if *pos != before {
		t.Error("unmake did not restore")
	}

	tests := []struct {
		name string
		fen  string
		move string
	}{
		{"backwards two squares", "4k3/8/8/8/4R[p]3/8/8/K7 w - - 0 1", "e4e2"},
		{"off the start rank", "4k3/8/8/8/8/4R[p]3/8/K7 w - - 0 1", "e3e5"},
		{"without pawn movement", "4k3/8/8/8/8/8/4R3/K7 w - - 0 1", "e2e4"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustFEN(t, tc.fen)
			pos.MakeMove(mustMove(t, pos, tc.move))
			if pos.EnPassant != NoSquare {
				t.Errorf("en passant = %s, want none", pos.EnPassant)
			}
		})
	}
}

// Random walks through capture-heavy positions: every make/unmake pair must
// restore the position bit for bit, hash included.
func TestMakeUnmakeRestores(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}
	rng := rand.New(rand.NewSource(7))
	for _, fen := range fens {
		pos := mustFEN(t, fen)
		for game := 0; game < 20; game++ {
			p := *pos
			for ply := 0; ply < 80; ply++ {
				moves := p.GenerateLegalMoves()
				if moves.Len() == 0 {
					break
				}
				for _, m := range moves.Slice() {
					before := p
					hash := p.Hash()
					undo := p.MakeMove(m)
					if err := p.Validate(); err != nil {
						t.Fatalf("%v after %s:\n%s", err, m, &p)
					}
					p.UnmakeMove(m, undo)
					if p != before || p.Hash() != hash {
						t.Fatalf("make/unmake %s changed the position:\n%s", m, &before)
					}
				}
				p.MakeMove(moves.Get(rng.Intn(moves.Len())))
			}
		}
	}
}
