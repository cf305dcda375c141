package board

import (
	"errors"
	"testing"
)

func TestStartPositionGrid(t *testing.T) {
	st := NewPosition().State()

	tests := []struct {
		row, col int
		want     uint16
	}{
		{7, 0, CodeRook | CodeWhite},
		{7, 4, CodeKing | CodeWhite},
		{6, 3, CodePawn | CodeWhite},
		{0, 4, CodeKing},
		{0, 3, CodeQueen},
		{1, 7, CodePawn},
		{4, 4, 0},
	}
	for _, tc := range tests {
		if got := st.Grid[tc.row][tc.col]; got != tc.want {
			t.Errorf("grid[%d][%d] = %d, want %d", tc.row, tc.col, got, tc.want)
		}
	}
	if !st.WhiteToMove || st.WhiteCastled || st.BlackCastled {
		t.Errorf("unexpected flags %+v", st)
	}
	if st.EnPassantFile != -1 || st.EnPassantRank != -1 {
		t.Errorf("en passant = (%d, %d), want (-1, -1)", st.EnPassantFile, st.EnPassantRank)
	}
}

func TestGridRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1",
		"r[nq]*3k2r/8/8/8/8/8/3P[q]4/R3K[pn]*2R b KQ - 0 1",
		"8/3R[p]4/8/7k/8/8/8/4K3 w - - 0 1",
	}
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			pos, err := ParseFEN(fen)
			if err != nil {
				t.Fatal(err)
			}
			st := pos.State()
			back, err := FromGrid(st.Grid.Rows(), st.WhiteToMove, st.WhiteCastled, st.BlackCastled,
				st.EnPassantFile, st.EnPassantRank)
			if err != nil {
				t.Fatal(err)
			}
			if *back != *pos {
				t.Errorf("round trip changed the position:\n%s\nvs\n%s", pos, back)
			}
			if back.State() != st {
				t.Error("state differs after round trip")
			}
		})
	}
}

// A stored ability bit equal to the base type survives decoding and encoding.
func TestGridKeepsOwnTypeAbilityBit(t *testing.T) {
	var g Grid
	g[7][4] = CodeKing | CodeWhite
	g[0][4] = CodeKing
	g[4][4] = CodeRook | CodeAbilityRook | CodeAbilityKnight | CodeHasMoved | CodeWhite

	pos, err := FromGrid(g.Rows(), true, true, false, -1, -1)
	if err != nil {
		t.Fatal(err)
	}
	o, ok := pos.OccupantAt(E4)
	if !ok || o.Type != Rook || !o.Abilities.Has(Rook) || !o.Abilities.Has(Knight) || !o.Moved {
		t.Fatalf("decoded %+v", o)
	}
	if st := pos.State(); st.Grid != g || !st.WhiteCastled || st.BlackCastled {
		t.Errorf("re-encoded grid differs: %v", st.Grid)
	}
}

func TestGridEnPassantCoordinates(t *testing.T) {
	var g Grid
	g[7][4] = CodeKing | CodeWhite
	g[0][4] = CodeKing
	g[3][3] = CodePawn | CodeWhite | CodeHasMoved
	g[3][4] = CodePawn | CodeHasMoved

	// Black just played e7e5: target e6 is row 2, col 4.
	pos, err := FromGrid(g.Rows(), true, false, false, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if pos.EnPassant != E6 {
		t.Fatalf("en passant = %s, want e6", pos.EnPassant)
	}
	if !pos.GenerateLegalMoves().Contains(NewMove(D5, E6, FlagEnPassant)) {
		t.Error("d5xe6 en passant missing")
	}
}

func TestFromGridRejectsMalformed(t *testing.T) {
	valid := func() [][]uint16 {
		var g Grid
		g[7][4] = CodeKing | CodeWhite
		g[0][4] = CodeKing
		return g.Rows()
	}

	tests := []struct {
		name   string
		grid   func() [][]uint16
		epFile int
		epRank int
	}{
		{"seven rows", func() [][]uint16 { return valid()[:7] }, -1, -1},
		{"short row", func() [][]uint16 { g := valid(); g[3] = g[3][:5]; return g }, -1, -1},
		{"long row", func() [][]uint16 { g := valid(); g[3] = append(g[3], 0); return g }, -1, -1},
		{"two base types", func() [][]uint16 { g := valid(); g[4][4] = CodePawn | CodeKnight; return g }, -1, -1},
		{"no base type", func() [][]uint16 { g := valid(); g[4][4] = CodeAbilityQueen | CodeWhite; return g }, -1, -1},
		{"unknown bit", func() [][]uint16 { g := valid(); g[4][4] = CodeRook | 1<<14; return g }, -1, -1},
		{"two white kings", func() [][]uint16 { g := valid(); g[5][5] = CodeKing | CodeWhite; return g }, -1, -1},
		{"en passant off the third or sixth rank", valid, 3, 3},
		{"en passant half given", valid, -1, 2},
		{"en passant file out of range", valid, 8, 5},
		{"en passant on the mover's side", valid, 4, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := FromGrid(tc.grid(), true, false, false, tc.epFile, tc.epRank)
			if err == nil {
				t.Fatalf("accepted malformed grid:\n%s", pos)
			}
			if !errors.Is(err, ErrMalformedGrid) {
				t.Errorf("error %v does not wrap ErrMalformedGrid", err)
			}
		})
	}
}

func TestDecodeOccupant(t *testing.T) {
	o, err := DecodeOccupant(CodeBishop | CodeAbilityPawn | CodeAbilityKing)
	if err != nil {
		t.Fatal(err)
	}
	want := Occupant{Color: Black, Type: Bishop, Abilities: AbilityOf(Pawn).With(King)}
	if o != want {
		t.Errorf("got %+v want %+v", o, want)
	}
	if o.Code() != CodeBishop|CodeAbilityPawn|CodeAbilityKing {
		t.Errorf("re-encoded %d", o.Code())
	}
}
