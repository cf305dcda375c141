package board

import "testing"

func TestMagicTablesMatchRayWalk(t *testing.T) {
	Init()
	if err := verifyMagics(); err != nil {
		t.Fatal(err)
	}
}

// Lookups must ignore occupancy outside the relevance mask, including the rim.
func TestSliderLookupFullOccupancy(t *testing.T) {
	Init()
	rng := newPRNG(0x5eed)
	for sq := A1; sq <= H8; sq++ {
		for i := 0; i < 200; i++ {
			occ := Bitboard(rng.next() & rng.next())
			if got, want := BishopAttacks(sq, occ), bishopAttacksSlow(sq, occ); got != want {
				t.Fatalf("bishop %s occ %#x: got %#x want %#x", sq, uint64(occ), uint64(got), uint64(want))
			}
			if got, want := RookAttacks(sq, occ), rookAttacksSlow(sq, occ); got != want {
				t.Fatalf("rook %s occ %#x: got %#x want %#x", sq, uint64(occ), uint64(got), uint64(want))
			}
			if got, want := QueenAttacks(sq, occ), bishopAttacksSlow(sq, occ)|rookAttacksSlow(sq, occ); got != want {
				t.Fatalf("queen %s: got %#x want %#x", sq, uint64(got), uint64(want))
			}
		}
	}
}

func TestLeaperAttacks(t *testing.T) {
	Init()
	tests := []struct {
		name string
		got  Bitboard
		want int
	}{
		{"knight a1", KnightAttacks(A1), 2},
		{"knight d4", KnightAttacks(D4), 8},
		{"knight h8", KnightAttacks(H8), 2},
		{"king a1", KingAttacks(A1), 3},
		{"king e4", KingAttacks(E4), 8},
		{"white pawn a2", PawnAttacks(A2, White), 1},
		{"white pawn e4", PawnAttacks(E4, White), 2},
		{"black pawn e4", PawnAttacks(E4, Black), 2},
		{"rook empty board", RookAttacks(D4, Empty), 14},
		{"bishop empty board", BishopAttacks(D4, Empty), 13},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if n := tc.got.PopCount(); n != tc.want {
				t.Errorf("got %d squares, want %d\n%s", n, tc.want, tc.got)
			}
		})
	}

	if !PawnAttacks(E4, White).IsSet(D5) || !PawnAttacks(E4, Black).IsSet(F3) {
		t.Error("pawn attack direction wrong")
	}
}

func TestMovementAttacksUnion(t *testing.T) {
	Init()
	set := AbilityOf(Rook).With(Knight)
	got := MovementAttacks(set, White, A1, Empty)
	want := RookAttacks(A1, Empty) | KnightAttacks(A1)
	if got != want {
		t.Errorf("got %#x want %#x", uint64(got), uint64(want))
	}
}
