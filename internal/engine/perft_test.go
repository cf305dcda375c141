package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hailam/absorbchess/internal/board"
)

func TestDivideSumsToPerft(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		depth   int
		workers int
		nodes   uint64
	}{
		{"start", board.StartFEN, 3, 4, 8902},
		{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, 0, 1923},
		{"abilities", "r3k2r/pp1n[q]1ppp/2p5/4B[n]3/1b[r]6/5N[b]2/PP3PPP/R3K[n]2R w KQkq - 0 1", 2, 2, 301},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, tc.fen)
			entries, err := e.Divide(context.Background(), tc.depth, tc.workers)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != len(e.GenerateLegalMoves()) {
				t.Errorf("%d entries for %d root moves", len(entries), len(e.GenerateLegalMoves()))
			}
			var sum uint64
			for _, entry := range entries {
				sum += entry.Nodes
			}
			if sum != tc.nodes {
				t.Errorf("divide sums to %d, want %d", sum, tc.nodes)
			}
			if got := e.Perft(tc.depth); got != tc.nodes {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.nodes)
			}
		})
	}
}

func TestDivideCancelled(t *testing.T) {
	e := newEngine(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Divide(ctx, 3, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if _, err := e.Divide(context.Background(), 0, 1); err == nil {
		t.Error("depth 0 accepted")
	}
}

func TestMoveBudget(t *testing.T) {
	tests := []struct {
		name   string
		limits ClockLimits
		ply    int
		want   int
	}{
		{"no clock", ClockLimits{}, 0, 0},
		{"fixed move time", ClockLimits{MoveTime: 250 * time.Millisecond}, 0, 250},
		{"moves to go", ClockLimits{Time: [2]time.Duration{10 * time.Second, time.Second}, MovesToGo: 10}, 20, 1000},
		{"increment", ClockLimits{Time: [2]time.Duration{10 * time.Second}, Inc: [2]time.Duration{time.Second}, MovesToGo: 10}, 20, 1900},
		{"capped by remaining", ClockLimits{Time: [2]time.Duration{100 * time.Millisecond}, Inc: [2]time.Duration{time.Second}, MovesToGo: 1}, 20, 80},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MoveBudget(tc.limits, board.White, tc.ply); got != tc.want {
				t.Errorf("MoveBudget = %d, want %d", got, tc.want)
			}
		})
	}
}
