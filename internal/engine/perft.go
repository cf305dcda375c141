package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/absorbchess/internal/board"
)

// DivideEntry is the leaf count below one root move.
type DivideEntry struct {
	Move  board.Move
	Nodes uint64
}

// Perft counts the leaf nodes of the legal move tree at the given depth.
func (e *Engine) Perft(depth int) uint64 {
	pos := e.pos
	return perft(&pos, depth)
}

func perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}
	return nodes
}

// Divide counts the leaves below each root move, running up to workers root
// moves at once, each on its own copy of the position. workers <= 0 means
// no limit. Entries are in generation order.
func (e *Engine) Divide(ctx context.Context, depth, workers int) ([]DivideEntry, error) {
	if depth < 1 {
		return nil, fmt.Errorf("divide depth %d: must be at least 1", depth)
	}
	root := e.pos
	moves := append([]board.Move(nil), root.GenerateLegalMoves().Slice()...)
	entries := make([]DivideEntry, len(moves))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, m := range moves {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pos := root
			pos.MakeMove(m)
			entries[i] = DivideEntry{Move: m, Nodes: perft(&pos, depth-1)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
