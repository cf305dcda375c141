package engine

import (
	"time"

	"github.com/hailam/absorbchess/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 64
)

// SearchStats describes the last FindBestMove call.
type SearchStats struct {
	Depth     int
	Move      board.Move
	Score     int
	Nodes     uint64 // negamax nodes
	QNodes    uint64 // quiescence nodes
	Elapsed   time.Duration
	RootMoves int  // root moves fully searched
	Completed bool // false when the deadline cut the root loop short
}

// FindBestMove searches the current position to depth plies and returns the
// best move, or board.NoMove when there is no legal move. With a positive
// timeLimitMs the deadline is checked after every root move and the best
// move so far is returned once it has passed.
func (e *Engine) FindBestMove(depth, timeLimitMs int) board.Move {
	if depth < 1 {
		depth = 1
	}
	startTime := time.Now()
	var deadline time.Time
	if timeLimitMs > 0 {
		deadline = startTime.Add(time.Duration(timeLimitMs) * time.Millisecond)
	}

	e.nodes, e.qnodes = 0, 0
	e.orderer.Clear()
	stats := SearchStats{Depth: depth, Move: board.NoMove, Completed: true}

	moves := e.pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if e.pos.InCheck() {
			stats.Score = -MateScore
		}
		e.finishSearch(stats, startTime)
		return board.NoMove
	}

	scores := e.orderer.ScoreMoves(&e.pos, moves, 0, &e.params)
	SortMoves(moves, scores)

	bestMove := moves.Get(0)
	bestScore := -Infinity
	alpha := -Infinity
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		u := e.apply(m)
		score := -e.negamax(depth-1, 1, -Infinity, -alpha)
		e.undo(u)
		stats.RootMoves++

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
		}

		if !deadline.IsZero() && i < moves.Len()-1 && time.Now().After(deadline) {
			stats.Completed = false
			break
		}
	}

	stats.Move = bestMove
	stats.Score = bestScore
	e.finishSearch(stats, startTime)
	return bestMove
}

func (e *Engine) finishSearch(stats SearchStats, startTime time.Time) {
	stats.Nodes = e.nodes
	stats.QNodes = e.qnodes
	stats.Elapsed = time.Since(startTime)
	e.last = stats

	if e.logger != nil {
		nps := uint64(0)
		if ms := stats.Elapsed.Milliseconds(); ms > 0 {
			nps = (stats.Nodes + stats.QNodes) * 1000 / uint64(ms)
		}
		e.logger.Printf("search depth=%d move=%s score=%d nodes=%d qnodes=%d time_ms=%d nps=%d complete=%v",
			stats.Depth, stats.Move, stats.Score, stats.Nodes, stats.QNodes,
			stats.Elapsed.Milliseconds(), nps, stats.Completed)
	}
}

// negamax returns the score of the current position for the side to move.
func (e *Engine) negamax(depth, ply int, alpha, beta int) int {
	if depth <= 0 || ply >= MaxPly {
		return e.quiescence(ply, alpha, beta)
	}

	e.nodes++

	moves := e.pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if e.pos.InCheck() {
			// Mates found with more depth left are closer to the root.
			return -(MateScore + depth)
		}
		return 0
	}

	scores := e.orderer.ScoreMoves(&e.pos, moves, ply, &e.params)
	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		m := moves.Get(i)

		u := e.apply(m)
		score := -e.negamax(depth-1, ply+1, -beta, -alpha)
		e.undo(u)

		if score >= beta {
			if !m.IsCapture(&e.pos) && !m.IsPromotion() {
				e.orderer.UpdateKillers(m, ply)
			}
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

// quiescence searches captures to avoid horizon effect.
func (e *Engine) quiescence(ply int, alpha, beta int) int {
	e.qnodes++

	if e.pos.InCheck() && !e.pos.HasLegalMoves() {
		return -MateScore
	}

	// Stand pat
	standPat := e.cache.score(&e.pos, &e.params)
	if ply >= MaxPly {
		return standPat
	}
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	moves := e.pos.GenerateCaptures()
	scores := e.orderer.ScoreMoves(&e.pos, moves, ply, &e.params)
	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		m := moves.Get(i)

		u := e.apply(m)
		score := -e.quiescence(ply+1, -beta, -alpha)
		e.undo(u)

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}
