// Package uci implements a line protocol for driving the absorb chess engine,
// modelled on the Universal Chess Interface.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/absorbchess/internal/board"
	"github.com/hailam/absorbchess/internal/engine"
	"github.com/hailam/absorbchess/internal/storage"
)

// Search defaults
const (
	DefaultDepth = 4
	MaxDepth     = 32
)

// UCI reads commands and drives one engine. An engine is not safe for
// concurrent use, so every command waits for a running search first.
type UCI struct {
	engine *engine.Engine
	store  *storage.Store // optional best-move cache
	out    io.Writer

	// Plies played since the last position command, for time budgeting.
	ply int

	searchDone chan struct{}
}

// New creates a protocol handler. store may be nil.
func New(eng *engine.Engine, store *storage.Store) *UCI {
	return &UCI{engine: eng, store: store}
}

// Run reads commands from r until quit or end of input, writing replies to w.
func (u *UCI) Run(r io.Reader, w io.Writer) error {
	u.out = w
	defer u.wait()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		u.wait()
		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.report(u.engine.SetFEN(board.StartFEN))
			u.ply = 0
		case "position":
			u.report(u.handlePosition(args))
		case "go":
			u.handleGo(args)
		case "eval":
			score := u.engine.EvaluatePosition()
			u.printf("eval %d (%s)\n", score, engine.ScoreToString(score))
		case "legal":
			u.handleLegal()
		case "check":
			u.printf("check white %v black %v checkmate %v stalemate %v\n",
				u.engine.IsInCheck(true), u.engine.IsInCheck(false),
				u.engine.IsCheckmate(), u.engine.IsStalemate())
		case "d":
			u.printf("%s\nfen %s\n", u.engine.Position(), u.engine.FEN())
		case "perft":
			u.report(u.handlePerft(args))
		case "setoption":
			u.report(u.handleSetOption(args))
		case "quit":
			return nil
		default:
			u.printf("info string unknown command %s\n", cmd)
		}
	}
	return scanner.Err()
}

func (u *UCI) wait() {
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
	}
}

func (u *UCI) printf(format string, args ...any) {
	fmt.Fprintf(u.out, format, args...)
}

func (u *UCI) println(s string) {
	fmt.Fprintln(u.out, s)
}

func (u *UCI) report(err error) {
	if err != nil {
		u.printf("info string error: %v\n", err)
	}
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name AbsorbChess")
	u.println("id author AbsorbChess Team")
	u.println("")
	params := u.engine.EvalParams()
	for _, name := range params.Names() {
		v, _ := params.Get(name)
		u.printf("option name %s type spin default %d min -100000 max 100000\n", name, v)
	}
	u.println("uciok")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos [moves e2e4 ...]
//   - position fen <extended fen> [moves ...]
//   - position grid <64 codes, row 0 first> <w|b> <-|w|b|wb> <-|col,row> [moves ...]
//
// The grid form takes piece codes and its castled flags and en-passant
// square follow the interop grid, not FEN.
func (u *UCI) handlePosition(args []string) error {
	if len(args) == 0 {
		return errors.New("position: missing argument")
	}

	setup, moves := args, []string(nil)
	for i, arg := range args {
		if arg == "moves" {
			setup, moves = args[:i], args[i+1:]
			break
		}
	}

	var err error
	switch setup[0] {
	case "startpos":
		err = u.engine.SetFEN(board.StartFEN)
	case "fen":
		err = u.engine.SetFEN(strings.Join(setup[1:], " "))
	case "grid":
		err = u.setGrid(setup[1:])
	default:
		err = fmt.Errorf("position: unknown setup %q", setup[0])
	}
	if err != nil {
		return err
	}

	u.ply = 0
	for _, s := range moves {
		if err := u.engine.MakeMoveString(s); err != nil {
			return err
		}
		u.ply++
	}
	return nil
}

func (u *UCI) setGrid(args []string) error {
	if len(args) != 67 {
		return fmt.Errorf("%w: grid needs 64 codes and 3 flags, got %d fields", board.ErrMalformedGrid, len(args))
	}

	grid := make([][]uint16, 8)
	for row := range grid {
		grid[row] = make([]uint16, 8)
		for col := range grid[row] {
			code, err := strconv.ParseUint(args[row*8+col], 10, 16)
			if err != nil {
				return fmt.Errorf("%w: code %q", board.ErrMalformedGrid, args[row*8+col])
			}
			grid[row][col] = uint16(code)
		}
	}

	var whiteToMove bool
	switch args[64] {
	case "w":
		whiteToMove = true
	case "b":
	default:
		return fmt.Errorf("%w: side %q", board.ErrMalformedGrid, args[64])
	}

	castled := args[65]
	if castled != "-" && strings.Trim(castled, "wb") != "" {
		return fmt.Errorf("%w: castled %q", board.ErrMalformedGrid, castled)
	}

	epFile, epRank := -1, -1
	if ep := args[66]; ep != "-" {
		col, row, ok := strings.Cut(ep, ",")
		var errCol, errRow error
		epFile, errCol = strconv.Atoi(col)
		epRank, errRow = strconv.Atoi(row)
		if !ok || errCol != nil || errRow != nil {
			return fmt.Errorf("%w: en passant %q", board.ErrMalformedGrid, ep)
		}
	}

	return u.engine.SetBoardState(grid, whiteToMove,
		strings.Contains(castled, "w"), strings.Contains(castled, "b"), epFile, epRank)
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth  int
	Limits engine.ClockLimits
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) (GoOptions, error) {
	var opts GoOptions
	for i := 0; i < len(args); i++ {
		name := args[i]
		if i+1 >= len(args) {
			return opts, fmt.Errorf("go: %s needs a value", name)
		}
		v, err := strconv.Atoi(args[i+1])
		if err != nil {
			return opts, fmt.Errorf("go: %s: %w", name, err)
		}
		i++

		ms := time.Duration(v) * time.Millisecond
		switch name {
		case "depth":
			opts.Depth = v
		case "movetime":
			opts.Limits.MoveTime = ms
		case "wtime":
			opts.Limits.Time[board.White] = ms
		case "btime":
			opts.Limits.Time[board.Black] = ms
		case "winc":
			opts.Limits.Inc[board.White] = ms
		case "binc":
			opts.Limits.Inc[board.Black] = ms
		case "movestogo":
			opts.Limits.MovesToGo = v
		default:
			return opts, fmt.Errorf("go: unknown option %s", name)
		}
	}
	return opts, nil
}

// handleGo starts a search on its own goroutine. With a time budget and no
// depth it deepens until the budget runs out.
func (u *UCI) handleGo(args []string) {
	opts, err := parseGoOptions(args)
	if err != nil {
		u.report(err)
		return
	}

	pos := u.engine.Position()
	budget := engine.MoveBudget(opts.Limits, pos.SideToMove, u.ply)

	from, to := opts.Depth, opts.Depth
	if opts.Depth <= 0 {
		from, to = DefaultDepth, DefaultDepth
		if budget > 0 {
			from, to = 1, MaxDepth
		}
	}

	params := u.engine.EvalParams()
	fingerprint := params.Fingerprint()
	if move, ok := u.cachedMove(pos, fingerprint, to); ok {
		u.printf("info string cached\nbestmove %s\n", move)
		return
	}

	u.searchDone = make(chan struct{})
	go func() {
		defer close(u.searchDone)
		best := u.deepen(from, to, budget)
		u.printf("bestmove %s\n", formatMove(best.Move))
		u.storeAnalysis(pos, fingerprint, best)
	}()
}

// deepen runs searches of increasing depth, keeping the deepest one that
// finished its root loop. The first depth always counts.
func (u *UCI) deepen(from, to, budgetMs int) engine.SearchStats {
	start := time.Now()
	var best engine.SearchStats
	for depth := from; depth <= to; depth++ {
		remaining := 0
		if budgetMs > 0 {
			remaining = budgetMs - int(time.Since(start).Milliseconds())
			if remaining <= 0 && depth > from {
				break
			}
			remaining = max(remaining, 1)
		}

		u.engine.FindBestMove(depth, remaining)
		stats := u.engine.LastSearch()
		if !stats.Completed && depth > from {
			break
		}
		best = stats
		u.sendInfo(stats)

		if stats.Move == board.NoMove || abs(stats.Score) >= engine.MateScore {
			break
		}
	}
	return best
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(stats engine.SearchStats) {
	score := fmt.Sprintf("score cp %d", stats.Score)
	switch {
	case stats.Move == board.NoMove && stats.Score < 0:
		score = "score mate 0"
	case abs(stats.Score) >= engine.MateScore:
		plies := stats.Depth - (abs(stats.Score) - engine.MateScore)
		moves := (plies + 1) / 2
		if stats.Score < 0 {
			moves = -moves
		}
		score = fmt.Sprintf("score mate %d", moves)
	}

	nodes := stats.Nodes + stats.QNodes
	nps := uint64(0)
	if ms := stats.Elapsed.Milliseconds(); ms > 0 {
		nps = nodes * 1000 / uint64(ms)
	}
	u.printf("info depth %d %s nodes %d time %d nps %d pv %s\n",
		stats.Depth, score, nodes, stats.Elapsed.Milliseconds(), nps, formatMove(stats.Move))
}

func (u *UCI) cachedMove(pos *board.Position, params uint64, depth int) (board.Move, bool) {
	if u.store == nil {
		return board.NoMove, false
	}
	rec, found, err := u.store.LoadAnalysis(pos.Hash(), params)
	if err != nil {
		u.report(err)
		return board.NoMove, false
	}
	if !found || rec.Depth < depth || rec.FEN != pos.FEN() {
		return board.NoMove, false
	}
	m, err := board.ParseMove(rec.Move, pos)
	if err != nil {
		return board.NoMove, false
	}
	return m, true
}

func (u *UCI) storeAnalysis(pos *board.Position, params uint64, stats engine.SearchStats) {
	if u.store == nil || stats.Move == board.NoMove {
		return
	}
	u.report(u.store.SaveAnalysis(storage.AnalysisRecord{
		Hash:   pos.Hash(),
		Params: params,
		FEN:    pos.FEN(),
		Depth:  stats.Depth,
		Move:   stats.Move.String(),
		Score:  stats.Score,
		Nodes:  stats.Nodes + stats.QNodes,
	}))
}

func (u *UCI) handleLegal() {
	moves := u.engine.GenerateLegalMoves()
	strs := make([]string, len(moves))
	for i, m := range moves {
		strs[i] = m.String()
	}
	u.printf("legal %d %s\n", len(moves), strings.Join(strs, " "))
}

// handlePerft prints the node count below each root move and the total.
func (u *UCI) handlePerft(args []string) error {
	if len(args) != 1 {
		return errors.New("perft: usage perft <depth>")
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("perft: %w", err)
	}

	start := time.Now()
	entries, err := u.engine.Divide(context.Background(), depth, 0)
	if err != nil {
		return err
	}

	var total uint64
	for _, entry := range entries {
		u.printf("%s: %d\n", entry.Move, entry.Nodes)
		total += entry.Nodes
	}
	elapsed := time.Since(start)
	u.printf("\nNodes searched: %d\n", total)

	if u.store != nil {
		pos := u.engine.Position()
		return u.store.SavePerft(storage.PerftRecord{
			Hash:    pos.Hash(),
			FEN:     pos.FEN(),
			Depth:   depth,
			Nodes:   total,
			Elapsed: elapsed,
		})
	}
	return nil
}

// handleSetOption sets an evaluation weight.
// Format: setoption name <weight> value <int>
func (u *UCI) handleSetOption(args []string) error {
	if len(args) != 4 || args[0] != "name" || args[2] != "value" {
		return errors.New("setoption: usage setoption name <weight> value <int>")
	}
	v, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("setoption %s: %w", args[1], err)
	}
	params := u.engine.EvalParams()
	if err := params.Set(args[1], v); err != nil {
		return err
	}
	u.engine.SetEvalParams(params)
	return nil
}

func formatMove(m board.Move) string {
	if m == board.NoMove {
		return "0000"
	}
	return m.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
