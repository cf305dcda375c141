package engine

import (
	"errors"
	"fmt"
	"log"

	"github.com/hailam/absorbchess/internal/board"
)

// ErrIllegalMove is returned by MakeMove for a move outside the legal set.
var ErrIllegalMove = errors.New("illegal move")

// Options configures a new Engine.
type Options struct {
	Eval EvalParams `json:"eval"`

	// Logger receives one line per search. Nil disables logging.
	Logger *log.Logger `json:"-"`
}

// DefaultOptions returns the default weights and no logger.
func DefaultOptions() Options {
	return Options{Eval: DefaultEvalParams()}
}

// Engine owns one absorb chess position and searches it. It is not safe
// for concurrent use.
type Engine struct {
	pos     board.Position
	params  EvalParams
	cache   evalCache
	orderer *MoveOrderer
	logger  *log.Logger

	nodes  uint64
	qnodes uint64
	last   SearchStats
}

// undoInfo is what undo needs to reverse apply.
type undoInfo struct {
	move  board.Move
	board board.Undo
	cache evalCache
}

// New returns an engine set to the standard starting position.
func New(opts Options) *Engine {
	return &Engine{
		pos:     *board.NewPosition(),
		params:  opts.Eval,
		orderer: NewMoveOrderer(),
		logger:  opts.Logger,
	}
}

// apply plays m and keeps the evaluation cache in step with it.
func (e *Engine) apply(m board.Move) undoInfo {
	u := undoInfo{move: m, cache: e.cache}
	u.board = e.pos.MakeMove(m)
	e.cache.moved(materialDelta(&e.pos, m, u.board, &e.params))
	return u
}

func (e *Engine) undo(u undoInfo) {
	e.pos.UnmakeMove(u.move, u.board)
	e.cache = u.cache
}

// SetBoardState replaces the position with collaborator state. On error the
// current position is kept.
func (e *Engine) SetBoardState(grid [][]uint16, whiteToMove, whiteCastled, blackCastled bool, epFile, epRank int) error {
	pos, err := board.FromGrid(grid, whiteToMove, whiteCastled, blackCastled, epFile, epRank)
	if err != nil {
		return err
	}
	e.setPosition(pos)
	return nil
}

// GetBoardState returns the position in collaborator layout.
func (e *Engine) GetBoardState() board.BoardState {
	return e.pos.State()
}

// SetFEN replaces the position with a FEN in the extended ability notation.
func (e *Engine) SetFEN(fen string) error {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return err
	}
	e.setPosition(pos)
	return nil
}

// FEN returns the position in extended ability notation.
func (e *Engine) FEN() string {
	return e.pos.FEN()
}

func (e *Engine) setPosition(pos *board.Position) {
	e.pos = *pos
	e.cache.invalidate()
}

// Position returns a copy of the current position.
func (e *Engine) Position() *board.Position {
	return e.pos.Copy()
}

// GenerateLegalMoves returns the legal moves of the side to move.
func (e *Engine) GenerateLegalMoves() []board.Move {
	return append([]board.Move(nil), e.pos.GenerateLegalMoves().Slice()...)
}

// IsValidMove reports whether m is legal in the current position.
func (e *Engine) IsValidMove(m board.Move) bool {
	return e.pos.IsLegal(m)
}

// MakeMove plays a legal move on the engine's position.
func (e *Engine) MakeMove(m board.Move) error {
	if !e.pos.IsLegal(m) {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	e.apply(m)
	return nil
}

// MakeMoveString parses coordinate notation and plays the move.
func (e *Engine) MakeMoveString(s string) error {
	m, err := board.ParseMove(s, &e.pos)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	e.apply(m)
	return nil
}

// GetPieceAt returns the occupant of sq; ok is false when it is empty.
func (e *Engine) GetPieceAt(sq board.Square) (board.Occupant, bool) {
	return e.pos.OccupantAt(sq)
}

// GetPieceCode returns the grid code at row, col (row 0 is rank 8), 0 when
// empty or off the board.
func (e *Engine) GetPieceCode(row, col int) uint16 {
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return 0
	}
	return e.pos.CodeAt(board.GridSquare(row, col))
}

// EvaluatePosition returns the static evaluation for the side to move.
func (e *Engine) EvaluatePosition() int {
	return e.cache.score(&e.pos, &e.params)
}

// IsInCheck reports whether the given side's king is attacked.
func (e *Engine) IsInCheck(white bool) bool {
	if white {
		return e.pos.IsInCheck(board.White)
	}
	return e.pos.IsInCheck(board.Black)
}

// IsCheckmate reports whether the side to move is mated.
func (e *Engine) IsCheckmate() bool {
	return e.pos.IsCheckmate()
}

// IsStalemate reports whether the side to move has no move and is not in check.
func (e *Engine) IsStalemate() bool {
	return e.pos.IsStalemate()
}

// IsGameOver reports whether the side to move has no legal move.
func (e *Engine) IsGameOver() bool {
	return !e.pos.HasLegalMoves()
}

// LastSearch returns the statistics of the most recent FindBestMove.
func (e *Engine) LastSearch() SearchStats {
	return e.last
}

// EvalParams returns the evaluation weights in use.
func (e *Engine) EvalParams() EvalParams {
	return e.params
}

// SetEvalParams replaces the evaluation weights.
func (e *Engine) SetEvalParams(p EvalParams) {
	e.params = p
	e.cache.invalidate()
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-MaxPly {
		return "mate"
	}
	if score < -MateScore+MaxPly {
		return "mated"
	}
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}
