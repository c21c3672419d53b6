package game

import (
	"errors"
	"fmt"

	"github.com/dmmcquay/nogo/internal/board"
)

var (
	ErrGameOver    = errors.New("game is over")
	ErrNoLegalMove = errors.New("no legal move")
)

// Status is the lifecycle state of a game.
type Status int

const (
	InProgress Status = iota
	BlackWins
	WhiteWins
	Draw
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case BlackWins:
		return "black_wins"
	case WhiteWins:
		return "white_wins"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

// Record is one accepted move.
type Record struct {
	Color    board.Color
	Coord    board.Coord
	Captured int
}

// State owns the board and sequences turns.
type State struct {
	board   *board.Board
	turn    board.Color
	status  Status
	history []Record
}

// New starts a game on an empty board with Black to move.
func New(height, width int) (*State, error) {
	b, err := board.New(height, width)
	if err != nil {
		return nil, err
	}
	return &State{board: b, turn: board.Black, status: InProgress}, nil
}

// Restore resumes a game from an existing board.
func Restore(b *board.Board, turn board.Color) (*State, error) {
	if b == nil {
		return nil, fmt.Errorf("restore: nil board")
	}
	if turn != board.Black && turn != board.White {
		return nil, fmt.Errorf("restore: invalid turn %v", turn)
	}
	return &State{board: b, turn: turn, status: InProgress}, nil
}

// Board exposes the live board. Callers must not mutate it.
func (s *State) Board() *board.Board { return s.board }
func (s *State) Turn() board.Color   { return s.turn }
func (s *State) Status() Status      { return s.status }
func (s *State) Over() bool          { return s.status != InProgress }

// Winner returns the winning color, or Empty for a draw or unfinished game.
func (s *State) Winner() board.Color {
	switch s.status {
	case BlackWins:
		return board.Black
	case WhiteWins:
		return board.White
	default:
		return board.Empty
	}
}

// History returns a copy of the accepted moves.
func (s *State) History() []Record {
	return append([]Record(nil), s.history...)
}

// ApplyMove plays the side to move at c. Any capture ends the game in the
// mover's favour; otherwise the turn passes.
func (s *State) ApplyMove(c board.Coord) (Result, error) {
	if s.Over() {
		return Result{}, fmt.Errorf("%w: %v", ErrGameOver, s.status)
	}
	res, err := ResolveMove(s.board, c, s.turn)
	if err != nil {
		return Result{}, err
	}

	s.history = append(s.history, Record{Color: s.turn, Coord: c, Captured: res.CapturedStones()})
	if len(res.Captured) > 0 {
		if s.turn == board.Black {
			s.status = BlackWins
		} else {
			s.status = WhiteWins
		}
		return res, nil
	}
	s.turn = s.turn.Opponent()
	return res, nil
}

// IsLegal reports whether the side to move may play c.
func (s *State) IsLegal(c board.Coord) bool {
	return !s.Over() && IsLegal(s.board, c, s.turn)
}

// LegalMoves lists the legal points of the side to move.
func (s *State) LegalMoves() []board.Coord {
	if s.Over() {
		return nil
	}
	return LegalMoves(s.board, s.turn)
}

func (s *State) HasLegalMove() bool {
	if s.Over() {
		return false
	}
	_, ok := FirstLegalMove(s.board, s.turn)
	return ok
}

// DeclareDraw ends a stalled game without a winner.
func (s *State) DeclareDraw() error {
	if s.Over() {
		return fmt.Errorf("%w: %v", ErrGameOver, s.status)
	}
	s.status = Draw
	return nil
}
