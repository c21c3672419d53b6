package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmmcquay/nogo/internal/board"
)

var ErrParse = errors.New("could not parse move")

// Kind identifies how a seat chooses moves.
type Kind string

const (
	Human    Kind = "human"
	Computer Kind = "computer"
)

// ParseKind maps the command line type letter to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "h":
		return Human, true
	case "c":
		return Computer, true
	}
	return "", false
}

// Action is what a proposed move asks the game to do.
type Action int

const (
	Place Action = iota
	Save
	Quit
)

// Move is a proposal from a Strategy.
type Move struct {
	Action   Action
	Coord    board.Coord
	Filename string
}

func (m Move) String() string {
	switch m.Action {
	case Save:
		return "w " + m.Filename
	case Quit:
		return "q"
	default:
		return fmt.Sprintf("%d %d", m.Coord.Row, m.Coord.Col)
	}
}

// Strategy supplies moves for one seat.
type Strategy interface {
	Kind() Kind
	ProposeMove(ctx context.Context, b *board.Board, color board.Color) (Move, error)
}
