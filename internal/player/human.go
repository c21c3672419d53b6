package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmmcquay/nogo/internal/board"
)

// HumanPlayer reads one move per line.
type HumanPlayer struct {
	in *bufio.Reader
}

func NewHumanPlayer(r io.Reader) *HumanPlayer {
	if br, ok := r.(*bufio.Reader); ok {
		return &HumanPlayer{in: br}
	}
	return &HumanPlayer{in: bufio.NewReader(r)}
}

func (h *HumanPlayer) Kind() Kind { return Human }

// ProposeMove blocks until a line is available. End of input is a quit.
// Legality is left to the game; only the text is validated here.
func (h *HumanPlayer) ProposeMove(ctx context.Context, _ *board.Board, _ board.Color) (Move, error) {
	if err := ctx.Err(); err != nil {
		return Move{}, err
	}
	line, err := h.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
			return Move{Action: Quit}, nil
		}
		if !errors.Is(err, io.EOF) {
			return Move{}, fmt.Errorf("read move: %w", err)
		}
	}
	return ParseMove(line)
}

// ParseMove accepts "<row> <col>", "w <filename>" and "q".
func ParseMove(line string) (Move, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Move{}, fmt.Errorf("%w: please enter 2 numbers", ErrParse)
	}

	switch fields[0] {
	case "w":
		if len(fields) != 2 {
			return Move{}, fmt.Errorf("%w: usage: w <filename>", ErrParse)
		}
		return Move{Action: Save, Filename: fields[1]}, nil
	case "q", "quit":
		if len(fields) != 1 {
			return Move{}, fmt.Errorf("%w: quit takes no arguments", ErrParse)
		}
		return Move{Action: Quit}, nil
	}

	if len(fields) != 2 {
		return Move{}, fmt.Errorf("%w: please enter 2 numbers", ErrParse)
	}
	row, err := parseIndex(fields[0])
	if err != nil {
		return Move{}, err
	}
	col, err := parseIndex(fields[1])
	if err != nil {
		return Move{}, err
	}
	return Move{Action: Place, Coord: board.Coord{Row: row, Col: col}}, nil
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a row or column number", ErrParse, s)
	}
	return n, nil
}
