package game

import (
	"errors"
	"fmt"

	"github.com/dmmcquay/nogo/internal/board"
)

var ErrIllegalMove = errors.New("illegal move")

// Result describes an accepted placement.
type Result struct {
	Coord    board.Coord
	Color    board.Color
	Captured []board.Group
	// Liberties of the mover's group after captures were removed.
	Liberties int
}

// CapturedStones is the total number of stones removed by the move.
func (r Result) CapturedStones() int {
	n := 0
	for _, g := range r.Captured {
		n += len(g.Stones)
	}
	return n
}

// ResolveMove places color at c, removes every adjacent opposing group left
// without liberties, and rejects suicide. A rejected move leaves b untouched.
func ResolveMove(b *board.Board, c board.Coord, color board.Color) (Result, error) {
	if color != board.Black && color != board.White {
		return Result{}, fmt.Errorf("%w: no stone color given", ErrIllegalMove)
	}
	if err := b.Place(c, color); err != nil {
		if errors.Is(err, board.ErrOccupied) {
			return Result{}, fmt.Errorf("%w: %w", ErrIllegalMove, err)
		}
		return Result{}, err
	}

	// All opposing liberties are measured before anything is removed.
	var captured []board.Group
	for _, g := range board.AdjacentGroups(b, c, color.Opponent()) {
		if g.LibertyCount() == 0 {
			captured = append(captured, g)
		}
	}
	for _, g := range captured {
		b.Remove(g.Stones)
	}

	own, err := board.GroupOf(b, c)
	if err != nil {
		return Result{}, err
	}
	if own.LibertyCount() == 0 && len(captured) == 0 {
		b.Remove([]board.Coord{c})
		return Result{}, fmt.Errorf("%w: %v would have no liberties", ErrIllegalMove, c)
	}

	return Result{
		Coord:     c,
		Color:     color,
		Captured:  captured,
		Liberties: own.LibertyCount(),
	}, nil
}

// IsLegal reports whether color may play at c without modifying b.
func IsLegal(b *board.Board, c board.Coord, color board.Color) bool {
	if cell, err := b.Get(c); err != nil || cell != board.Empty {
		return false
	}
	for _, n := range b.Neighbors(c) {
		switch b.At(n) {
		case board.Empty:
			return true
		case color:
			// Still breathes through some other point.
			if g, _ := board.GroupOf(b, n); g.LibertyCount() > 1 {
				return true
			}
		default:
			// c is its last liberty, so playing there captures.
			if g, _ := board.GroupOf(b, n); g.LibertyCount() == 1 {
				return true
			}
		}
	}
	return false
}

// LegalMoves lists every legal point for color in row-major order.
func LegalMoves(b *board.Board, color board.Color) []board.Coord {
	var out []board.Coord
	for _, c := range b.EmptyCells() {
		if IsLegal(b, c, color) {
			out = append(out, c)
		}
	}
	return out
}

// FirstLegalMove scans row-major and stops at the first legal point.
func FirstLegalMove(b *board.Board, color board.Color) (board.Coord, bool) {
	for r := 0; r < b.Height(); r++ {
		for col := 0; col < b.Width(); col++ {
			c := board.Coord{Row: r, Col: col}
			if IsLegal(b, c, color) {
				return c, true
			}
		}
	}
	return board.Coord{}, false
}
