package player

import (
	"context"

	"github.com/dmmcquay/nogo/internal/board"
	"github.com/dmmcquay/nogo/internal/game"
)

// Walk parameters per seat: starting row/column and the jump multiplier used
// every fifth step.
var seatWalks = [2]struct{ row, col, mult int }{
	{row: 1, col: 4, mult: 29},
	{row: 2, col: 10, mult: 17},
}

const jumpModulus = 1_000_003

// ComputerPlayer walks the board in a fixed, reproducible pattern and plays
// the first legal point it lands on.
type ComputerPlayer struct {
	height, width int
	row, col      int
	counter       int
	mult          int
	base          int
	fallbackScan  bool
}

// NewComputerPlayer creates the walker for seat 0 (Black) or 1 (White).
func NewComputerPlayer(seat, height, width int) *ComputerPlayer {
	w := seatWalks[seat&1]
	return &ComputerPlayer{
		height:       height,
		width:        width,
		row:          w.row,
		col:          w.col,
		mult:         w.mult,
		base:         w.row*width + w.col,
		fallbackScan: true,
	}
}

// SetFallbackScan controls whether a row-major scan is used once the walk
// has produced height*width illegal candidates in a row.
func (c *ComputerPlayer) SetFallbackScan(enabled bool) {
	c.fallbackScan = enabled
}

func (c *ComputerPlayer) Kind() Kind { return Computer }

// State returns the walk position for the save file.
func (c *ComputerPlayer) State() game.SeatState {
	return game.SeatState{Row: c.row, Col: c.col, Counter: c.counter}
}

// Restore resumes the walk from a saved position.
func (c *ComputerPlayer) Restore(s game.SeatState) {
	c.row = s.Row
	c.col = s.Col
	c.counter = s.Counter
}

// Next returns the current candidate and advances the walk.
func (c *ComputerPlayer) Next() board.Coord {
	at := board.Coord{Row: c.row % c.height, Col: c.col % c.width}
	c.advance()
	return at
}

func (c *ComputerPlayer) advance() {
	c.counter++
	switch c.counter % 5 {
	case 1:
		c.row++
		c.col++
	case 2:
		c.row += 2
		c.col++
	case 3:
		c.row++
	case 4:
		c.col++
	default:
		n := (c.base + c.counter/5*c.mult) % jumpModulus
		c.row = n / c.width
		c.col = n % c.width
	}
}

func (c *ComputerPlayer) ProposeMove(ctx context.Context, b *board.Board, color board.Color) (Move, error) {
	limit := b.Height() * b.Width()
	for i := 0; i < limit; i++ {
		if err := ctx.Err(); err != nil {
			return Move{}, err
		}
		at := c.Next()
		if game.IsLegal(b, at, color) {
			return Move{Action: Place, Coord: at}, nil
		}
	}
	if c.fallbackScan {
		if at, ok := game.FirstLegalMove(b, color); ok {
			return Move{Action: Place, Coord: at}, nil
		}
	}
	return Move{}, game.ErrNoLegalMove
}
