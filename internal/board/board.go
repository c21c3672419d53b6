package board

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDimensions = errors.New("invalid board dimensions")
	ErrOutOfBounds       = errors.New("coordinate out of bounds")
	ErrOccupied          = errors.New("position already taken")
)

// Color is the state of a single cell.
type Color int

const (
	Empty Color = iota
	Black
	White
)

// Opponent returns the other stone color. Empty has no opponent.
func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

// Symbol is the character used for the color in renders and save files.
func (c Color) Symbol() byte {
	switch c {
	case Black:
		return 'X'
	case White:
		return 'O'
	default:
		return '.'
	}
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "empty"
	}
}

// ColorFromSymbol is the inverse of Symbol.
func ColorFromSymbol(ch byte) (Color, bool) {
	switch ch {
	case 'X':
		return Black, true
	case 'O':
		return White, true
	case '.':
		return Empty, true
	}
	return Empty, false
}

// Coord is a 0-indexed (row, column) position. Row 0 is the top line.
type Coord struct {
	Row int
	Col int
}

func (c Coord) String() string {
	return fmt.Sprintf("%d %d", c.Row, c.Col)
}

// Board is a fixed size grid of cells stored row-major.
type Board struct {
	height int
	width  int
	cells  []Color
}

// New creates an empty board.
func New(height, width int) (*Board, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, height, width)
	}
	return &Board{
		height: height,
		width:  width,
		cells:  make([]Color, height*width),
	}, nil
}

// FromRows builds a board from rows of X/O/. characters.
func FromRows(rows []string) (*Board, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidDimensions)
	}
	b, err := New(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		if len(row) != b.width {
			return nil, fmt.Errorf("row %d has width %d, want %d", r, len(row), b.width)
		}
		for col := 0; col < len(row); col++ {
			color, ok := ColorFromSymbol(row[col])
			if !ok {
				return nil, fmt.Errorf("row %d: unexpected character %q", r, row[col])
			}
			b.cells[b.index(Coord{r, col})] = color
		}
	}
	return b, nil
}

func (b *Board) Height() int { return b.height }
func (b *Board) Width() int  { return b.width }

// InBounds reports whether c lies on the board.
func (b *Board) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Col >= 0 && c.Row < b.height && c.Col < b.width
}

// Get returns the state of a cell.
func (b *Board) Get(c Coord) (Color, error) {
	if !b.InBounds(c) {
		return Empty, fmt.Errorf("%w: %v on %dx%d board", ErrOutOfBounds, c, b.height, b.width)
	}
	return b.cells[b.index(c)], nil
}

// At is Get for callers that already checked bounds.
func (b *Board) At(c Coord) Color {
	return b.cells[b.index(c)]
}

// Place puts a stone on an empty, in-bounds cell. Move legality beyond that
// is the caller's concern.
func (b *Board) Place(c Coord, color Color) error {
	cur, err := b.Get(c)
	if err != nil {
		return err
	}
	if cur != Empty {
		return fmt.Errorf("%w: %v", ErrOccupied, c)
	}
	b.cells[b.index(c)] = color
	return nil
}

// Remove empties every given cell. Out of range coordinates are ignored.
func (b *Board) Remove(coords []Coord) {
	for _, c := range coords {
		if b.InBounds(c) {
			b.cells[b.index(c)] = Empty
		}
	}
}

// Neighbors returns the in-bounds cells above, below, left and right of c.
func (b *Board) Neighbors(c Coord) []Coord {
	out := make([]Coord, 0, 4)
	for _, d := range [4]Coord{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		n := Coord{c.Row + d.Row, c.Col + d.Col}
		if b.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// EmptyCells lists empty coordinates in row-major order.
func (b *Board) EmptyCells() []Coord {
	return b.Stones(Empty)
}

// Stones lists the coordinates holding color in row-major order.
func (b *Board) Stones(color Color) []Coord {
	var out []Coord
	for i, cell := range b.cells {
		if cell == color {
			out = append(out, Coord{i / b.width, i % b.width})
		}
	}
	return out
}

func (b *Board) Clone() *Board {
	clone := &Board{height: b.height, width: b.width, cells: make([]Color, len(b.cells))}
	copy(clone.cells, b.cells)
	return clone
}

// Equal compares dimensions and every cell.
func (b *Board) Equal(other *Board) bool {
	if other == nil || b.height != other.height || b.width != other.width {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Rows returns one X/O/. string per board row.
func (b *Board) Rows() []string {
	rows := make([]string, b.height)
	line := make([]byte, b.width)
	for r := 0; r < b.height; r++ {
		for c := 0; c < b.width; c++ {
			line[c] = b.cells[r*b.width+c].Symbol()
		}
		rows[r] = string(line)
	}
	return rows
}

// String renders the board inside a /-\| frame.
func (b *Board) String() string {
	var sb strings.Builder
	edge := strings.Repeat("-", b.width)
	sb.WriteString("/" + edge + "\\\n")
	for _, row := range b.Rows() {
		sb.WriteString("|" + row + "|\n")
	}
	sb.WriteString("\\" + edge + "/\n")
	return sb.String()
}

func (b *Board) index(c Coord) int {
	return c.Row*b.width + c.Col
}
