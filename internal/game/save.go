package game

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dmmcquay/nogo/internal/board"
)

var (
	ErrSaveIO      = errors.New("failed to save file")
	ErrLoadCorrupt = errors.New("incorrect file contents")
)

// SeatState is the persisted walk position of a computer seat. Human seats
// are stored as zeros.
type SeatState struct {
	Row     int
	Col     int
	Counter int
}

// Snapshot is everything a save file holds.
type Snapshot struct {
	State *State
	// Seats are indexed Black then White.
	Seats [2]SeatState
}

// Encode writes the line based save format:
//
//	<height> <width> <turn> <b_row> <b_col> <b_counter> <w_row> <w_col> <w_counter>
//	<one X/O/. line per board row>
//
// turn is 0 when Black is to move and 1 for White.
func Encode(w io.Writer, snap Snapshot) error {
	s := snap.State
	if s == nil {
		return errors.New("encode: nil state")
	}
	turn := 0
	if s.turn == board.White {
		turn = 1
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d %d %d %d %d %d %d %d\n",
		s.board.Height(), s.board.Width(), turn,
		snap.Seats[0].Row, snap.Seats[0].Col, snap.Seats[0].Counter,
		snap.Seats[1].Row, snap.Seats[1].Col, snap.Seats[1].Counter)
	for _, row := range s.board.Rows() {
		bw.WriteString(row)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Decode parses a save file. Any structural problem is ErrLoadCorrupt.
func Decode(r io.Reader) (Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read save: %w", err)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	header, rest, found := strings.Cut(text, "\n")
	if !found {
		return Snapshot{}, fmt.Errorf("%w: missing board", ErrLoadCorrupt)
	}

	fields := strings.Fields(header)
	if len(fields) != 3 && len(fields) != 9 {
		return Snapshot{}, fmt.Errorf("%w: header has %d fields", ErrLoadCorrupt, len(fields))
	}
	nums := make([]int, 9)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return Snapshot{}, fmt.Errorf("%w: bad header field %q", ErrLoadCorrupt, f)
		}
		nums[i] = n
	}

	height, width := nums[0], nums[1]
	var turn board.Color
	switch nums[2] {
	case 0:
		turn = board.Black
	case 1:
		turn = board.White
	default:
		return Snapshot{}, fmt.Errorf("%w: bad turn marker %d", ErrLoadCorrupt, nums[2])
	}

	rows := strings.Fields(rest)
	if len(rows) != height {
		return Snapshot{}, fmt.Errorf("%w: header says %d rows, found %d", ErrLoadCorrupt, height, len(rows))
	}
	b, err := board.FromRows(rows)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrLoadCorrupt, err)
	}
	if b.Width() != width {
		return Snapshot{}, fmt.Errorf("%w: header says width %d, board is %d", ErrLoadCorrupt, width, b.Width())
	}
	for _, g := range board.Groups(b) {
		if g.LibertyCount() == 0 {
			return Snapshot{}, fmt.Errorf("%w: %v group at %v has no liberties", ErrLoadCorrupt, g.Color, g.Stones[0])
		}
	}

	state, err := Restore(b, turn)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrLoadCorrupt, err)
	}
	return Snapshot{
		State: state,
		Seats: [2]SeatState{
			{Row: nums[3], Col: nums[4], Counter: nums[5]},
			{Row: nums[6], Col: nums[7], Counter: nums[8]},
		},
	}, nil
}

// SaveFile writes snap to path. Failures wrap ErrSaveIO.
func SaveFile(path string, snap Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveIO, err)
	}
	if err := Encode(f, snap); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %w", ErrSaveIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveIO, err)
	}
	return nil
}

// LoadFile reads and decodes a save file.
func LoadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open save file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
