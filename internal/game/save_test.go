package game

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmmcquay/nogo/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFormat(t *testing.T) {
	b, err := board.FromRows([]string{
		"X...",
		".O..",
		"....",
	})
	require.NoError(t, err)
	s, err := Restore(b, board.White)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = Encode(&buf, Snapshot{
		State: s,
		Seats: [2]SeatState{{Row: 1, Col: 4, Counter: 0}, {Row: 3, Col: 11, Counter: 2}},
	})
	require.NoError(t, err)

	want := "3 4 1 1 4 0 3 11 2\n" +
		"X...\n" +
		".O..\n" +
		"....\n"
	assert.Equal(t, want, buf.String())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g, err := New(5, 6)
	require.NoError(t, err)

	dir := t.TempDir()
	moves := []board.Coord{
		{Row: 0, Col: 0}, {Row: 4, Col: 5}, {Row: 2, Col: 3},
		{Row: 1, Col: 1}, {Row: 3, Col: 0}, {Row: 0, Col: 5}, {Row: 2, Col: 2},
	}
	seats := [2]SeatState{{Row: 7, Col: 9, Counter: 3}, {}}

	for i, m := range moves {
		_, err := g.ApplyMove(m)
		require.NoError(t, err)

		path := filepath.Join(dir, "game.txt")
		require.NoError(t, SaveFile(path, Snapshot{State: g, Seats: seats}))

		snap, err := LoadFile(path)
		require.NoError(t, err, "after move %d", i)
		assert.True(t, g.Board().Equal(snap.State.Board()), "after move %d", i)
		assert.Equal(t, g.Turn(), snap.State.Turn())
		assert.Equal(t, InProgress, snap.State.Status())
		assert.Equal(t, seats, snap.Seats)
	}
}

func TestDecodeShortHeader(t *testing.T) {
	snap, err := Decode(strings.NewReader("2 3 0\n...\n.X.\n"))
	require.NoError(t, err)
	assert.Equal(t, board.Black, snap.State.Turn())
	assert.Equal(t, [2]SeatState{}, snap.Seats)
	assert.Equal(t, []string{"...", ".X."}, snap.State.Board().Rows())
}

func TestDecodeCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"header only", "2 2 0 0 0 0 0 0 0"},
		{"too few fields", "2 2\n..\n..\n"},
		{"non numeric", "2 a 0 0 0 0 0 0 0\n..\n..\n"},
		{"negative", "2 2 0 -1 0 0 0 0 0\n..\n..\n"},
		{"bad turn", "2 2 2 0 0 0 0 0 0\n..\n..\n"},
		{"missing row", "3 2 0 0 0 0 0 0 0\n..\n..\n"},
		{"extra row", "1 2 0 0 0 0 0 0 0\n..\n..\n"},
		{"width mismatch", "2 3 0 0 0 0 0 0 0\n..\n..\n"},
		{"ragged rows", "2 2 0 0 0 0 0 0 0\n..\n...\n"},
		{"bad character", "2 2 0 0 0 0 0 0 0\n.x\n..\n"},
		{"zero dimensions", "0 0 0 0 0 0 0 0 0\n"},
		{"captured group left on board", "2 2 0 0 0 0 0 0 0\nXO\nO.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.content))
			assert.ErrorIs(t, err, ErrLoadCorrupt)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, ErrLoadCorrupt)
}

func TestSaveFileUnwritable(t *testing.T) {
	g, err := New(2, 2)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "missing-dir", "game.txt")
	err = SaveFile(path, Snapshot{State: g})
	assert.ErrorIs(t, err, ErrSaveIO)
}
