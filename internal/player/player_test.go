package player

import (
	"context"
	"strings"
	"testing"

	"github.com/dmmcquay/nogo/internal/board"
	"github.com/dmmcquay/nogo/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMove(t *testing.T) {
	tests := []struct {
		line    string
		want    Move
		wantErr bool
	}{
		{line: "3 6", want: Move{Action: Place, Coord: board.Coord{Row: 3, Col: 6}}},
		{line: "  0   0 \n", want: Move{Action: Place, Coord: board.Coord{Row: 0, Col: 0}}},
		{line: "w saved.txt", want: Move{Action: Save, Filename: "saved.txt"}},
		{line: "q", want: Move{Action: Quit}},
		{line: "quit\n", want: Move{Action: Quit}},
		{line: "", wantErr: true},
		{line: "3", wantErr: true},
		{line: "3 4 5", wantErr: true},
		{line: "a b", wantErr: true},
		{line: "-1 2", wantErr: true},
		{line: "w", wantErr: true},
		{line: "w a b", wantErr: true},
		{line: "q now", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseMove(tt.line)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHumanPlayerReadsLines(t *testing.T) {
	h := NewHumanPlayer(strings.NewReader("1 2\nnonsense\nw out.txt\n4 5"))
	ctx := context.Background()
	assert.Equal(t, Human, h.Kind())

	m, err := h.ProposeMove(ctx, nil, board.Black)
	require.NoError(t, err)
	assert.Equal(t, board.Coord{Row: 1, Col: 2}, m.Coord)

	_, err = h.ProposeMove(ctx, nil, board.Black)
	assert.ErrorIs(t, err, ErrParse)

	m, err = h.ProposeMove(ctx, nil, board.Black)
	require.NoError(t, err)
	assert.Equal(t, Move{Action: Save, Filename: "out.txt"}, m)

	// Last line has no newline but is still a move.
	m, err = h.ProposeMove(ctx, nil, board.Black)
	require.NoError(t, err)
	assert.Equal(t, board.Coord{Row: 4, Col: 5}, m.Coord)

	m, err = h.ProposeMove(ctx, nil, board.Black)
	require.NoError(t, err)
	assert.Equal(t, Quit, m.Action)
}

func TestHumanPlayerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHumanPlayer(strings.NewReader("1 1\n")).ProposeMove(ctx, nil, board.Black)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputerWalkSequence(t *testing.T) {
	c := NewComputerPlayer(0, 7, 7)
	want := []board.Coord{
		{Row: 1, Col: 4}, {Row: 2, Col: 5}, {Row: 4, Col: 6}, {Row: 5, Col: 6},
		{Row: 5, Col: 0}, {Row: 5, Col: 5}, {Row: 6, Col: 6}, {Row: 1, Col: 0},
		{Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 6}, {Row: 3, Col: 0},
		{Row: 5, Col: 1},
	}
	for i, w := range want {
		assert.Equal(t, w, c.Next(), "step %d", i)
	}
}

func TestComputerStateRestore(t *testing.T) {
	a := NewComputerPlayer(1, 9, 5)
	for i := 0; i < 7; i++ {
		a.Next()
	}

	b := NewComputerPlayer(1, 9, 5)
	b.Restore(a.State())
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
	assert.Equal(t, a.State(), b.State())
}

func TestComputerSkipsIllegalPoints(t *testing.T) {
	b, err := board.New(7, 7)
	require.NoError(t, err)
	// Occupy the first candidate of the walk.
	require.NoError(t, b.Place(board.Coord{Row: 1, Col: 4}, board.White))

	c := NewComputerPlayer(0, 7, 7)
	m, err := c.ProposeMove(context.Background(), b, board.Black)
	require.NoError(t, err)
	assert.Equal(t, Move{Action: Place, Coord: board.Coord{Row: 2, Col: 5}}, m)
	assert.Equal(t, Computer, c.Kind())
}

func TestComputerAlwaysProposesLegalMoves(t *testing.T) {
	g, err := game.New(5, 5)
	require.NoError(t, err)
	seats := [2]*ComputerPlayer{NewComputerPlayer(0, 5, 5), NewComputerPlayer(1, 5, 5)}

	for turn := 0; !g.Over() && turn < 25; turn++ {
		if !g.HasLegalMove() {
			break
		}
		seat := seats[turn%2]
		m, err := seat.ProposeMove(context.Background(), g.Board(), g.Turn())
		require.NoError(t, err)
		require.True(t, g.IsLegal(m.Coord), "turn %d proposed %v", turn, m.Coord)
		_, err = g.ApplyMove(m.Coord)
		require.NoError(t, err)
	}
}

func TestComputerNoLegalMove(t *testing.T) {
	b, err := board.FromRows([]string{".O", "O."})
	require.NoError(t, err)

	c := NewComputerPlayer(0, 2, 2)
	_, err = c.ProposeMove(context.Background(), b, board.Black)
	assert.ErrorIs(t, err, game.ErrNoLegalMove)
}

func TestComputerFindsOnlyLegalPoint(t *testing.T) {
	// (0,1) is the last empty point; Black may take it because it captures.
	b, err := board.FromRows([]string{
		"X.",
		"OO",
	})
	require.NoError(t, err)

	for _, fallback := range []bool{true, false} {
		c := NewComputerPlayer(0, 2, 2)
		c.SetFallbackScan(fallback)
		m, err := c.ProposeMove(context.Background(), b, board.Black)
		require.NoError(t, err)
		assert.Equal(t, board.Coord{Row: 0, Col: 1}, m.Coord)
	}
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("h")
	assert.True(t, ok)
	assert.Equal(t, Human, k)

	k, ok = ParseKind("c")
	assert.True(t, ok)
	assert.Equal(t, Computer, k)

	_, ok = ParseKind("x")
	assert.False(t, ok)
}

func TestMoveString(t *testing.T) {
	assert.Equal(t, "3 6", Move{Action: Place, Coord: board.Coord{Row: 3, Col: 6}}.String())
	assert.Equal(t, "w f.txt", Move{Action: Save, Filename: "f.txt"}.String())
	assert.Equal(t, "q", Move{Action: Quit}.String())
}
