package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		height, width int
		wantErr       bool
	}{
		{"square", 7, 7, false},
		{"rectangular", 3, 9, false},
		{"single cell", 1, 1, false},
		{"zero height", 0, 5, true},
		{"negative width", 5, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.height, tt.width)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDimensions)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.height, b.Height())
			assert.Equal(t, tt.width, b.Width())
			assert.Len(t, b.EmptyCells(), tt.height*tt.width)
		})
	}
}

func TestGetOutOfBounds(t *testing.T) {
	b, err := New(3, 4)
	require.NoError(t, err)

	for _, c := range []Coord{{-1, 0}, {0, -1}, {3, 0}, {0, 4}} {
		_, err := b.Get(c)
		assert.ErrorIs(t, err, ErrOutOfBounds, "coord %v", c)
	}

	color, err := b.Get(Coord{2, 3})
	require.NoError(t, err)
	assert.Equal(t, Empty, color)
}

func TestPlace(t *testing.T) {
	b, err := New(3, 3)
	require.NoError(t, err)

	require.NoError(t, b.Place(Coord{1, 1}, Black))
	assert.Equal(t, Black, b.At(Coord{1, 1}))

	err = b.Place(Coord{1, 1}, White)
	assert.ErrorIs(t, err, ErrOccupied)
	assert.Equal(t, Black, b.At(Coord{1, 1}))

	err = b.Place(Coord{3, 1}, White)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestRemove(t *testing.T) {
	b, err := FromRows([]string{
		"XO.",
		"OX.",
	})
	require.NoError(t, err)

	b.Remove([]Coord{{0, 0}, {1, 1}, {5, 5}})
	assert.Equal(t, []string{".O.", "O.."}, b.Rows())
}

func TestNeighbors(t *testing.T) {
	b, err := New(3, 4)
	require.NoError(t, err)

	tests := []struct {
		name string
		at   Coord
		want []Coord
	}{
		{"corner", Coord{0, 0}, []Coord{{1, 0}, {0, 1}}},
		{"edge", Coord{0, 2}, []Coord{{1, 2}, {0, 1}, {0, 3}}},
		{"center", Coord{1, 1}, []Coord{{0, 1}, {2, 1}, {1, 0}, {1, 2}}},
		{"far corner", Coord{2, 3}, []Coord{{1, 3}, {2, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, b.Neighbors(tt.at))
		})
	}
}

func TestFromRowsRejectsBadInput(t *testing.T) {
	_, err := FromRows(nil)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = FromRows([]string{"...", ".."})
	assert.Error(t, err)

	_, err = FromRows([]string{"..a"})
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	b, err := FromRows([]string{
		"X...",
		".O..",
	})
	require.NoError(t, err)

	want := "/----\\\n" +
		"|X...|\n" +
		"|.O..|\n" +
		"\\----/\n"
	assert.Equal(t, want, b.String())
}

func TestCloneIsIndependent(t *testing.T) {
	b, err := New(2, 2)
	require.NoError(t, err)
	require.NoError(t, b.Place(Coord{0, 0}, Black))

	clone := b.Clone()
	assert.True(t, b.Equal(clone))

	require.NoError(t, clone.Place(Coord{1, 1}, White))
	assert.False(t, b.Equal(clone))
	assert.Equal(t, Empty, b.At(Coord{1, 1}))
}

func TestColorSymbols(t *testing.T) {
	for _, c := range []Color{Empty, Black, White} {
		got, ok := ColorFromSymbol(c.Symbol())
		assert.True(t, ok)
		assert.Equal(t, c, got)
	}
	_, ok := ColorFromSymbol('x')
	assert.False(t, ok)

	assert.Equal(t, White, Black.Opponent())
	assert.Equal(t, Black, White.Opponent())
	assert.Equal(t, Empty, Empty.Opponent())
}
