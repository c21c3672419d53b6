package board

import (
	"errors"
	"fmt"
)

var ErrEmptyCell = errors.New("no stone at coordinate")

// Group is a maximal set of same-colored stones connected orthogonally,
// together with the distinct empty cells touching it.
type Group struct {
	Color     Color
	Stones    []Coord
	Liberties []Coord
}

// LibertyCount is the number of distinct empty neighbors of the group.
func (g Group) LibertyCount() int {
	return len(g.Liberties)
}

// Contains reports whether c is one of the group's stones.
func (g Group) Contains(c Coord) bool {
	for _, s := range g.Stones {
		if s == c {
			return true
		}
	}
	return false
}

// GroupOf flood fills from c over same-colored stones.
func GroupOf(b *Board, c Coord) (Group, error) {
	color, err := b.Get(c)
	if err != nil {
		return Group{}, err
	}
	if color == Empty {
		return Group{}, fmt.Errorf("%w: %v", ErrEmptyCell, c)
	}

	g := Group{Color: color}
	seen := map[Coord]bool{c: true}
	libs := map[Coord]bool{}
	queue := []Coord{c}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		g.Stones = append(g.Stones, cur)

		for _, n := range b.Neighbors(cur) {
			switch b.At(n) {
			case Empty:
				if !libs[n] {
					libs[n] = true
					g.Liberties = append(g.Liberties, n)
				}
			case color:
				if !seen[n] {
					seen[n] = true
					queue = append(queue, n)
				}
			}
		}
	}
	return g, nil
}

// Groups partitions every stone on the board into groups, scanning row-major.
func Groups(b *Board) []Group {
	var out []Group
	seen := map[Coord]bool{}
	for r := 0; r < b.height; r++ {
		for c := 0; c < b.width; c++ {
			pos := Coord{r, c}
			if b.At(pos) == Empty || seen[pos] {
				continue
			}
			g, _ := GroupOf(b, pos)
			for _, s := range g.Stones {
				seen[s] = true
			}
			out = append(out, g)
		}
	}
	return out
}

// AdjacentGroups returns the distinct groups of color touching c.
func AdjacentGroups(b *Board, c Coord, color Color) []Group {
	var out []Group
	for _, n := range b.Neighbors(c) {
		if b.At(n) != color {
			continue
		}
		dup := false
		for _, g := range out {
			if g.Contains(n) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		g, _ := GroupOf(b, n)
		out = append(out, g)
	}
	return out
}
