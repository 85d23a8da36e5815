package floodfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/battlesnake-engine/internal/game"
	"github.com/brensch/battlesnake-engine/internal/gametest"
	"github.com/brensch/battlesnake-engine/internal/geom"
)

// S5 — empty 11x11 board, single snake head at (0,0) length 3: flood fill
// claims all 121 cells for that snake.
func TestFloodOpenBoardSingleSnakeClaimsEverything(t *testing.T) {
	g := game.New(11, 11)
	self := &game.Snake{ID: 0, Body: []geom.Point{{X: 2, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 0}}, Health: 100}
	g.Reset([]*game.Snake{self}, nil, nil)

	r := Flood(g)
	assert.Equal(t, 121, r.Area(0))
}

// A closed two-row loop where the head must pass through the vacated
// tail cells to reclaim the whole board, exercising the same-id Occupied
// "follow your own tail" ownership rule from §4.3.
func TestFloodFollowsOwnTailAroundLoop(t *testing.T) {
	g := game.New(3, 2)
	self := &game.Snake{
		ID: 0,
		Body: []geom.Point{
			{X: 0, Y: 0},
			{X: 1, Y: 0},
			{X: 2, Y: 0},
			{X: 2, Y: 1},
			{X: 1, Y: 1},
		},
		Health: 100,
	}
	g.Reset([]*game.Snake{self}, nil, nil)

	r := Flood(g)
	assert.Equal(t, 6, r.Area(0))
}

func TestFloodEqualLengthTieGoesToSmallerID(t *testing.T) {
	g := game.New(3, 1)
	a := &game.Snake{ID: 0, Body: []geom.Point{{X: 0, Y: 0}}, Health: 100}
	b := &game.Snake{ID: 1, Body: []geom.Point{{X: 2, Y: 0}}, Health: 100}
	g.Reset([]*game.Snake{a, b}, nil, nil)

	r := Flood(g)
	mid := r.At(geom.Point{X: 1, Y: 0})
	assert.Equal(t, Owned, mid.Tag)
	assert.Equal(t, 0, mid.OwnerID)
}

func TestFloodLongerSnakeWinsContestedCell(t *testing.T) {
	g := game.New(5, 1)
	short := &game.Snake{ID: 0, Body: []geom.Point{{X: 0, Y: 0}}, Health: 100}
	long := &game.Snake{ID: 1, Body: []geom.Point{{X: 4, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 0}}, Health: 100}
	g.Reset([]*game.Snake{short, long}, nil, nil)

	r := Flood(g)
	mid := r.At(geom.Point{X: 2, Y: 0})
	assert.Equal(t, 1, mid.OwnerID)
}

// Translated from original_source's flood_snakes_follow_tail: a winding
// solo snake whose tail vacates exactly where the flood fill would
// otherwise be blocked, so the whole board is still claimed. Built via the
// gametest ASCII parser rather than a hand-built Body literal, since the
// winding shape is unreadable as raw points.
func TestFloodSoloSnakeFollowsOwnTailAroundWinding(t *testing.T) {
	g, err := gametest.Parse(`
		. . . . . . . . . . .
		. . . . . . . . . . .
		. . . . . . . . . . .
		. . . . . . . . . . .
		. . . . . . . . . . .
		. . . . . . . . . . .
		. . . . . . . . . . .
		. . . . . . . . . . .
		> > > v . . . . . . .
		^ . . v . . . . . . .
		^ 0 < < . . . . . . .`)
	require.NoError(t, err)
	require.Len(t, g.Snakes, 1)
	assert.Equal(t, 10, g.Snakes[0].Length())

	r := Flood(g)
	assert.Equal(t, 11*11, r.Area(0))
}

func TestFloodHealthSumCountsOwnedCellsOnly(t *testing.T) {
	g := game.New(3, 1)
	self := &game.Snake{ID: 0, Body: []geom.Point{{X: 0, Y: 0}}, Health: 50}
	g.Reset([]*game.Snake{self}, nil, nil)

	r := Flood(g)
	assert.Equal(t, 3, r.Area(0))
	assert.True(t, r.HealthSum(0) > 0)
}
