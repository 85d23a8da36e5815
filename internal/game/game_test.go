package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brensch/battlesnake-engine/internal/geom"
	"github.com/brensch/battlesnake-engine/internal/grid"
)

func straightSnake(id int, head geom.Point, length int) *Snake {
	body := make([]geom.Point, length)
	for i := 0; i < length; i++ {
		body[length-1-i] = geom.Point{X: head.X - i, Y: head.Y}
	}
	return &Snake{ID: id, Body: body, Health: 100}
}

func TestStepEatFood(t *testing.T) {
	g := New(5, 5)
	self := &Snake{ID: 0, Body: []geom.Point{{X: 2, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 0}}, Health: 2}
	// Food directly above the head.
	g.Reset([]*Snake{self}, []geom.Point{{X: 0, Y: 1}}, nil)

	assert.NoError(t, g.Invariants())
	g.Step([]geom.Direction{geom.Up})

	assert.Equal(t, 100, self.Health)
	assert.Equal(t, 4, self.Length())
	assert.NoError(t, g.Invariants())
}

func TestStepStarveWithoutFood(t *testing.T) {
	g := New(5, 5)
	self := &Snake{ID: 0, Body: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}, Health: 10}
	g.Reset([]*Snake{self}, nil, nil)

	g.Step([]geom.Direction{geom.Right})
	assert.Equal(t, 9, self.Health)
	assert.Equal(t, 3, self.Length())
}

func TestStepPreservesHazardUnderSurvivingHead(t *testing.T) {
	g := New(5, 5)
	self := &Snake{ID: 0, Body: []geom.Point{{X: 2, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 0}}, Health: 100}
	g.Reset([]*Snake{self}, nil, []geom.Point{{X: 0, Y: 1}})

	g.Step([]geom.Direction{geom.Up})

	assert.True(t, g.Grid.At(geom.Point{X: 0, Y: 1}).Hazard)
	assert.Equal(t, grid.Owned, g.Grid.At(geom.Point{X: 0, Y: 1}).Tag)
}

func TestStepHeadOnLengthWin(t *testing.T) {
	g := New(11, 11)
	self := straightSnake(0, geom.Point{X: 5, Y: 5}, 5)
	enemy := straightSnake(1, geom.Point{X: 5, Y: 7}, 3)
	g.Reset([]*Snake{self, enemy}, nil, nil)

	g.Step([]geom.Direction{geom.Up, geom.Down})

	assert.True(t, self.Alive())
	assert.False(t, enemy.Alive())
	assert.Equal(t, 99, self.Health)
	assert.Equal(t, Winner, g.Outcome().Outcome)
	assert.Equal(t, 0, g.Outcome().WinnerID)
}

func TestStepHeadOnEqualLengthDraw(t *testing.T) {
	g := New(11, 11)
	a := straightSnake(0, geom.Point{X: 5, Y: 5}, 4)
	b := straightSnake(1, geom.Point{X: 5, Y: 7}, 4)
	g.Reset([]*Snake{a, b}, nil, nil)

	g.Step([]geom.Direction{geom.Up, geom.Down})

	assert.False(t, a.Alive())
	assert.False(t, b.Alive())
	assert.Equal(t, Draw, g.Outcome().Outcome)
}

func TestValidMovesExcludesOwnedExceptVacatingTail(t *testing.T) {
	g := New(5, 5)
	self := &Snake{ID: 0, Body: []geom.Point{{X: 4, Y: 0}, {X: 3, Y: 0}, {X: 2, Y: 0}}, Health: 50}
	g.Reset([]*Snake{self}, nil, nil)

	moves := g.ValidMoves(0)
	assert.NotEmpty(t, moves)
	// Down goes off grid; Right hits the neck at (3,0), which is Owned and
	// not the tail, so it does not vacate this turn; Up is free.
	assert.Contains(t, moves, geom.Up)
	assert.NotContains(t, moves, geom.Right)
	assert.NotContains(t, moves, geom.Down)
}

func TestOutcomeNoneWhileTwoAlive(t *testing.T) {
	g := New(5, 5)
	a := straightSnake(0, geom.Point{X: 4, Y: 0}, 3)
	b := straightSnake(1, geom.Point{X: 4, Y: 4}, 3)
	g.Reset([]*Snake{a, b}, nil, nil)
	assert.Equal(t, None, g.Outcome().Outcome)
}

func TestInvariantsDetectsInconsistency(t *testing.T) {
	g := New(5, 5)
	self := straightSnake(0, geom.Point{X: 2, Y: 2}, 3)
	g.Reset([]*Snake{self}, nil, nil)
	assert.NoError(t, g.Invariants())

	g.Grid.Set(geom.Point{X: 0, Y: 0}, grid.Cell{Tag: grid.Owned})
	assert.Error(t, g.Invariants())
}

func TestNewFromRequestKeepsClosestEnemies(t *testing.T) {
	selfInput := SnakeInput{ID: "self", Health: 100, Body: []geom.Point{{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 5, Y: 3}}}
	far := SnakeInput{ID: "far", Health: 100, Body: []geom.Point{{X: 0, Y: 0}, {X: 0, Y: 1}}}
	near1 := SnakeInput{ID: "n1", Health: 100, Body: []geom.Point{{X: 6, Y: 5}, {X: 6, Y: 4}}}
	near2 := SnakeInput{ID: "n2", Health: 100, Body: []geom.Point{{X: 4, Y: 5}, {X: 4, Y: 4}}}
	near3 := SnakeInput{ID: "n3", Health: 100, Body: []geom.Point{{X: 5, Y: 6}, {X: 5, Y: 7}}}

	g := NewFromRequest(11, 11, selfInput, []SnakeInput{far, near1, near2, near3}, nil, nil)

	assert.Len(t, g.Snakes, 4) // self + 3 closest, far excluded
	for _, s := range g.Snakes[1:] {
		assert.NotEqual(t, geom.Point{X: 0, Y: 0}, s.Body[len(s.Body)-1])
	}
}
