package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brensch/battlesnake-engine/internal/game"
	"github.com/brensch/battlesnake-engine/internal/geom"
)

func straightSnake(id int, head geom.Point, length, health int) *game.Snake {
	body := make([]geom.Point, length)
	for i := 0; i < length; i++ {
		body[length-1-i] = geom.Point{X: head.X - i, Y: head.Y}
	}
	return &game.Snake{ID: id, Body: body, Health: health}
}

func TestRandomAgentReturnsValidMove(t *testing.T) {
	g := game.New(7, 7)
	self := straightSnake(0, geom.Point{X: 3, Y: 3}, 3, 100)
	g.Reset([]*game.Snake{self}, nil, nil)

	a := New(Random, DefaultConfig(), 1)
	dir := a.Step(context.Background(), g, 1000)
	assert.Contains(t, g.ValidMoves(0), dir)
}

func TestOversizedBoardFallsBackToRandom(t *testing.T) {
	g := game.New(25, 25)
	self := straightSnake(0, geom.Point{X: 12, Y: 12}, 3, 100)
	g.Reset([]*game.Snake{self}, nil, nil)

	a := New(Tree, DefaultConfig(), 1)
	dir := a.Step(context.Background(), g, 1000)
	assert.Contains(t, g.ValidMoves(0), dir)
}

func TestMobilityAgentSeeksFoodWhenHungry(t *testing.T) {
	g := game.New(7, 7)
	self := straightSnake(0, geom.Point{X: 2, Y: 0}, 3, 10)
	g.Reset([]*game.Snake{self}, []geom.Point{{X: 5, Y: 0}}, nil)

	cfg := DefaultConfig()
	a := New(Mobility, cfg, 1)
	dir := a.Step(context.Background(), g, 1000)
	assert.Equal(t, geom.Right, dir)
}

func TestMobilityAgentReturnsValidMoveWhenSated(t *testing.T) {
	g := game.New(7, 7)
	self := straightSnake(0, geom.Point{X: 3, Y: 3}, 3, 100)
	g.Reset([]*game.Snake{self}, nil, nil)

	cfg := DefaultConfig()
	cfg.Mobility.MinLen = 1
	cfg.Mobility.HealthThreshold = 0
	a := New(Mobility, cfg, 1)
	dir := a.Step(context.Background(), g, 1000)
	assert.Contains(t, g.ValidMoves(0), dir)
}

func TestTreeAgentFastPathUnderBudget(t *testing.T) {
	g := game.New(7, 7)
	self := straightSnake(0, geom.Point{X: 3, Y: 3}, 3, 100)
	enemy := straightSnake(1, geom.Point{X: 5, Y: 5}, 3, 100)
	g.Reset([]*game.Snake{self, enemy}, nil, nil)

	a := New(Tree, DefaultConfig(), 1)
	dir := a.Step(context.Background(), g, 50)
	assert.Contains(t, g.ValidMoves(0), dir)
}

func TestParseKindMapsNamesAndDefaultsToMobility(t *testing.T) {
	assert.Equal(t, Tree, ParseKind("Tree"))
	assert.Equal(t, Flood, ParseKind("Flood"))
	assert.Equal(t, FloodExp, ParseKind("FloodExp"))
	assert.Equal(t, Solo, ParseKind("Solo"))
	assert.Equal(t, Random, ParseKind("Random"))
	assert.Equal(t, Mobility, ParseKind("garbage"))
}
