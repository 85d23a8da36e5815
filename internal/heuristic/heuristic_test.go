package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brensch/battlesnake-engine/internal/game"
	"github.com/brensch/battlesnake-engine/internal/geom"
)

func TestTreeReturnsLossWhenSelfDead(t *testing.T) {
	g := game.New(5, 5)
	self := &game.Snake{ID: 0, Body: nil, Health: 0}
	g.Reset([]*game.Snake{self}, nil, nil)

	tr := NewTree(DefaultTreeConfig())
	assert.Equal(t, Loss, tr.Eval(g))
}

func TestTreeReturnsWinWhenSoleSurvivor(t *testing.T) {
	g := game.New(5, 5)
	self := &game.Snake{ID: 0, Body: []geom.Point{{X: 2, Y: 2}}, Health: 50}
	g.Reset([]*game.Snake{self}, nil, nil)

	tr := NewTree(DefaultTreeConfig())
	assert.Equal(t, Win, tr.Eval(g))
}

func TestTreeInGameScoreIsBounded(t *testing.T) {
	g := New2v2ForHeuristic()

	tr := NewTree(DefaultTreeConfig())
	score := tr.Eval(g)
	assert.Greater(t, score, Loss)
	assert.Less(t, score, Win)
}

func TestMobilityHeuristicIsAreaFractionBounded(t *testing.T) {
	g := New2v2ForHeuristic()

	m := NewMobility()
	score := m.Eval(g)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestSoloSaturatedWhenFoodCloserThanHealth(t *testing.T) {
	g := game.New(5, 5)
	self := &game.Snake{ID: 0, Body: []geom.Point{{X: 0, Y: 0}}, Health: 100}
	enemy := &game.Snake{ID: 1, Body: []geom.Point{{X: 4, Y: 4}}, Health: 100}
	g.Reset([]*game.Snake{self, enemy}, []geom.Point{{X: 1, Y: 0}}, nil)

	s := NewSolo(SoloConfig{Saturated: 1.0})
	score := s.Eval(g)
	assert.Greater(t, score, 0.0)
}

func TestFloodHeuristicInGameScoreIsBounded(t *testing.T) {
	g := New2v2ForHeuristic()

	f := NewFlood(DefaultFloodConfig())
	score := f.Eval(g)
	assert.Greater(t, score, Loss)
	assert.Less(t, score, Win)
}

// New2v2ForHeuristic builds a small two-snake, both-alive board used by
// several in-game (non-terminal) heuristic tests.
func New2v2ForHeuristic() *game.Game {
	g := game.New(7, 7)
	self := &game.Snake{ID: 0, Body: []geom.Point{{X: 1, Y: 1}, {X: 1, Y: 0}}, Health: 80}
	enemy := &game.Snake{ID: 1, Body: []geom.Point{{X: 5, Y: 5}, {X: 5, Y: 6}}, Health: 80}
	g.Reset([]*game.Snake{self, enemy}, []geom.Point{{X: 3, Y: 3}}, nil)
	return g
}
