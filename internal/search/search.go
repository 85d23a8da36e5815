// Package search implements the bounded-time adversarial tree search:
// multi-agent max-n, an alpha-beta duel specialization, an expectimax
// variant, and the iterative-deepening driver that races them against a
// deadline.
package search

import (
	"context"
	"sync"

	"golang.org/x/exp/constraints"

	"github.com/brensch/battlesnake-engine/internal/game"
	"github.com/brensch/battlesnake-engine/internal/geom"
	"github.com/brensch/battlesnake-engine/internal/heuristic"
)

// maxOf/minOf bound the score types MaxN/AlphaBeta/Expectimax can be
// generalized over, mirroring original_source's minmax.rs Comparable trait
// bound: every backend here scores leaves as float64, but maxOf/minOf stay
// generic so a fixed-point or integer score type could be swapped in later
// without touching the pruning logic.
func maxOf[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func minOf[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Evaluator is the single capability search depends on for a leaf score.
type Evaluator interface {
	Eval(g *game.Game) float64
}

func isValidMove(g *game.Game, id int, d geom.Direction) bool {
	for _, m := range g.ValidMoves(id) {
		if m == d {
			return true
		}
	}
	return false
}

// argmax picks the best-scoring direction, defaulting to Up on a total
// tie (the deterministic fallback used when no move beats LOSS).
func argmax(scores [4]float64) (geom.Direction, float64) {
	best := geom.Up
	bestScore := scores[0]
	for i := 1; i < 4; i++ {
		if scores[i] > bestScore {
			bestScore = scores[i]
			best = geom.Direction(i)
		}
	}
	return best, bestScore
}

// MaxN runs a multi-agent minimax search to the given full-ply depth and
// returns self's score for each of the four candidate directions
// (illegal ones scored LOSS). The root's four branches are dispatched as
// independent goroutines; no further concurrency is introduced inside a
// subtree.
func MaxN(g *game.Game, depth int, h Evaluator) [4]float64 {
	if depth < 1 {
		depth = 1
	}
	n := len(g.Snakes)

	var result [4]float64
	for i := range result {
		result[i] = heuristic.Loss
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, d := range geom.AllDirections {
		if !isValidMove(g, 0, d) {
			continue
		}
		d := d
		wg.Add(1)
		go func() {
			defer wg.Done()
			actions := make([]geom.Direction, n)
			actions[0] = d
			score := maxNRec(g, depth, 1, actions, h)[0]
			mu.Lock()
			result[d] = score
			mu.Unlock()
		}()
	}
	wg.Wait()
	return result
}

// maxNRec is the fully synchronous recursion used both below the root and
// for every ply after the first (no task creation inside subtrees).
func maxNRec(g *game.Game, depth, ply int, actions []geom.Direction, h Evaluator) [4]float64 {
	n := len(g.Snakes)

	if ply == n {
		g2 := g.Clone()
		g2.Step(actions)

		switch outcome := g2.Outcome(); outcome.Outcome {
		case game.Winner:
			if outcome.WinnerID == 0 {
				return [4]float64{heuristic.Win, heuristic.Win, heuristic.Win, heuristic.Win}
			}
			return [4]float64{heuristic.Loss, heuristic.Loss, heuristic.Loss, heuristic.Loss}
		case game.Draw:
			return [4]float64{heuristic.Draw, heuristic.Draw, heuristic.Draw, heuristic.Draw}
		}

		if depth <= 1 {
			return [4]float64{h.Eval(g2), 0, 0, 0}
		}
		sub := maxNRec(g2, depth-1, 0, make([]geom.Direction, n), h)
		best := sub[0]
		for i := 1; i < 4; i++ {
			if sub[i] > best {
				best = sub[i]
			}
		}
		return [4]float64{best, 0, 0, 0}
	}

	if ply == 0 {
		var result [4]float64
		for i := range result {
			result[i] = heuristic.Loss
		}
		for _, d := range geom.AllDirections {
			if !isValidMove(g, 0, d) {
				continue
			}
			next := append([]geom.Direction(nil), actions...)
			next[0] = d
			result[d] = maxNRec(g, depth, ply+1, next, h)[0]
		}
		return result
	}

	// A minimizing ply for a non-self snake: worst case for self.
	min := heuristic.Win
	moved := false
	for _, d := range geom.AllDirections {
		if !isValidMove(g, ply, d) {
			continue
		}
		moved = true
		next := append([]geom.Direction(nil), actions...)
		next[ply] = d
		val := maxNRec(g, depth, ply+1, next, h)[0]
		min = minOf(min, val)
		if val <= heuristic.Loss {
			break
		}
	}
	if !moved {
		min = maxNRec(g, depth, ply+1, actions, h)[0]
	}
	return [4]float64{min, 0, 0, 0}
}

// AlphaBeta runs the two-player duel specialization, classical alpha-beta
// over full plies, bounds initialized to (LOSS, WIN).
func AlphaBeta(g *game.Game, depth int, h Evaluator) (geom.Direction, float64) {
	n := len(g.Snakes)
	return alphaBetaRec(g, make([]geom.Direction, n), depth, 0, heuristic.Loss, heuristic.Win, h)
}

func alphaBetaRec(g *game.Game, actions []geom.Direction, depth, ply int, alpha, beta float64, h Evaluator) (geom.Direction, float64) {
	n := len(g.Snakes)

	if ply == n {
		g2 := g.Clone()
		g2.Step(actions)
		if depth == 0 {
			return geom.Up, h.Eval(g2)
		}
		return alphaBetaRec(g2, make([]geom.Direction, n), depth-1, 0, alpha, beta, h)
	}

	if ply == 0 {
		best := geom.Up
		value := heuristic.Loss
		for _, d := range geom.AllDirections {
			next := append([]geom.Direction(nil), actions...)
			next[0] = d
			_, v := alphaBetaRec(g, next, depth, ply+1, alpha, beta, h)
			if v > value {
				value = v
				best = d
			}
			alpha = maxOf(alpha, v)
			if alpha >= beta {
				break
			}
		}
		return best, value
	}

	best := geom.Up
	value := heuristic.Win
	for _, d := range geom.AllDirections {
		next := append([]geom.Direction(nil), actions...)
		next[ply] = d
		_, v := alphaBetaRec(g, next, depth, ply+1, alpha, beta, h)
		if v < value {
			value = v
			best = d
		}
		beta = minOf(beta, v)
		if alpha >= beta {
			break
		}
	}
	return best, value
}

// Expectimax is structurally identical to MaxN except non-self plies sum
// (average) over their legal moves under a uniform belief, and illegal
// opponent moves contribute LOSS rather than being skipped.
func Expectimax(g *game.Game, depth int, h Evaluator) (geom.Direction, float64) {
	n := len(g.Snakes)

	type branch struct {
		ok  bool
		val float64
	}
	var results [4]branch
	var wg sync.WaitGroup
	for _, d := range geom.AllDirections {
		if !isValidMove(g, 0, d) {
			continue
		}
		d := d
		wg.Add(1)
		go func() {
			defer wg.Done()
			actions := make([]geom.Direction, n)
			actions[0] = d
			v := expectimaxRec(g, depth, 1, actions, h)
			results[d] = branch{ok: true, val: v}
		}()
	}
	wg.Wait()

	found := false
	best := geom.Up
	bestVal := heuristic.Loss
	for i, d := range geom.AllDirections {
		r := results[i]
		if !r.ok {
			continue
		}
		if !found || r.val > bestVal {
			bestVal = r.val
			best = d
			found = true
		}
	}
	if !found {
		return geom.Up, heuristic.Loss
	}
	return best, bestVal
}

func expectimaxRec(g *game.Game, depth, ply int, actions []geom.Direction, h Evaluator) float64 {
	n := len(g.Snakes)

	if ply == n {
		g2 := g.Clone()
		g2.Step(actions)

		switch outcome := g2.Outcome(); outcome.Outcome {
		case game.Winner:
			if outcome.WinnerID == 0 {
				return heuristic.Win
			}
			return heuristic.Loss
		case game.Draw:
			return heuristic.Draw
		}

		if depth <= 1 {
			return h.Eval(g2)
		}
		return expectimaxRec(g2, depth-1, 0, make([]geom.Direction, n), h)
	}

	if ply == 0 {
		found := false
		best := heuristic.Loss
		for _, d := range geom.AllDirections {
			if !isValidMove(g, 0, d) {
				continue
			}
			next := append([]geom.Direction(nil), actions...)
			next[0] = d
			v := expectimaxRec(g, depth, 1, next, h)
			if !found || v > best {
				best = v
				found = true
			}
		}
		if !found {
			return heuristic.Loss
		}
		return best
	}

	if !g.Snakes[ply].Alive() {
		return expectimaxRec(g, depth, ply+1, actions, h)
	}

	total := 0.0
	count := 0
	for _, d := range geom.AllDirections {
		if !isValidMove(g, ply, d) {
			// Certain death for this opponent under this action.
			total += heuristic.Loss
			count++
			continue
		}
		next := append([]geom.Direction(nil), actions...)
		next[ply] = d
		total += expectimaxRec(g, depth, ply+1, next, h)
		count++
	}
	return total / float64(count)
}

// Algorithm names a search driver the iterative-deepening loop can run.
type Algorithm int

const (
	MaxNAlgo Algorithm = iota
	AlphaBetaAlgo
	ExpectimaxAlgo
)

// ChooseAlgorithm auto-selects max-n or the alpha-beta duel specialization
// by the number of snakes currently alive.
func ChooseAlgorithm(g *game.Game) Algorithm {
	alive := 0
	for _, s := range g.Snakes {
		if s.Alive() {
			alive++
		}
	}
	if alive == 2 {
		return AlphaBetaAlgo
	}
	return MaxNAlgo
}

func runDepth(g *game.Game, depth int, algo Algorithm, h Evaluator) (geom.Direction, float64) {
	switch algo {
	case AlphaBetaAlgo:
		return AlphaBeta(g, depth, h)
	case ExpectimaxAlgo:
		return Expectimax(g, depth, h)
	default:
		return argmax(MaxN(g, depth, h))
	}
}

type bestSoFar struct {
	mu  sync.Mutex
	dir geom.Direction
	has bool
}

func (b *bestSoFar) publish(d geom.Direction) {
	b.mu.Lock()
	b.dir, b.has = d, true
	b.mu.Unlock()
}

func (b *bestSoFar) get() (geom.Direction, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dir, b.has
}

// maxDepthFor returns the iterative-deepening ceiling per §4.5.5: 16 for
// max-n/alpha-beta, 8 for expectimax.
func maxDepthFor(algo Algorithm) int {
	if algo == ExpectimaxAlgo {
		return 8
	}
	return 16
}

// IterativeDeepen runs increasing-depth searches, publishing the best
// move found after each completed depth to a single-slot result, until
// ctx is cancelled or a certain win/loss is found. It returns the best
// published direction, or (Up, false) if no depth ever completed.
func IterativeDeepen(ctx context.Context, g *game.Game, h Evaluator, algo Algorithm) (geom.Direction, bool) {
	best := &bestSoFar{}
	done := make(chan struct{})

	go func() {
		defer close(done)
		for depth := 1; depth <= maxDepthFor(algo); depth++ {
			if ctx.Err() != nil {
				return
			}
			dir, score := runDepth(g, depth, algo, h)
			if ctx.Err() != nil {
				return
			}
			if score <= heuristic.Loss {
				// Certain loss: drop the move and stop. agent.stepSearch then
				// uses FastPath (its depth-1 pick, or the first valid move);
				// no random move is drawn for this case.
				return
			}
			best.publish(dir)
			if score >= heuristic.Win {
				return
			}
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
	return best.get()
}

// FastPathThreshold is the remaining-budget cutoff below which iterative
// deepening is skipped in favor of a single depth-1 search (§4.5.6).
const FastPathThreshold = 150 // milliseconds

// FastPath performs a single depth-1 max-n search, falling back to the
// first valid move if even that fails to find a non-LOSS direction.
func FastPath(g *game.Game, h Evaluator) (geom.Direction, bool) {
	dir, score := argmax(MaxN(g, 1, h))
	if score > heuristic.Loss {
		return dir, true
	}
	if moves := g.ValidMoves(0); len(moves) > 0 {
		return moves[0], true
	}
	return geom.Up, false
}
