// Package pathfind implements quadtree A*: a coarse-to-fine path search that
// walks a quadtree.QTree's cell-adjacency graph rather than a uniform grid,
// so open areas are traversed in a handful of large steps instead of many
// small ones.
package pathfind

import (
	"container/heap"
	"math"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/quadtree"
)

// Node is one waypoint of a found path: its world position and the goal
// radius it should be considered reached within (bottom-level cells, plus
// the final node at the exact goal with its own arrival radius).
type Node struct {
	Pos    geometry.Vector2D
	Radius float64
}

// Path is an ordered list of waypoints from goal to start (the A* search
// builds it back to front by walking came-from links; callers drive an
// entity along it from the last entry toward the first).
type Path []Node

// SearchTree records the explored search graph for debugging/visualization:
// pairs of connected node positions.
type SearchTree struct {
	Nodes [][2]geometry.Vector2D
}

type qtreeIdx struct {
	level int
	pos   quadtree.Pos
}

type openState struct {
	idx  qtreeIdx
	cost float64
}

type openHeap []openState

func (h openHeap) Len() int            { return len(h) }
func (h openHeap) Less(i, j int) bool  { return h[i].cost < h[j].cost }
func (h openHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *openHeap) Push(x interface{}) { *h = append(*h, x.(openState)) }
func (h *openHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

type closedState struct {
	cost     float64
	cameFrom *qtreeIdx
}

// FindPath searches q for a path from start to end, treating any Occupied
// cell whose occupant id is not in ignoreID as blocked. It returns the path
// from end back to start (see Path) and the explored search tree; found is
// false if start or end sit in a blocked cell, or no path exists.
func FindPath(q *quadtree.QTree, ignoreID func(id int) bool, start, end geometry.Vector2D, goalRadius float64) (path Path, tree SearchTree, found bool) {
	startLevel, startState, ok := q.Find(start.X, start.Y)
	if !ok || startState.Blocked(ignoreID) {
		return nil, SearchTree{}, false
	}
	endLevel, endState, ok := q.Find(end.X, end.Y)
	if !ok || endState.Blocked(ignoreID) {
		return nil, SearchTree{}, false
	}

	endWidth := q.Width(endLevel)
	endIdx := qtreeIdx{endLevel, quadtree.Pos{int(end.X) / endWidth, int(end.Y) / endWidth}}

	startIdx := qtreeIdx{startLevel, q.PosToIdx(start.X, start.Y, startLevel)}
	if startIdx == endIdx {
		return Path{{Pos: end, Radius: goalRadius}, centerNode(q, startIdx)}, SearchTree{}, true
	}

	open := &openHeap{{idx: startIdx, cost: 0}}
	heap.Init(open)

	closed := map[qtreeIdx]closedState{startIdx: {cost: 0}}

	for open.Len() > 0 {
		cur := heap.Pop(open).(openState)
		for _, nb := range q.FindNeighbors(cur.idx.level, cur.idx.pos) {
			neiIdx := qtreeIdx{nb.Level, nb.Pos}
			neiWidth := q.Width(nb.Level)
			neiBottom := quadtree.Pos{neiIdx.pos[0] * neiWidth, neiIdx.pos[1] * neiWidth}
			cellIdx := qtreeIdx{nb.Level, quadtree.Pos{neiBottom[0] / neiWidth, neiBottom[1] / neiWidth}}

			if cellIdx == endIdx {
				result := Path{{Pos: end, Radius: goalRadius}}
				node := &cur.idx
				for node != nil {
					result = append(result, centerNode(q, *node))
					if s, ok := closed[*node]; ok {
						node = s.cameFrom
					} else {
						node = nil
					}
				}
				return result, buildSearchTree(q, closed), true
			}

			_, cellState, ok := q.FindByIdx(neiBottom[0], neiBottom[1])
			if !ok || cellState.Blocked(ignoreID) {
				continue
			}

			newCost := cur.cost + float64(q.Width(cur.idx.level))
			if existing, ok := closed[cellIdx]; ok && existing.cost <= newCost {
				continue
			}
			from := cur.idx
			closed[cellIdx] = closedState{cost: newCost, cameFrom: &from}
			heap.Push(open, openState{idx: cellIdx, cost: newCost})
		}
	}

	return nil, buildSearchTree(q, closed), false
}

func centerNode(q *quadtree.QTree, idx qtreeIdx) Node {
	x, y := q.IdxToCenter(idx.level, idx.pos)
	return Node{Pos: geometry.Vector2D{X: x, Y: y}, Radius: float64(q.Width(idx.level)) / 2}
}

func buildSearchTree(q *quadtree.QTree, closed map[qtreeIdx]closedState) SearchTree {
	var tree SearchTree
	for idx, state := range closed {
		if state.cameFrom == nil {
			continue
		}
		from := centerNode(q, *state.cameFrom)
		to := centerNode(q, idx)
		tree.Nodes = append(tree.Nodes, [2]geometry.Vector2D{from.Pos, to.Pos})
	}
	return tree
}

// EuclideanHeuristic is exposed for callers composing their own search
// variants; the quadtree A* itself uses uniform edge cost (cell width) with
// no heuristic, matching the upstream search.
func EuclideanHeuristic(a, b geometry.Vector2D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
