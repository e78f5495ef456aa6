package pathfind

import (
	"testing"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/quadtree"
)

func openBoard(w, h int) *quadtree.QTree {
	q := quadtree.New()
	q.Update(w, h, func(r quadtree.Rect) quadtree.CellState {
		return quadtree.CellState{Kind: quadtree.Free}
	})
	return q
}

func noIgnore(int) bool { return false }

func TestFindPath_OpenBoardSucceeds(t *testing.T) {
	q := openBoard(32, 32)
	path, _, found := FindPath(q, noIgnore, geometry.Vector2D{X: 2, Y: 2}, geometry.Vector2D{X: 28, Y: 28}, 1)
	if !found {
		t.Fatalf("expected a path across an open board")
	}
	if len(path) == 0 {
		t.Fatalf("expected a non-empty path")
	}
	if path[0].Pos.X != 28 || path[0].Pos.Y != 28 {
		t.Fatalf("expected the path to start at the goal, got %v", path[0])
	}
}

func TestFindPath_BlockedStartFails(t *testing.T) {
	q := quadtree.New()
	q.Update(16, 16, func(r quadtree.Rect) quadtree.CellState {
		if r[0] < 4 {
			return quadtree.CellState{Kind: quadtree.Obstacle}
		}
		return quadtree.CellState{Kind: quadtree.Free}
	})
	_, _, found := FindPath(q, noIgnore, geometry.Vector2D{X: 1, Y: 1}, geometry.Vector2D{X: 12, Y: 12}, 1)
	if found {
		t.Fatalf("expected no path when the start cell is blocked")
	}
}

func TestFindPath_SameCellIsTrivial(t *testing.T) {
	q := openBoard(16, 16)
	path, _, found := FindPath(q, noIgnore, geometry.Vector2D{X: 2, Y: 2}, geometry.Vector2D{X: 3, Y: 3}, 1)
	if !found || len(path) != 2 {
		t.Fatalf("expected a trivial 2-node path within the same cell, got %v found=%v", path, found)
	}
}
