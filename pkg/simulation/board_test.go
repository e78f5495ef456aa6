package simulation

import (
	"testing"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/mapgen"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/quadtree"
)

func testBoardParams() mapgen.BoardParams {
	return mapgen.BoardParams{W: 32, H: 32, Seed: 7, Simplify: 1.0, Kind: mapgen.KindRect}
}

func TestNewBoard_PassableAgreesWithGrid(t *testing.T) {
	b := NewBoard(testBoardParams())
	for y := 0; y < b.Grid.H; y++ {
		for x := 0; x < b.Grid.W; x++ {
			pos := geometry.Vector2D{X: float64(x), Y: float64(y)}
			if b.Passable(pos) != b.Grid.At(x, y) {
				t.Fatalf("Passable(%d,%d) disagrees with Grid.At", x, y)
			}
		}
	}
}

func TestBoard_IsVisible_SameCellIsVisible(t *testing.T) {
	b := NewBoard(testBoardParams())
	var start geometry.Vector2D
	found := false
	for y := 0; y < b.Grid.H && !found; y++ {
		for x := 0; x < b.Grid.W; x++ {
			if b.Grid.At(x, y) {
				start = geometry.Vector2D{X: float64(x), Y: float64(y)}
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("expected at least one passable cell")
	}
	if !b.IsVisible(start, start) {
		t.Fatalf("a cell must always be visible from itself")
	}
}

func TestBoard_ReconcileOccupancy_MarksAndClearsOccupant(t *testing.T) {
	b := NewBoard(testBoardParams())
	var pos geometry.Vector2D
	found := false
	for y := 0; y < b.Grid.H && !found; y++ {
		for x := 0; x < b.Grid.W; x++ {
			if b.Grid.At(x, y) {
				pos = geometry.Vector2D{X: float64(x), Y: float64(y)}
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("expected at least one passable cell")
	}

	agent := entity.NewAgent(5, 0, entity.Worker, pos, 0)
	b.ReconcileOccupancy([]*entity.Entity{agent})

	_, state, ok := b.QTree.FindByIdx(int(pos.X), int(pos.Y))
	if !ok || state.Kind != quadtree.Occupied || state.OccupantID != 5 {
		t.Fatalf("expected cell to be marked Occupied by entity 5, got %+v (ok=%v)", state, ok)
	}

	agent.Active = false
	b.ReconcileOccupancy(nil)

	_, state, ok = b.QTree.FindByIdx(int(pos.X), int(pos.Y))
	if !ok || state.Kind == quadtree.Occupied {
		t.Fatalf("expected cell to be released once the entity is gone, got %+v", state)
	}
}

func TestIgnoreID(t *testing.T) {
	ignore := IgnoreID(3)
	if !ignore(3) {
		t.Fatalf("expected id 3 to be ignored")
	}
	if ignore(4) {
		t.Fatalf("expected id 4 not to be ignored")
	}
}
