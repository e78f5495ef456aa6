package mapgen

import (
	"testing"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
)

func TestGrid_SetAtBounds(t *testing.T) {
	g := NewGrid(4, 3)
	g.Set(1, 1, true)
	if !g.At(1, 1) {
		t.Fatalf("expected (1,1) passable")
	}
	if g.At(-1, 0) || g.At(4, 0) || g.At(0, 3) {
		t.Fatalf("out-of-bounds reads must be impassable")
	}
	g.Set(-1, -1, true)
	if g.At(-1, -1) {
		t.Fatalf("out-of-bounds writes must be ignored")
	}
}

func TestGrid_LargestComponent(t *testing.T) {
	g := NewGrid(5, 1)
	g.Set(0, 0, true)
	g.Set(1, 0, true)
	g.Set(3, 0, true)

	out := g.LargestComponent()
	if !out.At(0, 0) || !out.At(1, 0) {
		t.Fatalf("expected the two-cell component to survive")
	}
	if out.At(3, 0) {
		t.Fatalf("expected the isolated cell to be cleared")
	}
}

func TestRDP_SimplifiesColinearPoints(t *testing.T) {
	pts := []geometry.Vector2D{
		{X: 0, Y: 0}, {X: 1, Y: 0.01}, {X: 2, Y: 0}, {X: 3, Y: 5}, {X: 4, Y: 0},
	}
	out := RDP(pts, 0.5)
	if len(out) >= len(pts) {
		t.Fatalf("expected simplification to drop points, got %d from %d", len(out), len(pts))
	}
	if out[0] != pts[0] || out[len(out)-1] != pts[len(pts)-1] {
		t.Fatalf("endpoints must be preserved")
	}
}

func TestRDP_ShortInputUnchanged(t *testing.T) {
	pts := []geometry.Vector2D{{X: 0, Y: 0}, {X: 1, Y: 1}}
	out := RDP(pts, 0.1)
	if len(out) != 2 {
		t.Fatalf("expected 2 points unchanged, got %d", len(out))
	}
}

func TestGenerate_AllKindsProduceNonEmptyBoard(t *testing.T) {
	kinds := []Kind{KindPerlin, KindRect, KindCrank, KindMaze, KindRooms, KindIterative}
	for _, k := range kinds {
		g := Generate(BoardParams{W: 64, H: 64, Seed: 42, MazeExpansions: 400, Kind: k})
		count := 0
		for y := 0; y < g.H; y++ {
			for x := 0; x < g.W; x++ {
				if g.At(x, y) {
					count++
				}
			}
		}
		if count == 0 {
			t.Errorf("kind %d: generated an empty board", k)
		}
	}
}

func TestBuildMesh_ProducesPassableTriangles(t *testing.T) {
	g := Generate(BoardParams{W: 48, H: 48, Seed: 7, Kind: KindRect})
	mesh := BuildMesh(g, 0.5)
	if len(mesh.Borders) == 0 {
		t.Fatalf("expected at least one border ring")
	}
	anyPassable := false
	for _, p := range mesh.TrianglePass {
		if p {
			anyPassable = true
			break
		}
	}
	if !anyPassable {
		t.Fatalf("expected at least one passable triangle")
	}
}
