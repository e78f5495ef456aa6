package mapgen

import (
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
)

// traceContours runs marching squares over a grid's passability field,
// sampling it as a scalar lattice (1 = passable, 0 = impassable) at integer
// coordinates, and returns the set of closed polygon rings tracing the
// boundary between passable and impassable area. Edge crossings always land
// at the midpoint between a passable and impassable sample, since the field
// is binary rather than continuous.
func traceContours(g *Grid) [][]geometry.Vector2D {
	segs := buildSegments(g)
	return chainSegments(segs)
}

type segment struct {
	a, b geometry.Vector2D
}

// cellEdges maps a 4-bit marching-squares case (bit0=bottom-left,
// bit1=bottom-right, bit2=top-right, bit3=top-left corner passable) to the
// edge-midpoint pairs forming the boundary segment(s) through that cell. Edge
// indices: 0=bottom, 1=right, 2=top, 3=left.
var cellEdges = map[int][][2]int{
	1:  {{3, 0}},
	2:  {{0, 1}},
	3:  {{3, 1}},
	4:  {{1, 2}},
	5:  {{3, 2}, {0, 1}}, // saddle, resolved as two separate diagonal edges
	6:  {{0, 2}},
	7:  {{3, 2}},
	8:  {{2, 3}},
	9:  {{0, 2}},
	10: {{3, 0}, {1, 2}}, // saddle, resolved as two separate diagonal edges
	11: {{1, 2}},
	12: {{1, 3}},
	13: {{0, 1}},
	14: {{3, 0}},
}

func edgePoint(x, y, edge int) geometry.Vector2D {
	switch edge {
	case 0:
		return geometry.Vector2D{X: float64(x) + 0.5, Y: float64(y)}
	case 1:
		return geometry.Vector2D{X: float64(x) + 1, Y: float64(y) + 0.5}
	case 2:
		return geometry.Vector2D{X: float64(x) + 0.5, Y: float64(y) + 1}
	case 3:
		return geometry.Vector2D{X: float64(x), Y: float64(y) + 0.5}
	}
	panic(fmt.Sprintf("mapgen: invalid marching-squares edge index %d", edge))
}

// sample reads the grid as a scalar lattice: out-of-bounds lattice points are
// impassable, extending the impassable border so every shape closes.
func sample(g *Grid, x, y int) bool {
	return g.At(x, y)
}

func buildSegments(g *Grid) []segment {
	var segs []segment
	for y := -1; y < g.H; y++ {
		for x := -1; x < g.W; x++ {
			bl := sample(g, x, y)
			br := sample(g, x+1, y)
			tr := sample(g, x+1, y+1)
			tl := sample(g, x, y+1)
			c := 0
			if bl {
				c |= 1
			}
			if br {
				c |= 2
			}
			if tr {
				c |= 4
			}
			if tl {
				c |= 8
			}
			edges, ok := cellEdges[c]
			if !ok {
				continue
			}
			for _, e := range edges {
				segs = append(segs, segment{a: edgePoint(x, y, e[0]), b: edgePoint(x, y, e[1])})
			}
		}
	}
	return segs
}

// chainSegments links unordered boundary segments sharing an endpoint into
// closed polygon rings. Open chains (a bug in the field, or the boundary
// touching the grid's edge) are discarded: only rings that return to their
// start are emitted, matching the closed-contour assumption the mesh builder
// relies on.
func chainSegments(segs []segment) [][]geometry.Vector2D {
	type key struct{ x, y int }
	round := func(v geometry.Vector2D) key {
		return key{int(math.Round(v.X * 2)), int(math.Round(v.Y * 2))}
	}

	adjacency := make(map[key][]int)
	used := make([]bool, len(segs))
	for i, s := range segs {
		adjacency[round(s.a)] = append(adjacency[round(s.a)], i)
		adjacency[round(s.b)] = append(adjacency[round(s.b)], i)
	}

	var rings [][]geometry.Vector2D
	for start := range segs {
		if used[start] {
			continue
		}
		used[start] = true
		ring := []geometry.Vector2D{segs[start].a, segs[start].b}
		current := segs[start].b
		closed := false
		for {
			cand := adjacency[round(current)]
			next := -1
			for _, idx := range cand {
				if used[idx] {
					continue
				}
				next = idx
				break
			}
			if next == -1 {
				break
			}
			used[next] = true
			s := segs[next]
			var nextPoint geometry.Vector2D
			if round(s.a) == round(current) {
				nextPoint = s.b
			} else {
				nextPoint = s.a
			}
			if round(nextPoint) == round(ring[0]) {
				closed = true
				break
			}
			ring = append(ring, nextPoint)
			current = nextPoint
		}
		if closed && len(ring) >= 3 {
			ring = append(ring, ring[0])
			rings = append(rings, ring)
		}
	}
	return rings
}
