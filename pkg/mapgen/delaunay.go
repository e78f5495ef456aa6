package mapgen

import (
	"math"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
)

// Triangle indexes three points by position in the triangulation's input
// point slice.
type Triangle [3]int

// Triangulation is a Delaunay triangulation of a point set, grounded on the
// same incremental circumcircle-based construction the teacher's mesh build
// used a dedicated crate for (delaunator); here implemented directly as a
// Bowyer-Watson triangulation since no such library is in the example pack.
type Triangulation struct {
	Points    []geometry.Vector2D
	Triangles []Triangle
}

// Delaunay triangulates points with the Bowyer-Watson algorithm: start from
// a super-triangle enclosing every point, insert points one at a time,
// removing triangles whose circumcircle contains the new point and
// re-triangulating the resulting cavity, then discard any triangle touching
// the super-triangle's corners.
func Delaunay(points []geometry.Vector2D) Triangulation {
	if len(points) < 3 {
		return Triangulation{Points: points}
	}

	minX, minY := points[0].X, points[0].Y
	maxX, maxY := points[0].X, points[0].Y
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	dx, dy := maxX-minX, maxY-minY
	deltaMax := math.Max(dx, dy)
	if deltaMax == 0 {
		deltaMax = 1
	}
	midX, midY := (minX+maxX)/2, (minY+maxY)/2

	superA := geometry.Vector2D{X: midX - 20*deltaMax, Y: midY - deltaMax}
	superB := geometry.Vector2D{X: midX, Y: midY + 20*deltaMax}
	superC := geometry.Vector2D{X: midX + 20*deltaMax, Y: midY - deltaMax}

	pts := make([]geometry.Vector2D, len(points), len(points)+3)
	copy(pts, points)
	superIdx := [3]int{len(pts), len(pts) + 1, len(pts) + 2}
	pts = append(pts, superA, superB, superC)

	tris := []Triangle{{superIdx[0], superIdx[1], superIdx[2]}}

	for i := range points {
		var polygon [][2]int
		var bad []int
		for ti, t := range tris {
			if inCircumcircle(pts, t, pts[i]) {
				bad = append(bad, ti)
				polygon = append(polygon,
					[2]int{t[0], t[1]},
					[2]int{t[1], t[2]},
					[2]int{t[2], t[0]},
				)
			}
		}

		boundary := uniqueEdges(polygon, bad, tris)

		remaining := tris[:0:0]
		badSet := make(map[int]bool, len(bad))
		for _, b := range bad {
			badSet[b] = true
		}
		for ti, t := range tris {
			if !badSet[ti] {
				remaining = append(remaining, t)
			}
		}
		tris = remaining

		for _, e := range boundary {
			tris = append(tris, Triangle{e[0], e[1], i})
		}
	}

	var out []Triangle
	for _, t := range tris {
		if touchesAny(t, superIdx) {
			continue
		}
		out = append(out, t)
	}

	return Triangulation{Points: points, Triangles: out}
}

func touchesAny(t Triangle, super [3]int) bool {
	for _, v := range t {
		for _, s := range super {
			if v == s {
				return true
			}
		}
	}
	return false
}

// uniqueEdges returns the edges of the bad-triangle cavity that are not
// shared between two bad triangles: the cavity's boundary polygon.
func uniqueEdges(edges [][2]int, _ []int, _ []Triangle) [][2]int {
	count := make(map[[2]int]int)
	norm := func(e [2]int) [2]int {
		if e[0] > e[1] {
			return [2]int{e[1], e[0]}
		}
		return e
	}
	order := make([]int, 0, len(edges))
	normed := make([][2]int, len(edges))
	for i, e := range edges {
		n := norm(e)
		normed[i] = n
		if count[n] == 0 {
			order = append(order, i)
		}
		count[n]++
	}
	var out [][2]int
	seen := make(map[[2]int]bool)
	for _, i := range order {
		n := normed[i]
		if count[n] == 1 && !seen[n] {
			out = append(out, edges[i])
			seen[n] = true
		}
	}
	return out
}

// inCircumcircle reports whether p lies inside the circumcircle of triangle
// t's vertices.
func inCircumcircle(pts []geometry.Vector2D, t Triangle, p geometry.Vector2D) bool {
	a, b, c := pts[t[0]], pts[t[1]], pts[t[2]]

	ax, ay := a.X-p.X, a.Y-p.Y
	bx, by := b.X-p.X, b.Y-p.Y
	cx, cy := c.X-p.X, c.Y-p.Y

	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)

	orient := (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
	if orient < 0 {
		det = -det
	}
	return det > 0
}
