package mapgen

import "github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"

// Mesh is the navigable representation derived from a passability grid: the
// simplified border rings, a Delaunay triangulation of their vertices, and
// per-triangle passability/connected-component labels.
type Mesh struct {
	Borders        [][]geometry.Vector2D
	Triangulation  Triangulation
	TrianglePass   []bool
	TriangleLabels []int
	LargestLabel   int
}

// BuildMesh runs the full mesh pipeline described by the grid & mesh
// builder: trace the grid's boundary contours with marching squares,
// simplify each ring with Ramer-Douglas-Peucker, triangulate the simplified
// vertices with Delaunay, then label each triangle passable/impassable and
// group passable triangles into connected components.
func BuildMesh(g *Grid, simplifyEpsilon float64) Mesh {
	rings := traceContours(g)

	var borders [][]geometry.Vector2D
	var points []geometry.Vector2D
	for _, ring := range rings {
		open := ring
		for len(open) > 1 && open[0] == open[len(open)-1] {
			open = open[:len(open)-1]
		}
		simplified := open
		if simplifyEpsilon > 0 {
			simplified = RDP(open, simplifyEpsilon)
		}
		if len(simplified) <= 2 {
			continue
		}
		borders = append(borders, simplified)
		points = append(points, simplified...)
	}

	tri := Delaunay(points)
	passable := passableTriangles(g, tri)
	labels, largest := labelTriangles(tri, passable)

	return Mesh{
		Borders:        borders,
		Triangulation:  tri,
		TrianglePass:   passable,
		TriangleLabels: labels,
		LargestLabel:   largest,
	}
}

func centerOf(tri Triangulation, t Triangle) geometry.Vector2D {
	a, b, c := tri.Points[t[0]], tri.Points[t[1]], tri.Points[t[2]]
	return geometry.Vector2D{X: (a.X + b.X + c.X) / 3, Y: (a.Y + b.Y + c.Y) / 3}
}

func passableTriangles(g *Grid, tri Triangulation) []bool {
	out := make([]bool, len(tri.Triangulation()))
	for i, t := range tri.Triangulation() {
		c := centerOf(tri, t)
		out[i] = g.At(int(c.X), int(c.Y))
	}
	return out
}

// Triangulation returns the triangle list; a thin accessor kept for callers
// that want the slice without reaching into the struct field directly.
func (t Triangulation) Triangulation() []Triangle {
	return t.Triangles
}

// edgeKey canonicalizes an undirected edge between two point indices so
// shared edges between adjacent triangles hash identically regardless of
// winding order.
type edgeKey struct{ a, b int }

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// adjacency builds a triangle-to-triangle adjacency list from shared edges,
// standing in for the halfedge structure a dedicated triangulation library
// would expose.
func adjacency(triangles []Triangle) [][]int {
	edgeOwner := make(map[edgeKey][]int)
	for i, t := range triangles {
		edges := [3]edgeKey{
			newEdgeKey(t[0], t[1]),
			newEdgeKey(t[1], t[2]),
			newEdgeKey(t[2], t[0]),
		}
		for _, e := range edges {
			edgeOwner[e] = append(edgeOwner[e], i)
		}
	}
	adj := make([][]int, len(triangles))
	for _, owners := range edgeOwner {
		if len(owners) != 2 {
			continue
		}
		adj[owners[0]] = append(adj[owners[0]], owners[1])
		adj[owners[1]] = append(adj[owners[1]], owners[0])
	}
	return adj
}

// labelTriangles groups passable triangles into connected components via a
// flood fill over shared-edge adjacency, matching the upstream
// label_triangles behavior. It returns one label per triangle (-1 for
// impassable triangles) and the label with the most triangles.
func labelTriangles(tri Triangulation, passable []bool) ([]int, int) {
	adj := adjacency(tri.Triangles)
	labels := make([]int, len(tri.Triangles))
	for i := range labels {
		labels[i] = -1
	}

	label := 0
	counts := make(map[int]int)
	for i, ok := range passable {
		if !ok || labels[i] != -1 {
			continue
		}
		queue := []int{i}
		labels[i] = label
		size := 0
		for len(queue) > 0 {
			cur := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			size++
			for _, n := range adj[cur] {
				if passable[n] && labels[n] == -1 {
					labels[n] = label
					queue = append(queue, n)
				}
			}
		}
		counts[label] = size
		label++
	}

	largest, bestSize := -1, 0
	for l, size := range counts {
		if size > bestSize {
			bestSize = size
			largest = l
		}
	}
	return labels, largest
}
