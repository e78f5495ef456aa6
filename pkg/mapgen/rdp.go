package mapgen

import "github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"

// perpendicularDistance returns the distance from point to the infinite line
// through line[0] and line[1].
func perpendicularDistance(point geometry.Vector2D, line [2]geometry.Vector2D) float64 {
	org := line[0]
	deltaP := point.Sub(org)
	deltaL := line[1].Sub(org)
	if deltaL.LenSqr() == 0 {
		return deltaP.Len()
	}
	deltaL = deltaL.Normalize()
	dot := deltaP.Dot(deltaL)
	delta := deltaP.Sub(deltaL.Mul(dot))
	return delta.Len()
}

// RDP simplifies an open polyline with the Ramer-Douglas-Peucker algorithm,
// dropping vertices that lie within epsilon of the chord between their
// neighbors. Points with fewer than 3 vertices are returned unchanged.
func RDP(points []geometry.Vector2D, epsilon float64) []geometry.Vector2D {
	if len(points) <= 2 {
		out := make([]geometry.Vector2D, len(points))
		copy(out, points)
		return out
	}

	end := len(points) - 1
	dmax := 0.0
	index := 0
	for i := 1; i < end; i++ {
		d := perpendicularDistance(points[i], [2]geometry.Vector2D{points[0], points[end]})
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if dmax > epsilon {
		left := RDP(points[:index+1], epsilon)
		right := RDP(points[index:], epsilon)
		out := make([]geometry.Vector2D, 0, len(left)+len(right)-1)
		out = append(out, left[:len(left)-1]...)
		out = append(out, right...)
		return out
	}
	return []geometry.Vector2D{points[0], points[end]}
}
