package geometry

import "math"

// OBB is an oriented bounding box: a center, half-extents along its own
// local axes, and a rotation (radians) of those axes relative to world X.
type OBB struct {
	Center Vector2D
	Xs     float64
	Ys     float64
	Orient float64
}

// BoundingCircle is a coarse circular bound used to cheaply prune
// far-apart shapes before the more expensive separating-axis test runs.
type BoundingCircle struct {
	Center Vector2D
	Radius float64
}

// Vertices returns the four corners of the box in world space, starting
// from the bottom-left corner in local space and winding clockwise.
func (o OBB) Vertices() [4]Vector2D {
	local := [4]Vector2D{
		{X: -o.Xs, Y: -o.Ys},
		{X: -o.Xs, Y: o.Ys},
		{X: o.Xs, Y: o.Ys},
		{X: o.Xs, Y: -o.Ys},
	}
	for i, v := range local {
		local[i] = v.Rotate(o.Orient).Add(o.Center)
	}
	return local
}

// BoundingCircle returns the smallest circle containing the box, centered
// on the box's own center.
func (o OBB) BoundingCircle() BoundingCircle {
	return BoundingCircle{Center: o.Center, Radius: math.Hypot(o.Xs, o.Ys)}
}

// Translated returns a copy of the box shifted by offset.
func (o OBB) Translated(offset Vector2D) OBB {
	o.Center = o.Center.Add(offset)
	return o
}

// Oriented returns a copy of the box with a new orientation.
func (o OBB) Oriented(orient float64) OBB {
	o.Orient = orient
	return o
}

// Intersects runs the separating-axis test in both directions: true only
// when neither box's local axes separate the two shapes.
func (o OBB) Intersects(other OBB) bool {
	return o.intersectsOneWay(other) && other.intersectsOneWay(o)
}

// intersectsOneWay projects other's vertices onto o's local axes and checks
// whether the projected range is disjoint from o's own half-extent range.
func (o OBB) intersectsOneWay(other OBB) bool {
	xNormal := Vector2D{X: 1, Y: 0}.Rotate(o.Orient)
	yNormal := Vector2D{X: 0, Y: 1}.Rotate(o.Orient)

	vertices := other.Vertices()
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, v := range vertices {
		rel := v.Sub(o.Center)
		xDot := rel.Dot(xNormal)
		yDot := rel.Dot(yNormal)
		xMin = math.Min(xMin, xDot)
		xMax = math.Max(xMax, xDot)
		yMin = math.Min(yMin, yDot)
		yMax = math.Max(yMax, yDot)
	}

	if o.Xs < xMin || xMax < -o.Xs || o.Ys < yMin || yMax < -o.Ys {
		return false
	}
	return true
}

// maxBsearchRecursions bounds bsearch_collision's bisection depth; beyond
// this depth the remaining sweep is resolved with a single static test.
const maxBsearchRecursions = 3

// BsearchCollision performs a swept collision test between two moving OBBs
// over one tick, recursively bisecting the relative displacement so a fast
// mover can't tunnel through a thin obstacle between samples. It returns
// whether a collision occurred and the bisection depth reached (the latter
// is informational only, used by callers purely for display).
func BsearchCollision(a OBB, veloA Vector2D, b OBB, veloB Vector2D) (hit bool, maxLevel int) {
	rel := veloA.Sub(veloB)
	hit, level := bsearchInternal(a, rel, b, 0)
	if hit {
		return true, level
	}
	if level == maxBsearchRecursions {
		// The recursive bisection bottomed out everywhere without a hit;
		// fall back to one static test over the whole displacement as a
		// final safety net against degenerate bisection paths.
		full := a.Translated(rel).Oriented(math.Atan2(rel.Y, rel.X))
		return full.Intersects(b), level
	}
	return false, level
}

func bsearchInternal(a OBB, rel Vector2D, b OBB, level int) (bool, int) {
	aCircle := a.BoundingCircle()
	bCircle := b.BoundingCircle()

	potentialRadius := rel.Len()/2 + aCircle.Radius + bCircle.Radius
	potentialCenter := rel.Mul(0.5).Add(aCircle.Center)

	distSqCenters := potentialCenter.Sub(bCircle.Center).LenSqr()
	if potentialRadius*potentialRadius < distSqCenters {
		return false, level
	}

	if level < maxBsearchRecursions {
		maxLevel := level
		if hit, hitLevel := bsearchInternal(a, rel.Mul(0.5), b, level+1); hit {
			return true, hitLevel
		} else if hitLevel > maxLevel {
			maxLevel = hitLevel
		}

		halfShifted := a.Translated(rel.Mul(0.5))
		if hit, hitLevel := bsearchInternal(halfShifted, rel.Mul(0.5), b, level+1); hit {
			return true, hitLevel
		} else if hitLevel > maxLevel {
			maxLevel = hitLevel
		}
		return false, maxLevel
	}

	oriented := a.Oriented(math.Atan2(rel.Y, rel.X))
	return oriented.Intersects(b), level
}
