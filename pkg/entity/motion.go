package entity

import (
	"math"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
)

// WheelBase is the bicycle-model wheelbase used by Drive's heading update.
const WheelBase = 1.0

// AngleSpeed is how fast OrientTo rotates an agent toward a desired
// heading, in radians per tick.
const AngleSpeed = math.Pi / 50

// MaxSteerClamp bounds the Steer field Drive reads for its heading update.
const MaxSteerClamp = math.Pi / 4

// Collide reports whether candidate, the entity's shape after a proposed
// move, intersects any other entity's current shape. Implemented by the
// caller (the Game Loop has the full entity list; the Entity Kernel does
// not).
type Collide func(candidate geometry.OBB) bool

// Passable reports whether pos sits on a passable grid cell. Implemented
// by the caller against the game's immutable board.
type Passable func(pos geometry.Vector2D) bool

func clampAbs(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// Drive advances the agent delta units along its current heading (clamped
// to the class's max speed), turning proportionally to the current Steer
// and Speed. It fails (returning false and zeroing Speed) without moving
// the entity if the resulting pose collides with another entity or lands
// on an impassable cell; otherwise it commits Pos/Orient/Speed and appends
// the previous position to the trace.
func Drive(e *Entity, delta float64, passable Passable, collide Collide) bool {
	maxSpeed := e.Class.Speed()
	clamped := clampAbs(delta, maxSpeed)

	forward := geometry.Vector2D{X: math.Cos(e.Orient), Y: math.Sin(e.Orient)}
	targetPos := e.Pos.Add(forward.Mul(clamped))
	newHeading := e.Orient + e.Speed*math.Tan(e.Steer)/WheelBase

	candidate := geometry.OBB{Center: targetPos, Xs: e.Class.HalfLength(), Ys: e.Class.HalfWidth(), Orient: newHeading}
	if !passable(targetPos) || collide(candidate) {
		e.Speed = 0
		return false
	}

	prev := e.Pos
	e.Pos = targetPos
	e.Orient = newHeading
	e.Speed = clamped
	e.pushTrace(prev)
	return true
}

// OrientResult is the outcome of one OrientTo step.
type OrientResult int

const (
	Approaching OrientResult = iota
	Arrived
	Blocked
)

// OrientTo rotates the agent one step toward facing target (or away from it,
// if backward), clamping Steer to the remaining wrapped delta. It reports
// Arrived once the remaining delta is smaller than one step, or Blocked if
// rotating into the new heading would collide with another entity.
func OrientTo(e *Entity, target geometry.Vector2D, backward bool, collide Collide) OrientResult {
	if e.Pos.Eq(target) {
		e.Steer = 0
		return Arrived
	}

	desired := e.Pos.AngleTo(target)
	if backward {
		desired = wrapAngle(desired + math.Pi)
	}
	delta := wrapAngle(desired - e.Orient)

	if math.Abs(delta) < AngleSpeed {
		e.Steer = 0
		return Arrived
	}

	step := AngleSpeed
	if delta < 0 {
		step = -step
	}
	newOrient := wrapAngle(e.Orient + step)
	e.Steer = clampAbs(delta, MaxSteerClamp)

	candidate := geometry.OBB{Center: e.Pos, Xs: e.Class.HalfLength(), Ys: e.Class.HalfWidth(), Orient: newOrient}
	if collide(candidate) {
		return Blocked
	}
	e.Orient = newOrient
	return Approaching
}

// MoveTo orients the agent toward target (or away, if backward) and, once
// oriented, drives once toward it. It returns false only when orienting or
// driving is blocked this tick; Approaching still counts as a committed,
// successful tick (the MoveTo BT node reports Success for it).
func MoveTo(e *Entity, target geometry.Vector2D, backward bool, passable Passable, collide Collide) (result OrientResult, committed bool) {
	result = OrientTo(e, target, backward, collide)
	if result == Blocked {
		return result, false
	}
	if result != Arrived {
		return result, true
	}
	dist := e.Pos.DistanceTo(target)
	if backward {
		dist = -dist
	}
	return Arrived, Drive(e, dist, passable, collide)
}

// FollowAvoidancePath drives the agent one step along its RRT search
// state's found path: if the next remaining waypoint has been reached, it
// is popped (advancing start_set); otherwise the agent is moved toward it.
// It reports false if there is no search state or no found path to follow.
func FollowAvoidancePath(e *Entity, passable Passable, collide Collide) bool {
	if e.SearchState == nil {
		return false
	}
	if e.SearchState.AdvanceIfReached(e.Pos) {
		return true
	}
	path := e.SearchState.AvoidancePath()
	if len(path) == 0 {
		return false
	}
	node := path[len(path)-1]
	_, committed := MoveTo(e, node.Pos(), node.Backward, passable, collide)
	return committed
}
