// Package rrt implements the RRT-family local motion planner used to steer
// an entity around nearby obstacles and other entities when the quadtree
// A* route isn't fine-grained enough to avoid a collision by itself.
package rrt

import (
	"math"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
)

// AgentState is a kinematic state: position plus heading.
type AgentState struct {
	X, Y    float64
	Heading float64
}

// Pos returns the position component as a Vector2D.
func (s AgentState) Pos() geometry.Vector2D {
	return geometry.Vector2D{X: s.X, Y: s.Y}
}

// WithHeading returns a copy of s with a different heading.
func (s AgentState) WithHeading(h float64) AgentState {
	s.Heading = h
	return s
}

// PathNode is one step of a planned path: a position and whether it must be
// driven to in reverse.
type PathNode struct {
	X, Y     float64
	Backward bool
}

// Pos returns the position component as a Vector2D.
func (n PathNode) Pos() geometry.Vector2D {
	return geometry.Vector2D{X: n.X, Y: n.Y}
}

// DistRadius is the node-merge / goal-reached radius: two states closer than
// this (and within 30 degrees of heading) are treated as the same node.
const DistRadius = 0.5 * 3

const distThreshold = DistRadius * DistRadius

// MaxSteer bounds the steering angle contribution per step.
const MaxSteer = math.Pi / 3

func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func compareDistance(a, b AgentState, thresholdSqr float64) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx+dy*dy < thresholdSqr
}

func compareState(a, b AgentState) bool {
	deltaAngle := wrapAngle(a.Heading - b.Heading)
	return compareDistance(a, b, distThreshold) && math.Abs(deltaAngle) < math.Pi/6
}

// StateWithCost is one node of the RRT search tree.
type StateWithCost struct {
	State    AgentState
	Cost     float64
	Speed    float64
	Steer    float64
	MaxLevel int // bisection depth reached by collision checking; display only
	From     int // index into the tree's node slice, -1 for the root
	To       []int
	Pruned   bool
	Blocked  bool
}

// Passable reports whether this node can still be used as a path waypoint.
func (s StateWithCost) Passable() bool {
	return !s.Blocked && !s.Pruned
}

// ToPathNode converts a tree node into a path waypoint.
func (s StateWithCost) ToPathNode() PathNode {
	return PathNode{X: s.State.X, Y: s.State.Y, Backward: s.Speed < 0}
}

// StepMove integrates one kinematic step of a bicycle-like model: forward
// distance `motion` along the current heading, biased by `steer` (clamped to
// [-1, 1]) scaled by MaxSteer.
func StepMove(px, py, heading, steer, motion float64) AgentState {
	s := math.Max(-1, math.Min(1, steer))
	heading = heading + s*motion*0.2*MaxSteer
	dx := math.Cos(heading)*motion + px
	dy := math.Sin(heading)*motion + py
	return AgentState{X: dx, Y: dy, Heading: heading}
}
