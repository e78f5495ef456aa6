package rrt

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
)

// Sampler proposes a candidate next state for one RRT expansion step. Unlike
// a plain random-walk sampler, the node it extends from (startIdx) need not
// be the index the caller passed in: a free-space sampler discovers the
// nearest existing tree node to wherever it samples and reports that index
// back instead. ok is false when no viable candidate exists this step (e.g.
// every existing node is blocked, or no collision-free parent exists in
// range).
type Sampler interface {
	Sample(rnd *rand.Rand, tree []StateWithCost, start int, direction float64, collide CollisionCheck) (startIdx int, next StateWithCost, nextDirection float64, ok bool)
	CalculateCost(startCost, distance float64) float64

	// Rewire re-parents any existing node that would become cheaper by
	// routing through the node just inserted at newIdx. The default is a
	// no-op; only RrtStarSampler does anything here.
	Rewire(tree []StateWithCost, newIdx int, collide CollisionCheck)
}

// SamplerKind names one of the three interchangeable samplers, so an entity
// can be bound to a choice without importing rand/sampler internals.
type SamplerKind int

const (
	// SamplerSpace explores uniformly across the whole board. It is the
	// default: slower per-step progress toward a specific goal, but it
	// fills free space and escapes local minima the other two can get
	// stuck in near cluttered obstacles.
	SamplerSpace SamplerKind = iota
	// SamplerForwardKinematic samples in control space: cheap, and
	// naturally respects the agent's own kinematics, but covers space
	// slowly and can thrash near a wall.
	SamplerForwardKinematic
	// SamplerRrtStar behaves like SamplerSpace but additionally rewires
	// the tree toward lower-cost parents as it grows, trading extra
	// per-step work for a straighter final path.
	SamplerRrtStar
)

// NewSampler builds the sampler bound to kind, sized to a w x h board.
func NewSampler(kind SamplerKind, w, h float64) Sampler {
	switch kind {
	case SamplerForwardKinematic:
		return ForwardKinematicSampler{SwitchBack: true}
	case SamplerRrtStar:
		return RrtStarSampler{W: w, H: h}
	default:
		return SpaceSampler{W: w, H: h}
	}
}

// steerDistance bounds how far one free-space expansion step may travel from
// the tree node it extends, regardless of how far the sampled point actually
// is (spec §4.4's "steer toward it by at most 2.5*DIST_RADIUS").
const steerDistance = DistRadius * 2.5

// nearestNode returns the passable tree node closest to pos, by squared
// distance (no point taking the square root just to compare).
func nearestNode(tree []StateWithCost, pos geometry.Vector2D) (idx int, node StateWithCost, ok bool) {
	best := math.Inf(1)
	bestIdx := -1
	for i, n := range tree {
		if !n.Passable() {
			continue
		}
		d := n.State.Pos().DistanceSquaredTo(pos)
		if d < best {
			best, bestIdx = d, i
		}
	}
	if bestIdx < 0 {
		return 0, StateWithCost{}, false
	}
	return bestIdx, tree[bestIdx], true
}

func signOf(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// ForwardKinematicSampler samples in control space: pick a random steering
// angle and distance, then integrate the agent's kinematic model one step.
// It occasionally reverses direction when switchBack is enabled, at a cost
// penalty so reversal is only taken when it meaningfully shortens the path.
type ForwardKinematicSampler struct {
	SwitchBack bool
}

const directionChangeCost = 10000

func (s ForwardKinematicSampler) Sample(rnd *rand.Rand, tree []StateWithCost, start int, direction float64, collide CollisionCheck) (int, StateWithCost, float64, bool) {
	startNode := tree[start]
	changeDirection := s.SwitchBack && rnd.Float64() < 0.2
	nextDirection := direction
	if changeDirection {
		nextDirection = -direction
	}
	steer := rnd.Float64() - 0.5
	distance := DistRadius*2 + rnd.Float64()*DistRadius*3
	next := StepMove(startNode.State.X, startNode.State.Y, startNode.State.Heading, steer, nextDirection*distance)
	cost := s.CalculateCost(startNode.Cost, distance)
	if changeDirection {
		cost += directionChangeCost
	}
	return start, StateWithCost{State: next, Cost: cost, Speed: nextDirection, Steer: steer}, nextDirection, true
}

func (s ForwardKinematicSampler) CalculateCost(startCost, distance float64) float64 {
	return startCost + distance
}

func (s ForwardKinematicSampler) Rewire([]StateWithCost, int, CollisionCheck) {}

// SpaceSampler samples uniformly across the whole board instead of from the
// agent's kinematic neighborhood: draw a random point, find the tree node
// nearest it, and steer toward the point by at most steerDistance.
type SpaceSampler struct {
	W, H float64
}

func (s SpaceSampler) Sample(rnd *rand.Rand, tree []StateWithCost, start int, direction float64, collide CollisionCheck) (int, StateWithCost, float64, bool) {
	target := geometry.Vector2D{X: rnd.Float64() * s.W, Y: rnd.Float64() * s.H}
	nearIdx, near, ok := nearestNode(tree, target)
	if !ok {
		return 0, StateWithCost{}, direction, false
	}

	closest := near.State.Pos()
	dist := math.Min(closest.DistanceTo(target), steerDistance)
	position := closest.Add(target.Sub(closest).Normalize().Mul(dist))

	nextDirection := signOf(near.Speed)
	state := AgentState{X: position.X, Y: position.Y, Heading: near.State.Heading}
	cost := s.CalculateCost(near.Cost, dist)
	return nearIdx, StateWithCost{State: state, Cost: cost, Speed: nextDirection}, nextDirection, true
}

func (s SpaceSampler) CalculateCost(startCost, distance float64) float64 {
	return startCost + distance
}

func (s SpaceSampler) Rewire([]StateWithCost, int, CollisionCheck) {}

// RewireDistance bounds how far RrtStarSampler looks for a cheaper parent
// (and for existing nodes to rewire through the new one).
const RewireDistance = DistRadius * 3

// RrtStarSampler behaves like SpaceSampler but additionally searches the
// existing tree for a cheaper parent than the nearest node within
// RewireDistance, and re-parents nearby nodes through the new one (via
// Rewire) whenever that lowers their cost.
type RrtStarSampler struct {
	W, H float64
}

func (s RrtStarSampler) Sample(rnd *rand.Rand, tree []StateWithCost, start int, direction float64, collide CollisionCheck) (int, StateWithCost, float64, bool) {
	target := geometry.Vector2D{X: rnd.Float64() * s.W, Y: rnd.Float64() * s.H}
	nearIdx, near, ok := nearestNode(tree, target)
	if !ok {
		return 0, StateWithCost{}, direction, false
	}

	closest := near.State.Pos()
	dist := math.Min(closest.DistanceTo(target), steerDistance)
	position := closest.Add(target.Sub(closest).Normalize().Mul(dist))
	nextDirection := signOf(near.Speed)
	state := AgentState{X: position.X, Y: position.Y, Heading: near.State.Heading}

	parentIdx, parentCost, ok := BestParent(tree, state, collide)
	if !ok {
		return 0, StateWithCost{}, direction, false
	}
	_ = nearIdx
	return parentIdx, StateWithCost{State: state, Cost: s.CalculateCost(parentCost, dist), Speed: nextDirection}, nextDirection, true
}

func (s RrtStarSampler) CalculateCost(startCost, distance float64) float64 {
	return startCost + distance
}

func (s RrtStarSampler) Rewire(tree []StateWithCost, newIdx int, collide CollisionCheck) {
	rewireTree(tree, newIdx, collide)
}

// BestParent scans tree for the cheapest node within RewireDistance of
// candidate that can reach it without colliding, returning its index and the
// cost of reaching candidate through it. ok is false if no such node exists
// (the caller should fall back to parenting through start).
func BestParent(tree []StateWithCost, candidate AgentState, collide CollisionCheck) (idx int, cost float64, ok bool) {
	best := math.Inf(1)
	bestIdx := -1
	for i, node := range tree {
		if !node.Passable() {
			continue
		}
		if !compareDistance(node.State, candidate, RewireDistance*RewireDistance) {
			continue
		}
		d := candidate.Pos().DistanceTo(node.State.Pos())
		c := node.Cost + d
		if c < best && !collide(node.State, candidate) {
			best = c
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return 0, 0, false
	}
	return bestIdx, best, true
}

// rewireTree re-parents any node within RewireDistance of newIdx that would
// become cheaper by routing through it, returning the indices changed.
func rewireTree(tree []StateWithCost, newIdx int, collide CollisionCheck) []int {
	newNode := tree[newIdx]
	var changed []int
	for i := range tree {
		if i == newIdx || !tree[i].Passable() {
			continue
		}
		if !compareDistance(tree[i].State, newNode.State, RewireDistance*RewireDistance) {
			continue
		}
		d := tree[i].State.Pos().DistanceTo(newNode.State.Pos())
		candidateCost := newNode.Cost + d
		if candidateCost < tree[i].Cost && !collide(newNode.State, tree[i].State) {
			tree[i].Cost = candidateCost
			tree[i].From = newIdx
			tree[newIdx].To = append(tree[newIdx].To, i)
			changed = append(changed, i)
		}
	}
	return changed
}
