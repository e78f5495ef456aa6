package rrt

import (
	"math/rand/v2"
	"testing"
)

func TestStepMove_IntegratesForward(t *testing.T) {
	next := StepMove(0, 0, 0, 0, 5)
	if next.X <= 0 {
		t.Fatalf("expected forward motion along heading 0 to increase X, got %v", next)
	}
}

func TestSearchState_ExpandFindsTrivialGoal(t *testing.T) {
	start := AgentState{X: 0, Y: 0, Heading: 0}
	goal := AgentState{X: 0.1, Y: 0.1, Heading: 0}
	ss := NewSearchState(1, start, goal)

	noCollision := func(from, to AgentState) bool { return false }
	path := ss.checkGoal(0)
	if path != nil {
		t.Fatalf("goal check before any expansion should need the start set, got %v", path)
	}
	// start is already within DistRadius*2 of goal, so expansion should
	// report the trivial path immediately via checkGoal.
	sampler := ForwardKinematicSampler{}
	_ = ss.Expand(0, 1, sampler, noCollision)
	if p := ss.checkGoal(0); p == nil {
		t.Fatalf("expected start to satisfy the goal distance check")
	}
}

func TestSearchState_PruneUnreachable(t *testing.T) {
	ss := NewSearchState(2, AgentState{}, AgentState{})
	ss.Tree = append(ss.Tree, StateWithCost{From: 0})
	ss.Tree[0].To = []int{1}
	ss.Tree = append(ss.Tree, StateWithCost{From: -1})
	ss.PruneUnreachable()
	if ss.Tree[1].Pruned {
		t.Fatalf("node reachable from start set must not be pruned")
	}
	if !ss.Tree[2].Pruned {
		t.Fatalf("node unreachable from start set must be pruned")
	}
}

func TestCheckAvoidanceCollision_InvalidatesBlockedEdge(t *testing.T) {
	ss := NewSearchState(3, AgentState{}, AgentState{X: 1})
	ss.Tree = append(ss.Tree, StateWithCost{State: AgentState{X: 1}, From: 0})
	ss.StartSet[0] = true
	ss.FoundPath = []int{1, 0}

	blockEverything := func(from, to AgentState) bool { return true }
	if !ss.CheckAvoidanceCollision(blockEverything) {
		t.Fatalf("expected a blocked edge to invalidate the found path")
	}
	if ss.FoundPath != nil {
		t.Fatalf("expected FoundPath to be cleared after invalidation")
	}
	if !ss.Tree[1].Blocked {
		t.Fatalf("expected the far endpoint to be marked blocked")
	}
}

func TestRrtStarSampler_BestParentPrefersCheaper(t *testing.T) {
	tree := []StateWithCost{
		{State: AgentState{X: 0, Y: 0}, Cost: 0},
		{State: AgentState{X: 0.2, Y: 0}, Cost: 100},
	}
	noCollision := func(from, to AgentState) bool { return false }
	idx, cost, ok := BestParent(tree, AgentState{X: 0.3, Y: 0}, noCollision)
	if !ok {
		t.Fatalf("expected a parent within RewireDistance")
	}
	if idx != 0 {
		t.Fatalf("expected the lower-total-cost root node to win, got idx=%d cost=%v", idx, cost)
	}
}

func TestSpaceSampler_StaysInBounds(t *testing.T) {
	s := SpaceSampler{W: 10, H: 10}
	rnd := rand.New(rand.NewPCG(1, 2))
	tree := []StateWithCost{{State: AgentState{X: 1, Y: 1}}}
	noCollision := func(from, to AgentState) bool { return false }
	_, next, _, ok := s.Sample(rnd, tree, 0, 1, noCollision)
	if !ok {
		t.Fatalf("expected a candidate from a single-node tree")
	}
	if next.State.X < 0 || next.State.X > 10 || next.State.Y < 0 || next.State.Y > 10 {
		t.Fatalf("expected sample within board bounds, got %v", next.State)
	}
}

// SpaceSampler must steer toward the sampled point by at most steerDistance
// from the nearest existing node, never jump straight to the raw random
// point (spec §4.4's "steer toward it by at most 2.5*DIST_RADIUS").
func TestSpaceSampler_StepIsBoundedBySteerDistance(t *testing.T) {
	s := SpaceSampler{W: 1000, H: 1000}
	rnd := rand.New(rand.NewPCG(7, 9))
	tree := []StateWithCost{{State: AgentState{X: 500, Y: 500}}}
	noCollision := func(from, to AgentState) bool { return false }
	for i := 0; i < 50; i++ {
		nearIdx, next, _, ok := s.Sample(rnd, tree, 0, 1, noCollision)
		if !ok {
			t.Fatalf("expected a candidate")
		}
		if nearIdx != 0 {
			t.Fatalf("single-node tree must always report node 0 as nearest, got %d", nearIdx)
		}
		d := next.State.Pos().DistanceTo(tree[0].State.Pos())
		if d > steerDistance+1e-9 {
			t.Fatalf("step distance %v exceeds steerDistance %v", d, steerDistance)
		}
	}
}

// SpaceSampler must pick whichever tree node is actually nearest the sampled
// point, not always the node the caller happened to pass as start.
func TestSpaceSampler_PicksNearestNodeNotGivenStart(t *testing.T) {
	s := SpaceSampler{W: 10, H: 10}
	rnd := rand.New(rand.NewPCG(3, 4))
	tree := []StateWithCost{
		{State: AgentState{X: 9, Y: 9}},
		{State: AgentState{X: 0, Y: 0}},
	}
	noCollision := func(from, to AgentState) bool { return false }
	// Sample many times; since tree[1] is at the origin and samples are
	// uniform over [0,10]x[0,10], it must win "nearest" a substantial
	// fraction of draws despite start always being passed as 0.
	sawOther := false
	for i := 0; i < 200; i++ {
		nearIdx, _, _, ok := s.Sample(rnd, tree, 0, 1, noCollision)
		if !ok {
			t.Fatalf("expected a candidate")
		}
		if nearIdx == 1 {
			sawOther = true
			break
		}
	}
	if !sawOther {
		t.Fatalf("expected nearest-node search to ever select a node other than the passed-in start")
	}
}

func TestRrtStarSampler_SampleWiresThroughBestParent(t *testing.T) {
	s := RrtStarSampler{W: 10, H: 10}
	rnd := rand.New(rand.NewPCG(5, 6))
	tree := []StateWithCost{
		{State: AgentState{X: 0, Y: 0}, Cost: 0},
	}
	noCollision := func(from, to AgentState) bool { return false }
	_, next, _, ok := s.Sample(rnd, tree, 0, 1, noCollision)
	if !ok {
		t.Fatalf("expected a candidate with a single passable root and no collisions")
	}
	if next.Cost <= 0 {
		t.Fatalf("expected a positive cost accumulated from the root, got %v", next.Cost)
	}
}

func TestRrtStarSampler_SampleFailsWhenEveryEdgeCollides(t *testing.T) {
	s := RrtStarSampler{W: 10, H: 10}
	rnd := rand.New(rand.NewPCG(5, 6))
	tree := []StateWithCost{
		{State: AgentState{X: 0, Y: 0}, Cost: 0},
	}
	blockEverything := func(from, to AgentState) bool { return true }
	if _, _, _, ok := s.Sample(rnd, tree, 0, 1, blockEverything); ok {
		t.Fatalf("expected no candidate when every edge to a parent collides")
	}
}

func TestRrtStarSampler_RewireLowersNeighborCost(t *testing.T) {
	tree := []StateWithCost{
		{State: AgentState{X: 0, Y: 0}, Cost: 0, From: -1},
		{State: AgentState{X: 1, Y: 0}, Cost: 1000, From: 0},
	}
	noCollision := func(from, to AgentState) bool { return false }
	s := RrtStarSampler{W: 2, H: 2}
	s.Rewire(tree, 0, noCollision)
	if tree[1].From != 0 || tree[1].Cost >= 1000 {
		t.Fatalf("expected the expensive neighbor to be rewired through the cheaper node, got %+v", tree[1])
	}
}

func TestNewSampler_DefaultsToSpace(t *testing.T) {
	if _, ok := NewSampler(SamplerSpace, 10, 10).(SpaceSampler); !ok {
		t.Fatalf("expected SamplerSpace to build a SpaceSampler")
	}
	if _, ok := NewSampler(SamplerForwardKinematic, 10, 10).(ForwardKinematicSampler); !ok {
		t.Fatalf("expected SamplerForwardKinematic to build a ForwardKinematicSampler")
	}
	if _, ok := NewSampler(SamplerRrtStar, 10, 10).(RrtStarSampler); !ok {
		t.Fatalf("expected SamplerRrtStar to build an RrtStarSampler")
	}
}
