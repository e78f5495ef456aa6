package rrt

import (
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
)

// CollisionCheck reports whether moving in a straight line from `from` to
// `to` would hit an obstacle or another entity. Implemented by the caller
// (the Entity Kernel), since only it knows the board and the other entities.
type CollisionCheck func(from, to AgentState) bool

// SearchState is the RRT search tree built while steering one entity around
// obstacles toward its goal.
type SearchState struct {
	Tree      []StateWithCost
	StartSet  map[int]bool
	Goal      AgentState
	FoundPath []int // indices into Tree, goal-first

	rnd *rand.Rand
}

// NewSearchState seeds a fresh search tree rooted at start.
func NewSearchState(seed uint64, start AgentState, goal AgentState) *SearchState {
	root := StateWithCost{State: start, From: -1}
	return &SearchState{
		Tree:     []StateWithCost{root},
		StartSet: map[int]bool{0: true},
		Goal:     goal,
		rnd:      rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb)),
	}
}

// GoalStale reports whether the tracked goal has diverged enough from a
// fresh goal that the search tree should be discarded and restarted.
func (ss *SearchState) GoalStale(freshGoal AgentState) bool {
	return !compareState(ss.Goal, freshGoal)
}

// checkGoal walks cost-ancestry from `from` up to the nearest start-set
// node, returning the path (goal-first then back through the tree) if every
// intermediate node is still passable and `from` is close enough to Goal.
func (ss *SearchState) checkGoal(from int) []int {
	if !compareDistance(ss.Tree[from].State, ss.Goal, (DistRadius*2)*(DistRadius*2)) {
		return nil
	}
	var path []int
	node := from
	for {
		next := ss.Tree[node].From
		if next < 0 {
			break
		}
		if !ss.Tree[next].Passable() {
			return nil
		}
		path = append(path, next)
		if ss.StartSet[next] {
			break
		}
		node = next
	}
	return path
}

// Expand runs one RRT expansion step from `start`, sampling a candidate
// state with sampler, merging it into an existing nearby node if one
// exists, and otherwise appending a new node to the tree (subject to
// collide rejecting the edge). It returns the found path (see checkGoal) if
// the expansion reaches the goal.
func (ss *SearchState) Expand(start int, direction float64, sampler Sampler, collide CollisionCheck) []int {
	if path := ss.checkGoal(start); path != nil {
		ss.FoundPath = path
		return path
	}

	startIdx, candidate, nextDirection, ok := sampler.Sample(ss.rnd, ss.Tree, start, direction, collide)
	if !ok {
		return nil
	}
	_ = nextDirection
	startNode := ss.Tree[startIdx]

	for i, existing := range ss.Tree {
		if !compareState(existing.State, candidate.State) {
			continue
		}
		if existing.From < 0 {
			continue
		}
		if i == startIdx || existing.From == startIdx {
			ss.Tree[i].Blocked = false
			return nil
		}
		distance := startNode.State.Pos().DistanceTo(candidate.State.Pos())
		shortcutCost := sampler.CalculateCost(startNode.Cost, distance)
		if existing.Cost > shortcutCost && !collide(startNode.State, existing.State) {
			ss.Tree[i].Cost = shortcutCost
			ss.Tree[i].From = startIdx
			ss.Tree[startIdx].To = append(ss.Tree[startIdx].To, i)
		}
		return nil
	}

	if collide(startNode.State, candidate.State) {
		return nil
	}

	candidate.From = startIdx
	newIdx := len(ss.Tree)
	ss.Tree = append(ss.Tree, candidate)
	ss.Tree[startIdx].To = append(ss.Tree[startIdx].To, newIdx)
	sampler.Rewire(ss.Tree, newIdx, collide)
	if path := ss.checkGoal(newIdx); path != nil {
		ss.FoundPath = path
		return path
	}
	return nil
}

// PruneUnreachable marks every node no longer reachable from the current
// start set as pruned, so a stale branch (e.g. one left behind after the
// agent advances along its path) is excluded from future goal checks without
// being physically removed from the tree.
func (ss *SearchState) PruneUnreachable() {
	reachable := make(map[int]bool, len(ss.Tree))
	var stack []int
	for s := range ss.StartSet {
		reachable[s] = true
		stack = append(stack, s)
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, to := range ss.Tree[cur].To {
			if !reachable[to] {
				reachable[to] = true
				stack = append(stack, to)
			}
		}
	}
	for i := range ss.Tree {
		if !reachable[i] {
			ss.Tree[i].Pruned = true
		}
	}
}

// CheckAvoidanceCollision replays every edge of the currently found path
// against the latest collision check, called once per tick before the agent
// drives along it. Any edge that now collides has both endpoints marked
// Blocked so future goal checks route around it, and unreachable nodes are
// cost-inflated so they won't be selected as a cheaper parent while a fresh
// path is searched. It returns true if the found path was invalidated and
// should be cleared.
func (ss *SearchState) CheckAvoidanceCollision(collide CollisionCheck) bool {
	if ss.FoundPath == nil {
		return false
	}
	invalidated := false
	for i := 0; i+1 < len(ss.FoundPath); i++ {
		from := ss.Tree[ss.FoundPath[i+1]]
		to := ss.Tree[ss.FoundPath[i]]
		if collide(from.State, to.State) {
			ss.Tree[ss.FoundPath[i+1]].Blocked = true
			ss.Tree[ss.FoundPath[i]].Blocked = true
			invalidated = true
		}
	}
	if !invalidated {
		return false
	}
	ss.bumpUnreachableCost()
	ss.FoundPath = nil
	return true
}

// bumpUnreachableCost raises the recorded cost of any node made unreachable
// by a blocked edge to a value high enough it will never be preferred as a
// shortcut parent, without physically deleting it from the tree.
const unreachableCost = 1e8

func (ss *SearchState) bumpUnreachableCost() {
	reachable := make(map[int]bool, len(ss.Tree))
	var stack []int
	for s := range ss.StartSet {
		reachable[s] = true
		stack = append(stack, s)
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if ss.Tree[cur].Blocked {
			continue
		}
		for _, to := range ss.Tree[cur].To {
			if !reachable[to] {
				reachable[to] = true
				stack = append(stack, to)
			}
		}
	}
	for i := range ss.Tree {
		if !reachable[i] {
			ss.Tree[i].Cost = unreachableCost
		}
	}
}

// AvoidancePath returns the currently found path as driveable waypoints,
// goal-first (index 0 nearest the goal, the last entry nearest the current
// start set), or nil if no path has been found yet.
func (ss *SearchState) AvoidancePath() []PathNode {
	if ss.FoundPath == nil {
		return nil
	}
	out := make([]PathNode, len(ss.FoundPath))
	for i, idx := range ss.FoundPath {
		out[i] = ss.Tree[idx].ToPathNode()
	}
	return out
}

// AdvanceIfReached pops the waypoint nearest the current start set (the
// last entry of FoundPath) once pos comes within DistRadius of it, folding
// that node into StartSet and pruning anything no longer reachable. It
// reports whether a waypoint was consumed.
func (ss *SearchState) AdvanceIfReached(pos geometry.Vector2D) bool {
	if len(ss.FoundPath) == 0 {
		return false
	}
	last := ss.FoundPath[len(ss.FoundPath)-1]
	if !compareDistance(ss.Tree[last].State, AgentState{X: pos.X, Y: pos.Y}, distThreshold) {
		return false
	}
	ss.FoundPath = ss.FoundPath[:len(ss.FoundPath)-1]
	ss.StartSet[last] = true
	ss.PruneUnreachable()
	return true
}
