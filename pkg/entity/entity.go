// Package entity implements the Entity Kernel: the per-tick data and motion
// primitives shared by every agent and spawner in a game, addressed by
// stable integer id rather than pointer (spec §9's arena-of-ids pattern).
package entity

import (
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/pathfind"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/rrt"

	bt "github.com/joeycumines/go-behaviortree"
)

// Team is 0 or 1; there are exactly two teams in a game.
type Team int

// Kind distinguishes the two tagged variants of Entity: a mobile Agent or a
// stationary, resource-accumulating Spawner.
type Kind int

const (
	KindAgent Kind = iota
	KindSpawner
)

// TargetKind tags what an Agent's Target currently refers to.
type TargetKind int

const (
	NoTarget TargetKind = iota
	TargetEntity
	TargetPosition
)

// Target is an agent's current aim point: either another entity (tracked by
// id, so it survives that entity moving) or a fixed position.
type Target struct {
	Kind     TargetKind
	EntityID int
	Pos      geometry.Vector2D
}

// TraceLimit bounds the agent's rendered motion trail (spec §3).
const TraceLimit = 100

// Entity is the tagged Agent|Spawner variant of spec §3, flattened into one
// struct: Spawner-only and Agent-only fields simply sit unused on the other
// variant, the same shape the teacher's own Entity struct uses for its
// network/local field split.
type Entity struct {
	ID       int
	Team     Team
	Kind     Kind
	Pos      geometry.Vector2D
	Active   bool
	Health   int
	Resource int

	// Agent-only.
	Orient      float64
	Steer       float64
	Speed       float64
	Class       Class
	Target      Target
	Goal        *geometry.Vector2D
	Path        pathfind.Path
	SearchState *rrt.SearchState
	AvoidanceSampler rrt.SamplerKind
	Cooldown    float64
	Blackboard  map[string]interface{}

	// SpawnerID ties an Agent back to the Spawner that built it (spec §9:
	// ids everywhere, no cross-entity pointers).
	SpawnerID int

	trace []geometry.Vector2D

	// BehaviorTree is the root bt.Node ticked once per tick by the Game
	// Loop; nil until a behavior-tree source is successfully parsed for
	// this entity.
	BehaviorTree bt.Node
}

// NewAgent constructs an active agent of the given class at full health.
func NewAgent(id int, team Team, class Class, pos geometry.Vector2D, orient float64) *Entity {
	return &Entity{
		ID:               id,
		Team:             team,
		Kind:             KindAgent,
		Pos:              pos,
		Orient:           orient,
		Active:           true,
		Health:           class.MaxHealth(),
		Class:            class,
		AvoidanceSampler: class.AvoidanceSampler(),
		Blackboard:       make(map[string]interface{}),
	}
}

// NewSpawner constructs a spawner entity.
func NewSpawner(id int, team Team, pos geometry.Vector2D, maxHealth int) *Entity {
	return &Entity{
		ID:         id,
		Team:       team,
		Kind:       KindSpawner,
		Pos:        pos,
		Active:     true,
		Health:     maxHealth,
		Blackboard: make(map[string]interface{}),
	}
}

// Trace returns the agent's bounded motion trail, most recent position
// last. Exposed for renderers (SPEC_FULL supplemented feature: agent trace
// rendering data); empty for spawners.
func (e *Entity) Trace() []geometry.Vector2D {
	return e.trace
}

func (e *Entity) pushTrace(pos geometry.Vector2D) {
	e.trace = append(e.trace, pos)
	if len(e.trace) > TraceLimit {
		e.trace = e.trace[len(e.trace)-TraceLimit:]
	}
}

// Damage applies dmg to the entity's health, deactivating it at 0 (spec
// §4.9 step 4 for agents, §4.6 for spawners — both use the same rule).
func (e *Entity) Damage(dmg int) {
	e.Health -= dmg
	if e.Health <= 0 {
		e.Health = 0
		e.Active = false
	}
}

// Shape returns the entity's current collision OBB. Spawners are modeled
// as a fixed-size square regardless of class (they have none).
func (e *Entity) Shape() geometry.OBB {
	if e.Kind == KindSpawner {
		return geometry.OBB{Center: e.Pos, Xs: 1, Ys: 1, Orient: 0}
	}
	return e.Class.Shape(e.Pos, e.Orient)
}
