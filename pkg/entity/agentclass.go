package entity

import (
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/rrt"
)

// Class distinguishes the two agent archetypes a Spawner can produce.
// Each carries its own build cost, combat stats, and collision shape.
type Class int

const (
	Worker Class = iota
	Fighter
)

func (c Class) String() string {
	if c == Fighter {
		return "fighter"
	}
	return "worker"
}

// Physical constants. The upstream agent_class.rs module these are grounded
// on was not present in the retrieved original_source/ pack (only
// agent_class.rs's *method shapes* were recovered, not its constant table),
// so these values are a reconstruction chosen to produce plausible combat
// pacing (a fighter outduels a worker, a bullet crosses a 32-cell map in
// under ten ticks) rather than a transcription of the original numbers.
// Documented in DESIGN.md.
const (
	workerCost       = 10
	workerBuildTicks = 30
	workerMaxHealth  = 50
	workerDamage     = 0
	workerSpeed      = 0.5
	workerHalfLength = 0.5
	workerHalfWidth  = 0.35

	fighterCost       = 30
	fighterBuildTicks = 60
	fighterMaxHealth  = 100
	fighterDamage     = 10
	fighterSpeed      = 1.0
	fighterHalfLength = 0.6
	fighterHalfWidth  = 0.4

	bulletSpeed    = 5.0
	fighterCooldown = 20.0
)

// Cost returns the resource cost a Spawner must hold to build this class.
func (c Class) Cost() int {
	if c == Fighter {
		return fighterCost
	}
	return workerCost
}

// BuildTicks returns how many ticks a Spawner spends building this class.
func (c Class) BuildTicks() int {
	if c == Fighter {
		return fighterBuildTicks
	}
	return workerBuildTicks
}

// MaxHealth returns the class's starting/maximum health.
func (c Class) MaxHealth() int {
	if c == Fighter {
		return fighterMaxHealth
	}
	return workerMaxHealth
}

// Damage returns the damage a bullet fired by this class deals on hit.
// Workers cannot shoot (damage 0; Shoot is a no-op for them).
func (c Class) Damage() int {
	if c == Fighter {
		return fighterDamage
	}
	return workerDamage
}

// BulletSpeed returns the speed of bullets fired by this class.
func (c Class) BulletSpeed() float64 {
	return bulletSpeed
}

// Cooldown returns the reload time added after a shot.
func (c Class) Cooldown() float64 {
	if c == Fighter {
		return fighterCooldown
	}
	return 0
}

// Speed returns the class's nominal drive speed.
func (c Class) Speed() float64 {
	if c == Fighter {
		return fighterSpeed
	}
	return workerSpeed
}

// HalfLength and HalfWidth give the class's OBB half-extents along its
// forward axis and its perpendicular axis, respectively.
func (c Class) HalfLength() float64 {
	if c == Fighter {
		return fighterHalfLength
	}
	return workerHalfLength
}

func (c Class) HalfWidth() float64 {
	if c == Fighter {
		return fighterHalfWidth
	}
	return workerHalfWidth
}

// AvoidanceSampler returns the RRT sampler this class's agents steer local
// avoidance with, fixed at spawn time (spec §4.4: "selected at build time
// per agent"). Workers roam broadly gathering resources across an unmapped
// board, so they keep the default free-space sampler; fighters need tight,
// kinematically-respectful maneuvering while chasing or circling a target,
// so they use the kinematic sampler instead.
func (c Class) AvoidanceSampler() rrt.SamplerKind {
	if c == Fighter {
		return rrt.SamplerForwardKinematic
	}
	return rrt.SamplerSpace
}

// Shape returns the class's OBB centered at pos, oriented along orient.
func (c Class) Shape(pos geometry.Vector2D, orient float64) geometry.OBB {
	return geometry.OBB{Center: pos, Xs: c.HalfLength(), Ys: c.HalfWidth(), Orient: orient}
}

// Vertices returns the class's collision polygon in local space (forward
// axis is +X), for rendering and for the marching-squares-style shape tests
// callers run directly against vertex lists rather than the OBB. Worker is
// a rectangle; Fighter is a 12-vertex T-shape (a wide "wing" forward of a
// narrow "body"), matching the two silhouettes described in spec §4.6.
func (c Class) Vertices() []geometry.Vector2D {
	l, w := c.HalfLength(), c.HalfWidth()
	if c == Worker {
		return []geometry.Vector2D{
			{X: l, Y: w},
			{X: l, Y: -w},
			{X: -l, Y: -w},
			{X: -l, Y: w},
		}
	}

	// Fighter: a T-shape. The wing spans the full width over the front fifth
	// of the length; the body is a narrow spine running to the rear.
	wingL := l * 0.4
	wingW := w
	bodyW := w * 0.35
	return []geometry.Vector2D{
		{X: l, Y: wingW},
		{X: l, Y: -wingW},
		{X: l - wingL, Y: -wingW},
		{X: l - wingL, Y: -bodyW},
		{X: -l, Y: -bodyW},
		{X: -l, Y: -bodyW * 0.5},
		{X: l - wingL*1.5, Y: -bodyW * 0.5},
		{X: l - wingL*1.5, Y: bodyW * 0.5},
		{X: -l, Y: bodyW * 0.5},
		{X: -l, Y: bodyW},
		{X: l - wingL, Y: bodyW},
		{X: l - wingL, Y: wingW},
	}
}
