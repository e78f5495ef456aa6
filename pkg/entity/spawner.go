package entity

import "github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"

// SpawnerResourceCap is the per-tick accumulation ceiling (spec §4.6). It is
// well below the struct-level invariant of resource <= 300 (spec §3), so
// enforcing this cap also satisfies that invariant.
const SpawnerResourceCap = 100

// AccumulateResource adds one resource to a spawner, saturating at
// SpawnerResourceCap. A no-op on agents.
func (e *Entity) AccumulateResource() {
	if e.Kind != KindSpawner {
		return
	}
	e.Resource++
	if e.Resource > SpawnerResourceCap {
		e.Resource = SpawnerResourceCap
	}
}

// SpawnAgent attempts to build class from spawner sp, assigning it id. The
// caller supplies candidate, which proposes the attempt'th jittered spawn
// position (already restricted to the board's largest passable component)
// and reports whether it is free to use; SpawnAgent tries up to ten
// attempts before giving up silently (spec §7's PlacementFailure: no error,
// caller may retry on a future tick).
func SpawnAgent(sp *Entity, class Class, id int, candidate func(attempt int) (geometry.Vector2D, bool)) (*Entity, bool) {
	if sp.Kind != KindSpawner || !sp.Active || sp.Resource < class.Cost() {
		return nil, false
	}
	for attempt := 0; attempt < 10; attempt++ {
		pos, ok := candidate(attempt)
		if !ok {
			continue
		}
		sp.Resource -= class.Cost()
		a := NewAgent(id, sp.Team, class, pos, 0)
		a.SpawnerID = sp.ID
		return a, true
	}
	return nil, false
}
