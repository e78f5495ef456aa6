package simulation

import "github.com/lao-tseu-is-alive/go-swarm-sim/pkg/entity"

// EventKind discriminates the Game Loop's event union. Spec §4.9 names
// exactly one variant today (SpawnAgent); the type exists so a second kind
// slots in without changing the apply-events step's shape.
type EventKind int

const (
	// EventSpawnAgent requests that a spawner attempt to build one agent,
	// applied best-effort in step 3 of the tick (spec §4.9).
	EventSpawnAgent EventKind = iota
)

// GameEvent is emitted by an entity's behavior tree during its update and
// applied by the Game Loop after every entity has been put back (spec §4.9
// step 2-3): entity updates never mutate the entity list directly, since
// step 2 only holds a read-only snapshot of it.
type GameEvent struct {
	Kind      EventKind
	SpawnerID int
	Class     entity.Class
}
