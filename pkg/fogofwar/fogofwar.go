// Package fogofwar implements the per-team memory model of spec §4.8: an
// age map of pixels decaying toward a cap, plus remembered resources and
// enemy structures that persist after a team's agents look away.
package fogofwar

import "github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"

// MaxAge is FOG_MAX_AGE: the saturation point past which a pixel's memory
// is considered fully stale.
const MaxAge = int32(10000)

// AgeMap is a W×H field of "ticks since last seen", one per team.
type AgeMap struct {
	W, H int
	Age  []int32
}

// NewAgeMap returns a map with every pixel already at MaxAge (never seen).
func NewAgeMap(w, h int) *AgeMap {
	age := make([]int32, w*h)
	for i := range age {
		age[i] = MaxAge
	}
	return &AgeMap{W: w, H: h, Age: age}
}

func (m *AgeMap) idx(x, y int) int { return x + y*m.W }

// At returns the age at (x, y); out-of-bounds reads as MaxAge.
func (m *AgeMap) At(x, y int) int32 {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return MaxAge
	}
	return m.Age[m.idx(x, y)]
}

// IsClear reports whether (x, y) is currently within memory (age < MaxAge).
func (m *AgeMap) IsClear(x, y int) bool {
	return m.At(x, y) < MaxAge
}

// Advance applies one tick: every pixel for which seen returns true is
// reset to 0; every other pixel's age increases by exactly one, saturating
// at MaxAge (spec §8's fog monotonicity property).
func (m *AgeMap) Advance(seen func(x, y int) bool) {
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			i := m.idx(x, y)
			if seen(x, y) {
				m.Age[i] = 0
				continue
			}
			if m.Age[i] < MaxAge {
				m.Age[i]++
			}
		}
	}
}

// Resource is a remembered (or real) gatherable resource node.
type Resource struct {
	Pos    geometry.Vector2D
	Amount int
}

// EntityShadow is a last-seen snapshot of an enemy static structure
// (spawner): its id, last known position, and last known health.
type EntityShadow struct {
	ID     int
	Pos    geometry.Vector2D
	Health int
}

// Visibility reports whether a line of sight from (x0,y0) to (x1,y1) is
// unobstructed, backed by the team's Quadtree CacheMap.
type Visibility func(x0, y0, x1, y1 int) bool

// FogOfWar is one team's view of the map: its age memory plus the
// resources and enemy structures it currently remembers.
type FogOfWar struct {
	Age       *AgeMap
	Resources []Resource
	Entities  []EntityShadow
}

// New returns a fresh fog of war over a w×h board, with nothing yet seen.
func New(w, h int) *FogOfWar {
	return &FogOfWar{Age: NewAgeMap(w, h)}
}

// UpdateVisibility advances the age map for one tick: every pixel within
// sightRadius of any position in agentPositions, and in line of sight per
// visible, is cleared to age 0; everything else ages by one tick.
func (f *FogOfWar) UpdateVisibility(agentPositions []geometry.Vector2D, sightRadius float64, visible Visibility) {
	f.Age.Advance(func(x, y int) bool {
		for _, pos := range agentPositions {
			dx, dy := float64(x)-pos.X, float64(y)-pos.Y
			if dx*dx+dy*dy > sightRadius*sightRadius {
				continue
			}
			if visible(int(pos.X), int(pos.Y), x, y) {
				return true
			}
		}
		return false
	})
}

// Remember reconciles the team's remembered resources and enemy structures
// against the current ground truth, per spec §4.8: anything real sitting
// in a currently-clear cell is (re)recorded; anything previously remembered
// in a still-foggy cell is retained; a real entity that has vanished while
// its cell stayed clear (i.e. it was destroyed or moved away under direct
// observation) is dropped rather than kept as a stale memory.
func (f *FogOfWar) Remember(realResources []Resource, realEnemies []EntityShadow) {
	f.Resources = mergeResources(f.Age, f.Resources, realResources)
	f.Entities = mergeEntities(f.Age, f.Entities, realEnemies)
}

func mergeResources(age *AgeMap, remembered, real []Resource) []Resource {
	out := make([]Resource, 0, len(remembered)+len(real))
	for _, r := range real {
		if age.IsClear(int(r.Pos.X), int(r.Pos.Y)) {
			out = append(out, r)
		}
	}
	for _, r := range remembered {
		if !age.IsClear(int(r.Pos.X), int(r.Pos.Y)) {
			out = append(out, r)
		}
	}
	return out
}

func mergeEntities(age *AgeMap, remembered, real []EntityShadow) []EntityShadow {
	out := make([]EntityShadow, 0, len(remembered)+len(real))
	for _, e := range real {
		if age.IsClear(int(e.Pos.X), int(e.Pos.Y)) {
			out = append(out, e)
		}
	}
	for _, e := range remembered {
		if !age.IsClear(int(e.Pos.X), int(e.Pos.Y)) {
			out = append(out, e)
		}
	}
	return out
}
