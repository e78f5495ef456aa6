package entity

import "github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"

// TempEnt is a short-lived visual marker (spark, explosion) with no
// simulation effect beyond its own countdown.
type TempEnt struct {
	Pos geometry.Vector2D
	TTL int
}

// NewTempEnt spawns a marker at pos with the given lifetime in ticks.
func NewTempEnt(pos geometry.Vector2D, ttl int) TempEnt {
	return TempEnt{Pos: pos, TTL: ttl}
}

// Decay reduces TTL by one tick and reports whether it has expired.
func (t *TempEnt) Decay() (expired bool) {
	if t.TTL > 0 {
		t.TTL--
	}
	return t.TTL <= 0
}
