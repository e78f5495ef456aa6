package entity

import "github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"

// Bullet is a straight-line projectile advanced once per tick by the Game
// Loop until it hits something or leaves the map.
type Bullet struct {
	Pos          geometry.Vector2D
	Velo         geometry.Vector2D
	Traveled     float64
	Team         Team
	ShooterClass Class
	Damage       int
}

// Advance moves the bullet one tick and accumulates distance traveled.
func (b *Bullet) Advance() {
	b.Pos = b.Pos.Add(b.Velo)
	b.Traveled += b.Velo.Len()
}

// AdvanceCooldown reduces an agent's weapon cooldown by one tick, floored
// at zero. Called once per tick before the behavior tree ticks (spec
// §4.6's per-tick order, step 1).
func (e *Entity) AdvanceCooldown() {
	if e.Cooldown > 0 {
		e.Cooldown--
		if e.Cooldown < 0 {
			e.Cooldown = 0
		}
	}
}

// ShootBullet fires toward targetPos if the agent's weapon is off cooldown
// and its class can shoot (Workers carry no weapon). On success it resets
// the cooldown and returns the spawned Bullet.
func ShootBullet(e *Entity, targetPos geometry.Vector2D) (Bullet, bool) {
	if e.Class == Worker || e.Cooldown > 0 {
		return Bullet{}, false
	}
	dir := targetPos.Sub(e.Pos).Normalize()
	b := Bullet{
		Pos:          e.Pos,
		Velo:         dir.Mul(e.Class.BulletSpeed()),
		Team:         e.Team,
		ShooterClass: e.Class,
		Damage:       e.Class.Damage(),
	}
	e.Cooldown += e.Class.Cooldown()
	return b, true
}
