package entity

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
)

func noCollide(geometry.OBB) bool { return false }
func allPassable(geometry.Vector2D) bool { return true }

func TestDrive_CommitsWhenClear(t *testing.T) {
	a := NewAgent(1, 0, Worker, geometry.Vector2D{X: 0, Y: 0}, 0)
	ok := Drive(a, 1, allPassable, noCollide)
	if !ok {
		t.Fatalf("expected drive to succeed on a clear board")
	}
	if a.Pos.X <= 0 {
		t.Fatalf("expected forward motion along heading 0, got %v", a.Pos)
	}
	if len(a.Trace()) != 1 {
		t.Fatalf("expected one trace entry after one drive, got %d", len(a.Trace()))
	}
}

func TestDrive_FailsAndZerosSpeedWhenBlocked(t *testing.T) {
	a := NewAgent(1, 0, Worker, geometry.Vector2D{X: 0, Y: 0}, 0)
	a.Speed = 0.3
	blockAll := func(geometry.OBB) bool { return true }
	ok := Drive(a, 1, allPassable, blockAll)
	if ok {
		t.Fatalf("expected drive to fail when blocked")
	}
	if a.Speed != 0 {
		t.Fatalf("expected speed zeroed after a failed drive, got %v", a.Speed)
	}
	if a.Pos != (geometry.Vector2D{X: 0, Y: 0}) {
		t.Fatalf("expected no position change after a failed drive, got %v", a.Pos)
	}
}

func TestOrientTo_ArrivesWhenAlreadyFacingTarget(t *testing.T) {
	a := NewAgent(1, 0, Worker, geometry.Vector2D{X: 0, Y: 0}, 0)
	result := OrientTo(a, geometry.Vector2D{X: 10, Y: 0}, false, noCollide)
	if result != Arrived {
		t.Fatalf("expected Arrived when already facing the target, got %v", result)
	}
}

func TestOrientTo_ApproachesAndClampsSteer(t *testing.T) {
	a := NewAgent(1, 0, Worker, geometry.Vector2D{X: 0, Y: 0}, 0)
	result := OrientTo(a, geometry.Vector2D{X: 0, Y: 10}, false, noCollide)
	if result != Approaching {
		t.Fatalf("expected Approaching for a 90 degree turn, got %v", result)
	}
	if math.Abs(a.Steer) > MaxSteerClamp+1e-9 {
		t.Fatalf("expected steer clamped to %v, got %v", MaxSteerClamp, a.Steer)
	}
}

func TestOrientTo_TargetEqualsPosArrivesRegardlessOfOrient(t *testing.T) {
	start := geometry.Vector2D{X: 5, Y: 5}
	a := NewAgent(1, 0, Worker, start, 2.1)
	result := OrientTo(a, start, false, noCollide)
	if result != Arrived {
		t.Fatalf("expected Arrived for target==pos from a non-zero orientation, got %v", result)
	}
	if a.Orient != 2.1 {
		t.Fatalf("expected orientation unchanged when already at target, got %v", a.Orient)
	}
	if a.Steer != 0 {
		t.Fatalf("expected steer reset to zero on arrival, got %v", a.Steer)
	}
}

func TestMoveTo_TargetEqualsPosArrivesWithoutChange(t *testing.T) {
	start := geometry.Vector2D{X: 5, Y: 5}
	a := NewAgent(1, 0, Worker, start, 0)
	result, committed := MoveTo(a, start, false, allPassable, noCollide)
	if result != Arrived || !committed {
		t.Fatalf("expected Arrived+committed for target==pos, got %v %v", result, committed)
	}
	if a.Pos != start {
		t.Fatalf("expected no position change when already at target, got %v", a.Pos)
	}
}

func TestShootBullet_RespectsCooldownAndClass(t *testing.T) {
	fighter := NewAgent(1, 0, Fighter, geometry.Vector2D{X: 0, Y: 0}, 0)
	b, ok := ShootBullet(fighter, geometry.Vector2D{X: 10, Y: 0})
	if !ok {
		t.Fatalf("expected a fighter with no cooldown to shoot")
	}
	if b.Damage != Fighter.Damage() {
		t.Fatalf("expected bullet damage to match class damage")
	}
	if fighter.Cooldown <= 0 {
		t.Fatalf("expected cooldown to be set after shooting")
	}
	if _, ok := ShootBullet(fighter, geometry.Vector2D{X: 10, Y: 0}); ok {
		t.Fatalf("expected a second shot on cooldown to fail")
	}

	worker := NewAgent(2, 0, Worker, geometry.Vector2D{X: 0, Y: 0}, 0)
	if _, ok := ShootBullet(worker, geometry.Vector2D{X: 10, Y: 0}); ok {
		t.Fatalf("expected a worker to have no weapon")
	}
}

func TestSpawnAgent_DeductsResourceAndAssignsSpawner(t *testing.T) {
	sp := NewSpawner(1, 0, geometry.Vector2D{X: 0, Y: 0}, 100)
	sp.Resource = Worker.Cost()
	attempts := 0
	candidate := func(attempt int) (geometry.Vector2D, bool) {
		attempts++
		return geometry.Vector2D{X: 1, Y: 1}, true
	}
	a, ok := SpawnAgent(sp, Worker, 2, candidate)
	if !ok {
		t.Fatalf("expected spawn to succeed with sufficient resource")
	}
	if a.SpawnerID != sp.ID {
		t.Fatalf("expected spawned agent to record its spawner id")
	}
	if sp.Resource != 0 {
		t.Fatalf("expected resource to be deducted by class cost, got %v", sp.Resource)
	}
	if attempts != 1 {
		t.Fatalf("expected exactly one placement attempt when the first succeeds, got %d", attempts)
	}
}

func TestSpawnAgent_FailsSilentlyWithoutResource(t *testing.T) {
	sp := NewSpawner(1, 0, geometry.Vector2D{X: 0, Y: 0}, 100)
	candidate := func(attempt int) (geometry.Vector2D, bool) { return geometry.Vector2D{}, true }
	if _, ok := SpawnAgent(sp, Fighter, 2, candidate); ok {
		t.Fatalf("expected spawn to fail without enough resource")
	}
}

func TestAccumulateResource_SaturatesAtCap(t *testing.T) {
	sp := NewSpawner(1, 0, geometry.Vector2D{}, 100)
	sp.Resource = SpawnerResourceCap
	sp.AccumulateResource()
	if sp.Resource != SpawnerResourceCap {
		t.Fatalf("expected resource to saturate at %d, got %d", SpawnerResourceCap, sp.Resource)
	}
}

func TestDamage_DeactivatesAtZeroHealth(t *testing.T) {
	a := NewAgent(1, 0, Worker, geometry.Vector2D{}, 0)
	a.Damage(a.Health)
	if a.Active {
		t.Fatalf("expected entity to deactivate at zero health")
	}
	if a.Health != 0 {
		t.Fatalf("expected health floored at zero, got %d", a.Health)
	}
}
