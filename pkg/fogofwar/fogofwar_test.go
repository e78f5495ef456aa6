package fogofwar

import (
	"testing"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
)

func alwaysVisible(int, int, int, int) bool { return true }

func TestUpdateVisibility_ClearsWithinSightRadius(t *testing.T) {
	f := New(64, 64)
	f.UpdateVisibility([]geometry.Vector2D{{X: 32, Y: 32}}, 5, alwaysVisible)
	if f.Age.At(32, 32) != 0 {
		t.Fatalf("expected age 0 at the agent's own position, got %d", f.Age.At(32, 32))
	}
	if f.Age.At(60, 60) == 0 {
		t.Fatalf("expected a far pixel to remain unseen")
	}
}

func TestUpdateVisibility_DimsAndSaturates(t *testing.T) {
	f := New(64, 64)
	f.UpdateVisibility([]geometry.Vector2D{{X: 32, Y: 32}}, 5, alwaysVisible)
	if f.Age.At(32, 32) != 0 {
		t.Fatalf("expected initial sighting to clear the pixel")
	}
	for i := 0; i < 100; i++ {
		f.UpdateVisibility(nil, 5, alwaysVisible)
	}
	if f.Age.At(32, 32) != 100 {
		t.Fatalf("expected age 100 after 100 unseen ticks, got %d", f.Age.At(32, 32))
	}
}

func TestUpdateVisibility_MonotonicWithinOneTick(t *testing.T) {
	f := New(16, 16)
	f.Age.Age[f.Age.idx(1, 1)] = 50
	f.UpdateVisibility(nil, 5, alwaysVisible)
	if f.Age.At(1, 1) != 51 {
		t.Fatalf("expected age to increase by exactly one tick, got %d", f.Age.At(1, 1))
	}
}

func TestRemember_DropsVanishedResourceInClearCell(t *testing.T) {
	f := New(16, 16)
	f.UpdateVisibility([]geometry.Vector2D{{X: 5, Y: 5}}, 3, alwaysVisible)
	f.Remember([]Resource{{Pos: geometry.Vector2D{X: 5, Y: 5}, Amount: 10}}, nil)
	if len(f.Resources) != 1 {
		t.Fatalf("expected the real resource to be recorded, got %v", f.Resources)
	}

	f.Remember(nil, nil) // resource vanished while still in a clear cell
	if len(f.Resources) != 0 {
		t.Fatalf("expected the vanished resource to be dropped, got %v", f.Resources)
	}
}

func TestRemember_RetainsMemoryInFoggyCell(t *testing.T) {
	f := New(16, 16)
	f.UpdateVisibility([]geometry.Vector2D{{X: 5, Y: 5}}, 3, alwaysVisible)
	f.Remember([]Resource{{Pos: geometry.Vector2D{X: 5, Y: 5}, Amount: 10}}, nil)

	// Move sight away until the cell has fogged over (age reaches MaxAge);
	// the resource must be retained even though it's no longer reported.
	for i := int32(0); i < MaxAge; i++ {
		f.UpdateVisibility(nil, 3, alwaysVisible)
	}
	f.Remember(nil, nil)
	if len(f.Resources) != 1 {
		t.Fatalf("expected the resource to be retained once the cell is foggy, got %v", f.Resources)
	}
}
