package simulation

import "testing"

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestConfig_Validate_RejectsNonPositiveWorldSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorldWidth = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero world width")
	}
}

func TestConfig_Validate_RejectsNegativeAgentCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Game.AgentCount = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for negative agent count")
	}
}

func TestConfig_Validate_RejectsNonPositiveSightRadius(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Game.SightRadius = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero sight radius")
	}
}

func TestBoardType_MapgenKindDoesNotPanic(t *testing.T) {
	for _, bt := range []BoardType{BoardPerlin, BoardRect, BoardCrank, BoardMaze, BoardRooms, BoardIterative} {
		_ = bt.mapgenKind() // must not panic for any declared constant
	}
}
