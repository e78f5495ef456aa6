package simulation

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/mapgen"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BoardType selects one of mapgen's six procedural generators (spec §6's
// `board_type` enum).
type BoardType int

const (
	BoardPerlin BoardType = iota
	BoardRect
	BoardCrank
	BoardMaze
	BoardRooms
	BoardIterative
)

func (t BoardType) mapgenKind() mapgen.Kind {
	switch t {
	case BoardRect:
		return mapgen.KindRect
	case BoardCrank:
		return mapgen.KindCrank
	case BoardMaze:
		return mapgen.KindMaze
	case BoardRooms:
		return mapgen.KindRooms
	case BoardIterative:
		return mapgen.KindIterative
	default:
		return mapgen.KindPerlin
	}
}

// BoardConfig is spec §6's `BoardParams` plus the board type tag, as it
// round-trips through JSON configuration.
type BoardConfig struct {
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Seed           uint64    `json:"seed"`
	Simplify       float64   `json:"simplify"`
	MazeExpansions int       `json:"mazeExpansions"`
	Type           BoardType `json:"boardType"`
}

func (b BoardConfig) toMapgenParams() mapgen.BoardParams {
	return mapgen.BoardParams{
		W:              b.Width,
		H:              b.Height,
		Seed:           b.Seed,
		Simplify:       b.Simplify,
		MazeExpansions: b.MazeExpansions,
		Kind:           b.Type.mapgenKind(),
	}
}

// TeamConfig names the conventional VFS paths (spec §6) a team's agent and
// spawner trees load from.
type TeamConfig struct {
	AgentSource   string `json:"agentSource"`
	SpawnerSource string `json:"spawnerSource"`
}

// GameParams is spec §3's GameParams: immutable across ticks, owned by the
// loop, mutated only between games.
type GameParams struct {
	AgentCount int           `json:"agentCount"`
	Teams      [2]TeamConfig `json:"teams"`
	Paused     bool          `json:"paused"`

	// AgentEarlySource is the shared early-game fallback (SPEC_FULL's
	// supplemented "agent_early.txt" feature), compiled for an entity whose
	// team tree fails to build for it.
	AgentEarlySource string `json:"agentEarlySource"`

	// SightRadius is the per-agent fog-of-war view distance (spec §4.8).
	SightRadius float64 `json:"sightRadius"`

	Board BoardConfig `json:"board"`
}

// Config is the process-level configuration: render window sizing plus the
// ambient logging knobs, loaded the same way the teacher's own Config is.
type Config struct {
	WorldWidth  float64 `json:"worldWidth"`
	WorldHeight float64 `json:"worldHeight"`

	// LogLevel sets the logging level (debug, info, warn, error). Default: info
	LogLevel string `json:"logLevel"`
	// LogFormat sets the logging format (json, console). Default: json
	LogFormat string `json:"logFormat"`

	Game GameParams `json:"game"`
}

// DefaultConfig mirrors original_source's bundled defaults: a 64x64 Perlin
// island, ten agents per team, the conventional per-team VFS paths.
func DefaultConfig() *Config {
	return &Config{
		WorldWidth:  1024,
		WorldHeight: 768,
		LogLevel:    "info",
		LogFormat:   "json",
		Game: GameParams{
			AgentCount: 10,
			Teams: [2]TeamConfig{
				{AgentSource: "green/agent.txt", SpawnerSource: "green/spawner.txt"},
				{AgentSource: "red/agent.txt", SpawnerSource: "red/spawner.txt"},
			},
			AgentEarlySource: "agent_early.txt",
			SightRadius:      12,
			Board: BoardConfig{
				Width: 64, Height: 64, Seed: 1, Simplify: 1.0,
				MazeExpansions: 40, Type: BoardPerlin,
			},
		},
	}
}

func (c *Config) Validate() error {
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		return fmt.Errorf("worldWidth/worldHeight must be positive, got %f/%f", c.WorldWidth, c.WorldHeight)
	}
	if c.Game.Board.Width <= 0 || c.Game.Board.Height <= 0 {
		return fmt.Errorf("game.board width/height must be positive, got %d/%d", c.Game.Board.Width, c.Game.Board.Height)
	}
	if c.Game.AgentCount < 0 {
		return fmt.Errorf("game.agentCount cannot be negative, got %d", c.Game.AgentCount)
	}
	if c.Game.SightRadius <= 0 {
		return fmt.Errorf("game.sightRadius must be positive, got %f", c.Game.SightRadius)
	}
	return nil
}

// LoadConfig loads configuration from a JSON file and validates it against
// the schema, then against Validate's own invariants.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	sch, err := jsonschema.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	f, err := os.Open(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var v interface{}
	if err := json.NewDecoder(f).Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
