package main

import (
	"flag"
	stdLog "log"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/vfs"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to file")
	treeRoot   = flag.String("trees", "behavior_tree_config", "directory behavior-tree sources are loaded from and saved to")
)

// game wraps an Engine in ebiten's update/draw loop: one Update call per
// frame steps the simulation exactly one tick, pausing (but still
// rendering) once a team has won.
type game struct {
	engine *simulation.Engine
	log    *zap.SugaredLogger
	result simulation.UpdateResult
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.result = simulation.UpdateResult{}
	}
	if g.result.Kind == simulation.TeamWon {
		return nil
	}
	g.result = g.engine.Update()
	if g.result.Kind == simulation.TeamWon {
		g.log.Infow("team won", "winner", g.result.Winner)
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	size, pix := g.engine.OccupancyImage(true)
	img := ebiten.NewImageFromImage(&rgbImage{size: size, pix: pix})
	screen.DrawImage(img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			stdLog.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			stdLog.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	cfg, err := simulation.LoadConfig("config.json", "config_schema.json")
	if err != nil {
		stdLog.Fatalf("Failed to load config: %v", err)
	}

	// 1. Configure Logger
	var logger *zap.Logger
	var zapCfg zap.Config

	if strings.ToLower(cfg.LogFormat) == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err = zapCfg.Build()
	if err != nil {
		stdLog.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	store, err := vfs.NewFileVFS(*treeRoot)
	if err != nil {
		stdLog.Fatalf("Failed to initialize behavior tree storage: %v", err)
	}

	engine, err := simulation.NewEngine(cfg, store, sugar)
	if err != nil {
		stdLog.Fatalf("Failed to initialize engine: %v", err)
	}

	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("go-swarm-sim")

	if err := ebiten.RunGame(&game{engine: engine, log: sugar}); err != nil {
		stdLog.Fatal(err)
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			stdLog.Fatal("could not create memory profile: ", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			stdLog.Fatal("could not write memory profile: ", err)
		}
	}
}
