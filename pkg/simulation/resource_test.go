package simulation

import (
	"math/rand/v2"
	"testing"

	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
)

func newBareEngine(t *testing.T) *Engine {
	t.Helper()
	return &Engine{
		board: NewBoard(testBoardParams()),
		rnd:   rand.New(rand.NewPCG(1, 2)),
	}
}

func TestSeedResources_PlacesOnlyOnPassableCells(t *testing.T) {
	e := newBareEngine(t)
	e.seedResources()
	if len(e.resources) != resourceNodeCount {
		t.Fatalf("expected %d resource nodes, got %d", resourceNodeCount, len(e.resources))
	}
	for _, node := range e.resources {
		if !e.board.Passable(node.Pos) {
			t.Fatalf("expected every seeded node on a passable cell, got %v", node.Pos)
		}
		if node.Amount != resourceNodeAmount {
			t.Fatalf("expected a fresh node at full amount, got %d", node.Amount)
		}
	}
}

func TestHarvestResources_WorkerDrainsNearbyNode(t *testing.T) {
	e := newBareEngine(t)
	node := &ResourceNode{Pos: geometry.Vector2D{X: 5, Y: 5}, Amount: resourceNodeAmount}
	e.resources = []*ResourceNode{node}

	w := entity.NewAgent(1, 0, entity.Worker, geometry.Vector2D{X: 5, Y: 5}, 0)
	e.entities = []*entity.Entity{w}

	e.harvestResources()

	if w.Resource != harvestPerTick {
		t.Fatalf("expected worker to harvest %d, got %d", harvestPerTick, w.Resource)
	}
	if node.Amount != resourceNodeAmount-harvestPerTick {
		t.Fatalf("expected node drained by %d, got %d", harvestPerTick, node.Amount)
	}
}

func TestHarvestResources_IgnoresFighterAndFarWorker(t *testing.T) {
	e := newBareEngine(t)
	node := &ResourceNode{Pos: geometry.Vector2D{X: 5, Y: 5}, Amount: resourceNodeAmount}
	e.resources = []*ResourceNode{node}

	fighter := entity.NewAgent(1, 0, entity.Fighter, geometry.Vector2D{X: 5, Y: 5}, 0)
	farWorker := entity.NewAgent(2, 0, entity.Worker, geometry.Vector2D{X: 500, Y: 500}, 0)
	e.entities = []*entity.Entity{fighter, farWorker}

	e.harvestResources()

	if fighter.Resource != 0 || farWorker.Resource != 0 {
		t.Fatalf("expected neither entity to harvest, got fighter=%d farWorker=%d", fighter.Resource, farWorker.Resource)
	}
	if node.Amount != resourceNodeAmount {
		t.Fatalf("expected node untouched, got %d", node.Amount)
	}
}

func TestHarvestResources_DropsDepletedNode(t *testing.T) {
	e := newBareEngine(t)
	node := &ResourceNode{Pos: geometry.Vector2D{X: 5, Y: 5}, Amount: harvestPerTick}
	e.resources = []*ResourceNode{node}

	w := entity.NewAgent(1, 0, entity.Worker, geometry.Vector2D{X: 5, Y: 5}, 0)
	e.entities = []*entity.Entity{w}

	e.harvestResources()

	if len(e.resources) != 0 {
		t.Fatalf("expected depleted node dropped, got %v", e.resources)
	}
	if len(e.liveResources()) != 0 {
		t.Fatalf("expected no live resources after depletion, got %v", e.liveResources())
	}
}

func TestHarvestResources_SaturatesWorkerCarryCap(t *testing.T) {
	e := newBareEngine(t)
	node := &ResourceNode{Pos: geometry.Vector2D{X: 5, Y: 5}, Amount: resourceNodeAmount}
	e.resources = []*ResourceNode{node}

	w := entity.NewAgent(1, 0, entity.Worker, geometry.Vector2D{X: 5, Y: 5}, 0)
	w.Resource = workerCarryCap
	e.entities = []*entity.Entity{w}

	e.harvestResources()

	if w.Resource != workerCarryCap {
		t.Fatalf("expected carry capped at %d, got %d", workerCarryCap, w.Resource)
	}
	if node.Amount != resourceNodeAmount {
		t.Fatalf("expected a full worker to not drain the node, got %d", node.Amount)
	}
}
