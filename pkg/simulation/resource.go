package simulation

import (
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/fogofwar"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
)

// Map-placed resource nodes a Worker harvests by standing near one. The
// distilled spec names FogOfWar.resources but never says where a "real"
// Resource comes from; the original game's Game.resources field (recovered
// in original_source/eframe/src/app/paint_game.rs's draw_resource, which
// iterates game.resources and both teams' fog[*].resources) is that source,
// so this gives it one: a depletable node a Worker drains into its carry.
const (
	resourceNodeCount  = 12
	resourceNodeAmount = 200
	harvestRadius      = 2.0
	harvestPerTick     = 1
	workerCarryCap     = 20
)

// ResourceNode is a depletable map resource.
type ResourceNode struct {
	Pos    geometry.Vector2D
	Amount int
}

// seedResources scatters resourceNodeCount nodes across passable cells.
func (e *Engine) seedResources() {
	w, h := e.board.Grid.W, e.board.Grid.H
	for len(e.resources) < resourceNodeCount {
		pos := geometry.Vector2D{X: e.rnd.Float64() * float64(w), Y: e.rnd.Float64() * float64(h)}
		if !e.board.Passable(pos) {
			continue
		}
		e.resources = append(e.resources, &ResourceNode{Pos: pos, Amount: resourceNodeAmount})
	}
}

// harvestResources lets every active Worker within harvestRadius of a
// still-productive node draw harvestPerTick into its carry, saturating at
// workerCarryCap; nodes drained to zero are dropped so they stop appearing
// in both the ground truth and, once forgotten, fog memory.
func (e *Engine) harvestResources() {
	for _, ent := range e.entities {
		if !ent.Active || ent.Kind != entity.KindAgent || ent.Class != entity.Worker || ent.Resource >= workerCarryCap {
			continue
		}
		for _, node := range e.resources {
			if node.Amount <= 0 || ent.Pos.DistanceTo(node.Pos) > harvestRadius {
				continue
			}
			take := harvestPerTick
			if take > node.Amount {
				take = node.Amount
			}
			node.Amount -= take
			ent.Resource += take
			if ent.Resource > workerCarryCap {
				ent.Resource = workerCarryCap
			}
			break
		}
	}

	live := e.resources[:0]
	for _, node := range e.resources {
		if node.Amount > 0 {
			live = append(live, node)
		}
	}
	e.resources = live
}

// liveResources reports the currently productive nodes as fogofwar.Resource
// values: updateFog's ground truth for Remember.
func (e *Engine) liveResources() []fogofwar.Resource {
	out := make([]fogofwar.Resource, len(e.resources))
	for i, node := range e.resources {
		out[i] = fogofwar.Resource{Pos: node.Pos, Amount: node.Amount}
	}
	return out
}
