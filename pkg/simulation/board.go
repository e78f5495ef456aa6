package simulation

import (
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/entity"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/mapgen"
	"github.com/lao-tseu-is-alive/go-swarm-sim/pkg/quadtree"
)

// Board is the shared, read-mostly game map of spec §9's "shared immutable
// mesh / qtree data": the procedural grid and its derived mesh never change
// after generation, while the quadtree index and its backing cache map are
// mutated only by the Game Loop after entity updates, never during them.
type Board struct {
	Grid *mapgen.Grid
	Mesh mapgen.Mesh

	Cache *quadtree.CacheMap
	QTree *quadtree.QTree

	prevOccupied map[quadtree.Pos]int
}

// NewBoard generates a fresh board from params: a passability grid reduced
// to its largest connected component, the navigable mesh derived from it,
// and a quadtree index and cache map built once from the same grid.
func NewBoard(params mapgen.BoardParams) *Board {
	grid := mapgen.Generate(params)
	mesh := mapgen.BuildMesh(grid, params.Simplify)

	classify := gridClassifier(grid)
	qtree := quadtree.New()
	qtree.Update(grid.W, grid.H, classify)

	cache := quadtree.NewCacheMap()
	cache.Cache(qtree.TopLevel, grid.W, grid.H, classify)

	return &Board{
		Grid:         grid,
		Mesh:         mesh,
		Cache:        cache,
		QTree:        qtree,
		prevOccupied: map[quadtree.Pos]int{},
	}
}

func gridClassifier(grid *mapgen.Grid) quadtree.Classifier {
	return func(r quadtree.Rect) quadtree.CellState {
		free, obstacle := false, false
		for y := r[1]; y < r[3]; y++ {
			for x := r[0]; x < r[2]; x++ {
				if grid.At(x, y) {
					free = true
				} else {
					obstacle = true
				}
				if free && obstacle {
					return quadtree.CellState{Kind: quadtree.Mixed}
				}
			}
		}
		switch {
		case free:
			return quadtree.CellState{Kind: quadtree.Free}
		case obstacle:
			return quadtree.CellState{Kind: quadtree.Obstacle}
		default:
			return quadtree.CellState{Kind: quadtree.Free}
		}
	}
}

// Passable reports whether pos sits on a passable grid cell.
func (b *Board) Passable(pos geometry.Vector2D) bool {
	return b.Grid.At(int(pos.X), int(pos.Y))
}

// IsVisible reports whether a straight line between the two board positions
// crosses no obstacle cell (spec §4.8's `CacheMap::is_position_visible`).
func (b *Board) IsVisible(from, to geometry.Vector2D) bool {
	return b.Cache.IsPositionVisible(int(from.X), int(from.Y), int(to.X), int(to.Y))
}

func (b *Board) staticState(pos quadtree.Pos) quadtree.CellState {
	if b.Grid.At(pos[0], pos[1]) {
		return quadtree.CellState{Kind: quadtree.Free}
	}
	return quadtree.CellState{Kind: quadtree.Obstacle}
}

// ReconcileOccupancy is the Game Loop's step 9: every cell whose occupancy
// changed since the last tick (an entity arrived, left, or a different
// entity now claims it) is written into the cache map and folded back into
// the quadtree index with TryMerge, so the index never drifts from the
// cache it was built from.
func (b *Board) ReconcileOccupancy(entities []*entity.Entity) {
	current := make(map[quadtree.Pos]int, len(entities))
	for _, e := range entities {
		if !e.Active {
			continue
		}
		current[quadtree.Pos{int(e.Pos.X), int(e.Pos.Y)}] = e.ID
	}

	touched := make(map[quadtree.Pos]bool, len(current)+len(b.prevOccupied))
	for pos := range b.prevOccupied {
		touched[pos] = true
	}
	for pos := range current {
		touched[pos] = true
	}
	if len(touched) == 0 {
		return
	}

	b.Cache.StartUpdate()
	for pos := range touched {
		if id, ok := current[pos]; ok {
			b.Cache.Update(pos, quadtree.CellState{Kind: quadtree.Occupied, OccupantID: id})
			continue
		}
		b.Cache.Update(pos, b.staticState(pos))
	}
	b.Cache.FinishUpdate()

	for pos := range touched {
		b.QTree.SetLeaf(pos, b.Cache.Get(pos))
		b.QTree.TryMerge(b.QTree.TopLevel, pos)
	}
	b.prevOccupied = current
}

// IgnoreID returns a predicate treating only id as passable occupancy,
// suitable for pathfind.FindPath and quadtree queries run on an entity's
// own behalf.
func IgnoreID(id int) func(int) bool {
	return func(occupant int) bool { return occupant == id }
}
