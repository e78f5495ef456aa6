package quadtree

// QTree is a variable-resolution index over a square board of side
// 2^TopLevel: each level holds only the cells that needed to be stored at
// that resolution, not a dense array, so a large uniform region costs one
// entry regardless of its size.
type QTree struct {
	TopLevel int
	Levels   []map[Pos]CellState
}

// New returns an empty quadtree; call Update to populate it.
func New() *QTree {
	return &QTree{}
}

// Width returns the side length, in board cells, of a cell at level.
func (q *QTree) Width(level int) int {
	return 1 << (q.TopLevel - level)
}

// Update rebuilds the tree from scratch against shape, recursively
// subdividing any rectangle the classifier reports as Mixed until it bottoms
// out at single-cell resolution or a uniform state is found.
func (q *QTree) Update(w, h int, classify Classifier) {
	top := 0
	maxDim := w
	if h > maxDim {
		maxDim = h
	}
	for (1 << uint(top)) < maxDim {
		top++
	}
	q.TopLevel = top
	q.Levels = nil
	q.recurseUpdate(0, Pos{0, 0}, classify)
}

func (q *QTree) recurseUpdate(level int, parent Pos, classify Classifier) {
	width := q.Width(level)
	rect := Rect{parent[0] * width, parent[1] * width, (parent[0] + 1) * width, (parent[1] + 1) * width}
	state := classify(rect)
	if q.TopLevel <= level || state.Kind != Mixed {
		q.insert(level, parent, state)
		return
	}
	q.insert(level, parent, CellState{Kind: Mixed})
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			q.recurseUpdate(level+1, Pos{parent[0]*2 + x, parent[1]*2 + y}, classify)
		}
	}
}

// SetLeaf writes state directly at bottom-level resolution (TopLevel), for
// callers reconciling a single changed pixel before calling TryMerge on it
// (the Game Loop's step 9: "reconcile CacheMap pixel deltas ... with
// try_merge per changed pixel").
func (q *QTree) SetLeaf(pos Pos, state CellState) {
	q.insert(q.TopLevel, pos, state)
}

func (q *QTree) insert(level int, pos Pos, state CellState) {
	for len(q.Levels) <= level {
		q.Levels = append(q.Levels, map[Pos]CellState{})
	}
	q.Levels[level][pos] = state
}

// TryMerge collapses a cell and its three siblings back into their parent
// when all four now hold the same state, and recurses upward:
// used after an incremental Occupy/Release so the tree doesn't stay
// fragmented once entities move on.
func (q *QTree) TryMerge(level int, cellPos Pos) {
	if level < 1 {
		return
	}
	baseX, baseY := cellPos[0]/2*2, cellPos[1]/2*2
	var siblings [4]Pos
	i := 0
	for ix := baseX; ix <= baseX+1; ix++ {
		for iy := baseY; iy <= baseY+1; iy++ {
			siblings[i] = Pos{ix, iy}
			i++
		}
	}

	if level >= len(q.Levels) {
		q.TryMerge(level-1, Pos{cellPos[0] / 2, cellPos[1] / 2})
		return
	}
	levelMap := q.Levels[level]

	var first CellState
	allSame := true
	anyMissing := false
	for i, s := range siblings {
		state, ok := levelMap[s]
		if !ok {
			anyMissing = true
			break
		}
		if i == 0 {
			first = state
		} else if state != first {
			allSame = false
		}
	}

	switch {
	case anyMissing:
		q.TryMerge(level-1, Pos{cellPos[0] / 2, cellPos[1] / 2})
	case allSame:
		for _, s := range siblings {
			delete(levelMap, s)
		}
		parent := Pos{cellPos[0] / 2, cellPos[1] / 2}
		for len(q.Levels) <= level-1 {
			q.Levels = append(q.Levels, map[Pos]CellState{})
		}
		q.Levels[level-1][parent] = first
		q.TryMerge(level-1, parent)
	}
}

// PosToIdx converts a continuous board position into the cell coordinate it
// falls into at level.
func (q *QTree) PosToIdx(x, y float64, level int) Pos {
	scale := float64(int(1) << uint(q.TopLevel-level))
	return Pos{int(x / scale), int(y / scale)}
}

func (q *QTree) toIdx(pos Pos, level int) Pos {
	scale := 1 << uint(q.TopLevel-level)
	return Pos{pos[0] / scale, pos[1] / scale}
}

// Find returns the deepest recorded cell containing the continuous board
// position pos, and the level it was found at. The zero value and false are
// returned if no cell covers the position.
func (q *QTree) Find(x, y float64) (level int, state CellState, ok bool) {
	return q.FindByIdx(int(x), int(y))
}

// FindByIdx is Find, addressed by bottom-level integer cell coordinates.
func (q *QTree) FindByIdx(x, y int) (level int, state CellState, ok bool) {
	for l := len(q.Levels) - 1; l >= 0; l-- {
		cellPos := q.toIdx(Pos{x, y}, l)
		cell, found := q.Levels[l][cellPos]
		if !found || cell.Kind == Mixed {
			continue
		}
		return l, cell, true
	}
	return 0, CellState{}, false
}

// IdxToCenter converts a (level, cell) address into the continuous
// coordinates of that cell's center.
func (q *QTree) IdxToCenter(level int, pos Pos) (x, y float64) {
	width := float64(q.Width(level))
	return (float64(pos[0]) + 0.5) * width, (float64(pos[1]) + 0.5) * width
}

type side int

const (
	sideLeft side = iota
	sideTop
	sideRight
	sideBottom
)

// NeighborCell names a discovered neighboring quadtree cell.
type NeighborCell struct {
	Level int
	Pos   Pos
}

func (q *QTree) recurseFind(level int, idx Pos, s side) []NeighborCell {
	if level >= len(q.Levels) {
		return nil
	}
	cell, found := q.Levels[level][idx]
	if !found || cell.Kind == Mixed {
		x, y := idx[0]*2, idx[1]*2
		var subcells [2]Pos
		switch s {
		case sideLeft:
			subcells = [2]Pos{{x, y}, {x, y + 1}}
		case sideTop:
			subcells = [2]Pos{{x, y}, {x + 1, y}}
		case sideRight:
			subcells = [2]Pos{{x + 1, y}, {x + 1, y + 1}}
		case sideBottom:
			subcells = [2]Pos{{x, y + 1}, {x + 1, y + 1}}
		}
		var ret []NeighborCell
		for _, sc := range subcells {
			ret = append(ret, q.recurseFind(level+1, sc, s)...)
		}
		return ret
	}
	if found {
		return []NeighborCell{{Level: level, Pos: idx}}
	}
	return nil
}

// FindNeighbors returns every leaf cell directly adjacent to (level, idx)
// along all four sides, descending into finer neighbors and ascending to
// coarser ancestors as needed to find a recorded cell.
func (q *QTree) FindNeighbors(level int, idx Pos) []NeighborCell {
	var ret []NeighborCell
	type sideOffset struct {
		s      side
		offset Pos
	}
	for _, so := range []sideOffset{
		{sideLeft, Pos{1, 0}},
		{sideTop, Pos{0, 1}},
		{sideRight, Pos{-1, 0}},
		{sideBottom, Pos{0, -1}},
	} {
		neighborIdx := Pos{idx[0] + so.offset[0], idx[1] + so.offset[1]}
		sub := q.recurseFind(level, neighborIdx, so.s)
		if len(sub) > 0 {
			ret = append(ret, sub...)
			continue
		}

		supIdx, neighborSupIdx := idx, neighborIdx
		var ancestor *NeighborCell
		for supLevel := level - 1; supLevel >= 0; supLevel-- {
			supIdx = Pos{supIdx[0] / 2, supIdx[1] / 2}
			neighborSupIdx = Pos{neighborSupIdx[0] / 2, neighborSupIdx[1] / 2}
			if supIdx == neighborSupIdx {
				break
			}
			if supLevel < len(q.Levels) {
				if _, ok := q.Levels[supLevel][neighborSupIdx]; ok {
					ancestor = &NeighborCell{Level: supLevel, Pos: neighborSupIdx}
					break
				}
			}
		}
		if ancestor != nil {
			ret = append(ret, q.recurseFind(ancestor.Level, ancestor.Pos, so.s)...)
		}
	}
	return ret
}
