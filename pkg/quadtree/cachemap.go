package quadtree

// CacheMap is a palette-indexed bitmap covering a board at full (bottom
// level) resolution: each board cell stores a small index into a palette of
// distinct CellStates rather than the state itself, since most boards have
// far fewer distinct states than cells. It tracks which cells changed since
// the last FinishUpdate call for a few ticks, so callers can highlight
// recently-touched cells without re-diffing the whole board.
type CacheMap struct {
	index   []uint32
	palette []CellState
	size    int

	// FreshCells maps a changed cell to the number of remaining ticks it
	// should be considered "fresh" for display purposes.
	FreshCells map[Pos]int

	prevIndex []uint32
}

// FreshTicks is how many ticks a changed cell stays in FreshCells.
const FreshTicks = 8

// NewCacheMap returns an empty cache map; call Cache to populate it.
func NewCacheMap() *CacheMap {
	return &CacheMap{FreshCells: map[Pos]int{}}
}

func (c *CacheMap) paletteIndex(state CellState) uint32 {
	for i, p := range c.palette {
		if p == state {
			return uint32(i)
		}
	}
	idx := uint32(len(c.palette))
	c.palette = append(c.palette, state)
	return idx
}

// Get returns the cell state at a bottom-level cell coordinate.
func (c *CacheMap) Get(pos Pos) CellState {
	return c.palette[c.index[pos[0]+pos[1]*c.size]]
}

// Cache rebuilds the palette bitmap at 2^topBit resolution by sampling one
// unit rectangle per cell through classify.
func (c *CacheMap) Cache(topBit, w, h int, classify Classifier) {
	c.size = 1 << uint(topBit)
	c.index = make([]uint32, c.size*c.size)
	c.palette = c.palette[:0]
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			state := classify(Rect{x, y, x + 1, y + 1})
			c.index[x+y*c.size] = c.paletteIndex(state)
		}
	}
}

// StartUpdate snapshots the current bitmap so FinishUpdate can diff against
// it; only the first call after a resize actually takes the snapshot.
func (c *CacheMap) StartUpdate() {
	if c.prevIndex == nil || len(c.prevIndex) != len(c.index) {
		c.prevIndex = append([]uint32(nil), c.index...)
	}
}

// Update writes a new state at pos, reports whether it actually changed, and
// errors if pos is outside the cached bitmap.
func (c *CacheMap) Update(pos Pos, state CellState) (changed bool, err error) {
	if pos[0] < 0 || pos[0] >= c.size || pos[1] < 0 || pos[1] >= c.size {
		return false, errOutOfBounds
	}
	idx := pos[0] + pos[1]*c.size
	newPalette := c.paletteIndex(state)
	if c.index[idx] == newPalette {
		return false, nil
	}
	c.index[idx] = newPalette
	return true, nil
}

// FinishUpdate diffs the bitmap against the StartUpdate snapshot, marks
// every changed cell fresh for FreshTicks ticks, and ages out cells whose
// freshness has expired.
func (c *CacheMap) FinishUpdate() {
	if c.prevIndex == nil {
		return
	}
	for i, cur := range c.index {
		if cur != c.prevIndex[i] {
			c.prevIndex[i] = cur
			c.FreshCells[Pos{i % c.size, i / c.size}] = FreshTicks
		}
	}
	for pos, ticks := range c.FreshCells {
		if ticks > 1 {
			c.FreshCells[pos] = ticks - 1
		} else {
			delete(c.FreshCells, pos)
		}
	}
}

// Query reports the aggregate CellState over rect: Free if every cell in it
// is Free, the uniform non-Free state if every cell shares it, and Mixed
// otherwise (Free and non-Free cells, or differing non-Free states).
func (c *CacheMap) Query(rect Rect) CellState {
	hasPassable := false
	var hasUnpassable *CellState
	for x := rect[0]; x < rect[2]; x++ {
		for y := rect[1]; y < rect[3]; y++ {
			state := c.palette[c.index[x+y*c.size]]
			if state.Kind != Free {
				if hasUnpassable != nil && *hasUnpassable != state {
					return CellState{Kind: Mixed}
				}
				s := state
				hasUnpassable = &s
			} else {
				hasPassable = true
			}
			if hasPassable && hasUnpassable != nil {
				return CellState{Kind: Mixed}
			}
		}
	}
	switch {
	case hasPassable:
		return CellState{Kind: Free}
	case hasUnpassable != nil:
		return *hasUnpassable
	default:
		return CellState{Kind: Obstacle}
	}
}

// IsPositionVisible reports whether a straight line from (x0,y0) to (x1,y1)
// crosses no Obstacle cell, sampling the line at roughly one cell spacing
// (Bresenham-style integer stepping). Out-of-bounds samples count as a
// blocked line of sight.
func (c *CacheMap) IsPositionVisible(x0, y0, x1, y1 int) bool {
	dx, dy := abs(x1-x0), abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	x, y := x0, y0
	for {
		if x < 0 || y < 0 || x >= c.size || y >= c.size {
			return false
		}
		if c.palette[c.index[x+y*c.size]].Kind == Obstacle {
			return false
		}
		if x == x1 && y == y1 {
			return true
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type cacheMapError string

func (e cacheMapError) Error() string { return string(e) }

const errOutOfBounds cacheMapError = "quadtree: position out of bounds"
