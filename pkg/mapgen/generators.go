package mapgen

import "math/rand/v2"

// Kind selects one of the board generation algorithms named by the grid &
// mesh builder.
type Kind int

const (
	KindPerlin Kind = iota
	KindRect
	KindCrank
	KindMaze
	KindRooms
	KindIterative
)

// BoardParams configures a single board generation call.
type BoardParams struct {
	W, H           int
	Seed           uint64
	Simplify       float64
	MazeExpansions int
	Kind           Kind
}

// Generate dispatches to the generator named by params.Kind and returns the
// resulting passability grid, already reduced to its largest connected
// component.
func Generate(params BoardParams) *Grid {
	var g *Grid
	switch params.Kind {
	case KindRect:
		g = generateRect(params)
	case KindCrank:
		g = generateCrank(params)
	case KindMaze:
		g = generateMaze(params)
	case KindRooms:
		g = generateRooms(params)
	case KindIterative:
		g = generateIterative(params)
	default:
		g = generatePerlin(params)
	}
	return g.LargestComponent()
}

// rng wraps math/rand/v2's PCG source seeded deterministically from params,
// standing in for the teacher's xor-shift PRNG: every generator reproduces
// the same board for the same seed.
func rng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// generatePerlin fills the board from a single octave of value noise plus a
// radial falloff bonus (0.6 at the center, shrinking with the squared
// distance from it), marking a cell passable where the sum exceeds 0.15;
// this produces an island-like passable region with organic borders. The
// upstream gradient-noise generator (src/perlin_noise.rs) was not present in
// the retrieved source, so this reconstructs a thresholded smooth random
// field with a value-noise lattice instead of true Perlin gradient noise.
func generatePerlin(params BoardParams) *Grid {
	r := rng(params.Seed)
	const cell = 8
	lw, lh := params.W/cell+2, params.H/cell+2
	lattice := make([]float64, lw*lh)
	for i := range lattice {
		lattice[i] = r.Float64()*2 - 1
	}
	sampleLattice := func(x, y float64) float64 {
		x0 := int(x)
		y0 := int(y)
		tx, ty := x-float64(x0), y-float64(y0)
		at := func(xi, yi int) float64 {
			if xi < 0 {
				xi = 0
			}
			if yi < 0 {
				yi = 0
			}
			if xi >= lw {
				xi = lw - 1
			}
			if yi >= lh {
				yi = lh - 1
			}
			return lattice[xi+yi*lw]
		}
		smooth := func(t float64) float64 { return t * t * (3 - 2*t) }
		sx, sy := smooth(tx), smooth(ty)
		top := at(x0, y0)*(1-sx) + at(x0+1, y0)*sx
		bot := at(x0, y0+1)*(1-sx) + at(x0+1, y0+1)*sx
		return top*(1-sy) + bot*sy
	}

	g := NewGrid(params.W, params.H)
	cx, cy := float64(params.W)/2, float64(params.H)/2
	maxR := cx
	if cy < maxR {
		maxR = cy
	}
	for y := 0; y < params.H; y++ {
		for x := 0; x < params.W; x++ {
			n := sampleLattice(float64(x)/cell, float64(y)/cell)
			dist := dist2(float64(x), float64(y), cx, cy) / maxR
			falloff := 1 - dist*dist
			g.Set(x, y, n+falloff*0.6 > 0.15)
		}
	}
	return g
}

func dist2(x0, y0, x1, y1 float64) float64 {
	dx, dy := x0-x1, y0-y1
	return sqrt(dx*dx + dy*dy)
}

func sqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	x := v
	for i := 0; i < 20; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

// generateRect fills the whole board minus a fixed margin: a plain
// rectangular arena, the lowest-variety generator in the set.
func generateRect(params BoardParams) *Grid {
	g := NewGrid(params.W, params.H)
	margin := params.W / 16
	if margin < 1 {
		margin = 1
	}
	for y := margin; y < params.H-margin; y++ {
		for x := margin; x < params.W-margin; x++ {
			g.Set(x, y, true)
		}
	}
	return g
}

// generateCrank carves a single bounded-width zigzag corridor from a random
// walk that occasionally turns, giving a "crank handle" shaped passable
// region. Like Rect, it produces low mesh variety and exists mainly for test
// coverage of the generator dispatch and the mesh pipeline on a thin board.
func generateCrank(params BoardParams) *Grid {
	g := NewGrid(params.W, params.H)
	r := rng(params.Seed)
	const width = 3
	x, y := params.W/2, params.H/2
	dir := [2]int{1, 0}
	steps := params.W * params.H / 20
	for i := 0; i < steps; i++ {
		for oy := -width; oy <= width; oy++ {
			for ox := -width; ox <= width; ox++ {
				g.Set(x+ox, y+oy, true)
			}
		}
		if r.Float64() < 0.2 {
			if dir[0] != 0 {
				dir = [2]int{0, []int{-1, 1}[r.IntN(2)]}
			} else {
				dir = [2]int{[]int{-1, 1}[r.IntN(2)], 0}
			}
		}
		nx, ny := x+dir[0], y+dir[1]
		if !g.In(nx, ny) {
			dir[0], dir[1] = -dir[0], -dir[1]
			continue
		}
		x, y = nx, ny
	}
	return g
}

// generateMaze grows a maze-like board across four halving resolutions
// (8,4,2,1), using a Dijkstra distance field to bias expansion toward
// unexplored area at the coarser resolutions where that bias is cheap to
// compute, matching the upstream multi-resolution maze generator.
func generateMaze(params BoardParams) *Grid {
	board := make([]bool, params.W*params.H)
	expansions := params.MazeExpansions
	if expansions <= 0 {
		expansions = params.W * params.H
	}

	for _, resolution := range []int{8, 4, 2, 1} {
		mw, mh := params.W/resolution, params.H/resolution
		if mw == 0 || mh == 0 {
			continue
		}
		maze := make([]bool, mw*mh)
		for iy := 0; iy < mh; iy++ {
			for ix := 0; ix < mw; ix++ {
				maze[ix+iy*mw] = board[ix*resolution+iy*resolution*params.W]
			}
		}
		cx, cy := mw/2, mh/2
		maze[cx+cy*mw] = true

		r := rng(params.Seed + uint64(resolution))

		var costmap []int
		if resolution > 2 {
			costmap = dijkstraFill(maze, mw, mh, cx, cy)
		}

		pick := func() (int, int) {
			var candidates []int
			var weights []int
			for i, open := range maze {
				if !open {
					continue
				}
				x, y := i%mw, i/mw
				if resolution != 1 && (x%2 != 0 || y%2 != 0) {
					continue
				}
				candidates = append(candidates, i)
				if costmap != nil {
					cost := costmap[i] + 1
					weights = append(weights, cost*cost)
				} else {
					weights = append(weights, 1)
				}
			}
			if len(candidates) == 0 {
				return cx, cy
			}
			total := 0
			for _, w := range weights {
				total += w
			}
			if total == 0 {
				pick := candidates[r.IntN(len(candidates))]
				return pick % mw, pick / mw
			}
			target := r.IntN(total)
			accum := 0
			for i, w := range weights {
				accum += w
				if target < accum {
					return candidates[i] % mw, candidates[i] / mw
				}
			}
			pick := candidates[len(candidates)-1]
			return pick % mw, pick / mw
		}

		dirs := [4][2]int{{-1, 0}, {0, -1}, {1, 0}, {0, 1}}
		count := expansions / (resolution * resolution)
		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			sx, sy := pick()
			d := dirs[r.IntN(4)]
			x, y := sx, sy
			for step := 0; step < 2; step++ {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || nx >= mw || ny < 0 || ny >= mh {
					continue
				}
				maze[nx+ny*mw] = true
				if costmap != nil {
					costmap[nx+ny*mw] = costmap[x+y*mw] + 1
				}
				x, y = nx, ny
			}
		}

		for y := 0; y < params.H; y++ {
			for x := 0; x < params.W; x++ {
				board[x+y*params.W] = maze[x/resolution+y/resolution*mw]
			}
		}
	}

	g := NewGrid(params.W, params.H)
	for i, v := range board {
		g.cell[i] = v
	}
	return g
}

// dijkstraFill returns, for every passable cell in a W*H board, its
// 4-connected step distance from (cx, cy); unreachable cells keep
// 1<<31 - 1.
func dijkstraFill(board []bool, w, h, cx, cy int) []int {
	const unfilled = 1<<31 - 1
	cost := make([]int, len(board))
	for i := range cost {
		cost[i] = unfilled
	}
	start := cx + cy*w
	cost[start] = 0
	queue := []int{start}
	dirs := [4][2]int{{-1, 0}, {0, -1}, {1, 0}, {0, 1}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		x, y := cur%w, cur/w
		for _, d := range dirs {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			idx := nx + ny*w
			if cost[idx] != unfilled || !board[idx] {
				continue
			}
			cost[idx] = cost[cur] + 1
			queue = append(queue, idx)
		}
	}
	return cost
}

// generateRooms scatters room centers across a coarse lattice, connects a
// spanning set of adjacent rooms with corridors, and carves both as
// passable area, matching the upstream rooms generator's shape (rooms
// placed on a jittered grid, connected into a single reachable graph).
func generateRooms(params BoardParams) *Grid {
	g := NewGrid(params.W, params.H)
	r := rng(params.Seed)

	minDim := params.W
	if params.H < minDim {
		minDim = params.H
	}
	roomRows := minDim * 4 / 128
	if roomRows <= 1 {
		return generatePerlin(params)
	}
	roomSize := minDim / 2 / roomRows
	if roomSize < 2 {
		roomSize = 2
	}
	margin := roomSize * 2

	type coord struct{ x, y int }
	centers := make(map[coord]coord)
	for iy := 1; iy < roomRows; iy++ {
		yc := iy * params.H / roomRows
		for ix := 1; ix < roomRows; ix++ {
			xc := ix * params.W / roomRows
			for attempt := 0; attempt < 100; attempt++ {
				x := xc + int((r.Float64()-0.5)*float64(roomSize))
				y := yc + int((r.Float64()-0.5)*float64(roomSize))
				ok := true
				for _, c := range centers {
					dx, dy := c.x-x, c.y-y
					if dx*dx+dy*dy < margin*margin {
						ok = false
						break
					}
				}
				if ok {
					centers[coord{ix, iy}] = coord{max0(x), max0(y)}
					break
				}
			}
		}
	}

	connected := map[coord]bool{{roomRows / 2, roomRows / 2}: true}
	openEnds := []coord{{roomRows / 2, roomRows / 2}}
	dirs := [4]coord{{-1, 0}, {0, -1}, {1, 0}, {0, 1}}
	var corridors [][2]coord
	for len(openEnds) > 0 {
		idx := r.IntN(len(openEnds))
		cur := openEnds[idx]
		var candidates []coord
		for _, d := range dirs {
			next := coord{cur.x + d.x, cur.y + d.y}
			if next.x <= 0 || next.x >= roomRows || next.y <= 0 || next.y >= roomRows {
				continue
			}
			if connected[next] {
				continue
			}
			if _, ok := centers[next]; !ok {
				continue
			}
			candidates = append(candidates, next)
		}
		if len(candidates) == 0 {
			openEnds = append(openEnds[:idx], openEnds[idx+1:]...)
			continue
		}
		next := candidates[r.IntN(len(candidates))]
		connected[next] = true
		openEnds = append(openEnds, next)
		corridors = append(corridors, [2]coord{cur, next})
	}

	for _, c := range centers {
		carveDisk(g, c.x, c.y, roomSize/2)
	}
	for _, edge := range corridors {
		a, b := centers[edge[0]], centers[edge[1]]
		carveLine(g, a.x, a.y, b.x, b.y, 2)
	}
	return g
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func carveDisk(g *Grid, cx, cy, radius int) {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				g.Set(x, y, true)
			}
		}
	}
}

func carveLine(g *Grid, x0, y0, x1, y1, width int) {
	dx, dy := x1-x0, y1-y0
	steps := absInt(dx)
	if absInt(dy) > steps {
		steps = absInt(dy)
	}
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + int(float64(dx)*t)
		y := y0 + int(float64(dy)*t)
		for oy := -width; oy <= width; oy++ {
			for ox := -width; ox <= width; ox++ {
				g.Set(x+ox, y+oy, true)
			}
		}
	}
}

// generateIterative runs a cellular-automaton smoothing pass over a random
// fill: seed the board with an independent random open/wall choice per cell,
// then repeatedly replace each cell with wall/floor according to its
// 5x5 and 9x9 neighborhood wall counts (radius 2 and 4; no 3x3 window is
// used), a two-radius smoothing rule.
func generateIterative(params BoardParams) *Grid {
	const (
		fillProb      = 0.4
		iterations    = 7
		narrowCell    = 2
		narrowThresh  = 12
		wideCell      = 4
		wideThreshold = 8
	)

	if params.W < 2*wideCell || params.H < 2*wideCell {
		return generatePerlin(params)
	}

	r := rng(params.Seed)
	board := make([]bool, params.W*params.H)
	for y := wideCell; y < params.H-wideCell; y++ {
		for x := wideCell; x < params.W-wideCell; x++ {
			board[x+y*params.W] = r.Float64() >= fillProb
		}
	}

	onBoard := func(x, y int) bool { return x >= 0 && y >= 0 && x < params.W && y < params.H }
	temp := make([]bool, len(board))

	iterate := func(src, dst []bool) {
		for y := wideCell; y < params.H-wideCell; y++ {
			for x := wideCell; x < params.W-wideCell; x++ {
				count33, count55 := 0, 0
				for ty := y - narrowCell; ty <= y+narrowCell; ty++ {
					for tx := x - narrowCell; tx <= x+narrowCell; tx++ {
						if onBoard(tx, ty) && !src[tx+ty*params.W] {
							count33++
						}
					}
				}
				for ty := y - wideCell; ty <= y+wideCell; ty++ {
					for tx := x - wideCell; tx <= x+wideCell; tx++ {
						if onBoard(tx, ty) && !src[tx+ty*params.W] {
							count55++
						}
					}
				}
				isWall := narrowThresh <= count33 || count55 <= wideThreshold
				dst[x+y*params.W] = !isWall
			}
		}
	}

	for i := 0; i < iterations; i++ {
		iterate(board, temp)
		board, temp = temp, board
	}

	g := NewGrid(params.W, params.H)
	for i, v := range board {
		g.cell[i] = v
	}
	return g
}
