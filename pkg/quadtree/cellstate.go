// Package quadtree implements the navigation quadtree index: a
// variable-resolution subdivision of the board into free, obstacle, and
// dynamically-occupied cells, queried incrementally as entities move.
package quadtree

// Kind tags what a quadtree cell currently represents.
type Kind int

const (
	// Free means the cell is entirely passable and unoccupied.
	Free Kind = iota
	// Obstacle means the cell is entirely impassable terrain.
	Obstacle
	// Occupied means the cell is passable terrain currently claimed by a
	// single entity, identified by OccupantID.
	Occupied
	// Mixed means the cell straddles a boundary between any of the above
	// and needs further subdivision to resolve.
	Mixed
)

// CellState is the value stored at a quadtree node.
type CellState struct {
	Kind       Kind
	OccupantID int
}

func (c CellState) String() string {
	switch c.Kind {
	case Free:
		return "Free"
	case Obstacle:
		return "Obstacle"
	case Occupied:
		return "Occupied"
	default:
		return "Mixed"
	}
}

// Blocked reports whether this cell state should be treated as impassable by
// a searcher that may ignore a set of entity ids (e.g. itself).
func (c CellState) Blocked(ignoreID func(id int) bool) bool {
	switch c.Kind {
	case Obstacle:
		return true
	case Occupied:
		return !ignoreID(c.OccupantID)
	default:
		return false
	}
}

// Rect is an axis-aligned integer rectangle [xmin, ymin, xmax, ymax) used to
// query a board classifier when subdividing.
type Rect [4]int

// Pos is a quadtree cell coordinate at a given level.
type Pos [2]int

// Classifier reports the aggregate cell state covering a board rectangle: if
// the rectangle is not uniformly Free/Obstacle it must return Mixed so the
// tree subdivides further.
type Classifier func(r Rect) CellState
