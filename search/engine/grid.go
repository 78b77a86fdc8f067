package engine

// Grid is a fixed-size collection of cells. It is purely structural and
// owns no search state; a Grid persists across multiple runs.
type Grid struct {
	Rows  int      `json:"rows"`
	Cols  int      `json:"cols"`
	Cells [][]Cell `json:"cells"`
}

// NewGrid creates an empty rows x cols grid with no barriers or roles.
func NewGrid(rows, cols int) *Grid {
	cells := make([][]Cell, rows)
	for r := range cells {
		cells[r] = make([]Cell, cols)
	}
	return &Grid{Rows: rows, Cols: cols, Cells: cells}
}

// InBounds reports whether p lies within the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.Rows && p.Col >= 0 && p.Col < g.Cols
}

// At returns the cell at p. The caller is responsible for bounds checking.
func (g *Grid) At(p Position) Cell {
	return g.Cells[p.Row][p.Col]
}

// IsBarrier reports whether p is an impassable cell.
func (g *Grid) IsBarrier(p Position) bool {
	return g.Cells[p.Row][p.Col].Barrier
}

// SetBarrier sets the wall state of p. It has no side effects on any
// in-flight search; discarding active runs on edits is the caller's job.
func (g *Grid) SetBarrier(p Position, barrier bool) {
	g.Cells[p.Row][p.Col].Barrier = barrier
}

// SetRole assigns a role to p. Uniqueness of the start and end roles is
// enforced by the collaborator layer, not here.
func (g *Grid) SetRole(p Position, role Role) {
	g.Cells[p.Row][p.Col].Role = role
}

// ClearCell removes both the barrier flag and any role from p.
func (g *Grid) ClearCell(p Position) {
	g.Cells[p.Row][p.Col] = Cell{}
}

// Start returns the position of the cell with the start role, if any.
func (g *Grid) Start() (Position, bool) {
	return g.findRole(RoleStart)
}

// End returns the position of the cell with the end role, if any.
func (g *Grid) End() (Position, bool) {
	return g.findRole(RoleEnd)
}

func (g *Grid) findRole(role Role) (Position, bool) {
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if g.Cells[r][c].Role == role {
				return Position{Row: r, Col: c}, true
			}
		}
	}
	return Position{}, false
}

// Reset clears all barriers and roles. Calling it repeatedly is a no-op
// after the first call.
func (g *Grid) Reset() {
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			g.Cells[r][c] = Cell{}
		}
	}
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	clone := NewGrid(g.Rows, g.Cols)
	for r := 0; r < g.Rows; r++ {
		copy(clone.Cells[r], g.Cells[r])
	}
	return clone
}

// Neighbors returns the in-bounds, non-barrier cells orthogonally adjacent
// to p. The order is fixed: down, up, right, left. Exploration order, and
// therefore the exact event sequence of a run, depends on it.
func (g *Grid) Neighbors(p Position) []Position {
	neighbors := make([]Position, 0, 4)
	candidates := [4]Position{
		{Row: p.Row + 1, Col: p.Col}, // down
		{Row: p.Row - 1, Col: p.Col}, // up
		{Row: p.Row, Col: p.Col + 1}, // right
		{Row: p.Row, Col: p.Col - 1}, // left
	}
	for _, c := range candidates {
		if g.InBounds(c) && !g.Cells[c.Row][c.Col].Barrier {
			neighbors = append(neighbors, c)
		}
	}
	return neighbors
}

// CountBarriers returns the number of barrier cells in the grid.
func (g *Grid) CountBarriers() int {
	count := 0
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if g.Cells[r][c].Barrier {
				count++
			}
		}
	}
	return count
}
