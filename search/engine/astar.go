package engine

import (
	"container/heap"
	"sort"
)

// Run is a single A* search in progress. State is created by NewRun,
// mutated only by Next, and either discarded when the caller abandons the
// sequence or retained read-only for display after the run terminates.
type Run struct {
	grid  *Grid
	start Position
	end   Position

	open      frontier
	openItems map[Position]*frontierItem
	closed    map[Position]bool
	cameFrom  map[Position]Position
	gScore    map[Position]int
	seq       int

	pending []Event
	steps   int
	done    bool
	found   bool
	path    []Position
}

// NewRun starts a search from start to end on grid. The grid must not be
// mutated until the run terminates or is abandoned.
func NewRun(grid *Grid, start, end Position) *Run {
	r := &Run{
		grid:      grid,
		start:     start,
		end:       end,
		open:      make(frontier, 0),
		openItems: make(map[Position]*frontierItem),
		closed:    make(map[Position]bool),
		cameFrom:  make(map[Position]Position),
		gScore:    map[Position]int{start: 0},
	}
	heap.Init(&r.open)

	// A barrier start is never expanded; the frontier then drains without
	// reaching anything and the run ends in no_path.
	if grid.InBounds(start) && !grid.IsBarrier(start) {
		item := &frontierItem{
			cell:   start,
			fScore: ManhattanDistance(start, end),
			seq:    r.seq,
		}
		r.seq++
		heap.Push(&r.open, item)
		r.openItems[start] = item
	}

	return r
}

// Next advances the search by one event. It returns false once the
// sequence is exhausted; the final event is always path_found or no_path.
func (r *Run) Next() (Event, bool) {
	if len(r.pending) > 0 {
		ev := r.pending[0]
		r.pending = r.pending[1:]
		return ev, true
	}
	if r.done {
		return Event{}, false
	}
	if r.open.Len() == 0 {
		r.done = true
		return Event{Type: EventNoPath}, true
	}

	current := heap.Pop(&r.open).(*frontierItem)
	delete(r.openItems, current.cell)

	if current.cell == r.end {
		r.done = true
		r.found = true
		r.path = r.reconstructPath()
		return Event{Type: EventPathFound, Cell: current.cell, Path: r.path}, true
	}

	r.closed[current.cell] = true
	r.steps++

	for _, nb := range r.grid.Neighbors(current.cell) {
		if r.closed[nb] {
			continue
		}
		tentative := current.gScore + 1
		if best, seen := r.gScore[nb]; seen && tentative >= best {
			continue
		}
		r.cameFrom[nb] = current.cell
		r.gScore[nb] = tentative
		f := tentative + ManhattanDistance(nb, r.end)

		if item, pending := r.openItems[nb]; pending {
			// Better path to a cell already on the frontier: update its
			// priority in place, keep its original insertion sequence,
			// and emit no duplicate opened event.
			item.gScore = tentative
			item.fScore = f
			heap.Fix(&r.open, item.index)
			continue
		}

		item := &frontierItem{cell: nb, gScore: tentative, fScore: f, seq: r.seq}
		r.seq++
		heap.Push(&r.open, item)
		r.openItems[nb] = item
		r.pending = append(r.pending, Event{Type: EventOpened, Cell: nb})
	}

	return Event{Type: EventClosed, Cell: current.cell}, true
}

// reconstructPath walks came-from pointers backward from end and reverses
// the result into start-to-end order.
func (r *Run) reconstructPath() []Position {
	path := []Position{r.end}
	current := r.end
	for current != r.start {
		prev, ok := r.cameFrom[current]
		if !ok {
			break
		}
		path = append(path, prev)
		current = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Done reports whether the event sequence has terminated.
func (r *Run) Done() bool { return r.done && len(r.pending) == 0 }

// Found reports whether the run ended with a path.
func (r *Run) Found() bool { return r.found }

// Steps returns the number of cells closed so far.
func (r *Run) Steps() int { return r.steps }

// Path returns a copy of the reconstructed path, or nil before path_found.
func (r *Run) Path() []Position {
	if r.path == nil {
		return nil
	}
	path := make([]Position, len(r.path))
	copy(path, r.path)
	return path
}

// Snapshot exposes the per-cell state of the search for rendering.
type Snapshot struct {
	Open   []Position `json:"open"`
	Closed []Position `json:"closed"`
	Path   []Position `json:"path,omitempty"`
	Done   bool       `json:"done"`
	Found  bool       `json:"found"`
	Steps  int        `json:"steps"`
}

// Snapshot returns the current open set, closed set, and path. Cell lists
// are sorted row-major so equal states serialize identically.
func (r *Run) Snapshot() Snapshot {
	return Snapshot{
		Open:   sortedPositions(r.openItems),
		Closed: sortedClosed(r.closed),
		Path:   r.Path(),
		Done:   r.Done(),
		Found:  r.found,
		Steps:  r.steps,
	}
}

func sortedPositions(items map[Position]*frontierItem) []Position {
	out := make([]Position, 0, len(items))
	for p := range items {
		out = append(out, p)
	}
	sortRowMajor(out)
	return out
}

func sortedClosed(closed map[Position]bool) []Position {
	out := make([]Position, 0, len(closed))
	for p := range closed {
		out = append(out, p)
	}
	sortRowMajor(out)
	return out
}

func sortRowMajor(positions []Position) {
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Row != positions[j].Row {
			return positions[i].Row < positions[j].Row
		}
		return positions[i].Col < positions[j].Col
	})
}

// Result is the outcome of a search run to completion.
type Result struct {
	Found  bool       `json:"found"`
	Path   []Position `json:"path,omitempty"`
	Events []Event    `json:"events"`
	Opened int        `json:"opened"`
	Closed int        `json:"closed"`
}

// Search drains a fresh run to completion and collects its events.
func Search(grid *Grid, start, end Position) Result {
	run := NewRun(grid, start, end)
	var result Result
	for {
		ev, ok := run.Next()
		if !ok {
			break
		}
		result.Events = append(result.Events, ev)
		switch ev.Type {
		case EventOpened:
			result.Opened++
		case EventClosed:
			result.Closed++
		case EventPathFound:
			result.Found = true
			result.Path = ev.Path
		}
	}
	return result
}
