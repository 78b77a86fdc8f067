package engine

// ManhattanDistance is the heuristic used for frontier ordering. It is
// admissible and consistent on a 4-connected unit-cost grid.
func ManhattanDistance(from, to Position) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// BFSDistance returns the true shortest-path edge count from start to end,
// computed by breadth-first search. It is independent of the A* machinery
// and serves as a reference for tests and layout tooling.
func BFSDistance(grid *Grid, start, end Position) (int, bool) {
	if !grid.InBounds(start) || !grid.InBounds(end) {
		return 0, false
	}
	if grid.IsBarrier(start) || grid.IsBarrier(end) {
		return 0, false
	}

	dist := map[Position]int{start: 0}
	queue := []Position{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == end {
			return dist[current], true
		}
		for _, nb := range grid.Neighbors(current) {
			if _, seen := dist[nb]; seen {
				continue
			}
			dist[nb] = dist[current] + 1
			queue = append(queue, nb)
		}
	}
	return 0, false
}
