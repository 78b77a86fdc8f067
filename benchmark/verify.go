package main

import "fmt"

// VerifyRun checks a run result against the grid it ran on, using an
// independent local BFS so a wrong-but-plausible path from the server
// cannot slip through.
//
// For a found path it checks endpoints, step adjacency, barrier avoidance,
// and optimality (the path must match the BFS shortest distance). For a
// no-path result it confirms the end really is unreachable.
func VerifyRun(state *GridState, result *RunResult) error {
	if state.Start == nil || state.End == nil {
		return fmt.Errorf("grid state is missing start or end")
	}
	start, end := *state.Start, *state.End

	barriers := make(map[Position]bool, len(state.Barriers))
	for _, b := range state.Barriers {
		barriers[b] = true
	}

	dist, reachable := bfsDistance(state.Rows, state.Cols, barriers, start, end)

	if !result.Found {
		if reachable {
			return fmt.Errorf("server reported no path but BFS finds one in %d moves", dist)
		}
		if len(result.Path) != 0 {
			return fmt.Errorf("no-path result carries a %d-cell path", len(result.Path))
		}
		return nil
	}

	path := result.Path
	if len(path) == 0 {
		return fmt.Errorf("found result carries an empty path")
	}
	if result.PathLength != len(path) {
		return fmt.Errorf("path_length %d does not match path of %d cells", result.PathLength, len(path))
	}
	if path[0] != start {
		return fmt.Errorf("path starts at (%d,%d), expected start (%d,%d)",
			path[0].Row, path[0].Col, start.Row, start.Col)
	}
	if last := path[len(path)-1]; last != end {
		return fmt.Errorf("path ends at (%d,%d), expected end (%d,%d)",
			last.Row, last.Col, end.Row, end.Col)
	}

	seen := make(map[Position]bool, len(path))
	for i, cell := range path {
		if cell.Row < 0 || cell.Row >= state.Rows || cell.Col < 0 || cell.Col >= state.Cols {
			return fmt.Errorf("path cell %d at (%d,%d) is out of bounds", i, cell.Row, cell.Col)
		}
		if barriers[cell] {
			return fmt.Errorf("path crosses barrier at (%d,%d)", cell.Row, cell.Col)
		}
		if seen[cell] {
			return fmt.Errorf("path revisits (%d,%d)", cell.Row, cell.Col)
		}
		seen[cell] = true

		if i > 0 {
			prev := path[i-1]
			if manhattan(prev, cell) != 1 {
				return fmt.Errorf("path jumps from (%d,%d) to (%d,%d)",
					prev.Row, prev.Col, cell.Row, cell.Col)
			}
		}
	}

	if !reachable {
		return fmt.Errorf("server found a path but BFS says the end is unreachable")
	}
	if len(path)-1 != dist {
		return fmt.Errorf("path takes %d moves, BFS shortest is %d", len(path)-1, dist)
	}
	return nil
}

// bfsDistance returns the shortest move count from start to end over
// non-barrier cells, 4-connected.
func bfsDistance(rows, cols int, barriers map[Position]bool, start, end Position) (int, bool) {
	if barriers[start] || barriers[end] {
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

		neighbors := []Position{
			{Row: current.Row + 1, Col: current.Col},
			{Row: current.Row - 1, Col: current.Col},
			{Row: current.Row, Col: current.Col + 1},
			{Row: current.Row, Col: current.Col - 1},
		}
		for _, nb := range neighbors {
			if nb.Row < 0 || nb.Row >= rows || nb.Col < 0 || nb.Col >= cols {
				continue
			}
			if barriers[nb] {
				continue
			}
			if _, ok := dist[nb]; ok {
				continue
			}
			dist[nb] = dist[current] + 1
			queue = append(queue, nb)
		}
	}
	return 0, false
}

func manhattan(a, b Position) int {
	dr := a.Row - b.Row
	if dr < 0 {
		dr = -dr
	}
	dc := a.Col - b.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}
