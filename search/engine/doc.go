// Package engine provides the core grid model and A* search for the
// visualizer.
//
// The engine package implements:
//   - A fixed-size 2D grid of cells with barrier flags and start/end roles
//   - 4-connected neighbor lookup in a fixed, deterministic order
//   - An incremental A* search that yields one event per step
//   - Path reconstruction and an independent BFS reference distance
//
// Core Types:
//
// Grid is the spatial container; it owns no search state. Run is a single
// search in progress: each call to Next returns exactly one Event (a cell
// being opened or closed, the final path, or a no-path outcome) and then
// suspends, so a caller-controlled loop can animate the search one event
// per frame.
//
// Usage:
//
//	grid := engine.NewGrid(20, 20)
//	grid.SetBarrier(engine.Position{Row: 3, Col: 4}, true)
//
//	run := engine.NewRun(grid, start, end)
//	for {
//		ev, ok := run.Next()
//		if !ok {
//			break
//		}
//		render(ev)
//	}
//
// Determinism:
//
// Given an identical grid, start, and end, a run produces an identical
// event sequence. Ties between equal f-scores are broken by insertion
// order, and neighbors are always visited down, up, right, left.
//
// The caller must not mutate grid barriers while a run's events are still
// being consumed; exploration order is undefined if it does.
package engine
