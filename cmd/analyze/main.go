// Command analyze prints quick, human-readable heuristics about layout files
// in the project's layouts directory. It summarizes dimensions, barrier
// density, start/end placement, the Manhattan lower bound, the true BFS
// shortest path, and the detour factor between the two.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RustedSwords/A-Star-Path-Visualization/search/engine"
)

func main() {
	layouts := []string{
		"blank.json",
		"classic.json",
		"detour.json",
		"island.json",
		"maze.json",
	}

	for _, layoutFile := range layouts {
		fmt.Printf("\n=== Analyzing %s ===\n", layoutFile)
		analyzeLayout(filepath.Join("layouts", layoutFile))
	}
}

func analyzeLayout(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var layout engine.Layout
	if err := json.Unmarshal(data, &layout); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	grid, err := layout.BuildGrid()
	if err != nil {
		fmt.Printf("Error building grid: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", layout.Name)
	fmt.Printf("Grid Size: %d x %d\n", layout.Rows, layout.Cols)

	barriers := 0
	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			if grid.Cells[r][c].Barrier {
				barriers++
			}
		}
	}
	density := 100 * float64(barriers) / float64(grid.Rows*grid.Cols)
	fmt.Printf("Barriers: %d (%.1f%% density)\n", barriers, density)

	start, hasStart := grid.Start()
	end, hasEnd := grid.End()

	if hasStart {
		fmt.Printf("Start Position: (%d, %d)\n", start.Row, start.Col)
	} else {
		fmt.Println("Start Position: unset")
	}
	if hasEnd {
		fmt.Printf("End Position: (%d, %d)\n", end.Row, end.Col)
	} else {
		fmt.Println("End Position: unset")
	}

	if !hasStart || !hasEnd {
		fmt.Println("Path analysis skipped: start and end must both be set")
		return
	}

	manhattan := engine.ManhattanDistance(start, end)
	fmt.Printf("Manhattan Lower Bound: %d moves\n", manhattan)

	dist, reachable := engine.BFSDistance(grid, start, end)
	if !reachable {
		fmt.Println("⚠️  End is NOT reachable from start: search will report no path")
		return
	}

	fmt.Printf("Shortest Path: %d moves (%d cells)\n", dist, dist+1)

	if manhattan > 0 {
		detour := float64(dist) / float64(manhattan)
		fmt.Printf("Detour Factor: %.2fx\n", detour)
		if dist == manhattan {
			fmt.Println("✅ Barriers do not lengthen the path")
		} else {
			fmt.Printf("✅ Barriers force %d extra moves\n", dist-manhattan)
		}
	}
}
