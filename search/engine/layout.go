package engine

import "fmt"

// ValidateLayout checks a layout's structure: dimensions within bounds,
// row lengths matching Cols, allowed characters only, and at most one
// start and one end marker.
func ValidateLayout(l *Layout) error {
	if l == nil {
		return fmt.Errorf("layout cannot be nil")
	}
	if l.Name == "" {
		return fmt.Errorf("layout name is required")
	}
	if l.Rows < MinGridSize || l.Rows > MaxGridSize {
		return fmt.Errorf("rows must be between %d and %d, got %d", MinGridSize, MaxGridSize, l.Rows)
	}
	if l.Cols < MinGridSize || l.Cols > MaxGridSize {
		return fmt.Errorf("cols must be between %d and %d, got %d", MinGridSize, MaxGridSize, l.Cols)
	}
	if len(l.Layout) != l.Rows {
		return fmt.Errorf("layout has %d rows, expected %d", len(l.Layout), l.Rows)
	}

	starts, ends := 0, 0
	for r, row := range l.Layout {
		if len(row) != l.Cols {
			return fmt.Errorf("layout row %d has %d cells, expected %d", r, len(row), l.Cols)
		}
		for c, ch := range row {
			switch ch {
			case LayoutOpen, LayoutBarrier:
			case LayoutStart:
				starts++
			case LayoutEnd:
				ends++
			default:
				return fmt.Errorf("invalid character %q at row %d col %d", ch, r, c)
			}
		}
	}
	if starts > 1 {
		return fmt.Errorf("layout has %d start markers, at most one allowed", starts)
	}
	if ends > 1 {
		return fmt.Errorf("layout has %d end markers, at most one allowed", ends)
	}
	return nil
}

// BuildGrid validates the layout and materializes it as a fresh Grid.
func (l *Layout) BuildGrid() (*Grid, error) {
	if err := ValidateLayout(l); err != nil {
		return nil, err
	}
	grid := NewGrid(l.Rows, l.Cols)
	for r, row := range l.Layout {
		for c, ch := range row {
			switch ch {
			case LayoutBarrier:
				grid.Cells[r][c].Barrier = true
			case LayoutStart:
				grid.Cells[r][c].Role = RoleStart
			case LayoutEnd:
				grid.Cells[r][c].Role = RoleEnd
			}
		}
	}
	return grid, nil
}
