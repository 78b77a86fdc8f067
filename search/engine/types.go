package engine

// Role marks the special function a cell plays in a search, if any.
type Role string

const (
	RoleNone  Role = ""
	RoleStart Role = "start"
	RoleEnd   Role = "end"

	// Validation constants
	MinGridSize = 2
	MaxGridSize = 200
	MaxStepSize = 1000
)

// Position identifies a cell by 0-indexed row/column coordinates.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Cell is a single grid cell.
type Cell struct {
	Barrier bool `json:"barrier,omitempty"`
	Role    Role `json:"role,omitempty"`
}

// EventType classifies a search event.
type EventType string

const (
	// EventOpened is emitted when a cell is first pushed onto the frontier.
	EventOpened EventType = "opened"
	// EventClosed is emitted when a cell has been fully evaluated.
	EventClosed EventType = "closed"
	// EventPathFound terminates a successful run and carries the path.
	EventPathFound EventType = "path_found"
	// EventNoPath terminates a run whose frontier was exhausted.
	EventNoPath EventType = "no_path"
)

// Event is one step of a search. For opened/closed events Cell is the
// affected cell; for path_found events Path holds the full start-to-end
// sequence and Cell is the end cell.
type Event struct {
	Type EventType  `json:"type"`
	Cell Position   `json:"cell"`
	Path []Position `json:"path,omitempty"`
}

// Layout describes a reusable grid preset, typically loaded from JSON.
// Layout rows use '.' for open cells, '#' for barriers, 'S' for the start
// cell, and 'E' for the end cell.
type Layout struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Rows        int               `json:"rows"`
	Cols        int               `json:"cols"`
	Layout      []string          `json:"layout"`
	Legend      map[string]string `json:"legend,omitempty"`
}

// Layout characters.
const (
	LayoutOpen    = '.'
	LayoutBarrier = '#'
	LayoutStart   = 'S'
	LayoutEnd     = 'E'
)
