package service

import (
	"time"

	"github.com/RustedSwords/A-Star-Path-Visualization/search/engine"
)

// SessionInfo provides information about a grid session.
type SessionInfo struct {
	ID             string     `json:"id"`
	LayoutName     string     `json:"layout_name"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	GridState      *GridState `json:"grid_state"`
}

// GridState is everything a renderer needs: grid shape, barriers, the
// start/end roles, and the state of the current run if one exists.
type GridState struct {
	Rows     int               `json:"rows"`
	Cols     int               `json:"cols"`
	Barriers []engine.Position `json:"barriers"`
	Start    *engine.Position  `json:"start,omitempty"`
	End      *engine.Position  `json:"end,omitempty"`
	Run      *RunState         `json:"run,omitempty"`
}

// RunState is the render view of a search run.
type RunState struct {
	ID         string            `json:"id"`
	Done       bool              `json:"done"`
	Found      bool              `json:"found"`
	Steps      int               `json:"steps"`
	Open       []engine.Position `json:"open"`
	Closed     []engine.Position `json:"closed"`
	Path       []engine.Position `json:"path,omitempty"`
	PathLength int               `json:"path_length,omitempty"`
}

// StepResult contains the events produced by one step request.
type StepResult struct {
	RunID  string         `json:"run_id"`
	Events []engine.Event `json:"events"`
	Done   bool           `json:"done"`
	Found  bool           `json:"found"`
	State  *GridState     `json:"state"`
}

// RunResult contains the outcome of a run drained to completion.
type RunResult struct {
	RunID      string            `json:"run_id"`
	Found      bool              `json:"found"`
	Path       []engine.Position `json:"path,omitempty"`
	PathLength int               `json:"path_length"`
	Opened     int               `json:"opened"`
	Closed     int               `json:"closed"`
	Events     []engine.Event    `json:"events"`
	State      *GridState        `json:"state"`
}

// LayoutInfo provides information about a grid layout preset.
type LayoutInfo struct {
	Filename    string `json:"filename"`
	LayoutID    string `json:"layout_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Barriers    int    `json:"barriers"`
}

// Session represents an active grid session.
type Session struct {
	ID             string
	Grid           *engine.Grid
	LayoutName     string
	RunID          string
	Run            *engine.Run
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
