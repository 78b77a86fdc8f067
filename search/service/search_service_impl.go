package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/RustedSwords/A-Star-Path-Visualization/metrics"
	"github.com/RustedSwords/A-Star-Path-Visualization/search/engine"
)

// searchServiceImpl implements the SearchService interface.
type searchServiceImpl struct {
	sessions SessionManager
	layouts  LayoutManager
	mu       sync.RWMutex
}

// NewSearchService creates a new search service instance.
func NewSearchService(sessions SessionManager, layouts LayoutManager) SearchService {
	return &searchServiceImpl{
		sessions: sessions,
		layouts:  layouts,
	}
}

// CreateSession creates a new grid session seeded from a layout preset.
func (s *searchServiceImpl) CreateSession(ctx context.Context, layoutName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var layout *engine.Layout
	if layoutName != "" {
		loaded, err := s.layouts.LoadLayout(layoutName)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				available, listErr := s.layouts.ListLayouts()
				if listErr == nil && len(available) > 0 {
					var ids []string
					for _, l := range available {
						ids = append(ids, l.LayoutID)
					}
					return nil, fmt.Errorf("layout '%s' not found. Available layouts: %v", layoutName, ids)
				}
				return nil, fmt.Errorf("layout '%s' not found. Use /api/layouts to list available layouts", layoutName)
			}
			return nil, fmt.Errorf("failed to load layout %s: %w", layoutName, err)
		}
		layout = loaded
	} else {
		layout = s.layouts.GetDefault()
	}

	grid, err := layout.BuildGrid()
	if err != nil {
		return nil, fmt.Errorf("failed to build grid from layout %s: %w", layout.Name, err)
	}

	session, err := s.sessions.Create("", grid, layout.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	metrics.ActiveSessions.Set(float64(s.sessions.Count()))

	return s.sessionInfo(session), nil
}

// GetSession retrieves session information.
func (s *searchServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions.
func (s *searchServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	infos := make([]*SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, s.sessionInfo(session))
	}
	return infos, nil
}

// DeleteSession removes a session.
func (s *searchServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	metrics.ActiveSessions.Set(float64(s.sessions.Count()))
	return nil
}

// SetStart assigns the start role to pos, clearing any previous holder.
// A barrier on the chosen cell is removed, matching the pointer flow where
// selecting a start always yields a passable cell.
func (s *searchServiceImpl) SetStart(ctx context.Context, sessionID string, pos engine.Position) (*GridState, error) {
	return s.setRole(sessionID, pos, engine.RoleStart)
}

// SetEnd assigns the end role to pos, clearing any previous holder.
func (s *searchServiceImpl) SetEnd(ctx context.Context, sessionID string, pos engine.Position) (*GridState, error) {
	return s.setRole(sessionID, pos, engine.RoleEnd)
}

func (s *searchServiceImpl) setRole(sessionID string, pos engine.Position, role engine.Role) (*GridState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Grid.InBounds(pos) {
		return nil, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, pos.Row, pos.Col)
	}
	other := engine.RoleEnd
	otherErr := ErrCellIsEnd
	if role == engine.RoleEnd {
		other = engine.RoleStart
		otherErr = ErrCellIsStart
	}
	if session.Grid.At(pos).Role == other {
		return nil, fmt.Errorf("%w: (%d,%d)", otherErr, pos.Row, pos.Col)
	}

	var prev engine.Position
	var hadPrev bool
	if role == engine.RoleStart {
		prev, hadPrev = session.Grid.Start()
	} else {
		prev, hadPrev = session.Grid.End()
	}
	if hadPrev {
		session.Grid.SetRole(prev, engine.RoleNone)
	}
	session.Grid.SetBarrier(pos, false)
	session.Grid.SetRole(pos, role)
	s.discardRun(session)

	return gridStateOf(session), nil
}

// SetBarrier toggles the wall state of pos. Cells holding the start or end
// role are rejected; clear the role first.
func (s *searchServiceImpl) SetBarrier(ctx context.Context, sessionID string, pos engine.Position, barrier bool) (*GridState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Grid.InBounds(pos) {
		return nil, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, pos.Row, pos.Col)
	}
	if barrier {
		switch session.Grid.At(pos).Role {
		case engine.RoleStart:
			return nil, fmt.Errorf("%w: (%d,%d)", ErrCellIsStart, pos.Row, pos.Col)
		case engine.RoleEnd:
			return nil, fmt.Errorf("%w: (%d,%d)", ErrCellIsEnd, pos.Row, pos.Col)
		}
	}

	session.Grid.SetBarrier(pos, barrier)
	s.discardRun(session)

	return gridStateOf(session), nil
}

// ClearCell removes any role and barrier from pos.
func (s *searchServiceImpl) ClearCell(ctx context.Context, sessionID string, pos engine.Position) (*GridState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Grid.InBounds(pos) {
		return nil, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, pos.Row, pos.Col)
	}

	session.Grid.ClearCell(pos)
	s.discardRun(session)

	return gridStateOf(session), nil
}

// ResetGrid clears all barriers and roles and discards any run.
func (s *searchServiceImpl) ResetGrid(ctx context.Context, sessionID string) (*GridState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.Grid.Reset()
	s.discardRun(session)

	return gridStateOf(session), nil
}

// StartRun validates preconditions and creates a fresh run, discarding any
// previous one.
func (s *searchServiceImpl) StartRun(ctx context.Context, sessionID string) (*RunState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.beginRun(session); err != nil {
		return nil, err
	}

	return runStateOf(session), nil
}

// StepRun advances the active run by up to maxEvents events. A maxEvents
// of zero or less advances by one.
func (s *searchServiceImpl) StepRun(ctx context.Context, sessionID string, maxEvents int) (*StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Run == nil {
		return nil, ErrNoActiveRun
	}
	if maxEvents <= 0 {
		maxEvents = 1
	}
	if maxEvents > engine.MaxStepSize {
		maxEvents = engine.MaxStepSize
	}

	events := make([]engine.Event, 0, maxEvents)
	for len(events) < maxEvents {
		ev, ok := session.Run.Next()
		if !ok {
			break
		}
		events = append(events, ev)
		s.recordTerminal(ev, session.Run)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return &StepResult{
		RunID:  session.RunID,
		Events: events,
		Done:   session.Run.Done(),
		Found:  session.Run.Found(),
		State:  gridStateOf(session),
	}, nil
}

// RunToCompletion starts a fresh run and drains it, returning every event.
// A positive maxEvents bounds the drain (clamped to engine.MaxStepSize, as
// StepRun clamps); a run that hits the bound stays active for StepRun.
func (s *searchServiceImpl) RunToCompletion(ctx context.Context, sessionID string, maxEvents int) (*RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.beginRun(session); err != nil {
		return nil, err
	}

	if maxEvents > engine.MaxStepSize {
		maxEvents = engine.MaxStepSize
	}

	result := &RunResult{RunID: session.RunID}
	for maxEvents <= 0 || len(result.Events) < maxEvents {
		ev, ok := session.Run.Next()
		if !ok {
			break
		}
		result.Events = append(result.Events, ev)
		switch ev.Type {
		case engine.EventOpened:
			result.Opened++
		case engine.EventClosed:
			result.Closed++
		case engine.EventPathFound:
			result.Found = true
			result.Path = ev.Path
			result.PathLength = len(ev.Path)
		}
		s.recordTerminal(ev, session.Run)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	result.State = gridStateOf(session)

	return result, nil
}

// GetGridState returns the current render view of a session.
func (s *searchServiceImpl) GetGridState(ctx context.Context, sessionID string) (*GridState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return gridStateOf(session), nil
}

// ListLayouts returns information about all available layout presets.
func (s *searchServiceImpl) ListLayouts(ctx context.Context) ([]*LayoutInfo, error) {
	return s.layouts.ListLayouts()
}

// GetLayout returns a single layout preset by name.
func (s *searchServiceImpl) GetLayout(ctx context.Context, layoutName string) (*engine.Layout, error) {
	layout, err := s.layouts.LoadLayout(layoutName)
	if err != nil {
		return nil, fmt.Errorf("layout %q not found: %w", layoutName, err)
	}
	return layout, nil
}

// beginRun checks run preconditions and installs a fresh run on the
// session. The caller must hold the write lock.
func (s *searchServiceImpl) beginRun(session *Session) error {
	start, hasStart := session.Grid.Start()
	if !hasStart {
		return ErrNoStart
	}
	end, hasEnd := session.Grid.End()
	if !hasEnd {
		return ErrNoEnd
	}
	if start == end {
		return ErrStartEqualsEnd
	}

	session.Run = engine.NewRun(session.Grid, start, end)
	session.RunID = uuid.NewString()
	metrics.SearchesStarted.Inc()
	return nil
}

// recordTerminal updates run metrics when ev ends the sequence.
func (s *searchServiceImpl) recordTerminal(ev engine.Event, run *engine.Run) {
	switch ev.Type {
	case engine.EventPathFound:
		metrics.SearchesCompleted.WithLabelValues(string(engine.EventPathFound)).Inc()
		metrics.CellsExpanded.Observe(float64(run.Steps()))
		metrics.PathLength.Observe(float64(len(ev.Path)))
	case engine.EventNoPath:
		metrics.SearchesCompleted.WithLabelValues(string(engine.EventNoPath)).Inc()
		metrics.CellsExpanded.Observe(float64(run.Steps()))
	}
}

// discardRun drops the session's run; grid edits invalidate in-flight
// search state.
func (s *searchServiceImpl) discardRun(session *Session) {
	session.Run = nil
	session.RunID = ""
}

func (s *searchServiceImpl) sessionInfo(session *Session) *SessionInfo {
	return &SessionInfo{
		ID:             session.ID,
		LayoutName:     session.LayoutName,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GridState:      gridStateOf(session),
	}
}

// gridStateOf assembles the render view for a session.
func gridStateOf(session *Session) *GridState {
	grid := session.Grid
	state := &GridState{
		Rows:     grid.Rows,
		Cols:     grid.Cols,
		Barriers: make([]engine.Position, 0, grid.CountBarriers()),
	}
	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			p := engine.Position{Row: r, Col: c}
			cell := grid.At(p)
			if cell.Barrier {
				state.Barriers = append(state.Barriers, p)
			}
			switch cell.Role {
			case engine.RoleStart:
				start := p
				state.Start = &start
			case engine.RoleEnd:
				end := p
				state.End = &end
			}
		}
	}
	if session.Run != nil {
		state.Run = runStateOf(session)
	}
	return state
}

// runStateOf snapshots the session's run for rendering.
func runStateOf(session *Session) *RunState {
	snap := session.Run.Snapshot()
	return &RunState{
		ID:         session.RunID,
		Done:       snap.Done,
		Found:      snap.Found,
		Steps:      snap.Steps,
		Open:       snap.Open,
		Closed:     snap.Closed,
		Path:       snap.Path,
		PathLength: len(snap.Path),
	}
}
