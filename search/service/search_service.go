package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RustedSwords/A-Star-Path-Visualization/search/engine"
)

var (
	// ErrInvalidRunRequest is the root of all precondition failures a run
	// request can hit; the engine itself never observes these states.
	ErrInvalidRunRequest = errors.New("invalid run request")

	ErrNoStart        = fmt.Errorf("%w: no start cell set", ErrInvalidRunRequest)
	ErrNoEnd          = fmt.Errorf("%w: no end cell set", ErrInvalidRunRequest)
	ErrStartEqualsEnd = fmt.Errorf("%w: start and end are the same cell", ErrInvalidRunRequest)

	ErrNoActiveRun = errors.New("no active run")
	ErrOutOfBounds = errors.New("cell out of bounds")
	ErrCellIsStart = errors.New("cell holds the start role")
	ErrCellIsEnd   = errors.New("cell holds the end role")
)

// SearchService defines all grid and search operations.
type SearchService interface {
	// Session Management
	CreateSession(ctx context.Context, layoutName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Grid Editing (each edit discards any active run)
	SetStart(ctx context.Context, sessionID string, pos engine.Position) (*GridState, error)
	SetEnd(ctx context.Context, sessionID string, pos engine.Position) (*GridState, error)
	SetBarrier(ctx context.Context, sessionID string, pos engine.Position, barrier bool) (*GridState, error)
	ClearCell(ctx context.Context, sessionID string, pos engine.Position) (*GridState, error)
	ResetGrid(ctx context.Context, sessionID string) (*GridState, error)

	// Search Runs
	StartRun(ctx context.Context, sessionID string) (*RunState, error)
	StepRun(ctx context.Context, sessionID string, maxEvents int) (*StepResult, error)
	// RunToCompletion starts a fresh run and drains it. A positive maxEvents
	// bounds the drain; a run that hits the bound stays active and can be
	// resumed through StepRun.
	RunToCompletion(ctx context.Context, sessionID string, maxEvents int) (*RunResult, error)

	// State
	GetGridState(ctx context.Context, sessionID string) (*GridState, error)

	// Layouts
	ListLayouts(ctx context.Context) ([]*LayoutInfo, error)
	GetLayout(ctx context.Context, layoutName string) (*engine.Layout, error)
}

// SessionManager defines session storage operations.
type SessionManager interface {
	Create(id string, grid *engine.Grid, layoutName string) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Count() int
}

// LayoutManager handles grid layout preset loading.
type LayoutManager interface {
	LoadLayout(name string) (*engine.Layout, error)
	ListLayouts() ([]*LayoutInfo, error)
	GetDefault() *engine.Layout
}
