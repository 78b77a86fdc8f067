package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/RustedSwords/A-Star-Path-Visualization/metrics"
	"github.com/RustedSwords/A-Star-Path-Visualization/search/engine"
	"github.com/RustedSwords/A-Star-Path-Visualization/search/service"
	"github.com/RustedSwords/A-Star-Path-Visualization/transport/websocket"
)

// MockSearchService implements service.SearchService for testing
type MockSearchService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, layoutName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Grid Editing
	SetStartFunc   func(ctx context.Context, sessionID string, pos engine.Position) (*service.GridState, error)
	SetEndFunc     func(ctx context.Context, sessionID string, pos engine.Position) (*service.GridState, error)
	SetBarrierFunc func(ctx context.Context, sessionID string, pos engine.Position, barrier bool) (*service.GridState, error)
	ClearCellFunc  func(ctx context.Context, sessionID string, pos engine.Position) (*service.GridState, error)
	ResetGridFunc  func(ctx context.Context, sessionID string) (*service.GridState, error)

	// Search Runs
	StartRunFunc        func(ctx context.Context, sessionID string) (*service.RunState, error)
	StepRunFunc         func(ctx context.Context, sessionID string, maxEvents int) (*service.StepResult, error)
	RunToCompletionFunc func(ctx context.Context, sessionID string, maxEvents int) (*service.RunResult, error)

	// State
	GetGridStateFunc func(ctx context.Context, sessionID string) (*service.GridState, error)

	// Layouts
	ListLayoutsFunc func(ctx context.Context) ([]*service.LayoutInfo, error)
	GetLayoutFunc   func(ctx context.Context, layoutName string) (*engine.Layout, error)
}

// Session Management
func (m *MockSearchService) CreateSession(ctx context.Context, layoutName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, layoutName)
	}
	return &service.SessionInfo{
		ID:         "test-session",
		LayoutName: layoutName,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockSearchService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		LayoutName: "classic",
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockSearchService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockSearchService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

// Grid Editing
func (m *MockSearchService) SetStart(ctx context.Context, sessionID string, pos engine.Position) (*service.GridState, error) {
	if m.SetStartFunc != nil {
		return m.SetStartFunc(ctx, sessionID, pos)
	}
	return &service.GridState{Rows: 10, Cols: 10, Start: &pos}, nil
}

func (m *MockSearchService) SetEnd(ctx context.Context, sessionID string, pos engine.Position) (*service.GridState, error) {
	if m.SetEndFunc != nil {
		return m.SetEndFunc(ctx, sessionID, pos)
	}
	return &service.GridState{Rows: 10, Cols: 10, End: &pos}, nil
}

func (m *MockSearchService) SetBarrier(ctx context.Context, sessionID string, pos engine.Position, barrier bool) (*service.GridState, error) {
	if m.SetBarrierFunc != nil {
		return m.SetBarrierFunc(ctx, sessionID, pos, barrier)
	}
	return &service.GridState{Rows: 10, Cols: 10}, nil
}

func (m *MockSearchService) ClearCell(ctx context.Context, sessionID string, pos engine.Position) (*service.GridState, error) {
	if m.ClearCellFunc != nil {
		return m.ClearCellFunc(ctx, sessionID, pos)
	}
	return &service.GridState{Rows: 10, Cols: 10}, nil
}

func (m *MockSearchService) ResetGrid(ctx context.Context, sessionID string) (*service.GridState, error) {
	if m.ResetGridFunc != nil {
		return m.ResetGridFunc(ctx, sessionID)
	}
	return &service.GridState{Rows: 10, Cols: 10}, nil
}

// Search Runs
func (m *MockSearchService) StartRun(ctx context.Context, sessionID string) (*service.RunState, error) {
	if m.StartRunFunc != nil {
		return m.StartRunFunc(ctx, sessionID)
	}
	return &service.RunState{ID: "run-1"}, nil
}

func (m *MockSearchService) StepRun(ctx context.Context, sessionID string, maxEvents int) (*service.StepResult, error) {
	if m.StepRunFunc != nil {
		return m.StepRunFunc(ctx, sessionID, maxEvents)
	}
	return &service.StepResult{RunID: "run-1"}, nil
}

func (m *MockSearchService) RunToCompletion(ctx context.Context, sessionID string, maxEvents int) (*service.RunResult, error) {
	if m.RunToCompletionFunc != nil {
		return m.RunToCompletionFunc(ctx, sessionID, maxEvents)
	}
	return &service.RunResult{RunID: "run-1"}, nil
}

// State
func (m *MockSearchService) GetGridState(ctx context.Context, sessionID string) (*service.GridState, error) {
	if m.GetGridStateFunc != nil {
		return m.GetGridStateFunc(ctx, sessionID)
	}
	return &service.GridState{Rows: 10, Cols: 10}, nil
}

// Layouts
func (m *MockSearchService) ListLayouts(ctx context.Context) ([]*service.LayoutInfo, error) {
	if m.ListLayoutsFunc != nil {
		return m.ListLayoutsFunc(ctx)
	}
	return []*service.LayoutInfo{}, nil
}

func (m *MockSearchService) GetLayout(ctx context.Context, layoutName string) (*engine.Layout, error) {
	if m.GetLayoutFunc != nil {
		return m.GetLayoutFunc(ctx, layoutName)
	}
	return &engine.Layout{Name: layoutName, Rows: 10, Cols: 10}, nil
}

// Test helpers
func setupTestServer(mockService *MockSearchService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockSearchService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default layout",
			requestBody: nil,
			setupMock: func(m *MockSearchService) {
				m.CreateSessionFunc = func(ctx context.Context, layoutName string) (*service.SessionInfo, error) {
					return &service.SessionInfo{
						ID:             "sess-123",
						LayoutName:     "classic",
						CreatedAt:      time.Now(),
						LastAccessedAt: time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with specific layout",
			requestBody: map[string]string{"layout_id": "maze"},
			setupMock: func(m *MockSearchService) {
				m.CreateSessionFunc = func(ctx context.Context, layoutName string) (*service.SessionInfo, error) {
					if layoutName != "maze" {
						t.Errorf("Expected layout 'maze', got %s", layoutName)
					}
					return &service.SessionInfo{
						ID:         "sess-456",
						LayoutName: layoutName,
						CreatedAt:  time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.LayoutName != "maze" {
					t.Errorf("Expected layout 'maze', got %s", resp.LayoutName)
				}
			},
		},
		{
			name:        "Unknown layout",
			requestBody: map[string]string{"layout_id": "nope"},
			setupMock: func(m *MockSearchService) {
				m.CreateSessionFunc = func(ctx context.Context, layoutName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("layout 'nope' not found. Available layouts: [classic maze]")
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] == "" {
					t.Error("Expected an error message")
				}
			},
		},
		{
			name:        "Handle service error",
			requestBody: nil,
			setupMock: func(m *MockSearchService) {
				m.CreateSessionFunc = func(ctx context.Context, layoutName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockSearchService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions", tt.requestBody)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockSearchService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "List multiple sessions",
			setupMock: func(m *MockSearchService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) {
					return []*service.SessionInfo{
						{ID: "sess-1", LayoutName: "classic"},
						{ID: "sess-2", LayoutName: "maze"},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["count"].(float64) != 2 {
					t.Errorf("Expected count 2, got %v", resp["count"])
				}
				sessions := resp["sessions"].([]interface{})
				if len(sessions) != 2 {
					t.Errorf("Expected 2 sessions, got %d", len(sessions))
				}
			},
		},
		{
			name: "Handle empty session list",
			setupMock: func(m *MockSearchService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) {
					return []*service.SessionInfo{}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["count"].(float64) != 0 {
					t.Errorf("Expected count 0, got %v", resp["count"])
				}
			},
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockSearchService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) {
					return nil, fmt.Errorf("storage error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "storage error" {
					t.Errorf("Expected error 'storage error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockSearchService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/sessions", nil)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockSearchService)
		expectedStatus int
	}{
		{
			name:      "Get existing session",
			sessionID: "sess-123",
			setupMock: func(m *MockSearchService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					if sessionID != "sess-123" {
						return nil, fmt.Errorf("session not found")
					}
					return &service.SessionInfo{
						ID:         sessionID,
						LayoutName: "classic",
						CreatedAt:  time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "Session not found",
			sessionID: "nonexistent",
			setupMock: func(m *MockSearchService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockSearchService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/sessions/"+tt.sessionID, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleGetSession(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestDeleteSession(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockSearchService)
		expectedStatus int
	}{
		{
			name:      "Delete existing session",
			sessionID: "sess-123",
			setupMock: func(m *MockSearchService) {
				m.DeleteSessionFunc = func(ctx context.Context, sessionID string) error {
					if sessionID != "sess-123" {
						return fmt.Errorf("session not found")
					}
					return nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "Delete non-existent session",
			sessionID: "nonexistent",
			setupMock: func(m *MockSearchService) {
				m.DeleteSessionFunc = func(ctx context.Context, sessionID string) error {
					return fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockSearchService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("DELETE", "/api/sessions/"+tt.sessionID, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleDeleteSession(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

// Grid Editing Tests

func TestSetStart(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		setupMock      func(*MockSearchService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Valid start placement",
			requestBody: map[string]interface{}{"row": 2, "col": 3},
			setupMock: func(m *MockSearchService) {
				m.SetStartFunc = func(ctx context.Context, sessionID string, pos engine.Position) (*service.GridState, error) {
					if pos != (engine.Position{Row: 2, Col: 3}) {
						t.Errorf("Expected position (2,3), got %v", pos)
					}
					return &service.GridState{Rows: 10, Cols: 10, Start: &pos}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.GridState
				parseResponse(t, w, &resp)
				if resp.Start == nil || resp.Start.Row != 2 || resp.Start.Col != 3 {
					t.Errorf("Expected start at (2,3), got %v", resp.Start)
				}
			},
		},
		{
			name:        "Out of bounds",
			requestBody: map[string]interface{}{"row": 99, "col": 0},
			setupMock: func(m *MockSearchService) {
				m.SetStartFunc = func(ctx context.Context, sessionID string, pos engine.Position) (*service.GridState, error) {
					return nil, fmt.Errorf("%w: (99,0)", service.ErrOutOfBounds)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Cell holds the end role",
			requestBody: map[string]interface{}{"row": 4, "col": 4},
			setupMock: func(m *MockSearchService) {
				m.SetStartFunc = func(ctx context.Context, sessionID string, pos engine.Position) (*service.GridState, error) {
					return nil, fmt.Errorf("%w: (4,4)", service.ErrCellIsEnd)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockSearchService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions/sess-123/start", tt.requestBody)
			req = mux.SetURLVars(req, map[string]string{"id": "sess-123"})

			server.handleSetStart(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestSetBarrier(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		setupMock      func(*MockSearchService)
		expectedStatus int
	}{
		{
			name:        "Place barrier with omitted flag",
			requestBody: map[string]interface{}{"row": 1, "col": 1},
			setupMock: func(m *MockSearchService) {
				m.SetBarrierFunc = func(ctx context.Context, sessionID string, pos engine.Position, barrier bool) (*service.GridState, error) {
					if !barrier {
						t.Error("Omitted barrier flag should default to true")
					}
					return &service.GridState{Rows: 10, Cols: 10, Barriers: []engine.Position{pos}}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "Remove barrier",
			requestBody: map[string]interface{}{"row": 1, "col": 1, "barrier": false},
			setupMock: func(m *MockSearchService) {
				m.SetBarrierFunc = func(ctx context.Context, sessionID string, pos engine.Position, barrier bool) (*service.GridState, error) {
					if barrier {
						t.Error("Expected barrier=false")
					}
					return &service.GridState{Rows: 10, Cols: 10}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "Reject barrier on start cell",
			requestBody: map[string]interface{}{"row": 0, "col": 0},
			setupMock: func(m *MockSearchService) {
				m.SetBarrierFunc = func(ctx context.Context, sessionID string, pos engine.Position, barrier bool) (*service.GridState, error) {
					return nil, fmt.Errorf("%w: (0,0)", service.ErrCellIsStart)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockSearchService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions/sess-123/barrier", tt.requestBody)
			req = mux.SetURLVars(req, map[string]string{"id": "sess-123"})

			server.handleSetBarrier(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestReset(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockSearchService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:      "Reset existing session",
			sessionID: "sess-123",
			setupMock: func(m *MockSearchService) {
				m.ResetGridFunc = func(ctx context.Context, sessionID string) (*service.GridState, error) {
					return &service.GridState{Rows: 10, Cols: 10, Barriers: []engine.Position{}}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["message"] != "Grid reset successfully" {
					t.Errorf("Expected success message, got %s", resp["message"])
				}
				state := resp["state"].(map[string]interface{})
				if state["rows"].(float64) != 10 {
					t.Error("Expected reset state in response")
				}
			},
		},
		{
			name:      "Reset non-existent session",
			sessionID: "nonexistent",
			setupMock: func(m *MockSearchService) {
				m.ResetGridFunc = func(ctx context.Context, sessionID string) (*service.GridState, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockSearchService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions/"+tt.sessionID+"/reset", nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleReset(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

// Search Run Tests

func TestRun(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		setupMock      func(*MockSearchService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "Run finds a path",
			setupMock: func(m *MockSearchService) {
				m.RunToCompletionFunc = func(ctx context.Context, sessionID string, maxEvents int) (*service.RunResult, error) {
					if maxEvents != 0 {
						t.Errorf("Expected maxEvents 0 for an empty body, got %d", maxEvents)
					}
					return &service.RunResult{
						RunID:      "run-1",
						Found:      true,
						Path:       []engine.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}},
						PathLength: 2,
						Events: []engine.Event{
							{Type: engine.EventClosed, Cell: engine.Position{Row: 0, Col: 0}},
							{Type: engine.EventPathFound, Path: []engine.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}}},
						},
						State: &service.GridState{Rows: 10, Cols: 10},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.RunResult
				parseResponse(t, w, &resp)
				if !resp.Found {
					t.Error("Expected found=true")
				}
				if resp.PathLength != 2 {
					t.Errorf("Expected path length 2, got %d", resp.PathLength)
				}
			},
		},
		{
			name:        "Run bounded by max_events",
			requestBody: map[string]interface{}{"max_events": 5},
			setupMock: func(m *MockSearchService) {
				m.RunToCompletionFunc = func(ctx context.Context, sessionID string, maxEvents int) (*service.RunResult, error) {
					if maxEvents != 5 {
						t.Errorf("Expected maxEvents 5, got %d", maxEvents)
					}
					return &service.RunResult{
						RunID: "run-1",
						Events: []engine.Event{
							{Type: engine.EventClosed, Cell: engine.Position{Row: 0, Col: 0}},
						},
						State: &service.GridState{Rows: 10, Cols: 10},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Run without a start cell",
			setupMock: func(m *MockSearchService) {
				m.RunToCompletionFunc = func(ctx context.Context, sessionID string, maxEvents int) (*service.RunResult, error) {
					return nil, service.ErrNoStart
				}
			},
			expectedStatus: http.StatusBadRequest,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] == "" {
					t.Error("Expected an error message")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockSearchService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions/sess-123/run", tt.requestBody)
			req = mux.SetURLVars(req, map[string]string{"id": "sess-123"})

			server.handleRun(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		setupMock      func(*MockSearchService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Step an active run",
			requestBody: map[string]interface{}{"events": 3},
			setupMock: func(m *MockSearchService) {
				m.StepRunFunc = func(ctx context.Context, sessionID string, maxEvents int) (*service.StepResult, error) {
					if maxEvents != 3 {
						t.Errorf("Expected maxEvents 3, got %d", maxEvents)
					}
					return &service.StepResult{
						RunID: "run-1",
						Events: []engine.Event{
							{Type: engine.EventClosed, Cell: engine.Position{Row: 0, Col: 0}},
							{Type: engine.EventOpened, Cell: engine.Position{Row: 1, Col: 0}},
							{Type: engine.EventOpened, Cell: engine.Position{Row: 0, Col: 1}},
						},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.StepResult
				parseResponse(t, w, &resp)
				if len(resp.Events) != 3 {
					t.Errorf("Expected 3 events, got %d", len(resp.Events))
				}
			},
		},
		{
			name:        "Start a fresh run before stepping",
			requestBody: map[string]interface{}{"start": true, "events": 1},
			setupMock: func(m *MockSearchService) {
				started := false
				m.StartRunFunc = func(ctx context.Context, sessionID string) (*service.RunState, error) {
					started = true
					return &service.RunState{ID: "run-2"}, nil
				}
				m.StepRunFunc = func(ctx context.Context, sessionID string, maxEvents int) (*service.StepResult, error) {
					if !started {
						t.Error("StartRun should be called before StepRun")
					}
					return &service.StepResult{RunID: "run-2"}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "Step without an active run",
			requestBody: map[string]interface{}{"events": 1},
			setupMock: func(m *MockSearchService) {
				m.StepRunFunc = func(ctx context.Context, sessionID string, maxEvents int) (*service.StepResult, error) {
					return nil, service.ErrNoActiveRun
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockSearchService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions/sess-123/step", tt.requestBody)
			req = mux.SetURLVars(req, map[string]string{"id": "sess-123"})

			server.handleStep(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetGridState(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockSearchService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:      "Get existing grid state",
			sessionID: "sess-123",
			setupMock: func(m *MockSearchService) {
				m.GetGridStateFunc = func(ctx context.Context, sessionID string) (*service.GridState, error) {
					start := engine.Position{Row: 0, Col: 0}
					return &service.GridState{
						Rows:     15,
						Cols:     15,
						Barriers: []engine.Position{{Row: 3, Col: 3}},
						Start:    &start,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.GridState
				parseResponse(t, w, &resp)
				if resp.Rows != 15 || len(resp.Barriers) != 1 {
					t.Errorf("Unexpected grid state: %+v", resp)
				}
			},
		},
		{
			name:      "Session not found",
			sessionID: "nonexistent",
			setupMock: func(m *MockSearchService) {
				m.GetGridStateFunc = func(ctx context.Context, sessionID string) (*service.GridState, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockSearchService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/sessions/"+tt.sessionID+"/state", nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleGetGridState(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListLayouts(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockSearchService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "List available layouts",
			setupMock: func(m *MockSearchService) {
				m.ListLayoutsFunc = func(ctx context.Context) ([]*service.LayoutInfo, error) {
					return []*service.LayoutInfo{
						{LayoutID: "classic", Name: "Classic", Rows: 10, Cols: 10},
						{LayoutID: "maze", Name: "Maze", Rows: 20, Cols: 20},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp []*service.LayoutInfo
				parseResponse(t, w, &resp)
				if len(resp) != 2 {
					t.Errorf("Expected 2 layouts, got %d", len(resp))
				}
			},
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockSearchService) {
				m.ListLayoutsFunc = func(ctx context.Context) ([]*service.LayoutInfo, error) {
					return nil, fmt.Errorf("layout error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockSearchService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/layouts", nil)

			server.handleListLayouts(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetLayout(t *testing.T) {
	tests := []struct {
		name           string
		layoutName     string
		setupMock      func(*MockSearchService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:       "Get an existing layout",
			layoutName: "classic",
			setupMock: func(m *MockSearchService) {
				m.GetLayoutFunc = func(ctx context.Context, layoutName string) (*engine.Layout, error) {
					if layoutName != "classic" {
						t.Errorf("Expected layout 'classic', got %s", layoutName)
					}
					return &engine.Layout{
						Name:   "classic",
						Rows:   3,
						Cols:   3,
						Layout: []string{"S..", ".#.", "..E"},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp engine.Layout
				parseResponse(t, w, &resp)
				if resp.Name != "classic" {
					t.Errorf("Expected layout name classic, got %s", resp.Name)
				}
				if len(resp.Layout) != 3 {
					t.Errorf("Expected 3 layout rows, got %d", len(resp.Layout))
				}
			},
		},
		{
			name:       "Get an unknown layout",
			layoutName: "nonexistent",
			setupMock: func(m *MockSearchService) {
				m.GetLayoutFunc = func(ctx context.Context, layoutName string) (*engine.Layout, error) {
					return nil, fmt.Errorf("layout %q not found", layoutName)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockSearchService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/layouts/"+tt.layoutName, nil)

			// Route through the full router so {name} is extracted.
			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestRequestMetrics(t *testing.T) {
	server := setupTestServer(&MockSearchService{})

	counter := metrics.APIRequests.WithLabelValues("/api/layouts", "GET")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	req := makeRequest("GET", "/api/layouts", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	// The collectors are process-global, so assert on the delta.
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("Expected request counter to grow by 1, got %v", got)
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(&MockSearchService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/healthz", nil)

	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %s", resp["status"])
	}
}

func TestWebSocketEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockSearchService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			queryParams:    "",
			setupMock:      nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockSearchService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockSearchService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/ws"+tt.queryParams, nil)

			server.handleWebSocket(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}
