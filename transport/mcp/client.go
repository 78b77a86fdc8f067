package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/RustedSwords/A-Star-Path-Visualization/search/engine"
	"github.com/RustedSwords/A-Star-Path-Visualization/search/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"A* Path Visualizer",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`A* Path Visualizer - MCP Interface

This is a thin client that proxies all requests to the REST API server.

WHAT THIS IS:
An interactive A* shortest-path demonstration on a uniform 2D grid. Place a
start cell, an end cell, and walls, then run the search to completion or
step through it event by event.

AVAILABLE TOOLS:
- create_session: Create a new grid session (optional layout selection)
- list_sessions: List all active sessions
- get_session: Get session details including the rendered grid
- delete_session: Remove a session
- grid_state: Get the current grid and run state
- set_start / set_end: Assign the start or end role to a cell
- toggle_barrier: Place or remove a wall on a cell
- clear_cell: Clear a cell's role and wall
- reset_grid: Clear the whole grid
- run_search: Run the A* search to completion
- step_search: Advance the search by a bounded number of events
- list_layouts: List available layout presets
- describe_cell: Get detailed info about a specific grid cell

GRID LEGEND:
- S: start cell  E: end cell  #: wall  .: empty
- o: frontier (open)  x: expanded (closed)  *: final path

Cells are addressed by (row, col), both 0-based, row 0 at the top.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new grid session with optional layout selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"layout_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the layout preset to use (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active grid sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a grid session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to delete",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleDeleteSession)

	// Grid state
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "grid_state",
		Description: "Get the current grid state, rendered as ASCII plus run progress",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGridState)

	// Grid editing
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_start",
		Description: "Assign the start role to a cell. Clears any previous start and removes a wall on the chosen cell.",
		InputSchema: cellSchema("Cell to mark as the search start"),
	}, c.handleSetStart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_end",
		Description: "Assign the end role to a cell. Clears any previous end and removes a wall on the chosen cell.",
		InputSchema: cellSchema("Cell to mark as the search target"),
	}, c.handleSetEnd)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "toggle_barrier",
		Description: "Place or remove a wall on a cell. Cells holding the start or end role are rejected.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based)",
				},
				"barrier": map[string]interface{}{
					"type":        "boolean",
					"description": "true places a wall (default), false removes one",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleSetBarrier)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "clear_cell",
		Description: "Clear a cell, removing any role and wall",
		InputSchema: cellSchema("Cell to clear"),
	}, c.handleClearCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_grid",
		Description: "Clear the entire grid: all walls, the start and end roles, and any run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleResetGrid)

	// Search runs
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_search",
		Description: "Run the A* search to completion and report the outcome",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRunSearch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step_search",
		Description: "Advance the search by a bounded number of events. Set start=true to begin a fresh run first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"events": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of events to produce (default 1)",
				},
				"start": map[string]interface{}{
					"type":        "boolean",
					"description": "Begin a fresh run before stepping",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleStepSearch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_layouts",
		Description: "List available grid layout presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLayouts)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about a specific cell: its role, wall state, and where it stands in the current run (open, closed, or on the path).",
		InputSchema: cellSchema("Cell to describe"),
	}, c.handleDescribeCell)
}

// cellSchema builds the shared input schema for cell-addressed tools.
func cellSchema(desc string) mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session ID",
			},
			"row": map[string]interface{}{
				"type":        "integer",
				"description": desc + ": row (0-based)",
			},
			"col": map[string]interface{}{
				"type":        "integer",
				"description": desc + ": column (0-based)",
			},
		},
		Required: []string{"session_id", "row", "col"},
	}
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// cellArgs extracts the shared (session_id, row, col) arguments.
func cellArgs(request mcp.CallToolRequest) (sessionID string, row, col int) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ = args["session_id"].(string)
	if v, ok := args["row"].(float64); ok {
		row = int(v)
	}
	if v, ok := args["col"].(float64); ok {
		col = int(v)
	}
	return sessionID, row, col
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	layoutID, _ := args["layout_id"].(string)

	body := map[string]string{}
	if layoutID != "" {
		body["layout_id"] = layoutID
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLayout: %s\n\n%s",
		session.ID, session.LayoutName, formatGridState(session.GridState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Layout: %s, Created: %s)\n",
			s.ID, s.LayoutName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	err := c.apiCall("DELETE", fmt.Sprintf("/api/sessions/%s", sessionID), nil, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Session %s deleted", sessionID)), nil
}

func (c *Client) handleGridState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state service.GridState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatGridState(&state)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSetStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.cellEdit(request, "start", "Start set")
}

func (c *Client) handleSetEnd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.cellEdit(request, "end", "End set")
}

func (c *Client) handleClearCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.cellEdit(request, "clear-cell", "Cell cleared")
}

// cellEdit posts a position to a session edit endpoint and renders the result.
func (c *Client) cellEdit(request mcp.CallToolRequest, endpoint, verb string) (*mcp.CallToolResult, error) {
	sessionID, row, col := cellArgs(request)

	body := map[string]int{"row": row, "col": col}

	var state service.GridState
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/%s", sessionID, endpoint), body, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s at (%d,%d)\n\n%s", verb, row, col, formatGridState(&state))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSetBarrier(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, row, col := cellArgs(request)
	args := request.Params.Arguments.(map[string]interface{})

	barrier := true
	if v, ok := args["barrier"].(bool); ok {
		barrier = v
	}

	body := map[string]interface{}{"row": row, "col": col, "barrier": barrier}

	var state service.GridState
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/barrier", sessionID), body, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verb := "Wall placed"
	if !barrier {
		verb = "Wall removed"
	}
	result := fmt.Sprintf("%s at (%d,%d)\n\n%s", verb, row, col, formatGridState(&state))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleResetGrid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string             `json:"message"`
		State   *service.GridState `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGridState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRunSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var result service.RunResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/run", sessionID), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatRunResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleStepSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	start, _ := args["start"].(bool)

	events := 1
	if v, ok := args["events"].(float64); ok {
		events = int(v)
	}

	body := map[string]interface{}{"events": events, "start": start}

	var result service.StepResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/step", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatStepResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleListLayouts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var layouts []service.LayoutInfo
	err := c.apiCall("GET", "/api/layouts", nil, &layouts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Layouts:\n\n"
	for _, layout := range layouts {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Grid: %dx%d, Walls: %d\n\n",
			layout.Name, layout.LayoutID, layout.Description, layout.Rows, layout.Cols, layout.Barriers)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, row, col := cellArgs(request)

	var state service.GridState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if row < 0 || row >= state.Rows || col < 0 || col >= state.Cols {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Cell (%d,%d) is out of bounds. Grid is %dx%d (rows 0-%d, cols 0-%d)",
			row, col, state.Rows, state.Cols, state.Rows-1, state.Cols-1)), nil
	}

	pos := engine.Position{Row: row, Col: col}

	char := "."
	kind := "Empty"
	passable := true
	description := "Empty cell, passable"

	for _, b := range state.Barriers {
		if b == pos {
			char, kind, passable = "#", "Wall", false
			description = "Wall, the search routes around it"
		}
	}
	if state.Start != nil && *state.Start == pos {
		char, kind = "S", "Start"
		description = "Search origin"
	}
	if state.End != nil && *state.End == pos {
		char, kind = "E", "End"
		description = "Search target"
	}

	var runNote string
	if state.Run != nil {
		switch {
		case containsPosition(state.Run.Path, pos):
			runNote = "On the final path (*)"
		case containsPosition(state.Run.Closed, pos):
			runNote = "Closed: expanded with its optimal distance settled (x)"
		case containsPosition(state.Run.Open, pos):
			runNote = "Open: on the frontier awaiting expansion (o)"
		default:
			runNote = "Untouched by the current run"
		}
	}

	result := fmt.Sprintf(`Cell at (%d,%d):
Character: %s
Type: %s
Passable: %v
Description: %s`,
		row, col, char, kind, passable, description)
	if runNote != "" {
		result += "\nRun: " + runNote
	}

	return mcp.NewToolResultText(result), nil
}

func containsPosition(list []engine.Position, pos engine.Position) bool {
	for _, p := range list {
		if p == pos {
			return true
		}
	}
	return false
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLayout: %s\nCreated: %s\n\n%s",
		session.ID, session.LayoutName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGridState(session.GridState))
}

// formatGridState renders the grid as ASCII. A run overlays the open
// frontier (o), closed cells (x), and the final path (*) on top of the
// static grid; S and E always win.
func formatGridState(state *service.GridState) string {
	if state == nil {
		return "No grid state available"
	}

	chars := make([][]byte, state.Rows)
	for r := range chars {
		chars[r] = bytes.Repeat([]byte{'.'}, state.Cols)
	}
	set := func(positions []engine.Position, ch byte) {
		for _, p := range positions {
			if p.Row >= 0 && p.Row < state.Rows && p.Col >= 0 && p.Col < state.Cols {
				chars[p.Row][p.Col] = ch
			}
		}
	}

	set(state.Barriers, '#')
	if state.Run != nil {
		set(state.Run.Open, 'o')
		set(state.Run.Closed, 'x')
		set(state.Run.Path, '*')
	}
	if state.Start != nil {
		chars[state.Start.Row][state.Start.Col] = 'S'
	}
	if state.End != nil {
		chars[state.End.Row][state.End.Col] = 'E'
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Grid %dx%d | Walls: %d", state.Rows, state.Cols, len(state.Barriers)))
	if state.Start == nil {
		result.WriteString(" | start: unset")
	}
	if state.End == nil {
		result.WriteString(" | end: unset")
	}
	result.WriteString("\n")

	if run := state.Run; run != nil {
		status := "running"
		if run.Done {
			if run.Found {
				status = fmt.Sprintf("path found (%d cells)", run.PathLength)
			} else {
				status = "no path exists"
			}
		}
		result.WriteString(fmt.Sprintf("Run %s | %s | expanded: %d | frontier: %d\n",
			run.ID, status, len(run.Closed), len(run.Open)))
	}
	result.WriteString("\n")

	for _, row := range chars {
		result.Write(row)
		result.WriteString("\n")
	}

	return result.String()
}

func formatRunResult(result *service.RunResult) string {
	var b strings.Builder

	if result.Found {
		b.WriteString(fmt.Sprintf("Path found: %d cells\n", result.PathLength))
	} else {
		b.WriteString("No path exists between start and end\n")
	}
	b.WriteString(fmt.Sprintf("Run: %s | cells expanded: %d | cells opened: %d\n",
		result.RunID, result.Closed, result.Opened))

	if result.Found && len(result.Path) > 0 {
		b.WriteString("Path: ")
		for i, p := range result.Path {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(fmt.Sprintf("(%d,%d)", p.Row, p.Col))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formatGridState(result.State))
	return b.String()
}

func formatStepResult(result *service.StepResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Run %s advanced by %d events\n", result.RunID, len(result.Events)))
	for _, ev := range result.Events {
		switch ev.Type {
		case engine.EventOpened:
			b.WriteString(fmt.Sprintf("- opened (%d,%d)\n", ev.Cell.Row, ev.Cell.Col))
		case engine.EventClosed:
			b.WriteString(fmt.Sprintf("- closed (%d,%d)\n", ev.Cell.Row, ev.Cell.Col))
		case engine.EventPathFound:
			b.WriteString(fmt.Sprintf("- path found: %d cells\n", len(ev.Path)))
		case engine.EventNoPath:
			b.WriteString("- no path exists\n")
		}
	}

	if result.Done {
		if result.Found {
			b.WriteString("Search complete: path found\n")
		} else {
			b.WriteString("Search complete: no path\n")
		}
	}

	if result.State != nil {
		b.WriteString("\n")
		b.WriteString(formatGridState(result.State))
	}
	return b.String()
}
