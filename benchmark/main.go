// Command benchmark drives the visualizer API end to end. For every layout
// preset on the server it creates a session, places missing start/end roles,
// runs the search (draining it stepwise when -step is set), and verifies the
// returned path locally against an independent BFS.
//
// Exit status is non-zero when any layout fails verification, so the command
// doubles as a smoke test against a running server.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type Event struct {
	Type string     `json:"type"`
	Cell Position   `json:"cell"`
	Path []Position `json:"path,omitempty"`
}

type RunView struct {
	ID         string     `json:"id"`
	Done       bool       `json:"done"`
	Found      bool       `json:"found"`
	Steps      int        `json:"steps"`
	Open       []Position `json:"open"`
	Closed     []Position `json:"closed"`
	Path       []Position `json:"path,omitempty"`
	PathLength int        `json:"path_length,omitempty"`
}

type GridState struct {
	Rows     int        `json:"rows"`
	Cols     int        `json:"cols"`
	Barriers []Position `json:"barriers"`
	Start    *Position  `json:"start,omitempty"`
	End      *Position  `json:"end,omitempty"`
	Run      *RunView   `json:"run,omitempty"`
}

type SessionResponse struct {
	ID         string     `json:"id"`
	LayoutName string     `json:"layout_name"`
	GridState  *GridState `json:"grid_state"`
}

type RunResult struct {
	RunID      string     `json:"run_id"`
	Found      bool       `json:"found"`
	Path       []Position `json:"path,omitempty"`
	PathLength int        `json:"path_length"`
	Opened     int        `json:"opened"`
	Closed     int        `json:"closed"`
	Events     []Event    `json:"events"`
	State      *GridState `json:"state"`
}

type StepResult struct {
	RunID  string     `json:"run_id"`
	Events []Event    `json:"events"`
	Done   bool       `json:"done"`
	Found  bool       `json:"found"`
	State  *GridState `json:"state"`
}

type LayoutInfo struct {
	LayoutID    string `json:"layout_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Barriers    int    `json:"barriers"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) post(path string, payload any, out any) error {
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.client.Post(c.baseURL+path, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("post %s failed: %s - %s", path, resp.Status, string(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse response from %s: %w", path, err)
		}
	}
	return nil
}

func (c *Client) get(path string, out any) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("get %s failed: %s - %s", path, resp.Status, string(data))
	}
	return json.Unmarshal(data, out)
}

func (c *Client) ListLayouts() ([]LayoutInfo, error) {
	var layouts []LayoutInfo
	if err := c.get("/api/layouts", &layouts); err != nil {
		return nil, err
	}
	return layouts, nil
}

func (c *Client) CreateSession(layoutID string) (*GridState, error) {
	payload := map[string]string{}
	if layoutID != "" {
		payload["layout_id"] = layoutID
	}

	var session SessionResponse
	if err := c.post("/api/sessions", payload, &session); err != nil {
		return nil, err
	}
	c.sessionID = session.ID
	return session.GridState, nil
}

func (c *Client) DeleteSession() error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/sessions/%s", c.baseURL, c.sessionID), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) SetStart(p Position) (*GridState, error) {
	return c.cellEdit("start", p)
}

func (c *Client) SetEnd(p Position) (*GridState, error) {
	return c.cellEdit("end", p)
}

func (c *Client) cellEdit(endpoint string, p Position) (*GridState, error) {
	var state GridState
	path := fmt.Sprintf("/api/sessions/%s/%s", c.sessionID, endpoint)
	if err := c.post(path, p, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) Run() (*RunResult, error) {
	var result RunResult
	path := fmt.Sprintf("/api/sessions/%s/run", c.sessionID)
	if err := c.post(path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Step(start bool, events int) (*StepResult, error) {
	var result StepResult
	path := fmt.Sprintf("/api/sessions/%s/step", c.sessionID)
	payload := map[string]any{"start": start, "events": events}
	if err := c.post(path, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// stepToCompletion drains a run through the step endpoint and stitches the
// event batches into a RunResult equivalent to a single /run call.
func (c *Client) stepToCompletion(batch int, delay time.Duration, verbose bool) (*RunResult, error) {
	result := &RunResult{}
	start := true
	for {
		step, err := c.Step(start, batch)
		if err != nil {
			return nil, err
		}
		start = false

		result.RunID = step.RunID
		for _, ev := range step.Events {
			switch ev.Type {
			case "opened":
				result.Opened++
			case "closed":
				result.Closed++
			case "path_found":
				result.Found = true
				result.Path = ev.Path
				result.PathLength = len(ev.Path)
			}
		}
		result.Events = append(result.Events, step.Events...)
		result.State = step.State

		if verbose {
			log.Printf("  step: +%d events (opened=%d closed=%d)", len(step.Events), result.Opened, result.Closed)
		}
		if step.Done {
			return result, nil
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
}

// placeMissingRoles fills in start/end on layouts that ship without them,
// using the first and last open cells in row-major order.
func placeMissingRoles(c *Client, state *GridState) (*GridState, error) {
	if state.Start == nil {
		p, ok := firstOpenCell(state, false)
		if !ok {
			return nil, fmt.Errorf("no open cell available for start")
		}
		s, err := c.SetStart(p)
		if err != nil {
			return nil, fmt.Errorf("set start: %w", err)
		}
		state = s
	}
	if state.End == nil {
		p, ok := firstOpenCell(state, true)
		if !ok {
			return nil, fmt.Errorf("no open cell available for end")
		}
		s, err := c.SetEnd(p)
		if err != nil {
			return nil, fmt.Errorf("set end: %w", err)
		}
		state = s
	}
	return state, nil
}

// firstOpenCell scans row-major (or reverse row-major) for a cell that is
// neither a barrier nor an existing role holder.
func firstOpenCell(state *GridState, reverse bool) (Position, bool) {
	blocked := make(map[Position]bool, len(state.Barriers)+2)
	for _, b := range state.Barriers {
		blocked[b] = true
	}
	if state.Start != nil {
		blocked[*state.Start] = true
	}
	if state.End != nil {
		blocked[*state.End] = true
	}

	for i := 0; i < state.Rows*state.Cols; i++ {
		idx := i
		if reverse {
			idx = state.Rows*state.Cols - 1 - i
		}
		p := Position{Row: idx / state.Cols, Col: idx % state.Cols}
		if !blocked[p] {
			return p, true
		}
	}
	return Position{}, false
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Visualizer server URL")
	layoutID := flag.String("layout", "", "Benchmark a single layout instead of all presets")
	stepMode := flag.Bool("step", false, "Drain runs through the step endpoint instead of /run")
	batch := flag.Int("batch", 16, "Events per step request in step mode")
	delayMs := flag.Int("delay", 0, "Delay between step requests in milliseconds")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	log.Printf("Connecting to visualizer server at %s", *serverURL)
	client := NewClient(*serverURL)

	var layoutIDs []string
	if *layoutID != "" {
		layoutIDs = []string{*layoutID}
	} else {
		layouts, err := client.ListLayouts()
		if err != nil {
			log.Fatalf("Failed to list layouts: %v", err)
		}
		for _, l := range layouts {
			layoutIDs = append(layoutIDs, l.LayoutID)
		}
		if len(layoutIDs) == 0 {
			log.Fatal("Server reports no layouts")
		}
	}

	failures := 0
	for _, id := range layoutIDs {
		log.Printf("\n=== Layout %q ===", id)

		state, err := client.CreateSession(id)
		if err != nil {
			log.Printf("FAIL: create session: %v", err)
			failures++
			continue
		}

		state, err = placeMissingRoles(client, state)
		if err != nil {
			log.Printf("FAIL: %v", err)
			failures++
			client.DeleteSession()
			continue
		}

		started := time.Now()
		var result *RunResult
		if *stepMode {
			result, err = client.stepToCompletion(*batch, time.Duration(*delayMs)*time.Millisecond, *verbose)
		} else {
			result, err = client.Run()
		}
		if err != nil {
			log.Printf("FAIL: run: %v", err)
			failures++
			client.DeleteSession()
			continue
		}
		elapsed := time.Since(started)

		if result.Found {
			log.Printf("Path found: %d cells | opened=%d closed=%d | %v",
				result.PathLength, result.Opened, result.Closed, elapsed)
		} else {
			log.Printf("No path exists | opened=%d closed=%d | %v",
				result.Opened, result.Closed, elapsed)
		}

		if err := VerifyRun(state, result); err != nil {
			log.Printf("FAIL: verification: %v", err)
			failures++
		} else {
			log.Printf("OK: verified against local BFS")
		}

		if err := client.DeleteSession(); err != nil {
			log.Printf("Warning: failed to delete session: %v", err)
		}
	}

	if failures > 0 {
		log.Printf("\n%d layout(s) failed", failures)
		os.Exit(1)
	}
	log.Printf("\nAll %d layout(s) verified", len(layoutIDs))
}
