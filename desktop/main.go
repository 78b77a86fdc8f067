// Command desktop is a native client for the A* path visualizer server.
// It renders the grid with ebiten, edits it with the mouse, and animates
// search events streamed over the server's WebSocket.
//
// Controls:
//
//	Left click / drag   draw barriers
//	Right click / drag  erase cells
//	S / E               place start / end at the hovered cell
//	Space               step the search (a small batch of events)
//	Enter               run the search to completion
//	C                   reset the grid to its layout
//	Q                   quit
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	headerHeight    = 60
	footerHeight    = 24
	screenWidth     = 800
	screenHeight    = 720
	baseURL         = "http://localhost:8080"
	eventsPerFrame  = 2 // reveal speed for streamed search events
	stepEventsBatch = 8
)

// Cell and overlay colors, matching the web frontend's palette.
var (
	colorBackground = color.RGBA{20, 20, 30, 255}
	colorEmpty      = color.RGBA{235, 235, 235, 255}
	colorBarrier    = color.RGBA{25, 25, 25, 255}
	colorStart      = color.RGBA{255, 165, 0, 255}  // orange
	colorEnd        = color.RGBA{64, 224, 208, 255} // turquoise
	colorOpen       = color.RGBA{80, 200, 120, 255} // green frontier
	colorClosed     = color.RGBA{220, 80, 80, 255}  // red expanded
	colorPath       = color.RGBA{160, 80, 220, 255} // purple path
)

// Position mirrors the server's (row, col) coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Event mirrors one search event from the server.
type Event struct {
	Type string     `json:"type"`
	Cell Position   `json:"cell"`
	Path []Position `json:"path,omitempty"`
}

// RunView mirrors the server's run state.
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

// GridState mirrors the server's grid state payload.
type GridState struct {
	Rows     int        `json:"rows"`
	Cols     int        `json:"cols"`
	Barriers []Position `json:"barriers"`
	Start    *Position  `json:"start,omitempty"`
	End      *Position  `json:"end,omitempty"`
	Run      *RunView   `json:"run,omitempty"`
}

// WSMessage is the wrapper the hub broadcasts.
type WSMessage struct {
	SessionID string     `json:"session_id"`
	Type      string     `json:"type"`
	State     *GridState `json:"state,omitempty"`
	RunID     string     `json:"run_id,omitempty"`
	Events    []Event    `json:"events,omitempty"`
}

// Viewer is the desktop client state.
type Viewer struct {
	sessionID  string
	layoutName string

	stateMutex sync.RWMutex
	state      *GridState
	lastUpdate time.Time
	wsConn     *websocket.Conn

	// Streamed events are revealed a few per frame so the search animates
	// even when the server sends a whole run in one batch.
	pending []Event
	open    map[Position]bool
	closed  map[Position]bool
	path    []Position
	noPath  bool

	// Drag painting state.
	lastPainted Position
	painting    bool

	statusMsg string
}

// NewViewer creates a session (or attaches to an existing one) and connects
// the WebSocket stream.
func NewViewer(sessionID, layoutID string) (*Viewer, error) {
	v := &Viewer{
		sessionID:   sessionID,
		open:        make(map[Position]bool),
		closed:      make(map[Position]bool),
		lastPainted: Position{Row: -1, Col: -1},
	}

	if v.sessionID == "" {
		if err := v.createSession(layoutID); err != nil {
			return nil, err
		}
	}

	if err := v.connectWebSocket(); err != nil {
		log.Printf("WebSocket connect failed: %v (falling back to polling)", err)
	} else {
		go v.listenWebSocket()
	}

	if err := v.fetchState(); err != nil {
		return nil, err
	}
	return v, nil
}

// createSession asks the server for a fresh session.
func (v *Viewer) createSession(layoutID string) error {
	payload := "{}"
	if layoutID != "" {
		payload = fmt.Sprintf(`{"layout_id":%q}`, layoutID)
	}

	resp, err := http.Post(baseURL+"/api/sessions", "application/json", bytes.NewReader([]byte(payload)))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("create session failed: %s", string(body))
	}

	var result struct {
		ID         string `json:"id"`
		LayoutName string `json:"layout_name"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse session response: %v (body: %s)", err, string(body))
	}

	v.sessionID = result.ID
	v.layoutName = result.LayoutName
	log.Printf("Created session %s (layout: %s)", v.sessionID, v.layoutName)
	return nil
}

// connectWebSocket establishes the event stream for this session.
func (v *Viewer) connectWebSocket() error {
	wsURL := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	q := wsURL.Query()
	q.Set("session", v.sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}
	v.wsConn = conn
	log.Printf("WebSocket connected for session %s", v.sessionID)
	return nil
}

// listenWebSocket consumes state updates and search event batches.
func (v *Viewer) listenWebSocket() {
	defer func() {
		if v.wsConn != nil {
			v.wsConn.Close()
		}
	}()

	for {
		_, message, err := v.wsConn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error: %v", err)
			v.stateMutex.Lock()
			v.wsConn = nil
			v.stateMutex.Unlock()
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}

		switch msg.Type {
		case "state_update":
			if msg.State == nil {
				continue
			}
			v.stateMutex.Lock()
			v.state = msg.State
			v.lastUpdate = time.Now()
			if msg.State.Run == nil {
				// Grid was edited or reset: drop all search overlays.
				v.resetOverlays()
			}
			v.stateMutex.Unlock()
		case "search_events":
			v.stateMutex.Lock()
			v.pending = append(v.pending, msg.Events...)
			v.lastUpdate = time.Now()
			v.stateMutex.Unlock()
		}
	}
}

// fetchState polls the full grid state over REST.
func (v *Viewer) fetchState() error {
	resp, err := http.Get(fmt.Sprintf("%s/api/sessions/%s/state", baseURL, v.sessionID))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var state GridState
	if err := json.Unmarshal(body, &state); err != nil {
		return fmt.Errorf("failed to parse state: %v (body: %s)", err, string(body))
	}

	v.stateMutex.Lock()
	v.state = &state
	v.lastUpdate = time.Now()
	if state.Run == nil {
		v.resetOverlays()
	}
	v.stateMutex.Unlock()
	return nil
}

// resetOverlays clears the animated search overlays. Caller holds the lock.
func (v *Viewer) resetOverlays() {
	v.pending = nil
	v.open = make(map[Position]bool)
	v.closed = make(map[Position]bool)
	v.path = nil
	v.noPath = false
}

// apiPost sends a JSON body to a session endpoint and surfaces server errors
// in the status line.
func (v *Viewer) apiPost(endpoint, payload string) bool {
	apiURL := fmt.Sprintf("%s/api/sessions/%s/%s", baseURL, v.sessionID, endpoint)
	resp, err := http.Post(apiURL, "application/json", bytes.NewReader([]byte(payload)))
	if err != nil {
		v.setStatus(fmt.Sprintf("request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			v.setStatus(errResp.Error)
		} else {
			v.setStatus(fmt.Sprintf("server error: %d", resp.StatusCode))
		}
		return false
	}
	v.setStatus("")
	return true
}

func (v *Viewer) setStatus(msg string) {
	v.stateMutex.Lock()
	v.statusMsg = msg
	v.stateMutex.Unlock()
}

// cellPayload builds the position body for cell edit endpoints.
func cellPayload(p Position) string {
	return fmt.Sprintf(`{"row":%d,"col":%d}`, p.Row, p.Col)
}

// runSearch drains the search to completion server side. The resulting
// events arrive over the WebSocket and animate through the reveal queue.
func (v *Viewer) runSearch() {
	v.apiPost("run", "{}")
	if v.wsConn == nil {
		v.fetchState()
	}
}

// stepSearch advances the search by a small batch, starting a run if none
// is active.
func (v *Viewer) stepSearch() {
	v.stateMutex.RLock()
	needsStart := v.state == nil || v.state.Run == nil || v.state.Run.Done
	v.stateMutex.RUnlock()

	payload := fmt.Sprintf(`{"start":%t,"events":%d}`, needsStart, stepEventsBatch)
	v.apiPost("step", payload)
	if v.wsConn == nil {
		v.fetchState()
	}
}

// Update handles input and advances the event reveal animation.
func (v *Viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	v.revealPending()

	// Poll when the WebSocket is down.
	v.stateMutex.RLock()
	polling := v.wsConn == nil
	stale := time.Since(v.lastUpdate) > 500*time.Millisecond
	v.stateMutex.RUnlock()
	if polling && stale {
		if err := v.fetchState(); err != nil {
			log.Printf("Error fetching state: %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.stepSearch()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		v.runSearch()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		if v.apiPost("reset", "{}") && v.wsConn == nil {
			v.fetchState()
		}
	}

	v.handleCellInput()
	return nil
}

// revealPending moves a few queued events into the drawn overlays so long
// batches play back as an animation.
func (v *Viewer) revealPending() {
	v.stateMutex.Lock()
	defer v.stateMutex.Unlock()

	for i := 0; i < eventsPerFrame && len(v.pending) > 0; i++ {
		ev := v.pending[0]
		v.pending = v.pending[1:]

		switch ev.Type {
		case "opened":
			v.open[ev.Cell] = true
		case "closed":
			delete(v.open, ev.Cell)
			v.closed[ev.Cell] = true
		case "path_found":
			v.path = ev.Path
		case "no_path":
			v.noPath = true
		}
	}
}

// handleCellInput maps mouse input to grid edits and S/E key placement.
func (v *Viewer) handleCellInput() {
	cell, ok := v.hoveredCell()
	if !ok {
		v.painting = false
		return
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if v.apiPost("start", cellPayload(cell)) && v.wsConn == nil {
			v.fetchState()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		if v.apiPost("end", cellPayload(cell)) && v.wsConn == nil {
			v.fetchState()
		}
	}

	// Drag painting dedupes on the last painted cell so a held button only
	// posts once per cell crossed.
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		if !v.painting || cell != v.lastPainted {
			payload := fmt.Sprintf(`{"row":%d,"col":%d,"barrier":true}`, cell.Row, cell.Col)
			if v.apiPost("barrier", payload) && v.wsConn == nil {
				v.fetchState()
			}
			v.painting = true
			v.lastPainted = cell
		}
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		if !v.painting || cell != v.lastPainted {
			if v.apiPost("clear-cell", cellPayload(cell)) && v.wsConn == nil {
				v.fetchState()
			}
			v.painting = true
			v.lastPainted = cell
		}
	default:
		v.painting = false
		v.lastPainted = Position{Row: -1, Col: -1}
	}
}

// cellGeometry returns the pixel size and origin of the grid area.
func (v *Viewer) cellGeometry() (cellSize, offsetX, offsetY int, ok bool) {
	v.stateMutex.RLock()
	state := v.state
	v.stateMutex.RUnlock()
	if state == nil || state.Rows == 0 || state.Cols == 0 {
		return 0, 0, 0, false
	}

	availW := screenWidth
	availH := screenHeight - headerHeight - footerHeight
	cellSize = availW / state.Cols
	if h := availH / state.Rows; h < cellSize {
		cellSize = h
	}
	if cellSize < 4 {
		cellSize = 4
	}
	offsetX = (availW - cellSize*state.Cols) / 2
	offsetY = headerHeight
	return cellSize, offsetX, offsetY, true
}

// hoveredCell maps the cursor to a grid cell.
func (v *Viewer) hoveredCell() (Position, bool) {
	cellSize, offsetX, offsetY, ok := v.cellGeometry()
	if !ok {
		return Position{}, false
	}

	x, y := ebiten.CursorPosition()
	col := (x - offsetX) / cellSize
	row := (y - offsetY) / cellSize

	v.stateMutex.RLock()
	rows, cols := v.state.Rows, v.state.Cols
	v.stateMutex.RUnlock()

	if x < offsetX || y < offsetY || row < 0 || col < 0 || row >= rows || col >= cols {
		return Position{}, false
	}
	return Position{Row: row, Col: col}, true
}

// Draw renders the header, the grid with search overlays, and the footer.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	v.stateMutex.RLock()
	defer v.stateMutex.RUnlock()

	if v.state == nil {
		ebitenutil.DebugPrint(screen, "Loading...")
		return
	}

	v.drawHeader(screen)

	cellSize, offsetX, offsetY, ok := v.cellGeometryLocked()
	if !ok {
		return
	}

	// Base cells.
	for row := 0; row < v.state.Rows; row++ {
		for col := 0; col < v.state.Cols; col++ {
			ebitenutil.DrawRect(screen,
				float64(offsetX+col*cellSize),
				float64(offsetY+row*cellSize),
				float64(cellSize-1), float64(cellSize-1), colorEmpty)
		}
	}

	// Overlays in precedence order: open, closed, path, barriers, roles.
	for cell := range v.open {
		v.drawCell(screen, cell, cellSize, offsetX, offsetY, colorOpen)
	}
	for cell := range v.closed {
		v.drawCell(screen, cell, cellSize, offsetX, offsetY, colorClosed)
	}
	for _, cell := range v.path {
		v.drawCell(screen, cell, cellSize, offsetX, offsetY, colorPath)
	}
	for _, cell := range v.state.Barriers {
		v.drawCell(screen, cell, cellSize, offsetX, offsetY, colorBarrier)
	}
	if v.state.Start != nil {
		v.drawCell(screen, *v.state.Start, cellSize, offsetX, offsetY, colorStart)
	}
	if v.state.End != nil {
		v.drawCell(screen, *v.state.End, cellSize, offsetX, offsetY, colorEnd)
	}

	ebitenutil.DebugPrintAt(screen,
		"L-click: wall | R-click: erase | S/E: roles | SPACE: step | ENTER: run | C: reset | Q: quit",
		10, screenHeight-footerHeight+4)
}

// cellGeometryLocked is cellGeometry for callers already holding the lock.
func (v *Viewer) cellGeometryLocked() (cellSize, offsetX, offsetY int, ok bool) {
	if v.state == nil || v.state.Rows == 0 || v.state.Cols == 0 {
		return 0, 0, 0, false
	}
	availW := screenWidth
	availH := screenHeight - headerHeight - footerHeight
	cellSize = availW / v.state.Cols
	if h := availH / v.state.Rows; h < cellSize {
		cellSize = h
	}
	if cellSize < 4 {
		cellSize = 4
	}
	offsetX = (availW - cellSize*v.state.Cols) / 2
	offsetY = headerHeight
	return cellSize, offsetX, offsetY, true
}

func (v *Viewer) drawCell(screen *ebiten.Image, cell Position, cellSize, offsetX, offsetY int, c color.Color) {
	ebitenutil.DrawRect(screen,
		float64(offsetX+cell.Col*cellSize),
		float64(offsetY+cell.Row*cellSize),
		float64(cellSize-1), float64(cellSize-1), c)
}

// drawHeader prints session and run status. Caller holds the lock.
func (v *Viewer) drawHeader(screen *ebiten.Image) {
	info := fmt.Sprintf("Session %s | Grid %dx%d | Walls: %d",
		v.sessionID, v.state.Rows, v.state.Cols, len(v.state.Barriers))
	if v.layoutName != "" {
		info += " | Layout: " + v.layoutName
	}
	ebitenutil.DebugPrintAt(screen, info, 10, 5)

	runLine := "No active run. Place S and E, then SPACE or ENTER."
	switch {
	case len(v.pending) > 0:
		runLine = fmt.Sprintf("Searching... open: %d  closed: %d  (%d events queued)",
			len(v.open), len(v.closed), len(v.pending))
	case len(v.path) > 0:
		runLine = fmt.Sprintf("Path found: %d cells | expanded: %d", len(v.path), len(v.closed))
	case v.noPath:
		runLine = fmt.Sprintf("No path exists | expanded: %d", len(v.closed))
	case v.state.Run != nil && !v.state.Run.Done:
		runLine = fmt.Sprintf("Run in progress | steps: %d  open: %d  closed: %d",
			v.state.Run.Steps, len(v.open), len(v.closed))
	}
	ebitenutil.DebugPrintAt(screen, runLine, 10, 22)

	if v.statusMsg != "" {
		ebitenutil.DebugPrintAt(screen, "! "+v.statusMsg, 10, 39)
	}
}

// Layout returns the fixed window size.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	// Optional arg: an existing session ID to attach to. Without one a fresh
	// session is created on the server's default layout.
	sessionID := ""
	if len(os.Args) > 1 {
		sessionID = os.Args[1]
	}

	viewer, err := NewViewer(sessionID, "")
	if err != nil {
		log.Fatalf("Failed to start viewer: %v", err)
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("A* Path Visualizer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
