// Package websocket provides WebSocket transport for the pathfinding
// visualizer.
//
// The websocket package implements:
//   - Real-time push of grid state and search events
//   - Session-aware WebSocket connections
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// goroutine that manages reading, writing, and cleanup.
//
// Message Protocol:
//
// Messages are JSON-encoded and flow one way, server to client:
//   - state_update: full GridState after an edit or reset
//   - search_events: a batch of opened/closed/path_found/no_path events
//     from an advancing run, tagged with the run ID
//
// Session Integration:
//
// WebSocket connections are session-aware. Clients specify their session ID
// via query parameter (?session=abc1) when establishing the connection.
// Updates are broadcast only to clients connected to the same session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Concurrency:
//
// The hub serializes registration, unregistration, and broadcasting through
// its event loop. Multiple clients can connect, disconnect, and receive
// messages simultaneously without blocking each other.
package websocket
