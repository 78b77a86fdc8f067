// Package api provides HTTP REST API handlers for the pathfinding
// visualizer.
//
// The api package implements:
//   - RESTful endpoints for grid editing and search runs
//   - Session management endpoints
//   - Layout preset listing
//   - WebSocket upgrade handling
//   - Health and metrics endpoints
//   - Static file serving
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (optional layout_id)
//   - GET /api/sessions - List all sessions
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Grid Editing:
//   - GET /api/sessions/{id}/state - Current grid and run state
//   - POST /api/sessions/{id}/start - Assign the start role to a cell
//   - POST /api/sessions/{id}/end - Assign the end role to a cell
//   - POST /api/sessions/{id}/barrier - Place or remove a wall
//   - POST /api/sessions/{id}/clear-cell - Clear a cell's role and wall
//   - POST /api/sessions/{id}/reset - Clear the whole grid
//
// Search Runs:
//   - POST /api/sessions/{id}/run - Run the search to completion; an
//     optional {"max_events": N} body bounds the drain
//   - POST /api/sessions/{id}/step - Advance a run by a bounded number
//     of events; {"start": true} begins a fresh run first
//
// Layouts:
//   - GET /api/layouts - List available layout presets
//   - GET /api/layouts/{name} - Get a single layout preset
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Cell-addressed operations take a
// position body:
//
//	{
//	  "row": 3,
//	  "col": 7
//	}
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes. Run
// precondition failures (no start, no end, start equals end), edits on
// role-holding cells, and out-of-bounds positions are 400s; unknown
// sessions are 404s:
//
//	{
//	  "error": "error message"
//	}
package api
