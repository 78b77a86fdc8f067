// Package mcp provides a Model Context Protocol server for the pathfinding
// visualizer.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for grid editing and search runs
//   - Session-aware command execution
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - grid_state: Get the current grid rendered as ASCII plus run progress
//   - set_start, set_end: Assign the start or end role to a cell
//   - toggle_barrier: Place or remove a wall
//   - clear_cell: Clear a cell's role and wall
//   - reset_grid: Clear the whole grid
//   - run_search: Run the A* search to completion
//   - step_search: Advance a run by a bounded number of events
//   - create_session, get_session, list_sessions, delete_session
//   - list_layouts: List available layout presets
//   - describe_cell: Inspect a single cell and its run status
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: HTTP endpoint for remote MCP integration
//
// Architecture:
//
// The Client here is a thin proxy: every tool call is translated into a
// REST request against the API server, and the JSON response is rendered
// as text for the agent. The MCP layer holds no grid state of its own.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
