// Package service defines the operations the interactive surfaces (REST,
// WebSocket, MCP) use to edit grids and drive searches.
//
// The SearchService interface is the collaborator layer from the core's
// point of view: it enforces the preconditions the engine never checks
// (start and end set and distinct, coordinates in bounds), owns session
// lifecycle, and turns engine runs into transport-friendly results.
//
// A session holds one grid and at most one run. Any grid edit discards the
// active run, because run events are computed lazily against current
// barrier state; a finished run is kept read-only so clients can keep
// rendering its outcome.
package service
