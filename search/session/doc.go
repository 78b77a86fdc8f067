// Package session provides in-memory session management for grid sessions.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Last-access tracking and expiry cleanup
//
// Sessions use 4-character hex IDs for easy reference; lookup is
// case-insensitive. Sessions live only in memory: grids are never
// persisted, so restarting the server starts from a clean slate.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", grid, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
package session
