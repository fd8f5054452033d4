// Package realtime implements the collaboration broadcast layer: authenticated
// WebSocket sessions, per-project rooms, and sender-excluded event fan-out.
//
// The implementation is organized into specialized files for the session
// registry, room membership index, event routing, client pumps, and HTTP
// handlers to keep the codebase maintainable and testable as the project
// grows. Nothing here is persisted; all sessions and memberships are
// rebuilt by clients after a process restart.
package realtime
