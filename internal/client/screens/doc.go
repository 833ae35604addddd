// Package screens holds the controllers behind each screen of the client:
// the central and client dashboards, the iteration manager and the
// client-assignment widget.
//
// A controller is mounted with Mount, which checks the session before any
// request, and torn down with Unmount, which cancels everything it still
// has in flight. Results that arrive after Unmount (or after a newer Mount)
// are dropped. Controllers are safe for concurrent use; callers render them
// through Snapshot.
package screens
