// Package common contains shared constants and small helpers used across
// euronode client packages.
package common

// RequestIDHeader carries the per-request correlation id on outbound API calls.
const RequestIDHeader = "X-Request-ID"

// SessionKey is the single well-known key the session record is stored under.
const SessionKey = "user"

// Placeholder is rendered for counts whose source data has not arrived yet.
const Placeholder = "…"
