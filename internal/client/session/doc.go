// Package session holds the signed-in user between runs.
//
// Screens receive a *Provider at construction and read through it on every
// mount; nothing caches the session in memory, so a logout in one command is
// seen by the next. A stored record that cannot be decoded or is incomplete
// is treated as absent.
package session
