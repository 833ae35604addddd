// Package views holds the view state every screen repeats: a loadable slot
// for each server read, the summary counts derived from a model list, the
// running/final/history partition, the start-iteration form, the client
// search box and the assignment modal.
//
// Nothing in this package performs I/O. Screens own a views value, feed it
// server responses, and render snapshots of it.
package views
