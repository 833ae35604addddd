// Package cli provides the euronode command-line client.
//
// It wires configuration, the local session database, the HTTP API client
// and the screen controllers into a cobra command tree. Without a
// subcommand an interactive REPL starts: it sends the user to the login
// prompt when no session is stored and shows the dashboard otherwise.
//
// Key features:
//   - Login / Register / Logout / Whoami
//   - Dashboard for central authorities and client hospitals
//   - Iterations: list, start (model upload), running, history, pull
//   - Client search and assignment, one-shot or through the assign-ui screen
//
// See Execute, App.Root and runREPL for details.
package cli
