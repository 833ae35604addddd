package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/euronode/euronode/internal/client/screens"
)

type fakeExec struct {
	loggedIn bool
	// needsLogin makes protected commands fail until Login ran.
	needsLogin bool
	failWith   error

	calls []string
	pulls []int64
	query string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	if f.needsLogin && !f.loggedIn {
		return screens.ErrLoginRequired
	}
	return f.failWith
}

func (f *fakeExec) isLoggedIn(context.Context) bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error  { f.calls = append(f.calls, "register"); return nil }
func (f *fakeExec) Login(context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) Whoami(context.Context) error         { return f.record("whoami") }
func (f *fakeExec) Dashboard(context.Context) error      { return f.record("dashboard") }
func (f *fakeExec) Iterations(context.Context) error     { return f.record("iterations") }
func (f *fakeExec) StartIteration(context.Context) error { return f.record("start") }
func (f *fakeExec) Running(context.Context) error        { return f.record("running") }
func (f *fakeExec) History(context.Context) error        { return f.record("history") }
func (f *fakeExec) Pull(_ context.Context, id int64) error {
	f.pulls = append(f.pulls, id)
	return f.record("pull")
}
func (f *fakeExec) Search(_ context.Context, q string) error {
	f.query = q
	return f.record("search")
}
func (f *fakeExec) AssignPrompt(context.Context) error { return f.record("assign") }
func (f *fakeExec) Assignments(context.Context) error  { return f.record("assignments") }
func (f *fakeExec) AssignUI(context.Context) error     { return f.record("assign-ui") }

// runWith feeds input to the REPL and returns what it printed, line by line.
func runWith(exec execIface, input ...string) []string {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader(strings.Join(input, "\n")))
	runREPL(context.Background(), exec, func() string { return "status" }, r, &out)
	return strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	exec := &fakeExec{}
	runWith(exec,
		"help",
		"login",
		"help",
		"d",
		"iterations",
		"start",
		"running",
		"history",
		"pull 42",
		"search st mary",
		"assign",
		"assignments",
		"assign-ui",
		"whoami",
		"exit",
	)

	want := []string{"login", "dashboard", "iterations", "start", "running", "history",
		"pull", "search", "assign", "assignments", "assign-ui", "whoami"}
	assert.Equal(t, want, exec.calls)
	assert.Equal(t, []int64{42}, exec.pulls)
	assert.Equal(t, "st mary", exec.query)
}

func TestRunREPL_HelpDependsOnSession(t *testing.T) {
	lines := runWith(&fakeExec{}, "help", "quit")
	assert.Contains(t, lines, helpLoggedOut)

	lines = runWith(&fakeExec{loggedIn: true}, "help", "quit")
	assert.Contains(t, lines, helpLoggedIn)
}

func TestRunREPL_LoginRequiredRedirectsToLogin(t *testing.T) {
	exec := &fakeExec{needsLogin: true}
	lines := runWith(exec, "dashboard", "dashboard", "exit")

	assert.Equal(t, []string{"dashboard", "login", "dashboard"}, exec.calls)
	assert.Contains(t, lines, "Please log in first.")
}

func TestRunREPL_LogoutGoesBackToLogin(t *testing.T) {
	exec := &fakeExec{loggedIn: true}
	runWith(exec, "logout", "exit")

	assert.Equal(t, []string{"logout", "login"}, exec.calls)
	assert.True(t, exec.loggedIn)
}

func TestRunREPL_UsageUnknownAndErrors(t *testing.T) {
	exec := &fakeExec{loggedIn: true, failWith: errors.New("boom")}
	lines := runWith(exec, "pull", "pull abc", "search", "frobnicate", "history", "quit")

	assert.Equal(t, []string{"history"}, exec.calls)
	assert.Contains(t, lines, "usage: pull <id>")
	assert.Contains(t, lines, "usage: search <query>")
	assert.Contains(t, lines, "Unknown command: frobnicate")
	assert.Contains(t, lines, "Error: boom")
	assert.Equal(t, "Bye!", lines[len(lines)-1])
}

func TestRunREPL_ShownErrorsAreNotRepeated(t *testing.T) {
	exec := &fakeExec{loggedIn: true, failWith: shown(errors.New("already told"))}
	lines := runWith(exec, "start", "exit")

	for _, l := range lines {
		assert.NotContains(t, l, "already told")
	}
}

func TestRunREPL_StopsOnEOFAndCancel(t *testing.T) {
	exec := &fakeExec{loggedIn: true}
	runWith(exec, "history")
	assert.Equal(t, []string{"history"}, exec.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec = &fakeExec{loggedIn: true}
	var out bytes.Buffer
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("history\n")), &out)
	assert.Empty(t, exec.calls)
}
