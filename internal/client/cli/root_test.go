package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/euronode/euronode/internal/buildinfo"
	"github.com/euronode/euronode/internal/client/api/apitest"
	"github.com/euronode/euronode/internal/client/models"
)

type cliRun struct {
	code        int
	out, errOut string
}

// cliEnv runs the whole command line against one fake backend and one
// session database, like consecutive invocations of the binary.
type cliEnv struct {
	b  *apitest.Backend
	db string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	stubPassword(t, "pw")
	return &cliEnv{b: apitest.NewBackend(t), db: filepath.Join(t.TempDir(), "session.db")}
}

func (e *cliEnv) run(stdin string, args ...string) cliRun {
	var out, errOut bytes.Buffer
	args = append([]string{"--api", e.b.URL(), "--db", e.db, "--log-level", "error"}, args...)
	code := Execute(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return cliRun{code: code, out: out.String(), errOut: errOut.String()}
}

func TestExecute_LoginPersistsAcrossInvocations(t *testing.T) {
	e := newCLIEnv(t)
	e.b.AddUser("ca@euronode.eu", "pw", "St. Mary", models.RoleCentral)

	r := e.run("", "whoami")
	require.Equal(t, 0, r.code, r.errOut)
	assert.Contains(t, r.out, "Not logged in.")

	r = e.run("", "login", "-e", "ca@euronode.eu")
	require.Equal(t, 0, r.code, r.errOut)

	r = e.run("", "whoami")
	assert.Contains(t, r.out, "ca@euronode.eu (central) · St. Mary")

	r = e.run("", "dashboard")
	require.Equal(t, 0, r.code, r.errOut)
	assert.Contains(t, r.out, "Central Authority Dashboard")

	r = e.run("", "logout")
	require.Equal(t, 0, r.code, r.errOut)
	r = e.run("", "dashboard")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.errOut, "Please log in first.")
	assert.Equal(t, 1, e.b.Hits(apitest.RouteModels))
}

func TestExecute_LoginPromptsForEmail(t *testing.T) {
	e := newCLIEnv(t)
	e.b.AddUser("cl@north.eu", "pw", "North", models.RoleClient)

	r := e.run("cl@north.eu\n", "login")
	require.Equal(t, 0, r.code, r.errOut)
	assert.Contains(t, r.out, "Enter email")
	assert.Contains(t, r.out, "Logged in as cl@north.eu (client)")
}

func TestExecute_IterationsStartAndAssign(t *testing.T) {
	e := newCLIEnv(t)
	e.b.AddUser("ca@euronode.eu", "pw", "St. Mary", models.RoleCentral)
	e.b.AddUser("cl@north.eu", "pw", "North", models.RoleClient)
	require.Equal(t, 0, e.run("", "login", "-e", "ca@euronode.eu").code)

	r := e.run("", "iterations", "start", "--name", "net", "--domain", "xray", "-f", writeModel(t, "w"))
	require.Equal(t, 0, r.code, r.errOut)
	assert.Contains(t, r.out, "Iteration started successfully!")

	r = e.run("", "it", "history")
	require.Equal(t, 0, r.code, r.errOut)
	assert.Contains(t, r.out, "net")

	r = e.run("", "clients", "search", "north")
	require.Equal(t, 0, r.code, r.errOut)
	assert.Contains(t, r.out, "cl@north.eu")

	r = e.run("", "assign", "-e", "cl@north.eu", "--domain", "xray", "--model", "net")
	require.Equal(t, 0, r.code, r.errOut)

	r = e.run("", "assignments")
	assert.Contains(t, r.out, "Model: net  Domain: xray")
}

func TestExecute_NotifiedFailuresAreNotRepeated(t *testing.T) {
	e := newCLIEnv(t)
	e.b.AddUser("ca@euronode.eu", "pw", "", models.RoleCentral)
	require.Equal(t, 0, e.run("", "login", "-e", "ca@euronode.eu").code)

	r := e.run("", "iterations", "start", "--domain", "xray")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.out, "Please fill all fields and upload a model file (.pkl)")
	assert.NotContains(t, r.errOut, "Error:")
	assert.Zero(t, e.b.Hits(apitest.RouteStart))
}

func TestExecute_ArgumentAndConfigErrors(t *testing.T) {
	e := newCLIEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown command", []string{"frobnicate"}, "unknown command"},
		{"bad pull id", []string{"iterations", "pull", "abc"}, `invalid id "abc"`},
		{"missing search query", []string{"clients", "search"}, "accepts 1 arg"},
		{"bad log level", []string{"--log-level", "loud", "whoami"}, "log_level"},
		{"missing config file", []string{"-c", "/nope/euronode.yaml", "whoami"}, "read config"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := e.run("", tc.args...)
			assert.Equal(t, 1, r.code)
			assert.Contains(t, r.errOut, tc.want)
		})
	}
}

func TestExecute_Version(t *testing.T) {
	var out bytes.Buffer
	code := Execute(context.Background(), []string{"--version"}, strings.NewReader(""), &out, &out)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), buildinfo.String())
}

func TestExecute_REPL(t *testing.T) {
	e := newCLIEnv(t)
	e.b.AddUser("cl@north.eu", "pw", "North", models.RoleClient)

	// no session: the REPL starts at the login prompt
	r := e.run("cl@north.eu\nwhoami\nexit\n")
	require.Equal(t, 0, r.code, r.errOut)
	assert.Contains(t, r.out, "Welcome to euronode")
	assert.Contains(t, r.out, "Logged in as cl@north.eu (client)")
	assert.Contains(t, r.out, "cl@north.eu (client) · North")
	assert.Contains(t, r.out, "euronode (cl@north.eu client)> \n")
	assert.True(t, strings.HasSuffix(r.out, "Bye!\n"), r.out)

	// with a session: it opens on the dashboard
	r = e.run("exit\n")
	require.Equal(t, 0, r.code, r.errOut)
	assert.Contains(t, r.out, "Client Dashboard")
}
