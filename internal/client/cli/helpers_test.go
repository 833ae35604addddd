package cli

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/euronode/euronode/internal/client/api"
	"github.com/euronode/euronode/internal/client/api/apitest"
	"github.com/euronode/euronode/internal/client/config"
	"github.com/euronode/euronode/internal/client/session"
	"github.com/euronode/euronode/internal/logging"
)

// stubPassword makes every password prompt answer pw. Callers wipe what
// they get, so each call returns a fresh copy.
func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(*bufio.Reader, io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

type testApp struct {
	*App
	b   *apitest.Backend
	out *bytes.Buffer
}

// newTestApp wires an App to a fresh fake backend. input feeds the prompts.
func newTestApp(t *testing.T, input ...string) *testApp {
	t.Helper()
	b := apitest.NewBackend(t)
	hc, err := api.NewHTTPClient(b.URL())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DownloadDir = t.TempDir()

	in := strings.NewReader(strings.Join(input, "\n") + "\n")
	out := &bytes.Buffer{}
	a := newApp(cfg, hc, hc.BaseURL(), session.NewMemoryStore(), logging.Nop(), in, out)
	return &testApp{App: a, b: b, out: out}
}

// feed replaces the pending prompt input.
func (ta *testApp) feed(lines ...string) {
	ta.reader = bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}
