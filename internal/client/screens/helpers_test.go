package screens

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/euronode/euronode/internal/client/api"
	"github.com/euronode/euronode/internal/client/api/apitest"
	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/client/session"
	"github.com/euronode/euronode/internal/client/views"
)

type note struct {
	kind string
	msg  string
}

type recorder struct {
	mu    sync.Mutex
	notes []note
}

func (r *recorder) add(kind, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{kind, msg})
}

func (r *recorder) Success(msg string) { r.add("success", msg) }
func (r *recorder) Info(msg string)    { r.add("info", msg) }
func (r *recorder) Warning(msg string) { r.add("warning", msg) }
func (r *recorder) Error(msg string)   { r.add("error", msg) }

func (r *recorder) all() []note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]note(nil), r.notes...)
}

func (r *recorder) last() note {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return note{}
	}
	return r.notes[len(r.notes)-1]
}

type fixture struct {
	b        *apitest.Backend
	sessions *session.Provider
	notes    *recorder
	deps     Deps
	central  models.Session
	client   models.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := apitest.NewBackend(t)
	hc, err := api.NewHTTPClient(b.URL())
	require.NoError(t, err)

	f := &fixture{
		b:        b,
		sessions: session.NewProvider(session.NewMemoryStore()),
		notes:    &recorder{},
	}
	f.deps = Deps{API: hc, Sessions: f.sessions, Notify: f.notes}
	f.central = b.AddUser("ca@hospital.eu", "pw", "Central", models.RoleCentral)
	f.client = b.AddUser("cl@north.eu", "pw", "North General", models.RoleClient)
	return f
}

func (f *fixture) login(t *testing.T, s models.Session) {
	t.Helper()
	require.NoError(t, f.sessions.Set(context.Background(), s))
}

func cellValues(cells []views.Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Value
	}
	return out
}
