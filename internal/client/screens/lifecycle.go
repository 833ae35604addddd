package screens

import (
	"context"

	"github.com/euronode/euronode/internal/client/api"
	"github.com/euronode/euronode/internal/client/session"
	"github.com/euronode/euronode/internal/logging"
)

// Deps are shared by every screen.
type Deps struct {
	API      api.Client
	Sessions *session.Provider
	Notify   Notifier
	Log      logging.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Notify == nil {
		d.Notify = nopNotifier{}
	}
	if d.Log == nil {
		d.Log = logging.Nop()
	}
	return d
}

// mount tracks one screen lifetime. gen changes on every begin and end, so
// a completion can tell whether the lifetime it started in is still current.
// Callers hold the owning screen's mutex.
type mount struct {
	ctx    context.Context
	cancel context.CancelFunc
	gen    uint64
}

func (m *mount) begin(parent context.Context) (context.Context, uint64) {
	if m.cancel != nil {
		m.cancel()
	}
	m.gen++
	m.ctx, m.cancel = context.WithCancel(parent)
	return m.ctx, m.gen
}

func (m *mount) end() {
	if m.cancel != nil {
		m.cancel()
	}
	m.ctx, m.cancel = nil, nil
	m.gen++
}

func (m *mount) active() (context.Context, uint64, bool) {
	if m.cancel == nil {
		return nil, 0, false
	}
	return m.ctx, m.gen, true
}

func (m *mount) current(gen uint64) bool {
	return m.cancel != nil && m.gen == gen
}
