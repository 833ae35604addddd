package screens

import (
	"context"
	"sync"

	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/client/views"
)

// ClientDashboard shows a hospital the counters the server computes for it.
type ClientDashboard struct {
	deps Deps

	mu      sync.Mutex
	mnt     mount
	session models.Session
	stats   views.Loadable[models.DashboardStats]
}

type ClientDashboardView struct {
	Session models.Session
	Status  views.Status
	Err     error
	Cells   []views.Cell
}

func NewClientDashboard(d Deps) *ClientDashboard {
	return &ClientDashboard{deps: d.withDefaults()}
}

func (s *ClientDashboard) Mount(ctx context.Context) error {
	sess, err := s.deps.Sessions.Require(ctx)
	if err != nil {
		return err
	}
	if sess.Role != models.RoleClient {
		return ErrWrongRole
	}

	s.mu.Lock()
	mctx, gen := s.mnt.begin(ctx)
	s.session = sess
	s.stats = views.Loadable[models.DashboardStats]{}
	s.mu.Unlock()

	_ = s.load(mctx, gen, sess.Email)
	return nil
}

func (s *ClientDashboard) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mnt.end()
}

func (s *ClientDashboard) Refresh() error {
	s.mu.Lock()
	ctx, gen, ok := s.mnt.active()
	email := s.session.Email
	s.mu.Unlock()
	if !ok {
		return ErrNotMounted
	}
	return s.load(ctx, gen, email)
}

func (s *ClientDashboard) load(ctx context.Context, gen uint64, email string) error {
	st, err := s.deps.API.ClientDashboard(ctx, email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mnt.current(gen) {
		return context.Canceled
	}
	if err != nil {
		s.stats.Fail(err)
		logReadFailure(ctx, s.deps.Log, "dashboard stats", err, "email", email)
		return err
	}
	s.stats.Resolve(st)
	return nil
}

func (s *ClientDashboard) Snapshot() ClientDashboardView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ClientDashboardView{
		Session: s.session,
		Status:  s.stats.Status,
		Err:     s.stats.Err,
		Cells:   views.SummaryCells(views.Map(s.stats, views.SummaryFromStats)),
	}
}
