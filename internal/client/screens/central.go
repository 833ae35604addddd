package screens

import (
	"context"
	"errors"
	"sync"

	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/client/views"
)

// CentralDashboard is the landing screen of a central authority: three
// counters derived from its model list plus the assignment widget.
type CentralDashboard struct {
	deps   Deps
	Assign *AssignmentWidget

	mu      sync.Mutex
	mnt     mount
	session models.Session
	models  views.Loadable[[]models.Model]
}

type CentralDashboardView struct {
	Session    models.Session
	Status     views.Status
	Err        error
	Cells      []views.Cell
	Assignment AssignmentView
}

func NewCentralDashboard(d Deps) *CentralDashboard {
	d = d.withDefaults()
	return &CentralDashboard{deps: d, Assign: NewAssignmentWidget(d)}
}

func (s *CentralDashboard) Mount(ctx context.Context) error {
	sess, err := s.deps.Sessions.Require(ctx)
	if err != nil {
		return err
	}
	if sess.Role != models.RoleCentral {
		return ErrWrongRole
	}

	s.mu.Lock()
	mctx, gen := s.mnt.begin(ctx)
	s.session = sess
	s.models = views.Loadable[[]models.Model]{}
	s.mu.Unlock()

	// a failed read leaves the counters on the placeholder; the widget still mounts
	if err := s.load(mctx, gen, sess.ID); errors.Is(err, context.Canceled) {
		return err
	}
	return s.Assign.Mount(mctx, sess.ID, sess.Email)
}

func (s *CentralDashboard) Unmount() {
	s.mu.Lock()
	s.mnt.end()
	s.mu.Unlock()
	s.Assign.Unmount()
}

// Refresh re-reads the model list.
func (s *CentralDashboard) Refresh() error {
	s.mu.Lock()
	ctx, gen, ok := s.mnt.active()
	id := s.session.ID
	s.mu.Unlock()
	if !ok {
		return ErrNotMounted
	}
	return s.load(ctx, gen, id)
}

func (s *CentralDashboard) load(ctx context.Context, gen uint64, centralID int64) error {
	list, err := s.deps.API.ListModels(ctx, centralID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mnt.current(gen) {
		return context.Canceled
	}
	if err != nil {
		s.models.Fail(err)
		logReadFailure(ctx, s.deps.Log, "models", err, "user_id", centralID)
		return err
	}
	s.models.Resolve(list)
	return nil
}

func (s *CentralDashboard) Snapshot() CentralDashboardView {
	s.mu.Lock()
	v := CentralDashboardView{
		Session: s.session,
		Status:  s.models.Status,
		Err:     s.models.Err,
		Cells:   views.SummaryCells(views.Map(s.models, views.Summarize)),
	}
	s.mu.Unlock()

	v.Assignment = s.Assign.Snapshot()
	return v
}
