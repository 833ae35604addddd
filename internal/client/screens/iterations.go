package screens

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/client/views"
)

// IterationManager lists a central authority's model versions and starts
// new iterations by uploading a model file.
type IterationManager struct {
	deps Deps

	// openFile is a seam for tests.
	openFile func(path string) (io.ReadCloser, error)

	mu      sync.Mutex
	mnt     mount
	session models.Session
	models  views.Loadable[[]models.Model]
	form    views.IterationForm
}

type IterationView struct {
	Session    models.Session
	Status     views.Status
	Err        error
	Cells      []views.Cell
	Iterations views.Iterations
	Form       views.IterationForm
}

func NewIterationManager(d Deps) *IterationManager {
	return &IterationManager{
		deps:     d.withDefaults(),
		openFile: func(p string) (io.ReadCloser, error) { return os.Open(p) },
		form:     views.NewIterationForm(),
	}
}

func (s *IterationManager) Mount(ctx context.Context) error {
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

	_ = s.load(mctx, gen, sess.ID)
	return nil
}

func (s *IterationManager) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mnt.end()
	s.form.Submitting = false
}

func (s *IterationManager) Refresh() error {
	s.mu.Lock()
	ctx, gen, ok := s.mnt.active()
	id := s.session.ID
	s.mu.Unlock()
	if !ok {
		return ErrNotMounted
	}
	return s.load(ctx, gen, id)
}

// ToggleForm shows or hides the new-iteration form. Field values survive.
func (s *IterationManager) ToggleForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Toggle()
}

// ShowForm opens the new-iteration form whatever its previous state.
func (s *IterationManager) ShowForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Visible = true
}

// UpdateForm edits the form fields. Visibility and the submitting flag are
// owned by the manager and cannot be changed through fn.
func (s *IterationManager) UpdateForm(fn func(f *views.IterationForm)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible, submitting := s.form.Visible, s.form.Submitting
	fn(&s.form)
	s.form.Visible, s.form.Submitting = visible, submitting
}

// Submit validates the form and uploads it. On success the form is reset
// and hidden and the model list is read again exactly once; on failure the
// form keeps its values.
func (s *IterationManager) Submit() error {
	s.mu.Lock()
	ctx, gen, ok := s.mnt.active()
	if !ok {
		s.mu.Unlock()
		return ErrNotMounted
	}
	if s.form.Submitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}
	if err := s.form.Validate(); err != nil {
		s.mu.Unlock()
		s.deps.Notify.Warning(warningFor(err))
		return err
	}
	s.form.Submitting = true
	form := s.form
	sess := s.session
	s.mu.Unlock()

	_, err := s.upload(ctx, sess, form)

	s.mu.Lock()
	if !s.mnt.current(gen) {
		s.mu.Unlock()
		return context.Canceled
	}
	s.form.Submitting = false
	if err != nil {
		s.mu.Unlock()
		s.deps.Log.Error(ctx, "failed to start iteration", "user_id", sess.ID, "error", err)
		if errors.Is(err, errFileUnreadable) {
			s.deps.Notify.Error(msgFileUnreadable)
		} else {
			s.deps.Notify.Error(userMessage(err, msgStartFailed))
		}
		return err
	}
	s.form.Reset()
	s.mu.Unlock()

	s.deps.Notify.Success(msgStarted)
	_ = s.load(ctx, gen, sess.ID)
	return nil
}

var errFileUnreadable = errors.New("model file unreadable")

func (s *IterationManager) upload(ctx context.Context, sess models.Session, form views.IterationForm) (models.Model, error) {
	path := strings.TrimSpace(form.FilePath)
	f, err := s.openFile(path)
	if err != nil {
		return models.Model{}, fmt.Errorf("%w: %v", errFileUnreadable, err)
	}
	defer f.Close()

	return s.deps.API.StartIteration(ctx, models.StartIteration{
		CentralAuthID: sess.ID,
		ModelName:     strings.TrimSpace(form.ModelName),
		DatasetDomain: strings.TrimSpace(form.DatasetDomain),
		Version:       form.Version,
	}, path, f)
}

func warningFor(err error) string {
	if errors.Is(err, views.ErrInvalidVersion) {
		return "Version must be 0 or greater."
	}
	return "Please fill all fields and upload a model file (.pkl)"
}

// ServerRunning asks the server for the in-progress versions. It is a
// cross-check of the locally derived list and does not touch view state.
func (s *IterationManager) ServerRunning() ([]models.Model, error) {
	s.mu.Lock()
	ctx, _, ok := s.mnt.active()
	id := s.session.ID
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotMounted
	}
	return s.deps.API.RunningIterations(ctx, id)
}

func (s *IterationManager) load(ctx context.Context, gen uint64, centralID int64) error {
	list, err := s.deps.API.ListModels(ctx, centralID)

	s.mu.Lock()
	if !s.mnt.current(gen) {
		s.mu.Unlock()
		return context.Canceled
	}
	if err != nil {
		s.models.Fail(err)
		s.mu.Unlock()
		logReadFailure(ctx, s.deps.Log, "models", err, "user_id", centralID)
		if !errors.Is(err, context.Canceled) {
			s.deps.Notify.Error(msgModelsFailed)
		}
		return err
	}
	s.models.Resolve(list)
	s.mu.Unlock()
	return nil
}

func (s *IterationManager) Snapshot() IterationView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return IterationView{
		Session:    s.session,
		Status:     s.models.Status,
		Err:        s.models.Err,
		Cells:      views.SummaryCells(views.Map(s.models, views.Summarize)),
		Iterations: views.PartitionIterations(s.models.Value),
		Form:       s.form,
	}
}
