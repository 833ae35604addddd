package screens

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/client/views"
)

// AssignmentWidget searches the client directory and assigns clients to a
// central authority's model.
//
// Every list it shows is a server snapshot. Search results hide clients
// that already appear in the assignment list, so an assigned client drops
// out of the results once the assignment list has been read again.
type AssignmentWidget struct {
	deps Deps

	mu           sync.Mutex
	mnt          mount
	centralID    int64
	email        string
	search       views.Search
	cancelSearch context.CancelFunc
	assignments  views.Loadable[[]models.Assignment]
	modal        views.AssignModal
}

type AssignmentView struct {
	Query       string
	Results     []models.ClientEntry
	Status      views.Status
	Err         error
	Assignments []models.Assignment
	Modal       views.AssignModal
}

func NewAssignmentWidget(d Deps) *AssignmentWidget {
	return &AssignmentWidget{deps: d.withDefaults()}
}

// Mount binds the widget to a central authority and reads its assignments.
// A failed read is logged and leaves the list empty.
func (w *AssignmentWidget) Mount(ctx context.Context, centralID int64, email string) error {
	w.mu.Lock()
	w.stopSearchLocked()
	mctx, gen := w.mnt.begin(ctx)
	w.centralID, w.email = centralID, email
	w.search = views.Search{}
	w.modal.Reset()
	w.assignments = views.Loadable[[]models.Assignment]{}
	w.mu.Unlock()

	_ = w.fetchAssignments(mctx, gen, email)
	return nil
}

func (w *AssignmentWidget) Unmount() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopSearchLocked()
	w.mnt.end()
	w.modal.Submitting = false
}

// Search records q as the current query and waits for its results. Queries
// shorter than views.MinQueryLength clear the results without a request. A
// newer call cancels the request of an older one and only the latest issued
// query may update the results.
func (w *AssignmentWidget) Search(q string) error {
	fetch, err := w.StartSearch(q)
	if err != nil || fetch == nil {
		return err
	}
	return fetch()
}

// StartSearch is the non-blocking half of Search. It records q, cancels the
// request in flight and returns the directory request to run, or nil when q
// is too short. Callers that run fetch on another goroutine keep the order
// of their StartSearch calls: a fetch for a superseded query never applies.
func (w *AssignmentWidget) StartSearch(q string) (fetch func() error, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	mctx, gen, ok := w.mnt.active()
	if !ok {
		return nil, ErrNotMounted
	}
	w.stopSearchLocked()
	ticket, needed := w.search.SetQuery(q)
	if !needed {
		return nil, nil
	}
	ctx, cancel := context.WithCancel(mctx)
	w.cancelSearch = cancel
	return func() error {
		defer cancel()
		return w.fetchSearch(ctx, gen, ticket, q)
	}, nil
}

func (w *AssignmentWidget) fetchSearch(ctx context.Context, gen uint64, ticket views.Ticket, q string) error {
	res, err := w.deps.API.SearchClients(ctx, q)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.mnt.current(gen) || !w.search.Current(ticket) {
		return nil
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		w.deps.Log.Error(ctx, "client search failed", "query", q, "error", err)
		return err
	}
	w.search.Apply(ticket, res)
	return nil
}

func (w *AssignmentWidget) stopSearchLocked() {
	if w.cancelSearch != nil {
		w.cancelSearch()
		w.cancelSearch = nil
	}
}

// Select opens the assignment modal for a client from the visible results.
func (w *AssignmentWidget) Select(clientID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, _, ok := w.mnt.active(); !ok {
		return ErrNotMounted
	}
	for _, c := range w.search.Visible(w.assignments.Value) {
		if c.ID == clientID {
			w.modal.OpenFor(c)
			return nil
		}
	}
	return ErrUnknownClient
}

// SelectEmail is Select by case-insensitive email.
func (w *AssignmentWidget) SelectEmail(email string) error {
	w.mu.Lock()
	var id int64
	for _, c := range w.search.Visible(w.assignments.Value) {
		if strings.EqualFold(c.Email, strings.TrimSpace(email)) {
			id = c.ID
			break
		}
	}
	w.mu.Unlock()
	if id == 0 {
		return ErrUnknownClient
	}
	return w.Select(id)
}

func (w *AssignmentWidget) SetModalFields(dataDomain, modelName string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.modal.DataDomain, w.modal.ModelName = dataDomain, modelName
}

// CancelModal closes the modal and keeps whatever was typed into it.
func (w *AssignmentWidget) CancelModal() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.modal.Submitting {
		w.modal.Cancel()
	}
}

// Submit assigns the selected client. On success the modal is closed and
// cleared and the assignment list is read again; on failure the modal stays
// open with its values.
func (w *AssignmentWidget) Submit() error {
	w.mu.Lock()
	ctx, gen, ok := w.mnt.active()
	switch {
	case !ok:
		w.mu.Unlock()
		return ErrNotMounted
	case !w.modal.Open:
		w.mu.Unlock()
		return ErrNoClientSelected
	case w.modal.Submitting:
		w.mu.Unlock()
		return ErrSubmitInFlight
	}
	if err := w.modal.Validate(); err != nil {
		w.mu.Unlock()
		w.deps.Notify.Warning("Fill both fields!")
		return err
	}
	w.modal.Submitting = true
	req := w.modal.Request(w.centralID)
	email := w.email
	w.mu.Unlock()

	res, err := w.deps.API.AssignClient(ctx, req)

	w.mu.Lock()
	if !w.mnt.current(gen) {
		w.mu.Unlock()
		return context.Canceled
	}
	w.modal.Submitting = false
	if err != nil {
		w.mu.Unlock()
		w.deps.Log.Error(ctx, "assignment failed", "client_id", req.ClientID, "error", err)
		w.deps.Notify.Error(userMessage(err, msgGenericError))
		return err
	}
	w.modal.Reset()
	w.mu.Unlock()

	msg := res.Message
	if msg == "" {
		msg = msgAssigned
	}
	w.deps.Notify.Success(msg)
	_ = w.fetchAssignments(ctx, gen, email)
	return nil
}

// RefreshAssignments re-reads the assignment list.
func (w *AssignmentWidget) RefreshAssignments() error {
	w.mu.Lock()
	ctx, gen, ok := w.mnt.active()
	email := w.email
	w.mu.Unlock()
	if !ok {
		return ErrNotMounted
	}
	return w.fetchAssignments(ctx, gen, email)
}

func (w *AssignmentWidget) fetchAssignments(ctx context.Context, gen uint64, email string) error {
	list, err := w.deps.API.ListAssignments(ctx, email)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.mnt.current(gen) {
		return context.Canceled
	}
	if err != nil {
		w.assignments.Fail(err)
		logReadFailure(ctx, w.deps.Log, "assignments", err, "email", email)
		return err
	}
	w.assignments.Resolve(list)
	return nil
}

func (w *AssignmentWidget) Snapshot() AssignmentView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return AssignmentView{
		Query:       w.search.Query(),
		Results:     w.search.Visible(w.assignments.Value),
		Status:      w.assignments.Status,
		Err:         w.assignments.Err,
		Assignments: w.assignments.Value,
		Modal:       w.modal,
	}
}
