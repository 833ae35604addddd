package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/euronode/euronode/internal/client/screens"
	"github.com/euronode/euronode/internal/client/tui"
	"github.com/euronode/euronode/internal/client/ui"
	"github.com/euronode/euronode/internal/client/views"
)

var errQueryTooShort = errors.New("search query too short")

// runAssignUI is a seam for tests; the real one takes over the terminal.
var runAssignUI = func(ctx context.Context, w tui.Widget, banner *tui.Banner) error {
	return tui.Run(ctx, w, banner)
}

// withCentral mounts the central dashboard, which also mounts its
// assignment widget, around fn.
func (a *App) withCentral(ctx context.Context, fn func(w *screens.AssignmentWidget) error) error {
	if err := a.central.Mount(ctx); err != nil {
		return err
	}
	defer a.central.Unmount()
	return fn(a.central.Assign)
}

// Search prints the unassigned clients matching query.
func (a *App) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < views.MinQueryLength {
		a.deps.Notify.Warning(fmt.Sprintf("Type at least %d characters to search.", views.MinQueryLength))
		return shown(errQueryTooShort)
	}

	return a.withCentral(ctx, func(w *screens.AssignmentWidget) error {
		if err := w.Search(query); err != nil {
			return err
		}
		a.println(ui.RenderClients(w.Snapshot().Results))
		return nil
	})
}

// AssignPrompt asks for the client and the model/data-domain pair.
func (a *App) AssignPrompt(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Client email", a.out)
	if err != nil {
		return err
	}
	domain, err := getSimpleText(a.reader, "Data domain", a.out)
	if err != nil {
		return err
	}
	model, err := getSimpleText(a.reader, "Model name", a.out)
	if err != nil {
		return err
	}
	return a.Assign(ctx, email, domain, model)
}

// Assign finds the client by email among the unassigned search results and
// submits the assignment.
func (a *App) Assign(ctx context.Context, email, domain, model string) error {
	email = strings.TrimSpace(email)
	return a.withCentral(ctx, func(w *screens.AssignmentWidget) error {
		if len([]rune(email)) >= views.MinQueryLength {
			if err := w.Search(email); err != nil {
				return err
			}
		}
		if err := w.SelectEmail(email); err != nil {
			if errors.Is(err, screens.ErrUnknownClient) {
				a.deps.Notify.Warning(fmt.Sprintf("No unassigned client matches %q.", email))
				return shown(err)
			}
			return err
		}
		w.SetModalFields(domain, model)
		if err := w.Submit(); err != nil {
			return shown(err)
		}
		a.println(ui.RenderAssignments(w.Snapshot()))
		return nil
	})
}

// Assignments prints the clients assigned by the logged-in central authority.
func (a *App) Assignments(ctx context.Context) error {
	return a.withCentral(ctx, func(w *screens.AssignmentWidget) error {
		a.println(ui.RenderAssignments(w.Snapshot()))
		return nil
	})
}

// AssignUI opens the interactive assignment screen. Notifications go to
// the screen's banner instead of the console while it runs.
func (a *App) AssignUI(ctx context.Context) error {
	banner := tui.NewBanner()
	deps := a.deps
	deps.Notify = banner

	dash := screens.NewCentralDashboard(deps)
	if err := dash.Mount(ctx); err != nil {
		return err
	}
	defer dash.Unmount()
	return runAssignUI(ctx, dash.Assign, banner)
}
