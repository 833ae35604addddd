package cli

import (
	"context"

	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/client/ui"
)

// Dashboard shows the landing screen for the logged-in role.
func (a *App) Dashboard(ctx context.Context) error {
	s, err := a.deps.Sessions.Require(ctx)
	if err != nil {
		return err
	}

	if s.Role == models.RoleCentral {
		if err := a.central.Mount(ctx); err != nil {
			return err
		}
		defer a.central.Unmount()
		a.println(ui.RenderCentral(a.central.Snapshot()))
		return nil
	}

	if err := a.client.Mount(ctx); err != nil {
		return err
	}
	defer a.client.Unmount()
	a.println(ui.RenderClient(a.client.Snapshot()))
	return nil
}
