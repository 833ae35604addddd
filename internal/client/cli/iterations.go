package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/client/ui"
	"github.com/euronode/euronode/internal/client/views"
)

var errModelNotFound = errors.New("model not found")

// iterationInput is what the start-iteration form is filled with.
type iterationInput struct {
	Name    string
	Domain  string
	Version int
	File    string
}

// withIterations mounts the iteration screen around fn.
func (a *App) withIterations(ctx context.Context, fn func() error) error {
	if err := a.iterations.Mount(ctx); err != nil {
		return err
	}
	defer a.iterations.Unmount()
	return fn()
}

// Iterations prints the final model and the running iterations.
func (a *App) Iterations(ctx context.Context) error {
	return a.withIterations(ctx, func() error {
		a.println(ui.RenderIterations(a.iterations.Snapshot()))
		return nil
	})
}

// StartIteration prompts for every form field and uploads the model file.
func (a *App) StartIteration(ctx context.Context) error {
	var (
		in  iterationInput
		err error
	)
	if in.Name, err = getSimpleText(a.reader, "Model name", a.out); err != nil {
		return err
	}
	if in.Domain, err = getSimpleText(a.reader, "Dataset domain", a.out); err != nil {
		return err
	}
	v, err := getSimpleText(a.reader, fmt.Sprintf("Version [%d]", views.DefaultVersion), a.out)
	if err != nil {
		return err
	}
	in.Version = parseVersion(v)
	if in.File, err = getSimpleText(a.reader, "Model file (.pkl)", a.out); err != nil {
		return err
	}
	return a.startIteration(ctx, in)
}

// parseVersion maps an empty answer to the default version. Anything that
// is not a number becomes -1 so the form's own validation rejects it.
func parseVersion(s string) int {
	if s == "" {
		return views.DefaultVersion
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

func (a *App) startIteration(ctx context.Context, in iterationInput) error {
	return a.withIterations(ctx, func() error {
		a.iterations.ShowForm()
		a.iterations.UpdateForm(func(f *views.IterationForm) {
			f.ModelName = in.Name
			f.DatasetDomain = in.Domain
			f.Version = in.Version
			f.FilePath = in.File
		})
		if err := a.iterations.Submit(); err != nil {
			return shown(err)
		}
		a.println(ui.RenderIterations(a.iterations.Snapshot()))
		return nil
	})
}

// Running prints the in-progress versions as reported by the server.
func (a *App) Running(ctx context.Context) error {
	return a.withIterations(ctx, func() error {
		ms, err := a.iterations.ServerRunning()
		if err != nil {
			return err
		}
		if len(ms) == 0 {
			a.println(ui.DimStyle.Render("No running iterations."))
			return nil
		}
		for _, m := range ms {
			a.println(ui.RenderModel(m))
		}
		return nil
	})
}

// History prints every model version, newest first.
func (a *App) History(ctx context.Context) error {
	return a.withIterations(ctx, func() error {
		v := a.iterations.Snapshot()
		if v.Status == views.StatusFailed {
			return shown(v.Err)
		}
		a.println(ui.RenderHistory(v.Iterations))
		return nil
	})
}

// Pull downloads the model file of record id into the download directory.
func (a *App) Pull(ctx context.Context, id int64) error {
	return a.withIterations(ctx, func() error {
		v := a.iterations.Snapshot()
		if v.Status == views.StatusFailed {
			return shown(v.Err)
		}

		var (
			m     models.Model
			found bool
		)
		for _, h := range v.Iterations.History {
			if h.ID == id {
				m, found = h, true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: #%d", errModelNotFound, id)
		}

		path, n, err := a.fetcher.Fetch(ctx, m.ModelFile)
		if err != nil {
			a.log.Error(ctx, "model download failed", "model_id", id, "ref", m.ModelFile, "error", err)
			return fmt.Errorf("download #%d: %w", id, err)
		}
		a.deps.Notify.Success(fmt.Sprintf("Downloaded %s (%d bytes)", path, n))
		return nil
	})
}
