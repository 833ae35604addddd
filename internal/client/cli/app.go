package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/euronode/euronode/internal/client/api"
	"github.com/euronode/euronode/internal/client/artifact"
	"github.com/euronode/euronode/internal/client/config"
	"github.com/euronode/euronode/internal/client/screens"
	"github.com/euronode/euronode/internal/client/services"
	"github.com/euronode/euronode/internal/client/session"
	"github.com/euronode/euronode/internal/client/storage"
	"github.com/euronode/euronode/internal/client/ui"
	"github.com/euronode/euronode/internal/logging"
)

// App holds everything a command needs: the session, the API client and
// one controller per screen. Commands mount a screen, print its snapshot and
// unmount it again.
type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	deps        screens.Deps
	authService services.AuthService
	fetcher     *artifact.Fetcher

	central    *screens.CentralDashboard
	client     *screens.ClientDashboard
	iterations *screens.IterationManager

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local session database and builds the API client from c.
// Log output goes to errOut; user-facing output to out.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out, errOut io.Writer) (*App, error) {
	log := logging.New(errOut, c.LogLevel)

	db, err := storage.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	hc, err := api.NewHTTPClient(c.APIBaseURL,
		api.WithLogger(log),
		api.WithStrictDecoding(c.StrictDecoding),
		api.WithTimeout(c.RequestTimeout),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	fopts := []artifact.Option{artifact.WithLogger(log)}
	s3cfg := artifact.S3Config(c.S3)
	if s3cfg.Enabled() {
		s3c, err := artifact.NewS3Client(ctx, s3cfg)
		if err != nil {
			db.Close()
			return nil, err
		}
		fopts = append(fopts, artifact.WithS3(s3c))
	}

	a := newApp(c, hc, hc.BaseURL(), session.NewSQLiteStore(db, log), log, in, out, fopts...)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, client api.Client, base *url.URL, store session.Store, log logging.Logger, in io.Reader, out io.Writer, fopts ...artifact.Option) *App {
	sessions := session.NewProvider(store)
	deps := screens.Deps{
		API:      client,
		Sessions: sessions,
		Notify:   ui.NewConsoleNotifier(out),
		Log:      log,
	}
	return &App{
		config:      c,
		log:         log,
		deps:        deps,
		authService: services.NewAuthService(client, sessions, log),
		fetcher:     artifact.NewFetcher(base, c.DownloadDir, fopts...),
		central:     screens.NewCentralDashboard(deps),
		client:      screens.NewClientDashboard(deps),
		iterations:  screens.NewIterationManager(deps),
		reader:      bufio.NewReader(in),
		out:         out,
	}
}

// Close releases the session database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	_, err := a.authService.Current(ctx)
	return err == nil
}

func (a *App) getStatus(ctx context.Context) string {
	s, err := a.authService.Current(ctx)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("(%s %s)", s.Email, s.Role)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// shownError marks an error the user has already been told about through
// the notifier, so it is not printed a second time.
type shownError struct{ error }

func (e shownError) Unwrap() error { return e.error }

func shown(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	return shownError{err}
}

// describe turns err into the line printed for the user, or "" when the
// user has already seen it.
func describe(err error) string {
	var se shownError
	switch {
	case err == nil, errors.As(err, &se),
		errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
		return ""
	case errors.Is(err, screens.ErrLoginRequired):
		return "Please log in first."
	case errors.Is(err, screens.ErrWrongRole):
		return "This screen is not available for your role."
	case errors.Is(err, api.ErrUnavailable):
		return "Server unavailable, try again later."
	}
	if msg := api.MessageOf(err); msg != "" {
		return msg
	}
	return err.Error()
}

// userFacing picks the notification text for a failed auth call.
func userFacing(err error, fallback string) string {
	switch {
	case errors.Is(err, services.ErrMissingCredentials):
		return "Email and password are required."
	case errors.Is(err, api.ErrUnavailable):
		return "Server unavailable, try again later."
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	return err.Error()
}
