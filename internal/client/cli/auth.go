package cli

import (
	"context"
	"errors"

	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/client/session"
	"github.com/euronode/euronode/internal/client/ui"
	"github.com/euronode/euronode/internal/common"
)

// getSimpleText, getPassword and getChoice are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getChoice     = GetChoice
)

var roles = []string{string(models.RoleCentral), string(models.RoleClient)}

// Register prompts for whatever reg is missing and creates an account. The
// local session is left untouched.
func (a *App) Register(ctx context.Context) error {
	return a.register(ctx, models.Registration{})
}

func (a *App) register(ctx context.Context, reg models.Registration) error {
	var err error
	if reg.Email == "" {
		if reg.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}
	if reg.Hospital == "" {
		if reg.Hospital, err = getSimpleText(a.reader, "Enter hospital", a.out); err != nil {
			return err
		}
	}
	if reg.Role == "" {
		role, err := getChoice(a.reader, "Enter role", roles, string(models.RoleClient), a.out)
		if err != nil {
			return err
		}
		reg.Role = models.Role(role)
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	msg, err := a.authService.Register(ctx, reg, password)
	if err != nil {
		a.deps.Notify.Error(userFacing(err, "Registration failed."))
		return shown(err)
	}
	if msg == "" {
		msg = "User registered successfully!"
	}
	a.deps.Notify.Success(msg)
	return nil
}

// Login prompts for credentials and stores the session returned by the server.
func (a *App) Login(ctx context.Context) error {
	return a.login(ctx, "")
}

func (a *App) login(ctx context.Context, email string) error {
	var err error
	if email == "" {
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.authService.Login(ctx, email, password)
	if err != nil {
		a.log.Debug(ctx, "login unsuccessful", "email", email, "error", err)
		a.deps.Notify.Error(userFacing(err, "Login failed."))
		return shown(err)
	}

	a.deps.Notify.Success("Logged in as " + ui.RenderSession(s))
	return nil
}

// Logout removes the stored session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.deps.Notify.Info("Logged out.")
	return nil
}

// Whoami prints the stored session.
func (a *App) Whoami(ctx context.Context) error {
	s, err := a.authService.Current(ctx)
	if errors.Is(err, session.ErrNoSession) {
		a.println("Not logged in.")
		return nil
	}
	if err != nil {
		return err
	}
	a.println(ui.RenderSession(s))
	return nil
}
