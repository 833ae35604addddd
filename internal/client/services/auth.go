// Package services contains application services for the euronode client.
// This file defines the authentication service: login, registration, logout
// and the current-identity lookup, each keeping the local session in step
// with the server.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/client/session"
	"github.com/euronode/euronode/internal/common"
	"github.com/euronode/euronode/internal/logging"
)

var ErrMissingCredentials = errors.New("email and password are required")

// AuthAPI is the part of the backend the auth service talks to.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (models.Session, error)
	Register(ctx context.Context, reg models.Registration) (string, error)
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server and store the returned session.
//   - Register: create an account on the server; the local session is untouched.
//   - Logout: drop the local session. There is no server call.
//   - Current: the stored session, or session.ErrNoSession.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) (models.Session, error)
	Register(ctx context.Context, reg models.Registration, password []byte) (string, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (models.Session, error)
}

type authService struct {
	api      AuthAPI
	sessions *session.Provider
	log      logging.Logger
}

func NewAuthService(api AuthAPI, sessions *session.Provider, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{api: api, sessions: sessions, log: log}
}

// Login wipes password once the request has been built.
func (a *authService) Login(ctx context.Context, email string, password []byte) (models.Session, error) {
	defer common.WipeByteArray(password)

	email = strings.TrimSpace(email)
	if email == "" || len(password) == 0 {
		return models.Session{}, ErrMissingCredentials
	}

	s, err := a.api.Login(ctx, models.Credentials{Email: email, Password: string(password)})
	if err != nil {
		return models.Session{}, fmt.Errorf("login: %w", err)
	}
	if err := a.sessions.Set(ctx, s); err != nil {
		return models.Session{}, fmt.Errorf("store session: %w", err)
	}
	a.log.Info(ctx, "logged in", "user_id", s.ID, "role", s.Role)
	return s, nil
}

func (a *authService) Register(ctx context.Context, reg models.Registration, password []byte) (string, error) {
	defer common.WipeByteArray(password)

	reg.Email = strings.TrimSpace(reg.Email)
	reg.Hospital = strings.TrimSpace(reg.Hospital)
	reg.Password = string(password)
	if reg.Email == "" || reg.Password == "" {
		return "", ErrMissingCredentials
	}
	if !reg.Role.Valid() {
		return "", fmt.Errorf("unknown role %q", reg.Role)
	}

	msg, err := a.api.Register(ctx, reg)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}
	return msg, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	a.log.Info(ctx, "logged out")
	return nil
}

func (a *authService) Current(ctx context.Context) (models.Session, error) {
	return a.sessions.Get(ctx)
}
