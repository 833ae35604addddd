package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/euronode/euronode/internal/client/api"
	"github.com/euronode/euronode/internal/client/api/apitest"
	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/client/session"
)

// ---- fake api ----

type fakeAPI struct {
	LoginRet    models.Session
	LoginErr    error
	RegisterRet string
	RegisterErr error

	LastCreds models.Credentials
	LastReg   models.Registration
	Calls     int
}

func (f *fakeAPI) Login(_ context.Context, c models.Credentials) (models.Session, error) {
	f.Calls++
	f.LastCreds = c
	return f.LoginRet, f.LoginErr
}

func (f *fakeAPI) Register(_ context.Context, r models.Registration) (string, error) {
	f.Calls++
	f.LastReg = r
	return f.RegisterRet, f.RegisterErr
}

func newService(fa AuthAPI) (AuthService, *session.Provider) {
	p := session.NewProvider(session.NewMemoryStore())
	return NewAuthService(fa, p, nil), p
}

var sess = models.Session{ID: 3, Email: "cl@hospital.eu", Role: models.RoleClient, Hospital: "North"}

func TestLogin_StoresSessionAndWipesPassword(t *testing.T) {
	fa := &fakeAPI{LoginRet: sess}
	svc, p := newService(fa)
	pw := []byte("secret")

	got, err := svc.Login(context.Background(), "  cl@hospital.eu ", pw)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
	assert.Equal(t, models.Credentials{Email: "cl@hospital.eu", Password: "secret"}, fa.LastCreds)
	assert.Equal(t, make([]byte, len(pw)), pw)

	stored, err := p.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sess, stored)
}

func TestLogin_MissingCredentials_NoRequest(t *testing.T) {
	fa := &fakeAPI{}
	svc, _ := newService(fa)

	_, err := svc.Login(context.Background(), " ", []byte("x"))
	require.ErrorIs(t, err, ErrMissingCredentials)
	_, err = svc.Login(context.Background(), "a@b.c", nil)
	require.ErrorIs(t, err, ErrMissingCredentials)
	assert.Zero(t, fa.Calls)
}

func TestLogin_FailureLeavesNoSession(t *testing.T) {
	fa := &fakeAPI{LoginErr: api.ErrBadRequest}
	svc, p := newService(fa)

	_, err := svc.Login(context.Background(), "a@b.c", []byte("x"))
	require.ErrorIs(t, err, api.ErrBadRequest)

	_, err = p.Get(context.Background())
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestRegister(t *testing.T) {
	fa := &fakeAPI{RegisterRet: "User registered successfully!"}
	svc, p := newService(fa)

	msg, err := svc.Register(context.Background(), models.Registration{
		Email: " n@h.eu ", Hospital: " North ", Role: models.RoleClient,
	}, []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully!", msg)
	assert.Equal(t, models.Registration{Email: "n@h.eu", Password: "pw", Hospital: "North", Role: models.RoleClient}, fa.LastReg)

	_, err = p.Get(context.Background())
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestRegister_Validation(t *testing.T) {
	fa := &fakeAPI{}
	svc, _ := newService(fa)

	_, err := svc.Register(context.Background(), models.Registration{Email: "a@b.c", Role: "admin"}, []byte("pw"))
	require.Error(t, err)
	_, err = svc.Register(context.Background(), models.Registration{Email: "a@b.c", Role: models.RoleClient}, nil)
	require.ErrorIs(t, err, ErrMissingCredentials)
	assert.Zero(t, fa.Calls)
}

func TestRegister_ErrorWrapped(t *testing.T) {
	boom := errors.New("boom")
	svc, _ := newService(&fakeAPI{RegisterErr: boom})

	_, err := svc.Register(context.Background(), models.Registration{Email: "a@b.c", Role: models.RoleCentral}, []byte("pw"))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "register:")
}

func TestLogoutAndCurrent(t *testing.T) {
	svc, p := newService(&fakeAPI{})
	ctx := context.Background()
	require.NoError(t, p.Set(ctx, sess))

	got, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	require.NoError(t, svc.Logout(ctx))
	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestLogin_AgainstBackend(t *testing.T) {
	b := apitest.NewBackend(t)
	want := b.AddUser("ca@hospital.eu", "pw", "St. Mary", models.RoleCentral)
	hc, err := api.NewHTTPClient(b.URL())
	require.NoError(t, err)

	svc, p := newService(hc)

	_, err = svc.Login(context.Background(), "ca@hospital.eu", []byte("wrong"))
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password.", api.MessageOf(err))

	_, err = svc.Login(context.Background(), "ca@hospital.eu", []byte("pw"))
	require.NoError(t, err)

	got, err := p.Require(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
