package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/euronode/euronode/internal/client/api"
	"github.com/euronode/euronode/internal/client/api/apitest"
	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/common"
)

func newClient(t *testing.T, b *apitest.Backend, opts ...api.Option) *api.HTTPClient {
	t.Helper()
	c, err := api.NewHTTPClient(b.URL(), opts...)
	require.NoError(t, err)
	return c
}

func TestNewHTTPClient_Validation(t *testing.T) {
	_, err := api.NewHTTPClient("ftp://host/")
	require.Error(t, err)

	_, err = api.NewHTTPClient("://bad")
	require.Error(t, err)

	c, err := api.NewHTTPClient(" http://host:8000/api?x=1 ")
	require.NoError(t, err)
	assert.Equal(t, "http://host:8000/api/", c.BaseURL().String())
}

func TestLogin_ReturnsSession(t *testing.T) {
	b := apitest.NewBackend(t)
	want := b.AddUser("ca@hospital.eu", "pw", "St. Mary", models.RoleCentral)
	c := newClient(t, b)

	got, err := c.Login(context.Background(), models.Credentials{Email: "ca@hospital.eu", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLogin_BadCredentialsCarryServerMessage(t *testing.T) {
	b := apitest.NewBackend(t)
	b.AddUser("ca@hospital.eu", "pw", "", models.RoleCentral)
	c := newClient(t, b)

	_, err := c.Login(context.Background(), models.Credentials{Email: "ca@hospital.eu", Password: "nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrBadRequest)
	assert.Equal(t, "Invalid email or password.", api.MessageOf(err))

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestLogin_IncompleteSessionIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"message":"ok","email":"x@y.z"}`)
	}))
	defer srv.Close()

	c, err := api.NewHTTPClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), models.Credentials{Email: "x@y.z", Password: "p"})
	assert.ErrorIs(t, err, api.ErrMalformedResponse)
}

func TestRegister_FieldErrorsAreFlattened(t *testing.T) {
	b := apitest.NewBackend(t)
	b.AddUser("dup@hospital.eu", "pw", "", models.RoleClient)
	c := newClient(t, b)

	msg, err := c.Register(context.Background(), models.Registration{
		Email: "new@hospital.eu", Password: "pw", Hospital: "H", Role: models.RoleClient,
	})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully!", msg)

	_, err = c.Register(context.Background(), models.Registration{
		Email: "dup@hospital.eu", Password: "pw", Role: models.RoleClient,
	})
	require.Error(t, err)
	assert.Equal(t, "email: Email already exists", api.MessageOf(err))
}

func TestListModelsAndRunning(t *testing.T) {
	b := apitest.NewBackend(t)
	ca := b.AddUser("ca@hospital.eu", "pw", "", models.RoleCentral)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b.AddModel(ca.ID, "net", "xray", 1, base)
	b.AddModel(ca.ID, "net", "xray", 2, base.Add(time.Hour))
	b.AddModel(ca.ID, "net", "xray", 0, base.Add(2*time.Hour))
	c := newClient(t, b)

	all, err := c.ListModels(context.Background(), ca.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 0, all[0].Version)

	running, err := c.RunningIterations(context.Background(), ca.ID)
	require.NoError(t, err)
	require.Len(t, running, 2)
	assert.Equal(t, 2, running[0].Version)
	assert.Equal(t, 1, running[1].Version)
}

func TestListModels_UnknownCentralIsNotFound(t *testing.T) {
	b := apitest.NewBackend(t)
	c := newClient(t, b)

	_, err := c.ListModels(context.Background(), 999)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestStartIteration_UploadsMultipart(t *testing.T) {
	b := apitest.NewBackend(t)
	ca := b.AddUser("ca@hospital.eu", "pw", "", models.RoleCentral)
	c := newClient(t, b)

	m, err := c.StartIteration(context.Background(), models.StartIteration{
		CentralAuthID: ca.ID, ModelName: "net", DatasetDomain: "xray", Version: 3,
	}, "/tmp/weights/model.pkl", strings.NewReader("pickled"))
	require.NoError(t, err)

	assert.Equal(t, "net", m.ModelName)
	assert.Equal(t, "xray", m.DatasetDomain)
	assert.Equal(t, 3, m.Version)
	assert.Equal(t, "/media/models/model.pkl", m.ModelFile)

	data, ok := b.File(m.ModelFile)
	require.True(t, ok)
	assert.Equal(t, "pickled", string(data))
	assert.Equal(t, 1, b.Hits(apitest.RouteStart))
}

func TestStartIteration_WrongRoleIsBadRequest(t *testing.T) {
	b := apitest.NewBackend(t)
	cl := b.AddUser("cl@hospital.eu", "pw", "", models.RoleClient)
	c := newClient(t, b)

	_, err := c.StartIteration(context.Background(), models.StartIteration{
		CentralAuthID: cl.ID, ModelName: "net", DatasetDomain: "xray", Version: 1,
	}, "m.pkl", strings.NewReader("x"))
	require.ErrorIs(t, err, api.ErrBadRequest)
	assert.Contains(t, api.MessageOf(err), "central_auth:")
}

func TestClientDashboard_EscapesEmail(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = io.WriteString(w, `{"current_running_rounds":1,"total_rounds":4,"total_finalized_models":2}`)
	}))
	defer srv.Close()

	c, err := api.NewHTTPClient(srv.URL + "/api")
	require.NoError(t, err)

	st, err := c.ClientDashboard(context.Background(), "a b@x.eu")
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{CurrentRunningRounds: 1, TotalRounds: 4, TotalFinalizedModels: 2}, st)
	assert.Equal(t, "/api/client-dashboard-data/a%20b@x.eu/", gotPath)
}

func TestSearchClients(t *testing.T) {
	b := apitest.NewBackend(t)
	b.AddUser("alpha@north.eu", "pw", "North General", models.RoleClient)
	b.AddUser("beta@south.eu", "pw", "South Clinic", models.RoleClient)
	b.AddUser("alpha-ca@north.eu", "pw", "", models.RoleCentral)
	c := newClient(t, b)

	res, err := c.SearchClients(context.Background(), "NORTH")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "alpha@north.eu", res[0].Email)

	res, err = c.SearchClients(context.Background(), "zzz")
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Empty(t, res)
}

func TestListAssignments_ShapePolicy(t *testing.T) {
	b := apitest.NewBackend(t)
	ca := b.AddUser("ca@hospital.eu", "pw", "", models.RoleCentral)
	cl := b.AddUser("cl@hospital.eu", "pw", "H", models.RoleClient)
	b.Assign(ca.ID, cl.ID, "xray", "net")

	lenient := newClient(t, b)
	strict := newClient(t, b, api.WithStrictDecoding(true))

	got, err := lenient.ListAssignments(context.Background(), ca.Email)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cl@hospital.eu", got[0].ClientEmail)

	b.WrapAssignments(true)

	got, err = lenient.ListAssignments(context.Background(), ca.Email)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = strict.ListAssignments(context.Background(), ca.Email)
	assert.ErrorIs(t, err, api.ErrMalformedResponse)
}

func TestAssignClient(t *testing.T) {
	b := apitest.NewBackend(t)
	ca := b.AddUser("ca@hospital.eu", "pw", "", models.RoleCentral)
	cl := b.AddUser("cl@hospital.eu", "pw", "H", models.RoleClient)
	c := newClient(t, b)

	req := models.AssignRequest{CentralAuthID: ca.ID, ClientID: cl.ID, DataDomain: "xray", ModelName: "net"}
	res, err := c.AssignClient(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Client assigned successfully!", res.Message)
	assert.Equal(t, "cl@hospital.eu", res.ClientEmail)
	assert.Equal(t, "net", res.ModelName)

	_, err = c.AssignClient(context.Background(), req)
	require.ErrorIs(t, err, api.ErrBadRequest)
	assert.Equal(t, "This client is already assigned", api.MessageOf(err))
}

func TestSend_ErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, api.ErrUnauthorized},
		{http.StatusForbidden, api.ErrUnauthorized},
		{http.StatusNotFound, api.ErrNotFound},
		{http.StatusConflict, api.ErrBadRequest},
		{http.StatusBadGateway, api.ErrServer},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			b := apitest.NewBackend(t)
			b.FailNext(apitest.RouteSearch, tc.status, map[string]string{"detail": "nope"})
			c := newClient(t, b)

			_, err := c.SearchClients(context.Background(), "ab")
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, "nope", api.MessageOf(err))
		})
	}
}

func TestSend_UnavailableWhenServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := api.NewHTTPClient(url)
	require.NoError(t, err)

	_, err = c.SearchClients(context.Background(), "ab")
	assert.ErrorIs(t, err, api.ErrUnavailable)
}

func TestSend_CancelledContextIsReturned(t *testing.T) {
	b := apitest.NewBackend(t)
	release := b.Hold(apitest.RouteSearch)
	defer release()
	c := newClient(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.SearchClients(ctx, "ab")
		done <- err
	}()
	require.Eventually(t, func() bool { return b.Hits(apitest.RouteSearch) == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("request not cancelled")
	}
}

func TestSend_TimeoutIsUnavailable(t *testing.T) {
	b := apitest.NewBackend(t)
	release := b.Hold(apitest.RouteSearch)
	defer release()
	c := newClient(t, b, api.WithTimeout(20*time.Millisecond))

	_, err := c.SearchClients(context.Background(), "ab")
	assert.ErrorIs(t, err, api.ErrUnavailable)
}

func TestSend_SetsRequestID(t *testing.T) {
	var (
		mu  sync.Mutex
		ids []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get(common.RequestIDHeader))
		mu.Unlock()
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	c, err := api.NewHTTPClient(srv.URL)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := c.SearchClients(context.Background(), "ab")
		require.NoError(t, err)
	}

	require.Len(t, ids, 2)
	for _, id := range ids {
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	}
	assert.NotEqual(t, ids[0], ids[1])
}
