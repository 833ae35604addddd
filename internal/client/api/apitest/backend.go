// Package apitest provides an in-memory fake of the euronode backend for
// tests. It serves the same routes and error payloads as the real API over
// httptest, counts hits per route and can inject failures or hold requests.
package apitest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/euronode/euronode/internal/client/models"
)

// Route names accepted by Hits, FailNext and Hold.
const (
	RouteLogin       = "login"
	RouteSignup      = "signup"
	RouteModels      = "models"
	RouteRunning     = "running"
	RouteStart       = "start"
	RouteDashboard   = "dashboard"
	RouteSearch      = "search"
	RouteAssignments = "assignments"
	RouteAssign      = "assign"
	RouteMedia       = "media"
)

type user struct {
	models.Session
	password string
}

type assignment struct {
	models.Assignment
	centralID int64
	clientID  int64
}

type stored struct {
	models.Model
	centralID int64
}

type failure struct {
	status int
	body   any
}

type Backend struct {
	server *httptest.Server

	mu          sync.Mutex
	nextID      int64
	users       []user
	models      []stored
	assignments []assignment
	files       map[string][]byte
	hits        map[string]int
	failures    map[string]failure
	holds       map[string]chan struct{}
	wrapAssign  bool
	clock       time.Time
}

// NewBackend starts a fake backend that is shut down when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{
		files:    map[string][]byte{},
		hits:     map[string]int{},
		failures: map[string]failure{},
		holds:    map[string]chan struct{}{},
		clock:    time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC),
	}

	r := gin.New()
	r.POST("/login/", b.wrap(RouteLogin, b.login))
	r.POST("/signup/", b.wrap(RouteSignup, b.signup))
	r.GET("/central-models/", b.wrap(RouteModels, b.listModels))
	r.GET("/central-models/running/", b.wrap(RouteRunning, b.runningIterations))
	r.POST("/central-models/start/", b.wrap(RouteStart, b.startIteration))
	r.GET("/client-dashboard-data/:email/", b.wrap(RouteDashboard, b.clientDashboard))
	r.GET("/filter_client", b.wrap(RouteSearch, b.filterClient))
	r.GET("/fetch_assign/:email/", b.wrap(RouteAssignments, b.fetchAssign))
	r.POST("/assign_client/", b.wrap(RouteAssign, b.assignClient))
	r.GET("/media/*filepath", b.wrap(RouteMedia, b.media))

	b.server = httptest.NewServer(r)
	t.Cleanup(b.server.Close)
	return b
}

func (b *Backend) URL() string { return b.server.URL }

// AddUser registers a user directly and returns its session view.
func (b *Backend) AddUser(email, password, hospital string, role models.Role) models.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	s := models.Session{ID: b.nextID, Email: email, Role: role, Hospital: hospital}
	b.users = append(b.users, user{Session: s, password: password})
	return s
}

// AddModel stores a model record owned by the central authority centralID.
func (b *Backend) AddModel(centralID int64, name, domain string, version int, createdAt time.Time) models.Model {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addModelLocked(centralID, name, domain, version, createdAt, "")
}

// Assign stores an assignment directly.
func (b *Backend) Assign(centralID, clientID int64, domain, model string) models.Assignment {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, _ := b.assignLocked(centralID, clientID, domain, model)
	return a
}

// Hits returns how many requests reached route.
func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

// FailNext makes the next request to route answer with status and body.
func (b *Backend) FailNext(route string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = failure{status: status, body: body}
}

// Hold blocks requests to route until the returned release func is called
// or the request is cancelled.
func (b *Backend) Hold(route string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.holds[route] = ch
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.holds, route)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// WrapAssignments makes /fetch_assign/ answer {"assignments": [...]}
// instead of a bare array.
func (b *Backend) WrapAssignments(wrap bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wrapAssign = wrap
}

// Models returns the records of centralID, newest first.
func (b *Backend) Models(centralID int64) []models.Model {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.modelsLocked(centralID)
}

// File returns an uploaded artifact by its model_file reference.
func (b *Backend) File(ref string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.files[ref]
	return data, ok
}

func (b *Backend) wrap(route string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		b.hits[route]++
		f, failing := b.failures[route]
		if failing {
			delete(b.failures, route)
		}
		hold := b.holds[route]
		b.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-c.Request.Context().Done():
				c.AbortWithStatus(http.StatusServiceUnavailable)
				return
			}
		}
		if failing {
			c.JSON(f.status, f.body)
			return
		}
		h(c)
	}
}

func (b *Backend) login(c *gin.Context) {
	var req models.Credentials
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required."})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.userByEmailLocked(req.Email)
	if !ok || u.password != req.Password {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Login successful!",
		"id":       u.ID,
		"email":    u.Email,
		"hospital": u.Hospital,
		"role":     u.Role,
	})
}

func (b *Backend) signup(c *gin.Context) {
	var req models.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Invalid data."}})
		return
	}

	errs := gin.H{}
	if req.Password == "" {
		errs["password"] = []string{"This field is required."}
	}
	if !req.Role.Valid() {
		errs["role"] = []string{"\"" + string(req.Role) + "\" is not a valid choice."}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.userByEmailLocked(req.Email); exists {
		errs["email"] = []string{"Email already exists"}
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	b.nextID++
	b.users = append(b.users, user{
		Session:  models.Session{ID: b.nextID, Email: req.Email, Role: req.Role, Hospital: req.Hospital},
		password: req.Password,
	})
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully!"})
}

func (b *Backend) listModels(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	central, ok := b.centralFromQueryLocked(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, b.modelsLocked(central.ID))
}

func (b *Backend) runningIterations(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	central, ok := b.centralFromQueryLocked(c)
	if !ok {
		return
	}
	out := make([]models.Model, 0)
	for _, m := range b.modelsLocked(central.ID) {
		if m.Version > 0 {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	c.JSON(http.StatusOK, out)
}

func (b *Backend) startIteration(c *gin.Context) {
	errs := gin.H{}
	centralID, _ := strconv.ParseInt(c.PostForm("central_auth"), 10, 64)
	name := c.PostForm("model_name")
	domain := c.PostForm("dataset_domain")
	version, verr := strconv.Atoi(c.PostForm("version"))
	if name == "" {
		errs["model_name"] = []string{"This field may not be blank."}
	}
	if verr != nil {
		errs["version"] = []string{"A valid integer is required."}
	}

	fh, ferr := c.FormFile("model_file")
	var content []byte
	if ferr != nil {
		errs["model_file"] = []string{"No file was submitted."}
	} else {
		if f, err := fh.Open(); err == nil {
			content, _ = io.ReadAll(f)
			_ = f.Close()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if u, ok := b.userByIDLocked(centralID); !ok || u.Role != models.RoleCentral {
		errs["central_auth"] = []string{"Invalid pk \"" + c.PostForm("central_auth") + "\" - object does not exist."}
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	b.clock = b.clock.Add(time.Minute)
	ref := "/media/models/" + fh.Filename
	b.files[ref] = content
	m := b.addModelLocked(centralID, name, domain, version, b.clock, ref)
	c.JSON(http.StatusCreated, m)
}

func (b *Backend) clientDashboard(c *gin.Context) {
	email := c.Param("email")

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.userByEmailLocked(email)
	if !ok || u.Role != models.RoleClient {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	var st models.DashboardStats
	for _, a := range b.assignments {
		if a.clientID != u.ID {
			continue
		}
		for _, m := range b.modelsLocked(a.centralID) {
			if m.ModelName != a.ModelName {
				continue
			}
			st.TotalRounds++
			switch {
			case m.Version > 0:
				st.CurrentRunningRounds++
			case m.Version == 0:
				st.TotalFinalizedModels++
			}
		}
	}
	c.JSON(http.StatusOK, st)
}

func (b *Backend) filterClient(c *gin.Context) {
	text := strings.ToLower(c.Query("search"))

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.ClientEntry, 0)
	for _, u := range b.users {
		if u.Role != models.RoleClient {
			continue
		}
		if strings.Contains(strings.ToLower(u.Email), text) || strings.Contains(strings.ToLower(u.Hospital), text) {
			out = append(out, models.ClientEntry{ID: u.ID, Email: u.Email, Hospital: u.Hospital, Role: u.Role})
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) fetchAssign(c *gin.Context) {
	email := c.Param("email")

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Assignment, 0)
	for _, a := range b.assignments {
		if strings.EqualFold(a.CentralAuthEmail, email) {
			out = append(out, a.Assignment)
		}
	}
	if b.wrapAssign {
		c.JSON(http.StatusOK, gin.H{"assignments": out})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) assignClient(c *gin.Context) {
	var req models.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		req.CentralAuthID == 0 || req.ClientID == 0 || req.DataDomain == "" || req.ModelName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	central, okC := b.userByIDLocked(req.CentralAuthID)
	client, okK := b.userByIDLocked(req.ClientID)
	if !okC || !okK || central.Role != models.RoleCentral || client.Role != models.RoleClient {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid central_auth_id or client_id"})
		return
	}
	a, ok := b.assignLocked(req.CentralAuthID, req.ClientID, req.DataDomain, req.ModelName)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This client is already assigned"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":            "Client assigned successfully!",
		"id":                 a.ID,
		"client_email":       a.ClientEmail,
		"client_hospital":    a.ClientHospital,
		"central_auth_email": a.CentralAuthEmail,
		"data_domain":        a.DataDomain,
		"model_name":         a.ModelName,
		"assigned_at":        a.AssignedAt,
	})
}

func (b *Backend) media(c *gin.Context) {
	ref := "/media" + c.Param("filepath")

	b.mu.Lock()
	data, ok := b.files[ref]
	b.mu.Unlock()
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}

func (b *Backend) centralFromQueryLocked(c *gin.Context) (user, bool) {
	raw := c.Query("user_id")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id parameter is required"})
		return user{}, false
	}
	id, _ := strconv.ParseInt(raw, 10, 64)
	u, ok := b.userByIDLocked(id)
	if !ok || u.Role != models.RoleCentral {
		c.JSON(http.StatusNotFound, gin.H{"error": "Central Auth user not found"})
		return user{}, false
	}
	return u, true
}

func (b *Backend) addModelLocked(centralID int64, name, domain string, version int, createdAt time.Time, ref string) models.Model {
	b.nextID++
	u, _ := b.userByIDLocked(centralID)
	m := models.Model{
		ID:               b.nextID,
		ModelName:        name,
		DatasetDomain:    domain,
		Version:          version,
		CreatedAt:        createdAt,
		CentralAuthEmail: u.Email,
		ModelFile:        ref,
	}
	b.models = append(b.models, stored{Model: m, centralID: centralID})
	return m
}

func (b *Backend) assignLocked(centralID, clientID int64, domain, model string) (models.Assignment, bool) {
	for _, a := range b.assignments {
		if a.clientID == clientID {
			return models.Assignment{}, false
		}
	}
	central, _ := b.userByIDLocked(centralID)
	client, _ := b.userByIDLocked(clientID)

	b.nextID++
	b.clock = b.clock.Add(time.Minute)
	a := models.Assignment{
		ID:               b.nextID,
		ClientEmail:      client.Email,
		ClientHospital:   client.Hospital,
		CentralAuthEmail: central.Email,
		ModelName:        model,
		DataDomain:       domain,
		AssignedAt:       b.clock,
	}
	b.assignments = append(b.assignments, assignment{Assignment: a, centralID: centralID, clientID: clientID})
	return a, true
}

func (b *Backend) modelsLocked(centralID int64) []models.Model {
	out := make([]models.Model, 0)
	for _, s := range b.models {
		if s.centralID == centralID {
			out = append(out, s.Model)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (b *Backend) userByEmailLocked(email string) (user, bool) {
	for _, u := range b.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return user{}, false
}

func (b *Backend) userByIDLocked(id int64) (user, bool) {
	for _, u := range b.users {
		if u.ID == id {
			return u, true
		}
	}
	return user{}, false
}
