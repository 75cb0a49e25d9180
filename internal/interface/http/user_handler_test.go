package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userapp "github.com/shopora/user-service/internal/application"
	"github.com/shopora/user-service/internal/domain/entity"
	repo "github.com/shopora/user-service/internal/domain/repository"
	"github.com/shopora/user-service/pkg/helpers"
	"github.com/shopora/user-service/pkg/validation"
)

const (
	testActivationURL = "http://localhost:8080/api/activation"
	testLoginRedirect = "http://localhost:5173/login"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// memRepo is a minimal in-memory repository for handler tests.
type memRepo struct {
	users map[string]*entity.User
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]*entity.User)}
}

func (m *memRepo) Create(ctx context.Context, u *entity.User) error {
	for _, e := range m.users {
		if e.Email == u.Email {
			return repo.ErrEmailTaken
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memRepo) SetActivated(ctx context.Context, id string) error {
	u, ok := m.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.IsActivated = true
	return nil
}

func (m *memRepo) SetProfilePhoto(ctx context.Context, id, photoURL string) error {
	u, ok := m.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.ProfilePhoto = photoURL
	return nil
}

func (m *memRepo) AppendAddress(ctx context.Context, id string, addr entity.Address) error {
	u, ok := m.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Addresses = append(u.Addresses, addr)
	return nil
}

// captureSender records the last activation email so tests can follow the link.
type captureSender struct {
	lastText string
}

func (c *captureSender) Send(ctx context.Context, to, subject, text, html string) error {
	c.lastText = text
	return nil
}

type fixture struct {
	router *gin.Engine
	repo   *memRepo
	sender *captureSender
	svc    *userapp.Service
}

// stubAuth stands in for the session middleware and injects the user id.
func stubAuth(uid *string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if *uid != "" {
			c.Set("userID", *uid)
		}
		c.Next()
	}
}

func newFixture(uid *string) *fixture {
	r := newMemRepo()
	sender := &captureSender{}
	jwt := helpers.NewJWTManager("test-activation-secret", "test-session-secret", time.Hour, 24*time.Hour)
	svc := userapp.NewService(r, jwt, sender, testActivationURL)

	h := NewUserHandler(svc, nil, helpers.NewCookie("localhost", false), testLoginRedirect)

	e := gin.New()
	api := e.Group("/api")
	api.POST("/signup", h.Signup)
	api.GET("/activation/:token", h.Activation)
	api.POST("/login", h.Login)

	auth := api.Group("/", stubAuth(uid))
	auth.GET("/checklogin", h.CheckLogin)
	auth.POST("/upload", h.Upload)
	auth.PUT("/add-address", h.AddAddress)

	return &fixture{router: e, repo: r, sender: sender, svc: svc}
}

func doJSON(t *testing.T, e *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func activationToken(t *testing.T, f *fixture) string {
	t.Helper()
	idx := strings.Index(f.sender.lastText, testActivationURL+"/")
	require.GreaterOrEqual(t, idx, 0)
	rest := f.sender.lastText[idx+len(testActivationURL)+1:]
	return strings.Fields(rest)[0]
}

func TestSignupEndpoint(t *testing.T) {
	uid := ""
	f := newFixture(&uid)

	w := doJSON(t, f.router, http.MethodPost, "/api/signup",
		`{"name":"Ana","email":"ana@x.com","password":"pw123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["message"], "registration successful")
}

func TestSignupEndpointRejectsBadPayload(t *testing.T) {
	uid := ""
	f := newFixture(&uid)

	w := doJSON(t, f.router, http.MethodPost, "/api/signup",
		`{"name":"Ana","email":"not-an-email","password":"pw123"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	details, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "email")
}

func TestSignupEndpointConflict(t *testing.T) {
	uid := ""
	f := newFixture(&uid)

	w := doJSON(t, f.router, http.MethodPost, "/api/signup",
		`{"name":"Ana","email":"ana@x.com","password":"pw123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, f.router, http.MethodPost, "/api/signup",
		`{"name":"Eve","email":"ana@x.com","password":"other"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestActivationEndpointRedirects(t *testing.T) {
	uid := ""
	f := newFixture(&uid)

	w := doJSON(t, f.router, http.MethodPost, "/api/signup",
		`{"name":"Ana","email":"ana@x.com","password":"pw123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	token := activationToken(t, f)
	req := httptest.NewRequest(http.MethodGet, "/api/activation/"+token, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, testLoginRedirect, rec.Header().Get("Location"))
}

func TestActivationEndpointRejectsGarbage(t *testing.T) {
	uid := ""
	f := newFixture(&uid)

	req := httptest.NewRequest(http.MethodGet, "/api/activation/garbage", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func signupActivate(t *testing.T, f *fixture) string {
	t.Helper()
	w := doJSON(t, f.router, http.MethodPost, "/api/signup",
		`{"name":"Ana","email":"ana@x.com","password":"pw123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	data := body["data"].(map[string]any)
	id := data["id"].(string)

	token := activationToken(t, f)
	req := httptest.NewRequest(http.MethodGet, "/api/activation/"+token, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)
	return id
}

func TestLoginEndpointSetsSessionCookie(t *testing.T) {
	uid := ""
	f := newFixture(&uid)
	signupActivate(t, f)

	w := doJSON(t, f.router, http.MethodPost, "/api/login",
		`{"email":"ana@x.com","password":"pw123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])

	cookies := w.Result().Cookies()
	var found bool
	for _, c := range cookies {
		if c.Name == "access_token" && c.Value != "" {
			found = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found, "access_token cookie must be set")
}

func TestLoginEndpointUnauthorized(t *testing.T) {
	uid := ""
	f := newFixture(&uid)
	signupActivate(t, f)

	w := doJSON(t, f.router, http.MethodPost, "/api/login",
		`{"email":"ana@x.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, f.router, http.MethodPost, "/api/login",
		`{"email":"nobody@x.com","password":"pw123"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginEndpointBlocksUnactivated(t *testing.T) {
	uid := ""
	f := newFixture(&uid)

	w := doJSON(t, f.router, http.MethodPost, "/api/signup",
		`{"name":"Ana","email":"ana@x.com","password":"pw123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, f.router, http.MethodPost, "/api/login",
		`{"email":"ana@x.com","password":"pw123"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckLoginProjection(t *testing.T) {
	uid := ""
	f := newFixture(&uid)
	uid = signupActivate(t, f)

	req := httptest.NewRequest(http.MethodGet, "/api/checklogin", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$", "bcrypt hash must never leak")

	body := decode(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "ana@x.com", data["email"])
	assert.Equal(t, "user", data["role"])
}

func TestCheckLoginWithoutAuth(t *testing.T) {
	uid := ""
	f := newFixture(&uid)

	req := httptest.NewRequest(http.MethodGet, "/api/checklogin", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddAddressEndpoint(t *testing.T) {
	uid := ""
	f := newFixture(&uid)
	uid = signupActivate(t, f)

	w := doJSON(t, f.router, http.MethodPut, "/api/add-address",
		`{"country":"IN","city":"Pune","address":"12 MG Road","pincode":"411001","address_type":"home"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	data := body["data"].(map[string]any)
	addrs := data["addresses"].([]any)
	require.Len(t, addrs, 1)

	// Missing field is rejected by binding before the service runs.
	w = doJSON(t, f.router, http.MethodPut, "/api/add-address",
		`{"country":"IN","city":"Pune","address":"12 MG Road","pincode":"411001"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, f.repo.users[uid].Addresses, 1, "address list must be unchanged")
}

func TestUploadEndpointRequiresFile(t *testing.T) {
	uid := ""
	f := newFixture(&uid)
	uid = signupActivate(t, f)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
