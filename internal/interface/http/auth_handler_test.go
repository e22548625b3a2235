package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/automator-io/admin-service/internal/application"
	"github.com/automator-io/admin-service/internal/domain/entity"
	"github.com/automator-io/admin-service/internal/domain/repository"
	"github.com/automator-io/admin-service/internal/interface/middleware"
	"github.com/automator-io/admin-service/pkg/hash"
	"github.com/automator-io/admin-service/pkg/response"
	"github.com/automator-io/admin-service/pkg/resterr"
	"github.com/automator-io/admin-service/pkg/token"
	"github.com/automator-io/admin-service/pkg/validation"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUserRepo(users ...*entity.User) *memUserRepo {
	r := &memUserRepo{users: map[string]*entity.User{}}
	for _, u := range users {
		cp := *u
		r.users[u.UserID] = &cp
	}
	return r
}

func (r *memUserRepo) Insert(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.UserID]; ok {
		return repository.ErrDuplicate
	}
	cp := *u
	r.users[u.UserID] = &cp
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, userID string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) List(_ context.Context, _ map[string]any, limit, skip int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	if skip >= len(out) {
		return nil, nil
	}
	out = out[skip:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memUserRepo) Count(_ context.Context, _ map[string]any) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *memUserRepo) Replace(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.UserID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	r.users[u.UserID] = &cp
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, userID)
	return nil
}

func (r *memUserRepo) MarkLoggedIn(_ context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.IsLoggedIn = true
		u.UpdatedAt = at
	}
	return nil
}

func (r *memUserRepo) MarkLoggedOut(_ context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.IsLoggedIn = false
		u.UpdatedAt = at
	}
	return nil
}

func (r *memUserRepo) SetEmailVerified(_ context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok && u.Security != nil {
		u.Security.IsEmailVerified = true
		u.UpdatedAt = at
	}
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok && u.Security != nil {
		u.Security.PasswordHash = passwordHash
		u.UpdatedAt = at
	}
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testRouter(t *testing.T, users repository.UserRepository) (*gin.Engine, *token.Codec) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()
	codec, err := token.NewCodec("test-secret-test-secret-test-1234", "HS256", "admin-service", "admin-clients", 15*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	logger := quietLogger()
	svc := application.NewAuthService(users, hash.New(4), codec, logger)
	h := NewAuthHandler(svc, nil, logger)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/login", h.Login)
	api.POST("/auth/refresh", h.Refresh)
	api.POST("/auth/reset/init", h.ResetInit)
	api.POST("/auth/reset/confirm", h.ResetConfirm)
	authed := api.Group("/")
	authed.Use(middleware.Authenticate(codec, logger))
	authed.GET("/auth/me", h.Me)
	authed.DELETE("/auth/logout", h.Logout)
	return r, codec
}

func seedUser(t *testing.T, password string) *entity.User {
	t.Helper()
	digest, err := hash.New(4).Hash(password)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	return &entity.User{
		UserID:   "u-1",
		Email:    "alice@example.com",
		Username: "alice",
		OrgID:    "org-1",
		Roles:    []string{"admin"},
		Security: &entity.Security{IsEmailVerified: true, PasswordHash: digest},
		IsActive: true,
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body, bearer string) (*httptest.ResponseRecorder, response.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env response.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad envelope %q: %v", w.Body.String(), err)
	}
	return w, env
}

func TestLoginEndpoint(t *testing.T) {
	r, _ := testRouter(t, newMemUserRepo(seedUser(t, "correct horse")))

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"correct horse"}`, "")
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status %d, envelope %+v", w.Code, env)
	}
	data, _ := env.Data.(map[string]any)
	if tok, _ := data["access_token"].(string); tok == "" {
		t.Errorf("data = %+v", data)
	}
	if data["token_type"] != "Bearer" {
		t.Errorf("token_type = %v", data["token_type"])
	}

	w, env = doJSON(t, r, http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"wrong"}`, "")
	if w.Code != http.StatusUnauthorized || env.Success {
		t.Fatalf("status %d, envelope %+v", w.Code, env)
	}
	if len(env.Errors) != 1 || env.Errors[0].Code != "INVALID_CREDENTIALS" {
		t.Errorf("errors = %+v", env.Errors)
	}

	w, env = doJSON(t, r, http.MethodPost, "/api/auth/login", `not json`, "")
	if w.Code != http.StatusBadRequest || env.Errors[0].Code != "VALIDATION_ERROR" {
		t.Errorf("status %d, errors %+v", w.Code, env.Errors)
	}
}

func TestMeEndpoint(t *testing.T) {
	repo := newMemUserRepo(seedUser(t, "pw"))
	r, codec := testRouter(t, repo)

	access, err := codec.IssueAccess("u-1", []string{"admin"}, "org-1", nil, nil)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	w, env := doJSON(t, r, http.MethodGet, "/api/auth/me", "", access)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, envelope %+v", w.Code, env)
	}
	data, _ := env.Data.(map[string]any)
	if data["user_id"] != "u-1" {
		t.Errorf("data = %+v", data)
	}
	if sec, ok := data["security"].(map[string]any); ok {
		if h, present := sec["password_hash"]; present && h != "" {
			t.Error("password hash leaked through the endpoint")
		}
	}

	w, env = doJSON(t, r, http.MethodGet, "/api/auth/me", "", "")
	if w.Code != http.StatusUnauthorized || env.Errors[0].Code != "INVALID_TOKEN" {
		t.Errorf("status %d, errors %+v", w.Code, env.Errors)
	}
}

func TestLogoutEndpoint(t *testing.T) {
	u := seedUser(t, "pw")
	u.IsLoggedIn = true
	repo := newMemUserRepo(u)
	r, codec := testRouter(t, repo)

	access, err := codec.IssueAccess("u-1", []string{"admin"}, "org-1", nil, nil)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status %d, body %q", w.Code, w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}

	repo.mu.Lock()
	loggedIn := repo.users["u-1"].IsLoggedIn
	repo.mu.Unlock()
	if loggedIn {
		t.Error("user still marked logged in")
	}
}

func TestRefreshEndpoint(t *testing.T) {
	r, _ := testRouter(t, newMemUserRepo(seedUser(t, "correct horse")))

	_, loginEnv := doJSON(t, r, http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"correct horse"}`, "")
	data, _ := loginEnv.Data.(map[string]any)
	refresh, _ := data["refresh_token"].(string)
	if refresh == "" {
		t.Fatal("login returned no refresh token")
	}

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/refresh", "", refresh)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status %d, envelope %+v", w.Code, env)
	}
	refreshed, _ := env.Data.(map[string]any)
	if tok, _ := refreshed["access_token"].(string); tok == "" {
		t.Errorf("data = %+v", refreshed)
	}

	// An access token on the refresh route is rejected.
	access, _ := data["access_token"].(string)
	w, env = doJSON(t, r, http.MethodPost, "/api/auth/refresh", "", access)
	if w.Code != http.StatusUnauthorized || env.Errors[0].Code != "INVALID_TOKEN" {
		t.Errorf("status %d, errors %+v", w.Code, env.Errors)
	}
}

func TestBindingValidation(t *testing.T) {
	r, _ := testRouter(t, newMemUserRepo(seedUser(t, "pw")))

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/reset/confirm", `{"token":"tok","new_password":"short"}`, "")
	if w.Code != http.StatusBadRequest || env.Success {
		t.Fatalf("status %d, envelope %+v", w.Code, env)
	}
	if len(env.Errors) != 1 || env.Errors[0].Field != "new_password" {
		t.Fatalf("errors = %+v", env.Errors)
	}
	if !strings.Contains(env.Errors[0].Message, "at least 8") {
		t.Errorf("message = %q", env.Errors[0].Message)
	}

	w, env = doJSON(t, r, http.MethodPost, "/api/auth/reset/confirm", `{"new_password":"long enough pw"}`, "")
	if w.Code != http.StatusBadRequest || len(env.Errors) != 1 || env.Errors[0].Field != "token" {
		t.Errorf("status %d, errors %+v", w.Code, env.Errors)
	}

	w, env = doJSON(t, r, http.MethodPost, "/api/auth/reset/init", `{"email":"not-an-email"}`, "")
	if w.Code != http.StatusBadRequest || len(env.Errors) != 1 || env.Errors[0].Field != "email" {
		t.Errorf("status %d, errors %+v", w.Code, env.Errors)
	}
}

func TestWriteErrRendering(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("multi detail with data", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		writeErr(c, resterr.BadRequest("INVALID_FIELD", "Invalid top-level fields provided: bogus").
			WithDetails(resterr.Detail{Code: "INVALID_FIELD", Message: "Field 'bogus' is not a valid top-level field", Field: "bogus"}).
			WithData(map[string]any{"org_id": "org-1"}))

		var env response.Envelope
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if w.Code != http.StatusBadRequest || env.Success {
			t.Fatalf("status %d, envelope %+v", w.Code, env)
		}
		if len(env.Errors) != 1 || env.Errors[0].Field != "bogus" {
			t.Errorf("errors = %+v", env.Errors)
		}
		data, _ := env.Data.(map[string]any)
		if data["org_id"] != "org-1" {
			t.Errorf("data = %+v", env.Data)
		}
	})

	t.Run("single error becomes one detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		writeErr(c, resterr.NotFound("USER_NOT_FOUND", "User not found").WithField("user_id"))

		var env response.Envelope
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if w.Code != http.StatusNotFound || len(env.Errors) != 1 {
			t.Fatalf("status %d, envelope %+v", w.Code, env)
		}
		if env.Errors[0].Code != "USER_NOT_FOUND" || env.Errors[0].Field != "user_id" {
			t.Errorf("errors = %+v", env.Errors)
		}
		if !strings.Contains(w.Body.String(), `"data":null`) {
			t.Errorf("body = %s", w.Body.String())
		}
	})
}

func TestPageParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(query string) (*gin.Context, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/users"+query, nil)
		return c, w
	}

	c, _ := newCtx("?limit=25&skip=50")
	limit, skip, ok := pageParams(c)
	if !ok || limit != 25 || skip != 50 {
		t.Errorf("limit=%d skip=%d ok=%v", limit, skip, ok)
	}

	c, _ = newCtx("")
	limit, skip, ok = pageParams(c)
	if !ok || limit != 100 || skip != 0 {
		t.Errorf("defaults: limit=%d skip=%d ok=%v", limit, skip, ok)
	}

	c, w := newCtx("?limit=abc")
	if _, _, ok := pageParams(c); ok {
		t.Error("non-numeric limit accepted")
	}
	var env response.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Errors[0].Code != "INVALID_LIMIT" {
		t.Errorf("errors = %+v", env.Errors)
	}
}
