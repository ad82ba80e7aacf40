package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"notekeeper/cmd/internal/auth"
	"notekeeper/cmd/internal/contract"
	"notekeeper/cmd/internal/domain/policy"
	"notekeeper/cmd/internal/domain/sqlite"
	"notekeeper/cmd/internal/domain/sqlite/repository"
	"notekeeper/cmd/internal/http/middleware"
	"notekeeper/cmd/internal/service"
	"notekeeper/cmd/internal/utils/validators"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "an-http-test-secret-of-32-bytes!"

type testApp struct {
	e       *echo.Echo
	users   *repository.DefaultUserRepository
	userSvc *service.UserService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := sqlite.Init(sqlite.InMemory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	validate := validators.New()
	hasher := auth.NewHasher(bcrypt.MinCost)
	tokens := auth.NewTokenService([]byte(testSecret), auth.DefaultTokenTTL)

	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	userSvc := service.NewUserService(userRepo, hasher, validate, policy.NewUserPolicy())
	noteSvc := service.NewNoteService(noteRepo, validate, policy.NewNotePolicy())
	authSvc, err := service.NewAuthService(userRepo, tokens, hasher, validate)
	require.NoError(t, err)

	e := New(Options{BodyLimit: "1M"}, Services{
		Auth:     authSvc,
		Users:    userSvc,
		Notes:    noteSvc,
		Resolver: authSvc,
		Metrics:  middleware.NewMetrics(),
	})
	return &testApp{e: e, users: userRepo, userSvc: userSvc}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (a *testApp) register(t *testing.T, name, password string) contract.UserResponse {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/register", "", echo.Map{"name": name, "age": 30, "password": password})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[contract.UserResponse](t, rec)
}

// login uses the form encoded password grant.
func (a *testApp) login(t *testing.T, name, password string) string {
	t.Helper()

	form := url.Values{"username": {name}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[contract.LoginResponse](t, rec)
	assert.Equal(t, "bearer", resp.TokenType)
	return resp.AccessToken
}

func (a *testApp) createNote(t *testing.T, token, title, content string) contract.NoteResponse {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/notes", token, echo.Map{"title": title, "content": content})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[contract.NoteResponse](t, rec)
}

func assertUnauthorized(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
}

func TestRoot(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Hello World"}`, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRegisterLoginProfile(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/register", "", echo.Map{"name": "alice", "age": 30, "password": "pw1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "pw1")

	stored, err := app.users.FindByName(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "pw1", stored.Password)

	token := app.login(t, "alice", "pw1")

	rec = app.do(t, http.MethodGet, "/my_profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[contract.UserResponse](t, rec)
	assert.Equal(t, "alice", profile.Name)
	assert.Equal(t, stored.ID, profile.ID)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestLogin_JSON(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "pw1")

	rec := app.do(t, http.MethodPost, "/token", "", echo.Map{"username": "alice", "password": "pw1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[contract.LoginResponse](t, rec).AccessToken)

	rec = app.do(t, http.MethodPost, "/token", "", echo.Map{"username": "alice", "password": "nope"})
	assertUnauthorized(t, rec)

	rec = app.do(t, http.MethodPost, "/token", "", echo.Map{"username": "nobody", "password": "pw1"})
	assertUnauthorized(t, rec)
}

func TestRegister_DuplicateName(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "pw1")

	rec := app.do(t, http.MethodPost, "/register", "", echo.Map{"name": "alice", "age": 1, "password": "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(t, http.MethodPost, "/register", "", echo.Map{"name": "bob"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode[map[string]map[string][]string](t, rec)["errors"]
	assert.Contains(t, errs, "age")
	assert.Contains(t, errs, "password")
}

func TestRejectsBadTokens(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "pw1")
	app.register(t, "bob", "pw2")
	token := app.login(t, "alice", "pw1")
	bobToken := app.login(t, "bob", "pw2")

	forged, err := auth.NewTokenService([]byte("some-other-secret-of-32-bytes!!!"), auth.DefaultTokenTTL).Issue("alice", 1)
	require.NoError(t, err)

	// bob's claims under alice's signature
	parts := strings.Split(token, ".")
	bobParts := strings.Split(bobToken, ".")
	tampered := parts[0] + "." + bobParts[1] + "." + parts[2]

	for name, raw := range map[string]string{
		"missing":      "",
		"garbage":      "abc",
		"wrong secret": forged,
		"tampered":     tampered,
	} {
		t.Run(name, func(t *testing.T) {
			assertUnauthorized(t, app.do(t, http.MethodGet, "/my_profile", raw, nil))
			assertUnauthorized(t, app.do(t, http.MethodGet, "/notes", raw, nil))
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/my_profile", nil)
	req.Header.Set(echo.HeaderAuthorization, "Basic "+token)
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)
	assertUnauthorized(t, rec)
}

func TestNotes_OwnerCannotBeForged(t *testing.T) {
	app := newTestApp(t)
	alice := app.register(t, "alice", "pw1")
	bob := app.register(t, "bob", "pw2")
	token := app.login(t, "alice", "pw1")

	rec := app.do(t, http.MethodPost, "/notes", token, echo.Map{
		"id":       999,
		"title":    "mine",
		"content":  "text",
		"owner_id": bob.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	note := decode[contract.NoteResponse](t, rec)
	assert.Equal(t, alice.ID, note.OwnerID)
	assert.NotEqual(t, int64(999), note.ID)

	rec = app.do(t, http.MethodPut, fmt.Sprintf("/notes/%d", note.ID), token, echo.Map{
		"title":    "still mine",
		"owner_id": bob.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alice.ID, decode[contract.NoteResponse](t, rec).OwnerID)
}

func TestNotes_Isolation(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "pw1")
	app.register(t, "bob", "pw2")
	aliceToken := app.login(t, "alice", "pw1")
	bobToken := app.login(t, "bob", "pw2")

	note := app.createNote(t, aliceToken, "private", "alice only")
	path := fmt.Sprintf("/notes/%d", note.ID)

	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodGet, path, bobToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodPut, path, bobToken, echo.Map{"title": "x"}).Code)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodDelete, path, bobToken, nil).Code)

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/notes/424242", bobToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodPut, "/notes/424242", bobToken, echo.Map{"title": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodDelete, "/notes/424242", bobToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/notes/abc", bobToken, nil).Code)

	rec := app.do(t, http.MethodGet, path, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[contract.NoteResponse](t, rec)
	assert.Equal(t, "private", got.Title)
	assert.Equal(t, "alice only", got.Content)

	rec = app.do(t, http.MethodGet, "/notes", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestNotes_UpdateDelete(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "pw1")
	token := app.login(t, "alice", "pw1")

	note := app.createNote(t, token, "draft", "v1")
	path := fmt.Sprintf("/notes/%d", note.ID)

	rec := app.do(t, http.MethodPut, path, token, echo.Map{"title": "final", "content": "v2"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[contract.NoteResponse](t, rec)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, "v2", updated.Content)

	rec = app.do(t, http.MethodPut, path, token, echo.Map{"content": "no title"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Note deleted"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, path, token, nil).Code)
}

func TestNotes_SearchFilter(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "pw1")
	app.register(t, "bob", "pw2")
	token := app.login(t, "alice", "pw1")
	bobToken := app.login(t, "bob", "pw2")

	app.createNote(t, token, "shopping", "eggs and milk")
	app.createNote(t, token, "milk run", "")
	app.createNote(t, token, "work", "deadline")
	app.createNote(t, bobToken, "milk", "bob's milk")

	titles := func(q string) []string {
		rec := app.do(t, http.MethodGet, "/notes?q="+url.QueryEscape(q), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		out := []string{}
		for _, n := range decode[[]contract.NoteResponse](t, rec) {
			out = append(out, n.Title)
		}
		return out
	}

	assert.Equal(t, []string{"shopping", "milk run", "work"}, titles(""))
	assert.Equal(t, []string{"shopping", "milk run"}, titles("milk"))
	assert.Equal(t, []string{"work"}, titles("dead"))
	assert.Empty(t, titles("MILK"))
}

func TestUsers_Capabilities(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	alice := app.register(t, "alice", "pw1")
	bob := app.register(t, "bob", "pw2")
	require.NoError(t, app.userSvc.EnsureAdmin(ctx, "root", "rootpw"))
	aliceToken := app.login(t, "alice", "pw1")
	rootToken := app.login(t, "root", "rootpw")

	rec := app.do(t, http.MethodGet, "/user", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]contract.UserResponse](t, rec), 3)
	assert.NotContains(t, rec.Body.String(), "password")

	bobPath := fmt.Sprintf("/user/%d", bob.ID)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, bobPath, aliceToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/user/777", aliceToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/user/abc", aliceToken, nil).Code)

	rename := echo.Map{"name": "hacked", "age": 1}
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodPut, bobPath, aliceToken, rename).Code)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodPut, bobPath, aliceToken, echo.Map{"name": ""}).Code)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodDelete, bobPath, aliceToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodDelete, "/user/777", aliceToken, nil).Code)

	rec = app.do(t, http.MethodPut, bobPath, rootToken, echo.Map{"name": "robert", "age": 41})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "robert", decode[contract.UserResponse](t, rec).Name)

	// the stored hash survives an update without password
	app.login(t, "robert", "pw2")

	rec = app.do(t, http.MethodPut, fmt.Sprintf("/user/%d", alice.ID), aliceToken, echo.Map{"name": "robert", "age": 30})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(t, http.MethodPut, "/user/@me", aliceToken, echo.Map{"name": "alice", "age": 30, "password": "new-pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	app.login(t, "alice", "new-pw")

	rec = app.do(t, http.MethodPost, "/token", "", echo.Map{"username": "alice", "password": "pw1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsers_DeleteCascadesAndRevokesAccess(t *testing.T) {
	app := newTestApp(t)
	alice := app.register(t, "alice", "pw1")
	app.register(t, "bob", "pw2")
	aliceToken := app.login(t, "alice", "pw1")
	bobToken := app.login(t, "bob", "pw2")

	note := app.createNote(t, aliceToken, "doomed", "")

	rec := app.do(t, http.MethodDelete, fmt.Sprintf("/user/%d", alice.ID), aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"User deleted"}`, rec.Body.String())

	// the token is still within its lifetime but names a user that is gone
	assertUnauthorized(t, app.do(t, http.MethodGet, "/my_profile", aliceToken, nil))

	rec = app.do(t, http.MethodGet, fmt.Sprintf("/notes/%d", note.ID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "pw1")
	app.do(t, http.MethodGet, "/notes", "", nil)

	rec := app.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `notes_http_requests_total{method="POST",route="/register",status="201"} 1`)
	assert.Contains(t, body, `notes_http_requests_total{method="GET",route="/notes",status="401"} 1`)
	assert.Contains(t, body, `notes_http_request_duration_seconds_count{method="POST",route="/register"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
