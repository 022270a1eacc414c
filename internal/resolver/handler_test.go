package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semtetteh/semsterapp/internal/directory"
	"github.com/semtetteh/semsterapp/internal/profile"
)

type fakeProfiles struct {
	byUsername map[string]*profile.Profile
	err        error
}

func (f *fakeProfiles) GetByID(context.Context, string) (*profile.Profile, error) {
	return nil, profile.ErrNotFound
}

func (f *fakeProfiles) GetByUsername(_ context.Context, username string) (*profile.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.byUsername[username]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) Upsert(context.Context, string, profile.Patch, time.Time) error {
	return nil
}

type fakeDirectory struct {
	emails map[string]string
	err    error
}

func (f *fakeDirectory) EmailByID(_ context.Context, userID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	email, ok := f.emails[userID]
	if !ok {
		return "", directory.ErrNoAccount
	}
	return email, nil
}

func newRouter(profiles *fakeProfiles, dir *fakeDirectory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.Use(Recovery())
	NewHandler(profiles, dir).RegisterRoutes(r)
	return r
}

func doResolve(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/resolve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func assertCORS(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Headers"))
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out["error"]
}

func TestResolveMissingFields(t *testing.T) {
	r := newRouter(&fakeProfiles{}, &fakeDirectory{})

	for _, body := range []string{`{}`, `{"username":"ada"}`, `{"password":"pw"}`, `not json`} {
		w := doResolve(r, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assertCORS(t, w)
	}
}

func TestResolveUnknownUsernameIsGeneric(t *testing.T) {
	r := newRouter(&fakeProfiles{byUsername: map[string]*profile.Profile{}}, &fakeDirectory{})

	w := doResolve(r, `{"username":"ghost","password":"pw"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, genericError, errorBody(t, w))
	assertCORS(t, w)
}

func TestResolveMissingAccountIsGeneric(t *testing.T) {
	profiles := &fakeProfiles{byUsername: map[string]*profile.Profile{
		"ada": {ID: "u1", Username: "ada"},
	}}
	r := newRouter(profiles, &fakeDirectory{emails: map[string]string{}})

	w := doResolve(r, `{"username":"ada","password":"pw"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, genericError, errorBody(t, w))
}

func TestResolveDirectoryErrorIsGeneric(t *testing.T) {
	profiles := &fakeProfiles{byUsername: map[string]*profile.Profile{
		"ada": {ID: "u1", Username: "ada"},
	}}
	r := newRouter(profiles, &fakeDirectory{err: errors.New("permission denied")})

	w := doResolve(r, `{"username":"ada","password":"pw"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, genericError, errorBody(t, w))
	assertCORS(t, w)
}

func TestResolveStoreFailureIsServerError(t *testing.T) {
	r := newRouter(&fakeProfiles{err: errors.New("too many connections")}, &fakeDirectory{})

	w := doResolve(r, `{"username":"ada","password":"pw"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "too many connections", errorBody(t, w))
	assertCORS(t, w)
}

func TestResolveSuccessReturnsEmailOnly(t *testing.T) {
	profiles := &fakeProfiles{byUsername: map[string]*profile.Profile{
		"ada": {ID: "u1", Username: "ada", FullName: "Ada Lovelace"},
	}}
	dir := &fakeDirectory{emails: map[string]string{"u1": "ada@school.edu"}}
	r := newRouter(profiles, dir)

	w := doResolve(r, `{"username":"ada","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assertCORS(t, w)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, map[string]any{"email": "ada@school.edu"}, out)
}

func TestPreflight(t *testing.T) {
	r := newRouter(&fakeProfiles{}, &fakeDirectory{})

	req := httptest.NewRequest(http.MethodOptions, "/resolve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assertCORS(t, w)
}

func TestRecoveryConvertsPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.Use(Recovery())
	r.POST("/boom", func(*gin.Context) {
		panic("elevated lookup misconfigured")
	})

	req := httptest.NewRequest(http.MethodPost, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "elevated lookup misconfigured", errorBody(t, w))
	assertCORS(t, w)
}
