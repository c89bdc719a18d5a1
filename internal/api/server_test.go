// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umrunclub/clubsite/internal/config"
	"github.com/umrunclub/clubsite/internal/events"
	"github.com/umrunclub/clubsite/internal/model"
	"github.com/umrunclub/clubsite/internal/persistence/sqlite"
	"github.com/umrunclub/clubsite/internal/registration"
	"github.com/umrunclub/clubsite/internal/routes"
	"github.com/umrunclub/clubsite/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	contentStore := store.NewFileStore(filepath.Join(dir, "data"))

	db, err := sqlite.Open(filepath.Join(dir, "registrations.db"), sqlite.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	regRepo, err := registration.NewRepository(db)
	require.NoError(t, err)

	cfg := config.AppConfig{AdminPassword: "test-secret"}
	s := New(cfg, routes.NewRepository(contentStore), events.NewRepository(contentStore), regRepo)

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRouteLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// Create.
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/routes", map[string]any{
		"name":          "Campus Loop",
		"description":   "Loop around campus",
		"distance":      "3.0 miles",
		"difficulty":    "Easy",
		"estimatedTime": "30 minutes",
		"points":        []map[string]any{{"lat": 42.28, "lng": -83.74, "name": "Start"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[map[string]any](t, resp)
	assert.Equal(t, float64(1), created["id"])

	// Second create gets id 2.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/routes", map[string]any{
		"name": "Arb Hills", "distance": "4.5 miles", "difficulty": "Hard",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created = decodeBody[map[string]any](t, resp)
	assert.Equal(t, float64(2), created["id"])

	// Flag the second as upcoming.
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/routes?id=2&action=set-upcoming", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/upcoming-route")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	upcoming := decodeBody[model.Route](t, resp)
	assert.Equal(t, 2, upcoming.ID)
	assert.Equal(t, "Arb Hills", upcoming.Name)

	// Partial update touches only the patched field.
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/routes?id=1", map[string]any{"distance": "5.0 miles"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/routes")
	require.NoError(t, err)
	listed := decodeBody[[]model.Route](t, resp)
	require.Len(t, listed, 2)
	for _, route := range listed {
		if route.ID == 1 {
			assert.Equal(t, "5.0 miles", route.Distance)
			assert.Equal(t, "Campus Loop", route.Name)
			assert.False(t, route.IsUpcoming)
		}
	}

	// Delete, then the id is gone.
	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/routes?id=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/routes?id=1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestSetUpcomingUnknownRouteIs404(t *testing.T) {
	ts := newTestServer(t)
	resp := doJSON(t, http.MethodPut, ts.URL+"/api/routes?id=99&action=set-upcoming", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestAddRouteValidation(t *testing.T) {
	ts := newTestServer(t)
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/routes", map[string]any{
		"name": "", "distance": "", "difficulty": "Impossible",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody[map[string]any](t, resp)
	assert.NotEmpty(t, body["errors"])
}

func TestUpcomingRouteFallback(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/upcoming-route")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	route := decodeBody[model.Route](t, resp)
	assert.Equal(t, "Campus Loop", route.Name)
	assert.True(t, route.IsUpcoming)
}

func TestEventEndpoints(t *testing.T) {
	ts := newTestServer(t)

	// Missing fields are rejected.
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/events", map[string]any{"title": "Lonely"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/events", map[string]any{
		"badge": "WEEKLY", "title": "Track Tuesday", "description": "Intervals",
		"date": "Every Tuesday, 6:00 PM", "location": "Ferry Field", "sortOrder": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/events", map[string]any{
		"badge": "SPECIAL", "title": "Hidden", "description": "x",
		"date": "TBD", "location": "TBD", "isActive": false, "sortOrder": 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// Public listing excludes the inactive event.
	resp, err := http.Get(ts.URL + "/api/events")
	require.NoError(t, err)
	active := decodeBody[[]model.Event](t, resp)
	require.Len(t, active, 1)
	assert.Equal(t, "Track Tuesday", active[0].Title)

	// Admin listing sees both.
	resp, err = http.Get(ts.URL + "/api/events?all=1")
	require.NoError(t, err)
	all := decodeBody[[]model.Event](t, resp)
	assert.Len(t, all, 2)

	// Unknown id on update is 404.
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/events?id=42", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func validRegistrationBody() map[string]any {
	return map[string]any{
		"firstName":         "Jordan",
		"lastName":          "Taylor",
		"email":             "jordan@umich.edu",
		"phone":             "734-555-0100",
		"isUMUndergrad":     true,
		"grade":             "sophomore",
		"major":             "Kinesiology",
		"runningExperience": "2 years",
		"fitnessLevel":      "intermediate",
		"emergencyContact":  "Sam Taylor",
		"emergencyPhone":    "734-555-0101",
		"availability":      []string{"Wednesday"},
	}
}

func TestRegisterFlow(t *testing.T) {
	ts := newTestServer(t)

	// Non-umich email is rejected.
	bad := validRegistrationBody()
	bad["email"] = "jordan@example.com"
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/register", bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/register", validRegistrationBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody[map[string]any](t, resp)
	assert.Equal(t, true, body["success"])

	// Duplicate email conflicts and leaves the collection unchanged.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/register", validRegistrationBody())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth", map[string]string{"password": "test-secret"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestExportCSV(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/register", validRegistrationBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/export")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "registrations.csv")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "jordan@umich.edu")
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}
