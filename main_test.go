// main_test.go
//
// Smoke tests: chi wiring via httptest.NewServer with in-memory mocks.
// Catches middleware ordering and route grouping that httptest.NewRecorder
// cannot exercise.
package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ddanglyx/finalweb/internal/api"
	"github.com/ddanglyx/finalweb/internal/cache"
	"github.com/ddanglyx/finalweb/internal/config"
	"github.com/ddanglyx/finalweb/internal/ratelimit"
	"github.com/ddanglyx/finalweb/internal/testutil"
)

// smokeConfig returns the minimal config buildRouter needs.
func smokeConfig() *config.Config {
	return &config.Config{
		CORSOrigins:    []string{"http://localhost:3000"},
		RequestTimeout: 30 * time.Second,
	}
}

// smokeServer starts a full router over mocks. The rate limiter is a real
// Limiter over the in-memory counter store, so quota behaviour is genuine.
func smokeServer(t *testing.T, ms *testutil.MockStore, ceiling int) *httptest.Server {
	t.Helper()
	h := &api.Handler{
		DB: ms,
		RL: ratelimit.New(ratelimit.NewMemoryCounterStore(), ceiling, time.Minute),
		TV: testutil.NewMockVerifier(map[string]string{
			"user-token":  "uid-1",
			"admin-token": "uid-admin",
		}),
		Cache: cache.NewSearchCache(200, 30*time.Second),
	}
	srv := httptest.NewServer(buildRouter(h, smokeConfig()))
	t.Cleanup(srv.Close)
	return srv
}

// doJSON issues a request with optional bearer token and JSON body.
func doJSON(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rdr)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSmokeHealth(t *testing.T) {
	srv := smokeServer(t, testutil.NewMockStore(), 60)

	resp := doJSON(t, http.MethodGet, srv.URL+"/health", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"status":"ok"}` {
		t.Errorf("body: expected ok status, got %s", body)
	}
}

func TestSmokeAuthRequired(t *testing.T) {
	srv := smokeServer(t, testutil.NewMockStore(), 60)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/messages"},
		{http.MethodPost, "/messages"},
		{http.MethodPatch, "/messages/some-id"},
		{http.MethodDelete, "/messages/some-id"},
		{http.MethodGet, "/guitars/search?name=x"},
		{http.MethodGet, "/admin/messages"},
	} {
		resp := doJSON(t, route.method, srv.URL+route.path, "", "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without token, got %d", route.method, route.path, resp.StatusCode)
		}
	}
}

func TestSmokeMessageRoundTrip(t *testing.T) {
	ms := testutil.NewMockStore()
	srv := smokeServer(t, ms, 60)

	// Create
	resp := doJSON(t, http.MethodPost, srv.URL+"/messages", "user-token",
		`{"name":"Sam","email":"sam@example.com","message":"hello"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}

	// List shows it
	resp = doJSON(t, http.MethodGet, srv.URL+"/messages", "user-token", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	var listed struct {
		Items []struct {
			ID      string `json:"id"`
			Message string `json:"message"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	if len(listed.Items) != 1 || listed.Items[0].ID != created.ID {
		t.Fatalf("list: expected the created message, got %+v", listed.Items)
	}

	// Patch
	resp = doJSON(t, http.MethodPatch, srv.URL+"/messages/"+created.ID, "user-token",
		`{"message":"edited"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}

	// Delete
	resp = doJSON(t, http.MethodDelete, srv.URL+"/messages/"+created.ID, "user-token", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}

	// Gone now
	resp = doJSON(t, http.MethodDelete, srv.URL+"/messages/"+created.ID, "user-token", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestSmokeRateLimit(t *testing.T) {
	// Ceiling of 2 so the third request in the bucket trips the limiter.
	srv := smokeServer(t, testutil.NewMockStore(), 2)

	for i := 0; i < 2; i++ {
		resp := doJSON(t, http.MethodGet, srv.URL+"/messages", "user-token", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, resp.StatusCode)
		}
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/messages", "user-token", "")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 past the ceiling, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Too many requests") {
		t.Errorf("body: expected quota message, got %s", body)
	}

	// A different subject still has quota.
	resp = doJSON(t, http.MethodGet, srv.URL+"/messages", "admin-token", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("other subject: expected 200, got %d", resp.StatusCode)
	}
}

func TestSmokeAdminGate(t *testing.T) {
	ms := testutil.NewMockStore()
	ms.Roles["uid-admin"] = "admin"
	srv := smokeServer(t, ms, 60)

	resp := doJSON(t, http.MethodGet, srv.URL+"/admin/messages", "user-token", "")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("user on admin route: expected 403, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/admin/messages", "admin-token", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("admin on admin route: expected 200, got %d", resp.StatusCode)
	}
}
