package mockservice

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	store, err := OpenStore(context.Background(), filepath.Join(t.TempDir(), "backend", "database.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := New(store)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, ts
}

func doJSON(t *testing.T, method, url, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func login(t *testing.T, baseURL string) string {
	t.Helper()
	status, out := doJSON(t, http.MethodPost, baseURL+"/api/auth/login", "", map[string]string{
		"email":    AdminEmail,
		"password": AdminPassword,
	})
	require.Equal(t, http.StatusOK, status)
	return out["token"].(string)
}

func TestLogin(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantKey    string
	}{
		{"valid", map[string]string{"email": AdminEmail, "password": AdminPassword}, http.StatusOK, "token"},
		{"wrong password", map[string]string{"email": AdminEmail, "password": "nope"}, http.StatusUnauthorized, "message"},
		{"unknown user", map[string]string{"email": "who@example.com", "password": "x"}, http.StatusUnauthorized, "message"},
		{"missing password", map[string]string{"email": AdminEmail}, http.StatusBadRequest, "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, out, tt.wantKey)
		})
	}
}

func TestLogin_ReturnsUser(t *testing.T) {
	_, ts := newTestServer(t)

	_, out := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email": AdminEmail, "password": AdminPassword,
	})
	user := out["user"].(map[string]any)
	assert.Equal(t, AdminName, user["name"])
	assert.Equal(t, "admin", user["role"])
	assert.NotContains(t, user, "password")
}

func TestAuthRequired(t *testing.T) {
	_, ts := newTestServer(t)

	status, _ := doJSON(t, http.MethodGet, ts.URL+"/api/prompts/x", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, http.MethodGet, ts.URL+"/api/prompts/x", "not-a-token", nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestPromptLifecycle(t *testing.T) {
	_, ts := newTestServer(t)
	token := login(t, ts.URL)

	status, out := doJSON(t, http.MethodPost, ts.URL+"/api/prompts", token, map[string]any{
		"id":              "prompt-abc",
		"title":           "Admin Test Prompt",
		"description":     "first",
		"text":            "Admin test.",
		"category":        "Admin",
		"tags":            []string{"admin-test"},
		"author":          "Admin",
		"isPublic":        true,
		"isRecommended":   false,
		"createdAt":       1752567360,
		"supportedInputs": []string{},
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "prompt-abc", out["id"], "caller id is kept")

	status, got := doJSON(t, http.MethodGet, ts.URL+"/api/prompts/prompt-abc", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "first", got["description"])
	assert.Equal(t, []any{"admin-test"}, got["tags"])
	assert.Equal(t, []any{}, got["supportedInputs"])
	assert.Equal(t, float64(1), got["isPublic"])
	assert.Equal(t, float64(0), got["isRecommended"])
	assert.Equal(t, float64(1752567360), got["createdAt"])

	// Write back what was read, as clients do, with integer flags.
	got["description"] = "second"
	got["author"] = "someone else"
	status, _ = doJSON(t, http.MethodPut, ts.URL+"/api/prompts/prompt-abc", token, got)
	require.Equal(t, http.StatusOK, status)

	_, after := doJSON(t, http.MethodGet, ts.URL+"/api/prompts/prompt-abc", token, nil)
	assert.Equal(t, "second", after["description"])
	assert.Equal(t, float64(1), after["isPublic"])
	assert.Equal(t, "Admin", after["author"], "author is not editable")
}

func TestGetPrompt_NotFound(t *testing.T) {
	_, ts := newTestServer(t)
	token := login(t, ts.URL)

	status, out := doJSON(t, http.MethodGet, ts.URL+"/api/prompts/prompt-missing", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Prompt not found", out["message"])
}

func TestCreatePrompt_GeneratesIDWhenAbsent(t *testing.T) {
	_, ts := newTestServer(t)
	token := login(t, ts.URL)

	status, out := doJSON(t, http.MethodPost, ts.URL+"/api/prompts", token, map[string]any{
		"title": "t", "description": "d", "text": "x", "category": "c", "isPublic": 1,
	})
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, out["id"])
}

func TestRequestsAreRecorded(t *testing.T) {
	srv, ts := newTestServer(t)
	token := login(t, ts.URL)

	doJSON(t, http.MethodGet, ts.URL+"/api/prompts/p1", token, nil)

	assert.Equal(t, 1, srv.CountRequests(http.MethodPost, "/api/auth/login"))
	assert.Equal(t, 1, srv.CountRequests(http.MethodGet, "/api/prompts/p1"))
	assert.Zero(t, srv.CountRequests(http.MethodPut, "/api/prompts/p1"))
	assert.Len(t, srv.Requests(), 2)
}

func TestFlag_UnmarshalJSON(t *testing.T) {
	for raw, want := range map[string]Flag{
		`true`:  true,
		`false`: false,
		`1`:     true,
		`0`:     false,
		`null`:  false,
	} {
		var f Flag
		require.NoError(t, json.Unmarshal([]byte(raw), &f), raw)
		assert.Equal(t, want, f, raw)
	}
}
