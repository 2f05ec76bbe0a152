package upstream

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// localRoundTripper is an http.RoundTripper that executes HTTP transactions
// by using handler directly, instead of going over an HTTP connection.
type localRoundTripper struct {
	handler http.Handler
}

func (l localRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	w := httptest.NewRecorder()
	l.handler.ServeHTTP(w, req)
	return w.Result(), nil
}

func newTestClient(handler http.Handler) *Client {
	return NewClient("https://backend.example.com", &http.Client{
		Transport: localRoundTripper{handler},
	})
}

func TestCall(t *testing.T) {
	tests := []struct {
		name       string
		auth       Auth
		wantHeader map[string]string
	}{
		{
			name: "bearer credential",
			auth: Bearer("tok123"),
			wantHeader: map[string]string{
				"Authorization": "Bearer tok123",
				"X-API-Token":   "",
			},
		}, {
			name: "service key sent in both header forms",
			auth: ServiceKey("svc456"),
			wantHeader: map[string]string{
				"Authorization": "ApiKey svc456",
				"X-API-Token":   "svc456",
			},
		}, {
			name: "unauthenticated",
			auth: None(),
			wantHeader: map[string]string{
				"Authorization": "",
				"X-API-Token":   "",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *http.Request
			client := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"ok":true}`))
			}))

			resp, err := client.Call(t.Context(), http.MethodGet, "/auth/admin/me", nil, nil, tt.auth)

			require.NoError(t, err)
			assert.True(t, resp.OK())
			assert.Equal(t, `{"ok":true}`, string(resp.Body))
			assert.Equal(t, "application/json", resp.ContentType)
			assert.Equal(t, "/api/auth/admin/me", got.URL.Path)
			assert.Equal(t, "no-store", got.Header.Get("Cache-Control"))
			for name, want := range tt.wantHeader {
				assert.Equal(t, want, got.Header.Get(name), name)
			}
		})
	}
}

func TestCallQueryAndBody(t *testing.T) {
	var got *http.Request
	var gotBody string
	client := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusCreated)
	}))

	query := url.Values{"populate": {"*"}, "sort": {"createdAt:desc"}}
	resp, err := client.Call(t.Context(), http.MethodPost, "/orders", query, strings.NewReader(`{"qty":2}`), ServiceKey("k"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "populate=%2A&sort=createdAt%3Adesc", got.URL.RawQuery)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, `{"qty":2}`, gotBody)
}

func TestCallDoesNotInterpretStatus(t *testing.T) {
	client := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"expired"}`))
	}))

	resp, err := client.Call(t.Context(), http.MethodGet, "/users/me", nil, nil, Bearer("stale"))

	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}

func TestBaseURLNormalisation(t *testing.T) {
	var gotPath string
	client := NewClient("https://backend.example.com/", &http.Client{
		Transport: localRoundTripper{http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
		})},
	})

	_, err := client.Call(t.Context(), http.MethodGet, "/cars", nil, nil, None())

	require.NoError(t, err)
	assert.Equal(t, "/api/cars", gotPath)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "flat shape", body: `{"message":"invalid credentials"}`, want: "invalid credentials"},
		{name: "nested shape", body: `{"error":{"message":"Forbidden","status":403}}`, want: "Forbidden"},
		{name: "empty body", body: ``, want: SafeErrorMessage},
		{name: "html error page", body: `<html>502</html>`, want: SafeErrorMessage},
		{name: "json without message", body: `{"code":9}`, want: SafeErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage([]byte(tt.body)))
		})
	}
}
