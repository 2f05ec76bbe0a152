package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	slogctx "github.com/veqryn/slog-context"

	"github.com/motorline/storefront-gateway/internal/adminproxy"
	"github.com/motorline/storefront-gateway/internal/config"
	"github.com/motorline/storefront-gateway/internal/credstore"
	"github.com/motorline/storefront-gateway/internal/middleware/requestid"
	"github.com/motorline/storefront-gateway/internal/serviceerr"
	"github.com/motorline/storefront-gateway/internal/session"
	"github.com/motorline/storefront-gateway/internal/upstream"
)

// bodyLimit bounds inbound request bodies; the upstream accepts nothing
// anywhere near this large.
const bodyLimit = 1 << 20

// adminResources is the allow-list for the service-key passthrough.
var adminResources = map[string]bool{
	"cars":   true,
	"orders": true,
	"parts":  true,
}

// gatewayServer holds the boundary handlers: every exported route is a
// thin shaping layer over the session manager or the admin proxy.
type gatewayServer struct {
	gateway       *config.Gateway
	sessions      *session.Manager
	admin         *adminproxy.Proxy
	secureCookies bool
}

func newGatewayServer(cfg *config.Config, upstreamBaseURL string, sessions *session.Manager, admin *adminproxy.Proxy) *gatewayServer {
	return &gatewayServer{
		gateway:       &cfg.Gateway,
		sessions:      sessions,
		admin:         admin,
		secureCookies: cfg.Gateway.SecureCookiesEnabled(upstreamBaseURL),
	}
}

func (s *gatewayServer) routes(cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(newMetricsMiddleware(cfg))

	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/auth/logout", s.handleLogout)
	r.Post("/api/auth/refresh", s.handleRefresh)
	r.Get("/api/auth/me", s.handleMe)
	r.Patch("/api/users/{id}", s.handleUserPatch)

	r.HandleFunc("/api/admin/{resource}", s.handleAdmin)
	r.HandleFunc("/api/admin/{resource}/*", s.handleAdmin)

	return r
}

func (s *gatewayServer) store(w http.ResponseWriter, r *http.Request) credstore.Store {
	return credstore.NewCookieStore(w, r, s.gateway, s.secureCookies)
}

func (s *gatewayServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, bodyLimit)).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.sessions.Login(ctx, s.store(w, r), body.Username, body.Password)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeUpstream(w, resp)
}

func (s *gatewayServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(r.Context(), s.store(w, r))
	writeMessage(w, http.StatusOK, "logged out")
}

func (s *gatewayServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := s.sessions.Refresh(ctx, s.store(w, r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeUpstream(w, resp)
}

func (s *gatewayServer) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := s.sessions.Do(ctx, s.store(w, r), http.MethodGet, "/auth/admin/me", nil, nil)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeUpstream(w, resp)
}

func (s *gatewayServer) handleUserPatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, bodyLimit))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	path := "/users/" + chi.URLParam(r, "id")
	resp, err := s.sessions.Do(ctx, s.store(w, r), http.MethodPatch, path, nil, body)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeUpstream(w, resp)
}

func (s *gatewayServer) handleAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resource := chi.URLParam(r, "resource")
	if !adminResources[resource] {
		writeMessage(w, http.StatusNotFound, "unknown resource")
		return
	}

	if err := s.admin.Authorize(ctx, r); err != nil {
		writeError(ctx, w, err)
		return
	}

	suffix := chi.URLParam(r, "*")
	query := r.URL.Query()

	var path string
	if resource == "parts" {
		path, query = adminproxy.ResolvePartPath(r.Method, suffix, query)
	} else {
		path = "/" + resource
		if suffix != "" {
			path += "/" + suffix
		}
	}

	var body io.Reader
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		body = io.LimitReader(r.Body, bodyLimit)
	}

	resp, err := s.admin.Forward(ctx, r.Method, path, query, body)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	slogctx.Debug(ctx, "Forwarded admin request", "resource", resource, "status", resp.Status)

	adminproxy.CopyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

// writeUpstream passes an upstream reply through unchanged, apart from
// forcing non-caching semantics on everything this gateway serves. Non-2xx
// bodies are passed through too: they carry the upstream's own {message}
// payload.
func writeUpstream(w http.ResponseWriter, resp *upstream.Response) {
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	serr := serviceerr.AsError(err)
	if serr.Code != serviceerr.CodeUnauthenticated {
		slogctx.Error(ctx, "Request failed", "error", err)
	}

	writeMessage(w, serr.HTTPStatus(), serr.Message)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
