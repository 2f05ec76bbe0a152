// Package session implements the credential lifecycle between the browser
// cookie jar and the upstream token endpoints: login, logout, and the
// transparent refresh-and-replay protocol used by every authenticated
// proxy operation.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/motorline/storefront-gateway/internal/config"
	"github.com/motorline/storefront-gateway/internal/credstore"
	"github.com/motorline/storefront-gateway/internal/serviceerr"
	"github.com/motorline/storefront-gateway/internal/upstream"
)

const (
	loginPath   = "/auth/login"
	refreshPath = "/auth/refresh"
	logoutPath  = "/auth/logout"
)

type Manager struct {
	client *upstream.Client

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(cfg *config.Gateway, client *upstream.Client) *Manager {
	return &Manager{
		client:     client,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}
}

// Login exchanges credentials for a token pair and stores both cookies.
// The upstream response body is returned verbatim so the browser sees the
// same user payload the upstream produced.
func (m *Manager) Login(ctx context.Context, store credstore.Store, username, password string) (*upstream.Response, error) {
	resp, err := m.client.CallJSON(ctx, http.MethodPost, loginPath, loginRequest{Username: username, Password: password}, upstream.None())
	if err != nil {
		return nil, fmt.Errorf("calling login: %w", err)
	}

	if !resp.OK() {
		return nil, serviceerr.Upstream(resp.Status, upstream.ErrorMessage(resp.Body))
	}

	var tokens tokenEnvelope
	if err := json.Unmarshal(resp.Body, &tokens); err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}

	m.storeTokens(store, tokens)
	slogctx.Info(ctx, "User logged in")

	return resp, nil
}

// Logout performs best-effort remote invalidation: the upstream logout call
// may fail or time out, but the local cookies are always cleared so the
// browser ends logged out regardless.
func (m *Manager) Logout(ctx context.Context, store credstore.Store) {
	creds := store.Read()
	if creds.Refresh != "" {
		_, err := m.client.CallJSON(ctx, http.MethodPost, logoutPath, refreshRequest{RefreshToken: creds.Refresh}, upstream.None())
		if err != nil {
			slogctx.Warn(ctx, "Remote logout failed, clearing local credentials anyway", "error", err)
		}
	}

	store.Clear(credstore.AccessCookieName)
	store.Clear(credstore.RefreshCookieName)
}

// Refresh exchanges the refresh credential for a new access token and
// updates the store. Exposed directly to the browser as the explicit
// refresh operation.
func (m *Manager) Refresh(ctx context.Context, store credstore.Store) (*upstream.Response, error) {
	creds := store.Read()
	if creds.Refresh == "" {
		return nil, serviceerr.ErrUnauthenticated
	}

	resp, _, err := m.tryRefresh(ctx, store, creds.Refresh)

	return resp, err
}

// Do runs one proxied upstream operation under the refresh protocol:
//
//  1. no credentials at all: 401, zero upstream calls
//  2. access token present: one call; 2xx and non-auth failures are
//     returned as-is
//  3. 401/403 (or no access token) with a refresh token present: one
//     refresh call, then exactly one replay of the original operation
//
// A failed refresh is terminal and never retried, and a failed replay
// never triggers a second refresh.
func (m *Manager) Do(ctx context.Context, store credstore.Store, method, path string, query url.Values, body []byte) (*upstream.Response, error) {
	creds := store.Read()
	if creds.Anonymous() {
		return nil, serviceerr.ErrUnauthenticated
	}

	if creds.Access != "" {
		resp, err := m.call(ctx, method, path, query, body, creds.Access)
		if err != nil {
			return nil, err
		}

		if !isAuthFailure(resp.Status) {
			return resp, nil
		}

		if creds.Refresh == "" {
			return nil, serviceerr.ErrUnauthenticated
		}
	}

	_, access, err := m.tryRefresh(ctx, store, creds.Refresh)
	if err != nil {
		return nil, err
	}

	slogctx.Debug(ctx, "Replaying request after token refresh", "method", method, "path", path)

	return m.call(ctx, method, path, query, body, access)
}

func (m *Manager) call(ctx context.Context, method, path string, query url.Values, body []byte, access string) (*upstream.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	resp, err := m.client.Call(ctx, method, path, query, reader, upstream.Bearer(access))
	if err != nil {
		return nil, fmt.Errorf("calling %s %s: %w", method, path, err)
	}

	return resp, nil
}

// tryRefresh performs the single refresh attempt. Any failure, including a
// 401/403 from the refresh endpoint itself, is terminal Unauthenticated;
// the stored cookies are deliberately left untouched so the browser may
// retry with the same refresh token until its TTL runs out.
func (m *Manager) tryRefresh(ctx context.Context, store credstore.Store, refreshToken string) (*upstream.Response, string, error) {
	resp, err := m.client.CallJSON(ctx, http.MethodPost, refreshPath, refreshRequest{RefreshToken: refreshToken}, upstream.None())
	if err != nil {
		slogctx.Warn(ctx, "Refresh call failed", "error", err)
		return nil, "", serviceerr.ErrUnauthenticated
	}

	if !resp.OK() {
		slogctx.Info(ctx, "Refresh rejected by upstream", "status", resp.Status)
		return nil, "", serviceerr.ErrUnauthenticated
	}

	var tokens tokenEnvelope
	if err := json.Unmarshal(resp.Body, &tokens); err != nil || tokens.AccessToken == "" {
		slogctx.Warn(ctx, "Refresh response could not be decoded")
		return nil, "", serviceerr.ErrUnauthenticated
	}

	// cookies must be written before the replayed call so a client
	// observing the response also observes the rotated credentials
	m.storeTokens(store, tokens)

	return resp, tokens.AccessToken, nil
}

func (m *Manager) storeTokens(store credstore.Store, tokens tokenEnvelope) {
	store.Write(credstore.AccessCookieName, tokens.AccessToken, accessTTL(tokens.AccessToken, m.accessTTL))
	if tokens.RefreshToken != "" {
		store.Write(credstore.RefreshCookieName, tokens.RefreshToken, m.refreshTTL)
	}
}

func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
