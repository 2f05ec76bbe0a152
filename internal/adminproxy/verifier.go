// Package adminproxy implements the session-independent trust path for
// bulk administrative resource access: the caller proves it holds a valid
// admin session, then the gateway forwards the operation with the static
// service credential the browser never sees.
package adminproxy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	slogctx "github.com/veqryn/slog-context"

	"github.com/motorline/storefront-gateway/internal/upstream"
)

// defaultWhoAmIEndpoints are consulted in order when the config does not
// name its own list.
var defaultWhoAmIEndpoints = []string{"/auth/admin/me", "/users/me"}

// Verifier confirms that a bearer token belongs to a live admin session by
// asking the upstream's "who am I" endpoints. Positive answers are cached
// briefly so bursts of admin traffic do not hammer the upstream.
type Verifier struct {
	client    *upstream.Client
	endpoints []string
	cache     *gocache.Cache
}

func NewVerifier(client *upstream.Client, endpoints []string, cacheTTL time.Duration) *Verifier {
	if len(endpoints) == 0 {
		endpoints = defaultWhoAmIEndpoints
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	return &Verifier{
		client:    client,
		endpoints: endpoints,
		cache:     gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// BearerToken resolves the admin session token from the dedicated admin
// cookie or, failing that, from the Authorization header. Empty string
// means no session material at all.
func BearerToken(r *http.Request, adminCookieName string) string {
	if adminCookieName != "" {
		if c, err := r.Cookie(adminCookieName); err == nil && c.Value != "" {
			return c.Value
		}
	}

	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}

	return ""
}

// Verify returns true when at least one whoami endpoint accepts the token.
// All endpoints are exhausted before declaring failure; transport errors on
// one endpoint do not short-circuit the rest.
func (v *Verifier) Verify(ctx context.Context, token string) bool {
	key := cacheKey(token)
	if _, ok := v.cache.Get(key); ok {
		return true
	}

	for _, endpoint := range v.endpoints {
		resp, err := v.client.Call(ctx, http.MethodGet, endpoint, nil, nil, upstream.Bearer(token))
		if err != nil {
			slogctx.Warn(ctx, "Admin session check failed", "endpoint", endpoint, "error", err)
			continue
		}

		if resp.OK() {
			v.cache.SetDefault(key, true)
			return true
		}
	}

	return false
}

// Only a hash of the token ever lands in the cache.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
