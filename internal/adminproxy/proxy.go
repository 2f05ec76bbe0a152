package adminproxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	slogctx "github.com/veqryn/slog-context"

	"github.com/motorline/storefront-gateway/internal/serviceerr"
	"github.com/motorline/storefront-gateway/internal/upstream"
)

// deniedHeaders never pass from the upstream back to the browser.
var deniedHeaders = map[string]struct{}{
	"Set-Cookie":        {},
	"Content-Encoding":  {},
	"Transfer-Encoding": {},
}

// Proxy forwards privileged resource operations with the static service
// credential after the caller's admin session has been verified.
type Proxy struct {
	client          *upstream.Client
	verifier        *Verifier
	serviceKey      string
	adminCookieName string
}

func NewProxy(client *upstream.Client, verifier *Verifier, serviceKey, adminCookieName string) *Proxy {
	return &Proxy{
		client:          client,
		verifier:        verifier,
		serviceKey:      serviceKey,
		adminCookieName: adminCookieName,
	}
}

// Authorize resolves and verifies the caller's admin session. The service
// credential is never consulted before this passes.
func (p *Proxy) Authorize(ctx context.Context, r *http.Request) error {
	token := BearerToken(r, p.adminCookieName)
	if token == "" {
		return serviceerr.ErrUnauthenticated
	}

	if !p.verifier.Verify(ctx, token) {
		slogctx.Info(ctx, "Admin session rejected by all whoami endpoints")
		return serviceerr.ErrUnauthenticated
	}

	return nil
}

// Forward issues the privileged upstream call. Callers must have passed
// Authorize first.
func (p *Proxy) Forward(ctx context.Context, method, path string, query url.Values, body io.Reader) (*upstream.Response, error) {
	if p.serviceKey == "" {
		return nil, serviceerr.ErrMisconfigured
	}

	resp, err := p.client.Call(ctx, method, path, query, body, upstream.ServiceKey(p.serviceKey))
	if err != nil {
		return nil, fmt.Errorf("forwarding admin request: %w", err)
	}

	return resp, nil
}

// CopyHeaders writes the upstream response headers onto dst, dropping the
// deny-listed ones and forcing non-caching semantics.
func CopyHeaders(dst http.Header, src http.Header) {
	for name, values := range src {
		if _, denied := deniedHeaders[http.CanonicalHeaderKey(name)]; denied {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}

	dst.Set("Cache-Control", "no-store")
}

// ResolvePartPath maps an inbound parts operation onto the upstream path
// shape. Mutation verbs may address the part either by opaque id (the path
// suffix) or by its article number (the natural key, supplied as a query
// parameter); list requests ignore both and keep the query string as-is.
func ResolvePartPath(method, suffix string, query url.Values) (string, url.Values) {
	const base = "/parts"

	switch method {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		if article := query.Get("articleNumber"); article != "" {
			rest := cloneValues(query)
			rest.Del("articleNumber")
			return base + "/article/" + url.PathEscape(article), rest
		}
	}

	if suffix != "" {
		return base + "/" + suffix, query
	}

	return base, query
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for name, values := range v {
		out[name] = append([]string(nil), values...)
	}
	return out
}
