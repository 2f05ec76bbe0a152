// Package business wires the gateway's components together and runs them.
package business

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	slogctx "github.com/veqryn/slog-context"

	"github.com/motorline/storefront-gateway/internal/adminproxy"
	"github.com/motorline/storefront-gateway/internal/business/server"
	"github.com/motorline/storefront-gateway/internal/config"
	"github.com/motorline/storefront-gateway/internal/session"
	"github.com/motorline/storefront-gateway/internal/upstream"
)

// Main starts the gateway HTTP server and blocks until ctx is done.
func Main(ctx context.Context, cfg *config.Config) error {
	baseURL, err := cfg.Upstream.ResolveBaseURL()
	if err != nil {
		return fmt.Errorf("resolving upstream base URL: %w", err)
	}

	slogctx.Info(ctx, "Resolved upstream base URL", "baseURL", baseURL)

	httpClient := &http.Client{Timeout: cfg.Upstream.RequestTimeout}
	client := upstream.NewClient(baseURL, httpClient)

	sessions := session.NewManager(&cfg.Gateway, client)

	// A missing service key is not fatal at startup: only the admin
	// passthrough needs it, and it answers with a fixed 500 until the key
	// is provided.
	serviceKey := loadServiceKey(ctx, cfg)

	verifier := adminproxy.NewVerifier(client, cfg.Gateway.WhoAmIEndpoints, cfg.Gateway.WhoAmICacheTTL)
	admin := adminproxy.NewProxy(client, verifier, serviceKey, cfg.Gateway.AdminCookieName)

	return server.StartHTTPServer(ctx, cfg, baseURL, sessions, admin)
}

func loadServiceKey(ctx context.Context, cfg *config.Config) string {
	key, err := commoncfg.LoadValueFromSourceRef(cfg.Gateway.AdminServiceKey)
	if err != nil || len(key) == 0 {
		slogctx.Warn(ctx, "Admin service key is not configured; admin passthrough is disabled")
		return ""
	}

	return string(key)
}
