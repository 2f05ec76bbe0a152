// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	HTTP     HTTPServer `yaml:"http"`
	Upstream Upstream   `yaml:"upstream"`
	Gateway  Gateway    `yaml:"gateway"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
}

// Upstream locates the backend commerce API. BaseURL may be left empty in
// the config file, in which case it is resolved from the environment at
// load time (see ResolveBaseURL).
type Upstream struct {
	BaseURL        string        `yaml:"baseURL"`
	RequestTimeout time.Duration `yaml:"requestTimeout" default:"30s"`
}

// SecureCookieMode controls the Secure attribute on the credential cookies.
type SecureCookieMode string

const (
	// SecureCookieAuto marks cookies Secure when running in production
	// against an https upstream.
	SecureCookieAuto   SecureCookieMode = "auto"
	SecureCookieAlways SecureCookieMode = "always"
	SecureCookieNever  SecureCookieMode = "never"
)

type Gateway struct {
	Production bool `yaml:"production"`

	AccessTTL  time.Duration `yaml:"accessTTL" default:"15m"`
	RefreshTTL time.Duration `yaml:"refreshTTL" default:"168h"`

	AccessCookieTemplate  CookieTemplate `yaml:"accessCookieTemplate"`
	RefreshCookieTemplate CookieTemplate `yaml:"refreshCookieTemplate"`
	AdminCookieName       string         `yaml:"adminCookieName" default:"sf_admin"`

	SecureCookies SecureCookieMode `yaml:"secureCookies" default:"auto"`

	AdminServiceKey commoncfg.SourceRef `yaml:"adminServiceKey"`

	// WhoAmIEndpoints are tried in order when verifying an admin session;
	// the first 2xx response wins.
	WhoAmIEndpoints []string      `yaml:"whoAmIEndpoints"`
	WhoAmICacheTTL  time.Duration `yaml:"whoAmICacheTTL" default:"30s"`
}

// SecureCookiesEnabled applies the secure-cookie rule: secure by default in
// production when the upstream is reachable over https, unless forced.
func (g *Gateway) SecureCookiesEnabled(upstreamBaseURL string) bool {
	switch g.SecureCookies {
	case SecureCookieAlways:
		return true
	case SecureCookieNever:
		return false
	}

	return g.Production && isHTTPS(upstreamBaseURL)
}
