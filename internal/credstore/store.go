// Package credstore holds the per-request credential storage: the browser
// cookie jar, surfaced to handlers as an explicit Store so there is no
// ambient cookie access anywhere else in the gateway.
package credstore

import (
	"net/http"
	"time"

	"github.com/motorline/storefront-gateway/internal/config"
)

const (
	AccessCookieName  = "sf_access"
	RefreshCookieName = "sf_refresh"
)

// Credentials is whatever the browser currently holds. The zero value
// means anonymous.
type Credentials struct {
	Access  string
	Refresh string
}

func (c Credentials) Anonymous() bool {
	return c.Access == "" && c.Refresh == ""
}

// Store reads and writes credentials scoped to a single request. Writes
// never contact the upstream.
type Store interface {
	Read() Credentials
	Write(name, value string, ttl time.Duration)
	Clear(name string)
}

// CookieStore implements Store over the inbound request's cookies and the
// outbound response headers. One instance per request.
type CookieStore struct {
	r *http.Request
	w http.ResponseWriter

	access  config.CookieTemplate
	refresh config.CookieTemplate
	secure  bool
}

// NewCookieStore builds a per-request store. The templates carry
// name/path/same-site policy; secure is the already-resolved secure-cookie
// rule from config.
func NewCookieStore(w http.ResponseWriter, r *http.Request, gw *config.Gateway, secure bool) *CookieStore {
	access := gw.AccessCookieTemplate
	if access.Name == "" {
		access.Name = AccessCookieName
	}
	refresh := gw.RefreshCookieTemplate
	if refresh.Name == "" {
		refresh.Name = RefreshCookieName
	}

	return &CookieStore{
		r:       r,
		w:       w,
		access:  access,
		refresh: refresh,
		secure:  secure,
	}
}

func (s *CookieStore) AccessName() string  { return s.access.Name }
func (s *CookieStore) RefreshName() string { return s.refresh.Name }

func (s *CookieStore) Read() Credentials {
	var creds Credentials
	if c, err := s.r.Cookie(s.access.Name); err == nil {
		creds.Access = c.Value
	}
	if c, err := s.r.Cookie(s.refresh.Name); err == nil {
		creds.Refresh = c.Value
	}

	return creds
}

func (s *CookieStore) Write(name, value string, ttl time.Duration) {
	template := s.templateFor(name)
	template.MaxAge = int(ttl / time.Second)
	template.Secure = s.secure
	template.HTTPOnly = true
	if template.Path == "" {
		template.Path = "/"
	}
	if template.SameSite == "" {
		template.SameSite = config.CookieSameSiteLax
	}

	http.SetCookie(s.w, template.ToCookie(value))
}

// Clear writes an empty value with immediate expiry.
func (s *CookieStore) Clear(name string) {
	template := s.templateFor(name)
	template.MaxAge = -1
	template.Secure = s.secure
	template.HTTPOnly = true
	if template.Path == "" {
		template.Path = "/"
	}

	http.SetCookie(s.w, template.ToCookie(""))
}

func (s *CookieStore) templateFor(name string) config.CookieTemplate {
	switch name {
	case s.refresh.Name:
		return s.refresh
	case s.access.Name:
		return s.access
	}

	// unknown name still gets the access template's policy
	template := s.access
	template.Name = name

	return template
}
