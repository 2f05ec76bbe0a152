package credstore

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorline/storefront-gateway/internal/config"
)

func newTestStore(t *testing.T, cookies ...*http.Cookie) (*CookieStore, *httptest.ResponseRecorder) {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()

	return NewCookieStore(w, r, &config.Gateway{}, true), w
}

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		cookies []*http.Cookie
		want    Credentials
	}{
		{
			name: "anonymous",
			want: Credentials{},
		}, {
			name: "access only",
			cookies: []*http.Cookie{
				{Name: AccessCookieName, Value: "acc"},
			},
			want: Credentials{Access: "acc"},
		}, {
			name: "both tokens",
			cookies: []*http.Cookie{
				{Name: AccessCookieName, Value: "acc"},
				{Name: RefreshCookieName, Value: "ref"},
			},
			want: Credentials{Access: "acc", Refresh: "ref"},
		}, {
			name: "unrelated cookies ignored",
			cookies: []*http.Cookie{
				{Name: "cart", Value: "abc"},
			},
			want: Credentials{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestStore(t, tt.cookies...)

			got := store.Read()

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == Credentials{}, got.Anonymous())
		})
	}
}

func TestWrite(t *testing.T) {
	store, w := newTestStore(t)

	store.Write(AccessCookieName, "tok", 15*time.Minute)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, AccessCookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, 900, c.MaxAge)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestWriteInsecureWhenRuleDisabled(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	store := NewCookieStore(w, r, &config.Gateway{}, false)

	store.Write(RefreshCookieName, "ref", 7*24*time.Hour)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.False(t, cookies[0].Secure)
	assert.True(t, cookies[0].HttpOnly)
}

func TestClear(t *testing.T) {
	store, w := newTestStore(t)

	store.Clear(AccessCookieName)
	store.Clear(RefreshCookieName)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
		assert.True(t, c.HttpOnly)
	}
}

func TestTemplateNamesFromConfig(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "shop_at", Value: "acc"})
	w := httptest.NewRecorder()

	gw := &config.Gateway{
		AccessCookieTemplate:  config.CookieTemplate{Name: "shop_at"},
		RefreshCookieTemplate: config.CookieTemplate{Name: "shop_rt", SameSite: config.CookieSameSiteStrict},
	}
	store := NewCookieStore(w, r, gw, true)

	assert.Equal(t, "shop_at", store.AccessName())
	assert.Equal(t, "shop_rt", store.RefreshName())
	assert.Equal(t, Credentials{Access: "acc"}, store.Read())

	store.Write("shop_rt", "ref", time.Hour)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
}
