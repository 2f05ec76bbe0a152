package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		env     map[string]string
		want    string
		wantErr error
	}{
		{
			name:    "configured value",
			baseURL: "https://api.example.com",
			want:    "https://api.example.com",
		}, {
			name:    "trailing api segment stripped",
			baseURL: "https://api.example.com/api",
			want:    "https://api.example.com",
		}, {
			name:    "trailing slash stripped",
			baseURL: "https://api.example.com/api/",
			want:    "https://api.example.com",
		}, {
			name: "primary env var",
			env:  map[string]string{"UPSTREAM_API_URL": "https://one.example.com/api"},
			want: "https://one.example.com",
		}, {
			name: "fallback env var",
			env:  map[string]string{"API_URL": "https://two.example.com"},
			want: "https://two.example.com",
		}, {
			name: "first non-empty wins",
			env: map[string]string{
				"UPSTREAM_API_URL": "https://one.example.com",
				"API_URL":          "https://two.example.com",
			},
			want: "https://one.example.com",
		}, {
			name:    "nothing configured",
			wantErr: ErrNoUpstreamBaseURL,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("UPSTREAM_API_URL", "")
			t.Setenv("API_URL", "")
			for name, value := range tt.env {
				t.Setenv(name, value)
			}

			upstream := Upstream{BaseURL: tt.baseURL}

			got, err := upstream.ResolveBaseURL()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSecureCookiesEnabled(t *testing.T) {
	tests := []struct {
		name       string
		mode       SecureCookieMode
		production bool
		baseURL    string
		want       bool
	}{
		{name: "auto production https", mode: SecureCookieAuto, production: true, baseURL: "https://api.example.com", want: true},
		{name: "auto production plain http", mode: SecureCookieAuto, production: true, baseURL: "http://api.internal:1337", want: false},
		{name: "auto development https", mode: SecureCookieAuto, production: false, baseURL: "https://api.example.com", want: false},
		{name: "always overrides", mode: SecureCookieAlways, production: false, baseURL: "http://localhost:1337", want: true},
		{name: "never overrides", mode: SecureCookieNever, production: true, baseURL: "https://api.example.com", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := Gateway{SecureCookies: tt.mode, Production: tt.production}
			assert.Equal(t, tt.want, gw.SecureCookiesEnabled(tt.baseURL))
		})
	}
}
