package session

import (
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, expiry time.Time) string {
	t.Helper()

	key := []byte("0123456789abcdef0123456789abcdef")
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: key}, nil)
	require.NoError(t, err)

	raw, err := jwt.Signed(signer).Claims(jwt.Claims{
		Subject: "42",
		Expiry:  jwt.NewNumericDate(expiry),
	}).Serialize()
	require.NoError(t, err)

	return raw
}

func TestAccessTTL(t *testing.T) {
	const configured = 15 * time.Minute

	t.Run("opaque token keeps configured TTL", func(t *testing.T) {
		assert.Equal(t, configured, accessTTL("not-a-jwt", configured))
	})

	t.Run("JWT expiring sooner bounds the TTL", func(t *testing.T) {
		token := signToken(t, time.Now().Add(5*time.Minute))

		got := accessTTL(token, configured)

		assert.Greater(t, got, 4*time.Minute)
		assert.LessOrEqual(t, got, 5*time.Minute)
	})

	t.Run("JWT expiring later never extends the TTL", func(t *testing.T) {
		token := signToken(t, time.Now().Add(24*time.Hour))
		assert.Equal(t, configured, accessTTL(token, configured))
	})

	t.Run("already expired JWT keeps configured TTL", func(t *testing.T) {
		token := signToken(t, time.Now().Add(-time.Minute))
		assert.Equal(t, configured, accessTTL(token, configured))
	})
}
