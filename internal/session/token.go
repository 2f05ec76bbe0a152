package session

import (
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// Signature algorithms the upstream is known to issue. Only needed to get
// past parsing; the claims are never trusted for authorization.
var acceptedSigAlgs = []jose.SignatureAlgorithm{
	jose.HS256, jose.HS384, jose.HS512,
	jose.RS256, jose.RS384, jose.RS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.EdDSA,
}

// accessTTL bounds the access cookie lifetime by the token's own expiry
// when the token happens to be a JWT. The cookie never outlives the token,
// and never outlives the configured TTL either. Opaque tokens fall back to
// the configured TTL unchanged.
func accessTTL(token string, configured time.Duration) time.Duration {
	parsed, err := jwt.ParseSigned(token, acceptedSigAlgs)
	if err != nil {
		return configured
	}

	var claims jwt.Claims
	if err := parsed.UnsafeClaimsWithoutVerification(&claims); err != nil || claims.Expiry == nil {
		return configured
	}

	until := time.Until(claims.Expiry.Time())
	if until <= 0 || until >= configured {
		return configured
	}

	return until
}
