package session

import "encoding/json"

// tokenEnvelope is the payload returned by the upstream's login and refresh
// operations. RefreshToken is empty when the upstream does not rotate the
// refresh credential on refresh.
type tokenEnvelope struct {
	User         json.RawMessage `json:"user,omitempty"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
