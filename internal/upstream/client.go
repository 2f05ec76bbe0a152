// Package upstream is the HTTP client for the backend commerce API. It
// attaches credentials and normalises error bodies; it never interprets
// status codes and never retries — that orchestration lives in the session
// layer.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	headerAuthorization = "Authorization"
	headerAPIToken      = "X-API-Token"
)

// SafeErrorMessage is surfaced whenever an upstream error body cannot be
// parsed; raw payloads and transport errors never reach the browser.
const SafeErrorMessage = "upstream request failed"

// Auth selects how a call authenticates against the upstream.
type Auth struct {
	bearer     string
	serviceKey string
}

// Bearer authenticates with a per-user access token.
func Bearer(token string) Auth { return Auth{bearer: token} }

// ServiceKey authenticates with the static admin service credential. The
// key is sent in both header forms because the upstream's authorization
// strategies may check either.
func ServiceKey(key string) Auth { return Auth{serviceKey: key} }

// None issues the call unauthenticated (login, refresh).
func None() Auth { return Auth{} }

func (a Auth) apply(h http.Header) {
	switch {
	case a.serviceKey != "":
		h.Set(headerAPIToken, a.serviceKey)
		h.Set(headerAuthorization, "ApiKey "+a.serviceKey)
	case a.bearer != "":
		h.Set(headerAuthorization, "Bearer "+a.bearer)
	}
}

// Response is a fully-read upstream reply.
type Response struct {
	Status      int
	Body        []byte
	ContentType string
	Header      http.Header
}

func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client issues single HTTP calls against the fixed upstream base address.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient expects a base URL already normalised by config (trailing /api
// stripped).
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Call performs exactly one request. Non-2xx responses are returned, not
// turned into errors; only transport failures error out.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, body io.Reader, auth Auth) (*Response, error) {
	u := c.baseURL + "/api" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating upstream request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Cache-Control", "no-store")
	auth.apply(req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling upstream %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading upstream response: %w", err)
	}

	return &Response{
		Status:      resp.StatusCode,
		Body:        raw,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header,
	}, nil
}

// CallJSON marshals payload and performs the call.
func (c *Client) CallJSON(ctx context.Context, method, path string, payload any, auth Auth) (*Response, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request payload: %w", err)
	}

	return c.Call(ctx, method, path, nil, bytes.NewReader(raw), auth)
}

// ErrorMessage extracts a human-readable message from an upstream error
// body. Both flat and nested shapes are produced by the upstream framework.
func ErrorMessage(body []byte) string {
	var flat struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Message != "" {
		return flat.Message
	}

	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}

	return SafeErrorMessage
}
