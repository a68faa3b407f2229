// Package gateway is the single chokepoint for authenticated calls to the
// backend. It derives headers from the session, maps error statuses to the
// apperror taxonomy, and forces a logout when the backend answers 401.
package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jcarandang/captrack/internal/apperror"
)

// HeaderSource supplies the default headers for every outbound request.
// The session manager implements it; headers are re-derived per call so a
// token rotated mid-session is picked up on the next request.
type HeaderSource interface {
	AuthHeaders(ctx context.Context) (http.Header, error)
}

// Gateway performs authenticated HTTP calls against a fixed base URL.
type Gateway struct {
	base    string
	client  *http.Client
	headers HeaderSource
	log     *zap.Logger

	// onUnauthorized is invoked before Do returns ErrSessionExpired, so the
	// session is already torn down when the caller observes the error.
	onUnauthorized func(ctx context.Context)
}

// New constructs a Gateway. client may be nil, in which case
// http.DefaultClient is used.
func New(base string, client *http.Client, headers HeaderSource, log *zap.Logger) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &Gateway{
		base:    strings.TrimRight(base, "/"),
		client:  client,
		headers: headers,
		log:     log,
	}
}

// OnUnauthorized registers the hook run when a 401 is observed. The session
// manager registers its local teardown here.
func (g *Gateway) OnUnauthorized(fn func(ctx context.Context)) {
	g.onUnauthorized = fn
}

// Do performs an authenticated request to base+path. On success the raw
// response is returned and the caller owns the body; each endpoint decodes
// its own envelope. Network errors propagate unchanged.
func (g *Gateway) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	return g.DoWith(ctx, method, path, body, nil)
}

// DoWith is Do with extra caller headers; caller values win on collision.
func (g *Gateway) DoWith(ctx context.Context, method, path string, body io.Reader, extra http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.base+path, body)
	if err != nil {
		return nil, err
	}

	hdr, err := g.headers.AuthHeaders(ctx)
	if err != nil {
		return nil, err
	}
	for k, vs := range hdr {
		req.Header[k] = vs
	}
	for k, vs := range extra {
		req.Header[k] = vs
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		g.log.Warn("request unauthorized, ending session",
			zap.String("method", method), zap.String("path", path))
		if g.onUnauthorized != nil {
			g.onUnauthorized(ctx)
		}
		return nil, apperror.ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		apiErr := ParseErrorBody(resp.StatusCode, resp.Body)
		g.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, apiErr
	}

	return resp, nil
}

// errorBody covers the error shapes the backend is known to produce: a
// top-level message, a top-level error string, or a field-keyed errors map.
type errorBody struct {
	Message string              `json:"message"`
	ErrMsg  string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

// ParseErrorBody turns a non-2xx body into the most specific error it can:
// a ValidationError when a field map is present, an APIError carrying the
// backend's message when one exists, or a generic APIError for the status.
func ParseErrorBody(status int, r io.Reader) error {
	raw, err := io.ReadAll(io.LimitReader(r, 1<<16))
	if err != nil {
		return apperror.HTTPError(status)
	}

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		return apperror.HTTPError(status)
	}
	if len(eb.Errors) > 0 {
		return &apperror.ValidationError{Fields: eb.Errors}
	}
	if eb.Message != "" {
		return &apperror.APIError{Status: status, Message: eb.Message}
	}
	if eb.ErrMsg != "" {
		return &apperror.APIError{Status: status, Message: eb.ErrMsg}
	}
	return apperror.HTTPError(status)
}
