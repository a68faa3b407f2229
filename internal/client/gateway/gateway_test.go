package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jcarandang/captrack/internal/apperror"
)

// roundTripperFunc lets tests mock the http.Client transport.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripperFunc) *http.Client {
	return &http.Client{Transport: fn, Timeout: time.Second}
}

// staticHeaders is a HeaderSource returning a fixed header set.
type staticHeaders http.Header

func (s staticHeaders) AuthHeaders(ctx context.Context) (http.Header, error) {
	return http.Header(s).Clone(), nil
}

func defaultHeaders() staticHeaders {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer tok")
	return staticHeaders(h)
}

func TestDo_NetworkErrorPropagates(t *testing.T) {
	wantErr := errors.New("network down")
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, wantErr
	})
	g := New("http://example.com", client, defaultHeaders(), zap.NewNop())

	_, err := g.Do(context.Background(), http.MethodGet, "/api/tasks", nil)
	if err == nil || !strings.Contains(err.Error(), "network down") {
		t.Errorf("expected network failure, got %v", err)
	}
}

func TestDo_AttachesDerivedHeaders(t *testing.T) {
	var got http.Header
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		got = req.Header
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("{}"))}, nil
	})
	g := New("http://example.com", client, defaultHeaders(), zap.NewNop())

	resp, err := g.Do(context.Background(), http.MethodGet, "/api/tasks", nil)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if got.Get("Authorization") != "Bearer tok" {
		t.Errorf("Authorization = %q; want %q", got.Get("Authorization"), "Bearer tok")
	}
	if got.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q; want application/json", got.Get("Content-Type"))
	}
}

func TestDoWith_CallerHeadersWin(t *testing.T) {
	var got http.Header
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		got = req.Header
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("{}"))}, nil
	})
	g := New("http://example.com", client, defaultHeaders(), zap.NewNop())

	extra := http.Header{}
	extra.Set("Content-Type", "multipart/form-data")
	resp, err := g.DoWith(context.Background(), http.MethodPost, "/api/tasks", nil, extra)
	if err != nil {
		t.Fatalf("DoWith failed: %v", err)
	}
	resp.Body.Close()

	if got.Get("Content-Type") != "multipart/form-data" {
		t.Errorf("Content-Type = %q; caller header should win", got.Get("Content-Type"))
	}
	if got.Get("Authorization") != "Bearer tok" {
		t.Errorf("Authorization dropped when merging caller headers")
	}
}

func TestDo_UnauthorizedTriggersHookThenFails(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 401, Body: io.NopCloser(strings.NewReader(`{"message":"Unauthenticated."}`))}, nil
	})
	g := New("http://example.com", client, defaultHeaders(), zap.NewNop())

	hookCalled := false
	g.OnUnauthorized(func(ctx context.Context) { hookCalled = true })

	_, err := g.Do(context.Background(), http.MethodGet, "/api/user", nil)
	if !errors.Is(err, apperror.ErrSessionExpired) {
		t.Errorf("error = %v; want ErrSessionExpired", err)
	}
	if !hookCalled {
		t.Errorf("unauthorized hook not called")
	}
}

func TestDo_ErrorBodyMessageSurfaced(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 404, Body: io.NopCloser(strings.NewReader(`{"message":"project not found"}`))}, nil
	})
	g := New("http://example.com", client, defaultHeaders(), zap.NewNop())

	_, err := g.Do(context.Background(), http.MethodGet, "/api/projects/zzz", nil)
	var apiErr *apperror.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v; want *APIError", err)
	}
	if apiErr.Status != 404 || apiErr.Message != "project not found" {
		t.Errorf("APIError = %+v; want 404/backend message", apiErr)
	}
}

func TestDo_UnparseableErrorBodyFallsBack(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 500, Body: io.NopCloser(strings.NewReader("<html>oops</html>"))}, nil
	})
	g := New("http://example.com", client, defaultHeaders(), zap.NewNop())

	_, err := g.Do(context.Background(), http.MethodGet, "/api/tasks", nil)
	var apiErr *apperror.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v; want *APIError", err)
	}
	if apiErr.Status != 500 || !strings.Contains(apiErr.Message, "HTTP error 500") {
		t.Errorf("APIError = %+v; want generic HTTP error 500", apiErr)
	}
}

func TestParseErrorBody_ValidationFields(t *testing.T) {
	body := strings.NewReader(`{"errors":{"email":["invalid"],"password":["too short"]}}`)
	err := ParseErrorBody(422, body)

	var vErr *apperror.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v; want *ValidationError", err)
	}
	msg := vErr.Error()
	if !strings.Contains(msg, "invalid") || !strings.Contains(msg, "too short") {
		t.Errorf("message %q must contain every field message", msg)
	}
}

func TestDo_SuccessReturnsRawBody(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(`{"data":[1,2,3]}`))}, nil
	})
	g := New("http://example.com", client, defaultHeaders(), zap.NewNop())

	resp, err := g.Do(context.Background(), http.MethodGet, "/api/tasks", nil)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(raw) != `{"data":[1,2,3]}` {
		t.Errorf("body = %q; gateway must not consume successful bodies", raw)
	}
}
