// Package session holds the client's authentication state: whether a user
// is signed in, who they are, and the token-derived headers every
// authenticated request carries.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jcarandang/captrack/internal/apperror"
	"github.com/jcarandang/captrack/internal/client/credstore"
	"github.com/jcarandang/captrack/internal/client/gateway"
	"github.com/jcarandang/captrack/internal/models"
)

const (
	apiLogin  = "/api/login"
	apiLogout = "/api/logout"
	apiUser   = "/api/user"
)

// State is the session lifecycle state.
type State int

const (
	// StateUnknown is the initial state, before Restore has probed the
	// credential store.
	StateUnknown State = iota
	// StateUnauthenticated means no session exists.
	StateUnauthenticated
	// StateAuthenticated means a token is stored. The user record may still
	// be nil if the post-restore user fetch failed.
	StateAuthenticated
)

// Doer issues an authenticated request. Implemented by *gateway.Gateway;
// kept as an interface so tests can substitute a fake.
type Doer interface {
	Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error)
}

// Manager owns the session state machine. It persists credentials through
// a credstore.Store and reaches the backend directly for login (no token
// yet) and through the gateway for everything else.
type Manager struct {
	store  credstore.Store
	client *http.Client
	base   string
	log    *zap.Logger

	mu    sync.Mutex
	state State
	user  *models.User
	gw    Doer
}

// New constructs a Manager in StateUnknown. Call Restore before relying on
// State. client may be nil, in which case http.DefaultClient is used.
func New(store credstore.Store, client *http.Client, base string, log *zap.Logger) *Manager {
	if client == nil {
		client = http.DefaultClient
	}
	return &Manager{
		store:  store,
		client: client,
		base:   strings.TrimRight(base, "/"),
		log:    log,
		state:  StateUnknown,
	}
}

// SetGateway wires the gateway used for logout and user fetches. The
// gateway in turn derives its headers from this Manager, so wiring is
// necessarily two-phase.
func (m *Manager) SetGateway(gw Doer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gw = gw
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsAuthenticated reports whether the session believes a user is signed in.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// CurrentUser returns the session's user record, which may be nil even
// when authenticated (see Restore).
func (m *Manager) CurrentUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Restore probes the credential store at startup. With no stored token the
// session becomes unauthenticated. With a token it becomes authenticated,
// seeds the user from the stored snapshot, and refreshes it from the
// backend best-effort: a failed refresh is only logged and the session
// stays authenticated, possibly with a nil user, until the next request
// observes a 401. Optimistic restore is deliberate.
func (m *Manager) Restore(ctx context.Context) error {
	_, err := m.store.Get(ctx, credstore.KeyToken)
	if errors.Is(err, apperror.ErrNotFound) {
		m.setState(StateUnauthenticated, nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("probe credential store: %w", err)
	}

	var user *models.User
	if raw, err := m.store.Get(ctx, credstore.KeyUser); err == nil {
		var u models.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			user = &u
		}
	}
	m.setState(StateAuthenticated, user)

	if err := m.FetchUser(ctx); err != nil {
		m.log.Warn("session restored but user fetch failed", zap.Error(err))
	}
	return nil
}

// loginResponse is the login endpoint's success envelope.
type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login posts credentials to the backend. On success it persists the token
// and a snapshot of the returned user, then flips the session state. A 422
// response surfaces as a ValidationError carrying every field message.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.base+apiLogin, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gateway.ParseErrorBody(resp.StatusCode, resp.Body)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if lr.Token == "" {
		return errors.New("login response missing token")
	}

	if err := m.store.Set(ctx, credstore.KeyToken, lr.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if lr.User != nil {
		snap, err := json.Marshal(lr.User)
		if err == nil {
			if err := m.store.Set(ctx, credstore.KeyUser, string(snap)); err != nil {
				m.log.Warn("failed to persist user snapshot", zap.Error(err))
			}
		}
	}

	m.setState(StateAuthenticated, lr.User)
	m.log.Info("logged in", zap.String("email", email))
	return nil
}

// Logout notifies the backend best-effort and clears local credentials
// unconditionally. Local sign-out is never blocked by network failure.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	gw := m.gw
	m.mu.Unlock()

	if gw != nil {
		if resp, err := gw.Do(ctx, http.MethodPost, apiLogout, nil); err != nil {
			m.log.Warn("remote logout failed, clearing local session anyway", zap.Error(err))
		} else {
			resp.Body.Close()
		}
	}

	m.clearLocal(ctx)
}

// HandleUnauthorized tears the session down after the gateway observed a
// 401. It never calls the backend, so a failing logout endpoint cannot
// loop it.
func (m *Manager) HandleUnauthorized(ctx context.Context) {
	m.clearLocal(ctx)
}

func (m *Manager) clearLocal(ctx context.Context) {
	if err := m.store.Delete(ctx, credstore.KeyToken); err != nil {
		m.log.Warn("failed to delete stored token", zap.Error(err))
	}
	if err := m.store.Delete(ctx, credstore.KeyUser); err != nil {
		m.log.Warn("failed to delete stored user", zap.Error(err))
	}
	m.setState(StateUnauthenticated, nil)
}

// FetchUser fetches the canonical current-user record through the gateway
// and stores it as the session's user, refreshing the stored snapshot.
// Used at startup and after profile edits.
func (m *Manager) FetchUser(ctx context.Context) error {
	m.mu.Lock()
	gw := m.gw
	m.mu.Unlock()
	if gw == nil {
		return errors.New("session: gateway not wired")
	}

	resp, err := gw.Do(ctx, http.MethodGet, apiUser, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var u models.User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return fmt.Errorf("decode user: %w", err)
	}

	if snap, err := json.Marshal(&u); err == nil {
		if err := m.store.Set(ctx, credstore.KeyUser, string(snap)); err != nil {
			m.log.Warn("failed to refresh user snapshot", zap.Error(err))
		}
	}

	m.mu.Lock()
	m.user = &u
	m.mu.Unlock()
	return nil
}

// AuthHeaders re-reads the stored token on every call and derives the
// default request headers. The token is never cached, so one rotated
// mid-session is picked up by the next request. When no token is stored
// the Authorization header is simply omitted.
func (m *Manager) AuthHeaders(ctx context.Context) (http.Header, error) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")

	token, err := m.store.Get(ctx, credstore.KeyToken)
	if errors.Is(err, apperror.ErrNotFound) {
		return h, nil
	}
	if err != nil {
		return nil, err
	}
	h.Set("Authorization", "Bearer "+token)
	return h, nil
}

func (m *Manager) setState(s State, u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	m.user = u
}
