// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GutSayN/ufood-tui/internal/api"
	"github.com/GutSayN/ufood-tui/internal/store"
	"github.com/GutSayN/ufood-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// SessionTimeout is the idle window after which a session is destroyed.
	SessionTimeout = time.Hour

	// MonitorInterval is the background expiry-check period.
	MonitorInterval = 60 * time.Second
)

// Persisted key namespace. These names are stable across app versions;
// changing one silently logs every user out on upgrade.
const (
	keyToken            = "token"
	keyUser             = "user"
	keyLastActivity     = "last_activity"
	keyLoginAttempts    = "login_attempts"
	keyLockoutStartedAt = "lockout_started_at"
)

// Auth service endpoints.
const (
	pathLogin    = "/login"
	pathRegister = "/register"
	pathMe       = "/me"
	pathUsers    = "/users"
	pathStatus   = "/status/"
)

// State is the session manager's coarse state.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager orchestrates login, logout, session validation, the lockout policy,
// and background expiry monitoring. Construct one per process and pass it to
// consumers; it owns the session keys in the secure store exclusively.
type Manager struct {
	client  *api.Client
	store   *store.SecureStore
	lockout *LockoutManager
	logger  *log.Logger

	sessionTimeout  time.Duration
	monitorInterval time.Duration
	now             func() time.Time

	mu          sync.Mutex
	state       State
	user        *User
	monitorStop context.CancelFunc
	onExpired   func(reason string)

	// ticking guards against overlapping monitor ticks.
	ticking atomic.Bool
}

// NewManager wires a session manager over the given API client and store,
// registering the bearer-token and activity interceptors on the client.
func NewManager(client *api.Client, st *store.SecureStore) *Manager {
	m := &Manager{
		client:          client,
		store:           st,
		lockout:         NewLockoutManager(st),
		logger:          log.Default(),
		sessionTimeout:  SessionTimeout,
		monitorInterval: MonitorInterval,
		now:             time.Now,
	}
	client.UseRequest(api.BearerAuth(api.TokenSourceFunc(m.storedToken), pathLogin, pathRegister))
	client.UseResponse(api.ActivityRecorder(m.recordActivity))
	return m
}

// AttachClient registers the session's bearer-token and activity
// interceptors on another api client, so a second service (the product
// service) shares the session transparently.
func (m *Manager) AttachClient(client *api.Client) {
	client.UseRequest(api.BearerAuth(api.TokenSourceFunc(m.storedToken)))
	client.UseResponse(api.ActivityRecorder(m.recordActivity))
}

// WithTimeouts overrides the session timeout and monitor interval.
func (m *Manager) WithTimeouts(sessionTimeout, monitorInterval time.Duration) *Manager {
	if sessionTimeout > 0 {
		m.sessionTimeout = sessionTimeout
	}
	if monitorInterval > 0 {
		m.monitorInterval = monitorInterval
	}
	return m
}

// WithLockout substitutes the lockout manager, for policy tuning and tests.
func (m *Manager) WithLockout(l *LockoutManager) *Manager {
	if l != nil {
		m.lockout = l
	}
	return m
}

// WithClock substitutes the time source, for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// WithLogger substitutes the diagnostic logger.
func (m *Manager) WithLogger(logger *log.Logger) *Manager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// SetOnExpired registers a callback invoked when the background monitor or a
// session check tears a session down. The reason is "session_expired".
func (m *Manager) SetOnExpired(fn func(reason string)) {
	m.mu.Lock()
	m.onExpired = fn
	m.mu.Unlock()
}

// State reports the current coarse session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns the in-memory user, or nil when anonymous.
func (m *Manager) CurrentUser() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// IsAuthenticated reports whether a session is currently established.
func (m *Manager) IsAuthenticated() bool { return m.State() == StateAuthenticated }

// =============================================================================
// LOGIN / REGISTER
// =============================================================================

type authEnvelope struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
	Result    struct {
		User  *User  `json:"user"`
		Token string `json:"token"`
	} `json:"result"`
}

// Login authenticates the credential pair. The lockout pre-check runs before
// any network traffic: a locked account fails locally with the remaining
// minutes and issues zero HTTP requests.
func (m *Manager) Login(ctx context.Context, email, password string) (*User, error) {
	if remaining, locked := m.lockout.Remaining(ctx); locked {
		return nil, lockedOutError(remainingMinutes(remaining))
	}

	email = util.NormalizeEmail(email)

	var envelope authEnvelope
	err := m.client.Post(ctx, pathLogin, Credential{Email: email, Password: password}, &envelope)
	if err != nil {
		if apiErr, ok := api.AsError(err); ok && apiErr.Status == 401 {
			return nil, m.loginRejected(ctx, apiErr)
		}
		return nil, classify(err)
	}

	user := envelope.Result.User
	token := envelope.Result.Token
	if user == nil || token == "" {
		return nil, &Error{Kind: KindServer, Message: msgServer}
	}
	if user.Status == StatusInactive {
		// Client-side gate: a disabled account never reaches the
		// authenticated state even though the server issued a token.
		return nil, &Error{Kind: KindAccountInactive, Message: msgAccountInactive}
	}

	if err := m.persistSession(ctx, token, user); err != nil {
		return nil, err
	}
	m.lockout.Reset(ctx)

	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = user
	m.mu.Unlock()
	m.startMonitor()
	return user, nil
}

// loginRejected handles the 401 branch: the single place that counts a failed
// attempt.
func (m *Manager) loginRejected(ctx context.Context, apiErr *api.Error) *Error {
	attempts, lockedFor := m.lockout.RecordFailure(ctx)
	if lockedFor > 0 {
		m.logger.Printf("auth: lockout opened after %d failed attempts", attempts)
		return lockedOutError(remainingMinutes(lockedFor))
	}
	msg := serverMessage(apiErr)
	if msg == "" {
		msg = msgInvalidCredentials
	}
	return &Error{Kind: KindInvalidCredentials, Message: msg}
}

// Register creates an account. Field validation runs locally first, so a bad
// input costs no network round trip.
func (m *Manager) Register(ctx context.Context, reg Registration) error {
	reg.Email = util.NormalizeEmail(reg.Email)
	if reg.Role == "" {
		reg.Role = RoleUser
	}
	if err := ValidateRegistration(reg); err != nil {
		return err
	}

	var envelope authEnvelope
	err := m.client.Post(ctx, pathRegister, reg, &envelope)
	if err == nil {
		return nil
	}
	if apiErr, ok := api.AsError(err); ok && apiErr.Status == 409 {
		return &Error{Kind: KindEmailTaken, Message: msgEmailTaken}
	}
	return classify(err)
}

// =============================================================================
// SESSION CHECK / LOGOUT
// =============================================================================

// SessionCheck is the outcome of a CheckSession call.
type SessionCheck struct {
	Valid  bool
	Reason string
	Token  string
	User   *User
}

// CheckSession validates the persisted session. Used both at cold start and
// for manual re-validation; idempotent and safe to call repeatedly. An
// unreadable store degrades to "no session" rather than failing.
func (m *Manager) CheckSession(ctx context.Context) SessionCheck {
	values := m.store.MultiGet(ctx, []string{keyToken, keyUser, keyLastActivity})
	token := values[keyToken]
	rawUser := values[keyUser]
	rawActivity := values[keyLastActivity]
	if token == "" || rawUser == "" || rawActivity == "" {
		m.toAnonymous()
		return SessionCheck{Valid: false, Reason: "no_session"}
	}

	lastActivity, ok := util.ParseMillis(rawActivity)
	if !ok {
		m.teardown(ctx)
		return SessionCheck{Valid: false, Reason: "no_session"}
	}
	if m.now().Sub(util.TimeFromMillis(lastActivity)) > m.sessionTimeout {
		m.teardown(ctx)
		return SessionCheck{Valid: false, Reason: "session_expired"}
	}

	var user User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		m.logger.Printf("auth: stored user unreadable: %v", err)
		m.teardown(ctx)
		return SessionCheck{Valid: false, Reason: "no_session"}
	}

	m.recordActivity(ctx)
	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = &user
	m.mu.Unlock()
	m.startMonitor()
	return SessionCheck{Valid: true, Token: token, User: &user}
}

// Logout stops the monitor, clears the entire store (lockout counters
// included), and resets in-memory state. It never fails the caller: a store
// error is logged and the in-memory state is reset regardless.
func (m *Manager) Logout(ctx context.Context) {
	m.stopMonitor()
	// stopMonitor cancels the monitor's context, and the expiry path reaches
	// here with exactly that context. The clear must still run.
	if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
		m.logger.Printf("auth: logout: clear store: %v", err)
	}
	m.toAnonymous()
}

// teardown is the expiry path: full store clear plus state reset, without
// touching the monitor start/stop from inside a tick more than needed.
func (m *Manager) teardown(ctx context.Context) {
	m.Logout(ctx)
}

func (m *Manager) toAnonymous() {
	m.mu.Lock()
	m.state = StateAnonymous
	m.user = nil
	m.mu.Unlock()
}

// =============================================================================
// PROFILE
// =============================================================================

// UpdateUser applies a partial profile update. On success the session is
// re-persisted with the existing token, read fresh from storage, and a new
// activity timestamp.
func (m *Manager) UpdateUser(ctx context.Context, update UserUpdate) (*User, error) {
	var envelope authEnvelope
	if err := m.client.Patch(ctx, pathMe, update, &envelope); err != nil {
		return nil, classify(err)
	}
	user := envelope.Result.User
	if user == nil {
		return nil, &Error{Kind: KindServer, Message: msgServer}
	}

	token, ok, err := m.store.Get(ctx, keyToken)
	if err != nil || !ok || token == "" {
		return nil, &Error{Kind: KindStorage, Message: msgSessionStorageFault}
	}
	if err := m.persistSession(ctx, token, user); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	return user, nil
}

// DeleteAccount calls the destructive endpoint. Success implies a full
// logout; failure is reported as a typed error for inline display.
func (m *Manager) DeleteAccount(ctx context.Context) error {
	if err := m.client.Delete(ctx, pathMe, nil); err != nil {
		return classify(err)
	}
	m.Logout(ctx)
	return nil
}

// =============================================================================
// MONITOR
// =============================================================================

// startMonitor launches the background expiry check. Starting while one is
// already running is a no-op.
func (m *Manager) startMonitor() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.monitorStop != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.monitorStop = cancel
	go m.monitorLoop(ctx)
}

func (m *Manager) stopMonitor() {
	m.mu.Lock()
	stop := m.monitorStop
	m.monitorStop = nil
	m.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (m *Manager) monitorLoop(ctx context.Context) {
	ticker := time.NewTicker(m.monitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.monitorTick(ctx)
		}
	}
}

// monitorTick is re-entrancy guarded: an overlapping tick is dropped.
func (m *Manager) monitorTick(ctx context.Context) {
	if !m.ticking.CompareAndSwap(false, true) {
		return
	}
	defer m.ticking.Store(false)

	raw, ok, err := m.store.Get(ctx, keyLastActivity)
	if err != nil || !ok {
		return
	}
	lastActivity, parsed := util.ParseMillis(raw)
	if !parsed {
		return
	}
	if m.now().Sub(util.TimeFromMillis(lastActivity)) > m.sessionTimeout {
		m.teardown(ctx)
		m.notifyExpired("session_expired")
	}
}

func (m *Manager) notifyExpired(reason string) {
	m.mu.Lock()
	fn := m.onExpired
	m.mu.Unlock()
	if fn != nil {
		fn(reason)
	}
}

// =============================================================================
// PERSISTENCE HELPERS
// =============================================================================

// persistSession writes the full session atomically from the caller's view:
// token, serialized user, and a fresh activity timestamp in one MultiSet.
func (m *Manager) persistSession(ctx context.Context, token string, user *User) *Error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return &Error{Kind: KindStorage, Message: msgSessionStorageFault}
	}
	values := map[string]string{
		keyToken:        token,
		keyUser:         string(rawUser),
		keyLastActivity: util.FormatMillis(util.EpochMillis(m.now())),
	}
	if err := m.store.MultiSet(ctx, values); err != nil {
		m.logger.Printf("auth: persist session: %v", err)
		return &Error{Kind: KindStorage, Message: msgSessionStorageFault}
	}
	return nil
}

// storedToken reads the bearer token for the auth interceptor. The store is
// the source of truth; the token is never cached in memory here.
func (m *Manager) storedToken(ctx context.Context) (string, bool) {
	token, ok, err := m.store.Get(ctx, keyToken)
	if err != nil || !ok {
		return "", false
	}
	return token, true
}

// recordActivity stamps now as the last-activity time.
func (m *Manager) recordActivity(ctx context.Context) {
	err := m.store.Set(ctx, keyLastActivity, util.FormatMillis(util.EpochMillis(m.now())))
	if err != nil {
		m.logger.Printf("auth: record activity: %v", err)
	}
}
