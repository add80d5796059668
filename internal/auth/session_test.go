// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GutSayN/ufood-tui/internal/api"
	"github.com/GutSayN/ufood-tui/internal/store"
)

// =============================================================================
// HARNESS
// =============================================================================

type fixture struct {
	manager *Manager
	store   *store.SecureStore
	hits    *int32
	now     *time.Time
}

func (f *fixture) advance(d time.Duration) { *f.now = f.now.Add(d) }

func (f *fixture) hitCount() int32 { return atomic.LoadInt32(f.hits) }

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()

	hits := new(int32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	device, err := store.OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { device.Close() })
	secure, err := store.NewSecureStore(device, "test-seed")
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	manager := NewManager(api.New(srv.URL), secure).
		WithClock(clock).
		WithLockout(NewLockoutManager(secure).WithClock(clock))
	t.Cleanup(func() { manager.Logout(context.Background()) })

	return &fixture{manager: manager, store: secure, hits: hits, now: &now}
}

func loginOKHandler(token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"isSuccess":true,"message":"ok","result":{` +
			`"user":{"id":1,"name":"Ana","email":"a@b.com","status":1,"roles":["USER"]},` +
			`"token":"` + token + `"}}`))
	}
}

func rejectHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

// =============================================================================
// LOGIN
// =============================================================================

func TestLoginSuccessEstablishesSession(t *testing.T) {
	f := newFixture(t, loginOKHandler("T1"))
	ctx := context.Background()

	user, err := f.manager.Login(ctx, "a@b.com", "Secret1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, StatusActive, user.Status)
	assert.True(t, f.manager.IsAuthenticated())

	token, ok, err := f.store.Get(ctx, keyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "T1", token)
}

func TestLoginNormalizesEmail(t *testing.T) {
	var gotBody string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		loginOKHandler("T1")(w, r)
	})

	_, err := f.manager.Login(context.Background(), "  A@B.Com ", "Secret1")
	require.NoError(t, err)
	assert.Contains(t, gotBody, `"email":"a@b.com"`)
}

func TestLoginRejectsInactiveAccountClientSide(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"isSuccess":true,"result":{` +
			`"user":{"id":2,"name":"Bo","email":"bo@b.com","status":0,"roles":["USER"]},` +
			`"token":"T2"}}`))
	})
	ctx := context.Background()

	_, err := f.manager.Login(ctx, "bo@b.com", "Secret1")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAccountInactive))
	assert.False(t, f.manager.IsAuthenticated())

	_, ok, _ := f.store.Get(ctx, keyToken)
	assert.False(t, ok, "token must not be persisted for an inactive account")
}

func TestLoginSurfacesServerMessageOn401(t *testing.T) {
	f := newFixture(t, rejectHandler(401, `{"isSuccess":false,"message":"Bad password"}`))

	_, err := f.manager.Login(context.Background(), "a@b.com", "Secret1")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidCredentials))
	assert.Equal(t, "Bad password", err.Error())
}

func TestLoginCountsEachFailureExactlyOnce(t *testing.T) {
	f := newFixture(t, rejectHandler(401, `{"message":"nope"}`))
	ctx := context.Background()

	_, err := f.manager.Login(ctx, "a@b.com", "wrong1pw")
	require.Error(t, err)

	raw, ok, err := f.store.Get(ctx, keyLoginAttempts)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", raw)
}

func TestLoginErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   Kind
		msg    string
	}{
		{"bad request server message", 400, `{"message":"email is required"}`, KindBadRequest, "email is required"},
		{"bad request fallback", 400, `{}`, KindBadRequest, msgBadRequest},
		{"forbidden", 403, `{}`, KindAccountUnavailable, msgAccountUnavailable},
		{"not found", 404, `{}`, KindServiceUnavailable, msgServiceUnavailable},
		{"server error", 500, `{}`, KindServer, msgServer},
		{"bad gateway", 502, `{}`, KindServer, msgServer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, rejectHandler(tc.status, tc.body))
			_, err := f.manager.Login(context.Background(), "a@b.com", "Secret1")
			require.Error(t, err)
			assert.True(t, IsKind(err, tc.kind), "got %v", err)
			assert.Equal(t, tc.msg, err.Error())
		})
	}
}

func TestLoginNetworkFailure(t *testing.T) {
	device, err := store.OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer device.Close()
	secure, err := store.NewSecureStore(device, "seed")
	require.NoError(t, err)

	manager := NewManager(api.New("http://127.0.0.1:1"), secure)
	_, err = manager.Login(context.Background(), "a@b.com", "Secret1")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetwork))
}

func TestLoginTimeoutIs408(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	f.manager.client.WithTimeout(50 * time.Millisecond)

	_, err := f.manager.Login(context.Background(), "a@b.com", "Secret1")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTimeout))
}

// =============================================================================
// LOCKOUT
// =============================================================================

func TestLockoutAfterFiveFailuresWithZeroFurtherTraffic(t *testing.T) {
	f := newFixture(t, rejectHandler(401, `{"message":"nope"}`))
	ctx := context.Background()

	for i := 0; i < MaxLoginAttempts; i++ {
		_, err := f.manager.Login(ctx, "a@b.com", "wrong1pw")
		require.Error(t, err)
	}
	require.Equal(t, int32(MaxLoginAttempts), f.hitCount())

	// The fifth failure opened the window, so the last error is LockedOut.
	_, err := f.manager.Login(ctx, "a@b.com", "wrong1pw")
	require.Error(t, err)
	minutes, locked := LockedOutMinutes(err)
	require.True(t, locked, "got %v", err)
	assert.Equal(t, 15, minutes)
	assert.Equal(t, int32(MaxLoginAttempts), f.hitCount(), "locked-out login must make no HTTP call")
}

func TestLockoutExpiresAfterWindow(t *testing.T) {
	f := newFixture(t, rejectHandler(401, `{"message":"nope"}`))
	ctx := context.Background()

	for i := 0; i < MaxLoginAttempts; i++ {
		f.manager.Login(ctx, "a@b.com", "wrong1pw")
	}
	_, err := f.manager.Login(ctx, "a@b.com", "wrong1pw")
	_, locked := LockedOutMinutes(err)
	require.True(t, locked)

	f.advance(LockoutDuration + time.Second)

	before := f.hitCount()
	_, err = f.manager.Login(ctx, "a@b.com", "wrong1pw")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidCredentials), "window elapsed, attempt goes to the network again")
	assert.Equal(t, before+1, f.hitCount())
}

func TestLockoutRemainingMinutesRoundsUp(t *testing.T) {
	f := newFixture(t, rejectHandler(401, `{}`))
	ctx := context.Background()

	for i := 0; i < MaxLoginAttempts; i++ {
		f.manager.Login(ctx, "a@b.com", "wrong1pw")
	}
	f.advance(14*time.Minute + 30*time.Second)

	_, err := f.manager.Login(ctx, "a@b.com", "wrong1pw")
	minutes, locked := LockedOutMinutes(err)
	require.True(t, locked)
	assert.Equal(t, 1, minutes)
}

func TestSuccessfulLoginResetsLockoutCounter(t *testing.T) {
	fail := true
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			rejectHandler(401, `{}`)(w, r)
			return
		}
		loginOKHandler("T1")(w, r)
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.manager.Login(ctx, "a@b.com", "wrong1pw")
	}
	fail = false
	_, err := f.manager.Login(ctx, "a@b.com", "Secret1")
	require.NoError(t, err)

	_, ok, _ := f.store.Get(ctx, keyLoginAttempts)
	assert.False(t, ok, "attempt counter must be cleared after a successful login")
}

// =============================================================================
// SESSION CHECK / EXPIRY
// =============================================================================

func TestCheckSessionValidRefreshesActivity(t *testing.T) {
	f := newFixture(t, loginOKHandler("T1"))
	ctx := context.Background()

	_, err := f.manager.Login(ctx, "a@b.com", "Secret1")
	require.NoError(t, err)

	f.advance(30 * time.Minute)
	check := f.manager.CheckSession(ctx)
	require.True(t, check.Valid)
	assert.Equal(t, "T1", check.Token)
	require.NotNil(t, check.User)
	assert.Equal(t, "Ana", check.User.Name)
}

func TestCheckSessionExpiredTearsDownStore(t *testing.T) {
	f := newFixture(t, loginOKHandler("T1"))
	ctx := context.Background()

	_, err := f.manager.Login(ctx, "a@b.com", "Secret1")
	require.NoError(t, err)

	f.advance(4000 * time.Second) // past the one-hour idle window
	check := f.manager.CheckSession(ctx)
	assert.False(t, check.Valid)
	assert.Equal(t, "session_expired", check.Reason)

	for _, key := range []string{keyToken, keyUser, keyLastActivity} {
		_, ok, _ := f.store.Get(ctx, key)
		assert.False(t, ok, "key %q must be absent after expiry", key)
	}
	assert.False(t, f.manager.IsAuthenticated())
}

func TestCheckSessionMissingKeysIsAnonymous(t *testing.T) {
	f := newFixture(t, loginOKHandler("T1"))

	check := f.manager.CheckSession(context.Background())
	assert.False(t, check.Valid)
	assert.Equal(t, "no_session", check.Reason)
	assert.Equal(t, int32(0), f.hitCount())
}

func TestCheckSessionIsIdempotent(t *testing.T) {
	f := newFixture(t, loginOKHandler("T1"))
	ctx := context.Background()

	_, err := f.manager.Login(ctx, "a@b.com", "Secret1")
	require.NoError(t, err)

	first := f.manager.CheckSession(ctx)
	second := f.manager.CheckSession(ctx)
	assert.Equal(t, first.Valid, second.Valid)
	assert.Equal(t, first.Token, second.Token)
}

func TestUserRoundTripThroughStore(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"isSuccess":true,"result":{` +
			`"user":{"id":9,"name":"René","email":"r@b.com","phoneNumber":"+56 9 1234 5678",` +
			`"status":1,"roles":["USER","ADMIN"]},"token":"T9"}}`))
	})
	ctx := context.Background()

	logged, err := f.manager.Login(ctx, "r@b.com", "Secret1")
	require.NoError(t, err)

	check := f.manager.CheckSession(ctx)
	require.True(t, check.Valid)
	assert.Equal(t, logged.ID, check.User.ID)
	assert.Equal(t, logged.Name, check.User.Name)
	assert.Equal(t, logged.Email, check.User.Email)
	assert.Equal(t, logged.PhoneNumber, check.User.PhoneNumber)
	assert.Equal(t, logged.Roles, check.User.Roles)
	assert.Equal(t, logged.Status, check.User.Status)
}

// =============================================================================
// LOGOUT
// =============================================================================

func TestLogoutIsIdempotentAndClearsEverything(t *testing.T) {
	f := newFixture(t, rejectHandler(401, `{}`))
	ctx := context.Background()

	// Leave a lockout counter behind, then log an (unauthenticated) user out.
	f.manager.Login(ctx, "a@b.com", "wrong1pw")

	f.manager.Logout(ctx)
	f.manager.Logout(ctx)

	assert.False(t, f.manager.IsAuthenticated())
	assert.Nil(t, f.manager.CurrentUser())
	_, ok, _ := f.store.Get(ctx, keyLoginAttempts)
	assert.False(t, ok, "logout clears lockout counters too")
}

// =============================================================================
// PROFILE
// =============================================================================

func TestUpdateUserRepersistsWithStoredToken(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPatch {
			w.Write([]byte(`{"isSuccess":true,"result":{` +
				`"user":{"id":1,"name":"Ana María","email":"a@b.com","status":1,"roles":["USER"]}}}`))
			return
		}
		loginOKHandler("T1")(w, r)
	})
	ctx := context.Background()

	_, err := f.manager.Login(ctx, "a@b.com", "Secret1")
	require.NoError(t, err)

	name := "Ana María"
	updated, err := f.manager.UpdateUser(ctx, UserUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.Name)

	token, ok, _ := f.store.Get(ctx, keyToken)
	require.True(t, ok)
	assert.Equal(t, "T1", token, "existing token survives a profile update")
	assert.Equal(t, "Ana María", f.manager.CurrentUser().Name)
}

func TestDeleteAccountLogsOutOnSuccess(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodDelete {
			w.Write([]byte(`{"isSuccess":true}`))
			return
		}
		loginOKHandler("T1")(w, r)
	})
	ctx := context.Background()

	_, err := f.manager.Login(ctx, "a@b.com", "Secret1")
	require.NoError(t, err)

	require.NoError(t, f.manager.DeleteAccount(ctx))
	assert.False(t, f.manager.IsAuthenticated())
	_, ok, _ := f.store.Get(ctx, keyToken)
	assert.False(t, ok)
}

func TestDeleteAccountFailureKeepsSession(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{}`))
			return
		}
		loginOKHandler("T1")(w, r)
	})
	ctx := context.Background()

	_, err := f.manager.Login(ctx, "a@b.com", "Secret1")
	require.NoError(t, err)

	err = f.manager.DeleteAccount(ctx)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindServer))
	assert.True(t, f.manager.IsAuthenticated())
}

// =============================================================================
// MONITOR
// =============================================================================

func TestMonitorForcesLogoutOnIdleExpiry(t *testing.T) {
	f := newFixture(t, loginOKHandler("T1"))
	ctx := context.Background()

	// Real wall-clock for the expiry comparison; short windows keep the
	// test fast.
	f.manager.WithClock(time.Now).
		WithTimeouts(100*time.Millisecond, 20*time.Millisecond)

	expired := make(chan string, 1)
	f.manager.SetOnExpired(func(reason string) { expired <- reason })

	_, err := f.manager.Login(ctx, "a@b.com", "Secret1")
	require.NoError(t, err)

	select {
	case reason := <-expired:
		assert.Equal(t, "session_expired", reason)
	case <-time.After(3 * time.Second):
		t.Fatal("monitor never fired")
	}
	assert.False(t, f.manager.IsAuthenticated())

	// The forced logout clears persistence even though the monitor's own
	// context is cancelled on the way down.
	for _, key := range []string{keyToken, keyUser, keyLastActivity} {
		_, ok, err := f.store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, "key %q must be absent after monitor-forced expiry", key)
	}
}

func TestMonitorStartIsSingleInstance(t *testing.T) {
	f := newFixture(t, loginOKHandler("T1"))
	ctx := context.Background()

	_, err := f.manager.Login(ctx, "a@b.com", "Secret1")
	require.NoError(t, err)

	// Re-validation while a monitor is running must not spawn a second one.
	f.manager.CheckSession(ctx)
	f.manager.CheckSession(ctx)

	f.manager.mu.Lock()
	stop := f.manager.monitorStop
	f.manager.mu.Unlock()
	assert.NotNil(t, stop)
}

// =============================================================================
// REGISTER
// =============================================================================

func TestRegisterValidatesBeforeNetwork(t *testing.T) {
	f := newFixture(t, loginOKHandler("unused"))

	err := f.manager.Register(context.Background(), Registration{
		Name:     "Ana",
		Email:    "not-an-email",
		Password: "Secret1",
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.Equal(t, int32(0), f.hitCount(), "validation failures must cost no network call")
}

func TestRegisterEmailTaken(t *testing.T) {
	f := newFixture(t, rejectHandler(409, `{"message":"duplicate"}`))

	err := f.manager.Register(context.Background(), Registration{
		Name:     "Ana",
		Email:    "a@b.com",
		Password: "Secret1",
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindEmailTaken))
	assert.Equal(t, msgEmailTaken, err.Error())
}

func TestRegisterSurfacesServerMessageOn400(t *testing.T) {
	f := newFixture(t, rejectHandler(400, `{"message":"phone number already in use"}`))

	err := f.manager.Register(context.Background(), Registration{
		Name:     "Ana",
		Email:    "a@b.com",
		Password: "Secret1",
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindBadRequest))
	assert.Equal(t, "phone number already in use", err.Error())
}

func TestRegisterDefaultsRole(t *testing.T) {
	var gotBody string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"isSuccess":true,"message":"created"}`))
	})

	err := f.manager.Register(context.Background(), Registration{
		Name:     "Ana",
		Email:    "a@b.com",
		Password: "Secret1",
	})
	require.NoError(t, err)
	assert.Contains(t, gotBody, `"role":"USER"`)
}
