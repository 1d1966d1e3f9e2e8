package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/client/client"
	"github.com/dmitrijs2005/logitrack/internal/client/services"
)

func TestLogin_Online(t *testing.T) {
	ta := newTestApp(t, "ops@example.com\n", "")
	ta.auth.onlineSession = &services.Session{UserID: "u1", Email: "ops@example.com", Role: "Logistics"}

	require.NoError(t, ta.Login(context.Background(), nil))
	assert.Equal(t, ModeOnline, ta.Mode())
	assert.True(t, ta.isLoggedIn())
	assert.Equal(t, "s3cret", ta.auth.lastPassword)
	assert.Contains(t, ta.output(), "Logged in as ops@example.com (Logistics)")
	assert.Equal(t, "(ops@example.com Logistics online)", ta.getStatus())
}

func TestLogin_FallsBackToOffline(t *testing.T) {
	ta := newTestApp(t, "ops@example.com\n", "")
	ta.auth.onlineErr = client.ErrUnavailable
	ta.auth.offlineSession = &services.Session{Email: "ops@example.com", Role: "Driver", Offline: true}

	require.NoError(t, ta.Login(context.Background(), nil))
	assert.Equal(t, ModeOffline, ta.Mode())
	assert.Contains(t, ta.output(), "trying offline login")
}

func TestLogin_OfflineFailureDisables(t *testing.T) {
	ta := newTestApp(t, "ops@example.com\n", "")
	ta.auth.onlineErr = client.ErrUnavailable
	ta.auth.offlineErr = client.ErrLocalDataNotAvailable

	err := ta.Login(context.Background(), nil)
	require.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
	assert.Equal(t, ModeDisabled, ta.Mode())
	assert.False(t, ta.isLoggedIn())
}

func TestLogin_WrongPassword(t *testing.T) {
	ta := newTestApp(t, "ops@example.com\n", "")
	ta.auth.onlineErr = client.ErrUnauthorized

	require.ErrorIs(t, ta.Login(context.Background(), nil), client.ErrUnauthorized)
	assert.False(t, ta.isLoggedIn())
}

func TestLogout(t *testing.T) {
	ta := newTestApp(t, "", "Admin")

	require.NoError(t, ta.Logout(context.Background(), nil))
	assert.True(t, ta.auth.loggedOut)
	assert.False(t, ta.isLoggedIn())
	assert.Equal(t, "", ta.getStatus())
}

func TestSetPassword(t *testing.T) {
	ta := newTestApp(t, "", "")

	require.NoError(t, ta.SetPassword(context.Background(), []string{"tok123"}))
	assert.Equal(t, "tok123", ta.auth.resetToken)
	assert.Equal(t, "s3cret", ta.auth.lastPassword)

	require.EqualError(t, ta.SetPassword(context.Background(), nil), "usage: setpw <token>")
}

func TestWhoAmI_RefreshesRole(t *testing.T) {
	ta := newTestApp(t, "", "Staff")
	ta.admin.me = &api.User{ID: "u1", Email: "me@example.com", Role: "Logistics"}

	require.NoError(t, ta.WhoAmI(context.Background(), nil))
	assert.Equal(t, "Logistics", ta.currentSession().Role)
	assert.Contains(t, ta.output(), "me@example.com")
}

func TestWhoAmI_Offline(t *testing.T) {
	ta := newTestApp(t, "", "Staff")
	ta.session.Offline = true

	require.NoError(t, ta.WhoAmI(context.Background(), nil))
	assert.Contains(t, ta.output(), "offline session")
}

func TestStartOnlineStatusWatcher_SwitchesModes(t *testing.T) {
	ta := newTestApp(t, "", "Staff")
	ta.auth.setPingErr(client.ErrUnavailable)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ta.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return ta.Mode() == ModeOffline }, time.Second, 5*time.Millisecond)
	ta.auth.setPingErr(nil)
	require.Eventually(t, func() bool { return ta.Mode() == ModeOnline }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Contains(t, ta.output(), "switched to offline mode")
	assert.Contains(t, ta.output(), "switched to online mode")
}

func TestStartOnlineStatusWatcher_OfflineSessionStaysOffline(t *testing.T) {
	ta := newTestApp(t, "", "Staff")
	ta.session.Offline = true
	ta.setMode(ModeOffline)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ta.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(ta.output(), "run login to go online")
	}, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, ModeOffline, ta.Mode())
	assert.NotContains(t, ta.output(), "switched to online mode")
	assert.Equal(t, 1, strings.Count(ta.output(), "run login to go online"), "the hint is printed once")
}

func TestRoot_LoginThenExit(t *testing.T) {
	ta := newTestApp(t, "ops@example.com\nfoo\n\nexit\n", "")
	ta.auth.onlineSession = &services.Session{Email: "ops@example.com", Role: "Staff"}

	require.NoError(t, ta.Root(context.Background()))
	out := ta.output()
	assert.Contains(t, out, "Welcome to LogiTrack console")
	assert.Contains(t, out, "Unknown command: foo")
	assert.Contains(t, out, "Bye!")
}

func TestRoot_EOFEndsLoop(t *testing.T) {
	ta := newTestApp(t, "", "")

	require.NoError(t, ta.Root(context.Background()))
	assert.Contains(t, ta.output(), "Bye!")
}

func TestRun_ClosesAuth(t *testing.T) {
	ta := newTestApp(t, "", "")

	require.NoError(t, ta.Run(context.Background()))
	assert.True(t, ta.auth.closed)
}

func TestDispatch_RequiresLogin(t *testing.T) {
	ta := newTestApp(t, "", "")

	assert.False(t, ta.dispatch(context.Background(), "containers"))
	assert.Contains(t, ta.output(), "Please login first")
	assert.True(t, ta.dispatch(context.Background(), "QUIT"))
	assert.False(t, ta.dispatch(context.Background(), "   "))
}

func TestReport(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrCanceled, "canceled"},
		{client.ErrUnavailable, "needs a connection"},
		{client.ErrUnauthorized, "please login again"},
		{client.ErrForbidden, "not allowed"},
		{errors.New("container number is required"), "error: container number is required"},
	}
	for _, tc := range tests {
		ta := newTestApp(t, "", "Staff")
		ta.report(tc.err)
		assert.Contains(t, ta.output(), tc.want)
	}

	ta := newTestApp(t, "", "Staff")
	ta.report(client.ErrUnavailable)
	assert.Equal(t, ModeOffline, ta.Mode())
}
