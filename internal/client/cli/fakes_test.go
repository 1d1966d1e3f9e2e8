package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/client/config"
	"github.com/dmitrijs2005/logitrack/internal/client/services"
	"github.com/dmitrijs2005/logitrack/internal/logging"
	"github.com/dmitrijs2005/logitrack/internal/policy"
)

type fakeAuth struct {
	mu sync.Mutex

	onlineSession  *services.Session
	onlineErr      error
	offlineSession *services.Session
	offlineErr     error
	logoutErr      error
	pingErr        error
	resetErr       error

	lastEmail    string
	lastPassword string
	resetToken   string
	loggedOut    bool
	closed       bool
}

func (f *fakeAuth) OnlineLogin(_ context.Context, email string, pw []byte) (*services.Session, error) {
	f.lastEmail, f.lastPassword = email, string(pw)
	return f.onlineSession, f.onlineErr
}

func (f *fakeAuth) OfflineLogin(_ context.Context, email string, pw []byte) (*services.Session, error) {
	f.lastEmail, f.lastPassword = email, string(pw)
	return f.offlineSession, f.offlineErr
}

func (f *fakeAuth) Logout(context.Context) error { f.loggedOut = true; return f.logoutErr }

func (f *fakeAuth) ResetPassword(_ context.Context, token string, pw []byte) error {
	f.resetToken, f.lastPassword = token, string(pw)
	return f.resetErr
}

func (f *fakeAuth) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeAuth) setPingErr(err error) {
	f.mu.Lock()
	f.pingErr = err
	f.mu.Unlock()
}

func (f *fakeAuth) Close() error { f.closed = true; return nil }

type fakeContainers struct {
	list       []*api.Container
	src        services.Source
	err        error
	added      *api.AddContainerRequest
	statusID   string
	status     string
	deleted    []string
	exportPath string
	exportRows int
	search     string
	exportDir  string
}

func (f *fakeContainers) List(_ context.Context, search string) ([]*api.Container, services.Source, error) {
	f.search = search
	return f.list, f.src, f.err
}

func (f *fakeContainers) Add(_ context.Context, in *api.AddContainerRequest) (*api.Container, error) {
	f.added = in
	if f.err != nil {
		return nil, f.err
	}
	return &api.Container{ID: "c-new", ContainerNumber: in.ContainerNumber, Status: "Pending"}, nil
}

func (f *fakeContainers) SetStatus(_ context.Context, id, status string) (*api.Container, error) {
	f.statusID, f.status = id, status
	if f.err != nil {
		return nil, f.err
	}
	return &api.Container{ID: id, ContainerNumber: "MSKU1", Status: status}, nil
}

func (f *fakeContainers) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeContainers) Export(_ context.Context, search, dir string) (string, int, error) {
	f.search, f.exportDir = search, dir
	return f.exportPath, f.exportRows, f.err
}

type fakeBookings struct {
	list    []*api.Booking
	src     services.Source
	err     error
	added   *api.Booking
	deleted []string
}

func (f *fakeBookings) List(context.Context, string) ([]*api.Booking, services.Source, error) {
	return f.list, f.src, f.err
}

func (f *fakeBookings) Add(_ context.Context, number string, qty int, typ string) (*api.Booking, error) {
	f.added = &api.Booking{ID: "b-new", BookingNumber: number, Qty: qty, Type: typ}
	return f.added, f.err
}

func (f *fakeBookings) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

type fakeAdmin struct {
	me       *api.User
	users    []*api.User
	settings []*api.Setting
	err      error
	calls    []string
}

func (f *fakeAdmin) Me(context.Context) (*api.User, error) { return f.me, f.err }

func (f *fakeAdmin) ListUsers(context.Context) ([]*api.User, error) { return f.users, f.err }

func (f *fakeAdmin) CreateUser(_ context.Context, email string, pw []byte, role string) (*api.User, error) {
	f.calls = append(f.calls, "create "+email+" "+string(pw)+" "+role)
	return &api.User{Email: email, Role: role}, f.err
}

func (f *fakeAdmin) ChangeRole(_ context.Context, id, role string) (*api.User, error) {
	f.calls = append(f.calls, "role "+id+" "+role)
	return &api.User{ID: id, Email: "x@example.com", Role: role}, f.err
}

func (f *fakeAdmin) DeleteUser(_ context.Context, id string) error {
	f.calls = append(f.calls, "deluser "+id)
	return f.err
}

func (f *fakeAdmin) SendPasswordReset(_ context.Context, email string) error {
	f.calls = append(f.calls, "reset "+email)
	return f.err
}

func (f *fakeAdmin) ListSettings(_ context.Context, kind string) ([]*api.Setting, error) {
	f.calls = append(f.calls, "list "+kind)
	return f.settings, f.err
}

func (f *fakeAdmin) AddSetting(_ context.Context, kind, name string) (*api.Setting, error) {
	f.calls = append(f.calls, "add "+kind+" "+name)
	return &api.Setting{ID: "s1", Kind: kind, Name: name}, f.err
}

func (f *fakeAdmin) DeleteSetting(_ context.Context, kind, id string) error {
	f.calls = append(f.calls, "del "+kind+" "+id)
	return f.err
}

type fakeWatch struct {
	events      []*api.Event
	err         error
	collections []string
	// block keeps Run open until ctx is canceled
	block bool
}

func (f *fakeWatch) Run(ctx context.Context, collections []string, onEvent func(*api.Event)) error {
	f.collections = collections
	for _, ev := range f.events {
		onEvent(ev)
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

type testApp struct {
	*App
	auth       *fakeAuth
	containers *fakeContainers
	bookings   *fakeBookings
	admin      *fakeAdmin
	watch      *fakeWatch
	out        *bytes.Buffer
}

// newTestApp builds an App reading input and signed in as role (none when
// role is empty).
func newTestApp(t *testing.T, input string, role string) *testApp {
	t.Helper()

	oldPW := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte("s3cret"), nil }
	t.Cleanup(func() { getPassword = oldPW })

	ta := &testApp{
		auth:       &fakeAuth{},
		containers: &fakeContainers{},
		bookings:   &fakeBookings{},
		admin:      &fakeAdmin{},
		watch:      &fakeWatch{},
		out:        &bytes.Buffer{},
	}
	ta.App = &App{
		config:     &config.Config{OnlineCheckInterval: 10 * time.Millisecond, ExportDir: "exports"},
		auth:       ta.auth,
		containers: ta.containers,
		bookings:   ta.bookings,
		admin:      ta.admin,
		watch:      ta.watch,
		rules:      policy.DefaultRules(),
		logger:     logging.Nop{},
		reader:     bufio.NewReader(strings.NewReader(input)),
		out:        ta.out,
	}
	if role != "" {
		ta.session = &services.Session{UserID: "u1", Email: "me@example.com", Role: role}
		ta.mode = ModeOnline
	}
	return ta
}

// output returns what the app printed so far; safe while goroutines write.
func (ta *testApp) output() string {
	ta.outMu.Lock()
	defer ta.outMu.Unlock()
	return ta.out.String()
}
