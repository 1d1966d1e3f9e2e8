package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/cryptox"
	"github.com/dmitrijs2005/logitrack/internal/dbx"
	"github.com/dmitrijs2005/logitrack/internal/server/feed"
	"github.com/dmitrijs2005/logitrack/internal/server/models"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/bookings"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/containers"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/settings"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/users"
	"github.com/dmitrijs2005/logitrack/internal/server/session"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// fastHasher keeps argon2 cheap in tests.
var fastHasher = cryptox.NewHasher(cryptox.Params{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16})

func as(role models.Role, userID, email string) context.Context {
	return session.WithSession(context.Background(), session.Session{UserID: userID, Email: email, Role: role})
}

type emitted struct {
	Collection feed.Collection
	Op         feed.Op
	ID         string
	Value      any
	Actor      string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []emitted
}

func (p *fakePublisher) Emit(ctx context.Context, c feed.Collection, op feed.Op, id string, v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, emitted{Collection: c, Op: op, ID: id, Value: v, Actor: session.Actor(ctx)})
}

// --- users ---

type fakeUsersRepo struct {
	byID    map[string]*models.User
	seq     int
	getErr  error
	listErr error

	// onCreate runs before Create checks for a duplicate email
	onCreate func(*fakeUsersRepo)
}

func newFakeUsersRepo(us ...*models.User) *fakeUsersRepo {
	r := &fakeUsersRepo{byID: map[string]*models.User{}}
	for _, u := range us {
		r.byID[u.ID] = u
	}
	return r
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.onCreate != nil {
		f.onCreate(f)
	}
	for _, x := range f.byID {
		if x.Email == u.Email {
			return nil, fmt.Errorf("user %s %w", u.Email, common.ErrorAlreadyExists)
		}
	}
	f.seq++
	u.ID = fmt.Sprintf("u-%d", f.seq)
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) List(context.Context) ([]*models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsersRepo) update(id string, fn func(*models.User)) error {
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(u)
	return nil
}

func (f *fakeUsersRepo) UpdateRole(_ context.Context, id string, role models.Role) error {
	return f.update(id, func(u *models.User) { u.Role = role })
}

func (f *fakeUsersRepo) UpdatePassword(_ context.Context, id string, hash string) error {
	return f.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (f *fakeUsersRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	return f.update(id, func(u *models.User) { u.LastLogin = &at })
}

func (f *fakeUsersRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

// --- tokens ---

type fakeTokensRepo struct {
	mu         sync.Mutex
	rows       map[string]*models.RefreshToken
	consumeErr error
	delErr     error
	createErr  error
}

func newFakeTokensRepo() *fakeTokensRepo {
	return &fakeTokensRepo{rows: map[string]*models.RefreshToken{}}
}

func (f *fakeTokensRepo) Create(_ context.Context, userID, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeTokensRepo) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.rows, token)
	return t, nil
}

func (f *fakeTokensRepo) Delete(_ context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, token)
	return nil
}

func (f *fakeTokensRepo) DeleteByUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, t := range f.rows {
		if t.UserID == userID {
			delete(f.rows, k)
		}
	}
	return nil
}

func (f *fakeTokensRepo) forUser(userID string) int {
	n := 0
	for _, t := range f.rows {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

// --- containers ---

type fakeContainersRepo struct {
	rows      []*models.Container
	existsErr error
	createErr error
	listErr   error
	lastQuery string
}

func (f *fakeContainersRepo) Create(_ context.Context, c *models.Container) (*models.Container, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	c.ID = fmt.Sprintf("c-%d", len(f.rows)+1)
	c.UpdatedAt = c.CreatedAt
	f.rows = append(f.rows, c)
	return c, nil
}

func (f *fakeContainersRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, c := range f.rows {
		if c.ContainerNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeContainersRepo) GetByID(_ context.Context, id string) (*models.Container, error) {
	for _, c := range f.rows {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeContainersRepo) List(_ context.Context, search string) ([]*models.Container, error) {
	f.lastQuery = search
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

func (f *fakeContainersRepo) UpdateStatus(_ context.Context, id string, st models.ContainerStatus, by string, at time.Time) (*models.Container, error) {
	for _, c := range f.rows {
		if c.ID == id {
			c.Status, c.LastUpdatedBy, c.UpdatedAt = st, by, at
			return c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeContainersRepo) Delete(_ context.Context, id string) error {
	for i, c := range f.rows {
		if c.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

// --- bookings ---

type fakeBookingsRepo struct {
	rows      []*models.Booking
	lastQuery string
}

func (f *fakeBookingsRepo) Create(_ context.Context, b *models.Booking) (*models.Booking, error) {
	b.ID = fmt.Sprintf("b-%d", len(f.rows)+1)
	f.rows = append(f.rows, b)
	return b, nil
}

func (f *fakeBookingsRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	for _, b := range f.rows {
		if b.BookingNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookingsRepo) List(_ context.Context, search string) ([]*models.Booking, error) {
	f.lastQuery = search
	return f.rows, nil
}

func (f *fakeBookingsRepo) Delete(_ context.Context, id string) error {
	for i, b := range f.rows {
		if b.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

// --- settings ---

type fakeSettingsRepo struct {
	rows map[models.SettingKind][]*models.Setting
}

func (f *fakeSettingsRepo) List(_ context.Context, kind models.SettingKind) ([]*models.Setting, error) {
	return f.rows[kind], nil
}

func (f *fakeSettingsRepo) Create(_ context.Context, kind models.SettingKind, name string) (*models.Setting, error) {
	if f.rows == nil {
		f.rows = map[models.SettingKind][]*models.Setting{}
	}
	s := &models.Setting{ID: fmt.Sprintf("%s-%d", kind, len(f.rows[kind])+1), Kind: kind, Name: name}
	f.rows[kind] = append(f.rows[kind], s)
	return s, nil
}

func (f *fakeSettingsRepo) Delete(_ context.Context, kind models.SettingKind, id string) error {
	for i, s := range f.rows[kind] {
		if s.ID == id {
			f.rows[kind] = append(f.rows[kind][:i], f.rows[kind][i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

// --- manager ---

type fakeRepoManager struct {
	users      *fakeUsersRepo
	refresh    *fakeTokensRepo
	resets     *fakeTokensRepo
	containers *fakeContainersRepo
	bookings   *fakeBookingsRepo
	settings   *fakeSettingsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:      newFakeUsersRepo(),
		refresh:    newFakeTokensRepo(),
		resets:     newFakeTokensRepo(),
		containers: &fakeContainersRepo{},
		bookings:   &fakeBookingsRepo{},
		settings:   &fakeSettingsRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) tokens.Repository     { return m.refresh }
func (m *fakeRepoManager) PasswordResets(dbx.DBTX) tokens.Repository    { return m.resets }
func (m *fakeRepoManager) Containers(dbx.DBTX) containers.Repository    { return m.containers }
func (m *fakeRepoManager) Bookings(dbx.DBTX) bookings.Repository        { return m.bookings }
func (m *fakeRepoManager) Settings(dbx.DBTX) settings.Repository        { return m.settings }
