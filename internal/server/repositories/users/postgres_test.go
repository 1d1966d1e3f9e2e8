package users

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "email", "password_hash", "role", "created_at", "last_login"}

func toArgs(in []any) []driver.Value {
	out := make([]driver.Value, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const insertQuery = `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*password_hash,\s*role,\s*last_login\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(insertQuery).
		WithArgs("ops@logitrack.com", "$argon2id$hash", "Staff", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u-42", created))

	u := &models.User{Email: "ops@logitrack.com", PasswordHash: "$argon2id$hash", Role: models.RoleStaff}
	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "u-42", got.ID)
	assert.Equal(t, created, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_WithLastLogin(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(insertQuery).
		WithArgs("admin@logitrack.com", "h", "Admin", now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u-1", now))

	_, err := repo.Create(context.Background(), &models.User{Email: "admin@logitrack.com", PasswordHash: "h", Role: models.RoleAdmin, LastLogin: &now})
	require.NoError(t, err)
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.User{Email: "ops@logitrack.com"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Email: "ops@logitrack.com"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*role,\s*created_at,\s*last_login\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`
	login := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(q).
		WithArgs("ops@logitrack.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u-1", "ops@logitrack.com", "h", "Logistics", login, login))

	got, err := repo.GetByEmail(context.Background(), "ops@logitrack.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleLogistics, got.Role)
	require.NotNil(t, got.LastLogin)
	assert.Equal(t, login, *got.LastLogin)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE\s+id\s*=\s*\$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_MalformedID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE\s+id\s*=\s*\$1`).
		WithArgs("42").
		WillReturnError(&pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"})

	_, err := repo.GetByID(context.Background(), "42")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE\s+id\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), "u-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestList_OrderAndNullLastLogin(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	login := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM\s+users\s+ORDER\s+BY\s+last_login\s+DESC\s+NULLS\s+LAST,\s*created_at\s+DESC$`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u-1", "admin@logitrack.com", "h", "Admin", login, login).
			AddRow("u-2", "new@logitrack.com", "h", "Staff", login, nil))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotNil(t, got[0].LastLogin)
	assert.Nil(t, got[1].LastLogin)
}

func TestUpdates(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		query string
		args  []any
		call  func(r *PostgresRepository) error
	}{
		{"role", `UPDATE\s+users\s+SET\s+role\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1`, []any{"u-1", "Driver"},
			func(r *PostgresRepository) error { return r.UpdateRole(context.Background(), "u-1", models.RoleDriver) }},
		{"password", `UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2`, []any{"u-1", "h2"},
			func(r *PostgresRepository) error { return r.UpdatePassword(context.Background(), "u-1", "h2") }},
		{"last login", `UPDATE\s+users\s+SET\s+last_login\s*=\s*\$2`, []any{"u-1", now},
			func(r *PostgresRepository) error { return r.TouchLastLogin(context.Background(), "u-1", now) }},
		{"delete", `DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1`, []any{"u-1"},
			func(r *PostgresRepository) error { return r.Delete(context.Background(), "u-1") }},
	}

	for _, tt := range tests {
		t.Run(tt.name+" ok", func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectExec(tt.query).WithArgs(toArgs(tt.args)...).WillReturnResult(sqlmock.NewResult(0, 1))
			require.NoError(t, tt.call(repo))
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run(tt.name+" missing", func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectExec(tt.query).WillReturnResult(sqlmock.NewResult(0, 0))
			assert.ErrorIs(t, tt.call(repo), common.ErrorNotFound)
		})

		t.Run(tt.name+" db error", func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectExec(tt.query).WillReturnError(errors.New("db err"))
			err := tt.call(repo)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "db error")
		})
	}
}
