package users

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/dbx"
	"github.com/dmitrijs2005/logitrack/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `SELECT id, email, password_hash, role, created_at, last_login FROM users`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var lastLogin sql.NullTime
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &lastLogin); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLogin = &t
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, password_hash, role, last_login)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	var lastLogin sql.NullTime
	if user.LastLogin != nil {
		lastLogin = sql.NullTime{Time: *user.LastLogin, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Role, lastLogin).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("user %s %w", user.Email, common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectColumns+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectColumns+` WHERE email = $1`, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, dbx.LookupError(err, common.ErrorNotFound)
	}
	return user, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY last_login DESC NULLS LAST, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return dbx.LookupError(err, common.ErrorNotFound)
	}
	return dbx.RowsAffectedOne(res, common.ErrorNotFound)
}

func (r *PostgresRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return r.exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, role)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
}

func (r *PostgresRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
}
