// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/logitrack/internal/dbx"
	"github.com/dmitrijs2005/logitrack/internal/server/migrations"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/bookings"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/containers"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/settings"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) tokens.Repository {
	return tokens.NewPostgresRepository(db, tokens.RefreshTokens)
}

func (m *PostgresRepositoryManager) PasswordResets(db dbx.DBTX) tokens.Repository {
	return tokens.NewPostgresRepository(db, tokens.PasswordResets)
}

func (m *PostgresRepositoryManager) Containers(db dbx.DBTX) containers.Repository {
	return containers.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Bookings(db dbx.DBTX) bookings.Repository {
	return bookings.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Settings(db dbx.DBTX) settings.Repository {
	return settings.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
