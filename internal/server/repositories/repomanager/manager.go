package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/logitrack/internal/dbx"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/bookings"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/containers"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/settings"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can
// run the same code against *sql.DB or inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) tokens.Repository
	PasswordResets(db dbx.DBTX) tokens.Repository
	Containers(db dbx.DBTX) containers.Repository
	Bookings(db dbx.DBTX) bookings.Repository
	Settings(db dbx.DBTX) settings.Repository
}
