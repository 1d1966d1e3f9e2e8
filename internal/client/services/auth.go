// Package services contains the console's application services. Each one
// talks to the server first and keeps the local cache in step so listings
// still work while the server is unreachable.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/logitrack/internal/client/client"
	"github.com/dmitrijs2005/logitrack/internal/client/repositories/bookings"
	"github.com/dmitrijs2005/logitrack/internal/client/repositories/containers"
	"github.com/dmitrijs2005/logitrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/logitrack/internal/cryptox"
	"github.com/dmitrijs2005/logitrack/internal/dbx"
)

// Session is the signed-in identity as the console sees it.
type Session struct {
	UserID  string
	Email   string
	Role    string
	Offline bool
}

// AuthService covers sign-in, sign-out and server liveness.
type AuthService interface {
	// OnlineLogin signs in against the server and stores what OfflineLogin
	// needs later.
	OnlineLogin(ctx context.Context, email string, password []byte) (*Session, error)
	// OfflineLogin checks the password against the verifier stored by the
	// last online login. It returns client.ErrLocalDataNotAvailable when no
	// one has logged in on this machine yet.
	OfflineLogin(ctx context.Context, email string, password []byte) (*Session, error)
	// Logout revokes the server session when reachable and always wipes
	// local data.
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context, token string, newPassword []byte) error
	Ping(ctx context.Context) error
	Close() error
}

type authService struct {
	client client.Client
	db     *sql.DB
	hasher *cryptox.Hasher
}

func NewAuthService(c client.Client, db *sql.DB) AuthService {
	return &authService{client: c, db: db, hasher: cryptox.NewHasher(cryptox.DefaultParams)}
}

func (a *authService) OnlineLogin(ctx context.Context, email string, password []byte) (*Session, error) {
	user, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	verifier, err := a.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash error: %w", err)
	}

	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// a different account must not inherit the previous user's cache
		prev, ok, err := metadata.NewSQLiteRepository(tx).Get(ctx, metadata.KeyUserID)
		if err != nil {
			return err
		}
		if ok && string(prev) != user.ID {
			if err := clearCaches(ctx, tx); err != nil {
				return err
			}
		}
		return metadata.NewSQLiteRepository(tx).SetAll(ctx, map[string][]byte{
			metadata.KeyUserID:       []byte(user.ID),
			metadata.KeyEmail:        []byte(user.Email),
			metadata.KeyRole:         []byte(user.Role),
			metadata.KeyPasswordHash: []byte(verifier),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("offline data saving error: %w", err)
	}

	return &Session{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

func (a *authService) OfflineLogin(ctx context.Context, email string, password []byte) (*Session, error) {
	repo := metadata.NewSQLiteRepository(a.db)

	values := make(map[string]string, 4)
	for _, k := range []string{metadata.KeyUserID, metadata.KeyEmail, metadata.KeyRole, metadata.KeyPasswordHash} {
		v, ok, err := repo.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, client.ErrLocalDataNotAvailable
		}
		values[k] = string(v)
	}

	if !strings.EqualFold(values[metadata.KeyEmail], email) {
		return nil, client.ErrUnauthorized
	}

	ok, err := a.hasher.Verify(password, values[metadata.KeyPasswordHash])
	if err != nil {
		return nil, fmt.Errorf("verify error: %w", err)
	}
	if !ok {
		return nil, client.ErrUnauthorized
	}

	return &Session{
		UserID:  values[metadata.KeyUserID],
		Email:   values[metadata.KeyEmail],
		Role:    values[metadata.KeyRole],
		Offline: true,
	}, nil
}

func (a *authService) Logout(ctx context.Context) error {
	remoteErr := a.client.Logout(ctx)
	if errors.Is(remoteErr, client.ErrUnavailable) {
		remoteErr = nil
	}

	localErr := dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := metadata.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		return clearCaches(ctx, tx)
	})

	return errors.Join(remoteErr, localErr)
}

func (a *authService) ResetPassword(ctx context.Context, token string, newPassword []byte) error {
	return a.client.ResetPassword(ctx, token, string(newPassword))
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close() error {
	return a.client.Close()
}

func clearCaches(ctx context.Context, tx dbx.DBTX) error {
	if err := containers.NewSQLiteRepository(tx).Clear(ctx); err != nil {
		return err
	}
	return bookings.NewSQLiteRepository(tx).Clear(ctx)
}
