package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/cryptox"
	"github.com/dmitrijs2005/logitrack/internal/dbx"
	"github.com/dmitrijs2005/logitrack/internal/server/auth"
	"github.com/dmitrijs2005/logitrack/internal/server/config"
	"github.com/dmitrijs2005/logitrack/internal/server/feed"
	"github.com/dmitrijs2005/logitrack/internal/server/models"
	"github.com/dmitrijs2005/logitrack/internal/server/notify"
	"github.com/dmitrijs2005/logitrack/internal/policy"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/logitrack/internal/server/session"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type LoginResult struct {
	Tokens *TokenPair
	User   *models.User
}

// PasswordHasher is implemented by *cryptox.Hasher.
type PasswordHasher interface {
	Hash(password []byte) (string, error)
	Verify(password []byte, encoded string) (bool, error)
}

// UserService handles sign-in, token rotation, password resets and the
// admin user management page.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	rules       *policy.Rules
	hasher      PasswordHasher
	notifier    notify.Notifier
	events      Publisher
	now         func() time.Time

	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	adminEmail                   string
	autoRegister                 bool
	resetTokenValidity           time.Duration
	resetURLBase                 string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, events Publisher, notifier notify.Notifier) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		rules:                        policy.DefaultRules(),
		hasher:                       cryptox.NewHasher(cryptox.DefaultParams),
		notifier:                     notifier,
		events:                       events,
		now:                          time.Now,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		adminEmail:                   normalizeEmail(cfg.AdminEmail),
		autoRegister:                 cfg.AutoRegister,
		resetTokenValidity:           cfg.ResetTokenValidity,
		resetURLBase:                 cfg.ResetURLBase,
	}
}

// Authenticate resolves an access token to a session. The user record is
// read on every call so role changes and deletions apply immediately.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (session.Session, error) {
	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		return session.Session{}, err
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return session.Session{}, common.ErrorUnauthorized
		}
		return session.Session{}, fmt.Errorf("error loading session user: %w", err)
	}
	return session.FromUser(user), nil
}

// Login verifies credentials and mints a token pair. Unknown emails are
// registered on the fly when auto-registration is enabled.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		if !s.autoRegister {
			return nil, common.ErrorUnauthorized
		}
		user, err = s.createUser(ctx, email, password, s.bootstrapRole(email), &now)
		if err == nil {
			return s.loginResult(ctx, user)
		}
		if !errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		// a concurrent first sign-in registered the address; treat it as existing
		user, err = repo.GetByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	ok, err := s.hasher.Verify([]byte(password), user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	if err := repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("error updating last login: %w", err)
	}
	user.LastLogin = &now

	return s.loginResult(ctx, user)
}

func (s *UserService) loginResult(ctx context.Context, user *models.User) (*LoginResult, error) {
	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Tokens: pair, User: user}, nil
}

// RefreshToken consumes a refresh token and mints a fresh TokenPair in the
// same transaction, so a token can be redeemed once. Expired tokens yield
// ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error consuming refresh token: %w", err)
		}
		if token.Expires.Before(s.now()) {
			return common.ErrRefreshTokenExpired
		}
		pair, err = s.generateTokenPair(ctx, token.UserID, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

func (s *UserService) Me(ctx context.Context) (*models.User, error) {
	sess, err := authorize(ctx, s.rules, policy.Authenticated)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Users(s.db).GetByID(ctx, sess.UserID)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	if _, err := authorize(ctx, s.rules, policy.UsersList); err != nil {
		return nil, err
	}
	return s.repomanager.Users(s.db).List(ctx)
}

// CreateUser adds an account on behalf of an admin. The new user has never
// signed in, so last_login stays empty. An empty role means Staff.
func (s *UserService) CreateUser(ctx context.Context, email, password, role string) (*models.User, error) {
	if _, err := authorize(ctx, s.rules, policy.UsersCreate); err != nil {
		return nil, err
	}

	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	r := models.RoleStaff
	if role != "" {
		var err error
		if r, err = models.ParseRole(role); err != nil {
			return nil, err
		}
	}

	return s.createUser(ctx, email, password, r, nil)
}

func (s *UserService) ChangeRole(ctx context.Context, userID, role string) (*models.User, error) {
	if _, err := authorize(ctx, s.rules, policy.UsersChangeRole); err != nil {
		return nil, err
	}
	r, err := models.ParseRole(role)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.isProtected(user) {
		return nil, fmt.Errorf("%w: the role of %s cannot be changed", common.ErrorProtectedUser, user.Email)
	}
	if err := repo.UpdateRole(ctx, userID, r); err != nil {
		return nil, err
	}
	user.Role = r

	s.events.Emit(ctx, feed.Users, feed.OpUpdated, user.ID, user)
	return user, nil
}

// DeleteUser removes the account and, through the foreign keys, its tokens.
// Admins cannot delete themselves or the bootstrap admin.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	sess, err := authorize(ctx, s.rules, policy.UsersDelete)
	if err != nil {
		return err
	}
	if userID == sess.UserID {
		return fmt.Errorf("%w: you cannot delete your own account", common.ErrorProtectedUser)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if s.isProtected(user) {
		return fmt.Errorf("%w: %s cannot be deleted", common.ErrorProtectedUser, user.Email)
	}
	if err := repo.Delete(ctx, userID); err != nil {
		return err
	}

	s.events.Emit(ctx, feed.Users, feed.OpDeleted, userID, nil)
	return nil
}

// SendPasswordReset issues a reset token for email and hands the link to
// the notifier.
func (s *UserService) SendPasswordReset(ctx context.Context, email string) error {
	if _, err := authorize(ctx, s.rules, policy.UsersSendReset); err != nil {
		return err
	}

	email = normalizeEmail(email)
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrorInternal
	}
	if err := s.repomanager.PasswordResets(s.db).Create(ctx, user.ID, token, s.resetTokenValidity); err != nil {
		return fmt.Errorf("error storing reset token: %w", err)
	}

	link := s.resetURLBase + "?token=" + url.QueryEscape(token)
	if err := s.notifier.SendPasswordReset(ctx, user.Email, link, s.now().Add(s.resetTokenValidity)); err != nil {
		return fmt.Errorf("error sending reset link: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token, sets the new password and signs the
// user out everywhere. It needs no session.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		resets := s.repomanager.PasswordResets(tx)
		rec, err := resets.Consume(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return err
		}
		if rec.Expires.Before(s.now()) {
			return common.ErrInvalidToken
		}
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, rec.UserID, hash); err != nil {
			return err
		}
		if err := resets.DeleteByUser(ctx, rec.UserID); err != nil {
			return err
		}
		return s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, rec.UserID)
	})
}

// --- helpers below ---

func (s *UserService) bootstrapRole(email string) models.Role {
	if email == s.adminEmail {
		return models.RoleAdmin
	}
	return models.RoleStaff
}

func (s *UserService) isProtected(u *models.User) bool {
	return s.adminEmail != "" && normalizeEmail(u.Email) == s.adminEmail
}

func (s *UserService) createUser(ctx context.Context, email, password string, role models.Role, lastLogin *time.Time) (*models.User, error) {
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		LastLogin:    lastLogin,
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(ctx, feed.Users, feed.OpCreated, user.ID, user)
	return user, nil
}

func (s *UserService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
