package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/paperman/internal/identity"
	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/repo"
	"github.com/Skotchmaster/paperman/pkg/hash"
	"github.com/Skotchmaster/paperman/pkg/logging"
	"github.com/Skotchmaster/paperman/pkg/tokens"
)

type AuthService struct {
	Repo          *repo.GormRepo
	Identity      identity.Provider
	JWTSecret     []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type LoginResult struct {
	User    *models.User
	Access  tokens.Issued
	Refresh tokens.Issued
	IsAdmin bool
}

func (s *AuthService) issue(ctx context.Context, u *models.User) (*LoginResult, error) {
	access, err := tokens.NewAccessToken(s.JWTSecret, u.ID.String(), u.Role, u.Email, s.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := tokens.NewRefreshToken(s.RefreshSecret, u.ID.String(), s.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, Access: access, Refresh: refresh, IsAdmin: u.IsAdmin()}, nil
}

// Login checks credentials with the identity provider and issues a token
// pair for the matching CRM user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	f := fieldErrors{}
	required(f, "email", email, "email")
	required(f, "password", password, "password")
	if err := f.err(); err != nil {
		return nil, err
	}
	email = normEmail(email)

	if err := s.Identity.Authenticate(ctx, email, password); err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
		}
		l.Error("login_failed", "reason", "identity provider error", "error", err)
		return nil, err
	}

	u, err := s.Repo.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no account for %s: %w", email, ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	res, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, u.ID, res.Refresh); err != nil {
		return nil, err
	}
	return res, nil
}

// Refresh rotates the presented refresh token.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*LoginResult, error) {
	if rawRefresh == "" {
		return nil, fmt.Errorf("refresh token missing: %w", ErrUnauthorized)
	}
	claims, err := tokens.RefreshClaimsFromToken(rawRefresh, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}
	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}
	u, err := s.Repo.GetUser(ctx, uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user no longer exists: %w", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	res, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	err = s.Repo.RotateRefreshToken(ctx, claims.ID, rawRefresh, u.ID, res.Refresh)
	if errors.Is(err, repo.ErrTokenRevoked) || errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("refresh token expired or revoked: %w", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *AuthService) Logout(ctx context.Context, rawRefresh string) error {
	if rawRefresh == "" {
		return nil
	}
	return s.Repo.RevokeRefreshToken(ctx, rawRefresh)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", ErrUnauthorized)
	}
	u, err := s.Repo.GetUser(ctx, uid)
	return u, storeErr(err, "user")
}

// EnsureAdmin creates the bootstrap admin when email is set and unused. It
// reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normEmail(email)
	if email == "" {
		return false, nil
	}
	_, err := s.Repo.GetUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if len(password) < hash.MinPasswordLength {
		return false, fmt.Errorf("ADMIN_PASSWORD must be at least %d characters", hash.MinPasswordLength)
	}
	pw, err := hash.HashPassword(password)
	if err != nil {
		return false, err
	}
	username, _, _ := strings.Cut(email, "@")
	u := models.User{
		Username:     username,
		FirstName:    "Admin",
		LastName:     "User",
		Email:        email,
		Role:         models.RoleAdmin,
		PasswordHash: pw,
	}
	if err := s.Repo.CreateUser(ctx, &u); err != nil {
		return false, storeErr(err, "user")
	}
	return true, nil
}

// PurgeTokens deletes expired and revoked refresh tokens.
func (s *AuthService) PurgeTokens(ctx context.Context) (int64, error) {
	return s.Repo.PurgeRefreshTokens(ctx, time.Now())
}
