package identity

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/pkg/hash"
)

type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Local checks bcrypt hashes stored on users.
type Local struct {
	Users UserLookup
}

func NewLocal(users UserLookup) *Local {
	return &Local{Users: users}
}

func (l *Local) Authenticate(ctx context.Context, email, password string) error {
	u, err := l.Users.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if !hash.CheckPassword(u.PasswordHash, password) {
		return ErrInvalidCredentials
	}
	return nil
}
