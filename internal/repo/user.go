package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/util"
	"github.com/Skotchmaster/paperman/pkg/tokens"
)

var (
	UserSort = map[string]string{
		"username":   "username",
		"first_name": "first_name",
		"last_name":  "last_name",
		"email":      "email",
		"role":       "role",
		"created_at": "created_at",
	}

	userSpec = listSpec{
		filters: map[string]string{"role": "role"},
		search:  []string{"username", "first_name", "last_name", "email", "phone"},
	}
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return getByID[models.User](ctx, r.DB, id)
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) ListUsers(ctx context.Context, p util.ListParams) ([]models.User, int64, error) {
	return list[models.User](ctx, r.DB, p, userSpec)
}

func (r *GormRepo) UpdateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Save(u).Error
}

// DeleteUser drops the user's refresh tokens with it.
func (r *GormRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return deleteByID[models.User](tx, id)
	})
}

func (r *GormRepo) AddRefreshToken(ctx context.Context, userID uuid.UUID, iss tokens.Issued) error {
	rt := models.RefreshToken{
		Token:     tokens.Sha256Hex(iss.Token),
		UserID:    userID,
		JTI:       iss.JTI,
		ExpiresAt: iss.ExpiresAt.Unix(),
	}
	return r.DB.WithContext(ctx).Create(&rt).Error
}

func refreshUsable(tx *gorm.DB, jti, rawToken string) error {
	var rt models.RefreshToken
	if err := tx.Where("jti = ?", jti).First(&rt).Error; err != nil {
		return err
	}
	if rt.Revoked || rt.ExpiresAt < time.Now().Unix() || rt.Token != tokens.Sha256Hex(rawToken) {
		return ErrTokenRevoked
	}
	return nil
}

// RotateRefreshToken revokes the presented token and stores its successor in
// one transaction.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, oldRaw string, userID uuid.UUID, next tokens.Issued) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := refreshUsable(tx, oldJTI, oldRaw); err != nil {
			return err
		}
		res := tx.Model(&models.RefreshToken{}).
			Where("jti = ? AND revoked = ?", oldJTI, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenRevoked
		}
		return tx.Create(&models.RefreshToken{
			Token:     tokens.Sha256Hex(next.Token),
			UserID:    userID,
			JTI:       next.JTI,
			ExpiresAt: next.ExpiresAt.Unix(),
		}).Error
	})
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, rawToken string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", tokens.Sha256Hex(rawToken)).
		Update("revoked", true).Error
}

// PurgeRefreshTokens deletes tokens that are revoked or expired before now.
func (r *GormRepo) PurgeRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("revoked = ? OR expires_at < ?", true, now.Unix()).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}
