package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/util"
	"github.com/Skotchmaster/paperman/pkg/db"
)

var (
	ErrInUse        = errors.New("record is still referenced")
	ErrTokenRevoked = errors.New("token expired or revoked")
)

type GormRepo struct {
	DB *gorm.DB
}

func New(gdb *gorm.DB) *GormRepo {
	return &GormRepo{DB: gdb}
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(models.All()...)
}

func (r *GormRepo) Ping(ctx context.Context) error {
	return db.Ping(ctx, r.DB)
}

// listSpec describes how list parameters map onto a table.
type listSpec struct {
	// filters maps query parameter names to columns compared by equality.
	filters map[string]string
	// search lists the text columns matched by the global filter.
	search []string
}

func (s listSpec) scope(p util.ListParams) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		for key, col := range s.filters {
			if v, ok := p.Filters[key]; ok {
				tx = tx.Where(col+" = ?", v)
			}
		}
		if p.Query != "" && len(s.search) > 0 {
			like := "%" + escapeLike(util.Fold(p.Query)) + "%"
			parts := make([]string, 0, len(s.search))
			args := make([]any, 0, len(s.search))
			for _, col := range s.search {
				parts = append(parts, "LOWER("+col+") LIKE ? ESCAPE '\\'")
				args = append(args, like)
			}
			tx = tx.Where("("+strings.Join(parts, " OR ")+")", args...)
		}
		return tx
	}
}

func list[T any](ctx context.Context, gdb *gorm.DB, p util.ListParams, spec listSpec) ([]T, int64, error) {
	scope := spec.scope(p)

	var total int64
	if err := gdb.WithContext(ctx).Model(new(T)).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0, p.Size)
	if err := gdb.WithContext(ctx).Scopes(scope).
		Order(p.OrderClause()).
		Offset(p.Offset).
		Limit(p.Size).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func getByID[T any](ctx context.Context, gdb *gorm.DB, id uuid.UUID) (*T, error) {
	var v T
	if err := gdb.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func deleteByID[T any](tx *gorm.DB, id uuid.UUID) error {
	res := tx.Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
