package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/util"
)

var (
	CategorySort = map[string]string{
		"name":       "name",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	ProductSort = map[string]string{
		"name":       "name",
		"category":   "category",
		"type":       "type",
		"gsm":        "gsm",
		"width":      "width",
		"length":     "length",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}

	categorySpec = listSpec{search: []string{"name", "description"}}
	productSpec  = listSpec{
		filters: map[string]string{"category": "category", "type": "type"},
		search:  []string{"name", "category", "type"},
	}
)

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return getByID[models.Category](ctx, r.DB, id)
}

func (r *GormRepo) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) ListCategories(ctx context.Context, p util.ListParams) ([]models.Category, int64, error) {
	return list[models.Category](ctx, r.DB, p, categorySpec)
}

// UpdateCategory saves c and, when the name changed, renames the category on
// every product that references oldName.
// UpdateCategory saves c and moves products from oldName to the new name,
// returning the moved products as stored after the rename.
func (r *GormRepo) UpdateCategory(ctx context.Context, c *models.Category, oldName string) ([]models.Product, error) {
	var moved []models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(c).Error; err != nil {
			return err
		}
		if oldName == "" || oldName == c.Name {
			return nil
		}
		if err := tx.Where("category = ?", oldName).Order("name ASC").Find(&moved).Error; err != nil {
			return err
		}
		if len(moved) == 0 {
			return nil
		}
		if err := tx.Model(&models.Product{}).
			Where("category = ?", oldName).
			Update("category", c.Name).Error; err != nil {
			return err
		}
		for i := range moved {
			moved[i].Category = c.Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// DeleteCategory refuses with ErrInUse while products still use the category.
func (r *GormRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.Where("id = ?", id).First(&c).Error; err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Product{}).Where("category = ?", c.Name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrInUse
		}
		return deleteByID[models.Category](tx, id)
	})
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return getByID[models.Product](ctx, r.DB, id)
}

func (r *GormRepo) ListProducts(ctx context.Context, p util.ListParams) ([]models.Product, int64, error) {
	return list[models.Product](ctx, r.DB, p, productSpec)
}

// AllProducts returns every product matching the list filters, unpaginated.
func (r *GormRepo) AllProducts(ctx context.Context, p util.ListParams) ([]models.Product, error) {
	var items []models.Product
	err := r.DB.WithContext(ctx).Scopes(productSpec.scope(p)).Order(p.OrderClause()).Find(&items).Error
	return items, err
}

func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var items []models.Product
	if len(ids) == 0 {
		return items, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *GormRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

// DeleteProduct refuses with ErrInUse while inventory rows reference it.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Inventory{}).Where("product_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrInUse
		}
		return deleteByID[models.Product](tx, id)
	})
}
