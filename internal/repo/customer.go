package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/util"
)

var (
	CustomerSort = map[string]string{
		"first_name":   "first_name",
		"last_name":    "last_name",
		"company_name": "company_name",
		"email":        "email",
		"created_at":   "created_at",
		"updated_at":   "updated_at",
	}

	customerSpec = listSpec{
		search: []string{"first_name", "last_name", "company_name", "email", "phone", "gst_number"},
	}
)

func (r *GormRepo) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return getByID[models.Customer](ctx, r.DB, id)
}

func (r *GormRepo) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	return customerByEmail(r.DB.WithContext(ctx), email)
}

func customerByEmail(tx *gorm.DB, email string) (*models.Customer, error) {
	var c models.Customer
	if err := tx.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) ListCustomers(ctx context.Context, p util.ListParams) ([]models.Customer, int64, error) {
	return list[models.Customer](ctx, r.DB, p, customerSpec)
}

func (r *GormRepo) AllCustomers(ctx context.Context, p util.ListParams) ([]models.Customer, error) {
	var items []models.Customer
	err := r.DB.WithContext(ctx).Scopes(customerSpec.scope(p)).Order(p.OrderClause()).Find(&items).Error
	return items, err
}

func (r *GormRepo) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	return r.DB.WithContext(ctx).Save(c).Error
}

// DeleteCustomer detaches the customer's leads before removing it.
func (r *GormRepo) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Lead{}).Where("customer_id = ?", id).Update("customer_id", nil).Error; err != nil {
			return err
		}
		return deleteByID[models.Customer](tx, id)
	})
}

func (r *GormRepo) LeadsForCustomer(ctx context.Context, id uuid.UUID) ([]models.Lead, error) {
	var items []models.Lead
	err := r.DB.WithContext(ctx).Where("customer_id = ?", id).Order("created_at DESC").Find(&items).Error
	return items, err
}
