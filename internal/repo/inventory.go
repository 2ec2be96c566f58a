package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/util"
)

var (
	InventorySort = map[string]string{
		"quantity":   "quantity",
		"date":       "date",
		"status":     "status",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}

	inventorySpec = listSpec{
		filters: map[string]string{"product_id": "product_id", "status": "status"},
		search:  []string{"remarks", "status"},
	}
)

func (r *GormRepo) CreateInventory(ctx context.Context, inv *models.Inventory) error {
	return r.DB.WithContext(ctx).Create(inv).Error
}

func (r *GormRepo) GetInventory(ctx context.Context, id uuid.UUID) (*models.Inventory, error) {
	return getByID[models.Inventory](ctx, r.DB, id)
}

func (r *GormRepo) ListInventory(ctx context.Context, p util.ListParams) ([]models.Inventory, int64, error) {
	return list[models.Inventory](ctx, r.DB, p, inventorySpec)
}

func (r *GormRepo) AllInventory(ctx context.Context, p util.ListParams) ([]models.Inventory, error) {
	var items []models.Inventory
	err := r.DB.WithContext(ctx).Scopes(inventorySpec.scope(p)).Order(p.OrderClause()).Find(&items).Error
	return items, err
}

func (r *GormRepo) UpdateInventory(ctx context.Context, inv *models.Inventory) error {
	return r.DB.WithContext(ctx).Save(inv).Error
}

func (r *GormRepo) DeleteInventory(ctx context.Context, id uuid.UUID) error {
	return deleteByID[models.Inventory](r.DB.WithContext(ctx), id)
}

type productQuantity struct {
	ProductID uuid.UUID
	Quantity  int64
}

// ActiveQuantities sums the quantity of active inventory per product.
func (r *GormRepo) ActiveQuantities(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []productQuantity
	if err := r.DB.WithContext(ctx).Model(&models.Inventory{}).
		Select("product_id, COALESCE(SUM(quantity), 0) AS quantity").
		Where("status = ?", models.InventoryActive).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		out[row.ProductID] = int(row.Quantity)
	}
	return out, nil
}

// ActiveInventoryFor returns active records of the given products, largest
// quantity first.
func (r *GormRepo) ActiveInventoryFor(ctx context.Context, productIDs []uuid.UUID) ([]models.Inventory, error) {
	var items []models.Inventory
	if len(productIDs) == 0 {
		return items, nil
	}
	err := r.DB.WithContext(ctx).
		Where("status = ? AND product_id IN ?", models.InventoryActive, productIDs).
		Order("quantity DESC").
		Find(&items).Error
	return items, err
}
