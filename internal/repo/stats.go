package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/paperman/internal/models"
)

type GroupCount struct {
	Label string `json:"label"`
	Total int64  `json:"total"`
}

type EntityCounts struct {
	Categories int64 `json:"categories"`
	Products   int64 `json:"products"`
	Inventory  int64 `json:"inventory"`
	Customers  int64 `json:"customers"`
	Enquiries  int64 `json:"enquiries"`
	Users      int64 `json:"users"`
}

func (r *GormRepo) CountEntities(ctx context.Context) (EntityCounts, error) {
	var out EntityCounts
	targets := []struct {
		model any
		dst   *int64
	}{
		{&models.Category{}, &out.Categories},
		{&models.Product{}, &out.Products},
		{&models.Inventory{}, &out.Inventory},
		{&models.Customer{}, &out.Customers},
		{&models.Lead{}, &out.Enquiries},
		{&models.User{}, &out.Users},
	}
	for _, t := range targets {
		if err := r.DB.WithContext(ctx).Model(t.model).Count(t.dst).Error; err != nil {
			return EntityCounts{}, err
		}
	}
	return out, nil
}

func (r *GormRepo) groupCounts(ctx context.Context, model any, column string) ([]GroupCount, error) {
	var rows []GroupCount
	err := r.DB.WithContext(ctx).Model(model).
		Select(column + " AS label, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	return rows, err
}

// fixedCounts returns one entry per label in order, zero when absent, followed
// by any unexpected labels found in rows.
func fixedCounts(labels []string, rows []GroupCount) []GroupCount {
	byLabel := make(map[string]int64, len(rows))
	for _, row := range rows {
		byLabel[row.Label] += row.Total
	}
	out := make([]GroupCount, 0, len(labels))
	for _, l := range labels {
		out = append(out, GroupCount{Label: l, Total: byLabel[l]})
		delete(byLabel, l)
	}
	for _, row := range rows {
		if n, ok := byLabel[row.Label]; ok {
			out = append(out, GroupCount{Label: row.Label, Total: n})
			delete(byLabel, row.Label)
		}
	}
	return out
}

// ProductsPerCategory lists every category, including those without products.
func (r *GormRepo) ProductsPerCategory(ctx context.Context) ([]GroupCount, error) {
	var rows []GroupCount
	err := r.DB.WithContext(ctx).Model(&models.Category{}).
		Select("categories.name AS label, COUNT(products.id) AS total").
		Joins("LEFT JOIN products ON products.category = categories.name").
		Group("categories.name").
		Order("total DESC, categories.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *GormRepo) LeadsPerStatus(ctx context.Context) ([]GroupCount, error) {
	rows, err := r.groupCounts(ctx, &models.Lead{}, "status")
	if err != nil {
		return nil, err
	}
	return fixedCounts([]string{models.LeadOpen, models.LeadConverted, models.LeadClosed}, rows), nil
}

func (r *GormRepo) InventoryPerStatus(ctx context.Context) ([]GroupCount, error) {
	rows, err := r.groupCounts(ctx, &models.Inventory{}, "status")
	if err != nil {
		return nil, err
	}
	return fixedCounts([]string{models.InventoryActive, models.InventoryInactive}, rows), nil
}

type createdRow struct {
	CreatedAt time.Time
}

// CreatedSince returns creation times of model rows on or after since.
func (r *GormRepo) CreatedSince(ctx context.Context, model any, since time.Time) ([]time.Time, error) {
	var rows []createdRow
	q := r.DB.WithContext(ctx).Model(model).Select("created_at")
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since.UTC())
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]time.Time, len(rows))
	for i, row := range rows {
		out[i] = row.CreatedAt
	}
	return out, nil
}

func (r *GormRepo) ActiveInventoryQuantities(ctx context.Context) ([]float64, error) {
	var qty []int64
	if err := r.DB.WithContext(ctx).Model(&models.Inventory{}).
		Where("status = ?", models.InventoryActive).
		Pluck("quantity", &qty).Error; err != nil {
		return nil, err
	}
	out := make([]float64, len(qty))
	for i, q := range qty {
		out[i] = float64(q)
	}
	return out, nil
}
