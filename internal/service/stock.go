package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/paperman/internal/cache"
	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/repo"
	"github.com/Skotchmaster/paperman/internal/util"
	"github.com/Skotchmaster/paperman/pkg/logging"
)

const stockCacheKey = "stock:catalog"

var StockSort = map[string]string{
	"name":     "name",
	"category": "category",
	"type":     "type",
	"gsm":      "gsm",
	"weight":   "weight",
	"quantity": "quantity",
}

type StockItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Type      string    `json:"type"`
	GSM       float64   `json:"gsm"`
	Width     float64   `json:"width"`
	Length    float64   `json:"length"`
	Weight    float64   `json:"weight"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
}

type StockSummary struct {
	TotalProducts int `json:"total_products"`
	InStock       int `json:"in_stock"`
	LowStock      int `json:"low_stock"`
	OutOfStock    int `json:"out_of_stock"`
}

type StockPage struct {
	Data    []StockItem  `json:"data"`
	Meta    util.Meta    `json:"meta"`
	Summary StockSummary `json:"summary"`
}

type ProductSearcher interface {
	SearchProducts(ctx context.Context, query string, from, size int) ([]uuid.UUID, int64, error)
}

// StockService serves the public catalog: products with their summed active
// inventory.
type StockService struct {
	Repo      *repo.GormRepo
	Cache     cache.Cache
	Search    ProductSearcher
	Threshold int
	TTL       time.Duration

	// gen advances on every Invalidate; a rebuild started under an older
	// generation is not written back.
	gen atomic.Uint64
}

func NewStockService(r *repo.GormRepo, c cache.Cache, search ProductSearcher, threshold int, ttl time.Duration) *StockService {
	if c == nil {
		c = cache.Nop{}
	}
	if threshold <= 0 {
		threshold = models.DefaultLowStockThreshold
	}
	return &StockService{Repo: r, Cache: c, Search: search, Threshold: threshold, TTL: ttl}
}

func (s *StockService) build(ctx context.Context) ([]StockItem, error) {
	products, err := s.Repo.AllProducts(ctx, util.ListParams{Sort: "name"})
	if err != nil {
		return nil, err
	}
	qty, err := s.Repo.ActiveQuantities(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]StockItem, len(products))
	for i, p := range products {
		q := qty[p.ID]
		items[i] = StockItem{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Type:      p.Type,
			GSM:       p.GSM,
			Width:     p.Width,
			Length:    p.Length,
			Weight:    p.Weight,
			Quantity:  q,
			Status:    models.StockStatus(q, s.Threshold),
		}
	}
	return items, nil
}

// Catalog returns every product's stock, from the cache when possible.
// Cache failures are logged and the database is used.
func (s *StockService) Catalog(ctx context.Context) ([]StockItem, error) {
	l := logging.FromContext(ctx).With("svc", "stock.catalog")

	gen := s.gen.Load()
	var items []StockItem
	hit, err := s.Cache.Get(ctx, stockCacheKey, &items)
	if err != nil {
		l.Warn("stock_cache_get_failed", "error", err)
	}
	if hit {
		return items, nil
	}

	items, err = s.build(ctx)
	if err != nil {
		return nil, err
	}
	if s.gen.Load() != gen {
		l.Debug("stock_cache_set_skipped", "reason", "invalidated")
		return items, nil
	}
	if err := s.Cache.Set(ctx, stockCacheKey, items, s.TTL); err != nil {
		l.Warn("stock_cache_set_failed", "error", err)
	}
	return items, nil
}

func (s *StockService) Invalidate(ctx context.Context) error {
	s.gen.Add(1)
	return s.Cache.Delete(ctx, stockCacheKey)
}

func matchStock(it StockItem, p util.ListParams) bool {
	if c, ok := p.Filters["category"]; ok && !strings.EqualFold(c, it.Category) {
		return false
	}
	if t, ok := p.Filters["type"]; ok && !strings.EqualFold(t, it.Type) {
		return false
	}
	if st, ok := p.Filters["status"]; ok && !strings.EqualFold(st, it.Status) {
		return false
	}
	return p.Query == "" || util.ContainsFold(p.Query, it.Name, it.Category)
}

func sortStock(items []StockItem, p util.ListParams) {
	key, desc := p.Sort, p.Desc
	if _, ok := StockSort[key]; !ok {
		key, desc = "name", false
	}
	less := func(a, b StockItem) bool {
		switch key {
		case "category":
			return util.Fold(a.Category) < util.Fold(b.Category)
		case "type":
			return a.Type < b.Type
		case "gsm":
			return a.GSM < b.GSM
		case "weight":
			return a.Weight < b.Weight
		case "quantity":
			return a.Quantity < b.Quantity
		default:
			return util.Fold(a.Name) < util.Fold(b.Name)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func summarize(items []StockItem) StockSummary {
	sum := StockSummary{TotalProducts: len(items)}
	for _, it := range items {
		switch it.Status {
		case models.StockIn:
			sum.InStock++
		case models.StockLow:
			sum.LowStock++
		default:
			sum.OutOfStock++
		}
	}
	return sum
}

func paginate(items []StockItem, p util.ListParams) []StockItem {
	if p.Offset < 0 || p.Offset >= len(items) {
		return []StockItem{}
	}
	end := p.Offset + p.Size
	if end > len(items) || end < p.Offset || p.Size <= 0 {
		end = len(items)
	}
	return items[p.Offset:end]
}

// List filters by q (name or category), category, type and status. The
// summary counts the whole filtered set.
func (s *StockService) List(ctx context.Context, p util.ListParams) (StockPage, error) {
	all, err := s.Catalog(ctx)
	if err != nil {
		return StockPage{}, err
	}
	filtered := make([]StockItem, 0, len(all))
	for _, it := range all {
		if matchStock(it, p) {
			filtered = append(filtered, it)
		}
	}
	sortStock(filtered, p)
	return StockPage{
		Data:    paginate(filtered, p),
		Meta:    util.NewMeta(p.Page, p.Size, int64(len(filtered))),
		Summary: summarize(filtered),
	}, nil
}

func (s *StockService) Get(ctx context.Context, id uuid.UUID) (*StockItem, error) {
	all, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	for _, it := range all {
		if it.ProductID == id {
			return &it, nil
		}
	}
	if _, err := s.Repo.GetProduct(ctx, id); err != nil {
		return nil, storeErr(err, "product")
	}
	// created after the cached snapshot
	if err := s.Invalidate(ctx); err != nil {
		logging.FromContext(ctx).Warn("stock_cache_invalidate_failed", "error", err)
	}
	fresh, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	for _, it := range fresh {
		if it.ProductID == id {
			return &it, nil
		}
	}
	return nil, fmt.Errorf("product %w", ErrNotFound)
}

// SearchText uses the search index when configured and falls back to the
// catalog filter when it is missing or failing.
func (s *StockService) SearchText(ctx context.Context, p util.ListParams) (StockPage, error) {
	if s.Search == nil || p.Query == "" {
		return s.List(ctx, p)
	}
	l := logging.FromContext(ctx).With("svc", "stock.search")

	ids, total, err := s.Search.SearchProducts(ctx, p.Query, p.Offset, p.Size)
	if err != nil {
		l.Warn("search_failed", "reason", "falling back to database", "error", err)
		return s.List(ctx, p)
	}
	all, err := s.Catalog(ctx)
	if err != nil {
		return StockPage{}, err
	}
	byID := make(map[uuid.UUID]StockItem, len(all))
	for _, it := range all {
		byID[it.ProductID] = it
	}
	data := make([]StockItem, 0, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			data = append(data, it)
		}
	}
	return StockPage{
		Data:    data,
		Meta:    util.NewMeta(p.Page, p.Size, total),
		Summary: summarize(data),
	}, nil
}

// LowStock lists products below the threshold, lowest quantity first.
func (s *StockService) LowStock(ctx context.Context) ([]StockItem, error) {
	items, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StockItem, 0)
	for _, it := range items {
		if it.Status != models.StockIn {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}
