package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/repo"
	"github.com/Skotchmaster/paperman/internal/transport"
	"github.com/Skotchmaster/paperman/internal/util"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m *memCache) Set(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = b
	return nil
}

func (m *memCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type fakeSearch struct {
	ids []uuid.UUID
	err error
}

func (f fakeSearch) SearchProducts(context.Context, string, int, int) ([]uuid.UUID, int64, error) {
	return f.ids, int64(len(f.ids)), f.err
}

func addStock(t *testing.T, r *repo.GormRepo, p *models.Product, qty int, status string) {
	t.Helper()
	_, err := NewInventoryService(r, nil, time.UTC).Create(context.Background(), transport.InventoryRequest{
		ProductID: p.ID.String(), Quantity: transport.Num(float64(qty)), Date: "2025-01-01", Status: status,
	})
	require.NoError(t, err)
}

func stockParams(q url.Values) util.ListParams {
	return util.ParseListParams(q, StockSort, "category", "type", "status")
}

func TestStockStatusesAndSummary(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()

	empty := seedProduct(t, r, "Empty")
	low := seedProduct(t, r, "Low")
	full := seedProduct(t, r, "Full")
	addStock(t, r, low, 40, models.InventoryActive)
	addStock(t, r, low, 9, models.InventoryActive)
	addStock(t, r, low, 500, models.InventoryInactive)
	addStock(t, r, full, 50, models.InventoryActive)

	svc := NewStockService(r, nil, nil, 50, time.Minute)
	page, err := svc.List(ctx, stockParams(url.Values{}))
	require.NoError(t, err)
	require.Len(t, page.Data, 3)

	byName := map[string]StockItem{}
	for _, it := range page.Data {
		byName[it.Name] = it
	}
	assert.Equal(t, models.StockOut, byName["Empty"].Status)
	assert.Equal(t, 49, byName["Low"].Quantity)
	assert.Equal(t, models.StockLow, byName["Low"].Status)
	assert.Equal(t, models.StockIn, byName["Full"].Status)
	assert.Equal(t, StockSummary{TotalProducts: 3, InStock: 1, LowStock: 1, OutOfStock: 1}, page.Summary)

	page, err = svc.List(ctx, stockParams(url.Values{"sort": {"quantity"}, "order": {"desc"}, "size": {"2"}}))
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Full", page.Data[0].Name)
	assert.EqualValues(t, 3, page.Meta.Total)
	assert.True(t, page.Meta.HasNext)

	page, err = svc.List(ctx, stockParams(url.Values{"q": {"cat low"}}))
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, low.ID, page.Data[0].ProductID)

	item, err := svc.Get(ctx, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, item.Quantity)
	_, err = svc.Get(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)

	lows, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, lows, 2)
	assert.Equal(t, "Empty", lows[0].Name)
}

func TestStockCacheInvalidation(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()
	mc := &memCache{data: map[string][]byte{}}
	svc := NewStockService(r, mc, nil, 50, time.Minute)

	p := seedProduct(t, r, "Kraft")
	items, err := svc.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].Quantity)

	addStock(t, r, p, 70, models.InventoryActive)
	items, err = svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, items[0].Quantity, "served from cache")

	require.NoError(t, svc.Invalidate(ctx))
	items, err = svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 70, items[0].Quantity)
	assert.Equal(t, models.StockIn, items[0].Status)
}

// hookCache runs onGet once before delegating, to interleave writes with a
// catalog rebuild.
type hookCache struct {
	*memCache
	once  sync.Once
	onGet func()
}

func (h *hookCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	h.once.Do(h.onGet)
	return h.memCache.Get(ctx, key, dst)
}

func TestStockCacheSkipsSetAfterInvalidate(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()
	mc := &memCache{data: map[string][]byte{}}
	hc := &hookCache{memCache: mc}
	svc := NewStockService(r, hc, nil, 50, time.Minute)
	p := seedProduct(t, r, "Kraft")
	hc.onGet = func() {
		addStock(t, r, p, 70, models.InventoryActive)
		require.NoError(t, svc.Invalidate(ctx))
	}

	items, err := svc.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	mc.mu.Lock()
	_, cached := mc.data[stockCacheKey]
	mc.mu.Unlock()
	assert.False(t, cached)

	items, err = svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 70, items[0].Quantity)
	mc.mu.Lock()
	_, cached = mc.data[stockCacheKey]
	mc.mu.Unlock()
	assert.True(t, cached)
}

func TestStockListPageBeyondEnd(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	seedProduct(t, r, "Kraft")
	svc := NewStockService(r, nil, nil, 50, time.Minute)

	for _, page := range []string{"9223372036854775807", "4611686018427387904", "3"} {
		res, err := svc.List(context.Background(), stockParams(url.Values{"page": {page}, "size": {"100"}}))
		require.NoError(t, err, page)
		assert.Empty(t, res.Data, page)
		assert.EqualValues(t, 1, res.Meta.Total, page)
		assert.False(t, res.Meta.HasNext, page)
	}

	res, err := svc.List(context.Background(), util.ListParams{Offset: -5, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Data)
}

func TestStockSearch(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()
	a := seedProduct(t, r, "Alpha")
	b := seedProduct(t, r, "Beta")

	svc := NewStockService(r, nil, fakeSearch{ids: []uuid.UUID{b.ID, a.ID}}, 50, time.Minute)
	page, err := svc.SearchText(ctx, stockParams(url.Values{"q": {"anything"}}))
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Beta", page.Data[0].Name)

	svc.Search = fakeSearch{err: errors.New("es down")}
	page, err = svc.SearchText(ctx, stockParams(url.Values{"q": {"alp"}}))
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Alpha", page.Data[0].Name)
}
