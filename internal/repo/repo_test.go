package repo

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/testutil"
	"github.com/Skotchmaster/paperman/internal/util"
	"github.com/Skotchmaster/paperman/pkg/tokens"
)

func newRepo(t *testing.T) *GormRepo {
	t.Helper()
	return New(testutil.NewDB(t))
}

func seedProduct(t *testing.T, r *GormRepo, name, category, typ string) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Category: category, Type: typ, GSM: 80, Width: 1000, Length: 100}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func TestListProductsFiltersSearchAndSort(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()

	seedProduct(t, r, "Brown Kraft", "Kraft", models.ProductTypeReel)
	seedProduct(t, r, "White Kraft", "Kraft", models.ProductTypeBundle)
	seedProduct(t, r, "Duplex Board", "Duplex", models.ProductTypeBundle)

	p := util.ParseListParams(url.Values{"q": {"KRAFT"}, "sort": {"name"}}, ProductSort, "category", "type")
	items, total, err := r.ListProducts(ctx, p)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Brown Kraft", items[0].Name)
	assert.InDelta(t, 8.0, items[0].Weight, 1e-9)

	p = util.ParseListParams(url.Values{"type": {"bundle"}, "size": {"1"}}, ProductSort, "category", "type")
	items, total, err = r.ListProducts(ctx, p)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 1)

	p = util.ParseListParams(url.Values{"q": {"50%"}}, ProductSort)
	_, total, err = r.ListProducts(ctx, p)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestCategoryRenameCascadesAndDeleteGuard(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()

	c := &models.Category{Name: "Kraft"}
	require.NoError(t, r.CreateCategory(ctx, c))
	p := seedProduct(t, r, "Brown", "Kraft", models.ProductTypeReel)

	require.ErrorIs(t, r.DeleteCategory(ctx, c.ID), ErrInUse)

	c.Name = "Kraft Paper"
	moved, err := r.UpdateCategory(ctx, c, "Kraft")
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, p.ID, moved[0].ID)
	assert.Equal(t, "Kraft Paper", moved[0].Category)

	c.Description = "brown"
	moved, err = r.UpdateCategory(ctx, c, "Kraft Paper")
	require.NoError(t, err)
	assert.Empty(t, moved)

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kraft Paper", got.Category)

	byName, err := r.GetCategoryByName(ctx, "kraft paper")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byName.ID)

	require.NoError(t, r.DeleteProduct(ctx, p.ID))
	require.NoError(t, r.DeleteCategory(ctx, c.ID))
	require.ErrorIs(t, r.DeleteCategory(ctx, c.ID), gorm.ErrRecordNotFound)
}

func TestProductDeleteGuardAndQuantities(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()

	p := seedProduct(t, r, "Brown", "Kraft", models.ProductTypeReel)
	other := seedProduct(t, r, "White", "Kraft", models.ProductTypeReel)
	for _, inv := range []models.Inventory{
		{ProductID: p.ID, Quantity: 30, Date: time.Now(), Status: models.InventoryActive},
		{ProductID: p.ID, Quantity: 25, Date: time.Now(), Status: models.InventoryActive},
		{ProductID: p.ID, Quantity: 100, Date: time.Now(), Status: models.InventoryInactive},
	} {
		inv := inv
		require.NoError(t, r.CreateInventory(ctx, &inv))
	}

	require.ErrorIs(t, r.DeleteProduct(ctx, p.ID), ErrInUse)

	q, err := r.ActiveQuantities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 55, q[p.ID])
	assert.Zero(t, q[other.ID])

	best, err := r.ActiveInventoryFor(ctx, []uuid.UUID{p.ID})
	require.NoError(t, err)
	require.Len(t, best, 2)
	assert.Equal(t, 30, best[0].Quantity)

	require.ErrorIs(t, r.DeleteInventory(ctx, uuid.New()), gorm.ErrRecordNotFound)
}

func TestCreateLeadWithCustomerLinksByEmail(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()

	first := &models.Lead{Reference: "ENQ-1", Kind: models.LeadKindEnquiry, Name: "Asha Rao Kumar", Email: "Asha@Example.com", Phone: "9876543210", Status: models.LeadOpen}
	c1, created, err := r.CreateLeadWithCustomer(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Asha", c1.FirstName)
	assert.Equal(t, "Rao Kumar", c1.LastName)
	assert.Equal(t, "asha@example.com", c1.Email)
	require.NotNil(t, first.CustomerID)

	second := &models.Lead{Reference: "QTE-2", Kind: models.LeadKindQuote, Name: "Asha", Email: "asha@example.com", Company: "Rao Traders", Status: models.LeadOpen}
	c2, created, err := r.CreateLeadWithCustomer(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, c1.ID, c2.ID)
	assert.Equal(t, models.StringList{first.ID.String(), second.ID.String()}, c2.Enquiries)
	assert.Equal(t, "Rao Traders", c2.CompanyName)

	leads, err := r.LeadsForCustomer(ctx, c1.ID)
	require.NoError(t, err)
	assert.Len(t, leads, 2)

	require.NoError(t, r.DeleteLead(ctx, first.ID))
	got, err := r.GetCustomer(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{second.ID.String()}, got.Enquiries)

	require.NoError(t, r.DeleteCustomer(ctx, c1.ID))
	lead, err := r.GetLead(ctx, second.ID)
	require.NoError(t, err)
	assert.Nil(t, lead.CustomerID)
}

func TestRefreshTokenRotation(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()
	secret := []byte("s")
	userID := uuid.New()

	first, err := tokens.NewRefreshToken(secret, userID.String(), time.Hour)
	require.NoError(t, err)
	require.NoError(t, r.AddRefreshToken(ctx, userID, first))

	next, err := tokens.NewRefreshToken(secret, userID.String(), time.Hour)
	require.NoError(t, err)
	require.NoError(t, r.RotateRefreshToken(ctx, first.JTI, first.Token, userID, next))

	again, err := tokens.NewRefreshToken(secret, userID.String(), time.Hour)
	require.NoError(t, err)
	require.ErrorIs(t, r.RotateRefreshToken(ctx, first.JTI, first.Token, userID, again), ErrTokenRevoked)

	require.NoError(t, r.RevokeRefreshToken(ctx, next.Token))
	n, err := r.PurgeRefreshTokens(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestDashboardQueries(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()

	for _, name := range []string{"Kraft", "Duplex", "Maplitho"} {
		require.NoError(t, r.CreateCategory(ctx, &models.Category{Name: name}))
	}
	p := seedProduct(t, r, "Brown", "Kraft", models.ProductTypeReel)
	seedProduct(t, r, "White", "Kraft", models.ProductTypeReel)
	seedProduct(t, r, "Board", "Duplex", models.ProductTypeBundle)
	inv := &models.Inventory{ProductID: p.ID, Quantity: 7, Date: time.Now(), Status: models.InventoryActive}
	require.NoError(t, r.CreateInventory(ctx, inv))

	counts, err := r.CountEntities(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, counts.Products)
	assert.EqualValues(t, 1, counts.Inventory)

	perCat, err := r.ProductsPerCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []GroupCount{
		{Label: "Kraft", Total: 2},
		{Label: "Duplex", Total: 1},
		{Label: "Maplitho", Total: 0},
	}, perCat)

	leads, err := r.LeadsPerStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, []GroupCount{
		{Label: models.LeadOpen}, {Label: models.LeadConverted}, {Label: models.LeadClosed},
	}, leads)

	invStatus, err := r.InventoryPerStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, []GroupCount{
		{Label: models.InventoryActive, Total: 1}, {Label: models.InventoryInactive},
	}, invStatus)

	created, err := r.CreatedSince(ctx, &models.Product{}, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, created, 3)

	qty, err := r.ActiveInventoryQuantities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{7}, qty)
}
