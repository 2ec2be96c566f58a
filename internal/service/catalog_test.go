package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/paperman/internal/events"
	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/repo"
	"github.com/Skotchmaster/paperman/internal/transport"
	"github.com/Skotchmaster/paperman/internal/util"
)

func TestCategoryLifecycle(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	rec := &recorder{}
	svc := NewCategoryService(r, rec)
	ctx := context.Background()

	_, err := svc.Create(ctx, transport.CategoryRequest{Name: "  "})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "name is required", fieldsOf(t, err)["name"])

	c, err := svc.Create(ctx, transport.CategoryRequest{Name: " Kraft ", Description: "brown"})
	require.NoError(t, err)
	assert.Equal(t, "Kraft", c.Name)

	_, err = svc.Create(ctx, transport.CategoryRequest{Name: "Kraft"})
	require.ErrorIs(t, err, ErrConflict)

	prod, err := NewProductService(r, nil).Create(ctx, transport.ProductRequest{
		Name: "Brown Kraft", Category: "kraft", Type: "reel", GSM: transport.Num(120),
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, c.ID), ErrConflict)

	updated, err := svc.Update(ctx, c.ID, transport.CategoryRequest{Name: "Kraft Paper"})
	require.NoError(t, err)
	assert.Equal(t, "Kraft Paper", updated.Name)

	assert.Equal(t, []string{events.CategoryCreated, events.CategoryUpdated, events.ProductUpdated}, rec.types())
	ev := rec.last()
	assert.Equal(t, prod.ID.String(), ev.EntityID)
	moved, ok := ev.Payload.(models.Product)
	require.True(t, ok)
	assert.Equal(t, "Kraft Paper", moved.Category)

	_, err = svc.Update(ctx, c.ID, transport.CategoryRequest{Name: "Kraft Paper", Description: "new"})
	require.NoError(t, err)
	assert.Equal(t, events.CategoryUpdated, rec.last().Type)
}

func TestProductValidation(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	svc := NewProductService(r, nil)
	ctx := context.Background()
	seedCategory(t, r, "Kraft")

	_, err := svc.Create(ctx, transport.ProductRequest{})
	fields := fieldsOf(t, err)
	for _, k := range []string{"name", "category", "type", "gsm"} {
		assert.Contains(t, fields, k)
	}

	_, err = svc.Create(ctx, transport.ProductRequest{
		Name:     "X",
		Category: "Unknown",
		Type:     "roll",
		GSM:      transport.Number{Set: true},
		Width:    transport.Num(-1),
	})
	fields = fieldsOf(t, err)
	assert.Equal(t, "unknown category", fields["category"])
	assert.Equal(t, "type must be reel or bundle", fields["type"])
	assert.Equal(t, "gsm must be a number", fields["gsm"])
	assert.Equal(t, "width must not be negative", fields["width"])

	_, err = svc.Create(ctx, transport.ProductRequest{
		Name: "X", Category: "Kraft", Type: "reel", GSM: transport.Num(0),
	})
	assert.Equal(t, "gsm must be positive", fieldsOf(t, err)["gsm"])
}

func TestProductCRUDAndExport(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	rec := &recorder{}
	svc := NewProductService(r, rec)
	ctx := context.Background()
	seedCategory(t, r, "Kraft")

	p, err := svc.Create(ctx, transport.ProductRequest{
		Name: "Kraft Reel", Category: "Kraft", Type: "Reel",
		GSM: transport.Num(100), Width: transport.Num(1000), Length: transport.Num(1000),
	})
	require.NoError(t, err)
	assert.Equal(t, "reel", p.Type)
	assert.InDelta(t, 100.0, p.Weight, 1e-9)

	p, err = svc.Update(ctx, p.ID, transport.ProductRequest{
		Name: "Kraft Bundle", Category: "Kraft", Type: "bundle",
		GSM: transport.Num(58), Width: transport.Num(610), Length: transport.Num(860),
		SheetsPerBundle: transport.Num(144),
	})
	require.NoError(t, err)
	assert.InDelta(t, 4.381, p.Weight, 1e-9)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.381, got.Weight, 1e-9)

	rows, err := svc.Export(ctx, util.ParseListParams(url.Values{}, repo.ProductSort))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Kraft Bundle", rows[0].Name)
	assert.Equal(t, 144, rows[0].SheetsPerBundle)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, p.ID), ErrNotFound)

	assert.Equal(t, []string{events.ProductCreated, events.ProductUpdated, events.ProductDeleted}, rec.types())
}
