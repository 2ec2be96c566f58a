package main

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/paperman/internal/events"
	"github.com/Skotchmaster/paperman/internal/models"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.n++
	return nil
}

type fakeIndex struct {
	mu      sync.Mutex
	indexed []string
	deleted []string
}

func (f *fakeIndex) IndexProduct(_ context.Context, p models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, p.Name)
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeMailer struct{ subjects []string }

func (f *fakeMailer) Notify(subject, _ string) error {
	f.subjects = append(f.subjects, subject)
	return nil
}

func TestStockCacheInvalidatedOnCatalogChanges(t *testing.T) {
	bus := events.NewBus()
	inv := &countingInvalidator{}
	require.NoError(t, subscribeStockCache(bus, inv, quiet))

	ctx := context.Background()
	bus.Publish(ctx, events.New(events.InventoryCreated, "1", nil))
	bus.Publish(ctx, events.New(events.ProductUpdated, "2", nil))
	bus.Publish(ctx, events.New(events.CustomerCreated, "3", nil))

	assert.Equal(t, 2, inv.n)
}

func TestSearchIndexFollowsProducts(t *testing.T) {
	bus := events.NewBus()
	idx := &fakeIndex{}
	require.NoError(t, subscribeSearchIndex(bus, idx, quiet))

	ctx := context.Background()
	id := uuid.NewString()
	bus.Publish(ctx, events.New(events.ProductCreated, id, &models.Product{Name: "Kraft 80"}))
	bus.Publish(ctx, events.New(events.ProductDeleted, id, nil))
	bus.Wait()

	assert.Equal(t, []string{"Kraft 80"}, idx.indexed)
	assert.Equal(t, []string{id}, idx.deleted)
}

func TestLeadMailOnCreate(t *testing.T) {
	bus := events.NewBus()
	m := &fakeMailer{}
	require.NoError(t, subscribeLeadMail(bus, m, quiet))

	lead := models.Lead{Reference: "ENQ-1", Kind: models.LeadKindEnquiry, Name: "Asha"}
	bus.Publish(context.Background(), events.New(events.LeadCreated, "x", lead))
	bus.Publish(context.Background(), events.New(events.LeadUpdated, "x", lead))

	require.Len(t, m.subjects, 1)
	assert.Contains(t, m.subjects[0], "ENQ-1")
}
