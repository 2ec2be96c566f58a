package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/Skotchmaster/paperman/internal/events"
	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/notify"
)

type invalidator interface {
	Invalidate(ctx context.Context) error
}

type productIndexer interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type mailer interface {
	Notify(subject, body string) error
}

var stockTopics = []string{
	events.ProductCreated, events.ProductUpdated, events.ProductDeleted,
	events.InventoryCreated, events.InventoryUpdated, events.InventoryDeleted,
	events.CategoryUpdated, events.CategoryDeleted,
}

// subscribeStockCache drops the cached catalog synchronously so the next
// public read sees the change.
func subscribeStockCache(bus *events.Bus, inv invalidator, l *slog.Logger) error {
	l = l.With("subscriber", "stock_cache")
	for _, topic := range stockTopics {
		err := bus.Subscribe(topic, func(ev events.Event) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := inv.Invalidate(ctx); err != nil {
				l.Warn("invalidate_failed", "event", ev.Type, "error", err)
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func indexProductEvent(ctx context.Context, idx productIndexer, ev events.Event) error {
	if ev.Type == events.ProductDeleted {
		return idx.DeleteProduct(ctx, ev.EntityID)
	}
	switch p := ev.Payload.(type) {
	case *models.Product:
		return idx.IndexProduct(ctx, *p)
	case models.Product:
		return idx.IndexProduct(ctx, p)
	}
	return nil
}

func subscribeSearchIndex(bus *events.Bus, idx productIndexer, l *slog.Logger) error {
	l = l.With("subscriber", "search_index")
	for _, topic := range []string{events.ProductCreated, events.ProductUpdated, events.ProductDeleted} {
		err := bus.SubscribeAsync(topic, func(ev events.Event) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := indexProductEvent(ctx, idx, ev); err != nil {
				l.Warn("index_failed", "event", ev.Type, "entity_id", ev.EntityID, "error", err)
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func subscribeLeadMail(bus *events.Bus, m mailer, l *slog.Logger) error {
	l = l.With("subscriber", "lead_mail")
	return bus.Subscribe(events.LeadCreated, func(ev events.Event) {
		lead, ok := ev.Payload.(models.Lead)
		if !ok {
			return
		}
		if err := m.Notify(notify.LeadMail(lead)); err != nil {
			l.Warn("queue_mail_failed", "reference", lead.Reference, "error", err)
		}
	})
}
