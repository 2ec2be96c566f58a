// Package service holds the CRM use cases between HTTP handlers and the
// repository.
package service

import (
	"context"

	"github.com/Skotchmaster/paperman/internal/events"
)

type base struct {
	Events events.Publisher
}

func (b base) publish(ctx context.Context, typ, id string, payload any) {
	if b.Events == nil {
		return
	}
	b.Events.Publish(ctx, events.New(typ, id, payload))
}
