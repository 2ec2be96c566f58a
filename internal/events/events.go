// Package events fans domain changes out to in-process subscribers.
package events

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
)

// TopicAll receives every published event.
const TopicAll = "crm.all"

const (
	CategoryCreated = "category.created"
	CategoryUpdated = "category.updated"
	CategoryDeleted = "category.deleted"

	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"

	InventoryCreated = "inventory.created"
	InventoryUpdated = "inventory.updated"
	InventoryDeleted = "inventory.deleted"

	CustomerCreated = "customer.created"
	CustomerUpdated = "customer.updated"
	CustomerDeleted = "customer.deleted"

	LeadCreated = "lead.created"
	LeadUpdated = "lead.updated"
	LeadDeleted = "lead.deleted"

	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

type Event struct {
	Type     string    `json:"type"`
	EntityID string    `json:"entity_id"`
	Payload  any       `json:"payload,omitempty"`
	At       time.Time `json:"at"`
}

func New(typ, entityID string, payload any) Event {
	return Event{Type: typ, EntityID: entityID, Payload: payload, At: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

// Publish delivers ev to subscribers of its type and of TopicAll.
func (b *Bus) Publish(_ context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b.bus.Publish(ev.Type, ev)
	b.bus.Publish(TopicAll, ev)
}

// Subscribe runs fn synchronously inside Publish.
func (b *Bus) Subscribe(topic string, fn func(Event)) error {
	return b.bus.Subscribe(topic, fn)
}

// SubscribeAsync runs fn on its own goroutine per event.
func (b *Bus) SubscribeAsync(topic string, fn func(Event)) error {
	return b.bus.SubscribeAsync(topic, fn, false)
}

// Wait blocks until async handlers have finished.
func (b *Bus) Wait() {
	b.bus.WaitAsync()
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
