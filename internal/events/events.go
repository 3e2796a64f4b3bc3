// Package events publishes domain events emitted after successful commits.
package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Type names a domain event.
type Type string

const (
	OrderCreated       Type = "order.created"
	OrderStatusChanged Type = "order.status_changed"
	InventoryChanged   Type = "inventory.changed"
	FittingTransferred Type = "fitting.transferred"
	CartClaimed        Type = "cart.claimed"
)

// Event is the envelope written to the event stream.
type Event struct {
	Type       Type      `json:"type"`
	Key        string    `json:"key"`
	StoreID    string    `json:"storeId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

// New builds an event keyed by the aggregate it describes.
func New(t Type, key, storeID string, data any) Event {
	return Event{
		Type:       t,
		Key:        key,
		StoreID:    storeID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Publisher delivers events. Publishing happens after the database commit,
// so a failure never undoes the operation that produced the event.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// logPublisher records events in the application log only.
type logPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a Publisher that only logs events.
func NewLogPublisher(logger zerolog.Logger) Publisher {
	return &logPublisher{logger: logger.With().Str("component", "events").Logger()}
}

func (p *logPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Debug().
		Str("type", string(event.Type)).
		Str("key", event.Key).
		Str("store_id", event.StoreID).
		Msg("event emitted")
	return nil
}

func (p *logPublisher) Close() error { return nil }
