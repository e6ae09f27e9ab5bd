package providers

import (
	"context"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// bookability events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.BookabilityEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.BookabilityEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for different event types
const (
	// EventChannelBookabilityUpdates carries every contract, supervision and
	// payer mutation that can invalidate materialized bookability
	EventChannelBookabilityUpdates = "bookability:updates"

	// EventChannelPayerPrefix is the prefix for payer-specific channels
	EventChannelPayerPrefix = "bookability:payer:"
)

// GetPayerChannel returns the channel name for a specific payer
func GetPayerChannel(payerID string) string {
	return EventChannelPayerPrefix + payerID
}
