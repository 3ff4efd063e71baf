package ports

import "context"

// EventPublisher notifies other components about wallet lifecycle changes.
type EventPublisher interface {
	PublishConnected(ctx context.Context, address string) error
	PublishDisconnected(ctx context.Context, address string) error
	PublishBidPlaced(ctx context.Context, address, pollID, optionID string, amountLamports uint64, signature string) error
}
