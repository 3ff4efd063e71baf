package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/yukti-app/walletd/ports"
)

const (
	// TopicConnected carries ConnectedEvent payloads.
	TopicConnected = "wallet.connected"
	// TopicDisconnected carries DisconnectedEvent payloads.
	TopicDisconnected = "wallet.disconnected"
	// TopicBidPlaced carries BidPlacedEvent payloads.
	TopicBidPlaced = "wallet.bid_placed"
)

// ConnectedEvent is emitted after a successful authorize or reauthorize.
type ConnectedEvent struct {
	Address string `json:"address"`
}

// DisconnectedEvent is emitted after a disconnect.
type DisconnectedEvent struct {
	Address string `json:"address"`
}

// BidPlacedEvent is emitted after an on-chain bid is confirmed.
type BidPlacedEvent struct {
	Address        string `json:"address"`
	PollID         string `json:"poll_id"`
	OptionID       string `json:"option_id"`
	AmountLamports uint64 `json:"amount_lamports"`
	Signature      string `json:"signature"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)

func (p *WatermillPublisher) PublishConnected(ctx context.Context, address string) error {
	return p.publish(TopicConnected, ConnectedEvent{Address: address})
}

func (p *WatermillPublisher) PublishDisconnected(ctx context.Context, address string) error {
	return p.publish(TopicDisconnected, DisconnectedEvent{Address: address})
}

func (p *WatermillPublisher) PublishBidPlaced(ctx context.Context, address, pollID, optionID string, amountLamports uint64, signature string) error {
	return p.publish(TopicBidPlaced, BidPlacedEvent{
		Address:        address,
		PollID:         pollID,
		OptionID:       optionID,
		AmountLamports: amountLamports,
		Signature:      signature,
	})
}

func (p *WatermillPublisher) publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}
