package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"concertly/internal/shared/constants"
	"concertly/pkg/logger"
)

// AvailabilityEvent is broadcast whenever a concert's ticket count changes.
type AvailabilityEvent struct {
	ConcertID        uint      `json:"concertId"`
	AvailableTickets int       `json:"availableTickets"`
	Timestamp        time.Time `json:"timestamp"`
}

// Publisher pushes availability events onto a Redis pub/sub channel so
// connected frontends can refresh without polling.
type Publisher struct {
	client *redis.Client
	log    *logger.Logger
}

func NewPublisher(client *redis.Client, log *logger.Logger) *Publisher {
	return &Publisher{client: client, log: log}
}

func (p *Publisher) PublishAvailability(ctx context.Context, concertID uint, availableTickets int) error {
	event := AvailabilityEvent{
		ConcertID:        concertID,
		AvailableTickets: availableTickets,
		Timestamp:        time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal availability event: %w", err)
	}
	if err := p.client.Publish(ctx, constants.CHANNEL_AVAILABILITY, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish availability event: %w", err)
	}
	return nil
}

// Subscribe returns a channel of availability events, for consumers inside
// this process. The subscription closes when ctx is cancelled.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan AvailabilityEvent, error) {
	sub := p.client.Subscribe(ctx, constants.CHANNEL_AVAILABILITY)
	if _, err := sub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to availability channel: %w", err)
	}

	events := make(chan AvailabilityEvent)
	go func() {
		defer close(events)
		defer sub.Close()
		for {
			select {
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var event AvailabilityEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					p.log.WithError(err).Warn("invalid availability event payload")
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
