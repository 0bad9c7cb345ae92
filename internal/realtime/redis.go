package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// KeyPrefixChannel is the prefix of the per-owner Pub/Sub channel.
const KeyPrefixChannel = "smartmark:bookmarks:"

// ChannelName returns the Pub/Sub channel carrying owner's changes.
func ChannelName(owner string) string {
	return KeyPrefixChannel + owner
}

// RedisHub delivers events through Redis Pub/Sub so every server instance
// sees every change.
type RedisHub struct {
	client *redis.Client
	log    logger.Logger
}

func NewRedisHub(client *redis.Client, log logger.Logger) *RedisHub {
	return &RedisHub{client: client, log: log}
}

func (h *RedisHub) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := h.client.Publish(ctx, ChannelName(ev.Owner), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (h *RedisHub) Subscribe(ctx context.Context, owner string) (Subscription, error) {
	ps := h.client.Subscribe(ctx, ChannelName(owner))

	// Wait for the subscription to be confirmed so no publish after
	// Subscribe returns can be missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	sub := &redisSubscription{
		ps:       ps,
		events:   make(chan Event, subscriptionBuffer),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		log:      h.log.With(logger.String("owner", owner)),
	}
	go sub.run()
	return sub, nil
}

type redisSubscription struct {
	ps       *redis.PubSub
	events   chan Event
	done     chan struct{}
	finished chan struct{}
	once     sync.Once
	log      logger.Logger
}

func (s *redisSubscription) Events() <-chan Event { return s.events }

func (s *redisSubscription) run() {
	defer close(s.finished)
	defer close(s.events)

	msgs := s.ps.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.log.Warn("dropping malformed event", logger.Error(err))
				continue
			}
			select {
			case s.events <- ev:
			case <-s.done:
				return
			}
		}
	}
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
		<-s.finished
	})
	if err != nil {
		return fmt.Errorf("failed to close subscription: %w", err)
	}
	return nil
}
