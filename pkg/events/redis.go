package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/hoconnect/pkg/log"
	"github.com/cuemby/hoconnect/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultRedisChannel is the pub/sub channel used when none is configured
const DefaultRedisChannel = "hoconnect:signals"

// envelope is the wire form of a Signal on the Redis channel
type envelope struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Origin    string    `json:"origin"`
	Timestamp time.Time `json:"timestamp"`
}

// RedisBus is a Bus spanning processes. Every process publishes to one Redis
// pub/sub channel and fans received signals out to its local subscribers.
// Redis pub/sub keeps no history, which matches the no-replay contract.
type RedisBus struct {
	rdb     *redis.Client
	channel string
	local   *Broker
	logger  zerolog.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRedisBus creates a bus on the given client and channel
func NewRedisBus(rdb *redis.Client, channel string) *RedisBus {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisBus{
		rdb:     rdb,
		channel: channel,
		local:   NewBroker(),
		logger:  log.WithComponent("redis-bus"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start subscribes to the channel and begins fan-out. It returns once Redis
// has confirmed the subscription, so signals published afterwards are seen.
func (b *RedisBus) Start(ctx context.Context) error {
	ps := b.rdb.Subscribe(ctx, b.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	b.mu.Lock()
	b.pubsub = ps
	b.mu.Unlock()

	go b.run(ps.Channel())
	return nil
}

// Stop closes the subscription
func (b *RedisBus) Stop() {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pubsub != nil {
		_ = b.pubsub.Close()
		b.pubsub = nil
	}
}

// Publish sends a signal to every process on the channel. Failures are
// logged; a lost signal is indistinguishable from an instance that was not
// open at write time.
func (b *RedisBus) Publish(sig *Signal) {
	if sig.Timestamp.IsZero() {
		sig.Timestamp = time.Now()
	}

	data, err := json.Marshal(envelope{
		Key:       sig.Key,
		Value:     string(sig.Value),
		Origin:    sig.Origin,
		Timestamp: sig.Timestamp,
	})
	if err != nil {
		b.logger.Warn().Err(err).Str("key", sig.Key).Msg("failed to encode signal")
		return
	}

	if err := b.rdb.Publish(b.ctx, b.channel, data).Err(); err != nil {
		b.logger.Warn().Err(err).Str("key", sig.Key).Msg("failed to publish signal")
		return
	}
	metrics.SignalsPublished.WithLabelValues(sig.Key).Inc()
}

// Subscribe registers a local instance
func (b *RedisBus) Subscribe(instanceID string) Subscriber {
	return b.local.Subscribe(instanceID)
}

// Unsubscribe removes a local instance
func (b *RedisBus) Unsubscribe(sub Subscriber) {
	b.local.Unsubscribe(sub)
}

// SubscriberCount returns the number of local subscribers
func (b *RedisBus) SubscriberCount() int {
	return b.local.SubscriberCount()
}

func (b *RedisBus) run(ch <-chan *redis.Message) {
	for msg := range ch {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			b.logger.Warn().Err(err).Msg("dropping malformed signal envelope")
			continue
		}
		b.local.broadcast(&Signal{
			Key:       env.Key,
			Value:     []byte(env.Value),
			Origin:    env.Origin,
			Timestamp: env.Timestamp,
		})
	}
}
