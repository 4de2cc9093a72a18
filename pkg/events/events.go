package events

import (
	"sync"
	"time"

	"github.com/cuemby/hoconnect/pkg/metrics"
)

// Signal announces that a store key was written. Value is the full
// serialized document now stored under Key; Origin is the writing instance.
type Signal struct {
	Key       string
	Value     []byte
	Origin    string
	Timestamp time.Time
}

// Subscriber is a channel that receives signals written by other instances
type Subscriber chan *Signal

// Bus is the cross-instance change-signal channel. Delivery is at-most-once
// per subscriber, ordered per publisher, with no replay, and never back to
// the subscriber whose instance published the signal.
type Bus interface {
	Publish(sig *Signal)
	Subscribe(instanceID string) Subscriber
	Unsubscribe(sub Subscriber)
}

// Broker is the in-process Bus
type Broker struct {
	subscribers map[Subscriber]string // subscriber -> instance id
	mu          sync.RWMutex
	signalCh    chan *Signal
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewBroker creates a new signal broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]string),
		signalCh:    make(chan *Signal, 100), // Buffer up to 100 signals
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's distribution loop
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker
func (b *Broker) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })
}

// Subscribe registers instanceID and returns its channel
func (b *Broker) Subscribe(instanceID string) Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50) // Buffer per subscriber
	b.subscribers[sub] = instanceID
	return sub
}

// Unsubscribe removes a subscription and closes its channel
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[sub]; !ok {
		return
	}
	delete(b.subscribers, sub)
	close(sub)
}

// Publish queues a signal for every subscriber except its origin
func (b *Broker) Publish(sig *Signal) {
	if sig.Timestamp.IsZero() {
		sig.Timestamp = time.Now()
	}
	metrics.SignalsPublished.WithLabelValues(sig.Key).Inc()

	select {
	case b.signalCh <- sig:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case sig := <-b.signalCh:
			b.broadcast(sig)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(sig *Signal) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub, instanceID := range b.subscribers {
		if instanceID == sig.Origin {
			continue
		}
		select {
		case sub <- sig:
		default:
			// Subscriber buffer full, drop
			metrics.SignalsDropped.Inc()
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
