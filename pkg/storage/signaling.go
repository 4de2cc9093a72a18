package storage

import (
	"github.com/cuemby/hoconnect/pkg/events"
)

// SignalingStore is one instance's handle on a shared Store. Writes to a
// collection key publish a signal that reaches every other instance on the
// bus. The writing instance itself is never signalled.
type SignalingStore struct {
	Store
	bus    events.Bus
	origin string
}

// NewSignalingStore wraps store for the instance identified by origin
func NewSignalingStore(store Store, bus events.Bus, origin string) *SignalingStore {
	return &SignalingStore{
		Store:  store,
		bus:    bus,
		origin: origin,
	}
}

// Put writes value and signals collection keys. The signal carries the full
// value written, never a delta.
func (s *SignalingStore) Put(key string, value []byte) error {
	if err := s.Store.Put(key, value); err != nil {
		return err
	}
	if IsCollection(key) {
		s.bus.Publish(&events.Signal{
			Key:    key,
			Value:  append([]byte(nil), value...),
			Origin: s.origin,
		})
	}
	return nil
}

// Close is a no-op: the shared store outlives any single instance
func (s *SignalingStore) Close() error {
	return nil
}
