package events

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisBus(t *testing.T, mr *miniredis.Miniredis) *RedisBus {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	bus := NewRedisBus(rdb, "")
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(bus.Stop)
	return bus
}

func TestRedisBusAcrossProcesses(t *testing.T) {
	mr := miniredis.RunT(t)

	// Two buses on one server stand in for two processes
	busA := newRedisBus(t, mr)
	busB := newRedisBus(t, mr)

	subA := busA.Subscribe("inst-a")
	subB := busB.Subscribe("inst-b")
	subB2 := busB.Subscribe("inst-b2")

	busA.Publish(&Signal{Key: "ho_connect_notifications", Value: []byte(`[{"id":"n1"}]`), Origin: "inst-a"})

	for _, sub := range []Subscriber{subB, subB2} {
		sig := receive(t, sub)
		assert.Equal(t, "ho_connect_notifications", sig.Key)
		assert.Equal(t, `[{"id":"n1"}]`, string(sig.Value))
		assert.Equal(t, "inst-a", sig.Origin)
	}
	assertNoSignal(t, subA)
}

func TestRedisBusMalformedEnvelope(t *testing.T) {
	mr := miniredis.RunT(t)
	bus := newRedisBus(t, mr)
	sub := bus.Subscribe("inst")

	mr.Publish(DefaultRedisChannel, "not json")
	assertNoSignal(t, sub)

	bus.Publish(&Signal{Key: "ho_connect_tasks", Value: []byte("[]"), Origin: "other"})
	assert.Equal(t, "ho_connect_tasks", receive(t, sub).Key)
}

func TestRedisBusStartFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	bus := NewRedisBus(rdb, "chan")
	assert.Error(t, bus.Start(context.Background()))
	assert.Equal(t, 0, bus.SubscriberCount())
}
