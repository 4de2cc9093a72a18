package events

import (
	"fmt"
	"testing"
	"time"

	"github.com/cuemby/hoconnect/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub Subscriber) *Signal {
	t.Helper()
	select {
	case sig := <-sub:
		return sig
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for signal")
		return nil
	}
}

func assertNoSignal(t *testing.T, sub Subscriber) {
	t.Helper()
	select {
	case sig := <-sub:
		t.Fatalf("unexpected signal for key %s from %s", sig.Key, sig.Origin)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerSkipsOrigin(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	subA := b.Subscribe("inst-a")
	subB := b.Subscribe("inst-b")
	subC := b.Subscribe("inst-c")

	b.Publish(&Signal{Key: "ho_connect_notifications", Value: []byte("[]"), Origin: "inst-a"})

	for _, sub := range []Subscriber{subB, subC} {
		sig := receive(t, sub)
		assert.Equal(t, "ho_connect_notifications", sig.Key)
		assert.Equal(t, "inst-a", sig.Origin)
		assert.False(t, sig.Timestamp.IsZero())
	}
	assertNoSignal(t, subA)
}

func TestBrokerPreservesPublishOrder(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe("reader")
	for i := 0; i < 10; i++ {
		b.Publish(&Signal{Key: "ho_connect_tasks", Value: []byte(fmt.Sprint(i)), Origin: "writer"})
	}

	for i := 0; i < 10; i++ {
		sig := receive(t, sub)
		assert.Equal(t, fmt.Sprint(i), string(sig.Value))
	}
}

func TestBrokerDropsWhenSubscriberFull(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	before := testutil.ToFloat64(metrics.SignalsDropped)
	sub := b.Subscribe("slow")

	for i := 0; i < 60; i++ {
		b.Publish(&Signal{Key: "ho_connect_issues", Origin: "writer"})
	}

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.SignalsDropped)-before == 10
	}, time.Second, 5*time.Millisecond)
	assert.Len(t, sub, 50)
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe("inst")
	require.Equal(t, 1, b.SubscriberCount())

	b.Unsubscribe(sub)
	assert.Equal(t, 0, b.SubscriberCount())

	_, open := <-sub
	assert.False(t, open)

	// Unsubscribing twice must not panic on a closed channel
	b.Unsubscribe(sub)
}

func TestBrokerPublishAfterStop(t *testing.T) {
	b := NewBroker()
	b.Start()
	b.Stop()
	b.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			b.Publish(&Signal{Key: "k", Origin: "o"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked after Stop")
	}
}
