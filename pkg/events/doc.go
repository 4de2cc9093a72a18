/*
Package events provides the change-signal bus that connects HO Connect instances.

An instance never calls another instance directly. When an instance writes a
collection to the record store, the store publishes a Signal carrying the
key and the full new document. Every other subscribed instance receives it;
the writer does not. That asymmetry prevents self-notification loops, and it
means a writer must update its own in-memory state directly instead of
waiting for an echo.

# Architecture

	┌──────────── instance A ────────────┐      ┌──────────── instance B ────────────┐
	│  store.Put(key, doc)                │      │                                      │
	│        │                            │      │   sub := bus.Subscribe("B")          │
	│        ▼                            │      │        ▲                             │
	│  bus.Publish(Signal{key, doc, "A"}) │──────┼────────┘  (skipped for origin "A")   │
	└─────────────────────────────────────┘      └──────────────────────────────────────┘

# Delivery Contract

  - At-most-once: a subscriber whose 50-slot buffer is full loses the signal
    (counted in hoconnect_signals_dropped_total).
  - Ordered per publisher: a single distribution loop preserves publish order.
    There is no ordering across publishers.
  - No replay: instances that subscribe later only see later writes. They
    read the current value from the store at startup instead.

# Transports

Broker is the in-process transport, used when every instance lives in one
process (tests, the demo command):

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

RedisBus spans processes by relaying signals through one Redis pub/sub
channel and fanning them out locally through an embedded Broker:

	bus := events.NewRedisBus(rdb, events.DefaultRedisChannel)
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer bus.Stop()

Both satisfy Bus, so instances do not know which transport they run on.
*/
package events
