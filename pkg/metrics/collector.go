package metrics

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time view of state that is exported as gauges
type Snapshot struct {
	OnlineEmployees  int
	OfflineEmployees int
	LedgerSize       int
}

// Source produces snapshots; an instance is a Source
type Source interface {
	MetricsSnapshot() Snapshot
}

// Collector periodically copies a Source's snapshot into the gauges.
// Presence has no push channel, so the online count only moves when it is
// recomputed.
type Collector struct {
	source   Source
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCollector creates a new metrics collector
func NewCollector(source Source, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Collector{
		source:   source,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		c.Collect()

		for {
			select {
			case <-ticker.C:
				c.Collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// Collect takes one snapshot
func (c *Collector) Collect() {
	snap := c.source.MetricsSnapshot()
	EmployeesOnline.Set(float64(snap.OnlineEmployees))
	EmployeesOffline.Set(float64(snap.OfflineEmployees))
	LedgerSize.Set(float64(snap.LedgerSize))
}
