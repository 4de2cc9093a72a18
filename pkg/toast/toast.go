package toast

import (
	"sync"
	"time"

	"github.com/cuemby/hoconnect/pkg/metrics"
	"github.com/cuemby/hoconnect/pkg/types"
	"github.com/jonboulle/clockwork"
)

// DefaultCapacity is the number of toasts visible at once
const DefaultCapacity = 5

// Default lifetimes. A mention mirrored from another instance lives 10s
// while a locally dispatched mention lives 12s; both values are observable
// and kept as they are.
const (
	DefaultLifetime        = 6 * time.Second
	DefaultMentionLifetime = 12 * time.Second
	DefaultRemoteLifetime  = 10 * time.Second
)

// Path records how a toast reached this instance
type Path string

const (
	PathLocal  Path = "local"  // dispatched by this instance
	PathRemote Path = "remote" // delivered by a change signal
)

// Reason records why a toast left the screen
type Reason string

const (
	ReasonExpired   Reason = "expired"
	ReasonDismissed Reason = "dismissed"
	ReasonEvicted   Reason = "evicted"
)

// Lifetimes configures how long toasts stay visible
type Lifetimes struct {
	Default       time.Duration
	Mention       time.Duration
	RemoteMention time.Duration
}

// DefaultLifetimes returns the standard toast lifetimes
func DefaultLifetimes() Lifetimes {
	return Lifetimes{
		Default:       DefaultLifetime,
		Mention:       DefaultMentionLifetime,
		RemoteMention: DefaultRemoteLifetime,
	}
}

// Local returns the lifetime of a toast for a locally dispatched record
func (l Lifetimes) Local(t types.NotificationType) time.Duration {
	if t == types.NotificationMention {
		return l.Mention
	}
	return l.Default
}

// Entry is a visible toast: a view of a notification record with its own
// on-screen lifetime
type Entry struct {
	types.Notification
	Path      Path
	AddedAt   time.Time
	ExpiresAt time.Time
}

// Event is passed to observers whenever a toast appears or disappears
type Event struct {
	Entry   Entry
	Added   bool
	Reason  Reason // set when Added is false
	Visible int
}

type entry struct {
	Entry
	timer clockwork.Timer
}

// Manager is one instance's toast queue. Each toast is Visible until its own
// timer fires, it is dismissed, or it is pushed out by newer toasts; then it
// is Removed. Removal is idempotent.
type Manager struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	capacity  int
	entries   []*entry // newest first
	observers []func(Event)
}

// NewManager creates a toast queue
func NewManager(clock clockwork.Clock, capacity int) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Manager{
		clock:    clock,
		capacity: capacity,
	}
}

// Observe registers fn to be called on every add and removal. fn runs
// outside the manager's lock.
func (m *Manager) Observe(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Add shows n for ttl, starting now on this instance's clock. Showing an id
// that is already visible restarts it as a new toast.
func (m *Manager) Add(n types.Notification, ttl time.Duration, path Path) Entry {
	if ttl <= 0 {
		ttl = DefaultLifetime
	}
	now := m.clock.Now()
	e := &entry{Entry: Entry{
		Notification: n,
		Path:         path,
		AddedAt:      now,
		ExpiresAt:    now.Add(ttl),
	}}

	m.mu.Lock()
	var removed []Event
	if old := m.detach(n.ID); old != nil {
		removed = append(removed, Event{Entry: old.Entry, Reason: ReasonEvicted})
	}

	m.entries = append([]*entry{e}, m.entries...)
	for len(m.entries) > m.capacity {
		oldest := m.entries[len(m.entries)-1]
		m.entries = m.entries[:len(m.entries)-1]
		oldest.timer.Stop()
		removed = append(removed, Event{Entry: oldest.Entry, Reason: ReasonEvicted})
	}

	e.timer = m.clock.AfterFunc(ttl, func() { m.expire(e) })
	visible := len(m.entries)
	observers := m.observers
	m.mu.Unlock()

	metrics.ToastsShown.WithLabelValues(string(path)).Inc()
	for _, ev := range removed {
		ev.Visible = visible
		m.notify(observers, ev)
	}
	m.notify(observers, Event{Entry: e.Entry, Added: true, Visible: visible})
	return e.Entry
}

// Dismiss removes a toast before its timer fires. It reports whether the
// toast was still visible.
func (m *Manager) Dismiss(id string) bool {
	m.mu.Lock()
	e := m.detach(id)
	visible := len(m.entries)
	observers := m.observers
	m.mu.Unlock()

	if e == nil {
		return false
	}
	m.notify(observers, Event{Entry: e.Entry, Reason: ReasonDismissed, Visible: visible})
	return true
}

// expire removes e when its own timer fires. A timer belonging to an entry
// that was already dismissed, evicted or replaced does nothing.
func (m *Manager) expire(e *entry) {
	m.mu.Lock()
	found := false
	for i, cur := range m.entries {
		if cur == e {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			found = true
			break
		}
	}
	visible := len(m.entries)
	observers := m.observers
	m.mu.Unlock()

	if found {
		m.notify(observers, Event{Entry: e.Entry, Reason: ReasonExpired, Visible: visible})
	}
}

// detach removes the entry with id and stops its timer. Caller holds m.mu.
func (m *Manager) detach(id string) *entry {
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			e.timer.Stop()
			return e
		}
	}
	return nil
}

func (m *Manager) notify(observers []func(Event), ev Event) {
	if !ev.Added {
		metrics.ToastsRemoved.WithLabelValues(string(ev.Reason)).Inc()
	}
	for _, fn := range observers {
		fn(ev)
	}
}

// Visible returns the visible toasts, newest first
func (m *Manager) Visible() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Entry)
	}
	return out
}

// Len returns the number of visible toasts
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Clear removes every toast without notifying observers and stops their
// timers
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		e.timer.Stop()
	}
	m.entries = nil
}
