package instance

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cuemby/hoconnect/pkg/events"
	"github.com/cuemby/hoconnect/pkg/log"
	"github.com/cuemby/hoconnect/pkg/metrics"
	"github.com/cuemby/hoconnect/pkg/notify"
	"github.com/cuemby/hoconnect/pkg/presence"
	"github.com/cuemby/hoconnect/pkg/storage"
	"github.com/cuemby/hoconnect/pkg/toast"
	"github.com/cuemby/hoconnect/pkg/types"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

var (
	ErrNotLoggedIn     = errors.New("no employee is logged in")
	ErrUnknownEmployee = errors.New("employee not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubTaskNotFound = errors.New("sub-task not found")
	ErrIssueNotFound   = errors.New("issue not found")
	ErrEmptyText       = errors.New("text is empty")
	ErrNoDepartment    = errors.New("department is required")
)

// DefaultSyncIndicator is how long Syncing reports true after a signal
const DefaultSyncIndicator = time.Second

// Config configures an Instance
type Config struct {
	// ID identifies the instance on the bus and keys its session. A fixed
	// ID lets a restarted process resume its session; empty mints a new one.
	ID string

	Clock          clockwork.Clock
	Lifetimes      toast.Lifetimes
	ToastCapacity  int
	LedgerCapacity int
	PresenceWindow time.Duration
	SyncIndicator  time.Duration
}

// Instance is one running copy of the application: its read replicas of the
// shared collections, its login identity, its toasts and its ledger view.
// Every write goes through the signaling store, so other instances learn of
// it; this instance updates its own state directly.
type Instance struct {
	id         string
	store      *storage.SignalingStore
	bus        events.Bus
	clock      clockwork.Clock
	cfg        Config
	toasts     *toast.Manager
	dispatcher *notify.Dispatcher
	logger     zerolog.Logger

	mu          sync.RWMutex
	employees   []types.Employee
	tasks       []types.Task
	issues      []types.Issue
	messages    []types.ChatMessage
	currentUser *types.Employee
	syncUntil   time.Time

	sub  events.Subscriber
	done chan struct{}
}

// New creates an instance on a shared store and bus. Call Open to load
// state and Start to begin receiving signals.
func New(store storage.Store, bus events.Bus, cfg Config) *Instance {
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Lifetimes == (toast.Lifetimes{}) {
		cfg.Lifetimes = toast.DefaultLifetimes()
	}
	if cfg.PresenceWindow <= 0 {
		cfg.PresenceWindow = presence.Window
	}
	if cfg.SyncIndicator <= 0 {
		cfg.SyncIndicator = DefaultSyncIndicator
	}

	signaling := storage.NewSignalingStore(store, bus, cfg.ID)
	toasts := toast.NewManager(cfg.Clock, cfg.ToastCapacity)

	return &Instance{
		id:     cfg.ID,
		store:  signaling,
		bus:    bus,
		clock:  cfg.Clock,
		cfg:    cfg,
		toasts: toasts,
		dispatcher: notify.NewDispatcher(signaling, toasts, notify.Config{
			Clock:          cfg.Clock,
			Lifetimes:      cfg.Lifetimes,
			LedgerCapacity: cfg.LedgerCapacity,
		}),
		logger:    log.WithInstanceID(cfg.ID),
		employees: []types.Employee{},
		tasks:     []types.Task{},
		issues:    []types.Issue{},
		messages:  []types.ChatMessage{},
	}
}

// ID returns the instance id
func (i *Instance) ID() string {
	return i.id
}

// Open loads every collection and this instance's session from the store.
// Missing or malformed collections load as empty.
func (i *Instance) Open() {
	employees := storage.Load[types.Employee](i.store, storage.KeyEmployees)
	tasks := storage.Load[types.Task](i.store, storage.KeyTasks)
	issues := storage.Load[types.Issue](i.store, storage.KeyIssues)
	i.dispatcher.Load()

	i.mu.Lock()
	i.employees = employees
	i.tasks = tasks
	i.issues = issues
	if user, ok := storage.LoadDocument[types.Employee](i.store, storage.SessionKey(i.id)); ok && user.ID != "" {
		i.currentUser = &user
		i.dispatcher.SetViewer(user.ID)
	}
	i.mu.Unlock()

	i.logger.Info().
		Int("employees", len(employees)).
		Int("tasks", len(tasks)).
		Int("issues", len(issues)).
		Int("notifications", i.dispatcher.Len()).
		Msg("Instance opened")
}

// Start subscribes to the bus and handles signals until Close
func (i *Instance) Start() {
	i.mu.Lock()
	if i.sub != nil {
		i.mu.Unlock()
		return
	}
	sub := i.bus.Subscribe(i.id)
	i.sub = sub
	i.done = make(chan struct{})
	done := i.done
	i.mu.Unlock()

	go func() {
		defer close(done)
		for sig := range sub {
			i.HandleSignal(sig)
		}
	}()
}

// Close unsubscribes from the bus and drops every toast. The store is shared
// and stays open.
func (i *Instance) Close() {
	i.mu.Lock()
	sub, done := i.sub, i.done
	i.sub = nil
	i.mu.Unlock()

	if sub != nil {
		i.bus.Unsubscribe(sub)
		<-done
	}
	i.toasts.Clear()
	i.logger.Info().Msg("Instance closed")
}

// HandleSignal applies a change written by another instance. Each signal
// carries the full collection, which replaces the local replica.
func (i *Instance) HandleSignal(sig *events.Signal) {
	metrics.SignalsReceived.WithLabelValues(sig.Key).Inc()

	switch sig.Key {
	case storage.KeyEmployees:
		employees := storage.Decode[types.Employee](sig.Key, sig.Value)
		i.mu.Lock()
		i.employees = employees
		i.mu.Unlock()
	case storage.KeyTasks:
		tasks := storage.Decode[types.Task](sig.Key, sig.Value)
		i.mu.Lock()
		i.tasks = tasks
		i.mu.Unlock()
	case storage.KeyIssues:
		issues := storage.Decode[types.Issue](sig.Key, sig.Value)
		i.mu.Lock()
		i.issues = issues
		i.mu.Unlock()
	case storage.KeyNotifications:
		if entry, ok := i.dispatcher.Receive(sig.Value); ok {
			i.logger.Debug().
				Str("notification_id", entry.ID).
				Str("origin", sig.Origin).
				Msg("Mention received from another instance")
		}
	default:
		i.logger.Debug().Str("key", sig.Key).Msg("Ignoring signal for untracked key")
		return
	}

	i.mu.Lock()
	i.syncUntil = i.clock.Now().Add(i.cfg.SyncIndicator)
	i.mu.Unlock()
}

// Syncing reports whether a signal was applied within the sync indicator
// window
func (i *Instance) Syncing() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.clock.Now().Before(i.syncUntil)
}

// Employees returns the employee directory
func (i *Instance) Employees() []types.Employee {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append([]types.Employee{}, i.employees...)
}

// Tasks returns the task collection
func (i *Instance) Tasks() []types.Task {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append([]types.Task{}, i.tasks...)
}

// Issues returns the issue collection
func (i *Instance) Issues() []types.Issue {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append([]types.Issue{}, i.issues...)
}

// Presence recomputes online status for the directory at the current time
func (i *Instance) Presence() presence.Stats {
	now := i.clock.Now()
	return presence.Summarize(i.Employees(), now, i.cfg.PresenceWindow)
}

// AvailableDepartments lists the built-in departments followed by every
// other department named by an employee, task or issue, in first-seen order
func (i *Instance) AvailableDepartments() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	add := func(dept string) {
		if dept == "" || seen[dept] {
			return
		}
		seen[dept] = true
		out = append(out, dept)
	}

	for _, d := range types.BaseDepartments {
		add(d)
	}
	for _, e := range i.employees {
		add(e.Department)
	}
	for _, t := range i.tasks {
		add(t.Department)
	}
	for _, iss := range i.issues {
		add(iss.Department)
	}
	return out
}

// MetricsSnapshot implements metrics.Source
func (i *Instance) MetricsSnapshot() metrics.Snapshot {
	stats := i.Presence()
	return metrics.Snapshot{
		OnlineEmployees:  stats.OnlineCount,
		OfflineEmployees: stats.OfflineCount,
		LedgerSize:       i.dispatcher.Len(),
	}
}

// notify dispatches n and logs a failure. Callers must not hold i.mu: the
// toast observers may read instance state.
func (i *Instance) notify(req notify.Request) {
	if _, err := i.dispatcher.Notify(req); err != nil {
		i.logger.Warn().Err(err).Str("title", req.Title).Msg("Notification dropped")
	}
}

// saveLocked persists a collection. Caller holds i.mu.
func saveLocked[T any](i *Instance, key string, items []T) error {
	if err := storage.Save(i.store, key, items); err != nil {
		i.logger.Error().Err(err).Str("key", key).Msg("Failed to persist collection")
		return err
	}
	return nil
}

// shortID mints the short random suffix used in task, user and message ids
func shortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
}

// preview truncates text to n runes followed by an ellipsis
func preview(text string, n int) string {
	r := []rune(text)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + "..."
}

func (i *Instance) timestamp() string {
	return i.clock.Now().UTC().Format(time.RFC3339Nano)
}
