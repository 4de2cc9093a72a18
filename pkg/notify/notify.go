package notify

import (
	"errors"
	"sync"

	"github.com/cuemby/hoconnect/pkg/ledger"
	"github.com/cuemby/hoconnect/pkg/log"
	"github.com/cuemby/hoconnect/pkg/metrics"
	"github.com/cuemby/hoconnect/pkg/storage"
	"github.com/cuemby/hoconnect/pkg/toast"
	"github.com/cuemby/hoconnect/pkg/types"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned by drawer operations on an unknown record id
var ErrNotFound = errors.New("notification not found")

// Request describes one notification to dispatch
type Request struct {
	Title        string
	Message      string
	Type         types.NotificationType
	Department   string // informational only
	TargetUserID string // empty = broadcast
}

// Config configures a Dispatcher
type Config struct {
	Clock          clockwork.Clock
	Lifetimes      toast.Lifetimes
	LedgerCapacity int
}

// Dispatcher turns mutations into notification records, keeps this
// instance's ledger view in step with the store, and decides which records
// this instance shows as toasts.
type Dispatcher struct {
	mu            sync.Mutex
	store         storage.Store
	ledger        *ledger.Ledger
	toasts        *toast.Manager
	clock         clockwork.Clock
	lifetimes     toast.Lifetimes
	viewer        string // logged-in identity, empty when logged out
	lastProcessed string // id of the last record toasted from a signal
	logger        zerolog.Logger
}

// NewDispatcher creates a dispatcher writing to store and showing toasts on
// toasts. store is normally the instance's SignalingStore so that every
// ledger write reaches the other instances.
func NewDispatcher(store storage.Store, toasts *toast.Manager, cfg Config) *Dispatcher {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Lifetimes == (toast.Lifetimes{}) {
		cfg.Lifetimes = toast.DefaultLifetimes()
	}
	return &Dispatcher{
		store:     store,
		ledger:    ledger.New(cfg.LedgerCapacity),
		toasts:    toasts,
		clock:     cfg.Clock,
		lifetimes: cfg.Lifetimes,
		logger:    log.WithComponent("dispatcher"),
	}
}

// Load replaces the ledger view with the stored collection
func (d *Dispatcher) Load() {
	records := storage.Load[types.Notification](d.store, storage.KeyNotifications)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.ledger.Replace(records)
}

// SetViewer sets the identity toasts are addressed to. An empty id means
// nobody is logged in.
func (d *Dispatcher) SetViewer(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewer = userID
}

// Notify records a notification in the ledger, persists the ledger and,
// when this instance's viewer is an addressee, shows it as a toast. If the
// ledger cannot be persisted the dispatch is a no-op and the error is
// returned for logging.
func (d *Dispatcher) Notify(req Request) (types.Notification, error) {
	timer := metrics.NewTimer()

	if !req.Type.Valid() {
		d.logger.Warn().Str("type", string(req.Type)).Msg("unknown notification type, using info")
		req.Type = types.NotificationInfo
	}

	n := types.Notification{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Message:      req.Message,
		Type:         req.Type,
		Department:   req.Department,
		TargetUserID: req.TargetUserID,
		Timestamp:    d.clock.Now().UTC(),
		IsRead:       false,
	}

	d.mu.Lock()
	previous := d.ledger.Records()
	d.ledger.Prepend(n)
	if err := storage.Save(d.store, storage.KeyNotifications, d.ledger.Records()); err != nil {
		d.ledger.Replace(previous)
		d.mu.Unlock()
		d.logger.Error().Err(err).Str("notification_id", n.ID).Msg("failed to persist notification")
		return n, err
	}
	viewer := d.viewer
	d.mu.Unlock()

	addressing := "targeted"
	if n.IsBroadcast() {
		addressing = "broadcast"
	}
	metrics.NotificationsDispatched.WithLabelValues(string(n.Type), addressing).Inc()
	timer.ObserveDuration(metrics.DispatchDuration)

	logger := d.logger.With().Str("notification_id", n.ID).Logger()
	switch {
	case viewer == "":
		logger.Debug().Msg("no logged-in identity, skipping local toast")
	case n.VisibleTo(viewer):
		d.toasts.Add(n, d.lifetimes.Local(n.Type), toast.PathLocal)
	default:
		logger.Debug().Str("target", n.TargetUserID).Msg("notification addressed elsewhere")
	}
	return n, nil
}

// Receive applies a notifications snapshot delivered by a change signal.
// The ledger view is replaced, and the newest mention targeted at the viewer
// that was not the last one toasted from a signal is shown. At most one
// toast is shown per signal.
func (d *Dispatcher) Receive(value []byte) (toast.Entry, bool) {
	records := storage.Decode[types.Notification](storage.KeyNotifications, value)

	d.mu.Lock()
	d.ledger.Replace(records)
	if d.viewer == "" {
		d.mu.Unlock()
		return toast.Entry{}, false
	}

	var latest *types.Notification
	for i := range records {
		r := &records[i]
		if r.ID != d.lastProcessed && r.Type == types.NotificationMention && r.TargetUserID == d.viewer {
			latest = r
			break
		}
	}
	if latest == nil {
		d.mu.Unlock()
		return toast.Entry{}, false
	}
	d.lastProcessed = latest.ID
	d.mu.Unlock()

	return d.toasts.Add(*latest, d.lifetimes.RemoteMention, toast.PathRemote), true
}

// Records returns the ledger view, newest first
func (d *Dispatcher) Records() []types.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ledger.Records()
}

// Drawer returns the records addressed to the viewer, newest first
func (d *Dispatcher) Drawer() []types.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ledger.VisibleTo(d.viewer)
}

// Len returns the number of records in the ledger view
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ledger.Len()
}

// UnreadCount counts unread records addressed to the viewer
func (d *Dispatcher) UnreadCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ledger.UnreadCount(d.viewer)
}

// MarkRead flags one record as read and persists the ledger
func (d *Dispatcher) MarkRead(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.ledger.Find(id); !ok {
		return ErrNotFound
	}
	if !d.ledger.MarkRead(id) {
		return nil
	}
	return d.persist()
}

// MarkAllRead flags every record as read and persists the ledger
func (d *Dispatcher) MarkAllRead() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ledger.MarkAllRead()
	return d.persist()
}

// Clear empties the ledger for every instance
func (d *Dispatcher) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ledger.Clear()
	return d.persist()
}

// persist writes the ledger view. Caller holds d.mu.
func (d *Dispatcher) persist() error {
	if err := storage.Save(d.store, storage.KeyNotifications, d.ledger.Records()); err != nil {
		d.logger.Error().Err(err).Msg("failed to persist notification ledger")
		return err
	}
	return nil
}
