package ledger

import (
	"github.com/cuemby/hoconnect/pkg/types"
)

// DefaultCapacity is the number of records the ledger keeps
const DefaultCapacity = 100

// Ledger is an instance's copy of the notification history, newest first.
// It is not safe for concurrent use; the owner serializes access.
type Ledger struct {
	capacity int
	records  []types.Notification
}

// New creates an empty ledger holding at most capacity records
func New(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ledger{
		capacity: capacity,
		records:  []types.Notification{},
	}
}

// Prepend adds n as the newest record and evicts the oldest records beyond
// capacity
func (l *Ledger) Prepend(n types.Notification) {
	next := make([]types.Notification, 0, min(len(l.records)+1, l.capacity))
	next = append(next, n)
	for _, r := range l.records {
		if len(next) == l.capacity {
			break
		}
		next = append(next, r)
	}
	l.records = next
}

// Replace discards the local view in favour of a full snapshot. Snapshots
// are never merged.
func (l *Ledger) Replace(records []types.Notification) {
	l.records = append([]types.Notification{}, records...)
}

// Records returns a copy of the records, newest first
func (l *Ledger) Records() []types.Notification {
	return append([]types.Notification{}, l.records...)
}

// Len returns the number of records
func (l *Ledger) Len() int {
	return len(l.records)
}

// Find returns the record with the given id
func (l *Ledger) Find(id string) (types.Notification, bool) {
	for _, r := range l.records {
		if r.ID == id {
			return r, true
		}
	}
	return types.Notification{}, false
}

// MarkRead flags one record as read. It reports whether the record changed.
func (l *Ledger) MarkRead(id string) bool {
	for i := range l.records {
		if l.records[i].ID == id {
			if l.records[i].IsRead {
				return false
			}
			l.records[i].IsRead = true
			return true
		}
	}
	return false
}

// MarkAllRead flags every record as read
func (l *Ledger) MarkAllRead() {
	for i := range l.records {
		l.records[i].IsRead = true
	}
}

// Clear removes every record
func (l *Ledger) Clear() {
	l.records = []types.Notification{}
}

// VisibleTo returns the records addressed to userID: broadcasts and records
// targeted at them
func (l *Ledger) VisibleTo(userID string) []types.Notification {
	out := []types.Notification{}
	for _, r := range l.records {
		if r.VisibleTo(userID) {
			out = append(out, r)
		}
	}
	return out
}

// UnreadCount counts unread records visible to userID
func (l *Ledger) UnreadCount(userID string) int {
	count := 0
	for _, r := range l.records {
		if !r.IsRead && r.VisibleTo(userID) {
			count++
		}
	}
	return count
}
