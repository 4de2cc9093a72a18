// Package ledger holds the capped, newest-first notification history.
//
// The ledger is the append-only record of everything ever notified, shared
// by all users: a notification targeted at one user is still stored for
// everyone, and only VisibleTo and UnreadCount apply the addressing. Records
// are immutable apart from IsRead. Beyond Capacity the oldest records are
// evicted; Clear is the only other way a record disappears.
package ledger
