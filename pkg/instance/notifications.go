package instance

import (
	"github.com/cuemby/hoconnect/pkg/notify"
	"github.com/cuemby/hoconnect/pkg/toast"
	"github.com/cuemby/hoconnect/pkg/types"
)

// Notify dispatches a notification from this instance
func (i *Instance) Notify(req notify.Request) (types.Notification, error) {
	return i.dispatcher.Notify(req)
}

// Notifications returns the drawer: records addressed to the logged-in
// employee, newest first
func (i *Instance) Notifications() []types.Notification {
	return i.dispatcher.Drawer()
}

// LedgerLen returns the number of records in this instance's ledger view,
// whoever they are addressed to
func (i *Instance) LedgerLen() int {
	return i.dispatcher.Len()
}

// UnreadCount counts unread records addressed to the logged-in employee
func (i *Instance) UnreadCount() int {
	return i.dispatcher.UnreadCount()
}

// MarkRead marks one notification as read for every instance
func (i *Instance) MarkRead(id string) error {
	return i.dispatcher.MarkRead(id)
}

// MarkAllRead marks every notification as read
func (i *Instance) MarkAllRead() error {
	return i.dispatcher.MarkAllRead()
}

// ClearNotifications empties the ledger
func (i *Instance) ClearNotifications() error {
	return i.dispatcher.Clear()
}

// Toasts returns the visible toasts, newest first
func (i *Instance) Toasts() []toast.Entry {
	return i.toasts.Visible()
}

// DismissToast removes a toast before it expires
func (i *Instance) DismissToast(id string) bool {
	return i.toasts.Dismiss(id)
}

// ObserveToasts registers fn for every toast added or removed
func (i *Instance) ObserveToasts(fn func(toast.Event)) {
	i.toasts.Observe(fn)
}
