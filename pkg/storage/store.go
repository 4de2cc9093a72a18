package storage

import (
	"errors"
)

// ErrNotFound is returned by Get when a key has never been written
var ErrNotFound = errors.New("key not found")

// Collection keys. Each holds one JSON array and is always rewritten whole.
const (
	KeyEmployees     = "ho_connect_employees"
	KeyTasks         = "ho_connect_tasks"
	KeyIssues        = "ho_connect_issues"
	KeyNotifications = "ho_connect_notifications"

	// KeyCurrentUser prefixes the per-instance session key. It is never
	// signalled to other instances.
	KeyCurrentUser = "ho_connect_user"
)

// Collections lists the keys whose writes are signalled to other instances
var Collections = []string{KeyEmployees, KeyTasks, KeyIssues, KeyNotifications}

// IsCollection reports whether key is a shared, signalled collection
func IsCollection(key string) bool {
	for _, k := range Collections {
		if k == key {
			return true
		}
	}
	return false
}

// SessionKey returns the session key of one instance
func SessionKey(instanceID string) string {
	return KeyCurrentUser + ":" + instanceID
}

// Store is the durable key-value layer. Values are opaque serialized
// documents; there are no partial writes and no version checks, so
// concurrent writers of one key resolve as last writer wins.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}
