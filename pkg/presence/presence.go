package presence

import (
	"time"

	"github.com/cuemby/hoconnect/pkg/types"
)

// Window is how long after its last activity an employee counts as online
const Window = 5 * time.Minute

// Stats is the presence of a whole directory at one instant
type Stats struct {
	OnlineCount  int
	OfflineCount int
	OnlineUsers  []types.Employee
}

// IsOnline reports whether emp was active less than window before now. An
// employee who was never active is offline.
func IsOnline(emp types.Employee, now time.Time, window time.Duration) bool {
	last, ok := emp.LastActiveAt()
	if !ok {
		return false
	}
	return now.Sub(last) < window
}

// Summarize recomputes presence for the full directory. Nothing is cached:
// the result is only valid for the now it was computed with.
func Summarize(directory []types.Employee, now time.Time, window time.Duration) Stats {
	stats := Stats{OnlineUsers: []types.Employee{}}
	for _, emp := range directory {
		if IsOnline(emp, now, window) {
			stats.OnlineUsers = append(stats.OnlineUsers, emp)
		}
	}
	stats.OnlineCount = len(stats.OnlineUsers)
	stats.OfflineCount = len(directory) - stats.OnlineCount
	return stats
}

// Touch returns emp with its lastActive stamped at now
func Touch(emp types.Employee, now time.Time) types.Employee {
	emp.LastActive = now.UTC().Format(time.RFC3339Nano)
	return emp
}
