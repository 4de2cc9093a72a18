package instance

import (
	"fmt"

	"github.com/cuemby/hoconnect/pkg/log"
	"github.com/cuemby/hoconnect/pkg/presence"
	"github.com/cuemby/hoconnect/pkg/storage"
	"github.com/cuemby/hoconnect/pkg/types"
)

// Activity is a kind of tracked employee action
type Activity string

const (
	ActivityMessage Activity = "message"
	ActivityIssue   Activity = "issue"
	ActivityComment Activity = "comment"
)

// CurrentUser returns the logged-in employee
func (i *Instance) CurrentUser() (types.Employee, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.currentUser == nil {
		return types.Employee{}, false
	}
	return *i.currentUser, true
}

// Login picks an employee from the directory as this instance's identity
// and stamps their lastActive, which is what presence is derived from
func (i *Instance) Login(userID string) (types.Employee, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	idx := i.employeeIndexLocked(userID)
	if idx < 0 {
		return types.Employee{}, fmt.Errorf("%w: %s", ErrUnknownEmployee, userID)
	}
	return i.loginLocked(idx)
}

func (i *Instance) loginLocked(idx int) (types.Employee, error) {
	user := presence.Touch(i.employees[idx], i.clock.Now())
	i.employees[idx] = user
	if err := saveLocked(i, storage.KeyEmployees, i.employees); err != nil {
		return types.Employee{}, err
	}
	if err := storage.SaveDocument(i.store, storage.SessionKey(i.id), user); err != nil {
		return types.Employee{}, fmt.Errorf("failed to save session: %w", err)
	}

	i.currentUser = &user
	i.dispatcher.SetViewer(user.ID)
	logger := log.WithSession(i.id, user.ID)
	logger.Info().Str("name", user.Name).Msg("Logged in")
	return user, nil
}

// SignUp adds a new employee to the directory and logs them in
func (i *Instance) SignUp(emp types.Employee) (types.Employee, error) {
	if emp.Name == "" {
		return types.Employee{}, fmt.Errorf("%w: name", ErrEmptyText)
	}
	if emp.Department == "" {
		return types.Employee{}, ErrNoDepartment
	}
	emp.ID = "u-" + shortID()
	emp.Stats = &types.EmployeeStats{}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.employees = append(i.employees, emp)
	return i.loginLocked(len(i.employees) - 1)
}

// Logout clears this instance's identity. Toasts addressed to nobody are
// no longer shown.
func (i *Instance) Logout() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.logoutLocked()
}

func (i *Instance) logoutLocked() {
	if i.currentUser != nil {
		logger := log.WithSession(i.id, i.currentUser.ID)
		logger.Info().Msg("Logged out")
	}
	i.currentUser = nil
	i.dispatcher.SetViewer("")
	if err := i.store.Delete(storage.SessionKey(i.id)); err != nil {
		i.logger.Warn().Err(err).Msg("Failed to clear session")
	}
}

// DeleteEmployee removes an employee from the directory. Deleting the
// logged-in employee logs out.
func (i *Instance) DeleteEmployee(userID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	idx := i.employeeIndexLocked(userID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownEmployee, userID)
	}
	i.employees = append(i.employees[:idx:idx], i.employees[idx+1:]...)
	if err := saveLocked(i, storage.KeyEmployees, i.employees); err != nil {
		return err
	}
	if i.currentUser != nil && i.currentUser.ID == userID {
		i.logoutLocked()
	}
	return nil
}

// TrackActivity increments one of an employee's activity counters
func (i *Instance) TrackActivity(kind Activity, userID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.trackActivityLocked(kind, userID)
}

func (i *Instance) trackActivityLocked(kind Activity, userID string) {
	idx := i.employeeIndexLocked(userID)
	if idx < 0 {
		return
	}

	emp := i.employees[idx]
	stats := types.EmployeeStats{}
	if emp.Stats != nil {
		stats = *emp.Stats
	}
	switch kind {
	case ActivityMessage:
		stats.MessagesSent++
	case ActivityIssue:
		stats.IssuesReported++
	case ActivityComment:
		stats.CommentsMade++
	default:
		i.logger.Warn().Str("activity", string(kind)).Msg("Unknown activity kind")
		return
	}
	emp.Stats = &stats
	i.employees[idx] = emp

	_ = saveLocked(i, storage.KeyEmployees, i.employees)
}

func (i *Instance) employeeIndexLocked(userID string) int {
	for idx, e := range i.employees {
		if e.ID == userID {
			return idx
		}
	}
	return -1
}

// employeeLocked looks up an employee by id. Caller holds i.mu.
func (i *Instance) employeeLocked(userID string) (types.Employee, bool) {
	if idx := i.employeeIndexLocked(userID); idx >= 0 {
		return i.employees[idx], true
	}
	return types.Employee{}, false
}
