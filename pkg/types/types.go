package types

import (
	"sort"
	"strings"
	"time"
)

// Employee is one entry of the shared employee directory
type Employee struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Role       string         `json:"role"`
	Level      JobLevel       `json:"level"`
	Department string         `json:"department"`
	Avatar     string         `json:"avatar"`
	LastActive string         `json:"lastActive,omitempty"` // ISO-8601, empty = never active
	Stats      *EmployeeStats `json:"stats,omitempty"`
}

// LastActiveAt parses LastActive. ok is false when the employee was never
// active or the stored timestamp is not ISO-8601.
func (e *Employee) LastActiveAt() (t time.Time, ok bool) {
	if e == nil || e.LastActive == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, e.LastActive)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// EmployeeStats counts per-employee activity
type EmployeeStats struct {
	MessagesSent   int `json:"messagesSent"`
	IssuesReported int `json:"issuesReported"`
	CommentsMade   int `json:"commentsMade"`
}

// JobLevel is an employee's position in the hierarchy
type JobLevel string

const (
	JobLevelExecutive  JobLevel = "ระดับผู้บริหาร"
	JobLevelManager    JobLevel = "ผู้จัดการ"
	JobLevelSupervisor JobLevel = "หัวหน้างาน"
	JobLevelStaff      JobLevel = "พนักงาน"
)

// Department names shipped with the application. Employees, tasks and
// issues may introduce additional departments at runtime.
const (
	DepartmentSales     = "ฝ่ายขาย"
	DepartmentLogistics = "ฝ่ายขนส่ง"
	DepartmentMarketing = "ฝ่ายการตลาด"
	DepartmentHR        = "ฝ่ายบุคคล"
	DepartmentWarehouse = "คลังสินค้า"
)

// BaseDepartments lists the built-in departments in display order
var BaseDepartments = []string{
	DepartmentSales,
	DepartmentLogistics,
	DepartmentMarketing,
	DepartmentHR,
	DepartmentWarehouse,
}

// NotificationType classifies a notification
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationMention NotificationType = "mention"
)

// Valid reports whether t is one of the known notification types
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationMention:
		return true
	}
	return false
}

// Notification is a durable notification record. Only IsRead changes after
// creation.
type Notification struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	Type         NotificationType `json:"type"`
	Department   string           `json:"department,omitempty"`   // informational only
	TargetUserID string           `json:"targetUserId,omitempty"` // empty = broadcast
	Timestamp    time.Time        `json:"timestamp"`
	IsRead       bool             `json:"isRead"`
}

// IsBroadcast reports whether the notification addresses every viewer
func (n *Notification) IsBroadcast() bool {
	return n.TargetUserID == ""
}

// VisibleTo reports whether userID is an addressee of the notification
func (n *Notification) VisibleTo(userID string) bool {
	return n.IsBroadcast() || n.TargetUserID == userID
}

// TaskStatus is the kanban column of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "รอดำเนินการ"
	TaskStatusInProgress TaskStatus = "กำลังดำเนินงาน"
	TaskStatusCompleted  TaskStatus = "เสร็จสิ้น"
)

// CheckItem is a sub-task of a Task
type CheckItem struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	IsDone bool   `json:"isDone"`
}

// Task is an assignment from one employee to another
type Task struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	Status            TaskStatus  `json:"status"`
	Department        string      `json:"department"`
	CreatorID         string      `json:"creatorId"`
	CreatorName       string      `json:"creatorName"`
	CreatorDepartment string      `json:"creatorDepartment"`
	AssigneeID        string      `json:"assigneeId"`
	AssigneeName      string      `json:"assigneeName"`
	CreatedAt         string      `json:"createdAt"`
	OrderTime         string      `json:"orderTime,omitempty"`
	Deadline          string      `json:"deadline"`
	SubTasks          []CheckItem `json:"subTasks"`
}

// TaskDraft is the input for creating a task, either typed by a user or
// proposed by the content generator
type TaskDraft struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Status            TaskStatus `json:"status,omitempty"`
	Department        string     `json:"department"`
	AssigneeID        string     `json:"assigneeId"`
	AssigneeName      string     `json:"assigneeName"`
	Deadline          string     `json:"deadline"`
	OrderTime         string     `json:"orderTime,omitempty"`
	SuggestedSubTasks []string   `json:"suggestedSubTasks,omitempty"`
}

// IssueSeverity grades a reported issue
type IssueSeverity string

const (
	IssueSeverityNormal IssueSeverity = "ปกติ"
	IssueSeverityMedium IssueSeverity = "ปานกลาง"
	IssueSeverityUrgent IssueSeverity = "เร่งด่วน"
)

// IssueComment is a reply in an issue thread
type IssueComment struct {
	ID           string `json:"id"`
	SenderID     string `json:"senderId"`
	SenderName   string `json:"senderName"`
	SenderAvatar string `json:"senderAvatar"`
	Text         string `json:"text"`
	Timestamp    string `json:"timestamp"`
}

// Issue is a problem report raised against a department
type Issue struct {
	ID           string         `json:"id"`
	SenderID     string         `json:"senderId"`
	SenderName   string         `json:"senderName"`
	SenderAvatar string         `json:"senderAvatar"`
	Department   string         `json:"department"`
	Text         string         `json:"text"`
	Severity     IssueSeverity  `json:"severity"`
	Timestamp    string         `json:"timestamp"`
	Comments     []IssueComment `json:"comments"`
}

// ChatMessage is a message posted in a chat room. Rooms prefixed with
// DMRoomPrefix are private conversations.
type ChatMessage struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Timestamp  string `json:"timestamp"`
	Room       string `json:"room"`
}

const (
	// GlobalRoom is the all-department chat room
	GlobalRoom = "GLOBAL"

	// DMRoomPrefix marks a direct-message room
	DMRoomPrefix = "DM:"
)

// DMRoom returns the direct-message room shared by two employees. The room
// name is independent of argument order.
func DMRoom(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return DMRoomPrefix + ids[0] + "--" + ids[1]
}

// IsDMRoom reports whether room is a direct-message room
func IsDMRoom(room string) bool {
	return strings.HasPrefix(room, DMRoomPrefix)
}

// DMPartner returns the other participant of a direct-message room
func DMPartner(room, self string) (string, bool) {
	if !IsDMRoom(room) {
		return "", false
	}
	ids := strings.Split(strings.TrimPrefix(room, DMRoomPrefix), "--")
	for _, id := range ids {
		if id != "" && id != self {
			return id, true
		}
	}
	return "", false
}

// RoomLabel is the human-readable name of a group room
func RoomLabel(room string) string {
	if room == GlobalRoom {
		return "รวมทุกฝ่าย"
	}
	if i := strings.LastIndex(room, "/"); i >= 0 {
		return room[i+1:]
	}
	return room
}

// ProjectIdea is one suggestion returned by the content generator
type ProjectIdea struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Objective   string   `json:"objective"`
	KeySteps    []string `json:"keySteps"`
	Impact      string   `json:"impact"`
}
