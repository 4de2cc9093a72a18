package instance

import (
	"fmt"
	"strings"

	"github.com/cuemby/hoconnect/pkg/mention"
	"github.com/cuemby/hoconnect/pkg/notify"
	"github.com/cuemby/hoconnect/pkg/storage"
	"github.com/cuemby/hoconnect/pkg/types"
)

const (
	chatPreviewLength  = 50
	issuePreviewLength = 40
)

// SendChatMessage posts text to a room as the logged-in employee. A direct
// message notifies the partner; in any other room each mentioned employee
// except the sender receives a mention.
func (i *Instance) SendChatMessage(room, text string) (types.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return types.ChatMessage{}, ErrEmptyText
	}
	if room == "" {
		room = types.GlobalRoom
	}

	i.mu.Lock()
	if i.currentUser == nil {
		i.mu.Unlock()
		return types.ChatMessage{}, ErrNotLoggedIn
	}
	sender := *i.currentUser
	msg := types.ChatMessage{
		ID:         shortID(),
		SenderID:   sender.ID,
		SenderName: sender.Name,
		Text:       text,
		Timestamp:  i.clock.Now().Format("15:04"),
		Room:       room,
	}
	i.messages = append(i.messages, msg)

	var requests []notify.Request
	if types.IsDMRoom(room) {
		if partnerID, ok := types.DMPartner(room, sender.ID); ok {
			if _, known := i.employeeLocked(partnerID); known {
				requests = append(requests, notify.Request{
					Title:        "📩 ข้อความใหม่จาก " + sender.Name,
					Message:      fmt.Sprintf("ข้อความส่วนตัว: \"%s\"", preview(text, chatPreviewLength)),
					Type:         types.NotificationInfo,
					Department:   sender.Department,
					TargetUserID: partnerID,
				})
			}
		}
	} else {
		for _, emp := range mention.Recipients(text, i.employees, sender.ID) {
			requests = append(requests, notify.Request{
				Title:        "🔔 กล่าวถึงคุณโดย " + sender.Name,
				Message:      fmt.Sprintf("ในห้อง %s: \"%s\"", types.RoomLabel(room), preview(text, chatPreviewLength)),
				Type:         types.NotificationMention,
				Department:   emp.Department,
				TargetUserID: emp.ID,
			})
		}
	}
	i.mu.Unlock()

	for _, req := range requests {
		i.notify(req)
	}
	i.TrackActivity(ActivityMessage, sender.ID)
	return msg, nil
}

// Messages returns the messages posted from this instance in room. Chat
// history is not shared between instances.
func (i *Instance) Messages(room string) []types.ChatMessage {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := []types.ChatMessage{}
	for _, m := range i.messages {
		if m.Room == room {
			out = append(out, m)
		}
	}
	return out
}

// ReportIssue raises an issue against a department as the logged-in employee
func (i *Instance) ReportIssue(department, text string, severity types.IssueSeverity) (types.Issue, error) {
	if strings.TrimSpace(text) == "" {
		return types.Issue{}, ErrEmptyText
	}
	if department == "" {
		return types.Issue{}, ErrNoDepartment
	}
	if severity == "" {
		severity = types.IssueSeverityNormal
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.currentUser == nil {
		return types.Issue{}, ErrNotLoggedIn
	}
	issue := types.Issue{
		ID:           shortID(),
		SenderID:     i.currentUser.ID,
		SenderName:   i.currentUser.Name,
		SenderAvatar: i.currentUser.Avatar,
		Department:   department,
		Text:         text,
		Severity:     severity,
		Timestamp:    i.timestamp(),
		Comments:     []types.IssueComment{},
	}
	i.issues = append([]types.Issue{issue}, i.issues...)
	if err := saveLocked(i, storage.KeyIssues, i.issues); err != nil {
		return types.Issue{}, err
	}
	i.trackActivityLocked(ActivityIssue, issue.SenderID)
	return issue, nil
}

// AddComment replies to an issue as the logged-in employee. Each mentioned
// employee except the commenter receives a mention.
func (i *Instance) AddComment(issueID, text string) (types.IssueComment, error) {
	if strings.TrimSpace(text) == "" {
		return types.IssueComment{}, ErrEmptyText
	}

	i.mu.Lock()
	if i.currentUser == nil {
		i.mu.Unlock()
		return types.IssueComment{}, ErrNotLoggedIn
	}
	idx := -1
	for n, iss := range i.issues {
		if iss.ID == issueID {
			idx = n
			break
		}
	}
	if idx < 0 {
		i.mu.Unlock()
		return types.IssueComment{}, fmt.Errorf("%w: %s", ErrIssueNotFound, issueID)
	}

	sender := *i.currentUser
	comment := types.IssueComment{
		ID:           shortID(),
		SenderID:     sender.ID,
		SenderName:   sender.Name,
		SenderAvatar: sender.Avatar,
		Text:         text,
		Timestamp:    i.timestamp(),
	}
	issue := i.issues[idx]
	issue.Comments = append(append([]types.IssueComment{}, issue.Comments...), comment)
	i.issues[idx] = issue
	if err := saveLocked(i, storage.KeyIssues, i.issues); err != nil {
		i.mu.Unlock()
		return types.IssueComment{}, err
	}

	var requests []notify.Request
	for _, emp := range mention.Recipients(text, i.employees, sender.ID) {
		requests = append(requests, notify.Request{
			Title:        "🔔 กล่าวถึงคุณโดย " + sender.Name,
			Message:      fmt.Sprintf("%s ได้แสดงความคิดเห็นในปัญหาของคุณ: \"%s\"", sender.Name, preview(issue.Text, issuePreviewLength)),
			Type:         types.NotificationMention,
			Department:   emp.Department,
			TargetUserID: emp.ID,
		})
	}
	i.trackActivityLocked(ActivityComment, sender.ID)
	i.mu.Unlock()

	for _, req := range requests {
		i.notify(req)
	}
	return comment, nil
}

func (i *Instance) issueLocked(issueID string) (types.Issue, bool) {
	for _, iss := range i.issues {
		if iss.ID == issueID {
			return iss, true
		}
	}
	return types.Issue{}, false
}
