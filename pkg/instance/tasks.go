package instance

import (
	"fmt"
	"time"

	"github.com/cuemby/hoconnect/pkg/notify"
	"github.com/cuemby/hoconnect/pkg/storage"
	"github.com/cuemby/hoconnect/pkg/types"
)

// AddTask creates a task from a draft and notifies the assignee. The
// creator is the logged-in employee, if any.
func (i *Instance) AddTask(draft types.TaskDraft) (types.Task, error) {
	if draft.Title == "" {
		return types.Task{}, fmt.Errorf("%w: title", ErrEmptyText)
	}
	if draft.Status == "" {
		draft.Status = types.TaskStatusTodo
	}

	task := types.Task{
		ID:           "t-" + shortID(),
		Title:        draft.Title,
		Description:  draft.Description,
		Status:       draft.Status,
		Department:   draft.Department,
		AssigneeID:   draft.AssigneeID,
		AssigneeName: draft.AssigneeName,
		CreatedAt:    i.timestamp(),
		OrderTime:    draft.OrderTime,
		Deadline:     draft.Deadline,
		SubTasks:     []types.CheckItem{},
	}
	for _, label := range draft.SuggestedSubTasks {
		task.SubTasks = append(task.SubTasks, types.CheckItem{ID: shortID(), Label: label})
	}

	i.mu.Lock()
	if i.currentUser != nil {
		task.CreatorID = i.currentUser.ID
		task.CreatorName = i.currentUser.Name
		task.CreatorDepartment = i.currentUser.Department
	}
	i.tasks = append([]types.Task{task}, i.tasks...)
	err := saveLocked(i, storage.KeyTasks, i.tasks)
	i.mu.Unlock()
	if err != nil {
		return types.Task{}, err
	}

	i.notify(notify.Request{
		Title:        "มอบหมายงานใหม่",
		Message:      fmt.Sprintf("ส่งงาน \"%s\" ให้คุณ %s แล้ว", task.Title, task.AssigneeName),
		Type:         types.NotificationInfo,
		Department:   task.Department,
		TargetUserID: task.AssigneeID,
	})
	return task, nil
}

// UpdateTaskStatus moves a task to another column. Completing a task is
// announced to everyone.
func (i *Instance) UpdateTaskStatus(taskID string, status types.TaskStatus) error {
	i.mu.Lock()
	idx := i.taskIndexLocked(taskID)
	if idx < 0 {
		i.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	i.tasks[idx].Status = status
	title := i.tasks[idx].Title
	err := saveLocked(i, storage.KeyTasks, i.tasks)
	i.mu.Unlock()
	if err != nil {
		return err
	}

	if status == types.TaskStatusCompleted {
		i.notify(notify.Request{
			Title:   "ทำภารกิจสำเร็จ!",
			Message: fmt.Sprintf("งาน \"%s\" ถูกทำเครื่องหมายว่าเสร็จสิ้นแล้ว", title),
			Type:    types.NotificationSuccess,
		})
	}
	return nil
}

// UpdateSubTask ticks or unticks one check item of a task
func (i *Instance) UpdateSubTask(taskID, subTaskID string, done bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	idx := i.taskIndexLocked(taskID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	task := i.tasks[idx]
	subTasks := append([]types.CheckItem{}, task.SubTasks...)
	found := false
	for n := range subTasks {
		if subTasks[n].ID == subTaskID {
			subTasks[n].IsDone = done
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrSubTaskNotFound, subTaskID)
	}
	task.SubTasks = subTasks
	i.tasks[idx] = task
	return saveLocked(i, storage.KeyTasks, i.tasks)
}

func (i *Instance) taskIndexLocked(taskID string) int {
	for idx, t := range i.tasks {
		if t.ID == taskID {
			return idx
		}
	}
	return -1
}

// ConvertIssueToTask drafts a fix task for an issue, assigned to the first
// employee of the issue's department, and adds it
func (i *Instance) ConvertIssueToTask(issueID string) (types.Task, error) {
	i.mu.RLock()
	issue, ok := i.issueLocked(issueID)
	var assignee types.Employee
	assigned := false
	if ok {
		for _, e := range i.employees {
			if e.Department == issue.Department {
				assignee, assigned = e, true
				break
			}
		}
	}
	i.mu.RUnlock()
	if !ok {
		return types.Task{}, fmt.Errorf("%w: %s", ErrIssueNotFound, issueID)
	}

	draft := types.TaskDraft{
		Title:        "[แก้ไข] " + preview(issue.Text, 30),
		Description:  "สร้างจากปัญหา: " + issue.Text,
		Status:       types.TaskStatusTodo,
		Department:   issue.Department,
		AssigneeName: "รอมอบหมาย",
		Deadline:     i.clock.Now().Add(24 * time.Hour).UTC().Format("2006-01-02"),
	}
	if assigned {
		draft.AssigneeID = assignee.ID
		draft.AssigneeName = assignee.Name
	}
	return i.AddTask(draft)
}
