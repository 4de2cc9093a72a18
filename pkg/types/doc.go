/*
Package types defines the documents shared by every HO Connect instance.

All types here are plain JSON documents. Each collection (employees, tasks,
issues, notifications) is persisted as one JSON array under its own key, so
the field names use the camelCase spelling the stored documents already
carry.

# Core Types

Directory:
  - Employee: identity, department, lastActive timestamp and activity stats
  - JobLevel: executive, manager, supervisor, staff

Notifications:
  - Notification: durable ledger record; only IsRead is mutable
  - NotificationType: info, success, warning, mention

Work items:
  - Task, CheckItem, TaskStatus: kanban tasks and their sub-tasks
  - TaskDraft: input to task creation (typed or generated)
  - Issue, IssueComment, IssueSeverity: department problem reports
  - ChatMessage: room messages; DM rooms are named DM:<id>--<id>

Generated content:
  - ProjectIdea: one idea returned by the content generator

# Addressing

A Notification with an empty TargetUserID is a broadcast and is visible to
everyone. A targeted notification is still stored in the shared ledger but is
only surfaced (toast, unread count) for the target identity:

	n := &types.Notification{Type: types.NotificationMention, TargetUserID: "u-bob"}
	n.VisibleTo("u-bob")   // true
	n.VisibleTo("u-carol") // false

The Department field on a notification is a label for display. It is never
used for routing.
*/
package types
