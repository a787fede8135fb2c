package domain

import "time"

// TaskCategory enumerates the kinds of creative work the portal routes.
type TaskCategory string

const (
	TaskCategoryDesign      TaskCategory = "design"
	TaskCategoryVideo       TaskCategory = "video"
	TaskCategoryCopywriting TaskCategory = "copywriting"
	TaskCategoryReview      TaskCategory = "review"
)

// TaskStatus enumerates task lifecycle states. The set is closed: every
// consumer shares this vocabulary, and legacy external values are translated
// once at the boundary, never inside business logic.
type TaskStatus string

const (
	TaskStatusDraft              TaskStatus = "DRAFT"
	TaskStatusSubmitted          TaskStatus = "SUBMITTED"
	TaskStatusInQC               TaskStatus = "IN_QC"
	TaskStatusClientReview       TaskStatus = "CLIENT_REVIEW"
	TaskStatusReadyForScheduling TaskStatus = "READY_FOR_SCHEDULING"
	TaskStatusCompleted          TaskStatus = "COMPLETED"
	TaskStatusRejected           TaskStatus = "REJECTED"
)

// Role enumerates the actors that hold, review, or receive tasks.
type Role string

const (
	RoleEditor    Role = "editor"
	RoleQC        Role = "qc"
	RoleClient    Role = "client"
	RoleScheduler Role = "scheduler"
)

// Decision is a reviewer's verdict on a task under review.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Task is a unit of creative work routed through review stages.
// RequiresClientReview is fixed at creation. RevisionCycle only ever
// increases; SLA and overdue reporting depend on it. RevisionHistory is
// append-only to preserve audit integrity.
type Task struct {
	ID                   string
	Title                string
	Description          string
	Category             TaskCategory
	Status               TaskStatus
	OriginRole           Role
	RequiresClientReview bool
	RevisionCycle        int
	AssetVersions        []AssetVersion
	RevisionHistory      []RevisionRequest
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ParseRole validates an external role string against the closed set.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleEditor, RoleQC, RoleClient, RoleScheduler:
		return Role(raw), true
	}
	return "", false
}

// ParseTaskCategory validates an external task category string.
func ParseTaskCategory(raw string) (TaskCategory, bool) {
	switch TaskCategory(raw) {
	case TaskCategoryDesign, TaskCategoryVideo, TaskCategoryCopywriting, TaskCategoryReview:
		return TaskCategory(raw), true
	}
	return "", false
}
