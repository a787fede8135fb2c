package domain

import "context"

// TaskRepository defines persistence for tasks. Transitions are computed
// fully in memory and written in a single call; implementations reject stale
// writes via the revision-cycle guard so concurrent transitions for one task
// serialize.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	// UpdateStatus applies a computed transition. expectedCycle is the
	// revision cycle read before the transition was computed; the write
	// fails with StaleTaskError when the stored value has advanced. req,
	// when non-nil, is appended to the task's revision history in the same
	// write.
	UpdateStatus(ctx context.Context, id string, status TaskStatus, revisionCycle, expectedCycle int, req *RevisionRequest) error
}

// AssetVersionRepository handles persistence for uploaded asset versions.
type AssetVersionRepository interface {
	// RegisterVersion inserts the version and deactivates any previously
	// active version in the same (task, folder category) pair atomically.
	// The store owns version numbering: concurrent uploads from stale task
	// snapshots must still receive distinct, monotonic numbers, so
	// implementations recompute version.VersionNumber from the stored
	// lineage inside the same atomic unit.
	RegisterVersion(ctx context.Context, taskID string, version *AssetVersion) error
	ListByTaskID(ctx context.Context, taskID string) ([]AssetVersion, error)
}

// AuditLog receives terminal review actions. The core reports events; it does
// not store audit history itself.
type AuditLog interface {
	Record(ctx context.Context, event AuditEvent) error
}
