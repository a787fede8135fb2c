package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portal/internal/domain"
)

// TaskRepositoryPG implements domain.TaskRepository using PostgreSQL.
type TaskRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new task repository backed by PostgreSQL.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepositoryPG {
	return &TaskRepositoryPG{pool: pool}
}

// Create inserts a new task record.
func (r *TaskRepositoryPG) Create(ctx context.Context, task *domain.Task) error {
	query := `
INSERT INTO tasks (id, title, description, category, status, origin_role, requires_client_review, revision_cycle)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Category,
		task.Status,
		task.OriginRole,
		task.RequiresClientReview,
		task.RevisionCycle,
	)
	return err
}

// GetByID fetches a task with its asset versions and revision history.
func (r *TaskRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `
SELECT id, title, description, category, status, origin_role, requires_client_review, revision_cycle, created_at, updated_at
FROM tasks
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, id)
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Category,
		&task.Status,
		&task.OriginRole,
		&task.RequiresClientReview,
		&task.RevisionCycle,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	versions, err := r.listVersions(ctx, id)
	if err != nil {
		return nil, err
	}
	task.AssetVersions = versions

	history, err := r.listRevisionHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	task.RevisionHistory = history

	return &task, nil
}

// UpdateStatus applies a computed transition in a single write. The stored
// revision cycle must still match expectedCycle; a stale read fails with
// StaleTaskError and the caller retries from a fresh task. The optional
// revision request is appended in the same transaction.
func (r *TaskRepositoryPG) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus, revisionCycle, expectedCycle int, req *domain.RevisionRequest) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
UPDATE tasks
SET status = $2,
    revision_cycle = $3,
    updated_at = NOW()
WHERE id = $1 AND revision_cycle = $4;
`, id, status, revisionCycle, expectedCycle)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1);`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return &domain.StaleTaskError{TaskID: id}
	}

	if req != nil {
		entriesJSON, err := json.Marshal(req.Entries)
		if err != nil {
			return fmt.Errorf("marshal revision entries: %w", err)
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO revision_requests (task_id, primary_category, combined_note, assign_to, due_date, entries, compiled_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`, id, req.PrimaryCategory, req.CombinedNote, req.AssignTo, req.DueDate, entriesJSON, req.CompiledAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *TaskRepositoryPG) listVersions(ctx context.Context, taskID string) ([]domain.AssetVersion, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, file_id, display_name, mime_class, size_bytes, folder_category, version_number, is_active, uploaded_at, uploaded_by, superseded_at, superseded_by
FROM asset_versions
WHERE task_id = $1
ORDER BY uploaded_at ASC;
`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []domain.AssetVersion
	for rows.Next() {
		var v domain.AssetVersion
		var supersededBy *string
		if err := rows.Scan(&v.ID, &v.FileID, &v.DisplayName, &v.MimeClass, &v.SizeBytes, &v.FolderCategory, &v.VersionNumber, &v.IsActive, &v.UploadedAt, &v.UploadedBy, &v.SupersededAt, &supersededBy); err != nil {
			return nil, err
		}
		if supersededBy != nil {
			v.SupersededBy = *supersededBy
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *TaskRepositoryPG) listRevisionHistory(ctx context.Context, taskID string) ([]domain.RevisionRequest, error) {
	rows, err := r.pool.Query(ctx, `
SELECT primary_category, combined_note, assign_to, due_date, entries, compiled_at
FROM revision_requests
WHERE task_id = $1
ORDER BY compiled_at ASC;
`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.RevisionRequest
	for rows.Next() {
		var req domain.RevisionRequest
		var entriesJSON []byte
		if err := rows.Scan(&req.PrimaryCategory, &req.CombinedNote, &req.AssignTo, &req.DueDate, &entriesJSON, &req.CompiledAt); err != nil {
			return nil, err
		}
		if len(entriesJSON) > 0 {
			if err := json.Unmarshal(entriesJSON, &req.Entries); err != nil {
				return nil, fmt.Errorf("unmarshal revision entries: %w", err)
			}
		}
		history = append(history, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}
