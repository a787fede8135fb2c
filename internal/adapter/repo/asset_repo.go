package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portal/internal/domain"
)

// AssetVersionRepositoryPG implements domain.AssetVersionRepository using
// PostgreSQL.
type AssetVersionRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAssetVersionRepository constructs a new asset version repository.
func NewAssetVersionRepository(pool *pgxpool.Pool) *AssetVersionRepositoryPG {
	return &AssetVersionRepositoryPG{pool: pool}
}

// RegisterVersion persists the new version in one transaction: the parent
// task row is locked to serialize concurrent uploads, the version number is
// recomputed from the stored lineage (the caller's snapshot may be stale),
// previously active rows in the folder category flip inactive, and the new
// row is inserted. version.VersionNumber is overwritten with the assigned
// number.
func (r *AssetVersionRepositoryPG) RegisterVersion(ctx context.Context, taskID string, version *domain.AssetVersion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var one int
	if err := tx.QueryRow(ctx, `SELECT 1 FROM tasks WHERE id = $1 FOR UPDATE;`, taskID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	if err := tx.QueryRow(ctx, `
SELECT COALESCE(MAX(version_number), 0) + 1
FROM asset_versions
WHERE task_id = $1 AND folder_category = $2;
`, taskID, version.FolderCategory).Scan(&version.VersionNumber); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
UPDATE asset_versions
SET is_active = FALSE,
    superseded_at = $3,
    superseded_by = $4
WHERE task_id = $1 AND folder_category = $2 AND is_active;
`, taskID, version.FolderCategory, version.UploadedAt, version.ID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO asset_versions (id, task_id, file_id, display_name, mime_class, size_bytes, folder_category, version_number, is_active, uploaded_at, uploaded_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`,
		version.ID,
		taskID,
		version.FileID,
		version.DisplayName,
		version.MimeClass,
		version.SizeBytes,
		version.FolderCategory,
		version.VersionNumber,
		version.IsActive,
		version.UploadedAt,
		version.UploadedBy,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListByTaskID returns all versions recorded for the task in upload order.
func (r *AssetVersionRepositoryPG) ListByTaskID(ctx context.Context, taskID string) ([]domain.AssetVersion, error) {
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
