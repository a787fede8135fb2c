// Package versions tracks uploaded asset versions per folder category: each
// category carries its own monotonic version lineage, and exactly one version
// per category is active at a time.
package versions

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"portal/internal/domain"
)

// Upload describes a file-upload notification from the storage collaborator.
type Upload struct {
	FileID      string
	DisplayName string
	MimeType    string
	SizeBytes   int64
	UploadedBy  string
}

var categoryPrecedence = map[domain.FolderCategory]int{
	domain.FolderCategoryMain:         0,
	domain.FolderCategoryThumbnails:   1,
	domain.FolderCategoryTiles:        2,
	domain.FolderCategoryMusicLicense: 3,
	domain.FolderCategoryCovers:       4,
}

// RegisterUpload records a new asset version on the task snapshot. Any
// previously active version in the same folder category is superseded, not
// deleted, so the full lineage stays auditable. The first upload to a
// category starts its lineage at version 1. The version number computed here
// is provisional; the backing store reassigns it from the stored lineage when
// the version is persisted, since the snapshot may be stale.
func RegisterUpload(task *domain.Task, folder domain.FolderCategory, upload Upload, now time.Time) domain.AssetVersion {
	next := 1
	for _, v := range task.AssetVersions {
		if v.FolderCategory == folder && v.VersionNumber >= next {
			next = v.VersionNumber + 1
		}
	}

	version := domain.AssetVersion{
		ID:             uuid.NewString(),
		FileID:         upload.FileID,
		DisplayName:    upload.DisplayName,
		MimeClass:      domain.MimeClassOf(upload.MimeType),
		SizeBytes:      upload.SizeBytes,
		FolderCategory: folder,
		VersionNumber:  next,
		IsActive:       true,
		UploadedAt:     now,
		UploadedBy:     upload.UploadedBy,
	}

	for i := range task.AssetVersions {
		prev := &task.AssetVersions[i]
		if prev.FolderCategory == folder && prev.IsActive {
			supersededAt := now
			prev.IsActive = false
			prev.SupersededAt = &supersededAt
			prev.SupersededBy = version.ID
		}
	}

	task.AssetVersions = append(task.AssetVersions, version)
	return version
}

// ListActive returns the active version of every folder category, ordered by
// category precedence (main, thumbnails, tiles, music-license, covers, then
// any others alphabetically) and descending version number within a category.
func ListActive(versions []domain.AssetVersion) []domain.AssetVersion {
	var out []domain.AssetVersion
	for _, v := range versions {
		if v.IsActive {
			out = append(out, v)
		}
	}
	sortVersions(out)
	return out
}

// ListAll returns every recorded version, superseded ones included, in the
// same ordering as ListActive. This backs the version-history view.
func ListAll(versions []domain.AssetVersion) []domain.AssetVersion {
	out := make([]domain.AssetVersion, len(versions))
	copy(out, versions)
	sortVersions(out)
	return out
}

func sortVersions(versions []domain.AssetVersion) {
	sort.SliceStable(versions, func(i, j int) bool {
		a, b := versions[i], versions[j]
		if a.FolderCategory != b.FolderCategory {
			ra, oka := categoryPrecedence[a.FolderCategory]
			rb, okb := categoryPrecedence[b.FolderCategory]
			switch {
			case oka && okb:
				return ra < rb
			case oka:
				return true
			case okb:
				return false
			default:
				return a.FolderCategory < b.FolderCategory
			}
		}
		return a.VersionNumber > b.VersionNumber
	})
}
