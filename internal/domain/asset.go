package domain

import (
	"strings"
	"time"
)

// MimeClass buckets upload MIME types into the classes the review UI cares
// about.
type MimeClass string

const (
	MimeClassVideo    MimeClass = "video"
	MimeClassImage    MimeClass = "image"
	MimeClassDocument MimeClass = "document"
	MimeClassOther    MimeClass = "other"
)

// FolderCategory is a logical grouping of deliverable files with an
// independent version lineage. The well-known categories below have a fixed
// display precedence; any other value is allowed and sorts after them.
type FolderCategory string

const (
	FolderCategoryMain         FolderCategory = "main"
	FolderCategoryThumbnails   FolderCategory = "thumbnails"
	FolderCategoryTiles        FolderCategory = "tiles"
	FolderCategoryMusicLicense FolderCategory = "music-license"
	FolderCategoryCovers       FolderCategory = "covers"
)

// AssetVersion is one uploaded artifact. Versions are never deleted: when a
// newer upload lands in the same folder category, IsActive flips to false and
// the supersession pair is recorded.
type AssetVersion struct {
	ID             string
	FileID         string
	DisplayName    string
	MimeClass      MimeClass
	SizeBytes      int64
	FolderCategory FolderCategory
	VersionNumber  int
	IsActive       bool
	UploadedAt     time.Time
	UploadedBy     string
	SupersededAt   *time.Time
	SupersededBy   string
}

// MimeClassOf buckets a raw MIME type string.
func MimeClassOf(mimeType string) MimeClass {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mt, "video/"):
		return MimeClassVideo
	case strings.HasPrefix(mt, "image/"):
		return MimeClassImage
	case mt == "application/pdf",
		strings.HasPrefix(mt, "text/"),
		strings.Contains(mt, "document"),
		strings.Contains(mt, "msword"):
		return MimeClassDocument
	default:
		return MimeClassOther
	}
}
