package domain

import "time"

// EntryCategory classifies one piece of reviewer feedback.
type EntryCategory string

const (
	EntryCategoryDesign    EntryCategory = "design"
	EntryCategoryContent   EntryCategory = "content"
	EntryCategoryTiming    EntryCategory = "timing"
	EntryCategoryTechnical EntryCategory = "technical"
	EntryCategorySpelling  EntryCategory = "spelling"
	EntryCategoryOther     EntryCategory = "other"
)

// ParseEntryCategory validates an external entry category string.
func ParseEntryCategory(raw string) (EntryCategory, bool) {
	switch EntryCategory(raw) {
	case EntryCategoryDesign, EntryCategoryContent, EntryCategoryTiming,
		EntryCategoryTechnical, EntryCategorySpelling, EntryCategoryOther:
		return EntryCategory(raw), true
	}
	return "", false
}

// RevisionEntry is one reviewer note captured during a review session.
// MediaTimestampSeconds is present only when the note was taken against a
// video playback position. Entries are immutable once created except for the
// Resolved triage flag.
type RevisionEntry struct {
	ID                    string
	AuthorID              string
	AuthorDisplayName     string
	Category              EntryCategory
	Note                  string
	MediaTimestampSeconds *float64
	CreatedAt             time.Time
	Resolved              bool
}

// RevisionRequest is the compiled feedback bundle handed back upstream when a
// reviewer requests changes. It is created exactly once per rejection and is
// immutable thereafter.
type RevisionRequest struct {
	Entries         []RevisionEntry
	PrimaryCategory EntryCategory
	CombinedNote    string
	AssignTo        Role
	DueDate         *time.Time
	CompiledAt      time.Time
}
