// Package ledger captures reviewer feedback during a review session and
// compiles it into the single structured revision request handed back
// upstream.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"portal/internal/domain"
)

// Author identifies the reviewer writing entries.
type Author struct {
	ID          string
	DisplayName string
}

// Ledger accumulates revision entries for one review session. Entries may be
// withdrawn while the session is open; the compiled request is immutable.
type Ledger struct {
	entries []domain.RevisionEntry
}

func New() *Ledger {
	return &Ledger{}
}

// AddEntry records one piece of feedback. mediaTimestamp, when non-nil, ties
// the note to a video playback position in seconds.
func (l *Ledger) AddEntry(author Author, category domain.EntryCategory, note string, mediaTimestamp *float64, now time.Time) (domain.RevisionEntry, error) {
	trimmed := strings.TrimSpace(note)
	if trimmed == "" {
		return domain.RevisionEntry{}, domain.ErrEmptyNote
	}

	entry := domain.RevisionEntry{
		ID:                uuid.NewString(),
		AuthorID:          author.ID,
		AuthorDisplayName: author.DisplayName,
		Category:          category,
		Note:              trimmed,
		CreatedAt:         now,
	}
	if mediaTimestamp != nil {
		ts := *mediaTimestamp
		entry.MediaTimestampSeconds = &ts
	}

	l.entries = append(l.entries, entry)
	return entry, nil
}

// Withdraw removes an entry before compilation.
func (l *Ledger) Withdraw(entryID string) error {
	for i, e := range l.entries {
		if e.ID == entryID {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// SetResolved flips an entry's client-side triage flag.
func (l *Ledger) SetResolved(entryID string, resolved bool) error {
	for i := range l.entries {
		if l.entries[i].ID == entryID {
			l.entries[i].Resolved = resolved
			return nil
		}
	}
	return domain.ErrNotFound
}

// Entries returns a copy of the captured entries in creation order.
func (l *Ledger) Entries() []domain.RevisionEntry {
	out := make([]domain.RevisionEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

// Compile freezes the ledger into a revision request. Entries tied to a
// playback position come first, ascending by timestamp; untimestamped
// entries follow in the order they were written. A reviewer cannot request
// revisions without at least one concrete note.
func (l *Ledger) Compile(assignTo domain.Role, dueDate *time.Time, now time.Time) (*domain.RevisionRequest, error) {
	if len(l.entries) == 0 {
		return nil, domain.ErrNoEntries
	}

	ordered := make([]domain.RevisionEntry, len(l.entries))
	copy(ordered, l.entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].MediaTimestampSeconds, ordered[j].MediaTimestampSeconds
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		default:
			return false
		}
	})

	lines := make([]string, len(ordered))
	for i, e := range ordered {
		lines[i] = formatLine(e)
	}

	return &domain.RevisionRequest{
		Entries:         ordered,
		PrimaryCategory: ordered[0].Category,
		CombinedNote:    strings.Join(lines, "\n\n"),
		AssignTo:        assignTo,
		DueDate:         dueDate,
		CompiledAt:      now,
	}, nil
}

var upper = cases.Upper(language.Und)

// formatLine renders one entry as "[CATEGORY @ TIMESTAMP] note"; the
// timestamp segment is omitted for untimestamped entries. The format is
// load-bearing for downstream consumers (email digests, activity log) and
// must stay byte-stable.
func formatLine(e domain.RevisionEntry) string {
	tag := upper.String(string(e.Category))
	if e.MediaTimestampSeconds != nil {
		return fmt.Sprintf("[%s @ %s] %s", tag, FormatTimestamp(*e.MediaTimestampSeconds), e.Note)
	}
	return fmt.Sprintf("[%s] %s", tag, e.Note)
}

// FormatTimestamp renders a playback position the way video players show it:
// M:SS under an hour, H:MM:SS beyond. Fractional seconds floor.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
