// Package review orchestrates a reviewer's pass over a task: playback
// tracking, revision-entry capture, and the terminal approve /
// request-revisions / abandon actions that drive the task workflow.
package review

import (
	"context"
	"sync"
	"time"

	"portal/internal/domain"
	"portal/internal/ledger"
	"portal/internal/workflow"
)

// State tracks a session through its lifecycle. An open session ends in
// exactly one terminal state; it cannot be discarded silently.
type State string

const (
	StateIdle              State = "IDLE"
	StateOpen              State = "OPEN"
	StateApproved          State = "APPROVED"
	StateRevisionSubmitted State = "REVISION_SUBMITTED"
	StateAbandoned         State = "ABANDONED"
)

// Outcome is the final payload a closed session hands to the task store.
type Outcome struct {
	Task            *domain.Task
	NextDestination domain.Role
	RevisionRequest *domain.RevisionRequest
}

// RevisionOptions tune the compiled revision request. AssignTo defaults to
// the task's originating role.
type RevisionOptions struct {
	AssignTo domain.Role
	DueDate  *time.Time
}

// Session is one reviewer's pass over a task. Handlers call into the same
// session from concurrent requests, so every state-touching method holds the
// session mutex. The exported fields are set once at Open and never change.
type Session struct {
	ID           string
	TaskID       string
	Reviewer     ledger.Author
	ReviewerRole domain.Role
	OpenedAt     time.Time

	mu            sync.Mutex
	state         State
	task          *domain.Task
	notes         *ledger.Ledger
	outcome       *Outcome
	playback      *float64
	loadedAssetID string
	// expiresAt is an explicit idle deadline pushed forward on every
	// capture; Manager.Get abandons sessions that sat past it.
	expiresAt time.Time
	country   string

	idleTimeout time.Duration
	audit       domain.AuditLog
	release     func()
	now         func() time.Time
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Entries returns the captured revision entries in creation order.
func (s *Session) Entries() []domain.RevisionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes.Entries()
}

// ExpiresAt returns the current idle deadline.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// SetCountry tags subsequent audit events with the actor's resolved country.
func (s *Session) SetCountry(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.country = code
}

// LoadVideo marks a video asset as loaded in the player so subsequent entries
// capture the playback position automatically.
func (s *Session) LoadVideo(assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return &domain.SessionNotOpenError{State: string(s.state)}
	}
	s.loadedAssetID = assetID
	s.playback = nil
	s.touch()
	return nil
}

// SetPlayback records the current playback position in seconds.
func (s *Session) SetPlayback(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return &domain.SessionNotOpenError{State: string(s.state)}
	}
	if seconds < 0 {
		seconds = 0
	}
	s.playback = &seconds
	s.touch()
	return nil
}

// AddEntry captures one revision note. When no explicit timestamp is given
// and a video is loaded, the current playback position is attached;
// otherwise the entry is untimestamped.
func (s *Session) AddEntry(category domain.EntryCategory, note string, explicitTimestamp *float64) (domain.RevisionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return domain.RevisionEntry{}, &domain.SessionNotOpenError{State: string(s.state)}
	}
	ts := explicitTimestamp
	if ts == nil && s.loadedAssetID != "" && s.playback != nil {
		v := *s.playback
		ts = &v
	}
	entry, err := s.notes.AddEntry(s.Reviewer, category, note, ts, s.now())
	if err != nil {
		return domain.RevisionEntry{}, err
	}
	s.touch()
	return entry, nil
}

// WithdrawEntry removes an entry while the session is still open.
func (s *Session) WithdrawEntry(entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return &domain.SessionNotOpenError{State: string(s.state)}
	}
	if err := s.notes.Withdraw(entryID); err != nil {
		return err
	}
	s.touch()
	return nil
}

// ResolveEntry flips an entry's triage flag.
func (s *Session) ResolveEntry(entryID string, resolved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return &domain.SessionNotOpenError{State: string(s.state)}
	}
	return s.notes.SetResolved(entryID, resolved)
}

// Approve certifies the task and advances it through the workflow. Client
// approvals must carry the explicit final-confirmation flag; QC approvals
// have no confirmation gate.
func (s *Session) Approve(ctx context.Context, confirmFinal bool) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return nil, &domain.SessionNotOpenError{State: string(s.state)}
	}
	if s.ReviewerRole == domain.RoleClient && !confirmFinal {
		return nil, domain.ErrConfirmationRequired
	}

	out, err := workflow.Resolve(s.task, s.ReviewerRole, domain.DecisionApprove)
	if err != nil {
		return nil, err
	}

	s.task.Status = out.NextStatus
	s.task.UpdatedAt = s.now()
	s.state = StateApproved
	s.outcome = &Outcome{Task: s.task, NextDestination: out.NextDestination}
	s.release()
	s.recordAudit(ctx, "approve")
	return s.outcome, nil
}

// RequestRevisions compiles the ledger into a revision request and sends the
// task back to its originating role. At least one entry is required.
func (s *Session) RequestRevisions(ctx context.Context, opts RevisionOptions) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return nil, &domain.SessionNotOpenError{State: string(s.state)}
	}

	assignTo := opts.AssignTo
	if assignTo == "" {
		assignTo = s.task.OriginRole
	}
	req, err := s.notes.Compile(assignTo, opts.DueDate, s.now())
	if err != nil {
		return nil, err
	}

	out, err := workflow.Resolve(s.task, s.ReviewerRole, domain.DecisionReject)
	if err != nil {
		return nil, err
	}

	s.task.Status = out.NextStatus
	s.task.UpdatedAt = s.now()
	s.task.RevisionHistory = append(s.task.RevisionHistory, *req)
	s.state = StateRevisionSubmitted
	s.outcome = &Outcome{Task: s.task, NextDestination: out.NextDestination, RevisionRequest: req}
	s.release()
	s.recordAudit(ctx, "request_revisions")
	return s.outcome, nil
}

// Abandon ends the session without touching the task. The open-session slot
// is released so another reviewer can pick the task up.
func (s *Session) Abandon(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return &domain.SessionNotOpenError{State: string(s.state)}
	}
	s.abandonLocked()
	s.recordAudit(ctx, "abandon")
	return nil
}

// ExpireIfIdle abandons an open session whose idle deadline has passed and
// reports whether it did. The open-session slot is released either way the
// session ended.
func (s *Session) ExpireIfIdle(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen || !now.After(s.expiresAt) {
		return false
	}
	s.abandonLocked()
	s.recordAudit(context.Background(), "expire")
	return true
}

func (s *Session) abandonLocked() {
	s.state = StateAbandoned
	s.outcome = &Outcome{
		Task:            s.task,
		NextDestination: workflow.DestinationFor(s.task.Status, s.task.OriginRole),
	}
	s.release()
}

// Close hands back the final payload for persistence. It may only be called
// once the session reached a terminal state.
func (s *Session) Close() (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateApproved, StateRevisionSubmitted, StateAbandoned:
		return s.outcome, nil
	default:
		return nil, &domain.SessionNotTerminalError{State: string(s.state)}
	}
}

func (s *Session) touch() {
	s.expiresAt = s.now().Add(s.idleTimeout)
}

func (s *Session) recordAudit(ctx context.Context, action string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, domain.AuditEvent{
		Action:    action,
		TaskID:    s.TaskID,
		ActorID:   s.Reviewer.ID,
		ActorRole: s.ReviewerRole,
		Country:   s.country,
		Timestamp: s.now(),
	})
}
