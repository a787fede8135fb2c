package review

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"portal/internal/domain"
	"portal/internal/ledger"
	"portal/internal/workflow"
)

// Manager opens review sessions and enforces the one-open-session-per-task
// rule. The task store serializes transitions per task; the manager only
// guards its own session maps. Lock order is session before manager: a
// session's release callback takes m.mu, so the manager never touches a
// session's locked state while holding m.mu itself.
type Manager struct {
	mu       sync.Mutex
	open     map[string]*Session // keyed by task ID, OPEN sessions only
	sessions map[string]*Session // keyed by session ID

	idleTimeout time.Duration
	audit       domain.AuditLog
	now         func() time.Time
}

func NewManager(idleTimeout time.Duration, audit domain.AuditLog) *Manager {
	return &Manager{
		open:        make(map[string]*Session),
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		audit:       audit,
		now:         time.Now,
	}
}

// Open starts a review session. The reviewer must be the role currently
// holding the task, and the task must be in a reviewable status.
func (m *Manager) Open(task *domain.Task, reviewer ledger.Author, role domain.Role) (*Session, error) {
	if task.Status != domain.TaskStatusInQC && task.Status != domain.TaskStatusClientReview {
		return nil, &domain.TaskNotReviewableError{Status: task.Status}
	}
	holder := workflow.DestinationFor(task.Status, task.OriginRole)
	if role != holder {
		return nil, &domain.NotAuthorizedError{Role: role, Required: holder, Action: "open a review session"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Presence in m.open is the open marker; terminal actions remove it.
	if _, ok := m.open[task.ID]; ok {
		return nil, &domain.SessionAlreadyOpenError{TaskID: task.ID}
	}

	now := m.now()
	s := &Session{
		ID:           uuid.NewString(),
		TaskID:       task.ID,
		Reviewer:     reviewer,
		ReviewerRole: role,
		OpenedAt:     now,
		expiresAt:    now.Add(m.idleTimeout),
		state:        StateOpen,
		task:         task,
		notes:        ledger.New(),
		idleTimeout:  m.idleTimeout,
		audit:        m.audit,
		now:          m.now,
	}
	s.release = func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.open[s.TaskID] == s {
			delete(m.open, s.TaskID)
		}
	}

	m.open[task.ID] = s
	m.sessions[s.ID] = s
	return s, nil
}

// Get looks up a session by ID. An open session that sat past its idle
// deadline is abandoned on the way out, freeing the task for another
// reviewer; callers observe it in the ABANDONED state.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.ExpireIfIdle(m.now())
	return s, nil
}
