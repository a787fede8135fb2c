package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"portal/internal/domain"
	"portal/internal/ledger"
	"portal/internal/middleware"
	"portal/internal/review"
)

func (a *App) SessionOpen(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing actor identity")
		return
	}

	task, ok := a.loadTask(w, r)
	if !ok {
		return
	}

	session, err := a.Sessions.Open(task, ledger.Author{ID: actor.ID, DisplayName: actor.DisplayName}, actor.Role)
	if err != nil {
		a.domainError(w, err)
		return
	}
	session.SetCountry(middleware.CountryFromContext(r.Context()))

	a.json(w, http.StatusCreated, sessionPayload(session))
}

func (a *App) SessionGet(w http.ResponseWriter, r *http.Request) {
	session, ok := a.loadSession(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, sessionPayload(session))
}

type entryRequest struct {
	Category              string   `json:"category"`
	Note                  string   `json:"note"`
	MediaTimestampSeconds *float64 `json:"media_timestamp_seconds,omitempty"`
}

func (a *App) SessionAddEntry(w http.ResponseWriter, r *http.Request) {
	session, ok := a.loadSession(w, r)
	if !ok {
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	category, ok := domain.ParseEntryCategory(req.Category)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown entry category "+req.Category)
		return
	}

	entry, err := session.AddEntry(category, req.Note, req.MediaTimestampSeconds)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, entryPayload(entry))
}

func (a *App) SessionWithdrawEntry(w http.ResponseWriter, r *http.Request) {
	session, ok := a.loadSession(w, r)
	if !ok {
		return
	}
	if err := session.WithdrawEntry(chi.URLParam(r, "entryID")); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "withdrawn"})
}

func (a *App) SessionResolveEntry(w http.ResponseWriter, r *http.Request) {
	session, ok := a.loadSession(w, r)
	if !ok {
		return
	}
	var req struct {
		Resolved bool `json:"resolved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := session.ResolveEntry(chi.URLParam(r, "entryID"), req.Resolved); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"resolved": req.Resolved})
}

func (a *App) SessionPlayback(w http.ResponseWriter, r *http.Request) {
	session, ok := a.loadSession(w, r)
	if !ok {
		return
	}
	var req struct {
		AssetID         string   `json:"asset_id,omitempty"`
		PositionSeconds *float64 `json:"position_seconds,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.AssetID != "" {
		if err := session.LoadVideo(req.AssetID); err != nil {
			a.domainError(w, err)
			return
		}
	}
	if req.PositionSeconds != nil {
		if err := session.SetPlayback(*req.PositionSeconds); err != nil {
			a.domainError(w, err)
			return
		}
	}
	a.json(w, http.StatusOK, sessionPayload(session))
}

func (a *App) SessionApprove(w http.ResponseWriter, r *http.Request) {
	session, ok := a.loadSession(w, r)
	if !ok {
		return
	}
	var req struct {
		ConfirmFinal bool `json:"confirm_final"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}

	if _, err := session.Approve(r.Context(), req.ConfirmFinal); err != nil {
		a.domainError(w, err)
		return
	}
	a.closeAndPersist(w, r, session)
}

func (a *App) SessionRequestRevisions(w http.ResponseWriter, r *http.Request) {
	session, ok := a.loadSession(w, r)
	if !ok {
		return
	}
	var req struct {
		AssignTo string     `json:"assign_to,omitempty"`
		DueDate  *time.Time `json:"due_date,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}

	opts := review.RevisionOptions{DueDate: req.DueDate}
	if req.AssignTo != "" {
		role, ok := domain.ParseRole(req.AssignTo)
		if !ok {
			a.error(w, http.StatusBadRequest, "bad_request", "unknown role "+req.AssignTo)
			return
		}
		opts.AssignTo = role
	}

	if _, err := session.RequestRevisions(r.Context(), opts); err != nil {
		a.domainError(w, err)
		return
	}
	a.closeAndPersist(w, r, session)
}

func (a *App) SessionAbandon(w http.ResponseWriter, r *http.Request) {
	session, ok := a.loadSession(w, r)
	if !ok {
		return
	}
	if err := session.Abandon(r.Context()); err != nil {
		a.domainError(w, err)
		return
	}
	// Abandoning leaves the task untouched; there is nothing to persist.
	a.json(w, http.StatusOK, sessionPayload(session))
}

// closeAndPersist emits the session's final payload and writes the computed
// transition to the task store in a single call.
func (a *App) closeAndPersist(w http.ResponseWriter, r *http.Request, session *review.Session) {
	outcome, err := session.Close()
	if err != nil {
		a.domainError(w, err)
		return
	}

	task := outcome.Task
	if err := a.Tasks.UpdateStatus(r.Context(), task.ID, task.Status, task.RevisionCycle, task.RevisionCycle, outcome.RevisionRequest); err != nil {
		a.domainError(w, err)
		return
	}

	payload := map[string]any{
		"session": sessionPayload(session),
		"task":    taskPayload(task),
		"route":   outcome.NextDestination,
	}
	if outcome.RevisionRequest != nil {
		payload["revision_request"] = revisionPayload(outcome.RevisionRequest)
	}
	a.json(w, http.StatusOK, payload)
}

func (a *App) loadSession(w http.ResponseWriter, r *http.Request) (*review.Session, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "session id required")
		return nil, false
	}
	session, err := a.Sessions.Get(id)
	if err != nil {
		a.domainError(w, err)
		return nil, false
	}
	return session, true
}

func sessionPayload(s *review.Session) map[string]any {
	entries := make([]map[string]any, 0, len(s.Entries()))
	for _, e := range s.Entries() {
		entries = append(entries, entryPayload(e))
	}
	return map[string]any{
		"id":            s.ID,
		"task_id":       s.TaskID,
		"state":         s.State(),
		"reviewer_id":   s.Reviewer.ID,
		"reviewer_role": s.ReviewerRole,
		"opened_at":     s.OpenedAt,
		"expires_at":    s.ExpiresAt(),
		"entries":       entries,
	}
}
