package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"portal/internal/domain"
	"portal/internal/ledger"
	"portal/internal/middleware"
	"portal/internal/workflow"
)

type taskCreateRequest struct {
	Title                string `json:"title"`
	Description          string `json:"description"`
	Category             string `json:"category"`
	RequiresClientReview bool   `json:"requires_client_review"`
	Draft                bool   `json:"draft"`
}

func (a *App) TaskCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing actor identity")
		return
	}

	var req taskCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Title == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "title is required")
		return
	}
	category, ok := domain.ParseTaskCategory(req.Category)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("unknown task category %q", req.Category))
		return
	}

	status := domain.TaskStatusSubmitted
	if req.Draft {
		status = domain.TaskStatusDraft
	}
	task := &domain.Task{
		ID:                   uuid.NewString(),
		Title:                req.Title,
		Description:          req.Description,
		Category:             category,
		Status:               status,
		OriginRole:           actor.Role,
		RequiresClientReview: req.RequiresClientReview,
	}

	if err := a.Tasks.Create(r.Context(), task); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, taskPayload(task))
}

func (a *App) TaskGet(w http.ResponseWriter, r *http.Request) {
	task, ok := a.loadTask(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, taskPayload(task))
}

// taskStatusPatch is the serialized form of a workflow transition. The QC and
// client dashboards historically sent their verdicts under different keys and
// status vocabularies; all of them are accepted here and translated once.
type taskStatusPatch struct {
	Status          string `json:"status"`
	Route           string `json:"route,omitempty"`
	QCResult        string `json:"qc_result,omitempty"`
	ClientResult    string `json:"client_result,omitempty"`
	Feedback        string `json:"feedback,omitempty"`
	QCNotes         string `json:"qc_notes,omitempty"`
	ClientNotes     string `json:"client_notes,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

func (a *App) TaskStatusPatch(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing actor identity")
		return
	}

	var body taskStatusPatch
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	target, err := workflow.ParseStatus(body.Status)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	task, ok := a.loadTask(w, r)
	if !ok {
		return
	}
	expectedCycle := task.RevisionCycle

	var revisionReq *domain.RevisionRequest
	var auditAction string

	result := body.QCResult
	if result == "" {
		result = body.ClientResult
	}

	if result != "" {
		decision, err := workflow.ParseDecision(result)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		out, err := workflow.Resolve(task, actor.Role, decision)
		if err != nil {
			a.domainError(w, err)
			return
		}
		if out.NextStatus != target {
			a.error(w, http.StatusConflict, "invalid_transition",
				fmt.Sprintf("declared status %q does not match computed transition to %q", target, out.NextStatus))
			return
		}

		if decision == domain.DecisionReject {
			revisionReq, err = a.compilePatchFeedback(actor, task, body)
			if err != nil {
				a.domainError(w, err)
				return
			}
			task.RevisionHistory = append(task.RevisionHistory, *revisionReq)
			auditAction = "request_revisions"
		} else {
			auditAction = "approve"
		}
		task.Status = out.NextStatus
	} else {
		if err := a.applyDirectMove(task, actor.Role, target); err != nil {
			a.domainError(w, err)
			return
		}
	}

	destination := workflow.DestinationFor(task.Status, task.OriginRole)
	if body.Route != "" {
		declared, ok := domain.ParseRole(body.Route)
		if !ok || declared != destination {
			a.error(w, http.StatusConflict, "invalid_transition",
				fmt.Sprintf("declared route %q does not match computed destination %q", body.Route, destination))
			return
		}
	}

	if err := a.Tasks.UpdateStatus(r.Context(), task.ID, task.Status, task.RevisionCycle, expectedCycle, revisionReq); err != nil {
		a.domainError(w, err)
		return
	}

	if auditAction != "" {
		a.recordAudit(r, auditAction, task.ID, actor)
	}

	payload := map[string]any{
		"status":         task.Status,
		"route":          destination,
		"revision_cycle": task.RevisionCycle,
	}
	if revisionReq != nil {
		payload["revision_request"] = revisionPayload(revisionReq)
	}
	a.json(w, http.StatusOK, payload)
}

// applyDirectMove handles the non-verdict edges of the workflow: draft
// submission, QC pickup, resubmission after rejection, and scheduler parking.
func (a *App) applyDirectMove(task *domain.Task, role domain.Role, target domain.TaskStatus) error {
	switch target {
	case domain.TaskStatusSubmitted:
		if task.Status == domain.TaskStatusRejected {
			return workflow.Resubmit(task, role)
		}
		return workflow.Submit(task, role)
	case domain.TaskStatusInQC:
		return workflow.BeginQC(task, role)
	case domain.TaskStatusReadyForScheduling:
		return workflow.Schedule(task, role)
	default:
		return &domain.InvalidTransitionError{Status: task.Status, Decision: domain.Decision("set " + string(target))}
	}
}

// compilePatchFeedback wraps the free-form rejection text of a dashboard
// PATCH into a single-entry revision request so the payload downstream stays
// identical to a session-compiled one.
func (a *App) compilePatchFeedback(actor middleware.ActorInfo, task *domain.Task, body taskStatusPatch) (*domain.RevisionRequest, error) {
	note := body.Feedback
	if note == "" {
		note = body.QCNotes
	}
	if note == "" {
		note = body.ClientNotes
	}
	if note == "" {
		note = body.RejectionReason
	}

	notes := ledger.New()
	author := ledger.Author{ID: actor.ID, DisplayName: actor.DisplayName}
	if _, err := notes.AddEntry(author, domain.EntryCategoryOther, note, nil, time.Now()); err != nil {
		return nil, err
	}
	return notes.Compile(task.OriginRole, nil, time.Now())
}

func (a *App) TaskResubmit(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing actor identity")
		return
	}

	task, ok := a.loadTask(w, r)
	if !ok {
		return
	}
	expectedCycle := task.RevisionCycle

	if err := workflow.Resubmit(task, actor.Role); err != nil {
		a.domainError(w, err)
		return
	}
	if err := a.Tasks.UpdateStatus(r.Context(), task.ID, task.Status, task.RevisionCycle, expectedCycle, nil); err != nil {
		a.domainError(w, err)
		return
	}

	a.json(w, http.StatusOK, taskPayload(task))
}

func (a *App) loadTask(w http.ResponseWriter, r *http.Request) (*domain.Task, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "task id required")
		return nil, false
	}
	task, err := a.Tasks.GetByID(r.Context(), id)
	if err != nil {
		a.domainError(w, err)
		return nil, false
	}
	return task, true
}

func (a *App) recordAudit(r *http.Request, action, taskID string, actor middleware.ActorInfo) {
	if a.Audit == nil {
		return
	}
	err := a.Audit.Record(r.Context(), domain.AuditEvent{
		Action:    action,
		TaskID:    taskID,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Country:   middleware.CountryFromContext(r.Context()),
		Timestamp: time.Now(),
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("task_id", taskID).Msg("failed to record audit event")
	}
}

func taskPayload(task *domain.Task) map[string]any {
	return map[string]any{
		"id":                     task.ID,
		"title":                  task.Title,
		"description":            task.Description,
		"category":               task.Category,
		"status":                 task.Status,
		"origin_role":            task.OriginRole,
		"requires_client_review": task.RequiresClientReview,
		"revision_cycle":         task.RevisionCycle,
		"destination":            workflow.DestinationFor(task.Status, task.OriginRole),
		"created_at":             task.CreatedAt,
		"updated_at":             task.UpdatedAt,
	}
}

func revisionPayload(req *domain.RevisionRequest) map[string]any {
	entries := make([]map[string]any, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = entryPayload(e)
	}
	payload := map[string]any{
		"primary_category": req.PrimaryCategory,
		"combined_note":    req.CombinedNote,
		"assign_to":        req.AssignTo,
		"compiled_at":      req.CompiledAt,
		"entries":          entries,
	}
	if req.DueDate != nil {
		payload["due_date"] = req.DueDate
	}
	return payload
}

func entryPayload(e domain.RevisionEntry) map[string]any {
	payload := map[string]any{
		"id":          e.ID,
		"author_id":   e.AuthorID,
		"author_name": e.AuthorDisplayName,
		"category":    e.Category,
		"note":        e.Note,
		"created_at":  e.CreatedAt,
		"resolved":    e.Resolved,
	}
	if e.MediaTimestampSeconds != nil {
		payload["media_timestamp_seconds"] = *e.MediaTimestampSeconds
		payload["media_timestamp"] = ledger.FormatTimestamp(*e.MediaTimestampSeconds)
	}
	return payload
}
