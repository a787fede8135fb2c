package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"portal/internal/domain"
	"portal/internal/review"
)

// App aggregates the dependencies shared by every handler.
type App struct {
	Tasks    domain.TaskRepository
	Assets   domain.AssetVersionRepository
	Audit    domain.AuditLog
	Sessions *review.Manager
	Logger   zerolog.Logger
}

func NewApp(tasks domain.TaskRepository, assets domain.AssetVersionRepository, audit domain.AuditLog, sessions *review.Manager, logger zerolog.Logger) *App {
	return &App{
		Tasks:    tasks,
		Assets:   assets,
		Audit:    audit,
		Sessions: sessions,
		Logger:   logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}

// domainError maps core errors onto stable machine codes. The message always
// carries the offending state, role, or field so the UI can render a precise
// explanation.
func (a *App) domainError(w http.ResponseWriter, err error) {
	var (
		invalidTransition *domain.InvalidTransitionError
		notAuthorized     *domain.NotAuthorizedError
		notReviewable     *domain.TaskNotReviewableError
		alreadyOpen       *domain.SessionAlreadyOpenError
		notTerminal       *domain.SessionNotTerminalError
		notOpen           *domain.SessionNotOpenError
		stale             *domain.StaleTaskError
	)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &invalidTransition):
		a.error(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.As(err, &notAuthorized):
		a.error(w, http.StatusForbidden, "not_authorized", err.Error())
	case errors.As(err, &notReviewable):
		a.error(w, http.StatusConflict, "task_not_reviewable", err.Error())
	case errors.As(err, &alreadyOpen):
		a.error(w, http.StatusConflict, "session_already_open", err.Error())
	case errors.As(err, &notTerminal):
		a.error(w, http.StatusConflict, "session_not_terminal", err.Error())
	case errors.As(err, &notOpen):
		a.error(w, http.StatusConflict, "session_not_open", err.Error())
	case errors.As(err, &stale):
		a.error(w, http.StatusConflict, "stale_task", err.Error())
	case errors.Is(err, domain.ErrConfirmationRequired):
		a.error(w, http.StatusUnprocessableEntity, "confirmation_required", err.Error())
	case errors.Is(err, domain.ErrEmptyNote):
		a.error(w, http.StatusUnprocessableEntity, "empty_note", err.Error())
	case errors.Is(err, domain.ErrNoEntries):
		a.error(w, http.StatusUnprocessableEntity, "no_entries", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("unhandled error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
