package infra

import (
	"context"

	"github.com/rs/zerolog"

	"portal/internal/domain"
)

// LogAuditSink reports audit events to the service log. It is the fallback
// sink for environments where the external audit collector is not wired.
type LogAuditSink struct {
	logger zerolog.Logger
}

func NewLogAuditSink(logger zerolog.Logger) *LogAuditSink {
	return &LogAuditSink{logger: logger}
}

func (s *LogAuditSink) Record(_ context.Context, event domain.AuditEvent) error {
	e := s.logger.Info().
		Str("action", event.Action).
		Str("task_id", event.TaskID).
		Str("actor_id", event.ActorID).
		Str("actor_role", string(event.ActorRole)).
		Time("occurred_at", event.Timestamp)
	if event.Country != "" {
		e = e.Str("country", event.Country)
	}
	e.Msg("audit event")
	return nil
}
