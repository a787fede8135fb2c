package domain

import "time"

// AuditEvent records one terminal review action for the external audit
// collaborator. Country is an optional enrichment resolved from the actor's
// client IP.
type AuditEvent struct {
	Action    string
	TaskID    string
	ActorID   string
	ActorRole Role
	Country   string
	Timestamp time.Time
}
