// Package workflow is the single source of truth for task status transitions
// and routing. Dashboards and review surfaces are pure callers: none of them
// re-derives these rules.
package workflow

import (
	"portal/internal/domain"
)

// Outcome is the computed result of a review decision: what the task becomes
// and which role's queue receives it. The caller persists it in one write.
type Outcome struct {
	NextStatus      domain.TaskStatus
	NextDestination domain.Role
}

// DestinationFor derives the role currently holding a task. It is never
// stored; it always follows from the status and the originating role.
func DestinationFor(status domain.TaskStatus, origin domain.Role) domain.Role {
	switch status {
	case domain.TaskStatusDraft, domain.TaskStatusRejected:
		return origin
	case domain.TaskStatusSubmitted, domain.TaskStatusInQC:
		return domain.RoleQC
	case domain.TaskStatusClientReview:
		return domain.RoleClient
	case domain.TaskStatusReadyForScheduling, domain.TaskStatusCompleted:
		return domain.RoleScheduler
	}
	return origin
}

// Resolve computes the next status and destination for a review decision.
// The (status, decision) table is closed: QC approval routes to client review
// when the task requires it and straight to scheduling otherwise; rejection
// from either review stage returns the task to its originating role. Any pair
// outside the table fails with InvalidTransitionError, and a caller whose
// role does not currently hold the task fails with NotAuthorizedError.
func Resolve(task *domain.Task, role domain.Role, decision domain.Decision) (Outcome, error) {
	reviewable := task.Status == domain.TaskStatusInQC || task.Status == domain.TaskStatusClientReview
	if !reviewable || (decision != domain.DecisionApprove && decision != domain.DecisionReject) {
		return Outcome{}, &domain.InvalidTransitionError{Status: task.Status, Decision: decision}
	}

	holder := DestinationFor(task.Status, task.OriginRole)
	if role != holder {
		return Outcome{}, &domain.NotAuthorizedError{Role: role, Required: holder, Action: string(decision)}
	}

	if decision == domain.DecisionReject {
		return Outcome{NextStatus: domain.TaskStatusRejected, NextDestination: task.OriginRole}, nil
	}

	switch task.Status {
	case domain.TaskStatusInQC:
		if task.RequiresClientReview {
			return Outcome{NextStatus: domain.TaskStatusClientReview, NextDestination: domain.RoleClient}, nil
		}
		return Outcome{NextStatus: domain.TaskStatusCompleted, NextDestination: domain.RoleScheduler}, nil
	default: // CLIENT_REVIEW
		return Outcome{NextStatus: domain.TaskStatusCompleted, NextDestination: domain.RoleScheduler}, nil
	}
}

// Submit moves a draft into the review pipeline. Only the originating role
// may submit its own work.
func Submit(task *domain.Task, role domain.Role) error {
	if task.Status != domain.TaskStatusDraft {
		return &domain.InvalidTransitionError{Status: task.Status, Decision: "submit"}
	}
	if role != task.OriginRole {
		return &domain.NotAuthorizedError{Role: role, Required: task.OriginRole, Action: "submit"}
	}
	task.Status = domain.TaskStatusSubmitted
	return nil
}

// BeginQC moves a submitted task into technical review.
func BeginQC(task *domain.Task, role domain.Role) error {
	if task.Status != domain.TaskStatusSubmitted {
		return &domain.InvalidTransitionError{Status: task.Status, Decision: "begin_qc"}
	}
	if role != domain.RoleQC {
		return &domain.NotAuthorizedError{Role: role, Required: domain.RoleQC, Action: "begin qc"}
	}
	task.Status = domain.TaskStatusInQC
	return nil
}

// Resubmit returns a rejected task to the review queue. The revision cycle
// counter increments by exactly one and never decreases.
func Resubmit(task *domain.Task, role domain.Role) error {
	if task.Status != domain.TaskStatusRejected {
		return &domain.InvalidTransitionError{Status: task.Status, Decision: "resubmit"}
	}
	if role != task.OriginRole {
		return &domain.NotAuthorizedError{Role: role, Required: task.OriginRole, Action: "resubmit"}
	}
	task.Status = domain.TaskStatusSubmitted
	task.RevisionCycle++
	return nil
}

// Schedule parks a completed task in the scheduling queue. This status is set
// by the scheduling collaborator only; Resolve never produces it.
func Schedule(task *domain.Task, role domain.Role) error {
	if task.Status != domain.TaskStatusCompleted {
		return &domain.InvalidTransitionError{Status: task.Status, Decision: "schedule"}
	}
	if role != domain.RoleScheduler {
		return &domain.NotAuthorizedError{Role: role, Required: domain.RoleScheduler, Action: "schedule"}
	}
	task.Status = domain.TaskStatusReadyForScheduling
	return nil
}
