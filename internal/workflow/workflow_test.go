package workflow

import (
	"errors"
	"testing"

	"portal/internal/domain"
)

func newTask(status domain.TaskStatus, requiresClientReview bool) *domain.Task {
	return &domain.Task{
		ID:                   "task-1",
		Title:                "launch teaser",
		Category:             domain.TaskCategoryVideo,
		Status:               status,
		OriginRole:           domain.RoleEditor,
		RequiresClientReview: requiresClientReview,
	}
}

func TestResolveDefinedPairs(t *testing.T) {
	tests := []struct {
		name            string
		status          domain.TaskStatus
		role            domain.Role
		decision        domain.Decision
		requiresClient  bool
		wantStatus      domain.TaskStatus
		wantDestination domain.Role
	}{
		{
			name:            "qc approve with client review",
			status:          domain.TaskStatusInQC,
			role:            domain.RoleQC,
			decision:        domain.DecisionApprove,
			requiresClient:  true,
			wantStatus:      domain.TaskStatusClientReview,
			wantDestination: domain.RoleClient,
		},
		{
			name:            "qc approve without client review",
			status:          domain.TaskStatusInQC,
			role:            domain.RoleQC,
			decision:        domain.DecisionApprove,
			requiresClient:  false,
			wantStatus:      domain.TaskStatusCompleted,
			wantDestination: domain.RoleScheduler,
		},
		{
			name:            "qc reject",
			status:          domain.TaskStatusInQC,
			role:            domain.RoleQC,
			decision:        domain.DecisionReject,
			requiresClient:  true,
			wantStatus:      domain.TaskStatusRejected,
			wantDestination: domain.RoleEditor,
		},
		{
			name:            "client approve",
			status:          domain.TaskStatusClientReview,
			role:            domain.RoleClient,
			decision:        domain.DecisionApprove,
			requiresClient:  true,
			wantStatus:      domain.TaskStatusCompleted,
			wantDestination: domain.RoleScheduler,
		},
		{
			name:            "client reject",
			status:          domain.TaskStatusClientReview,
			role:            domain.RoleClient,
			decision:        domain.DecisionReject,
			requiresClient:  true,
			wantStatus:      domain.TaskStatusRejected,
			wantDestination: domain.RoleEditor,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task := newTask(tc.status, tc.requiresClient)
			out, err := Resolve(task, tc.role, tc.decision)
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			if out.NextStatus != tc.wantStatus {
				t.Fatalf("NextStatus mismatch: got %q want %q", out.NextStatus, tc.wantStatus)
			}
			if out.NextDestination != tc.wantDestination {
				t.Fatalf("NextDestination mismatch: got %q want %q", out.NextDestination, tc.wantDestination)
			}
		})
	}
}

func TestResolveRejectsUndefinedPairs(t *testing.T) {
	reviewable := map[domain.TaskStatus]bool{
		domain.TaskStatusInQC:         true,
		domain.TaskStatusClientReview: true,
	}
	statuses := []domain.TaskStatus{
		domain.TaskStatusDraft,
		domain.TaskStatusSubmitted,
		domain.TaskStatusInQC,
		domain.TaskStatusClientReview,
		domain.TaskStatusReadyForScheduling,
		domain.TaskStatusCompleted,
		domain.TaskStatusRejected,
	}
	decisions := []domain.Decision{domain.DecisionApprove, domain.DecisionReject, domain.Decision("escalate")}

	for _, status := range statuses {
		for _, decision := range decisions {
			if reviewable[status] && (decision == domain.DecisionApprove || decision == domain.DecisionReject) {
				continue
			}
			task := newTask(status, true)
			role := DestinationFor(status, task.OriginRole)
			_, err := Resolve(task, role, decision)
			var invalid *domain.InvalidTransitionError
			if !errors.As(err, &invalid) {
				t.Fatalf("Resolve(%q, %q): expected InvalidTransitionError, got %v", status, decision, err)
			}
			if invalid.Status != status || invalid.Decision != decision {
				t.Fatalf("error detail mismatch: %+v", invalid)
			}
		}
	}
}

func TestResolveRequiresHoldingRole(t *testing.T) {
	tests := []struct {
		status domain.TaskStatus
		caller domain.Role
		holder domain.Role
	}{
		{domain.TaskStatusInQC, domain.RoleClient, domain.RoleQC},
		{domain.TaskStatusInQC, domain.RoleEditor, domain.RoleQC},
		{domain.TaskStatusClientReview, domain.RoleQC, domain.RoleClient},
		{domain.TaskStatusClientReview, domain.RoleScheduler, domain.RoleClient},
	}
	for _, tc := range tests {
		task := newTask(tc.status, true)
		_, err := Resolve(task, tc.caller, domain.DecisionApprove)
		var notAuth *domain.NotAuthorizedError
		if !errors.As(err, &notAuth) {
			t.Fatalf("Resolve(%q as %q): expected NotAuthorizedError, got %v", tc.status, tc.caller, err)
		}
		if notAuth.Role != tc.caller || notAuth.Required != tc.holder {
			t.Fatalf("error detail mismatch: %+v", notAuth)
		}
	}
}

func TestResubmitIncrementsRevisionCycle(t *testing.T) {
	task := newTask(domain.TaskStatusRejected, true)
	task.RevisionCycle = 2

	if err := Resubmit(task, domain.RoleEditor); err != nil {
		t.Fatalf("Resubmit returned error: %v", err)
	}
	if task.Status != domain.TaskStatusSubmitted {
		t.Fatalf("status mismatch: got %q", task.Status)
	}
	if task.RevisionCycle != 3 {
		t.Fatalf("revision cycle mismatch: got %d want 3", task.RevisionCycle)
	}

	// A second resubmit is invalid and must not touch the counter.
	err := Resubmit(task, domain.RoleEditor)
	var invalid *domain.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if task.RevisionCycle != 3 {
		t.Fatalf("revision cycle changed on failed resubmit: got %d", task.RevisionCycle)
	}
}

func TestResubmitRequiresOriginRole(t *testing.T) {
	task := newTask(domain.TaskStatusRejected, false)
	err := Resubmit(task, domain.RoleQC)
	var notAuth *domain.NotAuthorizedError
	if !errors.As(err, &notAuth) {
		t.Fatalf("expected NotAuthorizedError, got %v", err)
	}
	if task.Status != domain.TaskStatusRejected {
		t.Fatalf("status changed on failed resubmit: %q", task.Status)
	}
}

func TestBeginQC(t *testing.T) {
	task := newTask(domain.TaskStatusSubmitted, false)
	if err := BeginQC(task, domain.RoleQC); err != nil {
		t.Fatalf("BeginQC returned error: %v", err)
	}
	if task.Status != domain.TaskStatusInQC {
		t.Fatalf("status mismatch: got %q", task.Status)
	}

	if err := BeginQC(newTask(domain.TaskStatusSubmitted, false), domain.RoleEditor); err == nil {
		t.Fatal("expected error for non-QC caller")
	}
	if err := BeginQC(newTask(domain.TaskStatusDraft, false), domain.RoleQC); err == nil {
		t.Fatal("expected error for draft task")
	}
}

func TestDestinationFor(t *testing.T) {
	tests := []struct {
		status domain.TaskStatus
		want   domain.Role
	}{
		{domain.TaskStatusDraft, domain.RoleEditor},
		{domain.TaskStatusSubmitted, domain.RoleQC},
		{domain.TaskStatusInQC, domain.RoleQC},
		{domain.TaskStatusClientReview, domain.RoleClient},
		{domain.TaskStatusReadyForScheduling, domain.RoleScheduler},
		{domain.TaskStatusCompleted, domain.RoleScheduler},
		{domain.TaskStatusRejected, domain.RoleEditor},
	}
	for _, tc := range tests {
		if got := DestinationFor(tc.status, domain.RoleEditor); got != tc.want {
			t.Fatalf("DestinationFor(%q) = %q, want %q", tc.status, got, tc.want)
		}
	}
}
