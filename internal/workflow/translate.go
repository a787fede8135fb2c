package workflow

import (
	"fmt"
	"strings"

	"portal/internal/domain"
)

// ParseStatus translates an external status string into the closed enum. The
// dashboards historically exchanged several vocabularies for the same states
// ("pending", "READY_FOR_QC", "in_qc", "client_review", ...); they are all
// accepted here, once, so nothing downstream ever sees a legacy value.
func ParseStatus(raw string) (domain.TaskStatus, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, " ", "_")

	switch key {
	case "draft":
		return domain.TaskStatusDraft, nil
	case "submitted", "pending", "ready_for_qc":
		return domain.TaskStatusSubmitted, nil
	case "in_qc", "qc", "qc_review":
		return domain.TaskStatusInQC, nil
	case "client_review", "in_client_review", "pending_client":
		return domain.TaskStatusClientReview, nil
	case "ready_for_scheduling", "scheduling":
		return domain.TaskStatusReadyForScheduling, nil
	case "completed", "done", "published":
		return domain.TaskStatusCompleted, nil
	case "rejected", "needs_revision", "revision_requested":
		return domain.TaskStatusRejected, nil
	}
	return "", fmt.Errorf("unknown task status %q", raw)
}

// ParseDecision translates an external review verdict string. The QC and
// client dashboards report results as "approved"/"rejected" while the review
// modals send "approve"/"reject".
func ParseDecision(raw string) (domain.Decision, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approve", "approved", "pass", "passed":
		return domain.DecisionApprove, nil
	case "reject", "rejected", "fail", "failed", "revision", "changes_requested":
		return domain.DecisionReject, nil
	}
	return "", fmt.Errorf("unknown review decision %q", raw)
}
