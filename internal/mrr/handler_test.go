package mrr

import (
	"testing"
	"time"

	"construction-backend/internal/models"
)

func TestTransitionUpdates(t *testing.T) {
	now := time.Now()
	userID := uint(42)

	tests := []struct {
		name     string
		action   Action
		next     models.MrrStatus
		wantKeys []string
	}{
		{"submit writes status only", ActionSubmit, models.MrrSubmitted, []string{"status"}},
		{"approve stamps the approver", ActionApprove, models.MrrApproved,
			[]string{"status", "approval", "approved_by_id", "approved_at"}},
		{"reject flips approval only", ActionReject, models.MrrRejected,
			[]string{"status", "approval"}},
		{"cancel writes status only", ActionCancel, models.MrrCancelled, []string{"status"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updates := transitionUpdates(tt.action, tt.next, userID, now)
			if len(updates) != len(tt.wantKeys) {
				t.Fatalf("got %d columns %v, want %v", len(updates), updates, tt.wantKeys)
			}
			for _, k := range tt.wantKeys {
				if _, ok := updates[k]; !ok {
					t.Errorf("missing column %q", k)
				}
			}
			if updates["status"] != tt.next {
				t.Errorf("status = %v, want %s", updates["status"], tt.next)
			}
		})
	}

	got := transitionUpdates(ActionApprove, models.MrrApproved, userID, now)
	if got["approval"] != models.ApprovalApproved || got["approved_by_id"] != userID || got["approved_at"] != now {
		t.Errorf("approve columns = %v", got)
	}
}

// Two racing requests load the same DRAFT: one cancels, the other submits.
// The cancel commits first. The submit's write is guarded by the status it
// decided against, which no longer matches, so the stale decision must be
// retried, and re-deciding against the committed CANCELLED state is refused
// by both the table and the override path.
func TestStaleDecisionAgainstCommittedState(t *testing.T) {
	if _, err := Next(models.MrrDraft, ActionCancel, false); err != nil {
		t.Fatalf("cancel from DRAFT: %v", err)
	}
	if _, err := Next(models.MrrDraft, ActionSubmit, false); err != nil {
		t.Fatalf("submit decided against the stale DRAFT snapshot: %v", err)
	}

	if _, err := Next(models.MrrCancelled, ActionSubmit, false); err == nil {
		t.Error("submit from CANCELLED must be rejected")
	}
	if err := ForceNext(models.MrrCancelled, models.MrrSubmitted); err == nil {
		t.Error("forcing out of CANCELLED must be rejected")
	}
}
