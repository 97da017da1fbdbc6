package mrr

import (
	"errors"
	"testing"

	"construction-backend/internal/models"
)

func TestNext_TransitionTable(t *testing.T) {
	tests := []struct {
		name           string
		current        models.MrrStatus
		action         Action
		inventoryReady bool
		want           models.MrrStatus
		wantErr        error
	}{
		{"submit from draft", models.MrrDraft, ActionSubmit, false, models.MrrSubmitted, nil},
		{"cancel from draft", models.MrrDraft, ActionCancel, false, models.MrrCancelled, nil},
		{"approve from submitted", models.MrrSubmitted, ActionApprove, false, models.MrrApproved, nil},
		{"reject from submitted", models.MrrSubmitted, ActionReject, false, models.MrrRejected, nil},
		{"review from submitted", models.MrrSubmitted, ActionReview, false, models.MrrUnderReview, nil},
		{"approve from under review", models.MrrUnderReview, ActionApprove, false, models.MrrApproved, nil},
		{"process from approved when ready", models.MrrApproved, ActionProcess, true, models.MrrProcessing, nil},
		{"process from approved when not ready", models.MrrApproved, ActionProcess, false, "", ErrNotReadyForIssue},
		{"complete from processing", models.MrrProcessing, ActionComplete, false, models.MrrCompleted, nil},
		{"cancel from processing", models.MrrProcessing, ActionCancel, false, models.MrrCancelled, nil},

		// Inadmissible combinations.
		{"process from draft", models.MrrDraft, ActionProcess, true, "", ErrInvalidTransition},
		{"approve from draft", models.MrrDraft, ActionApprove, false, "", ErrInvalidTransition},
		{"submit twice", models.MrrSubmitted, ActionSubmit, false, "", ErrInvalidTransition},
		{"approve from approved", models.MrrApproved, ActionApprove, false, "", ErrInvalidTransition},

		// Terminal states admit nothing.
		{"submit from completed", models.MrrCompleted, ActionSubmit, false, "", ErrInvalidTransition},
		{"cancel from cancelled", models.MrrCancelled, ActionCancel, false, "", ErrInvalidTransition},
		{"approve from rejected", models.MrrRejected, ActionApprove, false, "", ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.current, tt.action, tt.inventoryReady)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Next(%s, %s) error = %v, want %v", tt.current, tt.action, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Next(%s, %s) unexpected error: %v", tt.current, tt.action, err)
			}
			if got != tt.want {
				t.Errorf("Next(%s, %s) = %s, want %s", tt.current, tt.action, got, tt.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []models.MrrStatus{models.MrrCompleted, models.MrrRejected, models.MrrCancelled}
	for _, s := range terminal {
		if !IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = false, want true", s)
		}
	}
	for _, s := range []models.MrrStatus{models.MrrDraft, models.MrrSubmitted, models.MrrUnderReview, models.MrrApproved, models.MrrProcessing} {
		if IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = true, want false", s)
		}
	}
}

func TestRoleAllowed(t *testing.T) {
	// Approval-shaped actions need a manager role.
	if err := RoleAllowed(ActionApprove, models.RoleSiteEngineer); err == nil {
		t.Error("site_engineer should not be allowed to approve")
	}
	if err := RoleAllowed(ActionApprove, models.RoleProjectManager); err != nil {
		t.Errorf("project_manager should be allowed to approve: %v", err)
	}
	if err := RoleAllowed(ActionReject, models.RoleStoreKeeper); err == nil {
		t.Error("store_keeper should not be allowed to reject")
	}

	// Submit and cancel are open to every authenticated role.
	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleProjectManager, models.RoleSiteEngineer, models.RoleStoreKeeper} {
		if err := RoleAllowed(ActionSubmit, role); err != nil {
			t.Errorf("%s should be allowed to submit: %v", role, err)
		}
		if err := RoleAllowed(ActionCancel, role); err != nil {
			t.Errorf("%s should be allowed to cancel: %v", role, err)
		}
	}
}

func TestAdmissibleActions(t *testing.T) {
	tests := []struct {
		name           string
		status         models.MrrStatus
		role           models.UserRole
		inventoryReady bool
		want           []Action
	}{
		{"draft never offers process", models.MrrDraft, models.RoleAdmin, true, []Action{ActionSubmit, ActionCancel}},
		{"submitted for manager", models.MrrSubmitted, models.RoleProjectManager, false, []Action{ActionReview, ActionApprove, ActionReject, ActionCancel}},
		{"submitted for engineer", models.MrrSubmitted, models.RoleSiteEngineer, false, []Action{ActionCancel}},
		{"approved and ready", models.MrrApproved, models.RoleStoreKeeper, true, []Action{ActionProcess, ActionCancel}},
		{"approved but not ready", models.MrrApproved, models.RoleStoreKeeper, false, []Action{ActionCancel}},
		{"completed is terminal", models.MrrCompleted, models.RoleAdmin, true, []Action{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdmissibleActions(tt.status, tt.role, tt.inventoryReady)
			if len(got) != len(tt.want) {
				t.Fatalf("AdmissibleActions(%s, %s) = %v, want %v", tt.status, tt.role, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("AdmissibleActions(%s, %s)[%d] = %s, want %s", tt.status, tt.role, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestForceNext(t *testing.T) {
	if err := ForceNext(models.MrrCancelled, models.MrrDraft); err == nil {
		t.Error("force out of CANCELLED must be refused")
	}
	if err := ForceNext(models.MrrCompleted, models.MrrProcessing); err != nil {
		t.Errorf("force out of COMPLETED should be allowed for admins: %v", err)
	}
	if err := ForceNext(models.MrrDraft, "NOT_A_STATUS"); err == nil {
		t.Error("force to an unknown status must be refused")
	}
	if err := ForceNext(models.MrrDraft, models.MrrDraft); err == nil {
		t.Error("force to the current status must be refused")
	}
	if err := ForceNext(models.MrrDraft, models.MrrCompleted); err != nil {
		t.Errorf("force DRAFT -> COMPLETED should pass validation: %v", err)
	}
}
