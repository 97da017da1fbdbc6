package mrr

import (
	"errors"
	"fmt"

	"construction-backend/internal/models"
)

// Action: a requestable operation on an MRR. Regular actions move through the
// transition table below; the administrative force-status override is a
// separate code path (ForceNext) and never part of this table.
type Action string

const (
	ActionSubmit   Action = "submit"
	ActionReview   Action = "review"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionProcess  Action = "process"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrNotReadyForIssue = errors.New("all line items must be available before processing")
var ErrRoleNotAllowed = errors.New("role is not allowed to perform this action")

// transitions: (current status, action) -> next status. Anything absent is
// inadmissible. COMPLETED, REJECTED and CANCELLED are terminal.
var transitions = map[models.MrrStatus]map[Action]models.MrrStatus{
	models.MrrDraft: {
		ActionSubmit: models.MrrSubmitted,
		ActionCancel: models.MrrCancelled,
	},
	models.MrrSubmitted: {
		ActionReview:  models.MrrUnderReview,
		ActionApprove: models.MrrApproved,
		ActionReject:  models.MrrRejected,
		ActionCancel:  models.MrrCancelled,
	},
	models.MrrUnderReview: {
		ActionApprove: models.MrrApproved,
		ActionReject:  models.MrrRejected,
		ActionCancel:  models.MrrCancelled,
	},
	models.MrrApproved: {
		ActionProcess: models.MrrProcessing,
		ActionCancel:  models.MrrCancelled,
	},
	models.MrrProcessing: {
		ActionComplete: models.MrrCompleted,
		ActionCancel:   models.MrrCancelled,
	},
}

// actionRoles: which roles may request each action. Submit and cancel are open
// to every authenticated role; approval-shaped actions need a manager.
var actionRoles = map[Action][]models.UserRole{
	ActionSubmit:   nil,
	ActionCancel:   nil,
	ActionReview:   {models.RoleAdmin, models.RoleProjectManager},
	ActionApprove:  {models.RoleAdmin, models.RoleProjectManager},
	ActionReject:   {models.RoleAdmin, models.RoleProjectManager},
	ActionProcess:  {models.RoleAdmin, models.RoleProjectManager, models.RoleStoreKeeper},
	ActionComplete: {models.RoleAdmin, models.RoleProjectManager, models.RoleStoreKeeper},
}

func IsTerminal(s models.MrrStatus) bool {
	return s == models.MrrCompleted || s == models.MrrRejected || s == models.MrrCancelled
}

// Next resolves a regular action against the transition table. The process
// action additionally requires the derived inventory status to be ready for
// issue (every line item AVAILABLE).
func Next(current models.MrrStatus, action Action, inventoryReady bool) (models.MrrStatus, error) {
	row, ok := transitions[current]
	if !ok {
		return "", fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, current)
	}
	next, ok := row[action]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, action, current)
	}
	if action == ActionProcess && !inventoryReady {
		return "", ErrNotReadyForIssue
	}
	return next, nil
}

// RoleAllowed checks the role gate for an action. The table is an
// authorization prefilter; project scoping stays with the handler.
func RoleAllowed(action Action, role models.UserRole) error {
	allowed, ok := actionRoles[action]
	if !ok {
		return fmt.Errorf("%w: unknown action %s", ErrInvalidTransition, action)
	}
	if allowed == nil {
		return nil
	}
	for _, r := range allowed {
		if r == role {
			return nil
		}
	}
	return fmt.Errorf("%w: %s may not %s", ErrRoleNotAllowed, role, action)
}

// AdmissibleActions lists what a caller with the given role may do right now.
// Used to gate UI affordances server-side so an inadmissible action is refused
// before any write.
func AdmissibleActions(current models.MrrStatus, role models.UserRole, inventoryReady bool) []Action {
	row := transitions[current]
	actions := make([]Action, 0, len(row))
	// Stable order for responses.
	for _, a := range []Action{ActionSubmit, ActionReview, ActionApprove, ActionReject, ActionProcess, ActionComplete, ActionCancel} {
		if _, ok := row[a]; !ok {
			continue
		}
		if RoleAllowed(a, role) != nil {
			continue
		}
		if a == ActionProcess && !inventoryReady {
			continue
		}
		actions = append(actions, a)
	}
	return actions
}

// ForceNext validates the administrative force-status override. It bypasses
// the transition table but still refuses to leave CANCELLED and refuses
// unknown target states. Callers must require the admin role and a note.
func ForceNext(current, target models.MrrStatus) error {
	if current == models.MrrCancelled {
		return fmt.Errorf("%w: CANCELLED cannot be overridden", ErrInvalidTransition)
	}
	if !validStatus(target) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}
	if current == target {
		return fmt.Errorf("%w: already %s", ErrInvalidTransition, current)
	}
	return nil
}

func validStatus(s models.MrrStatus) bool {
	switch s {
	case models.MrrDraft, models.MrrSubmitted, models.MrrUnderReview,
		models.MrrApproved, models.MrrRejected, models.MrrProcessing,
		models.MrrCompleted, models.MrrCancelled:
		return true
	}
	return false
}
