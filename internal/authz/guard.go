// Package authz decides whether an acting user may perform an operation on
// a complaint. The guard is consulted at the call sites of the lifecycle
// service, not inside it, so policy can change without touching lifecycle
// logic.
package authz

import (
	"caredesk/backend/internal/faults"
	"caredesk/backend/internal/models"
)

// Action names an operation the guard can rule on.
type Action string

const (
	ActionRead       Action = "read"
	ActionCreate     Action = "create"
	ActionTransition Action = "transition"
	ActionReassign   Action = "reassign"
	ActionDelete     Action = "delete"
)

// minSeniority is the extra seniority floor some actions carry on top of
// department membership. Assigning complaints is supervisor and above.
var minSeniority = map[Action]int{
	ActionReassign: 2,
}

type Guard struct{}

func NewGuard() *Guard {
	return &Guard{}
}

// Authorize returns nil to allow, a *faults.ForbiddenError (or
// faults.ErrCrossDepartment for cross-department reassignment) to deny.
// Rules are evaluated in order: unrestricted admin, patient ownership,
// department membership, then per-action seniority floors.
func (g *Guard) Authorize(actor *models.User, action Action, complaint *models.Complaint) error {
	if actor == nil {
		return faults.Forbidden("no acting user")
	}

	if actor.Role == models.RoleAdmin {
		return nil
	}

	if actor.Role == models.RolePatient {
		if action != ActionRead && action != ActionCreate {
			return faults.Forbidden("patients cannot modify complaints")
		}
		if complaint != nil && complaint.PatientID != actor.ID {
			return faults.Forbidden("patients can only access their own complaints")
		}
		return nil
	}

	if !actor.Role.IsStaff() {
		return faults.Forbidden("unknown role %q", actor.Role)
	}

	if action == ActionDelete {
		return faults.Forbidden("deleting complaints requires the admin role")
	}

	if complaint != nil && actor.DepartmentID != complaint.DepartmentID {
		if action == ActionReassign {
			return faults.ErrCrossDepartment
		}
		return faults.Forbidden("complaint belongs to another department")
	}

	if required, ok := minSeniority[action]; ok && actor.SeniorityLevel < required {
		return faults.Forbidden("action %s requires seniority level %d", action, required)
	}

	return nil
}
