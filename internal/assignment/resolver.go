// Package assignment picks the staff member who should own a complaint at a
// given seniority level.
package assignment

import (
	"caredesk/backend/internal/config"
	"caredesk/backend/internal/models"
	"caredesk/backend/internal/storage"
)

// Resolver routes complaints to staff by department and seniority level.
type Resolver struct {
	Storage storage.Storage
}

func NewResolver(s storage.Storage) *Resolver {
	return &Resolver{Storage: s}
}

// Resolve returns the active staff member a complaint at the given level
// should be routed to, or nil when the department has nobody to take it.
// Callers must treat the nil result as a valid, non-error outcome.
//
// Ties are broken deterministically by the lowest staff id, so routing is
// reproducible. When a department has no staff at the entry level the
// resolver degrades to any active staff in the department; at higher levels
// an empty tier means there is nobody to escalate to.
func (r *Resolver) Resolve(departmentID string, level int) (*models.User, error) {
	staff, err := r.Storage.FindActiveStaff(departmentID, level)
	if err != nil {
		return nil, err
	}

	if len(staff) == 0 && level == config.MinSeniorityLevel {
		// Degraded routing: any active staff is better than leaving a new
		// complaint unowned.
		staff, err = r.Storage.FindActiveStaff(departmentID, 0)
		if err != nil {
			return nil, err
		}
	}
	if len(staff) == 0 {
		return nil, nil
	}

	pick := staff[0]
	for _, member := range staff[1:] {
		if member.ID < pick.ID {
			pick = member
		}
	}
	return &pick, nil
}
