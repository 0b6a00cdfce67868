// Package analysis holds the SLA breach math used by the escalation sweeper.
package analysis

import (
	"time"

	"caredesk/backend/internal/models"
)

// NeedsEscalation reports whether a complaint has breached its department's
// SLA threshold. Age is measured from creation, not from the last update:
// escalation tracks total outstanding age. Terminal complaints and
// complaints that already escalated once are never flagged again.
func NeedsEscalation(c *models.Complaint, thresholdHours int, now time.Time) bool {
	if c.Escalated || c.Status.Terminal() {
		return false
	}
	return now.Sub(c.CreatedAt).Hours() > float64(thresholdHours)
}

// HoursOverdue returns how many whole hours past the threshold the
// complaint is. Zero or negative means it is not overdue.
func HoursOverdue(c *models.Complaint, thresholdHours int, now time.Time) int {
	return int(now.Sub(c.CreatedAt).Hours()) - thresholdHours
}
