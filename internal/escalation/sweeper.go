// Package escalation promotes overdue complaints up the management
// hierarchy. The sweeper periodically scans open complaints, detects SLA
// breaches and drives the assignment resolver and the lifecycle state
// machine to escalate ownership.
package escalation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"caredesk/backend/internal/analysis"
	"caredesk/backend/internal/assignment"
	"caredesk/backend/internal/config"
	"caredesk/backend/internal/faults"
	"caredesk/backend/internal/lifecycle"
	"caredesk/backend/internal/metrics"
	"caredesk/backend/internal/models"
	"caredesk/backend/internal/storage"

	"github.com/sirupsen/logrus"
)

// Sweeper runs the periodic escalation pass.
type Sweeper struct {
	Storage   storage.Storage
	Lifecycle *lifecycle.Service
	Resolver  *assignment.Resolver
	Metrics   *metrics.Metrics
	Log       *logrus.Logger

	now func() time.Time
}

// NewSweeper builds a sweeper. Metrics may be nil.
func NewSweeper(s storage.Storage, lc *lifecycle.Service, r *assignment.Resolver, m *metrics.Metrics, log *logrus.Logger) *Sweeper {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Sweeper{
		Storage:   s,
		Lifecycle: lc,
		Resolver:  r,
		Metrics:   m,
		Log:       log,
		now:       time.Now,
	}
}

// SetClock replaces the time source, for deterministic tests.
func (s *Sweeper) SetClock(now func() time.Time) {
	s.now = now
}

// StartPeriodic runs RunOnce on the given interval until ctx is cancelled.
func (s *Sweeper) StartPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Log.WithField("interval", interval.String()).Info("escalation sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.Log.Info("escalation sweeper stopped")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.Log.WithError(err).Error("escalation sweep failed")
			}
		}
	}
}

// RunOnce performs one sweep over all non-terminal complaints. Complaints
// are processed independently: a failure on one is logged and skipped, the
// next scheduled sweep being the retry mechanism. The sweep is interruptible
// between complaints via ctx.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	got, err := s.Storage.AcquireSweepLock(config.SweepLockTTL)
	if err != nil {
		return err
	}
	if !got {
		s.Log.Debug("another replica holds the sweep lock, skipping cycle")
		return nil
	}
	defer s.Storage.ReleaseSweepLock()

	start := s.now()
	complaints, err := s.Storage.ListOpenComplaints()
	if err != nil {
		return fmt.Errorf("list open complaints: %w", err)
	}
	if s.Metrics != nil {
		s.Metrics.OpenComplaints.Set(float64(len(complaints)))
	}

	var escalated, failed int
	for i := range complaints {
		select {
		case <-ctx.Done():
			s.Log.WithField("remaining", len(complaints)-i).Info("sweep interrupted, skipping remaining complaints")
			return ctx.Err()
		default:
		}

		did, err := s.sweepOne(&complaints[i])
		if err != nil {
			failed++
			if s.Metrics != nil && errors.Is(err, faults.ErrDirectoryUnavailable) {
				s.Metrics.DirectoryErrors.Inc()
			}
			s.Log.WithError(err).WithField("complaint_id", complaints[i].ID).Warn("skipping complaint this cycle")
			continue
		}
		if did {
			escalated++
		}
	}

	if s.Metrics != nil {
		s.Metrics.SweepDuration.Observe(s.now().Sub(start).Seconds())
	}
	s.Log.WithFields(logrus.Fields{
		"scanned":   len(complaints),
		"escalated": escalated,
		"failed":    failed,
	}).Info("escalation sweep complete")
	return nil
}

// sweepOne escalates a single complaint if it has breached its department's
// threshold. Returns whether an escalation fired.
func (s *Sweeper) sweepOne(c *models.Complaint) (bool, error) {
	threshold, err := s.threshold(c.DepartmentID)
	if err != nil {
		return false, err
	}
	if !analysis.NeedsEscalation(c, threshold, s.now()) {
		return false, nil
	}

	overdue := analysis.HoursOverdue(c, threshold, s.now())
	note := fmt.Sprintf("escalated automatically: %d hours overdue against a %d hour threshold", overdue, threshold)
	if err := s.Escalate(c, config.SystemActorID, note); err != nil {
		return false, err
	}
	return true, nil
}

// Escalate promotes one complaint to the next seniority tier: resolve an
// owner at min(level+1, 4), reassign when one exists, then transition to
// Escalated. The transition bumps the escalation level and records the
// audit event whether or not a new owner was found. The manual
// re-escalation path reuses this same sequence.
//
// The transition is validated up front so a complaint that cannot enter
// Escalated is never reassigned first.
func (s *Sweeper) Escalate(c *models.Complaint, actorID, note string) error {
	if !c.Status.CanTransitionTo(models.StatusEscalated) {
		return fmt.Errorf("%s -> %s: %w", c.Status, models.StatusEscalated, faults.ErrInvalidTransition)
	}

	nextLevel := c.EscalationLevel + 1
	if nextLevel > config.MaxSeniorityLevel {
		nextLevel = config.MaxSeniorityLevel
	}

	assignee, err := s.Resolver.Resolve(c.DepartmentID, nextLevel)
	if err != nil {
		return err
	}
	if assignee != nil {
		if _, err := s.Lifecycle.Reassign(c.ID, actorID, &assignee.ID); err != nil {
			return err
		}
	}

	if _, err := s.Lifecycle.Transition(c.ID, actorID, models.StatusEscalated, note); err != nil {
		return err
	}
	if s.Metrics != nil {
		s.Metrics.Escalations.Inc()
	}
	s.Log.WithFields(logrus.Fields{
		"complaint_id": c.ID,
		"level":        nextLevel,
		"assigned":     assignee != nil,
	}).Info("complaint escalated")
	return nil
}

// threshold returns the department's escalation threshold in hours, falling
// back to the system default when the department has none configured.
func (s *Sweeper) threshold(departmentID string) (int, error) {
	dept, err := s.Storage.GetDepartmentByID(departmentID)
	if err != nil {
		return 0, err
	}
	if dept == nil || dept.EscalationHours <= 0 {
		return config.DefaultEscalationHours, nil
	}
	return dept.EscalationHours, nil
}
