package playlists

import (
	"time"

	"github.com/google/uuid"

	"github.com/gap-platform/backend/internal/models"
)

// ComputeScheduleStatus returns the authoritative status for a schedule
// window at the given instant. Stored status is a cache and is ignored except
// for CANCELLED, which always wins: a cancelled schedule never re-enters the
// time-window state machine.
func ComputeScheduleStatus(startDate time.Time, durationDays int, stored models.ScheduleStatus, now time.Time) models.ScheduleStatus {
	if stored == models.ScheduleCancelled {
		return models.ScheduleCancelled
	}
	end := ScheduleEndDate(startDate, durationDays)
	switch {
	case now.Before(startDate):
		return models.ScheduleScheduled
	case now.Before(end):
		return models.ScheduleActive
	default:
		return models.ScheduleCompleted
	}
}

// ScheduleEndDate derives the exclusive end of a schedule window.
func ScheduleEndDate(startDate time.Time, durationDays int) time.Time {
	return startDate.AddDate(0, 0, durationDays)
}

// DeploymentStatusFor mirrors a schedule's computed status onto its
// deployments. Deployments never drive the schedule, only the reverse.
func DeploymentStatusFor(s models.ScheduleStatus) models.DeploymentStatus {
	switch s {
	case models.ScheduleActive:
		return models.DeploymentActive
	case models.ScheduleScheduled:
		return models.DeploymentPending
	case models.ScheduleCancelled:
		return models.DeploymentCancelled
	default:
		return models.DeploymentCompleted
	}
}

// Corrections collects rows whose stored status drifted from the computed one.
type Corrections struct {
	Schedules   map[uuid.UUID]models.ScheduleStatus
	Deployments map[uuid.UUID]models.DeploymentStatus
}

// Empty reports whether there is nothing to correct.
func (c Corrections) Empty() bool {
	return len(c.Schedules) == 0 && len(c.Deployments) == 0
}

// Reconcile annotates ComputedStatus on every schedule and deployment of the
// given playlists and returns the set of drifted stored statuses. The caller
// uses the annotations immediately and applies the corrections best-effort;
// correctness of the response never depends on the corrective writes landing.
func Reconcile(playlists []models.Playlist, now time.Time) Corrections {
	corr := Corrections{
		Schedules:   make(map[uuid.UUID]models.ScheduleStatus),
		Deployments: make(map[uuid.UUID]models.DeploymentStatus),
	}
	for pi := range playlists {
		for si := range playlists[pi].Schedules {
			s := &playlists[pi].Schedules[si]
			s.ComputedStatus = ComputeScheduleStatus(s.StartDate, s.DurationDays, s.Status, now)
			if s.ComputedStatus != s.Status {
				corr.Schedules[s.ID] = s.ComputedStatus
			}
			for di := range s.Deployments {
				d := &s.Deployments[di]
				d.ComputedStatus = DeploymentStatusFor(s.ComputedStatus)
				if d.ComputedStatus != d.Status {
					corr.Deployments[d.ID] = d.ComputedStatus
				}
			}
		}
	}
	return corr
}
