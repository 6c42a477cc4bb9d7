package playlists

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gap-platform/backend/internal/models"
)

func TestComputeScheduleStatusWindow(t *testing.T) {
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	const days = 3
	end := start.AddDate(0, 0, days)

	cases := []struct {
		name   string
		stored models.ScheduleStatus
		now    time.Time
		want   models.ScheduleStatus
	}{
		{"before window", models.ScheduleScheduled, start.Add(-time.Hour), models.ScheduleScheduled},
		{"at start", models.ScheduleScheduled, start, models.ScheduleActive},
		{"inside window", models.ScheduleScheduled, start.Add(24 * time.Hour), models.ScheduleActive},
		{"just before end", models.ScheduleActive, end.Add(-time.Second), models.ScheduleActive},
		{"at end is exclusive", models.ScheduleActive, end, models.ScheduleCompleted},
		{"after window", models.ScheduleActive, end.Add(48 * time.Hour), models.ScheduleCompleted},
		// Stored status is a drifted cache: computation ignores it.
		{"stored completed inside window", models.ScheduleCompleted, start.Add(time.Hour), models.ScheduleActive},
		{"stored active before window", models.ScheduleActive, start.Add(-time.Minute), models.ScheduleScheduled},
		// CANCELLED always wins, for any instant.
		{"cancelled before window", models.ScheduleCancelled, start.Add(-time.Hour), models.ScheduleCancelled},
		{"cancelled inside window", models.ScheduleCancelled, start.Add(time.Hour), models.ScheduleCancelled},
		{"cancelled after window", models.ScheduleCancelled, end.Add(time.Hour), models.ScheduleCancelled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeScheduleStatus(start, days, tc.stored, tc.now)
			if got != tc.want {
				t.Errorf("ComputeScheduleStatus(%v) = %s, want %s", tc.now, got, tc.want)
			}
		})
	}
}

func TestDeploymentStatusMirrorsSchedule(t *testing.T) {
	cases := map[models.ScheduleStatus]models.DeploymentStatus{
		models.ScheduleScheduled: models.DeploymentPending,
		models.ScheduleActive:    models.DeploymentActive,
		models.ScheduleCompleted: models.DeploymentCompleted,
		models.ScheduleCancelled: models.DeploymentCancelled,
	}
	for in, want := range cases {
		if got := DeploymentStatusFor(in); got != want {
			t.Errorf("DeploymentStatusFor(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestReconcileAnnotatesAndCollectsDrift(t *testing.T) {
	now := time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)
	scheduleID := uuid.New()
	deploymentID := uuid.New()

	pls := []models.Playlist{{
		ID: uuid.New(),
		Schedules: []models.Schedule{{
			ID:           scheduleID,
			StartDate:    time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			DurationDays: 3,
			Status:       models.ScheduleScheduled, // stale stored hint
			Deployments: []models.Deployment{{
				ID:     deploymentID,
				Status: models.DeploymentPending,
			}},
		}},
	}}

	corr := Reconcile(pls, now)

	s := pls[0].Schedules[0]
	if s.ComputedStatus != models.ScheduleActive {
		t.Fatalf("schedule computedStatus = %s, want ACTIVE", s.ComputedStatus)
	}
	if s.Deployments[0].ComputedStatus != models.DeploymentActive {
		t.Fatalf("deployment computedStatus = %s, want ACTIVE", s.Deployments[0].ComputedStatus)
	}
	if corr.Schedules[scheduleID] != models.ScheduleActive {
		t.Fatalf("schedule correction missing: %+v", corr.Schedules)
	}
	if corr.Deployments[deploymentID] != models.DeploymentActive {
		t.Fatalf("deployment correction missing: %+v", corr.Deployments)
	}
}

func TestReconcileNoDriftNoCorrections(t *testing.T) {
	now := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	pls := []models.Playlist{{
		Schedules: []models.Schedule{{
			ID:           uuid.New(),
			StartDate:    time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			DurationDays: 1,
			Status:       models.ScheduleScheduled,
			Deployments: []models.Deployment{{
				ID:     uuid.New(),
				Status: models.DeploymentPending,
			}},
		}},
	}}

	if corr := Reconcile(pls, now); !corr.Empty() {
		t.Fatalf("unexpected corrections: %+v", corr)
	}
}
