package models

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleStatus is the stored (hint) and computed status of a schedule.
// Stored values drift; the authoritative value is always recomputed from the
// schedule window against the current time.
type ScheduleStatus string

const (
	ScheduleScheduled ScheduleStatus = "SCHEDULED"
	ScheduleActive    ScheduleStatus = "ACTIVE"
	ScheduleCompleted ScheduleStatus = "COMPLETED"
	ScheduleCancelled ScheduleStatus = "CANCELLED"
)

// DeploymentStatus mirrors the parent schedule's status onto one target game.
type DeploymentStatus string

const (
	DeploymentPending   DeploymentStatus = "PENDING"
	DeploymentActive    DeploymentStatus = "ACTIVE"
	DeploymentCompleted DeploymentStatus = "COMPLETED"
	DeploymentCancelled DeploymentStatus = "CANCELLED"
)

// Playlist is a brand-owned set of ad schedules. Deleting a playlist cascades
// to its schedules and their deployments.
type Playlist struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	BrandUserID uuid.UUID  `json:"brandUserId"`
	Schedules   []Schedule `json:"schedules"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Schedule binds one ad to a start date and duration (in days) inside a
// playlist. EndDate is derived as StartDate + DurationDays. Status is a stored
// hint; ComputedStatus carries the authoritative value on every read.
type Schedule struct {
	ID             uuid.UUID      `json:"id"`
	PlaylistID     uuid.UUID      `json:"playlistId"`
	GameAdID       uuid.UUID      `json:"gameAdId"`
	StartDate      time.Time      `json:"startDate"`
	DurationDays   int            `json:"duration"`
	EndDate        time.Time      `json:"endDate"`
	Status         ScheduleStatus `json:"status"`
	ComputedStatus ScheduleStatus `json:"computedStatus"`
	Deployments    []Deployment   `json:"deployments"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Deployment binds one schedule to one target game. At most one deployment
// exists per (schedule, game) pair.
type Deployment struct {
	ID             uuid.UUID        `json:"id"`
	ScheduleID     uuid.UUID        `json:"scheduleId"`
	GameID         uuid.UUID        `json:"gameId"`
	Status         DeploymentStatus `json:"status"`
	ComputedStatus DeploymentStatus `json:"computedStatus"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}
