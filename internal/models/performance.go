package models

import (
	"time"

	"github.com/google/uuid"
)

// PerformanceRecord is a daily rollup of telemetry for one (ad, game) pair.
// Day is the UTC calendar day (truncated to midnight). Counters only ever
// grow; rows are merged by addition, never overwritten wholesale.
type PerformanceRecord struct {
	ID           uuid.UUID        `json:"id"`
	GameAdID     uuid.UUID        `json:"gameAdId"`
	GameID       uuid.UUID        `json:"gameId"`
	Day          time.Time        `json:"date"`
	Views        int64            `json:"views"`
	ViewDuration float64          `json:"viewDuration"`
	Touches      int64            `json:"touches"`
	Demographics map[string]int64 `json:"demographics"` // country -> event count
	Engagements  map[string]int64 `json:"engagements"`  // containerId -> event count
	LastEventAt  time.Time        `json:"lastEventAt"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}
