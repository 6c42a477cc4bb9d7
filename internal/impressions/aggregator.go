package impressions

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds accepted by the batch endpoint.
const (
	EventView  = "view"
	EventTouch = "touch"
)

// secondsThreshold separates second-resolution timestamps from millisecond
// ones. Anything below it is treated as seconds and scaled up.
const secondsThreshold = 10_000_000_000

// Event is one raw telemetry event as sent by a game server. Timestamps may
// be seconds or milliseconds; zero means "now".
type Event struct {
	Event       string  `json:"event" binding:"required,oneof=view touch"`
	AdID        string  `json:"adId" binding:"required"`
	ContainerID string  `json:"containerId"`
	Duration    float64 `json:"duration"`
	Timestamp   int64   `json:"timestamp"`
	Player      *Player `json:"player"`
}

// Player is the optional per-event player snapshot; only the country feeds
// the demographic histogram.
type Player struct {
	Country string `json:"country"`
	Age     int    `json:"age,omitempty"`
}

// DayGroup is the in-memory aggregate of one (ad, UTC day) slice of a batch.
// Its counters are deltas to merge into the store, not absolute values.
type DayGroup struct {
	AdID         uuid.UUID
	Day          time.Time
	Views        int64
	ViewDuration float64
	Touches      int64
	Demographics map[string]int64
	Engagements  map[string]int64
	LastEventAt  time.Time
}

// GroupKey identifies a day group within a batch.
type GroupKey struct {
	AdID uuid.UUID
	Day  time.Time
}

// NormalizeTimestamp converts a caller timestamp to UTC, scaling seconds to
// milliseconds and defaulting absent values to now.
func NormalizeTimestamp(ts int64, now time.Time) time.Time {
	if ts <= 0 {
		return now.UTC()
	}
	if ts < secondsThreshold {
		ts *= 1000
	}
	return time.UnixMilli(ts).UTC()
}

// Group folds a batch into per-(ad, UTC day) aggregates. Events with an
// unparseable ad id or an unknown kind are skipped and counted as such.
// Groups come back in first-seen order. Processing follows array order, so a
// group's LastEventAt is the timestamp of its last event in the array, even
// when an earlier event carries a later time.
func Group(events []Event, now time.Time) (groups []*DayGroup, skipped int) {
	index := make(map[GroupKey]*DayGroup)

	for _, ev := range events {
		adID, err := uuid.Parse(ev.AdID)
		if err != nil {
			skipped++
			continue
		}
		if ev.Event != EventView && ev.Event != EventTouch {
			skipped++
			continue
		}

		ts := NormalizeTimestamp(ev.Timestamp, now)
		day := ts.Truncate(24 * time.Hour)
		key := GroupKey{AdID: adID, Day: day}

		g, ok := index[key]
		if !ok {
			g = &DayGroup{
				AdID:         adID,
				Day:          day,
				Demographics: make(map[string]int64),
				Engagements:  make(map[string]int64),
			}
			index[key] = g
			groups = append(groups, g)
		}

		switch ev.Event {
		case EventView:
			g.Views++
			if ev.Duration > 0 {
				g.ViewDuration += ev.Duration
			}
		case EventTouch:
			g.Touches++
		}
		if ev.Player != nil && ev.Player.Country != "" {
			g.Demographics[ev.Player.Country]++
		}
		if ev.ContainerID != "" {
			g.Engagements[ev.ContainerID]++
		}
		g.LastEventAt = ts
	}
	return groups, skipped
}
