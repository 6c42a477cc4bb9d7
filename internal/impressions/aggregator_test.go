package impressions

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		ts   int64
		want time.Time
	}{
		{"seconds are scaled", 1750000000, time.UnixMilli(1750000000000).UTC()},
		{"milliseconds pass through", 1750000000000, time.UnixMilli(1750000000000).UTC()},
		{"zero defaults to now", 0, now},
		{"negative defaults to now", -5, now},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeTimestamp(tc.ts, now); !got.Equal(tc.want) {
				t.Errorf("NormalizeTimestamp(%d) = %v, want %v", tc.ts, got, tc.want)
			}
		})
	}
}

func TestGroupSplitsByUTCDay(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	adID := uuid.New()

	// One event just before midnight UTC, one just after.
	beforeMidnight := time.Date(2025, 6, 14, 23, 59, 59, 0, time.UTC).UnixMilli()
	afterMidnight := time.Date(2025, 6, 15, 0, 0, 1, 0, time.UTC).UnixMilli()

	groups, skipped := Group([]Event{
		{Event: EventView, AdID: adID.String(), Timestamp: beforeMidnight, Duration: 5},
		{Event: EventView, AdID: adID.String(), Timestamp: afterMidnight, Duration: 7},
	}, now)

	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2 (one per UTC day)", len(groups))
	}
	if !groups[0].Day.Equal(time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first group day = %v", groups[0].Day)
	}
	if !groups[1].Day.Equal(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("second group day = %v", groups[1].Day)
	}
	if groups[0].Views != 1 || groups[0].ViewDuration != 5 {
		t.Errorf("first group counters: %+v", groups[0])
	}
}

func TestGroupAggregatesCounters(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	adID := uuid.New()
	ts := now.UnixMilli()

	groups, skipped := Group([]Event{
		{Event: EventView, AdID: adID.String(), Timestamp: ts, Duration: 10, ContainerID: "c1",
			Player: &Player{Country: "US"}},
		{Event: EventView, AdID: adID.String(), Timestamp: ts, Duration: -3, ContainerID: "c1"},
		{Event: EventTouch, AdID: adID.String(), Timestamp: ts, ContainerID: "c2",
			Player: &Player{Country: "US"}},
		{Event: EventTouch, AdID: adID.String(), Timestamp: ts,
			Player: &Player{Country: "JP"}},
	}, now)

	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if g.Views != 2 {
		t.Errorf("views = %d, want 2", g.Views)
	}
	if g.ViewDuration != 10 {
		t.Errorf("viewDuration = %v, want 10 (negative durations clamp to 0)", g.ViewDuration)
	}
	if g.Touches != 2 {
		t.Errorf("touches = %d, want 2", g.Touches)
	}
	if g.Demographics["US"] != 2 || g.Demographics["JP"] != 1 {
		t.Errorf("demographics = %v", g.Demographics)
	}
	if g.Engagements["c1"] != 2 || g.Engagements["c2"] != 1 {
		t.Errorf("engagements = %v", g.Engagements)
	}
}

func TestGroupLastEventFollowsArrayOrder(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	adID := uuid.New()

	later := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	groups, _ := Group([]Event{
		{Event: EventView, AdID: adID.String(), Timestamp: later.UnixMilli()},
		{Event: EventView, AdID: adID.String(), Timestamp: earlier.UnixMilli()},
	}, now)

	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if !groups[0].LastEventAt.Equal(earlier) {
		t.Errorf("lastEventAt = %v, want %v (array order, not max)", groups[0].LastEventAt, earlier)
	}
}

func TestGroupSkipsMalformedEvents(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	adID := uuid.New()

	groups, skipped := Group([]Event{
		{Event: EventView, AdID: "not-a-uuid"},
		{Event: "hover", AdID: adID.String()},
		{Event: EventView, AdID: adID.String()},
	}, now)

	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(groups) != 1 || groups[0].Views != 1 {
		t.Errorf("groups = %+v", groups)
	}
}

func TestGroupSeparatesAds(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	a, b := uuid.New(), uuid.New()

	groups, _ := Group([]Event{
		{Event: EventView, AdID: a.String()},
		{Event: EventView, AdID: b.String()},
		{Event: EventView, AdID: a.String()},
	}, now)

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].AdID != a || groups[0].Views != 2 {
		t.Errorf("first group = %+v", groups[0])
	}
	if groups[1].AdID != b || groups[1].Views != 1 {
		t.Errorf("second group = %+v", groups[1])
	}
}
