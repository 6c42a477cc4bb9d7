package models

// ContainerType identifies the kind of in-game ad slot.
type ContainerType string

const (
	ContainerDisplay  ContainerType = "DISPLAY"
	ContainerNPC      ContainerType = "NPC"
	ContainerMinigame ContainerType = "MINIGAME"
)

// Container is a caller-supplied description of an in-game ad slot. The core
// never persists containers; everything needed for scoring arrives in the
// request body.
type Container struct {
	ID        string            `json:"id" binding:"required"`
	Type      ContainerType     `json:"type" binding:"required"`
	IsVisible bool              `json:"isVisible"`
	CurrentAd *string           `json:"currentAdId,omitempty"`
	Metrics   *ContainerMetrics `json:"metrics,omitempty"`
	Config    *ContainerConfig  `json:"config,omitempty"`
}

// ContainerMetrics are live counters tracked by the game client.
type ContainerMetrics struct {
	TotalImpressions int64            `json:"totalImpressions"`
	ImpressionsByAd  map[string]int64 `json:"impressionsByAd"`
	AverageViewTime  float64          `json:"averageViewTime"`
	SessionDuration  float64          `json:"sessionDuration"`
}

// ContainerConfig are per-slot tuning options set by the game.
type ContainerConfig struct {
	HideWhenEmpty           bool    `json:"hideWhenEmpty"`
	EnableAutoRotation      bool    `json:"enableAutoRotation"`
	MaxAdsPerContainer      int     `json:"maxAdsPerContainer"`
	MaxImpressionsPerAd     int     `json:"maxImpressionsPerAd"`
	MinPerformanceThreshold float64 `json:"minPerformanceThreshold"`
}

// PlayerContext is an aggregate snapshot of the server population supplied by
// the game on feed requests.
type PlayerContext struct {
	TotalPlayers int              `json:"totalPlayers"`
	ServerRegion string           `json:"serverRegion,omitempty"`
	GameTime     int64            `json:"gameTime,omitempty"`
	Timestamp    int64            `json:"timestamp,omitempty"`
	Demographics map[string]int64 `json:"demographics,omitempty"`
}

// AssignmentState is the caller's previously-known state for one container,
// echoed back so scoring can balance exposure without server-side sessions.
type AssignmentState struct {
	CurrentAd    *string            `json:"currentAdId,omitempty"`
	AvailableAds []string           `json:"availableAds,omitempty"`
	Metrics      *AssignmentMetrics `json:"metrics,omitempty"`
}

// AssignmentMetrics are per-container counters reported back by the caller.
type AssignmentMetrics struct {
	TotalImpressions  int64              `json:"totalImpressions"`
	ImpressionsByAd   map[string]int64   `json:"impressionsByAd"`
	PerformanceScores map[string]float64 `json:"performanceScores"` // 0..1 relative scale
}
