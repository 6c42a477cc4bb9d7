package feeding

import (
	"math"
	"sort"
	"time"

	"github.com/gap-platform/backend/config"
	"github.com/gap-platform/backend/internal/models"
)

// Rotation strategies, in precedence order.
const (
	StrategySingleAd         = "single_ad"
	StrategyPerformanceBased = "performance_based"
	StrategyWeighted         = "weighted"
	StrategyRoundRobin       = "round_robin"
)

// Candidate is one ad eligible for a game, with the data scoring needs.
// FallbackScore is the store-derived performance score (0..1) used when the
// caller did not report one for the container.
type Candidate struct {
	Ad            models.GameAd
	FallbackScore float64
}

// RotationAd is one selected ad inside a container's rotation plan.
type RotationAd struct {
	AdID                string  `json:"adId"`
	Score               float64 `json:"score"`
	Weight              float64 `json:"weight"`
	Priority            int     `json:"priority"`
	ExpectedImpressions int     `json:"expectedImpressions"`
}

// RotationSchedule tells the game how to cycle a container's assigned ads.
type RotationSchedule struct {
	Interval int          `json:"interval"` // seconds
	Strategy string       `json:"strategy"`
	Ads      []RotationAd `json:"ads"`
}

// Assignment is the full feed result for one game.
type Assignment struct {
	ContainerAds map[string][]string          `json:"containerAssignments"`
	Rotation     map[string]*RotationSchedule `json:"rotationSchedule"`
	TotalAds     int                          `json:"totalAds"`
	Strategy     string                       `json:"assignmentStrategy"`
	NextUpdateAt time.Time                    `json:"nextUpdate"`
}

// Engine computes per-container ad assignments. It is stateless: every call
// works purely from the candidate set and the request payload.
type Engine struct {
	cfg config.FeedingConfig
	now func() time.Time
}

// NewEngine creates a feeding engine.
func NewEngine(cfg config.FeedingConfig) *Engine {
	return &Engine{cfg: cfg, now: time.Now}
}

// compatible maps container types onto the ad types they accept. Closed table;
// anything not listed is excluded.
var compatible = map[models.ContainerType]models.AdType{
	models.ContainerDisplay:  models.AdTypeDisplay,
	models.ContainerNPC:      models.AdTypeNPC,
	models.ContainerMinigame: models.AdTypeMinigame,
}

// Assign scores candidates against each container and builds the rotation
// plan. Containers with no eligible ad get an empty list and a nil plan.
func (e *Engine) Assign(candidates []Candidate, containers []models.Container, playerCtx *models.PlayerContext, current map[string]models.AssignmentState) Assignment {
	now := e.now()
	out := Assignment{
		ContainerAds: make(map[string][]string, len(containers)),
		Rotation:     make(map[string]*RotationSchedule, len(containers)),
		NextUpdateAt: now.Add(time.Duration(e.cfg.NextUpdateSeconds) * time.Second),
	}

	for _, container := range containers {
		scored := e.scoreContainer(candidates, container, playerCtx, current[container.ID], now)

		limit := e.cfg.MaxAdsPerContainer
		if container.Config != nil && container.Config.MaxAdsPerContainer > 0 {
			limit = container.Config.MaxAdsPerContainer
		}
		if len(scored) > limit {
			scored = scored[:limit]
		}

		ids := make([]string, len(scored))
		for i, s := range scored {
			ids[i] = s.AdID
		}
		out.ContainerAds[container.ID] = ids
		out.TotalAds += len(ids)

		if len(scored) == 0 {
			out.Rotation[container.ID] = nil
			continue
		}
		plan := &RotationSchedule{
			Interval: e.rotationInterval(container, len(scored)),
			Strategy: strategyFor(scored),
			Ads:      scored,
		}
		out.Rotation[container.ID] = plan
		if out.Strategy == "" {
			out.Strategy = plan.Strategy
		}
	}

	if out.Strategy == "" {
		out.Strategy = StrategyRoundRobin
	}
	return out
}

// scoreContainer applies the multiplicative scoring pass and returns the
// compatible candidates sorted by score, highest first. The sort is stable so
// ties keep eligibility order.
func (e *Engine) scoreContainer(candidates []Candidate, container models.Container, playerCtx *models.PlayerContext, state models.AssignmentState, now time.Time) []RotationAd {
	var scored []RotationAd

	for _, cand := range candidates {
		if compatible[container.Type] != cand.Ad.Type {
			continue
		}
		adID := cand.Ad.ID.String()
		score := 1.0
		weight := 1.0
		priority := 1

		if perf, ok := performanceScore(adID, cand.FallbackScore, state); ok {
			score *= 1 + perf
		}

		if ratio, ok := exposureRatio(adID, container, state); ok {
			switch {
			case ratio > e.cfg.OverexposedRatio:
				weight *= e.cfg.OverexposedPenalty
			case ratio < e.cfg.UnderexposedRatio:
				weight *= e.cfg.UnderexposedBoost
			}
		}

		if container.IsVisible {
			score *= e.cfg.VisibilityBoost
			priority++
		}

		if playerCtx != nil && demographicTotal(playerCtx.Demographics) > int64(e.cfg.DemographicThreshold) {
			score *= e.cfg.DemographicBoost
		}

		age := now.Sub(cand.Ad.CreatedAt)
		switch {
		case age < time.Duration(e.cfg.FreshDays)*24*time.Hour:
			score *= e.cfg.FreshBoost
		case age > time.Duration(e.cfg.StaleDays)*24*time.Hour:
			score *= e.cfg.StalePenalty
		}

		scored = append(scored, RotationAd{
			AdID:                adID,
			Score:               score,
			Weight:              weight,
			Priority:            priority,
			ExpectedImpressions: int(math.Ceil(score * weight * 10)),
		})
	}

	// Score and weight both feed the ranking; ties keep eligibility order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score*scored[i].Weight > scored[j].Score*scored[j].Weight
	})
	return scored
}

// performanceScore prefers the caller-reported per-container score and falls
// back to the store-derived one. A zero fallback with no caller report means
// no signal at all.
func performanceScore(adID string, fallback float64, state models.AssignmentState) (float64, bool) {
	if state.Metrics != nil {
		if s, ok := state.Metrics.PerformanceScores[adID]; ok {
			return s, true
		}
	}
	if fallback > 0 {
		return fallback, true
	}
	return 0, false
}

// exposureRatio derives an ad's share of the container's impressions from the
// caller-supplied counters.
func exposureRatio(adID string, container models.Container, state models.AssignmentState) (float64, bool) {
	var total int64
	var byAd map[string]int64
	switch {
	case container.Metrics != nil:
		total = container.Metrics.TotalImpressions
		byAd = container.Metrics.ImpressionsByAd
	case state.Metrics != nil:
		total = state.Metrics.TotalImpressions
		byAd = state.Metrics.ImpressionsByAd
	default:
		return 0, false
	}
	if total <= 0 {
		total = 1
	}
	return float64(byAd[adID]) / float64(total), true
}

func demographicTotal(demographics map[string]int64) int64 {
	var total int64
	for _, n := range demographics {
		total += n
	}
	return total
}

// rotationInterval scales the base interval by view-time feedback, then by
// selection size. Both scalings apply sequentially when their conditions hold.
func (e *Engine) rotationInterval(container models.Container, selected int) int {
	interval := float64(e.cfg.BaseRotationSeconds)
	if container.Metrics != nil {
		switch {
		case container.Metrics.AverageViewTime > 30:
			interval *= 1.5
		case container.Metrics.AverageViewTime > 0 && container.Metrics.AverageViewTime < 10:
			interval *= 0.7
		}
	}
	switch {
	case selected > 3:
		interval *= 0.8
	case selected == 1:
		interval *= 2.0
	}
	return int(interval)
}

func strategyFor(scored []RotationAd) string {
	if len(scored) == 1 {
		return StrategySingleAd
	}
	for _, s := range scored {
		if s.Score > 1.0 {
			return StrategyPerformanceBased
		}
	}
	for _, s := range scored[1:] {
		if s.Weight != scored[0].Weight {
			return StrategyWeighted
		}
	}
	return StrategyRoundRobin
}
