package models

import (
	"time"

	"github.com/google/uuid"
)

// AdType identifies the creative template of a game ad. The set is closed:
// container compatibility is decided by an exhaustive enum-to-enum table, not
// by string matching.
type AdType string

const (
	AdTypeDisplay  AdType = "multimedia_display"
	AdTypeNPC      AdType = "dancing_npc"
	AdTypeMinigame AdType = "minigame_ad"
)

// Valid reports whether t is one of the known ad types.
func (t AdType) Valid() bool {
	switch t {
	case AdTypeDisplay, AdTypeNPC, AdTypeMinigame:
		return true
	}
	return false
}

// AssetType identifies a single creative asset inside an ad.
type AssetType string

const (
	AssetSignage        AssetType = "multiMediaSignage"
	AssetImage          AssetType = "image"
	AssetVideo          AssetType = "video"
	AssetAudio          AssetType = "audio"
	AssetKolCharacter   AssetType = "kol_character"
	AssetClothingTop    AssetType = "clothing_top"
	AssetClothingBottom AssetType = "clothing_bottom"
	AssetShoes          AssetType = "shoes"
	AssetAnimation      AssetType = "animation"
	AssetHat            AssetType = "hat"
	AssetItem           AssetType = "item"
	AssetMinigame       AssetType = "minigame"
)

// AdAsset is one creative asset attached to a game ad.
type AdAsset struct {
	AssetType     AssetType `json:"assetType"`
	AssetID       string    `json:"assetId"`
	RobloxAssetID string    `json:"robloxAssetId,omitempty"`
}

// GameAd is an ad creative owned by a brand (or created directly by a game,
// in which case BrandUserID is nil). GameID is a legacy non-null placeholder
// from ad creation; ad-to-game targeting goes through the schedule/deployment
// graph and this field is never consulted for eligibility.
type GameAd struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Type        AdType     `json:"type"`
	Assets      []AdAsset  `json:"assets"`
	BrandUserID *uuid.UUID `json:"brandUserId,omitempty"`
	GameID      *uuid.UUID `json:"gameId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
