package ads

import (
	"fmt"

	"github.com/gap-platform/backend/internal/models"
)

// ValidateAssets checks that an ad carries the complete asset set its type
// requires. It returns one message per violated constraint so clients can fix
// the whole creative in one round trip.
func ValidateAssets(adType models.AdType, assets []models.AdAsset) []string {
	var problems []string

	if !adType.Valid() {
		return []string{fmt.Sprintf("unknown ad type %q", adType)}
	}

	count := make(map[models.AssetType]int, len(assets))
	for _, a := range assets {
		count[a.AssetType]++
	}

	switch adType {
	case models.AdTypeDisplay:
		if count[models.AssetSignage] == 0 {
			problems = append(problems, "multimedia_display requires a multiMediaSignage asset")
		}
		media := count[models.AssetImage] + count[models.AssetVideo]
		if media == 0 {
			problems = append(problems, "multimedia_display requires an image or video asset")
		}
		if media > 1 {
			problems = append(problems, "multimedia_display allows exactly one image or video asset")
		}
	case models.AdTypeNPC:
		for _, required := range []models.AssetType{
			models.AssetKolCharacter,
			models.AssetClothingTop,
			models.AssetClothingBottom,
			models.AssetShoes,
			models.AssetAnimation,
		} {
			if count[required] == 0 {
				problems = append(problems, fmt.Sprintf("dancing_npc requires a %s asset", required))
			}
		}
	case models.AdTypeMinigame:
		if count[models.AssetMinigame] == 0 {
			problems = append(problems, "minigame_ad requires a minigame asset")
		}
	}

	return problems
}
