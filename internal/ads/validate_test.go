package ads

import (
	"strings"
	"testing"

	"github.com/gap-platform/backend/internal/models"
)

func asset(t models.AssetType) models.AdAsset {
	return models.AdAsset{AssetType: t, AssetID: "rbxassetid://1"}
}

func TestValidateDisplayAd(t *testing.T) {
	cases := []struct {
		name    string
		assets  []models.AdAsset
		wantErr string
	}{
		{
			"complete with image",
			[]models.AdAsset{asset(models.AssetSignage), asset(models.AssetImage)},
			"",
		},
		{
			"complete with video",
			[]models.AdAsset{asset(models.AssetSignage), asset(models.AssetVideo)},
			"",
		},
		{
			"missing signage",
			[]models.AdAsset{asset(models.AssetImage)},
			"multiMediaSignage",
		},
		{
			"missing media",
			[]models.AdAsset{asset(models.AssetSignage)},
			"image or video",
		},
		{
			"both image and video",
			[]models.AdAsset{asset(models.AssetSignage), asset(models.AssetImage), asset(models.AssetVideo)},
			"exactly one",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			problems := ValidateAssets(models.AdTypeDisplay, tc.assets)
			if tc.wantErr == "" {
				if len(problems) != 0 {
					t.Fatalf("unexpected problems: %v", problems)
				}
				return
			}
			if len(problems) == 0 {
				t.Fatalf("expected problem containing %q, got none", tc.wantErr)
			}
			if !strings.Contains(strings.Join(problems, "; "), tc.wantErr) {
				t.Fatalf("problems %v do not mention %q", problems, tc.wantErr)
			}
		})
	}
}

func TestValidateNPCAdReportsAllMissing(t *testing.T) {
	problems := ValidateAssets(models.AdTypeNPC, []models.AdAsset{asset(models.AssetKolCharacter)})
	if len(problems) != 4 {
		t.Fatalf("want 4 missing-asset problems, got %d: %v", len(problems), problems)
	}

	complete := []models.AdAsset{
		asset(models.AssetKolCharacter),
		asset(models.AssetClothingTop),
		asset(models.AssetClothingBottom),
		asset(models.AssetShoes),
		asset(models.AssetAnimation),
	}
	if problems := ValidateAssets(models.AdTypeNPC, complete); len(problems) != 0 {
		t.Fatalf("complete NPC ad rejected: %v", problems)
	}

	// Optional accessories do not affect validity.
	withExtras := append(complete, asset(models.AssetHat), asset(models.AssetItem))
	if problems := ValidateAssets(models.AdTypeNPC, withExtras); len(problems) != 0 {
		t.Fatalf("NPC ad with accessories rejected: %v", problems)
	}
}

func TestValidateMinigameAd(t *testing.T) {
	if problems := ValidateAssets(models.AdTypeMinigame, nil); len(problems) == 0 {
		t.Fatal("minigame ad without assets accepted")
	}
	if problems := ValidateAssets(models.AdTypeMinigame, []models.AdAsset{asset(models.AssetMinigame)}); len(problems) != 0 {
		t.Fatalf("complete minigame ad rejected: %v", problems)
	}
}

func TestValidateUnknownType(t *testing.T) {
	problems := ValidateAssets(models.AdType("banner"), nil)
	if len(problems) != 1 || !strings.Contains(problems[0], "unknown ad type") {
		t.Fatalf("unexpected problems: %v", problems)
	}
}
