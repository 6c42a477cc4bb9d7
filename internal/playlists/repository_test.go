package playlists

import (
	"testing"

	"github.com/google/uuid"
)

func TestDedupeGameIDs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	got := dedupeGameIDs([]uuid.UUID{a, b, a, c, b, a})
	want := []uuid.UUID{a, b, c}
	if len(got) != len(want) {
		t.Fatalf("got %d ids, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("id[%d] = %s, want %s (first-seen order)", i, got[i], want[i])
		}
	}
}

func TestDedupeGameIDsOverlappingReplaceSets(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	// Two successive replace-sets for one schedule share targets. Each
	// replacement deletes the schedule's deployments and reinserts the deduped
	// list, so per-replace uniqueness here is what guarantees at most one
	// deployment per (schedule, game) across replacements.
	first := dedupeGameIDs([]uuid.UUID{a, b, b})
	second := dedupeGameIDs([]uuid.UUID{b, c, a, a})

	for _, set := range [][]uuid.UUID{first, second} {
		seen := make(map[uuid.UUID]bool)
		for _, id := range set {
			if seen[id] {
				t.Fatalf("duplicate game id %s in replace-set %v", id, set)
			}
			seen[id] = true
		}
	}
	if len(first) != 2 || len(second) != 3 {
		t.Errorf("set sizes = %d, %d; want 2, 3", len(first), len(second))
	}
}

func TestDedupeGameIDsEmpty(t *testing.T) {
	if got := dedupeGameIDs(nil); len(got) != 0 {
		t.Errorf("dedupeGameIDs(nil) = %v, want empty", got)
	}
}
