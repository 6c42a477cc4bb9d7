package impressions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gap-platform/backend/internal/middleware"
)

type memoryStore struct {
	merged  []*DayGroup
	failFor uuid.UUID
}

func (m *memoryStore) MergeGroup(_ context.Context, _ uuid.UUID, g *DayGroup) error {
	if g.AdID == m.failFor {
		return errors.New("store unavailable")
	}
	m.merged = append(m.merged, g)
	return nil
}

func ingestRouter(store GroupMerger, gameID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, zap.NewNop())
	r := gin.New()
	r.POST("/api/v1/impressions/batch", func(c *gin.Context) {
		c.Set(middleware.ContextGameID, gameID)
		h.Ingest(c)
	})
	return r
}

func postBatch(t *testing.T, r *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/impressions/batch", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIngestCountsProcessedAndUpserts(t *testing.T) {
	store := &memoryStore{}
	r := ingestRouter(store, uuid.New())
	a, b := uuid.New(), uuid.New()

	w := postBatch(t, r, gin.H{
		"impressions": []gin.H{
			{"event": "view", "adId": a.String(), "duration": 4.5},
			{"event": "touch", "adId": a.String()},
			{"event": "view", "adId": b.String()},
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp batchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Processed != 3 {
		t.Errorf("processed = %d, want 3", resp.Processed)
	}
	if resp.Upserts != 2 {
		t.Errorf("upserts = %d, want 2 (one per (ad, day) group)", resp.Upserts)
	}
	if len(store.merged) != 2 {
		t.Errorf("store saw %d groups, want 2", len(store.merged))
	}
}

func TestIngestIsolatesGroupFailures(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	store := &memoryStore{failFor: a}
	r := ingestRouter(store, uuid.New())

	w := postBatch(t, r, gin.H{
		"impressions": []gin.H{
			{"event": "view", "adId": a.String()},
			{"event": "view", "adId": b.String()},
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite one failed group", w.Code)
	}
	var resp batchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Upserts != 1 {
		t.Errorf("upserts = %d, want 1", resp.Upserts)
	}
	if len(store.merged) != 1 || store.merged[0].AdID != b {
		t.Errorf("surviving group wrong: %+v", store.merged)
	}
}

func TestIngestRejectsEmptyBatch(t *testing.T) {
	r := ingestRouter(&memoryStore{}, uuid.New())

	w := postBatch(t, r, gin.H{"impressions": []gin.H{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestIngestSameBatchTwiceDoublesDeltas(t *testing.T) {
	store := &memoryStore{}
	gameID := uuid.New()
	r := ingestRouter(store, gameID)
	adID := uuid.New()

	body := gin.H{
		"impressions": []gin.H{
			{"event": "view", "adId": adID.String(), "duration": 10},
			{"event": "touch", "adId": adID.String()},
		},
	}
	postBatch(t, r, body)
	postBatch(t, r, body)

	// No dedup: an identical retried batch produces a second full delta, so
	// the stored counters double after the atomic merge.
	if len(store.merged) != 2 {
		t.Fatalf("store saw %d groups, want 2", len(store.merged))
	}
	var views, touches int64
	var duration float64
	for _, g := range store.merged {
		views += g.Views
		touches += g.Touches
		duration += g.ViewDuration
	}
	if views != 2 || touches != 2 || duration != 20 {
		t.Errorf("accumulated deltas views=%d touches=%d duration=%v, want 2/2/20", views, touches, duration)
	}
}
