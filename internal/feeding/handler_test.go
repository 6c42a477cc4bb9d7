package feeding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gap-platform/backend/internal/middleware"
	"github.com/gap-platform/backend/internal/models"
)

type stubSource struct {
	candidates []Candidate
	err        error
	gotGameID  uuid.UUID
}

func (s *stubSource) EligibleCandidates(_ context.Context, gameID uuid.UUID, _ time.Time) ([]Candidate, error) {
	s.gotGameID = gameID
	return s.candidates, s.err
}

func feedRouter(source CandidateSource, gameID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(source, NewEngine(testConfig()), zap.NewNop())
	r := gin.New()
	r.POST("/api/v1/feeding/container-ads", func(c *gin.Context) {
		c.Set(middleware.ContextGameID, gameID)
		h.Feed(c)
	})
	return r
}

func postFeed(t *testing.T, r *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feeding/container-ads", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFeedReturnsAssignments(t *testing.T) {
	gameID := uuid.New()
	ad := models.GameAd{ID: uuid.New(), Type: models.AdTypeDisplay, CreatedAt: time.Now().AddDate(0, 0, -14)}
	source := &stubSource{candidates: []Candidate{{Ad: ad}}}
	r := feedRouter(source, gameID)

	w := postFeed(t, r, gin.H{
		"gameId": gameID.String(),
		"containers": []gin.H{
			{"id": "billboard-1", "type": "DISPLAY"},
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if source.gotGameID != gameID {
		t.Errorf("candidate lookup used game %s, want %s", source.gotGameID, gameID)
	}

	var resp feedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	got := resp.ContainerAssignments["billboard-1"]
	if len(got) != 1 || got[0] != ad.ID.String() {
		t.Errorf("assignments = %v, want [%s]", got, ad.ID)
	}
	if resp.Metadata.TotalAds != 1 {
		t.Errorf("totalAds = %d, want 1", resp.Metadata.TotalAds)
	}
	if resp.Metadata.AssignmentStrategy != StrategySingleAd {
		t.Errorf("strategy = %s, want %s", resp.Metadata.AssignmentStrategy, StrategySingleAd)
	}
	if resp.Metadata.GameID != gameID.String() {
		t.Errorf("metadata gameId = %s, want %s", resp.Metadata.GameID, gameID)
	}
}

func TestFeedBodyGameIDMismatchUsesResolvedGame(t *testing.T) {
	resolved := uuid.New()
	source := &stubSource{}
	r := feedRouter(source, resolved)

	w := postFeed(t, r, gin.H{
		"gameId": uuid.New().String(), // stale or wrong id from the client
		"containers": []gin.H{
			{"id": "c1", "type": "DISPLAY"},
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if source.gotGameID != resolved {
		t.Errorf("candidate lookup used game %s, want credential-resolved %s", source.gotGameID, resolved)
	}
	var resp feedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.GameID != resolved.String() {
		t.Errorf("metadata gameId = %s, want %s", resp.Metadata.GameID, resolved)
	}
}

func TestFeedNoCandidatesIsEmptyNotError(t *testing.T) {
	r := feedRouter(&stubSource{}, uuid.New())

	w := postFeed(t, r, gin.H{
		"containers": []gin.H{{"id": "c1", "type": "NPC"}},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp feedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if got := resp.ContainerAssignments["c1"]; len(got) != 0 {
		t.Errorf("assignments = %v, want empty", got)
	}
	if resp.RotationSchedule["c1"] != nil {
		t.Errorf("rotation plan = %+v, want null", resp.RotationSchedule["c1"])
	}
}

func TestFeedRejectsMissingContainers(t *testing.T) {
	r := feedRouter(&stubSource{}, uuid.New())

	w := postFeed(t, r, gin.H{"containers": []gin.H{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestFeedRejectsUnknownContainerType(t *testing.T) {
	r := feedRouter(&stubSource{}, uuid.New())

	w := postFeed(t, r, gin.H{
		"containers": []gin.H{{"id": "c1", "type": "BANNER"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestFeedStoreFailureIs500(t *testing.T) {
	r := feedRouter(&stubSource{err: errors.New("connection refused")}, uuid.New())

	w := postFeed(t, r, gin.H{
		"containers": []gin.H{{"id": "c1", "type": "DISPLAY"}},
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}
