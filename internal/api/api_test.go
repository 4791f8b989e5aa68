package api

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shij-yuan/lucky-draw/internal/store"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	db, err := store.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	srv := NewServer(db, Config{Rand: rand.New(rand.NewSource(7))})
	return srv, srv.Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad health body: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("health status = %v, want healthy", resp["status"])
	}
}

func TestListPrizesReturnsDefaults(t *testing.T) {
	_, h := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/api/v1/prizes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp PrizesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Prizes) != len(store.DefaultPrizes()) {
		t.Errorf("got %d prizes, want %d defaults", len(resp.Prizes), len(store.DefaultPrizes()))
	}
}

func TestReplacePrizes(t *testing.T) {
	_, h := newTestServer(t)
	rec := doJSON(t, h, http.MethodPut, "/api/v1/prizes", ReplacePrizesRequest{
		Prizes: []PrizeInput{
			{Label: "Gold", Color: "#ffd700", Value: "500"},
			{Label: "Silver", Color: "#c0c0c0"},
			{Label: "Bronze", Color: "#cd7f32", Value: "12.5"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp PrizesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Prizes) != 3 || resp.Prizes[0].Label != "Gold" {
		t.Fatalf("unexpected prizes: %+v", resp.Prizes)
	}
}

func TestReplacePrizesValidation(t *testing.T) {
	_, h := newTestServer(t)

	cases := []struct {
		name string
		req  ReplacePrizesRequest
	}{
		{"too few", ReplacePrizesRequest{Prizes: []PrizeInput{{Label: "Only", Color: "#111111"}}}},
		{"too many", ReplacePrizesRequest{Prizes: make13()}},
		{"missing label", ReplacePrizesRequest{Prizes: []PrizeInput{
			{Label: "", Color: "#111111"}, {Label: "B", Color: "#222222"},
		}}},
		{"bad color", ReplacePrizesRequest{Prizes: []PrizeInput{
			{Label: "A", Color: "red"}, {Label: "B", Color: "#222222"},
		}}},
		{"negative value", ReplacePrizesRequest{Prizes: []PrizeInput{
			{Label: "A", Color: "#111111", Value: "-5"}, {Label: "B", Color: "#222222"},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPut, "/api/v1/prizes", tc.req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			var errResp ServiceError
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("bad error body: %v", err)
			}
			if errResp.Type != ErrTypeValidation {
				t.Errorf("error type = %q, want %q", errResp.Type, ErrTypeValidation)
			}
		})
	}
}

func make13() []PrizeInput {
	prizes := make([]PrizeInput, 13)
	for i := range prizes {
		prizes[i] = PrizeInput{Label: "P", Color: "#123456"}
	}
	return prizes
}

func TestResetPrizes(t *testing.T) {
	_, h := newTestServer(t)

	doJSON(t, h, http.MethodPut, "/api/v1/prizes", ReplacePrizesRequest{
		Prizes: []PrizeInput{
			{Label: "A", Color: "#111111"},
			{Label: "B", Color: "#222222"},
		},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/prizes/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp PrizesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Prizes) != len(store.DefaultPrizes()) {
		t.Errorf("got %d prizes after reset, want defaults", len(resp.Prizes))
	}
}

func TestSpinRecordsDraw(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/spin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("spin status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp SpinResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad spin body: %v", err)
	}
	if resp.WinnerIndex < 0 || resp.WinnerIndex >= len(store.DefaultPrizes()) {
		t.Errorf("winner index %d out of range", resp.WinnerIndex)
	}
	if resp.Prize.Label == "" {
		t.Error("spin response missing prize")
	}
	if resp.Ticks <= 0 || resp.DurationMs <= 0 {
		t.Errorf("implausible spin length: ticks=%d duration=%dms", resp.Ticks, resp.DurationMs)
	}
	if resp.Draw.ID == "" {
		t.Error("spin must record a draw")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/draws", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("draws status = %d, want 200", rec.Code)
	}
	var page store.DrawsPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("bad draws body: %v", err)
	}
	if page.TotalCount != 1 {
		t.Fatalf("history has %d draws after spin, want 1", page.TotalCount)
	}
	if page.Draws[0].PrizeLabel != resp.Prize.Label {
		t.Errorf("recorded draw %q, spin reported %q", page.Draws[0].PrizeLabel, resp.Prize.Label)
	}
}

func TestSpinWithExplicitVelocity(t *testing.T) {
	_, h := newTestServer(t)

	v := 25.0
	rec := doJSON(t, h, http.MethodPost, "/api/v1/spin", SpinRequest{Velocity: &v})
	if rec.Code != http.StatusOK {
		t.Fatalf("spin status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp SpinResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad spin body: %v", err)
	}
	if resp.ReleaseVelocity != 25.0 {
		t.Errorf("release velocity = %g, want 25", resp.ReleaseVelocity)
	}
}

func TestSpinVelocityValidation(t *testing.T) {
	_, h := newTestServer(t)

	for _, v := range []float64{2.0, 100.0, -1.5, -60} {
		vv := v
		rec := doJSON(t, h, http.MethodPost, "/api/v1/spin", SpinRequest{Velocity: &vv})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("spin with velocity %g: status = %d, want 400", v, rec.Code)
		}
	}
}

// Concurrent spins must not share wheel state or a rand source; run with
// -race to catch regressions.
func TestConcurrentSpins(t *testing.T) {
	srv, _ := newTestServer(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				rng := srv.newRand()
				result, err := srv.runSpin(8, pickVelocity(rng), rng)
				if err != nil {
					t.Errorf("concurrent spin failed: %v", err)
					return
				}
				if result.winner < 0 || result.winner >= 8 {
					t.Errorf("winner %d out of range", result.winner)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestDrawsQueryValidation(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/draws?limit=0", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d, want 400", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/api/v1/draws?offset=-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("offset=-1 status = %d, want 400", rec.Code)
	}
}

func TestClearDraws(t *testing.T) {
	_, h := newTestServer(t)

	doJSON(t, h, http.MethodPost, "/api/v1/spin", nil)
	rec := doJSON(t, h, http.MethodDelete, "/api/v1/draws", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/draws", nil)
	var page store.DrawsPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("bad draws body: %v", err)
	}
	if page.TotalCount != 0 {
		t.Errorf("history has %d draws after clear, want 0", page.TotalCount)
	}
}
