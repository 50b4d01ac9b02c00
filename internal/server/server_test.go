package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/desertthunder/hitscope/internal/analytics"
	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/pipeline"
	"github.com/desertthunder/hitscope/internal/shared"
	tu "github.com/desertthunder/hitscope/internal/testing"
)

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]models.ArtistInfo
	lookups int
	cleared int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]models.ArtistInfo{}}
}

func (c *fakeCache) Cached(_ context.Context, name string) models.ArtistInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if info, ok := c.entries[name]; ok {
		return info
	}
	c.lookups++
	info := models.DefaultArtistInfo(name)
	c.entries[name] = info
	return info
}

func (c *fakeCache) Peek(name string) (models.ArtistInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.entries[name]
	return info, ok
}

func (c *fakeCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared++
	c.entries = map[string]models.ArtistInfo{}
	return nil
}

func catalogRows(n int) []models.CombinedArtist {
	return pipeline.Join(tu.Catalog(n))
}

func newTestAPI(t *testing.T, info InfoCache) http.Handler {
	t.Helper()
	logger := shared.NewLogger(io.Discard)
	api := NewAPIHandler(catalogRows(60), info, analytics.DefaultRevenueModel(), logger)
	return NewRouter(shared.ServerConfig{}, api, logger)
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestBasicRouter(t *testing.T) {
	t.Run("middleware wraps in registration order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("first"), mark("second"))
		r.Handle(http.MethodGet, "/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		do(t, r, http.MethodGet, "/x")
		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("expected first,second,handler, got %v", order)
		}
	})

	t.Run("method mismatch", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodGet, "/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		if rec := do(t, r, http.MethodPost, "/x"); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("path values", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodGet, "/hello/{name}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, r.PathValue("name"))
		}))

		if rec := do(t, r, http.MethodGet, "/hello/adele"); rec.Body.String() != "adele" {
			t.Errorf("expected adele, got %q", rec.Body.String())
		}
	})
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, RequestIDFrom(r.Context()))
	})

	t.Run("RequestID generates an id", func(t *testing.T) {
		rec := do(t, RequestID()(ok), http.MethodGet, "/")
		id := rec.Header().Get(RequestIDHeader)
		if len(id) != 36 {
			t.Errorf("expected uuid, got %q", id)
		}
		if rec.Body.String() != id {
			t.Errorf("expected id in context, got %q", rec.Body.String())
		}
	})

	t.Run("RequestID keeps an incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc")
		rec := httptest.NewRecorder()
		RequestID()(ok).ServeHTTP(rec, req)

		if rec.Header().Get(RequestIDHeader) != "abc" || rec.Body.String() != "abc" {
			t.Errorf("expected abc, got %q / %q", rec.Header().Get(RequestIDHeader), rec.Body.String())
		}
	})

	t.Run("Recover", func(t *testing.T) {
		panics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") })
		rec := do(t, Recover(shared.NewLogger(io.Discard))(panics), http.MethodGet, "/")

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "internal server error") {
			t.Errorf("expected JSON error body, got %q", rec.Body.String())
		}
	})

	t.Run("AccessLog records status", func(t *testing.T) {
		var buf strings.Builder
		logger := shared.NewLogger(&buf)
		teapot := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

		rec := do(t, AccessLog(logger)(teapot), http.MethodGet, "/brew")
		if rec.Code != http.StatusTeapot {
			t.Errorf("expected 418, got %d", rec.Code)
		}
		if !strings.Contains(buf.String(), "418") || !strings.Contains(buf.String(), "/brew") {
			t.Errorf("expected status and path in log, got %q", buf.String())
		}
	})

	t.Run("RateLimit", func(t *testing.T) {
		limited := RateLimit(2)(ok)
		codes := make([]int, 3)
		for i := range codes {
			codes[i] = do(t, limited, http.MethodGet, "/").Code
		}
		if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
			t.Errorf("expected 200,200,429, got %v", codes)
		}
	})

	t.Run("RateLimit disabled", func(t *testing.T) {
		unlimited := RateLimit(0)(ok)
		for range 5 {
			if rec := do(t, unlimited, http.MethodGet, "/"); rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
		}
	})

	t.Run("CORS", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		CORS(nil)(ok).ServeHTTP(rec, req)

		if rec.Header().Get("Access-Control-Allow-Origin") == "" {
			t.Error("expected Access-Control-Allow-Origin header")
		}
	})
}

func TestAPIHandler(t *testing.T) {
	t.Run("artists default to revenue descending", func(t *testing.T) {
		rec := do(t, newTestAPI(t, nil), http.MethodGet, "/api/artists")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		page := decode[pipeline.Page](t, rec)
		if page.TotalItems != 60 || page.TotalPages != 3 || page.Number != 1 {
			t.Errorf("expected 60 items over 3 pages, got %d/%d page %d", page.TotalItems, page.TotalPages, page.Number)
		}
		if len(page.Items) != pipeline.PageSize || page.Items[0].Name != "Artist 059" {
			t.Errorf("expected Artist 059 first, got %d items", len(page.Items))
		}
	})

	t.Run("filters and clamps page", func(t *testing.T) {
		rec := do(t, newTestAPI(t, nil), http.MethodGet, "/api/artists?genre=pop&sort=name&page=9")
		page := decode[pipeline.Page](t, rec)

		if page.TotalItems != 15 || page.Number != 1 {
			t.Errorf("expected 15 pop artists on page 1, got %d on page %d", page.TotalItems, page.Number)
		}
		if page.Items[0].Name != "Artist 000" {
			t.Errorf("expected name ascending, got %s first", page.Items[0].Name)
		}
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		rec := do(t, newTestAPI(t, nil), http.MethodGet, "/api/artists?q=zzz")
		if !strings.Contains(rec.Body.String(), `"items":[]`) {
			t.Errorf("expected empty items array, got %s", rec.Body.String())
		}
	})

	t.Run("bad parameters", func(t *testing.T) {
		for _, target := range []string{
			"/api/artists?tier=legendary",
			"/api/artists?sort=vibes",
			"/api/artists?dir=up",
			"/api/artists?min_hit_rate=high",
			"/api/artists?page=two",
		} {
			if rec := do(t, newTestAPI(t, nil), http.MethodGet, target); rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", target, rec.Code)
			}
		}
	})

	t.Run("artist detail", func(t *testing.T) {
		cache := newFakeCache()
		cache.Cached(context.Background(), "Artist 007")

		rec := do(t, newTestAPI(t, cache), http.MethodGet, "/api/artists/Artist%20007")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		detail := decode[map[string]any](t, rec)
		if detail["name"] != "Artist 007" {
			t.Errorf("expected Artist 007, got %v", detail["name"])
		}
		if detail["career_stage"] != string(analytics.StageNew) {
			t.Errorf("expected new career stage, got %v", detail["career_stage"])
		}
		if _, ok := detail["spotify"]; !ok {
			t.Error("expected cached spotify info")
		}

		prediction, ok := detail["prediction"].(map[string]any)
		if !ok {
			t.Fatalf("expected joined prediction, got %v", detail["prediction"])
		}
		forecast, _ := prediction["predictions"].(map[string]any)
		if forecast["predicted_tier"] != string(models.TierBust) {
			t.Errorf("expected bust predicted tier, got %v", forecast["predicted_tier"])
		}
		if _, ok := detail["hotness_label"]; !ok {
			t.Error("expected hotness label alongside the prediction")
		}
	})

	t.Run("artist detail without prediction", func(t *testing.T) {
		rec := do(t, newTestAPI(t, nil), http.MethodGet, "/api/artists/Artist%20003")
		detail := decode[map[string]any](t, rec)

		prediction, ok := detail["prediction"]
		if !ok {
			t.Fatal("expected prediction key to be present")
		}
		if prediction != nil {
			t.Errorf("expected null prediction, got %v", prediction)
		}
	})

	t.Run("artist not found and ambiguous", func(t *testing.T) {
		h := newTestAPI(t, nil)
		if rec := do(t, h, http.MethodGet, "/api/artists/Nobody"); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		if rec := do(t, h, http.MethodGet, "/api/artists/Artist%2005"); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for ambiguous name, got %d", rec.Code)
		}
	})

	t.Run("spotify info", func(t *testing.T) {
		cache := newFakeCache()
		h := newTestAPI(t, cache)

		rec := do(t, h, http.MethodGet, "/api/artists/Nobody/spotify")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		info := decode[models.ArtistInfo](t, rec)
		if info.Name != "Nobody" || info.Followers != shared.NotAvailable {
			t.Errorf("expected default record, got %+v", info)
		}

		do(t, h, http.MethodGet, "/api/artists/Nobody/spotify")
		if cache.lookups != 1 {
			t.Errorf("expected one lookup, got %d", cache.lookups)
		}
	})

	t.Run("spotify not configured", func(t *testing.T) {
		h := newTestAPI(t, nil)
		if rec := do(t, h, http.MethodGet, "/api/artists/Adele/spotify"); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
		if rec := do(t, h, http.MethodDelete, "/api/spotify/cache"); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("clear cache", func(t *testing.T) {
		cache := newFakeCache()
		rec := do(t, newTestAPI(t, cache), http.MethodDelete, "/api/spotify/cache")
		if rec.Code != http.StatusOK || cache.cleared != 1 {
			t.Errorf("expected cleared cache, got %d after %d clears", rec.Code, cache.cleared)
		}
	})

	t.Run("stats", func(t *testing.T) {
		h := newTestAPI(t, nil)
		for _, kind := range []string{"summary", "genres", "careers", "rising", "predicted"} {
			if rec := do(t, h, http.MethodGet, "/api/stats/"+kind); rec.Code != http.StatusOK {
				t.Errorf("%s: expected 200, got %d", kind, rec.Code)
			}
		}

		summary := decode[models.Summary](t, do(t, h, http.MethodGet, "/api/stats/summary"))
		if summary.TotalArtists != 60 {
			t.Errorf("expected 60 artists, got %d", summary.TotalArtists)
		}

		if rec := do(t, h, http.MethodGet, "/api/stats/weather"); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("revenue", func(t *testing.T) {
		h := newTestAPI(t, nil)
		if rec := do(t, h, http.MethodGet, "/api/revenue?popularity=80"); rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		for _, target := range []string{"/api/revenue", "/api/revenue?popularity=150", "/api/revenue?popularity=hot"} {
			if rec := do(t, h, http.MethodGet, target); rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", target, rec.Code)
			}
		}
	})

	t.Run("genres", func(t *testing.T) {
		body := decode[map[string][]string](t, do(t, newTestAPI(t, nil), http.MethodGet, "/api/genres"))
		if strings.Join(body["genres"], ",") != "country,hip hop,pop,rock" {
			t.Errorf("unexpected genres %v", body["genres"])
		}
	})

	t.Run("unmatched routes are logged and counted", func(t *testing.T) {
		var buf strings.Builder
		logger := shared.NewLogger(&buf)
		h := NewRouter(shared.ServerConfig{}, NewAPIHandler(catalogRows(3), nil, analytics.DefaultRevenueModel(), logger), logger)
		before := testutil.ToFloat64(httpRequests.WithLabelValues("unmatched", "404"))

		rec := do(t, h, http.MethodGet, "/api/nowhere")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("expected request id header on an unmatched route")
		}
		if !strings.Contains(buf.String(), "/api/nowhere") {
			t.Errorf("expected access log line, got %q", buf.String())
		}
		if after := testutil.ToFloat64(httpRequests.WithLabelValues("unmatched", "404")); after != before+1 {
			t.Errorf("expected unmatched counter to grow by 1, got %v -> %v", before, after)
		}
	})

	t.Run("matched routes are counted by pattern", func(t *testing.T) {
		h := newTestAPI(t, nil)
		before := testutil.ToFloat64(httpRequests.WithLabelValues("GET /api/genres", "200"))

		do(t, h, http.MethodGet, "/api/genres")
		if after := testutil.ToFloat64(httpRequests.WithLabelValues("GET /api/genres", "200")); after != before+1 {
			t.Errorf("expected pattern counter to grow by 1, got %v -> %v", before, after)
		}
	})

	t.Run("healthz and metrics", func(t *testing.T) {
		h := newTestAPI(t, nil)
		rec := do(t, h, http.MethodGet, "/healthz")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"artists":60`) {
			t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
		}
		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("expected request id header")
		}

		rec = do(t, h, http.MethodGet, "/metrics")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "hitscope_http_requests_total") {
			t.Errorf("expected request metrics, got %d", rec.Code)
		}
	})
}
