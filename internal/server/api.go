package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/desertthunder/hitscope/internal/analytics"
	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/pipeline"
	"github.com/desertthunder/hitscope/internal/shared"
)

// InfoCache is the enrichment surface the API needs. Implemented by services.InfoCache.
type InfoCache interface {
	Cached(ctx context.Context, name string) models.ArtistInfo
	Peek(name string) (models.ArtistInfo, bool)
	Clear() error
}

// APIHandler serves the read-only JSON API over a loaded artist table.
type APIHandler struct {
	mux      *http.ServeMux
	rows     []models.CombinedArtist
	explorer *analytics.Explorer
	info     InfoCache
	revenue  analytics.RevenueModel
	logger   *log.Logger
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ArtistDetail is the single-artist response. The prediction is a named field rather than
// an embedded [models.CombinedArtist]: a doubly embedded pointer field is dropped by the encoder.
type ArtistDetail struct {
	models.Artist
	Prediction   *models.Prediction    `json:"prediction"`
	CareerStage  analytics.CareerStage `json:"career_stage"`
	HotnessLabel string                `json:"hotness_label,omitempty"`
	Spotify      *models.ArtistInfo    `json:"spotify,omitempty"`
}

var apiRoutes = []string{
	"GET /api/artists",
	"GET /api/artists/{name}",
	"GET /api/artists/{name}/spotify",
	"GET /api/genres",
	"GET /api/stats/{kind}",
	"GET /api/revenue",
	"DELETE /api/spotify/cache",
}

// NewAPIHandler creates an [APIHandler]. info may be nil when Spotify is not configured.
func NewAPIHandler(rows []models.CombinedArtist, info InfoCache, revenue analytics.RevenueModel, logger *log.Logger) *APIHandler {
	h := &APIHandler{
		mux:      http.NewServeMux(),
		rows:     rows,
		explorer: analytics.NewExplorer(rows),
		info:     info,
		revenue:  revenue,
		logger:   logger,
	}

	h.mux.HandleFunc("GET /api/artists", h.listArtists)
	h.mux.HandleFunc("GET /api/artists/{name}", h.getArtist)
	h.mux.HandleFunc("GET /api/artists/{name}/spotify", h.getSpotify)
	h.mux.HandleFunc("GET /api/genres", h.listGenres)
	h.mux.HandleFunc("GET /api/stats/{kind}", h.getStats)
	h.mux.HandleFunc("GET /api/revenue", h.getRevenue)
	h.mux.HandleFunc("DELETE /api/spotify/cache", h.clearCache)
	return h
}

// Routes implements [Handler].
func (h *APIHandler) Routes() []string { return apiRoutes }

// ServeHTTP implements [http.Handler].
func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrArtistNotFound), errors.Is(err, shared.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrServiceUnavailable), errors.Is(err, shared.ErrMissingCredentials):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), RequestID: RequestIDFrom(r.Context())})
}

func parseFloat(v url.Values, key string) (float64, error) {
	s := v.Get(key)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", shared.ErrInvalidArgument, key)
	}
	return f, nil
}

func parseInt(v url.Values, key string, def int) (int, error) {
	s := v.Get(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", shared.ErrInvalidArgument, key)
	}
	return n, nil
}

// parseQuery reads q, genre, tier, min_hit_rate, min_revenue, sort, dir and page.
// sort defaults to revenue; page is clamped later.
func parseQuery(v url.Values) (pipeline.Query, error) {
	q := pipeline.Query{
		Filter: pipeline.Filter{
			Search: v.Get("q"),
			Genre:  v.Get("genre"),
		},
		Sort: pipeline.SortRevenue,
	}

	if raw := v.Get("tier"); raw != "" {
		q.Tier = models.ParseTier(raw)
		if q.Tier == models.TierUnknown {
			return q, fmt.Errorf("%w: unknown tier %q", shared.ErrInvalidArgument, raw)
		}
	}

	var err error
	if q.MinHitRate, err = parseFloat(v, "min_hit_rate"); err != nil {
		return q, err
	}
	if q.MinRevenue, err = parseFloat(v, "min_revenue"); err != nil {
		return q, err
	}
	if raw := v.Get("sort"); raw != "" {
		if q.Sort, err = pipeline.ParseSortKey(raw); err != nil {
			return q, err
		}
	}
	if q.Direction, err = pipeline.ParseDirection(v.Get("dir")); err != nil {
		return q, err
	}
	if q.Page, err = parseInt(v, "page", 1); err != nil {
		return q, err
	}
	return q, nil
}

func (h *APIHandler) listArtists(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page := pipeline.Run(h.rows, q)
	page.Items = nonNil(page.Items)
	writeJSON(w, http.StatusOK, page)
}

// Health reports liveness and the loaded table size.
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"artists": len(h.rows),
		"spotify": h.info != nil,
	})
}

func (h *APIHandler) getArtist(w http.ResponseWriter, r *http.Request) {
	row, err := h.explorer.Resolve(r.PathValue("name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	detail := ArtistDetail{
		Artist:      row.Artist,
		Prediction:  row.Prediction,
		CareerStage: analytics.StageFor(row.CareerSpanYears),
	}
	if row.HasPrediction() {
		detail.HotnessLabel = analytics.HotnessLabel(row.Hotness())
	}
	if h.info != nil {
		if info, ok := h.info.Peek(row.Name); ok {
			detail.Spotify = &info
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

// getSpotify looks up the exact path name. A name with no match still returns 200 with the default record.
func (h *APIHandler) getSpotify(w http.ResponseWriter, r *http.Request) {
	if h.info == nil {
		h.writeError(w, r, fmt.Errorf("%w: Spotify credentials are not configured", shared.ErrServiceUnavailable))
		return
	}
	writeJSON(w, http.StatusOK, h.info.Cached(r.Context(), r.PathValue("name")))
}

func (h *APIHandler) listGenres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"genres": pipeline.Genres(h.rows)})
}

func (h *APIHandler) getStats(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()

	switch kind := r.PathValue("kind"); kind {
	case "summary":
		writeJSON(w, http.StatusOK, h.explorer.Summary())
	case "genres":
		writeJSON(w, http.StatusOK, h.explorer.GenreAnalysis())
	case "careers":
		writeJSON(w, http.StatusOK, h.explorer.CareerStages())
	case "rising":
		minSongs, err := parseInt(v, "min_songs", 3)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		maxSongs, err := parseInt(v, "max_songs", 20)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(h.explorer.RisingStars(minSongs, maxSongs)))
	case "predicted":
		n, err := parseInt(v, "limit", 10)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(h.explorer.TopPredicted(n)))
	default:
		writeJSON(w, http.StatusNotFound, errorBody{
			Error:     fmt.Sprintf("unknown stats %q (want summary, genres, careers, rising or predicted)", kind),
			RequestID: RequestIDFrom(r.Context()),
		})
	}
}

func (h *APIHandler) getRevenue(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("popularity")
	if raw == "" {
		h.writeError(w, r, fmt.Errorf("%w: popularity", shared.ErrMissingArgument))
		return
	}
	pop, err := strconv.ParseFloat(raw, 64)
	if err != nil || pop < 0 || pop > 100 {
		h.writeError(w, r, fmt.Errorf("%w: popularity must be between 0 and 100", shared.ErrInvalidArgument))
		return
	}
	writeJSON(w, http.StatusOK, h.revenue.Breakdown(pop))
}

func (h *APIHandler) clearCache(w http.ResponseWriter, r *http.Request) {
	if h.info == nil {
		h.writeError(w, r, fmt.Errorf("%w: Spotify credentials are not configured", shared.ErrServiceUnavailable))
		return
	}
	if err := h.info.Clear(); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func nonNil(rows []models.CombinedArtist) []models.CombinedArtist {
	if rows == nil {
		return []models.CombinedArtist{}
	}
	return rows
}
