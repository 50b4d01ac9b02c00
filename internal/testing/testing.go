// package testing contains shared testing utilities
package testing

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/hitscope/internal/models"
)

// FakeClock is a manually advanced clock for token expiry tests
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
	calls    int
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	m.calls++
	return m.response, m.err
}

func (m *MockRoundTripper) Calls() int { return m.calls }

// Artist builds a minimal artist record
func Artist(name, genre string, songs int, hitRate, revenue float64) models.Artist {
	return models.Artist{
		Name:                  name,
		PrimaryGenre:          genre,
		TotalSongs:            songs,
		HitRate:               hitRate,
		EstimatedTotalRevenue: revenue,
	}
}

// Prediction builds a prediction with the given forecast values
func Prediction(tier models.Tier, probability, hotness float64) *models.Prediction {
	return &models.Prediction{
		Forecast: models.Forecast{
			HitProbability: probability,
			PredictedTier:  tier,
			HotnessScore:   hotness,
		},
	}
}

// Catalog returns n synthetic artists named "Artist 000".."Artist n-1", with every
// third one lacking a prediction.
func Catalog(n int) (map[string]models.Artist, map[string]*models.Prediction) {
	artists := make(map[string]models.Artist, n)
	predictions := make(map[string]*models.Prediction, n)
	genres := []string{"pop", "rock", "hip hop", "country"}

	for i := range n {
		name := fmt.Sprintf("Artist %03d", i)
		artists[name] = Artist(name, genres[i%len(genres)], 1+i%40, float64(i%100), float64(1000*(i+1)))
		if i%3 != 0 {
			predictions[name] = Prediction(models.Tiers[i%len(models.Tiers)], float64(i%100), float64((i*7)%100))
		}
	}
	return artists, predictions
}

// ArtistsJSON is a small artists payload in the bare-map shape, including a NaN.
const ArtistsJSON = `{
  "Adele": {"name": "Adele", "total_songs": 20, "hit_songs": 8, "hit_rate": 40.0, "estimated_total_revenue": 5000000, "primary_genre": "pop", "career_span_years": 12, "avg_energy": NaN},
  "Zach Bryan": {"name": "Zach Bryan", "total_songs": 6, "hit_songs": 3, "hit_rate": 50.0, "estimated_total_revenue": 800000, "primary_genre": "country", "career_span_years": 3},
  "Metallica": {"name": "Metallica", "total_songs": 30, "hit_songs": 5, "hit_rate": 16.7, "estimated_total_revenue": 3000000, "primary_genre": "rock", "career_span_years": 30}
}`

// PredictionsJSON matches [ArtistsJSON] except that Metallica has no entry.
const PredictionsJSON = `{
  "Adele": {"current_status": {"total_songs": 20, "hit_rate": 40.0}, "predictions": {"hit_probability": 55.0, "predicted_popularity": 70, "predicted_tier": "good", "confidence_interval": [60, 80], "hotness_score": 45, "recommendation": "release"}, "timestamp": "2024-01-01T00:00:00"},
  "Zach Bryan": {"current_status": {"total_songs": 6, "hit_rate": 50.0}, "predictions": {"hit_probability": 62.5, "predicted_popularity": 78, "predicted_tier": "hit", "confidence_interval": [70, 86], "hotness_score": 81, "recommendation": "promote"}, "timestamp": "2024-01-01T00:00:00"}
}`

// WriteFixture writes content into a file under t.TempDir and returns its path.
func WriteFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write fixture %s: %v", path, err)
	}
	return path
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
