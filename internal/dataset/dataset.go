// package dataset loads the precomputed artist analytics and prediction payloads
package dataset

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/pipeline"
	"github.com/desertthunder/hitscope/internal/shared"
)

// Dataset is the decoded pair of payloads. Summary is nil when the artists payload is
// a bare map.
type Dataset struct {
	Artists     map[string]models.Artist
	Predictions map[string]*models.Prediction
	Summary     *models.Summary
}

// Combined joins artists with their predictions.
func (d *Dataset) Combined() []models.CombinedArtist {
	return pipeline.Join(d.Artists, d.Predictions)
}

// Loader reads payloads from local paths or http(s) URLs.
type Loader struct {
	client *resty.Client
	logger *log.Logger
}

// NewLoader creates a loader. timeout bounds each remote fetch.
func NewLoader(timeout time.Duration, logger *log.Logger) *Loader {
	client := resty.New().SetTimeout(timeout).SetLogger(logger)
	return &Loader{client: client, logger: logger}
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Fetch returns the raw bytes of src.
func (l *Loader) Fetch(ctx context.Context, src string) ([]byte, error) {
	if !isRemote(src) {
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrDatasetLoad, err)
		}
		return data, nil
	}

	resp, err := l.client.R().SetContext(ctx).Get(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrDatasetLoad, src, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s returned status %d", shared.ErrDatasetLoad, src, resp.StatusCode())
	}
	return resp.Body(), nil
}

// Load fetches both payloads concurrently and decodes them. An empty predictionsSrc
// yields a dataset with no predictions.
func (l *Loader) Load(ctx context.Context, artistsSrc, predictionsSrc string) (*Dataset, error) {
	if artistsSrc == "" {
		return nil, fmt.Errorf("%w: artists source", shared.ErrMissingConfig)
	}

	var artistsRaw, predictionsRaw []byte
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		artistsRaw, err = l.Fetch(ctx, artistsSrc)
		return err
	})
	if predictionsSrc != "" {
		g.Go(func() error {
			var err error
			predictionsRaw, err = l.Fetch(ctx, predictionsSrc)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &Dataset{Predictions: map[string]*models.Prediction{}}
	var err error
	if ds.Artists, ds.Summary, err = DecodeArtists(artistsRaw); err != nil {
		return nil, err
	}
	if predictionsRaw != nil {
		if ds.Predictions, err = DecodePredictions(predictionsRaw); err != nil {
			return nil, err
		}
	}

	l.logger.Debug("dataset loaded", "artists", len(ds.Artists), "predictions", len(ds.Predictions))
	return ds, nil
}

type wrappedArtists struct {
	Summary *models.Summary          `json:"summary"`
	Artists map[string]models.Artist `json:"artists"`
}

// DecodeArtists accepts either a bare {name: artist} map or the {summary, artists}
// wrapper written by the analyzer.
func DecodeArtists(data []byte) (map[string]models.Artist, *models.Summary, error) {
	data = Sanitize(data)

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, nil, fmt.Errorf("%w: artists: %v", shared.ErrDatasetDecode, err)
	}

	_, hasArtists := probe["artists"]
	_, hasSummary := probe["summary"]
	if hasArtists && hasSummary {
		var w wrappedArtists
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, nil, fmt.Errorf("%w: artists: %v", shared.ErrDatasetDecode, err)
		}
		if w.Artists == nil {
			w.Artists = map[string]models.Artist{}
		}
		return w.Artists, w.Summary, nil
	}

	artists := make(map[string]models.Artist, len(probe))
	if err := json.Unmarshal(data, &artists); err != nil {
		return nil, nil, fmt.Errorf("%w: artists: %v", shared.ErrDatasetDecode, err)
	}
	return artists, nil, nil
}

// DecodePredictions decodes a {name: prediction} map.
func DecodePredictions(data []byte) (map[string]*models.Prediction, error) {
	predictions := map[string]*models.Prediction{}
	if err := json.Unmarshal(Sanitize(data), &predictions); err != nil {
		return nil, fmt.Errorf("%w: predictions: %v", shared.ErrDatasetDecode, err)
	}
	return predictions, nil
}
