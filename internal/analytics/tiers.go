package analytics

import (
	"fmt"
	"math"

	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/shared"
)

// TierThresholds are the inclusive lower popularity bounds of each tier. Anything below
// Mid is a bust.
type TierThresholds struct {
	Hit  float64
	Good float64
	Mid  float64
}

// DefaultTierThresholds returns hit >= 80, good >= 65, mid >= 35.
func DefaultTierThresholds() TierThresholds {
	return TierThresholds{Hit: 80, Good: 65, Mid: 35}
}

// NewTierThresholds builds thresholds from config, falling back to the defaults when the
// section is empty.
func NewTierThresholds(cfg shared.TierConfig) (TierThresholds, error) {
	if cfg == (shared.TierConfig{}) {
		return DefaultTierThresholds(), nil
	}

	t := TierThresholds{Hit: cfg.Hit, Good: cfg.Good, Mid: cfg.Mid}
	if !(t.Mid > 0 && t.Mid < t.Good && t.Good < t.Hit && t.Hit <= 100) {
		return TierThresholds{}, fmt.Errorf("%w: tiers must satisfy 0 < mid < good < hit <= 100", shared.ErrInvalidConfig)
	}
	return t, nil
}

// Classify maps a 0-100 popularity to a tier. NaN and out-of-range values are unknown.
func (t TierThresholds) Classify(popularity float64) models.Tier {
	switch {
	case math.IsNaN(popularity) || popularity < 0 || popularity > 100:
		return models.TierUnknown
	case popularity >= t.Hit:
		return models.TierHit
	case popularity >= t.Good:
		return models.TierGood
	case popularity >= t.Mid:
		return models.TierMid
	default:
		return models.TierBust
	}
}

// HotnessLabel describes a 0-100 hotness score.
func HotnessLabel(score float64) string {
	switch {
	case score >= 70:
		return "very hot"
	case score >= 50:
		return "hot"
	case score >= 30:
		return "warm"
	default:
		return "cold"
	}
}
