package analytics

import (
	"fmt"
	"math"

	"github.com/desertthunder/hitscope/internal/shared"
)

// benchmarks maps popularity (every 10 points) to an estimated lifetime song revenue.
var benchmarks = [11]float64{
	500, 5_000, 12_000, 30_000, 75_000, 150_000, 350_000, 800_000, 2_000_000, 15_000_000, 30_000_000,
}

// EstimateSongRevenue interpolates linearly between the benchmark points. Popularity is
// truncated to an integer and clamped to 0-100; NaN yields 0.
func EstimateSongRevenue(popularity float64) float64 {
	if math.IsNaN(popularity) {
		return 0
	}
	pop := max(0, min(100, int(popularity)))
	lower := pop / 10
	if lower == 10 {
		return benchmarks[10]
	}
	fraction := float64(pop%10) / 10
	return benchmarks[lower] + (benchmarks[lower+1]-benchmarks[lower])*fraction
}

type band struct {
	min   float64
	value float64
}

// lookup returns the value of the first band whose minimum popularity is met.
func lookup(bands []band, popularity float64) float64 {
	for _, b := range bands {
		if popularity >= b.min {
			return b.value
		}
	}
	return bands[len(bands)-1].value
}

var (
	streamBands = []band{
		{95, 5_000_000_000}, {90, 2_000_000_000}, {85, 500_000_000}, {80, 200_000_000},
		{75, 100_000_000}, {70, 60_000_000}, {65, 35_000_000}, {60, 20_000_000},
		{55, 12_000_000}, {50, 7_000_000}, {45, 4_000_000}, {40, 2_500_000},
		{35, 1_500_000}, {30, 800_000}, {25, 400_000}, {20, 200_000},
		{15, 100_000}, {10, 50_000}, {5, 20_000}, {0, 5_000},
	}
	physicalBands = []band{{90, 0.25}, {80, 0.18}, {70, 0.12}, {50, 0.08}, {35, 0.05}, {0, 0.02}}
	tourBands     = []band{{90, 8.0}, {80, 5.0}, {70, 3.0}, {60, 1.5}, {50, 0.8}, {35, 0.3}, {0, 0.1}}
	merchBands    = []band{{90, 2.0}, {80, 1.3}, {70, 0.8}, {60, 0.5}, {50, 0.3}, {35, 0.15}, {0, 0.05}}
)

// RevenueModel splits a song's estimated revenue across streaming, physical sales,
// touring and merchandise, then across stakeholders.
type RevenueModel struct {
	StreamPayout           float64
	SpotifyCut             float64
	PhysicalDistributorCut float64
	Label                  float64
	Artist                 float64
	Songwriter             float64
	Publisher              float64
	Producer               float64
	Manager                float64
	TourVenue              float64
	MerchCost              float64
}

// DefaultRevenueModel returns the model with industry-average constants.
func DefaultRevenueModel() RevenueModel {
	return RevenueModel{
		StreamPayout:           0.004,
		SpotifyCut:             0.27,
		PhysicalDistributorCut: 0.20,
		Label:                  0.64,
		Artist:                 0.16,
		Songwriter:             0.105,
		Publisher:              0.045,
		Producer:               0.04,
		Manager:                0.18,
		TourVenue:              0.25,
		MerchCost:              0.45,
	}
}

// NewRevenueModel builds a model from config. An empty section yields the defaults.
func NewRevenueModel(cfg shared.RevenueConfig) (RevenueModel, error) {
	if cfg == (shared.RevenueConfig{}) {
		return DefaultRevenueModel(), nil
	}

	m := RevenueModel(cfg)
	if err := m.Validate(); err != nil {
		return RevenueModel{}, err
	}
	return m, nil
}

// Validate checks that every rate is a fraction and that the rights-holder split does
// not exceed the whole.
func (m RevenueModel) Validate() error {
	rates := map[string]float64{
		"spotify_cut":              m.SpotifyCut,
		"physical_distributor_cut": m.PhysicalDistributorCut,
		"label":                    m.Label,
		"artist":                   m.Artist,
		"songwriter":               m.Songwriter,
		"publisher":                m.Publisher,
		"producer":                 m.Producer,
		"manager":                  m.Manager,
		"tour_venue":               m.TourVenue,
		"merch_cost":               m.MerchCost,
	}
	for name, r := range rates {
		if r < 0 || r > 1 {
			return fmt.Errorf("%w: revenue.%s must be between 0 and 1, got %v", shared.ErrInvalidConfig, name, r)
		}
	}
	if m.StreamPayout <= 0 {
		return fmt.Errorf("%w: revenue.stream_payout must be positive", shared.ErrInvalidConfig)
	}

	split := m.Label + m.Artist + m.Songwriter + m.Publisher + m.Producer
	if split > 1+1e-9 {
		return fmt.Errorf("%w: rights-holder split sums to %.3f", shared.ErrInvalidConfig, split)
	}
	return nil
}

func (RevenueModel) EstimateStreams(popularity float64) float64 {
	return lookup(streamBands, math.Trunc(popularity))
}

func (RevenueModel) PhysicalMultiplier(popularity float64) float64 {
	return lookup(physicalBands, popularity)
}

func (RevenueModel) TourMultiplier(popularity float64) float64 {
	return lookup(tourBands, popularity)
}

func (RevenueModel) MerchMultiplier(popularity float64) float64 {
	return lookup(merchBands, popularity)
}

// RevenueBreakdown is the full split for one song.
type RevenueBreakdown struct {
	Popularity        float64 `json:"popularity"`
	Streams           float64 `json:"streams"`
	TotalGross        float64 `json:"total_gross_revenue"`
	Streaming         float64 `json:"streaming_revenue"`
	PlatformCut       float64 `json:"streaming_platform_cut"`
	StreamingToRights float64 `json:"streaming_to_rights_holders"`
	Physical          float64 `json:"physical_sales_revenue"`
	DistributionCut   float64 `json:"physical_distribution_cut"`
	PhysicalToRights  float64 `json:"physical_to_rights_holders"`
	Tour              float64 `json:"tour_revenue"`
	VenueCut          float64 `json:"tour_venue_cut"`
	TourToArtist      float64 `json:"tour_to_artist"`
	Merch             float64 `json:"merchandise_revenue"`
	MerchCosts        float64 `json:"merchandise_costs"`
	MerchToArtist     float64 `json:"merchandise_to_artist"`
	RightsHolders     float64 `json:"total_to_rights_holders"`
	LabelShare        float64 `json:"label_share"`
	ArtistShare       float64 `json:"artist_share_before_deductions"`
	SongwriterShare   float64 `json:"songwriter_share"`
	PublisherShare    float64 `json:"publisher_share"`
	ProducerShare     float64 `json:"producer_share"`
	ManagerCut        float64 `json:"manager_cut"`
	ArtistNet         float64 `json:"artist_final_net"`
}

// Breakdown computes the revenue split for a song of the given popularity. NaN is
// treated as 0.
func (m RevenueModel) Breakdown(popularity float64) RevenueBreakdown {
	if math.IsNaN(popularity) {
		popularity = 0
	}
	b := RevenueBreakdown{Popularity: popularity}

	b.Streams = m.EstimateStreams(popularity)
	b.Streaming = b.Streams * m.StreamPayout
	b.PlatformCut = b.Streaming * m.SpotifyCut
	b.StreamingToRights = b.Streaming * (1 - m.SpotifyCut)

	b.Physical = b.Streaming * m.PhysicalMultiplier(popularity)
	b.DistributionCut = b.Physical * m.PhysicalDistributorCut
	b.PhysicalToRights = b.Physical * (1 - m.PhysicalDistributorCut)

	b.RightsHolders = b.StreamingToRights + b.PhysicalToRights
	b.LabelShare = b.RightsHolders * m.Label
	b.ArtistShare = b.RightsHolders * m.Artist
	b.SongwriterShare = b.RightsHolders * m.Songwriter
	b.PublisherShare = b.RightsHolders * m.Publisher
	b.ProducerShare = b.RightsHolders * m.Producer

	b.Tour = b.Streaming * m.TourMultiplier(popularity)
	b.VenueCut = b.Tour * m.TourVenue
	b.TourToArtist = b.Tour * (1 - m.TourVenue)

	b.Merch = b.Streaming * m.MerchMultiplier(popularity)
	b.MerchCosts = b.Merch * m.MerchCost
	b.MerchToArtist = b.Merch * (1 - m.MerchCost)

	artistGross := b.ArtistShare + b.TourToArtist + b.MerchToArtist
	b.ManagerCut = artistGross * m.Manager
	b.ArtistNet = artistGross * (1 - m.Manager)

	b.TotalGross = b.Streaming + b.Physical + b.Tour + b.Merch
	return b
}
