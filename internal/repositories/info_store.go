package repositories

import (
	"errors"
	"fmt"

	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/shared"
)

// InfoStoreAdapter implements services.InfoStore using [ArtistInfoRepository].
//
// Save is an upsert keyed by artist name: an existing live row is updated in place.
type InfoStoreAdapter struct {
	repo *ArtistInfoRepository
}

// NewInfoStoreAdapter creates a new InfoStoreAdapter with the given repository
func NewInfoStoreAdapter(repo *ArtistInfoRepository) *InfoStoreAdapter {
	return &InfoStoreAdapter{repo: repo}
}

// Load returns the stored projection for name. A missing row is (zero, false, nil).
func (a *InfoStoreAdapter) Load(name string) (models.ArtistInfo, bool, error) {
	cached, err := a.repo.GetByName(name)
	if errors.Is(err, shared.ErrRecordNotFound) {
		return models.ArtistInfo{}, false, nil
	}
	if err != nil {
		return models.ArtistInfo{}, false, err
	}
	return cached.Info(), true, nil
}

// Save inserts or refreshes the projection stored under info.Name.
func (a *InfoStoreAdapter) Save(info models.ArtistInfo) error {
	if err := a.repo.Upsert(info); err != nil {
		return fmt.Errorf("failed to cache artist info: %w", err)
	}
	return nil
}

// Clear removes every stored projection.
func (a *InfoStoreAdapter) Clear() error {
	_, err := a.repo.Clear()
	return err
}
