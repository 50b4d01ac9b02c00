package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/shared"
)

// ArtistSearcher finds the best catalog match for an artist name.
type ArtistSearcher interface {
	SearchArtist(ctx context.Context, name string) (*SpotifyArtist, bool)
}

// InfoProvider produces the display projection for an artist name.
type InfoProvider interface {
	Info(ctx context.Context, name string) models.ArtistInfo
}

// InfoService projects Spotify search results into [models.ArtistInfo].
type InfoService struct {
	searcher ArtistSearcher
}

func NewInfoService(searcher ArtistSearcher) *InfoService {
	return &InfoService{searcher: searcher}
}

// Info never fails: without a match it returns [models.DefaultArtistInfo].
func (s *InfoService) Info(ctx context.Context, name string) models.ArtistInfo {
	artist, ok := s.searcher.SearchArtist(ctx, name)
	if !ok || artist == nil {
		return models.DefaultArtistInfo(name)
	}
	return Project(name, artist)
}

// Project converts a matched artist. name is the key the lookup was made with.
func Project(name string, a *SpotifyArtist) models.ArtistInfo {
	info := models.DefaultArtistInfo(name)
	info.Found = true

	if len(a.Images) > 0 {
		info.ImageURL = a.Images[0].URL
	}
	if a.Followers.Total > 0 {
		info.Followers = shared.FormatCount(int64(a.Followers.Total))
	}
	if a.Popularity != nil {
		info.Popularity = strconv.Itoa(*a.Popularity)
	}
	if len(a.Genres) > 0 {
		info.Genres = strings.Join(a.Genres, ", ")
	}
	info.SpotifyURL = a.ExternalURLs.Spotify
	return info
}
