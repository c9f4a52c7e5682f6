// Package metadata resolves shows and movies against an external provider
// and adds them to the catalog.
package metadata

import (
	"context"
	"errors"

	"github.com/vmunix/mediarr/internal/library"
)

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks

// ErrNotFound indicates the provider has no such title.
var ErrNotFound = errors.New("metadata not found")

// ShowQuery searches for a show. Year 0 means any year.
type ShowQuery struct {
	Name string
	Year int
}

// ShowMatch is a provider search hit for a show.
type ShowMatch struct {
	ProviderID string
	Name       string
	Year       int
	Overview   string
}

// MovieMatch is a provider search hit for a movie.
type MovieMatch struct {
	ProviderID string
	Title      string
	Year       int
	Overview   string
}

// AddShowOptions describes a show to add from a provider hit.
type AddShowOptions struct {
	LibraryID  int64
	ProviderID string
	Name       string
	Year       int
}

// AddMovieOptions describes a movie to add from a provider hit.
type AddMovieOptions struct {
	LibraryID  int64
	ProviderID string
	Title      string
	Year       int
}

// Service looks up titles and creates catalog entries from them. Results are
// ordered as the provider ranks them.
type Service interface {
	SearchShows(ctx context.Context, q ShowQuery) ([]ShowMatch, error)
	SearchMovies(ctx context.Context, title string, year int) ([]MovieMatch, error)
	AddTVShowFromProvider(ctx context.Context, opts AddShowOptions) (*library.TvShow, error)
	AddMovieFromProvider(ctx context.Context, opts AddMovieOptions) (*library.Movie, error)
}
