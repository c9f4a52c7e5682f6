package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/tmdb"
	"github.com/vmunix/mediarr/pkg/release"
)

// ProviderTMDB is the provider name stored on catalog rows.
const ProviderTMDB = "tmdb"

// Cache key prefixes
const (
	keyPrefixShowSearch  = "tmdb:search:tv:"
	keyPrefixMovieSearch = "tmdb:search:movie:"
)

// TMDBService implements Service on top of the TMDB API.
type TMDBService struct {
	client *tmdb.Client
	cache  *Cache
	ttl    time.Duration
	store  *library.Store
	log    *slog.Logger
}

// NewTMDBService creates a TMDB-backed metadata service. cache may be nil.
func NewTMDBService(client *tmdb.Client, cache *Cache, ttl time.Duration, store *library.Store, log *slog.Logger) *TMDBService {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TMDBService{
		client: client,
		cache:  cache,
		ttl:    ttl,
		store:  store,
		log:    log.With("component", "metadata"),
	}
}

// SearchShows searches TMDB for shows (cached).
func (s *TMDBService) SearchShows(ctx context.Context, q ShowQuery) ([]ShowMatch, error) {
	name := release.NormalizeSearchQuery(q.Name)
	key := fmt.Sprintf("%s%s:%d", keyPrefixShowSearch, strings.ToLower(name), q.Year)
	return cached(ctx, s.cache, s.log, key, s.ttl, func() ([]ShowMatch, error) {
		results, err := s.client.SearchTV(ctx, name, q.Year)
		if err != nil {
			return nil, err
		}
		matches := make([]ShowMatch, 0, len(results))
		for _, r := range results {
			matches = append(matches, ShowMatch{
				ProviderID: strconv.FormatInt(r.ID, 10),
				Name:       r.Name,
				Year:       r.Year(),
				Overview:   r.Overview,
			})
		}
		return matches, nil
	})
}

// SearchMovies searches TMDB for movies (cached).
func (s *TMDBService) SearchMovies(ctx context.Context, title string, year int) ([]MovieMatch, error) {
	title = release.NormalizeSearchQuery(title)
	key := fmt.Sprintf("%s%s:%d", keyPrefixMovieSearch, strings.ToLower(title), year)
	return cached(ctx, s.cache, s.log, key, s.ttl, func() ([]MovieMatch, error) {
		results, err := s.client.SearchMovie(ctx, title, year)
		if err != nil {
			return nil, err
		}
		matches := make([]MovieMatch, 0, len(results))
		for _, r := range results {
			matches = append(matches, MovieMatch{
				ProviderID: strconv.FormatInt(r.ID, 10),
				Title:      r.Title,
				Year:       r.Year(),
				Overview:   r.Overview,
			})
		}
		return matches, nil
	})
}

// AddTVShowFromProvider returns the library's show with this provider id,
// creating it if needed.
func (s *TMDBService) AddTVShowFromProvider(ctx context.Context, opts AddShowOptions) (*library.TvShow, error) {
	if existing, err := s.store.GetShowByProvider(opts.LibraryID, ProviderTMDB, opts.ProviderID); err == nil {
		return existing, nil
	} else if !errors.Is(err, library.ErrNotFound) {
		return nil, err
	}

	providerID := opts.ProviderID
	show := &library.TvShow{
		LibraryID:  opts.LibraryID,
		Name:       opts.Name,
		Year:       opts.Year,
		Provider:   ProviderTMDB,
		ProviderID: &providerID,
	}
	if err := s.store.AddShow(show); err != nil {
		// A concurrent scan added it first.
		if errors.Is(err, library.ErrDuplicate) {
			return s.store.GetShowByProvider(opts.LibraryID, ProviderTMDB, opts.ProviderID)
		}
		return nil, err
	}
	s.log.Info("show added", "library_id", opts.LibraryID, "show", show.Name, "provider_id", providerID)
	return show, nil
}

// AddMovieFromProvider returns the library's movie with this provider id,
// creating it if needed. Missing title or year are filled in from TMDB.
func (s *TMDBService) AddMovieFromProvider(ctx context.Context, opts AddMovieOptions) (*library.Movie, error) {
	if existing, err := s.store.GetMovieByProvider(opts.LibraryID, opts.ProviderID); err == nil {
		return existing, nil
	} else if !errors.Is(err, library.ErrNotFound) {
		return nil, err
	}

	if opts.Title == "" || opts.Year == 0 {
		id, err := strconv.ParseInt(opts.ProviderID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tmdb id %q: %w", opts.ProviderID, err)
		}
		details, err := s.client.GetMovie(ctx, id)
		if errors.Is(err, tmdb.ErrNotFound) {
			return nil, fmt.Errorf("movie %s: %w", opts.ProviderID, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		if opts.Title == "" {
			opts.Title = details.Title
		}
		if opts.Year == 0 {
			opts.Year = details.Year()
		}
	}

	providerID := opts.ProviderID
	movie := &library.Movie{
		LibraryID:  opts.LibraryID,
		Title:      opts.Title,
		Year:       opts.Year,
		ProviderID: &providerID,
	}
	if err := s.store.AddMovie(movie); err != nil {
		if errors.Is(err, library.ErrDuplicate) {
			return s.store.GetMovieByProvider(opts.LibraryID, opts.ProviderID)
		}
		return nil, err
	}
	s.log.Info("movie added", "library_id", opts.LibraryID, "title", movie.Title, "year", movie.Year, "provider_id", providerID)
	return movie, nil
}
