// Package tmdb provides a client for The Movie Database API.
package tmdb

import "strconv"

// Movie represents TMDB movie metadata.
type Movie struct {
	ID          int64   `json:"id"`
	IMDBID      string  `json:"imdb_id,omitempty"` // e.g., "tt0133093"
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"` // "2024-03-01"
	PosterPath  string  `json:"poster_path"`  // "/abc123.jpg"
	VoteAverage float64 `json:"vote_average"`
	Runtime     int     `json:"runtime"` // minutes
}

// Year extracts the year from ReleaseDate.
func (m *Movie) Year() int { return yearOf(m.ReleaseDate) }

// TVShow is a TV search result.
type TVShow struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"original_name"`
	Overview     string  `json:"overview"`
	FirstAirDate string  `json:"first_air_date"` // "2008-01-20"
	PosterPath   string  `json:"poster_path"`
	Popularity   float64 `json:"popularity"`
}

// Year extracts the year from FirstAirDate.
func (s *TVShow) Year() int { return yearOf(s.FirstAirDate) }

type searchResponse[T any] struct {
	Page         int `json:"page"`
	Results      []T `json:"results"`
	TotalResults int `json:"total_results"`
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
