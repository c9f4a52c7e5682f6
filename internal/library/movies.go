package library

import (
	"database/sql"
	"fmt"
	"time"
)

const movieColumns = `id, library_id, title, year, provider_id, status, quality_override, added_at`

func scanMovie(row rowScanner) (*Movie, error) {
	m := &Movie{}
	var year sql.NullInt64
	var quality sql.NullString
	if err := row.Scan(&m.ID, &m.LibraryID, &m.Title, &year, &m.ProviderID, &m.Status, &quality, &m.AddedAt); err != nil {
		return nil, err
	}
	m.Year = int(year.Int64)
	q, err := decodeQuality(quality)
	if err != nil {
		return nil, err
	}
	m.QualityOverride = q
	return m, nil
}

// AddMovie inserts a new movie. Sets ID and AddedAt on the struct.
func (s *Store) AddMovie(m *Movie) error {
	if m.Status == "" {
		m.Status = ItemWanted
	}
	quality, err := encodeQuality(m.QualityOverride)
	if err != nil {
		return err
	}
	now := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO movies (library_id, title, year, provider_id, status, quality_override, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.LibraryID, m.Title, nullInt(m.Year), m.ProviderID, m.Status, quality, now,
	)
	if err != nil {
		return fmt.Errorf("insert movie: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	m.ID = id
	m.AddedAt = now
	return nil
}

// GetMovie retrieves a movie by ID.
// Returns ErrNotFound if the movie does not exist.
func (s *Store) GetMovie(id int64) (*Movie, error) {
	m, err := scanMovie(s.db.QueryRow(`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get movie %d: %w", id, mapSQLiteError(err))
	}
	return m, nil
}

// GetMovieByProvider finds a movie in a library by provider id.
// Returns ErrNotFound if the library has no such movie.
func (s *Store) GetMovieByProvider(libraryID int64, providerID string) (*Movie, error) {
	m, err := scanMovie(s.db.QueryRow(`
		SELECT `+movieColumns+` FROM movies WHERE library_id = ? AND provider_id = ?`,
		libraryID, providerID))
	if err != nil {
		return nil, fmt.Errorf("get movie %s: %w", providerID, mapSQLiteError(err))
	}
	return m, nil
}

// ListMovies returns every movie in a library ordered by title.
func (s *Store) ListMovies(libraryID int64) ([]*Movie, error) {
	rows, err := s.db.Query(`SELECT `+movieColumns+` FROM movies WHERE library_id = ? ORDER BY title, year, id`, libraryID)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return results, nil
}

func updateItemStatus(q querier, table string, id int64, status ItemStatus) error {
	result, err := q.Exec(`UPDATE `+table+` SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", table, id, mapSQLiteError(err))
	}
	return requireRow(result, "update "+table, id)
}

// UpdateMovieStatus sets a movie's download status.
func (s *Store) UpdateMovieStatus(id int64, status ItemStatus) error {
	return updateItemStatus(s.db, "movies", id, status)
}

// UpdateMovieStatus sets a movie's download status within a transaction.
func (t *Tx) UpdateMovieStatus(id int64, status ItemStatus) error {
	return updateItemStatus(t.tx, "movies", id, status)
}

// UpdateMovieQuality saves the movie's quality override. A nil override
// falls back to the library settings.
func (s *Store) UpdateMovieQuality(id int64, q *QualitySettings) error {
	quality, err := encodeQuality(q)
	if err != nil {
		return err
	}
	result, err := s.db.Exec(`UPDATE movies SET quality_override = ? WHERE id = ?`, quality, id)
	if err != nil {
		return fmt.Errorf("update movie %d: %w", id, mapSQLiteError(err))
	}
	return requireRow(result, "update movie", id)
}
