package library

import (
	"database/sql"
	"fmt"
	"time"
)

const showColumns = `id, library_id, name, year, provider, provider_id, quality_override,
	organize_files_override, rename_style_override, added_at`

func scanShow(row rowScanner) (*TvShow, error) {
	sh := &TvShow{}
	var year sql.NullInt64
	var quality sql.NullString
	if err := row.Scan(&sh.ID, &sh.LibraryID, &sh.Name, &year, &sh.Provider, &sh.ProviderID, &quality,
		&sh.OrganizeFilesOverride, &sh.RenameStyleOverride, &sh.AddedAt); err != nil {
		return nil, err
	}
	sh.Year = int(year.Int64)
	q, err := decodeQuality(quality)
	if err != nil {
		return nil, err
	}
	sh.QualityOverride = q
	return sh, nil
}

// AddShow inserts a new show. Sets ID and AddedAt on the struct.
// Returns ErrDuplicate if the library already has a show with the same provider id.
func (s *Store) AddShow(sh *TvShow) error {
	if sh.Provider == "" {
		sh.Provider = "tmdb"
	}
	quality, err := encodeQuality(sh.QualityOverride)
	if err != nil {
		return err
	}
	now := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO tv_shows (library_id, name, year, provider, provider_id, quality_override,
			organize_files_override, rename_style_override, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sh.LibraryID, sh.Name, nullInt(sh.Year), sh.Provider, sh.ProviderID, quality,
		sh.OrganizeFilesOverride, sh.RenameStyleOverride, now,
	)
	if err != nil {
		return fmt.Errorf("insert show: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	sh.ID = id
	sh.AddedAt = now
	return nil
}

// GetShow retrieves a show by ID.
// Returns ErrNotFound if the show does not exist.
func (s *Store) GetShow(id int64) (*TvShow, error) {
	sh, err := scanShow(s.db.QueryRow(`SELECT `+showColumns+` FROM tv_shows WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get show %d: %w", id, mapSQLiteError(err))
	}
	return sh, nil
}

// GetShowByProvider finds a show in a library by its metadata provider id.
// Returns ErrNotFound if the library has no such show.
func (s *Store) GetShowByProvider(libraryID int64, provider, providerID string) (*TvShow, error) {
	sh, err := scanShow(s.db.QueryRow(`
		SELECT `+showColumns+` FROM tv_shows
		WHERE library_id = ? AND provider = ? AND provider_id = ?`,
		libraryID, provider, providerID))
	if err != nil {
		return nil, fmt.Errorf("get show %s:%s: %w", provider, providerID, mapSQLiteError(err))
	}
	return sh, nil
}

// ListShows returns every show in a library ordered by name.
func (s *Store) ListShows(libraryID int64) ([]*TvShow, error) {
	rows, err := s.db.Query(`SELECT `+showColumns+` FROM tv_shows WHERE library_id = ? ORDER BY name, id`, libraryID)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*TvShow
	for rows.Next() {
		sh, err := scanShow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan show: %w", err)
		}
		results = append(results, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shows: %w", err)
	}
	return results, nil
}

// UpdateShowOverrides saves the per-show quality and organize overrides.
func (s *Store) UpdateShowOverrides(sh *TvShow) error {
	quality, err := encodeQuality(sh.QualityOverride)
	if err != nil {
		return err
	}
	result, err := s.db.Exec(`
		UPDATE tv_shows SET quality_override = ?, organize_files_override = ?, rename_style_override = ?
		WHERE id = ?`,
		quality, sh.OrganizeFilesOverride, sh.RenameStyleOverride, sh.ID,
	)
	if err != nil {
		return fmt.Errorf("update show %d: %w", sh.ID, mapSQLiteError(err))
	}
	return requireRow(result, "update show", sh.ID)
}
