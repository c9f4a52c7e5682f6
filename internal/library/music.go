package library

import (
	"database/sql"
	"fmt"
)

const trackColumns = `id, library_id, title, artist, album, track_number, status`

func scanTrack(row rowScanner) (*Track, error) {
	tr := &Track{}
	var number sql.NullInt64
	if err := row.Scan(&tr.ID, &tr.LibraryID, &tr.Title, &tr.Artist, &tr.Album, &number, &tr.Status); err != nil {
		return nil, err
	}
	tr.TrackNumber = int(number.Int64)
	return tr, nil
}

// AddTrack inserts a new track. Sets ID on the struct.
func (s *Store) AddTrack(tr *Track) error {
	if tr.Status == "" {
		tr.Status = ItemWanted
	}
	result, err := s.db.Exec(`
		INSERT INTO tracks (library_id, title, artist, album, track_number, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tr.LibraryID, tr.Title, tr.Artist, tr.Album, nullInt(tr.TrackNumber), tr.Status,
	)
	if err != nil {
		return fmt.Errorf("insert track: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	tr.ID = id
	return nil
}

// GetTrack retrieves a track by ID.
func (s *Store) GetTrack(id int64) (*Track, error) {
	tr, err := scanTrack(s.db.QueryRow(`SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get track %d: %w", id, mapSQLiteError(err))
	}
	return tr, nil
}

// ListTracks returns every track in a library.
func (s *Store) ListTracks(libraryID int64) ([]*Track, error) {
	rows, err := s.db.Query(`SELECT `+trackColumns+` FROM tracks WHERE library_id = ? ORDER BY artist, album, track_number, id`, libraryID)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Track
	for rows.Next() {
		tr, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		results = append(results, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}
	return results, nil
}

// UpdateTrackStatus sets a track's download status.
func (s *Store) UpdateTrackStatus(id int64, status ItemStatus) error {
	return updateItemStatus(s.db, "tracks", id, status)
}

// UpdateTrackStatus sets a track's download status within a transaction.
func (t *Tx) UpdateTrackStatus(id int64, status ItemStatus) error {
	return updateItemStatus(t.tx, "tracks", id, status)
}
