package library

import (
	"fmt"
)

const audiobookColumns = `id, library_id, title, author, status`

func scanAudiobook(row rowScanner) (*Audiobook, error) {
	b := &Audiobook{}
	if err := row.Scan(&b.ID, &b.LibraryID, &b.Title, &b.Author, &b.Status); err != nil {
		return nil, err
	}
	return b, nil
}

// AddAudiobook inserts a new audiobook. Sets ID on the struct.
func (s *Store) AddAudiobook(b *Audiobook) error {
	if b.Status == "" {
		b.Status = ItemWanted
	}
	result, err := s.db.Exec(`
		INSERT INTO audiobooks (library_id, title, author, status) VALUES (?, ?, ?, ?)`,
		b.LibraryID, b.Title, b.Author, b.Status,
	)
	if err != nil {
		return fmt.Errorf("insert audiobook: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	b.ID = id
	return nil
}

// GetAudiobook retrieves an audiobook by ID.
func (s *Store) GetAudiobook(id int64) (*Audiobook, error) {
	b, err := scanAudiobook(s.db.QueryRow(`SELECT `+audiobookColumns+` FROM audiobooks WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get audiobook %d: %w", id, mapSQLiteError(err))
	}
	return b, nil
}

// ListAudiobooks returns every audiobook in a library.
func (s *Store) ListAudiobooks(libraryID int64) ([]*Audiobook, error) {
	rows, err := s.db.Query(`SELECT `+audiobookColumns+` FROM audiobooks WHERE library_id = ? ORDER BY title, id`, libraryID)
	if err != nil {
		return nil, fmt.Errorf("list audiobooks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Audiobook
	for rows.Next() {
		b, err := scanAudiobook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audiobook: %w", err)
		}
		results = append(results, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audiobooks: %w", err)
	}
	return results, nil
}

// UpdateAudiobookStatus sets an audiobook's download status.
func (s *Store) UpdateAudiobookStatus(id int64, status ItemStatus) error {
	return updateItemStatus(s.db, "audiobooks", id, status)
}

// UpdateAudiobookStatus sets an audiobook's download status within a transaction.
func (t *Tx) UpdateAudiobookStatus(id int64, status ItemStatus) error {
	return updateItemStatus(t.tx, "audiobooks", id, status)
}

// SetChapter records (or replaces) the file backing a chapter.
func (s *Store) SetChapter(c *AudiobookChapter) error {
	err := s.db.QueryRow(`
		INSERT INTO audiobook_chapters (audiobook_id, number, title, media_file_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(audiobook_id, number) DO UPDATE SET title = excluded.title, media_file_id = excluded.media_file_id
		RETURNING id`,
		c.AudiobookID, c.Number, c.Title, c.MediaFileID,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("set chapter %d of audiobook %d: %w", c.Number, c.AudiobookID, mapSQLiteError(err))
	}
	return nil
}

// ListChapters returns an audiobook's chapters in order.
func (s *Store) ListChapters(audiobookID int64) ([]*AudiobookChapter, error) {
	rows, err := s.db.Query(`
		SELECT id, audiobook_id, number, title, media_file_id
		FROM audiobook_chapters WHERE audiobook_id = ? ORDER BY number`, audiobookID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*AudiobookChapter
	for rows.Next() {
		c := &AudiobookChapter{}
		if err := rows.Scan(&c.ID, &c.AudiobookID, &c.Number, &c.Title, &c.MediaFileID); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}
