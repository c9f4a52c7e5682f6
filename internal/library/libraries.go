package library

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const libraryColumns = `id, user_id, name, path, type, auto_scan, organize_files, rename_style,
	naming_pattern, auto_add_discovered, quality, last_scanned_at, created_at`

func scanLibrary(row rowScanner) (*Library, error) {
	l := &Library{}
	var quality string
	if err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.Path, &l.Type, &l.AutoScan, &l.OrganizeFiles,
		&l.RenameStyle, &l.NamingPattern, &l.AutoAddDiscovered, &quality, &l.LastScannedAt, &l.CreatedAt); err != nil {
		return nil, err
	}
	if quality != "" {
		if err := json.Unmarshal([]byte(quality), &l.Quality); err != nil {
			return nil, fmt.Errorf("decode library %d quality: %w", l.ID, err)
		}
	}
	return l, nil
}

// AddLibrary inserts a new library. Sets ID and CreatedAt on the struct.
func (s *Store) AddLibrary(l *Library) error {
	if l.RenameStyle == "" {
		l.RenameStyle = RenameNone
	}
	if l.UserID == 0 {
		l.UserID = 1
	}
	quality, err := json.Marshal(l.Quality)
	if err != nil {
		return fmt.Errorf("encode library quality: %w", err)
	}
	now := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO libraries (user_id, name, path, type, auto_scan, organize_files, rename_style,
			naming_pattern, auto_add_discovered, quality, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.UserID, l.Name, l.Path, l.Type, l.AutoScan, l.OrganizeFiles, l.RenameStyle,
		l.NamingPattern, l.AutoAddDiscovered, string(quality), now,
	)
	if err != nil {
		return fmt.Errorf("insert library: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	l.ID = id
	l.CreatedAt = now
	return nil
}

// GetLibrary retrieves a library by ID.
// Returns ErrNotFound if the library does not exist.
func (s *Store) GetLibrary(id int64) (*Library, error) {
	l, err := scanLibrary(s.db.QueryRow(`SELECT `+libraryColumns+` FROM libraries WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get library %d: %w", id, mapSQLiteError(err))
	}
	return l, nil
}

// ListLibraries returns libraries matching the filter ordered by ID.
func (s *Store) ListLibraries(f LibraryFilter) ([]*Library, error) {
	var conditions []string
	var args []any

	if f.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.Type != nil {
		conditions = append(conditions, "type = ?")
		args = append(args, *f.Type)
	}
	if f.AutoScan != nil {
		conditions = append(conditions, "auto_scan = ?")
		args = append(args, *f.AutoScan)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	rows, err := s.db.Query(`SELECT `+libraryColumns+` FROM libraries `+whereClause+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Library
	for rows.Next() {
		l, err := scanLibrary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan library: %w", err)
		}
		results = append(results, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate libraries: %w", err)
	}
	return results, nil
}

// UpdateLibrary saves policy and quality changes.
func (s *Store) UpdateLibrary(l *Library) error {
	quality, err := json.Marshal(l.Quality)
	if err != nil {
		return fmt.Errorf("encode library quality: %w", err)
	}
	result, err := s.db.Exec(`
		UPDATE libraries SET name = ?, path = ?, auto_scan = ?, organize_files = ?, rename_style = ?,
			naming_pattern = ?, auto_add_discovered = ?, quality = ?
		WHERE id = ?`,
		l.Name, l.Path, l.AutoScan, l.OrganizeFiles, l.RenameStyle,
		l.NamingPattern, l.AutoAddDiscovered, string(quality), l.ID,
	)
	if err != nil {
		return fmt.Errorf("update library %d: %w", l.ID, mapSQLiteError(err))
	}
	return requireRow(result, "update library", l.ID)
}

// MarkLibraryScanned records the completion time of a scan.
func (s *Store) MarkLibraryScanned(id int64, at time.Time) error {
	result, err := s.db.Exec(`UPDATE libraries SET last_scanned_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("mark library %d scanned: %w", id, err)
	}
	return requireRow(result, "mark library scanned", id)
}

func requireRow(result sql.Result, op string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	return nil
}
