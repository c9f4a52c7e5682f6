package torrent

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vmunix/mediarr/internal/library"
)

const torrentColumns = `id, user_id, info_hash, name, save_path, state, progress, size_bytes, library_id,
	episode_id, movie_id, track_id, audiobook_id, post_process_status, post_process_error,
	processed_at, added_at, updated_at`

// Store persists torrent records.
type Store struct {
	db *sql.DB
}

// NewStore creates a torrent store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTorrent(row rowScanner) (*Torrent, error) {
	t := &Torrent{}
	var status, ppErr sql.NullString
	if err := row.Scan(&t.ID, &t.UserID, &t.InfoHash, &t.Name, &t.SavePath, &t.State, &t.Progress, &t.SizeBytes,
		&t.LibraryID, &t.Link.EpisodeID, &t.Link.MovieID, &t.Link.TrackID, &t.Link.AudiobookID,
		&status, &ppErr, &t.ProcessedAt, &t.AddedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.PostProcessStatus = Status(status.String)
	t.PostProcessError = ppErr.String
	return t, nil
}

func statusValue(s Status) any {
	if s == StatusNone {
		return nil
	}
	return string(s)
}

// Add records a new torrent. Adding an info hash that is already tracked
// returns the existing record's ID instead of creating a duplicate.
func (s *Store) Add(t *Torrent) error {
	t.InfoHash = strings.ToLower(t.InfoHash)
	if existing, err := s.GetByHash(t.InfoHash); err == nil {
		*t = *existing
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	if t.UserID == 0 {
		t.UserID = 1
	}
	if t.State == "" {
		t.State = "downloading"
	}
	now := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO torrents (user_id, info_hash, name, save_path, state, progress, size_bytes, library_id,
			episode_id, movie_id, track_id, audiobook_id, post_process_status, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.InfoHash, t.Name, t.SavePath, t.State, t.Progress, t.SizeBytes, t.LibraryID,
		t.Link.EpisodeID, t.Link.MovieID, t.Link.TrackID, t.Link.AudiobookID,
		statusValue(t.PostProcessStatus), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert torrent: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	t.ID = id
	t.AddedAt = now
	t.UpdatedAt = now
	return nil
}

// Get retrieves a torrent by ID.
// Returns ErrNotFound if the torrent does not exist.
func (s *Store) Get(id int64) (*Torrent, error) {
	t, err := scanTorrent(s.db.QueryRow(`SELECT `+torrentColumns+` FROM torrents WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get torrent %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get torrent %d: %w", id, err)
	}
	return t, nil
}

// GetByHash retrieves a torrent by info hash.
// Returns ErrNotFound if no torrent has that hash.
func (s *Store) GetByHash(hash string) (*Torrent, error) {
	hash = strings.ToLower(hash)
	t, err := scanTorrent(s.db.QueryRow(`SELECT `+torrentColumns+` FROM torrents WHERE info_hash = ?`, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get torrent %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get torrent %s: %w", hash, err)
	}
	return t, nil
}

// List returns torrents matching the filter, oldest first.
func (s *Store) List(f Filter) ([]*Torrent, error) {
	var conditions []string
	var args []any

	if f.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *f.UserID)
	}
	if len(f.Statuses) > 0 {
		var or []string
		for _, st := range f.Statuses {
			if st == StatusNone {
				or = append(or, "post_process_status IS NULL")
				continue
			}
			or = append(or, "post_process_status = ?")
			args = append(args, string(st))
		}
		conditions = append(conditions, "("+strings.Join(or, " OR ")+")")
	}
	if f.Complete {
		conditions = append(conditions, "progress >= 1")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	rows, err := s.db.Query(`SELECT `+torrentColumns+` FROM torrents `+whereClause+` ORDER BY added_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list torrents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Torrent
	for rows.Next() {
		t, err := scanTorrent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan torrent: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate torrents: %w", err)
	}
	return results, nil
}

// UpdateProgress stores the client's view of a torrent.
func (s *Store) UpdateProgress(id int64, state string, progress float64, size int64, savePath string) error {
	result, err := s.db.Exec(`
		UPDATE torrents SET state = ?, progress = ?, size_bytes = ?, save_path = ?, updated_at = ?
		WHERE id = ?`,
		state, progress, size, savePath, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update torrent %d: %w", id, err)
	}
	return requireRow(result, "update torrent", id)
}

// SetLink points the torrent at the catalog item it was matched to.
func (s *Store) SetLink(id int64, libraryID int64, link library.Link) error {
	result, err := s.db.Exec(`
		UPDATE torrents SET library_id = ?, episode_id = ?, movie_id = ?, track_id = ?, audiobook_id = ?, updated_at = ?
		WHERE id = ?`,
		libraryID, link.EpisodeID, link.MovieID, link.TrackID, link.AudiobookID, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("link torrent %d: %w", id, err)
	}
	return requireRow(result, "link torrent", id)
}

// Transition moves the torrent from one post-process status to another.
// The update only applies while the stored status still equals from, so two
// callers racing on the same torrent cannot both start processing it.
func (s *Store) Transition(id int64, from, to Status) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("torrent %d %q -> %q: %w", id, from, to, ErrInvalidTransition)
	}
	return s.transition(id, from, to, "", false)
}

// Finish records the final status of a processing run.
func (s *Store) Finish(id int64, to Status, errMsg string) error {
	if !StatusProcessing.CanTransitionTo(to) {
		return fmt.Errorf("torrent %d %q -> %q: %w", id, StatusProcessing, to, ErrInvalidTransition)
	}
	return s.transition(id, StatusProcessing, to, errMsg, true)
}

// ResetInterrupted moves torrents left in processing by a run that never
// finished back to pending so the sweep retries them. It must only be called
// before any processor starts.
func (s *Store) ResetInterrupted() (int64, error) {
	result, err := s.db.Exec(`
		UPDATE torrents SET post_process_status = ?, post_process_error = NULL, updated_at = ?
		WHERE post_process_status = ?`,
		string(StatusPending), time.Now(), string(StatusProcessing),
	)
	if err != nil {
		return 0, fmt.Errorf("reset interrupted torrents: %w", err)
	}
	return result.RowsAffected()
}

func (s *Store) transition(id int64, from, to Status, errMsg string, processed bool) error {
	now := time.Now()
	query := `UPDATE torrents SET post_process_status = ?, post_process_error = ?, updated_at = ?`
	args := []any{string(to), nullString(errMsg), now}
	if processed {
		query += `, processed_at = ?`
		args = append(args, now)
	}
	query += ` WHERE id = ? AND post_process_status IS ?`
	args = append(args, id, statusValue(from))

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("transition torrent %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}
	current, err := s.Get(id)
	if err != nil {
		return err
	}
	return fmt.Errorf("torrent %d is %q, not %q: %w", id, current.PostProcessStatus, from, ErrInvalidTransition)
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

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
