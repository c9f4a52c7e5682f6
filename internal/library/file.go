package library

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const mediaFileColumns = `id, library_id, path, relative_path, original_name, size_bytes,
	container, video_codec, audio_codec, width, height, resolution, hdr_type, duration_seconds, bitrate,
	source, release_group, episode_id, movie_id, track_id, audiobook_id, match_type,
	organize_status, organize_error, original_path, quality_status, tags, analyzed_at, added_at`

func scanMediaFile(row rowScanner) (*MediaFile, error) {
	f := &MediaFile{}
	var (
		container, videoCodec, audioCodec, resolution, hdr sql.NullString
		organizeError, originalPath, tags                  sql.NullString
		width, height, bitrate                             sql.NullInt64
		duration                                           sql.NullFloat64
	)
	err := row.Scan(&f.ID, &f.LibraryID, &f.Path, &f.RelativePath, &f.OriginalName, &f.SizeBytes,
		&container, &videoCodec, &audioCodec, &width, &height, &resolution, &hdr, &duration, &bitrate,
		&f.Source, &f.ReleaseGroup, &f.Link.EpisodeID, &f.Link.MovieID, &f.Link.TrackID, &f.Link.AudiobookID,
		&f.MatchType, &f.OrganizeStatus, &organizeError, &originalPath, &f.QualityStatus, &tags,
		&f.AnalyzedAt, &f.AddedAt)
	if err != nil {
		return nil, err
	}
	f.Container = container.String
	f.VideoCodec = videoCodec.String
	f.AudioCodec = audioCodec.String
	f.Width = int(width.Int64)
	f.Height = int(height.Int64)
	f.Resolution = resolution.String
	f.HDRType = hdr.String
	f.Duration = duration.Float64
	f.Bitrate = bitrate.Int64
	f.OrganizeError = organizeError.String
	f.OriginalPath = originalPath.String
	if tags.Valid && tags.String != "" {
		f.Tags = &EmbeddedTags{}
		if err := json.Unmarshal([]byte(tags.String), f.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of file %d: %w", f.ID, err)
		}
	}
	return f, nil
}

func createMediaFile(q querier, f *MediaFile) error {
	if f.MatchType == "" {
		f.MatchType = MatchNone
		if !f.Link.IsZero() {
			f.MatchType = MatchAutomatic
		}
	}
	if f.OrganizeStatus == "" {
		f.OrganizeStatus = OrganizePending
	}
	if f.QualityStatus == "" {
		f.QualityStatus = QualityUnknown
	}
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO media_files (library_id, path, relative_path, original_name, size_bytes, source, release_group,
			episode_id, movie_id, track_id, audiobook_id, match_type, organize_status, quality_status, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.LibraryID, f.Path, f.RelativePath, f.OriginalName, f.SizeBytes, f.Source, f.ReleaseGroup,
		f.Link.EpisodeID, f.Link.MovieID, f.Link.TrackID, f.Link.AudiobookID,
		f.MatchType, f.OrganizeStatus, f.QualityStatus, now,
	)
	if err != nil {
		return fmt.Errorf("insert media file %s: %w", f.Path, mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	f.ID = id
	f.AddedAt = now
	return nil
}

// CreateMediaFile inserts a new media file. Sets ID and AddedAt on the struct.
// Returns ErrDuplicate if a file with the same path exists.
func (s *Store) CreateMediaFile(f *MediaFile) error { return createMediaFile(s.db, f) }

// CreateMediaFile inserts a new media file within a transaction.
func (t *Tx) CreateMediaFile(f *MediaFile) error { return createMediaFile(t.tx, f) }

func getMediaFile(q querier, id int64) (*MediaFile, error) {
	f, err := scanMediaFile(q.QueryRow(`SELECT `+mediaFileColumns+` FROM media_files WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get media file %d: %w", id, mapSQLiteError(err))
	}
	return f, nil
}

// GetMediaFile retrieves a media file by ID.
// Returns ErrNotFound if the file does not exist.
func (s *Store) GetMediaFile(id int64) (*MediaFile, error) { return getMediaFile(s.db, id) }

// GetMediaFile retrieves a media file by ID within a transaction.
func (t *Tx) GetMediaFile(id int64) (*MediaFile, error) { return getMediaFile(t.tx, id) }

// GetMediaFileByPath retrieves a media file by its absolute path.
// Returns ErrNotFound if no file is recorded at that path.
func (s *Store) GetMediaFileByPath(path string) (*MediaFile, error) {
	f, err := scanMediaFile(s.db.QueryRow(`SELECT `+mediaFileColumns+` FROM media_files WHERE path = ?`, path))
	if err != nil {
		return nil, fmt.Errorf("get media file %s: %w", path, mapSQLiteError(err))
	}
	return f, nil
}

// ListMediaFiles returns files matching the filter and the total count
// before pagination.
func (s *Store) ListMediaFiles(f MediaFileFilter) ([]*MediaFile, int, error) {
	var conditions []string
	var args []any

	if f.LibraryID != nil {
		conditions = append(conditions, "library_id = ?")
		args = append(args, *f.LibraryID)
	}
	if f.EpisodeID != nil {
		conditions = append(conditions, "episode_id = ?")
		args = append(args, *f.EpisodeID)
	}
	if f.MovieID != nil {
		conditions = append(conditions, "movie_id = ?")
		args = append(args, *f.MovieID)
	}
	if f.TrackID != nil {
		conditions = append(conditions, "track_id = ?")
		args = append(args, *f.TrackID)
	}
	if f.AudiobookID != nil {
		conditions = append(conditions, "audiobook_id = ?")
		args = append(args, *f.AudiobookID)
	}
	if f.Unlinked {
		conditions = append(conditions, "episode_id IS NULL AND movie_id IS NULL AND track_id IS NULL AND audiobook_id IS NULL")
	}
	if f.Unanalyzed {
		conditions = append(conditions, "analyzed_at IS NULL")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM media_files"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count media files: %w", err)
	}

	query := "SELECT " + mediaFileColumns + " FROM media_files" + whereClause + " ORDER BY id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list media files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*MediaFile
	for rows.Next() {
		mf, err := scanMediaFile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan media file: %w", err)
		}
		results = append(results, mf)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate media files: %w", err)
	}
	return results, total, nil
}

func setAutomaticLink(q querier, id int64, link Link) error {
	result, err := q.Exec(`
		UPDATE media_files SET episode_id = ?, movie_id = ?, track_id = ?, audiobook_id = ?, match_type = ?
		WHERE id = ? AND match_type != 'manual'`,
		link.EpisodeID, link.MovieID, link.TrackID, link.AudiobookID, MatchAutomatic, id,
	)
	if err != nil {
		return fmt.Errorf("link media file %d: %w", id, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}
	// Nothing updated: either the row is gone or a manual match protects it.
	var matchType MatchType
	if err := q.QueryRow(`SELECT match_type FROM media_files WHERE id = ?`, id).Scan(&matchType); err != nil {
		return fmt.Errorf("link media file %d: %w", id, mapSQLiteError(err))
	}
	return fmt.Errorf("link media file %d: %w", id, ErrManualMatch)
}

// SetAutomaticLink links a file to a catalog item as an automatic match.
// Returns ErrManualMatch if the file was matched by hand; the row is left untouched.
func (s *Store) SetAutomaticLink(id int64, link Link) error { return setAutomaticLink(s.db, id, link) }

// SetAutomaticLink links a file to a catalog item within a transaction.
func (t *Tx) SetAutomaticLink(id int64, link Link) error { return setAutomaticLink(t.tx, id, link) }

// SetManualLink links a file to a catalog item and pins the match so
// automatic matching never replaces it. A zero link clears the pin.
func (s *Store) SetManualLink(id int64, link Link) error {
	matchType := MatchManual
	if link.IsZero() {
		matchType = MatchNone
	}
	result, err := s.db.Exec(`
		UPDATE media_files SET episode_id = ?, movie_id = ?, track_id = ?, audiobook_id = ?, match_type = ?
		WHERE id = ?`,
		link.EpisodeID, link.MovieID, link.TrackID, link.AudiobookID, matchType, id,
	)
	if err != nil {
		return fmt.Errorf("link media file %d: %w", id, mapSQLiteError(err))
	}
	return requireRow(result, "link media file", id)
}

// SaveAnalysis stores probe results for a file and replaces its streams and
// chapters in one transaction.
func (s *Store) SaveAnalysis(id int64, a *Analysis) error {
	return s.withTx(func(t *Tx) error {
		result, err := t.tx.Exec(`
			UPDATE media_files SET container = ?, video_codec = ?, audio_codec = ?, width = ?, height = ?,
				resolution = ?, hdr_type = ?, duration_seconds = ?, bitrate = ?, analyzed_at = ?
			WHERE id = ?`,
			nullString(a.Container), nullString(a.VideoCodec), nullString(a.AudioCodec),
			nullInt(a.Width), nullInt(a.Height), nullString(a.Resolution), nullString(a.HDRType),
			a.Duration, a.Bitrate, time.Now(), id,
		)
		if err != nil {
			return fmt.Errorf("update media file %d: %w", id, mapSQLiteError(err))
		}
		if err := requireRow(result, "update media file", id); err != nil {
			return err
		}

		if _, err := t.tx.Exec(`DELETE FROM media_streams WHERE media_file_id = ?`, id); err != nil {
			return fmt.Errorf("clear streams of file %d: %w", id, err)
		}
		for _, st := range a.Streams {
			if _, err := t.tx.Exec(`
				INSERT INTO media_streams (media_file_id, kind, stream_index, codec, width, height, channels, language, hdr_type, is_default)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, st.Kind, st.Index, st.Codec, nullInt(st.Width), nullInt(st.Height), nullInt(st.Channels),
				st.Language, st.HDRType, st.IsDefault,
			); err != nil {
				return fmt.Errorf("insert stream %d of file %d: %w", st.Index, id, mapSQLiteError(err))
			}
		}

		if _, err := t.tx.Exec(`DELETE FROM media_chapters WHERE media_file_id = ?`, id); err != nil {
			return fmt.Errorf("clear chapters of file %d: %w", id, err)
		}
		for _, ch := range a.Chapters {
			if _, err := t.tx.Exec(`
				INSERT INTO media_chapters (media_file_id, chapter_index, title, start_seconds, end_seconds)
				VALUES (?, ?, ?, ?, ?)`,
				id, ch.Index, ch.Title, ch.Start, ch.End,
			); err != nil {
				return fmt.Errorf("insert chapter %d of file %d: %w", ch.Index, id, mapSQLiteError(err))
			}
		}
		return nil
	})
}

// ListStreams returns a file's probed streams ordered by index.
func (s *Store) ListStreams(fileID int64) ([]Stream, error) {
	rows, err := s.db.Query(`
		SELECT kind, stream_index, codec, width, height, channels, language, hdr_type, is_default
		FROM media_streams WHERE media_file_id = ? ORDER BY stream_index`, fileID)
	if err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []Stream
	for rows.Next() {
		var st Stream
		var width, height, channels sql.NullInt64
		if err := rows.Scan(&st.Kind, &st.Index, &st.Codec, &width, &height, &channels,
			&st.Language, &st.HDRType, &st.IsDefault); err != nil {
			return nil, fmt.Errorf("scan stream: %w", err)
		}
		st.Width = int(width.Int64)
		st.Height = int(height.Int64)
		st.Channels = int(channels.Int64)
		results = append(results, st)
	}
	return results, rows.Err()
}

// ListMediaChapters returns a file's chapter markers in order.
func (s *Store) ListMediaChapters(fileID int64) ([]Chapter, error) {
	rows, err := s.db.Query(`
		SELECT chapter_index, title, start_seconds, end_seconds
		FROM media_chapters WHERE media_file_id = ? ORDER BY chapter_index`, fileID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []Chapter
	for rows.Next() {
		var ch Chapter
		if err := rows.Scan(&ch.Index, &ch.Title, &ch.Start, &ch.End); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		results = append(results, ch)
	}
	return results, rows.Err()
}

// UpdateQualityStatus records the quality verdict for a file.
func (s *Store) UpdateQualityStatus(id int64, status QualityStatus) error {
	result, err := s.db.Exec(`UPDATE media_files SET quality_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update quality of file %d: %w", id, mapSQLiteError(err))
	}
	return requireRow(result, "update quality of file", id)
}

// SaveTags stores the file's embedded tags as JSON.
func (s *Store) SaveTags(id int64, tags *EmbeddedTags) error {
	raw, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	result, err := s.db.Exec(`UPDATE media_files SET tags = ? WHERE id = ?`, string(raw), id)
	if err != nil {
		return fmt.Errorf("update tags of file %d: %w", id, mapSQLiteError(err))
	}
	return requireRow(result, "update tags of file", id)
}

// MarkOrganized records a successful organize: the file now lives at path
// and originalPath remembers where it came from.
func (s *Store) MarkOrganized(id int64, path, relativePath, originalPath string) error {
	result, err := s.db.Exec(`
		UPDATE media_files SET path = ?, relative_path = ?, original_path = ?, organize_status = ?, organize_error = NULL
		WHERE id = ?`,
		path, relativePath, nullString(originalPath), OrganizeOrganized, id,
	)
	if err != nil {
		return fmt.Errorf("mark file %d organized: %w", id, mapSQLiteError(err))
	}
	return requireRow(result, "mark file organized", id)
}

// MarkOrganizeFailed records a conflicted or failed organize attempt.
func (s *Store) MarkOrganizeFailed(id int64, status OrganizeStatus, reason string) error {
	result, err := s.db.Exec(`UPDATE media_files SET organize_status = ?, organize_error = ? WHERE id = ?`,
		status, nullString(reason), id)
	if err != nil {
		return fmt.Errorf("mark file %d %s: %w", id, status, mapSQLiteError(err))
	}
	return requireRow(result, "mark file organize status", id)
}

// DeleteMediaFile removes a file together with its streams and chapters. The
// catalog item it was linked to goes back to missing/wanted when no other
// file still backs it.
func (s *Store) DeleteMediaFile(id int64) error {
	return s.withTx(func(t *Tx) error {
		f, err := getMediaFile(t.tx, id)
		if err != nil {
			return err
		}
		if _, err := t.tx.Exec(`DELETE FROM media_streams WHERE media_file_id = ?`, id); err != nil {
			return fmt.Errorf("delete streams of file %d: %w", id, err)
		}
		if _, err := t.tx.Exec(`DELETE FROM media_chapters WHERE media_file_id = ?`, id); err != nil {
			return fmt.Errorf("delete chapters of file %d: %w", id, err)
		}
		if _, err := t.tx.Exec(`UPDATE audiobook_chapters SET media_file_id = NULL WHERE media_file_id = ?`, id); err != nil {
			return fmt.Errorf("detach chapters of file %d: %w", id, err)
		}
		if _, err := t.tx.Exec(`DELETE FROM media_files WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete media file %d: %w", id, mapSQLiteError(err))
		}
		return resetOrphanedItem(t, f.Link)
	})
}

// resetOrphanedItem reverts a catalog item's status once its last file is gone.
func resetOrphanedItem(t *Tx, link Link) error {
	type target struct {
		id     *int64
		column string
		reset  func() error
	}
	targets := []target{
		{link.EpisodeID, "episode_id", func() error { return t.UpdateEpisodeStatus(*link.EpisodeID, EpisodeMissing) }},
		{link.MovieID, "movie_id", func() error { return t.UpdateMovieStatus(*link.MovieID, ItemWanted) }},
		{link.TrackID, "track_id", func() error { return t.UpdateTrackStatus(*link.TrackID, ItemWanted) }},
		{link.AudiobookID, "audiobook_id", func() error { return t.UpdateAudiobookStatus(*link.AudiobookID, ItemWanted) }},
	}
	for _, tg := range targets {
		if tg.id == nil {
			continue
		}
		var remaining int
		if err := t.tx.QueryRow(`SELECT COUNT(*) FROM media_files WHERE `+tg.column+` = ?`, *tg.id).Scan(&remaining); err != nil {
			return fmt.Errorf("count files for %s %d: %w", tg.column, *tg.id, err)
		}
		if remaining > 0 {
			continue
		}
		if err := tg.reset(); err != nil && !isNotFound(err) {
			return err
		}
	}
	return nil
}
