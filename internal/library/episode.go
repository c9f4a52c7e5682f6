package library

import (
	"fmt"
	"strings"
)

const episodeColumns = `id, show_id, season, episode, title, status, air_date`

func scanEpisode(row rowScanner) (*Episode, error) {
	e := &Episode{}
	if err := row.Scan(&e.ID, &e.ShowID, &e.Season, &e.Episode, &e.Title, &e.Status, &e.AirDate); err != nil {
		return nil, err
	}
	return e, nil
}

func addEpisode(q querier, e *Episode) error {
	if e.Status == "" {
		e.Status = EpisodeMissing
	}
	result, err := q.Exec(`
		INSERT INTO episodes (show_id, season, episode, title, status, air_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ShowID, e.Season, e.Episode, e.Title, e.Status, e.AirDate,
	)
	if err != nil {
		return fmt.Errorf("insert episode: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	e.ID = id
	return nil
}

// AddEpisode inserts a new episode into the database.
// Sets ID on the struct.
func (s *Store) AddEpisode(e *Episode) error { return addEpisode(s.db, e) }

// AddEpisode inserts a new episode within a transaction.
func (t *Tx) AddEpisode(e *Episode) error { return addEpisode(t.tx, e) }

func getEpisode(q querier, id int64) (*Episode, error) {
	e, err := scanEpisode(q.QueryRow(`SELECT `+episodeColumns+` FROM episodes WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get episode %d: %w", id, mapSQLiteError(err))
	}
	return e, nil
}

// GetEpisode retrieves an episode by ID.
// Returns ErrNotFound if the episode does not exist.
func (s *Store) GetEpisode(id int64) (*Episode, error) { return getEpisode(s.db, id) }

// GetEpisode retrieves an episode by ID within a transaction.
func (t *Tx) GetEpisode(id int64) (*Episode, error) { return getEpisode(t.tx, id) }

// FindEpisode looks up an episode by its (season, episode) tuple.
// Returns ErrNotFound if the show has no such episode.
func (s *Store) FindEpisode(showID int64, season, episode int) (*Episode, error) {
	e, err := scanEpisode(s.db.QueryRow(`
		SELECT `+episodeColumns+` FROM episodes
		WHERE show_id = ? AND season = ? AND episode = ?`, showID, season, episode))
	if err != nil {
		return nil, fmt.Errorf("find episode S%02dE%02d: %w", season, episode, mapSQLiteError(err))
	}
	return e, nil
}

func listEpisodes(q querier, f EpisodeFilter) ([]*Episode, int, error) {
	var conditions []string
	var args []any

	if f.ShowID != nil {
		conditions = append(conditions, "show_id = ?")
		args = append(args, *f.ShowID)
	}
	if f.Season != nil {
		conditions = append(conditions, "season = ?")
		args = append(args, *f.Season)
	}
	if f.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *f.Status)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := q.QueryRow("SELECT COUNT(*) FROM episodes "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count episodes: %w", err)
	}

	query := "SELECT " + episodeColumns + " FROM episodes " + whereClause + " ORDER BY season, episode"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list episodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan episode: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate episodes: %w", err)
	}

	return results, total, nil
}

// ListEpisodes returns episodes matching the filter with pagination.
// Returns (results, totalCount, error).
func (s *Store) ListEpisodes(f EpisodeFilter) ([]*Episode, int, error) { return listEpisodes(s.db, f) }

// ListEpisodes returns episodes matching the filter within a transaction.
func (t *Tx) ListEpisodes(f EpisodeFilter) ([]*Episode, int, error) { return listEpisodes(t.tx, f) }

func updateEpisodeStatus(q querier, id int64, status EpisodeStatus) error {
	result, err := q.Exec(`UPDATE episodes SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update episode %d: %w", id, mapSQLiteError(err))
	}
	return requireRow(result, "update episode", id)
}

// UpdateEpisodeStatus sets an episode's status.
// Returns ErrNotFound if the episode does not exist.
func (s *Store) UpdateEpisodeStatus(id int64, status EpisodeStatus) error {
	return updateEpisodeStatus(s.db, id, status)
}

// UpdateEpisodeStatus sets an episode's status within a transaction.
func (t *Tx) UpdateEpisodeStatus(id int64, status EpisodeStatus) error {
	return updateEpisodeStatus(t.tx, id, status)
}

// FindOrCreateEpisode finds an existing episode or creates a placeholder.
// Returns (episode, created, error) where created is true if a new episode was created.
func (s *Store) FindOrCreateEpisode(showID int64, season, episode int) (*Episode, bool, error) {
	ep, err := s.FindEpisode(showID, season, episode)
	if err == nil {
		return ep, false, nil
	}
	if !isNotFound(err) {
		return nil, false, err
	}

	ep = &Episode{
		ShowID:  showID,
		Season:  season,
		Episode: episode,
		Status:  EpisodeMissing,
	}
	if err := s.AddEpisode(ep); err != nil {
		// Another scan task created it between the lookup and the insert
		if isDuplicate(err) {
			found, ferr := s.FindEpisode(showID, season, episode)
			if ferr != nil {
				return nil, false, ferr
			}
			return found, false, nil
		}
		return nil, false, fmt.Errorf("add episode: %w", err)
	}

	return ep, true, nil
}
