// Package torrent tracks torrents from the download client and
// post-processes completed ones into the library.
package torrent

import (
	"errors"
	"time"

	"github.com/vmunix/mediarr/internal/library"
)

var (
	// ErrNotFound is returned when a torrent record does not exist.
	ErrNotFound = errors.New("torrent not found")

	// ErrInvalidTransition is returned when a post-process status change is
	// not allowed from the torrent's current status.
	ErrInvalidTransition = errors.New("invalid post-process transition")
)

// Status is the post-processing state of a torrent. The zero value means
// the torrent has never been processed.
type Status string

const (
	StatusNone       Status = ""
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusMatched    Status = "matched"
	StatusUnmatched  Status = "unmatched"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Torrent is a download tracked by the engine.
type Torrent struct {
	ID                int64
	UserID            int64
	InfoHash          string
	Name              string
	SavePath          string
	State             string
	Progress          float64 // 0-1
	SizeBytes         int64
	LibraryID         *int64
	Link              library.Link
	PostProcessStatus Status
	PostProcessError  string
	ProcessedAt       *time.Time
	AddedAt           time.Time
	UpdatedAt         time.Time
}

// IsComplete reports whether the download has finished.
func (t *Torrent) IsComplete() bool {
	return t.Progress >= 1
}

// Filter specifies criteria for listing torrents.
type Filter struct {
	UserID   *int64
	Statuses []Status // StatusNone matches unprocessed torrents
	Complete bool     // only fully downloaded torrents
}

// Result is the outcome of post-processing one torrent.
type Result struct {
	Success        bool
	Matched        bool
	Organized      bool
	FilesProcessed int
	FilesFailed    int
	Messages       []string
}

func (r *Result) addf(msg string) {
	r.Messages = append(r.Messages, msg)
}
