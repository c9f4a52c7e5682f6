package events

// Event types.
const (
	EventScanProgress     = "scan.progress"
	EventMediaFileUpdated = "media_file.updated"
	EventTorrentProgress  = "torrent.progress"
	EventTorrentProcessed = "torrent.processed"
)

// Entity types.
const (
	EntityLibrary   = "library"
	EntityMediaFile = "media_file"
	EntityTorrent   = "torrent"
)

// ScanProgress is a snapshot of a running library scan.
type ScanProgress struct {
	BaseEvent
	LibraryID      int64  `json:"library_id"`
	LibraryName    string `json:"library_name"`
	TotalFiles     int64  `json:"total_files"`
	ScannedFiles   int64  `json:"scanned_files"`
	NewFiles       int64  `json:"new_files"`
	RemovedFiles   int64  `json:"removed_files"`
	ShowsAdded     int64  `json:"shows_added"`
	EpisodesLinked int64  `json:"episodes_linked"`
	Errors         int64  `json:"errors"`
	CurrentFile    string `json:"current_file,omitempty"`
	IsComplete     bool   `json:"is_complete"`
}

// Durable keeps only the final snapshot of a scan.
func (e *ScanProgress) Durable() bool { return e.IsComplete }

// MediaFileUpdated is emitted after a file was analyzed.
type MediaFileUpdated struct {
	BaseEvent
	MediaFileID   int64  `json:"media_file_id"`
	LibraryID     int64  `json:"library_id"`
	Path          string `json:"path"`
	QualityStatus string `json:"quality_status"`
}

// TorrentProgress reports download progress synced from the torrent client.
type TorrentProgress struct {
	BaseEvent
	TorrentID int64   `json:"torrent_id"`
	InfoHash  string  `json:"info_hash"`
	Name      string  `json:"name"`
	State     string  `json:"state"`
	Progress  float64 `json:"progress"`
}

// TorrentProcessed is emitted when post-processing of a torrent finishes.
type TorrentProcessed struct {
	BaseEvent
	TorrentID      int64    `json:"torrent_id"`
	Name           string   `json:"name"`
	Status         string   `json:"status"`
	Matched        bool     `json:"matched"`
	Organized      bool     `json:"organized"`
	FilesProcessed int      `json:"files_processed"`
	FilesFailed    int      `json:"files_failed"`
	Messages       []string `json:"messages,omitempty"`
}

// Durable always records processed torrents.
func (e *TorrentProcessed) Durable() bool { return true }
