package library

// LibraryFilter specifies criteria for listing libraries.
type LibraryFilter struct {
	UserID   *int64
	Type     *Type
	AutoScan *bool
}

// EpisodeFilter specifies criteria for listing episodes.
type EpisodeFilter struct {
	ShowID *int64
	Season *int
	Status *EpisodeStatus
	Limit  int // 0 = no limit
	Offset int
}

// MediaFileFilter specifies criteria for listing media files.
type MediaFileFilter struct {
	LibraryID   *int64
	EpisodeID   *int64
	MovieID     *int64
	TrackID     *int64
	AudiobookID *int64
	Unlinked    bool // only files without any catalog link
	Unanalyzed  bool // only files never probed
	Limit       int
	Offset      int
}
