// Package library manages the catalog (shows, episodes, movies, tracks,
// audiobooks) and the media files linked to it.
package library

import (
	"time"
)

// Type is the kind of content a library holds.
type Type string

const (
	TypeMovies     Type = "movies"
	TypeTV         Type = "tv"
	TypeMusic      Type = "music"
	TypeAudiobooks Type = "audiobooks"
)

// IsVideo reports whether the library holds video content.
func (t Type) IsVideo() bool { return t == TypeMovies || t == TypeTV }

// RenameStyle controls how organized files are named.
type RenameStyle string

const (
	RenameNone         RenameStyle = "none"
	RenameClean        RenameStyle = "clean"
	RenamePreserveInfo RenameStyle = "preserve_info"
)

// QualitySettings holds allow-lists for technical quality.
// A nil list is unset (falls back to the library); an empty list accepts anything.
type QualitySettings struct {
	AllowedResolutions    []string `json:"allowed_resolutions"`
	AllowedVideoCodecs    []string `json:"allowed_video_codecs"`
	AllowedAudioCodecs    []string `json:"allowed_audio_codecs"`
	AllowedHDRTypes       []string `json:"allowed_hdr_types"`
	AllowedSources        []string `json:"allowed_sources"`
	ReleaseGroupWhitelist []string `json:"release_group_whitelist"`
	ReleaseGroupBlacklist []string `json:"release_group_blacklist"`
}

// Library is a root folder of one content type.
type Library struct {
	ID                int64
	UserID            int64
	Name              string
	Path              string
	Type              Type
	AutoScan          bool
	OrganizeFiles     bool
	RenameStyle       RenameStyle
	NamingPattern     *string
	AutoAddDiscovered bool
	Quality           QualitySettings
	LastScannedAt     *time.Time
	CreatedAt         time.Time
}

// EpisodeStatus tracks whether an episode has a file.
type EpisodeStatus string

const (
	EpisodeMissing     EpisodeStatus = "missing"
	EpisodeWanted      EpisodeStatus = "wanted"
	EpisodeDownloading EpisodeStatus = "downloading"
	EpisodeDownloaded  EpisodeStatus = "downloaded"
)

// ItemStatus tracks download state for movies, tracks and audiobooks.
type ItemStatus string

const (
	ItemWanted      ItemStatus = "wanted"
	ItemDownloading ItemStatus = "downloading"
	ItemDownloaded  ItemStatus = "downloaded"
)

// TvShow is a series in a TV library.
type TvShow struct {
	ID                    int64
	LibraryID             int64
	Name                  string
	Year                  int
	Provider              string
	ProviderID            *string
	QualityOverride       *QualitySettings
	OrganizeFilesOverride *bool
	RenameStyleOverride   *RenameStyle
	AddedAt               time.Time
}

// Episode is a single episode of a show.
type Episode struct {
	ID      int64
	ShowID  int64
	Season  int
	Episode int
	Title   string
	Status  EpisodeStatus
	AirDate *time.Time
}

// Movie is a film in a movie library.
type Movie struct {
	ID              int64
	LibraryID       int64
	Title           string
	Year            int
	ProviderID      *string
	Status          ItemStatus
	QualityOverride *QualitySettings
	AddedAt         time.Time
}

// Track is a song in a music library.
type Track struct {
	ID          int64
	LibraryID   int64
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	Status      ItemStatus
}

// Audiobook is a book in an audiobook library.
type Audiobook struct {
	ID        int64
	LibraryID int64
	Title     string
	Author    string
	Status    ItemStatus
}

// AudiobookChapter maps a chapter number to its file.
type AudiobookChapter struct {
	ID          int64
	AudiobookID int64
	Number      int
	Title       string
	MediaFileID *int64
}

// MatchType records how a file got its catalog link.
type MatchType string

const (
	MatchNone      MatchType = "none"
	MatchAutomatic MatchType = "automatic"
	MatchManual    MatchType = "manual"
)

// OrganizeStatus tracks the organizer's result for a file.
type OrganizeStatus string

const (
	OrganizePending    OrganizeStatus = "pending"
	OrganizeOrganized  OrganizeStatus = "organized"
	OrganizeConflicted OrganizeStatus = "conflicted"
	OrganizeError      OrganizeStatus = "error"
)

// QualityStatus is the outcome of quality verification.
type QualityStatus string

const (
	QualityUnknown    QualityStatus = "unknown"
	QualityOptimal    QualityStatus = "optimal"
	QualitySuboptimal QualityStatus = "suboptimal"
	QualityExceeds    QualityStatus = "exceeds"
)

// Link points a file (or torrent) at one catalog item. At most one field is set.
type Link struct {
	EpisodeID   *int64
	MovieID     *int64
	TrackID     *int64
	AudiobookID *int64
}

// IsZero reports whether the link points at nothing.
func (l Link) IsZero() bool {
	return l.EpisodeID == nil && l.MovieID == nil && l.TrackID == nil && l.AudiobookID == nil
}

// EpisodeLink returns a Link to an episode.
func EpisodeLink(id int64) Link { return Link{EpisodeID: &id} }

// MovieLink returns a Link to a movie.
func MovieLink(id int64) Link { return Link{MovieID: &id} }

// TrackLink returns a Link to a track.
func TrackLink(id int64) Link { return Link{TrackID: &id} }

// AudiobookLink returns a Link to an audiobook.
func AudiobookLink(id int64) Link { return Link{AudiobookID: &id} }

// EmbeddedTags holds metadata read from the file's own tags.
type EmbeddedTags struct {
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	AlbumArtist string `json:"album_artist,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Year        int    `json:"year,omitempty"`
	Track       int    `json:"track,omitempty"`
	Disc        int    `json:"disc,omitempty"`
}

// MediaFile is a file on disk, optionally linked to a catalog item.
type MediaFile struct {
	ID             int64
	LibraryID      int64
	Path           string
	RelativePath   string
	OriginalName   string
	SizeBytes      int64
	Container      string
	VideoCodec     string
	AudioCodec     string
	Width          int
	Height         int
	Resolution     string
	HDRType        string
	Duration       float64 // seconds
	Bitrate        int64
	Source         string
	ReleaseGroup   string
	Link           Link
	MatchType      MatchType
	OrganizeStatus OrganizeStatus
	OrganizeError  string
	OriginalPath   string
	QualityStatus  QualityStatus
	Tags           *EmbeddedTags
	AnalyzedAt     *time.Time
	AddedAt        time.Time
}

// StreamKind distinguishes stream types.
type StreamKind string

const (
	StreamVideo    StreamKind = "video"
	StreamAudio    StreamKind = "audio"
	StreamSubtitle StreamKind = "subtitle"
)

// Stream is one probed stream of a media file.
type Stream struct {
	Kind      StreamKind
	Index     int
	Codec     string
	Width     int
	Height    int
	Channels  int
	Language  string
	HDRType   string
	IsDefault bool
}

// Chapter is one chapter marker of a media file.
type Chapter struct {
	Index int
	Title string
	Start float64
	End   float64
}

// Analysis is the persisted result of probing a file.
type Analysis struct {
	Container  string
	VideoCodec string
	AudioCodec string
	Width      int
	Height     int
	Resolution string
	HDRType    string
	Duration   float64
	Bitrate    int64
	Streams    []Stream
	Chapters   []Chapter
}
