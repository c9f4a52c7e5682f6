package torrent

import (
	"context"
)

//go:generate mockgen -source=client.go -destination=mocks/client.go -package=mocks

// ClientTorrent is a torrent as the download client reports it.
type ClientTorrent struct {
	Hash     string
	Name     string
	State    string
	Progress float64 // 0-1
	Size     int64
	SavePath string
}

// File is one file of a torrent, with an absolute path on disk.
type File struct {
	Path string
	Size int64
}

// Client talks to the torrent session.
type Client interface {
	List(ctx context.Context) ([]ClientTorrent, error)
	Files(ctx context.Context, hash string) ([]File, error)
	Add(ctx context.Context, uri, savePath string) error
}
