// Package organizer moves episode files into the canonical
// "Show/Season NN/Show - SNNEMM - Title.ext" layout.
package organizer

import (
	"context"
	"errors"

	"github.com/vmunix/mediarr/internal/library"
)

//go:generate mockgen -source=organizer.go -destination=mocks/service.go -package=mocks

var (
	// ErrDestinationExists indicates a different file already occupies the destination.
	ErrDestinationExists = errors.New("destination file already exists")

	// ErrPathTraversal indicates a rendered path would escape the library root.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrTransferFailed indicates the move, copy or link itself failed.
	ErrTransferFailed = errors.New("file transfer failed")
)

// Action is how a file reaches its destination.
type Action string

const (
	ActionMove     Action = "move"
	ActionCopy     Action = "copy"
	ActionHardlink Action = "hardlink"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return a == ActionMove || a == ActionCopy || a == ActionHardlink
}

// Settings is the effective organize policy for one show.
type Settings struct {
	Enabled       bool
	RenameStyle   library.RenameStyle
	NamingPattern string
	Action        Action
	DryRun        bool
}

// Request asks for one episode file to be organized.
type Request struct {
	File        *library.MediaFile
	Show        *library.TvShow
	Episode     *library.Episode
	LibraryPath string
	Settings    Settings
}

// Result describes what OrganizeFile did, or would do in a dry run.
type Result struct {
	Status           library.OrganizeStatus
	SourcePath       string
	DestinationPath  string
	RelativePath     string
	AlreadyOrganized bool
	DryRun           bool
	Message          string
}

// Service organizes files on disk and records the outcome.
type Service interface {
	FullOrganizeSettings(ctx context.Context, show *library.TvShow) (Settings, error)
	OrganizeFile(ctx context.Context, req Request) (*Result, error)
	CleanupEmptyFolders(ctx context.Context, root string) (int, error)
}
