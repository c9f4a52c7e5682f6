package scanner

import (
	"sync"
	"sync/atomic"

	"github.com/vmunix/mediarr/internal/events"
)

// progress holds the live counters of one scan. Counters are updated from
// several group workers at once.
type progress struct {
	libraryID   int64
	libraryName string

	total          atomic.Int64
	scanned        atomic.Int64
	newFiles       atomic.Int64
	removed        atomic.Int64
	showsAdded     atomic.Int64
	episodesLinked atomic.Int64
	errors         atomic.Int64

	mu      sync.Mutex
	current string
}

func (p *progress) setCurrent(path string) {
	p.mu.Lock()
	p.current = path
	p.mu.Unlock()
}

func (p *progress) snapshot(complete bool) *events.ScanProgress {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()
	if complete {
		current = ""
	}
	return &events.ScanProgress{
		BaseEvent:      events.NewBaseEvent(events.EventScanProgress, events.EntityLibrary, p.libraryID),
		LibraryID:      p.libraryID,
		LibraryName:    p.libraryName,
		TotalFiles:     p.total.Load(),
		ScannedFiles:   p.scanned.Load(),
		NewFiles:       p.newFiles.Load(),
		RemovedFiles:   p.removed.Load(),
		ShowsAdded:     p.showsAdded.Load(),
		EpisodesLinked: p.episodesLinked.Load(),
		Errors:         p.errors.Load(),
		CurrentFile:    current,
		IsComplete:     complete,
	}
}
