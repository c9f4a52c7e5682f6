package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBaseEvent_ImplementsEvent(t *testing.T) {
	now := time.Now()
	e := BaseEvent{
		Type:      "test.event",
		Entity:    "torrent",
		ID:        42,
		Timestamp: now,
	}

	assert.Equal(t, "test.event", e.EventType())
	assert.Equal(t, "torrent", e.EntityType())
	assert.Equal(t, int64(42), e.EntityID())
	assert.Equal(t, now, e.OccurredAt())
}

func TestNewBaseEvent(t *testing.T) {
	e := NewBaseEvent(EventTorrentProgress, EntityTorrent, 123)

	assert.Equal(t, "grab.requested", e.EventType())
	assert.Equal(t, "torrent", e.EntityType())
	assert.Equal(t, int64(123), e.EntityID())
	assert.False(t, e.OccurredAt().IsZero())
}

func TestDurable(t *testing.T) {
	running := &ScanProgress{BaseEvent: NewBaseEvent(EventScanProgress, EntityLibrary, 1)}
	assert.False(t, running.Durable())

	running.IsComplete = true
	assert.True(t, running.Durable())

	var e Event = &MediaFileUpdated{BaseEvent: NewBaseEvent(EventMediaFileUpdated, EntityMediaFile, 2)}
	_, ok := e.(Durable)
	assert.False(t, ok)
}
