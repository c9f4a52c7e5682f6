package torrent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusNone, StatusProcessing, true},
		{StatusPending, StatusProcessing, true},
		{StatusNone, StatusCompleted, false},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusMatched, true},
		{StatusProcessing, StatusUnmatched, true},
		{StatusProcessing, StatusError, true},
		{StatusProcessing, StatusProcessing, false},
		{StatusUnmatched, StatusProcessing, true},
		{StatusError, StatusProcessing, true},
		{StatusMatched, StatusProcessing, true},
		{StatusCompleted, StatusProcessing, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%q -> %q", tt.from, tt.to)
	}
}

func TestStatus_NeedsSweep(t *testing.T) {
	assert.True(t, StatusNone.NeedsSweep())
	assert.True(t, StatusPending.NeedsSweep())
	assert.True(t, StatusUnmatched.NeedsSweep())
	assert.False(t, StatusError.NeedsSweep())
	assert.False(t, StatusCompleted.NeedsSweep())
	assert.True(t, StatusCompleted.IsTerminal())
}
