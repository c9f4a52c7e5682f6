package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("The Hobbit", "hobbit"))
	assert.Equal(t, 1.0, Similarity("Rocky II", "Rocky 2"))
	assert.Equal(t, 0.0, Similarity("", "hobbit"))
	assert.Less(t, Similarity("The Hobbit", "Dune"), 0.7)
	assert.Greater(t, Similarity("The Hobbitt", "The Hobbit"), 0.9)
}
