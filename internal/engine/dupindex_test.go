package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDuplicateIndexFirstSeenWins(t *testing.T) {
	idx := NewDuplicateIndex()

	assert.Empty(t, idx.Classify("d1", "/a"))
	assert.Equal(t, "/a", idx.Classify("d1", "/b"))
	assert.Equal(t, "/a", idx.Classify("d1", "/c"))

	// Repeated calls never overwrite the recorded original.
	assert.Equal(t, "/a", idx.Classify("d1", "/b"))
	assert.Equal(t, 1, idx.Len())
}

func TestDuplicateIndexDistinctDigests(t *testing.T) {
	idx := NewDuplicateIndex()

	assert.Empty(t, idx.Classify("d1", "/a"))
	assert.Empty(t, idx.Classify("d2", "/b"))
	assert.Equal(t, "/a", idx.Classify("d1", "/c"))
	assert.Equal(t, "/b", idx.Classify("d2", "/d"))
	assert.Equal(t, 2, idx.Len())
}
