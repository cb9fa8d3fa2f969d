package partmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-watersort/watersort/internal/packed"
)

func TestVisit(t *testing.T) {
	pm := New(8)
	k := packed.Key("\x01\x01\x00\x02")

	assert.True(t, pm.Visit(k, 3, 1), "first visit")
	assert.False(t, pm.Visit(k, 3, 1), "same cost, same iteration")
	assert.False(t, pm.Visit(k, 4, 1), "higher cost")
	assert.False(t, pm.Visit(k, 4, 2), "higher cost, later iteration")
	assert.True(t, pm.Visit(k, 3, 2), "same cost, later iteration")
	assert.True(t, pm.Visit(k, 2, 2), "lower cost")

	cost, iter, ok := pm.Load(k)
	assert.True(t, ok)
	assert.Equal(t, 2, cost)
	assert.Equal(t, 2, iter)
	assert.Equal(t, 1, pm.Size())
}

func TestPartitions(t *testing.T) {
	pm := New(0)
	assert.Equal(t, 1, pm.NumPart())

	pm = New(4)
	keys := []packed.Key{"a", "b", "c", "d", "e", "f"}
	for _, k := range keys {
		pm.Visit(k, 1, 1)
	}
	assert.Equal(t, len(keys), pm.Size())
	for _, k := range keys {
		_, _, ok := pm.Load(k)
		assert.True(t, ok)
	}
	_, _, ok := pm.Load("missing")
	assert.False(t, ok)
}
