package orderedmap_test

import (
	"fmt"
	"testing"

	"github.com/pb33f/telescope-core/orderedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedMapEmpty(t *testing.T) {
	m := orderedmap.New[string, int]()
	assert.Nil(t, m.First())
	assert.Equal(t, 0, m.GetOrZero("missing"))
	_, ok := m.Get("missing")
	assert.False(t, ok)
}

func TestOrderedMapSetAndGet(t *testing.T) {
	const size = 50
	m := orderedmap.New[string, int]()
	for i := 0; i < size; i++ {
		m.Set(fmt.Sprintf("key%d", i), 1000+i)
	}

	for i := 0; i < size; i++ {
		v, ok := m.Get(fmt.Sprintf("key%d", i))
		require.True(t, ok)
		assert.Equal(t, 1000+i, v)
		assert.Equal(t, 1000+i, m.GetOrZero(fmt.Sprintf("key%d", i)))
	}

	_, ok := m.Get("bogus")
	assert.False(t, ok)
	assert.Equal(t, 0, m.GetOrZero("bogus"))
}

func TestOrderedMapSetOverwritesInPlace(t *testing.T) {
	m := orderedmap.New[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 99)

	var keys []int
	for pair := m.First(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Value())
	}
	assert.Equal(t, []int{99, 2}, keys, "overwriting a key keeps its original insertion slot")
}

func TestOrderedMapFirstWalksInInsertionOrder(t *testing.T) {
	const size = 100
	m := orderedmap.New[string, int]()
	for i := 0; i < size; i++ {
		m.Set(fmt.Sprintf("key%d", i), i+1000)
	}

	var i int
	for pair := m.First(); pair != nil; pair = pair.Next() {
		assert.Equal(t, i+1000, pair.Value())
		i++
	}
	assert.Equal(t, size, i)
}
