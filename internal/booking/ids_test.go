package booking

import (
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDGenerator_Format(t *testing.T) {
	g := NewIDGenerator(func() time.Time { return testNow })

	id := g.Next()
	require.True(t, strings.HasPrefix(id, BookingIDPrefix))

	ms, err := strconv.ParseInt(strings.ToLower(strings.TrimPrefix(id, BookingIDPrefix)), 36, 64)
	require.NoError(t, err)
	assert.Equal(t, testNow.UnixMilli(), ms)
	assert.Equal(t, strings.ToUpper(id), id)
}

func TestIDGenerator_StrictlyMonotonic(t *testing.T) {
	now := testNow
	g := NewIDGenerator(func() time.Time { return now })

	seen := make(map[string]bool)
	var last int64
	for i := range 100 {
		if i == 50 {
			now = now.Add(-time.Second) // clock steps back
		}
		id := g.Next()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true

		ms, err := strconv.ParseInt(strings.TrimPrefix(id, BookingIDPrefix), 36, 64)
		require.NoError(t, err)
		assert.Greater(t, ms, last)
		last = ms
	}
}

func TestGenerations(t *testing.T) {
	g := NewGenerations(41)
	assert.Equal(t, uint64(42), g.Next())

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		seen = make(map[uint64]bool)
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				n := g.Next()
				mu.Lock()
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 800)
	assert.Equal(t, uint64(843), g.Next())
}
