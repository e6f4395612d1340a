package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSfsUpdatesCombine(t *testing.T) {
	synced := SfsUpdates{Added: 2, Updated: 1}
	reclaimed := SfsUpdates{Deleted: 3}

	total := synced.Combine(reclaimed)
	assert.Equal(t, SfsUpdates{Added: 2, Updated: 1, Deleted: 3}, total)
	assert.Equal(t, 6, total.Total())
	assert.False(t, total.IsZero())
	assert.True(t, SfsUpdates{}.IsZero())
}

func TestLinkStatsEqual(t *testing.T) {
	now := time.Now()
	a := LinkStats{Ctime: now, Size: 10}

	assert.True(t, a.Equal(LinkStats{Ctime: now, Size: 10}))
	assert.False(t, a.Equal(LinkStats{Ctime: now, Size: 11}))
	assert.False(t, a.Equal(LinkStats{Ctime: now.Add(time.Second), Size: 10}))

	// Monotonic clock readings must not affect comparison
	assert.True(t, a.Equal(LinkStats{Ctime: now.Round(0), Size: 10}))
}
