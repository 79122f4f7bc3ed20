package breakdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeksUntil(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		deadline string
		want     int
	}{
		{"2025-01-02", 1},
		{"2025-01-29T12:00:00Z", 4},
		{"2025-01-29", 4}, // 27.5 days rounds up to 28
		{"2025-03-26T12:00:00Z", 12},
		{"2024-12-01", 1},
		{"2035-01-01", MaxWeeks},
	}
	for _, tc := range cases {
		got, err := WeeksUntil(tc.deadline, now)
		require.NoError(t, err, tc.deadline)
		assert.Equal(t, tc.want, got, tc.deadline)
	}

	_, err := WeeksUntil("next friday", now)
	assert.Error(t, err)
}

func TestChunks(t *testing.T) {
	assert.Equal(t, []ChunkRange{{1, 4}, {5, 8}, {9, 10}}, Chunks(10, 4))
	assert.Equal(t, []ChunkRange{{1, 3}}, Chunks(3, 4))
	assert.Equal(t, []ChunkRange{{1, 1}}, Chunks(0, 4))
	assert.Equal(t, []ChunkRange{{1, 5}}, Chunks(5, 0))
	assert.Equal(t, 2, ChunkRange{From: 5, To: 6}.Len())
}
