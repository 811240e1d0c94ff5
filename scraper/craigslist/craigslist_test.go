package craigslist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePostedDate(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}

	t.Run("rfc3339", func(t *testing.T) {
		got := parsePostedDate("2026-08-15T10:30:00-05:00", loc)
		assert.False(t, got.IsZero())
		assert.Equal(t, 2026, got.Year())
		assert.Equal(t, time.August, got.Month())
	})

	t.Run("datetime attribute", func(t *testing.T) {
		got := parsePostedDate("2026-08-15 10:30", loc)
		assert.Equal(t, time.Date(2026, time.August, 15, 10, 30, 0, 0, loc), got)
	})

	t.Run("date only", func(t *testing.T) {
		got := parsePostedDate("2026-08-15", loc)
		assert.Equal(t, time.Date(2026, time.August, 15, 0, 0, 0, 0, loc), got)
	})

	t.Run("unparsable", func(t *testing.T) {
		assert.True(t, parsePostedDate("", loc).IsZero())
		assert.True(t, parsePostedDate("about a week ago", loc).IsZero())
	})
}
