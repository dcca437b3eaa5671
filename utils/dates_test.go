package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysBetween(t *testing.T) {
	start := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysBetween(start, time.Date(2026, 3, 2, 0, 10, 0, 0, time.UTC)))
	assert.Equal(t, 30, DaysBetween(start, start.AddDate(0, 0, 30)))
	assert.Equal(t, 0, DaysBetween(start, start.AddDate(0, 0, -3)))
}

func TestEndOfDay(t *testing.T) {
	got := EndOfDay(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 3, 1, 23, 59, 59, 999999999, time.UTC), got)
}

func TestParseDay(t *testing.T) {
	got, ok := ParseDay("2026-03-01", time.UTC)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), got)

	_, ok = ParseDay("01/03/2026", time.UTC)
	assert.False(t, ok)
	_, ok = ParseDay("", time.UTC)
	assert.False(t, ok)
}
