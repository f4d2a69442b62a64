package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsheldon/tradelog/internal/domain"
)

func TestFilterTradesByDateRange(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	trades := []domain.Trade{
		closedTrade(10, base),
		closedTrade(20, base.AddDate(0, 0, 5)),
		closedTrade(30, base.AddDate(0, 0, 10)),
	}

	start := base.AddDate(0, 0, 5)
	end := base.AddDate(0, 0, 10)

	tests := []struct {
		name  string
		start *time.Time
		end   *time.Time
		want  int
	}{
		{name: "both bounds inclusive", start: &start, end: &end, want: 2},
		{name: "open start", start: nil, end: &end, want: 3},
		{name: "open end", start: &start, end: nil, want: 2},
		{name: "unbounded", start: nil, end: nil, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterTradesByDateRange(trades, tt.start, tt.end)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestFilterTradesByDateRange_UsesExitFallbackEntry(t *testing.T) {
	// An open trade has no exit timestamp; its entry date decides.
	open := baseTrade()
	open.Status = domain.StatusOpen
	// baseTrade enters 2024-03-04

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 4, 23, 59, 59, 0, time.UTC)

	got := FilterTradesByDateRange([]domain.Trade{open}, &start, &end)
	require.Len(t, got, 1)
}

func TestDateRangePreset(t *testing.T) {
	tests := []struct {
		name     string
		preset   string
		wantDays int // approximate distance start..end in days
	}{
		{name: "last 10 days", preset: "last_10_days", wantDays: 10},
		{name: "last week", preset: "last_week", wantDays: 7},
		{name: "last month", preset: "last_month", wantDays: 30},
		{name: "last 3 months", preset: "last_3_months", wantDays: 90},
		{name: "last year", preset: "last_year", wantDays: 365},
		{name: "unknown falls back to last month", preset: "whenever", wantDays: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := DateRangePreset(tt.preset)

			assert.True(t, start.Before(end))
			gotDays := end.Sub(start).Hours() / 24
			assert.InDelta(t, tt.wantDays, gotDays, 3)
		})
	}
}

func TestDateRangePreset_YTD(t *testing.T) {
	start, end := DateRangePreset("ytd")

	assert.Equal(t, end.Year(), start.Year())
	assert.Equal(t, time.January, start.Month())
	assert.Equal(t, 1, start.Day())
}

func TestDateRangePreset_All(t *testing.T) {
	start, end := DateRangePreset("all")

	assert.Equal(t, 1970, start.Year())
	assert.True(t, start.Before(end))
}
