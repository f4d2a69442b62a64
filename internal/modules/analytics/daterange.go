package analytics

import (
	"time"

	"github.com/rsheldon/tradelog/internal/domain"
)

// FilterTradesByDateRange keeps trades whose resolved date (exit falling back
// to entry) falls within the inclusive bounds. A nil bound leaves that side
// unbounded.
func FilterTradesByDateRange(trades []domain.Trade, start, end *time.Time) []domain.Trade {
	filtered := make([]domain.Trade, 0, len(trades))
	for _, t := range trades {
		resolved := t.ResolvedTime()
		if start != nil && resolved.Before(*start) {
			continue
		}
		if end != nil && resolved.After(*end) {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

// DateRangePreset resolves a named preset to a concrete start/end pair ending
// now. Unrecognized names fall back to the last month.
func DateRangePreset(name string) (start, end time.Time) {
	end = time.Now()

	switch name {
	case "last_10_days":
		start = end.AddDate(0, 0, -10)
	case "last_week":
		start = end.AddDate(0, 0, -7)
	case "last_month":
		start = end.AddDate(0, -1, 0)
	case "last_3_months":
		start = end.AddDate(0, -3, 0)
	case "last_year":
		start = end.AddDate(-1, 0, 0)
	case "ytd":
		start = time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, end.Location())
	case "all":
		start = time.Date(1970, time.January, 1, 0, 0, 0, 0, end.Location())
	default:
		start = end.AddDate(0, -1, 0)
	}

	return start, end
}
