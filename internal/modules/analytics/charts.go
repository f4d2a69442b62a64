package analytics

import (
	"sort"

	"github.com/rsheldon/tradelog/internal/domain"
)

// DefaultRollingWindow is the rolling win-rate window used when no explicit
// window is requested.
const DefaultRollingWindow = 20

// distributionBins is the fixed histogram bin count for the P/L distribution.
const distributionBins = 10

// leaderboardLimit caps leaderboard output at the top entries by total P/L.
const leaderboardLimit = 10

// noStrategyLabel groups closed trades that carry no strategy name.
const noStrategyLabel = "No Strategy"

// EquityPoint is one step of the running-balance curve. Index 0 is the
// implicit starting point at the initial balance.
type EquityPoint struct {
	Index   int     `json:"index"`
	Balance float64 `json:"balance"`
}

// DrawdownPoint is the peak-to-trough decline after a given closed trade.
type DrawdownPoint struct {
	Index           int     `json:"index"`
	Drawdown        float64 `json:"drawdown"`
	DrawdownPercent float64 `json:"drawdownPercent"`
}

// RollingWinRatePoint is the win rate over the trailing window ending at the
// given position in the chronological closed-trade sequence.
type RollingWinRatePoint struct {
	Index   int     `json:"index"`
	WinRate float64 `json:"winRate"`
}

// HistogramBin is one bucket of the P/L distribution.
type HistogramBin struct {
	BinStart float64 `json:"binStart"`
	BinEnd   float64 `json:"binEnd"`
	Count    int     `json:"count"`
}

// WeekdayStat aggregates closed trades falling on one day of the week
// (0 = Sunday .. 6 = Saturday, by the timestamp's local calendar).
type WeekdayStat struct {
	Day     int     `json:"day"`
	TotalPL float64 `json:"totalPL"`
	Trades  int     `json:"trades"`
	Wins    int     `json:"wins"`
}

// LeaderboardEntry is one group (symbol or strategy) of the leaderboard.
type LeaderboardEntry struct {
	Name    string  `json:"name"`
	TotalPL float64 `json:"totalPL"`
	AvgPL   float64 `json:"avgPL"`
	WinRate float64 `json:"winRate"`
	Trades  int     `json:"trades"`
}

// chartTrades selects the trades every projection operates on: status closed
// with a non-nil cached profit_loss, in chronological order. Projections use
// the cache as-is; healing missing values is the aggregator's concern.
func chartTrades(trades []domain.Trade) []resolvedTrade {
	selected := make([]resolvedTrade, 0, len(trades))
	for _, t := range trades {
		if t.IsClosed() && t.ProfitLoss != nil {
			selected = append(selected, resolvedTrade{trade: t, pl: *t.ProfitLoss})
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].trade.ResolvedTime().Before(selected[j].trade.ResolvedTime())
	})
	return selected
}

// EquityCurve projects the closed-trade sequence into a running balance
// starting at initialBalance, one point per closed trade plus the start point.
func EquityCurve(trades []domain.Trade, initialBalance float64) []EquityPoint {
	closed := chartTrades(trades)

	points := make([]EquityPoint, 0, len(closed)+1)
	points = append(points, EquityPoint{Index: 0, Balance: initialBalance})

	balance := initialBalance
	for i, rt := range closed {
		balance += rt.pl
		points = append(points, EquityPoint{Index: i + 1, Balance: balance})
	}
	return points
}

// DrawdownCurve emits the full per-trade drawdown series of the
// running-balance walk, not just its maximum.
func DrawdownCurve(trades []domain.Trade, initialBalance float64) []DrawdownPoint {
	closed := chartTrades(trades)

	points := make([]DrawdownPoint, 0, len(closed))
	balance := initialBalance
	peak := initialBalance

	for i, rt := range closed {
		balance += rt.pl
		if balance > peak {
			peak = balance
		}
		drawdown := peak - balance
		percent := 0.0
		if peak != 0 {
			percent = drawdown / peak * 100
		}
		points = append(points, DrawdownPoint{Index: i, Drawdown: drawdown, DrawdownPercent: percent})
	}
	return points
}

// RollingWinRate slides a fixed-size window over the chronological
// closed-trade sequence. Fewer closed trades than the window produces no
// points. A window of zero or less falls back to DefaultRollingWindow.
func RollingWinRate(trades []domain.Trade, window int) []RollingWinRatePoint {
	if window <= 0 {
		window = DefaultRollingWindow
	}

	closed := chartTrades(trades)
	if len(closed) < window {
		return []RollingWinRatePoint{}
	}

	points := make([]RollingWinRatePoint, 0, len(closed)-window+1)
	wins := 0
	for i, rt := range closed {
		if rt.pl > 0 {
			wins++
		}
		if i >= window {
			if closed[i-window].pl > 0 {
				wins--
			}
		}
		if i >= window-1 {
			points = append(points, RollingWinRatePoint{
				Index:   i,
				WinRate: float64(wins) / float64(window) * 100,
			})
		}
	}
	return points
}

// PLDistribution builds a 10-bin histogram over closed-trade P/L values.
// A zero range degrades to a bin width of 1 so every value lands in bin 0;
// the maximum value clamps into the last bin.
func PLDistribution(trades []domain.Trade) []HistogramBin {
	closed := chartTrades(trades)
	if len(closed) == 0 {
		return []HistogramBin{}
	}

	minPL := closed[0].pl
	maxPL := closed[0].pl
	for _, rt := range closed {
		if rt.pl < minPL {
			minPL = rt.pl
		}
		if rt.pl > maxPL {
			maxPL = rt.pl
		}
	}

	binSize := (maxPL - minPL) / distributionBins
	if binSize == 0 {
		binSize = 1
	}

	bins := make([]HistogramBin, distributionBins)
	for i := range bins {
		bins[i].BinStart = minPL + float64(i)*binSize
		bins[i].BinEnd = bins[i].BinStart + binSize
	}

	for _, rt := range closed {
		idx := int((rt.pl - minPL) / binSize)
		if idx > distributionBins-1 {
			idx = distributionBins - 1
		}
		bins[idx].Count++
	}
	return bins
}

// PLByWeekday buckets closed trades by the local day of week of their
// resolved date, summing P/L and counting trades and wins per day.
func PLByWeekday(trades []domain.Trade) []WeekdayStat {
	days := make([]WeekdayStat, 7)
	for i := range days {
		days[i].Day = i
	}

	for _, rt := range chartTrades(trades) {
		day := int(rt.trade.ResolvedTime().Weekday())
		days[day].TotalPL += rt.pl
		days[day].Trades++
		if rt.pl > 0 {
			days[day].Wins++
		}
	}
	return days
}

// Heatmap accumulates summed P/L into a 7x24 day-by-hour grid keyed by the
// local calendar components of each closed trade's resolved date.
func Heatmap(trades []domain.Trade) [][]float64 {
	grid := make([][]float64, 7)
	for i := range grid {
		grid[i] = make([]float64, 24)
	}

	for _, rt := range chartTrades(trades) {
		resolved := rt.trade.ResolvedTime()
		day := int(resolved.Weekday())
		hour := resolved.Hour()
		grid[day][hour] += rt.pl
	}
	return grid
}

// StrategyLeaderboard groups closed trades by strategy name and ranks the
// groups by total P/L, capped at the top 10. Trades without a strategy group
// under "No Strategy".
func StrategyLeaderboard(trades []domain.Trade) []LeaderboardEntry {
	return leaderboard(trades, func(t domain.Trade) string {
		if t.Strategy == nil || *t.Strategy == "" {
			return noStrategyLabel
		}
		return *t.Strategy
	})
}

// SymbolLeaderboard groups closed trades by symbol and ranks the groups by
// total P/L, capped at the top 10.
func SymbolLeaderboard(trades []domain.Trade) []LeaderboardEntry {
	return leaderboard(trades, func(t domain.Trade) string {
		return t.Symbol
	})
}

func leaderboard(trades []domain.Trade, keyFn func(domain.Trade) string) []LeaderboardEntry {
	type groupStats struct {
		totalPL float64
		count   int
		wins    int
	}

	// Accumulators are local to this call; each invocation is independent.
	groups := make(map[string]*groupStats)
	for _, rt := range chartTrades(trades) {
		key := keyFn(rt.trade)
		g, ok := groups[key]
		if !ok {
			g = &groupStats{}
			groups[key] = g
		}
		g.totalPL += rt.pl
		g.count++
		if rt.pl > 0 {
			g.wins++
		}
	}

	entries := make([]LeaderboardEntry, 0, len(groups))
	for name, g := range groups {
		entries = append(entries, LeaderboardEntry{
			Name:    name,
			TotalPL: g.totalPL,
			AvgPL:   g.totalPL / float64(g.count),
			WinRate: float64(g.wins) / float64(g.count) * 100,
			Trades:  g.count,
		})
	}

	// Ties break on name so output is independent of input order.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalPL != entries[j].TotalPL {
			return entries[i].TotalPL > entries[j].TotalPL
		}
		return entries[i].Name < entries[j].Name
	})

	if len(entries) > leaderboardLimit {
		entries = entries[:leaderboardLimit]
	}
	return entries
}
