package analytics

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/rsheldon/tradelog/internal/domain"
	"github.com/rsheldon/tradelog/pkg/formulas"
)

// TradeStats is the portfolio-level aggregate over a trade collection.
type TradeStats struct {
	TotalTrades        int     `json:"totalTrades"`
	OpenTrades         int     `json:"openTrades"`
	ClosedTrades       int     `json:"closedTrades"`
	WinningTrades      int     `json:"winningTrades"`
	LosingTrades       int     `json:"losingTrades"`
	WinRate            float64 `json:"winRate"`
	TotalPL            float64 `json:"totalPL"`
	TotalProfit        float64 `json:"totalProfit"`
	TotalLoss          float64 `json:"totalLoss"`
	AvgWin             float64 `json:"avgWin"`
	AvgLoss            float64 `json:"avgLoss"`
	AvgR               float64 `json:"avgR"`
	Expectancy         float64 `json:"expectancy"`
	ProfitFactor       float64 `json:"profitFactor"`
	MaxDrawdown        float64 `json:"maxDrawdown"`
	MaxDrawdownPercent float64 `json:"maxDrawdownPercent"`
	BestDay            float64 `json:"bestDay"`
	WorstDay           float64 `json:"worstDay"`
	OpenPL             float64 `json:"openPL"`
}

// MarshalJSON emits null for a non-finite profit factor (a no-loss account
// has profitFactor +Inf, which JSON cannot represent).
func (s TradeStats) MarshalJSON() ([]byte, error) {
	type alias TradeStats
	out := struct {
		alias
		ProfitFactor *float64 `json:"profitFactor"`
	}{alias: alias(s)}

	if !math.IsInf(s.ProfitFactor, 0) && !math.IsNaN(s.ProfitFactor) {
		pf := s.ProfitFactor
		out.ProfitFactor = &pf
	}

	return json.Marshal(out)
}

// resolvedTrade pairs a closed trade with its usable P/L, either the cached
// value or one recomputed on the fly.
type resolvedTrade struct {
	trade domain.Trade
	pl    float64
}

// resolveClosedTrades returns the closed trades whose P/L is computable,
// healing a missing cache via ComputeTradeMetrics without mutating the input.
// Trades marked closed but lacking exit data drop out silently.
func resolveClosedTrades(trades []domain.Trade) []resolvedTrade {
	resolved := make([]resolvedTrade, 0, len(trades))
	for _, t := range trades {
		if !t.IsClosed() {
			continue
		}
		pl := t.ProfitLoss
		if pl == nil {
			pl = ComputeTradeMetrics(t).ProfitLoss
		}
		if pl == nil {
			continue
		}
		resolved = append(resolved, resolvedTrade{trade: t, pl: *pl})
	}
	return resolved
}

// ComputePortfolioStats aggregates a trade collection into portfolio-level
// statistics against a baseline balance. Intermediate sums are accumulated at
// full precision; only the per-trade cached values carry display rounding.
func ComputePortfolioStats(trades []domain.Trade, initialBalance float64) TradeStats {
	stats := TradeStats{TotalTrades: len(trades)}

	closed := resolveClosedTrades(trades)
	stats.ClosedTrades = len(closed)

	var openTrades []domain.Trade
	for _, t := range trades {
		if t.Status == domain.StatusOpen {
			openTrades = append(openTrades, t)
		}
	}
	stats.OpenTrades = len(openTrades)

	var winPLs, lossPLs []float64
	var rSum float64
	for _, rt := range closed {
		stats.TotalPL += rt.pl
		switch {
		case rt.pl > 0:
			winPLs = append(winPLs, rt.pl)
			stats.TotalProfit += rt.pl
		case rt.pl < 0:
			lossPLs = append(lossPLs, -rt.pl)
			stats.TotalLoss += -rt.pl
		}
		// Missing r_multiple counts as 0, not excluded from the denominator.
		if rt.trade.RMultiple != nil {
			rSum += *rt.trade.RMultiple
		}
	}
	stats.WinningTrades = len(winPLs)
	stats.LosingTrades = len(lossPLs)
	stats.AvgWin = formulas.Mean(winPLs)
	stats.AvgLoss = formulas.Mean(lossPLs)

	if len(closed) > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(len(closed)) * 100
		stats.Expectancy = (stats.WinRate/100)*stats.AvgWin - ((100-stats.WinRate)/100)*stats.AvgLoss
		stats.AvgR = rSum / float64(len(closed))
	}

	if stats.TotalLoss > 0 {
		stats.ProfitFactor = stats.TotalProfit / stats.TotalLoss
	} else if stats.TotalProfit > 0 {
		stats.ProfitFactor = math.Inf(1)
	}

	// Running-balance walk in chronological order. Max drawdown is the
	// largest peak-to-trough gap observed anywhere in the walk, not the
	// final drawdown. Daily buckets key on the UTC calendar day.
	chronological := make([]resolvedTrade, len(closed))
	copy(chronological, closed)
	sort.SliceStable(chronological, func(i, j int) bool {
		return chronological[i].trade.ResolvedTime().Before(chronological[j].trade.ResolvedTime())
	})

	runningBalance := initialBalance
	peak := initialBalance
	dailyPL := make(map[string]float64)

	for _, rt := range chronological {
		runningBalance += rt.pl
		if runningBalance > peak {
			peak = runningBalance
		}
		drawdown := peak - runningBalance
		if drawdown > stats.MaxDrawdown {
			stats.MaxDrawdown = drawdown
			if peak != 0 {
				stats.MaxDrawdownPercent = drawdown / peak * 100
			} else {
				stats.MaxDrawdownPercent = 0
			}
		}

		day := rt.trade.ResolvedTime().UTC().Format("2006-01-02")
		dailyPL[day] += rt.pl
	}

	first := true
	for _, pl := range dailyPL {
		if first {
			stats.BestDay = pl
			stats.WorstDay = pl
			first = false
			continue
		}
		if pl > stats.BestDay {
			stats.BestDay = pl
		}
		if pl < stats.WorstDay {
			stats.WorstDay = pl
		}
	}

	// Mark-to-exit unrealized P/L for open trades that carry an exit price.
	for _, t := range openTrades {
		if t.ExitPrice == nil {
			continue
		}
		if pl := ComputeTradeMetrics(t).ProfitLoss; pl != nil {
			stats.OpenPL += *pl
		}
	}

	return stats
}
