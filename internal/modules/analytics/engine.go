// Package analytics turns raw trade records into derived performance values:
// per-trade profit/loss, portfolio-level statistics and the time-ordered
// series backing the dashboard charts. Every exported computation is pure and
// total: malformed or incomplete trades degrade to nil results or zero-valued
// defaults, never to a panic or an error.
package analytics

import (
	"math"

	"github.com/rsheldon/tradelog/internal/domain"
	"github.com/rsheldon/tradelog/pkg/formulas"
)

// TradeMetrics holds the derived values for a single trade. Nil fields signal
// "not computable with current data" (trade still open, or degenerate size).
type TradeMetrics struct {
	ProfitLoss        *float64 `json:"profit_loss"`
	ProfitLossPercent *float64 `json:"profit_loss_percent"`
}

// ComputeTradeMetrics computes realized P/L and percent return from trade
// attributes. Leverage scales both the P/L and the notional the percent is
// measured against; it is never applied to the stored quantity. Costs are
// monetary totals, not per-unit. Results are rounded half-up to 2 decimals.
func ComputeTradeMetrics(t domain.Trade) TradeMetrics {
	entry := t.EntryPrice
	quantity := t.Quantity
	if !isFinite(quantity) {
		quantity = 0
	}

	if !isFinite(entry) || t.ExitPrice == nil || !isFinite(*t.ExitPrice) || quantity == 0 {
		return TradeMetrics{}
	}
	exit := *t.ExitPrice

	leverage := 1.0
	if t.Leverage != nil && isFinite(*t.Leverage) {
		leverage = *t.Leverage
	}

	// Per-unit P/L: long profits when price rises, short when it falls.
	// Unrecognized direction values are treated as long.
	perUnit := exit - entry
	if t.Direction == domain.DirectionShort {
		perUnit = entry - exit
	}

	gross := perUnit * quantity * leverage
	costs := finiteOrZero(t.Fees) + finiteOrZero(t.Commission) + finiteOrZero(t.Slippage)

	profitLoss := formulas.RoundHalfUp2(gross - costs)
	metrics := TradeMetrics{ProfitLoss: &profitLoss}

	notional := entry * quantity * leverage
	if notional != 0 {
		percent := formulas.RoundHalfUp2((gross - costs) / notional * 100)
		metrics.ProfitLossPercent = &percent
	}

	return metrics
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrZero(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}
