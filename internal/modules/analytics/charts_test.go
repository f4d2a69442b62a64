package analytics

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsheldon/tradelog/internal/domain"
)

func closedSequence(pls ...float64) []domain.Trade {
	at := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	trades := make([]domain.Trade, 0, len(pls))
	for i, pl := range pls {
		trades = append(trades, closedTrade(pl, at.Add(time.Duration(i)*time.Hour)))
	}
	return trades
}

func TestEquityCurve(t *testing.T) {
	points := EquityCurve(closedSequence(100, -50, 25), 1000)

	require.Len(t, points, 4)
	assert.Equal(t, 1000.0, points[0].Balance)
	assert.Equal(t, 1100.0, points[1].Balance)
	assert.Equal(t, 1050.0, points[2].Balance)
	assert.Equal(t, 1075.0, points[3].Balance)
}

func TestEquityCurve_NoClosedTrades(t *testing.T) {
	open := baseTrade()
	open.Status = domain.StatusOpen

	points := EquityCurve([]domain.Trade{open}, 1000)

	// Only the implicit start point remains.
	require.Len(t, points, 1)
	assert.Equal(t, 1000.0, points[0].Balance)
}

func TestEquityCurve_IgnoresUncachedClosedTrades(t *testing.T) {
	// Projections read the cached profit_loss only; a closed trade without
	// one is invisible to the charts even when it could be recomputed.
	uncached := baseTrade()
	uncached.ExitPrice = fptr(110)

	points := EquityCurve([]domain.Trade{uncached}, 1000)
	require.Len(t, points, 1)
}

func TestDrawdownCurve(t *testing.T) {
	points := DrawdownCurve(closedSequence(100, -150, 40), 1000)

	require.Len(t, points, 3)
	assert.Equal(t, 0.0, points[0].Drawdown)
	assert.Equal(t, 150.0, points[1].Drawdown)
	assert.InDelta(t, 150.0/1100.0*100, points[1].DrawdownPercent, 1e-9)
	assert.InDelta(t, 110.0, points[2].Drawdown, 1e-9)
}

func TestRollingWinRate(t *testing.T) {
	tests := []struct {
		name       string
		pls        []float64
		window     int
		wantPoints int
	}{
		{
			name:       "fewer trades than window",
			pls:        []float64{10, -5},
			window:     3,
			wantPoints: 0,
		},
		{
			name:       "exactly window trades",
			pls:        []float64{10, -5, 20},
			window:     3,
			wantPoints: 1,
		},
		{
			name:       "sliding window",
			pls:        []float64{10, -5, 20, -10, 5},
			window:     3,
			wantPoints: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := RollingWinRate(closedSequence(tt.pls...), tt.window)
			assert.Len(t, points, tt.wantPoints)
		})
	}
}

func TestRollingWinRate_Values(t *testing.T) {
	// Windows of 2 over +,-,+,+: 50%, 50%, 100%
	points := RollingWinRate(closedSequence(10, -5, 20, 5), 2)

	require.Len(t, points, 3)
	assert.Equal(t, 50.0, points[0].WinRate)
	assert.Equal(t, 50.0, points[1].WinRate)
	assert.Equal(t, 100.0, points[2].WinRate)
}

func TestRollingWinRate_DefaultWindow(t *testing.T) {
	pls := make([]float64, DefaultRollingWindow)
	for i := range pls {
		pls[i] = 10
	}

	points := RollingWinRate(closedSequence(pls...), 0)
	require.Len(t, points, 1)
	assert.Equal(t, 100.0, points[0].WinRate)
}

func TestPLDistribution_MaxLandsInLastBin(t *testing.T) {
	bins := PLDistribution(closedSequence(-100, -50, 0, 50, 100))

	require.Len(t, bins, 10)

	total := 0
	for _, bin := range bins {
		total += bin.Count
	}
	assert.Equal(t, 5, total)

	// The maximum value must clamp into bin 9, never overflow past it.
	assert.Equal(t, 1, bins[9].Count)
}

func TestPLDistribution_ZeroRange(t *testing.T) {
	bins := PLDistribution(closedSequence(42, 42, 42))

	require.Len(t, bins, 10)
	assert.Equal(t, 3, bins[0].Count)
	for i := 1; i < len(bins); i++ {
		assert.Zero(t, bins[i].Count)
	}
}

func TestPLDistribution_Empty(t *testing.T) {
	assert.Empty(t, PLDistribution(nil))
}

func TestPLByWeekday(t *testing.T) {
	// 2024-03-04 is a Monday.
	monday := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	friday := time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)

	trades := []domain.Trade{
		closedTrade(100, monday),
		closedTrade(-40, monday.Add(time.Hour)),
		closedTrade(60, friday),
	}

	days := PLByWeekday(trades)
	require.Len(t, days, 7)

	assert.Equal(t, 60.0, days[time.Monday].TotalPL)
	assert.Equal(t, 2, days[time.Monday].Trades)
	assert.Equal(t, 1, days[time.Monday].Wins)
	assert.Equal(t, 60.0, days[time.Friday].TotalPL)
	assert.Zero(t, days[time.Sunday].Trades)
}

func TestHeatmap(t *testing.T) {
	monday15 := time.Date(2024, 3, 4, 15, 20, 0, 0, time.UTC)

	trades := []domain.Trade{
		closedTrade(100, monday15),
		closedTrade(-30, monday15.Add(10*time.Minute)),
	}

	grid := Heatmap(trades)
	require.Len(t, grid, 7)
	for _, row := range grid {
		require.Len(t, row, 24)
	}

	assert.Equal(t, 70.0, grid[int(time.Monday)][15])
	assert.Zero(t, grid[int(time.Monday)][16])
}

func TestSymbolLeaderboard(t *testing.T) {
	at := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)

	aapl1 := closedTrade(100, at)
	aapl2 := closedTrade(-40, at.Add(time.Hour))
	tsla := closedTrade(200, at.Add(2*time.Hour))
	tsla.Symbol = "TSLA"

	entries := SymbolLeaderboard([]domain.Trade{aapl1, aapl2, tsla})
	require.Len(t, entries, 2)

	assert.Equal(t, "TSLA", entries[0].Name)
	assert.Equal(t, 200.0, entries[0].TotalPL)
	assert.Equal(t, "AAPL", entries[1].Name)
	assert.Equal(t, 60.0, entries[1].TotalPL)
	assert.Equal(t, 30.0, entries[1].AvgPL)
	assert.Equal(t, 50.0, entries[1].WinRate)
}

func TestStrategyLeaderboard_DefaultLabel(t *testing.T) {
	at := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)

	breakout := closedTrade(100, at)
	name := "Breakout"
	breakout.Strategy = &name
	unnamed := closedTrade(50, at.Add(time.Hour))

	entries := StrategyLeaderboard([]domain.Trade{breakout, unnamed})
	require.Len(t, entries, 2)
	assert.Equal(t, "Breakout", entries[0].Name)
	assert.Equal(t, "No Strategy", entries[1].Name)
}

func TestSymbolLeaderboard_CapsAtTen(t *testing.T) {
	at := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)

	symbols := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}
	trades := make([]domain.Trade, 0, len(symbols))
	for i, sym := range symbols {
		trade := closedTrade(float64(100-i), at.Add(time.Duration(i)*time.Hour))
		trade.Symbol = sym
		trades = append(trades, trade)
	}

	entries := SymbolLeaderboard(trades)
	assert.Len(t, entries, 10)
	assert.Equal(t, "A", entries[0].Name)
}

func TestAggregations_OrderIndependent(t *testing.T) {
	at := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	trades := make([]domain.Trade, 0, 12)
	for i := 0; i < 12; i++ {
		trade := closedTrade(float64((i%5)*10-20), at.Add(time.Duration(i)*time.Hour))
		if i%2 == 0 {
			trade.Symbol = "TSLA"
		}
		trades = append(trades, trade)
	}

	wantDays := PLByWeekday(trades)
	wantBoard := SymbolLeaderboard(trades)

	shuffled := make([]domain.Trade, len(trades))
	copy(shuffled, trades)
	rand.New(rand.NewSource(1)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	assert.Equal(t, wantDays, PLByWeekday(shuffled))
	assert.Equal(t, wantBoard, SymbolLeaderboard(shuffled))
}
