package ohlc

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsheldon/tradelog/internal/database"
	"github.com/rsheldon/tradelog/internal/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// Candles reference a trade row; seed the owning account and trade.
	_, err = db.Conn().Exec(`
		INSERT INTO accounts (id, user_id, name, account_type, currency, initial_balance, created_at, updated_at)
		VALUES ('acc-1', 'user-1', 'Main', 'live', 'USD', 10000, '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z');
		INSERT INTO trades (id, user_id, account_id, symbol, instrument_type, direction, quantity, entry_price, entry_timestamp, status, created_at, updated_at)
		VALUES ('trade-1', 'user-1', 'acc-1', 'AAPL', 'stocks', 'long', 10, 100, '2024-03-04T09:30:00Z', 'open', '2024-03-04T09:30:00Z', '2024-03-04T09:30:00Z')`)
	require.NoError(t, err)

	return NewRepository(db.Conn(), zerolog.Nop())
}

func bars(closes ...float64) []CandleRequest {
	out := make([]CandleRequest, len(closes))
	base := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = CandleRequest{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
		}
	}
	return out
}

func TestReplaceAndList(t *testing.T) {
	repo := newTestRepo(t)

	stored, err := repo.Replace("trade-1", bars(100, 101, 102))
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	candles, err := repo.ListByTrade("trade-1")
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.Equal(t, 100.0, candles[0].Close)
	assert.True(t, candles[0].Timestamp.Before(candles[2].Timestamp))

	// A second upload replaces, never appends.
	_, err = repo.Replace("trade-1", bars(200, 201))
	require.NoError(t, err)
	candles, err = repo.ListByTrade("trade-1")
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 200.0, candles[0].Close)
}

func TestDeleteByTrade(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Replace("trade-1", bars(100, 101))
	require.NoError(t, err)
	require.NoError(t, repo.DeleteByTrade("trade-1"))

	candles, err := repo.ListByTrade("trade-1")
	require.NoError(t, err)
	assert.Empty(t, candles)
}

func TestCandleValidation(t *testing.T) {
	valid := bars(100)[0]
	assert.NoError(t, valid.Validate())

	inverted := valid
	inverted.High, inverted.Low = inverted.Low, inverted.High
	assert.Error(t, inverted.Validate())

	missing := valid
	missing.Timestamp = time.Time{}
	assert.Error(t, missing.Validate())
}

func candleSeries(closes ...float64) []domain.Candle {
	out := make([]domain.Candle, len(closes))
	for i, c := range closes {
		out[i] = domain.Candle{Close: c}
	}
	return out
}

func TestComputeIndicatorSMA(t *testing.T) {
	series, err := ComputeIndicator(IndicatorSMA, 3, candleSeries(1, 2, 3, 4, 5))
	require.NoError(t, err)
	require.Len(t, series.Values, 5)

	assert.Nil(t, series.Values[0])
	assert.Nil(t, series.Values[1])
	require.NotNil(t, series.Values[2])
	assert.InDelta(t, 2.0, *series.Values[2], 1e-9)
	require.NotNil(t, series.Values[4])
	assert.InDelta(t, 4.0, *series.Values[4], 1e-9)
}

func TestComputeIndicatorRSIMonotonicSeries(t *testing.T) {
	series, err := ComputeIndicator(IndicatorRSI, 3, candleSeries(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)
	require.Len(t, series.Values, 6)

	assert.Nil(t, series.Values[2], "warmup spans one extra bar for RSI")
	require.NotNil(t, series.Values[3])
	assert.InDelta(t, 100.0, *series.Values[3], 1e-9, "all-gains series pins RSI at 100")
}

func TestComputeIndicatorErrors(t *testing.T) {
	_, err := ComputeIndicator(IndicatorSMA, 10, candleSeries(1, 2, 3))
	assert.Error(t, err, "too few candles")

	_, err = ComputeIndicator("macd", 3, candleSeries(1, 2, 3, 4))
	assert.Error(t, err, "unknown indicator")

	_, err = ComputeIndicator(IndicatorSMA, 1, candleSeries(1, 2, 3))
	assert.Error(t, err, "degenerate period")
}
