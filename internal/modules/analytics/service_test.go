package analytics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsheldon/tradelog/internal/auth"
	"github.com/rsheldon/tradelog/internal/domain"
)

type fakeTradeSource struct {
	trades []domain.Trade
	calls  int
}

func (f *fakeTradeSource) TradesForUser(userID, accountID string) ([]domain.Trade, error) {
	f.calls++
	return f.trades, nil
}

type fakeAccountSource struct {
	balance float64
}

func (f fakeAccountSource) InitialBalance(userID, accountID string) (float64, error) {
	return f.balance, nil
}

func serviceTrade(pl float64, at time.Time) domain.Trade {
	exit := 110.0
	return domain.Trade{
		Symbol:         "AAPL",
		Direction:      domain.DirectionLong,
		Quantity:       10,
		EntryPrice:     100,
		ExitPrice:      &exit,
		EntryTimestamp: at.Add(-time.Hour),
		ExitTimestamp:  &at,
		ProfitLoss:     &pl,
		Status:         domain.StatusClosed,
	}
}

func TestServiceStatsCaches(t *testing.T) {
	source := &fakeTradeSource{trades: []domain.Trade{
		serviceTrade(100, time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC)),
	}}
	service := NewService(source, fakeAccountSource{balance: 1000}, time.Minute, zerolog.Nop())

	q := Query{UserID: "user-1"}
	first, err := service.Stats(q)
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalTrades)
	assert.Equal(t, 1, source.calls)

	_, err = service.Stats(q)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls, "second identical query should hit the cache")

	// A different scope is a different cache entry.
	_, err = service.Stats(Query{UserID: "user-1", AccountID: "acc-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestServiceInvalidateDropsUserEntries(t *testing.T) {
	source := &fakeTradeSource{trades: []domain.Trade{
		serviceTrade(100, time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC)),
	}}
	service := NewService(source, fakeAccountSource{}, time.Minute, zerolog.Nop())

	_, err := service.Stats(Query{UserID: "user-1"})
	require.NoError(t, err)
	_, err = service.Stats(Query{UserID: "user-2"})
	require.NoError(t, err)
	require.Equal(t, 2, source.calls)

	service.Invalidate("user-1")

	_, err = service.Stats(Query{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, 3, source.calls, "user-1 entry should have been dropped")

	_, err = service.Stats(Query{UserID: "user-2"})
	require.NoError(t, err)
	assert.Equal(t, 3, source.calls, "user-2 entry should have survived")
}

func TestServiceChartsBundle(t *testing.T) {
	source := &fakeTradeSource{trades: []domain.Trade{
		serviceTrade(100, time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC)),
		serviceTrade(-50, time.Date(2024, 3, 5, 16, 0, 0, 0, time.UTC)),
	}}
	service := NewService(source, fakeAccountSource{balance: 1000}, time.Minute, zerolog.Nop())

	charts, err := service.Charts(Query{UserID: "user-1"}, DefaultRollingWindow)
	require.NoError(t, err)

	require.Len(t, charts.EquityCurve, 3)
	assert.Equal(t, 1050.0, charts.EquityCurve[2].Balance)
	assert.Len(t, charts.Drawdown, 2)
	assert.Len(t, charts.RollingWinRate, 2)
	assert.Len(t, charts.ByWeekday, 7)
	assert.Len(t, charts.Heatmap, 7)
}

func TestServiceDateWindowFiltersTrades(t *testing.T) {
	source := &fakeTradeSource{trades: []domain.Trade{
		serviceTrade(100, time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC)),
		serviceTrade(-50, time.Date(2024, 6, 1, 16, 0, 0, 0, time.UTC)),
	}}
	service := NewService(source, fakeAccountSource{}, time.Minute, zerolog.Nop())

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	stats, err := service.Stats(Query{UserID: "user-1", Start: &start})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalTrades)
	assert.Equal(t, -50.0, stats.TotalPL)
}

func newTestRouter(service *Service) chi.Router {
	handlers := NewHandlers(service, zerolog.Nop())
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), "user-1")))
		})
	})
	handlers.RegisterRoutes(r)
	return r
}

func TestHandleStats(t *testing.T) {
	source := &fakeTradeSource{trades: []domain.Trade{
		serviceTrade(100, time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC)),
	}}
	router := newTestRouter(NewService(source, fakeAccountSource{balance: 1000}, time.Minute, zerolog.Nop()))

	req := httptest.NewRequest(http.MethodGet, "/analytics/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalTrades":1`)
	assert.Contains(t, rec.Body.String(), `"winRate":100`)
	// No losers: profit factor is unbounded and must serialize as null.
	assert.Contains(t, rec.Body.String(), `"profitFactor":null`)
}

func TestHandleStatsRejectsBadDates(t *testing.T) {
	router := newTestRouter(NewService(&fakeTradeSource{}, fakeAccountSource{}, time.Minute, zerolog.Nop()))

	req := httptest.NewRequest(http.MethodGet, "/analytics/stats?start=yesterday", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRollingWinRateWindowValidation(t *testing.T) {
	router := newTestRouter(NewService(&fakeTradeSource{}, fakeAccountSource{}, time.Minute, zerolog.Nop()))

	req := httptest.NewRequest(http.MethodGet, "/analytics/rolling-win-rate?window=0", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/analytics/rolling-win-rate?window=5", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleLeaderboards(t *testing.T) {
	source := &fakeTradeSource{trades: []domain.Trade{
		serviceTrade(100, time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC)),
	}}
	router := newTestRouter(NewService(source, fakeAccountSource{}, time.Minute, zerolog.Nop()))

	req := httptest.NewRequest(http.MethodGet, "/analytics/leaderboard/symbols", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"AAPL"`)

	req = httptest.NewRequest(http.MethodGet, "/analytics/leaderboard/strategies", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"No Strategy"`)
}
