package trades

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsheldon/tradelog/internal/database"
	"github.com/rsheldon/tradelog/internal/domain"
)

func newTestService(t *testing.T) (*Service, *Repository) {
	t.Helper()

	db, err := database.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Conn().Exec(`
		INSERT INTO accounts (id, user_id, name, account_type, currency, initial_balance, created_at, updated_at)
		VALUES ('acc-1', 'user-1', 'Main', 'live', 'USD', 10000, '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)

	repo := NewRepository(db.Conn(), zerolog.Nop())
	return NewService(repo, zerolog.Nop()), repo
}

func fptr(v float64) *float64 { return &v }

func closedRequest() TradeRequest {
	exit := 110.0
	exitTS := time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC)
	return TradeRequest{
		AccountID:      "acc-1",
		Symbol:         "aapl",
		Direction:      "long",
		Quantity:       10,
		EntryPrice:     100,
		ExitPrice:      &exit,
		EntryTimestamp: time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC),
		ExitTimestamp:  &exitTS,
		Status:         "closed",
	}
}

func TestCreateClosedTradeCachesMetrics(t *testing.T) {
	service, _ := newTestService(t)

	trade, err := service.Create("user-1", closedRequest())
	require.NoError(t, err)

	assert.Equal(t, "AAPL", trade.Symbol, "symbol should be uppercased")
	require.NotNil(t, trade.ProfitLoss)
	assert.Equal(t, 100.0, *trade.ProfitLoss)
	require.NotNil(t, trade.ProfitLossPercent)
	assert.Equal(t, 10.0, *trade.ProfitLossPercent)

	stored, err := service.Get("user-1", trade.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ProfitLoss)
	assert.Equal(t, 100.0, *stored.ProfitLoss)
}

func TestCreateOpenTradeLeavesMetricsAbsent(t *testing.T) {
	service, _ := newTestService(t)

	req := closedRequest()
	req.Status = "open"

	trade, err := service.Create("user-1", req)
	require.NoError(t, err)
	assert.Nil(t, trade.ProfitLoss)
	assert.Nil(t, trade.ProfitLossPercent)
}

func TestCreateClosedWithoutExitKeepsNilMetrics(t *testing.T) {
	service, _ := newTestService(t)

	req := closedRequest()
	req.ExitPrice = nil
	req.ExitTimestamp = nil

	trade, err := service.Create("user-1", req)
	require.NoError(t, err, "closed without exit data is tolerated, not rejected")
	assert.Nil(t, trade.ProfitLoss)
}

func TestCreateValidation(t *testing.T) {
	service, _ := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*TradeRequest)
	}{
		{"empty symbol", func(r *TradeRequest) { r.Symbol = "  " }},
		{"zero quantity", func(r *TradeRequest) { r.Quantity = 0 }},
		{"negative quantity", func(r *TradeRequest) { r.Quantity = -5 }},
		{"missing account", func(r *TradeRequest) { r.AccountID = "" }},
		{"missing entry time", func(r *TradeRequest) { r.EntryTimestamp = time.Time{} }},
		{"bad status", func(r *TradeRequest) { r.Status = "pending" }},
		{"bad instrument", func(r *TradeRequest) { r.InstrumentType = "bonds" }},
		{"zero leverage", func(r *TradeRequest) { r.Leverage = fptr(0) }},
		{"negative fees", func(r *TradeRequest) { r.Fees = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := closedRequest()
			tt.mutate(&req)
			_, err := service.Create("user-1", req)
			assert.Error(t, err)
		})
	}
}

func TestUpdateRecomputesMetrics(t *testing.T) {
	service, _ := newTestService(t)

	trade, err := service.Create("user-1", closedRequest())
	require.NoError(t, err)

	req := closedRequest()
	req.ExitPrice = fptr(95)
	updated, err := service.Update("user-1", trade.ID, req)
	require.NoError(t, err)

	require.NotNil(t, updated.ProfitLoss)
	assert.Equal(t, -50.0, *updated.ProfitLoss)
	assert.Equal(t, trade.ID, updated.ID)
}

func TestUpdateReopeningClearsCache(t *testing.T) {
	service, _ := newTestService(t)

	trade, err := service.Create("user-1", closedRequest())
	require.NoError(t, err)

	req := closedRequest()
	req.Status = "open"
	updated, err := service.Update("user-1", trade.ID, req)
	require.NoError(t, err)
	assert.Nil(t, updated.ProfitLoss)
	assert.Nil(t, updated.ProfitLossPercent)
}

func TestTradesAreUserScoped(t *testing.T) {
	service, _ := newTestService(t)

	trade, err := service.Create("user-1", closedRequest())
	require.NoError(t, err)

	_, err = service.Get("user-2", trade.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = service.Delete("user-2", trade.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFilters(t *testing.T) {
	service, _ := newTestService(t)

	strategy := "breakout"
	reqA := closedRequest()
	reqA.Strategy = &strategy
	_, err := service.Create("user-1", reqA)
	require.NoError(t, err)

	reqB := closedRequest()
	reqB.Symbol = "MSFT"
	reqB.Status = "open"
	reqB.ExitPrice = nil
	reqB.ExitTimestamp = nil
	_, err = service.Create("user-1", reqB)
	require.NoError(t, err)

	all, err := service.List("user-1", ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := service.List("user-1", ListFilter{Status: "open"})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "MSFT", open[0].Symbol)

	bySymbol, err := service.List("user-1", ListFilter{Symbol: "aapl"})
	require.NoError(t, err)
	assert.Len(t, bySymbol, 1)

	byStrategy, err := service.List("user-1", ListFilter{Strategy: "breakout"})
	require.NoError(t, err)
	assert.Len(t, byStrategy, 1)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	none, err := service.List("user-1", ListFilter{Start: &start})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRoundTripPreservesFields(t *testing.T) {
	service, _ := newTestService(t)

	notes := "gapped up at open"
	req := closedRequest()
	req.Leverage = fptr(2)
	req.Fees = 1.5
	req.Tags = []string{"earnings", "gap"}
	req.Notes = &notes
	req.RMultiple = fptr(1.8)

	trade, err := service.Create("user-1", req)
	require.NoError(t, err)

	stored, err := service.Get("user-1", trade.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Leverage)
	assert.Equal(t, 2.0, *stored.Leverage)
	assert.Equal(t, []string{"earnings", "gap"}, stored.Tags)
	require.NotNil(t, stored.Notes)
	assert.Equal(t, notes, *stored.Notes)
	require.NotNil(t, stored.RMultiple)
	assert.Equal(t, 1.8, *stored.RMultiple)
	assert.Equal(t, domain.InstrumentStocks, stored.InstrumentType)
}

func TestMetricsHealJob(t *testing.T) {
	service, repo := newTestService(t)

	trade, err := service.Create("user-1", closedRequest())
	require.NoError(t, err)

	// Simulate a row written before cache-on-write existed.
	_, err = repo.db.Exec(`UPDATE trades SET profit_loss = NULL, profit_loss_percent = NULL WHERE id = ?`, trade.ID)
	require.NoError(t, err)

	// A closed trade without exit data is a candidate the engine cannot
	// price; the job must leave it alone.
	broken := closedRequest()
	broken.ExitPrice = nil
	broken.ExitTimestamp = nil
	unpriceable, err := service.Create("user-1", broken)
	require.NoError(t, err)

	job := NewMetricsHealJob(repo, zerolog.Nop())
	assert.Equal(t, "metrics_heal", job.Name())
	require.NoError(t, job.Run())

	healed, err := service.Get("user-1", trade.ID)
	require.NoError(t, err)
	require.NotNil(t, healed.ProfitLoss)
	assert.Equal(t, 100.0, *healed.ProfitLoss)

	still, err := service.Get("user-1", unpriceable.ID)
	require.NoError(t, err)
	assert.Nil(t, still.ProfitLoss)
}

func TestCSVImport(t *testing.T) {
	service, _ := newTestService(t)

	csvBody := strings.Join([]string{
		"symbol,direction,quantity,entry_price,exit_price,entry_timestamp,exit_timestamp,fees,strategy,tags",
		"AAPL,long,10,100,110,2024-03-04T09:30:00Z,2024-03-04T16:00:00Z,0,breakout,earnings;gap",
		"MSFT,short,5,400,390,2024-03-05 09:30:00,2024-03-05 16:00:00,2.5,,",
		"BAD,long,not-a-number,100,,2024-03-06,,,,",
	}, "\n")

	result, err := service.Import("user-1", "acc-1", strings.NewReader(csvBody))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "row 4")

	trades, err := service.List("user-1", ListFilter{})
	require.NoError(t, err)
	require.Len(t, trades, 2)

	// Rows with exit data default to closed and get cached metrics.
	msft, err := service.List("user-1", ListFilter{Symbol: "MSFT"})
	require.NoError(t, err)
	require.Len(t, msft, 1)
	assert.Equal(t, domain.StatusClosed, msft[0].Status)
	require.NotNil(t, msft[0].ProfitLoss)
	assert.Equal(t, 47.5, *msft[0].ProfitLoss)
}

func TestCSVImportRejectsMissingSymbolColumn(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Import("user-1", "acc-1", strings.NewReader("ticker,qty\nAAPL,10"))
	assert.Error(t, err)
}
