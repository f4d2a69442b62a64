package trades

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rsheldon/tradelog/internal/domain"
)

// ErrNotFound is returned when a trade does not exist for the caller
var ErrNotFound = errors.New("trade not found")

const tradeColumns = `id, user_id, account_id, symbol, instrument_type, direction,
	quantity, leverage, entry_price, exit_price, entry_timestamp, exit_timestamp,
	fees, commission, slippage, tags, strategy, notes,
	profit_loss, profit_loss_percent, r_multiple, status, created_at, updated_at`

// Repository handles trade database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new trade repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "trades").Logger(),
	}
}

// Create inserts a trade. Identity and timestamps are assigned here; derived
// metric fields must already be set by the caller.
func (r *Repository) Create(trade domain.Trade) (*domain.Trade, error) {
	now := time.Now()
	trade.ID = uuid.NewString()
	trade.CreatedAt = now
	trade.UpdatedAt = now

	tags, err := json.Marshal(trade.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.ID, trade.UserID, trade.AccountID, trade.Symbol,
		string(trade.InstrumentType), string(trade.Direction),
		trade.Quantity, trade.Leverage, trade.EntryPrice, trade.ExitPrice,
		trade.EntryTimestamp.Format(time.RFC3339), formatTimePtr(trade.ExitTimestamp),
		trade.Fees, trade.Commission, trade.Slippage, string(tags),
		trade.Strategy, trade.Notes,
		trade.ProfitLoss, trade.ProfitLossPercent, trade.RMultiple,
		string(trade.Status),
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}

	r.log.Info().Str("trade_id", trade.ID).Str("symbol", trade.Symbol).Msg("Trade created")
	return &trade, nil
}

// GetByID retrieves a trade scoped to its owner
func (r *Repository) GetByID(userID, id string) (*domain.Trade, error) {
	row := r.db.QueryRow(`
		SELECT `+tradeColumns+` FROM trades WHERE id = ? AND user_id = ?`, id, userID)

	trade, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return trade, nil
}

// List returns a user's trades, newest entry first, narrowed by the filter.
// Date bounds match against the exit timestamp, falling back to entry for
// trades without one.
func (r *Repository) List(userID string, filter ListFilter) ([]domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE user_id = ?`
	args := []interface{}{userID}

	if filter.AccountID != "" {
		query += ` AND account_id = ?`
		args = append(args, filter.AccountID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Symbol != "" {
		query += ` AND symbol = ?`
		args = append(args, strings.ToUpper(filter.Symbol))
	}
	if filter.Strategy != "" {
		query += ` AND strategy = ?`
		args = append(args, filter.Strategy)
	}
	if filter.Start != nil {
		query += ` AND COALESCE(exit_timestamp, entry_timestamp) >= ?`
		args = append(args, filter.Start.Format(time.RFC3339))
	}
	if filter.End != nil {
		query += ` AND COALESCE(exit_timestamp, entry_timestamp) <= ?`
		args = append(args, filter.End.Format(time.RFC3339))
	}
	query += ` ORDER BY entry_timestamp DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// Update replaces a trade's mutable fields, scoped to its owner
func (r *Repository) Update(trade domain.Trade) (*domain.Trade, error) {
	tags, err := json.Marshal(trade.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	result, err := r.db.Exec(`
		UPDATE trades SET
			account_id = ?, symbol = ?, instrument_type = ?, direction = ?,
			quantity = ?, leverage = ?, entry_price = ?, exit_price = ?,
			entry_timestamp = ?, exit_timestamp = ?,
			fees = ?, commission = ?, slippage = ?, tags = ?, strategy = ?, notes = ?,
			profit_loss = ?, profit_loss_percent = ?, r_multiple = ?, status = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?`,
		trade.AccountID, trade.Symbol,
		string(trade.InstrumentType), string(trade.Direction),
		trade.Quantity, trade.Leverage, trade.EntryPrice, trade.ExitPrice,
		trade.EntryTimestamp.Format(time.RFC3339), formatTimePtr(trade.ExitTimestamp),
		trade.Fees, trade.Commission, trade.Slippage, string(tags),
		trade.Strategy, trade.Notes,
		trade.ProfitLoss, trade.ProfitLossPercent, trade.RMultiple,
		string(trade.Status),
		time.Now().Format(time.RFC3339),
		trade.ID, trade.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(trade.UserID, trade.ID)
}

// Delete removes a trade scoped to its owner
func (r *Repository) Delete(userID, id string) error {
	result, err := r.db.Exec(`DELETE FROM trades WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListClosedMissingMetrics returns closed trades across all users whose
// cached profit figures are absent, for the backfill job.
func (r *Repository) ListClosedMissingMetrics() ([]domain.Trade, error) {
	rows, err := r.db.Query(`
		SELECT ` + tradeColumns + ` FROM trades
		WHERE status = 'closed' AND profit_loss IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades missing metrics: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// UpdateMetrics writes the cached derived values for a single trade
func (r *Repository) UpdateMetrics(id string, profitLoss, profitLossPercent *float64) error {
	_, err := r.db.Exec(`
		UPDATE trades SET profit_loss = ?, profit_loss_percent = ?, updated_at = ?
		WHERE id = ?`,
		profitLoss, profitLossPercent, time.Now().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to update trade metrics: %w", err)
	}
	return nil
}

func collectTrades(rows *sql.Rows) ([]domain.Trade, error) {
	trades := make([]domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, *trade)
	}
	return trades, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner) (*domain.Trade, error) {
	var trade domain.Trade
	var instrumentType, direction, status string
	var entryTS, createdAt, updatedAt, tags string
	var exitTS, strategy, notes sql.NullString
	var leverage, exitPrice, profitLoss, profitLossPct, rMultiple sql.NullFloat64

	err := row.Scan(&trade.ID, &trade.UserID, &trade.AccountID, &trade.Symbol,
		&instrumentType, &direction,
		&trade.Quantity, &leverage, &trade.EntryPrice, &exitPrice, &entryTS, &exitTS,
		&trade.Fees, &trade.Commission, &trade.Slippage, &tags, &strategy, &notes,
		&profitLoss, &profitLossPct, &rMultiple, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	trade.InstrumentType = domain.InstrumentType(instrumentType)
	trade.Direction = domain.Direction(direction)
	trade.Status = domain.TradeStatus(status)
	trade.Leverage = nullFloat(leverage)
	trade.ExitPrice = nullFloat(exitPrice)
	trade.ProfitLoss = nullFloat(profitLoss)
	trade.ProfitLossPercent = nullFloat(profitLossPct)
	trade.RMultiple = nullFloat(rMultiple)
	trade.Strategy = nullString(strategy)
	trade.Notes = nullString(notes)

	if ts, err := time.Parse(time.RFC3339, entryTS); err == nil {
		trade.EntryTimestamp = ts
	}
	if exitTS.Valid {
		if ts, err := time.Parse(time.RFC3339, exitTS.String); err == nil {
			trade.ExitTimestamp = &ts
		}
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		trade.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		trade.UpdatedAt = ts
	}

	trade.Tags = []string{}
	if err := json.Unmarshal([]byte(tags), &trade.Tags); err != nil {
		trade.Tags = []string{}
	}
	return &trade, nil
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
