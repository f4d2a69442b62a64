package ohlc

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rsheldon/tradelog/internal/domain"
)

// Repository handles OHLC candle storage. Candles belong to a trade and are
// replaced as a set: partial uploads would leave charts with gaps.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new OHLC repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "ohlc").Logger(),
	}
}

// Replace swaps a trade's stored candles for the given set in one transaction
func (r *Repository) Replace(tradeID string, candles []CandleRequest) ([]domain.Candle, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM trade_ohlc WHERE trade_id = ?`, tradeID); err != nil {
		return nil, fmt.Errorf("failed to clear candles: %w", err)
	}

	stored := make([]domain.Candle, 0, len(candles))
	for _, req := range candles {
		candle := domain.Candle{
			ID:        uuid.NewString(),
			TradeID:   tradeID,
			Timestamp: req.Timestamp,
			Open:      req.Open,
			High:      req.High,
			Low:       req.Low,
			Close:     req.Close,
			Volume:    req.Volume,
		}
		_, err := tx.Exec(`
			INSERT INTO trade_ohlc (id, trade_id, timestamp, open, high, low, close, volume)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			candle.ID, candle.TradeID, candle.Timestamp.Format(time.RFC3339),
			candle.Open, candle.High, candle.Low, candle.Close, candle.Volume,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert candle: %w", err)
		}
		stored = append(stored, candle)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit candles: %w", err)
	}

	r.log.Info().Str("trade_id", tradeID).Int("candles", len(stored)).Msg("Candles replaced")
	return stored, nil
}

// ListByTrade returns a trade's candles in chronological order
func (r *Repository) ListByTrade(tradeID string) ([]domain.Candle, error) {
	rows, err := r.db.Query(`
		SELECT id, trade_id, timestamp, open, high, low, close, volume
		FROM trade_ohlc WHERE trade_id = ? ORDER BY timestamp`, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candles: %w", err)
	}
	defer rows.Close()

	candles := make([]domain.Candle, 0)
	for rows.Next() {
		var candle domain.Candle
		var timestamp string
		var volume sql.NullFloat64

		err := rows.Scan(&candle.ID, &candle.TradeID, &timestamp,
			&candle.Open, &candle.High, &candle.Low, &candle.Close, &volume)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, timestamp); err == nil {
			candle.Timestamp = ts
		}
		if volume.Valid {
			v := volume.Float64
			candle.Volume = &v
		}
		candles = append(candles, candle)
	}
	return candles, rows.Err()
}

// DeleteByTrade removes a trade's candles
func (r *Repository) DeleteByTrade(tradeID string) error {
	if _, err := r.db.Exec(`DELETE FROM trade_ohlc WHERE trade_id = ?`, tradeID); err != nil {
		return fmt.Errorf("failed to delete candles: %w", err)
	}
	return nil
}
