package domain

import (
	"strings"
	"time"
)

// Direction represents which side of the market a trade was taken on.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// IsValid checks if the direction is a known value
func (d Direction) IsValid() bool {
	return d == DirectionLong || d == DirectionShort
}

// DirectionFromString normalizes a direction string (case-insensitive).
// Unrecognized values fall back to long.
func DirectionFromString(value string) Direction {
	if strings.EqualFold(strings.TrimSpace(value), string(DirectionShort)) {
		return DirectionShort
	}
	return DirectionLong
}

// TradeStatus represents the lifecycle state of a trade
type TradeStatus string

const (
	StatusOpen   TradeStatus = "open"
	StatusClosed TradeStatus = "closed"
)

// IsValid checks if the status is a known value
func (s TradeStatus) IsValid() bool {
	return s == StatusOpen || s == StatusClosed
}

// InstrumentType represents the asset class of a traded instrument
type InstrumentType string

const (
	InstrumentStocks  InstrumentType = "stocks"
	InstrumentForex   InstrumentType = "forex"
	InstrumentFutures InstrumentType = "futures"
	InstrumentOptions InstrumentType = "options"
	InstrumentCrypto  InstrumentType = "crypto"
)

// IsValid checks if the instrument type is a known value
func (it InstrumentType) IsValid() bool {
	switch it {
	case InstrumentStocks, InstrumentForex, InstrumentFutures, InstrumentOptions, InstrumentCrypto:
		return true
	}
	return false
}

// Trade is the central journal entity. Price, size and classification fields
// that may be absent are pointer-typed; defaulting happens explicitly in the
// analytics engine, never implicitly during scanning.
type Trade struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	AccountID      string         `json:"account_id"`
	Symbol         string         `json:"symbol"`
	InstrumentType InstrumentType `json:"instrument_type"`
	Direction      Direction      `json:"direction"`
	Quantity       float64        `json:"quantity"`
	Leverage       *float64       `json:"leverage,omitempty"`
	EntryPrice     float64        `json:"entry_price"`
	ExitPrice      *float64       `json:"exit_price,omitempty"`
	EntryTimestamp time.Time      `json:"entry_timestamp"`
	ExitTimestamp  *time.Time     `json:"exit_timestamp,omitempty"`
	Fees           float64        `json:"fees"`
	Commission     float64        `json:"commission"`
	Slippage       float64        `json:"slippage"`
	Tags           []string       `json:"tags"`
	Strategy       *string        `json:"strategy,omitempty"`
	Notes          *string        `json:"notes,omitempty"`

	// Cached derived values. Authoritative for aggregation when present;
	// the analytics engine recomputes on the fly when they are missing.
	ProfitLoss        *float64 `json:"profit_loss,omitempty"`
	ProfitLossPercent *float64 `json:"profit_loss_percent,omitempty"`
	RMultiple         *float64 `json:"r_multiple,omitempty"`

	Status    TradeStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ResolvedTime returns the trade's reference instant for ordering and date
// bucketing: exit timestamp when set, entry timestamp otherwise.
func (t Trade) ResolvedTime() time.Time {
	if t.ExitTimestamp != nil {
		return *t.ExitTimestamp
	}
	return t.EntryTimestamp
}

// IsClosed returns true when the trade is marked closed
func (t Trade) IsClosed() bool {
	return t.Status == StatusClosed
}

// Account owns trades and carries the equity baseline for curve computations
type Account struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	AccountType    string    `json:"account_type"`
	Currency       string    `json:"currency"`
	InitialBalance float64   `json:"initial_balance"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Candle is a single OHLC bar of price context attached to a trade
type Candle struct {
	ID        string    `json:"id"`
	TradeID   string    `json:"trade_id"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    *float64  `json:"volume,omitempty"`
}
