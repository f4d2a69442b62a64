package trades

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rsheldon/tradelog/internal/domain"
)

// TradeRequest is the create/update payload for a trade. Nullable fields are
// pointers so "absent" and "zero" stay distinguishable.
type TradeRequest struct {
	AccountID      string     `json:"account_id"`
	Symbol         string     `json:"symbol"`
	InstrumentType string     `json:"instrument_type"`
	Direction      string     `json:"direction"`
	Quantity       float64    `json:"quantity"`
	Leverage       *float64   `json:"leverage"`
	EntryPrice     float64    `json:"entry_price"`
	ExitPrice      *float64   `json:"exit_price"`
	EntryTimestamp time.Time  `json:"entry_timestamp"`
	ExitTimestamp  *time.Time `json:"exit_timestamp"`
	Fees           float64    `json:"fees"`
	Commission     float64    `json:"commission"`
	Slippage       float64    `json:"slippage"`
	Tags           []string   `json:"tags"`
	Strategy       *string    `json:"strategy"`
	Notes          *string    `json:"notes"`
	RMultiple      *float64   `json:"r_multiple"`
	Status         string     `json:"status"`
}

// Validate checks and normalizes the payload. Status is not cross-validated
// against exit data: a trade marked closed without an exit price is stored
// as-is and simply drops out of aggregates.
func (req *TradeRequest) Validate() error {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" {
		return errors.New("symbol cannot be empty")
	}
	if req.AccountID == "" {
		return errors.New("account_id cannot be empty")
	}
	if req.Quantity <= 0 || math.IsNaN(req.Quantity) || math.IsInf(req.Quantity, 0) {
		return errors.New("quantity must be a positive number")
	}
	if !isFinite(req.EntryPrice) {
		return errors.New("entry_price must be a finite number")
	}
	if req.EntryTimestamp.IsZero() {
		return errors.New("entry_timestamp is required")
	}
	if req.Leverage != nil && *req.Leverage <= 0 {
		return errors.New("leverage must be positive when set")
	}
	if req.Fees < 0 || req.Commission < 0 || req.Slippage < 0 {
		return errors.New("costs cannot be negative")
	}

	if req.InstrumentType == "" {
		req.InstrumentType = string(domain.InstrumentStocks)
	}
	if !domain.InstrumentType(req.InstrumentType).IsValid() {
		return errors.New("unknown instrument_type")
	}

	if req.Status == "" {
		req.Status = string(domain.StatusOpen)
	}
	if !domain.TradeStatus(req.Status).IsValid() {
		return errors.New("status must be open or closed")
	}
	return nil
}

// ToDomain builds the domain trade owned by the given user. Identity and
// derived metric fields are filled in by the service and repository.
func (req TradeRequest) ToDomain(userID string) domain.Trade {
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	return domain.Trade{
		UserID:         userID,
		AccountID:      req.AccountID,
		Symbol:         req.Symbol,
		InstrumentType: domain.InstrumentType(req.InstrumentType),
		Direction:      domain.DirectionFromString(req.Direction),
		Quantity:       req.Quantity,
		Leverage:       req.Leverage,
		EntryPrice:     req.EntryPrice,
		ExitPrice:      req.ExitPrice,
		EntryTimestamp: req.EntryTimestamp,
		ExitTimestamp:  req.ExitTimestamp,
		Fees:           req.Fees,
		Commission:     req.Commission,
		Slippage:       req.Slippage,
		Tags:           tags,
		Strategy:       req.Strategy,
		Notes:          req.Notes,
		RMultiple:      req.RMultiple,
		Status:         domain.TradeStatus(req.Status),
	}
}

// ListFilter narrows trade listings
type ListFilter struct {
	AccountID string
	Status    string
	Symbol    string
	Strategy  string
	Start     *time.Time
	End       *time.Time
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
