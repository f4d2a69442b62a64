package ohlc

import (
	"errors"
	"math"
	"time"
)

// CandleRequest is one OHLC bar in an upload payload
type CandleRequest struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    *float64  `json:"volume"`
}

// Validate checks a single bar
func (req CandleRequest) Validate() error {
	if req.Timestamp.IsZero() {
		return errors.New("candle timestamp is required")
	}
	for _, v := range []float64{req.Open, req.High, req.Low, req.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("candle prices must be finite")
		}
	}
	if req.High < req.Low {
		return errors.New("candle high cannot be below its low")
	}
	return nil
}

// IndicatorSeries is one computed overlay aligned with the candle series.
// Warmup positions where the indicator is undefined are NaN in talib's
// output and serialized as nulls.
type IndicatorSeries struct {
	Name   string     `json:"name"`
	Period int        `json:"period"`
	Values []*float64 `json:"values"`
}
