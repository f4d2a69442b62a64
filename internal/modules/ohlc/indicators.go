package ohlc

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"github.com/rsheldon/tradelog/internal/domain"
)

// Supported overlay names
const (
	IndicatorSMA = "sma"
	IndicatorEMA = "ema"
	IndicatorRSI = "rsi"
)

// ComputeIndicator runs one overlay over a candle series' closes. The result
// is aligned with the input; warmup positions come back as nulls.
func ComputeIndicator(name string, period int, candles []domain.Candle) (*IndicatorSeries, error) {
	if period < 2 {
		return nil, fmt.Errorf("indicator period must be at least 2, got %d", period)
	}
	if len(candles) < period {
		return nil, fmt.Errorf("need at least %d candles for %s(%d), have %d",
			period, name, period, len(candles))
	}

	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
	}

	var raw []float64
	warmup := period - 1
	switch name {
	case IndicatorSMA:
		raw = talib.Sma(closes, period)
	case IndicatorEMA:
		raw = talib.Ema(closes, period)
	case IndicatorRSI:
		// RSI needs one extra bar: its first value covers period changes.
		raw = talib.Rsi(closes, period)
		warmup = period
	default:
		return nil, fmt.Errorf("unknown indicator %q", name)
	}

	values := make([]*float64, len(raw))
	for i, v := range raw {
		if i < warmup || math.IsNaN(v) {
			continue
		}
		value := v
		values[i] = &value
	}

	return &IndicatorSeries{Name: name, Period: period, Values: values}, nil
}
