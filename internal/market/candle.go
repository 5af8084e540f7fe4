package market

import (
	"errors"
	"fmt"
	"time"

	"signal-fusion/internal/series"
)

// Candle is a single OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// TypicalPrice returns (high + low + close) / 3.
func (c Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3
}

// Series validation errors. A violation means the caller broke the candle
// contract; indicators never raise these for merely short series.
var (
	ErrEmptySeries     = errors.New("empty candle series")
	ErrUnorderedSeries = errors.New("candle series is not in ascending time order")
	ErrMalformedCandle = errors.New("candle violates high/low bounds")
)

// ValidateSeries checks the caller contract: at least one candle, ascending
// timestamps, and high >= max(open, close) >= min(open, close) >= low on
// every bar. Short-but-valid series are fine; every indicator degrades to a
// neutral default below its minimum window.
func ValidateSeries(candles []Candle) error {
	if len(candles) == 0 {
		return ErrEmptySeries
	}
	for i, c := range candles {
		if i > 0 && !candles[i-1].Time.Before(c.Time) {
			return fmt.Errorf("%w: index %d (%s) not after index %d (%s)",
				ErrUnorderedSeries, i, c.Time.Format(time.RFC3339), i-1, candles[i-1].Time.Format(time.RFC3339))
		}
		body := c.Open
		if c.Close > body {
			body = c.Close
		}
		if c.High < body {
			return fmt.Errorf("%w: index %d high %.8f below body", ErrMalformedCandle, i, c.High)
		}
		body = c.Open
		if c.Close < body {
			body = c.Close
		}
		if c.Low > body {
			return fmt.Errorf("%w: index %d low %.8f above body", ErrMalformedCandle, i, c.Low)
		}
	}
	return nil
}

// Closes extracts the close prices.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// CloseSeries extracts the close prices as a defined sample series.
func CloseSeries(candles []Candle) series.Series {
	return series.FromValues(Closes(candles))
}

// Volumes extracts the volumes.
func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}

// TrueRanges computes the per-bar true range: the largest of high-low,
// |high - prevClose| and |low - prevClose|. The first bar uses high-low.
func TrueRanges(candles []Candle) []float64 {
	if len(candles) == 0 {
		return nil
	}
	tr := make([]float64, len(candles))
	tr[0] = candles[0].High - candles[0].Low
	for i := 1; i < len(candles); i++ {
		hl := candles[i].High - candles[i].Low
		hc := abs(candles[i].High - candles[i-1].Close)
		lc := abs(candles[i].Low - candles[i-1].Close)
		tr[i] = max3(hl, hc, lc)
	}
	return tr
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
