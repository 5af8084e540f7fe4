package market

import (
	"errors"
	"testing"
	"time"
)

func validCandles(n int) []Candle {
	candles := make([]Candle, n)
	base := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	for i := range candles {
		candles[i] = Candle{
			Time:   base.Add(time.Duration(i) * time.Hour),
			Open:   100,
			High:   101,
			Low:    99,
			Close:  100.5,
			Volume: 1000,
		}
	}
	return candles
}

func TestValidateSeries(t *testing.T) {
	if err := ValidateSeries(validCandles(5)); err != nil {
		t.Errorf("Valid series should pass, got %v", err)
	}

	if err := ValidateSeries(nil); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("Expected ErrEmptySeries, got %v", err)
	}

	unordered := validCandles(5)
	unordered[2].Time = unordered[1].Time
	if err := ValidateSeries(unordered); !errors.Is(err, ErrUnorderedSeries) {
		t.Errorf("Equal timestamps should fail ordering, got %v", err)
	}

	badHigh := validCandles(5)
	badHigh[3].High = 100.2 // below the close
	if err := ValidateSeries(badHigh); !errors.Is(err, ErrMalformedCandle) {
		t.Errorf("High below body should fail, got %v", err)
	}

	badLow := validCandles(5)
	badLow[3].Low = 100.2 // above the open
	if err := ValidateSeries(badLow); !errors.Is(err, ErrMalformedCandle) {
		t.Errorf("Low above body should fail, got %v", err)
	}
}

func TestTrueRanges(t *testing.T) {
	candles := validCandles(3)
	candles[1].High = 105 // gap up against the prior close of 100.5
	candles[1].Low = 103
	candles[1].Open = 103.5
	candles[1].Close = 104

	tr := TrueRanges(candles)

	if tr[0] != 2 {
		t.Errorf("First bar should use high-low, got %f", tr[0])
	}
	if tr[1] != 4.5 {
		t.Errorf("Gap bar should use |high - prevClose|, got %f", tr[1])
	}
	// Bar 2 dropped back: |low - prevClose| = |99 - 104| dominates.
	if tr[2] != 5 {
		t.Errorf("Drop bar should use |low - prevClose|, got %f", tr[2])
	}

	if TrueRanges(nil) != nil {
		t.Error("Empty input should yield nil")
	}
}

func TestTypicalPrice(t *testing.T) {
	c := Candle{High: 103, Low: 97, Close: 100}
	if got := c.TypicalPrice(); got != 100 {
		t.Errorf("TypicalPrice = %f", got)
	}
}

func TestNeutralIntermarket(t *testing.T) {
	data := NeutralIntermarket()
	if data.SPYTrend != TrendNeutral || data.DXYTrend != TrendNeutral {
		t.Errorf("Neutral summary should be all-neutral, got %+v", data)
	}
}
