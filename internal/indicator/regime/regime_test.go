package regime

import (
	"math"
	"testing"
	"time"

	"signal-fusion/internal/market"
)

func syntheticCandles(n int, closeAt func(i int) float64, halfRange, volume float64) []market.Candle {
	candles := make([]market.Candle, n)
	base := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	for i := range candles {
		c := closeAt(i)
		candles[i] = market.Candle{
			Time:   base.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c + halfRange,
			Low:    c - halfRange,
			Close:  c,
			Volume: volume,
		}
	}
	return candles
}

// TestClassifyRisingTrend verifies a consistently rising series produces a
// strong ADX. The smoothed true range ranks at the top of the raw
// distribution on a clean trend, so the strong-ADX branch resolves to the
// volatile regime and trading hinges on the volume z-score.
func TestClassifyRisingTrend(t *testing.T) {
	candles := syntheticCandles(60, func(i int) float64 { return 100 + float64(i) }, 0.5, 1000)

	snap := NewClassifier(14).Classify(candles)

	if snap.ADX <= 25 {
		t.Errorf("Expected ADX > 25 on a clean rising trend, got %f", snap.ADX)
	}
	if snap.Regime != Volatile {
		t.Errorf("Expected volatile (ADX high, ATR percentile maxed), got %s", snap.Regime)
	}
	if snap.ShouldTrade {
		t.Error("Volatile regime without a volume spike should veto trading")
	}

	// A closing volume spike lifts the z-score above 1 and unblocks trading.
	candles[len(candles)-1].Volume = 3000
	snap = NewClassifier(14).Classify(candles)
	if !snap.ShouldTrade {
		t.Errorf("Volatile regime with volume z-score %f should allow trading", snap.VolumeZScore)
	}
}

// TestClassifyFlatSeries verifies a flat series stays below the trend
// threshold and resolves to a no-trade regime.
func TestClassifyFlatSeries(t *testing.T) {
	candles := syntheticCandles(60, func(i int) float64 {
		// Noise well under 0.2% of price.
		return 100 + 0.05*math.Sin(float64(i))
	}, 0.05, 1000)

	snap := NewClassifier(14).Classify(candles)

	if snap.ADX >= 25 {
		t.Errorf("Expected ADX < 25 on a flat series, got %f", snap.ADX)
	}
	if snap.Regime != Ranging && snap.Regime != Consolidating {
		t.Errorf("Expected ranging or consolidating, got %s", snap.Regime)
	}
	if snap.ShouldTrade {
		t.Error("Flat series should not allow trading")
	}
}

// TestClassifyInsufficientData verifies the neutral default below the
// minimum window.
func TestClassifyInsufficientData(t *testing.T) {
	candles := syntheticCandles(10, func(i int) float64 { return 100 }, 0.5, 1000)

	snap := NewClassifier(14).Classify(candles)

	if snap.Regime != Consolidating {
		t.Errorf("Expected consolidating default, got %s", snap.Regime)
	}
	if snap.ShouldTrade {
		t.Error("Insufficient data must veto trading")
	}
	if snap.ATRPercentile != 50 {
		t.Errorf("Expected neutral ATR percentile 50, got %f", snap.ATRPercentile)
	}
}

// TestEstimateDeltaSigns verifies cumulative delta tracks the trend
// direction of the series.
func TestEstimateDeltaSigns(t *testing.T) {
	estimator := NewCandleShapeEstimator()

	rising := make([]market.Candle, 30)
	falling := make([]market.Candle, 30)
	base := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	for i := range rising {
		// Bullish candles closing at the high of the bar.
		c := 100 + float64(i)
		rising[i] = market.Candle{Time: base.Add(time.Duration(i) * time.Hour), Open: c - 1, High: c, Low: c - 1.5, Close: c, Volume: 500}
		// Bearish candles closing at the low of the bar.
		d := 130 - float64(i)
		falling[i] = market.Candle{Time: base.Add(time.Duration(i) * time.Hour), Open: d + 1, High: d + 1.5, Low: d, Close: d, Volume: 500}
	}

	if got := estimator.Estimate(rising).CumulativeDelta; got <= 0 {
		t.Errorf("Rising series should have positive cumulative delta, got %f", got)
	}
	if got := estimator.Estimate(falling).CumulativeDelta; got >= 0 {
		t.Errorf("Falling series should have negative cumulative delta, got %f", got)
	}
}

// TestEstimateVWAPBands verifies band ordering whenever volume is present.
func TestEstimateVWAPBands(t *testing.T) {
	candles := syntheticCandles(40, func(i int) float64 {
		return 100 + 3*math.Sin(float64(i)/3)
	}, 1.0, 750)

	flow := NewCandleShapeEstimator().Estimate(candles)

	if !(flow.VWAPLower < flow.VWAP && flow.VWAP < flow.VWAPUpper) {
		t.Errorf("Expected lower < vwap < upper, got %f / %f / %f",
			flow.VWAPLower, flow.VWAP, flow.VWAPUpper)
	}
}

// TestEstimateClusters verifies the cluster cap and dominance flag.
func TestEstimateClusters(t *testing.T) {
	candles := syntheticCandles(50, func(i int) float64 {
		return 100 + float64(i%13)
	}, 0.5, 100)

	flow := NewCandleShapeEstimator().Estimate(candles)

	if len(flow.VolumeClusters) > 5 {
		t.Errorf("Expected at most 5 clusters, got %d", len(flow.VolumeClusters))
	}
	for i := 1; i < len(flow.VolumeClusters); i++ {
		if flow.VolumeClusters[i].Volume > flow.VolumeClusters[i-1].Volume {
			t.Error("Clusters should be sorted by volume descending")
		}
	}
}

// TestEstimateInsufficientData verifies the neutral default.
func TestEstimateInsufficientData(t *testing.T) {
	flow := NewCandleShapeEstimator().Estimate(syntheticCandles(3, func(i int) float64 { return 100 }, 0.5, 100))

	if flow.PressureRatio != 0.5 {
		t.Errorf("Expected neutral pressure ratio 0.5, got %f", flow.PressureRatio)
	}
	if flow.CumulativeDelta != 0 {
		t.Errorf("Expected zero delta, got %f", flow.CumulativeDelta)
	}
}
