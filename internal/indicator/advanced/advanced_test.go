package advanced

import (
	"math"
	"testing"
	"time"

	"signal-fusion/internal/market"
	"signal-fusion/internal/series"
)

func candleRamp(n int, closeAt func(i int) float64, halfRange float64) []market.Candle {
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
			Volume: 1000,
		}
	}
	return candles
}

func constSeries(n int, v float64) series.Series {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = v
	}
	return series.FromValues(vals)
}

func rampSeries(n int, start, step float64) series.Series {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = start + float64(i)*step
	}
	return series.FromValues(vals)
}

// TestCalculateSuperSmootherConstant verifies the filter passes a constant
// input through unchanged (the recursion coefficients sum to 1).
func TestCalculateSuperSmootherConstant(t *testing.T) {
	ss := CalculateSuperSmoother(constSeries(30, 100), 10)

	if !ss[0].Defined || ss[0].Value != 100 || ss[1].Value != 100 {
		t.Error("First two positions should pass the raw input through")
	}
	for i, s := range ss {
		if !s.Defined {
			t.Fatalf("ss[%d] should be defined", i)
		}
		if math.Abs(s.Value-100) > 1e-9 {
			t.Errorf("ss[%d] = %f, want 100 on constant input", i, s.Value)
		}
	}
}

// TestCalculateSuperSmootherShortInput verifies inputs under 3 samples stay
// undefined.
func TestCalculateSuperSmootherShortInput(t *testing.T) {
	ss := CalculateSuperSmoother(constSeries(2, 100), 10)
	for i, s := range ss {
		if s.Defined {
			t.Errorf("ss[%d] should be undefined for a 2-sample input", i)
		}
	}
}

// TestCalculateTSIDefaultPeriodsUndefined pins the warm-up interaction at the
// production periods: the inner EMA(25) only seeds at index 24, past the
// outer EMA(13)'s seed window, so the outer chain never finds a defined
// sample and the whole line stays undefined for every input length.
func TestCalculateTSIDefaultPeriodsUndefined(t *testing.T) {
	result := CalculateTSI(rampSeries(200, 100, 1), 25, 13, 7)

	for i := range result.TSI {
		if result.TSI[i].Defined || result.Signal[i].Defined || result.Histogram[i].Defined {
			t.Fatalf("Position %d should be undefined at the default periods", i)
		}
	}
}

// TestCalculateTSISign verifies the oscillator math with a long period short
// enough that the inner EMA seeds inside the outer EMA's window.
func TestCalculateTSISign(t *testing.T) {
	rising := CalculateTSI(rampSeries(60, 100, 1), 5, 13, 7)
	if v := rising.TSI.Last(); !v.Defined || v.Value <= 0 {
		t.Errorf("TSI on a rising series should be positive, got %v", v)
	}
	// Steady +1 momentum makes smoothed and absolute momentum equal.
	if v := rising.TSI.Last(); math.Abs(v.Value-100) > 1e-9 {
		t.Errorf("Uniform momentum should saturate TSI at 100, got %f", v.Value)
	}

	falling := CalculateTSI(rampSeries(60, 200, -1), 5, 13, 7)
	if v := falling.TSI.Last(); !v.Defined || v.Value >= 0 {
		t.Errorf("TSI on a falling series should be negative, got %v", v)
	}
}

// TestCalculateTSIInsufficientData verifies the warm-up gate.
func TestCalculateTSIInsufficientData(t *testing.T) {
	result := CalculateTSI(rampSeries(30, 100, 1), 25, 13, 7)
	if result.TSI.Last().Defined {
		t.Error("TSI should be undefined below the warm-up window")
	}
}

// TestCalculateAdaptiveRSIDefaultPeriodsUndefined pins the same warm-up
// interaction for the adaptive RSI: raw values only exist from index 14, past
// the smoothing EMA(5)'s seed window, so the smoothed output stays undefined
// at the production periods.
func TestCalculateAdaptiveRSIDefaultPeriodsUndefined(t *testing.T) {
	out := CalculateAdaptiveRSI(rampSeries(200, 100, 1), 14, 5)

	for i, s := range out {
		if s.Defined {
			t.Fatalf("Position %d should be undefined at the default periods", i)
		}
	}
}

// TestCalculateAdaptiveRSIExtremes verifies one-sided series saturate toward
// the RSI extremes, with a base period short enough that the smoothing EMA
// seeds on defined samples.
func TestCalculateAdaptiveRSIExtremes(t *testing.T) {
	up := CalculateAdaptiveRSI(rampSeries(60, 100, 1), 4, 5).Last()
	if !up.Defined || up.Value < 90 {
		t.Errorf("Adaptive RSI on a pure uptrend should be near 100, got %v", up)
	}

	down := CalculateAdaptiveRSI(rampSeries(60, 200, -1), 4, 5).Last()
	if !down.Defined || down.Value > 10 {
		t.Errorf("Adaptive RSI on a pure downtrend should be near 0, got %v", down)
	}
}

// TestCalculateAdaptiveRSIDegenerateVolatility verifies an all-zero price
// series (zero rolling mean, so the coefficient of variation is not a number)
// neither panics nor leaks a defined garbage value.
func TestCalculateAdaptiveRSIDegenerateVolatility(t *testing.T) {
	cv := rollingCV(constSeries(60, 0), 14)
	if !math.IsNaN(cv[20]) {
		t.Fatalf("Zero-mean window should yield a NaN coefficient, got %f", cv[20])
	}

	out := CalculateAdaptiveRSI(constSeries(60, 0), 14, 5)
	for i, s := range out {
		if s.Defined {
			t.Fatalf("Position %d should stay undefined on degenerate input", i)
		}
	}
}

// TestCalculateSqueezeOn verifies compressed closes inside wide candle ranges
// turn the squeeze on without firing.
func TestCalculateSqueezeOn(t *testing.T) {
	candles := candleRamp(40, func(i int) float64 { return 100 }, 5)

	squeeze := CalculateSqueeze(candles, 20, 20, 2.0, 1.5)

	if !squeeze.On {
		t.Error("Flat closes inside wide ranges should compress the bands")
	}
	if squeeze.Firing != FiringNone {
		t.Errorf("Flat momentum should not fire, got %s", squeeze.Firing)
	}
}

// TestCalculateSqueezeFiresLong verifies an accelerating uptrend with tight
// candle ranges releases long.
func TestCalculateSqueezeFiresLong(t *testing.T) {
	candles := candleRamp(60, func(i int) float64 { return 100 + 0.02*float64(i)*float64(i) }, 0.1)

	squeeze := CalculateSqueeze(candles, 20, 20, 2.0, 1.5)

	if squeeze.On {
		t.Error("Wide close dispersion against tight ranges should not compress")
	}
	if squeeze.Firing != FiringLong {
		t.Errorf("Accelerating uptrend should fire long, got %s", squeeze.Firing)
	}
	if v := squeeze.Histogram.Last(); !v.Defined || v.Value <= 0 {
		t.Errorf("Momentum histogram should be positive, got %v", v)
	}
}

// TestCalculateSqueezeInsufficientData verifies the neutral default.
func TestCalculateSqueezeInsufficientData(t *testing.T) {
	squeeze := CalculateSqueeze(candleRamp(15, func(i int) float64 { return 100 }, 1), 20, 20, 2.0, 1.5)
	if squeeze.On || squeeze.Firing != FiringNone {
		t.Errorf("Short windows should return the neutral default, got on=%v firing=%s",
			squeeze.On, squeeze.Firing)
	}
}

// TestDetectMarketStructureBOS builds three descending swing highs and a
// final close breaking above the prior-to-last one.
func TestDetectMarketStructureBOS(t *testing.T) {
	candles := candleRamp(50, func(i int) float64 { return 100 }, 1)
	candles[10].High = 106
	candles[25].High = 104
	candles[35].High = 103
	candles[49].Close = 105
	candles[49].High = 105.5

	ms := DetectMarketStructure(candles, 20)

	if !ms.BOSDetected || ms.BOSDirection != BreakBullish {
		t.Errorf("Expected bullish BOS, got detected=%v direction=%s", ms.BOSDetected, ms.BOSDirection)
	}
	if ms.LastSwingHigh != 103 {
		t.Errorf("Expected last swing high 103, got %f", ms.LastSwingHigh)
	}
	if ms.TrendBias != BiasNeutral {
		t.Errorf("Descending highs with flat lows should stay neutral, got %s", ms.TrendBias)
	}
	if !ms.StructureConfirmed {
		t.Error("A BOS alone should confirm structure")
	}
}

// TestDetectMarketStructureCHoCH verifies a break against the prevailing
// bias flags a change of character.
func TestDetectMarketStructureCHoCH(t *testing.T) {
	candles := candleRamp(50, func(i int) float64 { return 100 }, 1)
	// Descending swing highs establish a bearish bias together with
	// descending swing lows.
	candles[10].High = 110
	candles[25].High = 108
	candles[35].High = 106
	candles[12].Low = 95
	candles[27].Low = 93
	candles[37].Low = 91
	// Final close breaks above the prior-to-last swing high.
	candles[49].Close = 109
	candles[49].High = 109.5

	ms := DetectMarketStructure(candles, 20)

	if ms.TrendBias != BiasBearish {
		t.Fatalf("Expected bearish bias, got %s", ms.TrendBias)
	}
	if !ms.CHoCHDetected || ms.CHoCHDirection != BreakBullish {
		t.Errorf("Bullish break against bearish bias should be a CHoCH, got detected=%v direction=%s",
			ms.CHoCHDetected, ms.CHoCHDirection)
	}
}

// TestDetectMarketStructureInsufficientData verifies the neutral default.
func TestDetectMarketStructureInsufficientData(t *testing.T) {
	ms := DetectMarketStructure(candleRamp(10, func(i int) float64 { return 100 }, 1), 20)

	if ms.BOSDetected || ms.BOSDirection != BreakNone || ms.TrendBias != BiasNeutral {
		t.Errorf("Short windows should return the neutral default, got %+v", ms)
	}
	if ms.StructureConfirmed {
		t.Error("Short windows should not confirm structure")
	}
}

// TestCalculateSessionFilter pins instants in each UTC session.
func TestCalculateSessionFilter(t *testing.T) {
	cases := []struct {
		name        string
		at          time.Time
		session     Session
		highVol     bool
		shouldTrade bool
	}{
		{"asian quiet", time.Date(2025, 3, 5, 0, 30, 0, 0, time.UTC), SessionAsian, false, true},
		{"asian active", time.Date(2025, 3, 5, 3, 0, 0, 0, time.UTC), SessionAsian, true, true},
		{"london", time.Date(2025, 3, 5, 9, 30, 0, 0, time.UTC), SessionLondon, true, true},
		{"overlap", time.Date(2025, 3, 5, 13, 0, 0, 0, time.UTC), SessionOverlap, true, true},
		{"newyork late", time.Date(2025, 3, 5, 20, 30, 0, 0, time.UTC), SessionNewYork, false, true},
		{"off hours", time.Date(2025, 3, 5, 22, 0, 0, 0, time.UTC), SessionOffHours, false, false},
		{"weekend", time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC), SessionLondon, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := CalculateSessionFilter(tc.at)
			if f.CurrentSession != tc.session {
				t.Errorf("session = %s, want %s", f.CurrentSession, tc.session)
			}
			if f.IsHighVolatilitySession != tc.highVol {
				t.Errorf("highVol = %v, want %v", f.IsHighVolatilitySession, tc.highVol)
			}
			if f.ShouldTrade != tc.shouldTrade {
				t.Errorf("shouldTrade = %v, want %v", f.ShouldTrade, tc.shouldTrade)
			}
		})
	}
}

// TestCalculateSessionFilterOpenClock verifies the NY-open minute counter and
// the first/last hour flags.
func TestCalculateSessionFilterOpenClock(t *testing.T) {
	f := CalculateSessionFilter(time.Date(2025, 3, 5, 14, 30, 0, 0, time.UTC))
	if f.MinutesSinceOpen != 30 {
		t.Errorf("MinutesSinceOpen = %d, want 30", f.MinutesSinceOpen)
	}
	if !f.IsFirstHour {
		t.Error("14:30 UTC should be in the first NY hour")
	}

	f = CalculateSessionFilter(time.Date(2025, 3, 5, 20, 15, 0, 0, time.UTC))
	if !f.IsLastHour {
		t.Error("20:15 UTC should be in the last hour")
	}
	if f.MinutesSinceOpen != 375 {
		t.Errorf("MinutesSinceOpen = %d, want 375", f.MinutesSinceOpen)
	}

	// Before the open the counter stays at zero.
	f = CalculateSessionFilter(time.Date(2025, 3, 5, 10, 45, 0, 0, time.UTC))
	if f.MinutesSinceOpen != 0 || f.IsFirstHour {
		t.Errorf("Pre-open should report 0 minutes, got %d", f.MinutesSinceOpen)
	}
}

// TestCalculateVolatilityThresholdExpansion verifies widening ranges late in
// the window flag expansion and size the sweep threshold.
func TestCalculateVolatilityThresholdExpansion(t *testing.T) {
	candles := candleRamp(40, func(i int) float64 { return 100 }, 1)
	for i := 36; i < 40; i++ {
		hr := float64(i-34) * 1.0
		candles[i].High = 100 + hr
		candles[i].Low = 100 - hr
	}

	vt := CalculateVolatilityThreshold(candles, 14)

	if !vt.IsVolatilityExpanding {
		t.Error("Widening ranges should flag expansion")
	}
	if math.Abs(vt.MinSweepSize-vt.CurrentATR*0.5) > 1e-9 {
		t.Errorf("MinSweepSize %f should be half the ATR %f", vt.MinSweepSize, vt.CurrentATR)
	}
	if vt.ATRMultiple <= 1 {
		t.Errorf("Recent expansion should lift the ATR multiple above 1, got %f", vt.ATRMultiple)
	}
}

// TestCalculateVolatilityThresholdSteady verifies constant ranges do not
// flag expansion.
func TestCalculateVolatilityThresholdSteady(t *testing.T) {
	vt := CalculateVolatilityThreshold(candleRamp(40, func(i int) float64 { return 100 }, 1), 14)

	if vt.IsVolatilityExpanding {
		t.Error("Constant ranges should not flag expansion")
	}
	if math.Abs(vt.CurrentATR-2) > 1e-9 {
		t.Errorf("Expected ATR 2 on constant 2-point ranges, got %f", vt.CurrentATR)
	}
	if math.Abs(vt.NormalizedVolatility-2) > 1e-9 {
		t.Errorf("Expected normalized volatility 2%%, got %f", vt.NormalizedVolatility)
	}
}

// TestCalculateVolatilityThresholdInsufficientData verifies the neutral
// default.
func TestCalculateVolatilityThresholdInsufficientData(t *testing.T) {
	vt := CalculateVolatilityThreshold(candleRamp(10, func(i int) float64 { return 100 }, 1), 14)

	if vt.CurrentATR != 0 || vt.ATRMultiple != 1 || vt.NormalizedVolatility != 1 {
		t.Errorf("Expected neutral default, got %+v", vt)
	}
}

// TestCalculateTimeframeAlignment verifies full and majority agreement.
func TestCalculateTimeframeAlignment(t *testing.T) {
	rising := candleRamp(30, func(i int) float64 { return 100 + float64(i) }, 0.5)

	full := CalculateTimeframeAlignment(rising, rising, rising)
	if !full.IsAligned || full.Recommendation != RecommendLong {
		t.Errorf("Three rising windows should align long, got aligned=%v rec=%s",
			full.IsAligned, full.Recommendation)
	}
	if full.AlignmentScore != 1 {
		t.Errorf("Expected score 1, got %f", full.AlignmentScore)
	}

	// A window too short to read stays neutral; 2-of-3 still recommends.
	short := candleRamp(10, func(i int) float64 { return 100 }, 0.5)
	majority := CalculateTimeframeAlignment(rising, rising, short)
	if majority.IsAligned {
		t.Error("A neutral window should break full alignment")
	}
	if majority.Recommendation != RecommendLong {
		t.Errorf("2-of-3 bullish should still recommend long, got %s", majority.Recommendation)
	}
	if majority.HTFTrend != BiasNeutral {
		t.Errorf("Short HTF window should be neutral, got %s", majority.HTFTrend)
	}

	falling := candleRamp(30, func(i int) float64 { return 200 - float64(i) }, 0.5)
	mixed := CalculateTimeframeAlignment(rising, falling, short)
	if mixed.Recommendation != RecommendWait {
		t.Errorf("Split trends should wait, got %s", mixed.Recommendation)
	}
}

// TestCalculateEnhancedSignalScore verifies the weighted total and the
// confirmation gate.
func TestCalculateEnhancedSignalScore(t *testing.T) {
	full := CalculateEnhancedSignalScore(0.9, true, true, true, true, true)
	if math.Abs(full.TotalScore-97.5) > 1e-9 {
		t.Errorf("TotalScore = %f, want 97.5", full.TotalScore)
	}
	if full.MetConfirmations != 6 || !full.PassesThreshold {
		t.Errorf("All-true inputs should pass with 6 confirmations, got %d passes=%v",
			full.MetConfirmations, full.PassesThreshold)
	}
	if math.Abs(full.Confidence-0.975) > 1e-9 {
		t.Errorf("Confidence = %f, want 0.975", full.Confidence)
	}

	weak := CalculateEnhancedSignalScore(0.5, true, false, false, false, false)
	if weak.PassesThreshold {
		t.Error("One confirmation should not pass the gate")
	}
	if weak.MetConfirmations != 1 {
		t.Errorf("MetConfirmations = %d, want 1", weak.MetConfirmations)
	}
	if math.Abs(weak.TotalScore-32.5) > 1e-9 {
		t.Errorf("TotalScore = %f, want 32.5", weak.TotalScore)
	}

	// The technical input clamps to [0, 1] before scaling.
	clamped := CalculateEnhancedSignalScore(1.8, false, false, false, false, false)
	if clamped.TechnicalScore != 100 {
		t.Errorf("TechnicalScore = %f, want 100", clamped.TechnicalScore)
	}
}

// TestLatestNeutralOscillators verifies the bundle reports the oscillators
// at their neutral values even on a long series: at the production periods
// the TSI chain and the smoothed adaptive RSI never warm up, so the
// undefined readings surface as 0 and 50.
func TestLatestNeutralOscillators(t *testing.T) {
	candles := candleRamp(120, func(i int) float64 { return 100 + float64(i) }, 0.5)
	now := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)

	v := Latest(candles, now)

	if v.TSI != 0 || v.TSISignal != 0 || v.TSIHistogram != 0 {
		t.Errorf("TSI readings should report neutral 0, got %f/%f/%f",
			v.TSI, v.TSISignal, v.TSIHistogram)
	}
	if v.AdaptiveRSI != 50 {
		t.Errorf("AdaptiveRSI should report neutral 50, got %f", v.AdaptiveRSI)
	}
}

// TestLatestDefaults verifies the bundle degrades to neutral values on a
// short series.
func TestLatestDefaults(t *testing.T) {
	candles := candleRamp(5, func(i int) float64 { return 100 }, 1)
	now := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)

	v := Latest(candles, now)

	if v.AdaptiveRSI != 50 {
		t.Errorf("AdaptiveRSI should default to 50, got %f", v.AdaptiveRSI)
	}
	if v.SqueezeFiring != FiringNone {
		t.Errorf("SqueezeFiring should default to none, got %s", v.SqueezeFiring)
	}
	if v.VolatilityThreshold.ATRMultiple != 1 {
		t.Errorf("ATRMultiple should default to 1, got %f", v.VolatilityThreshold.ATRMultiple)
	}
	if v.SessionFilter.CurrentSession != SessionLondon {
		t.Errorf("Session should reflect the given instant, got %s", v.SessionFilter.CurrentSession)
	}
}
