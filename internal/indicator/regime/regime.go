package regime

import (
	"fmt"
	"math"
	"sort"

	"signal-fusion/internal/indicator/zerolag"
	"signal-fusion/internal/market"
	"signal-fusion/internal/series"
)

// Regime classifies the prevailing market condition.
type Regime string

const (
	TrendingUp    Regime = "trending_up"
	TrendingDown  Regime = "trending_down"
	Ranging       Regime = "ranging"
	Volatile      Regime = "volatile"
	Consolidating Regime = "consolidating"
)

// VolatilityLevel buckets the ATR percentile.
type VolatilityLevel string

const (
	VolatilityLow     VolatilityLevel = "low"
	VolatilityMedium  VolatilityLevel = "medium"
	VolatilityHigh    VolatilityLevel = "high"
	VolatilityExtreme VolatilityLevel = "extreme"
)

// Snapshot is the regime read for one candle window, derived fresh per call.
type Snapshot struct {
	Regime          Regime          `json:"regime"`
	ADX             float64         `json:"adx"`
	ATRPercentile   float64         `json:"atr_percentile"`
	VolumeZScore    float64         `json:"volume_zscore"`
	TrendStrength   float64         `json:"trend_strength"`
	VolatilityLevel VolatilityLevel `json:"volatility_level"`
	ShouldTrade     bool            `json:"should_trade"`
	Reason          string          `json:"reason"`
}

// Classifier computes trend-strength and regime classification from
// directional movement.
type Classifier struct {
	period int
}

// NewClassifier creates a regime classifier. Period defaults to 14.
func NewClassifier(period int) *Classifier {
	if period <= 0 {
		period = 14
	}
	return &Classifier{period: period}
}

// Classify derives the regime snapshot for the candle window. Windows
// shorter than twice the period return the consolidating no-trade default.
func (c *Classifier) Classify(candles []market.Candle) Snapshot {
	if len(candles) < c.period*2 {
		return Snapshot{
			Regime:          Consolidating,
			ATRPercentile:   50,
			VolatilityLevel: VolatilityMedium,
			ShouldTrade:     false,
			Reason:          "Insufficient data for regime detection",
		}
	}

	plusDM := make(series.Series, 0, len(candles)-1)
	minusDM := make(series.Series, 0, len(candles)-1)
	trueRange := make(series.Series, 0, len(candles)-1)

	for i := 1; i < len(candles); i++ {
		highDiff := candles[i].High - candles[i-1].High
		lowDiff := candles[i-1].Low - candles[i].Low

		pdm, mdm := 0.0, 0.0
		if highDiff > lowDiff && highDiff > 0 {
			pdm = highDiff
		}
		if lowDiff > highDiff && lowDiff > 0 {
			mdm = lowDiff
		}
		plusDM = append(plusDM, series.Of(pdm))
		minusDM = append(minusDM, series.Of(mdm))

		tr := math.Max(candles[i].High-candles[i].Low,
			math.Max(math.Abs(candles[i].High-candles[i-1].Close), math.Abs(candles[i].Low-candles[i-1].Close)))
		trueRange = append(trueRange, series.Of(tr))
	}

	smoothPlusDM := zerolag.CalculateWilderSmoothing(plusDM, c.period)
	smoothMinusDM := zerolag.CalculateWilderSmoothing(minusDM, c.period)
	smoothTR := zerolag.CalculateWilderSmoothing(trueRange, c.period)

	adx := c.calculateADX(smoothPlusDM, smoothMinusDM, smoothTR)
	atrPercentile := c.atrPercentile(smoothTR, trueRange)
	volumeZScore := volumeZScore(candles)

	closes := market.Closes(candles)
	currentPrice := closes[len(closes)-1]
	priceAboveSMA := currentPrice > tailMean(closes, 20)

	snapshot := Snapshot{
		ADX:           adx,
		ATRPercentile: atrPercentile,
		VolumeZScore:  volumeZScore,
		TrendStrength: adx,
	}

	switch {
	case adx < 20 && atrPercentile < 30:
		snapshot.Regime = Consolidating
		snapshot.ShouldTrade = false
		snapshot.Reason = "Low ADX + Low volatility = Consolidation. Wait for breakout."
	case adx < 20:
		snapshot.Regime = Ranging
		snapshot.ShouldTrade = false
		snapshot.Reason = "ADX below 20 indicates no clear trend. Avoid trend-following entries."
	case adx < 40:
		snapshot.Regime = directional(priceAboveSMA)
		snapshot.ShouldTrade = true
		snapshot.Reason = fmt.Sprintf("Moderate trend detected (ADX: %.1f). %s bias confirmed.",
			adx, biasWord(snapshot.Regime))
	case atrPercentile > 80:
		snapshot.Regime = Volatile
		snapshot.ShouldTrade = volumeZScore > 1
		if snapshot.ShouldTrade {
			snapshot.Reason = "Strong trend but extreme volatility. Volume confirms move."
		} else {
			snapshot.Reason = "Strong trend but extreme volatility. Wait for volume confirmation."
		}
	default:
		snapshot.Regime = directional(priceAboveSMA)
		snapshot.ShouldTrade = true
		snapshot.Reason = fmt.Sprintf("Strong %s (ADX: %.1f). High probability setup.",
			trendWord(snapshot.Regime), adx)
	}

	switch {
	case atrPercentile < 25:
		snapshot.VolatilityLevel = VolatilityLow
	case atrPercentile < 50:
		snapshot.VolatilityLevel = VolatilityMedium
	case atrPercentile < 75:
		snapshot.VolatilityLevel = VolatilityHigh
	default:
		snapshot.VolatilityLevel = VolatilityExtreme
	}

	return snapshot
}

// calculateADX derives the DX history from the smoothed directional movement
// and averages it Wilder-style: seed = simple average of the first period DX
// values, then (prev*(period-1) + dx) / period.
func (c *Classifier) calculateADX(smoothPlusDM, smoothMinusDM, smoothTR series.Series) float64 {
	var dxHistory []float64
	for i := c.period - 1; i < len(smoothTR); i++ {
		tr := smoothTR[i].Or(0)
		if tr <= 0 {
			continue
		}
		pdi := smoothPlusDM[i].Or(0) / tr * 100
		mdi := smoothMinusDM[i].Or(0) / tr * 100
		if sum := pdi + mdi; sum > 0 {
			dxHistory = append(dxHistory, math.Abs(pdi-mdi)/sum*100)
		} else {
			dxHistory = append(dxHistory, 0)
		}
	}

	if len(dxHistory) == 0 {
		return 0
	}
	if len(dxHistory) < c.period {
		sum := 0.0
		for _, dx := range dxHistory {
			sum += dx
		}
		return sum / float64(len(dxHistory))
	}

	adx := 0.0
	for i := 0; i < c.period; i++ {
		adx += dxHistory[i]
	}
	adx /= float64(c.period)
	for i := c.period; i < len(dxHistory); i++ {
		adx = (adx*float64(c.period-1) + dxHistory[i]) / float64(c.period)
	}
	return adx
}

// atrPercentile ranks the current smoothed true range among all positive raw
// true-range values in the window, scaled to 0-100.
func (c *Classifier) atrPercentile(smoothTR, trueRange series.Series) float64 {
	currentATR := smoothTR.Last().Or(0)

	var sorted []float64
	for _, tr := range trueRange {
		if tr.Defined && tr.Value > 0 {
			sorted = append(sorted, tr.Value)
		}
	}
	if len(sorted) == 0 {
		return 50
	}
	sort.Float64s(sorted)

	rank := 0
	for i, v := range sorted {
		if v <= currentATR {
			rank = i + 1
		}
	}
	return float64(rank) / float64(len(sorted)) * 100
}

// volumeZScore measures the latest volume against the trailing 20-bar
// distribution.
func volumeZScore(candles []market.Candle) float64 {
	volumes := market.Volumes(candles)
	mean := tailMean(volumes, 20)

	tail := volumes
	if len(tail) > 20 {
		tail = tail[len(tail)-20:]
	}
	variance := 0.0
	for _, v := range tail {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / 20)
	if std == 0 {
		return 0
	}
	return (volumes[len(volumes)-1] - mean) / std
}

// tailMean averages the trailing n values, dividing by n even when fewer are
// available, matching the fixed-window behaviour of the regime thresholds.
func tailMean(values []float64, n int) float64 {
	tail := values
	if len(tail) > n {
		tail = tail[len(tail)-n:]
	}
	sum := 0.0
	for _, v := range tail {
		sum += v
	}
	return sum / float64(n)
}

func directional(priceAboveSMA bool) Regime {
	if priceAboveSMA {
		return TrendingUp
	}
	return TrendingDown
}

func biasWord(r Regime) string {
	if r == TrendingUp {
		return "Bullish"
	}
	return "Bearish"
}

func trendWord(r Regime) string {
	if r == TrendingUp {
		return "uptrend"
	}
	return "downtrend"
}
