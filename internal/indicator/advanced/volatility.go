package advanced

import (
	"signal-fusion/internal/market"
	"signal-fusion/internal/series"
)

// VolatilityThreshold sizes the minimum meaningful price move from the ATR.
type VolatilityThreshold struct {
	CurrentATR            float64 `json:"current_atr"`
	AverageATR            float64 `json:"average_atr"`
	ATRMultiple           float64 `json:"atr_multiple"`
	MinSweepSize          float64 `json:"min_sweep_size"`
	IsVolatilityExpanding bool    `json:"is_volatility_expanding"`
	NormalizedVolatility  float64 `json:"normalized_volatility"`
}

// CalculateVolatilityThreshold derives sweep sizing from a Wilder-averaged
// ATR: seed = simple average of the first period true ranges, then
// (prev*(period-1) + tr) / period. Volatility is expanding when the latest
// of the five most recent ATR values exceeds the earliest by 10%. Windows
// shorter than twice the period return the neutral default.
func CalculateVolatilityThreshold(candles []market.Candle, period int) VolatilityThreshold {
	if period <= 0 {
		period = 14
	}
	if len(candles) < period*2 {
		return VolatilityThreshold{ATRMultiple: 1, NormalizedVolatility: 1}
	}

	atr := wilderATR(market.TrueRanges(candles), period)
	currentATR := atr.Last().Or(0)

	sum, count := 0.0, 0
	for _, a := range atr {
		if a.Defined && a.Value > 0 {
			sum += a.Value
			count++
		}
	}
	averageATR := currentATR
	if count > 0 {
		averageATR = sum / float64(count)
	}

	atrMultiple := 1.0
	if averageATR > 0 {
		atrMultiple = currentATR / averageATR
	}

	recent := atr
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	recentValues := recent.DefinedValues()
	expanding := len(recentValues) >= 2 &&
		recentValues[len(recentValues)-1] > recentValues[0]*1.1

	normalized := 0.0
	if lastPrice := candles[len(candles)-1].Close; lastPrice > 0 {
		normalized = currentATR / lastPrice * 100
	}

	return VolatilityThreshold{
		CurrentATR:            currentATR,
		AverageATR:            averageATR,
		ATRMultiple:           atrMultiple,
		MinSweepSize:          currentATR * 0.5,
		IsVolatilityExpanding: expanding,
		NormalizedVolatility:  normalized,
	}
}

func wilderATR(trueRanges []float64, period int) series.Series {
	n := len(trueRanges)
	if n < period {
		return series.Undefined(n)
	}
	atr := series.Undefined(n)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += trueRanges[i]
	}
	atr[period-1] = series.Of(sum / float64(period))

	for i := period; i < n; i++ {
		prev := atr[i-1].Value
		atr[i] = series.Of((prev*float64(period-1) + trueRanges[i]) / float64(period))
	}
	return atr
}
