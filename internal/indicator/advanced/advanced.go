// Package advanced holds the confirmation-layer indicators: noise filters,
// adaptive oscillators, squeeze detection, market structure, session gating
// and volatility thresholds. They sit between the lag-reduced trend filters
// and the signal fusion rules.
package advanced

import (
	"time"

	"signal-fusion/internal/market"
)

// Values bundles the latest confirmation-layer readings for one candle
// window at the default parameters.
type Values struct {
	SuperSmoother       float64             `json:"super_smoother"`
	TSI                 float64             `json:"tsi"`
	TSISignal           float64             `json:"tsi_signal"`
	TSIHistogram        float64             `json:"tsi_histogram"`
	AdaptiveRSI         float64             `json:"adaptive_rsi"`
	SqueezeOn           bool                `json:"squeeze_on"`
	SqueezeFiring       SqueezeFiring       `json:"squeeze_firing"`
	MarketStructure     MarketStructure     `json:"market_structure"`
	SessionFilter       SessionFilter       `json:"session_filter"`
	VolatilityThreshold VolatilityThreshold `json:"volatility_threshold"`
}

// Latest computes the confirmation bundle at default parameters. Readings
// that have not warmed up degrade to their neutral values (0, or 50 for the
// adaptive RSI). The session filter is evaluated at the given instant.
func Latest(candles []market.Candle, now time.Time) Values {
	closes := market.CloseSeries(candles)

	tsiData := CalculateTSI(closes, 25, 13, 7)
	squeeze := CalculateSqueeze(candles, 20, 20, 2.0, 1.5)

	adaptiveRSI := CalculateAdaptiveRSI(closes, 14, 5).Last().Or(0)
	if adaptiveRSI == 0 {
		adaptiveRSI = 50
	}

	return Values{
		SuperSmoother:       CalculateSuperSmoother(closes, 10).Last().Or(0),
		TSI:                 tsiData.TSI.Last().Or(0),
		TSISignal:           tsiData.Signal.Last().Or(0),
		TSIHistogram:        tsiData.Histogram.Last().Or(0),
		AdaptiveRSI:         adaptiveRSI,
		SqueezeOn:           squeeze.On,
		SqueezeFiring:       squeeze.Firing,
		MarketStructure:     DetectMarketStructure(candles, 20),
		SessionFilter:       CalculateSessionFilter(now),
		VolatilityThreshold: CalculateVolatilityThreshold(candles, 14),
	}
}
