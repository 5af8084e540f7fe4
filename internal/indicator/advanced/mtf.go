package advanced

import (
	"math"

	"signal-fusion/internal/market"
)

// Recommendation is the directional call from timeframe alignment.
type Recommendation string

const (
	RecommendLong  Recommendation = "long"
	RecommendShort Recommendation = "short"
	RecommendWait  Recommendation = "wait"
)

// Alignment compares the trend direction across three timeframe windows.
type Alignment struct {
	HTFTrend       Bias           `json:"htf_trend"`
	MTFTrend       Bias           `json:"mtf_trend"`
	LTFTrend       Bias           `json:"ltf_trend"`
	IsAligned      bool           `json:"is_aligned"`
	AlignmentScore float64        `json:"alignment_score"`
	TrendStrength  float64        `json:"trend_strength"`
	Recommendation Recommendation `json:"recommendation"`
}

// CalculateTimeframeAlignment reads the EMA9/EMA21 trend on each window and
// scores how many agree. Full agreement (or a 2-of-3 majority at score
// >= 0.66) produces a directional recommendation; anything weaker waits.
func CalculateTimeframeAlignment(ltf, mtf, htf []market.Candle) Alignment {
	ltfTrend := trendDirection(ltf)
	mtfTrend := trendDirection(mtf)
	htfTrend := trendDirection(htf)

	bullish, bearish := 0, 0
	for _, t := range []Bias{ltfTrend, mtfTrend, htfTrend} {
		switch t {
		case BiasBullish:
			bullish++
		case BiasBearish:
			bearish++
		}
	}

	isAligned := bullish == 3 || bearish == 3
	score := float64(bullish) / 3
	if bearish > bullish {
		score = float64(bearish) / 3
	}

	recommendation := RecommendWait
	if isAligned {
		recommendation = RecommendShort
		if htfTrend == BiasBullish {
			recommendation = RecommendLong
		}
	} else if score >= 0.66 {
		recommendation = RecommendShort
		if bullish > bearish {
			recommendation = RecommendLong
		}
	}

	return Alignment{
		HTFTrend:       htfTrend,
		MTFTrend:       mtfTrend,
		LTFTrend:       ltfTrend,
		IsAligned:      isAligned,
		AlignmentScore: score,
		TrendStrength:  emaTrendStrength(htf),
		Recommendation: recommendation,
	}
}

// trendDirection reads the EMA9/EMA21 stack on one window: bullish when the
// fast EMA leads and price sits above it, bearish when mirrored.
func trendDirection(candles []market.Candle) Bias {
	if len(candles) < 20 {
		return BiasNeutral
	}

	closes := market.CloseSeries(candles)
	ema9 := ema(closes, 9).Last()
	ema21 := ema(closes, 21).Last()
	price := closes.Last().Value

	switch {
	case ema9.Value > ema21.Value && price > ema9.Value:
		return BiasBullish
	case ema9.Value < ema21.Value && price < ema9.Value:
		return BiasBearish
	}
	return BiasNeutral
}

// emaTrendStrength scales the EMA9/EMA21 separation to 0-100.
func emaTrendStrength(candles []market.Candle) float64 {
	if len(candles) < 20 {
		return 0
	}

	closes := market.CloseSeries(candles)
	ema9 := ema(closes, 9).Last().Or(0)
	ema21 := ema(closes, 21).Last().Or(0)

	avg := (ema9 + ema21) / 2
	if avg == 0 {
		return 0
	}
	return math.Min(100, math.Abs(ema9-ema21)/avg*1000)
}
