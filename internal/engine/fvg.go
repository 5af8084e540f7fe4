package engine

import (
	"math"
	"sort"

	"signal-fusion/internal/market"
)

// GapType distinguishes bullish and bearish fair value gaps.
type GapType string

const (
	GapBullish GapType = "bullish"
	GapBearish GapType = "bearish"
)

// FairValueGap is a three-bar price imbalance: the middle bar moved fast
// enough that the first and third bars' ranges do not overlap.
type FairValueGap struct {
	Type              GapType `json:"type"`
	Top               float64 `json:"top"`
	Bottom            float64 `json:"bottom"`
	Midpoint          float64 `json:"midpoint"`
	CandleIndex       int     `json:"candle_index"`
	DistanceFromPrice float64 `json:"distance_from_price"`
}

// DetectFairValueGaps scans every three-bar window. A bullish gap opens when
// the third bar's low clears the first bar's high; a bearish gap when the
// third bar's high stays under the first bar's low. Gaps are sorted by
// absolute distance of the gap floor from the given price, nearest first.
func DetectFairValueGaps(candles []market.Candle, currentPrice float64) []FairValueGap {
	if len(candles) < 3 {
		return nil
	}

	var gaps []FairValueGap
	for i := 2; i < len(candles); i++ {
		first := candles[i-2]
		third := candles[i]

		if third.Low > first.High {
			gaps = append(gaps, FairValueGap{
				Type:              GapBullish,
				Top:               third.Low,
				Bottom:            first.High,
				Midpoint:          (third.Low + first.High) / 2,
				CandleIndex:       i,
				DistanceFromPrice: first.High - currentPrice,
			})
		}
		if third.High < first.Low {
			gaps = append(gaps, FairValueGap{
				Type:              GapBearish,
				Top:               first.Low,
				Bottom:            third.High,
				Midpoint:          (first.Low + third.High) / 2,
				CandleIndex:       i,
				DistanceFromPrice: third.High - currentPrice,
			})
		}
	}

	sort.Slice(gaps, func(i, j int) bool {
		return math.Abs(gaps[i].DistanceFromPrice) < math.Abs(gaps[j].DistanceFromPrice)
	})
	return gaps
}
