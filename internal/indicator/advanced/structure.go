package advanced

import "signal-fusion/internal/market"

// Bias is a directional lean derived from price structure.
type Bias string

const (
	BiasBullish Bias = "bullish"
	BiasBearish Bias = "bearish"
	BiasNeutral Bias = "neutral"
)

// BreakDirection is the direction of a structural break.
type BreakDirection string

const (
	BreakBullish BreakDirection = "bullish"
	BreakBearish BreakDirection = "bearish"
	BreakNone    BreakDirection = "none"
)

// MarketStructure summarizes swing points, breaks of structure (BOS) and
// changes of character (CHoCH) for one candle window.
type MarketStructure struct {
	LastSwingHigh      float64        `json:"last_swing_high"`
	LastSwingLow       float64        `json:"last_swing_low"`
	BOSDetected        bool           `json:"bos_detected"`
	BOSDirection       BreakDirection `json:"bos_direction"`
	CHoCHDetected      bool           `json:"choch_detected"`
	CHoCHDirection     BreakDirection `json:"choch_direction"`
	TrendBias          Bias           `json:"trend_bias"`
	StructureConfirmed bool           `json:"structure_confirmed"`
}

type swingPoint struct {
	index int
	price float64
}

// DetectMarketStructure finds fractal swing points (strictly above or below
// the two bars on each side), keeps the last three of each, and flags a BOS
// when the latest close crosses the prior-to-last swing while the previous
// close had not. A BOS against the prevailing bias is a CHoCH. Windows
// shorter than twice the lookback return the neutral default.
func DetectMarketStructure(candles []market.Candle, lookback int) MarketStructure {
	if lookback <= 0 {
		lookback = 20
	}
	if len(candles) < lookback*2 {
		return MarketStructure{
			BOSDirection:   BreakNone,
			CHoCHDirection: BreakNone,
			TrendBias:      BiasNeutral,
		}
	}

	var swingHighs, swingLows []swingPoint
	for i := 2; i < len(candles)-2; i++ {
		high := candles[i].High
		low := candles[i].Low

		if high > candles[i-1].High && high > candles[i-2].High &&
			high > candles[i+1].High && high > candles[i+2].High {
			swingHighs = append(swingHighs, swingPoint{index: i, price: high})
		}
		if low < candles[i-1].Low && low < candles[i-2].Low &&
			low < candles[i+1].Low && low < candles[i+2].Low {
			swingLows = append(swingLows, swingPoint{index: i, price: low})
		}
	}

	recentHighs := tailSwings(swingHighs, 3)
	recentLows := tailSwings(swingLows, 3)

	lastSwingHigh := candles[len(candles)-1].High
	if len(recentHighs) > 0 {
		lastSwingHigh = recentHighs[len(recentHighs)-1].price
	}
	lastSwingLow := candles[len(candles)-1].Low
	if len(recentLows) > 0 {
		lastSwingLow = recentLows[len(recentLows)-1].price
	}

	bosDetected := false
	bosDirection := BreakNone

	currentClose := candles[len(candles)-1].Close
	prevClose := candles[len(candles)-2].Close

	if len(recentHighs) >= 2 {
		prevHigh := recentHighs[len(recentHighs)-2].price
		if currentClose > prevHigh && prevClose <= prevHigh {
			bosDetected = true
			bosDirection = BreakBullish
		}
	}
	if len(recentLows) >= 2 {
		prevLow := recentLows[len(recentLows)-2].price
		if currentClose < prevLow && prevClose >= prevLow {
			bosDetected = true
			bosDirection = BreakBearish
		}
	}

	higherHighs, lowerLows := 0, 0
	for i := 1; i < len(recentHighs); i++ {
		if recentHighs[i].price > recentHighs[i-1].price {
			higherHighs++
		}
	}
	for i := 1; i < len(recentLows); i++ {
		if recentLows[i].price < recentLows[i-1].price {
			lowerLows++
		}
	}

	trendBias := BiasNeutral
	if higherHighs >= 1 && len(recentLows) >= 2 &&
		recentLows[len(recentLows)-1].price > recentLows[len(recentLows)-2].price {
		trendBias = BiasBullish
	} else if lowerLows >= 1 && len(recentHighs) >= 2 &&
		recentHighs[len(recentHighs)-1].price < recentHighs[len(recentHighs)-2].price {
		trendBias = BiasBearish
	}

	chochDetected := false
	chochDirection := BreakNone
	if bosDetected && bosDirection != BreakNone {
		if (trendBias == BiasBearish && bosDirection == BreakBullish) ||
			(trendBias == BiasBullish && bosDirection == BreakBearish) {
			chochDetected = true
			chochDirection = bosDirection
		}
	}

	return MarketStructure{
		LastSwingHigh:      lastSwingHigh,
		LastSwingLow:       lastSwingLow,
		BOSDetected:        bosDetected,
		BOSDirection:       bosDirection,
		CHoCHDetected:      chochDetected,
		CHoCHDirection:     chochDirection,
		TrendBias:          trendBias,
		StructureConfirmed: bosDetected || trendBias != BiasNeutral,
	}
}

func tailSwings(points []swingPoint, n int) []swingPoint {
	if len(points) > n {
		return points[len(points)-n:]
	}
	return points
}
