package engine

import (
	"math"

	"signal-fusion/internal/market"
)

// Quick scalar helpers. These are single-pass approximations used for fast
// gating decisions; the regime and advanced packages carry the full
// smoothed versions. The two sets intentionally differ.

// emaLast returns only the final EMA value, seeded with the simple average
// of the first period prices. Short inputs return the last price.
func emaLast(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		return prices[len(prices)-1]
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
	}
	return ema
}

func smaLast(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		return prices[len(prices)-1]
	}

	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}

// quickADX is a single-pass DX over the first period+1 bars, not the
// smoothed Wilder ADX. Windows too short (or with zero true range) return
// the neutral 25.
func quickADX(candles []market.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 25
	}

	plusDM, minusDM, tr := 0.0, 0.0, 0.0
	end := len(candles)
	if period+1 < end {
		end = period + 1
	}

	for i := 1; i < end; i++ {
		upMove := candles[i].High - candles[i-1].High
		downMove := candles[i-1].Low - candles[i].Low

		if upMove > downMove && upMove > 0 {
			plusDM += upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM += downMove
		}

		hl := candles[i].High - candles[i].Low
		hc := math.Abs(candles[i].High - candles[i-1].Close)
		lc := math.Abs(candles[i].Low - candles[i-1].Close)
		tr += math.Max(hl, math.Max(hc, lc))
	}

	if tr == 0 {
		return 25
	}
	plusDI := plusDM / tr * 100
	minusDI := minusDM / tr * 100
	diSum := plusDI + minusDI
	if diSum == 0 {
		return 25
	}
	return math.Abs(plusDI-minusDI) / diSum * 100
}

// quickRSI averages the gains and losses of the trailing period changes.
// Short inputs return the neutral 50; a loss-free window returns 100.
func quickRSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50
	}

	gains, losses := 0.0, 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// quickATR is the simple average true range over at most period+1 bars.
func quickATR(candles []market.Candle, period int) float64 {
	if len(candles) < 2 {
		return 0
	}

	end := len(candles)
	if period+1 < end {
		end = period + 1
	}

	sum := 0.0
	for i := 1; i < end; i++ {
		hl := candles[i].High - candles[i].Low
		hc := math.Abs(candles[i].High - candles[i-1].Close)
		lc := math.Abs(candles[i].Low - candles[i-1].Close)
		sum += math.Max(hl, math.Max(hc, lc))
	}
	return sum / float64(end-1)
}

// priceMomentum compares the average of the last five prices against the
// five before them, as a fraction of the older average. Needs at least ten
// prices.
func priceMomentum(prices []float64) float64 {
	if len(prices) < 10 {
		return 0
	}

	recentAvg := mean(prices[len(prices)-5:])
	olderAvg := mean(prices[len(prices)-10 : len(prices)-5])
	if olderAvg == 0 {
		return 0
	}
	return (recentAvg - olderAvg) / olderAvg
}

// predictFutureMA projects the MA one step ahead by the recent close slope,
// scaled by momentum.
func predictFutureMA(currentMA float64, prices []float64) float64 {
	if len(prices) < 3 || currentMA == 0 {
		return currentMA
	}

	recent := prices
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	trend := (recent[len(recent)-1] - recent[0]) / float64(len(recent))
	predictedChange := trend * (1 + priceMomentum(prices)*0.1)

	return currentMA * (1 + predictedChange/currentMA)
}

// detectCrossover inspects only the previous bar against the current one,
// so daysAgo is 1 on the detection bar and 0 otherwise.
func detectCrossover(shortMA, mediumMA, prevShortMA, prevMediumMA float64) (Cross, int) {
	if prevShortMA <= prevMediumMA && shortMA > mediumMA {
		return CrossBullish, 1
	}
	if prevShortMA >= prevMediumMA && shortMA < mediumMA {
		return CrossBearish, 1
	}
	return CrossNone, 0
}

// zScore positions the last price within the trailing 20-bar distribution.
func zScore(prices []float64) float64 {
	if len(prices) < 20 {
		return 0
	}

	recent := prices[len(prices)-20:]
	m := mean(recent)
	variance := 0.0
	for _, p := range recent {
		variance += (p - m) * (p - m)
	}
	std := math.Sqrt(variance / float64(len(recent)))
	if std == 0 {
		return 0
	}
	return (prices[len(prices)-1] - m) / std
}

// relativeVolume is the 5-bar average volume over the 20-bar average.
func relativeVolume(candles []market.Candle) float64 {
	if len(candles) < 20 {
		return 1
	}

	recent := 0.0
	for _, c := range candles[len(candles)-5:] {
		recent += c.Volume
	}
	recent /= 5

	avg := 0.0
	for _, c := range candles[len(candles)-20:] {
		avg += c.Volume
	}
	avg /= 20

	if avg <= 0 {
		return 1
	}
	return recent / avg
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
