package advanced

import (
	"gonum.org/v1/gonum/stat"

	"signal-fusion/internal/market"
	"signal-fusion/internal/series"
)

// SqueezeFiring indicates the direction of a post-squeeze momentum release.
type SqueezeFiring string

const (
	FiringLong  SqueezeFiring = "long"
	FiringShort SqueezeFiring = "short"
	FiringNone  SqueezeFiring = "none"
)

// Squeeze is the Bollinger-inside-Keltner compression read for one window.
type Squeeze struct {
	On        bool          `json:"squeeze_on"`
	Firing    SqueezeFiring `json:"squeeze_firing"`
	Histogram series.Series `json:"histogram"`
	Momentum  series.Series `json:"momentum"`
}

// CalculateSqueeze detects a volatility squeeze: the squeeze is on when both
// Bollinger bands sit inside the Keltner channel on the latest bar. The
// momentum histogram is a rolling linear regression of close minus the
// channel midline, evaluated at the window's endpoint; it fires long when
// positive and rising, short when negative and falling. Windows shorter than
// max(bbPeriod, kcPeriod)+10 return the neutral default.
func CalculateSqueeze(candles []market.Candle, bbPeriod, kcPeriod int, bbMult, kcMult float64) Squeeze {
	minLen := bbPeriod
	if kcPeriod > minLen {
		minLen = kcPeriod
	}
	if len(candles) < minLen+10 {
		return Squeeze{Firing: FiringNone}
	}

	n := len(candles)
	closes := market.CloseSeries(candles)
	highs := make(series.Series, n)
	lows := make(series.Series, n)
	for i, c := range candles {
		highs[i] = series.Of(c.High)
		lows[i] = series.Of(c.Low)
	}

	mean := sma(closes, bbPeriod)
	dev := stddev(closes, bbPeriod)

	atr := ema(series.FromValues(market.TrueRanges(candles)), kcPeriod)
	kcMiddle := ema(closes, kcPeriod)

	last := n - 1
	bbUpper := mean[last].Or(0) + bbMult*dev[last].Or(0)
	bbLower := mean[last].Or(0) - bbMult*dev[last].Or(0)
	kcUpper := kcMiddle[last].Or(0) + kcMult*atr[last].Or(0)
	kcLower := kcMiddle[last].Or(0) - kcMult*atr[last].Or(0)

	on := bbLower > kcLower && bbUpper < kcUpper

	hh := highest(highs, kcPeriod)
	ll := lowest(lows, kcPeriod)

	momentum := series.Undefined(n)
	for i := 0; i < n; i++ {
		if hh[i].Defined && ll[i].Defined && kcMiddle[i].Defined {
			midline := (hh[i].Value + ll[i].Value) / 2
			avgMid := (midline + kcMiddle[i].Value) / 2
			momentum[i] = series.Of(closes[i].Value - avgMid)
		}
	}

	histogram := regressionEndpoint(momentum, kcPeriod)

	firing := FiringNone
	if n >= 2 && histogram[n-1].Defined && histogram[n-2].Defined {
		curr, prev := histogram[n-1].Value, histogram[n-2].Value
		switch {
		case curr > 0 && curr > prev:
			firing = FiringLong
		case curr < 0 && curr < prev:
			firing = FiringShort
		}
	}

	return Squeeze{On: on, Firing: firing, Histogram: histogram, Momentum: momentum}
}

// regressionEndpoint fits a least-squares line over each trailing window and
// evaluates it at the window's last offset. Windows containing an undefined
// sample yield an undefined result.
func regressionEndpoint(data series.Series, period int) series.Series {
	n := len(data)
	out := series.Undefined(n)
	if period < 2 {
		return out
	}

	xs := make([]float64, period)
	ys := make([]float64, period)
	for j := range xs {
		xs[j] = float64(j)
	}

	for i := period - 1; i < n; i++ {
		defined := true
		for j := 0; j < period; j++ {
			s := data[i-period+1+j]
			if !s.Defined {
				defined = false
				break
			}
			ys[j] = s.Value
		}
		if !defined {
			continue
		}
		intercept, slope := stat.LinearRegression(xs, ys, nil, false)
		out[i] = series.Of(intercept + slope*float64(period-1))
	}
	return out
}
