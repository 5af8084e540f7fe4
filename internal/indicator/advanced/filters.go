package advanced

import (
	"math"

	"signal-fusion/internal/series"
)

// ============================================================================
// SMOOTHING PRIMITIVES
// ============================================================================

// ema is the package-local EMA variant: the seed at index period-1 averages
// the defined samples among the first period positions without skipping
// leading zeros, and undefined samples after the seed repeat the previous
// value. The lag-reduced package seeds differently, so this is not shared.
func ema(data series.Series, period int) series.Series {
	n := len(data)
	if n < period || period <= 0 {
		return series.Undefined(n)
	}
	out := series.Undefined(n)
	multiplier := 2.0 / float64(period+1)

	sum := 0.0
	count := 0
	for i := 0; i < period; i++ {
		if data[i].Defined {
			sum += data[i].Value
			count++
		}
	}
	if count == 0 {
		return out
	}
	out[period-1] = series.Of(sum / float64(count))

	for i := period; i < n; i++ {
		prev := out[i-1].Value
		val := prev
		if data[i].Defined {
			val = data[i].Value
		}
		out[i] = series.Of((val-prev)*multiplier + prev)
	}
	return out
}

// sma computes a simple moving average. Windows containing an undefined
// sample yield an undefined result.
func sma(data series.Series, period int) series.Series {
	n := len(data)
	out := series.Undefined(n)
	if period <= 0 {
		return out
	}
	for i := period - 1; i < n; i++ {
		sum := 0.0
		defined := true
		for j := 0; j < period; j++ {
			if !data[i-j].Defined {
				defined = false
				break
			}
			sum += data[i-j].Value
		}
		if defined {
			out[i] = series.Of(sum / float64(period))
		}
	}
	return out
}

// stddev computes the rolling population standard deviation around the SMA.
func stddev(data series.Series, period int) series.Series {
	n := len(data)
	out := series.Undefined(n)
	mean := sma(data, period)

	for i := period - 1; i < n; i++ {
		if !mean[i].Defined {
			continue
		}
		sum := 0.0
		defined := true
		for j := 0; j < period; j++ {
			if !data[i-j].Defined {
				defined = false
				break
			}
			dev := data[i-j].Value - mean[i].Value
			sum += dev * dev
		}
		if defined {
			out[i] = series.Of(math.Sqrt(sum / float64(period)))
		}
	}
	return out
}

// highest computes the rolling maximum over the trailing period.
func highest(data series.Series, period int) series.Series {
	n := len(data)
	out := series.Undefined(n)
	for i := period - 1; i < n; i++ {
		m := data[i]
		for j := 1; j < period; j++ {
			if data[i-j].Defined && (!m.Defined || data[i-j].Value > m.Value) {
				m = data[i-j]
			}
		}
		out[i] = m
	}
	return out
}

// lowest computes the rolling minimum over the trailing period.
func lowest(data series.Series, period int) series.Series {
	n := len(data)
	out := series.Undefined(n)
	for i := period - 1; i < n; i++ {
		m := data[i]
		for j := 1; j < period; j++ {
			if data[i-j].Defined && (!m.Defined || data[i-j].Value < m.Value) {
				m = data[i-j]
			}
		}
		out[i] = m
	}
	return out
}

// rollingCV computes the rolling coefficient of variation (std/mean) used to
// adapt the RSI period. Positions before warm-up report zero.
func rollingCV(data series.Series, period int) []float64 {
	n := len(data)
	vol := make([]float64, n)
	for i := period; i < n; i++ {
		mean := 0.0
		for j := i - period + 1; j <= i; j++ {
			mean += data[j].Or(0)
		}
		mean /= float64(period)

		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			dev := data[j].Or(0) - mean
			sum += dev * dev
		}
		vol[i] = math.Sqrt(sum/float64(period)) / mean
	}
	return vol
}

// ============================================================================
// FILTERS AND OSCILLATORS
// ============================================================================

// CalculateSuperSmoother applies Ehlers' two-pole super smoother filter. The
// first two positions pass the raw input through as the recursion seed.
func CalculateSuperSmoother(data series.Series, period int) series.Series {
	n := len(data)
	if n < 3 || period <= 0 {
		return series.Undefined(n)
	}

	a := math.Exp(-math.Sqrt2 * math.Pi / float64(period))
	b := 2 * a * math.Cos(math.Sqrt2*math.Pi/float64(period))
	c2 := b
	c3 := -a * a
	c1 := 1 - c2 - c3

	ss := series.Undefined(n)
	ss[0] = data[0]
	ss[1] = data[1]

	for i := 2; i < n; i++ {
		if !data[i].Defined || !data[i-1].Defined || !ss[i-1].Defined || !ss[i-2].Defined {
			continue
		}
		ss[i] = series.Of(c1*(data[i].Value+data[i-1].Value)/2 + c2*ss[i-1].Value + c3*ss[i-2].Value)
	}
	return ss
}

// TSIResult holds the True Strength Index line, its signal line and the
// histogram between them, aligned with the input.
type TSIResult struct {
	TSI       series.Series
	Signal    series.Series
	Histogram series.Series
}

// CalculateTSI computes the True Strength Index: double-EMA smoothed price
// momentum over double-EMA smoothed absolute momentum, scaled to +-100.
func CalculateTSI(data series.Series, longPeriod, shortPeriod, signalPeriod int) TSIResult {
	n := len(data)
	if n < longPeriod+shortPeriod+2 {
		return TSIResult{
			TSI:       series.Undefined(n),
			Signal:    series.Undefined(n),
			Histogram: series.Undefined(n),
		}
	}

	momentum := series.Undefined(n)
	absMomentum := series.Undefined(n)
	for i := 1; i < n; i++ {
		if data[i].Defined && data[i-1].Defined {
			m := data[i].Value - data[i-1].Value
			momentum[i] = series.Of(m)
			absMomentum[i] = series.Of(math.Abs(m))
		}
	}

	smoothMom := ema(ema(momentum, longPeriod), shortPeriod)
	smoothAbsMom := ema(ema(absMomentum, longPeriod), shortPeriod)

	tsi := series.Undefined(n)
	for i := 0; i < n; i++ {
		if smoothMom[i].Defined && smoothAbsMom[i].Defined && smoothAbsMom[i].Value != 0 {
			tsi[i] = series.Of(100 * smoothMom[i].Value / smoothAbsMom[i].Value)
		}
	}

	signal := ema(tsi, signalPeriod)
	histogram := series.Undefined(n)
	for i := 0; i < n; i++ {
		if tsi[i].Defined && signal[i].Defined {
			histogram[i] = series.Of(tsi[i].Value - signal[i].Value)
		}
	}

	return TSIResult{TSI: tsi, Signal: signal, Histogram: histogram}
}

// CalculateAdaptiveRSI computes an RSI whose lookback widens with the rolling
// coefficient of variation, clamped to [5, 28], then smooths the result with
// a short EMA. Quiet markets get a responsive RSI, noisy markets a steadier
// one.
func CalculateAdaptiveRSI(data series.Series, period, smoothPeriod int) series.Series {
	n := len(data)
	if n < period+smoothPeriod || period <= 0 {
		return series.Undefined(n)
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := data[i].Or(0) - data[i-1].Or(0)
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	vol := rollingCV(data, period)
	raw := series.Undefined(n)

	for i := period; i < n; i++ {
		// A zero-mean window makes the coefficient NaN; treat it like the
		// zero reading.
		v := vol[i]
		if v == 0 || math.IsNaN(v) {
			v = 1
		}
		scaled := math.Round(float64(period) * (1 + v))
		adaptivePeriod := 28
		switch {
		case scaled < 5:
			adaptivePeriod = 5
		case scaled <= 28:
			adaptivePeriod = int(scaled)
		}

		start := i - adaptivePeriod + 1
		if start < 1 {
			start = 1
		}
		count := float64(i - start + 1)

		avgGain, avgLoss := 0.0, 0.0
		for j := start; j <= i; j++ {
			avgGain += gains[j]
			avgLoss += losses[j]
		}
		avgGain /= count
		avgLoss /= count

		if avgLoss == 0 {
			raw[i] = series.Of(100)
		} else {
			rs := avgGain / avgLoss
			raw[i] = series.Of(100 - 100/(1+rs))
		}
	}

	return ema(raw, smoothPeriod)
}
