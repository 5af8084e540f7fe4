package zerolag

import (
	"math"

	"signal-fusion/internal/series"
)

// ============================================================================
// SMOOTHING PRIMITIVES
// ============================================================================

// CalculateEMA calculates an Exponential Moving Average over the input.
// The seed is the simple average of the first `period` defined samples,
// skipping any leading undefined-or-zero values; undefined samples after the
// seed repeat the previous EMA value.
func CalculateEMA(data series.Series, period int) series.Series {
	n := len(data)
	if n < period || period <= 0 {
		return series.Undefined(n)
	}
	ema := series.Undefined(n)
	multiplier := 2.0 / float64(period+1)

	validStart := 0
	for validStart < n && (!data[validStart].Defined || data[validStart].Value == 0) {
		validStart++
	}

	effectiveStart := validStart
	if period-1 > effectiveStart {
		effectiveStart = period - 1
	}
	if effectiveStart >= n {
		return ema
	}

	sum := 0.0
	count := 0
	for i := validStart; i <= effectiveStart && count < period; i++ {
		if data[i].Defined {
			sum += data[i].Value
			count++
		}
	}
	if count == 0 {
		return ema
	}
	ema[effectiveStart] = series.Of(sum / float64(count))

	for i := effectiveStart + 1; i < n; i++ {
		val := ema[i-1].Value
		if data[i].Defined {
			val = data[i].Value
		}
		ema[i] = series.Of((val-ema[i-1].Value)*multiplier + ema[i-1].Value)
	}
	return ema
}

// CalculateWilderSmoothing applies Wilder's running-sum smoothing:
// seed = sum of the first `period` samples, then
// s[i] = s[i-1] - s[i-1]/period + x[i]. Used for directional-movement and
// true-range smoothing in the regime pipeline. Undefined samples count as 0.
func CalculateWilderSmoothing(data series.Series, period int) series.Series {
	n := len(data)
	if n < period || period <= 0 {
		return series.Undefined(n)
	}
	smoothed := series.Undefined(n)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i].Or(0)
	}
	smoothed[period-1] = series.Of(sum)

	for i := period; i < n; i++ {
		prev := smoothed[i-1].Value
		smoothed[i] = series.Of(prev - prev/float64(period) + data[i].Or(0))
	}
	return smoothed
}

// CalculateWMA calculates a linearly Weighted Moving Average with divisor
// period*(period+1)/2. A window containing any undefined sample yields an
// undefined result.
func CalculateWMA(data series.Series, period int) series.Series {
	n := len(data)
	if n < period || period <= 0 {
		return series.Undefined(n)
	}
	wma := series.Undefined(n)
	divisor := float64(period*(period+1)) / 2

	for i := period - 1; i < n; i++ {
		sum := 0.0
		defined := true
		for j := 0; j < period; j++ {
			if !data[i-j].Defined {
				defined = false
				break
			}
			sum += data[i-j].Value * float64(period-j)
		}
		if defined {
			wma[i] = series.Of(sum / divisor)
		}
	}
	return wma
}

// ============================================================================
// LAG-REDUCED FILTERS
// ============================================================================

// CalculateZLEMA calculates a Zero-Lag EMA: the input is de-lagged via
// 2*x[i] - x[i-lag] with lag = (period-1)/2, then smoothed with an EMA.
// Positions where the de-lagged value is unavailable fall back to the raw
// input.
func CalculateZLEMA(data series.Series, period int) series.Series {
	n := len(data)
	if n < period || period <= 0 {
		return series.Undefined(n)
	}
	lag := (period - 1) / 2

	delagged := make(series.Series, n)
	for i := 0; i < n; i++ {
		if i >= lag && data[i].Defined && data[i-lag].Defined {
			delagged[i] = series.Of(2*data[i].Value - data[i-lag].Value)
		} else {
			delagged[i] = data[i]
		}
	}
	return CalculateEMA(delagged, period)
}

// CalculateHullMA calculates the Hull Moving Average:
// WMA(2*WMA(n/2) - WMA(n), sqrt(n)) with integer-truncated periods.
func CalculateHullMA(data series.Series, period int) series.Series {
	n := len(data)
	if n < period || period <= 1 {
		return series.Undefined(n)
	}

	halfPeriod := period / 2
	sqrtPeriod := int(math.Sqrt(float64(period)))

	wmaHalf := CalculateWMA(data, halfPeriod)
	wmaFull := CalculateWMA(data, period)

	raw := series.Undefined(n)
	for i := 0; i < n; i++ {
		if wmaHalf[i].Defined && wmaFull[i].Defined {
			raw[i] = series.Of(2*wmaHalf[i].Value - wmaFull[i].Value)
		}
	}
	return CalculateWMA(raw, sqrtPeriod)
}

// CalculateDEMA calculates a Double EMA: 2*EMA1 - EMA2 with EMA2 an EMA of
// EMA1.
func CalculateDEMA(data series.Series, period int) series.Series {
	ema1 := CalculateEMA(data, period)
	ema2 := CalculateEMA(ema1, period)

	dema := series.Undefined(len(data))
	for i := range data {
		if ema1[i].Defined && ema2[i].Defined {
			dema[i] = series.Of(2*ema1[i].Value - ema2[i].Value)
		}
	}
	return dema
}

// CalculateTEMA calculates a Triple EMA: 3*EMA1 - 3*EMA2 + EMA3 over the
// EMA-of-EMA chain.
func CalculateTEMA(data series.Series, period int) series.Series {
	ema1 := CalculateEMA(data, period)
	ema2 := CalculateEMA(ema1, period)
	ema3 := CalculateEMA(ema2, period)

	tema := series.Undefined(len(data))
	for i := range data {
		if ema1[i].Defined && ema2[i].Defined && ema3[i].Defined {
			tema[i] = series.Of(3*ema1[i].Value - 3*ema2[i].Value + ema3[i].Value)
		}
	}
	return tema
}

// CalculateKAMA calculates Kaufman's Adaptive Moving Average. The smoothing
// constant interpolates between the fast and slow EMA constants by the
// efficiency ratio of the trailing window.
func CalculateKAMA(data series.Series, period, fastPeriod, slowPeriod int) series.Series {
	n := len(data)
	if n < period+1 || period <= 0 {
		return series.Undefined(n)
	}

	fastSC := 2.0 / float64(fastPeriod+1)
	slowSC := 2.0 / float64(slowPeriod+1)

	kama := series.Undefined(n)
	kama[period] = series.Of(data[period].Or(0))

	for i := period + 1; i < n; i++ {
		change := math.Abs(data[i].Or(0) - data[i-period].Or(0))
		volatility := 0.0
		for j := 0; j < period; j++ {
			if i-j-1 >= 0 {
				volatility += math.Abs(data[i-j].Or(0) - data[i-j-1].Or(0))
			}
		}

		er := 0.0
		if volatility != 0 {
			er = change / volatility
		}
		sc := math.Pow(er*(fastSC-slowSC)+slowSC, 2)

		prev := kama[i-1].Value
		kama[i] = series.Of(prev + sc*(data[i].Or(0)-prev))
	}
	return kama
}

// CalculateROC calculates the Rate of Change as a percentage:
// (x[i] - x[i-period]) / x[i-period] * 100, with 0 before warm-up.
func CalculateROC(data series.Series, period int) series.Series {
	roc := make(series.Series, len(data))
	for i := range data {
		if i < period {
			roc[i] = series.Of(0)
			continue
		}
		prev := data[i-period].Or(0)
		if prev != 0 {
			roc[i] = series.Of((data[i].Or(0) - prev) / prev * 100)
		} else {
			roc[i] = series.Of(0)
		}
	}
	return roc
}

// ============================================================================
// MACD VARIANTS
// ============================================================================

// MACDResult holds the latest MACD, signal and histogram values of a
// lag-reduced MACD. Histogram is always MACD minus Signal.
type MACDResult struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// CalculateZLEMAMACD computes a MACD built entirely on zero-lag EMAs: fast
// and slow ZLEMAs form the MACD line, and a ZLEMA of the MACD line forms the
// signal line.
func CalculateZLEMAMACD(data series.Series, fastPeriod, slowPeriod, signalPeriod int) MACDResult {
	return macdOn(data, fastPeriod, slowPeriod, signalPeriod, CalculateZLEMA)
}

// CalculateTEMAMACD computes a MACD built entirely on triple EMAs.
func CalculateTEMAMACD(data series.Series, fastPeriod, slowPeriod, signalPeriod int) MACDResult {
	return macdOn(data, fastPeriod, slowPeriod, signalPeriod, CalculateTEMA)
}

func macdOn(data series.Series, fastPeriod, slowPeriod, signalPeriod int, base func(series.Series, int) series.Series) MACDResult {
	fast := base(data, fastPeriod)
	slow := base(data, slowPeriod)

	macdLine := series.Undefined(len(data))
	for i := range data {
		if fast[i].Defined && slow[i].Defined {
			macdLine[i] = series.Of(fast[i].Value - slow[i].Value)
		}
	}
	signalLine := base(macdLine, signalPeriod)

	macd := macdLine.Last().Or(0)
	signal := signalLine.Last().Or(0)
	return MACDResult{
		MACD:      macd,
		Signal:    signal,
		Histogram: macd - signal,
	}
}

// ============================================================================
// LATEST-VALUE BUNDLE
// ============================================================================

// Snapshot holds the latest value of each lag-reduced indicator at its
// default period, with undefined values reported as 0.
type Snapshot struct {
	ZLEMA20   float64    `json:"zlema20"`
	HullMA20  float64    `json:"hma20"`
	TEMA20    float64    `json:"tema20"`
	DEMA20    float64    `json:"dema20"`
	KAMA10    float64    `json:"kama10"`
	ROC10     float64    `json:"roc10"`
	ZLEMAMACD MACDResult `json:"zlema_macd"`
	TEMAMACD  MACDResult `json:"tema_macd"`
}

// Latest computes the default-period snapshot over a close-price series.
func Latest(closes series.Series) Snapshot {
	return Snapshot{
		ZLEMA20:   CalculateZLEMA(closes, 20).Last().Or(0),
		HullMA20:  CalculateHullMA(closes, 20).Last().Or(0),
		TEMA20:    CalculateTEMA(closes, 20).Last().Or(0),
		DEMA20:    CalculateDEMA(closes, 20).Last().Or(0),
		KAMA10:    CalculateKAMA(closes, 10, 2, 30).Last().Or(0),
		ROC10:     CalculateROC(closes, 10).Last().Or(0),
		ZLEMAMACD: CalculateZLEMAMACD(closes, 12, 26, 9),
		TEMAMACD:  CalculateTEMAMACD(closes, 12, 26, 9),
	}
}
