package engine

import (
	"math"

	"signal-fusion/internal/market"
)

// CalculatePredictedMAs computes the EMA 9/21/50 stack, projects each one
// step ahead and flags fresh crossovers by comparing against the stack one
// bar earlier.
func CalculatePredictedMAs(candles []market.Candle) PredictedMovingAverages {
	closes := market.Closes(candles)

	shortTerm := emaLast(closes, 9)
	mediumTerm := emaLast(closes, 21)
	longTerm := emaLast(closes, 50)

	var prevCloses []float64
	if len(closes) > 0 {
		prevCloses = closes[:len(closes)-1]
	}
	prevShort := emaLast(prevCloses, 9)
	prevMedium := emaLast(prevCloses, 21)
	prevLong := emaLast(prevCloses, 50)

	shortMediumCross, shortMediumDays := detectCrossover(shortTerm, mediumTerm, prevShort, prevMedium)
	mediumLongCross, mediumLongDays := detectCrossover(mediumTerm, longTerm, prevMedium, prevLong)

	daysAgo := shortMediumDays
	if mediumLongDays > daysAgo {
		daysAgo = mediumLongDays
	}

	return PredictedMovingAverages{
		ShortTerm:           shortTerm,
		MediumTerm:          mediumTerm,
		LongTerm:            longTerm,
		ShortTermPredicted:  predictFutureMA(shortTerm, closes),
		MediumTermPredicted: predictFutureMA(mediumTerm, closes),
		LongTermPredicted:   predictFutureMA(longTerm, closes),
		Crossovers: Crossovers{
			ShortMediumCross: shortMediumCross,
			MediumLongCross:  mediumLongCross,
			CrossedDaysAgo:   daysAgo,
		},
	}
}

// CalculateNeuralIndex collects four directional votes and calls a
// direction when at least three agree. The intermarket vote follows the SPY
// trend, defaulting to neutral when no intermarket data is supplied.
func CalculateNeuralIndex(candles []market.Candle, intermarket *market.IntermarketData) NeuralIndex {
	closes := market.Closes(candles)

	rsi := quickRSI(closes, 14)
	momentum := priceMomentum(closes)
	rvol := relativeVolume(candles)
	z := zScore(closes)

	momentumVote := market.TrendNeutral
	if momentum > 0.02 {
		momentumVote = market.TrendBullish
	} else if momentum < -0.02 {
		momentumVote = market.TrendBearish
	}

	trendVote := market.TrendNeutral
	if rsi > 55 && z > 0.5 {
		trendVote = market.TrendBullish
	} else if rsi < 45 && z < -0.5 {
		trendVote = market.TrendBearish
	}

	volumeVote := market.TrendNeutral
	if rvol > 1.5 && momentum > 0 {
		volumeVote = market.TrendBullish
	} else if rvol > 1.5 && momentum < 0 {
		volumeVote = market.TrendBearish
	}

	intermarketVote := market.TrendNeutral
	if intermarket != nil {
		intermarketVote = intermarket.SPYTrend
	}

	bullish, bearish := 0, 0
	for _, vote := range []market.Trend{momentumVote, trendVote, volumeVote, intermarketVote} {
		switch vote {
		case market.TrendBullish:
			bullish++
		case market.TrendBearish:
			bearish++
		}
	}

	direction := DirectionNeutral
	if bullish >= 3 {
		direction = DirectionUp
	} else if bearish >= 3 {
		direction = DirectionDown
	}

	strongest := bullish
	if bearish > strongest {
		strongest = bearish
	}

	return NeuralIndex{
		Direction:  direction,
		Confidence: float64(strongest) / 4 * 100,
		DaysAhead:  1,
		IndicatorAgreement: IndicatorAgreement{
			Momentum:    momentumVote,
			Trend:       trendVote,
			Volume:      volumeVote,
			Intermarket: intermarketVote,
		},
		CompleteAgreement: bullish == 4 || bearish == 4,
	}
}

// CalculateTrendStrength composes ADX, momentum, relative volume and the
// z-score into one 0-100 strength figure.
func CalculateTrendStrength(candles []market.Candle) TrendStrength {
	closes := market.Closes(candles)

	adx := quickADX(candles, 14)
	momentum := priceMomentum(closes)
	rvol := relativeVolume(candles)
	z := zScore(closes)

	adxTrend := "weak"
	if adx > 40 {
		adxTrend = "strong"
	} else if adx > 25 {
		adxTrend = "moderate"
	}

	momentumDirection := "stable"
	if math.Abs(momentum) > 0.03 {
		momentumDirection = "decelerating"
		if momentum > 0 {
			momentumDirection = "accelerating"
		}
	}

	rvolSignal := "normal"
	if rvol > 1.5 {
		rvolSignal = "high"
	} else if rvol < 0.7 {
		rvolSignal = "low"
	}

	volumeComponent := 0.0
	if rvol > 1 {
		volumeComponent = math.Min(rvol, 3) / 3 * 25
	}
	zComponent := math.Abs(z) * 20
	if math.Abs(z) > 1 {
		zComponent = 20
	}

	overall := adx/50*30 + math.Abs(momentum)*100*25 + volumeComponent + zComponent

	return TrendStrength{
		ADX:               adx,
		ADXTrend:          adxTrend,
		Momentum:          momentum * 100,
		MomentumDirection: momentumDirection,
		RVOL:              rvol,
		RVOLSignal:        rvolSignal,
		ZScore:            z,
		OverallStrength:   math.Min(100, overall),
	}
}

// CalculatePredictedRange projects the next-bar high/low band from the ATR
// and the 5-bar trend, and derives the risk/reward read from it.
func CalculatePredictedRange(candles []market.Candle) PredictedRange {
	atr := quickATR(candles, 14)
	high, low, confidence := predictHighLow(candles, atr)

	currentPrice := 0.0
	if len(candles) > 0 {
		currentPrice = candles[len(candles)-1].Close
	}

	upPotential, downRisk := 0.0, 0.0
	if currentPrice > 0 {
		upPotential = (high - currentPrice) / currentPrice * 100
		downRisk = (currentPrice - low) / currentPrice * 100
	}
	riskReward := 1.0
	if downRisk > 0 {
		riskReward = upPotential / downRisk
	}

	return PredictedRange{
		PredictedHigh:   high,
		PredictedLow:    low,
		CurrentPrice:    currentPrice,
		UpPotential:     upPotential,
		DownRisk:        downRisk,
		RiskRewardRatio: riskReward,
		Confidence:      confidence,
	}
}

func predictHighLow(candles []market.Candle, atr float64) (high, low, confidence float64) {
	if len(candles) < 5 {
		if len(candles) == 0 {
			return 0, 0, 0.3
		}
		last := candles[len(candles)-1]
		return last.High, last.Low, 0.3
	}

	current := candles[len(candles)-1]
	recent := candles[len(candles)-5:]

	highestHigh, lowestLow := recent[0].High, recent[0].Low
	avgRange := 0.0
	for _, c := range recent {
		if c.High > highestHigh {
			highestHigh = c.High
		}
		if c.Low < lowestLow {
			lowestLow = c.Low
		}
		avgRange += c.High - c.Low
	}
	avgRange /= 5

	const volatilityMultiplier = 1.2
	trend := (current.Close - recent[0].Close) / recent[0].Close

	switch {
	case trend > 0.01:
		high = highestHigh + atr*volatilityMultiplier*0.5
		low = current.Close - atr*0.8
	case trend < -0.01:
		high = current.Close + atr*0.8
		low = lowestLow - atr*volatilityMultiplier*0.5
	default:
		high = current.Close + avgRange*0.6
		low = current.Close - avgRange*0.6
	}

	confidence = math.Min(0.85, 0.5+float64(len(candles))/100*0.2)
	return high, low, confidence
}
