package engine

import "signal-fusion/internal/market"

// Double-confirmation filter weights. An extra 30 points land when all four
// neural votes agree, and the total is capped at 100.
const (
	confirmNeuralWeight      = 20
	confirmCrossWeight       = 15
	confirmMomentumWeight    = 15
	confirmVolumeWeight      = 15
	confirmIntermarketWeight = 15
	confirmTrendWeight       = 20
	confirmAgreementBonus    = 30
	confirmRequiredScore     = 70
)

// CalculateDoubleConfirmation cross-checks the neural index against the MA
// crossovers and the trend read. Six weighted filters accumulate a 0-100
// score; 70 or more confirms.
func CalculateDoubleConfirmation(neural NeuralIndex, mas PredictedMovingAverages, trend TrendStrength) DoubleConfirmation {
	filters := ConfirmationFilters{
		NeuralIndexUp: neural.Direction == DirectionUp,
		MAsCrossed: mas.Crossovers.ShortMediumCross != CrossNone ||
			mas.Crossovers.MediumLongCross != CrossNone,
		MomentumAligned:    neural.IndicatorAgreement.Momentum != market.TrendNeutral,
		VolumeConfirmed:    neural.IndicatorAgreement.Volume != market.TrendNeutral,
		IntermarketAligned: neural.IndicatorAgreement.Intermarket != market.TrendNeutral,
		TrendStrong:        trend.ADXTrend != "weak",
	}

	var signals []string
	score := 0.0

	if filters.NeuralIndexUp {
		signals = append(signals, "Neural Index UP")
		score += confirmNeuralWeight
	}
	if filters.MAsCrossed {
		signals = append(signals, "MA Crossover Detected")
		score += confirmCrossWeight
	}
	if filters.MomentumAligned {
		signals = append(signals, "Momentum Aligned")
		score += confirmMomentumWeight
	}
	if filters.VolumeConfirmed {
		signals = append(signals, "Volume Confirmed")
		score += confirmVolumeWeight
	}
	if filters.IntermarketAligned {
		signals = append(signals, "Intermarket Aligned")
		score += confirmIntermarketWeight
	}
	if filters.TrendStrong {
		signals = append(signals, "Strong Trend (ADX)")
		score += confirmTrendWeight
	}
	if neural.CompleteAgreement {
		signals = append(signals, "COMPLETE AGREEMENT")
		score += confirmAgreementBonus
	}

	if score > 100 {
		score = 100
	}

	return DoubleConfirmation{
		Confirmed:     score >= confirmRequiredScore,
		Signals:       signals,
		Score:         score,
		RequiredScore: confirmRequiredScore,
		Filters:       filters,
	}
}
