// Package engine fuses the indicator layers into one predictive snapshot per
// symbol: lag-reduced trend filters, regime and order-flow context, advanced
// confirmations, liquidity-sweep gating and an ordered final-signal rule
// table.
package engine

import (
	"time"

	"signal-fusion/internal/indicator/advanced"
	"signal-fusion/internal/indicator/regime"
	"signal-fusion/internal/indicator/zerolag"
	"signal-fusion/internal/market"
)

// Signal is the final fused verdict.
type Signal string

const (
	SignalStrongBuy  Signal = "strong_buy"
	SignalBuy        Signal = "buy"
	SignalNeutral    Signal = "neutral"
	SignalSell       Signal = "sell"
	SignalStrongSell Signal = "strong_sell"
)

// Direction is the neural index forecast direction.
type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionNeutral Direction = "neutral"
)

// Cross labels a moving-average crossover.
type Cross string

const (
	CrossBullish Cross = "bullish"
	CrossBearish Cross = "bearish"
	CrossNone    Cross = "none"
)

// Crossovers reports the latest EMA crossovers. CrossedDaysAgo is 1 on the
// bar where the cross is detected and 0 otherwise; only the previous bar is
// inspected, so older crosses are not dated.
type Crossovers struct {
	ShortMediumCross Cross `json:"short_medium_cross"`
	MediumLongCross  Cross `json:"medium_long_cross"`
	CrossedDaysAgo   int   `json:"crossed_days_ago"`
}

// PredictedMovingAverages holds the EMA stack plus one-step-ahead
// projections.
type PredictedMovingAverages struct {
	ShortTerm           float64    `json:"short_term"`
	MediumTerm          float64    `json:"medium_term"`
	LongTerm            float64    `json:"long_term"`
	ShortTermPredicted  float64    `json:"short_term_predicted"`
	MediumTermPredicted float64    `json:"medium_term_predicted"`
	LongTermPredicted   float64    `json:"long_term_predicted"`
	Crossovers          Crossovers `json:"crossovers"`
}

// IndicatorAgreement records the four neural-index votes.
type IndicatorAgreement struct {
	Momentum    market.Trend `json:"momentum"`
	Trend       market.Trend `json:"trend"`
	Volume      market.Trend `json:"volume"`
	Intermarket market.Trend `json:"intermarket"`
}

// NeuralIndex is a vote-based direction forecast: four independent reads
// (momentum, trend, volume, intermarket) vote, and three or more agreeing
// set the direction.
type NeuralIndex struct {
	Direction          Direction          `json:"direction"`
	Confidence         float64            `json:"confidence"`
	DaysAhead          int                `json:"days_ahead"`
	IndicatorAgreement IndicatorAgreement `json:"indicator_agreement"`
	CompleteAgreement  bool               `json:"complete_agreement"`
}

// TrendStrength is the composite trend read built from the quick scalar
// helpers.
type TrendStrength struct {
	ADX               float64 `json:"adx"`
	ADXTrend          string  `json:"adx_trend"`
	Momentum          float64 `json:"momentum"`
	MomentumDirection string  `json:"momentum_direction"`
	RVOL              float64 `json:"rvol"`
	RVOLSignal        string  `json:"rvol_signal"`
	ZScore            float64 `json:"z_score"`
	OverallStrength   float64 `json:"overall_strength"`
}

// PredictedRange projects the next-bar high/low band.
type PredictedRange struct {
	PredictedHigh   float64 `json:"predicted_high"`
	PredictedLow    float64 `json:"predicted_low"`
	CurrentPrice    float64 `json:"current_price"`
	UpPotential     float64 `json:"up_potential"`
	DownRisk        float64 `json:"down_risk"`
	RiskRewardRatio float64 `json:"risk_reward_ratio"`
	Confidence      float64 `json:"confidence"`
}

// ConfirmationFilters are the six boolean checks behind the double
// confirmation score.
type ConfirmationFilters struct {
	NeuralIndexUp      bool `json:"neural_index_up"`
	MAsCrossed         bool `json:"mas_crossed"`
	MomentumAligned    bool `json:"momentum_aligned"`
	VolumeConfirmed    bool `json:"volume_confirmed"`
	IntermarketAligned bool `json:"intermarket_aligned"`
	TrendStrong        bool `json:"trend_strong"`
}

// DoubleConfirmation is the weighted cross-check of the neural index against
// the MA and trend reads.
type DoubleConfirmation struct {
	Confirmed     bool                `json:"confirmed"`
	Signals       []string            `json:"signals"`
	Score         float64             `json:"score"`
	RequiredScore float64             `json:"required_score"`
	Filters       ConfirmationFilters `json:"filters"`
}

// AdvancedBundle carries the confirmation layer plus the orchestrator-level
// reads derived from it.
type AdvancedBundle struct {
	advanced.Values
	MTFAlignment  advanced.Alignment           `json:"mtf_alignment"`
	EnhancedScore advanced.EnhancedSignalScore `json:"enhanced_score"`

	// Optional enrichment, nil unless a provider supplied it.
	OrderBook *market.OrderBookSnapshot      `json:"order_book,omitempty"`
	TradeFlow *market.AggregatedTradeSummary `json:"trade_flow,omitempty"`
}

// PredictiveSnapshot is the full fused analysis for one symbol and window.
type PredictiveSnapshot struct {
	ID                 string                    `json:"id"`
	Symbol             string                    `json:"symbol"`
	Timestamp          time.Time                 `json:"timestamp"`
	PredictedMAs       PredictedMovingAverages   `json:"predicted_mas"`
	NeuralIndex        NeuralIndex               `json:"neural_index"`
	TrendStrength      TrendStrength             `json:"trend_strength"`
	PredictedRange     PredictedRange            `json:"predicted_range"`
	DoubleConfirmation DoubleConfirmation        `json:"double_confirmation"`
	LiquiditySweep     LiquiditySweep            `json:"liquidity_sweep"`
	ZeroLag            zerolag.Snapshot          `json:"zero_lag"`
	OrderFlow          regime.OrderFlowEstimate  `json:"order_flow"`
	Regime             regime.Snapshot           `json:"regime"`
	Advanced           AdvancedBundle            `json:"advanced"`
	OverallSignal      Signal                    `json:"overall_signal"`
	SignalConfidence   float64                   `json:"signal_confidence"`
}
