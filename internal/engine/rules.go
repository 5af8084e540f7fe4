package engine

import (
	"signal-fusion/internal/indicator/advanced"
	"signal-fusion/internal/indicator/regime"
)

// ruleContext carries everything the final-signal rules may inspect.
type ruleContext struct {
	sweep      LiquiditySweep
	regime     regime.Snapshot
	advanced   advanced.Values
	enhanced   advanced.EnhancedSignalScore
	neural     NeuralIndex
	doubleConf DoubleConfirmation
}

func (c ruleContext) sessionBlocked() bool {
	return !c.advanced.SessionFilter.ShouldTrade
}

func (c ruleContext) consolidating() bool {
	return c.sweep.IsConsolidating ||
		c.regime.Regime == regime.Consolidating ||
		c.regime.Regime == regime.Ranging ||
		!c.regime.ShouldTrade
}

// signalRule is one step of the final-signal ladder. Rules are evaluated in
// order and the first one that applies decides the verdict.
type signalRule struct {
	name    string
	applies func(ruleContext) bool
	decide  func(ruleContext) (Signal, float64)
}

var signalRules = []signalRule{
	{
		name: "market_not_tradeable",
		applies: func(c ruleContext) bool {
			return c.consolidating() || c.sessionBlocked()
		},
		decide: func(c ruleContext) (Signal, float64) {
			if c.sessionBlocked() {
				return SignalNeutral, 15
			}
			return SignalNeutral, 20
		},
	},
	{
		name: "liquidity_building",
		applies: func(c ruleContext) bool {
			return c.sweep.Status == LiquidityBuilding
		},
		decide: func(c ruleContext) (Signal, float64) {
			return SignalNeutral, 30
		},
	},
	{
		name: "quality_sweep",
		applies: func(c ruleContext) bool {
			return c.enhanced.PassesThreshold && c.sweep.Status == SweepConfirmed
		},
		decide: func(c ruleContext) (Signal, float64) {
			bias := c.advanced.MarketStructure.TrendBias
			tsiPositive := c.advanced.TSI > c.advanced.TSISignal
			strong := c.enhanced.MetConfirmations >= 5 || c.advanced.SqueezeFiring != advanced.FiringNone

			switch {
			case bias == advanced.BiasBullish || (c.neural.Direction == DirectionUp && tsiPositive):
				if strong {
					return SignalStrongBuy, c.enhanced.TotalScore
				}
				return SignalBuy, c.enhanced.TotalScore
			case bias == advanced.BiasBearish || (c.neural.Direction == DirectionDown && !tsiPositive):
				if strong {
					return SignalStrongSell, c.enhanced.TotalScore
				}
				return SignalSell, c.enhanced.TotalScore
			}
			return SignalNeutral, 40
		},
	},
	{
		name: "confirmed_sweep",
		applies: func(c ruleContext) bool {
			return c.sweep.Status == SweepConfirmed && c.doubleConf.Confirmed &&
				c.neural.Direction != DirectionNeutral
		},
		decide: func(c ruleContext) (Signal, float64) {
			if c.neural.Direction == DirectionUp {
				if c.neural.CompleteAgreement {
					return SignalStrongBuy, c.doubleConf.Score
				}
				return SignalBuy, c.doubleConf.Score
			}
			if c.neural.CompleteAgreement {
				return SignalStrongSell, c.doubleConf.Score
			}
			return SignalSell, c.doubleConf.Score
		},
	},
	{
		name: "double_confirmation_only",
		applies: func(c ruleContext) bool {
			return c.doubleConf.Confirmed && c.neural.Direction != DirectionNeutral
		},
		decide: func(c ruleContext) (Signal, float64) {
			confidence := c.doubleConf.Score
			if confidence > 60 {
				confidence = 60
			}
			if c.neural.Direction == DirectionUp {
				return SignalBuy, confidence
			}
			return SignalSell, confidence
		},
	},
	{
		name:    "default_neutral",
		applies: func(ruleContext) bool { return true },
		decide: func(ruleContext) (Signal, float64) {
			return SignalNeutral, 50
		},
	},
}

// resolveSignal walks the rule ladder and returns the first match together
// with the rule's name for logging.
func resolveSignal(c ruleContext) (Signal, float64, string) {
	for _, rule := range signalRules {
		if rule.applies(c) {
			signal, confidence := rule.decide(c)
			return signal, confidence, rule.name
		}
	}
	return SignalNeutral, 50, "default_neutral"
}
