package engine

import (
	"fmt"

	"signal-fusion/internal/market"
)

// SweepStatus is the liquidity-sweep verdict.
type SweepStatus string

const (
	SweepConfirmed    SweepStatus = "sweep_confirmed"
	SweepRejected     SweepStatus = "sweep_rejected"
	LiquidityBuilding SweepStatus = "liquidity_building"
)

// LiquiditySweep is the three-gate sweep evaluation: a stop-run below the
// swing low with reclaim (gate 1), a volume spike (gate 2) and a bearish
// fair value gap above price as the exit magnet (gate 3).
type LiquiditySweep struct {
	Status           SweepStatus    `json:"status"`
	Gate1Passed      bool           `json:"gate1_passed"`
	Gate2Passed      bool           `json:"gate2_passed"`
	Gate3Passed      bool           `json:"gate3_passed"`
	SwingLow         float64        `json:"swing_low"`
	CurrentLow       float64        `json:"current_low"`
	CurrentClose     float64        `json:"current_close"`
	VolumeMultiplier float64        `json:"volume_multiplier"`
	VolumeSMA        float64        `json:"volume_sma"`
	CurrentVolume    float64        `json:"current_volume"`
	IsConsolidating  bool           `json:"is_consolidating"`
	IsWeakSweep      bool           `json:"is_weak_sweep"`
	TargetFVG        *FairValueGap  `json:"target_fvg,omitempty"`
	AllFVGs          []FairValueGap `json:"all_fvgs"`
	Reasons          []string       `json:"reasons"`
}

const (
	sweepLookback     = 20
	sweepVolumeWindow = 10
	sweepVolumeFactor = 1.5
)

// EvaluateLiquiditySweep runs the gate sequence against the latest bar. The
// swing low is the minimum low of the 20 bars before the current one, and
// the volume baseline is the 10-bar SMA excluding the current bar. A
// consolidation read (10-bar close range inside the ATR with a weak DX)
// overrides the gates and parks the status at liquidity_building. Windows
// shorter than 21 bars return the building default.
func EvaluateLiquiditySweep(candles []market.Candle) LiquiditySweep {
	if len(candles) < sweepLookback+1 {
		sweep := LiquiditySweep{
			Status:          LiquidityBuilding,
			IsConsolidating: true,
			Reasons:         []string{"Insufficient data for liquidity analysis"},
		}
		if len(candles) > 0 {
			last := candles[len(candles)-1]
			sweep.CurrentLow = last.Low
			sweep.CurrentClose = last.Close
			sweep.CurrentVolume = last.Volume
		}
		return sweep
	}

	var reasons []string
	current := candles[len(candles)-1]
	lookback := candles[len(candles)-1-sweepLookback : len(candles)-1]

	swingLow := lookback[0].Low
	for _, c := range lookback[1:] {
		if c.Low < swingLow {
			swingLow = c.Low
		}
	}

	gate1 := current.Low < swingLow && current.Close > swingLow
	switch {
	case gate1:
		reasons = append(reasons, fmt.Sprintf("GATE 1 OPEN: Swept swing low $%.2f and rejected", swingLow))
	case current.Low < swingLow:
		reasons = append(reasons, "Sweep detected but no rejection (close below swing low)")
	default:
		reasons = append(reasons, fmt.Sprintf("No sweep: current low $%.2f >= swing low $%.2f", current.Low, swingLow))
	}

	volumeWindow := candles[len(candles)-1-sweepVolumeWindow : len(candles)-1]
	volumeSMA := 0.0
	for _, c := range volumeWindow {
		volumeSMA += c.Volume
	}
	volumeSMA /= float64(len(volumeWindow))

	volumeMultiplier := 0.0
	if volumeSMA > 0 {
		volumeMultiplier = current.Volume / volumeSMA
	}
	gate2 := volumeMultiplier >= sweepVolumeFactor
	if gate2 {
		reasons = append(reasons, fmt.Sprintf("GATE 2 OPEN: Volume %.2fx SMA (>1.5x required)", volumeMultiplier))
	} else {
		reasons = append(reasons, fmt.Sprintf("Gate 2 closed: Volume %.2fx SMA (<1.5x)", volumeMultiplier))
	}

	allFVGs := DetectFairValueGaps(candles, current.Close)
	var magnets []FairValueGap
	for _, gap := range allFVGs {
		if gap.Type == GapBearish && gap.Bottom > current.Close {
			magnets = append(magnets, gap)
		}
	}

	gate3 := false
	weakSweep := false
	var target *FairValueGap
	if gate1 && gate2 {
		if len(magnets) > 0 {
			nearest := magnets[0]
			for _, gap := range magnets[1:] {
				if gap.Bottom < nearest.Bottom {
					nearest = gap
				}
			}
			target = &nearest
			gate3 = true
			reasons = append(reasons, fmt.Sprintf("GATE 3 OPEN: Found Magnet Zone at $%.2f-$%.2f (Target Exit)", nearest.Top, nearest.Bottom))
		} else {
			weakSweep = true
			reasons = append(reasons, "GATE 3 CLOSED: No Bearish FVG above price - Sweep is WEAK")
		}
	} else if len(magnets) > 0 {
		reasons = append(reasons, fmt.Sprintf("Gate 3: %d Bearish FVG(s) detected above price (awaiting Gate 1 & 2)", len(magnets)))
	} else {
		reasons = append(reasons, "Gate 3: No Bearish FVG detected above current price")
	}

	atr := quickATR(candles, 14)
	recentCloses := market.Closes(candles[len(candles)-10:])
	closeRange := maxOf(recentCloses) - minOf(recentCloses)
	adx := quickADX(candles, 14)

	consolidating := closeRange <= atr && adx < 25
	if consolidating {
		reasons = append(reasons, fmt.Sprintf("CONSOLIDATION: Range %.2f <= ATR %.2f, ADX %.1f < 25", closeRange, atr, adx))
	}

	var status SweepStatus
	switch {
	case consolidating:
		status = LiquidityBuilding
		reasons = prepend(reasons, "WAIT MODE: Liquidity Building - Sideways Movement Detected")
	case gate1 && gate2 && gate3:
		status = SweepConfirmed
		reasons = prepend(reasons, "FULL LIQUIDITY SWEEP CONFIRMED: All 3 Gates Open")
	case gate1 && gate2:
		status = SweepRejected
		reasons = prepend(reasons, "WEAK SWEEP: Gate 1 & 2 Open but No FVG Target - Reduced Confidence")
	case !gate1:
		status = SweepRejected
		reasons = prepend(reasons, "NO ENTRY: Gate 1 Closed - No Valid Liquidity Sweep")
	default:
		status = SweepRejected
		reasons = prepend(reasons, "NO ENTRY: Gate 2 Closed - Insufficient Volume Confirmation")
	}

	return LiquiditySweep{
		Status:           status,
		Gate1Passed:      gate1,
		Gate2Passed:      gate2,
		Gate3Passed:      gate3,
		SwingLow:         swingLow,
		CurrentLow:       current.Low,
		CurrentClose:     current.Close,
		VolumeMultiplier: volumeMultiplier,
		VolumeSMA:        volumeSMA,
		CurrentVolume:    current.Volume,
		IsConsolidating:  consolidating,
		IsWeakSweep:      weakSweep,
		TargetFVG:        target,
		AllFVGs:          allFVGs,
		Reasons:          reasons,
	}
}

func prepend(list []string, head string) []string {
	return append([]string{head}, list...)
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
