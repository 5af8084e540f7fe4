package regime

import (
	"math"
	"sort"

	"signal-fusion/internal/market"
)

// VolumeCluster is a price level with concentrated traded volume.
type VolumeCluster struct {
	Price       float64 `json:"price"`
	Volume      float64 `json:"volume"`
	BuyDominant bool    `json:"buy_dominant"`
}

// OrderFlowEstimate summarizes buy/sell pressure derived from candle shape.
type OrderFlowEstimate struct {
	CumulativeDelta float64         `json:"cumulative_delta"`
	DeltaHistory    []float64       `json:"delta_history"`
	BuyVolume       float64         `json:"buy_volume"`
	SellVolume      float64         `json:"sell_volume"`
	VolumeImbalance float64         `json:"volume_imbalance"`
	VWAP            float64         `json:"vwap"`
	VWAPUpper       float64         `json:"vwap_upper"`
	VWAPLower       float64         `json:"vwap_lower"`
	VolumeClusters  []VolumeCluster `json:"volume_clusters"`
	PressureRatio   float64         `json:"pressure_ratio"`
}

// Estimator produces an order-flow estimate for a candle window. The default
// implementation infers flow from candle geometry; a provider backed by real
// tape data can be substituted behind this interface without touching the
// fusion logic.
type Estimator interface {
	Estimate(candles []market.Candle) OrderFlowEstimate
}

// CandleShapeEstimator attributes volume to buyers and sellers by where the
// close sits within each candle's range. This is a heuristic, not tape data:
// cumulative delta and pressure ratios are directional hints, not
// measurements.
type CandleShapeEstimator struct{}

// NewCandleShapeEstimator creates the candle-shape order-flow estimator.
func NewCandleShapeEstimator() *CandleShapeEstimator {
	return &CandleShapeEstimator{}
}

// Estimate computes the pseudo order-flow metrics. Windows below 5 candles
// return the neutral default (pressure ratio 0.5).
func (e *CandleShapeEstimator) Estimate(candles []market.Candle) OrderFlowEstimate {
	if len(candles) < 5 {
		return OrderFlowEstimate{PressureRatio: 0.5}
	}

	type bucket struct {
		buy  float64
		sell float64
	}

	var (
		cumulativeDelta float64
		buyVolume       float64
		sellVolume      float64
		totalTPV        float64
		totalVolume     float64
	)
	deltaHistory := make([]float64, 0, len(candles))
	priceVolume := make(map[float64]*bucket)

	for _, candle := range candles {
		buyRatio := 0.5
		if r := candle.High - candle.Low; r > 0 {
			buyRatio = (candle.Close - candle.Low) / r
		}

		candleBuy := candle.Volume * buyRatio
		candleSell := candle.Volume * (1 - buyRatio)
		delta := candleBuy - candleSell

		cumulativeDelta += delta
		deltaHistory = append(deltaHistory, delta)
		buyVolume += candleBuy
		sellVolume += candleSell

		typical := candle.TypicalPrice()
		totalTPV += typical * candle.Volume
		totalVolume += candle.Volume

		level := math.Round(typical*100) / 100
		b, ok := priceVolume[level]
		if !ok {
			b = &bucket{}
			priceVolume[level] = b
		}
		b.buy += candleBuy
		b.sell += candleSell
	}

	vwap := 0.0
	if totalVolume > 0 {
		vwap = totalTPV / totalVolume
	}

	sumSquaredDev := 0.0
	for _, candle := range candles {
		dev := candle.TypicalPrice() - vwap
		sumSquaredDev += dev * dev * candle.Volume
	}
	stdDev := 0.0
	if totalVolume > 0 {
		stdDev = math.Sqrt(sumSquaredDev / totalVolume)
	}

	clusters := make([]VolumeCluster, 0, len(priceVolume))
	for price, b := range priceVolume {
		clusters = append(clusters, VolumeCluster{
			Price:       price,
			Volume:      b.buy + b.sell,
			BuyDominant: b.buy > b.sell,
		})
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].Volume > clusters[j].Volume })
	if len(clusters) > 5 {
		clusters = clusters[:5]
	}

	pressureRatio := 0.5
	if total := buyVolume + sellVolume; total > 0 {
		pressureRatio = buyVolume / total
	}

	return OrderFlowEstimate{
		CumulativeDelta: cumulativeDelta,
		DeltaHistory:    deltaHistory,
		BuyVolume:       buyVolume,
		SellVolume:      sellVolume,
		VolumeImbalance: buyVolume - sellVolume,
		VWAP:            vwap,
		VWAPUpper:       vwap + stdDev*2,
		VWAPLower:       vwap - stdDev*2,
		VolumeClusters:  clusters,
		PressureRatio:   pressureRatio,
	}
}
