package market

// Trend is a coarse directional reading for an intermarket proxy.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// VIXLevel buckets the volatility index reading.
type VIXLevel string

const (
	VIXElevated VIXLevel = "elevated"
	VIXNormal   VIXLevel = "normal"
	VIXLow      VIXLevel = "low"
)

// YieldTrend describes the direction of treasury yields.
type YieldTrend string

const (
	YieldRising  YieldTrend = "rising"
	YieldFalling YieldTrend = "falling"
	YieldStable  YieldTrend = "stable"
)

// IntermarketData summarizes related-market context supplied by an external
// collaborator. The engine only reads the equity-index trend as its fourth
// neural-index vote; the rest is carried through for display.
type IntermarketData struct {
	SPYTrend            Trend      `json:"spy_trend"`
	DXYTrend            Trend      `json:"dxy_trend"`
	VIXLevel            VIXLevel   `json:"vix_level"`
	YieldTrend          YieldTrend `json:"yield_trend"`
	GoldTrend           Trend      `json:"gold_trend"`
	CorrelationStrength float64    `json:"correlation_strength"`
}

// NeutralIntermarket returns the all-neutral default used when no
// intermarket summary is supplied.
func NeutralIntermarket() IntermarketData {
	return IntermarketData{
		SPYTrend:   TrendNeutral,
		DXYTrend:   TrendNeutral,
		VIXLevel:   VIXNormal,
		YieldTrend: YieldStable,
		GoldTrend:  TrendNeutral,
	}
}
