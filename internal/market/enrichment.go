package market

import "context"

// OrderBookSnapshot is a point-in-time depth summary for a symbol, supplied
// by an external market-data collaborator.
type OrderBookSnapshot struct {
	Symbol        string   `json:"symbol"`
	Timestamp     int64    `json:"timestamp"`
	BestBid       float64  `json:"best_bid"`
	BestAsk       float64  `json:"best_ask"`
	Spread        float64  `json:"spread"`
	SpreadPercent float64  `json:"spread_percent"`
	BidDepth      float64  `json:"bid_depth"`
	AskDepth      float64  `json:"ask_depth"`
	Imbalance     float64  `json:"imbalance"`
	TrueDelta     float64  `json:"true_delta"`
	BidWall       *float64 `json:"bid_wall,omitempty"`
	AskWall       *float64 `json:"ask_wall,omitempty"`
}

// AggregatedTradeSummary condenses recent public trades for a symbol.
type AggregatedTradeSummary struct {
	Symbol     string  `json:"symbol"`
	BuyVolume  float64 `json:"buy_volume"`
	SellVolume float64 `json:"sell_volume"`
	TrueDelta  float64 `json:"true_delta"`
	VWAP       float64 `json:"vwap"`
	Trades     int     `json:"trades"`
	LastUpdate int64   `json:"last_update"`
}

// EnrichmentProvider fetches optional order-book and trade context for
// crypto-style symbols. Implementations live outside this module; errors are
// swallowed at the call site and never affect the final signal.
type EnrichmentProvider interface {
	OrderBook(ctx context.Context, symbol string) (*OrderBookSnapshot, error)
	RecentTrades(ctx context.Context, symbol string) (*AggregatedTradeSummary, error)
}
