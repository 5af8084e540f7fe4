package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"signal-fusion/internal/indicator/advanced"
	"signal-fusion/internal/indicator/regime"
	"signal-fusion/internal/indicator/zerolag"
	"signal-fusion/internal/market"
)

// Options configures an Engine. Zero fields fall back to the defaults named
// on each field.
type Options struct {
	// Cache stores computed snapshots. Defaults to an in-process MemoryCache.
	Cache SnapshotCache
	// CacheTTL bounds snapshot reuse. Defaults to DefaultCacheTTL.
	CacheTTL time.Duration
	// OrderFlow estimates buy/sell pressure. Defaults to the candle-shape
	// estimator.
	OrderFlow regime.Estimator
	// RegimePeriod is the directional-movement period. Defaults to 14.
	RegimePeriod int
	// Enrichment optionally supplies order-book and trade data for
	// crypto-style symbols. Nil disables enrichment.
	Enrichment market.EnrichmentProvider
	// Logger receives engine diagnostics.
	Logger zerolog.Logger
	// Clock supplies the current time, for session gating and cache expiry.
	// Defaults to time.Now.
	Clock func() time.Time
}

// Engine computes predictive snapshots. It is safe for concurrent use.
type Engine struct {
	cache      SnapshotCache
	cacheTTL   time.Duration
	orderFlow  regime.Estimator
	classifier *regime.Classifier
	enrichment market.EnrichmentProvider
	logger     zerolog.Logger
	clock      func() time.Time
}

// New creates an engine with the given options.
func New(opts Options) *Engine {
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.OrderFlow == nil {
		opts.OrderFlow = regime.NewCandleShapeEstimator()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Engine{
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		orderFlow:  opts.OrderFlow,
		classifier: regime.NewClassifier(opts.RegimePeriod),
		enrichment: opts.Enrichment,
		logger:     opts.Logger.With().Str("component", "predictive_engine").Logger(),
		clock:      opts.Clock,
	}
}

// Asset pairs a symbol with its candle window for batch evaluation.
type Asset struct {
	Symbol  string
	Candles []market.Candle
}

// ComputeSnapshot fuses every indicator layer into one snapshot for the
// symbol. Results are cached by symbol and candle count for the engine's
// TTL. The intermarket summary is optional; nil reads as all-neutral.
func (e *Engine) ComputeSnapshot(ctx context.Context, symbol string, candles []market.Candle, intermarket *market.IntermarketData) (*PredictiveSnapshot, error) {
	if err := market.ValidateSeries(candles); err != nil {
		return nil, fmt.Errorf("candles for %s: %w", symbol, err)
	}

	key := fmt.Sprintf("%s:%d", symbol, len(candles))
	if snapshot, ok := e.cache.Get(ctx, key); ok {
		e.logger.Debug().Str("symbol", symbol).Str("key", key).Msg("Snapshot cache hit")
		return snapshot, nil
	}

	now := e.clock()

	predictedMAs := CalculatePredictedMAs(candles)
	neural := CalculateNeuralIndex(candles, intermarket)
	trendStrength := CalculateTrendStrength(candles)
	predictedRange := CalculatePredictedRange(candles)
	doubleConf := CalculateDoubleConfirmation(neural, predictedMAs, trendStrength)
	sweep := EvaluateLiquiditySweep(candles)

	zeroLag := zerolag.Latest(market.CloseSeries(candles))
	orderFlow := e.orderFlow.Estimate(candles)
	regimeSnapshot := e.classifier.Classify(candles)
	advancedValues := advanced.Latest(candles, now)

	mtf := advanced.CalculateTimeframeAlignment(lastN(candles, 20), lastN(candles, 60), candles)

	enhanced := advanced.CalculateEnhancedSignalScore(
		doubleConf.Score/100,
		advancedValues.MarketStructure.StructureConfirmed,
		sweep.Gate2Passed,
		advancedValues.SessionFilter.ShouldTrade,
		mtf.IsAligned || mtf.AlignmentScore >= 0.66,
		advancedValues.VolatilityThreshold.ATRMultiple >= 0.5 && advancedValues.VolatilityThreshold.ATRMultiple <= 2.5,
	)

	bundle := AdvancedBundle{
		Values:        advancedValues,
		MTFAlignment:  mtf,
		EnhancedScore: enhanced,
	}
	e.enrich(ctx, symbol, &bundle)

	signal, confidence, ruleName := resolveSignal(ruleContext{
		sweep:      sweep,
		regime:     regimeSnapshot,
		advanced:   advancedValues,
		enhanced:   enhanced,
		neural:     neural,
		doubleConf: doubleConf,
	})

	snapshot := &PredictiveSnapshot{
		ID:                 uuid.NewString(),
		Symbol:             symbol,
		Timestamp:          now,
		PredictedMAs:       predictedMAs,
		NeuralIndex:        neural,
		TrendStrength:      trendStrength,
		PredictedRange:     predictedRange,
		DoubleConfirmation: doubleConf,
		LiquiditySweep:     sweep,
		ZeroLag:            zeroLag,
		OrderFlow:          orderFlow,
		Regime:             regimeSnapshot,
		Advanced:           bundle,
		OverallSignal:      signal,
		SignalConfidence:   confidence,
	}

	e.logger.Debug().
		Str("symbol", symbol).
		Str("signal", string(signal)).
		Float64("confidence", confidence).
		Str("rule", ruleName).
		Str("sweep_status", string(sweep.Status)).
		Msg("Snapshot computed")

	e.cache.Set(ctx, key, snapshot, e.cacheTTL)
	return snapshot, nil
}

// ComputeSnapshotsBatch evaluates all assets concurrently. Failures are
// logged and skipped; the result map holds only the symbols that succeeded.
func (e *Engine) ComputeSnapshotsBatch(ctx context.Context, assets []Asset, intermarket *market.IntermarketData) map[string]*PredictiveSnapshot {
	results := make(map[string]*PredictiveSnapshot, len(assets))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, asset := range assets {
		wg.Add(1)
		go func(asset Asset) {
			defer wg.Done()

			snapshot, err := e.ComputeSnapshot(ctx, asset.Symbol, asset.Candles, intermarket)
			if err != nil {
				e.logger.Warn().Err(err).Str("symbol", asset.Symbol).Msg("Skipping asset in batch")
				return
			}

			mu.Lock()
			results[asset.Symbol] = snapshot
			mu.Unlock()
		}(asset)
	}
	wg.Wait()

	return results
}

// enrich attaches order-book and trade-flow data for crypto-style symbols.
// Enrichment is best-effort: failures leave the fields nil.
func (e *Engine) enrich(ctx context.Context, symbol string, bundle *AdvancedBundle) {
	if e.enrichment == nil || !isCryptoSymbol(symbol) {
		return
	}

	orderBook, err := e.enrichment.OrderBook(ctx, symbol)
	if err != nil {
		e.logger.Debug().Err(err).Str("symbol", symbol).Msg("Order book enrichment unavailable")
	} else {
		bundle.OrderBook = orderBook
	}

	trades, err := e.enrichment.RecentTrades(ctx, symbol)
	if err != nil {
		e.logger.Debug().Err(err).Str("symbol", symbol).Msg("Trade flow enrichment unavailable")
	} else {
		bundle.TradeFlow = trades
	}
}

func isCryptoSymbol(symbol string) bool {
	return strings.HasSuffix(symbol, "USDT") ||
		strings.HasSuffix(symbol, "BTC") ||
		strings.HasSuffix(symbol, "ETH")
}

func lastN(candles []market.Candle, n int) []market.Candle {
	if len(candles) > n {
		return candles[len(candles)-n:]
	}
	return candles
}
