package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"signal-fusion/config"
	"signal-fusion/internal/engine"
	"signal-fusion/internal/market"
)

func main() {
	var (
		candleFile = flag.String("file", "", "JSON file with the candle window (array of OHLCV bars)")
		symbol     = flag.String("symbol", "", "Symbol the candles belong to, e.g. BTCUSDT")
		configFile = flag.String("config", "config.json", "Path to the config file")
		asJSON     = flag.Bool("json", false, "Print the full snapshot as JSON instead of the summary")
		sample     = flag.Bool("sample-config", false, "Write a sample config file and exit")
	)
	flag.Parse()

	godotenv.Load()

	if *sample {
		if err := config.GenerateSampleConfig(*configFile); err != nil {
			fmt.Printf("❌ Failed to write sample config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Sample config written to %s\n", *configFile)
		return
	}

	if *candleFile == "" || *symbol == "" {
		fmt.Println("❌ -file and -symbol are required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := buildLogger(cfg.LoggingConfig)

	candles, err := loadCandles(*candleFile)
	if err != nil {
		fmt.Printf("❌ Failed to load candles: %v\n", err)
		os.Exit(1)
	}

	opts := engine.Options{
		RegimePeriod: cfg.EngineConfig.RegimePeriod,
		CacheTTL:     cfg.EngineConfig.CacheTTL,
		Logger:       logger,
	}
	if cfg.RedisConfig.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Address,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		opts.Cache = engine.NewRedisCache(client, cfg.RedisConfig.KeyPrefix, logger)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snapshot, err := engine.New(opts).ComputeSnapshot(ctx, *symbol, candles, nil)
	if err != nil {
		fmt.Printf("❌ Analysis failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			fmt.Printf("❌ Failed to encode snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	printSummary(snapshot, len(candles))
}

func buildLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out *os.File
	switch cfg.Output {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			out = os.Stderr
		} else {
			out = file
		}
	}

	if cfg.JSONFormat {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out}).Level(level).With().Timestamp().Logger()
}

func loadCandles(filename string) ([]market.Candle, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	var candles []market.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return candles, nil
}

func printSummary(s *engine.PredictiveSnapshot, bars int) {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("📊 %s  (%d bars, computed %s)\n", s.Symbol, bars, s.Timestamp.UTC().Format(time.RFC3339))
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n🎯 Signal: %s  (confidence %.0f%%)\n", strings.ToUpper(string(s.OverallSignal)), s.SignalConfidence)

	fmt.Printf("\n📈 Regime: %s (ADX %.1f, vol %s)\n", s.Regime.Regime, s.Regime.ADX, s.Regime.VolatilityLevel)
	if !s.Regime.ShouldTrade {
		fmt.Printf("   ⚠️  Not tradeable: %s\n", s.Regime.Reason)
	}

	fmt.Printf("\n🧠 Neural index: %s (%.0f%% agreement", s.NeuralIndex.Direction, s.NeuralIndex.Confidence)
	if s.NeuralIndex.CompleteAgreement {
		fmt.Print(", unanimous")
	}
	fmt.Println(")")
	fmt.Printf("   Trend strength: %.0f/100 (%s, %s)\n",
		s.TrendStrength.OverallStrength, s.TrendStrength.ADXTrend, s.TrendStrength.MomentumDirection)
	fmt.Printf("   Predicted range: %.4f .. %.4f (now %.4f)\n",
		s.PredictedRange.PredictedLow, s.PredictedRange.PredictedHigh, s.PredictedRange.CurrentPrice)

	fmt.Printf("\n💧 Liquidity sweep: %s\n", s.LiquiditySweep.Status)
	for _, reason := range s.LiquiditySweep.Reasons {
		fmt.Printf("   • %s\n", reason)
	}

	fmt.Printf("\n🔬 Confirmations: %.0f/100 (double confirmation)\n", s.DoubleConfirmation.Score)
	for _, line := range s.DoubleConfirmation.Signals {
		fmt.Printf("   • %s\n", line)
	}
	fmt.Printf("   Enhanced score: %.1f/100, %d/6 filters",
		s.Advanced.EnhancedScore.TotalScore, s.Advanced.EnhancedScore.MetConfirmations)
	if s.Advanced.EnhancedScore.PassesThreshold {
		fmt.Print(" ✅")
	}
	fmt.Println()

	fmt.Printf("\n⏰ Session: %s", s.Advanced.SessionFilter.CurrentSession)
	if !s.Advanced.SessionFilter.ShouldTrade {
		fmt.Print(" (blocked)")
	}
	fmt.Println()
}
