package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"autobattle/internal/combat"
	"autobattle/internal/config"
	"autobattle/internal/sim"
)

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// setupTracing installs an OTLP/gRPC batching provider. The returned
// shutdown flushes pending spans.
func setupTracing(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	exp, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(endpoint), otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func main() {
	var cfgDir, out, otlp string
	var seed int64
	var n, workers int
	var saveLog, verbose bool
	flag.StringVar(&cfgDir, "config", "assets", "config dir")
	flag.StringVar(&out, "out", "out.json", "output file (single) or summary file (batch)")
	flag.Int64Var(&seed, "seed", 0, "seed (0 uses sim.yaml)")
	flag.IntVar(&n, "n", 1, "number of simulations")
	flag.IntVar(&workers, "workers", 8, "concurrent rounds in batch mode")
	flag.BoolVar(&saveLog, "log", true, "save full event log when n==1")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.StringVar(&otlp, "otlp", "", "OTLP gRPC endpoint for traces (empty disables)")
	flag.Parse()

	log, err := newLogger(verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log, cfgDir, out, otlp, seed, n, workers, saveLog); err != nil {
		log.Error("simsvc failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.Logger, cfgDir, out, otlp string, seed int64, n, workers int, saveLog bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if otlp != "" {
		shutdown, err := setupTracing(ctx, otlp)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				log.Warn("trace shutdown", zap.Error(err))
			}
		}()
	}

	cfg, err := config.LoadAll(cfgDir)
	if err != nil {
		return err
	}
	if seed == 0 {
		seed = cfg.Sim.Seed
	}
	log.Info("config loaded",
		zap.String("dir", cfgDir), zap.Int("units", len(cfg.Board.Units)),
		zap.Int64("seed", seed), zap.Int64("tick_ms", cfg.Sim.TickMS))

	if n <= 1 {
		res, err := sim.RunSingle(ctx, cfg, sim.Options{Seed: seed, Record: saveLog, Log: log})
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, combat.MarshalPretty(res), 0644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		log.Info("single run finished",
			zap.Stringer("round", res.RoundID), zap.Int("winner", res.Winner),
			zap.Int64("ms", res.DurationMS), zap.String("out", out))
		return nil
	}

	sum, err := sim.RunBatch(ctx, cfg, seed, n, workers, log)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, combat.MarshalPretty(sum), 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	log.Info("batch finished",
		zap.Int("runs", n), zap.Float64("win_rate_0", sum.WinRate[0]),
		zap.Float64("win_rate_1", sum.WinRate[1]), zap.String("out", filepath.Base(out)))
	return nil
}
