// Command trader runs a single EMACross strategy host. Market data arrives
// over NATS in both modes; in live mode commands go to the execution gateway
// over NATS, in simulation mode they are filled by the in-process paper
// engine.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yourusername/quantlink-strategy-host/pkg/client"
	"github.com/yourusername/quantlink-strategy-host/pkg/clock"
	"github.com/yourusername/quantlink-strategy-host/pkg/config"
	"github.com/yourusername/quantlink-strategy-host/pkg/execution"
	"github.com/yourusername/quantlink-strategy-host/pkg/logging"
	"github.com/yourusername/quantlink-strategy-host/pkg/model"
	"github.com/yourusername/quantlink-strategy-host/pkg/risk"
	"github.com/yourusername/quantlink-strategy-host/pkg/sequencer"
	"github.com/yourusername/quantlink-strategy-host/pkg/strategy"
)

var configFile = flag.String("config", "./config/trader.yaml", "Configuration file path")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("trader exited with error", zap.Error(err))
	}
}

func run(cfg *config.TraderConfig, log *zap.Logger) error {
	traderID, err := model.NewTraderID(cfg.System.TraderName, cfg.System.TraderTag)
	if err != nil {
		return err
	}

	// The host is lock-free: every inbound call (ticks, bars, events, timer
	// expiries, lifecycle transitions) goes through one sequencer goroutine.
	seq, err := sequencer.New(1024, log)
	if err != nil {
		return err
	}
	seq.Start()
	defer seq.Stop()

	clk := clock.NewSequencedClock(clock.NewRealClock(), seq.Post)
	host, err := buildStrategy(cfg, traderID, clk, log)
	if err != nil {
		return err
	}

	data, err := client.NewDataClient(cfg.NATS.MarketDataURL, seq.Post, log)
	if err != nil {
		return fmt.Errorf("failed to build data client: %w", err)
	}
	defer data.Disconnect()
	host.RegisterDataClient(data)

	switch cfg.System.Mode {
	case "live":
		exec, err := client.NewExecClient(cfg.NATS.ExecutionURL, traderID, seq.Post, log)
		if err != nil {
			return fmt.Errorf("failed to build execution client: %w", err)
		}
		defer exec.Disconnect()
		exec.RegisterEventHandler(host.HandleEvent)
		exec.TrackStrategy(host.ID())
		host.RegisterExecutionEngine(exec)
	default:
		account := &model.Account{
			ID:         model.AccountID(cfg.System.AccountID),
			Currency:   "USD",
			Balance:    decimal.NewFromInt(1_000_000),
			FreeEquity: decimal.NewFromInt(1_000_000),
		}
		engine := execution.NewEngine(account, clk, log)
		engine.RegisterEventHandler(host.HandleEvent)
		engine.TrackStrategy(host.ID())
		host.RegisterExecutionEngine(engine)
	}

	log.Info("starting strategy",
		zap.Stringer("trader_id", traderID),
		zap.Stringer("strategy_id", host.ID()),
		zap.String("mode", cfg.System.Mode))
	seq.PostWait(host.Start)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	log.Info("shutdown signal received", zap.Stringer("signal", sig))

	seq.PostWait(func() {
		host.Stop()
		host.Dispose()
	})
	return nil
}

func buildStrategy(cfg *config.TraderConfig, traderID model.TraderID, clk clock.Clock, log *zap.Logger) (*strategy.TradingStrategy, error) {
	symbol, err := model.ParseSymbol(cfg.Strategy.Symbol)
	if err != nil {
		return nil, err
	}
	aggregation, priceType, err := model.ParseBarSpec(cfg.Strategy.BarSpec)
	if err != nil {
		return nil, err
	}
	idTag, err := model.NewIDTag(cfg.Strategy.Tag)
	if err != nil {
		return nil, err
	}

	orderQty, err := decimal.NewFromString(cfg.Strategy.OrderQty)
	if err != nil {
		return nil, fmt.Errorf("invalid strategy.order_qty: %w", err)
	}
	stopOffset, err := decimal.NewFromString(cfg.Strategy.StopOffset)
	if err != nil {
		return nil, fmt.Errorf("invalid strategy.stop_offset: %w", err)
	}
	sizer, err := risk.NewFixedSizer(orderQty)
	if err != nil {
		return nil, err
	}

	hostCfg := strategy.Config{
		TraderID:              traderID,
		StrategyName:          cfg.Strategy.Name,
		IDTag:                 idTag,
		AccountID:             model.AccountID(cfg.System.AccountID),
		TickCapacity:          cfg.Strategy.TickCapacity,
		BarCapacity:           cfg.Strategy.BarCapacity,
		FlattenOnStop:         cfg.Strategy.FlattenOnStopValue(),
		CancelAllOrdersOnStop: cfg.Strategy.CancelAllOnStopValue(),
		FlattenOnSLReject:     cfg.Strategy.FlattenOnSLRejectValue(),
		Clock:                 clk,
		Logger:                log,
	}
	params := strategy.EMACrossParams{
		Symbol: symbol,
		BarType: model.BarType{
			Symbol:      symbol,
			Period:      cfg.Strategy.BarPeriod,
			Aggregation: aggregation,
			PriceType:   priceType,
		},
		FastPeriod: cfg.Strategy.FastPeriod,
		SlowPeriod: cfg.Strategy.SlowPeriod,
		Sizer:      sizer,
		StopOffset: stopOffset,
	}

	host, _, err := strategy.NewEMACrossStrategy(hostCfg, params)
	return host, err
}
