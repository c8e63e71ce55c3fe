package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"mock-swap/config"
	"mock-swap/pkg/history"
	"mock-swap/pkg/observability"
	"mock-swap/pkg/quote"
	"mock-swap/pkg/session"
	"mock-swap/pkg/swap"
	"mock-swap/pkg/wallet"
)

// app bundles the wired session for one command invocation
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	metrics *observability.Metrics
	store   *session.Store
	quotes  *quote.Service
}

// loadConfig reads configuration and applies the global flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	applySwapFlags(cmd, cfg)
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	} else if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newApp wires the session store from cfg
func newApp(cfg *config.Config) (*app, error) {
	logger := cfg.NewLogger(os.Stderr)

	policy, err := session.ParseSameTokenPolicy(cfg.SameTokenPolicy)
	if err != nil {
		return nil, err
	}

	connector, err := wallet.NewMockConnector(cfg.WalletAddress, cfg.WalletReject)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics("", nil)

	store, err := session.NewStore(session.Options{
		Connector:       connector,
		Executor:        swap.NewSimulatedExecutor(cfg.SwapDelay, cfg.FailureRate, logger),
		Ledger:          history.NewLedger(),
		Metrics:         metrics,
		Logger:          logger,
		DefaultFrom:     cfg.DefaultFrom,
		DefaultTo:       cfg.DefaultTo,
		Slippage:        cfg.DefaultSlippage,
		SameTokenPolicy: policy,
		SwapTimeout:     cfg.SwapTimeout,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		store:   store,
		quotes:  quote.NewService(quote.NewCatalogOracle(store.Catalog())),
	}, nil
}

// mustApp loads configuration and wires the session, exiting on failure
func mustApp(cmd *cobra.Command) *app {
	cfg, err := loadConfig(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	a, err := newApp(cfg)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	return a
}

// applySwapFlags applies --delay and --failure-rate when they were given
func applySwapFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("delay") {
		delay, _ := cmd.Flags().GetDuration("delay")
		cfg.SwapDelay = delay
	}
	if cmd.Flags().Changed("failure-rate") {
		rate, _ := cmd.Flags().GetFloat64("failure-rate")
		cfg.FailureRate = rate
	}
}

func addSwapFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("delay", swap.DefaultDelay, "Simulated settlement time")
	cmd.Flags().Float64("failure-rate", 0, "Probability (0-1) that a simulated swap fails")
}
