package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shivavenkatesh/atomgraph/internal/config"
	"github.com/shivavenkatesh/atomgraph/internal/logging"
	"github.com/shivavenkatesh/atomgraph/internal/service"
	"github.com/shivavenkatesh/atomgraph/internal/store/sqlite"
	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

// app bundles what every command needs
type app struct {
	svc    service.Service
	cfg    config.Config
	logger *zap.Logger
}

func (a *app) Close() {
	a.svc.Close()
	a.logger.Sync()
}

// loadConfig reads the config file and applies global flag overrides
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	return cfg, nil
}

// initService creates and initializes the graph service
func initService() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize store
	dbPath, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}
	st, err := sqlite.New(sqlite.Config{Path: dbPath})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	// Create service
	svc := service.NewService(st, service.Config{
		Split:           cfg.Splitter,
		Window:          cfg.Graph.Window,
		Workers:         cfg.Workers,
		CacheSize:       cfg.Cache.Size,
		IndexIgnore:     cfg.Index.Ignore,
		IndexExtensions: cfg.Index.Extensions,
		MaxFileBytes:    cfg.Index.MaxBytes,
	}, logger)

	logger.Debug("service initialized", zap.String("database", dbPath))

	return &app{svc: svc, cfg: cfg, logger: logger}, nil
}

// splitFlags holds the strategy flags shared by split, build and index
type splitFlags struct {
	strategy   string
	atomSize   uint
	remainder  string
	step       uint
	stem       string
	overlap    uint
	separators []string
}

func (f *splitFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "", "Splitting strategy (see 'atomgraph strategies')")
	cmd.Flags().UintVarP(&f.atomSize, "atom-size", "k", 0, "Atom size in the strategy's unit")
	cmd.Flags().StringVar(&f.remainder, "remainder", "", "Short tail handling: keep, discard or strict")
	cmd.Flags().UintVar(&f.step, "step", 0, "Window advance for sliding strategies")
	cmd.Flags().StringVar(&f.stem, "stem", "", "Snowball stemming language for the words strategy")
	cmd.Flags().UintVar(&f.overlap, "overlap", 0, "Chunk overlap for the recursive strategy")
	cmd.Flags().StringSliceVar(&f.separators, "separators", nil, "Separators for the recursive strategy")
}

// options converts flags into request options. The atom size is only set
// when given so that each strategy keeps its own default.
func (f *splitFlags) options(cmd *cobra.Command) types.SplitOptions {
	opts := types.SplitOptions{
		Strategy:   f.strategy,
		Remainder:  f.remainder,
		Step:       f.step,
		Stem:       f.stem,
		Overlap:    f.overlap,
		Separators: f.separators,
	}
	if cmd.Flags().Changed("atom-size") {
		size := f.atomSize
		opts.AtomSize = &size
	}
	return opts
}
