package cmd

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/matheuskafuri/headlines/internal/config"
	"github.com/matheuskafuri/headlines/internal/history"
	"github.com/matheuskafuri/headlines/internal/logging"
	"github.com/matheuskafuri/headlines/internal/page"
	"github.com/matheuskafuri/headlines/internal/pipeline"
)

// runtime is what a fetching command needs: config, logger, the shared
// page fetcher, the optional fetch journal and the pipeline over them.
type runtime struct {
	cfg     *config.Config
	logger  *log.Logger
	fetcher page.Fetcher
	journal *history.Journal
	machine *pipeline.Machine

	closers []io.Closer
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagEngine != "" {
		switch flagEngine {
		case config.EngineChrome, config.EngineHTTP:
			cfg.Engine = flagEngine
		default:
			return nil, fmt.Errorf("invalid --engine %q (valid: %s, %s)", flagEngine, config.EngineChrome, config.EngineHTTP)
		}
	}
	return cfg, nil
}

func newRuntime() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg}

	logger, logFile, err := logging.Open(config.LogPath(), cfg.Level())
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}
	rt.logger = logger
	rt.closers = append(rt.closers, logFile)

	rt.fetcher = newFetcher(cfg, logger)
	rt.closers = append(rt.closers, rt.fetcher)

	// The journal is diagnostics only; run without it if it can't open.
	if j, err := history.Open(config.HistoryPath()); err != nil {
		logger.Warn("history journal unavailable", "err", err)
	} else {
		rt.journal = j
		rt.closers = append(rt.closers, j)
		if n, err := j.Prune(cfg.RetentionDuration()); err != nil {
			logger.Warn("pruning history", "err", err)
		} else if n > 0 {
			logger.Debug("pruned history", "entries", n)
		}
	}

	opts := pipeline.Options{
		Fetcher: rt.fetcher,
		Rand:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Logger:  logger,
		Limits:  cfg.Limits(),
	}
	if rt.journal != nil {
		opts.Journal = rt.journal
	}
	rt.machine = pipeline.New(opts)

	logger.Info("started", "version", version, "engine", cfg.Engine)
	return rt, nil
}

func newFetcher(cfg *config.Config, logger *log.Logger) page.Fetcher {
	var f page.Fetcher
	switch cfg.Engine {
	case config.EngineHTTP:
		f = page.NewHTTPFetcher(cfg.UserAgent, cfg.PageTimeoutDuration(), logger)
	default:
		f = page.NewChromeFetcher(page.ChromeOptions{
			Headless:     cfg.Headless,
			ExecPath:     cfg.ChromePath,
			UserAgent:    cfg.UserAgent,
			ReadyTimeout: cfg.PageTimeoutDuration(),
		}, logger)
	}
	return page.Throttle(f, cfg.LoadInterval())
}

// Close shuts down the browser, journal and log, in reverse order of
// opening.
func (rt *runtime) Close() error {
	rt.logger.Info("shutting down")
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i].Close())
	}
	return errors.Join(errs...)
}
