package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apifolio/folio/internal/catalog"
	"github.com/apifolio/folio/internal/config"
	"github.com/apifolio/folio/internal/devtools"
	"github.com/apifolio/folio/internal/fetch"
	"github.com/apifolio/folio/internal/httpclient"
	"github.com/apifolio/folio/internal/persist"
	"github.com/apifolio/folio/internal/state"
	"github.com/apifolio/folio/internal/ui"
)

// Options configure the folio application.
type Options struct {
	ConfigPath string
	// EnvFiles are loaded before the config; nil uses config.DefaultEnvFile.
	EnvFiles  []string
	PollEvery int // seconds; zero uses the configured interval
	Debug     bool

	// UI replaces the terminal UI; tests use it to run headless.
	UI func(ctx context.Context, opts ui.Options) error
}

// Run boots folio until the UI exits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{config.DefaultEnvFile}
	}
	cfg, err := config.Load(opts.ConfigPath, envFiles...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.HealthInterval = time.Duration(opts.PollEvery) * time.Second
	}

	logger, closeLog, err := openLogger(cfg.LogPath(), opts.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	storage, err := persist.Open(persist.Backend(cfg.StorageBackend), cfg.StorageDir)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logger.Error("close storage failed", "err", err)
		}
	}()

	// The persisted record is applied before anything else touches the store.
	store := state.NewStore(persist.Restore(ctx, storage, persist.DefaultKey, logger))
	detach := persist.Attach(store, storage, persist.DefaultKey, logger)
	defer detach()

	// Debug history starts with the store so the catalog seed and early
	// health mirroring are recorded.
	var history *devtools.Recorder
	if cfg.DevtoolsAddr != "" {
		history = devtools.NewRecorder(0)
		detachHistory := history.Attach(store)
		defer detachHistory()
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	store.SetAPIs(cat.Descriptors())

	client := httpclient.New(cfg.APIBaseURL,
		httpclient.WithTimeout(cfg.RequestTimeout),
		httpclient.WithLogger(logger),
	)
	if cfg.AuthToken != "" {
		client.SetAuthToken(cfg.AuthToken)
	}

	poller := startPoller(ctx, client, store, cfg, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	devtoolsDone := make(chan error, 1)
	if cfg.DevtoolsAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		srv := devtools.NewServer(store, devtools.Options{Health: poller, Recorder: history, Logger: logger})
		go func() { devtoolsDone <- srv.Run(runCtx, cfg.DevtoolsAddr) }()
	} else {
		close(devtoolsDone)
	}

	logger.Info("folio started",
		"api_base_url", cfg.APIBaseURL,
		"storage", cfg.StorageBackend,
		"interval", cfg.HealthInterval,
		"devtools", cfg.DevtoolsAddr,
	)

	runUI := opts.UI
	if runUI == nil {
		runUI = ui.Run
	}
	uiErr := runUI(runCtx, ui.Options{
		Store:         store,
		Catalog:       cat,
		Health:        poller,
		CatalogSource: catalogSource(runCtx, client, store, cfg.CatalogURL),
		LogPath:       cfg.LogPath(),
	})

	cancel()
	poller.Stop()
	devErr := <-devtoolsDone
	if devErr != nil {
		logger.Error("devtools server failed", "err", devErr)
	}
	logger.Info("folio stopped")

	if uiErr != nil {
		return fmt.Errorf("run ui: %w", uiErr)
	}
	return nil
}

// catalogSource returns the fetch operation behind the UI's catalog refresh,
// or nil when no catalog URL is configured.
func catalogSource(ctx context.Context, client *httpclient.Client, store *state.Store, path string) ui.CatalogSource {
	if path == "" {
		return nil
	}
	return fetch.New(ctx, client, path, fetch.Options[catalog.Catalog]{
		OnSuccess: func(c catalog.Catalog) error {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("validate catalog: %w", err)
			}
			store.SetAPIs(c.Descriptors())
			store.ClearError()
			return nil
		},
		Errors: store,
	})
}

func openLogger(path string, debug bool) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() {
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			fmt.Fprintf(os.Stderr, "folio: close log: %v\n", err)
		}
	}, nil
}
