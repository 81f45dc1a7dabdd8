package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/use/internal/config"
	"github.com/vango-dev/use/internal/errors"
	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/runtime"
	"github.com/vango-dev/use/pkg/storage"
	"github.com/vango-dev/use/pkg/subscription"
	"github.com/vango-dev/use/pkg/use"
)

// loadConfig reads path, or the nearest config file above the working
// directory. Without any config file the defaults are used.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.LoadFromWorkingDir()
	if errors.IsCode(err, "C001") {
		return config.New(), nil
	}
	return cfg, err
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newBackend builds the local storage backend named by backend, falling
// back to the configured one when backend is empty.
func newBackend(cfg *config.Config, backend string) (storage.Backend, error) {
	if backend == "" {
		backend = cfg.Storage.Backend
	}
	switch backend {
	case config.BackendMemory:
		return storage.NewMemory(), nil
	case config.BackendFile:
		f, err := storage.NewFile(cfg.FilePath())
		if err != nil {
			return nil, errors.New("T003").WithOp("storage.open").Wrap(err)
		}
		return f, nil
	case config.BackendS3:
		s3cfg := cfg.Storage.S3
		if s3cfg.Bucket == "" {
			return nil, errors.New("C002").WithDetail("storage.s3.bucket is required for the s3 backend")
		}
		client := storage.NewS3Client(storage.S3ClientOptions{
			Region:       s3cfg.Region,
			Endpoint:     s3cfg.Endpoint,
			UsePathStyle: s3cfg.UsePathStyle,
		})
		return storage.NewS3(client, s3cfg.Bucket, s3cfg.Prefix), nil
	default:
		return nil, errors.New("C003").WithDetail("storage backend " + backend)
	}
}

func breakpointsFor(cfg *config.Config) map[string]int {
	if len(cfg.Breakpoints.Custom) > 0 {
		return cfg.Breakpoints.Custom
	}
	if cfg.Breakpoints.Preset == "bootstrap" {
		return use.BreakpointsBootstrap
	}
	return use.BreakpointsTailwind
}

// env is a runtime wired to a simulated browser.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	browser  *platform.Browser
	metrics  *prometheus.Registry
	registry *subscription.Registry
	loop     *runtime.Loop
}

func newEnv(cfg *config.Config, logger *slog.Logger, opts platform.BrowserOptions) *env {
	metrics := prometheus.NewRegistry()
	registry := subscription.NewRegistry(
		subscription.WithNamespace(cfg.Metrics.Namespace),
		subscription.WithRegisterer(metrics),
		subscription.WithLogger(logger),
	)
	browser := platform.NewBrowser(opts)
	loop := runtime.NewLoop(runtime.Config{
		Platform:  browser.Platform(),
		Logger:    logger,
		Registry:  registry,
		QueueSize: cfg.Runtime.QueueSize,
		Debug:     cfg.Runtime.Debug,
	})
	return &env{
		cfg:      cfg,
		logger:   logger,
		browser:  browser,
		metrics:  metrics,
		registry: registry,
		loop:     loop,
	}
}

// watchLocal forwards external writes to the local storage area until ctx
// is done. It reports whether watching started, which needs a file backend
// and storage.file.watch.
func (e *env) watchLocal(ctx context.Context) bool {
	if _, ok := e.browser.LocalStorage().Backend().(*storage.File); !ok || !e.cfg.Storage.File.Watch {
		return false
	}
	go func() {
		if err := e.browser.LocalStorage().Watch(ctx, e.loop.Dispatch); err != nil && ctx.Err() == nil {
			e.logger.Warn("storage watch stopped", "error", err)
		}
	}()
	return true
}

func (e *env) close() {
	e.loop.Close()
}

func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
