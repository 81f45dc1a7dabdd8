package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/use/internal/config"
	"github.com/vango-dev/use/pkg/devtools"
	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
	"github.com/vango-dev/use/pkg/runtime"
	"github.com/vango-dev/use/pkg/use"
)

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the devtools endpoints for a live runtime",
		Long: `Start a runtime with a few mounted hooks on a simulated browser and
serve /healthz, /metrics, /debug/subscriptions, /ws/echo and /ws/stats.

Examples:
  vango-use serve
  vango-use serve --addr :7070`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Devtools.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, newLogger(cfg, cmd.ErrOrStderr()))
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	backend, err := newBackend(cfg, "")
	if err != nil {
		return err
	}
	e := newEnv(cfg, logger, platform.BrowserOptions{Local: backend})
	defer e.close()

	ctx, cancel := context.WithCancel(ctx)
	runDone := make(chan struct{})
	defer func() {
		cancel()
		<-runDone
	}()
	e.watchLocal(ctx)

	points := breakpointsFor(cfg)
	e.loop.Dispatch(func() {
		e.loop.Mount(func(u *runtime.Unit) {
			size := use.WindowSize(u)
			set := use.Breakpoints(u, points)
			online := use.Online(u)
			visits := use.LocalStorage(u, "visits", 0, use.StorageOptions[int]{})
			u.Effect([]any{}, func() reactive.Cleanup {
				visits.Update(func(n int) int { return n + 1 })
				return nil
			})
			u.Logger().Debug("render",
				"width", size.Width(),
				"active", set.Active(),
				"online", online,
				"visits", visits.Value())
		})
	})
	go func() {
		defer close(runDone)
		e.loop.Run(ctx)
	}()

	srv := devtools.New(e.registry,
		devtools.WithGatherer(e.metrics),
		devtools.WithLoop(e.loop),
		devtools.WithLogger(logger),
		devtools.WithEcho(cfg.Devtools.Echo),
	)
	go srv.Watch(ctx, time.Second)

	return srv.ListenAndServe(ctx, cfg.Devtools.Addr)
}
