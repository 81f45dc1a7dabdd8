package main

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/use/internal/config"
	"github.com/vango-dev/use/internal/errors"
	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/runtime"
	"github.com/vango-dev/use/pkg/use"
)

func demoCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a hook against a simulated browser",
	}
	cmd.AddCommand(
		demoBreakpointsCmd(configPath),
		demoStorageCmd(configPath),
		demoIdleCmd(configPath),
	)
	return cmd
}

func demoBreakpointsCmd(configPath *string) *cobra.Command {
	var widths []int

	cmd := &cobra.Command{
		Use:   "breakpoints",
		Short: "Show the active breakpoints for viewport widths",
		Long: `Mount the Breakpoints hook and resize the simulated window through
each width, printing the breakpoints it reaches.

Examples:
  vango-use demo breakpoints --width 500
  vango-use demo breakpoints --width 320,768,1280`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runBreakpoints(cmd.OutOrStdout(), newEnvFor(cmd, cfg, platform.BrowserOptions{}), widths)
		},
	}
	cmd.Flags().IntSliceVarP(&widths, "width", "w", []int{1024}, "Viewport widths in pixels")
	return cmd
}

func runBreakpoints(w io.Writer, e *env, widths []int) error {
	defer e.close()
	if len(widths) == 0 {
		return errors.New("M002").WithDetail("at least one --width is required")
	}

	points := breakpointsFor(e.cfg)
	var set *use.BreakpointSet
	e.browser.Resize(float64(widths[0]), 768)
	e.loop.Mount(func(u *runtime.Unit) {
		set = use.Breakpoints(u, points)
	})

	for _, width := range widths {
		e.browser.Resize(float64(width), 768)
		e.loop.Flush()
		printf(w, "%5dpx  active=%-6s current=[%s]\n", width, orDash(set.Active()), strings.Join(set.Current(), " "))
	}
	return nil
}

func demoStorageCmd(configPath *string) *cobra.Command {
	var (
		backend string
		key     string
		value   string
	)

	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Write a value through one unit and read it from another",
		Long: `Mount two units bound to the same local storage key, write a value
through the first and print what the second sees.

Examples:
  vango-use demo storage --value 42
  vango-use demo storage --backend file --key theme --value dark`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			b, err := newBackend(cfg, backend)
			if err != nil {
				return err
			}
			return runStorage(cmd.Context(), cmd.OutOrStdout(), newEnvFor(cmd, cfg, platform.BrowserOptions{Local: b}), key, value)
		},
	}
	cmd.Flags().StringVarP(&backend, "backend", "b", "", "Storage backend: memory, file or s3 (default from config)")
	cmd.Flags().StringVarP(&key, "key", "k", "demo", "Storage key")
	cmd.Flags().StringVar(&value, "value", "42", "Value to write")
	return cmd
}

func runStorage(ctx context.Context, w io.Writer, e *env, key, value string) error {
	defer e.close()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.watchLocal(ctx)

	var writer, reader *use.Stored[string]
	e.loop.Mount(func(u *runtime.Unit) {
		writer = use.LocalStorage(u, key, "", use.StorageOptions[string]{})
	})
	e.loop.Mount(func(u *runtime.Unit) {
		reader = use.LocalStorage(u, key, "", use.StorageOptions[string]{})
	})
	e.loop.Flush()

	printf(w, "before: %q\n", reader.Value())
	writer.Set(value)
	e.loop.Flush()

	if err := writer.Err(); err != nil {
		return err
	}
	printf(w, "after:  %q\n", reader.Value())
	return nil
}

func demoIdleCmd(configPath *string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "idle",
		Short: "Simulate inactivity and activity on a fake clock",
		Long: `Mount the Idle hook on a simulated clock, let the timeout pass, then
move the mouse and let it pass again.

Examples:
  vango-use demo idle --timeout 1m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if timeout <= 0 {
				return errors.New("M002").WithDetail("--timeout must be positive")
			}
			clock := platform.NewFakeClock(time.Now())
			return runIdle(cmd.OutOrStdout(), newEnvFor(cmd, cfg, platform.BrowserOptions{Clock: clock}), clock, timeout)
		},
	}
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", time.Minute, "Inactivity timeout")
	return cmd
}

func runIdle(w io.Writer, e *env, clock *platform.FakeClock, timeout time.Duration) error {
	defer e.close()
	start := clock.Now()

	var idle *use.IdleState
	e.loop.Mount(func(u *runtime.Unit) {
		idle = use.Idle(u, timeout, use.IdleOptions{})
	})
	e.loop.Flush()

	report := func(what string) {
		printf(w, "+%-8s %-10s idle=%v\n", clock.Now().Sub(start), what, idle.Idle())
	}
	report("mounted")

	clock.Advance(timeout)
	e.loop.Flush()
	report("timeout")

	e.browser.Window().Dispatch(platform.Event{Type: platform.EventMouseMove})
	e.loop.Flush()
	report("mousemove")

	clock.Advance(timeout)
	e.loop.Flush()
	report("timeout")
	return nil
}

func newEnvFor(cmd *cobra.Command, cfg *config.Config, opts platform.BrowserOptions) *env {
	return newEnv(cfg, newLogger(cfg, cmd.ErrOrStderr()), opts)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
