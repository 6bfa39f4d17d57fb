package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/displayout/internal/config"
	"github.com/1broseidon/displayout/internal/customres"
	"github.com/1broseidon/displayout/internal/daemon"
	"github.com/1broseidon/displayout/internal/displayout"
	"github.com/1broseidon/displayout/internal/hotkeys"
	"github.com/1broseidon/displayout/internal/ipc"
	"github.com/1broseidon/displayout/internal/logging"
	"github.com/1broseidon/displayout/internal/node"
	"github.com/1broseidon/displayout/internal/platform"
	"github.com/1broseidon/displayout/internal/present"
	"github.com/1broseidon/displayout/internal/x11"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayout run [--path PATH] [--display DISPLAY]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open the output window, present a test pattern and serve IPC")
		fmt.Fprintln(os.Stderr, "commands until interrupted.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	path := fs.String("path", "", "Config file path (default: ~/.config/displayout/config.yaml)")
	display := fs.String("display", "", "X display to connect to (overrides config and $DISPLAY)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfigAt(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	cfg := res.Config
	logger := logging.New(cfg.Logging.Format, cfg.Logging.Level, nil)
	logger.Info("configuration loaded",
		"files", res.Files,
		"resolution", fmt.Sprintf("%dx%d", cfg.Output.Width, cfg.Output.Height),
		"refresh_rate", cfg.Output.RefreshRate,
		"monitor", cfg.Output.Monitor)

	if *display != "" {
		os.Setenv("DISPLAY", *display)
	}
	env, err := x11.ResolveDisplayEnv(x11.DisplayEnv{Display: cfg.Display, XAuthority: cfg.XAuthority})
	if err != nil {
		logger.Error("failed to resolve X display", logging.KeyError, err)
		return 1
	}
	if err := env.Export(); err != nil {
		logger.Warn("failed to export X environment", logging.KeyError, err)
	}

	conn, err := x11.NewConnection(env.Display)
	if err != nil {
		logger.Error("failed to connect to display", "display", env.Display, logging.KeyError, err)
		return 1
	}
	defer conn.Close()
	logger.Info("connected to display", "display", env.Display)

	registry := customres.NewRegistry()
	defer registry.Destroy()
	customAvailable := false
	if cfg.CustomResolution.Enabled {
		driver := x11.NewRandRDriver(conn)
		customAvailable = registry.Create(customres.Factory(driver, logger))
		if !customAvailable {
			logger.Warn("custom resolution unavailable; display modes will not be changed")
		}
	}

	var ctrl *displayout.Controller
	runner := node.NewRunner(node.RunnerConfig{
		FrameRate: cfg.Runner.FrameRate,
		Logger:    logger,
		Input: func(frame uint64) present.Texture {
			r := ctrl.Config().Resolution
			return present.TestPattern(r.Width, r.Height, frame)
		},
	})
	ctrl = displayout.New(displayout.Deps{
		Host:      runner,
		Windowing: platform.NewLinuxWindowing(conn),
		Presenter: x11.NewPresenter(conn),
		Backends:  registry,
		Logger:    logger,
	}, cfg.NodeConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal; shutting down", "signal", sig.String())
		cancel()
	}()

	svc := daemon.NewService(runner, ctrl, customAvailable)
	hk := hotkeys.NewHandler(conn, logger)
	defer hk.Close()
	registerHotkeys(ctx, hk, cfg.Hotkeys, svc, logger)

	server, err := ipc.NewServer(cfg.IPC.Socket, svc, logger)
	if err != nil {
		logger.Error("failed to create IPC server", logging.KeyError, err)
		return 1
	}
	if err := server.Start(); err != nil {
		logger.Error("failed to start IPC server", logging.KeyError, err)
		return 1
	}
	defer server.Stop()

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Reopen: cfg.Runner.Reopen,
		Logger: logger,
	}, runner, ctrl, func() {
		logger.Info("output window closed; shutting down")
		cancel()
	})
	go reconciler.Run(ctx)

	runner.Run(ctx, ctrl)
	return 0
}

// registerHotkeys binds the configured sequences. Callbacks run on the event
// pump inside a node execution, so each action is handed to its own goroutine
// and reaches the node through the runner.
func registerHotkeys(ctx context.Context, hk *hotkeys.Handler, keys config.HotkeysConfig, svc *daemon.Service, logger *slog.Logger) {
	actions := []struct {
		name string
		keys string
		run  func() error
	}{
		{"fullscreen", keys.Fullscreen, func() error { return svc.ToggleFullscreen(ctx) }},
		{"apply", keys.Apply, func() error {
			return svc.CallFunction(ctx, displayout.FuncForceUpdateMonitorResolution)
		}},
		{"revert", keys.Revert, func() error {
			return svc.CallFunction(ctx, displayout.FuncRevertMonitorResolution)
		}},
		{"next_monitor", keys.NextMonitor, func() error {
			next, err := svc.NextMonitor(ctx)
			if err == nil && next != "" {
				logger.Info("monitor selected", "monitor", next)
			}
			return err
		}},
	}
	for _, a := range actions {
		if a.keys == "" {
			continue
		}
		err := hk.RegisterFunc(a.keys, func() {
			go func() {
				if err := a.run(); err != nil {
					logger.Warn("hotkey action failed", "action", a.name, logging.KeyError, err)
				}
			}()
		})
		if err != nil {
			logger.Warn("failed to register hotkey", "action", a.name, "keys", a.keys, logging.KeyError, err)
		}
	}
}
