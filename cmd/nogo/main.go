package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmmcquay/nogo/internal/cache"
	"github.com/dmmcquay/nogo/internal/cli"
	"github.com/dmmcquay/nogo/internal/config"
	"github.com/dmmcquay/nogo/internal/logging"
	mcptools "github.com/dmmcquay/nogo/internal/mcp"
	"github.com/dmmcquay/nogo/internal/metrics"
	"github.com/dmmcquay/nogo/internal/ratelimit"
	httpserver "github.com/dmmcquay/nogo/internal/server"
	"github.com/dmmcquay/nogo/internal/shutdown"
	"github.com/mark3labs/mcp-go/server"
)

var (
	// Version information injected at build time.
	GitCommit string = "unknown"
	BuildTime string = "unknown"
)

const (
	shutdownTimeout = 5 * time.Second
	// exitInterrupted follows the shell convention for SIGINT.
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is main without the process exit, so tests can drive whole games.
func run(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("nogo", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		showVersion bool
		configPath  string
		mcpMode     bool
	)
	flags.BoolVar(&showVersion, "version", false, "Show version information")
	flags.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	flags.BoolVar(&mcpMode, "mcp", false, "Serve position analysis tools over MCP stdio instead of playing")
	if err := flags.Parse(argv); err != nil {
		fmt.Fprintln(stderr, cli.Usage)
		return cli.ExitUsage
	}

	if configPath == "" {
		configPath = config.GetConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		msg, code := cli.Describe(fmt.Errorf("%w: %w", cli.ErrConfig, err))
		fmt.Fprintln(stderr, msg)
		return code
	}

	if showVersion {
		fmt.Fprintf(stdout, "nogo version %s\n", cfg.Server.Version)
		fmt.Fprintf(stdout, "Git commit: %s\n", GitCommit)
		fmt.Fprintf(stdout, "Build time: %s\n", BuildTime)
		return cli.ExitOK
	}

	logger, closer, err := logging.NewLoggerFromConfig(&logging.Config{
		Level:   cfg.Logging.Level,
		Format:  logging.LogFormat(cfg.Logging.Format),
		Service: cfg.Server.Name,
		Version: cfg.Server.Version,
		File:    cfg.Logging.File,
	})
	if err != nil {
		msg, code := cli.Describe(fmt.Errorf("%w: %w", cli.ErrConfig, err))
		fmt.Fprintln(stderr, msg)
		return code
	}
	defer func() {
		_ = logger.Sync()
		if closer != nil {
			_ = closer.Close()
		}
	}()
	logger.Info("Starting nogo", "version", cfg.Server.Version, "commit", GitCommit, "built", BuildTime)

	collector := metrics.NewPrometheusCollector()
	mgr := shutdown.NewManager(logger)
	defer func() {
		if err := mgr.Shutdown(shutdownTimeout); err != nil {
			logger.Error("Shutdown failed", "error", err)
		}
	}()

	if cfg.Server.MetricsAddr != "" {
		if err := startHTTP(cfg, logger, collector, mgr); err != nil {
			logger.Error("Failed to start metrics server", "error", err)
			fmt.Fprintln(stderr, err)
			return cli.ExitConfig
		}
	}

	ctx := mgr.HandleSignals(context.Background(), shutdownTimeout)

	if mcpMode {
		return serveMCP(ctx, cfg, logger, collector)
	}
	return playGame(ctx, mgr, flags.Args(), cfg, logger, collector, stdin, stdout, stderr)
}

func startHTTP(cfg *config.Config, logger logging.ContextLogger, collector *metrics.PrometheusCollector, mgr *shutdown.Manager) error {
	checker := httpserver.NewChecker(logger, cfg.Server.Name, cfg.Server.Version)
	checker.RegisterCheck("metrics", func(ctx context.Context) error {
		_, err := collector.Registry().Gather()
		return err
	})

	srv := httpserver.NewHTTPServer(cfg.Server.MetricsAddr, logger, checker, collector)
	if err := srv.Start(); err != nil {
		return err
	}
	mgr.Register("metrics-server", srv.Stop)
	return nil
}

func serveMCP(ctx context.Context, cfg *config.Config, logger logging.ContextLogger, collector *metrics.PrometheusCollector) int {
	mcpServer := server.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		server.WithLogging(),
	)

	rateLimiter := ratelimit.NewLimiter(cfg.MCP.RateLimit, logger)

	toolsHandler := mcptools.NewToolsHandler(logger)
	toolsHandler.SetMiddleware(mcptools.NewMiddleware(logger, collector, rateLimiter))
	toolsHandler.SetCache(cache.NewManager(cfg.MCP.Cache, logger))
	toolsHandler.RegisterTools(mcpServer)

	logger.Info("MCP server ready")

	done := make(chan error, 1)
	go func() {
		done <- server.ServeStdio(mcpServer)
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("Server error", "error", err)
			return cli.ExitUsage
		}
	case <-ctx.Done():
		logger.Info("Server stopped by context cancellation")
	}
	return cli.ExitOK
}

func playGame(
	ctx context.Context,
	mgr *shutdown.Manager,
	positional []string,
	cfg *config.Config,
	logger logging.ContextLogger,
	collector metrics.Recorder,
	stdin io.Reader,
	stdout, stderr io.Writer,
) int {
	args, err := cli.ParseArgs(positional, cfg.Game.MaxDimension)
	if err == nil {
		var runner *cli.Runner
		runner, err = cli.NewRunner(args, cli.Options{
			In:           stdin,
			Out:          stdout,
			ErrOut:       stderr,
			Logger:       logger,
			Metrics:      collector,
			FallbackScan: cfg.Game.ComputerFallbackScan,
		})
		if err == nil {
			return waitForGame(ctx, mgr, runner, logger)
		}
	}

	logger.Debug("Startup failed", "error", err)
	msg, code := cli.Describe(err)
	fmt.Fprintln(stderr, msg)
	return code
}

// waitForGame runs the game in the background because a human seat blocks on
// its reader and cannot observe cancellation until the next line arrives.
func waitForGame(ctx context.Context, mgr *shutdown.Manager, runner *cli.Runner, logger logging.ContextLogger) int {
	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Game stopped", "error", err)
			return cli.ExitUsage
		}
		if err != nil {
			return exitInterrupted
		}
		return cli.ExitOK
	case <-mgr.Done():
		return exitInterrupted
	}
}
