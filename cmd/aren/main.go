package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	arenhttp "github.com/arenlabs/aren/internal/adapter/http"
	arenmcp "github.com/arenlabs/aren/internal/adapter/mcp"
	arenotel "github.com/arenlabs/aren/internal/adapter/otel"
	"github.com/arenlabs/aren/internal/adapter/postgres"
	"github.com/arenlabs/aren/internal/adapter/ws"
	"github.com/arenlabs/aren/internal/config"
	"github.com/arenlabs/aren/internal/logger"
	"github.com/arenlabs/aren/internal/middleware"
	"github.com/arenlabs/aren/internal/port/a2a"
)

// version is stamped at build time via -ldflags.
var version = "0.1.0"

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd = args[0]
		args = args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(args)
	case "repl":
		err = runRepl(args)
	case "admin":
		err = runAdmin(args)
	case "mcp":
		err = runMCP(args)
	case "migrate":
		err = runMigrate(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		printUsage()
		err = fmt.Errorf("unknown command: %s", cmd)
	}
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: aren [command] [options]

Commands:
  serve     Run the HTTP API server (default)
  repl      Talk to the assistant on the terminal
  admin     Administrative tools (users, tasks, identity facts)
  mcp       Serve the Model Context Protocol over stdio
  migrate   Apply database migrations and exit
  help      Show this help message

Options for serve and repl:
  -c, -config PATH   YAML config file (default %s)
  -p, -port PORT     HTTP listen port
  -log-level LEVEL   debug, info, warn or error
  -dsn DSN           PostgreSQL connection string
  -nats-url URL      NATS server URL
`, config.DefaultConfigFile)
}

func runServe(args []string) error {
	flags, err := config.ParseFlags(args)
	if err != nil {
		return fmt.Errorf("flags: %w", err)
	}
	cfg, cfgPath, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closer := logger.New(cfg.Logging)
	defer closer.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"path", cfgPath,
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
	)

	ctx := context.Background()

	otelShutdown, err := arenotel.Setup(ctx, cfg.Telemetry, "aren")
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = otelShutdown(flushCtx)
	}()

	eng, err := buildEngine(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer eng.close()
	slog.Info("engine ready", "capabilities", len(eng.catalog.All()))

	// Relay queue events to WebSocket clients.
	hub := ws.NewHub()
	feed := ws.NewFeed(eng.queue, hub)
	if err := feed.Start(ctx); err != nil {
		return fmt.Errorf("event feed: %w", err)
	}
	defer feed.Stop()

	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	stopCleanup := limiter.StartCleanup(cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)
	defer stopCleanup()

	r := chi.NewRouter()

	// Middleware
	r.Use(arenhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(arenhttp.SecurityHeaders)
	r.Use(arenhttp.Logger)
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(limiter.Handler)
	if cfg.Telemetry.Enabled {
		r.Use(arenotel.HTTPMiddleware("aren"))
	}

	// WebSocket endpoint
	r.Get("/ws", hub.HandleWS)

	// Agent-to-agent discovery and task routes
	agent := a2a.NewHandler("http://localhost:"+cfg.Server.Port, eng.catalog, eng.orchestrator)
	agent.MountRoutes(r)

	// API routes
	arenhttp.MountRoutes(r, &arenhttp.Handlers{
		Orchestrator: eng.orchestrator,
		Contexts:     eng.contexts,
		Store:        eng.store,
		Catalog:      eng.catalog,
		DB:           eng.pool,
		Queue:        eng.queue,
	})

	// Optional MCP endpoint alongside the main API.
	if cfg.MCP.Addr != "" {
		mcpSrv := arenmcp.NewServer(
			arenmcp.ServerConfig{Addr: cfg.MCP.Addr, APIKey: cfg.MCP.APIKey, Name: "aren", Version: version},
			arenmcp.ServerDeps{Processor: eng.orchestrator, Contexts: eng.contexts, Catalog: eng.catalog},
		)
		if err := mcpSrv.Start(); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mcpSrv.Stop(stopCtx)
		}()
	}

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// SIGHUP re-reads the config file and the secret environment; the log
	// level applies immediately.
	holder := config.NewHolder(cfg, cfgPath)
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go func() {
		for range reload {
			if err := holder.Reload(); err != nil {
				slog.Error("config reload failed", "error", err)
				continue
			}
			if err := eng.vault.Reload(); err != nil {
				slog.Error("secret reload failed", "error", err)
			}
			logger.SetLevel(holder.Get().Logging.Level)
			slog.Info("config reloaded", "path", cfgPath, "log_level", holder.Get().Logging.Level)
		}
	}()

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	// Hijacked WebSocket connections are not covered by srv.Shutdown.
	hub.Shutdown()
	if eng.queue != nil {
		_ = eng.queue.Drain()
	}
	return nil
}

func runMigrate(args []string) error {
	flags, err := config.ParseFlags(args)
	if err != nil {
		return fmt.Errorf("flags: %w", err)
	}
	cfg, _, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()
	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")
	return nil
}

func runMCP(args []string) error {
	flags, err := config.ParseFlags(args)
	if err != nil {
		return fmt.Errorf("flags: %w", err)
	}
	cfg, _, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Logs go to stderr so stdout stays a clean protocol stream.
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(log)

	ctx := context.Background()
	eng, err := buildEngine(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	defer eng.close()

	srv := arenmcp.NewServer(
		arenmcp.ServerConfig{Name: "aren", Version: version},
		arenmcp.ServerDeps{Processor: eng.orchestrator, Contexts: eng.contexts, Catalog: eng.catalog},
	)
	return srv.ServeStdio()
}
