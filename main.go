// Command pong-arena starts the Pong Arena game server.
//
// It supports three commands:
//  1. "serve" (default) – runs the HTTP server exposing the game API and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "scores" – prints the leaderboard from the configured score store
//
// Settings come from PONG_* environment variables (and a .env file); flags
// override them. An optional ngrok tunnel exposes the server publicly during
// development.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/pong-arena/api"
	"github.com/wricardo/pong-arena/game/config"
	"github.com/wricardo/pong-arena/game/scores"
	"github.com/wricardo/pong-arena/game/service"
	"github.com/wricardo/pong-arena/game/session"
	"github.com/wricardo/pong-arena/logging"
	"github.com/wricardo/pong-arena/telemetry"
	"github.com/wricardo/pong-arena/transport/mcp"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Pong Arena Server"
)

const shutdownTimeout = 10 * time.Second

// main loads .env, wires signal handling and runs the selected command.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newCommand builds the CLI. Flags are declared on the root command and
// shared by every subcommand.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "pong-arena",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host (PONG_HOST)"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port (PONG_PORT)"},
			&cli.StringFlag{Name: "scores-db", Usage: "SQLite leaderboard file, empty for in-memory (PONG_SCORES_DB)"},
			&cli.StringFlag{Name: "sessions-dir", Usage: "Directory for game snapshots, empty to disable (PONG_SESSIONS_DIR)"},
			&cli.DurationFlag{Name: "session-ttl", Usage: "Evict games idle longer than this, 0 to disable (PONG_SESSION_TTL)"},
			&cli.DurationFlag{Name: "sweep-interval", Usage: "How often idle games are evicted (PONG_SWEEP_INTERVAL)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (PONG_LOG_LEVEL)"},
			&cli.StringFlag{Name: "log-file", Usage: "Also write logs to this rotating file (PONG_LOG_FILE)"},
			&cli.StringFlag{Name: "otel-endpoint", Usage: "OTLP/HTTP trace endpoint (PONG_OTEL_ENDPOINT)"},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel (PONG_NGROK_ENABLED)"},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token (PONG_NGROK_AUTHTOKEN)"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (PONG_NGROK_DOMAIN)"},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server with the game API and MCP endpoint (default)",
				Action: serveAction,
			},
			{
				Name:  "mcp",
				Usage: "Run an MCP stdio server backed by the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "api-url",
						Usage: "Use a running API server instead of starting an internal one",
					},
				},
				Action: mcpAction,
			},
			{
				Name:  "scores",
				Usage: "Print the leaderboard",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: scores.DefaultLimit, Usage: "Number of entries"},
				},
				Action: scoresAction,
			},
		},
	}
}

// loadConfig reads the environment and applies any flags that were set.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("scores-db") {
		cfg.ScoresDB = cmd.String("scores-db")
	}
	if cmd.IsSet("sessions-dir") {
		cfg.SessionsDir = cmd.String("sessions-dir")
	}
	if cmd.IsSet("session-ttl") {
		cfg.SessionTTL = cmd.Duration("session-ttl")
	}
	if cmd.IsSet("sweep-interval") {
		cfg.SweepInterval = cmd.Duration("sweep-interval")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-file") {
		cfg.LogFile = cmd.String("log-file")
	}
	if cmd.IsSet("otel-endpoint") {
		cfg.OTelEndpoint = cmd.String("otel-endpoint")
	}
	if cmd.IsSet("ngrok") {
		cfg.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		cfg.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		cfg.Ngrok.Domain = cmd.String("ngrok-domain")
	}

	return cfg, cfg.Validate()
}

// setup loads the config and builds the logger shared by every command.
func setup(cmd *cli.Command) (config.Config, *zap.Logger, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	logger, cleanup, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, logger, cleanup, nil
}

// app holds the wired services for one process.
type app struct {
	sessions *session.Manager
	recorder scores.Recorder
	service  service.GameService
	closers  []func() error
}

// newApp wires persistence, the session manager, the score store and the
// game service.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}

	opts := []session.Option{session.WithLogger(logger)}
	if cfg.SessionsDir != "" {
		persistence, err := session.NewFilePersistence(cfg.SessionsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		opts = append(opts, session.WithPersistence(persistence))
	}
	a.sessions = session.NewManager(opts...)

	// Load persisted sessions on startup
	if cfg.SessionsDir != "" {
		if err := a.sessions.LoadPersistedSessions(); err != nil {
			logger.Warn("failed to load persisted sessions", zap.Error(err))
		}
		logger.Info("sessions restored", zap.Int("count", a.sessions.Count()), zap.String("dir", cfg.SessionsDir))
	}

	recorder, closeRecorder, err := openRecorder(ctx, cfg.ScoresDB)
	if err != nil {
		return nil, err
	}
	a.recorder = recorder
	a.closers = append(a.closers, closeRecorder)

	a.service = service.NewGameService(a.sessions, a.recorder, logger)
	return a, nil
}

func openRecorder(ctx context.Context, path string) (scores.Recorder, func() error, error) {
	if path == "" {
		return scores.NewMemoryStore(), func() error { return nil }, nil
	}
	store, err := scores.OpenSQLite(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open score store: %w", err)
	}
	return store, store.Close, nil
}

func (a *app) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return runHTTPServer(ctx, cfg, logger)
}

// runHTTPServer serves the game API, the /mcp endpoint and, when enabled,
// an ngrok tunnel until ctx is cancelled. The idle-session sweeper runs
// alongside.
func runHTTPServer(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	logger.Info("starting", zap.String("app", AppName), zap.String("version", Version))

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, Version)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("trace flush failed", zap.Error(err))
		}
	}()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := cfg.Addr()
	handler := newHandler(a, cfg, logger, "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return a.sessions.RunSweeper(gctx, cfg.SweepInterval, cfg.SessionTTL)
	})

	if cfg.Ngrok.Enabled {
		g.Go(func() error {
			return runNgrok(gctx, cfg.Ngrok, handler, logger)
		})
	}

	err = g.Wait()
	logger.Info("server stopped")
	return err
}

// newHandler builds the API server with the MCP endpoint mounted. The MCP
// tools call back into the API at baseURL.
func newHandler(a *app, cfg config.Config, logger *zap.Logger, baseURL string) http.Handler {
	apiServer := api.NewServer(a.service,
		api.WithLogger(logger),
		api.WithAllowedOrigins(cfg.AllowedOrigins),
	)
	mcpClient := mcp.NewClient(baseURL, Version)
	apiServer.Mount("/mcp", mcpClient.Handler())
	return apiServer
}

// runNgrok serves handler through an ngrok tunnel until ctx is cancelled.
// Tunnel failures are logged and do not stop the local server.
func runNgrok(ctx context.Context, cfg config.NgrokConfig, handler http.Handler, logger *zap.Logger) error {
	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
		logger.Info("using custom ngrok domain", zap.String("domain", cfg.Domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	logger.Info("starting ngrok tunnel")
	tun, err := ngrok.Listen(ctx,
		tunnel,
		ngrok.WithAuthtoken(cfg.AuthToken),
	)
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return nil
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	logger.Info("ngrok tunnel established",
		zap.String("url", tun.URL()),
		zap.String("mcp", tun.URL()+"/mcp"),
	)

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		logger.Error("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
	return nil
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return runStdioMCP(ctx, cfg, logger, cmd.String("api-url"))
}

// runStdioMCP runs an MCP stdio server. With apiURL set and reachable the
// tools target that server; otherwise a private HTTP API is started on a
// random loopback port.
func runStdioMCP(ctx context.Context, cfg config.Config, logger *zap.Logger, apiURL string) error {
	baseURL := ""
	if apiURL != "" && apiReachable(ctx, apiURL) {
		logger.Info("using external API server", zap.String("url", apiURL))
		baseURL = apiURL
	}

	if baseURL == "" {
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		httpServer := &http.Server{Handler: newHandler(a, cfg, logger, baseURL)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		logger.Info("internal HTTP server started", zap.String("url", baseURL))
	}

	mcpClient := mcp.NewClient(baseURL, Version)
	logger.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiReachable reports whether an API server answers its health check.
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func scoresAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	recorder, closeRecorder, err := openRecorder(ctx, cfg.ScoresDB)
	if err != nil {
		return err
	}
	defer closeRecorder()

	svc := service.NewGameService(session.NewManager(), recorder, logger)
	entries, err := svc.HighScores(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No scores recorded yet.")
		return nil
	}
	for i, entry := range entries {
		fmt.Fprintf(w, "%2d. %-20s %3d  %s\n", i+1, entry.Username, entry.Score, entry.Date.Format(time.RFC3339))
	}
	return nil
}
