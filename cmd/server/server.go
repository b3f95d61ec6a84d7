package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	toolkitdice "github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/KirkDiggler/rpg-sheets/internal/clients/external"
	"github.com/KirkDiggler/rpg-sheets/internal/config"
	dicev1alpha1 "github.com/KirkDiggler/rpg-sheets/internal/handlers/dice/v1alpha1"
	"github.com/KirkDiggler/rpg-sheets/internal/handlers/web"
	"github.com/KirkDiggler/rpg-sheets/internal/orchestrators/sheet"
	"github.com/KirkDiggler/rpg-sheets/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-sheets/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-sheets/internal/redis"
	"github.com/KirkDiggler/rpg-sheets/internal/repositories/roster"
	sheetstate "github.com/KirkDiggler/rpg-sheets/internal/repositories/sheet_state"
)

const shutdownTimeout = 30 * time.Second

var (
	httpAddr  string
	grpcPort  int
	redisAddr string
	logLevel  string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP and gRPC servers",
	Long:  `Start the sheet pages over HTTP and the dice service over gRPC. Flags override RPG_SHEETS_* environment variables.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().StringVar(&httpAddr, "http-addr", "", "HTTP listen address (env RPG_SHEETS_HTTP_ADDR)")
	serverCmd.Flags().IntVar(&grpcPort, "port", 0, "gRPC server port (env RPG_SHEETS_GRPC_PORT)")
	serverCmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for shared tables (env RPG_SHEETS_REDIS_ADDR)")
	serverCmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (env RPG_SHEETS_LOG_LEVEL)")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("http-addr") {
		cfg.HTTPAddr = httpAddr
	}
	if flags.Changed("port") {
		cfg.GRPCPort = grpcPort
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr = redisAddr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rosterRepo := roster.NewDefault()

	sheetService, err := sheet.NewOrchestrator(&sheet.Config{
		Roster: rosterRepo,
		Roller: toolkitdice.DefaultRoller,
	})
	if err != nil {
		return fmt.Errorf("failed to create sheet orchestrator: %w", err)
	}

	reference, err := external.New(&external.Config{
		BaseURL:  cfg.DND5eBaseURL,
		CacheTTL: cfg.DND5eCacheTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create reference client: %w", err)
	}

	handlerCfg := &web.HandlerConfig{
		Sheets:    sheetService,
		Roster:    rosterRepo,
		Reference: reference,
	}

	if cfg.RedisAddr != "" {
		redisClient, err := redis.NewClient(&redis.Config{Addr: cfg.RedisAddr})
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		if err := redis.Ping(ctx, redisClient); err != nil {
			slog.Warn("Redis not reachable yet, shared tables will fail until it is", "redis_addr", cfg.RedisAddr, "error", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Error("Failed to close redis client", "error", err)
			}
		}()

		origins := idgen.NewUUID("origin")
		handlerCfg.IDGenerator = idgen.NewShort("")
		handlerCfg.Tables = func(_ context.Context, sessionID string) (sheetstate.Backend, error) {
			return sheetstate.NewRedisBackend(&sheetstate.Config{
				Client:      redisClient,
				Clock:       clock.New(),
				IDGenerator: origins,
				SessionID:   sessionID,
				TTL:         cfg.TableTTL,
			})
		}
		slog.Info("Shared tables enabled", "redis_addr", cfg.RedisAddr)
	}

	webHandler, err := web.NewHandler(handlerCfg)
	if err != nil {
		return fmt.Errorf("failed to create web handler: %w", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           webHandler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.StreamServerInterceptor(),
		),
	)

	diceHandler, err := dicev1alpha1.NewDiceHandler(&dicev1alpha1.DiceHandlerConfig{
		Roller: toolkitdice.DefaultRoller,
	})
	if err != nil {
		return fmt.Errorf("failed to create dice handler: %w", err)
	}
	dicev1alpha1.RegisterDiceServiceServer(grpcServer, diceHandler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(dicev1alpha1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	errChan := make(chan error, 2)
	go func() {
		slog.Info("gRPC server starting", "port", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve grpc: %w", err)
		}
	}()
	go func() {
		slog.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("failed to serve http: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal, gracefully stopping")
	case err := <-errChan:
		grpcServer.Stop()
		_ = httpServer.Close()
		return err
	}

	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-shutdownCtx.Done():
		slog.Warn("Graceful shutdown timeout exceeded, forcing stop")
		grpcServer.Stop()
	case <-stopped:
		slog.Info("Server stopped gracefully")
	}

	return nil
}

func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	slog.Log(ctx, slogLevel(level), msg, fields...)
}

func slogLevel(level grpc_logging.Level) slog.Level {
	switch level {
	case grpc_logging.LevelDebug:
		return slog.LevelDebug
	case grpc_logging.LevelWarn:
		return slog.LevelWarn
	case grpc_logging.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
