package main

import (
	"chat-signal/auth"
	"chat-signal/infrastructure/grpc/server"
	"chat-signal/infrastructure/kafka"
	"chat-signal/infrastructure/redis"
	"chat-signal/infrastructure/rest"
	"chat-signal/infrastructure/search"
	"chat-signal/infrastructure/upload"
	"chat-signal/infrastructure/websocket"
	"chat-signal/internal"
	"chat-signal/moderation"
	"chat-signal/repositories"
	"chat-signal/runtime"
	"chat-signal/runtime/workers"
	"chat-signal/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	grpc3 "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chat-signal terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a server failure.
// Deferred closes run before the exit code reaches the OS.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) {
		debugPort := config.Port + 5
		logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d/inspect", debugPort))
		database.StartDebugServer(db, debugPort, "/inspect", RecordMapper)
	}

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	uploads, err := upload.NewStore(logger, config.UploadPath, config.MaxFileSize)
	if err != nil {
		return exitRuntime, err
	}

	// 3. Services
	registry := runtime.NewRegistry()
	bus := runtime.NewEventBus(logger, config.EventBufferSize)
	notifier := services.NewNotifier(logger, registry)
	users := repositories.NewUserRepository(db)
	contacts := repositories.NewContactRepository(db)
	index := search.NewIndex(logger, blugeWriter)

	messages := services.NewMessageService(logger, repositories.NewMessageRepository(db, logger), contacts, notifier, bus,
		services.MessageSettings{
			BroadcastMutations:   config.BroadcastMessageMutations,
			EnforceReadOwnership: config.EnforceReadReceiptOwnership,
			MaxContentLength:     config.MaxContentLength,
		}).WithSearcher(index)
	if config.ModerationEnabled {
		moderator, err := moderation.NewService(logger, charReplacement)
		if err != nil {
			return exitConfig, fmt.Errorf("moderation dictionaries: %w", err)
		}
		messages.WithModerator(moderator)
	}
	calls := services.NewCallService(logger, registry, notifier)
	svcs := runtime.Services{
		Presence: services.NewPresenceService(logger, registry, users, notifier, bus),
		Messages: messages,
		Calls:    calls,
		Typing:   services.NewTypingService(notifier),
	}

	// 4. Orchestration & permanent sinks
	orchestrator := runtime.NewOrchestrator(logger, workers.NewSupervisor(logger, config.RestartInterval),
		registry, bus, svcs, config.SinkTimeout)
	orchestrator.Add(index)
	if config.RedisAddr != "" {
		client := redis.NewClient(config.RedisAddr)
		defer client.Close()
		orchestrator.Add(redis.NewPresenceMirror(logger, client))
	}
	if brokers := config.Brokers(); len(brokers) > 0 {
		exporter := kafka.NewExporter(logger, kafka.NewWriter(brokers, config.KafkaTopic))
		defer exporter.Close()
		orchestrator.Add(exporter)
	}

	monitor := workers.NewHealthMonitoringWorker(logger, func() (int, int, int) {
		connections, online := registry.Counts()
		return connections, online, calls.ActiveCalls()
	}, config.MetricInterval)
	capacity := workers.NewChannelCapacityWorker(logger,
		[]workers.NamedChannel{{Name: "events", Channel: bus.Events()}},
		config.LowCapacityThreshold, config.MetricInterval)
	orchestrator.AddWorkers(monitor, capacity)

	if err = orchestrator.Start(ctx); err != nil {
		return exitRuntime, fmt.Errorf("orchestrator failed to start: %w", err)
	}
	defer orchestrator.Stop()

	errChan := make(chan error, 2)

	// 5. gRPC health
	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GrpcPort)
	grpcListener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}
	healthServer := server.NewHealthServer(logger, grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(logger)))
	go func() {
		if err := healthServer.Serve(grpcListener); err != nil {
			errChan <- err
		}
	}()

	// 6. HTTP: websocket + REST
	authenticator := auth.NewAuthenticator(config.JwtSecret)
	wsHandler := websocket.NewHandler(logger, orchestrator, authenticator, config.AuthRequired, config.ConnectionBufferSize)
	api := rest.NewAPI(logger, messages, services.NewContactService(logger, contacts, users, notifier),
		uploads, authenticator, config.AuthRequired, config.MaxFileSize, stats(registry, calls, monitor, capacity))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:           api.Router(wsHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	healthServer.SetServing(true)

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Graceful shutdown
	logger.Info("Shutting down gracefully...")
	healthServer.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

func stats(registry *runtime.Registry, calls *services.CallService,
	monitor *workers.HealthMonitoringWorker, capacity *workers.ChannelCapacityWorker) rest.StatsProvider {
	return func() map[string]any {
		connections, online := registry.Counts()
		return map[string]any{
			"connections": connections,
			"online":      online,
			"activeCalls": calls.ActiveCalls(),
			"callRooms":   calls.Rooms(),
			"process":     monitor.Latest(),
			"channels":    capacity.Usage(),
		}
	}
}
