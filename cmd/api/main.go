package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"salonik/internal/api"
	"salonik/internal/config"
	"salonik/internal/database"
	"salonik/internal/domain"
	"salonik/internal/events"
	"salonik/internal/export"
	"salonik/internal/logging"
	"salonik/internal/metrics"
	"salonik/internal/models"
	"salonik/internal/repository"
	"salonik/internal/service"
	"salonik/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slotCache := initSlotCache(ctx, cfg, &logger)

	eventBus := events.NewEventBus()

	sender := worker.NewLogSender(&logger)
	notifyWorker := worker.NewNotifyWorker(sender, worker.RetryPolicy{}, models.ReminderQueueSize, &logger)
	notifyWorker.SubscribeToBookingEvents(eventBus)
	go notifyWorker.Run(ctx)

	bookingService := service.NewBookingService(db, slotCache, eventBus, cfg.Booking, &logger)
	exporter := export.NewExporter(cfg.Exports.Path, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(cfg.Monitoring.PrometheusPort, &logger)
	}

	apiServer := api.NewHTTPServer(cfg.API, bookingService, exporter, &logger)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error().Err(err).Msg("API server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return apiServer.Shutdown(shutdownCtx)
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
			return err
		}
	}
	if cfg.Exports.Path != "" {
		if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
			return err
		}
	}
	return nil
}

// initSlotCache wires redis behind a failover to the in-memory cache, or
// memory-only when redis is not configured.
func initSlotCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.SlotCache {
	ttl := time.Duration(cfg.Booking.SlotCacheTTLSeconds) * time.Second
	memory := repository.NewMemorySlotCache(ttl)

	if cfg.Redis.Address == "" {
		logger.Info().Msg("redis not configured, using in-memory slot cache")
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable at startup, failover starts degraded")
	}

	return repository.NewFailoverSlotCache(repository.NewRedisSlotCache(client, ttl), memory, logger)
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":" + strconv.Itoa(port)
	logger.Info().Str("addr", addr).Msg("metrics listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
