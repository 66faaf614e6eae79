package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bibbank/loanintake/internal/application/usecase"
	"github.com/bibbank/loanintake/internal/domain/port"
	"github.com/bibbank/loanintake/internal/domain/service"
	"github.com/bibbank/loanintake/internal/infrastructure/adapter"
	"github.com/bibbank/loanintake/internal/infrastructure/cache"
	"github.com/bibbank/loanintake/internal/infrastructure/config"
	"github.com/bibbank/loanintake/internal/infrastructure/export"
	"github.com/bibbank/loanintake/internal/infrastructure/kafka"
	"github.com/bibbank/loanintake/internal/infrastructure/messaging"
	"github.com/bibbank/loanintake/internal/infrastructure/persistence/memory"
	pgRepo "github.com/bibbank/loanintake/internal/infrastructure/persistence/postgres"
	grpcPresentation "github.com/bibbank/loanintake/internal/presentation/grpc"
	"github.com/bibbank/loanintake/internal/presentation/rest"
	"github.com/bibbank/loanintake/pkg/auth"
	pkgkafka "github.com/bibbank/loanintake/pkg/kafka"
	"github.com/bibbank/loanintake/pkg/observability"
	pkgpostgres "github.com/bibbank/loanintake/pkg/postgres"
	"github.com/bibbank/loanintake/pkg/tlsutil"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.ServiceName,
	})

	logger.Info("starting loan intake service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"store", cfg.Store,
		"timezone", cfg.TimeZone,
	)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("loan intake service failed", "error", err)
		os.Exit(1)
	}
	logger.Info("loan intake service stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// Tracing and metrics.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    true,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort
	metrics, err := usecase.NewMetrics(meterProvider.Meter("loan-intake"))
	if err != nil {
		return err
	}

	loc := cfg.Location()

	// Infrastructure adapters.
	repo, closeRepo, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	publisher, closePublisher, err := openPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	quoteCache, closeCache := openQuoteCache(ctx, cfg, logger)
	defer closeCache()

	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{
		Secret:        cfg.Admin.JWTSecret,
		PrivateKeyPEM: cfg.Admin.PrivateKeyPEM,
		PublicKeyPEM:  cfg.Admin.PublicKeyPEM,
		Issuer:        cfg.Admin.JWTIssuer,
		Expiration:    cfg.Admin.SessionTTL,
	})
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}
	authenticator, err := adapter.NewSharedSecretAuthenticator(cfg.Admin.Password)
	if err != nil {
		return err
	}

	// Use cases.
	rules := service.DefaultValidationRules()
	rules.Location = loc
	validator := service.NewApplicationValidator(rules)

	uc := usecase.UseCases{
		Quote:     usecase.NewCalculateEMIUseCase(quoteCache, usecase.DefaultQuoteLimits(), logger),
		Submit:    usecase.NewSubmitLoanApplicationUseCase(repo, publisher, validator, metrics, logger),
		List:      usecase.NewListApplicationsUseCase(repo, loc),
		Delete:    usecase.NewDeleteApplicationUseCase(repo, publisher, logger),
		DeleteDay: usecase.NewDeleteApplicationsByDateUseCase(repo, publisher, loc, logger),
		Export: usecase.NewExportApplicationsUseCase(authenticator, repo, loc, metrics,
			export.NewXLSXEncoder(loc), export.NewCSVEncoder(loc)),
		AdminLogin: usecase.NewAdminLoginUseCase(authenticator, adapter.NewJWTSessionIssuer(jwtSvc)),
	}

	// gRPC server.
	grpcServer, err := grpcPresentation.NewServer(grpcPresentation.NewIntakeHandler(uc, logger), logger, jwtSvc,
		grpcPresentation.ServerConfig{
			ServiceName: cfg.ServiceName,
			CertFile:    cfg.TLS.CertFile,
			KeyFile:     cfg.TLS.KeyFile,
			Reflection:  os.Getenv("GRPC_REFLECTION") == "true",
		})
	if err != nil {
		return err
	}

	// HTTP server.
	router := rest.NewRouter(rest.RouterConfig{
		Handler: rest.NewHandler(uc, logger),
		Health:  rest.NewHealthHandler(cfg.ServiceName, repo, logger),
		JWT:     jwtSvc,
		Limiter: rest.NewClientRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		Metrics: metricsHandler,
		Logger:  logger,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	useTLS := cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != ""
	if useTLS {
		tlsCfg, err := tlsutil.ServerConfig(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			return fmt.Errorf("http tls: %w", err)
		}
		httpServer.TLSConfig = tlsCfg
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort, "tls", useTLS)
		var err error
		if useTLS {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	// Graceful shutdown.
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	return runErr
}

// openStore connects the configured application store. Postgres runs the
// migrations before serving.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.LoanApplicationRepository, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("using in-memory store, applications are lost on restart")
		return memory.NewLoanApplicationRepo(), func() {}, nil
	}

	dbCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()
	pool, err := pkgpostgres.NewPool(dbCtx, dbCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("connected to database", "host", cfg.DB.Host, "database", cfg.DB.Name)

	if cfg.DB.Migrations != "" {
		version, err := pkgpostgres.RunMigrations(dbCfg.DSN(), cfg.DB.Migrations)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database schema ready", "version", version)
	}
	return pgRepo.NewLoanApplicationRepo(pool), pool.Close, nil
}

// openPublisher returns a Kafka publisher when brokers are configured and a
// log-only publisher otherwise.
func openPublisher(cfg config.Config, logger *slog.Logger) (port.EventPublisher, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("no kafka brokers configured, domain events are logged only")
		return messaging.NewLogEventPublisher(logger), func() {}, nil
	}

	producer, err := pkgkafka.NewProducer(pkgkafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		ClientID:      cfg.Kafka.ClientID,
		TLS:           cfg.Kafka.TLS,
		SASLEnabled:   cfg.Kafka.SASLUsername != "",
		SASLMechanism: cfg.Kafka.SASLMechanism,
		SASLUsername:  cfg.Kafka.SASLUsername,
		SASLPassword:  cfg.Kafka.SASLPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create kafka producer: %w", err)
	}
	logger.Info("publishing domain events to kafka", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	return kafka.NewEventPublisher(producer, cfg.Kafka.Topic, logger), closeQuietly(producer, logger, "kafka producer"), nil
}

// openQuoteCache returns a Redis-backed quote cache when an address is set.
func openQuoteCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.QuoteCache, func()) {
	if cfg.Redis.Addr == "" {
		return cache.Noop{}, func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, quotes are computed uncached until it recovers", "addr", cfg.Redis.Addr, "error", err)
	}
	return cache.NewRedisQuoteCache(client, cfg.Redis.TTL), closeQuietly(client, logger, "redis client")
}

func closeQuietly(c io.Closer, logger *slog.Logger, what string) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Warn("close failed", "component", what, "error", err)
		}
	}
}
