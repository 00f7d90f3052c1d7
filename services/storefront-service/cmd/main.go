package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"StorefrontPlatform/pkg/config"
	"StorefrontPlatform/pkg/database"
	pkggrpc "StorefrontPlatform/pkg/grpc"
	"StorefrontPlatform/pkg/health"
	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/pkg/metrics"
	pkgrabbitmq "StorefrontPlatform/pkg/rabbitmq"
	"StorefrontPlatform/pkg/ratelimit"
	pkgredis "StorefrontPlatform/pkg/redis"

	"StorefrontPlatform/services/storefront-service/internal/domain"
	"StorefrontPlatform/services/storefront-service/internal/handler"
	storemetrics "StorefrontPlatform/services/storefront-service/internal/metrics"
	"StorefrontPlatform/services/storefront-service/internal/notifier"
	"StorefrontPlatform/services/storefront-service/internal/notifier/emailjs"
	"StorefrontPlatform/services/storefront-service/internal/notifier/telegram"
	"StorefrontPlatform/services/storefront-service/internal/pkg/password"
	"StorefrontPlatform/services/storefront-service/internal/pkg/token"
	"StorefrontPlatform/services/storefront-service/internal/producer/rabbitmq"
	"StorefrontPlatform/services/storefront-service/internal/repository"
	"StorefrontPlatform/services/storefront-service/internal/repository/memory"
	"StorefrontPlatform/services/storefront-service/internal/repository/postgres"
	redisstore "StorefrontPlatform/services/storefront-service/internal/repository/redis"
	"StorefrontPlatform/services/storefront-service/internal/service"
)

const (
	serviceName    = "storefront-service"
	serviceVersion = "1.0.0"
)

// backend открытое хранилище и то, что нужно закрыть при остановке
type backend struct {
	store   repository.KVStore
	redis   *pkgredis.Client
	closers []func()
}

func (b *backend) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackend подключает выбранное хранилище и регистрирует его проверку здоровья
func openBackend(ctx context.Context, cfg *config.Config, checker *health.DependencyChecker, appLogger logger.Logger) (*backend, error) {
	b := &backend{}

	switch cfg.Store.Backend {
	case "redis":
		client, err := pkgredis.Connect(ctx, pkgredis.FromAppConfig(cfg.Redis))
		if err != nil {
			return nil, err
		}
		b.redis = client
		b.closers = append(b.closers, func() { client.Close() })
		b.store = redisstore.NewKVStore(client, cfg.Store.Namespace, repository.Consistency(cfg.Store.Consistency))
		checker.Register("redis", client.HealthCheck)

	case "postgres":
		pg, err := database.Connect(ctx, database.FromAppConfig(cfg.Database))
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pg.Close)
		store := postgres.NewKVStore(pg.Pool, cfg.Store.Namespace)
		if err := store.EnsureSchema(ctx); err != nil {
			b.close()
			return nil, err
		}
		b.store = store
		checker.Register("postgres", pg.HealthCheck)

	default:
		appLogger.Warn("Using in-memory store, data is lost on restart")
		b.store = memory.NewKVStore()
	}

	return b, nil
}

func main() {
	cfg, err := config.LoadConfig(os.Getenv("STOREFRONT_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewLogger(cfg.Environment, cfg.Logger.Level, serviceName)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Storefront Service",
		logger.String("store_backend", cfg.Store.Backend),
		logger.String("environment", cfg.Environment))

	tp, err := metrics.InitializeOpenTelemetry(serviceName, serviceVersion)
	if err != nil {
		appLogger.Error("Failed to initialize tracing", logger.Error(err))
		os.Exit(1)
	}

	baseMetrics := metrics.NewMetrics(serviceName)
	storeMetrics := storemetrics.NewStoreMetrics(baseMetrics)
	checker := health.NewDependencyChecker(serviceVersion, 2*time.Second)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), time.Minute)
	defer cancelStartup()

	kv, err := openBackend(startupCtx, cfg, checker, appLogger)
	if err != nil {
		appLogger.Error("Failed to open store", logger.String("backend", cfg.Store.Backend), logger.Error(err))
		os.Exit(1)
	}
	defer kv.close()

	if kv.store.Consistency() != repository.ConsistencyStrong {
		if cfg.Store.RequireStrong {
			appLogger.Error("Store is configured for eventual reads, strong consistency is required",
				logger.String("backend", cfg.Store.Backend))
			os.Exit(1)
		}
		appLogger.Warn("Store reads are eventually consistent, orders may be read stale")
	}

	// События заказов
	var events rabbitmq.EventPublisher = rabbitmq.NoopPublisher{}
	if cfg.RabbitMQ.Enabled {
		rabbitConfig := pkgrabbitmq.NewConfig()
		rabbitConfig.URL = cfg.RabbitMQ.URL
		if cfg.RabbitMQ.Exchange != "" {
			rabbitConfig.Exchange = cfg.RabbitMQ.Exchange
		}
		conn, err := pkgrabbitmq.Connect(startupCtx, rabbitConfig)
		if err != nil {
			appLogger.Error("Failed to connect to RabbitMQ", logger.Error(err))
			os.Exit(1)
		}
		defer conn.Close()
		checker.Register("rabbitmq", conn.HealthCheck)
		events = rabbitmq.NewOrderProducer(pkgrabbitmq.NewProducer(conn, rabbitConfig), appLogger, storeMetrics)
		appLogger.Info("Order events enabled", logger.String("exchange", rabbitConfig.Exchange))
	}

	// Уведомления
	dispatcher := notifier.NewDispatcher(
		config.Duration(cfg.Notify.Timeout, 10*time.Second),
		appLogger, storeMetrics,
		telegram.NewNotifier(telegram.Config{
			BotToken: cfg.Providers.Telegram.BotToken,
			ChatID:   cfg.Providers.Telegram.ChatID,
			APIURL:   cfg.Providers.Telegram.APIURL,
			Timeout:  config.Duration(cfg.Providers.Telegram.Timeout, 0),
		}, appLogger),
		emailjs.NewNotifier(emailjs.Config{
			ServiceID:       cfg.Providers.EmailJS.ServiceID,
			TemplateID:      cfg.Providers.EmailJS.TemplateID,
			PublicKey:       cfg.Providers.EmailJS.PublicKey,
			APIURL:          cfg.Providers.EmailJS.APIURL,
			Timeout:         config.Duration(cfg.Providers.EmailJS.Timeout, 0),
			SupportTelegram: cfg.Shop.SupportTelegram,
		}, appLogger),
	)

	// Репозитории и сервисы
	configs := repository.NewConfigRepository(kv.store,
		domain.SeedDefaults{PaymentNumber: cfg.Shop.PaymentNumber, SupportTelegram: cfg.Shop.SupportTelegram},
		appLogger, repository.WithStrictVersioning(cfg.Store.StrictConfigVersioning))
	orders := repository.NewOrderRepository(kv.store, appLogger)

	orderService := service.NewOrderService(configs, orders, dispatcher, events, cfg.Shop.PaymentNumber, appLogger, storeMetrics)
	catalogService := service.NewCatalogService(configs, appLogger, storeMetrics)

	passwords := password.NewChecker(cfg.Admin.Password, cfg.Admin.PasswordHash)
	if !passwords.Configured() {
		appLogger.Warn("Admin password is not set, admin login is disabled")
	}
	if cfg.Admin.TokenSecret == "" {
		appLogger.Warn("ADMIN_TOKEN_SECRET is not set, admin tokens cannot be issued")
	}
	authService := service.NewAuthService(passwords,
		token.NewManager(cfg.Admin.TokenSecret, config.Duration(cfg.Admin.TokenTTL, token.DefaultTTL)),
		cfg.Admin.AllowedIP, appLogger, storeMetrics)

	var limiter ratelimit.RateLimiter = ratelimit.NoopRateLimiter{}
	if cfg.RateLimiting.Enabled {
		if kv.redis != nil {
			limiter = ratelimit.NewRedisRateLimiter(kv.redis.Client, cfg.Store.Namespace+":rate_limit")
		} else {
			appLogger.Warn("Rate limiting requires the redis store backend, disabled")
		}
	}

	httpHandler := handler.NewHandler(orderService, catalogService, authService, handler.Options{
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		TrustProxy:        cfg.Server.TrustProxy,
		Limiter:           limiter,
		RequestsPerMinute: cfg.RateLimiting.RequestsPerMinute,
		LoginPerMinute:    cfg.RateLimiting.LoginPerMinute,
		Health:            checker,
		Metrics:           baseMetrics,
	}, appLogger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// gRPC health сервер для оркестратора
	var grpcServer *grpc.Server
	if cfg.GRPC.Port > 0 {
		grpcAddr := fmt.Sprintf(":%d", cfg.GRPC.Port)
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			appLogger.Error("Failed to listen on gRPC port", logger.Int("port", cfg.GRPC.Port), logger.Error(err))
			os.Exit(1)
		}

		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(pkggrpc.UnaryServerInterceptor(appLogger)))
		healthServer := grpchealth.NewServer()
		healthpb.RegisterHealthServer(grpcServer, healthServer)
		reflection.Register(grpcServer)

		go watchHealth(ctx, checker, healthServer, appLogger)

		go func() {
			appLogger.Info("Starting gRPC health server", logger.String("address", grpcAddr))
			if err := grpcServer.Serve(lis); err != nil {
				appLogger.Error("gRPC server failed", logger.Error(err))
			}
		}()
	}

	go func() {
		appLogger.Info("Starting HTTP server", logger.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed", logger.Error(err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	appLogger.Info("Shutdown signal received")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second))
	defer cancelShutdown()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", logger.Error(err))
		httpServer.Close()
	}
	if err := metrics.ShutdownTracing(shutdownCtx, tp); err != nil {
		appLogger.Warn("Tracing shutdown failed", logger.Error(err))
	}

	appLogger.Info("Storefront Service stopped gracefully")
}

// watchHealth переносит результат проверки зависимостей в gRPC health статус
func watchHealth(ctx context.Context, checker health.HealthChecker, server *grpchealth.Server, appLogger logger.Logger) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		next := healthpb.HealthCheckResponse_SERVING
		if !checker.Check(ctx).Healthy() {
			next = healthpb.HealthCheckResponse_NOT_SERVING
		}
		if next != last {
			appLogger.Info("Health status changed", logger.String("status", next.String()))
			server.SetServingStatus("", next)
			server.SetServingStatus(serviceName, next)
			last = next
		}

		select {
		case <-ctx.Done():
			server.Shutdown()
			return
		case <-ticker.C:
		}
	}
}
