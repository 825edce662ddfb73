package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/config"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/event"
	handler "github.com/alvina-abdullah/foodeez.ch-sub002/internal/handler/http"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/mailer"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/repository/postgres"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/service"
	"github.com/alvina-abdullah/foodeez.ch-sub002/migrations"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/database"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/health"
	pkgkafka "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/kafka"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/middleware"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/tracing"
)

const serviceName = "foodeez-api"

// App wires together all dependencies and runs the Foodeez backend.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	consumer       *pkgkafka.Consumer
	dlq            *pkgkafka.DLQProducer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, serviceName)

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	if cfg.SlowQueryThreshold > 0 {
		database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)
	}

	// Redis backs the featured-business cache. A missing Redis degrades to
	// uncached reads rather than failing startup.
	var (
		redisClient *redis.Client
		cache       service.Cache
	)
	redisCfg := database.DefaultRedisConfig()
	redisCfg.Host = cfg.RedisHost
	redisCfg.Port = cfg.RedisPort
	redisCfg.Password = cfg.RedisPassword
	redisCfg.DB = cfg.RedisDB
	redisClient, err = database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		logger.Warn("redis unavailable, featured cache disabled",
			slog.String("addr", redisCfg.Addr()),
			slog.String("error", err.Error()),
		)
		redisClient = nil
	} else {
		cache = service.NewRedisCache(redisClient)
		logger.Info("connected to Redis", slog.String("addr", redisCfg.Addr()))
	}

	// Kafka producer and event publisher.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	eventProducer := event.NewProducer(producer, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Mailer collaborator.
	var mail mailer.Mailer
	if cfg.MailerEnabled {
		mail = mailer.NewHTTPMailer(cfg.MailerBaseURL, logger)
	} else {
		mail = mailer.NewNoopMailer(logger)
	}

	// Build the dependency graph.
	businessRepo := postgres.NewBusinessRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	newsletterRepo := postgres.NewNewsletterRepository(pool)

	businessService := service.NewBusinessService(businessRepo, cache, cfg.FeaturedTTL, logger)
	reviewService := service.NewReviewService(reviewRepo, businessRepo, eventProducer, logger)
	reservationService := service.NewReservationService(reservationRepo, businessRepo, eventProducer, mail, logger)
	newsletterService := service.NewNewsletterService(newsletterRepo, eventProducer, mail, logger)

	// Moderation consumer with DLQ for poison messages.
	var (
		consumer *pkgkafka.Consumer
		dlq      *pkgkafka.DLQProducer
	)
	if cfg.KafkaConsumerEnabled {
		dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
		consumer = event.NewModerationConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, reviewService, dlq, logger)
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	router := handler.NewRouter(handler.RouterConfig{
		BusinessService:    businessService,
		ReviewService:      reviewService,
		ReservationService: reservationService,
		NewsletterService:  newsletterService,
		HealthHandler:      healthHandler,
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		},
		RateLimitRPS:      cfg.RateLimitRPS,
		RateLimitBurst:    cfg.RateLimitBurst,
		PprofEnabled:      cfg.PprofEnabled,
		PprofAllowedCIDRs: cfg.PprofCIDRs,
		Logger:            logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		consumer:       consumer,
		dlq:            dlq,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and the moderation consumer, blocking until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("moderation consumer: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components: the HTTP server drains first,
// then the tracer flushes pending spans, then Kafka and the stores close.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			a.logger.Error("dlq producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
